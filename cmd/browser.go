package cmd

import (
	"fmt"
	"os/exec"
	"runtime"
	"time"

	"github.com/conneroisu/livedocs/internal/validation"
)

// openBrowser opens target in the default browser once the server has had
// a moment to start listening.
func openBrowser(target string) error {
	if err := validation.ValidateURL(target); err != nil {
		return fmt.Errorf("refusing to open browser: %w", err)
	}

	time.Sleep(100 * time.Millisecond)

	switch runtime.GOOS {
	case "linux":
		return exec.Command("xdg-open", target).Start()
	case "windows":
		return exec.Command("rundll32", "url.dll,FileProtocolHandler", target).Start()
	case "darwin":
		return exec.Command("open", target).Start()
	default:
		return fmt.Errorf("unsupported platform %s", runtime.GOOS)
	}
}
