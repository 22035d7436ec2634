package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/conneroisu/livedocs/internal/build"
	"github.com/conneroisu/livedocs/internal/renderer"
	"github.com/conneroisu/livedocs/internal/server"
	"github.com/conneroisu/livedocs/internal/watcher"
)

var devCmd = &cobra.Command{
	Use:     "dev",
	Aliases: []string{"d"},
	Short:   "Start the development server with hot reload",
	Long: `Build the site, serve it and rebuild on every change to the docs or
components directory. Open pages reload automatically; edits to a component
swap its live previews in place.

Examples:
  livedocs dev                  # Serve on 127.0.0.1:7777
  livedocs dev --port 3000      # Use another port
  livedocs dev --no-open        # Do not open a browser`,
	Args: cobra.NoArgs,
	RunE: runDev,
}

func init() {
	rootCmd.AddCommand(devCmd)

	devCmd.Flags().IntP("port", "p", 0, "port to listen on (default 7777)")
	devCmd.Flags().String("host", "", "host to bind to (default 127.0.0.1)")
	devCmd.Flags().Bool("open", false, "open a browser once the server is up")
	devCmd.Flags().Bool("no-open", false, "do not open a browser")
}

func runDev(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd, map[string]string{
		"port": "server.port",
		"host": "server.host",
		"open": "server.open",
	})
	if err != nil {
		return err
	}
	if noOpen, _ := cmd.Flags().GetBool("no-open"); noOpen {
		cfg.Server.Open = false
	}
	logger := newLogger(cfg)
	ctx := cmd.Context()

	reg, err := scanComponents(ctx, cfg, logger)
	if err != nil {
		return err
	}

	builder := build.NewBuilder(cfg, reg, renderer.NewDocRenderer(), logger, build.WithDevMode(true))
	srv := server.New(cfg, logger, server.WithHotReload(builder, reg))
	if err := srv.Rebuild(ctx); err != nil {
		// The overlay is shown once a browser connects; keep serving.
		logger.Error(ctx, err, "Initial build failed")
	}

	fw, err := watcher.NewFileWatcher(watcher.DefaultDebounce, logger)
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer fw.Stop()

	if err := fw.AddIgnorePatterns(watcher.DefaultIgnorePatterns...); err != nil {
		return err
	}
	// Rebuilds write into the output directory; never react to them.
	outputs := []string{filepath.ToSlash(filepath.Clean(cfg.Docs.Output)) + "/**"}
	if abs, err := filepath.Abs(cfg.Docs.Output); err == nil {
		outputs = append(outputs, filepath.ToSlash(abs)+"/**")
	}
	if err := fw.AddIgnorePatterns(outputs...); err != nil {
		return err
	}
	fw.AddHandler(srv.HandleChanges)

	for _, dir := range []string{cfg.Docs.Dir, cfg.Components.Dir} {
		if err := fw.AddRecursive(dir); err != nil {
			logger.Warn(ctx, err, "Not watching directory", "dir", dir)
		}
	}
	if err := fw.Start(ctx); err != nil {
		return fmt.Errorf("failed to start file watcher: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Serving %s at %s\n", cfg.Docs.Dir, srv.URL())
	if cfg.Server.Open {
		go func() {
			if err := openBrowser(srv.URL()); err != nil {
				logger.Warn(ctx, err, "Failed to open browser")
			}
		}()
	}

	return srv.Start(ctx)
}
