package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/conneroisu/livedocs/internal/config"
	"github.com/conneroisu/livedocs/internal/server"
)

var serveCmd = &cobra.Command{
	Use:     "serve",
	Aliases: []string{"s"},
	Short:   "Preview a built site",
	Long: `Serve the output of "livedocs build" without watching or rebuilding.

Examples:
  livedocs serve                 # Serve dist on 127.0.0.1:4000
  livedocs serve --dir public    # Serve another directory`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().IntP("port", "p", config.DefaultServePort, "port to listen on")
	serveCmd.Flags().String("host", "", "host to bind to (default 127.0.0.1)")
	serveCmd.Flags().StringP("dir", "d", "", "directory to serve (default: the configured output)")
	serveCmd.Flags().Bool("open", false, "open a browser once the server is up")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd, map[string]string{
		"host": "server.host",
		"dir":  "docs.output",
		"open": "server.open",
	})
	if err != nil {
		return err
	}
	cfg.Server.Port, _ = cmd.Flags().GetInt("port")
	logger := newLogger(cfg)
	ctx := cmd.Context()

	if info, err := os.Stat(cfg.Docs.Output); err != nil || !info.IsDir() {
		return fmt.Errorf("directory not found: %s (run 'livedocs build' first)", cfg.Docs.Output)
	}

	srv := server.New(cfg, logger)
	fmt.Fprintf(cmd.OutOrStdout(), "Serving %s at %s\n", cfg.Docs.Output, srv.URL())
	if cfg.Server.Open {
		go func() {
			if err := openBrowser(srv.URL()); err != nil {
				logger.Warn(ctx, err, "Failed to open browser")
			}
		}()
	}

	return srv.Start(ctx)
}
