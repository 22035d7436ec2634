// Package cmd provides the livedocs command-line interface.
//
// Configuration is resolved by Viper with the usual precedence: command-line
// flags, then LIVEDOCS_<SECTION>_<KEY> environment variables (for example
// LIVEDOCS_DOCS_OUTPUT or LIVEDOCS_SERVER_PORT), then a docs.yml, docs.yaml
// or docs.toml file in the working directory (or the file named by
// --config), then built-in defaults.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/conneroisu/livedocs/internal/config"
	"github.com/conneroisu/livedocs/internal/logging"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "livedocs",
	Short: "Component documentation with live previews",
	Long: `livedocs turns a directory of Markdown pages into a static documentation
site. Fenced code blocks marked "live" that use your components are rendered
as framework-free custom elements next to their source.

Quick Start:
  livedocs init        Scaffold docs.yml, sample pages and a component
  livedocs dev         Serve the site with hot reload
  livedocs build       Build the static site
  livedocs serve       Preview a built site`,
	SilenceUsage: true,
}

// Execute runs the root command. Interrupts cancel the command context so
// long-running commands shut down cleanly.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (default is docs.yml, docs.yaml or docs.toml)")
	rootCmd.PersistentFlags().String("log-level", "", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("log-format", "", "log format (text, json)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "shorthand for --log-level debug")
}

// initConfig points Viper at the config file and environment.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName("docs")
	}

	viper.SetEnvPrefix("LIVEDOCS")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()
}

// loadConfig reads the config file, binds the given command flags to their
// keys and returns the validated configuration.
func loadConfig(cmd *cobra.Command, bindings map[string]string) (*config.Config, error) {
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}
	if err := config.BindEnv(viper.GetViper()); err != nil {
		return nil, err
	}

	all := map[string]string{"log-level": "log.level", "log-format": "log.format"}
	for name, key := range bindings {
		all[name] = key
	}
	for name, key := range all {
		flag := cmd.Flags().Lookup(name)
		if flag == nil {
			continue
		}
		if err := bindFlag(key, flag); err != nil {
			return nil, err
		}
	}
	if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
		viper.Set("log.level", "debug")
	}

	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	return cfg, nil
}

// bindFlag binds a flag only when the user set it, so that an unset flag's
// default never shadows the config file.
func bindFlag(key string, flag *pflag.Flag) error {
	if !flag.Changed {
		return nil
	}
	if err := viper.BindPFlag(key, flag); err != nil {
		return fmt.Errorf("failed to bind --%s: %w", flag.Name, err)
	}
	return nil
}

func newLogger(cfg *config.Config) logging.Logger {
	lc := cfg.LoggerConfig()
	lc.Output = os.Stderr
	return logging.NewLogger(lc)
}
