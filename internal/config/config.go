// Package config loads livedocs configuration through Viper from a docs.yml
// (or .yaml/.toml) file, LIVEDOCS_ environment variables and command-line
// flags, then applies defaults and validates the result.
package config

import (
	"fmt"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/conneroisu/livedocs/internal/logging"
)

// Default values applied when a setting is absent.
const (
	DefaultDocsDir       = "docs"
	DefaultOutputDir     = "dist"
	DefaultTitle         = "Documentation"
	DefaultBaseURL       = "/"
	DefaultComponentsDir = "components"
	DefaultHost          = "127.0.0.1"
	DefaultPort          = 7777
	DefaultServePort     = 4000
)

type Config struct {
	Docs       DocsConfig       `mapstructure:"docs" yaml:"docs"`
	Components ComponentsConfig `mapstructure:"components" yaml:"components"`
	Build      BuildConfig      `mapstructure:"build" yaml:"build"`
	Server     ServerConfig     `mapstructure:"server" yaml:"server"`
	Log        LogConfig        `mapstructure:"log" yaml:"log"`
}

type DocsConfig struct {
	Dir     string   `mapstructure:"dir" yaml:"dir"`
	Output  string   `mapstructure:"output" yaml:"output"`
	Title   string   `mapstructure:"title" yaml:"title"`
	BaseURL string   `mapstructure:"base_url" yaml:"base_url"`
	Styles  []string `mapstructure:"styles" yaml:"styles,omitempty"`
}

type ComponentsConfig struct {
	Dir             string   `mapstructure:"dir" yaml:"dir"`
	Extensions      []string `mapstructure:"extensions" yaml:"extensions"`
	ExcludePatterns []string `mapstructure:"exclude_patterns" yaml:"exclude_patterns"`
}

type BuildConfig struct {
	Workers int  `mapstructure:"workers" yaml:"workers"`
	Clean   bool `mapstructure:"clean" yaml:"clean"`
}

type ServerConfig struct {
	Host string `mapstructure:"host" yaml:"host"`
	Port int    `mapstructure:"port" yaml:"port"`
	Open bool   `mapstructure:"open" yaml:"open"`
}

type LogConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
}

// Keys lists every configuration key, used to bind LIVEDOCS_ environment
// variables even when no config file mentions the key.
var Keys = []string{
	"docs.dir", "docs.output", "docs.title", "docs.base_url", "docs.styles",
	"components.dir", "components.extensions", "components.exclude_patterns",
	"build.workers", "build.clean",
	"server.host", "server.port", "server.open",
	"log.level", "log.format",
}

// BindEnv binds every key in Keys to its environment variable on v. The env
// prefix and key replacer must already be configured.
func BindEnv(v *viper.Viper) error {
	for _, key := range Keys {
		if err := v.BindEnv(key); err != nil {
			return fmt.Errorf("failed to bind %s: %w", key, err)
		}
	}
	return nil
}

// Default returns a configuration with every default applied.
func Default() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

// Load reads the configuration from the global Viper instance.
func Load() (*Config, error) {
	return LoadFrom(viper.GetViper())
}

// LoadFrom reads the configuration from v.
func LoadFrom(v *viper.Viper) (*Config, error) {
	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to decode configuration: %w", err)
	}

	// Viper does not always decode slices set through flags or env vars.
	if v.IsSet("docs.styles") && len(config.Docs.Styles) == 0 {
		config.Docs.Styles = v.GetStringSlice("docs.styles")
	}
	if v.IsSet("components.extensions") && len(config.Components.Extensions) == 0 {
		config.Components.Extensions = v.GetStringSlice("components.extensions")
	}
	if v.IsSet("components.exclude_patterns") && len(config.Components.ExcludePatterns) == 0 {
		config.Components.ExcludePatterns = v.GetStringSlice("components.exclude_patterns")
	}

	applyDefaults(&config)

	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

func applyDefaults(config *Config) {
	if config.Docs.Dir == "" {
		config.Docs.Dir = DefaultDocsDir
	}
	if config.Docs.Output == "" {
		config.Docs.Output = DefaultOutputDir
	}
	if config.Docs.Title == "" {
		config.Docs.Title = DefaultTitle
	}
	config.Docs.BaseURL = NormalizeBaseURL(config.Docs.BaseURL)

	if config.Components.Dir == "" {
		config.Components.Dir = DefaultComponentsDir
	}
	if len(config.Components.Extensions) == 0 {
		config.Components.Extensions = []string{"tsx", "jsx"}
	}
	if config.Components.ExcludePatterns == nil {
		config.Components.ExcludePatterns = []string{"*.test.*", "*.spec.*", "*.stories.*", "index.*"}
	}

	if config.Build.Workers <= 0 {
		config.Build.Workers = runtime.NumCPU()
	}

	if config.Server.Host == "" {
		config.Server.Host = DefaultHost
	}
	if config.Server.Port == 0 {
		config.Server.Port = DefaultPort
	}

	if config.Log.Level == "" {
		config.Log.Level = "info"
	}
	if config.Log.Format == "" {
		config.Log.Format = "text"
	}
}

// NormalizeBaseURL guarantees a non-empty base URL ending in "/".
func NormalizeBaseURL(base string) string {
	base = strings.TrimSpace(base)
	if base == "" {
		return DefaultBaseURL
	}
	if !strings.HasSuffix(base, "/") {
		base += "/"
	}
	return base
}

// validateConfig validates configuration values for correctness
func validateConfig(config *Config) error {
	if err := validateDocsConfig(&config.Docs); err != nil {
		return fmt.Errorf("docs config: %w", err)
	}
	if config.Server.Port < 1 || config.Server.Port > 65535 {
		return fmt.Errorf("server config: port %d out of range", config.Server.Port)
	}
	if _, err := logging.ParseLevel(config.Log.Level); err != nil {
		return fmt.Errorf("log config: %w", err)
	}
	if config.Log.Format != "text" && config.Log.Format != "json" {
		return fmt.Errorf("log config: format must be text or json, got %q", config.Log.Format)
	}
	return nil
}

func validateDocsConfig(docs *DocsConfig) error {
	docsDir := filepath.Clean(docs.Dir)
	outDir := filepath.Clean(docs.Output)
	if docsDir == outDir {
		return fmt.Errorf("output directory %q must differ from docs directory", docs.Output)
	}
	if rel, err := filepath.Rel(outDir, docsDir); err == nil && !strings.HasPrefix(rel, "..") {
		return fmt.Errorf("docs directory %q must not live inside output directory %q", docs.Dir, docs.Output)
	}
	if strings.Contains(docs.BaseURL, " ") {
		return fmt.Errorf("base_url %q must not contain spaces", docs.BaseURL)
	}
	return nil
}

// LoggerConfig converts the log section into a logger configuration.
func (c *Config) LoggerConfig() *logging.LoggerConfig {
	level, err := logging.ParseLevel(c.Log.Level)
	if err != nil {
		level = logging.LevelInfo
	}
	lc := logging.DefaultConfig()
	lc.Level = level
	lc.Format = c.Log.Format
	return lc
}

// ToYAML renders the configuration as a docs.yml file body.
func (c *Config) ToYAML() ([]byte, error) {
	data, err := yaml.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal configuration: %w", err)
	}
	return data, nil
}
