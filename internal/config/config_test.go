package config

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/conneroisu/livedocs/internal/logging"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := LoadFrom(viper.New())
	require.NoError(t, err)

	assert.Equal(t, "docs", cfg.Docs.Dir)
	assert.Equal(t, "dist", cfg.Docs.Output)
	assert.Equal(t, "Documentation", cfg.Docs.Title)
	assert.Equal(t, "/", cfg.Docs.BaseURL)
	assert.Equal(t, "components", cfg.Components.Dir)
	assert.Equal(t, []string{"tsx", "jsx"}, cfg.Components.Extensions)
	assert.Contains(t, cfg.Components.ExcludePatterns, "*.test.*")
	assert.Equal(t, runtime.NumCPU(), cfg.Build.Workers)
	assert.Equal(t, "127.0.0.1", cfg.Server.Host)
	assert.Equal(t, 7777, cfg.Server.Port)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "text", cfg.Log.Format)
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "docs.yml")
	content := `
docs:
  dir: content
  output: public
  title: Acme UI
  base_url: /acme
  styles:
    - theme.css
components:
  dir: src/ui
  extensions: [tsx]
  exclude_patterns: []
build:
  workers: 2
server:
  port: 9000
log:
  level: debug
  format: json
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	v := viper.New()
	v.SetConfigFile(path)
	require.NoError(t, v.ReadInConfig())

	cfg, err := LoadFrom(v)
	require.NoError(t, err)

	assert.Equal(t, "content", cfg.Docs.Dir)
	assert.Equal(t, "public", cfg.Docs.Output)
	assert.Equal(t, "Acme UI", cfg.Docs.Title)
	assert.Equal(t, "/acme/", cfg.Docs.BaseURL)
	assert.Equal(t, []string{"theme.css"}, cfg.Docs.Styles)
	assert.Equal(t, "src/ui", cfg.Components.Dir)
	assert.Equal(t, []string{"tsx"}, cfg.Components.Extensions)
	assert.Equal(t, 2, cfg.Build.Workers)
	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, "debug", cfg.Log.Level)

	lc := cfg.LoggerConfig()
	assert.Equal(t, logging.LevelDebug, lc.Level)
	assert.Equal(t, "json", lc.Format)
}

func TestLoadValidation(t *testing.T) {
	tests := []struct {
		name string
		set  map[string]interface{}
	}{
		{"output equals docs", map[string]interface{}{"docs.dir": "site", "docs.output": "site"}},
		{"docs inside output", map[string]interface{}{"docs.dir": "out/docs", "docs.output": "out"}},
		{"port out of range", map[string]interface{}{"server.port": 70000}},
		{"unknown log level", map[string]interface{}{"log.level": "loud"}},
		{"unknown log format", map[string]interface{}{"log.format": "xml"}},
		{"spaces in base url", map[string]interface{}{"docs.base_url": "/my docs"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := viper.New()
			for k, val := range tt.set {
				v.Set(k, val)
			}
			_, err := LoadFrom(v)
			assert.Error(t, err)
		})
	}
}

func TestNormalizeBaseURL(t *testing.T) {
	assert.Equal(t, "/", NormalizeBaseURL(""))
	assert.Equal(t, "/", NormalizeBaseURL("/"))
	assert.Equal(t, "/docs/", NormalizeBaseURL("/docs"))
	assert.Equal(t, "https://example.com/", NormalizeBaseURL("https://example.com"))
}

func TestToYAMLRoundTrip(t *testing.T) {
	cfg := Default()
	data, err := cfg.ToYAML()
	require.NoError(t, err)
	assert.Contains(t, string(data), "base_url: /")

	var decoded Config
	require.NoError(t, yaml.Unmarshal(data, &decoded))
	assert.Equal(t, cfg.Docs, decoded.Docs)
	assert.Equal(t, cfg.Server, decoded.Server)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("LIVEDOCS_DOCS_OUTPUT", "site")
	t.Setenv("LIVEDOCS_SERVER_PORT", "9000")

	v := viper.New()
	v.SetEnvPrefix("LIVEDOCS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	require.NoError(t, BindEnv(v))

	cfg, err := LoadFrom(v)
	require.NoError(t, err)
	assert.Equal(t, "site", cfg.Docs.Output)
	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, "docs", cfg.Docs.Dir)
}
