package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadFrom_Defaults(t *testing.T) {
	cfg, err := LoadFrom("")
	require.NoError(t, err)

	assert.Equal(t, 8000, cfg.Server.Port)
	assert.Equal(t, 45*time.Second, cfg.Server.RequestTimeout)
	assert.Equal(t, int64(32<<20), cfg.Upload.MaxBytes)
	assert.Equal(t, 1, cfg.Render.Workers)
	assert.Equal(t, 10, cfg.Render.Bins)
	assert.Equal(t, 0.5, cfg.Render.WordCloud.RelativeScaling)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, "none", cfg.Telemetry.TraceExporter)
}

func TestLoadFrom_Layering(t *testing.T) {
	path := writeConfigFile(t, `
server:
  port: 9000
  request_timeout: 5s
render:
  workers: 3
  palette: viridis
  word_cloud:
    max_words: 50
logging:
  level: debug
  format: text
`)
	t.Setenv("CHART_SERVER_PORT", "9100")
	t.Setenv("CHART_UPLOAD_MAX_BYTES", "1024")
	t.Setenv("CHART_SECURITY_ALLOWED_ORIGINS", "http://a.example,http://b.example")

	cfg, err := LoadFrom(path)
	require.NoError(t, err)

	assert.Equal(t, 9100, cfg.Server.Port, "env overrides file")
	assert.Equal(t, 5*time.Second, cfg.Server.RequestTimeout, "file overrides default")
	assert.Equal(t, 60*time.Second, cfg.Server.WriteTimeout, "default kept")
	assert.Equal(t, 3, cfg.Render.Workers)
	assert.Equal(t, "viridis", cfg.Render.Palette)
	assert.Equal(t, 50, cfg.Render.WordCloud.MaxWords)
	assert.Equal(t, 100.0, cfg.Render.WordCloud.MaxFontSize)
	assert.Equal(t, int64(1024), cfg.Upload.MaxBytes)
	assert.Equal(t, []string{"http://a.example", "http://b.example"}, cfg.Security.AllowedOrigins)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format, "format is forced to json")
}

func TestLoadFrom_Errors(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		env  map[string]string
	}{
		{name: "bad port", env: map[string]string{"CHART_SERVER_PORT": "70000"}},
		{name: "unparsable env", env: map[string]string{"CHART_RENDER_WORKERS": "many"}},
		{name: "no workers", yaml: "render:\n  workers: 0\n"},
		{name: "font bounds inverted", yaml: "render:\n  word_cloud:\n    min_font_size: 120\n"},
		{name: "scaling too large", yaml: "render:\n  word_cloud:\n    relative_scaling: 2\n"},
		{name: "unknown exporter", yaml: "telemetry:\n  trace_exporter: jaeger\n"},
		{name: "invalid yaml", yaml: "server: [port"},
		{name: "zero upload limit", env: map[string]string{"CHART_UPLOAD_MAX_BYTES": "0"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			path := ""
			if tt.yaml != "" {
				path = writeConfigFile(t, tt.yaml)
			}
			_, err := LoadFrom(path)
			assert.Error(t, err)
		})
	}
}

func TestLoadFrom_MissingFile(t *testing.T) {
	_, err := LoadFrom(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestLoad_ConfigFileEnv(t *testing.T) {
	path := writeConfigFile(t, "server:\n  port: 9300\n")
	t.Setenv("CHART_CONFIG_FILE", path)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 9300, cfg.Server.Port)
}

func TestValidate_NormalizesLogging(t *testing.T) {
	cfg := Default()
	cfg.Logging.Output = "syslog"
	cfg.Logging.Format = "text"

	require.NoError(t, cfg.validate())
	assert.Equal(t, "stdout", cfg.Logging.Output)
	assert.Equal(t, "json", cfg.Logging.Format)

	cfg.Logging.Output = "file"
	cfg.Logging.FilePath = ""
	require.NoError(t, cfg.validate())
	assert.Equal(t, "logs/chartsvc.log", cfg.Logging.FilePath)
}
