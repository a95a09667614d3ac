package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonesrussell/north-cloud/content-ingestor/infrastructure/config"
)

type sampleConfig struct {
	Name    string        `env:"SAMPLE_NAME"    yaml:"name"`
	Workers int           `env:"SAMPLE_WORKERS" yaml:"workers"`
	Timeout time.Duration `env:"SAMPLE_TIMEOUT" yaml:"timeout"`
	Nested  struct {
		Enabled bool     `env:"SAMPLE_ENABLED" yaml:"enabled"`
		Origins []string `env:"SAMPLE_ORIGINS" yaml:"origins"`
	} `yaml:"nested"`
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadWithDefaults_EnvWinsOverDefaults(t *testing.T) {
	path := writeConfig(t, "name: from-file\nworkers: 2\n")
	t.Setenv("SAMPLE_WORKERS", "9")
	t.Setenv("SAMPLE_TIMEOUT", "3s")
	t.Setenv("SAMPLE_ORIGINS", "a, b")
	t.Setenv("SAMPLE_ENABLED", "yes")

	cfg, err := config.LoadWithDefaults(path, func(c *sampleConfig) {
		c.Workers = 4
	})
	require.NoError(t, err)

	assert.Equal(t, "from-file", cfg.Name)
	assert.Equal(t, 9, cfg.Workers)
	assert.Equal(t, 3*time.Second, cfg.Timeout)
	assert.True(t, cfg.Nested.Enabled)
	assert.Equal(t, []string{"a", "b"}, cfg.Nested.Origins)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := config.Load[sampleConfig](filepath.Join(t.TempDir(), "absent.yml"))
	require.ErrorIs(t, err, config.ErrConfigNotFound)
}

func TestLoadOptional_MissingFileUsesDefaults(t *testing.T) {
	t.Setenv("SAMPLE_NAME", "env-only")

	cfg, err := config.LoadOptional(filepath.Join(t.TempDir(), "absent.yml"), func(c *sampleConfig) {
		if c.Workers == 0 {
			c.Workers = 4
		}
	})
	require.NoError(t, err)
	assert.Equal(t, "env-only", cfg.Name)
	assert.Equal(t, 4, cfg.Workers)
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := writeConfig(t, "name: [unterminated\n")

	_, err := config.Load[sampleConfig](path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse config")
}

func TestValidators(t *testing.T) {
	t.Parallel()

	var vErr *config.ValidationError

	require.ErrorAs(t, config.ValidatePort("server.port", 0), &vErr)
	assert.Equal(t, "server.port", vErr.Field)
	require.NoError(t, config.ValidatePort("server.port", 8080))

	require.Error(t, config.ValidateRequired("database.host", "  "))
	require.Error(t, config.ValidatePositive("ingest.workers", 0))
	require.NoError(t, config.ValidateOneOf("persistence.driver", "postgres", "postgres", "supabase"))
	require.Error(t, config.ValidateOneOf("persistence.driver", "mysql", "postgres", "supabase"))
	require.NoError(t, config.ValidateLogLevel("logging.level", "warn"))
}
