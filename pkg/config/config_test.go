package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testConfig struct {
	Port       int           `env:"TEST_CFG_PORT" envDefault:"8080"`
	BaseURL    string        `env:"TEST_CFG_BASE_URL"`
	HandoffTTL time.Duration `env:"TEST_CFG_HANDOFF_TTL" envDefault:"1h"`
	Brokers    []string      `env:"TEST_CFG_BROKERS" envDefault:"localhost:9092" envSeparator:","`
}

func TestLoad_Defaults(t *testing.T) {
	var cfg testConfig
	require.NoError(t, Load(&cfg))

	assert.Equal(t, 8080, cfg.Port)
	assert.Empty(t, cfg.BaseURL)
	assert.Equal(t, time.Hour, cfg.HandoffTTL)
	assert.Equal(t, []string{"localhost:9092"}, cfg.Brokers)
}

func TestLoad_FromEnvVars(t *testing.T) {
	t.Setenv("TEST_CFG_PORT", "9090")
	t.Setenv("TEST_CFG_BASE_URL", "https://api.example.com")
	t.Setenv("TEST_CFG_HANDOFF_TTL", "15m")
	t.Setenv("TEST_CFG_BROKERS", "k1:9092,k2:9092")

	var cfg testConfig
	require.NoError(t, Load(&cfg))

	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, "https://api.example.com", cfg.BaseURL)
	assert.Equal(t, 15*time.Minute, cfg.HandoffTTL)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Brokers)
}

func TestLoad_InvalidType(t *testing.T) {
	t.Setenv("TEST_CFG_PORT", "not-a-number")

	var cfg testConfig
	err := Load(&cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse config")
}

func TestLoad_DotenvFile(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(file, []byte("TEST_CFG_DOTENV_URL=https://dotenv.example.com\n"), 0o600))
	t.Cleanup(func() { _ = os.Unsetenv("TEST_CFG_DOTENV_URL") })

	var cfg struct {
		BaseURL string `env:"TEST_CFG_DOTENV_URL"`
	}
	require.NoError(t, Load(&cfg, file))
	assert.Equal(t, "https://dotenv.example.com", cfg.BaseURL)
}

func TestLoad_DotenvDoesNotOverrideEnvironment(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(file, []byte("TEST_CFG_PORT=1111\n"), 0o600))
	t.Setenv("TEST_CFG_PORT", "2222")

	var cfg testConfig
	require.NoError(t, Load(&cfg, file))
	assert.Equal(t, 2222, cfg.Port)
}

func TestLoad_MissingDotenvIsSkipped(t *testing.T) {
	var cfg testConfig
	require.NoError(t, Load(&cfg, filepath.Join(t.TempDir(), "absent.env")))
}
