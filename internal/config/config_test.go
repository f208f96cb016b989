package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		App: AppConfig{
			Environment: "development",
		},
		Logger: LoggerConfig{
			Level: "info",
		},
		Data: DataConfig{
			BasePath: "/some/path",
		},
	}
}

func TestValidate_ValidConfig(t *testing.T) {
	assert.NoError(t, validConfig().Validate())
}

func TestValidate_AllEnvironments(t *testing.T) {
	tests := []struct {
		env   string
		valid bool
	}{
		{"development", true},
		{"staging", true},
		{"production", true},
		{"test", false},
		{"", false},
		{"DEVELOPMENT", false}, // case sensitive
	}

	for _, tt := range tests {
		t.Run(tt.env, func(t *testing.T) {
			cfg := validConfig()
			cfg.App.Environment = tt.env

			err := cfg.Validate()
			if tt.valid {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestValidate_AllLogLevels(t *testing.T) {
	tests := []struct {
		level string
		valid bool
	}{
		{"debug", true},
		{"info", true},
		{"warn", true},
		{"error", true},
		{"DEBUG", true},  // case insensitive
		{"INFO", true},   // case insensitive
		{"trace", false}, // not supported
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			cfg := validConfig()
			cfg.Logger.Level = tt.level

			err := cfg.Validate()
			if tt.valid {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestValidate_EmptyDataPath(t *testing.T) {
	cfg := validConfig()
	cfg.Data.BasePath = ""

	assert.Error(t, cfg.Validate())
}

func TestValidate_RemoteURL(t *testing.T) {
	tests := []struct {
		url   string
		valid bool
	}{
		{"", true}, // offline mode
		{"https://sync.example.com", true},
		{"http://localhost:9000", true},
		{"sync.example.com", false},
		{"ftp://sync.example.com", false},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			cfg := validConfig()
			cfg.Remote.BaseURL = tt.url

			err := cfg.Validate()
			if tt.valid {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestExpandPath_Tilde(t *testing.T) {
	homeDir, err := os.UserHomeDir()
	require.NoError(t, err)

	expanded, err := expandPath("~/movies", "")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(homeDir, "movies"), expanded)
}

func TestExpandPath_EmptyUsesDefault(t *testing.T) {
	expanded, err := expandPath("", "/default/path")
	require.NoError(t, err)
	assert.Equal(t, "/default/path", expanded)
}

func TestExpandDataPath_Default(t *testing.T) {
	homeDir, err := os.UserHomeDir()
	require.NoError(t, err)

	cfg := &Config{}
	require.NoError(t, cfg.expandDataPath())
	assert.Equal(t, filepath.Join(homeDir, "ReelMates", "data"), cfg.Data.BasePath)
}

func TestGetConfigValue_Precedence(t *testing.T) {
	t.Setenv("REELMATES_TEST_VALUE", "from-env")

	assert.Equal(t, "from-flag", getConfigValue("from-flag", "REELMATES_TEST_VALUE", "default"))
	assert.Equal(t, "from-env", getConfigValue("", "REELMATES_TEST_VALUE", "default"))
	assert.Equal(t, "default", getConfigValue("", "REELMATES_TEST_MISSING", "default"))
}

func TestLoadEnvFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(path, []byte("# comment\nREELMATES_ENVFILE_KEY=\"quoted value\"\n\n"), 0o600))

	require.NoError(t, loadEnvFile(path))
	t.Cleanup(func() { _ = os.Unsetenv("REELMATES_ENVFILE_KEY") })

	assert.Equal(t, "quoted value", os.Getenv("REELMATES_ENVFILE_KEY"))
}
