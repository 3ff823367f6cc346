package shared

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestConfig(t *testing.T) {
	t.Run("DefaultConfig", func(t *testing.T) {
		config := DefaultConfig()

		if config.Database.Path != "./streamlist.db" {
			t.Errorf("expected database path ./streamlist.db, got %s", config.Database.Path)
		}
		if config.Server.Port != 3000 {
			t.Errorf("expected server port 3000, got %d", config.Server.Port)
		}
		if config.TMDB.BaseURL != "https://api.themoviedb.org/3" {
			t.Errorf("expected tmdb base URL https://api.themoviedb.org/3, got %s", config.TMDB.BaseURL)
		}
		if config.TMDB.Language != "en-US" {
			t.Errorf("expected language en-US, got %s", config.TMDB.Language)
		}
		if config.Client.ProxyURL != "http://127.0.0.1:3000" {
			t.Errorf("expected proxy URL http://127.0.0.1:3000, got %s", config.Client.ProxyURL)
		}
		if config.Server.Addr() != "127.0.0.1:3000" {
			t.Errorf("expected addr 127.0.0.1:3000, got %s", config.Server.Addr())
		}
	})

	t.Run("CreateConfigFile", func(t *testing.T) {
		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, "config.toml")

		if err := CreateConfigFile(configPath); err != nil {
			t.Fatalf("failed to create config file: %v", err)
		}

		config, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to load created config: %v", err)
		}

		if config.Database.Path != DefaultConfig().Database.Path {
			t.Errorf("created config database path doesn't match default")
		}

		if err := CreateConfigFile(configPath); err == nil {
			t.Error("creating config file again should fail")
		}
	})

	t.Run("LoadConfig", func(t *testing.T) {
		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, "config.toml")

		testConfig := `[database]
path = "/custom/path.db"

[server]
host = "0.0.0.0"
port = 8080

[tmdb]
bearer_token = "file-token"
rate_limit = 2.5
`
		if err := os.WriteFile(configPath, []byte(testConfig), 0644); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		config, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to load config: %v", err)
		}

		if config.Database.Path != "/custom/path.db" {
			t.Errorf("expected database path /custom/path.db, got %s", config.Database.Path)
		}
		if config.Server.Port != 8080 {
			t.Errorf("expected server port 8080, got %d", config.Server.Port)
		}
		if config.TMDB.RateLimit != 2.5 {
			t.Errorf("expected rate limit 2.5, got %v", config.TMDB.RateLimit)
		}
		if config.TMDB.Language != "en-US" {
			t.Errorf("expected unspecified language to keep default en-US, got %s", config.TMDB.Language)
		}
	})

	t.Run("LoadConfig with invalid TOML", func(t *testing.T) {
		configPath := filepath.Join(t.TempDir(), "config.toml")
		if err := os.WriteFile(configPath, []byte("[server\nport ="), 0644); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		_, err := LoadConfig(configPath)
		if !errors.Is(err, ErrInvalidConfig) {
			t.Errorf("expected ErrInvalidConfig, got %v", err)
		}
	})

	t.Run("LoadConfig with missing file", func(t *testing.T) {
		_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.toml"))
		if !errors.Is(err, ErrMissingConfig) {
			t.Errorf("expected ErrMissingConfig, got %v", err)
		}
		if !errors.Is(err, os.ErrNotExist) {
			t.Errorf("expected underlying not-exist error, got %v", err)
		}
	})

	t.Run("LoadConfigOrDefault with missing file", func(t *testing.T) {
		config, err := LoadConfigOrDefault(filepath.Join(t.TempDir(), "missing.toml"))
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if config.Server.Port != 3000 {
			t.Errorf("expected default config, got port %d", config.Server.Port)
		}
	})

	t.Run("BearerToken prefers environment", func(t *testing.T) {
		config := DefaultConfig()
		config.TMDB.BearerToken = "file-token"

		t.Setenv(TokenEnvVar, "")
		if got := config.BearerToken(); got != "file-token" {
			t.Errorf("expected file token, got %q", got)
		}

		t.Setenv(TokenEnvVar, "env-token")
		if got := config.BearerToken(); got != "env-token" {
			t.Errorf("expected env token, got %q", got)
		}
	})
}
