package shared

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
)

// TokenEnvVar names the environment variable holding the TMDB bearer token.
const TokenEnvVar = "TMDB_BEARER_TOKEN"

//go:embed config.example.toml
var exampleConf []byte

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	TMDB     TMDBConfig     `toml:"tmdb"`
	Database DatabaseConfig `toml:"database"`
	Server   ServerConfig   `toml:"server"`
	Client   ClientConfig   `toml:"client"`
}

// TMDBConfig contains upstream movie database settings.
type TMDBConfig struct {
	BaseURL      string  `toml:"base_url"`
	BearerToken  string  `toml:"bearer_token"`
	Language     string  `toml:"language"`
	ImageBaseURL string  `toml:"image_base_url"`
	RateLimit    float64 `toml:"rate_limit"`
}

// DatabaseConfig contains database connection settings.
type DatabaseConfig struct {
	Path         string `toml:"path"`
	MaxOpenConns int    `toml:"max_open_conns"`
	MaxIdleConns int    `toml:"max_idle_conns"`
}

// ServerConfig contains HTTP server settings for the search proxy.
type ServerConfig struct {
	Host        string   `toml:"host"`
	Port        int      `toml:"port"`
	CORSOrigins []string `toml:"cors_origins"`
}

// ClientConfig contains settings for the CLI and TUI clients.
type ClientConfig struct {
	ProxyURL string `toml:"proxy_url"`
	LogFile  string `toml:"log_file"`
}

// Addr returns the host:port pair the proxy listens on.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// BearerToken returns the TMDB credential, preferring the process environment over the config file.
func (c *Config) BearerToken() string {
	if token := strings.TrimSpace(os.Getenv(TokenEnvVar)); token != "" {
		return token
	}
	return strings.TrimSpace(c.TMDB.BearerToken)
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
//
// Keys missing from the file keep the values of [DefaultConfig].
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read config file: %w", ErrMissingConfig, err)
	}

	config := DefaultConfig()
	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("%w: failed to parse config: %v", ErrInvalidConfig, err)
	}

	return config, nil
}

// LoadConfigOrDefault loads the config at path when it exists and falls back to [DefaultConfig] otherwise.
func LoadConfigOrDefault(path string) (*Config, error) {
	if _, err := os.Stat(path); err != nil {
		return DefaultConfig(), nil
	}
	return LoadConfig(path)
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	return &config
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := os.WriteFile(path, exampleConf, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
