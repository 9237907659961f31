package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
)

const (
	DefaultAPIURL = "http://localhost:4444/api"
	DefaultListen = "127.0.0.1:8080"

	configDirName  = "anime-browser"
	configFileName = "config.json"
	envFileName    = ".env"
)

type Config struct {
	APIURL    string `json:"api_url"`
	Listen    string `json:"listen,omitempty"`
	StartView string `json:"start_view,omitempty"`
	Verbose   bool   `json:"verbose"`
}

func DefaultConfig() Config {
	return Config{}
}

func ConfigDir() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("unable to resolve config dir: %w", err)
	}

	return filepath.Join(configDir, configDirName), nil
}

func ConfigPath() (string, error) {
	configDir, err := ConfigDir()
	if err != nil {
		return "", err
	}

	return filepath.Join(configDir, configFileName), nil
}

func EnvPath() (string, error) {
	configDir, err := ConfigDir()
	if err != nil {
		return "", err
	}

	return filepath.Join(configDir, envFileName), nil
}

// LoadEnv loads the .env file next to the config file. Variables already
// present in the environment win.
func LoadEnv() error {
	envPath, err := EnvPath()
	if err != nil {
		return err
	}

	if err := godotenv.Load(envPath); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("unable to read env file: %w", err)
	}

	return nil
}

func LoadConfig() (Config, error) {
	cfg := DefaultConfig()
	if err := LoadEnv(); err != nil {
		return cfg, err
	}

	configPath, err := ConfigPath()
	if err != nil {
		return cfg, err
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return ApplyEnvDefaults(cfg), nil
		}
		return cfg, fmt.Errorf("unable to read config: %w", err)
	}

	if err := json.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("unable to parse config: %w", err)
	}

	return ApplyEnvDefaults(cfg), nil
}

func SaveConfig(cfg Config) error {
	configPath, err := ConfigPath()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(configPath), 0o755); err != nil {
		return fmt.Errorf("unable to create config dir: %w", err)
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("unable to marshal config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		return fmt.Errorf("unable to write config: %w", err)
	}

	return nil
}

func ApplyEnvDefaults(cfg Config) Config {
	if cfg.APIURL == "" {
		if value := strings.TrimSpace(os.Getenv("ANIME_API_URL")); value != "" {
			cfg.APIURL = value
		}
	}
	if cfg.Listen == "" {
		if value := strings.TrimSpace(os.Getenv("ANIME_LISTEN")); value != "" {
			cfg.Listen = value
		}
	}
	if cfg.StartView == "" {
		if value := strings.TrimSpace(os.Getenv("ANIME_START_VIEW")); value != "" {
			cfg.StartView = value
		}
	}
	if !cfg.Verbose {
		if value := strings.TrimSpace(os.Getenv("ANIME_VERBOSE")); value != "" {
			cfg.Verbose = value == "1" || strings.EqualFold(value, "true")
		}
	}

	return cfg
}

// BaseURL returns the normalized API base URL, defaulting to the local
// API server.
func (cfg Config) BaseURL() (string, error) {
	if strings.TrimSpace(cfg.APIURL) == "" {
		return DefaultAPIURL, nil
	}
	return normalizeURL(cfg.APIURL)
}

func (cfg Config) ListenAddr() string {
	if strings.TrimSpace(cfg.Listen) == "" {
		return DefaultListen
	}
	return strings.TrimSpace(cfg.Listen)
}

func normalizeURL(rawURL string) (string, error) {
	trimmed := strings.TrimSpace(rawURL)
	if trimmed == "" {
		return "", errors.New("api url is empty")
	}
	if !strings.HasPrefix(trimmed, "http://") && !strings.HasPrefix(trimmed, "https://") {
		trimmed = "http://" + trimmed
	}

	parsed, err := url.Parse(trimmed)
	if err != nil {
		return "", fmt.Errorf("invalid api url: %w", err)
	}

	if parsed.Host == "" {
		return "", errors.New("api url missing host")
	}

	parsed.Path = strings.TrimRight(parsed.Path, "/")
	parsed.RawQuery = ""
	parsed.Fragment = ""

	return parsed.String(), nil
}

func (cfg Config) Validate() error {
	_, err := cfg.BaseURL()
	return err
}
