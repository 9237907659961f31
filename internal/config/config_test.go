package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestConfigBaseURLDefaultsToLocalAPI(t *testing.T) {
	baseURL, err := Config{}.BaseURL()
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if baseURL != DefaultAPIURL {
		t.Fatalf("unexpected base URL: %s", baseURL)
	}
}

func TestConfigBaseURLAddsSchemeAndTrimsSlash(t *testing.T) {
	cfg := Config{APIURL: "192.168.1.10:4444/api/"}

	baseURL, err := cfg.BaseURL()
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if baseURL != "http://192.168.1.10:4444/api" {
		t.Fatalf("unexpected base URL: %s", baseURL)
	}
}

func TestConfigBaseURLKeepsHTTPS(t *testing.T) {
	cfg := Config{APIURL: "https://anime.example.com/api"}

	baseURL, err := cfg.BaseURL()
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if baseURL != "https://anime.example.com/api" {
		t.Fatalf("unexpected base URL: %s", baseURL)
	}
}

func TestConfigBaseURLRequiresHost(t *testing.T) {
	cfg := Config{APIURL: "http:///api"}

	if _, err := cfg.BaseURL(); err == nil {
		t.Fatalf("expected error when host is missing")
	}
}

func TestApplyEnvDefaults(t *testing.T) {
	t.Setenv("ANIME_API_URL", " http://api.local/api ")
	t.Setenv("ANIME_LISTEN", ":9000")
	t.Setenv("ANIME_VERBOSE", "true")
	t.Setenv("ANIME_START_VIEW", "top-ten")

	cfg := ApplyEnvDefaults(Config{})
	if cfg.APIURL != "http://api.local/api" || cfg.Listen != ":9000" || !cfg.Verbose || cfg.StartView != "top-ten" {
		t.Fatalf("unexpected config: %+v", cfg)
	}

	cfg = ApplyEnvDefaults(Config{APIURL: "http://file.local/api"})
	if cfg.APIURL != "http://file.local/api" {
		t.Fatalf("config file value should win over env, got %s", cfg.APIURL)
	}
}

func TestSaveAndLoadConfig(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("ANIME_API_URL", "")
	t.Setenv("ANIME_LISTEN", "")
	t.Setenv("ANIME_VERBOSE", "")

	if err := SaveConfig(Config{APIURL: "http://saved.local/api"}); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if cfg.APIURL != "http://saved.local/api" {
		t.Fatalf("unexpected config: %+v", cfg)
	}
	if cfg.ListenAddr() != DefaultListen {
		t.Fatalf("unexpected listen addr: %s", cfg.ListenAddr())
	}
}

func TestLoadEnvDoesNotOverrideEnvironment(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("ANIME_API_URL", "http://from-env/api")
	t.Setenv("ANIME_LISTEN", "")
	os.Unsetenv("ANIME_LISTEN")

	envPath, err := EnvPath()
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if err := os.MkdirAll(filepath.Dir(envPath), 0o755); err != nil {
		t.Fatalf("unable to create dir: %v", err)
	}
	contents := "ANIME_API_URL=http://from-file/api\nexport ANIME_LISTEN=\":7000\"\n"
	if err := os.WriteFile(envPath, []byte(contents), 0o644); err != nil {
		t.Fatalf("unable to write env file: %v", err)
	}

	if err := LoadEnv(); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if got := os.Getenv("ANIME_API_URL"); got != "http://from-env/api" {
		t.Fatalf("env file overrode environment: %s", got)
	}
	if got := os.Getenv("ANIME_LISTEN"); got != ":7000" {
		t.Fatalf("expected env file value, got %q", got)
	}
}

func TestLoadEnvMissingFileIsFine(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	if err := LoadEnv(); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
}
