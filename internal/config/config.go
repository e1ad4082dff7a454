package config

import (
	"fmt"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	Server   ServerConfig
	Sheet    SheetConfig
	Storage  StorageConfig
	Postgres PostgresConfig
	Drive    DriveConfig
	Log      LogConfig
}

type ServerConfig struct {
	Port int
}

// SheetConfig selects the tracking-table backend and its column layout.
// Backend is "sqlite" or "postgres"; Schema is "extended" or "core".
type SheetConfig struct {
	Backend string
	Schema  string
}

type StorageConfig struct {
	DataDir string
}

type PostgresConfig struct {
	DSN string
}

type DriveConfig struct {
	BaseURL     string
	UploadURL   string
	FolderName  string
	AccessToken string
}

type LogConfig struct {
	Level string
}

func defaults() Config {
	return Config{
		Server: ServerConfig{
			Port: 4000,
		},
		Sheet: SheetConfig{
			Backend: "sqlite",
			Schema:  "extended",
		},
		Storage: StorageConfig{
			DataDir: defaultDataDir(),
		},
		Drive: DriveConfig{
			BaseURL:    "https://www.googleapis.com/drive/v3",
			UploadURL:  "https://www.googleapis.com/upload/drive/v3",
			FolderName: "Lead Photos",
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load reads configuration from a .env file in the working directory (if
// present), the platform-native backend, environment variables, and the
// platform secret store.
//
// On macOS the backend is UserDefaults (domain: com.leadbooth.app) and the
// Drive token falls back to macOS Keychain.
// On Linux the backend is a JSON file at $XDG_CONFIG_HOME/leadbooth/config.json
// and the token falls back to a secrets file under $XDG_DATA_HOME.
//
// Environment variables (LEADBOOTH_*) override backend values on all
// platforms. The Drive token is optional: without one the server still
// captures leads, but photo uploads degrade to error markers in the sheet.
func Load() (Config, error) {
	_ = godotenv.Load()
	return loadWith(newPlatformBackend(), keychainReader{})
}

// keychain abstracts secret-store access for testing.
type keychain interface {
	Get(service, account string) (string, error)
}

func loadWith(b ConfigBackend, kc keychain) (Config, error) {
	cfg := defaults()

	if err := applyBackend(&cfg, b); err != nil {
		return Config{}, err
	}

	applyEnvOverrides(&cfg)

	// Try the platform secret store for the Drive token if still empty.
	if cfg.Drive.AccessToken == "" {
		if token, err := kc.Get("leadbooth", "drive_access_token"); err == nil && token != "" {
			cfg.Drive.AccessToken = token
		}
	}

	switch cfg.Sheet.Backend {
	case "sqlite", "postgres":
	default:
		return Config{}, fmt.Errorf("invalid sheet.backend %q: must be sqlite or postgres", cfg.Sheet.Backend)
	}
	if cfg.Sheet.Backend == "postgres" && cfg.Postgres.DSN == "" {
		return Config{}, fmt.Errorf("sheet.backend is postgres but postgres.dsn is empty. " +
			"Set it via environment variable LEADBOOTH_POSTGRES_DSN")
	}

	switch cfg.Sheet.Schema {
	case "extended", "core":
	default:
		return Config{}, fmt.Errorf("invalid sheet.schema %q: must be extended or core", cfg.Sheet.Schema)
	}

	return cfg, nil
}

// keychainReader reads from the platform secret store.
type keychainReader struct{}

func (keychainReader) Get(service, account string) (string, error) {
	out, err := keychainExec(service, account)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(out)), nil
}
