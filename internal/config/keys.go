package config

import (
	"fmt"
	"os"
	"strconv"
)

type keyType int

const (
	kString keyType = iota
	kInt
)

type keySpec struct {
	key     string
	typ     keyType
	env     string
	secret  bool
	apply   func(cfg *Config, v any)
	extract func(cfg Config) any
}

var specs = []keySpec{
	{
		key: "server.port", typ: kInt, env: "LEADBOOTH_SERVER_PORT",
		apply:   func(cfg *Config, v any) { cfg.Server.Port = v.(int) },
		extract: func(cfg Config) any { return cfg.Server.Port },
	},
	{
		key: "sheet.backend", typ: kString, env: "LEADBOOTH_SHEET_BACKEND",
		apply:   func(cfg *Config, v any) { cfg.Sheet.Backend = v.(string) },
		extract: func(cfg Config) any { return cfg.Sheet.Backend },
	},
	{
		key: "sheet.schema", typ: kString, env: "LEADBOOTH_SHEET_SCHEMA",
		apply:   func(cfg *Config, v any) { cfg.Sheet.Schema = v.(string) },
		extract: func(cfg Config) any { return cfg.Sheet.Schema },
	},
	{
		key: "storage.data_dir", typ: kString, env: "LEADBOOTH_STORAGE_DATA_DIR",
		apply:   func(cfg *Config, v any) { cfg.Storage.DataDir = v.(string) },
		extract: func(cfg Config) any { return cfg.Storage.DataDir },
	},
	{
		key: "postgres.dsn", typ: kString, env: "LEADBOOTH_POSTGRES_DSN",
		secret:  true,
		apply:   func(cfg *Config, v any) { cfg.Postgres.DSN = v.(string) },
		extract: func(cfg Config) any { return cfg.Postgres.DSN },
	},
	{
		key: "drive.base_url", typ: kString, env: "LEADBOOTH_DRIVE_BASE_URL",
		apply:   func(cfg *Config, v any) { cfg.Drive.BaseURL = v.(string) },
		extract: func(cfg Config) any { return cfg.Drive.BaseURL },
	},
	{
		key: "drive.upload_url", typ: kString, env: "LEADBOOTH_DRIVE_UPLOAD_URL",
		apply:   func(cfg *Config, v any) { cfg.Drive.UploadURL = v.(string) },
		extract: func(cfg Config) any { return cfg.Drive.UploadURL },
	},
	{
		key: "drive.folder", typ: kString, env: "LEADBOOTH_DRIVE_FOLDER",
		apply:   func(cfg *Config, v any) { cfg.Drive.FolderName = v.(string) },
		extract: func(cfg Config) any { return cfg.Drive.FolderName },
	},
	{
		key: "drive.access_token", typ: kString, env: "LEADBOOTH_DRIVE_ACCESS_TOKEN",
		secret:  true,
		apply:   func(cfg *Config, v any) { cfg.Drive.AccessToken = v.(string) },
		extract: func(cfg Config) any { return cfg.Drive.AccessToken },
	},
	{
		key: "log.level", typ: kString, env: "LEADBOOTH_LOG_LEVEL",
		apply:   func(cfg *Config, v any) { cfg.Log.Level = v.(string) },
		extract: func(cfg Config) any { return cfg.Log.Level },
	},
}

func applyBackend(cfg *Config, b ConfigBackend) error {
	for _, s := range specs {
		if s.secret {
			continue
		}
		switch s.typ {
		case kString:
			v, ok, err := b.GetString(s.key)
			if err != nil {
				return fmt.Errorf("reading %s: %w", s.key, err)
			}
			if ok {
				s.apply(cfg, v)
			}
		case kInt:
			v, ok, err := b.GetInt(s.key)
			if err != nil {
				return fmt.Errorf("reading %s: %w", s.key, err)
			}
			if ok {
				s.apply(cfg, v)
			}
		}
	}
	return nil
}

func applyEnvOverrides(cfg *Config) {
	for _, s := range specs {
		if s.env == "" {
			continue
		}
		raw := os.Getenv(s.env)
		if raw == "" {
			continue
		}
		switch s.typ {
		case kString:
			s.apply(cfg, raw)
		case kInt:
			if i, err := strconv.Atoi(raw); err == nil {
				s.apply(cfg, i)
			} else {
				fmt.Fprintf(os.Stderr, "[WARN] could not parse integer from env var %s=%q: %v. Using default value.\n", s.env, raw, err)
			}
		}
	}
}
