package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Journal backends.
const (
	BackendFile     = "file"
	BackendPostgres = "postgres"
)

type Config struct {
	Port           string   `mapstructure:"PORT"`
	Env            string   `mapstructure:"ENV"`
	LogLevel       string   `mapstructure:"LOG_LEVEL"`
	LogPath        string   `mapstructure:"PRESCRIPTION_LOG_PATH"`
	RemarkLogPath  string   `mapstructure:"REMARK_LOG_PATH"`
	JournalBackend string   `mapstructure:"JOURNAL_BACKEND"`
	DatabaseURL    string   `mapstructure:"DATABASE_URL"`
	DBMaxConns     int32    `mapstructure:"DB_MAX_CONNS"`
	DBMinConns     int32    `mapstructure:"DB_MIN_CONNS"`
	BodyLimit      string   `mapstructure:"BODY_LIMIT"`
	CORSOrigins    []string `mapstructure:"CORS_ORIGINS"`
}

var keys = []string{
	"PORT",
	"ENV",
	"LOG_LEVEL",
	"PRESCRIPTION_LOG_PATH",
	"REMARK_LOG_PATH",
	"JOURNAL_BACKEND",
	"DATABASE_URL",
	"DB_MAX_CONNS",
	"DB_MIN_CONNS",
	"BODY_LIMIT",
	"CORS_ORIGINS",
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.AutomaticEnv()

	v.SetDefault("PORT", "8000")
	v.SetDefault("ENV", "development")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("PRESCRIPTION_LOG_PATH", "presc.txt")
	v.SetDefault("REMARK_LOG_PATH", "remark.txt")
	v.SetDefault("JOURNAL_BACKEND", BackendFile)
	v.SetDefault("DB_MAX_CONNS", 5)
	v.SetDefault("DB_MIN_CONNS", 1)
	v.SetDefault("BODY_LIMIT", "64K")
	v.SetDefault("CORS_ORIGINS", "http://localhost:3000")

	// Bind env vars explicitly so Unmarshal picks them up
	for _, k := range keys {
		_ = v.BindEnv(k)
	}

	// .env is optional
	_ = v.ReadInConfig()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	cfg.JournalBackend = strings.ToLower(strings.TrimSpace(cfg.JournalBackend))
	cfg.CORSOrigins = splitOrigins(cfg.CORSOrigins, v.GetString("CORS_ORIGINS"))

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// splitOrigins handles CORS_ORIGINS arriving either already split or as one
// comma-separated string. Blank entries are dropped.
func splitOrigins(parsed []string, raw string) []string {
	if len(parsed) == 0 && raw != "" {
		parsed = strings.Split(raw, ",")
	}
	var out []string
	for _, o := range parsed {
		for _, part := range strings.Split(o, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

func (c *Config) IsDev() bool {
	return c.Env == "development"
}

// UsesPostgres reports whether journals are written to Postgres.
func (c *Config) UsesPostgres() bool {
	return c.JournalBackend == BackendPostgres
}

// Validate checks that the journal configuration is usable.
func (c *Config) Validate() error {
	switch c.JournalBackend {
	case BackendFile:
		if strings.TrimSpace(c.LogPath) == "" {
			return fmt.Errorf("PRESCRIPTION_LOG_PATH must not be empty")
		}
		if strings.TrimSpace(c.RemarkLogPath) == "" {
			return fmt.Errorf("REMARK_LOG_PATH must not be empty")
		}
	case BackendPostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required when JOURNAL_BACKEND is %q", BackendPostgres)
		}
	default:
		return fmt.Errorf("JOURNAL_BACKEND must be %q or %q, got %q", BackendFile, BackendPostgres, c.JournalBackend)
	}
	return nil
}
