package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment override, e.g. QUIZ_ADMIN_USERNAME.
const EnvPrefix = "QUIZ_"

const (
	StorageJSON     = "json"
	StorageSQLite   = "sqlite"
	StoragePostgres = "postgres"

	CatalogBuiltin  = "builtin"
	CatalogFile     = "file"
	CatalogPostgres = "postgres"
)

type Config struct {
	Admin    AdminConfig    `yaml:"admin" envPrefix:"ADMIN_"`
	Storage  StorageConfig  `yaml:"storage" envPrefix:"STORAGE_"`
	Catalog  CatalogConfig  `yaml:"catalog" envPrefix:"CATALOG_"`
	Redis    RedisConfig    `yaml:"redis" envPrefix:"REDIS_"`
	Postgres PostgresConfig `yaml:"postgres" envPrefix:"POSTGRES_"`
	Seed     SeedConfig     `yaml:"seed" envPrefix:"SEED_"`
}

type AdminConfig struct {
	Username string `yaml:"username" env:"USERNAME"`
	Password string `yaml:"password" env:"PASSWORD"`
}

type StorageConfig struct {
	Driver   string `yaml:"driver" env:"DRIVER"`
	Path     string `yaml:"path" env:"PATH"`
	DSN      string `yaml:"dsn" env:"DSN"`
	Autosave bool   `yaml:"autosave" env:"AUTOSAVE"`
}

type CatalogConfig struct {
	Source string `yaml:"source" env:"SOURCE"`
	File   string `yaml:"file" env:"FILE"`
	TTL    string `yaml:"ttl" env:"TTL"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr" env:"ADDR"`
	Password string `yaml:"password" env:"PASSWORD"`
	DB       int    `yaml:"db" env:"DB"`
}

type PostgresConfig struct {
	URL string `yaml:"url" env:"URL"`
}

type SeedConfig struct {
	SampleStudent bool `yaml:"sample_student" env:"SAMPLE_STUDENT"`
}

// Default returns the configuration used when no file or env overrides exist.
func Default() Config {
	return Config{
		Admin:   AdminConfig{Username: "admin", Password: "adminpass"},
		Storage: StorageConfig{Driver: StorageJSON, Path: "quiz_app_data.json"},
		Catalog: CatalogConfig{Source: CatalogBuiltin, TTL: "10m"},
		Seed:    SeedConfig{SampleStudent: true},
	}
}

// Load reads YAML config from path on top of Default, then applies QUIZ_*
// environment overrides. A missing file is not an error.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return cfg, err
		default:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return cfg, err
			}
		}
	}
	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return cfg, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}

// TTLDuration parses a duration string or returns the fallback if empty.
func TTLDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	return fallback
}
