// Package config loads showroom settings: built-in defaults, then an optional
// YAML file named by SHOWROOM_CONFIG, then environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds every setting shared by the server and the CLI.
type Config struct {
	Port       string `yaml:"port"`
	CORSOrigin string `yaml:"cors_origin"`
	LogLevel   string `yaml:"log_level"`

	CarQueryURL string        `yaml:"carquery_url"`
	LookupRPS   float64       `yaml:"lookup_rps"`
	Timeout     time.Duration `yaml:"timeout"`

	CarAPIURL    string `yaml:"carapi_url"`
	CarAPIToken  string `yaml:"carapi_token"`
	CarAPIRelay  string `yaml:"carapi_relay"`
	PriceWorkers int    `yaml:"price_workers"`

	Storage    string `yaml:"storage"` // memory, sqlite or neo4j
	SQLitePath string `yaml:"sqlite_path"`
	Neo4jURL   string `yaml:"neo4j_url"`
	Neo4jUser  string `yaml:"neo4j_user"`
	Neo4jPass  string `yaml:"neo4j_pass"`

	NATSURL string `yaml:"nats_url"`

	MinYear int `yaml:"min_year"`
	MaxYear int `yaml:"max_year"`
}

// Default returns the settings used when nothing is configured.
func Default() Config {
	return Config{
		Port:         "8080",
		CORSOrigin:   "*",
		LogLevel:     "info",
		CarQueryURL:  "https://www.carqueryapi.com/api/0.3/",
		LookupRPS:    5,
		Timeout:      10 * time.Second,
		CarAPIURL:    "https://carapi.app/api",
		PriceWorkers: 2,
		Storage:      "memory",
		SQLitePath:   "showroom.db",
		Neo4jURL:     "neo4j://localhost:7687",
		Neo4jUser:    "neo4j",
		Neo4jPass:    "password",
		MinYear:      2000,
		MaxYear:      2020,
	}
}

// Load builds a Config from the process environment.
func Load() (Config, error) {
	return LoadFrom(os.Getenv)
}

// LoadFrom is Load with an injectable environment lookup.
func LoadFrom(getenv func(string) string) (Config, error) {
	cfg := Default()
	if path := getenv("SHOWROOM_CONFIG"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("config: read %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}
	if err := cfg.applyEnv(getenv); err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}

func (c *Config) applyEnv(getenv func(string) string) error {
	envOr := func(key, fallback string) string {
		if v := getenv(key); v != "" {
			return v
		}
		return fallback
	}

	c.Port = envOr("PORT", c.Port)
	c.CORSOrigin = envOr("CORS_ORIGIN", c.CORSOrigin)
	c.LogLevel = envOr("LOG_LEVEL", c.LogLevel)
	c.CarQueryURL = envOr("CARQUERY_URL", c.CarQueryURL)
	c.CarAPIURL = envOr("CARAPI_URL", c.CarAPIURL)
	c.CarAPIToken = envOr("CARAPI_TOKEN", c.CarAPIToken)
	c.CarAPIRelay = envOr("CARAPI_RELAY", c.CarAPIRelay)
	c.Storage = envOr("STORAGE", c.Storage)
	c.SQLitePath = envOr("SQLITE_PATH", c.SQLitePath)
	c.Neo4jURL = envOr("NEO4J_URL", c.Neo4jURL)
	c.Neo4jUser = envOr("NEO4J_USER", c.Neo4jUser)
	c.Neo4jPass = envOr("NEO4J_PASS", c.Neo4jPass)
	c.NATSURL = envOr("NATS_URL", c.NATSURL)

	var errs []error
	intVar := func(key string, dst *int) {
		if v := getenv(key); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("config: %s: %w", key, err))
				return
			}
			*dst = n
		}
	}
	intVar("PRICE_WORKERS", &c.PriceWorkers)
	intVar("MIN_YEAR", &c.MinYear)
	intVar("MAX_YEAR", &c.MaxYear)

	if v := getenv("LOOKUP_RPS"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			errs = append(errs, fmt.Errorf("config: LOOKUP_RPS: %w", err))
		} else {
			c.LookupRPS = f
		}
	}
	if v := getenv("HTTP_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("config: HTTP_TIMEOUT: %w", err))
		} else {
			c.Timeout = d
		}
	}
	return errors.Join(errs...)
}

// Validate reports settings that cannot work together.
func (c Config) Validate() error {
	switch c.Storage {
	case "memory", "sqlite", "neo4j":
	default:
		return fmt.Errorf("config: unknown storage %q", c.Storage)
	}
	if c.PriceWorkers < 1 {
		return fmt.Errorf("config: price_workers must be at least 1, got %d", c.PriceWorkers)
	}
	if c.MinYear > c.MaxYear {
		return fmt.Errorf("config: min_year %d after max_year %d", c.MinYear, c.MaxYear)
	}
	if c.LookupRPS <= 0 {
		return fmt.Errorf("config: lookup_rps must be positive")
	}
	return nil
}
