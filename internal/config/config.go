package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/vaughan-dsouza/bookcart/internal/db"
	"github.com/vaughan-dsouza/bookcart/internal/token"
	"gopkg.in/yaml.v3"
)

// Config holds process settings. Values come from an optional YAML file
// (CONFIG_FILE), then environment variables, which win.
type Config struct {
	Port          string `yaml:"port"`
	LogLevel      string `yaml:"logLevel"`
	DBDriver      string `yaml:"dbDriver"`
	DatabaseURL   string `yaml:"databaseURL"`
	DBMaxOpen     int    `yaml:"dbMaxOpen"`
	DBMaxIdle     int    `yaml:"dbMaxIdle"`
	DBMaxLifetime int    `yaml:"dbMaxLifetime"` // seconds
	JWTKeys       string `yaml:"jwtKeys"`
	JWTActiveKID  string `yaml:"jwtActiveKid"`
	JWTSecret     string `yaml:"jwtSecret"`
	RedisAddr     string `yaml:"redisAddr"`
	RedisPassword string `yaml:"redisPassword"`
	StaticDir     string `yaml:"staticDir"`
}

func defaults() Config {
	return Config{
		Port:          "3000",
		LogLevel:      "info",
		DBDriver:      db.DriverSQLite,
		DatabaseURL:   "database.db",
		DBMaxOpen:     25,
		DBMaxIdle:     25,
		DBMaxLifetime: 300,
	}
}

// Load reads .env (if present), the YAML file named by CONFIG_FILE (if
// set) and the environment, then validates the result.
func Load() (Config, error) {
	if err := loadDotenv(".env"); err != nil {
		return Config{}, err
	}

	cfg := defaults()
	if path := strings.TrimSpace(os.Getenv("CONFIG_FILE")); path != "" {
		if err := loadFile(path, &cfg); err != nil {
			return cfg, err
		}
	}
	if err := applyEnv(&cfg); err != nil {
		return cfg, err
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// loadDotenv applies path to the environment. A missing file is not an
// error; an unreadable or malformed one is.
func loadDotenv(path string) error {
	err := godotenv.Load(path)
	if err == nil || errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return fmt.Errorf("load %s: %w", path, err)
}

func loadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config: %w", err)
	}
	return nil
}

func applyEnv(cfg *Config) error {
	str := map[string]*string{
		"PORT":           &cfg.Port,
		"LOG_LEVEL":      &cfg.LogLevel,
		"DB_DRIVER":      &cfg.DBDriver,
		"DATABASE_URL":   &cfg.DatabaseURL,
		"JWT_KEYS":       &cfg.JWTKeys,
		"JWT_ACTIVE_KID": &cfg.JWTActiveKID,
		"JWT_SECRET":     &cfg.JWTSecret,
		"REDIS_ADDR":     &cfg.RedisAddr,
		"REDIS_PASSWORD": &cfg.RedisPassword,
		"STATIC_DIR":     &cfg.StaticDir,
	}
	for key, dst := range str {
		if v := strings.TrimSpace(os.Getenv(key)); v != "" {
			*dst = v
		}
	}

	ints := map[string]*int{
		"DB_MAX_OPEN":     &cfg.DBMaxOpen,
		"DB_MAX_IDLE":     &cfg.DBMaxIdle,
		"DB_MAX_LIFETIME": &cfg.DBMaxLifetime,
	}
	for key, dst := range ints {
		v := strings.TrimSpace(os.Getenv(key))
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("config: %s must be an integer: %w", key, err)
		}
		*dst = n
	}
	return nil
}

func (c Config) Validate() error {
	if c.Port == "" {
		return errors.New("config: port is required")
	}
	if c.DBDriver != db.DriverSQLite && c.DBDriver != db.DriverPostgres {
		return fmt.Errorf("config: unknown DB_DRIVER %q", c.DBDriver)
	}
	if c.DatabaseURL == "" {
		return errors.New("config: DATABASE_URL is required")
	}
	if _, err := c.Keyring(); err != nil {
		return err
	}
	return nil
}

// Keyring builds the token signing keys. JWT_KEYS takes precedence over
// the single JWT_SECRET.
func (c Config) Keyring() (token.Keyring, error) {
	if strings.TrimSpace(c.JWTKeys) != "" {
		return token.ParseKeyring(c.JWTKeys, c.JWTActiveKID)
	}
	if c.JWTSecret == "" {
		return token.Keyring{}, errors.New("config: JWT_KEYS or JWT_SECRET is required")
	}
	return token.SingleKey("default", c.JWTSecret), nil
}

func (c Config) Pool() db.Pool {
	return db.Pool{
		MaxOpen:     c.DBMaxOpen,
		MaxIdle:     c.DBMaxIdle,
		MaxLifetime: time.Duration(c.DBMaxLifetime) * time.Second,
	}
}
