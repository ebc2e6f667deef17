package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds the server settings read from the environment.
type Config struct {
	Addr           string
	TLSCert        string
	TLSKey         string
	DatabaseURL    string
	TokenKey       string
	RateLimit      float64
	RateBurst      int
	BatchWorkers   int
	MaxUploadBytes int64
}

// Load reads the optional .env files, then the environment. Variables
// already set in the environment win over the file.
func Load(files ...string) (*Config, error) {
	if err := godotenv.Load(files...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load env file: %w", err)
	}

	cfg := &Config{
		Addr:        getEnv("ADDR", ":8443"),
		TLSCert:     os.Getenv("TLS_CERT"),
		TLSKey:      os.Getenv("TLS_KEY"),
		DatabaseURL: getEnv("DATABASE_URL", "user=postgres dbname=postgres password=password sslmode=disable"),
		TokenKey:    os.Getenv("TOKEN_KEY"),
	}
	var err error
	if cfg.RateLimit, err = getFloat("RATE_LIMIT", 1); err != nil {
		return nil, err
	}
	if cfg.RateBurst, err = getInt("RATE_BURST", 3); err != nil {
		return nil, err
	}
	if cfg.BatchWorkers, err = getInt("BATCH_WORKERS", 0); err != nil {
		return nil, err
	}
	upload, err := getInt("MAX_UPLOAD_BYTES", 10<<20)
	if err != nil {
		return nil, err
	}
	cfg.MaxUploadBytes = int64(upload)
	return cfg, nil
}

// Validate checks what the HTTP server cannot start without.
func (c *Config) Validate() error {
	if c.TokenKey == "" {
		return errors.New("TOKEN_KEY environment variable is not set")
	}
	if c.RateLimit <= 0 || c.RateBurst <= 0 {
		return errors.New("RATE_LIMIT and RATE_BURST must be positive")
	}
	if (c.TLSCert == "") != (c.TLSKey == "") {
		return errors.New("TLS_CERT and TLS_KEY must be set together")
	}
	return nil
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getInt(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}

func getFloat(key string, def float64) (float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return f, nil
}
