package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/time/rate"

	"github.com/jquevedomolina/Pumping-Station/internal/logx"
)

const (
	DefaultServiceURL     = "http://localhost:8000"
	DefaultListenAddr     = ":8080"
	DefaultRequestTimeout = 60 * time.Second
)

// Config holds the runtime settings shared by the web host and the CLI.
type Config struct {
	ServiceURL     string
	ListenAddr     string
	RequestTimeout time.Duration
	LogLevel       logx.Level
	Locale         string
	RateLimit      rate.Limit
	RateBurst      int
	ChartWidth     int
	ChartHeight    int
	TLSCert        string
	TLSKey         string
	ReportDir      string
}

// Load reads an optional .env file and then the process environment.
func Load(files ...string) (Config, error) {
	if err := godotenv.Load(files...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("loading env file: %w", err)
	}
	return FromEnv(os.Getenv)
}

// FromEnv builds a Config from a lookup function, applying defaults.
func FromEnv(getenv func(string) string) (Config, error) {
	cfg := Config{
		ServiceURL:     strings.TrimRight(envOr(getenv, "PUMPING_SERVICE_URL", DefaultServiceURL), "/"),
		ListenAddr:     envOr(getenv, "LISTEN_ADDR", DefaultListenAddr),
		RequestTimeout: DefaultRequestTimeout,
		Locale:         envOr(getenv, "LOCALE", "es"),
		RateLimit:      1,
		RateBurst:      3,
		ChartWidth:     900,
		ChartHeight:    480,
		TLSCert:        getenv("TLS_CERT"),
		TLSKey:         getenv("TLS_KEY"),
		ReportDir:      envOr(getenv, "REPORT_DIR", "."),
	}

	var err error
	if cfg.LogLevel, err = logx.ParseLevel(getenv("LOG_LEVEL")); err != nil {
		return Config{}, fmt.Errorf("LOG_LEVEL: %w", err)
	}
	if v := getenv("REQUEST_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return Config{}, fmt.Errorf("REQUEST_TIMEOUT: %w", err)
		}
		cfg.RequestTimeout = d
	}
	if v := getenv("RATE_LIMIT"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return Config{}, fmt.Errorf("RATE_LIMIT: %w", err)
		}
		cfg.RateLimit = rate.Limit(f)
	}
	if cfg.RateBurst, err = intEnv(getenv, "RATE_BURST", cfg.RateBurst); err != nil {
		return Config{}, err
	}
	if cfg.ChartWidth, err = intEnv(getenv, "CHART_WIDTH", cfg.ChartWidth); err != nil {
		return Config{}, err
	}
	if cfg.ChartHeight, err = intEnv(getenv, "CHART_HEIGHT", cfg.ChartHeight); err != nil {
		return Config{}, err
	}
	if (cfg.TLSCert == "") != (cfg.TLSKey == "") {
		return Config{}, errors.New("TLS_CERT and TLS_KEY must be set together")
	}
	return cfg, nil
}

// TLS reports whether the web host should serve HTTPS.
func (c Config) TLS() bool { return c.TLSCert != "" && c.TLSKey != "" }

func envOr(getenv func(string) string, key, def string) string {
	if v := strings.TrimSpace(getenv(key)); v != "" {
		return v
	}
	return def
}

func intEnv(getenv func(string) string, key string, def int) (int, error) {
	v := strings.TrimSpace(getenv(key))
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	if n <= 0 {
		return 0, fmt.Errorf("%s must be positive, got %d", key, n)
	}
	return n, nil
}
