// Package config reads onnxdims settings from the environment.
package config

import (
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"github.com/zerfoo/onnxdims/pkg/downloader"
)

// Environment variables read by FromEnv.
const (
	EnvLogLevel    = "ONNXDIMS_LOG_LEVEL"
	EnvHTTPTimeout = "ONNXDIMS_HTTP_TIMEOUT"
	EnvHFAPIKey    = "HF_API_KEY"
	EnvHFCDNURL    = "HUGGINGFACE_CDN_URL"
)

const (
	DefaultLogLevel    = slog.LevelWarn
	DefaultHTTPTimeout = 60 * time.Second
)

// Config holds the runtime settings.
type Config struct {
	LogLevel    slog.Level
	HTTPTimeout time.Duration
	HFAPIKey    string
	HFCDNURL    string
}

// FromEnv builds a Config from getenv, normally os.Getenv. Unset variables
// take their defaults; malformed ones are errors.
func FromEnv(getenv func(string) string) (*Config, error) {
	cfg := &Config{
		LogLevel:    DefaultLogLevel,
		HTTPTimeout: DefaultHTTPTimeout,
		HFAPIKey:    getenv(EnvHFAPIKey),
		HFCDNURL:    downloader.DefaultHuggingFaceCDN,
	}

	if v := getenv(EnvLogLevel); v != "" {
		if err := cfg.LogLevel.UnmarshalText([]byte(v)); err != nil {
			return nil, fmt.Errorf("invalid %s %q: %w", EnvLogLevel, v, err)
		}
	}

	if v := getenv(EnvHTTPTimeout); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("invalid %s %q: %w", EnvHTTPTimeout, v, err)
		}
		if d <= 0 {
			return nil, fmt.Errorf("invalid %s %q: must be positive", EnvHTTPTimeout, v)
		}
		cfg.HTTPTimeout = d
	}

	if v := getenv(EnvHFCDNURL); v != "" {
		u, err := url.Parse(v)
		if err != nil {
			return nil, fmt.Errorf("invalid %s %q: %w", EnvHFCDNURL, v, err)
		}
		if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return nil, fmt.Errorf("invalid %s %q: want an http(s) URL", EnvHFCDNURL, v)
		}
		cfg.HFCDNURL = v
	}

	return cfg, nil
}
