package config

import (
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func envFrom(vars map[string]string) func(string) string {
	return func(key string) string { return vars[key] }
}

func TestFromEnv_Defaults(t *testing.T) {
	cfg, err := FromEnv(envFrom(nil))
	require.NoError(t, err)
	assert.Equal(t, slog.LevelWarn, cfg.LogLevel)
	assert.Equal(t, 60*time.Second, cfg.HTTPTimeout)
	assert.Equal(t, "https://huggingface.co/", cfg.HFCDNURL)
	assert.Empty(t, cfg.HFAPIKey)
}

func TestFromEnv_Overrides(t *testing.T) {
	cfg, err := FromEnv(envFrom(map[string]string{
		EnvLogLevel:    "DEBUG",
		EnvHTTPTimeout: "5s",
		EnvHFAPIKey:    "secret",
		EnvHFCDNURL:    "http://127.0.0.1:8080/",
	}))
	require.NoError(t, err)
	assert.Equal(t, slog.LevelDebug, cfg.LogLevel)
	assert.Equal(t, 5*time.Second, cfg.HTTPTimeout)
	assert.Equal(t, "secret", cfg.HFAPIKey)
	assert.Equal(t, "http://127.0.0.1:8080/", cfg.HFCDNURL)
}

func TestFromEnv_Invalid(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  string
	}{
		{name: "log level", key: EnvLogLevel, val: "loud"},
		{name: "timeout syntax", key: EnvHTTPTimeout, val: "soon"},
		{name: "timeout negative", key: EnvHTTPTimeout, val: "-1s"},
		{name: "cdn scheme", key: EnvHFCDNURL, val: "ftp://mirror/"},
		{name: "cdn host", key: EnvHFCDNURL, val: "https://"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := FromEnv(envFrom(map[string]string{tt.key: tt.val}))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.key)
		})
	}
}
