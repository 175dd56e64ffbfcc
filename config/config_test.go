package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateFillsDefaults(t *testing.T) {
	var c Config
	require.NoError(t, c.Validate())

	assert.Equal(t, Default(), c)
	assert.Equal(t, "127.0.0.1:8080", c.Addr())
}

func TestValidateKeepsExplicitValues(t *testing.T) {
	c := Config{
		Host:            "0.0.0.0",
		Port:            9000,
		Workers:         2,
		BodyLimit:       1024,
		MetricsListen:   " :9100 ",
		ShutdownTimeout: time.Second,
		LogLevel:        "DEBUG",
		LogFormat:       "JSON",
	}
	require.NoError(t, c.Validate())

	assert.Equal(t, "0.0.0.0:9000", c.Addr())
	assert.Equal(t, 2, c.Workers)
	assert.Equal(t, int64(1024), c.BodyLimit)
	assert.Equal(t, ":9100", c.MetricsListen)
	assert.Equal(t, "debug", c.LogLevel)
	assert.Equal(t, "json", c.LogFormat)
}

func TestValidateRejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"negative port", func(c *Config) { c.Port = -1 }},
		{"port too large", func(c *Config) { c.Port = 70000 }},
		{"negative workers", func(c *Config) { c.Workers = -3 }},
		{"negative body limit", func(c *Config) { c.BodyLimit = -1 }},
		{"unknown log level", func(c *Config) { c.LogLevel = "verbose" }},
		{"unknown log format", func(c *Config) { c.LogFormat = "xml" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Default()
			tt.mutate(&c)
			assert.Error(t, c.Validate())
		})
	}
}

func TestAddrIPv6(t *testing.T) {
	c := Config{Host: "::1", Port: 8080}
	assert.Equal(t, "[::1]:8080", c.Addr())
}
