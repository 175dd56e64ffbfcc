package config

import (
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"
)

const (
	DefaultHost            = "127.0.0.1"
	DefaultPort            = 8080
	DefaultWorkers         = 8
	DefaultBodyLimit       = 4096
	DefaultShutdownTimeout = 5 * time.Second
	DefaultLogLevel        = "info"
	DefaultLogFormat       = "text"
)

// Config holds the settings of one board server process.
type Config struct {
	Host            string
	Port            int
	Workers         int
	BodyLimit       int64 // maximum /send body size in bytes
	MetricsListen   string
	ShutdownTimeout time.Duration
	LogLevel        string
	LogFormat       string
}

func Default() Config {
	return Config{
		Host:            DefaultHost,
		Port:            DefaultPort,
		Workers:         DefaultWorkers,
		BodyLimit:       DefaultBodyLimit,
		ShutdownTimeout: DefaultShutdownTimeout,
		LogLevel:        DefaultLogLevel,
		LogFormat:       DefaultLogFormat,
	}
}

// Validate fills zero values with defaults and rejects settings the server
// cannot run with.
func (c *Config) Validate() error {
	c.Host = strings.TrimSpace(c.Host)
	if c.Host == "" {
		c.Host = DefaultHost
	}
	if c.Port == 0 {
		c.Port = DefaultPort
	}
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("config: port %d out of range", c.Port)
	}
	if c.Workers == 0 {
		c.Workers = DefaultWorkers
	}
	if c.Workers < 0 {
		return fmt.Errorf("config: workers must be at least 1, got %d", c.Workers)
	}
	if c.BodyLimit == 0 {
		c.BodyLimit = DefaultBodyLimit
	}
	if c.BodyLimit < 0 {
		return fmt.Errorf("config: body limit must be positive, got %d", c.BodyLimit)
	}
	if c.ShutdownTimeout <= 0 {
		c.ShutdownTimeout = DefaultShutdownTimeout
	}
	c.MetricsListen = strings.TrimSpace(c.MetricsListen)

	c.LogLevel = strings.ToLower(strings.TrimSpace(c.LogLevel))
	if c.LogLevel == "" {
		c.LogLevel = DefaultLogLevel
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error", "fatal":
	default:
		return fmt.Errorf("config: unknown log level %q", c.LogLevel)
	}

	c.LogFormat = strings.ToLower(strings.TrimSpace(c.LogFormat))
	if c.LogFormat == "" {
		c.LogFormat = DefaultLogFormat
	}
	switch c.LogFormat {
	case "text", "json", "logfmt":
	default:
		return fmt.Errorf("config: log format must be text, json or logfmt, got %q", c.LogFormat)
	}
	return nil
}

// Addr is the host:port the board listens on.
func (c Config) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}
