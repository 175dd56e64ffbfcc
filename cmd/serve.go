package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/alanwang67/message_board/config"
	"github.com/alanwang67/message_board/metrics"
	"github.com/alanwang67/message_board/sequencer"
	"github.com/alanwang67/message_board/server"
	"github.com/alanwang67/message_board/store"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func newServeCommand(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve [port]",
		Short: "Run the message board HTTP server",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := bindConfig(v, args)
			if err != nil {
				return err
			}
			return runServe(cmd, cfg)
		},
	}

	flags := cmd.Flags()
	flags.String("host", config.DefaultHost, "address to bind")
	flags.Int("port", config.DefaultPort, "port to bind; the positional argument takes precedence")
	flags.Int("workers", config.DefaultWorkers, "number of worker instances")
	flags.String("body-limit", strconv.Itoa(config.DefaultBodyLimit), "maximum /send body size (e.g. 4096, 4KiB)")
	flags.String("metrics-listen", "", "address for the Prometheus /metrics endpoint (empty disables)")
	flags.Duration("shutdown-timeout", config.DefaultShutdownTimeout, "grace period for in-flight requests on shutdown")
	mustBind(v, flags, "host", "port", "workers", "body-limit", "metrics-listen", "shutdown-timeout")

	return cmd
}

// bindConfig reads the serve settings from flags, env and config file.
func bindConfig(v *viper.Viper, args []string) (config.Config, error) {
	cfg := config.Config{
		Host:            v.GetString("host"),
		Port:            v.GetInt("port"),
		Workers:         v.GetInt("workers"),
		MetricsListen:   v.GetString("metrics-listen"),
		ShutdownTimeout: v.GetDuration("shutdown-timeout"),
		LogLevel:        v.GetString("log-level"),
		LogFormat:       v.GetString("log-format"),
	}
	if len(args) == 1 {
		port, err := strconv.Atoi(args[0])
		if err != nil {
			return cfg, fmt.Errorf("parse port %q: %w", args[0], err)
		}
		cfg.Port = port
	}
	if limit := v.GetString("body-limit"); limit != "" {
		size, err := humanize.ParseBytes(limit)
		if err != nil {
			return cfg, fmt.Errorf("parse body-limit: %w", err)
		}
		cfg.BodyLimit = int64(size)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func runServe(cmd *cobra.Command, cfg config.Config) error {
	logger, err := newLogger(os.Stderr, cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return err
	}

	messages := store.New()
	m := metrics.New(messages)
	pool := server.NewPool(server.PoolConfig{
		Workers:   cfg.Workers,
		BodyLimit: cfg.BodyLimit,
		Sequencer: sequencer.New(),
		Store:     messages,
		Metrics:   m,
		Logger:    logger,
	})
	defer pool.Close()

	logger.Debug("configuration",
		"addr", cfg.Addr(),
		"workers", cfg.Workers,
		"body_limit", humanize.IBytes(uint64(cfg.BodyLimit)),
		"metrics_listen", cfg.MetricsListen,
	)
	return server.NewListener(cfg, pool, m, logger).Start(cmd.Context())
}
