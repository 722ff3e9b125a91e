package main

import (
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type config struct {
	Addr     string `env:"ADDR" envDefault:"0.0.0.0:3000"`
	Origin   string `env:"ORIGIN"`
	LogFile  string `env:"LOG_FILE" envDefault:"push-all-server.log"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	StopTimeout       time.Duration `env:"STOP_TIMEOUT" envDefault:"10s"`
	HeartbeatInterval time.Duration `env:"HEARTBEAT_INTERVAL" envDefault:"30s"`
	ChannelCapacity   int           `env:"CHANNEL_CAPACITY" envDefault:"100"`

	// Zero keeps every channel for the lifetime of the process.
	EvictIdle   time.Duration `env:"EVICT_IDLE" envDefault:"0s"`
	MetricsTick time.Duration `env:"METRICS_TICK" envDefault:"60s"`
}

// loadConfig reads .env (if present), then the environment, then args.
// Flags win over environment variables.
func loadConfig(args []string) (*config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	cfg := &config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}

	flags := flag.NewFlagSet("pushhub", flag.ContinueOnError)
	flags.StringVar(&cfg.Addr, "addr", cfg.Addr, "http service address")
	flags.StringVar(&cfg.Origin, "origin", cfg.Origin, "websocket server checks Origin headers against this scheme://host[:port]")
	flags.StringVar(&cfg.LogFile, "log-file", cfg.LogFile, "append log lines to this file")
	flags.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "debug, info, warn or error")
	flags.DurationVar(&cfg.StopTimeout, "stop-timeout", cfg.StopTimeout, "stop timeout")
	flags.DurationVar(&cfg.HeartbeatInterval, "heartbeat", cfg.HeartbeatInterval, "interval between websocket pings")
	flags.IntVar(&cfg.ChannelCapacity, "capacity", cfg.ChannelCapacity, "messages buffered per subscriber")
	flags.DurationVar(&cfg.EvictIdle, "evict-idle", cfg.EvictIdle, "forget channels without subscribers after this long (0 never forgets)")
	flags.DurationVar(&cfg.MetricsTick, "metrics.tick", cfg.MetricsTick, "metrics: duration between reports")
	if err := flags.Parse(args); err != nil {
		return nil, err
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *config) validate() error {
	if c.Addr == "" {
		return errors.New("addr is required")
	}
	if c.ChannelCapacity < 1 {
		return fmt.Errorf("capacity must be at least 1, got %d", c.ChannelCapacity)
	}
	if c.HeartbeatInterval <= 0 {
		return fmt.Errorf("heartbeat must be positive, got %s", c.HeartbeatInterval)
	}
	if c.EvictIdle < 0 {
		return fmt.Errorf("evict-idle must not be negative, got %s", c.EvictIdle)
	}
	if c.MetricsTick <= 0 {
		return fmt.Errorf("metrics.tick must be positive, got %s", c.MetricsTick)
	}
	return nil
}
