package config

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Port        int      `env:"PORT,default=8080"`
	LogLevel    string   `env:"LOG_LEVEL,default=info"`
	LogFormat   string   `env:"LOG_FORMAT,default=json"`
	CORSOrigins []string `env:"CORS_ORIGINS"`

	// DatabaseURL is optional. When empty, the v1 API-client surface is
	// disabled and the service runs purely in-memory.
	DatabaseURL string `env:"DATABASE_URL"`

	AdminUsername string `env:"ADMIN_USERNAME,default=admin"`
	AdminPassword string `env:"ADMIN_PASSWORD,default=admin123"`

	// DispenseAmount is the fixed per-request grant in MIST (1e-9 SUI).
	DispenseAmount string        `env:"DISPENSE_AMOUNT,default=100000000"`
	WalletCooldown time.Duration `env:"WALLET_COOLDOWN,default=1h"`
	IPWindow       time.Duration `env:"IP_WINDOW,default=1h"`
	IPMaxPerWindow int           `env:"IP_MAX_PER_WINDOW,default=100"`

	BroadcastTimeout     time.Duration `env:"BROADCAST_TIMEOUT,default=30s"`
	BroadcastFailureRate float64       `env:"BROADCAST_FAILURE_RATE,default=0.05"`
	BroadcastMinDelay    time.Duration `env:"BROADCAST_MIN_DELAY,default=1s"`
	BroadcastMaxDelay    time.Duration `env:"BROADCAST_MAX_DELAY,default=3s"`
	ExplorerBaseURL      string        `env:"EXPLORER_BASE_URL,default=https://suiscan.xyz/testnet/tx/"`

	// HTTP server timeouts
	ReadTimeout  time.Duration `env:"HTTP_READ_TIMEOUT,default=15s"`
	WriteTimeout time.Duration `env:"HTTP_WRITE_TIMEOUT,default=60s"`
	IdleTimeout  time.Duration `env:"HTTP_IDLE_TIMEOUT,default=60s"`
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(context.Background(), &cfg); err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("PORT must be between 1 and 65535, got %d", c.Port)
	}

	if c.LogFormat != "json" && c.LogFormat != "console" {
		return fmt.Errorf("LOG_FORMAT must be 'json' or 'console', got %q", c.LogFormat)
	}

	for _, r := range c.DispenseAmount {
		if r < '0' || r > '9' {
			return fmt.Errorf("DISPENSE_AMOUNT must be a base-unit integer, got %q", c.DispenseAmount)
		}
	}
	if strings.Trim(c.DispenseAmount, "0") == "" {
		return fmt.Errorf("DISPENSE_AMOUNT must be positive, got %q", c.DispenseAmount)
	}

	if c.WalletCooldown <= 0 {
		return fmt.Errorf("WALLET_COOLDOWN must be positive, got %s", c.WalletCooldown)
	}
	if c.IPWindow <= 0 {
		return fmt.Errorf("IP_WINDOW must be positive, got %s", c.IPWindow)
	}
	if c.IPMaxPerWindow < 1 {
		return fmt.Errorf("IP_MAX_PER_WINDOW must be at least 1, got %d", c.IPMaxPerWindow)
	}

	if c.BroadcastFailureRate < 0 || c.BroadcastFailureRate > 1 {
		return fmt.Errorf("BROADCAST_FAILURE_RATE must be between 0 and 1, got %v", c.BroadcastFailureRate)
	}
	if c.BroadcastMinDelay < 0 || c.BroadcastMaxDelay < c.BroadcastMinDelay {
		return fmt.Errorf("broadcast delay range is invalid: min=%s max=%s", c.BroadcastMinDelay, c.BroadcastMaxDelay)
	}
	if c.BroadcastTimeout <= 0 {
		return fmt.Errorf("BROADCAST_TIMEOUT must be positive, got %s", c.BroadcastTimeout)
	}

	if c.AdminUsername == "" || c.AdminPassword == "" {
		return fmt.Errorf("ADMIN_USERNAME and ADMIN_PASSWORD must not be empty")
	}

	return nil
}
