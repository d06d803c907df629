package main

import (
	"log/slog"
	"time"

	"github.com/fastprodman/dragonhoard/internal/config"
	"github.com/fastprodman/dragonhoard/internal/gateway"
)

type apiConfig struct {
	Port            uint16        `env:"APP_PORT" envDefault:"8080"`
	LogLevel        slog.Level    `env:"APP_LOG_LEVEL" envDefault:"INFO"`
	ShutdownTimeout time.Duration `env:"APP_SHUTDOWN_TIMEOUT" envDefault:"10s"`
	PublicURL       string        `env:"APP_PUBLIC_URL" envDefault:"http://localhost:3000"`
	Postgres        config.PostgresConfig
	Stripe          gateway.Config
}
