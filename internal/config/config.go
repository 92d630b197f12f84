package config

import (
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
)

type Config struct {
	// DATABASE_URL: postgres://... for PostgreSQL, anything else is a SQLite path
	DatabaseURL string `env:"DATABASE_URL" envDefault:"rentalhousing.db"`

	JWTSecret string        `env:"JWT_SECRET,required"`
	JWTTTL    time.Duration `env:"JWT_TTL" envDefault:"24h"`

	// RABBITMQ_URL is optional; when empty, booking events are only pushed
	// to connected websocket clients and logged.
	RabbitURL string `env:"RABBITMQ_URL"`

	HTTPAddr string `env:"HTTP_ADDR" envDefault:":8080"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
}

func Load() (*Config, error) {
	// .env is for local development only; missing file is fine
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
