// Package config читает настройки сервиса из переменных окружения.
package config

import (
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

type Config struct {
	PostgresConn  string `envconfig:"POSTGRES_CONN" required:"true"`
	ServerAddress string `envconfig:"SERVER_ADDRESS" default:"0.0.0.0:8080"`
	LogLevel      string `envconfig:"LOG_LEVEL" default:"info"`

	// Без REDIS_ADDR уведомления пишутся в лог.
	RedisAddr     string `envconfig:"REDIS_ADDR"`
	RedisPassword string `envconfig:"REDIS_PASSWORD"`
	RedisDB       int    `envconfig:"REDIS_DB" default:"0"`
	NotifyChannel string `envconfig:"NOTIFY_CHANNEL" default:"bidding.notifications"`

	// OutboxSize 0 включает синхронную отправку без очереди.
	OutboxSize       int           `envconfig:"OUTBOX_SIZE" default:"1024"`
	OutboxWorkers    int           `envconfig:"OUTBOX_WORKERS" default:"4"`
	OutboxMaxRetries uint64        `envconfig:"OUTBOX_MAX_RETRIES" default:"5"`
	OutboxBackoff    time.Duration `envconfig:"OUTBOX_BACKOFF" default:"200ms"`

	ContractExpiryCron       string `envconfig:"CONTRACT_EXPIRY_CRON" default:"0 2 * * *"`
	ContractExpiryWindowDays int    `envconfig:"CONTRACT_EXPIRY_WINDOW_DAYS" default:"14"`
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, errors.Wrap(err, "failed to read environment")
	}
	if cfg.PostgresConn == "" {
		return nil, errors.New("POSTGRES_CONN is empty")
	}
	if _, err := logrus.ParseLevel(cfg.LogLevel); err != nil {
		return nil, errors.Wrapf(err, "LOG_LEVEL")
	}
	if cfg.OutboxSize < 0 || cfg.OutboxWorkers < 1 {
		return nil, errors.New("OUTBOX_SIZE must be >= 0 and OUTBOX_WORKERS >= 1")
	}
	return &cfg, nil
}

// Logger создаёт логгер с JSON-форматом и уровнем из настроек.
func (c *Config) Logger() *logrus.Logger {
	log := logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{})
	level, err := logrus.ParseLevel(c.LogLevel)
	if err != nil {
		level = logrus.InfoLevel
	}
	log.SetLevel(level)
	return log
}
