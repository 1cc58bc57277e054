// Package config loads process-wide settings from the environment, in the
// same shape as the teacher's own config.Load(): os.Getenv with a literal
// fallback per field, grouped by concern.
package config

import (
	"os"
	"strconv"
)

type Config struct {
	HTTPAddr string

	DBDriver string
	DBDSN    string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	RabbitURL      string
	RabbitExchange string

	SentryDSN string

	DefaultMaxRetries  int
	DefaultBaseDelay   float64
	DefaultJobTimeout  int
	WorkerPollInterval int
}

func Load() Config {
	httpAddr := os.Getenv("HTTP_ADDR")
	if httpAddr == "" {
		httpAddr = "127.0.0.1:8000"
	}

	dbDriver := os.Getenv("DB_DRIVER")
	if dbDriver == "" {
		dbDriver = "sqlite"
	}
	dbDSN := os.Getenv("DB_DSN")
	if dbDSN == "" {
		dbDSN = "queuectl.db"
	}

	redisAddr := os.Getenv("REDIS_ADDR")

	redisDB := 0
	if v := os.Getenv("REDIS_DB"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			redisDB = n
		}
	}

	rabbitURL := os.Getenv("RABBIT_URL")
	rabbitExchange := os.Getenv("RABBIT_EXCHANGE")
	if rabbitExchange == "" {
		rabbitExchange = "queuectl.events"
	}

	maxRetries := 3
	if v := os.Getenv("DEFAULT_MAX_RETRIES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			maxRetries = n
		}
	}

	baseDelay := 2.0
	if v := os.Getenv("DEFAULT_BASE_DELAY"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil && f >= 1 {
			baseDelay = f
		}
	}

	jobTimeout := 30
	if v := os.Getenv("DEFAULT_JOB_TIMEOUT_SECONDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			jobTimeout = n
		}
	}

	pollInterval := 1
	if v := os.Getenv("WORKER_POLL_INTERVAL"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			pollInterval = n
		}
	}

	return Config{
		HTTPAddr: httpAddr,

		DBDriver: dbDriver,
		DBDSN:    dbDSN,

		RedisAddr:     redisAddr,
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisDB:       redisDB,

		RabbitURL:      rabbitURL,
		RabbitExchange: rabbitExchange,

		SentryDSN: os.Getenv("SENTRY_DSN"),

		DefaultMaxRetries:  maxRetries,
		DefaultBaseDelay:   baseDelay,
		DefaultJobTimeout:  jobTimeout,
		WorkerPollInterval: pollInterval,
	}
}
