package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/everytech/poptracker/pkg/interfaces"
	"github.com/everytech/poptracker/services/tracker-service/internal/adapters/storage"
	"github.com/everytech/poptracker/services/tracker-service/internal/utils"
)

// Драйверы хранилища, которые понимает Open
const (
	DriverMemory   = "memory"
	DriverPostgres = "postgres"
	DriverRedis    = "redis"
)

// PostgresOptions - параметры подключения к PostgreSQL
type PostgresOptions struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
	Timeout  time.Duration
	PoolSize int
}

// RedisOptions - параметры подключения к Redis
type RedisOptions struct {
	Host         string
	Port         int
	Password     string
	DB           int
	PoolSize     int
	MinIdleConns int
	MaxRetries   int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// Options описывает, какое хранилище открыть
type Options struct {
	Driver     string
	Collection string
	Postgres   PostgresOptions
	Redis      RedisOptions
}

// Open создает хранилище по имени драйвера и проверяет соединение
func Open(ctx context.Context, opts Options, logger interfaces.LoggerPort) (Port, error) {
	switch strings.ToLower(opts.Driver) {
	case DriverMemory, "":
		return storage.NewMemoryStorage(), nil

	case DriverPostgres:
		conStr, err := utils.GenerateConnectionString(
			opts.Postgres.Host,
			opts.Postgres.User,
			opts.Postgres.Password,
			opts.Postgres.DBName,
			opts.Postgres.SSLMode,
			opts.Postgres.Port,
			opts.Postgres.PoolSize,
			opts.Postgres.Timeout,
		)
		if err != nil {
			return nil, fmt.Errorf("invalid postgres settings: %w", err)
		}
		pg, err := storage.NewPostgresStorage(ctx, conStr, opts.Collection, logger)
		if err != nil {
			return nil, err
		}
		return pg, nil

	case DriverRedis:
		rs, err := storage.NewRedisStorage(ctx, storage.RedisConfig{
			Addr:         fmt.Sprintf("%s:%d", opts.Redis.Host, opts.Redis.Port),
			Password:     opts.Redis.Password,
			DB:           opts.Redis.DB,
			PoolSize:     opts.Redis.PoolSize,
			MinIdleConns: opts.Redis.MinIdleConns,
			MaxRetries:   opts.Redis.MaxRetries,
			DialTimeout:  opts.Redis.DialTimeout,
			ReadTimeout:  opts.Redis.ReadTimeout,
			WriteTimeout: opts.Redis.WriteTimeout,
			Collection:   opts.Collection,
		}, logger)
		if err != nil {
			return nil, err
		}
		return rs, nil

	default:
		return nil, fmt.Errorf("%w: %q", utils.ErrUnknownStoreDriver, opts.Driver)
	}
}
