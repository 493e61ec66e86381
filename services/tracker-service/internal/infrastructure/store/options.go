package store

import "github.com/everytech/poptracker/services/tracker-service/config"

// OptionsFromConfig собирает параметры хранилища из конфигурации сервиса
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		Driver:     cfg.Store.Driver,
		Collection: cfg.Store.Collection,
		Postgres: PostgresOptions{
			Host:     cfg.Postgres.Host,
			Port:     cfg.Postgres.Port,
			User:     cfg.Postgres.User,
			Password: cfg.Postgres.Password,
			DBName:   cfg.Postgres.DBName,
			SSLMode:  cfg.Postgres.SSLMode,
			Timeout:  cfg.Postgres.Timeout,
			PoolSize: cfg.Postgres.PoolSize,
		},
		Redis: RedisOptions{
			Host:         cfg.Redis.Host,
			Port:         cfg.Redis.Port,
			Password:     cfg.Redis.Password,
			DB:           cfg.Redis.DB,
			PoolSize:     cfg.Redis.PoolSize,
			MinIdleConns: cfg.Redis.MinIdleConns,
			MaxRetries:   cfg.Redis.MaxRetries,
			DialTimeout:  cfg.Redis.ConnectTimeout,
			ReadTimeout:  cfg.Redis.ReadTimeout,
			WriteTimeout: cfg.Redis.WriteTimeout,
		},
	}
}
