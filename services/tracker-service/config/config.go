package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config содержит все настройки сервиса
type Config struct {
	AppName  string
	Version  string
	LogLevel string
	ENV      string

	Server struct {
		Host            string
		Port            int
		ReadTimeout     time.Duration
		WriteTimeout    time.Duration
		ShutdownTimeout time.Duration
		RequestTimeout  time.Duration // таймаут для обычных (не потоковых) запросов
		BodyLimit       int           // максимальный размер запроса в МБ
	}

	Store struct {
		Driver     string // memory | postgres | redis
		Collection string // ключи redis или колонка collection в postgres
	}

	Postgres struct {
		Host     string
		Port     int
		User     string
		Password string
		DBName   string
		SSLMode  string
		Timeout  time.Duration
		PoolSize int // размер пула соединений
	}

	Redis struct {
		Host           string
		Port           int
		Password       string
		DB             int
		PoolSize       int           // размер пула соединений
		MinIdleConns   int           // минимальное количество неактивных соединений
		ConnectTimeout time.Duration // таймаут соединения
		ReadTimeout    time.Duration // таймаут чтения
		WriteTimeout   time.Duration // таймаут записи
		MaxRetries     int           // максимальное количество повторных попыток
	}

	Kafka struct {
		Enabled              bool
		Brokers              []string
		GroupID              string
		ProductEventsTopic   string
		ProductCommandsTopic string
		AutoOffsetReset      string
		PollTimeout          time.Duration
		Partitions           int
		ReplicationFactor    int
	}

	Metrics struct {
		Enabled     bool
		ServiceName string
		Endpoint    string
		Port        int
	}

	Security struct {
		CORSAllowOrigins []string
	}

	RateLimit struct {
		Enabled  bool
		Requests int           // запросов за окно на один IP
		Window   time.Duration // длина окна
	}

	Drafts struct {
		TTL             time.Duration // время жизни неактивного черновика
		CleanupInterval time.Duration
		DefaultCountry  string
	}
}

// Load загружает конфигурацию из файла и переменных окружения
func Load(configPath string) (*Config, error) {
	configFile := "config"
	if configPath != "" {
		configFile = configPath
	}

	v := viper.New()

	v.SetConfigName(configFile)
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("../config")
	v.AddConfigPath("../../config")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("ошибка чтения файла конфигурации: %w", err)
		}
		// Файла нет - работаем на значениях по умолчанию и переменных окружения
	}

	setDefaults(v)

	if err := bindEnvVariables(v); err != nil {
		return nil, fmt.Errorf("ошибка привязки переменных окружения: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("ошибка десериализации конфигурации: %w", err)
	}

	cfg.ENV = v.GetString("env")
	if cfg.ENV == "" {
		cfg.ENV = "development"
		if envVar := os.Getenv("APP_ENV"); envVar != "" {
			cfg.ENV = envVar
		}
	}

	// Переменные окружения со списками приходят одной строкой через запятую
	cfg.Kafka.Brokers = splitList(cfg.Kafka.Brokers)
	cfg.Security.CORSAllowOrigins = splitList(cfg.Security.CORSAllowOrigins)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate проверяет согласованность настроек
func (c *Config) Validate() error {
	switch strings.ToLower(c.Store.Driver) {
	case "memory", "postgres", "redis":
	default:
		return fmt.Errorf("invalid store.driver %q: expected memory, postgres or redis", c.Store.Driver)
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server.port %d", c.Server.Port)
	}
	if c.RateLimit.Enabled && (c.RateLimit.Requests <= 0 || c.RateLimit.Window <= 0) {
		return fmt.Errorf("invalid rateLimit: requests=%d window=%s", c.RateLimit.Requests, c.RateLimit.Window)
	}
	if c.Kafka.Enabled && len(c.Kafka.Brokers) == 0 {
		return errors.New("kafka.brokers is empty")
	}
	return nil
}

// IsProduction сообщает, запущен ли сервис в production-окружении
func (c *Config) IsProduction() bool {
	return c.ENV == "production"
}

func splitList(values []string) []string {
	out := make([]string, 0, len(values))
	for _, value := range values {
		for _, part := range strings.Split(value, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

// setDefaults устанавливает значения по умолчанию
func setDefaults(v *viper.Viper) {
	// Основные настройки
	v.SetDefault("appName", "tracker-service")
	v.SetDefault("version", "1.0.0")
	v.SetDefault("logLevel", "info")
	v.SetDefault("env", "development")

	// Настройки сервера
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.readTimeout", "10s")
	v.SetDefault("server.writeTimeout", "0s") // SSE держит соединение открытым
	v.SetDefault("server.shutdownTimeout", "5s")
	v.SetDefault("server.requestTimeout", "30s")
	v.SetDefault("server.bodyLimit", 1)

	// Хранилище
	v.SetDefault("store.driver", "memory")
	v.SetDefault("store.collection", "PRODUCTS")

	// Настройки Postgres
	v.SetDefault("postgres.host", "localhost")
	v.SetDefault("postgres.port", 5432)
	v.SetDefault("postgres.user", "postgres")
	v.SetDefault("postgres.password", "postgres")
	v.SetDefault("postgres.dbname", "poptracker")
	v.SetDefault("postgres.sslmode", "disable")
	v.SetDefault("postgres.timeout", "5s")
	v.SetDefault("postgres.poolSize", 10)

	// Настройки Redis
	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.poolSize", 10)
	v.SetDefault("redis.minIdleConns", 2)
	v.SetDefault("redis.connectTimeout", "3s")
	v.SetDefault("redis.readTimeout", "2s")
	v.SetDefault("redis.writeTimeout", "2s")
	v.SetDefault("redis.maxRetries", 3)

	// Настройки Kafka
	v.SetDefault("kafka.enabled", false)
	v.SetDefault("kafka.brokers", []string{"localhost:9092"})
	v.SetDefault("kafka.groupID", "tracker-service")
	v.SetDefault("kafka.productEventsTopic", "product-events")
	v.SetDefault("kafka.productCommandsTopic", "product-commands")
	v.SetDefault("kafka.autoOffsetReset", "latest")
	v.SetDefault("kafka.pollTimeout", "100ms")
	v.SetDefault("kafka.partitions", 3)
	v.SetDefault("kafka.replicationFactor", 1)

	// Настройки метрик
	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.serviceName", "tracker-service")
	v.SetDefault("metrics.endpoint", "/metrics")
	v.SetDefault("metrics.port", 9090)

	// Настройки безопасности
	v.SetDefault("security.corsAllowOrigins", []string{"*"})

	// Ограничение частоты запросов
	v.SetDefault("rateLimit.enabled", true)
	v.SetDefault("rateLimit.requests", 100)
	v.SetDefault("rateLimit.window", "1m")

	// Черновики
	v.SetDefault("drafts.ttl", "30m")
	v.SetDefault("drafts.cleanupInterval", "5m")
	v.SetDefault("drafts.defaultCountry", "sg")
}

// bindEnvVariables привязывает переменные окружения к конфигурации
func bindEnvVariables(v *viper.Viper) error {
	bindings := [][2]string{
		// Основные настройки
		{"appName", "APP_NAME"},
		{"version", "APP_VERSION"},
		{"logLevel", "LOG_LEVEL"},
		{"env", "APP_ENV"},

		// Настройки сервера
		{"server.host", "SERVER_HOST"},
		{"server.port", "SERVER_PORT"},
		{"server.readTimeout", "SERVER_READ_TIMEOUT"},
		{"server.writeTimeout", "SERVER_WRITE_TIMEOUT"},
		{"server.shutdownTimeout", "SERVER_SHUTDOWN_TIMEOUT"},
		{"server.requestTimeout", "SERVER_REQUEST_TIMEOUT"},
		{"server.bodyLimit", "SERVER_BODY_LIMIT"},

		// Хранилище
		{"store.driver", "STORE_DRIVER"},
		{"store.collection", "STORE_COLLECTION"},

		// Настройки Postgres
		{"postgres.host", "POSTGRES_HOST"},
		{"postgres.port", "POSTGRES_PORT"},
		{"postgres.user", "POSTGRES_USER"},
		{"postgres.password", "POSTGRES_PASSWORD"},
		{"postgres.dbname", "POSTGRES_DBNAME"},
		{"postgres.sslmode", "POSTGRES_SSLMODE"},
		{"postgres.timeout", "POSTGRES_TIMEOUT"},
		{"postgres.poolSize", "POSTGRES_POOL_SIZE"},

		// Настройки Redis
		{"redis.host", "REDIS_HOST"},
		{"redis.port", "REDIS_PORT"},
		{"redis.password", "REDIS_PASSWORD"},
		{"redis.db", "REDIS_DB"},
		{"redis.poolSize", "REDIS_POOL_SIZE"},
		{"redis.minIdleConns", "REDIS_MIN_IDLE_CONNS"},
		{"redis.connectTimeout", "REDIS_CONNECT_TIMEOUT"},
		{"redis.readTimeout", "REDIS_READ_TIMEOUT"},
		{"redis.writeTimeout", "REDIS_WRITE_TIMEOUT"},
		{"redis.maxRetries", "REDIS_MAX_RETRIES"},

		// Настройки Kafka
		{"kafka.enabled", "KAFKA_ENABLED"},
		{"kafka.brokers", "KAFKA_BROKERS"},
		{"kafka.groupID", "KAFKA_GROUP_ID"},
		{"kafka.productEventsTopic", "KAFKA_PRODUCT_EVENTS_TOPIC"},
		{"kafka.productCommandsTopic", "KAFKA_PRODUCT_COMMANDS_TOPIC"},
		{"kafka.autoOffsetReset", "KAFKA_AUTO_OFFSET_RESET"},
		{"kafka.pollTimeout", "KAFKA_POLL_TIMEOUT"},

		// Настройки метрик
		{"metrics.enabled", "METRICS_ENABLED"},
		{"metrics.serviceName", "METRICS_SERVICE_NAME"},
		{"metrics.endpoint", "METRICS_ENDPOINT"},
		{"metrics.port", "METRICS_PORT"},

		// Настройки безопасности
		{"security.corsAllowOrigins", "CORS_ALLOW_ORIGINS"},

		// Ограничение частоты запросов
		{"rateLimit.enabled", "RATE_LIMIT_ENABLED"},
		{"rateLimit.requests", "RATE_LIMIT_REQUESTS"},
		{"rateLimit.window", "RATE_LIMIT_WINDOW"},

		// Черновики
		{"drafts.ttl", "DRAFTS_TTL"},
		{"drafts.cleanupInterval", "DRAFTS_CLEANUP_INTERVAL"},
		{"drafts.defaultCountry", "DRAFTS_DEFAULT_COUNTRY"},
	}

	for _, b := range bindings {
		if err := v.BindEnv(b[0], b[1]); err != nil {
			return fmt.Errorf("%s: %w", b[0], err)
		}
	}
	return nil
}
