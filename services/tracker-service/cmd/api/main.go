package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/everytech/poptracker/pkg/interfaces"
	"github.com/everytech/poptracker/services/tracker-service/config"
	"github.com/everytech/poptracker/services/tracker-service/internal/adapters/logger"
	"github.com/everytech/poptracker/services/tracker-service/internal/adapters/messaging"
	"github.com/everytech/poptracker/services/tracker-service/internal/api"
	"github.com/everytech/poptracker/services/tracker-service/internal/api/handlers"
	"github.com/everytech/poptracker/services/tracker-service/internal/api/middleware"
	"github.com/everytech/poptracker/services/tracker-service/internal/domain/services"
	"github.com/everytech/poptracker/services/tracker-service/internal/infrastructure/store"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"golang.org/x/sync/errgroup"
)

// метрики для Prometheus
var (
	httpDurations = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_durations_seconds",
		Help:    "Длительность HTTP запросов",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route", "status"})

	requestsCounter = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Общее количество HTTP запросов",
	}, []string{"method", "route", "status"})

	activeRequests = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "http_active_requests",
		Help: "Количество активных HTTP запросов",
	})
)

func main() {
	cfg, err := config.Load("")
	if err != nil {
		fmt.Printf("Ошибка загрузки конфигурации: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.NewZapLogger(cfg.LogLevel, cfg.IsProduction())
	if err != nil {
		fmt.Printf("Ошибка инициализации логгера: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	log.Info("Инициализация сервиса",
		interfaces.LogField{Key: "app_name", Value: cfg.AppName},
		interfaces.LogField{Key: "version", Value: cfg.Version},
		interfaces.LogField{Key: "env", Value: cfg.ENV},
		interfaces.LogField{Key: "store", Value: cfg.Store.Driver},
	)

	if err := run(cfg, log); err != nil {
		log.Error("Сервис завершился с ошибкой", interfaces.LogField{Key: "error", Value: err.Error()})
		_ = log.Sync()
		os.Exit(1)
	}
	log.Info("Сервер корректно завершил работу")
}

func run(cfg *config.Config, log interfaces.LoggerPort) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	openCtx, openCancel := context.WithTimeout(ctx, 10*time.Second)
	defer openCancel()

	productStore, err := store.Open(openCtx, store.OptionsFromConfig(cfg), log)
	if err != nil {
		return fmt.Errorf("ошибка инициализации хранилища: %w", err)
	}
	defer func() {
		if err := productStore.Close(); err != nil {
			log.Error("Ошибка при закрытии хранилища", interfaces.LogField{Key: "error", Value: err.Error()})
		}
	}()
	log.Info("Хранилище инициализировано", interfaces.LogField{Key: "driver", Value: cfg.Store.Driver})

	var events services.EventPublisher
	if cfg.Kafka.Enabled {
		messagingClient, err := messaging.NewKafkaMessaging(cfg.Kafka.Brokers, cfg.AppName, interfaces.ConsumerConfig{
			GroupID:         cfg.Kafka.GroupID,
			PollTimeout:     cfg.Kafka.PollTimeout,
			AutoOffsetReset: cfg.Kafka.AutoOffsetReset,
		}, log)
		if err != nil {
			return fmt.Errorf("ошибка инициализации системы обмена сообщениями: %w", err)
		}
		defer func() {
			if err := messagingClient.Close(); err != nil {
				log.Error("Ошибка при закрытии Kafka", interfaces.LogField{Key: "error", Value: err.Error()})
			}
		}()

		if err := messagingClient.CreateTopic(openCtx, cfg.Kafka.ProductEventsTopic, cfg.Kafka.Partitions, cfg.Kafka.ReplicationFactor); err != nil {
			log.Warn("Не удалось создать тему событий", interfaces.LogField{Key: "error", Value: err.Error()})
		}

		events = messaging.NewProductEventPublisher(messagingClient, cfg.Kafka.ProductEventsTopic)
		log.Info("Система обмена сообщениями инициализирована")
	}

	syncService := services.NewProductSyncService(productStore, log)
	syncService.Start(ctx)
	defer syncService.Close()
	log.Info("Синхронизация списка товаров запущена")

	draftSessions := handlers.NewDraftSessions(cfg.Drafts.TTL, cfg.Drafts.CleanupInterval, func(country string) *services.DraftService {
		return services.NewDraftService(country, productStore, events, log)
	})
	promauto.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "tracker_open_drafts",
		Help: "Количество открытых черновиков",
	}, func() float64 { return float64(draftSessions.Count()) })

	routerCfg := api.RouterConfig{
		Feed:               syncService,
		Drafts:             draftSessions,
		DefaultCountry:     cfg.Drafts.DefaultCountry,
		Logger:             log,
		CORSAllowedOrigins: cfg.Security.CORSAllowOrigins,
		RequestTimeout:     cfg.Server.RequestTimeout,
		BodyLimit:          int64(cfg.Server.BodyLimit) << 20,
		ExposeMetrics:      cfg.Metrics.Enabled,
	}
	if cfg.RateLimit.Enabled {
		routerCfg.RateLimitRequests = cfg.RateLimit.Requests
		routerCfg.RateLimitWindow = cfg.RateLimit.Window
	}
	if cfg.Metrics.Enabled {
		routerCfg.Metrics = &middleware.HTTPMetrics{
			Durations: httpDurations,
			Requests:  requestsCounter,
			Active:    activeRequests,
		}
	}

	router := api.SetupRouter(routerCfg)
	log.Info("Маршрутизатор настроен")

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  120 * time.Second,
		// Контексты запросов отменяются по сигналу, иначе потоки SSE не дадут завершить Shutdown
		BaseContext: func(net.Listener) context.Context { return ctx },
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info("Сервер запущен", interfaces.LogField{Key: "address", Value: server.Addr})
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("ошибка запуска сервера: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		log.Info("Получен сигнал завершения, выполняется graceful shutdown...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("ошибка при graceful shutdown: %w", err)
		}
		log.Info("HTTP сервер остановлен")
		return nil
	})

	return g.Wait()
}
