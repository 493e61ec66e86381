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
	"github.com/everytech/poptracker/services/tracker-service/internal/infrastructure/store"
	"github.com/everytech/poptracker/services/tracker-service/internal/worker"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"
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

	log.Info("Инициализация воркера",
		interfaces.LogField{Key: "app_name", Value: cfg.AppName + "-worker"},
		interfaces.LogField{Key: "version", Value: cfg.Version},
		interfaces.LogField{Key: "env", Value: cfg.ENV},
	)

	if err := run(cfg, log); err != nil {
		log.Error("Воркер завершился с ошибкой", interfaces.LogField{Key: "error", Value: err.Error()})
		_ = log.Sync()
		os.Exit(1)
	}
	log.Info("Воркер корректно завершил работу")
}

func run(cfg *config.Config, log interfaces.LoggerPort) error {
	if len(cfg.Kafka.Brokers) == 0 {
		return errors.New("kafka.brokers is empty")
	}

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

	messagingClient, err := messaging.NewKafkaMessaging(cfg.Kafka.Brokers, cfg.AppName+"-worker", interfaces.ConsumerConfig{
		GroupID:         cfg.Kafka.GroupID + "-worker",
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
	log.Info("Система обмена сообщениями инициализирована")

	for _, topic := range []string{cfg.Kafka.ProductCommandsTopic, cfg.Kafka.ProductEventsTopic} {
		if err := messagingClient.CreateTopic(openCtx, topic, cfg.Kafka.Partitions, cfg.Kafka.ReplicationFactor); err != nil {
			log.Warn("Не удалось создать тему", interfaces.LogField{Key: "topic", Value: topic}, interfaces.LogField{Key: "error", Value: err.Error()})
		}
	}

	events := messaging.NewProductEventPublisher(messagingClient, cfg.Kafka.ProductEventsTopic)
	handler := worker.NewCommandHandler(productStore, events, log.WithField("component", "worker"))

	unsubscribe, err := messagingClient.Subscribe(ctx, cfg.Kafka.ProductCommandsTopic, handler.Handle)
	if err != nil {
		return fmt.Errorf("ошибка подписки на команды продуктов: %w", err)
	}
	defer func() {
		log.Info("Отмена подписки на команды продуктов")
		if err := unsubscribe(); err != nil {
			log.Warn("Ошибка при отписке", interfaces.LogField{Key: "error", Value: err.Error()})
		}
	}()
	log.Info("Подписка на команды продуктов установлена",
		interfaces.LogField{Key: "topic", Value: cfg.Kafka.ProductCommandsTopic})

	g, gctx := errgroup.WithContext(ctx)

	// HTTP сервер для метрик, если они включены
	if cfg.Metrics.Enabled {
		r := chi.NewRouter()
		r.Handle(cfg.Metrics.Endpoint, promhttp.Handler())
		r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte("OK"))
		})

		server := &http.Server{
			Addr:        fmt.Sprintf(":%d", cfg.Metrics.Port),
			Handler:     r,
			BaseContext: func(net.Listener) context.Context { return gctx },
		}

		g.Go(func() error {
			log.Info("Запуск HTTP сервера для метрик", interfaces.LogField{Key: "addr", Value: server.Addr})
			if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("ошибка запуска HTTP сервера для метрик: %w", err)
			}
			return nil
		})

		g.Go(func() error {
			<-gctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
			defer cancel()
			return server.Shutdown(shutdownCtx)
		})
	}

	log.Info("Воркер запущен и готов к обработке сообщений")

	g.Go(func() error {
		<-gctx.Done()
		log.Info("Получен сигнал завершения, выполняется graceful shutdown...")
		return nil
	})

	return g.Wait()
}
