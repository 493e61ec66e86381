package api

import (
	_ "embed"
	"net/http"
	"time"

	"github.com/everytech/poptracker/pkg/interfaces"
	"github.com/everytech/poptracker/services/tracker-service/internal/api/handlers"
	"github.com/everytech/poptracker/services/tracker-service/internal/api/middleware"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"
)

//go:embed docs/swagger.json
var swaggerDoc []byte

// RouterConfig - зависимости и настройки маршрутизатора
type RouterConfig struct {
	Feed               handlers.ProductFeed
	Drafts             *handlers.DraftSessions
	DefaultCountry     string
	Logger             interfaces.LoggerPort
	CORSAllowedOrigins []string
	RequestTimeout     time.Duration
	BodyLimit          int64 // байты, 0 - без ограничения
	RateLimitRequests  int // 0 отключает ограничение
	RateLimitWindow    time.Duration
	Metrics            *middleware.HTTPMetrics // nil отключает сбор метрик HTTP
	ExposeMetrics      bool
}

// SetupRouter настраивает маршрутизатор
func SetupRouter(cfg RouterConfig) *chi.Mux {
	r := chi.NewRouter()

	// Глобальные middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Tracing)
	r.Use(middleware.Logger(cfg.Logger))
	r.Use(middleware.Recoverer(cfg.Logger))
	r.Use(middleware.CORS(cfg.CORSAllowedOrigins))
	r.Use(middleware.SecurityHeaders)
	if cfg.Metrics != nil {
		r.Use(middleware.Metrics(*cfg.Metrics))
	}

	r.Method(http.MethodGet, "/health", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	}))
	r.Method(http.MethodHead, "/health", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	if cfg.ExposeMetrics {
		r.Handle("/metrics", promhttp.Handler())
	}

	r.Get("/swagger/doc.json", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(swaggerDoc)
	})
	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	catalogHandler := handlers.NewCatalogHandler(cfg.Logger)
	productHandler := handlers.NewProductHandler(cfg.Feed, cfg.Logger)
	draftHandler := handlers.NewDraftHandler(cfg.Drafts, cfg.DefaultCountry, cfg.Logger)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.RateLimiter(cfg.RateLimitRequests, cfg.RateLimitWindow))
		r.Use(middleware.BodyLimit(cfg.BodyLimit))

		// Поток SSE живет дольше таймаута обычных запросов
		r.Get("/products/stream", productHandler.StreamProducts)

		r.Group(func(r chi.Router) {
			if cfg.RequestTimeout > 0 {
				r.Use(chimiddleware.Timeout(cfg.RequestTimeout))
			}

			// Справочники
			r.Get("/countries", catalogHandler.ListCountries)
			r.Route("/countries/{code}", func(r chi.Router) {
				r.Get("/", catalogHandler.GetCountry)
				r.Get("/marketplaces", catalogHandler.ListCountryMarketplaces)
			})
			r.Get("/marketplaces/{id}/url", catalogHandler.GetMarketplaceURL)

			// Список товаров
			r.Get("/products", productHandler.ListProducts)
			r.Post("/products/refresh", productHandler.RefreshProducts)

			// Черновики
			r.Post("/drafts", draftHandler.CreateDraft)
			r.Route("/drafts/{id}", func(r chi.Router) {
				r.Get("/", draftHandler.GetDraft)
				r.Patch("/", draftHandler.UpdateDraft)
				r.Delete("/", draftHandler.DeleteDraft)
				r.Post("/save", draftHandler.SaveDraft)

				r.Post("/marketplaces", draftHandler.AddMarketplace)
				r.Put("/marketplaces/{index}", draftHandler.UpdateMarketplace)
				r.Delete("/marketplaces/{index}", draftHandler.RemoveMarketplace)
			})
		})
	})

	return r
}
