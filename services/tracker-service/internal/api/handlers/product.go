package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/everytech/poptracker/pkg/interfaces"
	"github.com/everytech/poptracker/pkg/utils"
	"github.com/everytech/poptracker/services/tracker-service/internal/domain/models"
	"github.com/everytech/poptracker/services/tracker-service/internal/domain/services"
	"github.com/shopspring/decimal"
)

// ProductFeed - источник состояния списка товаров
type ProductFeed interface {
	State() services.ProductListState
	Subscribe(ctx context.Context) <-chan services.ProductListState
	Refresh()
}

// ProductHandler обработчик запросов для списка товаров
type ProductHandler struct {
	feed   ProductFeed
	logger interfaces.LoggerPort
}

// NewProductHandler создает новый обработчик продуктов
func NewProductHandler(feed ProductFeed, logger interfaces.LoggerPort) *ProductHandler {
	return &ProductHandler{
		feed:   feed,
		logger: logger,
	}
}

// ListProducts возвращает страницу текущего списка с учетом фильтров
func (h *ProductHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	page, err := strconv.Atoi(query.Get("page"))
	if err != nil || page < 1 {
		page = 1
	}

	pageSize, err := strconv.Atoi(query.Get("page_size"))
	if err != nil || pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	filter := &models.ProductFilter{
		Marketplace:  query.Get("marketplace"),
		Availability: models.AvailabilityStatus(query.Get("availability")),
		SearchQuery:  query.Get("q"),
	}

	if filter.Availability != "" && !filter.Availability.Valid() {
		writeError(w, r, http.StatusBadRequest, "bad_request", "Неизвестный статус наличия")
		return
	}

	for param, target := range map[string]**decimal.Decimal{
		"min_price": &filter.MinPrice,
		"max_price": &filter.MaxPrice,
	} {
		raw := query.Get(param)
		if raw == "" {
			continue
		}
		d, err := decimal.NewFromString(raw)
		if err != nil {
			writeError(w, r, http.StatusBadRequest, "bad_request", fmt.Sprintf("Некорректное значение %s", param))
			return
		}
		*target = &d
	}

	state := h.feed.State()
	products := filter.Apply(state.Products)

	pagination := utils.NewPagination(page, pageSize)
	pagination.SetTotal(int64(len(products)))
	start, end := pagination.Bounds(len(products))

	writeData(w, r, http.StatusOK, newProductViews(products[start:end]), map[string]interface{}{
		"pagination": pagination,
		"status":     state.Status,
		"is_loading": state.IsLoading,
		"error":      state.Error,
	})
}

// StreamProducts отдает состояния списка как Server-Sent Events
func (h *ProductHandler) StreamProducts(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, r, http.StatusInternalServerError, "internal_error", "Потоковая передача не поддерживается")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	ctx := r.Context()
	states := h.feed.Subscribe(ctx)

	h.logger.InfoWithContext(ctx, "Клиент подписался на список товаров")
	defer h.logger.InfoWithContext(ctx, "Клиент отписался от списка товаров")

	for {
		select {
		case <-ctx.Done():
			return
		case state, ok := <-states:
			if !ok {
				return
			}
			payload, err := json.Marshal(newProductListView(state))
			if err != nil {
				h.logger.ErrorWithContext(ctx, "Не удалось сериализовать состояние",
					interfaces.LogField{Key: "error", Value: err.Error()})
				return
			}
			if _, err := fmt.Fprintf(w, "event: products\ndata: %s\n\n", payload); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}

// RefreshProducts перезапускает подписку на коллекцию
func (h *ProductHandler) RefreshProducts(w http.ResponseWriter, r *http.Request) {
	h.feed.Refresh()
	h.logger.InfoWithContext(r.Context(), "Запрошено обновление списка товаров")
	writeData(w, r, http.StatusAccepted, newProductListView(h.feed.State()), nil)
}
