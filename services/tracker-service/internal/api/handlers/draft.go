package handlers

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/everytech/poptracker/pkg/interfaces"
	"github.com/everytech/poptracker/services/tracker-service/internal/domain/catalog"
	"github.com/everytech/poptracker/services/tracker-service/internal/domain/models"
	"github.com/everytech/poptracker/services/tracker-service/internal/domain/services"
	"github.com/everytech/poptracker/services/tracker-service/internal/utils"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
)

// DraftHandler ведет черновики товаров через HTTP
type DraftHandler struct {
	sessions       *DraftSessions
	defaultCountry string
	logger         interfaces.LoggerPort
}

// NewDraftHandler создает обработчик черновиков
func NewDraftHandler(sessions *DraftSessions, defaultCountry string, logger interfaces.LoggerPort) *DraftHandler {
	return &DraftHandler{
		sessions:       sessions,
		defaultCountry: defaultCountry,
		logger:         logger,
	}
}

type draftResponse struct {
	ID      string              `json:"id"`
	Country string              `json:"country"`
	Valid   bool                `json:"valid"`
	Draft   models.ProductDraft `json:"draft"`
}

type createDraftRequest struct {
	Country string `json:"country"`
}

type updateDraftRequest struct {
	Title       *string              `json:"title"`
	Description *string              `json:"description"`
	ImageName   *string              `json:"image_name"`
	Price       *models.ProductPrice `json:"price"`
	OfficialURL *string              `json:"official_url"`
}

func toDraftResponse(id string, draft *services.DraftService) draftResponse {
	state := draft.State()
	return draftResponse{
		ID:      id,
		Country: draft.Country(),
		Valid:   state.IsValid(),
		Draft:   state,
	}
}

// CreateDraft открывает черновик для страны из тела запроса
func (h *DraftHandler) CreateDraft(w http.ResponseWriter, r *http.Request) {
	var req createDraftRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, r, http.StatusBadRequest, "bad_request", "Некорректное тело запроса")
		return
	}

	country := req.Country
	if country == "" {
		country = h.defaultCountry
	}
	country = catalog.CountryInfo(country).Code

	id, draft := h.sessions.Create(country)
	h.logger.InfoWithContext(r.Context(), "Открыт черновик товара",
		interfaces.LogField{Key: "draft_id", Value: id},
		interfaces.LogField{Key: "country", Value: country},
	)

	writeData(w, r, http.StatusCreated, toDraftResponse(id, draft), nil)
}

// GetDraft возвращает текущее состояние черновика
func (h *DraftHandler) GetDraft(w http.ResponseWriter, r *http.Request) {
	id, draft, ok := h.lookup(w, r)
	if !ok {
		return
	}
	writeData(w, r, http.StatusOK, toDraftResponse(id, draft), nil)
}

// UpdateDraft меняет переданные поля черновика
func (h *DraftHandler) UpdateDraft(w http.ResponseWriter, r *http.Request) {
	id, draft, ok := h.lookup(w, r)
	if !ok {
		return
	}

	var req updateDraftRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, "bad_request", "Некорректное тело запроса")
		return
	}

	if req.Title != nil {
		draft.UpdateName(*req.Title)
	}
	if req.Description != nil {
		draft.UpdateDescription(*req.Description)
	}
	if req.ImageName != nil {
		draft.UpdateImageName(*req.ImageName)
	}
	if req.Price != nil {
		draft.UpdatePrice(*req.Price)
	}
	if req.OfficialURL != nil {
		draft.UpdateOfficialURL(*req.OfficialURL)
	}

	writeData(w, r, http.StatusOK, toDraftResponse(id, draft), nil)
}

// AddMarketplace добавляет пустую ссылку на площадку
func (h *DraftHandler) AddMarketplace(w http.ResponseWriter, r *http.Request) {
	id, draft, ok := h.lookup(w, r)
	if !ok {
		return
	}
	draft.AddMarketplace()
	writeData(w, r, http.StatusOK, toDraftResponse(id, draft), nil)
}

// UpdateMarketplace заменяет ссылку по индексу
func (h *DraftHandler) UpdateMarketplace(w http.ResponseWriter, r *http.Request) {
	id, draft, ok := h.lookup(w, r)
	if !ok {
		return
	}

	index, ok := h.index(w, r)
	if !ok {
		return
	}

	var link models.MarketplaceLink
	if err := render.DecodeJSON(r.Body, &link); err != nil {
		writeError(w, r, http.StatusBadRequest, "bad_request", "Некорректная ссылка на площадку")
		return
	}

	draft.UpdateMarketplace(index, link)
	writeData(w, r, http.StatusOK, toDraftResponse(id, draft), nil)
}

// RemoveMarketplace удаляет ссылку по индексу
func (h *DraftHandler) RemoveMarketplace(w http.ResponseWriter, r *http.Request) {
	id, draft, ok := h.lookup(w, r)
	if !ok {
		return
	}

	index, ok := h.index(w, r)
	if !ok {
		return
	}

	draft.RemoveMarketplace(index)
	writeData(w, r, http.StatusOK, toDraftResponse(id, draft), nil)
}

// SaveDraft сохраняет черновик как товар и закрывает его
func (h *DraftHandler) SaveDraft(w http.ResponseWriter, r *http.Request) {
	id, draft, ok := h.lookup(w, r)
	if !ok {
		return
	}

	var saved *models.Product
	err := draft.Save(r.Context(), func(p *models.Product) { saved = p })

	switch {
	case err == nil:
		h.sessions.Delete(id)
		writeData(w, r, http.StatusCreated, saved, nil)

	case errors.Is(err, utils.ErrInvalidDraft):
		render.Status(r, http.StatusUnprocessableEntity)
		render.JSON(w, r, response{Success: false, Data: toDraftResponse(id, draft)})

	case errors.Is(err, utils.ErrSaveInProgress):
		writeError(w, r, http.StatusConflict, "conflict", "Сохранение уже выполняется")

	default:
		h.logger.ErrorWithContext(r.Context(), "Ошибка сохранения черновика",
			interfaces.LogField{Key: "draft_id", Value: id},
			interfaces.LogField{Key: "error", Value: err.Error()},
		)
		writeError(w, r, http.StatusBadGateway, "write_failed", draft.State().Error)
	}
}

// DeleteDraft отменяет черновик
func (h *DraftHandler) DeleteDraft(w http.ResponseWriter, r *http.Request) {
	if !h.sessions.Delete(chi.URLParam(r, "id")) {
		writeError(w, r, http.StatusNotFound, "not_found", "Черновик не найден")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *DraftHandler) lookup(w http.ResponseWriter, r *http.Request) (string, *services.DraftService, bool) {
	id := chi.URLParam(r, "id")
	draft, err := h.sessions.Get(id)
	if err != nil {
		writeError(w, r, http.StatusNotFound, "not_found", "Черновик не найден")
		return "", nil, false
	}
	return id, draft, true
}

func (h *DraftHandler) index(w http.ResponseWriter, r *http.Request) (int, bool) {
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "bad_request", "Индекс площадки должен быть числом")
		return 0, false
	}
	return index, true
}
