package handlers

import (
	"net/http"

	"github.com/everytech/poptracker/pkg/interfaces"
	"github.com/everytech/poptracker/pkg/models"
	"github.com/everytech/poptracker/services/tracker-service/internal/domain/catalog"
	"github.com/go-chi/chi/v5"
)

// CatalogHandler отдает справочники стран и площадок
type CatalogHandler struct {
	logger interfaces.LoggerPort
}

// NewCatalogHandler создает обработчик справочников
func NewCatalogHandler(logger interfaces.LoggerPort) *CatalogHandler {
	return &CatalogHandler{logger: logger}
}

// marketplaceResponse - площадка вместе с адресом для выбранной страны
type marketplaceResponse struct {
	models.MarketplaceInfo
	URL string `json:"url"`
}

// ListCountries возвращает поддерживаемые страны
func (h *CatalogHandler) ListCountries(w http.ResponseWriter, r *http.Request) {
	writeData(w, r, http.StatusOK, catalog.SupportedCountries(), nil)
}

// GetCountry возвращает сведения о стране; для неизвестного кода - Global
func (h *CatalogHandler) GetCountry(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")
	writeData(w, r, http.StatusOK, catalog.CountryInfo(code), map[string]interface{}{
		"supported": catalog.IsSupportedCountry(code),
	})
}

// ListCountryMarketplaces возвращает площадки страны с локальными адресами
func (h *CatalogHandler) ListCountryMarketplaces(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")

	marketplaces := catalog.MarketplacesForCountry(code)
	out := make([]marketplaceResponse, 0, len(marketplaces))
	for _, m := range marketplaces {
		out = append(out, marketplaceResponse{
			MarketplaceInfo: m,
			URL:             catalog.CountrySpecificURL(m, code),
		})
	}

	writeData(w, r, http.StatusOK, out, map[string]interface{}{
		"country": catalog.CountryInfo(code),
		"total":   len(out),
	})
}

// GetMarketplaceURL возвращает адрес площадки для страны из параметра country
func (h *CatalogHandler) GetMarketplaceURL(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	marketplace, ok := catalog.MarketplaceByID(id)
	if !ok {
		h.logger.DebugWithContext(r.Context(), "Площадка не найдена", interfaces.LogField{Key: "marketplace_id", Value: id})
		writeError(w, r, http.StatusNotFound, "not_found", "Площадка не найдена")
		return
	}

	country := r.URL.Query().Get("country")
	writeData(w, r, http.StatusOK, map[string]string{
		"marketplace": marketplace.ID,
		"country":     country,
		"url":         catalog.CountrySpecificURL(marketplace, country),
	}, nil)
}
