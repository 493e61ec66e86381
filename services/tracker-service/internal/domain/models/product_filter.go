package models

import (
	"strings"

	"github.com/shopspring/decimal"
)

// ProductFilter представляет структурированную модель для фильтрации списка продуктов
type ProductFilter struct {
	// Фильтрация по цене
	MinPrice *decimal.Decimal `json:"min_price,omitempty"`
	MaxPrice *decimal.Decimal `json:"max_price,omitempty"`

	// Фильтрация по площадке (id иконки ссылки, например "shopee")
	Marketplace string `json:"marketplace,omitempty"`

	// Фильтрация по наличию на какой-либо площадке
	Availability AvailabilityStatus `json:"availability,omitempty"`

	// Поиск по названию и описанию без учета регистра
	SearchQuery string `json:"search_query,omitempty"`
}

// IsEmpty сообщает, что фильтр ничего не ограничивает
func (f *ProductFilter) IsEmpty() bool {
	return f == nil || (f.MinPrice == nil && f.MaxPrice == nil && f.Marketplace == "" &&
		f.Availability == "" && f.SearchQuery == "")
}

// Matches проверяет продукт на соответствие фильтру.
// Продукт с неразборчивой ценой не проходит ценовой фильтр
func (f *ProductFilter) Matches(p *Product) bool {
	if f.IsEmpty() {
		return true
	}

	if f.MinPrice != nil || f.MaxPrice != nil {
		amount, err := p.Price.Decimal()
		if err != nil {
			return false
		}
		if f.MinPrice != nil && amount.LessThan(*f.MinPrice) {
			return false
		}
		if f.MaxPrice != nil && amount.GreaterThan(*f.MaxPrice) {
			return false
		}
	}

	if f.Marketplace != "" || f.Availability != "" {
		found := false
		for _, link := range p.Marketplaces {
			if f.Marketplace != "" && !strings.EqualFold(link.IconName, f.Marketplace) {
				continue
			}
			if f.Availability != "" && link.Availability != f.Availability {
				continue
			}
			found = true
			break
		}
		if !found {
			return false
		}
	}

	if q := strings.ToLower(strings.TrimSpace(f.SearchQuery)); q != "" {
		if !strings.Contains(strings.ToLower(p.Title), q) && !strings.Contains(strings.ToLower(p.Subtitle), q) {
			return false
		}
	}

	return true
}

// Apply возвращает продукты, прошедшие фильтр, сохраняя порядок
func (f *ProductFilter) Apply(products []*Product) []*Product {
	if f.IsEmpty() {
		return products
	}
	out := make([]*Product, 0, len(products))
	for _, p := range products {
		if f.Matches(p) {
			out = append(out, p)
		}
	}
	return out
}
