package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Product представляет коллекционный товар и ссылки на него на площадках
type Product struct {
	ID           string            `json:"id"`
	Title        string            `json:"title"`
	Subtitle     string            `json:"subtitle"`
	ImageName    string            `json:"image_name"`
	Price        ProductPrice      `json:"price"`
	OfficialURL  string            `json:"official_url,omitempty"`
	Marketplaces []MarketplaceLink `json:"marketplaces"`
	CreatedAt    time.Time         `json:"created_at"`
}

// ProductPrice хранит цену строкой, чтобы не терять точность при передаче
type ProductPrice struct {
	Amount   string `json:"amount"`
	Currency string `json:"currency"`
	Range    string `json:"range,omitempty"` // например "900 - 5400"
}

// Decimal разбирает сумму как десятичное число
func (p ProductPrice) Decimal() (decimal.Decimal, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(p.Amount))
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid price amount %q: %w", p.Amount, err)
	}
	return d, nil
}

// MarketplaceLink - ссылка на товар на конкретной площадке
type MarketplaceLink struct {
	Name         string             `json:"name"`
	IconName     string             `json:"icon_name,omitempty"`
	Type         MarketplaceType    `json:"type"`
	URL          string             `json:"url"`
	Price        *ProductPrice      `json:"price,omitempty"` // цена на площадке, если отличается
	Availability AvailabilityStatus `json:"availability"`
}

// OfficialLink возвращает первую ссылку типа Official в порядке добавления.
// Если официальных ссылок несколько, остальные игнорируются
func (p *Product) OfficialLink() (MarketplaceLink, bool) {
	for _, link := range p.Marketplaces {
		if link.Type == MarketplaceOfficial {
			return link, true
		}
	}
	return MarketplaceLink{}, false
}

// SecondaryLinks возвращает ссылки типа Secondary в порядке добавления
func (p *Product) SecondaryLinks() []MarketplaceLink {
	links := make([]MarketplaceLink, 0, len(p.Marketplaces))
	for _, link := range p.Marketplaces {
		if link.Type == MarketplaceSecondary {
			links = append(links, link)
		}
	}
	return links
}

// Clone возвращает глубокую копию продукта
func (p *Product) Clone() *Product {
	if p == nil {
		return nil
	}
	c := *p
	c.Marketplaces = cloneLinks(p.Marketplaces)
	return &c
}

// CloneProducts копирует список продуктов вместе с вложенными ссылками
func CloneProducts(products []*Product) []*Product {
	if products == nil {
		return nil
	}
	out := make([]*Product, len(products))
	for i, p := range products {
		out[i] = p.Clone()
	}
	return out
}

func cloneLinks(links []MarketplaceLink) []MarketplaceLink {
	if links == nil {
		return nil
	}
	out := make([]MarketplaceLink, len(links))
	for i, link := range links {
		out[i] = link
		if link.Price != nil {
			price := *link.Price
			out[i].Price = &price
		}
	}
	return out
}
