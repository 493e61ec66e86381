package models

import (
	"encoding/json"
	"fmt"
)

// MarketplaceType определяет роль ссылки в карточке товара
type MarketplaceType string

const (
	MarketplaceOfficial  MarketplaceType = "Official"  // официальный магазин (PopMart)
	MarketplacePrimary   MarketplaceType = "Primary"   // крупные площадки вроде Amazon
	MarketplaceSecondary MarketplaceType = "Secondary" // Shopee, Lazada и т.п.
)

// Valid проверяет, что значение входит в перечисление
func (t MarketplaceType) Valid() bool {
	switch t {
	case MarketplaceOfficial, MarketplacePrimary, MarketplaceSecondary:
		return true
	}
	return false
}

// UnmarshalJSON отвергает неизвестные типы ссылок
func (t *MarketplaceType) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	v := MarketplaceType(s)
	if !v.Valid() {
		return fmt.Errorf("unknown marketplace type %q", s)
	}
	*t = v
	return nil
}

// AvailabilityStatus - наличие товара по ссылке
type AvailabilityStatus string

const (
	AvailabilityInStock    AvailabilityStatus = "InStock"
	AvailabilityOutOfStock AvailabilityStatus = "OutOfStock"
	AvailabilityComingSoon AvailabilityStatus = "ComingSoon"
	AvailabilityLimited    AvailabilityStatus = "Limited"
	AvailabilityPreOrder   AvailabilityStatus = "PreOrder"
)

var availabilityLabels = map[AvailabilityStatus]string{
	AvailabilityInStock:    "In Stock",
	AvailabilityOutOfStock: "Out of Stock",
	AvailabilityComingSoon: "Coming Soon",
	AvailabilityLimited:    "Limited",
	AvailabilityPreOrder:   "Pre-Order",
}

// Valid проверяет, что значение входит в перечисление
func (s AvailabilityStatus) Valid() bool {
	_, ok := availabilityLabels[s]
	return ok
}

// Label возвращает человекочитаемую подпись статуса
func (s AvailabilityStatus) Label() string {
	return availabilityLabels[s]
}

// UnmarshalJSON отвергает неизвестные статусы; пустое значение означает InStock
func (s *AvailabilityStatus) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw == "" {
		*s = AvailabilityInStock
		return nil
	}
	v := AvailabilityStatus(raw)
	if !v.Valid() {
		return fmt.Errorf("unknown availability status %q", raw)
	}
	*s = v
	return nil
}

// WebsiteDomain - известные сайты, на которые ведут ссылки
type WebsiteDomain string

const (
	DomainAmazon  WebsiteDomain = "Amazon"
	DomainPopmart WebsiteDomain = "Popmart"
	DomainTiktok  WebsiteDomain = "Tiktok"
	DomainShopee  WebsiteDomain = "Shopee"
	DomainLazada  WebsiteDomain = "Lazada"
)

// IsMarketplace отличает сторонние маркетплейсы от официальных и крупных магазинов
func (d WebsiteDomain) IsMarketplace() bool {
	switch d {
	case DomainShopee, DomainLazada, DomainTiktok:
		return true
	}
	return false
}

// DomainForIcon определяет сайт по имени иконки ссылки
func DomainForIcon(iconName string) (WebsiteDomain, bool) {
	switch iconName {
	case "amazon":
		return DomainAmazon, true
	case "popmart":
		return DomainPopmart, true
	case "tiktok":
		return DomainTiktok, true
	case "shopee":
		return DomainShopee, true
	case "lazada":
		return DomainLazada, true
	}
	return "", false
}
