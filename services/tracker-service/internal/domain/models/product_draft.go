package models

import "strings"

// DefaultImageName - изображение, которое подставляется в новый черновик
const DefaultImageName = "labubu_demo"

// ProductDraft - рабочее состояние формы добавления товара
type ProductDraft struct {
	Title        string            `json:"title"`
	Description  string            `json:"description"`
	ImageName    string            `json:"image_name"`
	Price        ProductPrice      `json:"price"`
	OfficialURL  string            `json:"official_url"`
	Marketplaces []MarketplaceLink `json:"marketplaces"`
	IsLoading    bool              `json:"is_loading"`
	Error        string            `json:"error,omitempty"`
}

// IsValid истинно, когда заполнены название, описание, цена, изображение и официальный URL.
// Формат значений не проверяется
func (d ProductDraft) IsValid() bool {
	return notBlank(d.Title) &&
		notBlank(d.Description) &&
		notBlank(d.Price.Amount) &&
		notBlank(d.ImageName) &&
		notBlank(d.OfficialURL)
}

// Clone возвращает копию черновика, не разделяющую срез ссылок
func (d ProductDraft) Clone() ProductDraft {
	d.Marketplaces = cloneLinks(d.Marketplaces)
	return d
}

func notBlank(s string) bool {
	return strings.TrimSpace(s) != ""
}
