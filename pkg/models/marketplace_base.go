package models

// MarketplaceInfo описывает площадку, на которой можно купить товар
type MarketplaceInfo struct {
	ID                   string   `json:"id"`                     // Идентификатор площадки ("shopee", "amazon", ...)
	DisplayName          string   `json:"display_name"`           // Отображаемое название
	IconName             string   `json:"icon_name"`              // Имя ресурса иконки
	AvailableInCountries []string `json:"available_in_countries"` // Коды стран в нижнем регистре
	BaseURL              string   `json:"base_url,omitempty"`     // Общий URL; пустая строка - URL нет
}

// AvailableIn сообщает, доступна ли площадка в стране. Код должен быть в нижнем регистре
func (m MarketplaceInfo) AvailableIn(countryCode string) bool {
	for _, c := range m.AvailableInCountries {
		if c == countryCode {
			return true
		}
	}
	return false
}

// CountryInfo описывает страну, для которой подбираются площадки
type CountryInfo struct {
	Code        string `json:"code"`
	DisplayName string `json:"display_name"`
	Flag        string `json:"flag"`
	Currency    string `json:"currency"`
}
