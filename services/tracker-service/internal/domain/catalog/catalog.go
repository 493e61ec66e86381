// Package catalog содержит неизменяемые справочники площадок и стран.
//
// Таблицы заполняются при старте процесса и только читаются, поэтому
// функции пакета безопасны для конкурентного использования.
package catalog

import (
	"strings"

	"github.com/everytech/poptracker/pkg/models"
)

// GlobalCountryCode - код страны-заглушки для неизвестных кодов
const GlobalCountryCode = "global"

var marketplaces = []models.MarketplaceInfo{
	{
		ID:                   "shopee",
		DisplayName:          "Shopee",
		IconName:             "shopee",
		AvailableInCountries: []string{"sg", "my", "ph"},
		BaseURL:              "https://shopee.",
	},
	{
		ID:                   "lazada",
		DisplayName:          "Lazada",
		IconName:             "lazada",
		AvailableInCountries: []string{"sg", "my", "ph"},
		BaseURL:              "https://www.lazada.",
	},
	{
		ID:                   "amazon",
		DisplayName:          "Amazon",
		IconName:             "amazon",
		AvailableInCountries: []string{"us", GlobalCountryCode},
		BaseURL:              "https://www.amazon.com",
	},
	{
		ID:                   "tiktok",
		DisplayName:          "TikTok Shop",
		IconName:             "tiktok",
		AvailableInCountries: []string{"us", "sg", "my", "ph"},
		BaseURL:              "https://shop.tiktok.com",
	},
}

// localizedURLs - адреса площадок с локальными доменами: площадка -> страна -> URL
var localizedURLs = map[string]map[string]string{
	"shopee": {
		"sg": "https://shopee.sg",
		"my": "https://shopee.com.my",
		"ph": "https://shopee.ph",
	},
	"lazada": {
		"sg": "https://www.lazada.sg",
		"my": "https://www.lazada.com.my",
		"ph": "https://www.lazada.com.ph",
	},
}

var countries = []models.CountryInfo{
	{Code: "us", DisplayName: "United States", Flag: "🇺🇸", Currency: "USD"},
	{Code: "ph", DisplayName: "Philippines", Flag: "🇵🇭", Currency: "PHP"},
	{Code: "my", DisplayName: "Malaysia", Flag: "🇲🇾", Currency: "MYR"},
	{Code: "sg", DisplayName: "Singapore", Flag: "🇸🇬", Currency: "SGD"},
}

var globalCountry = models.CountryInfo{Code: GlobalCountryCode, DisplayName: "Global", Flag: "🌍", Currency: "USD"}

// defaultIcons - иконка площадки, подставляемая в новую ссылку черновика
var defaultIcons = map[string]string{
	"sg": "shopee",
	"my": "shopee",
	"us": "amazon",
	"ph": "lazada",
}

const fallbackIcon = "shopee"

// Marketplaces возвращает все площадки в порядке объявления
func Marketplaces() []models.MarketplaceInfo {
	out := make([]models.MarketplaceInfo, len(marketplaces))
	for i, m := range marketplaces {
		out[i] = cloneMarketplace(m)
	}
	return out
}

// MarketplaceByID ищет площадку по идентификатору без учета регистра
func MarketplaceByID(id string) (models.MarketplaceInfo, bool) {
	id = normalize(id)
	for _, m := range marketplaces {
		if m.ID == id {
			return cloneMarketplace(m), true
		}
	}
	return models.MarketplaceInfo{}, false
}

// MarketplacesForCountry возвращает площадки, доступные в стране, в порядке объявления.
// Для неизвестного кода возвращается пустой список
func MarketplacesForCountry(countryCode string) []models.MarketplaceInfo {
	code := normalize(countryCode)
	out := make([]models.MarketplaceInfo, 0, len(marketplaces))
	for _, m := range marketplaces {
		if m.AvailableIn(code) {
			out = append(out, cloneMarketplace(m))
		}
	}
	return out
}

// CountrySpecificURL возвращает адрес площадки для страны: локальный домен,
// если он известен, иначе общий базовый URL, иначе пустую строку
func CountrySpecificURL(marketplace models.MarketplaceInfo, countryCode string) string {
	if byCountry, ok := localizedURLs[marketplace.ID]; ok {
		if u, ok := byCountry[normalize(countryCode)]; ok {
			return u
		}
	}
	return marketplace.BaseURL
}

// SupportedCountries возвращает поддерживаемые страны без страны-заглушки
func SupportedCountries() []models.CountryInfo {
	out := make([]models.CountryInfo, len(countries))
	copy(out, countries)
	return out
}

// CountryInfo возвращает сведения о стране. Неизвестный код дает Global/USD
func CountryInfo(countryCode string) models.CountryInfo {
	code := normalize(countryCode)
	for _, c := range countries {
		if c.Code == code {
			return c
		}
	}
	return globalCountry
}

// IsSupportedCountry сообщает, есть ли код среди поддерживаемых стран
func IsSupportedCountry(countryCode string) bool {
	return CountryInfo(countryCode).Code != GlobalCountryCode
}

// CurrencyForCountry возвращает валюту страны для нового черновика
func CurrencyForCountry(countryCode string) string {
	return CountryInfo(countryCode).Currency
}

// DefaultIconForCountry возвращает иконку площадки по умолчанию для страны
func DefaultIconForCountry(countryCode string) string {
	if icon, ok := defaultIcons[normalize(countryCode)]; ok {
		return icon
	}
	return fallbackIcon
}

func normalize(code string) string {
	return strings.ToLower(code)
}

func cloneMarketplace(m models.MarketplaceInfo) models.MarketplaceInfo {
	m.AvailableInCountries = append([]string(nil), m.AvailableInCountries...)
	return m
}
