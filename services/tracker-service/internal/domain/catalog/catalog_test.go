package catalog

import (
	"testing"

	"github.com/everytech/poptracker/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ids(ms []models.MarketplaceInfo) []string {
	out := make([]string, 0, len(ms))
	for _, m := range ms {
		out = append(out, m.ID)
	}
	return out
}

func TestMarketplacesForCountry(t *testing.T) {
	tests := []struct {
		country string
		want    []string
	}{
		{country: "sg", want: []string{"shopee", "lazada", "tiktok"}},
		{country: "my", want: []string{"shopee", "lazada", "tiktok"}},
		{country: "ph", want: []string{"shopee", "lazada", "tiktok"}},
		{country: "us", want: []string{"amazon", "tiktok"}},
		{country: "global", want: []string{"amazon"}},
		{country: "jp", want: []string{}},
		{country: "", want: []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.country, func(t *testing.T) {
			got := MarketplacesForCountry(tt.country)
			require.NotNil(t, got)
			assert.Equal(t, tt.want, ids(got))
		})
	}

	t.Run("Case insensitive", func(t *testing.T) {
		assert.Equal(t, MarketplacesForCountry("sg"), MarketplacesForCountry("SG"))
		assert.Equal(t, MarketplacesForCountry("us"), MarketplacesForCountry("Us"))
	})

	t.Run("Result does not alias the table", func(t *testing.T) {
		got := MarketplacesForCountry("sg")
		got[0].AvailableInCountries[0] = "xx"
		got[0].DisplayName = "changed"
		again := MarketplacesForCountry("sg")
		assert.Equal(t, "Shopee", again[0].DisplayName)
		assert.Equal(t, []string{"sg", "my", "ph"}, again[0].AvailableInCountries)
	})
}

func TestCountrySpecificURL(t *testing.T) {
	shopee, ok := MarketplaceByID("shopee")
	require.True(t, ok)
	lazada, ok := MarketplaceByID("lazada")
	require.True(t, ok)
	amazon, ok := MarketplaceByID("amazon")
	require.True(t, ok)

	tests := []struct {
		name        string
		marketplace models.MarketplaceInfo
		country     string
		want        string
	}{
		{name: "shopee sg", marketplace: shopee, country: "sg", want: "https://shopee.sg"},
		{name: "shopee my upper", marketplace: shopee, country: "MY", want: "https://shopee.com.my"},
		{name: "shopee ph", marketplace: shopee, country: "ph", want: "https://shopee.ph"},
		{name: "shopee generic", marketplace: shopee, country: "us", want: "https://shopee."},
		{name: "lazada sg", marketplace: lazada, country: "sg", want: "https://www.lazada.sg"},
		{name: "lazada my", marketplace: lazada, country: "my", want: "https://www.lazada.com.my"},
		{name: "lazada ph", marketplace: lazada, country: "ph", want: "https://www.lazada.com.ph"},
		{name: "lazada generic", marketplace: lazada, country: "zz", want: "https://www.lazada."},
		{name: "amazon generic", marketplace: amazon, country: "sg", want: "https://www.amazon.com"},
		{name: "no base url", marketplace: models.MarketplaceInfo{ID: "etsy"}, country: "us", want: ""},
		{name: "localized without base url", marketplace: models.MarketplaceInfo{ID: "shopee"}, country: "sg", want: "https://shopee.sg"},
		{name: "localized miss without base url", marketplace: models.MarketplaceInfo{ID: "shopee"}, country: "us", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CountrySpecificURL(tt.marketplace, tt.country))
		})
	}

	t.Run("Non-empty whenever a URL exists", func(t *testing.T) {
		for _, m := range Marketplaces() {
			for _, c := range append(SupportedCountries(), CountryInfo("zz")) {
				assert.NotEmpty(t, CountrySpecificURL(m, c.Code), "%s/%s", m.ID, c.Code)
			}
		}
	})
}

func TestCountryInfo(t *testing.T) {
	tests := []struct {
		code     string
		wantCode string
		currency string
	}{
		{code: "us", wantCode: "us", currency: "USD"},
		{code: "PH", wantCode: "ph", currency: "PHP"},
		{code: "my", wantCode: "my", currency: "MYR"},
		{code: "Sg", wantCode: "sg", currency: "SGD"},
		{code: "global", wantCode: "global", currency: "USD"},
		{code: "fr", wantCode: "global", currency: "USD"},
		{code: "", wantCode: "global", currency: "USD"},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			info := CountryInfo(tt.code)
			assert.Equal(t, tt.wantCode, info.Code)
			assert.Equal(t, tt.currency, info.Currency)
			assert.NotEmpty(t, info.DisplayName)
			assert.NotEmpty(t, info.Flag)
		})
	}

	assert.Len(t, SupportedCountries(), 4)
	assert.True(t, IsSupportedCountry("SG"))
	assert.False(t, IsSupportedCountry("global"))
}

func TestDraftDefaults(t *testing.T) {
	assert.Equal(t, "shopee", DefaultIconForCountry("sg"))
	assert.Equal(t, "shopee", DefaultIconForCountry("MY"))
	assert.Equal(t, "amazon", DefaultIconForCountry("us"))
	assert.Equal(t, "lazada", DefaultIconForCountry("ph"))
	assert.Equal(t, "shopee", DefaultIconForCountry("global"))

	assert.Equal(t, "SGD", CurrencyForCountry("sg"))
	assert.Equal(t, "USD", CurrencyForCountry("unknown"))
}

func TestMarketplaceByID(t *testing.T) {
	m, ok := MarketplaceByID("TikTok")
	require.True(t, ok)
	assert.Equal(t, "TikTok Shop", m.DisplayName)

	_, ok = MarketplaceByID("ebay")
	assert.False(t, ok)
}
