package models

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProduct_OfficialLink(t *testing.T) {
	t.Run("First official link wins", func(t *testing.T) {
		p := &Product{Marketplaces: []MarketplaceLink{
			{Name: "Shopee", Type: MarketplaceSecondary},
			{Name: "Popmart SG", Type: MarketplaceOfficial},
			{Name: "Popmart US", Type: MarketplaceOfficial},
		}}

		link, ok := p.OfficialLink()
		require.True(t, ok)
		assert.Equal(t, "Popmart SG", link.Name)
	})

	t.Run("No official link", func(t *testing.T) {
		p := &Product{Marketplaces: []MarketplaceLink{{Name: "Amazon", Type: MarketplacePrimary}}}
		_, ok := p.OfficialLink()
		assert.False(t, ok)
	})
}

func TestProduct_SecondaryLinks(t *testing.T) {
	p := FallbackProducts()[0]
	links := p.SecondaryLinks()

	names := make([]string, 0, len(links))
	for _, l := range links {
		names = append(names, l.Name)
	}
	assert.Equal(t, []string{"Shopee", "Lazada", "TikTok"}, names)
}

func TestFallbackProducts(t *testing.T) {
	products := FallbackProducts()
	require.Len(t, products, 4)
	assert.Equal(t, "demo-1", products[0].ID)
	assert.Equal(t, "demo-4", products[3].ID)

	// Изменение копии не затрагивает исходную таблицу
	products[0].Title = "changed"
	products[0].Marketplaces[0].Name = "changed"
	again := FallbackProducts()
	assert.Equal(t, "Labubu Halloween Keychain", again[0].Title)
	assert.Equal(t, "Popmart", again[0].Marketplaces[0].Name)
}

func TestProductDraft_IsValid(t *testing.T) {
	valid := ProductDraft{
		Title:       "Labubu",
		Description: "Keychain",
		ImageName:   DefaultImageName,
		Price:       ProductPrice{Amount: "15.99", Currency: "SGD"},
		OfficialURL: "https://www.popmart.com",
	}
	assert.True(t, valid.IsValid())

	blankers := map[string]func(d *ProductDraft){
		"title":        func(d *ProductDraft) { d.Title = "   " },
		"description":  func(d *ProductDraft) { d.Description = "" },
		"price amount": func(d *ProductDraft) { d.Price.Amount = "\t" },
		"image":        func(d *ProductDraft) { d.ImageName = "" },
		"official url": func(d *ProductDraft) { d.OfficialURL = " " },
	}
	for name, blank := range blankers {
		t.Run("Blank "+name, func(t *testing.T) {
			d := valid.Clone()
			blank(&d)
			assert.False(t, d.IsValid())
		})
	}

	t.Run("Format is not validated", func(t *testing.T) {
		d := valid.Clone()
		d.Price.Amount = "about ten"
		d.OfficialURL = "not a url"
		assert.True(t, d.IsValid())
	})
}

func TestEnums_JSON(t *testing.T) {
	var link MarketplaceLink
	err := json.Unmarshal([]byte(`{"name":"Shopee","type":"Secondary","url":"u","availability":"PreOrder"}`), &link)
	require.NoError(t, err)
	assert.Equal(t, MarketplaceSecondary, link.Type)
	assert.Equal(t, AvailabilityPreOrder, link.Availability)
	assert.Equal(t, "Pre-Order", link.Availability.Label())

	err = json.Unmarshal([]byte(`{"name":"x","type":"Tertiary","url":"u"}`), &link)
	assert.Error(t, err)

	err = json.Unmarshal([]byte(`{"name":"x","type":"Official","url":"u","availability":"Sold"}`), &link)
	assert.Error(t, err)
}

func TestWebsiteDomain(t *testing.T) {
	d, ok := DomainForIcon("lazada")
	require.True(t, ok)
	assert.True(t, d.IsMarketplace())
	assert.False(t, DomainPopmart.IsMarketplace())
	assert.False(t, DomainAmazon.IsMarketplace())

	_, ok = DomainForIcon("ebay")
	assert.False(t, ok)
}

func TestProductFilter(t *testing.T) {
	products := FallbackProducts()
	min := decimal.RequireFromString("13")
	max := decimal.RequireFromString("16")

	t.Run("Price range", func(t *testing.T) {
		f := &ProductFilter{MinPrice: &min, MaxPrice: &max}
		got := f.Apply(products)
		require.Len(t, got, 2)
		assert.Equal(t, "demo-1", got[0].ID)
		assert.Equal(t, "demo-3", got[1].ID)
	})

	t.Run("Marketplace and availability", func(t *testing.T) {
		f := &ProductFilter{Marketplace: "SHOPEE", Availability: AvailabilityOutOfStock}
		got := f.Apply(products)
		require.Len(t, got, 1)
		assert.Equal(t, "demo-1", got[0].ID)

		f = &ProductFilter{Marketplace: "shopee", Availability: AvailabilityInStock}
		assert.Empty(t, f.Apply(products))
	})

	t.Run("Search query", func(t *testing.T) {
		f := &ProductFilter{SearchQuery: "astronaut"}
		got := f.Apply(products)
		require.Len(t, got, 1)
		assert.Equal(t, "demo-3", got[0].ID)
	})

	t.Run("Unparsable price excluded by price filter", func(t *testing.T) {
		f := &ProductFilter{MinPrice: &min}
		p := &Product{Price: ProductPrice{Amount: "n/a"}}
		assert.False(t, f.Matches(p))
	})

	t.Run("Empty filter passes everything", func(t *testing.T) {
		var f *ProductFilter
		assert.Len(t, f.Apply(products), 4)
	})
}
