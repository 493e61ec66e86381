package models

// fallbackProducts показываются, когда хранилище пустое или недоступно
var fallbackProducts = []*Product{
	{
		ID:          "demo-1",
		Title:       "Labubu Halloween Keychain",
		Subtitle:    "Limited Edition Collectible",
		ImageName:   DefaultImageName,
		Price:       ProductPrice{Amount: "15.99", Currency: "$"},
		OfficialURL: "https://www.popmart.com/products/labubu-halloween",
		Marketplaces: []MarketplaceLink{
			{Name: "Popmart", IconName: "popmart", Type: MarketplaceOfficial, URL: "https://www.popmart.com", Availability: AvailabilityInStock},
			{Name: "Shopee", IconName: "shopee", Type: MarketplaceSecondary, URL: "https://shopee.com", Availability: AvailabilityOutOfStock},
			{Name: "Lazada", IconName: "lazada", Type: MarketplaceSecondary, URL: "https://lazada.com", Availability: AvailabilityInStock},
			{Name: "TikTok", IconName: "tiktok", Type: MarketplaceSecondary, URL: "https://tiktok.com", Availability: AvailabilityInStock},
		},
	},
	{
		ID:           "demo-2",
		Title:        "Crybaby x Labubu Blind Box",
		Subtitle:     "Series 1 Mystery Figure",
		ImageName:    DefaultImageName,
		Price:        ProductPrice{Amount: "12.99", Currency: "$"},
		OfficialURL:  "https://www.popmart.com/products/crybaby-labubu",
		Marketplaces: []MarketplaceLink{},
	},
	{
		ID:           "demo-3",
		Title:        "Dimoo Space Travel Series",
		Subtitle:     "Astronaut Edition",
		ImageName:    DefaultImageName,
		Price:        ProductPrice{Amount: "14.99", Currency: "$"},
		OfficialURL:  "https://www.popmart.com/products/dimoo-space-travel",
		Marketplaces: []MarketplaceLink{},
	},
	{
		ID:           "demo-4",
		Title:        "Skull Panda City of Night",
		Subtitle:     "Glow in the Dark",
		ImageName:    DefaultImageName,
		Price:        ProductPrice{Amount: "16.99", Currency: "$"},
		OfficialURL:  "https://www.popmart.com/products/skull-panda-city-night",
		Marketplaces: []MarketplaceLink{},
	},
}

// FallbackProducts возвращает копию демонстрационного набора
func FallbackProducts() []*Product {
	return CloneProducts(fallbackProducts)
}
