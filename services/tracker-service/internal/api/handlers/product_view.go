package handlers

import (
	"github.com/everytech/poptracker/services/tracker-service/internal/domain/models"
	"github.com/everytech/poptracker/services/tracker-service/internal/domain/services"
)

// LinkView - ссылка на площадку с подписью наличия для отображения
type LinkView struct {
	models.MarketplaceLink
	AvailabilityLabel string               `json:"availability_label"`
	Site              models.WebsiteDomain `json:"site,omitempty"`
	IsMarketplace     bool                 `json:"is_marketplace"`
}

// ProductView - товар с разобранными ссылками: основная официальная и вторичные
type ProductView struct {
	*models.Product
	PrimaryLink    *LinkView  `json:"primary_link,omitempty"`
	SecondaryLinks []LinkView `json:"secondary_links"`
}

// ProductListView - состояние списка в формате ответа API
type ProductListView struct {
	Status    services.SyncStatus `json:"status"`
	Products  []ProductView       `json:"products"`
	IsLoading bool                `json:"is_loading"`
	Error     string              `json:"error,omitempty"`
}

func newLinkView(link models.MarketplaceLink) LinkView {
	view := LinkView{
		MarketplaceLink:   link,
		AvailabilityLabel: link.Availability.Label(),
	}
	if site, ok := models.DomainForIcon(link.IconName); ok {
		view.Site = site
		view.IsMarketplace = site.IsMarketplace()
	}
	return view
}

func newProductView(p *models.Product) ProductView {
	view := ProductView{Product: p}
	if link, ok := p.OfficialLink(); ok {
		primary := newLinkView(link)
		view.PrimaryLink = &primary
	}

	secondary := p.SecondaryLinks()
	view.SecondaryLinks = make([]LinkView, 0, len(secondary))
	for _, link := range secondary {
		view.SecondaryLinks = append(view.SecondaryLinks, newLinkView(link))
	}
	return view
}

func newProductViews(products []*models.Product) []ProductView {
	views := make([]ProductView, 0, len(products))
	for _, p := range products {
		views = append(views, newProductView(p))
	}
	return views
}

func newProductListView(state services.ProductListState) ProductListView {
	return ProductListView{
		Status:    state.Status,
		Products:  newProductViews(state.Products),
		IsLoading: state.IsLoading,
		Error:     state.Error,
	}
}
