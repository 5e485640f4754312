package listing

import (
	"fmt"

	"froid-storefront/internal/model"
)

// Heading is the navigation context rendered above a listing.
type Heading struct {
	Title       string             `json:"title"`
	Description string             `json:"description,omitempty"`
	Breadcrumbs []model.Breadcrumb `json:"breadcrumbs"`
}

const defaultDescription = "Discover our full range of air conditioning and home appliances"

// ProductTrail is the breadcrumb trail of a product page: the listing
// root, the product's category when known, then the product itself.
func ProductTrail(p model.Product) []model.Breadcrumb {
	trail := rootTrail()
	if p.Category != nil {
		trail = append(trail, model.Breadcrumb{
			Label: p.Category.Name,
			Route: fmt.Sprintf("/produits/categorie/%d", p.Category.ID),
		})
	}
	return append(trail, model.Breadcrumb{Label: p.Name})
}

func rootTrail() []model.Breadcrumb {
	return []model.Breadcrumb{
		{Label: "Home", Route: "/"},
		{Label: "Products", Route: "/produits"},
	}
}

// NewHeading derives the title, description and breadcrumb trail from
// the active filters. Unknown category or brand ids are left out of the
// trail.
func NewHeading(f Filters, categories []model.Category, brands []model.Brand) Heading {
	h := Heading{
		Title:       "Our products",
		Description: defaultDescription,
		Breadcrumbs: rootTrail(),
	}

	var category *model.Category
	if f.CategoryID != nil {
		for i := range categories {
			if categories[i].ID == *f.CategoryID {
				category = &categories[i]
				break
			}
		}
	}
	var brand *model.Brand
	if f.BrandID != nil {
		for i := range brands {
			if brands[i].ID == *f.BrandID {
				brand = &brands[i]
				break
			}
		}
	}

	if category != nil {
		h.Breadcrumbs = append(h.Breadcrumbs, model.Breadcrumb{Label: category.Name})
	}
	if brand != nil {
		h.Breadcrumbs = append(h.Breadcrumbs, model.Breadcrumb{Label: brand.Name})
	}
	if f.Query != "" {
		h.Breadcrumbs = append(h.Breadcrumbs, model.Breadcrumb{Label: fmt.Sprintf("Search: %q", f.Query)})
	}

	switch {
	case category != nil:
		h.Title = category.Name
		h.Description = category.Description
	case brand != nil:
		h.Title = "Products " + brand.Name
	case f.Query != "":
		h.Title = "Search results"
		h.Description = fmt.Sprintf("Results for %q", f.Query)
	}

	return h
}
