// Package listing maps product listing filters to backend query
// parameters and drives the listing view state.
package listing

import (
	"net/url"
	"slices"
	"strconv"
	"strings"

	"froid-storefront/internal/model"
)

// DefaultSort lists the newest products first.
const DefaultSort = "dateAjout-desc"

var (
	sortFields     = []string{"dateAjout", "prix", "nomProduit"}
	sortDirections = []string{"asc", "desc"}
)

// Settings holds the paging defaults applied to incoming filters.
type Settings struct {
	DefaultPageSize int
	PageSizes       []int
}

// DefaultSettings mirrors the storefront's page size selector.
var DefaultSettings = Settings{
	DefaultPageSize: 12,
	PageSizes:       []int{6, 12, 24, 48},
}

// Filters is the state of the listing filter panel.
type Filters struct {
	PriceMin      *int64 `json:"priceMin,omitempty"`
	PriceMax      *int64 `json:"priceMax,omitempty"`
	CategoryID    *int64 `json:"categoryId,omitempty"`
	BrandID       *int64 `json:"brandId,omitempty"`
	AvailableOnly bool   `json:"availableOnly"`
	Query         string `json:"query,omitempty"`
	Sort          string `json:"sort"`
	Page          int    `json:"page"`
	Size          int    `json:"size"`
}

// NewFilters returns the unfiltered first page.
func NewFilters(s Settings) Filters {
	return Filters{Sort: DefaultSort, Size: s.DefaultPageSize}
}

// Normalize clamps the paging fields and sort token to allowed values.
func (f Filters) Normalize(s Settings) Filters {
	if f.Page < 0 {
		f.Page = 0
	}
	if !slices.Contains(s.PageSizes, f.Size) {
		f.Size = s.DefaultPageSize
	}
	if _, _, ok := parseSort(f.Sort); !ok {
		f.Sort = DefaultSort
	}
	f.Query = strings.TrimSpace(f.Query)
	return f
}

// Change replaces the filters with next and returns to the first page.
func (f Filters) Change(next Filters, s Settings) Filters {
	next.Page = 0
	return next.Normalize(s)
}

// WithPage moves to page without touching any other filter.
func (f Filters) WithPage(page int) Filters {
	if page < 0 {
		page = 0
	}
	f.Page = page
	return f
}

// SortBy returns the backend sort field.
func (f Filters) SortBy() string {
	field, _, _ := parseSort(f.Sort)
	return field
}

// SortDir returns the backend sort direction.
func (f Filters) SortDir() string {
	_, dir, _ := parseSort(f.Sort)
	return dir
}

// Params encodes the filters as backend query parameters. Optional
// filters are only present when set; disponibilite is only sent when
// the availability toggle is on.
func (f Filters) Params() url.Values {
	v := url.Values{}
	v.Set("page", strconv.Itoa(f.Page))
	v.Set("size", strconv.Itoa(f.Size))
	v.Set("sortBy", f.SortBy())
	v.Set("sortDir", f.SortDir())

	if f.Query != "" {
		v.Set("q", f.Query)
	}
	if f.PriceMin != nil {
		v.Set("prixMin", strconv.FormatInt(*f.PriceMin, 10))
	}
	if f.PriceMax != nil {
		v.Set("prixMax", strconv.FormatInt(*f.PriceMax, 10))
	}
	if f.CategoryID != nil {
		v.Set("categorieId", strconv.FormatInt(*f.CategoryID, 10))
	}
	if f.BrandID != nil {
		v.Set("marqueId", strconv.FormatInt(*f.BrandID, 10))
	}
	if f.AvailableOnly {
		v.Set("disponibilite", "true")
	}
	return v
}

// ProductQuery picks the backend target: the category route when a category is
// selected, else the brand route, else the plain listing.
func (f Filters) ProductQuery() model.ProductQuery {
	q := model.ProductQuery{Params: f.Params()}
	switch {
	case f.CategoryID != nil:
		id := *f.CategoryID
		q.CategoryID = &id
	case f.BrandID != nil:
		id := *f.BrandID
		q.BrandID = &id
	}
	return q
}

// FromRequest rebuilds filters from a storefront route and its query
// string. Routes of the form .../categorie/{id} (or categories) and
// .../marque/{id} (or brands) select the category or brand. Unparseable
// values are ignored.
func FromRequest(route string, query url.Values, s Settings) Filters {
	f := NewFilters(s)

	segments := strings.Split(strings.Trim(route, "/"), "/")
	for i := 0; i+1 < len(segments); i++ {
		id, err := strconv.ParseInt(segments[i+1], 10, 64)
		if err != nil {
			continue
		}
		switch segments[i] {
		case "categorie", "categories":
			f.CategoryID = &id
		case "marque", "brands":
			f.BrandID = &id
		}
	}

	f.Query = query.Get("q")
	if n, err := strconv.Atoi(query.Get("page")); err == nil {
		f.Page = n
	}
	if n, err := strconv.Atoi(query.Get("size")); err == nil {
		f.Size = n
	}

	switch {
	case query.Get("sort") != "":
		f.Sort = query.Get("sort")
	case query.Get("sortBy") != "":
		dir := query.Get("sortDir")
		if dir == "" {
			dir = "asc"
		}
		f.Sort = query.Get("sortBy") + "-" + dir
	}

	f.PriceMin = parseID(query.Get("prixMin"))
	f.PriceMax = parseID(query.Get("prixMax"))
	if f.CategoryID == nil {
		f.CategoryID = parseID(query.Get("categorieId"))
	}
	if f.BrandID == nil {
		f.BrandID = parseID(query.Get("marqueId"))
	}
	f.AvailableOnly, _ = strconv.ParseBool(query.Get("disponibilite"))

	return f.Normalize(s)
}

func parseID(s string) *int64 {
	if s == "" {
		return nil
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return nil
	}
	return &n
}

func parseSort(token string) (field, dir string, ok bool) {
	field, dir, found := strings.Cut(token, "-")
	if !found || !slices.Contains(sortFields, field) || !slices.Contains(sortDirections, dir) {
		field, dir, _ = strings.Cut(DefaultSort, "-")
		return field, dir, false
	}
	return field, dir, true
}
