package model

import (
	"net/url"
	"time"
)

// CategoryRef is the category summary embedded in a product.
type CategoryRef struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// BrandRef is the brand summary embedded in a product.
type BrandRef struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Logo string `json:"logo,omitempty"`
}

// Product represents an appliance in the catalogue.
// Price is expressed in the smallest currency unit (XOF has no subunit).
type Product struct {
	ID          int64        `json:"id"`
	Name        string       `json:"name"`
	Description string       `json:"description,omitempty"`
	Reference   string       `json:"reference,omitempty"`
	Price       int64        `json:"price"`
	Stock       int          `json:"stock"`
	Available   bool         `json:"available"`
	Category    *CategoryRef `json:"category,omitempty"`
	Brand       *BrandRef    `json:"brand,omitempty"`
	Images      []string     `json:"images,omitempty"`
	ImageURLs   []string     `json:"imageUrls,omitempty"`
	AddedAt     time.Time    `json:"addedAt,omitempty"`
}

// InStock reports whether at least one unit can be ordered.
func (p Product) InStock() bool {
	return p.Available && p.Stock > 0
}

// Category represents a product category.
type Category struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Image       string `json:"image,omitempty"`
	ParentID    *int64 `json:"parentId,omitempty"`
}

// Brand represents a manufacturer.
type Brand struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Logo        string `json:"logo,omitempty"`
}

// ProductPage is one page of a product listing.
type ProductPage struct {
	Products      []Product `json:"products"`
	Page          int       `json:"page"`
	Size          int       `json:"size"`
	TotalElements int64     `json:"totalElements"`
	TotalPages    int       `json:"totalPages"`
	Last          bool      `json:"last"`
}

// ProductQuery addresses one backend listing call.
// At most one of CategoryID and BrandID is set.
type ProductQuery struct {
	CategoryID *int64
	BrandID    *int64
	Params     url.Values
}

// Breadcrumb is one entry of the navigation trail shown above a listing.
type Breadcrumb struct {
	Label string `json:"label"`
	Route string `json:"route,omitempty"`
}
