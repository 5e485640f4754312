// Package backend is the REST client for the catalogue and orders backend.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"froid-storefront/internal/model"

	"github.com/rs/zerolog"
)

const errorBodyReadLimit int64 = 4096

// Client is the storefront's view of the backend.
type Client interface {
	Categories(ctx context.Context) ([]model.Category, error)
	AvailableBrands(ctx context.Context) ([]model.Brand, error)
	Products(ctx context.Context, q model.ProductQuery) (*model.ProductPage, error)
	Product(ctx context.Context, id int64) (*model.Product, error)

	Profile(ctx context.Context, token string) (*model.Profile, error)
	Wishlist(ctx context.Context, token string) ([]int64, error)
	AddToWishlist(ctx context.Context, token string, productID int64) error
	RemoveFromWishlist(ctx context.Context, token string, productID int64) error

	CreateGuestOrder(ctx context.Context, draft *model.OrderDraft) (*model.OrderConfirmation, error)
	CreateCustomerOrder(ctx context.Context, token string, draft *model.OrderDraft) (*model.OrderConfirmation, error)
}

// RequestObserver records the outcome of every backend call.
type RequestObserver interface {
	ObserveBackendRequest(endpoint, status string, d time.Duration)
}

type httpClient struct {
	baseURL    string
	httpClient *http.Client
	observer   RequestObserver
	logger     zerolog.Logger
}

// Option configures optional client behaviour.
type Option func(*httpClient)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *httpClient) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithObserver reports request durations to o.
func WithObserver(o RequestObserver) Option {
	return func(c *httpClient) {
		c.observer = o
	}
}

// New builds a client for the backend rooted at baseURL (e.g.
// http://localhost:8080/api).
func New(baseURL string, timeout time.Duration, logger zerolog.Logger, opts ...Option) Client {
	c := &httpClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger.With().Str("component", "backend").Logger(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c
}

func (c *httpClient) Categories(ctx context.Context) ([]model.Category, error) {
	var out []categorieDTO
	if err := c.do(ctx, "categories", http.MethodGet, "/categories", "", nil, &out); err != nil {
		return nil, err
	}
	categories := make([]model.Category, len(out))
	for i, d := range out {
		categories[i] = d.toModel()
	}
	return categories, nil
}

func (c *httpClient) AvailableBrands(ctx context.Context) ([]model.Brand, error) {
	var out []marqueDTO
	if err := c.do(ctx, "brands", http.MethodGet, "/marques/available", "", nil, &out); err != nil {
		return nil, err
	}
	brands := make([]model.Brand, len(out))
	for i, d := range out {
		brands[i] = d.toModel()
	}
	return brands, nil
}

func (c *httpClient) Products(ctx context.Context, q model.ProductQuery) (*model.ProductPage, error) {
	endpoint, path := "products", "/produits"
	switch {
	case q.CategoryID != nil:
		endpoint, path = "products_by_category", fmt.Sprintf("/produits/categorie/%d", *q.CategoryID)
	case q.BrandID != nil:
		endpoint, path = "products_by_brand", fmt.Sprintf("/produits/marque/%d", *q.BrandID)
	}
	if encoded := q.Params.Encode(); encoded != "" {
		path += "?" + encoded
	}

	var out pageDTO
	if err := c.do(ctx, endpoint, http.MethodGet, path, "", nil, &out); err != nil {
		return nil, err
	}
	return out.toModel(), nil
}

func (c *httpClient) Product(ctx context.Context, id int64) (*model.Product, error) {
	var out produitDTO
	if err := c.do(ctx, "product", http.MethodGet, fmt.Sprintf("/produits/%d", id), "", nil, &out); err != nil {
		return nil, err
	}
	p := out.toModel()
	return &p, nil
}

func (c *httpClient) Profile(ctx context.Context, token string) (*model.Profile, error) {
	var out clientDTO
	if err := c.do(ctx, "profile", http.MethodGet, "/clients/profile", token, nil, &out); err != nil {
		return nil, err
	}
	return out.toModel(), nil
}

func (c *httpClient) Wishlist(ctx context.Context, token string) ([]int64, error) {
	var out []int64
	if err := c.do(ctx, "wishlist", http.MethodGet, "/clients/wishlist", token, nil, &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = []int64{}
	}
	return out, nil
}

func (c *httpClient) AddToWishlist(ctx context.Context, token string, productID int64) error {
	return c.do(ctx, "wishlist_add", http.MethodPost, fmt.Sprintf("/clients/wishlist/%d", productID), token, nil, nil)
}

func (c *httpClient) RemoveFromWishlist(ctx context.Context, token string, productID int64) error {
	return c.do(ctx, "wishlist_remove", http.MethodDelete, fmt.Sprintf("/clients/wishlist/%d", productID), token, nil, nil)
}

func (c *httpClient) CreateGuestOrder(ctx context.Context, draft *model.OrderDraft) (*model.OrderConfirmation, error) {
	var out commandeResponse
	if err := c.do(ctx, "guest_order", http.MethodPost, "/commandes/invite", "", newCommandeRequest(draft), &out); err != nil {
		return nil, err
	}
	return out.toModel(), nil
}

func (c *httpClient) CreateCustomerOrder(ctx context.Context, token string, draft *model.OrderDraft) (*model.OrderConfirmation, error) {
	var out commandeResponse
	if err := c.do(ctx, "customer_order", http.MethodPost, "/commandes/client", token, newCommandeRequest(draft), &out); err != nil {
		return nil, err
	}
	return out.toModel(), nil
}

// do executes one call and decodes a 2xx JSON body into out when out is
// non-nil. Non-2xx answers become *StatusError.
func (c *httpClient) do(ctx context.Context, endpoint, method, path, token string, body, out any) error {
	start := time.Now()
	status := "error"
	defer func() {
		if c.observer != nil {
			c.observer.ObserveBackendRequest(endpoint, status, time.Since(start))
		}
	}()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode %s request: %w", endpoint, err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to build %s request: %w", endpoint, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			status = "canceled"
		}
		c.logger.Debug().Err(err).Str("endpoint", endpoint).Msg("backend request failed")
		return fmt.Errorf("backend %s request failed: %w", endpoint, err)
	}
	defer func() { _ = resp.Body.Close() }()

	status = strconv.Itoa(resp.StatusCode)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		se := &StatusError{Endpoint: endpoint, Status: resp.StatusCode}
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, errorBodyReadLimit))
		var eb errorBody
		if json.Unmarshal(raw, &eb) == nil {
			se.Message = eb.Message
			if se.Message == "" {
				se.Message = eb.Error
			}
		}
		c.logger.Warn().
			Str("endpoint", endpoint).
			Int("status", resp.StatusCode).
			Str("message", se.Message).
			Msg("backend returned error status")
		return se
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", endpoint, err)
	}

	return nil
}
