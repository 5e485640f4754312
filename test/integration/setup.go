package integration

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"froid-storefront/internal/database"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// TestDB represents a test database instance.
type TestDB struct {
	Container *postgres.PostgresContainer
	Pool      *pgxpool.Pool
	ConnStr   string
}

// SetupTestDB creates a PostgreSQL test container with the cart schema
// migrated.
func SetupTestDB(t *testing.T) *TestDB {
	t.Helper()

	ctx := context.Background()

	postgresContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second)),
	)
	if err != nil {
		t.Fatalf("failed to start postgres container: %v", err)
	}

	connStr, err := postgresContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("failed to get connection string: %v", err)
	}

	pool, err := pgxpool.New(ctx, connStr)
	if err != nil {
		t.Fatalf("failed to create connection pool: %v", err)
	}

	if err := pool.Ping(ctx); err != nil {
		t.Fatalf("failed to ping database: %v", err)
	}

	if err := database.Migrate(ctx, pool, zerolog.Nop()); err != nil {
		t.Fatalf("failed to migrate schema: %v", err)
	}

	t.Cleanup(func() {
		pool.Close()
		if err := postgresContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	return &TestDB{
		Container: postgresContainer,
		Pool:      pool,
		ConnStr:   connStr,
	}
}

// CleanupDB removes every stored cart.
func CleanupDB(t *testing.T, pool *pgxpool.Pool) {
	t.Helper()

	if _, err := pool.Exec(context.Background(), "DELETE FROM cart_snapshots"); err != nil {
		t.Logf("failed to clean table cart_snapshots: %v", err)
	}
}

// FakeProduct is a catalogue entry served by FakeBackend.
type FakeProduct struct {
	ID    int64
	Name  string
	Price float64
	Stock int
}

// FakeBackend is an in-process stand-in for the catalogue and orders
// backend. It records every order it receives.
type FakeBackend struct {
	URL string

	mu       sync.Mutex
	products map[int64]FakeProduct
	orders   []map[string]any
}

// StartFakeBackend serves products over the backend's REST contract.
func StartFakeBackend(t *testing.T, products ...FakeProduct) *FakeBackend {
	t.Helper()

	fb := &FakeBackend{products: make(map[int64]FakeProduct)}
	for _, p := range products {
		fb.products[p.ID] = p
	}

	srv := httptest.NewServer(http.HandlerFunc(fb.serve))
	t.Cleanup(srv.Close)
	fb.URL = srv.URL
	return fb
}

// Orders returns the order payloads received so far.
func (fb *FakeBackend) Orders() []map[string]any {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	return append([]map[string]any(nil), fb.orders...)
}

func (fb *FakeBackend) serve(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	switch {
	case r.Method == http.MethodGet && strings.HasPrefix(r.URL.Path, "/produits/"):
		id, err := strconv.ParseInt(strings.TrimPrefix(r.URL.Path, "/produits/"), 10, 64)
		fb.mu.Lock()
		p, ok := fb.products[id]
		fb.mu.Unlock()
		if err != nil || !ok {
			w.WriteHeader(http.StatusNotFound)
			fmt.Fprint(w, `{"message":"Produit non trouvé"}`)
			return
		}
		json.NewEncoder(w).Encode(map[string]any{
			"idProduit":       p.ID,
			"nomProduit":      p.Name,
			"prix":            p.Price,
			"stockDisponible": p.Stock,
			"disponibilite":   p.Stock > 0,
		})

	case r.Method == http.MethodPost && r.URL.Path == "/commandes/invite":
		var order map[string]any
		if err := json.NewDecoder(r.Body).Decode(&order); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			fmt.Fprint(w, `{"message":"invalid order"}`)
			return
		}
		fb.mu.Lock()
		fb.orders = append(fb.orders, order)
		n := len(fb.orders)
		fb.mu.Unlock()

		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(map[string]any{
			"idCommande":     n,
			"numeroCommande": fmt.Sprintf("CMD-%04d", n),
			"statutCommande": "EN_ATTENTE",
		})

	default:
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprint(w, `{"message":"not found"}`)
	}
}
