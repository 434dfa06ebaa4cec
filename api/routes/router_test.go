package routes

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/angelmondragon/havenwood-client/internal/cart"
	"github.com/angelmondragon/havenwood-client/internal/wishlist"
	"github.com/angelmondragon/havenwood-client/pkg/config"
)

type stubCart struct{}

func (stubCart) Load(ctx context.Context, force bool) {}
func (stubCart) Add(ctx context.Context, params cart.AddParams) (*cart.Line, error) {
	return &cart.Line{ID: "line-1"}, nil
}
func (stubCart) Remove(ctx context.Context, id string)                        {}
func (stubCart) UpdateQuantity(ctx context.Context, id string, qty int) error { return nil }
func (stubCart) Clear(ctx context.Context)                                    {}
func (stubCart) Snapshot() []*cart.Line                                       { return nil }
func (stubCart) Totals() cart.Totals                                          { return cart.Totals{} }

type stubWishlist struct{}

func (stubWishlist) Load(ctx context.Context, force bool) {}
func (stubWishlist) Add(ctx context.Context, product map[string]any) (*wishlist.Entry, error) {
	return &wishlist.Entry{ProductID: "p1"}, nil
}
func (stubWishlist) Remove(ctx context.Context, productID string) {}
func (stubWishlist) Toggle(ctx context.Context, product map[string]any) (bool, error) {
	return true, nil
}
func (stubWishlist) Clear(ctx context.Context)      {}
func (stubWishlist) Contains(productID string) bool { return false }
func (stubWishlist) Snapshot() []*wishlist.Entry    { return nil }

type stubSession struct{}

func (stubSession) SetToken(ctx context.Context, token string) error { return nil }
func (stubSession) ClearToken(ctx context.Context) error             { return nil }
func (stubSession) IsAuthenticated(ctx context.Context) bool         { return false }

func newTestRouter() http.Handler {
	return NewRouter(Params{
		Config:   &config.Config{App: config.AppConfig{Env: config.AppEnvDev}},
		Cart:     stubCart{},
		Wishlist: stubWishlist{},
		Session:  stubSession{},
		Registry: prometheus.NewRegistry(),
	})
}

func TestRouterServesCoreRoutes(t *testing.T) {
	t.Parallel()

	router := newTestRouter()

	cases := []struct {
		method string
		path   string
		status int
	}{
		{http.MethodGet, "/healthz", http.StatusOK},
		{http.MethodGet, "/health/live", http.StatusOK},
		{http.MethodGet, "/health/ready", http.StatusOK},
		{http.MethodGet, "/metrics", http.StatusOK},
		{http.MethodGet, "/v1/cart", http.StatusOK},
		{http.MethodGet, "/v1/wishlist", http.StatusOK},
		{http.MethodGet, "/v1/session", http.StatusOK},
		{http.MethodGet, "/v1/unknown", http.StatusNotFound},
	}

	for _, tc := range cases {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(tc.method, tc.path, nil))
		if rec.Code != tc.status {
			t.Fatalf("%s %s = %d, want %d", tc.method, tc.path, rec.Code, tc.status)
		}
	}
}

func TestRouterSetsRequestID(t *testing.T) {
	t.Parallel()

	router := newTestRouter()
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health/live", nil))

	if rec.Header().Get("X-Request-Id") == "" {
		t.Fatal("request id header missing")
	}
}

func TestRouterRecoversFromPanic(t *testing.T) {
	t.Parallel()

	router := NewRouter(Params{
		Config:   &config.Config{App: config.AppConfig{Env: config.AppEnvDev}},
		Cart:     panickyCart{},
		Wishlist: stubWishlist{},
		Session:  stubSession{},
	})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/cart", nil))
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
}

type panickyCart struct{ stubCart }

func (panickyCart) Snapshot() []*cart.Line { panic("boom") }
