package httpserver

import (
	"net/http"
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"storefront/internal/domain"
)

func TestCatalogRoutes(t *testing.T) {
	deps := newDeps()
	deps.CatalogSvc = &stubCatalogSvc{
		categories: []domain.Category{{ID: "c1", Slug: "mugs", Name: "Mugs"}},
		products:   []domain.Product{{ID: "p1", Slug: "blue-mug", Name: "Blue Mug", Price: decimal.RequireFromString("12.5"), Stock: 0, IsActive: true}},
	}
	router := newTestRouter(t, deps)

	rec := do(router, http.MethodGet, "/categories", "")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"slug":"mugs"`) {
		t.Fatalf("categories: %d %s", rec.Code, rec.Body.String())
	}

	rec = do(router, http.MethodGet, "/categories/mugs/products", "")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"price":"12.50"`) {
		t.Fatalf("category products: %d %s", rec.Code, rec.Body.String())
	}

	rec = do(router, http.MethodGet, "/products/blue-mug", "")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"inStock":false`) {
		t.Fatalf("product: %d %s", rec.Code, rec.Body.String())
	}

	rec = do(router, http.MethodGet, "/products/missing", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}
