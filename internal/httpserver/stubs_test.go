package httpserver

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"storefront/internal/domain"
	catalogsvc "storefront/internal/service/catalog"
	checkoutsvc "storefront/internal/service/checkout"
	customersvc "storefront/internal/service/customer"
	ordersvc "storefront/internal/service/order"
)

type stubCustomerSvc struct {
	customer  *domain.Customer
	loginErr  error
	signErr   error
	lookupErr error
	addresses []domain.Address
	loggedOut string
}

func (s *stubCustomerSvc) Register(_ context.Context, _ customersvc.RegisterInput) (*domain.Customer, error) {
	return s.customer, s.signErr
}

func (s *stubCustomerSvc) Login(_ context.Context, _, _ string) (*domain.Customer, string, string, error) {
	return s.customer, "access", "refresh", s.loginErr
}

func (s *stubCustomerSvc) LookupByToken(_ context.Context, token string) (*domain.Customer, error) {
	if s.lookupErr != nil {
		return nil, s.lookupErr
	}
	if s.customer == nil || token != "good-token" {
		return nil, customersvc.ErrInvalidToken
	}
	return s.customer, nil
}

func (s *stubCustomerSvc) Logout(_ context.Context, token string) error {
	s.loggedOut = token
	return nil
}

func (s *stubCustomerSvc) AccessTTLSeconds() int { return 3600 }

func (s *stubCustomerSvc) ListAddresses(_ context.Context, _ string) ([]domain.Address, error) {
	return s.addresses, nil
}

func (s *stubCustomerSvc) GetAddress(_ context.Context, customerID, addressID string) (*domain.Address, error) {
	for _, a := range s.addresses {
		if a.ID == addressID && a.CustomerID == customerID {
			return &a, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (s *stubCustomerSvc) CreateAddress(_ context.Context, customerID string, in customersvc.AddressInput) (*domain.Address, error) {
	if in.FullName == "" {
		return nil, domain.Invalid("fullName", "full name required")
	}
	return &domain.Address{ID: "addr-new", CustomerID: customerID, FullName: in.FullName}, nil
}

func (s *stubCustomerSvc) UpdateAddress(ctx context.Context, customerID, addressID string, _ customersvc.AddressInput) (*domain.Address, error) {
	return s.GetAddress(ctx, customerID, addressID)
}

func (s *stubCustomerSvc) DeleteAddress(ctx context.Context, customerID, addressID string) error {
	_, err := s.GetAddress(ctx, customerID, addressID)
	return err
}

type stubAnonymousSvc struct{}

func (stubAnonymousSvc) Issue(context.Context) (string, string, error) {
	return "session-token", "session-key", nil
}

func (stubAnonymousSvc) LookupByToken(_ context.Context, token string) (string, error) {
	if token != "session-token" {
		return "", customersvc.ErrInvalidToken
	}
	return "session-key", nil
}

func (stubAnonymousSvc) AccessTTLSeconds() int { return 1209600 }

type stubCatalogSvc struct {
	categories []domain.Category
	products   []domain.Product
}

func (s *stubCatalogSvc) Categories(context.Context) ([]domain.Category, error) {
	return s.categories, nil
}

func (s *stubCatalogSvc) CategoryProducts(_ context.Context, slug string) (*domain.Category, []domain.Product, error) {
	for _, c := range s.categories {
		if c.Slug == slug {
			return &c, s.products, nil
		}
	}
	return nil, nil, domain.ErrNotFound
}

func (s *stubCatalogSvc) Product(_ context.Context, slug string) (*catalogsvc.ProductDetail, error) {
	for _, p := range s.products {
		if p.Slug == slug {
			return &catalogsvc.ProductDetail{Product: p}, nil
		}
	}
	return nil, domain.ErrNotFound
}

type stubCartSvc struct {
	cart      *domain.Cart
	addErr    error
	seen      domain.Identity
	mergedKey string
	mergedFor string
}

func (s *stubCartSvc) View(_ context.Context, id domain.Identity) (*domain.Cart, error) {
	s.seen = id
	return s.cart, nil
}

func (s *stubCartSvc) Count(_ context.Context, id domain.Identity) (int, error) {
	s.seen = id
	return s.cart.ItemCount(), nil
}

func (s *stubCartSvc) AddItem(_ context.Context, id domain.Identity, _ string, _ int) (*domain.Cart, error) {
	s.seen = id
	return s.cart, s.addErr
}

func (s *stubCartSvc) UpdateQuantity(_ context.Context, id domain.Identity, _ string, _ int) (*domain.Cart, error) {
	s.seen = id
	return s.cart, nil
}

func (s *stubCartSvc) RemoveItem(_ context.Context, id domain.Identity, _ string) (*domain.Cart, error) {
	s.seen = id
	return s.cart, nil
}

func (s *stubCartSvc) Clear(_ context.Context, id domain.Identity) error {
	s.seen = id
	s.cart = &domain.Cart{ID: s.cart.ID}
	return nil
}

func (s *stubCartSvc) MergeSession(_ context.Context, sessionKey, customerID string) error {
	s.mergedKey, s.mergedFor = sessionKey, customerID
	return nil
}

type stubCheckoutSvc struct {
	review    *checkoutsvc.Review
	reviewErr error
	conf      *checkoutsvc.Confirmation
	err       error
	addressID string
}

func (s *stubCheckoutSvc) Review(context.Context, domain.Identity) (*checkoutsvc.Review, error) {
	return s.review, s.reviewErr
}

func (s *stubCheckoutSvc) Checkout(_ context.Context, _ domain.Identity, addressID string) (*checkoutsvc.Confirmation, error) {
	s.addressID = addressID
	return s.conf, s.err
}

type stubOrderSvc struct {
	orders []domain.Order
}

func (s *stubOrderSvc) Get(_ context.Context, id domain.Identity, number string) (*domain.Order, error) {
	for _, o := range s.orders {
		if o.Number == number && o.CustomerID == id.CustomerID() {
			return &o, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (s *stubOrderSvc) List(_ context.Context, id domain.Identity) ([]ordersvc.Summary, error) {
	var out []ordersvc.Summary
	for _, o := range s.orders {
		if o.CustomerID == id.CustomerID() {
			out = append(out, ordersvc.Summary{Number: o.Number, Total: o.Total, ItemCount: o.ItemCount()})
		}
	}
	return out, nil
}

func (s *stubOrderSvc) Invoice(ctx context.Context, id domain.Identity, number string) (*ordersvc.Invoice, error) {
	o, err := s.Get(ctx, id, number)
	if err != nil {
		return nil, err
	}
	return &ordersvc.Invoice{Number: o.Number, Total: o.Total, BillTo: o.Shipping.Name}, nil
}

func newDeps() Deps {
	return Deps{
		CustomerSvc:  &stubCustomerSvc{customer: &domain.Customer{ID: "cust-1", Username: "alice", Email: "alice@example.com"}},
		AnonymousSvc: stubAnonymousSvc{},
		CatalogSvc:   &stubCatalogSvc{},
		CartSvc:      &stubCartSvc{cart: &domain.Cart{ID: "cart-1"}},
		CheckoutSvc:  &stubCheckoutSvc{},
		OrderSvc:     &stubOrderSvc{},
	}
}

func newTestRouter(t *testing.T, deps Deps) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	router, err := buildRouter(zap.NewNop(), nil, deps)
	if err != nil {
		t.Fatalf("build router: %v", err)
	}
	return router
}

func do(router http.Handler, method, path, body string, headers ...string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

var customerAuth = []string{"Authorization", "Bearer good-token"}
