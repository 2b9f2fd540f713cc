package httpserver

import (
	"net/http"
	"strings"
	"testing"

	"storefront/internal/domain"
	customersvc "storefront/internal/service/customer"
)

func TestRegister_Created(t *testing.T) {
	router := newTestRouter(t, newDeps())

	body := `{"username":"alice","email":"alice@example.com","password":"Abcdefg1"}`
	rec := do(router, http.MethodPost, "/accounts/register", body)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d body=%s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), `"email":"alice@example.com"`) {
		t.Fatalf("unexpected body: %s", rec.Body.String())
	}
	if strings.Contains(rec.Body.String(), "password") {
		t.Fatalf("password leaked: %s", rec.Body.String())
	}
}

func TestRegister_Duplicate(t *testing.T) {
	deps := newDeps()
	deps.CustomerSvc.(*stubCustomerSvc).signErr = domain.ErrAlreadyExists
	router := newTestRouter(t, deps)

	rec := do(router, http.MethodPost, "/accounts/register", `{"username":"alice"}`)
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rec.Code)
	}
}

func TestRegister_Invalid(t *testing.T) {
	deps := newDeps()
	deps.CustomerSvc.(*stubCustomerSvc).signErr = domain.Invalid("password", "password must be at least 8 characters")
	router := newTestRouter(t, deps)

	rec := do(router, http.MethodPost, "/accounts/register", `{"username":"alice","password":"x"}`)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"field":"password"`) {
		t.Fatalf("unexpected body: %s", rec.Body.String())
	}
}

func TestLogin_InvalidCredentials(t *testing.T) {
	deps := newDeps()
	deps.CustomerSvc.(*stubCustomerSvc).loginErr = customersvc.ErrInvalidCredentials
	router := newTestRouter(t, deps)

	rec := do(router, http.MethodPost, "/accounts/login", `{"login":"alice","password":"bad"}`)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d body=%s", rec.Code, rec.Body.String())
	}
}

func TestLogin_MergesSessionCart(t *testing.T) {
	deps := newDeps()
	router := newTestRouter(t, deps)

	rec := do(router, http.MethodPost, "/accounts/login", `{"login":"alice@example.com","password":"Abcdefg1"}`,
		sessionHeader, "session-token")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d body=%s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), `"access_token":"access"`) {
		t.Fatalf("unexpected body: %s", rec.Body.String())
	}
	cart := deps.CartSvc.(*stubCartSvc)
	if cart.mergedKey != "session-key" || cart.mergedFor != "cust-1" {
		t.Fatalf("session cart not merged: %+v", cart)
	}
}

func TestAnonymous_IssuesSessionToken(t *testing.T) {
	router := newTestRouter(t, newDeps())

	rec := do(router, http.MethodPost, "/accounts/anonymous", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"access_token":"session-token"`) {
		t.Fatalf("unexpected body: %s", rec.Body.String())
	}
}

func TestMe_UnauthorizedWithoutToken(t *testing.T) {
	router := newTestRouter(t, newDeps())

	rec := do(router, http.MethodGet, "/me", "")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d body=%s", rec.Code, rec.Body.String())
	}
}

func TestMe_SessionIsNotEnough(t *testing.T) {
	router := newTestRouter(t, newDeps())

	rec := do(router, http.MethodGet, "/me", "", sessionHeader, "session-token")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestMe_InvalidToken(t *testing.T) {
	router := newTestRouter(t, newDeps())

	rec := do(router, http.MethodGet, "/me", "", "Authorization", "Bearer stale")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestMe_Success(t *testing.T) {
	router := newTestRouter(t, newDeps())

	rec := do(router, http.MethodGet, "/me", "", customerAuth...)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d body=%s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), `"username":"alice"`) {
		t.Fatalf("unexpected body: %s", rec.Body.String())
	}
}

func TestLogout(t *testing.T) {
	deps := newDeps()
	router := newTestRouter(t, deps)

	rec := do(router, http.MethodPost, "/accounts/logout", "", customerAuth...)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}
	if got := deps.CustomerSvc.(*stubCustomerSvc).loggedOut; got != "good-token" {
		t.Fatalf("expected token revoked, got %q", got)
	}
}

func TestAddresses(t *testing.T) {
	deps := newDeps()
	deps.CustomerSvc.(*stubCustomerSvc).addresses = []domain.Address{
		{ID: "addr-1", CustomerID: "cust-1", Type: domain.AddressShipping, FullName: "Alice Doe", Line1: "1 Main St", City: "Springfield", Country: "US"},
		{ID: "addr-2", CustomerID: "cust-2", FullName: "Bob Roe"},
	}
	router := newTestRouter(t, deps)

	rec := do(router, http.MethodGet, "/me/addresses", "", customerAuth...)
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"formatted":"1 Main St, Springfield, US"`) {
		t.Fatalf("unexpected list: %d %s", rec.Code, rec.Body.String())
	}

	rec = do(router, http.MethodDelete, "/me/addresses/addr-2", "", customerAuth...)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for foreign address, got %d", rec.Code)
	}

	rec = do(router, http.MethodPost, "/me/addresses", `{"fullName":""}`, customerAuth...)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", rec.Code)
	}

	rec = do(router, http.MethodPost, "/me/addresses", `{"fullName":"Alice Doe"}`, customerAuth...)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}
}
