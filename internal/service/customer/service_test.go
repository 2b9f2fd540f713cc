package customer

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/internal/domain"
	tokenrepo "storefront/internal/repository/token"
)

// memoryRepo is a lightweight in-memory customer repository for tests.
type memoryRepo struct {
	byID map[string]domain.Customer
}

type memoryTokenRepo struct {
	tokens map[string]tokenrepo.Token
}

type memoryAddressRepo struct {
	byID map[string]domain.Address
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{byID: make(map[string]domain.Customer)}
}

func newMemoryTokenRepo() *memoryTokenRepo {
	return &memoryTokenRepo{tokens: make(map[string]tokenrepo.Token)}
}

func (r *memoryTokenRepo) Create(_ context.Context, token tokenrepo.Token) error {
	if _, exists := r.tokens[token.Token]; exists {
		return domain.ErrAlreadyExists
	}
	r.tokens[token.Token] = token
	return nil
}

func (r *memoryTokenRepo) Get(_ context.Context, token string) (*tokenrepo.Token, error) {
	t, ok := r.tokens[token]
	if !ok {
		return nil, domain.ErrNotFound
	}
	clone := t
	return &clone, nil
}

func (r *memoryTokenRepo) Delete(_ context.Context, token string) error {
	if _, ok := r.tokens[token]; !ok {
		return domain.ErrNotFound
	}
	delete(r.tokens, token)
	return nil
}

func (r *memoryTokenRepo) DeleteExpired(_ context.Context, now time.Time) (int64, error) {
	var n int64
	for k, t := range r.tokens {
		if t.ExpiresAt.Before(now) {
			delete(r.tokens, k)
			n++
		}
	}
	return n, nil
}

func (r *memoryRepo) Create(_ context.Context, c domain.Customer) (*domain.Customer, error) {
	for _, existing := range r.byID {
		if existing.Email == c.Email || existing.Username == c.Username {
			return nil, domain.ErrAlreadyExists
		}
	}
	clone := c
	clone.ID = "cust-" + c.Username
	r.byID[clone.ID] = clone
	return &clone, nil
}

func (r *memoryRepo) GetByLoginKey(_ context.Context, key domain.LoginKey) (*domain.Customer, error) {
	for _, c := range r.byID {
		if (key.Kind == domain.LoginByEmail && c.Email == key.Value) ||
			(key.Kind == domain.LoginByUsername && c.Username == key.Value) {
			clone := c
			return &clone, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *memoryRepo) GetByID(_ context.Context, id string) (*domain.Customer, error) {
	c, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &c, nil
}

func (r *memoryAddressRepo) ListForCustomer(_ context.Context, customerID string) ([]domain.Address, error) {
	var out []domain.Address
	for _, a := range r.byID {
		if a.CustomerID == customerID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (r *memoryAddressRepo) GetForCustomer(_ context.Context, customerID, addressID string) (*domain.Address, error) {
	a, ok := r.byID[addressID]
	if !ok || a.CustomerID != customerID {
		return nil, domain.ErrNotFound
	}
	return &a, nil
}

func (r *memoryAddressRepo) Create(_ context.Context, a domain.Address) (*domain.Address, error) {
	a.ID = "addr-" + a.Line1
	r.byID[a.ID] = a
	return &a, nil
}

func (r *memoryAddressRepo) Update(_ context.Context, a domain.Address) (*domain.Address, error) {
	r.byID[a.ID] = a
	return &a, nil
}

func (r *memoryAddressRepo) Delete(_ context.Context, customerID, addressID string) error {
	a, ok := r.byID[addressID]
	if !ok || a.CustomerID != customerID {
		return domain.ErrNotFound
	}
	delete(r.byID, addressID)
	return nil
}

func newTestService() (*Service, *memoryTokenRepo) {
	tokens := newMemoryTokenRepo()
	return New(newMemoryRepo(), &memoryAddressRepo{byID: map[string]domain.Address{}}, tokens), tokens
}

func TestRegister_Validation(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	cases := []struct {
		name  string
		in    RegisterInput
		field string
	}{
		{"missing username", RegisterInput{Email: "a@x.io", Password: "Abcdefg1"}, "username"},
		{"username with at", RegisterInput{Username: "a@b", Email: "a@x.io", Password: "Abcdefg1"}, "username"},
		{"bad email", RegisterInput{Username: "a", Email: "nope", Password: "Abcdefg1"}, "email"},
		{"short password", RegisterInput{Username: "a", Email: "a@x.io", Password: "Ab1"}, "password"},
		{"weak password", RegisterInput{Username: "a", Email: "a@x.io", Password: "abcdefgh"}, "password"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Register(ctx, tc.in)
			var verr *domain.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tc.field, verr.Field)
		})
	}
}

func TestLogin_ByUsernameOrEmail(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterInput{Username: "alice", Email: "Alice@Example.com", Password: "Abcdefg1"})
	require.NoError(t, err)

	c, access, refresh, err := svc.Login(ctx, "alice", "Abcdefg1")
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", c.Email)
	assert.NotEqual(t, access, refresh)

	_, _, _, err = svc.Login(ctx, "ALICE@example.com", "Abcdefg1")
	require.NoError(t, err)

	_, _, _, err = svc.Login(ctx, "alice", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, _, _, err = svc.Login(ctx, "bob", "Abcdefg1")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLookupByToken(t *testing.T) {
	svc, tokens := newTestService()
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterInput{Username: "alice", Email: "a@x.io", Password: "Abcdefg1"})
	require.NoError(t, err)
	_, access, refresh, err := svc.Login(ctx, "alice", "Abcdefg1")
	require.NoError(t, err)

	c, err := svc.LookupByToken(ctx, access)
	require.NoError(t, err)
	assert.Equal(t, "alice", c.Username)

	_, err = svc.LookupByToken(ctx, refresh)
	assert.ErrorIs(t, err, ErrInvalidToken)

	svc.tokens.now = func() time.Time { return time.Now().Add(72 * time.Hour) }
	_, err = svc.LookupByToken(ctx, access)
	assert.ErrorIs(t, err, ErrInvalidToken)
	_, ok := tokens.tokens[access]
	assert.False(t, ok)
}

func TestAddresses_OwnerScoped(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	in := AddressInput{FullName: "A", PhoneNumber: "1", Line1: "1 Main", City: "C", State: "S", PostalCode: "P", Country: "US"}
	a, err := svc.CreateAddress(ctx, "c1", in)
	require.NoError(t, err)
	assert.Equal(t, domain.AddressShipping, a.Type)

	_, err = svc.GetAddress(ctx, "c2", a.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = svc.UpdateAddress(ctx, "c2", a.ID, in)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.ErrorIs(t, svc.DeleteAddress(ctx, "c2", a.ID), domain.ErrNotFound)

	in.City = ""
	_, err = svc.CreateAddress(ctx, "c1", in)
	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "city", verr.Field)
}
