package cart

import (
	"context"
	"strconv"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/internal/domain"
)

// memoryRepo keeps carts keyed by identity.
type memoryRepo struct {
	carts    map[domain.Identity]*domain.Cart
	products map[string]domain.Product
	seq      int
	merged   [2]string
}

func newMemoryRepo(products ...domain.Product) *memoryRepo {
	m := &memoryRepo{carts: map[domain.Identity]*domain.Cart{}, products: map[string]domain.Product{}}
	for _, p := range products {
		m.products[p.ID] = p
	}
	return m
}

func (m *memoryRepo) GetByID(_ context.Context, id string) (*domain.Product, error) {
	p, ok := m.products[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &p, nil
}

func (m *memoryRepo) GetByIdentity(_ context.Context, id domain.Identity) (*domain.Cart, error) {
	c, ok := m.carts[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	clone := *c
	clone.Lines = append([]domain.CartLine(nil), c.Lines...)
	return &clone, nil
}

func (m *memoryRepo) GetOrCreate(ctx context.Context, id domain.Identity) (*domain.Cart, error) {
	if _, ok := m.carts[id]; !ok {
		m.seq++
		m.carts[id] = &domain.Cart{ID: "cart-" + strconv.Itoa(m.seq)}
	}
	return m.GetByIdentity(ctx, id)
}

func (m *memoryRepo) byID(cartID string) *domain.Cart {
	for _, c := range m.carts {
		if c.ID == cartID {
			return c
		}
	}
	return nil
}

func (m *memoryRepo) AddLine(_ context.Context, cartID, productID string, quantity int) error {
	c := m.byID(cartID)
	for i := range c.Lines {
		if c.Lines[i].Product.ID == productID {
			c.Lines[i].Quantity += quantity
			return nil
		}
	}
	m.seq++
	c.Lines = append(c.Lines, domain.CartLine{ID: "line-" + strconv.Itoa(m.seq), CartID: cartID, Product: m.products[productID], Quantity: quantity})
	return nil
}

func (m *memoryRepo) SetLineQuantity(_ context.Context, cartID, lineID string, quantity int) error {
	c := m.byID(cartID)
	for i := range c.Lines {
		if c.Lines[i].ID == lineID {
			c.Lines[i].Quantity = quantity
			return nil
		}
	}
	return domain.ErrNotFound
}

func (m *memoryRepo) RemoveLine(_ context.Context, cartID, lineID string) error {
	c := m.byID(cartID)
	for i := range c.Lines {
		if c.Lines[i].ID == lineID {
			c.Lines = append(c.Lines[:i], c.Lines[i+1:]...)
			return nil
		}
	}
	return domain.ErrNotFound
}

func (m *memoryRepo) Clear(_ context.Context, cartID string) error {
	m.byID(cartID).Lines = nil
	return nil
}

func (m *memoryRepo) MergeSession(_ context.Context, sessionKey, customerID string) error {
	m.merged = [2]string{sessionKey, customerID}
	return nil
}

func product(id string, price string, stock int) domain.Product {
	return domain.Product{ID: id, Name: id, Price: decimal.RequireFromString(price), Stock: stock, IsActive: true}
}

func TestService_AddItemMergesLines(t *testing.T) {
	ctx := context.Background()
	repo := newMemoryRepo(product("p1", "10.00", 5))
	svc := New(repo, repo)
	ident := domain.SessionIdentity("s1")

	_, err := svc.AddItem(ctx, ident, "p1", 2)
	require.NoError(t, err)
	c, err := svc.AddItem(ctx, ident, "p1", 3)
	require.NoError(t, err)
	require.Len(t, c.Lines, 1)
	assert.Equal(t, 5, c.Lines[0].Quantity)

	n, err := svc.Count(ctx, ident)
	require.NoError(t, err)
	assert.Equal(t, 5, n)
}

func TestService_AddItemValidation(t *testing.T) {
	ctx := context.Background()
	inactive := product("p2", "5.00", 10)
	inactive.IsActive = false
	repo := newMemoryRepo(product("p1", "10.00", 2), inactive)
	svc := New(repo, repo)
	ident := domain.CustomerIdentity("c1")

	var verr *domain.ValidationError

	_, err := svc.AddItem(ctx, ident, "p1", 0)
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "quantity must be at least 1", verr.Message)

	_, err = svc.AddItem(ctx, ident, "p1", 3)
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "only 2 items available in stock", verr.Message)

	_, err = svc.AddItem(ctx, ident, "p2", 1)
	require.ErrorAs(t, err, &verr)

	_, err = svc.AddItem(ctx, ident, "missing", 1)
	require.ErrorAs(t, err, &verr)
}

func TestService_UpdateAndRemove(t *testing.T) {
	ctx := context.Background()
	repo := newMemoryRepo(product("p1", "10.00", 4))
	svc := New(repo, repo)
	ident := domain.CustomerIdentity("c1")

	c, err := svc.AddItem(ctx, ident, "p1", 1)
	require.NoError(t, err)
	lineID := c.Lines[0].ID

	c, err = svc.UpdateQuantity(ctx, ident, lineID, 4)
	require.NoError(t, err)
	assert.Equal(t, 4, c.Lines[0].Quantity)

	var verr *domain.ValidationError
	_, err = svc.UpdateQuantity(ctx, ident, lineID, 5)
	require.ErrorAs(t, err, &verr)
	_, err = svc.UpdateQuantity(ctx, ident, "other", 1)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	c, err = svc.RemoveItem(ctx, ident, lineID)
	require.NoError(t, err)
	assert.True(t, c.IsEmpty())
}

func TestService_CountWithoutCart(t *testing.T) {
	repo := newMemoryRepo()
	svc := New(repo, repo)
	n, err := svc.Count(context.Background(), domain.SessionIdentity("nobody"))
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestService_CartsAreIsolatedPerIdentity(t *testing.T) {
	ctx := context.Background()
	repo := newMemoryRepo(product("p1", "10.00", 9))
	svc := New(repo, repo)

	_, err := svc.AddItem(ctx, domain.CustomerIdentity("c1"), "p1", 2)
	require.NoError(t, err)

	other, err := svc.View(ctx, domain.CustomerIdentity("c2"))
	require.NoError(t, err)
	assert.True(t, other.IsEmpty())

	require.NoError(t, svc.MergeSession(ctx, "s1", "c2"))
	assert.Equal(t, [2]string{"s1", "c2"}, repo.merged)
}
