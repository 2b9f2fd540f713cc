package order

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/internal/domain"
)

type memoryOrders struct {
	orders []domain.Order
}

func (m *memoryOrders) GetByNumber(_ context.Context, customerID, number string) (*domain.Order, error) {
	for _, o := range m.orders {
		if o.Number == number && o.CustomerID == customerID {
			return &o, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *memoryOrders) ListByCustomer(_ context.Context, customerID string) ([]domain.Order, error) {
	var out []domain.Order
	for i := len(m.orders) - 1; i >= 0; i-- {
		if m.orders[i].CustomerID == customerID {
			out = append(out, m.orders[i])
		}
	}
	return out, nil
}

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func fixture() *memoryOrders {
	placed := time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC)
	return &memoryOrders{orders: []domain.Order{
		{
			Number:     "ORD-20261001-AB12CD",
			CustomerID: "alice",
			Shipping: domain.ShippingSnapshot{
				Name: "Alice Doe", Phone: "555-0100", Line1: "1 Main St",
				City: "Springfield", State: "IL", PostalCode: "62701", Country: "US",
			},
			Subtotal:      d("110.00"),
			Tax:           d("11.00"),
			ShippingCost:  d("0.00"),
			Total:         d("121.00"),
			Status:        domain.OrderProcessing,
			PaymentStatus: domain.PaymentPaid,
			PaymentMethod: domain.DefaultPaymentMethod,
			CreatedAt:     placed,
			Items: []domain.OrderItem{
				{ProductName: "Mug", UnitPrice: d("60.00"), Quantity: 1, Subtotal: d("60.00")},
				{ProductName: "Tee", UnitPrice: d("25.00"), Quantity: 2, Subtotal: d("50.00")},
			},
		},
		{
			Number:     "ORD-20261002-ZZ99ZZ",
			CustomerID: "bob",
			Total:      d("37.50"),
			CreatedAt:  placed.Add(24 * time.Hour),
		},
	}}
}

func TestGetScopedToOwner(t *testing.T) {
	svc := New(fixture())
	ctx := context.Background()

	o, err := svc.Get(ctx, domain.CustomerIdentity("alice"), "ORD-20261001-AB12CD")
	require.NoError(t, err)
	assert.Equal(t, "121.00", o.Total.StringFixed(2))

	_, err = svc.Get(ctx, domain.CustomerIdentity("alice"), "ORD-20261002-ZZ99ZZ")
	require.ErrorIs(t, err, domain.ErrNotFound)

	_, err = svc.Get(ctx, domain.CustomerIdentity("alice"), "not-a-number")
	require.ErrorIs(t, err, domain.ErrNotFound)

	_, err = svc.Get(ctx, domain.SessionIdentity("sess"), "ORD-20261001-AB12CD")
	require.ErrorIs(t, err, domain.ErrAuthenticationRequired)
}

func TestList(t *testing.T) {
	svc := New(fixture())

	list, err := svc.List(context.Background(), domain.CustomerIdentity("alice"))
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "ORD-20261001-AB12CD", list[0].Number)
	assert.Equal(t, 3, list[0].ItemCount)

	list, err = svc.List(context.Background(), domain.CustomerIdentity("carol"))
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestInvoice(t *testing.T) {
	svc := New(fixture())
	issued := time.Date(2026, 10, 16, 9, 30, 0, 0, time.UTC)
	svc.now = func() time.Time { return issued }

	inv, err := svc.Invoice(context.Background(), domain.CustomerIdentity("alice"), "ORD-20261001-AB12CD")
	require.NoError(t, err)

	assert.Equal(t, issued, inv.IssuedAt)
	assert.Equal(t, "Alice Doe", inv.BillTo)
	assert.Equal(t, "1 Main St, Springfield, IL, 62701, US", inv.ShipTo)
	require.Len(t, inv.Lines, 2)
	assert.Equal(t, "Tee", inv.Lines[1].Description)
	assert.Equal(t, "50.00", inv.Lines[1].Amount.StringFixed(2))
	assert.Equal(t, "121.00", inv.Total.StringFixed(2))

	_, err = svc.Invoice(context.Background(), domain.CustomerIdentity("bob"), "ORD-20261001-AB12CD")
	require.ErrorIs(t, err, domain.ErrNotFound)
}
