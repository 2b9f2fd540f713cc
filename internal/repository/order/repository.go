package order

import (
	"context"

	"github.com/shopspring/decimal"

	"storefront/internal/domain"
)

// PlaceInput is everything needed to materialize an order from a cart.
type PlaceInput struct {
	Number        string
	CustomerID    string
	CartID        string
	Shipping      domain.ShippingSnapshot
	Subtotal      decimal.Decimal
	Tax           decimal.Decimal
	ShippingCost  decimal.Decimal
	Total         decimal.Decimal
	Status        domain.OrderStatus
	PaymentStatus domain.PaymentStatus
	PaymentMethod string
	Lines         []domain.CartLine
}

type Repository interface {
	// Place inserts the order and its items, decrements stock, empties the
	// cart and records an order.created event in one transaction.
	Place(ctx context.Context, in PlaceInput) (*domain.Order, error)
	GetByNumber(ctx context.Context, customerID, number string) (*domain.Order, error)
	ListByCustomer(ctx context.Context, customerID string) ([]domain.Order, error)
}
