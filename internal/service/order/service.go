// Package order serves a customer's placed orders: history, detail,
// confirmation and invoice views.
package order

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"storefront/internal/domain"
	"storefront/internal/ordernumber"
)

type orderReader interface {
	GetByNumber(ctx context.Context, customerID, number string) (*domain.Order, error)
	ListByCustomer(ctx context.Context, customerID string) ([]domain.Order, error)
}

type Service struct {
	orders orderReader
	now    func() time.Time
}

func New(orders orderReader) *Service {
	return &Service{orders: orders, now: time.Now}
}

// Summary is one row of the order history.
type Summary struct {
	Number        string
	CreatedAt     time.Time
	Status        domain.OrderStatus
	PaymentStatus domain.PaymentStatus
	Total         decimal.Decimal
	ItemCount     int
}

// Get returns an order owned by the identity. Orders of other customers are
// reported as not found.
func (s *Service) Get(ctx context.Context, id domain.Identity, number string) (*domain.Order, error) {
	if !id.IsCustomer() {
		return nil, domain.ErrAuthenticationRequired
	}
	if !ordernumber.Valid(number) {
		return nil, domain.ErrNotFound
	}
	o, err := s.orders.GetByNumber(ctx, id.CustomerID(), number)
	if err != nil {
		return nil, errors.Wrap(err, "get order")
	}
	return o, nil
}

// List returns the identity's orders, newest first.
func (s *Service) List(ctx context.Context, id domain.Identity) ([]Summary, error) {
	if !id.IsCustomer() {
		return nil, domain.ErrAuthenticationRequired
	}
	orders, err := s.orders.ListByCustomer(ctx, id.CustomerID())
	if err != nil {
		return nil, errors.Wrap(err, "list orders")
	}
	out := make([]Summary, 0, len(orders))
	for _, o := range orders {
		out = append(out, Summary{
			Number:        o.Number,
			CreatedAt:     o.CreatedAt,
			Status:        o.Status,
			PaymentStatus: o.PaymentStatus,
			Total:         o.Total,
			ItemCount:     o.ItemCount(),
		})
	}
	return out, nil
}
