package order

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"storefront/internal/domain"
)

type InvoiceLine struct {
	Description string
	UnitPrice   decimal.Decimal
	Quantity    int
	Amount      decimal.Decimal
}

// Invoice is a printable view of a placed order. Amounts come from the
// order snapshot, never from the current catalog.
type Invoice struct {
	Number        string
	PlacedAt      time.Time
	IssuedAt      time.Time
	BillTo        string
	ShipTo        string
	Phone         string
	PaymentMethod string
	PaymentStatus domain.PaymentStatus
	Lines         []InvoiceLine
	Subtotal      decimal.Decimal
	Tax           decimal.Decimal
	ShippingCost  decimal.Decimal
	Total         decimal.Decimal
}

func (s *Service) Invoice(ctx context.Context, id domain.Identity, number string) (*Invoice, error) {
	o, err := s.Get(ctx, id, number)
	if err != nil {
		return nil, err
	}
	inv := &Invoice{
		Number:        o.Number,
		PlacedAt:      o.CreatedAt,
		IssuedAt:      s.now().UTC(),
		BillTo:        o.Shipping.Name,
		ShipTo:        o.ShippingAddress(),
		Phone:         o.Shipping.Phone,
		PaymentMethod: o.PaymentMethod,
		PaymentStatus: o.PaymentStatus,
		Lines:         make([]InvoiceLine, 0, len(o.Items)),
		Subtotal:      o.Subtotal,
		Tax:           o.Tax,
		ShippingCost:  o.ShippingCost,
		Total:         o.Total,
	}
	for _, it := range o.Items {
		inv.Lines = append(inv.Lines, InvoiceLine{
			Description: it.ProductName,
			UnitPrice:   it.UnitPrice,
			Quantity:    it.Quantity,
			Amount:      it.Subtotal,
		})
	}
	return inv, nil
}
