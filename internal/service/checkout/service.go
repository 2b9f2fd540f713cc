// Package checkout turns a customer's cart into an order.
package checkout

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"go.uber.org/zap"

	"storefront/internal/domain"
	"storefront/internal/logger"
	"storefront/internal/metrics"
	"storefront/internal/pricing"
	orderrepo "storefront/internal/repository/order"
)

// MaxAllocationAttempts bounds retries on order number collisions.
const MaxAllocationAttempts = 3

type cartReader interface {
	GetByIdentity(ctx context.Context, id domain.Identity) (*domain.Cart, error)
}

type addressBook interface {
	ListForCustomer(ctx context.Context, customerID string) ([]domain.Address, error)
	GetForCustomer(ctx context.Context, customerID, addressID string) (*domain.Address, error)
}

type orderStore interface {
	Place(ctx context.Context, in orderrepo.PlaceInput) (*domain.Order, error)
}

type numberGenerator interface {
	Next() (string, error)
}

type Service struct {
	carts     cartReader
	addresses addressBook
	orders    orderStore
	numbers   numberGenerator
	lg        *zap.Logger
	m         *metrics.Metrics
	attempts  int
}

// New builds the checkout service. m may be nil.
func New(carts cartReader, addresses addressBook, orders orderStore, numbers numberGenerator, lg *zap.Logger, m *metrics.Metrics) *Service {
	return &Service{
		carts:     carts,
		addresses: addresses,
		orders:    orders,
		numbers:   numbers,
		lg:        logger.OrNop(lg).Named("checkout"),
		m:         m,
		attempts:  MaxAllocationAttempts,
	}
}

// Review is what the customer confirms before placing the order.
type Review struct {
	Cart      *domain.Cart
	Totals    pricing.Totals
	Addresses []domain.Address
}

func (s *Service) Review(ctx context.Context, id domain.Identity) (*Review, error) {
	if !id.IsCustomer() {
		return nil, failAt(StageReviewing, domain.ErrAuthenticationRequired)
	}
	cart, err := s.loadCart(ctx, id)
	if err != nil {
		return nil, failAt(StageReviewing, err)
	}
	addresses, err := s.addresses.ListForCustomer(ctx, id.CustomerID())
	if err != nil {
		return nil, failAt(StageReviewing, errors.Wrap(err, "list addresses"))
	}
	return &Review{
		Cart:      cart,
		Totals:    pricing.Compute(cart.Lines),
		Addresses: addresses,
	}, nil
}

type Confirmation struct {
	OrderNumber string
	Order       *domain.Order
}

// Checkout places an order for the identity's cart, shipping to addressID.
// On any failure nothing is persisted.
func (s *Service) Checkout(ctx context.Context, id domain.Identity, addressID string) (conf *Confirmation, err error) {
	start := time.Now()
	defer func() { s.observe(start, conf, err) }()

	if !id.IsCustomer() {
		return nil, failAt(StageReviewing, domain.ErrAuthenticationRequired)
	}
	customerID := id.CustomerID()

	cart, err := s.loadCart(ctx, id)
	if err != nil {
		return nil, failAt(StageReviewing, err)
	}

	if addressID == "" {
		return nil, failAt(StageAddressSelected, domain.ErrInvalidAddress)
	}
	addr, err := s.addresses.GetForCustomer(ctx, customerID, addressID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, failAt(StageAddressSelected, domain.ErrInvalidAddress)
		}
		return nil, failAt(StageAddressSelected, s.persistence("load address", err))
	}

	totals := pricing.Compute(cart.Lines)

	in := orderrepo.PlaceInput{
		CustomerID:    customerID,
		CartID:        cart.ID,
		Shipping:      domain.SnapshotAddress(*addr),
		Subtotal:      totals.Subtotal,
		Tax:           totals.Tax,
		ShippingCost:  totals.ShippingCost,
		Total:         totals.Total,
		Status:        domain.OrderProcessing,
		PaymentStatus: domain.PaymentPaid,
		PaymentMethod: domain.DefaultPaymentMethod,
		Lines:         cart.Lines,
	}
	order, err := s.materialize(ctx, in)
	if err != nil {
		return nil, failAt(StageMaterializing, err)
	}

	s.lg.Info("order placed",
		zap.String("order_number", order.Number),
		zap.String("customer_id", customerID),
		zap.String("total", order.Total.StringFixed(2)),
		zap.Int("items", len(order.Items)),
	)
	return &Confirmation{OrderNumber: order.Number, Order: order}, nil
}

func (s *Service) materialize(ctx context.Context, in orderrepo.PlaceInput) (*domain.Order, error) {
	for attempt := 1; attempt <= s.attempts; attempt++ {
		number, err := s.numbers.Next()
		if err != nil {
			return nil, s.persistence("generate order number", err)
		}
		in.Number = number

		order, err := s.orders.Place(ctx, in)
		switch {
		case err == nil:
			return order, nil
		case errors.Is(err, domain.ErrOrderNumberTaken):
			s.lg.Warn("order number collision", zap.String("order_number", number), zap.Int("attempt", attempt))
			if s.m != nil {
				s.m.NumberRetries.Inc()
			}
			continue
		}

		var stockErr *domain.InsufficientStockError
		if errors.As(err, &stockErr) || errors.Is(err, domain.ErrEmptyCart) || errors.Is(err, domain.ErrCartChanged) {
			return nil, err
		}
		return nil, s.persistence("place order", err)
	}
	err := &domain.AllocationCollisionError{Attempts: s.attempts}
	s.lg.Error("order number allocation exhausted", zap.Int("attempts", s.attempts))
	return nil, err
}

func (s *Service) loadCart(ctx context.Context, id domain.Identity) (*domain.Cart, error) {
	cart, err := s.carts.GetByIdentity(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrEmptyCart
		}
		return nil, s.persistence("load cart", err)
	}
	if cart.IsEmpty() {
		return nil, domain.ErrEmptyCart
	}
	return cart, nil
}

func (s *Service) persistence(op string, err error) error {
	s.lg.Error("checkout storage failure", zap.String("op", op), zap.Error(err))
	return &domain.PersistenceError{Op: op, Err: err}
}

func (s *Service) observe(start time.Time, conf *Confirmation, err error) {
	if s.m == nil {
		return
	}
	s.m.Checkouts.WithLabelValues(Outcome(err)).Inc()
	if err == nil && conf != nil {
		s.m.CheckoutSeconds.Observe(time.Since(start).Seconds())
		s.m.OrderRevenue.Add(conf.Order.Total.InexactFloat64())
	}
}

// Outcome classifies a checkout result for metrics.
func Outcome(err error) string {
	var stockErr *domain.InsufficientStockError
	switch {
	case err == nil:
		return metrics.OutcomeSuccess
	case errors.Is(err, domain.ErrEmptyCart):
		return metrics.OutcomeEmptyCart
	case errors.Is(err, domain.ErrCartChanged):
		return metrics.OutcomeCartChanged
	case errors.Is(err, domain.ErrInvalidAddress):
		return metrics.OutcomeBadAddress
	case errors.As(err, &stockErr):
		return metrics.OutcomeOutOfStock
	case errors.Is(err, domain.ErrAuthenticationRequired):
		return metrics.OutcomeAuthRequired
	default:
		return metrics.OutcomeError
	}
}
