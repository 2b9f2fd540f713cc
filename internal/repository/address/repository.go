package address

import (
	"context"

	"storefront/internal/domain"
)

// Repository stores address books. Every lookup is scoped to the owning
// customer; a foreign address is reported as domain.ErrNotFound.
type Repository interface {
	ListForCustomer(ctx context.Context, customerID string) ([]domain.Address, error)
	GetForCustomer(ctx context.Context, customerID, addressID string) (*domain.Address, error)
	Create(ctx context.Context, a domain.Address) (*domain.Address, error)
	Update(ctx context.Context, a domain.Address) (*domain.Address, error)
	Delete(ctx context.Context, customerID, addressID string) error
}
