package customer

import (
	"context"

	"storefront/internal/domain"
)

// Repository persists customers.
type Repository interface {
	Create(ctx context.Context, c domain.Customer) (*domain.Customer, error)
	GetByLoginKey(ctx context.Context, key domain.LoginKey) (*domain.Customer, error)
	GetByID(ctx context.Context, id string) (*domain.Customer, error)
}
