package cart

import (
	"context"

	"storefront/internal/domain"
)

// Repository stores one cart per identity. Lines carry the live product row.
type Repository interface {
	GetByIdentity(ctx context.Context, id domain.Identity) (*domain.Cart, error)
	GetOrCreate(ctx context.Context, id domain.Identity) (*domain.Cart, error)
	AddLine(ctx context.Context, cartID, productID string, quantity int) error
	SetLineQuantity(ctx context.Context, cartID, lineID string, quantity int) error
	RemoveLine(ctx context.Context, cartID, lineID string) error
	Clear(ctx context.Context, cartID string) error
	MergeSession(ctx context.Context, sessionKey, customerID string) error
}
