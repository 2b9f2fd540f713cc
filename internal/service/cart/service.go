package cart

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"

	"storefront/internal/domain"
)

type cartRepo interface {
	GetByIdentity(ctx context.Context, id domain.Identity) (*domain.Cart, error)
	GetOrCreate(ctx context.Context, id domain.Identity) (*domain.Cart, error)
	AddLine(ctx context.Context, cartID, productID string, quantity int) error
	SetLineQuantity(ctx context.Context, cartID, lineID string, quantity int) error
	RemoveLine(ctx context.Context, cartID, lineID string) error
	Clear(ctx context.Context, cartID string) error
	MergeSession(ctx context.Context, sessionKey, customerID string) error
}

type productRepo interface {
	GetByID(ctx context.Context, id string) (*domain.Product, error)
}

// Service manages the cart of an identity. Stock is checked when lines
// change but not reserved; checkout re-checks it atomically.
type Service struct {
	repo     cartRepo
	products productRepo
}

func New(repo cartRepo, products productRepo) *Service {
	return &Service{repo: repo, products: products}
}

func (s *Service) View(ctx context.Context, id domain.Identity) (*domain.Cart, error) {
	return s.repo.GetOrCreate(ctx, id)
}

// Count returns the number of units in the identity's cart.
func (s *Service) Count(ctx context.Context, id domain.Identity) (int, error) {
	c, err := s.repo.GetByIdentity(ctx, id)
	if errors.Is(err, domain.ErrNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return c.ItemCount(), nil
}

func (s *Service) AddItem(ctx context.Context, id domain.Identity, productID string, quantity int) (*domain.Cart, error) {
	if quantity < 1 {
		return nil, domain.Invalid("quantity", "quantity must be at least 1")
	}
	p, err := s.products.GetByID(ctx, productID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.Invalid("productId", "product not found")
		}
		return nil, err
	}
	if !p.IsActive {
		return nil, domain.Invalid("productId", "product is not available")
	}

	c, err := s.repo.GetOrCreate(ctx, id)
	if err != nil {
		return nil, err
	}
	inCart := 0
	for _, l := range c.Lines {
		if l.Product.ID == p.ID {
			inCart = l.Quantity
		}
	}
	if inCart+quantity > p.Stock {
		return nil, stockError(p.Stock)
	}

	if err := s.repo.AddLine(ctx, c.ID, p.ID, quantity); err != nil {
		return nil, err
	}
	return s.repo.GetByIdentity(ctx, id)
}

func (s *Service) UpdateQuantity(ctx context.Context, id domain.Identity, lineID string, quantity int) (*domain.Cart, error) {
	if quantity < 1 {
		return nil, domain.Invalid("quantity", "quantity must be at least 1")
	}
	c, err := s.repo.GetByIdentity(ctx, id)
	if err != nil {
		return nil, err
	}
	line, ok := c.Line(lineID)
	if !ok {
		return nil, domain.ErrNotFound
	}
	if quantity > line.Product.Stock {
		return nil, stockError(line.Product.Stock)
	}
	if err := s.repo.SetLineQuantity(ctx, c.ID, lineID, quantity); err != nil {
		return nil, err
	}
	return s.repo.GetByIdentity(ctx, id)
}

func (s *Service) RemoveItem(ctx context.Context, id domain.Identity, lineID string) (*domain.Cart, error) {
	c, err := s.repo.GetByIdentity(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.repo.RemoveLine(ctx, c.ID, lineID); err != nil {
		return nil, err
	}
	return s.repo.GetByIdentity(ctx, id)
}

func (s *Service) Clear(ctx context.Context, id domain.Identity) error {
	c, err := s.repo.GetByIdentity(ctx, id)
	if errors.Is(err, domain.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	return s.repo.Clear(ctx, c.ID)
}

// MergeSession folds an anonymous cart into the customer's cart after login.
func (s *Service) MergeSession(ctx context.Context, sessionKey, customerID string) error {
	if sessionKey == "" || customerID == "" {
		return nil
	}
	return s.repo.MergeSession(ctx, sessionKey, customerID)
}

func stockError(available int) error {
	return domain.Invalid("quantity", fmt.Sprintf("only %d items available in stock", available))
}
