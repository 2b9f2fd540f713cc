package catalog

import (
	"context"

	"github.com/go-faster/errors"

	"storefront/internal/domain"
)

const relatedLimit = 4

type categoryRepo interface {
	List(ctx context.Context) ([]domain.Category, error)
	GetBySlug(ctx context.Context, slug string) (*domain.Category, error)
}

type productRepo interface {
	GetBySlug(ctx context.Context, slug string) (*domain.Product, error)
	ListActiveByCategory(ctx context.Context, categoryID string) ([]domain.Product, error)
	ListRelated(ctx context.Context, p domain.Product, limit int) ([]domain.Product, error)
}

type Service struct {
	categories categoryRepo
	products   productRepo
}

func New(categories categoryRepo, products productRepo) *Service {
	return &Service{categories: categories, products: products}
}

func (s *Service) Categories(ctx context.Context) ([]domain.Category, error) {
	return s.categories.List(ctx)
}

// CategoryProducts lists the active products of the category with slug.
func (s *Service) CategoryProducts(ctx context.Context, slug string) (*domain.Category, []domain.Product, error) {
	c, err := s.categories.GetBySlug(ctx, slug)
	if err != nil {
		return nil, nil, err
	}
	products, err := s.products.ListActiveByCategory(ctx, c.ID)
	if err != nil {
		return nil, nil, errors.Wrap(err, "list category products")
	}
	return c, products, nil
}

type ProductDetail struct {
	Product domain.Product
	Related []domain.Product
}

func (s *Service) Product(ctx context.Context, slug string) (*ProductDetail, error) {
	p, err := s.products.GetBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	related, err := s.products.ListRelated(ctx, *p, relatedLimit)
	if err != nil {
		return nil, errors.Wrap(err, "list related")
	}
	return &ProductDetail{Product: *p, Related: related}, nil
}
