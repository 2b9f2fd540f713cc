package seed

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"storefront/internal/domain"
	categoryrepo "storefront/internal/repository/category"
	productrepo "storefront/internal/repository/product"
)

type categoryWriter interface {
	Upsert(ctx context.Context, c domain.Category) (*domain.Category, error)
}

type productWriter interface {
	Upsert(ctx context.Context, p domain.Product) (*domain.Product, error)
}

type productSeed struct {
	Category    string
	Slug        string
	Name        string
	Description string
	Price       string
	Stock       int
}

var categories = []domain.Category{
	{Slug: "kitchen", Name: "Kitchen", Description: "Mugs, plates and everything for the table"},
	{Slug: "apparel", Name: "Apparel", Description: "Tees and hoodies"},
}

var products = []productSeed{
	{Category: "kitchen", Slug: "demo-mug", Name: "Demo Mug", Description: "Ceramic mug with demo logo", Price: "12.99", Stock: 25},
	{Category: "kitchen", Slug: "demo-plate", Name: "Demo Plate", Description: "Stoneware dinner plate", Price: "18.50", Stock: 10},
	{Category: "kitchen", Slug: "demo-kettle", Name: "Demo Kettle", Description: "Stovetop kettle", Price: "60.00", Stock: 3},
	{Category: "apparel", Slug: "demo-shirt", Name: "Demo T-Shirt", Description: "Soft cotton tee for demo purposes", Price: "25.00", Stock: 40},
	{Category: "apparel", Slug: "demo-hoodie", Name: "Demo Hoodie", Description: "Fleece hoodie", Price: "49.90", Stock: 1},
}

// Apply inserts basic seed data for manual testing. It is idempotent, rows are
// upserted by slug.
func Apply(ctx context.Context, pool *pgxpool.Pool, lg *zap.Logger) error {
	return Load(ctx, categoryrepo.NewPostgres(pool), productrepo.NewPostgres(pool, lg))
}

func Load(ctx context.Context, cats categoryWriter, prods productWriter) error {
	ids := make(map[string]string, len(categories))
	for _, c := range categories {
		saved, err := cats.Upsert(ctx, c)
		if err != nil {
			return errors.Wrapf(err, "upsert category %s", c.Slug)
		}
		ids[c.Slug] = saved.ID
	}

	for _, p := range products {
		catID := ids[p.Category]
		_, err := prods.Upsert(ctx, domain.Product{
			CategoryID:  &catID,
			Slug:        p.Slug,
			Name:        p.Name,
			Description: p.Description,
			Price:       decimal.RequireFromString(p.Price),
			Stock:       p.Stock,
			IsActive:    true,
		})
		if err != nil {
			return errors.Wrapf(err, "upsert product %s", p.Slug)
		}
	}
	return nil
}
