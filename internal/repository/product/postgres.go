package product

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"storefront/internal/domain"
	"storefront/internal/logger"
)

const columns = `id::text, category_id::text, slug, name, description, price, stock, is_active, created_at, updated_at`

type postgresRepo struct {
	pool *pgxpool.Pool
	lg   *zap.Logger
}

func NewPostgres(pool *pgxpool.Pool, lg *zap.Logger) Repository {
	return &postgresRepo{pool: pool, lg: logger.OrNop(lg).Named("product_repo")}
}

func (r *postgresRepo) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	q := `SELECT ` + columns + ` FROM products WHERE id = $1`
	p, err := scanProduct(r.pool.QueryRow(ctx, q, id))
	if isInvalidText(err) {
		return nil, domain.ErrNotFound
	}
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		r.lg.Warn("get by id", zap.String("product_id", id), zap.Error(err))
	}
	return p, err
}

func (r *postgresRepo) GetBySlug(ctx context.Context, slug string) (*domain.Product, error) {
	q := `SELECT ` + columns + ` FROM products WHERE slug = $1 AND is_active`
	p, err := scanProduct(r.pool.QueryRow(ctx, q, slug))
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		r.lg.Warn("get by slug", zap.String("slug", slug), zap.Error(err))
	}
	return p, err
}

func (r *postgresRepo) ListActiveByCategory(ctx context.Context, categoryID string) ([]domain.Product, error) {
	q := `SELECT ` + columns + `
FROM products
WHERE category_id = $1 AND is_active
ORDER BY created_at DESC`
	return r.list(ctx, q, categoryID)
}

// ListRelated returns other active products from p's category.
func (r *postgresRepo) ListRelated(ctx context.Context, p domain.Product, limit int) ([]domain.Product, error) {
	if p.CategoryID == nil {
		return nil, nil
	}
	q := `SELECT ` + columns + `
FROM products
WHERE category_id = $1 AND id <> $2 AND is_active
ORDER BY created_at DESC
LIMIT $3`
	return r.list(ctx, q, *p.CategoryID, p.ID, limit)
}

func (r *postgresRepo) Upsert(ctx context.Context, p domain.Product) (*domain.Product, error) {
	q := `
INSERT INTO products (category_id, slug, name, description, price, stock, is_active)
VALUES ($1, $2, $3, $4, $5, $6, $7)
ON CONFLICT (slug) DO UPDATE
SET category_id = EXCLUDED.category_id,
    name = EXCLUDED.name,
    description = EXCLUDED.description,
    price = EXCLUDED.price,
    stock = EXCLUDED.stock,
    is_active = EXCLUDED.is_active,
    updated_at = now()
RETURNING ` + columns
	out, err := scanProduct(r.pool.QueryRow(ctx, q, p.CategoryID, p.Slug, p.Name, p.Description, p.Price, p.Stock, p.IsActive))
	if err != nil {
		r.lg.Warn("upsert", zap.String("slug", p.Slug), zap.Error(err))
		return nil, err
	}
	return out, nil
}

func (r *postgresRepo) Delete(ctx context.Context, id string) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if isInvalidText(err) {
		return domain.ErrNotFound
	}
	if err != nil {
		return errors.Wrap(err, "delete product")
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *postgresRepo) list(ctx context.Context, q string, args ...any) ([]domain.Product, error) {
	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		r.lg.Warn("list", zap.Error(err))
		return nil, errors.Wrap(err, "query products")
	}
	defer rows.Close()

	var result []domain.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "iterate products")
	}
	r.lg.Debug("list", zap.Int("count", len(result)))
	return result, nil
}

func scanProduct(row pgx.Row) (*domain.Product, error) {
	var p domain.Product
	err := row.Scan(&p.ID, &p.CategoryID, &p.Slug, &p.Name, &p.Description, &p.Price, &p.Stock, &p.IsActive, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, errors.Wrap(err, "scan product")
	}
	return &p, nil
}

// isInvalidText reports a malformed uuid in a lookup key.
func isInvalidText(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "22P02"
}
