package cart

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

type postgresRepo struct {
	pool *pgxpool.Pool
	lg   *zap.Logger
}

// querier is satisfied by both the pool and a transaction.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func NewPostgres(pool *pgxpool.Pool, lg *zap.Logger) Repository {
	return &postgresRepo{pool: pool, lg: logger.OrNop(lg).Named("cart_repo")}
}

func (r *postgresRepo) GetByIdentity(ctx context.Context, id domain.Identity) (*domain.Cart, error) {
	return fetchCart(ctx, r.pool, id)
}

func (r *postgresRepo) GetOrCreate(ctx context.Context, id domain.Identity) (*domain.Cart, error) {
	if id.IsZero() {
		return nil, domain.ErrAuthenticationRequired
	}
	if err := ensureCart(ctx, r.pool, id); err != nil {
		return nil, err
	}
	return fetchCart(ctx, r.pool, id)
}

// AddLine merges quantity into the cart's line for productID, creating it if needed.
func (r *postgresRepo) AddLine(ctx context.Context, cartID, productID string, quantity int) error {
	const q = `
INSERT INTO cart_lines (cart_id, product_id, quantity)
VALUES ($1, $2, $3)
ON CONFLICT (cart_id, product_id) DO UPDATE
SET quantity = cart_lines.quantity + EXCLUDED.quantity
`
	if _, err := r.pool.Exec(ctx, q, cartID, productID, quantity); err != nil {
		r.lg.Warn("add line", zap.String("cart_id", cartID), zap.String("product_id", productID), zap.Error(err))
		return errors.Wrap(err, "add line")
	}
	return touch(ctx, r.pool, cartID)
}

func (r *postgresRepo) SetLineQuantity(ctx context.Context, cartID, lineID string, quantity int) error {
	cmd, err := r.pool.Exec(ctx, `
UPDATE cart_lines
SET quantity = $1
WHERE id::text = $2 AND cart_id = $3
`, quantity, lineID, cartID)
	if err != nil {
		return errors.Wrap(err, "set line quantity")
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return touch(ctx, r.pool, cartID)
}

func (r *postgresRepo) RemoveLine(ctx context.Context, cartID, lineID string) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM cart_lines WHERE id::text = $1 AND cart_id = $2`, lineID, cartID)
	if err != nil {
		return errors.Wrap(err, "remove line")
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return touch(ctx, r.pool, cartID)
}

func (r *postgresRepo) Clear(ctx context.Context, cartID string) error {
	if _, err := r.pool.Exec(ctx, `DELETE FROM cart_lines WHERE cart_id = $1`, cartID); err != nil {
		return errors.Wrap(err, "clear cart")
	}
	return touch(ctx, r.pool, cartID)
}

// MergeSession moves the session cart's lines into the customer's cart.
// Quantities are summed and clamped to current stock; the session cart is removed.
func (r *postgresRepo) MergeSession(ctx context.Context, sessionKey, customerID string) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return errors.Wrap(err, "begin")
	}
	defer tx.Rollback(ctx)

	var sessionCartID string
	err = tx.QueryRow(ctx, `SELECT id::text FROM carts WHERE session_key = $1 FOR UPDATE`, sessionKey).Scan(&sessionCartID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil
	}
	if err != nil {
		return errors.Wrap(err, "lock session cart")
	}

	customer := domain.CustomerIdentity(customerID)
	if err := ensureCart(ctx, tx, customer); err != nil {
		return err
	}
	var customerCartID string
	if err := tx.QueryRow(ctx, `SELECT id::text FROM carts WHERE customer_id = $1`, customerID).Scan(&customerCartID); err != nil {
		return errors.Wrap(err, "get customer cart")
	}

	if _, err := tx.Exec(ctx, `
INSERT INTO cart_lines (cart_id, product_id, quantity, created_at)
SELECT $1, l.product_id, GREATEST(1, LEAST(l.quantity, p.stock)), l.created_at
FROM cart_lines l
JOIN products p ON p.id = l.product_id
WHERE l.cart_id = $2
ON CONFLICT (cart_id, product_id) DO UPDATE
SET quantity = GREATEST(1, LEAST(
    cart_lines.quantity + EXCLUDED.quantity,
    (SELECT p.stock FROM products p WHERE p.id = EXCLUDED.product_id)
))
`, customerCartID, sessionCartID); err != nil {
		return errors.Wrap(err, "merge lines")
	}
	if _, err := tx.Exec(ctx, `DELETE FROM carts WHERE id = $1`, sessionCartID); err != nil {
		return errors.Wrap(err, "delete session cart")
	}
	if err := touch(ctx, tx, customerCartID); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return errors.Wrap(err, "commit")
	}
	r.lg.Debug("merged session cart", zap.String("customer_id", customerID), zap.String("cart_id", customerCartID))
	return nil
}

func ensureCart(ctx context.Context, q querier, id domain.Identity) error {
	var err error
	if id.IsCustomer() {
		_, err = q.Exec(ctx, `
INSERT INTO carts (customer_id) VALUES ($1)
ON CONFLICT (customer_id) WHERE customer_id IS NOT NULL DO NOTHING
`, id.CustomerID())
	} else {
		_, err = q.Exec(ctx, `
INSERT INTO carts (session_key) VALUES ($1)
ON CONFLICT (session_key) WHERE session_key IS NOT NULL DO NOTHING
`, id.SessionKey())
	}
	return errors.Wrap(err, "ensure cart")
}

func touch(ctx context.Context, q querier, cartID string) error {
	_, err := q.Exec(ctx, `UPDATE carts SET updated_at = now() WHERE id = $1`, cartID)
	return errors.Wrap(err, "touch cart")
}

func fetchCart(ctx context.Context, q querier, id domain.Identity) (*domain.Cart, error) {
	var (
		cartQuery string
		arg       string
	)
	switch {
	case id.IsCustomer():
		cartQuery = `SELECT id::text, customer_id::text, session_key, created_at, updated_at FROM carts WHERE customer_id = $1`
		arg = id.CustomerID()
	case !id.IsZero():
		cartQuery = `SELECT id::text, customer_id::text, session_key, created_at, updated_at FROM carts WHERE session_key = $1`
		arg = id.SessionKey()
	default:
		return nil, domain.ErrNotFound
	}

	var cart domain.Cart
	if err := q.QueryRow(ctx, cartQuery, arg).Scan(&cart.ID, &cart.CustomerID, &cart.SessionKey, &cart.CreatedAt, &cart.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, errors.Wrap(err, "get cart")
	}

	const linesQuery = `
SELECT l.id::text, l.cart_id::text, l.quantity, l.created_at,
       p.id::text, p.category_id::text, p.slug, p.name, p.description, p.price, p.stock, p.is_active, p.created_at, p.updated_at
FROM cart_lines l
JOIN products p ON p.id = l.product_id
WHERE l.cart_id = $1
ORDER BY l.created_at ASC, l.id ASC
`
	rows, err := q.Query(ctx, linesQuery, cart.ID)
	if err != nil {
		return nil, errors.Wrap(err, "query lines")
	}
	defer rows.Close()

	for rows.Next() {
		var (
			line domain.CartLine
			p    = &line.Product
		)
		if err := rows.Scan(
			&line.ID, &line.CartID, &line.Quantity, &line.CreatedAt,
			&p.ID, &p.CategoryID, &p.Slug, &p.Name, &p.Description, &p.Price, &p.Stock, &p.IsActive, &p.CreatedAt, &p.UpdatedAt,
		); err != nil {
			return nil, errors.Wrap(err, "scan line")
		}
		cart.Lines = append(cart.Lines, line)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "iterate lines")
	}
	return &cart, nil
}
