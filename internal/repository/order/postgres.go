package order

import (
	"context"
	"sort"
	"time"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"storefront/internal/domain"
	"storefront/internal/logger"
	"storefront/internal/outbox"
)

const orderColumns = `id::text, order_number, customer_id::text,
       shipping_name, shipping_phone, shipping_line1, shipping_line2, shipping_city, shipping_state,
       shipping_postal_code, shipping_country,
       subtotal, tax, shipping_cost, total, status, payment_status, payment_method, created_at, updated_at`

const itemColumns = `id::text, order_id::text, product_id::text, product_name, unit_price, quantity, subtotal, created_at`

type postgresRepo struct {
	pool *pgxpool.Pool
	lg   *zap.Logger
}

func NewPostgres(pool *pgxpool.Pool, lg *zap.Logger) Repository {
	return &postgresRepo{pool: pool, lg: logger.OrNop(lg).Named("order_repo")}
}

// CreatedEvent is the payload of the order.created outbox record.
type CreatedEvent struct {
	OrderID     string          `json:"orderId"`
	OrderNumber string          `json:"orderNumber"`
	CustomerID  string          `json:"customerId"`
	Total       decimal.Decimal `json:"total"`
	Items       []EventItem     `json:"items"`
	CreatedAt   time.Time       `json:"createdAt"`
}

type EventItem struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

func (r *postgresRepo) Place(ctx context.Context, in PlaceInput) (*domain.Order, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, errors.Wrap(err, "begin")
	}
	defer tx.Rollback(ctx)

	// Serialize concurrent submissions of the same cart; the loser sees it empty.
	var locked string
	if err := tx.QueryRow(ctx, `SELECT id::text FROM carts WHERE id = $1 FOR UPDATE`, in.CartID).Scan(&locked); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrEmptyCart
		}
		return nil, errors.Wrap(err, "lock cart")
	}
	current, err := lockedLines(ctx, tx, in.CartID)
	if err != nil {
		return nil, err
	}
	if len(current) == 0 || len(in.Lines) == 0 {
		return nil, domain.ErrEmptyCart
	}
	if !sameLines(current, in.Lines) {
		return nil, domain.ErrCartChanged
	}

	o := domain.Order{
		Number:        in.Number,
		CustomerID:    in.CustomerID,
		Shipping:      in.Shipping,
		Subtotal:      in.Subtotal,
		Tax:           in.Tax,
		ShippingCost:  in.ShippingCost,
		Total:         in.Total,
		Status:        in.Status,
		PaymentStatus: in.PaymentStatus,
		PaymentMethod: in.PaymentMethod,
	}
	s := in.Shipping
	err = tx.QueryRow(ctx, `
INSERT INTO orders (order_number, customer_id,
                    shipping_name, shipping_phone, shipping_line1, shipping_line2, shipping_city, shipping_state,
                    shipping_postal_code, shipping_country,
                    subtotal, tax, shipping_cost, total, status, payment_status, payment_method)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
RETURNING id::text, created_at, updated_at`,
		in.Number, in.CustomerID,
		s.Name, s.Phone, s.Line1, s.Line2, s.City, s.State, s.PostalCode, s.Country,
		in.Subtotal, in.Tax, in.ShippingCost, in.Total, in.Status, in.PaymentStatus, in.PaymentMethod,
	).Scan(&o.ID, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" && pgErr.ConstraintName == "orders_order_number_key" {
			return nil, domain.ErrOrderNumberTaken
		}
		return nil, errors.Wrap(err, "insert order")
	}

	if err := decrementStock(ctx, tx, in.Lines); err != nil {
		return nil, err
	}

	event := CreatedEvent{
		OrderID:     o.ID,
		OrderNumber: o.Number,
		CustomerID:  o.CustomerID,
		Total:       o.Total,
		CreatedAt:   o.CreatedAt,
	}
	for _, line := range in.Lines {
		productID := line.Product.ID
		item := domain.OrderItem{
			OrderID:     o.ID,
			ProductID:   &productID,
			ProductName: line.Product.Name,
			UnitPrice:   line.Product.Price,
			Quantity:    line.Quantity,
			Subtotal:    line.Total(),
		}
		if err := tx.QueryRow(ctx, `
INSERT INTO order_items (order_id, product_id, product_name, unit_price, quantity, subtotal)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING id::text, created_at`,
			o.ID, productID, item.ProductName, item.UnitPrice, item.Quantity, item.Subtotal,
		).Scan(&item.ID, &item.CreatedAt); err != nil {
			return nil, errors.Wrap(err, "insert order item")
		}
		o.Items = append(o.Items, item)
		event.Items = append(event.Items, EventItem{ProductID: productID, Quantity: line.Quantity})
	}

	ordered := make([]string, 0, len(in.Lines))
	for _, line := range in.Lines {
		ordered = append(ordered, line.ID)
	}
	if _, err := tx.Exec(ctx, `DELETE FROM cart_lines WHERE cart_id = $1 AND id = ANY($2::text[]::uuid[])`, in.CartID, ordered); err != nil {
		return nil, errors.Wrap(err, "clear cart")
	}
	if _, err := tx.Exec(ctx, `UPDATE carts SET updated_at = now() WHERE id = $1`, in.CartID); err != nil {
		return nil, errors.Wrap(err, "touch cart")
	}

	if _, err := outbox.Insert(ctx, tx, outbox.TopicOrderCreated, o.Number, event); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, errors.Wrap(err, "commit")
	}
	r.lg.Debug("order placed", zap.String("order_number", o.Number), zap.Int("items", len(o.Items)))
	return &o, nil
}

type lineState struct {
	productID string
	quantity  int
}

// lockedLines reads the cart's lines inside tx, keyed by line id.
func lockedLines(ctx context.Context, tx pgx.Tx, cartID string) (map[string]lineState, error) {
	rows, err := tx.Query(ctx, `SELECT id::text, product_id::text, quantity FROM cart_lines WHERE cart_id = $1 FOR UPDATE`, cartID)
	if err != nil {
		return nil, errors.Wrap(err, "read cart lines")
	}
	defer rows.Close()

	out := map[string]lineState{}
	for rows.Next() {
		var (
			id string
			st lineState
		)
		if err := rows.Scan(&id, &st.productID, &st.quantity); err != nil {
			return nil, errors.Wrap(err, "scan cart line")
		}
		out[id] = st
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "iterate cart lines")
	}
	return out, nil
}

// sameLines reports whether the reviewed lines still match the cart exactly.
func sameLines(current map[string]lineState, reviewed []domain.CartLine) bool {
	if len(current) != len(reviewed) {
		return false
	}
	for _, line := range reviewed {
		st, ok := current[line.ID]
		if !ok || st.productID != line.Product.ID || st.quantity != line.Quantity {
			return false
		}
	}
	return true
}

// decrementStock takes and decrements each product row in id order so
// concurrent checkouts lock rows in the same sequence.
func decrementStock(ctx context.Context, tx pgx.Tx, lines []domain.CartLine) error {
	sorted := make([]domain.CartLine, len(lines))
	copy(sorted, lines)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Product.ID < sorted[j].Product.ID })

	for _, line := range sorted {
		cmd, err := tx.Exec(ctx, `
UPDATE products
SET stock = stock - $2, updated_at = now()
WHERE id = $1 AND is_active AND stock >= $2`, line.Product.ID, line.Quantity)
		if err != nil {
			return errors.Wrap(err, "decrement stock")
		}
		if cmd.RowsAffected() == 1 {
			continue
		}

		var (
			stock  int
			active bool
		)
		err = tx.QueryRow(ctx, `SELECT stock, is_active FROM products WHERE id = $1`, line.Product.ID).Scan(&stock, &active)
		if err != nil && !errors.Is(err, pgx.ErrNoRows) {
			return errors.Wrap(err, "read stock")
		}
		if !active {
			stock = 0
		}
		return &domain.InsufficientStockError{
			ProductID:   line.Product.ID,
			ProductName: line.Product.Name,
			Requested:   line.Quantity,
			Available:   stock,
		}
	}
	return nil
}

// GetByNumber returns the order only when it belongs to customerID.
func (r *postgresRepo) GetByNumber(ctx context.Context, customerID, number string) (*domain.Order, error) {
	q := `SELECT ` + orderColumns + ` FROM orders WHERE order_number = $1 AND customer_id = $2`
	o, err := scanOrder(r.pool.QueryRow(ctx, q, number, customerID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		r.lg.Warn("get order", zap.String("order_number", number), zap.Error(err))
		return nil, errors.Wrap(err, "get order")
	}
	items, err := r.items(ctx, []string{o.ID})
	if err != nil {
		return nil, err
	}
	o.Items = items[o.ID]
	return o, nil
}

func (r *postgresRepo) ListByCustomer(ctx context.Context, customerID string) ([]domain.Order, error) {
	q := `SELECT ` + orderColumns + `
FROM orders
WHERE customer_id = $1
ORDER BY created_at DESC, id DESC`
	rows, err := r.pool.Query(ctx, q, customerID)
	if err != nil {
		return nil, errors.Wrap(err, "query orders")
	}
	defer rows.Close()

	var (
		orders []domain.Order
		ids    []string
	)
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, errors.Wrap(err, "scan order")
		}
		orders = append(orders, *o)
		ids = append(ids, o.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "iterate orders")
	}
	if len(ids) == 0 {
		return orders, nil
	}

	items, err := r.items(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range orders {
		orders[i].Items = items[orders[i].ID]
	}
	return orders, nil
}

func (r *postgresRepo) items(ctx context.Context, orderIDs []string) (map[string][]domain.OrderItem, error) {
	q := `SELECT ` + itemColumns + `
FROM order_items
WHERE order_id = ANY($1::text[]::uuid[])
ORDER BY created_at ASC, id ASC`
	rows, err := r.pool.Query(ctx, q, orderIDs)
	if err != nil {
		return nil, errors.Wrap(err, "query order items")
	}
	defer rows.Close()

	out := make(map[string][]domain.OrderItem, len(orderIDs))
	for rows.Next() {
		var it domain.OrderItem
		if err := rows.Scan(&it.ID, &it.OrderID, &it.ProductID, &it.ProductName, &it.UnitPrice, &it.Quantity, &it.Subtotal, &it.CreatedAt); err != nil {
			return nil, errors.Wrap(err, "scan order item")
		}
		out[it.OrderID] = append(out[it.OrderID], it)
	}
	return out, rows.Err()
}

func scanOrder(row pgx.Row) (*domain.Order, error) {
	var o domain.Order
	s := &o.Shipping
	err := row.Scan(&o.ID, &o.Number, &o.CustomerID,
		&s.Name, &s.Phone, &s.Line1, &s.Line2, &s.City, &s.State, &s.PostalCode, &s.Country,
		&o.Subtotal, &o.Tax, &o.ShippingCost, &o.Total, &o.Status, &o.PaymentStatus, &o.PaymentMethod,
		&o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &o, nil
}
