package customer

import (
	"context"
	"strings"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"storefront/internal/domain"
	"storefront/internal/logger"
)

const columns = `id::text, username, email, password_hash, first_name, last_name, created_at`

type postgresRepo struct {
	pool *pgxpool.Pool
	lg   *zap.Logger
}

// NewPostgres returns a Repository backed by Postgres.
func NewPostgres(pool *pgxpool.Pool, lg *zap.Logger) Repository {
	return &postgresRepo{pool: pool, lg: logger.OrNop(lg).Named("customer_repo")}
}

func (r *postgresRepo) Create(ctx context.Context, c domain.Customer) (*domain.Customer, error) {
	q := `
INSERT INTO customers (username, email, password_hash, first_name, last_name)
VALUES ($1, $2, $3, $4, $5)
RETURNING ` + columns
	return r.scanCustomer(r.pool.QueryRow(ctx, q,
		strings.TrimSpace(c.Username),
		strings.ToLower(strings.TrimSpace(c.Email)),
		c.PasswordHash,
		c.FirstName,
		c.LastName,
	))
}

func (r *postgresRepo) GetByLoginKey(ctx context.Context, key domain.LoginKey) (*domain.Customer, error) {
	var q string
	switch key.Kind {
	case domain.LoginByEmail:
		q = `SELECT ` + columns + ` FROM customers WHERE lower(email) = lower($1) LIMIT 1`
	default:
		q = `SELECT ` + columns + ` FROM customers WHERE lower(username) = lower($1) LIMIT 1`
	}
	return r.scanCustomer(r.pool.QueryRow(ctx, q, key.Value))
}

func (r *postgresRepo) GetByID(ctx context.Context, id string) (*domain.Customer, error) {
	q := `SELECT ` + columns + ` FROM customers WHERE id = $1`
	return r.scanCustomer(r.pool.QueryRow(ctx, q, id))
}

func (r *postgresRepo) scanCustomer(row pgx.Row) (*domain.Customer, error) {
	var c domain.Customer
	err := row.Scan(&c.ID, &c.Username, &c.Email, &c.PasswordHash, &c.FirstName, &c.LastName, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, domain.ErrAlreadyExists
		}
		r.lg.Warn("scan customer", zap.Error(err))
		return nil, errors.Wrap(err, "scan customer")
	}
	return &c, nil
}
