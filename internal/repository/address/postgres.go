package address

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"storefront/internal/domain"
)

const columns = `id::text, customer_id::text, address_type, full_name, phone_number, address_line1, address_line2,
       city, state, postal_code, country, is_default, created_at`

type postgresRepo struct {
	pool *pgxpool.Pool
}

func NewPostgres(pool *pgxpool.Pool) Repository {
	return &postgresRepo{pool: pool}
}

func (r *postgresRepo) ListForCustomer(ctx context.Context, customerID string) ([]domain.Address, error) {
	q := `SELECT ` + columns + `
FROM addresses
WHERE customer_id = $1
ORDER BY is_default DESC, created_at DESC`
	rows, err := r.pool.Query(ctx, q, customerID)
	if err != nil {
		return nil, errors.Wrap(err, "query addresses")
	}
	defer rows.Close()

	var result []domain.Address
	for rows.Next() {
		a, err := scanAddress(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *a)
	}
	return result, rows.Err()
}

func (r *postgresRepo) GetForCustomer(ctx context.Context, customerID, addressID string) (*domain.Address, error) {
	q := `SELECT ` + columns + ` FROM addresses WHERE id = $1 AND customer_id = $2`
	return scanAddress(r.pool.QueryRow(ctx, q, addressID, customerID))
}

func (r *postgresRepo) Create(ctx context.Context, a domain.Address) (*domain.Address, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, errors.Wrap(err, "begin")
	}
	defer tx.Rollback(ctx)

	if a.IsDefault {
		if err := clearDefault(ctx, tx, a.CustomerID, a.Type, ""); err != nil {
			return nil, err
		}
	}
	q := `
INSERT INTO addresses (customer_id, address_type, full_name, phone_number, address_line1, address_line2,
                       city, state, postal_code, country, is_default)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
RETURNING ` + columns
	out, err := scanAddress(tx.QueryRow(ctx, q, a.CustomerID, a.Type, a.FullName, a.PhoneNumber, a.Line1, a.Line2,
		a.City, a.State, a.PostalCode, a.Country, a.IsDefault))
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, errors.Wrap(err, "commit")
	}
	return out, nil
}

func (r *postgresRepo) Update(ctx context.Context, a domain.Address) (*domain.Address, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, errors.Wrap(err, "begin")
	}
	defer tx.Rollback(ctx)

	if a.IsDefault {
		if err := clearDefault(ctx, tx, a.CustomerID, a.Type, a.ID); err != nil {
			return nil, err
		}
	}
	q := `
UPDATE addresses
SET address_type = $3, full_name = $4, phone_number = $5, address_line1 = $6, address_line2 = $7,
    city = $8, state = $9, postal_code = $10, country = $11, is_default = $12
WHERE id = $1 AND customer_id = $2
RETURNING ` + columns
	out, err := scanAddress(tx.QueryRow(ctx, q, a.ID, a.CustomerID, a.Type, a.FullName, a.PhoneNumber, a.Line1, a.Line2,
		a.City, a.State, a.PostalCode, a.Country, a.IsDefault))
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, errors.Wrap(err, "commit")
	}
	return out, nil
}

func (r *postgresRepo) Delete(ctx context.Context, customerID, addressID string) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM addresses WHERE id = $1 AND customer_id = $2`, addressID, customerID)
	if err != nil {
		if isInvalidText(err) {
			return domain.ErrNotFound
		}
		return errors.Wrap(err, "delete address")
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func clearDefault(ctx context.Context, tx pgx.Tx, customerID string, typ domain.AddressType, exceptID string) error {
	_, err := tx.Exec(ctx, `
UPDATE addresses
SET is_default = false
WHERE customer_id = $1 AND address_type = $2 AND is_default AND id::text <> $3
`, customerID, typ, exceptID)
	return errors.Wrap(err, "clear default address")
}

func scanAddress(row pgx.Row) (*domain.Address, error) {
	var a domain.Address
	err := row.Scan(&a.ID, &a.CustomerID, &a.Type, &a.FullName, &a.PhoneNumber, &a.Line1, &a.Line2,
		&a.City, &a.State, &a.PostalCode, &a.Country, &a.IsDefault, &a.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) || isInvalidText(err) {
			return nil, domain.ErrNotFound
		}
		return nil, errors.Wrap(err, "scan address")
	}
	return &a, nil
}

// isInvalidText reports a malformed uuid in a lookup key.
func isInvalidText(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "22P02"
}
