package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/coinbox/coinbox-mod-sales/internal/domain"
)

// CurrencyRepository encapsulates currency persistence.
type CurrencyRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Currency, error)
	GetByCode(ctx context.Context, code string) (*domain.Currency, error)
	List(ctx context.Context) ([]domain.Currency, error)
}

type currencyRepository struct {
	pool *pgxpool.Pool
}

// NewCurrencyRepository instantiates repository.
func NewCurrencyRepository(pool *pgxpool.Pool) CurrencyRepository {
	return &currencyRepository{pool: pool}
}

const currencyColumns = `id, code, name, symbol, digits, rate`

func (r *currencyRepository) GetByID(ctx context.Context, id string) (*domain.Currency, error) {
	const query = `SELECT ` + currencyColumns + ` FROM currencies WHERE id=$1`
	return r.fetchSingle(ctx, query, id)
}

func (r *currencyRepository) GetByCode(ctx context.Context, code string) (*domain.Currency, error) {
	const query = `SELECT ` + currencyColumns + ` FROM currencies WHERE code=$1`
	return r.fetchSingle(ctx, query, code)
}

func (r *currencyRepository) fetchSingle(ctx context.Context, query string, arg any) (*domain.Currency, error) {
	var cur domain.Currency
	if err := r.pool.QueryRow(ctx, query, arg).Scan(
		&cur.ID,
		&cur.Code,
		&cur.Name,
		&cur.Symbol,
		&cur.Digits,
		&cur.Rate,
	); err != nil {
		return nil, err
	}
	return &cur, nil
}

func (r *currencyRepository) List(ctx context.Context) ([]domain.Currency, error) {
	const query = `SELECT ` + currencyColumns + ` FROM currencies ORDER BY code`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanCurrencies(rows)
}

func scanCurrencies(rows pgx.Rows) ([]domain.Currency, error) {
	var result []domain.Currency
	for rows.Next() {
		var cur domain.Currency
		if err := rows.Scan(
			&cur.ID,
			&cur.Code,
			&cur.Name,
			&cur.Symbol,
			&cur.Digits,
			&cur.Rate,
		); err != nil {
			return nil, err
		}
		result = append(result, cur)
	}
	return result, rows.Err()
}
