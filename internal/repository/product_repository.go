package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/coinbox/coinbox-mod-sales/internal/domain"
)

// ProductRepository gives read access to the sellable catalog. Stock writes
// happen inside the ticket close transaction, not here.
type ProductRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Product, error)
	List(ctx context.Context, limit, offset int) ([]domain.Product, error)
}

type productRepository struct {
	pool *pgxpool.Pool
}

// NewProductRepository instantiates repository.
func NewProductRepository(pool *pgxpool.Pool) ProductRepository {
	return &productRepository{pool: pool}
}

const productColumns = `id, name, reference, price, currency_code, in_stock, quantity`

func (r *productRepository) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	const query = `SELECT ` + productColumns + ` FROM products WHERE id=$1`
	var p domain.Product
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&p.ID,
		&p.Name,
		&p.Reference,
		&p.Price,
		&p.CurrencyCode,
		&p.InStock,
		&p.Quantity,
	); err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *productRepository) List(ctx context.Context, limit, offset int) ([]domain.Product, error) {
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	const query = `SELECT ` + productColumns + ` FROM products ORDER BY name LIMIT $1 OFFSET $2`
	rows, err := r.pool.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanProducts(rows)
}

func scanProducts(rows pgx.Rows) ([]domain.Product, error) {
	var result []domain.Product
	for rows.Next() {
		var p domain.Product
		if err := rows.Scan(
			&p.ID,
			&p.Name,
			&p.Reference,
			&p.Price,
			&p.CurrencyCode,
			&p.InStock,
			&p.Quantity,
		); err != nil {
			return nil, err
		}
		result = append(result, p)
	}
	return result, rows.Err()
}
