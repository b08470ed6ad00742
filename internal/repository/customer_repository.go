package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/coinbox/coinbox-mod-sales/internal/domain"
)

// CustomerRepository encapsulates customer lookups.
type CustomerRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Customer, error)
	List(ctx context.Context) ([]domain.Customer, error)
}

type customerRepository struct {
	pool *pgxpool.Pool
}

// NewCustomerRepository instantiates repository.
func NewCustomerRepository(pool *pgxpool.Pool) CustomerRepository {
	return &customerRepository{pool: pool}
}

func (r *customerRepository) GetByID(ctx context.Context, id string) (*domain.Customer, error) {
	const query = `SELECT id, name, email, phone, discount FROM customers WHERE id=$1`
	var c domain.Customer
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&c.ID,
		&c.Name,
		&c.Email,
		&c.Phone,
		&c.Discount,
	); err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *customerRepository) List(ctx context.Context) ([]domain.Customer, error) {
	const query = `SELECT id, name, email, phone, discount FROM customers ORDER BY name`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Customer
	for rows.Next() {
		var c domain.Customer
		if err := rows.Scan(&c.ID, &c.Name, &c.Email, &c.Phone, &c.Discount); err != nil {
			return nil, err
		}
		result = append(result, c)
	}
	return result, rows.Err()
}
