package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/coinbox/coinbox-mod-sales/internal/domain"
)

// TicketLineRepository encapsulates line persistence.
type TicketLineRepository interface {
	Create(ctx context.Context, line *domain.TicketLine) error
	Update(ctx context.Context, line *domain.TicketLine) error
	Delete(ctx context.Context, id string) error
	ListByTicket(ctx context.Context, ticketID string) ([]domain.TicketLine, error)
	FindUneditedByProduct(ctx context.Context, ticketID, productID string) (*domain.TicketLine, error)
}

type ticketLineRepository struct {
	pool *pgxpool.Pool
}

// NewTicketLineRepository instantiates repository.
func NewTicketLineRepository(pool *pgxpool.Pool) TicketLineRepository {
	return &ticketLineRepository{pool: pool}
}

const lineColumns = `id, ticket_id, description, unit_price, quantity, discount, tax, is_edited, product_id`

func (r *ticketLineRepository) Create(ctx context.Context, line *domain.TicketLine) error {
	if line.ID == "" {
		line.ID = uuid.NewString()
	}
	const query = `
        INSERT INTO ticket_lines (id, ticket_id, description, unit_price, quantity, discount, tax, is_edited, product_id)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`
	_, err := r.pool.Exec(ctx, query,
		line.ID,
		line.TicketID,
		line.Description,
		line.UnitPrice,
		line.Quantity,
		line.Discount,
		line.Tax,
		line.IsEdited,
		line.ProductID,
	)
	return err
}

func (r *ticketLineRepository) Update(ctx context.Context, line *domain.TicketLine) error {
	const query = `
        UPDATE ticket_lines SET description=$1, unit_price=$2, quantity=$3, discount=$4, tax=$5, is_edited=$6, product_id=$7
        WHERE id=$8`
	cmd, err := r.pool.Exec(ctx, query,
		line.Description,
		line.UnitPrice,
		line.Quantity,
		line.Discount,
		line.Tax,
		line.IsEdited,
		line.ProductID,
		line.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *ticketLineRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM ticket_lines WHERE id=$1`
	cmd, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *ticketLineRepository) ListByTicket(ctx context.Context, ticketID string) ([]domain.TicketLine, error) {
	const query = `SELECT ` + lineColumns + ` FROM ticket_lines WHERE ticket_id=$1 ORDER BY created_at, id`
	rows, err := r.pool.Query(ctx, query, ticketID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTicketLines(rows)
}

func (r *ticketLineRepository) FindUneditedByProduct(ctx context.Context, ticketID, productID string) (*domain.TicketLine, error) {
	const query = `SELECT ` + lineColumns + ` FROM ticket_lines
        WHERE ticket_id=$1 AND product_id=$2 AND NOT is_edited
        ORDER BY created_at, id LIMIT 1`
	var line domain.TicketLine
	if err := r.pool.QueryRow(ctx, query, ticketID, productID).Scan(
		&line.ID,
		&line.TicketID,
		&line.Description,
		&line.UnitPrice,
		&line.Quantity,
		&line.Discount,
		&line.Tax,
		&line.IsEdited,
		&line.ProductID,
	); err != nil {
		return nil, err
	}
	return &line, nil
}

func scanTicketLines(rows pgx.Rows) ([]domain.TicketLine, error) {
	var result []domain.TicketLine
	for rows.Next() {
		var line domain.TicketLine
		if err := rows.Scan(
			&line.ID,
			&line.TicketID,
			&line.Description,
			&line.UnitPrice,
			&line.Quantity,
			&line.Discount,
			&line.Tax,
			&line.IsEdited,
			&line.ProductID,
		); err != nil {
			return nil, err
		}
		result = append(result, line)
	}
	return result, rows.Err()
}
