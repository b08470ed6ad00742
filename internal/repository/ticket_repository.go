package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/coinbox/coinbox-mod-sales/internal/domain"
)

// TicketRepository encapsulates ticket persistence. Close performs the
// close-flag transition and the stock decrement in a single transaction;
// Reprice does the same for a currency change across the ticket and its lines.
type TicketRepository interface {
	Create(ctx context.Context, ticket *domain.Ticket) error
	Update(ctx context.Context, ticket *domain.Ticket) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*domain.Ticket, error)
	ListOpen(ctx context.Context) ([]domain.Ticket, error)
	Close(ctx context.Context, ticket *domain.Ticket) error
	Reprice(ctx context.Context, ticket *domain.Ticket) error
}

type ticketRepository struct {
	pool  *pgxpool.Pool
	lines TicketLineRepository
}

// NewTicketRepository instantiates repository.
func NewTicketRepository(pool *pgxpool.Pool, lines TicketLineRepository) TicketRepository {
	return &ticketRepository{pool: pool, lines: lines}
}

const ticketSelect = `
        SELECT t.id, t.opened_at, t.closed_at, t.paid_at, t.payment_method, t.comment,
               t.discount, t.customer_id, t.cashier_id,
               c.id, c.code, c.name, c.symbol, c.digits, c.rate
        FROM tickets t
        JOIN currencies c ON c.id = t.currency_id`

func (r *ticketRepository) Create(ctx context.Context, ticket *domain.Ticket) error {
	if ticket.ID == "" {
		ticket.ID = uuid.NewString()
	}
	const query = `
        INSERT INTO tickets (id, payment_method, comment, discount, currency_id, customer_id, cashier_id)
        VALUES ($1,$2,$3,$4,$5,$6,$7)
        RETURNING opened_at`
	return r.pool.QueryRow(ctx, query,
		ticket.ID,
		ticket.PaymentMethod,
		ticket.Comment,
		ticket.Discount,
		ticket.Currency.ID,
		ticket.CustomerID,
		ticket.CashierID,
	).Scan(&ticket.OpenedAt)
}

func (r *ticketRepository) Update(ctx context.Context, ticket *domain.Ticket) error {
	const query = `
        UPDATE tickets SET closed_at=$1, paid_at=$2, payment_method=$3, comment=$4,
            discount=$5, currency_id=$6, customer_id=$7
        WHERE id=$8`
	cmd, err := r.pool.Exec(ctx, query,
		ticket.ClosedAt,
		ticket.PaidAt,
		ticket.PaymentMethod,
		ticket.Comment,
		ticket.Discount,
		ticket.Currency.ID,
		ticket.CustomerID,
		ticket.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// Delete removes the ticket; lines go with it via the cascade constraint.
func (r *ticketRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM tickets WHERE id=$1`
	cmd, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *ticketRepository) GetByID(ctx context.Context, id string) (*domain.Ticket, error) {
	ticket, err := r.fetchSingle(ctx, ticketSelect+` WHERE t.id=$1`, id)
	if err != nil {
		return nil, err
	}
	lines, err := r.lines.ListByTicket(ctx, ticket.ID)
	if err != nil {
		return nil, err
	}
	ticket.Lines = lines
	return ticket, nil
}

func (r *ticketRepository) ListOpen(ctx context.Context) ([]domain.Ticket, error) {
	rows, err := r.pool.Query(ctx, ticketSelect+` WHERE t.closed_at IS NULL ORDER BY t.opened_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Ticket
	for rows.Next() {
		ticket, err := scanTicket(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *ticket)
	}
	return result, rows.Err()
}

// Close stamps the close transition and decrements stock for every line whose
// product tracks stock; both commit or neither does. The WHERE guard makes a
// repeated close a no-op at the storage level as well.
func (r *ticketRepository) Close(ctx context.Context, ticket *domain.Ticket) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	const closeQuery = `
        UPDATE tickets SET closed_at=$1, paid_at=$2, payment_method=$3
        WHERE id=$4 AND closed_at IS NULL`
	cmd, err := tx.Exec(ctx, closeQuery, ticket.ClosedAt, ticket.PaidAt, ticket.PaymentMethod, ticket.ID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}

	const stockQuery = `UPDATE products SET quantity = quantity - $1 WHERE id=$2 AND in_stock`
	for i := range ticket.Lines {
		line := &ticket.Lines[i]
		if line.ProductID == nil || line.Quantity == 0 {
			continue
		}
		if _, err := tx.Exec(ctx, stockQuery, line.Quantity, *line.ProductID); err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

// Reprice writes the ticket's currency and every line's unit price in one
// transaction, so a failed currency change never leaves a half-converted
// ticket behind.
func (r *ticketRepository) Reprice(ctx context.Context, ticket *domain.Ticket) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	const currencyQuery = `UPDATE tickets SET currency_id=$1 WHERE id=$2`
	cmd, err := tx.Exec(ctx, currencyQuery, ticket.Currency.ID, ticket.ID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}

	const priceQuery = `UPDATE ticket_lines SET unit_price=$1 WHERE id=$2 AND ticket_id=$3`
	for i := range ticket.Lines {
		line := &ticket.Lines[i]
		if _, err := tx.Exec(ctx, priceQuery, line.UnitPrice, line.ID, ticket.ID); err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

func (r *ticketRepository) fetchSingle(ctx context.Context, query string, arg any) (*domain.Ticket, error) {
	return scanTicket(r.pool.QueryRow(ctx, query, arg))
}

func scanTicket(row pgx.Row) (*domain.Ticket, error) {
	var (
		ticket domain.Ticket
		method *string
	)
	if err := row.Scan(
		&ticket.ID,
		&ticket.OpenedAt,
		&ticket.ClosedAt,
		&ticket.PaidAt,
		&method,
		&ticket.Comment,
		&ticket.Discount,
		&ticket.CustomerID,
		&ticket.CashierID,
		&ticket.Currency.ID,
		&ticket.Currency.Code,
		&ticket.Currency.Name,
		&ticket.Currency.Symbol,
		&ticket.Currency.Digits,
		&ticket.Currency.Rate,
	); err != nil {
		return nil, err
	}
	if method != nil {
		pm := domain.PaymentMethod(*method)
		ticket.PaymentMethod = &pm
	}
	return &ticket, nil
}
