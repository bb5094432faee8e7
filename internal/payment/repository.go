package payment

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository persists payments.
type Repository interface {
	Create(ctx context.Context, p Payment) error
	Get(ctx context.Context, id string) (Payment, error)
	Update(ctx context.Context, p Payment) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]Payment, error)
}

const selectPayment = `SELECT id, number, status, gateway_name, total_amount, currency_code,
        client_email, client_id, description, details, created_at, updated_at
        FROM payments`

// PostgresRepository stores payments in PostgreSQL.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository builds a repository backed by PostgreSQL.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts a payment record.
func (r *PostgresRepository) Create(ctx context.Context, p Payment) error {
	id, err := uuid.Parse(p.ID)
	if err != nil {
		return err
	}
	_, err = r.db.Exec(ctx, `INSERT INTO payments (id, number, status, gateway_name, total_amount, currency_code,
        client_email, client_id, description, details, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		id, p.Number, p.Status, p.GatewayName, p.TotalAmount, p.CurrencyCode,
		p.ClientEmail, p.ClientID, p.Description, details(p), p.CreatedAt.UTC(), p.UpdatedAt.UTC())
	return err
}

// Get fetches a payment by identifier.
func (r *PostgresRepository) Get(ctx context.Context, id string) (Payment, error) {
	paymentID, err := uuid.Parse(id)
	if err != nil {
		// Not a uuid, so it cannot have been issued by Create.
		return Payment{}, ErrNotFound
	}
	p, err := scanPayment(r.db.QueryRow(ctx, selectPayment+` WHERE id = $1`, paymentID))
	if errors.Is(err, pgx.ErrNoRows) {
		return Payment{}, ErrNotFound
	}
	return p, err
}

// Update overwrites the mutable columns of a payment.
func (r *PostgresRepository) Update(ctx context.Context, p Payment) error {
	id, err := uuid.Parse(p.ID)
	if err != nil {
		return ErrNotFound
	}
	tag, err := r.db.Exec(ctx, `UPDATE payments SET number = $2, status = $3, gateway_name = $4,
        total_amount = $5, currency_code = $6, client_email = $7, client_id = $8,
        description = $9, details = $10, updated_at = $11
        WHERE id = $1`,
		id, p.Number, p.Status, p.GatewayName, p.TotalAmount, p.CurrencyCode,
		p.ClientEmail, p.ClientID, p.Description, details(p), p.UpdatedAt.UTC())
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes a payment.
func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	paymentID, err := uuid.Parse(id)
	if err != nil {
		return ErrNotFound
	}
	tag, err := r.db.Exec(ctx, `DELETE FROM payments WHERE id = $1`, paymentID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// List returns every payment, oldest first.
func (r *PostgresRepository) List(ctx context.Context) ([]Payment, error) {
	rows, err := r.db.Query(ctx, selectPayment+` ORDER BY created_at, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Payment
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func scanPayment(row pgx.Row) (Payment, error) {
	var p Payment
	var id uuid.UUID
	var createdAt, updatedAt time.Time
	if err := row.Scan(&id, &p.Number, &p.Status, &p.GatewayName, &p.TotalAmount, &p.CurrencyCode,
		&p.ClientEmail, &p.ClientID, &p.Description, &p.Details, &createdAt, &updatedAt); err != nil {
		return Payment{}, err
	}
	p.ID = id.String()
	p.CreatedAt = createdAt.UTC()
	p.UpdatedAt = updatedAt.UTC()
	return p, nil
}

func details(p Payment) map[string]any {
	if p.Details == nil {
		return map[string]any{}
	}
	return p.Details
}
