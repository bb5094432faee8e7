package gateway

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const uniqueViolation = "23505"

// Repository persists gateway configs keyed by gateway name.
type Repository interface {
	Create(ctx context.Context, cfg Config) error
	Get(ctx context.Context, name string) (Config, error)
	Delete(ctx context.Context, name string) error
	List(ctx context.Context) ([]Config, error)
}

// PostgresRepository stores gateway configs in PostgreSQL.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository builds a repository backed by PostgreSQL.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts a gateway config; taken names fail with ErrExists.
func (r *PostgresRepository) Create(ctx context.Context, cfg Config) error {
	options := cfg.Config
	if options == nil {
		options = map[string]any{}
	}
	_, err := r.db.Exec(ctx, `INSERT INTO gateway_configs (gateway_name, factory_name, config, created_at)
        VALUES ($1, $2, $3, now())`, cfg.GatewayName, cfg.FactoryName, options)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return ErrExists
	}
	return err
}

// Get fetches a gateway config by name.
func (r *PostgresRepository) Get(ctx context.Context, name string) (Config, error) {
	row := r.db.QueryRow(ctx, `SELECT gateway_name, factory_name, config
        FROM gateway_configs WHERE gateway_name = $1`, name)
	var cfg Config
	if err := row.Scan(&cfg.GatewayName, &cfg.FactoryName, &cfg.Config); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Config{}, ErrNotFound
		}
		return Config{}, err
	}
	return cfg, nil
}

// Delete removes a gateway config.
func (r *PostgresRepository) Delete(ctx context.Context, name string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM gateway_configs WHERE gateway_name = $1`, name)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// List returns every gateway config ordered by name.
func (r *PostgresRepository) List(ctx context.Context) ([]Config, error) {
	rows, err := r.db.Query(ctx, `SELECT gateway_name, factory_name, config
        FROM gateway_configs ORDER BY gateway_name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Config
	for rows.Next() {
		var cfg Config
		if err := rows.Scan(&cfg.GatewayName, &cfg.FactoryName, &cfg.Config); err != nil {
			return nil, err
		}
		out = append(out, cfg)
	}
	return out, rows.Err()
}
