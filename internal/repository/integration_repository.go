package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/beacon-marketplace/internal/domain"
)

// IntegrationRepository encapsulates integration persistence.
type IntegrationRepository interface {
	Create(ctx context.Context, integration *domain.Integration) error
	GetByID(ctx context.Context, id string) (*domain.Integration, error)
}

type integrationRepository struct {
	pool *pgxpool.Pool
}

// NewIntegrationRepository instantiates repository.
func NewIntegrationRepository(pool *pgxpool.Pool) IntegrationRepository {
	return &integrationRepository{pool: pool}
}

func (r *integrationRepository) Create(ctx context.Context, integration *domain.Integration) error {
	const query = `
        INSERT INTO integrations (name, provider, callback_url)
        VALUES ($1,$2,$3)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		integration.Name,
		integration.Provider,
		integration.CallbackURL,
	).Scan(&integration.ID, &integration.CreatedAt, &integration.UpdatedAt)
}

func (r *integrationRepository) GetByID(ctx context.Context, id string) (*domain.Integration, error) {
	const query = `
        SELECT id, name, provider, callback_url, created_at, updated_at
        FROM integrations WHERE id=$1`
	var integration domain.Integration
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&integration.ID,
		&integration.Name,
		&integration.Provider,
		&integration.CallbackURL,
		&integration.CreatedAt,
		&integration.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &integration, nil
}
