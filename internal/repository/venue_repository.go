package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/beacon-marketplace/internal/domain"
)

// BoundsFilter selects venues whose coordinates fall inside the closed
// intervals [LatLow, LatHigh] and [LonLow, LonHigh].
type BoundsFilter struct {
	LatLow  float64
	LatHigh float64
	LonLow  float64
	LonHigh float64
	Limit   int
}

// VenueRepository encapsulates venue persistence.
type VenueRepository interface {
	Create(ctx context.Context, venue *domain.Venue) error
	GetByID(ctx context.Context, id string) (*domain.Venue, error)
	ListByOrganization(ctx context.Context, organizationID string) ([]domain.Venue, error)
	FindWithinBounds(ctx context.Context, filter BoundsFilter) ([]domain.Venue, error)
}

type venueRepository struct {
	pool *pgxpool.Pool
}

// NewVenueRepository instantiates repository.
func NewVenueRepository(pool *pgxpool.Pool) VenueRepository {
	return &venueRepository{pool: pool}
}

func (r *venueRepository) Create(ctx context.Context, venue *domain.Venue) error {
	const query = `
        INSERT INTO venues (organization_id, name, address, latitude, longitude)
        VALUES ($1,$2,$3,$4,$5)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		venue.OrganizationID,
		venue.Name,
		venue.Address,
		venue.Latitude,
		venue.Longitude,
	).Scan(&venue.ID, &venue.CreatedAt, &venue.UpdatedAt)
}

func (r *venueRepository) GetByID(ctx context.Context, id string) (*domain.Venue, error) {
	const query = `
        SELECT id, organization_id, name, address, latitude, longitude, created_at, updated_at
        FROM venues WHERE id=$1`
	var venue domain.Venue
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&venue.ID,
		&venue.OrganizationID,
		&venue.Name,
		&venue.Address,
		&venue.Latitude,
		&venue.Longitude,
		&venue.CreatedAt,
		&venue.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &venue, nil
}

func (r *venueRepository) ListByOrganization(ctx context.Context, organizationID string) ([]domain.Venue, error) {
	const query = `
        SELECT id, organization_id, name, address, latitude, longitude, created_at, updated_at
        FROM venues WHERE organization_id=$1 ORDER BY created_at`
	rows, err := r.pool.Query(ctx, query, organizationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanVenues(rows)
}

func (r *venueRepository) FindWithinBounds(ctx context.Context, filter BoundsFilter) ([]domain.Venue, error) {
	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}
	const query = `
        SELECT id, organization_id, name, address, latitude, longitude, created_at, updated_at
        FROM venues
        WHERE latitude BETWEEN $1 AND $2 AND longitude BETWEEN $3 AND $4
        ORDER BY name
        LIMIT $5`
	rows, err := r.pool.Query(ctx, query,
		filter.LatLow,
		filter.LatHigh,
		filter.LonLow,
		filter.LonHigh,
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanVenues(rows)
}

func scanVenues(rows pgx.Rows) ([]domain.Venue, error) {
	var result []domain.Venue
	for rows.Next() {
		var venue domain.Venue
		if err := rows.Scan(
			&venue.ID,
			&venue.OrganizationID,
			&venue.Name,
			&venue.Address,
			&venue.Latitude,
			&venue.Longitude,
			&venue.CreatedAt,
			&venue.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, venue)
	}
	return result, rows.Err()
}
