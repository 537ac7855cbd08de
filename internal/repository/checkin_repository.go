package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/beacon-marketplace/internal/domain"
)

// CheckInRepository encapsulates check-in persistence. Upsert is atomic: the
// composite primary key plus ON CONFLICT guarantees that two concurrent
// writes to the same key never both create a row, and that the last commit
// wins on content.
type CheckInRepository interface {
	Upsert(ctx context.Context, key domain.CheckInKey, proximity domain.Proximity, source domain.CheckInSource, now time.Time) (*domain.CheckIn, bool, error)
	GetByKey(ctx context.Context, key domain.CheckInKey) (*domain.CheckIn, error)
	ListByUser(ctx context.Context, userID string, limit int) ([]domain.CheckIn, error)
}

type checkInRepository struct {
	pool *pgxpool.Pool
}

// NewCheckInRepository instantiates repository.
func NewCheckInRepository(pool *pgxpool.Pool) CheckInRepository {
	return &checkInRepository{pool: pool}
}

func (r *checkInRepository) Upsert(ctx context.Context, key domain.CheckInKey, proximity domain.Proximity, source domain.CheckInSource, now time.Time) (*domain.CheckIn, bool, error) {
	// xmax = 0 distinguishes a fresh insert from a conflict-update.
	const query = `
        INSERT INTO checkins (field_id, major_zone, minor_zone, user_id, proximity, source, created_at, updated_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$7)
        ON CONFLICT (field_id, major_zone, minor_zone, user_id)
        DO UPDATE SET proximity=EXCLUDED.proximity, source=EXCLUDED.source, updated_at=EXCLUDED.updated_at
        RETURNING field_id, major_zone, minor_zone, user_id, proximity, source, created_at, updated_at, (xmax = 0)`
	var (
		record  domain.CheckIn
		created bool
	)
	if err := r.pool.QueryRow(ctx, query,
		key.Zone.Field,
		key.Zone.Major,
		key.Zone.Minor,
		key.UserID,
		proximity,
		source,
		now,
	).Scan(
		&record.Key.Zone.Field,
		&record.Key.Zone.Major,
		&record.Key.Zone.Minor,
		&record.Key.UserID,
		&record.Proximity,
		&record.Source,
		&record.CreatedAt,
		&record.UpdatedAt,
		&created,
	); err != nil {
		return nil, false, err
	}
	return &record, created, nil
}

func (r *checkInRepository) GetByKey(ctx context.Context, key domain.CheckInKey) (*domain.CheckIn, error) {
	const query = `
        SELECT field_id, major_zone, minor_zone, user_id, proximity, source, created_at, updated_at
        FROM checkins
        WHERE field_id=$1 AND major_zone=$2 AND minor_zone=$3 AND user_id=$4`
	var record domain.CheckIn
	if err := r.pool.QueryRow(ctx, query,
		key.Zone.Field,
		key.Zone.Major,
		key.Zone.Minor,
		key.UserID,
	).Scan(
		&record.Key.Zone.Field,
		&record.Key.Zone.Major,
		&record.Key.Zone.Minor,
		&record.Key.UserID,
		&record.Proximity,
		&record.Source,
		&record.CreatedAt,
		&record.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &record, nil
}

func (r *checkInRepository) ListByUser(ctx context.Context, userID string, limit int) ([]domain.CheckIn, error) {
	if limit <= 0 {
		limit = 50
	}
	const query = `
        SELECT field_id, major_zone, minor_zone, user_id, proximity, source, created_at, updated_at
        FROM checkins
        WHERE user_id=$1
        ORDER BY updated_at DESC
        LIMIT $2`
	rows, err := r.pool.Query(ctx, query, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.CheckIn
	for rows.Next() {
		var record domain.CheckIn
		if err := rows.Scan(
			&record.Key.Zone.Field,
			&record.Key.Zone.Major,
			&record.Key.Zone.Minor,
			&record.Key.UserID,
			&record.Proximity,
			&record.Source,
			&record.CreatedAt,
			&record.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, record)
	}
	return result, rows.Err()
}
