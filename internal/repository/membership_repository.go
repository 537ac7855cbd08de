package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/beacon-marketplace/internal/domain"
)

// MembershipRepository encapsulates membership persistence. Uniqueness per
// (user, subject, venue-or-null) is backed by partial unique indexes.
type MembershipRepository interface {
	Create(ctx context.Context, membership *domain.Membership) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*domain.Membership, error)
	GetOrganizationMembership(ctx context.Context, userID, organizationID string, venueID *string) (*domain.Membership, error)
	GetIntegrationMembership(ctx context.Context, userID, integrationID string) (*domain.Membership, error)
	ListByUserAndKind(ctx context.Context, userID string, kind domain.MembershipKind) ([]domain.Membership, error)
}

type membershipRepository struct {
	pool *pgxpool.Pool
}

// NewMembershipRepository instantiates repository.
func NewMembershipRepository(pool *pgxpool.Pool) MembershipRepository {
	return &membershipRepository{pool: pool}
}

func (r *membershipRepository) Create(ctx context.Context, membership *domain.Membership) error {
	const query = `
        INSERT INTO memberships (user_id, kind, subject_id, venue_id, level)
        VALUES ($1,$2,$3,$4,$5)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		membership.UserID,
		membership.Kind,
		membership.SubjectID,
		membership.VenueID,
		membership.Level,
	).Scan(&membership.ID, &membership.CreatedAt, &membership.UpdatedAt)
}

func (r *membershipRepository) Delete(ctx context.Context, id string) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM memberships WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *membershipRepository) GetByID(ctx context.Context, id string) (*domain.Membership, error) {
	const query = `
        SELECT id, user_id, kind, subject_id, venue_id, level, created_at, updated_at
        FROM memberships WHERE id=$1`
	return r.fetchSingle(ctx, query, id)
}

func (r *membershipRepository) GetOrganizationMembership(ctx context.Context, userID, organizationID string, venueID *string) (*domain.Membership, error) {
	if venueID == nil {
		const query = `
            SELECT id, user_id, kind, subject_id, venue_id, level, created_at, updated_at
            FROM memberships
            WHERE user_id=$1 AND kind=$2 AND subject_id=$3 AND venue_id IS NULL`
		return r.fetchSingle(ctx, query, userID, domain.MembershipKindOrganization, organizationID)
	}
	const query = `
        SELECT id, user_id, kind, subject_id, venue_id, level, created_at, updated_at
        FROM memberships
        WHERE user_id=$1 AND kind=$2 AND subject_id=$3 AND venue_id=$4`
	return r.fetchSingle(ctx, query, userID, domain.MembershipKindOrganization, organizationID, *venueID)
}

func (r *membershipRepository) GetIntegrationMembership(ctx context.Context, userID, integrationID string) (*domain.Membership, error) {
	const query = `
        SELECT id, user_id, kind, subject_id, venue_id, level, created_at, updated_at
        FROM memberships
        WHERE user_id=$1 AND kind=$2 AND subject_id=$3`
	return r.fetchSingle(ctx, query, userID, domain.MembershipKindIntegration, integrationID)
}

func (r *membershipRepository) ListByUserAndKind(ctx context.Context, userID string, kind domain.MembershipKind) ([]domain.Membership, error) {
	const query = `
        SELECT id, user_id, kind, subject_id, venue_id, level, created_at, updated_at
        FROM memberships
        WHERE user_id=$1 AND kind=$2
        ORDER BY created_at`
	rows, err := r.pool.Query(ctx, query, userID, kind)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Membership
	for rows.Next() {
		var membership domain.Membership
		if err := scanMembership(rows.Scan, &membership); err != nil {
			return nil, err
		}
		result = append(result, membership)
	}
	return result, rows.Err()
}

func (r *membershipRepository) fetchSingle(ctx context.Context, query string, args ...any) (*domain.Membership, error) {
	var membership domain.Membership
	if err := scanMembership(r.pool.QueryRow(ctx, query, args...).Scan, &membership); err != nil {
		return nil, err
	}
	return &membership, nil
}

func scanMembership(scan func(...any) error, membership *domain.Membership) error {
	return scan(
		&membership.ID,
		&membership.UserID,
		&membership.Kind,
		&membership.SubjectID,
		&membership.VenueID,
		&membership.Level,
		&membership.CreatedAt,
		&membership.UpdatedAt,
	)
}
