package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/beacon-marketplace/internal/domain"
)

// SessionRepository encapsulates session persistence. Mutate is the only way
// to change a session's role binding: it locks the row for the duration of
// the transaction so two concurrent binding changes are evaluated one after
// the other against committed state, never against the same snapshot.
type SessionRepository interface {
	Create(ctx context.Context, session *domain.Session) error
	GetByID(ctx context.Context, id string) (*domain.Session, error)
	Delete(ctx context.Context, id string) error
	Mutate(ctx context.Context, id string, fn func(*domain.Session) error) (*domain.Session, error)
}

type sessionRepository struct {
	pool *pgxpool.Pool
}

// NewSessionRepository instantiates repository.
func NewSessionRepository(pool *pgxpool.Pool) SessionRepository {
	return &sessionRepository{pool: pool}
}

const sessionColumns = `id, user_id, org_membership_id, org_id, org_venue_id,
       integration_membership_id, integration_id, issued_at, expires_at`

func (r *sessionRepository) Create(ctx context.Context, session *domain.Session) error {
	const query = `
        INSERT INTO sessions (id, user_id, issued_at, expires_at)
        VALUES ($1,$2,$3,$4)`
	_, err := r.pool.Exec(ctx, query,
		session.ID,
		session.UserID,
		session.IssuedAt,
		session.ExpiresAt,
	)
	return err
}

func (r *sessionRepository) GetByID(ctx context.Context, id string) (*domain.Session, error) {
	query := `SELECT ` + sessionColumns + ` FROM sessions WHERE id=$1`
	return scanSession(r.pool.QueryRow(ctx, query, id))
}

func (r *sessionRepository) Delete(ctx context.Context, id string) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM sessions WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *sessionRepository) Mutate(ctx context.Context, id string, fn func(*domain.Session) error) (*domain.Session, error) {
	var session *domain.Session
	err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		query := `SELECT ` + sessionColumns + ` FROM sessions WHERE id=$1 FOR UPDATE`
		loaded, err := scanSession(tx.QueryRow(ctx, query, id))
		if err != nil {
			return err
		}
		if err := fn(loaded); err != nil {
			return err
		}

		const update = `
            UPDATE sessions SET org_membership_id=$1, org_id=$2, org_venue_id=$3,
                integration_membership_id=$4, integration_id=$5
            WHERE id=$6`
		var (
			orgMembershipID, orgID, orgVenueID        *string
			integrationMembershipID, integrationID    *string
		)
		if loaded.OrgRole != nil {
			orgMembershipID = &loaded.OrgRole.MembershipID
			orgID = &loaded.OrgRole.OrganizationID
			orgVenueID = loaded.OrgRole.VenueID
		}
		if loaded.IntegrationRole != nil {
			integrationMembershipID = &loaded.IntegrationRole.MembershipID
			integrationID = &loaded.IntegrationRole.IntegrationID
		}
		if _, err := tx.Exec(ctx, update,
			orgMembershipID,
			orgID,
			orgVenueID,
			integrationMembershipID,
			integrationID,
			loaded.ID,
		); err != nil {
			return err
		}
		session = loaded
		return nil
	})
	if err != nil {
		return nil, err
	}
	return session, nil
}

func scanSession(row pgx.Row) (*domain.Session, error) {
	var (
		session                                domain.Session
		orgMembershipID, orgID, orgVenueID     *string
		integrationMembershipID, integrationID *string
	)
	if err := row.Scan(
		&session.ID,
		&session.UserID,
		&orgMembershipID,
		&orgID,
		&orgVenueID,
		&integrationMembershipID,
		&integrationID,
		&session.IssuedAt,
		&session.ExpiresAt,
	); err != nil {
		return nil, err
	}
	if orgMembershipID != nil && orgID != nil {
		session.OrgRole = &domain.OrganizationRole{
			MembershipID:   *orgMembershipID,
			OrganizationID: *orgID,
			VenueID:        orgVenueID,
		}
	}
	if integrationMembershipID != nil && integrationID != nil {
		session.IntegrationRole = &domain.IntegrationRole{
			MembershipID:  *integrationMembershipID,
			IntegrationID: *integrationID,
		}
	}
	return &session, nil
}
