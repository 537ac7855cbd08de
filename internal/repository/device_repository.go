package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/beacon-marketplace/internal/domain"
)

// DeviceRepository encapsulates registered-device persistence. Serial numbers
// are unique: a serial resolves to at most one owner.
type DeviceRepository interface {
	Create(ctx context.Context, device *domain.Device) error
	Delete(ctx context.Context, ownerUserID, serial string) error
	GetBySerialNumber(ctx context.Context, serial string) (*domain.Device, error)
	ListByOwner(ctx context.Context, ownerUserID string) ([]domain.Device, error)
}

type deviceRepository struct {
	pool *pgxpool.Pool
}

// NewDeviceRepository instantiates repository.
func NewDeviceRepository(pool *pgxpool.Pool) DeviceRepository {
	return &deviceRepository{pool: pool}
}

func (r *deviceRepository) Create(ctx context.Context, device *domain.Device) error {
	const query = `
        INSERT INTO devices (serial_number, owner_user_id, label)
        VALUES ($1,$2,$3)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		device.SerialNumber,
		device.OwnerUserID,
		device.Label,
	).Scan(&device.ID, &device.CreatedAt, &device.UpdatedAt)
}

func (r *deviceRepository) Delete(ctx context.Context, ownerUserID, serial string) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM devices WHERE owner_user_id=$1 AND serial_number=$2`, ownerUserID, serial)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *deviceRepository) GetBySerialNumber(ctx context.Context, serial string) (*domain.Device, error) {
	const query = `
        SELECT id, serial_number, owner_user_id, label, created_at, updated_at
        FROM devices WHERE serial_number=$1`
	var device domain.Device
	if err := r.pool.QueryRow(ctx, query, serial).Scan(
		&device.ID,
		&device.SerialNumber,
		&device.OwnerUserID,
		&device.Label,
		&device.CreatedAt,
		&device.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &device, nil
}

func (r *deviceRepository) ListByOwner(ctx context.Context, ownerUserID string) ([]domain.Device, error) {
	const query = `
        SELECT id, serial_number, owner_user_id, label, created_at, updated_at
        FROM devices WHERE owner_user_id=$1 ORDER BY created_at`
	rows, err := r.pool.Query(ctx, query, ownerUserID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Device
	for rows.Next() {
		var device domain.Device
		if err := rows.Scan(
			&device.ID,
			&device.SerialNumber,
			&device.OwnerUserID,
			&device.Label,
			&device.CreatedAt,
			&device.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, device)
	}
	return result, rows.Err()
}
