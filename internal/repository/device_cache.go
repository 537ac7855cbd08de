package repository

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/spec-kit/beacon-marketplace/internal/domain"
)

const deviceCacheKeyPrefix = "device:serial:"

// cachedDeviceRepository is a cache-aside layer over DeviceRepository. Only
// the serial lookup is cached; it sits on the hot contact-reader submission
// path. Cache failures degrade to the underlying store, never to an error.
type cachedDeviceRepository struct {
	inner  DeviceRepository
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewCachedDeviceRepository wraps repo with a Redis serial-lookup cache.
// A nil client returns repo unchanged.
func NewCachedDeviceRepository(repo DeviceRepository, client *redis.Client, ttl time.Duration, logger *zap.Logger) DeviceRepository {
	if client == nil {
		return repo
	}
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &cachedDeviceRepository{inner: repo, client: client, ttl: ttl, logger: logger}
}

func (r *cachedDeviceRepository) Create(ctx context.Context, device *domain.Device) error {
	if err := r.inner.Create(ctx, device); err != nil {
		return err
	}
	r.invalidate(ctx, device.SerialNumber)
	return nil
}

func (r *cachedDeviceRepository) Delete(ctx context.Context, ownerUserID, serial string) error {
	if err := r.inner.Delete(ctx, ownerUserID, serial); err != nil {
		return err
	}
	r.invalidate(ctx, serial)
	return nil
}

func (r *cachedDeviceRepository) GetBySerialNumber(ctx context.Context, serial string) (*domain.Device, error) {
	key := deviceCacheKeyPrefix + serial
	if payload, err := r.client.Get(ctx, key).Bytes(); err == nil {
		var device domain.Device
		if unmarshalErr := json.Unmarshal(payload, &device); unmarshalErr == nil {
			return &device, nil
		}
		r.invalidate(ctx, serial)
	} else if !errors.Is(err, redis.Nil) {
		r.logger.Warn("device cache read failed", zap.Error(err))
	}

	device, err := r.inner.GetBySerialNumber(ctx, serial)
	if err != nil {
		return nil, err
	}
	if payload, marshalErr := json.Marshal(device); marshalErr == nil {
		if setErr := r.client.Set(ctx, key, payload, r.ttl).Err(); setErr != nil {
			r.logger.Warn("device cache write failed", zap.Error(setErr))
		}
	}
	return device, nil
}

func (r *cachedDeviceRepository) ListByOwner(ctx context.Context, ownerUserID string) ([]domain.Device, error) {
	return r.inner.ListByOwner(ctx, ownerUserID)
}

func (r *cachedDeviceRepository) invalidate(ctx context.Context, serial string) {
	if err := r.client.Del(ctx, deviceCacheKeyPrefix+serial).Err(); err != nil {
		r.logger.Warn("device cache invalidation failed", zap.Error(err))
	}
}
