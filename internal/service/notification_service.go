package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/beacon-marketplace/internal/config"
	"github.com/spec-kit/beacon-marketplace/internal/events"
)

// NotificationService handles emitting notifications for domain events.
type NotificationService struct {
	dispatcher events.Dispatcher
	logger     *zap.Logger
	cfg        config.NotificationConfig
}

// NewNotificationService creates the service.
func NewNotificationService(dispatcher events.Dispatcher, logger *zap.Logger, cfg config.NotificationConfig) *NotificationService {
	return &NotificationService{
		dispatcher: dispatcher,
		logger:     logger,
		cfg:        cfg,
	}
}

// RegisterHandlers subscribes to events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventCheckInRecorded, n.handleCheckInRecorded)
	n.dispatcher.Subscribe(events.EventRoleBound, n.handleRoleChanged)
	n.dispatcher.Subscribe(events.EventRoleReleased, n.handleRoleChanged)
	n.dispatcher.Subscribe(events.EventDeviceRegistered, n.handleDeviceRegistered)
}

func (n *NotificationService) handleCheckInRecorded(ctx context.Context, event events.Event) error {
	n.logger.Info("CheckInRecorded", zap.String("user_id", event.SubjectID), zap.Any("payload", event.Payload))
	n.sendWebhookNotificationStub(ctx, event)
	return nil
}

func (n *NotificationService) handleRoleChanged(ctx context.Context, event events.Event) error {
	n.logger.Info("SessionRoleChanged",
		zap.String("session_id", event.SubjectID),
		zap.String("event_type", string(event.Type)),
		zap.Any("payload", event.Payload))
	n.sendWebhookNotificationStub(ctx, event)
	return nil
}

func (n *NotificationService) handleDeviceRegistered(ctx context.Context, event events.Event) error {
	n.logger.Info("DeviceRegistered", zap.String("device_id", event.SubjectID), zap.Any("payload", event.Payload))
	return nil
}

func (n *NotificationService) sendWebhookNotificationStub(ctx context.Context, event events.Event) {
	if strings.TrimSpace(n.cfg.WebhookURL) == "" {
		return
	}
	n.logger.Debug("sendWebhookNotificationStub",
		zap.String("url", n.cfg.WebhookURL),
		zap.String("subject_id", event.SubjectID),
		zap.String("event_type", string(event.Type)))
}
