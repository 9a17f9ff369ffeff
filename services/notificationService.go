package services

import (
	"context"
	"time"

	"MediLedger/models"

	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// Notifier delivers a notification to its recipient. Callers treat failures
// as non-fatal.
type Notifier interface {
	Notify(ctx context.Context, n models.Notification) error
}

// Channel is one delivery route for notifications, such as email or a
// Postgres NOTIFY channel.
type Channel interface {
	Send(ctx context.Context, n models.Notification) error
}

// NotificationService logs every notification and fans it out to the
// configured channels.
type NotificationService struct {
	channels []Channel
	timeout  time.Duration
	logger   *zap.Logger
}

func NewNotificationService(logger *zap.Logger, channels ...Channel) *NotificationService {
	return &NotificationService{channels: channels, timeout: 10 * time.Second, logger: logger}
}

// Notify delivers n on every channel. A failing channel does not stop the
// others; all failures are returned together.
func (s *NotificationService) Notify(ctx context.Context, n models.Notification) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	s.logger.Info("notification",
		zap.String("kind", n.Kind),
		zap.String("recipient_id", n.RecipientID),
		zap.String("recipient_role", string(n.RecipientRole)),
		zap.String("subject", n.Subject))

	var err error
	for _, ch := range s.channels {
		err = multierr.Append(err, ch.Send(ctx, n))
	}
	if err != nil {
		s.logger.Warn("notification delivery failed", zap.String("recipient_id", n.RecipientID), zap.Error(err))
	}
	return err
}
