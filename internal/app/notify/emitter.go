// Package notify records status-change notifications for complaint authors
// and fans them out to live subscribers.
package notify

import (
	"context"

	"github.com/dalemusser/campusvoice/internal/app/lifecycle"
	"github.com/dalemusser/campusvoice/internal/app/system/apperr"
	"github.com/dalemusser/campusvoice/internal/domain/models"
	"go.uber.org/zap"
)

// Store is the notification persistence. *notificationstore.Store satisfies it.
type Store interface {
	Create(ctx context.Context, n models.Notification) (models.Notification, error)
	ListByUser(ctx context.Context, userID string) ([]models.Notification, error)
	MarkAllRead(ctx context.Context, userID string) (int64, error)
	CountUnread(ctx context.Context, userID string) (int64, error)
}

// Publisher pushes a stored notification to live listeners of userID.
type Publisher interface {
	Publish(ctx context.Context, userID string, n models.Notification) error
}

// Emitter is the only writer of notifications.
type Emitter struct {
	store Store
	pub   Publisher
	log   *zap.Logger
}

// NewEmitter builds an emitter. pub may be nil when live push is disabled.
func NewEmitter(store Store, pub Publisher, logger *zap.Logger) *Emitter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Emitter{store: store, pub: pub, log: logger}
}

// OnStatusChanged stores one unread notification for the complaint author and
// then publishes it. Events that do not change the status are ignored.
func (e *Emitter) OnStatusChanged(ctx context.Context, ev lifecycle.StatusChanged) error {
	if ev.PreviousStatus == ev.NewStatus {
		return nil
	}
	n, err := e.store.Create(ctx, models.Notification{
		UserID:         ev.AuthorID.Hex(),
		ComplaintID:    ev.ComplaintID,
		StudentName:    ev.StudentName,
		ComplaintTitle: ev.ComplaintTitle,
		NewStatus:      ev.NewStatus,
		Timestamp:      ev.At,
	})
	if err != nil {
		return err
	}

	if e.pub != nil {
		if err := e.pub.Publish(ctx, n.UserID, n); err != nil {
			e.log.Warn("notification publish failed",
				zap.Error(err),
				zap.String("user_id", n.UserID),
				zap.String("notification_id", n.ID.Hex()))
		}
	}
	return nil
}

// ListForUser returns userID's notifications, newest first.
func (e *Emitter) ListForUser(ctx context.Context, userID string) ([]models.Notification, error) {
	out, err := e.store.ListByUser(ctx, userID)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return out, nil
}

// UnreadCount returns how many of userID's notifications are still unread.
func (e *Emitter) UnreadCount(ctx context.Context, userID string) (int64, error) {
	n, err := e.store.CountUnread(ctx, userID)
	if err != nil {
		return 0, apperr.Internal(err)
	}
	return n, nil
}

// MarkAllRead marks every unread notification of userID as read. Calling it
// with nothing unread succeeds.
func (e *Emitter) MarkAllRead(ctx context.Context, userID string) (int64, error) {
	n, err := e.store.MarkAllRead(ctx, userID)
	if err != nil {
		return 0, apperr.Internal(err)
	}
	return n, nil
}
