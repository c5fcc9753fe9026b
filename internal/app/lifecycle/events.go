package lifecycle

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// StatusChanged is emitted after a status write commits and only when the
// status actually changed.
type StatusChanged struct {
	ComplaintID    primitive.ObjectID
	AuthorID       primitive.ObjectID
	ChangedBy      primitive.ObjectID
	StudentName    string
	ComplaintTitle string
	PreviousStatus string
	NewStatus      string
	At             time.Time
}

// Listener consumes lifecycle events. Errors are logged by the engine and
// never reach the caller of the triggering operation.
type Listener interface {
	OnStatusChanged(ctx context.Context, ev StatusChanged) error
}

// ListenerFunc adapts a function to Listener.
type ListenerFunc func(ctx context.Context, ev StatusChanged) error

func (f ListenerFunc) OnStatusChanged(ctx context.Context, ev StatusChanged) error {
	return f(ctx, ev)
}
