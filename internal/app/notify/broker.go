package notify

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/dalemusser/campusvoice/internal/domain/models"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// ErrBrokerDisabled is returned by Subscribe when no Redis client is configured.
var ErrBrokerDisabled = errors.New("notification broker disabled")

// Channel is the Redis pub/sub channel for userID's notifications.
func Channel(userID string) string {
	return "notifications:" + userID
}

// Broker fans notifications out over Redis pub/sub so every app instance
// can push to the sockets it holds.
type Broker struct {
	rdb *redis.Client
	log *zap.Logger
}

// NewBroker wraps rdb. A nil rdb yields a broker whose Publish is a no-op
// and whose Subscribe returns ErrBrokerDisabled.
func NewBroker(rdb *redis.Client, logger *zap.Logger) *Broker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Broker{rdb: rdb, log: logger}
}

// Enabled reports whether a Redis client is attached.
func (b *Broker) Enabled() bool { return b != nil && b.rdb != nil }

// Publish sends n on userID's channel.
func (b *Broker) Publish(ctx context.Context, userID string, n models.Notification) error {
	if !b.Enabled() {
		return nil
	}
	payload, err := json.Marshal(n)
	if err != nil {
		return err
	}
	return b.rdb.Publish(ctx, Channel(userID), payload).Err()
}

// Subscription delivers raw JSON notifications for one user.
type Subscription struct {
	ps *redis.PubSub
	ch <-chan *redis.Message
}

// Messages yields payloads until the subscription is closed.
func (s *Subscription) Messages() <-chan *redis.Message { return s.ch }

// Close ends the subscription.
func (s *Subscription) Close() error { return s.ps.Close() }

// Subscribe listens on userID's channel. The subscription is confirmed with
// Redis before it is returned, so a publish after Subscribe returns is seen.
func (b *Broker) Subscribe(ctx context.Context, userID string) (*Subscription, error) {
	if !b.Enabled() {
		return nil, ErrBrokerDisabled
	}
	ps := b.rdb.Subscribe(ctx, Channel(userID))
	if _, err := ps.Receive(ctx); err != nil {
		_ = ps.Close()
		return nil, err
	}
	b.log.Debug("notification subscription opened", zap.String("user_id", userID))
	return &Subscription{ps: ps, ch: ps.Channel()}, nil
}

// Ping checks Redis connectivity; health uses it.
func (b *Broker) Ping(ctx context.Context) error {
	if !b.Enabled() {
		return ErrBrokerDisabled
	}
	return b.rdb.Ping(ctx).Err()
}

// Close releases the Redis client.
func (b *Broker) Close() error {
	if !b.Enabled() {
		return nil
	}
	return b.rdb.Close()
}
