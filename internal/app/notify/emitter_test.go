package notify_test

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/dalemusser/campusvoice/internal/app/lifecycle"
	"github.com/dalemusser/campusvoice/internal/app/notify"
	"github.com/dalemusser/campusvoice/internal/app/system/apperr"
	"github.com/dalemusser/campusvoice/internal/domain/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type memStore struct {
	mu      sync.Mutex
	items   []models.Notification
	failAll error
}

func (m *memStore) Create(_ context.Context, n models.Notification) (models.Notification, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failAll != nil {
		return models.Notification{}, m.failAll
	}
	n.ID = primitive.NewObjectID()
	n.Read = false
	m.items = append(m.items, n)
	return n, nil
}

func (m *memStore) ListByUser(_ context.Context, userID string) ([]models.Notification, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failAll != nil {
		return nil, m.failAll
	}
	out := []models.Notification{}
	for _, n := range m.items {
		if n.UserID == userID {
			out = append(out, n)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Timestamp.After(out[j].Timestamp) })
	return out, nil
}

func (m *memStore) MarkAllRead(_ context.Context, userID string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for i := range m.items {
		if m.items[i].UserID == userID && !m.items[i].Read {
			m.items[i].Read = true
			n++
		}
	}
	return n, nil
}

func (m *memStore) CountUnread(_ context.Context, userID string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failAll != nil {
		return 0, m.failAll
	}
	var n int64
	for _, it := range m.items {
		if it.UserID == userID && !it.Read {
			n++
		}
	}
	return n, nil
}

type mockPublisher struct {
	mock.Mock
}

func (m *mockPublisher) Publish(ctx context.Context, userID string, n models.Notification) error {
	return m.Called(ctx, userID, n).Error(0)
}

func event(author primitive.ObjectID, prev, next string) lifecycle.StatusChanged {
	return lifecycle.StatusChanged{
		ComplaintID:    primitive.NewObjectID(),
		AuthorID:       author,
		StudentName:    "Asha",
		ComplaintTitle: "Broken AC",
		PreviousStatus: prev,
		NewStatus:      next,
		At:             time.Now().UTC(),
	}
}

func TestOnStatusChanged_CreatesOneUnread(t *testing.T) {
	store := &memStore{}
	pub := &mockPublisher{}
	author := primitive.NewObjectID()
	pub.On("Publish", mock.Anything, author.Hex(), mock.MatchedBy(func(n models.Notification) bool {
		return n.NewStatus == models.StatusInProgress && !n.Read
	})).Return(nil).Once()

	e := notify.NewEmitter(store, pub, zap.NewNop())
	require.NoError(t, e.OnStatusChanged(context.Background(), event(author, models.StatusPending, models.StatusInProgress)))

	got, err := e.ListForUser(context.Background(), author.Hex())
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, models.StatusInProgress, got[0].NewStatus)
	assert.Equal(t, "Asha", got[0].StudentName)
	assert.Equal(t, "Broken AC", got[0].ComplaintTitle)
	assert.False(t, got[0].Read)
	assert.False(t, got[0].ComplaintID.IsZero())
	pub.AssertExpectations(t)
}

func TestOnStatusChanged_NoChangeNoRecord(t *testing.T) {
	store := &memStore{}
	e := notify.NewEmitter(store, nil, nil)
	author := primitive.NewObjectID()

	require.NoError(t, e.OnStatusChanged(context.Background(), event(author, models.StatusPending, models.StatusPending)))
	assert.Empty(t, store.items)
}

func TestOnStatusChanged_PublishFailureLogged(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	store := &memStore{}
	pub := &mockPublisher{}
	pub.On("Publish", mock.Anything, mock.Anything, mock.Anything).Return(errors.New("redis down"))

	e := notify.NewEmitter(store, pub, zap.New(core))
	author := primitive.NewObjectID()
	require.NoError(t, e.OnStatusChanged(context.Background(), event(author, models.StatusPending, models.StatusResolved)))

	assert.Len(t, store.items, 1, "notification is stored even when publish fails")
	assert.Equal(t, 1, logs.FilterMessage("notification publish failed").Len())
}

func TestOnStatusChanged_StoreFailureReturned(t *testing.T) {
	store := &memStore{failAll: errors.New("mongo down")}
	pub := &mockPublisher{}
	e := notify.NewEmitter(store, pub, nil)

	err := e.OnStatusChanged(context.Background(), event(primitive.NewObjectID(), models.StatusPending, models.StatusResolved))
	assert.Error(t, err)
	pub.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything, mock.Anything)
}

func TestMarkAllRead_Idempotent(t *testing.T) {
	store := &memStore{}
	e := notify.NewEmitter(store, nil, nil)
	author := primitive.NewObjectID()
	other := primitive.NewObjectID()
	ctx := context.Background()

	require.NoError(t, e.OnStatusChanged(ctx, event(author, models.StatusPending, models.StatusInProgress)))
	require.NoError(t, e.OnStatusChanged(ctx, event(author, models.StatusInProgress, models.StatusResolved)))
	require.NoError(t, e.OnStatusChanged(ctx, event(other, models.StatusPending, models.StatusRejected)))

	unread, err := e.UnreadCount(ctx, author.Hex())
	require.NoError(t, err)
	assert.Equal(t, int64(2), unread)

	n, err := e.MarkAllRead(ctx, author.Hex())
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	unread, err = e.UnreadCount(ctx, author.Hex())
	require.NoError(t, err)
	assert.Zero(t, unread)

	got, _ := e.ListForUser(ctx, author.Hex())
	for _, item := range got {
		assert.True(t, item.Read)
	}

	n, err = e.MarkAllRead(ctx, author.Hex())
	require.NoError(t, err)
	assert.Zero(t, n)

	theirs, _ := e.ListForUser(ctx, other.Hex())
	require.Len(t, theirs, 1)
	assert.False(t, theirs[0].Read)
}

func TestListForUser_StoreErrorIsInternal(t *testing.T) {
	e := notify.NewEmitter(&memStore{failAll: errors.New("down")}, nil, nil)
	_, err := e.ListForUser(context.Background(), "x")
	assert.True(t, apperr.Is(err, apperr.KindInternal))
}

func TestUnreadCount_StoreErrorIsInternal(t *testing.T) {
	e := notify.NewEmitter(&memStore{failAll: errors.New("down")}, nil, nil)
	_, err := e.UnreadCount(context.Background(), "x")
	assert.True(t, apperr.Is(err, apperr.KindInternal))
}
