package lifecycle_test

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/dalemusser/campusvoice/internal/app/lifecycle"
	complaintstore "github.com/dalemusser/campusvoice/internal/app/store/complaints"
	userstore "github.com/dalemusser/campusvoice/internal/app/store/users"
	"github.com/dalemusser/campusvoice/internal/domain/models"
	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// memComplaints is an in-memory ComplaintStore with the same conditioned
// write semantics as the Mongo store.
type memComplaints struct {
	mu      sync.Mutex
	byID    map[primitive.ObjectID]*models.Complaint
	creates int
	failSet error
}

func newMemComplaints() *memComplaints {
	return &memComplaints{byID: map[primitive.ObjectID]*models.Complaint{}}
}

func (m *memComplaints) Create(_ context.Context, c models.Complaint) (models.Complaint, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.creates++
	now := time.Now().UTC()
	c.ID = primitive.NewObjectID()
	c.Status = models.StatusPending
	c.Votes = 0
	c.Voters = []primitive.ObjectID{}
	c.CreatedAt, c.UpdatedAt = now, now
	cp := c
	m.byID[c.ID] = &cp
	return c, nil
}

func (m *memComplaints) GetByID(_ context.Context, id primitive.ObjectID) (models.Complaint, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.byID[id]
	if !ok {
		return models.Complaint{}, complaintstore.ErrNotFound
	}
	out := *c
	out.Voters = nil
	return out, nil
}

func (m *memComplaints) AddVote(_ context.Context, id, voter primitive.ObjectID) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.byID[id]
	if !ok {
		return 0, complaintstore.ErrNotFound
	}
	for _, v := range c.Voters {
		if v == voter {
			return 0, complaintstore.ErrAlreadyVoted
		}
	}
	c.Votes++
	c.Voters = append(c.Voters, voter)
	c.UpdatedAt = time.Now().UTC()
	return c.Votes, nil
}

func (m *memComplaints) SetStatus(_ context.Context, id primitive.ObjectID, status string, allowedFrom []string) (models.Complaint, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failSet != nil {
		return models.Complaint{}, m.failSet
	}
	c, ok := m.byID[id]
	if !ok {
		return models.Complaint{}, complaintstore.ErrNotFound
	}
	if len(allowedFrom) > 0 {
		allowed := false
		for _, s := range allowedFrom {
			if s == c.Status {
				allowed = true
			}
		}
		if !allowed {
			return models.Complaint{}, complaintstore.ErrTransitionNotAllowed
		}
	}
	before := *c
	c.Status = status
	c.UpdatedAt = time.Now().UTC()
	return before, nil
}

func (m *memComplaints) raw(id primitive.ObjectID) models.Complaint {
	m.mu.Lock()
	defer m.mu.Unlock()
	return *m.byID[id]
}

type memComments map[primitive.ObjectID]int64

func (m memComments) Count(_ context.Context, id primitive.ObjectID) (int64, error) {
	return m[id], nil
}

type memUsers map[primitive.ObjectID]models.User

func (m memUsers) GetByID(_ context.Context, id primitive.ObjectID) (*models.User, error) {
	u, ok := m[id]
	if !ok {
		return nil, userstore.ErrNotFound
	}
	return &u, nil
}

type mockListener struct {
	mock.Mock
}

func (m *mockListener) OnStatusChanged(ctx context.Context, ev lifecycle.StatusChanged) error {
	args := m.Called(ctx, ev)
	return args.Error(0)
}

var errBoom = errors.New("boom")
