package testutil

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/dalemusser/campusvoice/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/text"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// WithChiURLParam adds a chi URL parameter to the request context.
// Use this in handler tests that need to access chi.URLParam values.
func WithChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx, ok := r.Context().Value(chi.RouteCtxKey).(*chi.Context)
	if !ok || rctx == nil {
		rctx = chi.NewRouteContext()
	}
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// Fixtures inserts test documents directly, bypassing stores, so tests can
// set fields (timestamps, votes, status) that stores compute themselves.
type Fixtures struct {
	db *mongo.Database
	t  *testing.T
}

func NewFixtures(t *testing.T, db *mongo.Database) *Fixtures {
	t.Helper()
	return &Fixtures{db: db, t: t}
}

// DB returns the underlying database for direct access in tests.
func (f *Fixtures) DB() *mongo.Database {
	return f.db
}

// CreateUser inserts a user with the given role. The password hash is a
// placeholder; use the user store when a login is needed.
func (f *Fixtures) CreateUser(ctx context.Context, name, email, role string) models.User {
	f.t.Helper()

	now := time.Now().UTC()
	u := models.User{
		ID:           primitive.NewObjectID(),
		Name:         name,
		NameCI:       text.Fold(name),
		Email:        email,
		Role:         role,
		PasswordHash: "x",
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if _, err := f.db.Collection("users").InsertOne(ctx, u); err != nil {
		f.t.Fatalf("CreateUser: %v", err)
	}
	return u
}

// ComplaintOpts overrides fixture defaults for CreateComplaint.
type ComplaintOpts struct {
	Category    string
	Status      string
	Votes       int
	CreatedAt   time.Time
	IsAnonymous bool
}

// CreateComplaint inserts a complaint authored by author. Votes > 0 fills the
// voter set with fresh ids so votes == len(voters) holds.
func (f *Fixtures) CreateComplaint(ctx context.Context, author primitive.ObjectID, title string, opts ComplaintOpts) models.Complaint {
	f.t.Helper()

	if opts.Category == "" {
		opts.Category = models.CategoryOther
	}
	if opts.Status == "" {
		opts.Status = models.StatusPending
	}
	if opts.CreatedAt.IsZero() {
		opts.CreatedAt = time.Now().UTC()
	}
	voters := make([]primitive.ObjectID, 0, opts.Votes)
	for i := 0; i < opts.Votes; i++ {
		voters = append(voters, primitive.NewObjectID())
	}

	c := models.Complaint{
		ID:          primitive.NewObjectID(),
		Title:       title,
		TitleCI:     text.Fold(title),
		Description: "Description of " + title,
		Category:    opts.Category,
		Status:      opts.Status,
		AuthorID:    author,
		IsAnonymous: opts.IsAnonymous,
		Votes:       opts.Votes,
		Voters:      voters,
		CreatedAt:   opts.CreatedAt,
		UpdatedAt:   opts.CreatedAt,
	}
	if _, err := f.db.Collection("complaints").InsertOne(ctx, c); err != nil {
		f.t.Fatalf("CreateComplaint: %v", err)
	}
	return c
}

// CreateComment inserts a comment on complaintID.
func (f *Fixtures) CreateComment(ctx context.Context, complaintID, author primitive.ObjectID, text string, anonymous bool) models.Comment {
	f.t.Helper()

	c := models.Comment{
		ID:          primitive.NewObjectID(),
		ComplaintID: complaintID,
		AuthorID:    author,
		Text:        text,
		IsAnonymous: anonymous,
		CreatedAt:   time.Now().UTC(),
	}
	if _, err := f.db.Collection("comments").InsertOne(ctx, c); err != nil {
		f.t.Fatalf("CreateComment: %v", err)
	}
	return c
}
