// internal/app/store/complaints/complaintstore.go
package complaintstore

import (
	"context"
	"errors"
	"time"

	"github.com/dalemusser/campusvoice/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	ErrNotFound     = errors.New("complaint not found")
	ErrAlreadyVoted = errors.New("user has already voted on this complaint")
	// ErrTransitionNotAllowed is returned by SetStatus when the current status
	// is not one of the allowed source states.
	ErrTransitionNotAllowed = errors.New("status transition not allowed")
)

// Store is the only writer of the complaints collection.
type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("complaints")}
}

// withoutVoters is the projection used whenever a complaint leaves the store
// for rendering.
var withoutVoters = bson.M{"voters": 0}

// Create inserts a complaint in its initial state: pending, no votes.
func (s *Store) Create(ctx context.Context, c models.Complaint) (models.Complaint, error) {
	now := time.Now().UTC()
	c.ID = primitive.NewObjectID()
	c.TitleCI = text.Fold(c.Title)
	c.Status = models.StatusPending
	c.Votes = 0
	c.Voters = []primitive.ObjectID{}
	c.CreatedAt = now
	c.UpdatedAt = now

	if _, err := s.c.InsertOne(ctx, c); err != nil {
		return models.Complaint{}, err
	}
	return c, nil
}

// GetByID loads a complaint without its voter set.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.Complaint, error) {
	var c models.Complaint
	opts := options.FindOne().SetProjection(withoutVoters)
	if err := s.c.FindOne(ctx, bson.M{"_id": id}, opts).Decode(&c); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.Complaint{}, ErrNotFound
		}
		return models.Complaint{}, err
	}
	return c, nil
}

// Exists reports whether a complaint with id is present.
func (s *Store) Exists(ctx context.Context, id primitive.ObjectID) (bool, error) {
	n, err := s.c.CountDocuments(ctx, bson.M{"_id": id}, options.Count().SetLimit(1))
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// AddVote records voter's vote and returns the new count. The membership
// check and the increment are one conditioned update, so concurrent votes by
// the same user cannot both succeed and concurrent votes by different users
// cannot lose an increment.
func (s *Store) AddVote(ctx context.Context, id, voter primitive.ObjectID) (int, error) {
	filter := bson.M{"_id": id, "voters": bson.M{"$ne": voter}}
	update := bson.M{
		"$inc":  bson.M{"votes": 1},
		"$push": bson.M{"voters": voter},
		"$set":  bson.M{"updated_at": time.Now().UTC()},
	}
	opts := options.FindOneAndUpdate().
		SetReturnDocument(options.After).
		SetProjection(bson.M{"votes": 1})

	var out struct {
		Votes int `bson:"votes"`
	}
	err := s.c.FindOneAndUpdate(ctx, filter, update, opts).Decode(&out)
	if err == nil {
		return out.Votes, nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return 0, err
	}

	// No match: either the complaint is missing or voter is already in the set.
	ok, err := s.Exists(ctx, id)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, ErrNotFound
	}
	return 0, ErrAlreadyVoted
}

// SetStatus writes status and returns the document as it was before the
// write, so the caller sees the status that was actually replaced. When
// allowedFrom is non-empty the write only happens if the current status is
// one of those values.
func (s *Store) SetStatus(ctx context.Context, id primitive.ObjectID, status string, allowedFrom []string) (models.Complaint, error) {
	filter := bson.M{"_id": id}
	if len(allowedFrom) > 0 {
		filter["status"] = bson.M{"$in": allowedFrom}
	}
	update := bson.M{"$set": bson.M{
		"status":     status,
		"updated_at": time.Now().UTC(),
	}}
	opts := options.FindOneAndUpdate().
		SetReturnDocument(options.Before).
		SetProjection(withoutVoters)

	var before models.Complaint
	err := s.c.FindOneAndUpdate(ctx, filter, update, opts).Decode(&before)
	if err == nil {
		return before, nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return models.Complaint{}, err
	}
	if len(allowedFrom) == 0 {
		return models.Complaint{}, ErrNotFound
	}
	ok, err := s.Exists(ctx, id)
	if err != nil {
		return models.Complaint{}, err
	}
	if !ok {
		return models.Complaint{}, ErrNotFound
	}
	return models.Complaint{}, ErrTransitionNotAllowed
}
