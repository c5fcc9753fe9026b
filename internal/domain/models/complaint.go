// internal/domain/models/complaint.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Conventional input limits (the web form enforces the same).
const (
	MaxTitleLen       = 100
	MaxDescriptionLen = 2000
)

// Complaint is a student-submitted issue.
//
// Invariants maintained by the complaint store:
//   - Votes == len(Voters); a voter appears at most once.
//   - AuthorID and CreatedAt never change after insert.
//
// Voters is never rendered to callers; handlers expose complaints through
// view types that omit it.
type Complaint struct {
	ID          primitive.ObjectID   `bson:"_id,omitempty"`
	Title       string               `bson:"title"`
	TitleCI     string               `bson:"title_ci"`
	Description string               `bson:"description"`
	Category    string               `bson:"category"`
	Status      string               `bson:"status"`
	AuthorID    primitive.ObjectID   `bson:"author_id"`
	IsAnonymous bool                 `bson:"is_anonymous"`
	Votes       int                  `bson:"votes"`
	Voters      []primitive.ObjectID `bson:"voters"`

	CreatedAt time.Time `bson:"created_at"`
	UpdatedAt time.Time `bson:"updated_at"`
}
