// internal/domain/models/comment.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Comment is an append-only remark on a complaint. AuthorID is always stored,
// even for anonymous comments; anonymity only affects how the author is shown.
type Comment struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	ComplaintID primitive.ObjectID `bson:"complaint_id"`
	AuthorID    primitive.ObjectID `bson:"author_id"`
	Text        string             `bson:"text"`
	IsAnonymous bool               `bson:"is_anonymous"`
	CreatedAt   time.Time          `bson:"created_at"`
}
