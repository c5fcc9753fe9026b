// internal/domain/models/notification.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Notification tells a complaint author that the complaint's status changed.
// UserID is the author's ObjectID in hex form.
type Notification struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID         string             `bson:"user_id" json:"user_id"`
	ComplaintID    primitive.ObjectID `bson:"complaint_id,omitempty" json:"complaint_id,omitempty"`
	StudentName    string             `bson:"student_name" json:"student_name"`
	ComplaintTitle string             `bson:"complaint_title" json:"complaint_title"`
	NewStatus      string             `bson:"new_status" json:"new_status"`
	Timestamp      time.Time          `bson:"timestamp" json:"timestamp"`
	Read           bool               `bson:"read" json:"read"`
}
