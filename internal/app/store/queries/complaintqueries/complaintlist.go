// Package complaintqueries provides read-only list queries over complaints.
package complaintqueries

import (
	"context"
	"encoding/json"
	"time"

	"github.com/dalemusser/campusvoice/internal/app/policy/complaintpolicy"
	"github.com/dalemusser/campusvoice/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// Sort names accepted from the client.
const (
	SortNewest     = "newest"
	SortOldest     = "oldest"
	SortMostVotes  = "most-votes"
	SortLeastVotes = "least-votes"
)

// Kind selects which list policy applies.
type Kind int

const (
	KindPublic Kind = iota
	KindAll
)

// Summary is a complaint as it appears in a list or detail view: live
// comment count, never the voter set.
type Summary struct {
	ID          primitive.ObjectID `bson:"_id" json:"id"`
	Title       string             `bson:"title" json:"title"`
	Description string             `bson:"description" json:"description"`
	Category    string             `bson:"category" json:"category"`
	Status      string             `bson:"status" json:"status"`
	AuthorID    primitive.ObjectID `bson:"author_id" json:"author_id"`
	IsAnonymous bool               `bson:"is_anonymous" json:"is_anonymous"`
	Votes       int                `bson:"votes" json:"votes"`
	Comments    int64              `bson:"comments" json:"comments"`
	CreatedAt   time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt   time.Time          `bson:"updated_at" json:"updated_at"`
}

// Filter holds optional equality filters. Empty fields are ignored; values
// outside the known sets are applied as given and simply match nothing.
type Filter struct {
	Category string
	Status   string
}

// ListVisible returns the public feed (KindPublic) or the faculty view
// (KindAll) for caller. KindAll returns complaintpolicy.ErrForbidden for
// non-faculty callers.
func ListVisible(ctx context.Context, db *mongo.Database, caller complaintpolicy.Caller, kind Kind, f Filter, sort string) ([]Summary, error) {
	var scope complaintpolicy.Scope
	switch kind {
	case KindAll:
		s, err := complaintpolicy.All(caller)
		if err != nil {
			return nil, err
		}
		scope = s
	default:
		scope = complaintpolicy.Public(caller)
	}
	return list(ctx, db, scope, f, sortSpec(sort))
}

// ListOwn returns the caller's own complaints. Only newest and oldest are
// honored; anything else sorts newest first. Category is ignored.
func ListOwn(ctx context.Context, db *mongo.Database, caller complaintpolicy.Caller, status, sort string) ([]Summary, error) {
	if sort != SortOldest {
		sort = SortNewest
	}
	return list(ctx, db, complaintpolicy.Own(caller), Filter{Status: status}, sortSpec(sort))
}

func list(ctx context.Context, db *mongo.Database, scope complaintpolicy.Scope, f Filter, sort bson.D) ([]Summary, error) {
	pipe := mongo.Pipeline{
		{{Key: "$match", Value: buildMatch(scope, f)}},
		{{Key: "$sort", Value: sort}},
	}
	pipe = append(pipe, commentCountStages()...)

	cur, err := db.Collection("complaints").Aggregate(ctx, pipe)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := []Summary{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func buildMatch(scope complaintpolicy.Scope, f Filter) bson.M {
	var clauses []bson.M
	if scope.AuthorID != nil {
		clauses = append(clauses, bson.M{"author_id": *scope.AuthorID})
	}
	if len(scope.ExcludeStatuses) > 0 {
		clauses = append(clauses, bson.M{"status": bson.M{"$nin": scope.ExcludeStatuses}})
	}
	if f.Category != "" {
		clauses = append(clauses, bson.M{"category": f.Category})
	}
	if f.Status != "" {
		clauses = append(clauses, bson.M{"status": f.Status})
	}
	return andify(clauses)
}

func andify(clauses []bson.M) bson.M {
	switch len(clauses) {
	case 0:
		return bson.M{}
	case 1:
		return clauses[0]
	default:
		return bson.M{"$and": clauses}
	}
}

// sortSpec maps a sort name to a total order; _id is always the last key.
func sortSpec(sort string) bson.D {
	switch sort {
	case SortOldest:
		return bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}}
	case SortMostVotes:
		return bson.D{{Key: "votes", Value: -1}, {Key: "created_at", Value: -1}, {Key: "_id", Value: -1}}
	case SortLeastVotes:
		return bson.D{{Key: "votes", Value: 1}, {Key: "created_at", Value: -1}, {Key: "_id", Value: -1}}
	default:
		return bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}}
	}
}

// commentCountStages attaches the live comment count and drops the voter set.
func commentCountStages() mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$lookup", Value: bson.M{
			"from": "comments",
			"let":  bson.M{"cid": "$_id"},
			"pipeline": bson.A{
				bson.M{"$match": bson.M{"$expr": bson.M{"$eq": bson.A{"$complaint_id", "$$cid"}}}},
				bson.M{"$count": "n"},
			},
			"as": "comment_agg",
		}}},
		{{Key: "$addFields", Value: bson.M{
			"comments": bson.M{"$ifNull": bson.A{bson.M{"$arrayElemAt": bson.A{"$comment_agg.n", 0}}, 0}},
		}}},
		{{Key: "$project", Value: bson.M{"voters": 0, "comment_agg": 0, "title_ci": 0}}},
	}
}

// MarshalJSON leaves author_id out of anonymous complaints, the same way
// anonymous comments carry no author reference.
func (s Summary) MarshalJSON() ([]byte, error) {
	type plain Summary
	out := struct {
		plain
		AuthorID *primitive.ObjectID `json:"author_id,omitempty"`
	}{plain: plain(s)}
	if !s.IsAnonymous {
		id := s.AuthorID
		out.AuthorID = &id
	}
	return json.Marshal(out)
}

// SummaryOf renders a loaded complaint with its comment count.
func SummaryOf(c models.Complaint, comments int64) Summary {
	return Summary{
		ID:          c.ID,
		Title:       c.Title,
		Description: c.Description,
		Category:    c.Category,
		Status:      c.Status,
		AuthorID:    c.AuthorID,
		IsAnonymous: c.IsAnonymous,
		Votes:       c.Votes,
		Comments:    comments,
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
	}
}
