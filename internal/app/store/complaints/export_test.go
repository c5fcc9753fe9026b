package complaintstore

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// VoterCount returns votes and len(voters) for id; the two are equal for
// every complaint written through this store.
func (s *Store) VoterCount(ctx context.Context, id primitive.ObjectID) (votes, voters int, err error) {
	pipe := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"_id": id}}},
		{{Key: "$project", Value: bson.M{
			"votes":  1,
			"voters": bson.M{"$size": bson.M{"$ifNull": bson.A{"$voters", bson.A{}}}},
		}}},
	}
	cur, err := s.c.Aggregate(ctx, pipe)
	if err != nil {
		return 0, 0, err
	}
	defer cur.Close(ctx)

	if !cur.Next(ctx) {
		if err := cur.Err(); err != nil {
			return 0, 0, err
		}
		return 0, 0, ErrNotFound
	}
	var row struct {
		Votes  int `bson:"votes"`
		Voters int `bson:"voters"`
	}
	if err := cur.Decode(&row); err != nil {
		return 0, 0, err
	}
	return row.Votes, row.Voters, nil
}

// HasVoted reports whether voter is in the complaint's voter set.
func (s *Store) HasVoted(ctx context.Context, id, voter primitive.ObjectID) (bool, error) {
	n, err := s.c.CountDocuments(ctx, bson.M{"_id": id, "voters": voter}, options.Count().SetLimit(1))
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
