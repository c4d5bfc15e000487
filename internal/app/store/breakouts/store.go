// internal/app/store/breakouts/store.go
package breakouts

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/havenlabs/haven/internal/app/lifecycle"
	"github.com/havenlabs/haven/internal/domain/models"
)

// Store persists breakout rooms. Same versioned-write contract as the
// sessions store, implementing lifecycle.BreakoutStore.
type Store struct {
	c *mongo.Collection
}

// New creates a breakouts Store.
func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("breakout_rooms")}
}

// EnsureIndexes creates the parent listing and expiry indexes.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "parent_session_id", Value: 1}, {Key: "created_at", Value: 1}},
			Options: options.Index().SetName("idx_breakouts_parent"),
		},
		{
			Keys:    bson.D{{Key: "status", Value: 1}, {Key: "expires_at", Value: 1}},
			Options: options.Index().SetName("idx_breakouts_status_expiry"),
		},
	}
	_, err := s.c.Indexes().CreateMany(ctx, indexes)
	return err
}

// Get retrieves a room by id.
func (s *Store) Get(ctx context.Context, id string) (models.BreakoutRoom, error) {
	var rec models.BreakoutRoom
	err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&rec)
	if err == mongo.ErrNoDocuments {
		return models.BreakoutRoom{}, lifecycle.ErrNotFound
	}
	if err != nil {
		return models.BreakoutRoom{}, err
	}
	return rec, nil
}

// Create inserts a new room document.
func (s *Store) Create(ctx context.Context, rec models.BreakoutRoom) error {
	_, err := s.c.InsertOne(ctx, rec)
	return err
}

// Update replaces the document conditionally on its version.
func (s *Store) Update(ctx context.Context, rec models.BreakoutRoom) (models.BreakoutRoom, error) {
	expected := rec.Version
	rec.Version = expected + 1

	res, err := s.c.ReplaceOne(ctx, bson.M{"_id": rec.ID, "version": expected}, rec)
	if err != nil {
		return models.BreakoutRoom{}, err
	}
	if res.MatchedCount == 0 {
		n, cerr := s.c.CountDocuments(ctx, bson.M{"_id": rec.ID})
		if cerr == nil && n == 0 {
			return models.BreakoutRoom{}, lifecycle.ErrNotFound
		}
		return models.BreakoutRoom{}, lifecycle.ErrConflict
	}
	return rec, nil
}

// ListByParent returns the rooms spawned from a session, oldest first.
func (s *Store) ListByParent(ctx context.Context, parentID string) ([]models.BreakoutRoom, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}})
	cur, err := s.c.Find(ctx, bson.M{"parent_session_id": parentID}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.BreakoutRoom
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// MarkExpired flags overdue rooms as ended, mirroring the sessions
// reconciler.
func (s *Store) MarkExpired(ctx context.Context, now time.Time) (int64, error) {
	res, err := s.c.UpdateMany(ctx,
		bson.M{
			"status":     bson.M{"$ne": models.StatusEnded},
			"expires_at": bson.M{"$lt": now},
		},
		mongo.Pipeline{
			{{Key: "$set", Value: bson.M{
				"status":   models.StatusEnded,
				"ended_at": "$expires_at",
			}}},
		},
	)
	if err != nil {
		return 0, err
	}
	return res.ModifiedCount, nil
}
