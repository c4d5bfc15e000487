// internal/app/store/sessions/store.go
package sessions

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/havenlabs/haven/internal/app/lifecycle"
	"github.com/havenlabs/haven/internal/domain/models"
)

// Store persists sanctuary sessions. It implements
// lifecycle.SessionStore: writes are conditional on the record version,
// so capacity checks and the participant append commit as one atomic
// operation against the document.
type Store struct {
	c *mongo.Collection
}

// New creates a sessions Store.
func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("sessions")}
}

// EnsureIndexes creates the indexes backing the active-session listing
// and the expiry reconciler.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "status", Value: 1}, {Key: "expires_at", Value: 1}},
			Options: options.Index().SetName("idx_sessions_status_expiry"),
		},
		{
			Keys:    bson.D{{Key: "host_id", Value: 1}, {Key: "created_at", Value: -1}},
			Options: options.Index().SetName("idx_sessions_host"),
		},
	}
	_, err := s.c.Indexes().CreateMany(ctx, indexes)
	return err
}

// Get retrieves a session by id.
func (s *Store) Get(ctx context.Context, id string) (models.Session, error) {
	var rec models.Session
	err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&rec)
	if err == mongo.ErrNoDocuments {
		return models.Session{}, lifecycle.ErrNotFound
	}
	if err != nil {
		return models.Session{}, err
	}
	return rec, nil
}

// Create inserts a new session document.
func (s *Store) Create(ctx context.Context, rec models.Session) error {
	_, err := s.c.InsertOne(ctx, rec)
	return err
}

// Update replaces the document only if the stored version still equals
// rec.Version, bumping the version in the replacement. A mismatch means
// a concurrent writer won and yields lifecycle.ErrConflict.
func (s *Store) Update(ctx context.Context, rec models.Session) (models.Session, error) {
	expected := rec.Version
	rec.Version = expected + 1

	res, err := s.c.ReplaceOne(ctx, bson.M{"_id": rec.ID, "version": expected}, rec)
	if err != nil {
		return models.Session{}, err
	}
	if res.MatchedCount == 0 {
		// Distinguish a lost race from a vanished record.
		n, cerr := s.c.CountDocuments(ctx, bson.M{"_id": rec.ID})
		if cerr == nil && n == 0 {
			return models.Session{}, lifecycle.ErrNotFound
		}
		return models.Session{}, lifecycle.ErrConflict
	}
	return rec, nil
}

// ListActive returns live sessions whose expiry has not passed, newest
// first.
func (s *Store) ListActive(ctx context.Context, now time.Time, limit int64) ([]models.Session, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	if limit > 0 {
		opts.SetLimit(limit)
	}
	cur, err := s.c.Find(ctx, bson.M{
		"status":     models.StatusActive,
		"expires_at": bson.M{"$gt": now},
	}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.Session
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// MarkExpired reconciles overdue sessions: any non-ended session whose
// expiry has passed is flagged ended with ended_at set to its expiry.
// Read paths never depend on this; it keeps listings and dashboards
// honest between reads.
func (s *Store) MarkExpired(ctx context.Context, now time.Time) (int64, error) {
	res, err := s.c.UpdateMany(ctx,
		bson.M{
			"status":     bson.M{"$ne": models.StatusEnded},
			"expires_at": bson.M{"$lt": now},
		},
		// Pipeline update so ended_at can reference the document's own
		// expires_at instead of a single shared timestamp.
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
