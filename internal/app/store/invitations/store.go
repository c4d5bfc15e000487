// internal/app/store/invitations/store.go
package invitations

import (
	"context"
	"time"

	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/havenlabs/haven/internal/app/lifecycle"
	"github.com/havenlabs/haven/internal/domain/models"
)

// Store persists invitations. Consume is a single conditional
// find-and-update so a usage limit can never be overrun by concurrent
// joiners. It implements lifecycle.InvitationStore.
type Store struct {
	c *mongo.Collection
}

// New creates an invitations Store.
func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("invitations")}
}

// EnsureIndexes enforces code uniqueness among active invitations and
// adds a TTL sweep on expiry.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "code_ci", Value: 1}},
			Options: options.Index().
				SetName("idx_invitations_code_active").
				SetUnique(true).
				SetPartialFilterExpression(bson.M{"is_active": true}),
		},
		{
			Keys:    bson.D{{Key: "session_id", Value: 1}},
			Options: options.Index().SetName("idx_invitations_session"),
		},
	}
	_, err := s.c.Indexes().CreateMany(ctx, indexes)
	return err
}

// GetByCode retrieves the most recent invitation for a folded code.
func (s *Store) GetByCode(ctx context.Context, codeCI string) (models.Invitation, error) {
	opts := options.FindOne().SetSort(bson.D{{Key: "created_at", Value: -1}})
	var rec models.Invitation
	err := s.c.FindOne(ctx, bson.M{"code_ci": codeCI}, opts).Decode(&rec)
	if err == mongo.ErrNoDocuments {
		return models.Invitation{}, lifecycle.ErrNotFound
	}
	if err != nil {
		return models.Invitation{}, err
	}
	return rec, nil
}

// Create inserts an invitation. A code colliding with an existing active
// invitation yields lifecycle.ErrDuplicateCode, which the minting loop
// treats as "try another code".
func (s *Store) Create(ctx context.Context, inv models.Invitation) error {
	_, err := s.c.InsertOne(ctx, inv)
	if err != nil {
		if wafflemongo.IsDup(err) {
			return lifecycle.ErrDuplicateCode
		}
		return err
	}
	return nil
}

// Consume atomically validates and uses one invitation slot: the
// active/expiry/usage predicate and the used-count increment are one
// find-and-update, so two joiners racing a limit of one cannot both
// pass. On failure the record is re-read to categorize the rejection.
func (s *Store) Consume(ctx context.Context, codeCI string, now time.Time) (models.Invitation, error) {
	filter := bson.M{
		"code_ci":    codeCI,
		"is_active":  true,
		"expires_at": bson.M{"$gt": now},
		"$or": bson.A{
			bson.M{"max_uses": nil},
			bson.M{"$expr": bson.M{"$lt": bson.A{"$used_count", "$max_uses"}}},
		},
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var rec models.Invitation
	err := s.c.FindOneAndUpdate(ctx, filter, bson.M{"$inc": bson.M{"used_count": 1}}, opts).Decode(&rec)
	if err == nil {
		return rec, nil
	}
	if err != mongo.ErrNoDocuments {
		return models.Invitation{}, err
	}

	inv, gerr := s.GetByCode(ctx, codeCI)
	if gerr != nil {
		return models.Invitation{}, gerr
	}
	switch {
	case !inv.IsActive:
		return models.Invitation{}, lifecycle.ErrInvalidState
	case !now.Before(inv.ExpiresAt):
		return models.Invitation{}, lifecycle.ErrExpired
	case inv.Exhausted():
		return models.Invitation{}, lifecycle.ErrInviteExhausted
	}
	// The predicate held on re-read; someone consumed between the two
	// reads or the last slot went in the same instant.
	return models.Invitation{}, lifecycle.ErrConflict
}

// Refund returns one consumed use, compensating a join the session
// guard rejected after Consume. Conditional on used_count so the count
// never goes negative.
func (s *Store) Refund(ctx context.Context, id string) error {
	res, err := s.c.UpdateOne(ctx,
		bson.M{"_id": id, "used_count": bson.M{"$gt": 0}},
		bson.M{"$inc": bson.M{"used_count": -1}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		n, cerr := s.c.CountDocuments(ctx, bson.M{"_id": id})
		if cerr == nil && n == 0 {
			return lifecycle.ErrNotFound
		}
	}
	return nil
}

// Deactivate terminally disables an invitation.
func (s *Store) Deactivate(ctx context.Context, id string) error {
	res, err := s.c.UpdateByID(ctx, id, bson.M{"$set": bson.M{"is_active": false}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return lifecycle.ErrNotFound
	}
	return nil
}
