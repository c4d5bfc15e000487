// internal/app/bootstrap/db.go
package bootstrap

import (
	"context"
	"fmt"
	"time"

	"github.com/dalemusser/waffle/config"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"

	breakoutstore "github.com/havenlabs/haven/internal/app/store/breakouts"
	invitationstore "github.com/havenlabs/haven/internal/app/store/invitations"
	sessionstore "github.com/havenlabs/haven/internal/app/store/sessions"
)

// ConnectDB establishes the MongoDB connection when the mongo backend
// is configured. The memory backend needs no connection; it returns
// empty deps.
func ConnectDB(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) (DBDeps, error) {
	if appCfg.StorageType == "memory" {
		logger.Info("using in-memory record store")
		return DBDeps{}, nil
	}

	opts := options.Client().
		ApplyURI(appCfg.MongoURI).
		SetMaxPoolSize(appCfg.MongoMaxPoolSize).
		SetMinPoolSize(appCfg.MongoMinPoolSize)

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return DBDeps{}, fmt.Errorf("mongo connect: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(ctx)
		return DBDeps{}, fmt.Errorf("mongo ping: %w", err)
	}

	logger.Info("connected to MongoDB", zap.String("database", appCfg.MongoDatabase))
	return DBDeps{
		HavenMongoClient:   client,
		HavenMongoDatabase: client.Database(appCfg.MongoDatabase),
	}, nil
}

// EnsureSchema creates the indexes the stores rely on: the partial
// unique index on active invite codes is what makes code collisions
// impossible rather than merely unlikely.
func EnsureSchema(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	if deps.HavenMongoDatabase == nil {
		return nil
	}

	if err := sessionstore.New(deps.HavenMongoDatabase).EnsureIndexes(ctx); err != nil {
		return fmt.Errorf("session indexes: %w", err)
	}
	if err := breakoutstore.New(deps.HavenMongoDatabase).EnsureIndexes(ctx); err != nil {
		return fmt.Errorf("breakout indexes: %w", err)
	}
	if err := invitationstore.New(deps.HavenMongoDatabase).EnsureIndexes(ctx); err != nil {
		return fmt.Errorf("invitation indexes: %w", err)
	}
	logger.Info("ensured MongoDB indexes")
	return nil
}
