// internal/app/bootstrap/dbdeps.go
package bootstrap

import (
	"go.mongodb.org/mongo-driver/mongo"
)

// DBDeps holds database/back-end dependencies for the app. Both fields
// are nil when the in-memory store backend is configured.
type DBDeps struct {
	HavenMongoClient   *mongo.Client
	HavenMongoDatabase *mongo.Database
}
