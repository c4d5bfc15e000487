// internal/app/bootstrap/shutdown.go
package bootstrap

import (
	"context"

	"github.com/dalemusser/waffle/config"
	"go.uber.org/zap"
)

// Shutdown stops the background reconciler and tears down the MongoDB
// connection.
func Shutdown(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	if runtime.reconciler != nil {
		runtime.reconciler.Stop()
	}
	if deps.HavenMongoClient != nil {
		logger.Info("disconnecting Haven MongoDB client")
		if err := deps.HavenMongoClient.Disconnect(ctx); err != nil {
			logger.Error("MongoDB disconnect failed", zap.Error(err))
			return err
		}
	}
	return nil
}
