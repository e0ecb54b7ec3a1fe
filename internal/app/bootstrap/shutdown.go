// internal/app/bootstrap/shutdown.go
package bootstrap

import (
	"context"

	"github.com/dalemusser/waffle/config"
	"go.uber.org/zap"
)

// Shutdown cleanly tears down background workers, roster watchers, and
// the MongoDB connection.
func Shutdown(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	if notifCleanup != nil {
		notifCleanup.Stop()
	}
	if rosterHub != nil {
		logger.Info("stopping roster watchers")
		rosterHub.Shutdown()
	}
	if deps.CreatorHubMongoClient != nil {
		logger.Info("disconnecting CreatorHub MongoDB client")
		if err := deps.CreatorHubMongoClient.Disconnect(ctx); err != nil {
			logger.Error("MongoDB disconnect failed", zap.Error(err))
			return err
		}
	}
	return nil
}
