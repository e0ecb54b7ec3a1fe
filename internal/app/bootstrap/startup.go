// internal/app/bootstrap/startup.go
package bootstrap

import (
	"context"
	"time"

	notificationstore "github.com/dalemusser/creatorhub/internal/app/store/notifications"
	"github.com/dalemusser/creatorhub/internal/app/system/workers"
	"github.com/dalemusser/waffle/config"
	"go.uber.org/zap"
)

// notifCleanup runs for the life of the process; Shutdown stops it.
var notifCleanup *workers.NotificationCleanup

// Startup runs one-time application initialization after DB
// connections and schema setup are complete, but before the HTTP
// handler is built. CreatorHub starts the notification cleanup worker
// here.
func Startup(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	retention := time.Duration(appCfg.NotificationRetentionDays) * 24 * time.Hour
	notifCleanup = workers.NewNotificationCleanup(
		notificationstore.New(deps.CreatorHubMongoDatabase),
		logger,
		time.Hour,
		retention,
	)
	notifCleanup.Start()
	return nil
}
