// internal/app/bootstrap/routes.go
package bootstrap

import (
	"context"
	"net/http"

	"github.com/dalemusser/creatorhub/internal/app/features/assets"
	"github.com/dalemusser/creatorhub/internal/app/features/billing"
	"github.com/dalemusser/creatorhub/internal/app/features/calendar"
	companyfeature "github.com/dalemusser/creatorhub/internal/app/features/company"
	"github.com/dalemusser/creatorhub/internal/app/features/contracts"
	"github.com/dalemusser/creatorhub/internal/app/features/finance"
	healthfeature "github.com/dalemusser/creatorhub/internal/app/features/health"
	loginfeature "github.com/dalemusser/creatorhub/internal/app/features/login"
	logoutfeature "github.com/dalemusser/creatorhub/internal/app/features/logout"
	notificationsfeature "github.com/dalemusser/creatorhub/internal/app/features/notifications"
	profilefeature "github.com/dalemusser/creatorhub/internal/app/features/profile"
	tasksfeature "github.com/dalemusser/creatorhub/internal/app/features/tasks"
	"github.com/dalemusser/creatorhub/internal/app/membership"
	"github.com/dalemusser/creatorhub/internal/app/notify"
	"github.com/dalemusser/creatorhub/internal/app/system/auth"
	"github.com/dalemusser/waffle/config"
	"github.com/dalemusser/waffle/pantry/fileserver"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// rosterHub fans roster changes out to stream subscribers; Shutdown
// stops its watchers.
var rosterHub *membership.Hub

// BuildHandler constructs the root HTTP handler (router) for this
// WAFFLE app.
//
// WAFFLE calls this after configuration, DB connections, schema setup,
// and Startup have completed. CreatorHub initializes the session
// store, wires the membership coordinator and its notifier, and mounts
// the JSON API feature routers.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	// Secure cookies are enabled in production mode.
	secure := coreCfg.Env == "prod"
	if err := auth.InitSessionStore(appCfg.SessionKey, appCfg.SessionName, appCfg.SessionDomain, secure, logger); err != nil {
		logger.Error("session store init failed", zap.Error(err))
		return nil, err
	}

	db := deps.CreatorHubMongoDatabase

	// Notifications: in-app always, email only when SMTP is configured.
	var mailer notify.Mailer
	if appCfg.MailSMTPHost != "" {
		mailer = &notify.SMTPMailer{
			Host:     appCfg.MailSMTPHost,
			Port:     appCfg.MailSMTPPort,
			User:     appCfg.MailSMTPUser,
			Pass:     appCfg.MailSMTPPass,
			From:     appCfg.MailFrom,
			FromName: appCfg.MailFromName,
		}
	}
	notifier := notify.New(db, mailer, logger)

	coordinator := membership.New(db, notifier, logger)
	rosterHub = membership.NewHub(db, coordinator, logger)

	assetStorage, err := buildStorage(context.Background(), appCfg, logger)
	if err != nil {
		logger.Error("storage init failed", zap.Error(err))
		return nil, err
	}

	r := chi.NewRouter()

	// Loads the session user into context when a valid cookie is
	// present; handlers read it via authz.UserCtx.
	r.Use(auth.LoadSessionUser)

	// Health check endpoint for load balancers and orchestrators
	healthHandler := healthfeature.NewHandler(deps.CreatorHubMongoClient, logger)
	r.Mount("/health", healthfeature.Routes(healthHandler))

	// Locally stored uploads, served with pre-compressed file support
	if appCfg.StorageType == "local" {
		r.Handle(appCfg.StorageLocalURL+"/*", fileserver.Handler(appCfg.StorageLocalURL, appCfg.StorageLocalPath))
	}

	// Authentication
	loginHandler := loginfeature.NewHandler(db, appCfg.GoogleClientID, appCfg.GoogleClientSecret, appCfg.BaseURL, appCfg.SessionKey, logger)
	r.Mount("/api/auth", loginfeature.Routes(loginHandler))

	logoutHandler := logoutfeature.NewHandler(logger)
	r.Mount("/api/logout", logoutfeature.Routes(logoutHandler))

	// Membership and team state
	companyHandler := companyfeature.NewHandler(db, coordinator, rosterHub, logger)
	r.Mount("/api/company", companyfeature.Routes(companyHandler))

	// Account
	profileHandler := profilefeature.NewHandler(db, logger)
	r.Mount("/api/profile", profilefeature.Routes(profileHandler))

	notificationsHandler := notificationsfeature.NewHandler(db, logger)
	r.Mount("/api/notifications", notificationsfeature.Routes(notificationsHandler))

	// Company workspace
	calendarHandler := calendar.NewHandler(db, coordinator, logger)
	r.Mount("/api/calendar", calendar.Routes(calendarHandler))

	financeHandler := finance.NewHandler(db, coordinator, logger)
	r.Mount("/api/finance", finance.Routes(financeHandler))

	tasksHandler := tasksfeature.NewHandler(db, coordinator, notifier, logger)
	r.Mount("/api/tasks", tasksfeature.Routes(tasksHandler))

	assetsHandler := assets.NewHandler(db, coordinator, assetStorage, logger)
	r.Mount("/api/assets", assets.Routes(assetsHandler))

	contractsHandler := contracts.NewHandler(db, coordinator, notifier, logger)
	r.Mount("/api/contracts", contracts.Routes(contractsHandler))

	billingHandler := billing.NewHandler(db, coordinator, logger)
	r.Mount("/api/billing", billing.Routes(billingHandler))

	return r, nil
}
