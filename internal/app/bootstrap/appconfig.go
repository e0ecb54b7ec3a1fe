// internal/app/bootstrap/appconfig.go
package bootstrap

// AppConfig holds service-specific configuration for this WAFFLE app.
//
// WAFFLE's CoreConfig handles framework-level settings (ports, TLS,
// logging, CORS). AppConfig is everything specific to CreatorHub:
// backends, keys, and domain defaults. The struct is passed to most
// lifecycle hooks, so any configuration needed during startup, request
// handling, or shutdown lives here.
type AppConfig struct {
	// MongoDB connection configuration
	MongoURI         string
	MongoDatabase    string
	MongoMaxPoolSize uint64
	MongoMinPoolSize uint64

	// Session management configuration
	SessionKey    string // secret key for signing session cookies
	SessionName   string // cookie name (default: creatorhub-session)
	SessionDomain string // cookie domain (blank means current host)

	// File storage configuration
	StorageType      string // "local" or "s3"
	StorageLocalPath string // local storage path (e.g., "./uploads/assets")
	StorageLocalURL  string // URL prefix for serving local files

	// S3 configuration (only used if StorageType is "s3")
	StorageS3Region string
	StorageS3Bucket string
	StorageS3Prefix string

	// Email/SMTP configuration. Empty host disables email delivery;
	// in-app notifications still work.
	MailSMTPHost string
	MailSMTPPort int
	MailSMTPUser string
	MailSMTPPass string
	MailFrom     string
	MailFromName string

	// Base URL for OAuth callbacks and email links
	BaseURL string

	// Google OAuth configuration
	GoogleClientID     string
	GoogleClientSecret string

	// Notification retention for the cleanup worker
	NotificationRetentionDays int
}
