package config

// EnvPrefix is passed to envconfig; individual fields carry their full
// variable names so the prefix stays empty.
const EnvPrefix = ""

const (
	AppEnvDev  = "development"
	AppEnvProd = "production"
)

// Environment variable names shared between Load and the tests.
const (
	EnvAppEnv     = "PROMOLINK_APP_ENV"
	EnvPort       = "PROMOLINK_APP_PORT"
	EnvDBDSN      = "PROMOLINK_DB_DSN"
	EnvDBHost     = "PROMOLINK_DB_HOST"
	EnvDBUser     = "PROMOLINK_DB_USER"
	EnvDBName     = "PROMOLINK_DB_NAME"
	EnvRedisURL   = "PROMOLINK_REDIS_URL"
	EnvJWTSecret  = "PROMOLINK_JWT_SECRET"
	EnvJWTIssuer  = "PROMOLINK_JWT_ISSUER"
	EnvJWTExpMins = "PROMOLINK_JWT_EXPIRATION_MINUTES"

	EnvGCPProjectID                   = "PROMOLINK_GCP_PROJECT_ID"
	EnvPubSubNotificationTopic        = "PROMOLINK_PUBSUB_NOTIFICATION_TOPIC"
	EnvPubSubNotificationSubscription = "PROMOLINK_PUBSUB_NOTIFICATION_SUBSCRIPTION"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
