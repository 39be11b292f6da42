package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App          AppConfig
	Service      ServiceConfig
	DB           DBConfig
	Redis        RedisConfig
	JWT          JWTConfig
	FeatureFlags FeatureFlagsConfig
	Eventing     EventingConfig
	GCP          GCPConfig
	PubSub       PubSubConfig
	Sendgrid     SendgridConfig
	Outbox       OutboxConfig
	Realtime     RealtimeConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"PROMOLINK_APP_ENV" required:"true"`
	Port         string `envconfig:"PROMOLINK_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"PROMOLINK_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"PROMOLINK_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type ServiceConfig struct {
	Kind string `envconfig:"PROMOLINK_SERVICE_KIND" default:"api"`
}

type DBConfig struct {
	DSN    string `envconfig:"PROMOLINK_DB_DSN"`
	Driver string `envconfig:"PROMOLINK_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"PROMOLINK_DB_HOST"`
	LegacyPort     int    `envconfig:"PROMOLINK_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"PROMOLINK_DB_USER"`
	LegacyPassword string `envconfig:"PROMOLINK_DB_PASSWORD"`
	LegacyName     string `envconfig:"PROMOLINK_DB_NAME"`
	LegacySSLMode  string `envconfig:"PROMOLINK_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"PROMOLINK_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"PROMOLINK_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"PROMOLINK_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"PROMOLINK_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"PROMOLINK_REDIS_URL" required:"true"`
	Address      string        `envconfig:"PROMOLINK_REDIS_ADDR"`
	Password     string        `envconfig:"PROMOLINK_REDIS_PASSWORD"`
	DB           int           `envconfig:"PROMOLINK_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"PROMOLINK_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"PROMOLINK_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"PROMOLINK_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"PROMOLINK_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"PROMOLINK_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// JWTConfig describes how access tokens minted by the identity provider
// are verified. This service never issues sessions itself.
type JWTConfig struct {
	Secret            string `envconfig:"PROMOLINK_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"PROMOLINK_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"PROMOLINK_JWT_EXPIRATION_MINUTES" required:"true"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"PROMOLINK_AUTO_MIGRATE" default:"false"`
}

type EventingConfig struct {
	OutboxIdempotencyTTL time.Duration `envconfig:"PROMOLINK_EVENTING_IDEMPOTENCY_TTL" default:"720h"`
}

type GCPConfig struct {
	ProjectID              string `envconfig:"PROMOLINK_GCP_PROJECT_ID" required:"true"`
	CredentialsJSON        string `envconfig:"PROMOLINK_GCP_CREDENTIALS_JSON"`
	ApplicationCredentials string `envconfig:"PROMOLINK_GOOGLE_APPLICATION_CREDENTIALS"`
}

type PubSubConfig struct {
	NotificationTopic        string `envconfig:"PROMOLINK_PUBSUB_NOTIFICATION_TOPIC" default:"pl-notification-events"`
	NotificationSubscription string `envconfig:"PROMOLINK_PUBSUB_NOTIFICATION_SUBSCRIPTION" required:"true"`
}

type SendgridConfig struct {
	APIKey      string `envconfig:"PROMOLINK_SENDGRID_API_KEY"`
	DefaultFrom string `envconfig:"PROMOLINK_SENDGRID_FROM_EMAIL"`
	TemplateID  string `envconfig:"PROMOLINK_SENDGRID_REQUEST_TEMPLATE_ID"`
}

// Configured reports whether an email provider credential is present.
// When false, email dispatch is skipped (logged, not erroring).
func (s SendgridConfig) Configured() bool {
	return strings.TrimSpace(s.APIKey) != ""
}

type OutboxConfig struct {
	BatchSize      int `envconfig:"PROMOLINK_OUTBOX_PUBLISH_BATCH_SIZE" default:"50"`
	PollIntervalMS int `envconfig:"PROMOLINK_OUTBOX_PUBLISH_POLL_MS" default:"500"`
	MaxAttempts    int `envconfig:"PROMOLINK_OUTBOX_MAX_ATTEMPTS" default:"10"`
}

type RealtimeConfig struct {
	ChannelPrefix string `envconfig:"PROMOLINK_REALTIME_CHANNEL_PREFIX" default:"pl:notify"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	legacyValues := map[string]string{
		EnvDBHost: db.LegacyHost,
		EnvDBUser: db.LegacyUser,
		EnvDBName: db.LegacyName,
	}
	for _, env := range legacyDBEnvVars {
		if legacyValues[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.LegacyUser)
	if db.LegacyPassword != "" {
		userInfo = url.UserPassword(db.LegacyUser, db.LegacyPassword)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.LegacyHost, db.LegacyPort),
		Path:   db.LegacyName,
	}

	if db.LegacySSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.LegacySSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
