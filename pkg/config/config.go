package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App        AppConfig
	Service    ServiceConfig
	DB         DBConfig
	Redis      RedisConfig
	Settlement SettlementConfig
	Stripe     StripeConfig
	GCP        GCPConfig
	PubSub     PubSubConfig
	Outbox     OutboxConfig
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
	Env          string `envconfig:"INKSHELF_APP_ENV" required:"true"`
	Port         string `envconfig:"INKSHELF_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"INKSHELF_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"INKSHELF_LOG_WARN_STACK" default:"false"`
	AutoMigrate  bool   `envconfig:"INKSHELF_AUTO_MIGRATE" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type ServiceConfig struct {
	Kind string `envconfig:"INKSHELF_SERVICE_KIND" default:"api"`
}

type DBConfig struct {
	DSN    string `envconfig:"INKSHELF_DB_DSN"`
	Driver string `envconfig:"INKSHELF_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"INKSHELF_DB_HOST"`
	LegacyPort     int    `envconfig:"INKSHELF_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"INKSHELF_DB_USER"`
	LegacyPassword string `envconfig:"INKSHELF_DB_PASSWORD"`
	LegacyName     string `envconfig:"INKSHELF_DB_NAME"`
	LegacySSLMode  string `envconfig:"INKSHELF_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"INKSHELF_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"INKSHELF_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"INKSHELF_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"INKSHELF_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"INKSHELF_REDIS_URL" required:"true"`
	Address      string        `envconfig:"INKSHELF_REDIS_ADDR"`
	Password     string        `envconfig:"INKSHELF_REDIS_PASSWORD"`
	DB           int           `envconfig:"INKSHELF_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"INKSHELF_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"INKSHELF_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"INKSHELF_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"INKSHELF_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"INKSHELF_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// SettlementConfig tunes the payout compensation retry loop. Compensation must
// not give up silently, so the attempt cap only bounds automatic retries before
// the manual-intervention alert fires.
type SettlementConfig struct {
	CompensationMaxRetries  int           `envconfig:"INKSHELF_SETTLEMENT_COMPENSATION_MAX_RETRIES" default:"5"`
	CompensationBaseBackoff time.Duration `envconfig:"INKSHELF_SETTLEMENT_COMPENSATION_BASE_BACKOFF" default:"100ms"`
}

type StripeConfig struct {
	APIKey               string `envconfig:"INKSHELF_STRIPE_API_KEY"`
	Env                  string `envconfig:"INKSHELF_STRIPE_ENV" default:"test"`
	OnboardingRefreshURL string `envconfig:"INKSHELF_STRIPE_ONBOARDING_REFRESH_URL"`
	OnboardingReturnURL  string `envconfig:"INKSHELF_STRIPE_ONBOARDING_RETURN_URL"`
}

// Environment returns the normalized Stripe environment (test/live).
func (s StripeConfig) Environment() string {
	env := strings.TrimSpace(strings.ToLower(s.Env))
	if env == "" {
		return "test"
	}
	return env
}

type GCPConfig struct {
	ProjectID              string `envconfig:"INKSHELF_GCP_PROJECT_ID"`
	CredentialsJSON        string `envconfig:"INKSHELF_GCP_CREDENTIALS_JSON"`
	ApplicationCredentials string `envconfig:"INKSHELF_GOOGLE_APPLICATION_CREDENTIALS"`
}

type PubSubConfig struct {
	SettlementTopic        string `envconfig:"INKSHELF_PUBSUB_SETTLEMENT_TOPIC" default:"inkshelf-settlement-events"`
	SettlementSubscription string `envconfig:"INKSHELF_PUBSUB_SETTLEMENT_SUBSCRIPTION"`
}

type OutboxConfig struct {
	BatchSize      int `envconfig:"INKSHELF_OUTBOX_PUBLISH_BATCH_SIZE" default:"50"`
	PollIntervalMS int `envconfig:"INKSHELF_OUTBOX_PUBLISH_POLL_MS" default:"500"`
	MaxAttempts    int `envconfig:"INKSHELF_OUTBOX_MAX_ATTEMPTS" default:"10"`
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
