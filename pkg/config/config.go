package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	EnvPrefix = "DINEHUB"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

type Config struct {
	App          AppConfig
	DB           DBConfig
	Redis        RedisConfig
	JWT          JWTConfig
	GCP          GCPConfig
	PubSub       PubSubConfig
	PayChangu    PayChanguConfig
	Ledger       LedgerConfig
	FeatureFlags FeatureFlagsConfig
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
	Env          string `envconfig:"DINEHUB_APP_ENV" required:"true"`
	Port         string `envconfig:"DINEHUB_APP_PORT" default:"8080"`
	LogLevel     string `envconfig:"DINEHUB_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"DINEHUB_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"DINEHUB_DB_DSN"`
	Driver string `envconfig:"DINEHUB_DB_DRIVER" default:"postgres"`

	Host     string `envconfig:"DINEHUB_DB_HOST"`
	Port     int    `envconfig:"DINEHUB_DB_PORT" default:"5432"`
	User     string `envconfig:"DINEHUB_DB_USER"`
	Password string `envconfig:"DINEHUB_DB_PASSWORD"`
	Name     string `envconfig:"DINEHUB_DB_NAME"`
	SSLMode  string `envconfig:"DINEHUB_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"DINEHUB_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"DINEHUB_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"DINEHUB_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"DINEHUB_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"DINEHUB_REDIS_URL"`
	Address      string        `envconfig:"DINEHUB_REDIS_ADDR"`
	Password     string        `envconfig:"DINEHUB_REDIS_PASSWORD"`
	DB           int           `envconfig:"DINEHUB_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"DINEHUB_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"DINEHUB_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"DINEHUB_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"DINEHUB_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"DINEHUB_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"DINEHUB_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"DINEHUB_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"DINEHUB_JWT_EXPIRATION_MINUTES" default:"60"`
}

type GCPConfig struct {
	ProjectID string `envconfig:"DINEHUB_GCP_PROJECT_ID"`
}

type PubSubConfig struct {
	PaymentEventsTopic string `envconfig:"DINEHUB_PUBSUB_PAYMENT_EVENTS_TOPIC" default:"dh-payment-events"`
}

type PayChanguConfig struct {
	APIURL        string        `envconfig:"DINEHUB_PAYCHANGU_API_URL" default:"https://api.paychangu.com/v1"`
	APIKey        string        `envconfig:"DINEHUB_PAYCHANGU_API_KEY"`
	WebhookSecret string        `envconfig:"DINEHUB_PAYCHANGU_WEBHOOK_SECRET"`
	CallbackURL   string        `envconfig:"DINEHUB_PAYCHANGU_CALLBACK_URL"`
	Timeout       time.Duration `envconfig:"DINEHUB_PAYCHANGU_TIMEOUT" default:"15s"`
}

type LedgerConfig struct {
	MaxRetries int `envconfig:"DINEHUB_LEDGER_MAX_RETRIES" default:"3"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"DINEHUB_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"DINEHUB_AUTO_MIGRATE" default:"false"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	required := map[string]string{
		"DINEHUB_DB_HOST": db.Host,
		"DINEHUB_DB_USER": db.User,
		"DINEHUB_DB_NAME": db.Name,
	}
	for _, key := range []string{"DINEHUB_DB_HOST", "DINEHUB_DB_USER", "DINEHUB_DB_NAME"} {
		if required[key] == "" {
			missing = append(missing, key)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either DINEHUB_DB_DSN or %s are required", strings.Join(missing, ", "))
	}

	userInfo := url.User(db.User)
	if db.Password != "" {
		userInfo = url.UserPassword(db.User, db.Password)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.Host, db.Port),
		Path:   db.Name,
	}

	if db.SSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.SSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
