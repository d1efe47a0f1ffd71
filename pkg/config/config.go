package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App          AppConfig
	DB           DBConfig
	Redis        RedisConfig
	JWT          JWTConfig
	Admin        AdminConfig
	Push         PushConfig
	Cron         CronConfig
	FeatureFlags FeatureFlagsConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Cron.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"TEAMHUB_APP_ENV" required:"true"`
	Port         string `envconfig:"TEAMHUB_APP_PORT" default:"8080"`
	LogLevel     string `envconfig:"TEAMHUB_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"TEAMHUB_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"TEAMHUB_DB_DSN" required:"true"`
	Driver string `envconfig:"TEAMHUB_DB_DRIVER" default:"postgres"`

	MaxOpenConns    int           `envconfig:"TEAMHUB_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"TEAMHUB_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"TEAMHUB_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"TEAMHUB_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"TEAMHUB_REDIS_URL"`
	Address      string        `envconfig:"TEAMHUB_REDIS_ADDR"`
	Password     string        `envconfig:"TEAMHUB_REDIS_PASSWORD"`
	DB           int           `envconfig:"TEAMHUB_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"TEAMHUB_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"TEAMHUB_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"TEAMHUB_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"TEAMHUB_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"TEAMHUB_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"TEAMHUB_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"TEAMHUB_JWT_ISSUER" default:"teamhub"`
	ExpirationMinutes int    `envconfig:"TEAMHUB_JWT_EXPIRATION_MINUTES" default:"10080"`
}

// AdminConfig seeds the bootstrap admin account on startup.
type AdminConfig struct {
	Login    string `envconfig:"TEAMHUB_ADMIN_LOGIN" required:"true"`
	Password string `envconfig:"TEAMHUB_ADMIN_PASSWORD" required:"true"`
}

// PushConfig carries the VAPID key pair and delivery knobs for web push.
type PushConfig struct {
	VAPIDPublicKey  string        `envconfig:"TEAMHUB_VAPID_PUBLIC_KEY" required:"true"`
	VAPIDPrivateKey string        `envconfig:"TEAMHUB_VAPID_PRIVATE_KEY" required:"true"`
	Subscriber      string        `envconfig:"TEAMHUB_PUSH_SUBSCRIBER" default:"admin@velorie.pl"`
	TTL             time.Duration `envconfig:"TEAMHUB_PUSH_TTL" default:"24h"`
	Timeout         time.Duration `envconfig:"TEAMHUB_PUSH_TIMEOUT" default:"10s"`
}

// CronConfig controls the deadline scanner cadence. The scan interval must
// stay below the narrowest crossing window (one hour for the 24h threshold)
// or a due date can slip between two scans unnoticed.
type CronConfig struct {
	Interval time.Duration `envconfig:"TEAMHUB_CRON_INTERVAL" default:"30m"`
	LockTTL  time.Duration `envconfig:"TEAMHUB_CRON_LOCK_TTL" default:"25m"`
}

const narrowestCrossingWindow = time.Hour

func (c CronConfig) validate() error {
	if c.Interval <= 0 {
		return fmt.Errorf("cron interval must be positive")
	}
	if c.Interval >= narrowestCrossingWindow {
		return fmt.Errorf("cron interval %s must be shorter than the 1h deadline window", c.Interval)
	}
	return nil
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"TEAMHUB_AUTO_MIGRATE" default:"false"`
}
