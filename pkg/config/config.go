package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	EnvPrefix = ""

	AppEnvDev  = "development"
	AppEnvProd = "production"
)

type Config struct {
	App          AppConfig
	DB           DBConfig
	Redis        RedisConfig
	JWT          JWTConfig
	Email        EmailConfig
	Outbox       OutboxConfig
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
	Env          string `envconfig:"WILLOW_APP_ENV" required:"true"`
	Port         string `envconfig:"WILLOW_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"WILLOW_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"WILLOW_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"WILLOW_DB_DSN"`
	Driver string `envconfig:"WILLOW_DB_DRIVER" default:"postgres"`

	Host     string `envconfig:"WILLOW_DB_HOST"`
	Port     int    `envconfig:"WILLOW_DB_PORT" default:"5432"`
	User     string `envconfig:"WILLOW_DB_USER"`
	Password string `envconfig:"WILLOW_DB_PASSWORD"`
	Name     string `envconfig:"WILLOW_DB_NAME"`
	SSLMode  string `envconfig:"WILLOW_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"WILLOW_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"WILLOW_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"WILLOW_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"WILLOW_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"WILLOW_REDIS_URL"`
	Address      string        `envconfig:"WILLOW_REDIS_ADDR"`
	Password     string        `envconfig:"WILLOW_REDIS_PASSWORD"`
	DB           int           `envconfig:"WILLOW_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"WILLOW_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"WILLOW_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"WILLOW_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"WILLOW_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"WILLOW_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"WILLOW_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"WILLOW_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"WILLOW_JWT_EXPIRATION_MINUTES" default:"60"`
}

// EmailConfig points at the external email dispatch collaborator.
type EmailConfig struct {
	BaseURL string        `envconfig:"WILLOW_EMAIL_BASE_URL"`
	Token   string        `envconfig:"WILLOW_EMAIL_TOKEN"`
	Timeout time.Duration `envconfig:"WILLOW_EMAIL_TIMEOUT" default:"5s"`
}

type OutboxConfig struct {
	BatchSize      int `envconfig:"WILLOW_OUTBOX_DISPATCH_BATCH_SIZE" default:"50"`
	PollIntervalMS int `envconfig:"WILLOW_OUTBOX_DISPATCH_POLL_MS" default:"500"`
	MaxAttempts    int `envconfig:"WILLOW_OUTBOX_MAX_ATTEMPTS" default:"10"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"WILLOW_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"WILLOW_AUTO_MIGRATE" default:"false"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	required := map[string]string{
		"WILLOW_DB_HOST": db.Host,
		"WILLOW_DB_USER": db.User,
		"WILLOW_DB_NAME": db.Name,
	}
	for _, key := range []string{"WILLOW_DB_HOST", "WILLOW_DB_USER", "WILLOW_DB_NAME"} {
		if required[key] == "" {
			missing = append(missing, key)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("either WILLOW_DB_DSN or %s are required", strings.Join(missing, ", "))
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
