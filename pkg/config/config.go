package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	EnvPrefix = "vendaflow"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvAppEnv    = "VENDAFLOW_APP_ENV"
	EnvPort      = "VENDAFLOW_APP_PORT"
	EnvDBDSN     = "VENDAFLOW_DB_DSN"
	EnvDBHost    = "VENDAFLOW_DB_HOST"
	EnvDBUser    = "VENDAFLOW_DB_USER"
	EnvDBName    = "VENDAFLOW_DB_NAME"
	EnvRedisURL  = "VENDAFLOW_REDIS_URL"
	EnvJWTSecret = "VENDAFLOW_JWT_SECRET"
	EnvJWTIssuer = "VENDAFLOW_JWT_ISSUER"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}

type Config struct {
	App          AppConfig
	Service      ServiceConfig
	DB           DBConfig
	Redis        RedisConfig
	JWT          JWTConfig
	FeatureFlags FeatureFlagsConfig
	Pricing      PricingConfig
	Loyalty      LoyaltyConfig
	Stock        StockConfig
	Cron         CronConfig
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
	Env          string `envconfig:"VENDAFLOW_APP_ENV" required:"true"`
	Port         string `envconfig:"VENDAFLOW_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"VENDAFLOW_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"VENDAFLOW_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type ServiceConfig struct {
	Kind string `envconfig:"VENDAFLOW_SERVICE_KIND" default:"api"`
}

type DBConfig struct {
	DSN    string `envconfig:"VENDAFLOW_DB_DSN"`
	Driver string `envconfig:"VENDAFLOW_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"VENDAFLOW_DB_HOST"`
	LegacyPort     int    `envconfig:"VENDAFLOW_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"VENDAFLOW_DB_USER"`
	LegacyPassword string `envconfig:"VENDAFLOW_DB_PASSWORD"`
	LegacyName     string `envconfig:"VENDAFLOW_DB_NAME"`
	LegacySSLMode  string `envconfig:"VENDAFLOW_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"VENDAFLOW_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"VENDAFLOW_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"VENDAFLOW_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"VENDAFLOW_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"VENDAFLOW_REDIS_URL" required:"true"`
	Address      string        `envconfig:"VENDAFLOW_REDIS_ADDR"`
	Password     string        `envconfig:"VENDAFLOW_REDIS_PASSWORD"`
	DB           int           `envconfig:"VENDAFLOW_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"VENDAFLOW_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"VENDAFLOW_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"VENDAFLOW_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"VENDAFLOW_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"VENDAFLOW_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret string `envconfig:"VENDAFLOW_JWT_SECRET" required:"true"`
	Issuer string `envconfig:"VENDAFLOW_JWT_ISSUER" required:"true"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"VENDAFLOW_AUTO_MIGRATE" default:"false"`
}

// PricingConfig tunes how the settlement engine resolves discounts.
type PricingConfig struct {
	AllowStacking bool `envconfig:"VENDAFLOW_PRICING_ALLOW_STACKING" default:"true"`
	ClampPercent  bool `envconfig:"VENDAFLOW_PRICING_CLAMP_PERCENT" default:"true"`
}

// LoyaltyConfig governs post-sale reward coupon issuance.
type LoyaltyConfig struct {
	Enabled          bool  `envconfig:"VENDAFLOW_LOYALTY_ENABLED" default:"true"`
	ThresholdCents   int64 `envconfig:"VENDAFLOW_LOYALTY_THRESHOLD_CENTS" default:"5000"`
	UpgradeTierCents int64 `envconfig:"VENDAFLOW_LOYALTY_UPGRADE_TIER_CENTS" default:"10000"`
	BasePercent      int   `envconfig:"VENDAFLOW_LOYALTY_BASE_PERCENT" default:"10"`
	UpgradePercent   int   `envconfig:"VENDAFLOW_LOYALTY_UPGRADE_PERCENT" default:"15"`
	ExpiryDays       int   `envconfig:"VENDAFLOW_LOYALTY_EXPIRY_DAYS" default:"30"`
}

// ExpiryWindow returns the reward coupon validity window.
func (l LoyaltyConfig) ExpiryWindow() time.Duration {
	if l.ExpiryDays <= 0 {
		return 0
	}
	return time.Duration(l.ExpiryDays) * 24 * time.Hour
}

type StockConfig struct {
	LowStockThreshold int `envconfig:"VENDAFLOW_STOCK_LOW_THRESHOLD" default:"5"`
}

type CronConfig struct {
	TickInterval time.Duration `envconfig:"VENDAFLOW_CRON_TICK_INTERVAL" default:"1m"`
	LockTTL      time.Duration `envconfig:"VENDAFLOW_CRON_LOCK_TTL" default:"5m"`
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
