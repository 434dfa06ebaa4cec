package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/shopspring/decimal"
)

const (
	EnvPrefix = "HAVENWOOD"

	AppEnvDev  = "development"
	AppEnvProd = "production"

	DriverSQLite = "sqlite"
	DriverRedis  = "redis"
	DriverMemory = "memory"
)

type Config struct {
	App      AppConfig
	Cart     CartConfig
	Persist  PersistConfig
	Redis    RedisConfig
	Commerce CommerceConfig
	Session  SessionConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Persist.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"HAVENWOOD_APP_ENV" default:"development"`
	Port         string `envconfig:"HAVENWOOD_APP_PORT" default:"4780"`
	LogLevel     string `envconfig:"HAVENWOOD_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"HAVENWOOD_LOG_WARN_STACK" default:"false"`

	// Extra origins allowed to call the local API, on top of the
	// built-in localhost dev origins. Comma separated.
	ExtraCORSOrigins []string `envconfig:"HAVENWOOD_CORS_ORIGINS"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

// CartConfig carries the pricing constants used when deriving cart totals.
// Monetary values are decimal strings so they survive env transport exactly.
type CartConfig struct {
	TaxRateRaw               string `envconfig:"HAVENWOOD_CART_TAX_RATE" default:"0.10"`
	FreeShippingThresholdRaw string `envconfig:"HAVENWOOD_CART_FREE_SHIPPING_THRESHOLD" default:"500"`
	FlatShippingFeeRaw       string `envconfig:"HAVENWOOD_CART_FLAT_SHIPPING_FEE" default:"49"`
}

func (c CartConfig) TaxRate() decimal.Decimal {
	return parseDecimal(c.TaxRateRaw, "0.10")
}

func (c CartConfig) FreeShippingThreshold() decimal.Decimal {
	return parseDecimal(c.FreeShippingThresholdRaw, "500")
}

func (c CartConfig) FlatShippingFee() decimal.Decimal {
	return parseDecimal(c.FlatShippingFeeRaw, "49")
}

// PersistConfig configures the local blob store and its debounced writer.
type PersistConfig struct {
	Driver         string        `envconfig:"HAVENWOOD_PERSIST_DRIVER" default:"sqlite"`
	SQLitePath     string        `envconfig:"HAVENWOOD_PERSIST_SQLITE_PATH" default:"havenwood.db"`
	DebounceWindow time.Duration `envconfig:"HAVENWOOD_PERSIST_DEBOUNCE_WINDOW" default:"150ms"`
	RetryBudget    int           `envconfig:"HAVENWOOD_PERSIST_RETRY_BUDGET" default:"3"`
	WriteTimeout   time.Duration `envconfig:"HAVENWOOD_PERSIST_WRITE_TIMEOUT" default:"5s"`
}

func (p PersistConfig) validate() error {
	switch p.NormalizedDriver() {
	case DriverSQLite, DriverRedis, DriverMemory:
		return nil
	default:
		return fmt.Errorf("unknown persist driver %q", p.Driver)
	}
}

// NormalizedDriver reports the persist driver in canonical lowercase form.
func (p PersistConfig) NormalizedDriver() string {
	return strings.ToLower(strings.TrimSpace(p.Driver))
}

type RedisConfig struct {
	URL          string        `envconfig:"HAVENWOOD_REDIS_URL"`
	Address      string        `envconfig:"HAVENWOOD_REDIS_ADDR"`
	Password     string        `envconfig:"HAVENWOOD_REDIS_PASSWORD"`
	DB           int           `envconfig:"HAVENWOOD_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"HAVENWOOD_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"HAVENWOOD_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"HAVENWOOD_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"HAVENWOOD_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"HAVENWOOD_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// CommerceConfig points the engine at the remote Havenwood commerce API.
type CommerceConfig struct {
	BaseURL     string        `envconfig:"HAVENWOOD_COMMERCE_BASE_URL" default:"https://api.havenwood.shop/v1"`
	Timeout     time.Duration `envconfig:"HAVENWOOD_COMMERCE_TIMEOUT" default:"10s"`
	PushTimeout time.Duration `envconfig:"HAVENWOOD_COMMERCE_PUSH_TIMEOUT" default:"15s"`
}

// SessionConfig governs how the locally stored session token is interpreted.
// Secret and issuer are optional: without them the token is an opaque
// credential and only its presence (plus JWT expiry when it parses as one)
// gates authenticated behavior.
type SessionConfig struct {
	JWTSecret string `envconfig:"HAVENWOOD_SESSION_JWT_SECRET"`
	JWTIssuer string `envconfig:"HAVENWOOD_SESSION_JWT_ISSUER"`
}

func parseDecimal(raw, fallback string) decimal.Decimal {
	if d, err := decimal.NewFromString(strings.TrimSpace(raw)); err == nil {
		return d
	}
	d, _ := decimal.NewFromString(fallback)
	return d
}
