package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	EnvPrefix = "cardapio"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvDBDSN  = "CARDAPIO_DB_DSN"
	EnvDBHost = "CARDAPIO_DB_HOST"
	EnvDBUser = "CARDAPIO_DB_USER"
	EnvDBName = "CARDAPIO_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}

type Config struct {
	App           AppConfig
	DB            DBConfig
	Redis         RedisConfig
	JWT           JWTConfig
	Password      PasswordConfig
	AuthRateLimit AuthRateLimitConfig
	Loyalty       LoyaltyConfig
	Delivery      DeliveryConfig
	FeatureFlags  FeatureFlagsConfig
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
	Env          string `envconfig:"CARDAPIO_APP_ENV" required:"true"`
	Port         string `envconfig:"CARDAPIO_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"CARDAPIO_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"CARDAPIO_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"CARDAPIO_DB_DSN"`
	Driver string `envconfig:"CARDAPIO_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"CARDAPIO_DB_HOST"`
	LegacyPort     int    `envconfig:"CARDAPIO_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"CARDAPIO_DB_USER"`
	LegacyPassword string `envconfig:"CARDAPIO_DB_PASSWORD"`
	LegacyName     string `envconfig:"CARDAPIO_DB_NAME"`
	LegacySSLMode  string `envconfig:"CARDAPIO_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"CARDAPIO_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"CARDAPIO_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"CARDAPIO_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"CARDAPIO_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"CARDAPIO_REDIS_URL" required:"true"`
	Address      string        `envconfig:"CARDAPIO_REDIS_ADDR"`
	Password     string        `envconfig:"CARDAPIO_REDIS_PASSWORD"`
	DB           int           `envconfig:"CARDAPIO_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"CARDAPIO_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"CARDAPIO_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"CARDAPIO_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"CARDAPIO_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"CARDAPIO_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"CARDAPIO_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"CARDAPIO_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"CARDAPIO_JWT_EXPIRATION_MINUTES" default:"1440"`
}

// Expiration returns the configured access token TTL.
func (j JWTConfig) Expiration() time.Duration {
	if j.ExpirationMinutes <= 0 {
		return 0
	}
	return time.Duration(j.ExpirationMinutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"CARDAPIO_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"CARDAPIO_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"CARDAPIO_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"CARDAPIO_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"CARDAPIO_ARGON_KEY_LEN" default:"32"`
}

type AuthRateLimitConfig struct {
	LoginWindow     time.Duration `envconfig:"CARDAPIO_AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginEmailLimit int           `envconfig:"CARDAPIO_AUTH_RATE_LIMIT_LOGIN_EMAIL_LIMIT" default:"5"`
	LoginIPLimit    int           `envconfig:"CARDAPIO_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
}

// LoyaltyConfig drives point redemption math. PointValue is the monetary
// value of a single point as a decimal string so the default never carries
// float artifacts.
type LoyaltyConfig struct {
	PointValue string `envconfig:"CARDAPIO_LOYALTY_POINT_VALUE" default:"0.10"`
}

// DeliveryConfig provides the hardcoded fallbacks used when a tenant has no
// persisted delivery settings.
type DeliveryConfig struct {
	FallbackFlatFee       string `envconfig:"CARDAPIO_DELIVERY_FALLBACK_FLAT_FEE" default:"11.99"`
	FallbackFreeAbove     string `envconfig:"CARDAPIO_DELIVERY_FALLBACK_FREE_ABOVE" default:"150.00"`
	FallbackStoreAddress  string `envconfig:"CARDAPIO_DELIVERY_FALLBACK_STORE_ADDRESS" default:"Retirada no balcão"`
	CartSessionTTLMinutes int    `envconfig:"CARDAPIO_CART_SESSION_TTL_MINUTES" default:"10080"`
}

// CartSessionTTL returns how long an abandoned cart snapshot survives.
func (d DeliveryConfig) CartSessionTTL() time.Duration {
	if d.CartSessionTTLMinutes <= 0 {
		return 0
	}
	return time.Duration(d.CartSessionTTLMinutes) * time.Minute
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"CARDAPIO_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"CARDAPIO_AUTO_MIGRATE" default:"false"`
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
