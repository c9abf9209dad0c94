package config

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/SscSPs/btc_rate_service/internal/utils"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"golang.org/x/crypto/bcrypt"
)

// User store backends.
const (
	UserStoreFile     = "file"
	UserStorePostgres = "postgres"
	UserStoreRedis    = "redis"
)

// Config holds application configuration.
type Config struct {
	Port            string
	IsProduction    bool
	ShutdownTimeout time.Duration

	JWTSecret         string
	JWTExpiryDuration time.Duration // zero disables the exp claim
	JWTIssuer         string

	BcryptCost        int
	PasswordMinLength int

	UserStore      string
	UsersFile      string
	DatabaseURL    string
	MigrationsPath string
	RedisURL       string

	RateFetchTimeout  time.Duration
	RateMaxRedirects  int
	RateMaxStaleness  time.Duration // zero disables the staleness check
	BTCUSDURL         string
	BTCUSDInterval    time.Duration
	USDUAHURL         string
	USDUAHInterval    time.Duration
	USDUAHClassTokens string

	LoginRateLimit     string
	CreateRateLimit    string
	CORSAllowedOrigins []string

	PosthogAPIKey   string
	PosthogEndpoint string
}

// LoadConfig loads configuration from environment variables and .env file if present.
func LoadConfig() (*Config, error) {
	// Attempt to load .env file, ignore error if it doesn't exist
	_ = godotenv.Load()

	v := viper.New()
	v.SetDefault("PORT", "8000")
	v.SetDefault("IS_PRODUCTION", false)
	v.SetDefault("SHUTDOWN_TIMEOUT", "10s")
	v.SetDefault("JWT_SECRET", "")
	v.SetDefault("JWT_EXPIRY_DURATION", "1h")
	v.SetDefault("JWT_ISSUER", "btc-rate-service")
	v.SetDefault("BCRYPT_COST", bcrypt.DefaultCost)
	v.SetDefault("PASSWORD_MIN_LENGTH", 1)
	v.SetDefault("USER_STORE", UserStoreFile)
	v.SetDefault("USERS_FILE", "db.json")
	v.SetDefault("PGSQL_URL", "")
	v.SetDefault("MIGRATIONS_PATH", "file://migrations")
	v.SetDefault("REDIS_URL", "")
	v.SetDefault("RATE_FETCH_TIMEOUT", "10s")
	v.SetDefault("RATE_MAX_REDIRECTS", 10)
	v.SetDefault("RATE_MAX_STALENESS", "0")
	v.SetDefault("BTC_USD_URL", "https://www.bitstamp.net/api/ticker/btcusd/")
	v.SetDefault("BTC_USD_REFRESH_INTERVAL", "60s")
	v.SetDefault("USD_UAH_URL", "https://www.xe.com/currencyconverter/convert/?Amount=1&From=USD&To=UAH")
	v.SetDefault("USD_UAH_REFRESH_INTERVAL", "60s")
	v.SetDefault("USD_UAH_CLASS", "result__BigRate-sc-1bsijpp-1 iGrAod")
	v.SetDefault("LOGIN_RATE_LIMIT", "5-M")
	v.SetDefault("CREATE_RATE_LIMIT", "5-M")
	v.SetDefault("CORS_ALLOWED_ORIGINS", "*")
	v.SetDefault("POSTHOG_API_KEY", "")
	v.SetDefault("POSTHOG_ENDPOINT", "")

	// Defaults can be overridden by .env values, which in turn lose to real environment variables.
	v.AutomaticEnv()

	cfg := &Config{
		Port:              v.GetString("PORT"),
		IsProduction:      v.GetBool("IS_PRODUCTION"),
		JWTSecret:         v.GetString("JWT_SECRET"),
		JWTIssuer:         v.GetString("JWT_ISSUER"),
		BcryptCost:        v.GetInt("BCRYPT_COST"),
		PasswordMinLength: v.GetInt("PASSWORD_MIN_LENGTH"),
		UserStore:         strings.ToLower(strings.TrimSpace(v.GetString("USER_STORE"))),
		UsersFile:         v.GetString("USERS_FILE"),
		DatabaseURL:       v.GetString("PGSQL_URL"),
		MigrationsPath:    v.GetString("MIGRATIONS_PATH"),
		RedisURL:          v.GetString("REDIS_URL"),
		RateMaxRedirects:  v.GetInt("RATE_MAX_REDIRECTS"),
		BTCUSDURL:         v.GetString("BTC_USD_URL"),
		USDUAHURL:         v.GetString("USD_UAH_URL"),
		USDUAHClassTokens: v.GetString("USD_UAH_CLASS"),
		LoginRateLimit:    v.GetString("LOGIN_RATE_LIMIT"),
		CreateRateLimit:   v.GetString("CREATE_RATE_LIMIT"),
		PosthogAPIKey:     v.GetString("POSTHOG_API_KEY"),
		PosthogEndpoint:   v.GetString("POSTHOG_ENDPOINT"),
	}

	if cfg.Port == "" {
		cfg.Port = "8000"
		log.Printf("Warning: PORT environment variable not set. Defaulting to %s\n", cfg.Port)
	}

	cfg.ShutdownTimeout = durationOrDefault(v, "SHUTDOWN_TIMEOUT", 10*time.Second)
	cfg.JWTExpiryDuration = durationOrDefault(v, "JWT_EXPIRY_DURATION", time.Hour)
	cfg.RateFetchTimeout = durationOrDefault(v, "RATE_FETCH_TIMEOUT", 10*time.Second)
	cfg.RateMaxStaleness = durationOrDefault(v, "RATE_MAX_STALENESS", 0)
	cfg.BTCUSDInterval = durationOrDefault(v, "BTC_USD_REFRESH_INTERVAL", time.Minute)
	cfg.USDUAHInterval = durationOrDefault(v, "USD_UAH_REFRESH_INTERVAL", time.Minute)

	for _, origin := range strings.Split(v.GetString("CORS_ALLOWED_ORIGINS"), ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			cfg.CORSAllowedOrigins = append(cfg.CORSAllowedOrigins, origin)
		}
	}

	if cfg.JWTSecret == "" && !cfg.IsProduction {
		// Tokens signed with this key do not survive a restart.
		secret, err := utils.GenerateSecureRandomString(32)
		if err != nil {
			return nil, err
		}
		cfg.JWTSecret = secret
		log.Println("Warning: JWT_SECRET not set. Using a random per-process key. THIS IS NOT FOR PRODUCTION.")
	}

	if cfg.DatabaseURL == "" && cfg.UserStore == UserStorePostgres {
		log.Println("Warning: PGSQL_URL environment variable not set.")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate reports configuration that the service cannot start with.
func (c *Config) Validate() error {
	var errs []error
	if c.JWTSecret == "" {
		errs = append(errs, errors.New("JWT_SECRET must be set"))
	}
	if c.BcryptCost < bcrypt.MinCost || c.BcryptCost > bcrypt.MaxCost {
		errs = append(errs, fmt.Errorf("BCRYPT_COST must be between %d and %d, got %d", bcrypt.MinCost, bcrypt.MaxCost, c.BcryptCost))
	}
	if c.PasswordMinLength < 1 {
		errs = append(errs, fmt.Errorf("PASSWORD_MIN_LENGTH must be at least 1, got %d", c.PasswordMinLength))
	}
	switch c.UserStore {
	case UserStoreFile:
		if c.UsersFile == "" {
			errs = append(errs, errors.New("USERS_FILE must be set for the file user store"))
		}
	case UserStorePostgres:
		if c.DatabaseURL == "" {
			errs = append(errs, errors.New("PGSQL_URL must be set for the postgres user store"))
		}
	case UserStoreRedis:
		if c.RedisURL == "" {
			errs = append(errs, errors.New("REDIS_URL must be set for the redis user store"))
		}
	default:
		errs = append(errs, fmt.Errorf("USER_STORE %q is not one of file, postgres, redis", c.UserStore))
	}
	if c.BTCUSDInterval <= 0 || c.USDUAHInterval <= 0 {
		errs = append(errs, errors.New("rate refresh intervals must be positive"))
	}
	if c.RateFetchTimeout <= 0 {
		errs = append(errs, errors.New("RATE_FETCH_TIMEOUT must be positive"))
	}
	if c.RateMaxRedirects < 0 {
		errs = append(errs, errors.New("RATE_MAX_REDIRECTS must not be negative"))
	}
	return errors.Join(errs...)
}

func durationOrDefault(v *viper.Viper, key string, def time.Duration) time.Duration {
	raw := v.GetString(key)
	d, err := time.ParseDuration(raw)
	if err != nil || d < 0 {
		if raw != "" {
			log.Printf("Warning: Invalid value for %s ('%s'). Defaulting to %s.\n", key, raw, def.String())
		}
		return def
	}
	return d
}
