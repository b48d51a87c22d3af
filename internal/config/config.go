package config

import (
	"errors" // Sentinel error checks
	"time"   // Durations

	"github.com/joeshaw/envdecode" // Environment decoding into structs
	"github.com/joho/godotenv"     // For loading .env files
)

// Store drivers
const (
	DriverMySQL = "mysql" // GORM + MySQL
	DriverFile  = "file"  // Single JSON snapshot file
)

// Config holds the application configuration
type Config struct {
	AppPort        string        `env:"APP_PORT,default=8080"`                // Application port
	IsProd         bool          `env:"IS_PROD,default=false"`                // Is production environment
	TrustedProxies []string      `env:"TRUSTED_PROXIES,default=127.0.0.1"`    // Proxies allowed to set client IP headers
	StoreDriver    string        `env:"STORE_DRIVER"`                         // mysql or file, derived from DB_HOST when empty
	DataFile       string        `env:"DATA_FILE,default=data/users.json"`    // Snapshot path for the file driver
	DBUser         string        `env:"DB_USER"`                              // Database user
	DBPassword     string        `env:"DB_PASSWORD"`                          // Database password
	DBHost         string        `env:"DB_HOST"`                              // Database host
	DBPort         string        `env:"DB_PORT,default=3306"`                 // Database port
	DBName         string        `env:"DB_NAME,default=yield_wallet"`         // Database name
	DBMaxOpenConns int           `env:"DB_MAX_OPEN_CONNS,default=25"`         // Pool size
	DBMaxIdleConns int           `env:"DB_MAX_IDLE_CONNS,default=5"`          // Idle pool size
	JWTSecret      string        `env:"JWT_SECRET"`                           // JWT secret key
	TokenTTL       time.Duration `env:"TOKEN_TTL,default=24h"`                // Lifetime of issued tokens
	RedisAddr      string        `env:"REDIS_ADDR"`                           // Redis server address, caching disabled when empty
	RedisPass      string        `env:"REDIS_PASS"`                           // Redis password
	RedisDB        int           `env:"REDIS_DB,default=0"`                   // Redis database number
	CacheTTL       time.Duration `env:"CACHE_TTL,default=60s"`                // Lifetime of cached responses
	AdminEmail     string        `env:"ADMIN_EMAIL"`                          // Seeded admin account
	AdminPassword  string        `env:"ADMIN_PASSWORD"`                       // Seeded admin password
	PlansFile      string        `env:"PLANS_FILE,default=config/plans.yaml"` // Plan catalog
	SignupBonus    float64       `env:"SIGNUP_BONUS,default=0"`               // Credited once at registration
	ReferralReward float64       `env:"REFERRAL_REWARD,default=50"`           // Credited to the referrer
	MinDeposit     float64       `env:"MIN_DEPOSIT,default=100"`              // Smallest accepted deposit
	MinWithdrawal  float64       `env:"MIN_WITHDRAWAL,default=100"`           // Smallest accepted withdrawal
	RateLimitRPS   float64       `env:"RATE_LIMIT_RPS,default=1"`             // Sustained requests per second per user on claim/bet routes
	RateLimitBurst int           `env:"RATE_LIMIT_BURST,default=3"`           // Burst size of the limiter
	ReconcileCron  string        `env:"RECONCILE_SCHEDULE,default=@every 1h"` // Cron spec of the reconciliation job
}

// ErrMissingSecret is returned when no JWT secret is configured
var ErrMissingSecret = errors.New("JWT_SECRET is required")

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	_ = godotenv.Load() // Load .env file if present
	var cfg Config
	// Decode env vars, defaults alone are a valid configuration
	if err := envdecode.Decode(&cfg); err != nil && !errors.Is(err, envdecode.ErrNoTargetFieldsAreSet) {
		return nil, err
	}
	// Pick the store once, at start-up
	if cfg.StoreDriver == "" {
		cfg.StoreDriver = DriverFile // Local JSON file by default
		if cfg.DBHost != "" {
			cfg.StoreDriver = DriverMySQL // A database host selects MySQL
		}
	}
	if cfg.JWTSecret == "" {
		return nil, ErrMissingSecret
	}
	return &cfg, nil
}
