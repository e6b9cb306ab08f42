package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server      ServerConfig      `mapstructure:"server"`
	Database    DatabaseConfig    `mapstructure:"database"`
	Redis       RedisConfig       `mapstructure:"redis"`
	JWT         JWTConfig         `mapstructure:"jwt"`
	AES         AESConfig         `mapstructure:"aes"`
	Log         LogConfig         `mapstructure:"log"`
	Routing     RoutingConfig     `mapstructure:"routing"`
	RateLimit   RateLimitConfig   `mapstructure:"rate_limit"`
	Idempotency IdempotencyConfig `mapstructure:"idempotency"`
	CyberSource CyberSourceConfig `mapstructure:"cybersource"`
}

type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
	Mode string `mapstructure:"mode"` // debug, release, test
	Env  string `mapstructure:"env"`  // environment name surfaced on GET / (§4.10)
}

type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	DBName          string        `mapstructure:"dbname"`
	SSLMode         string        `mapstructure:"sslmode"`
	MaxConns        int32         `mapstructure:"max_conns"`
	MinConns        int32         `mapstructure:"min_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

// DSN returns the PostgreSQL connection string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.SSLMode,
	)
}

type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// Addr returns the Redis address string.
func (r RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

// JWTConfig backs the 3DS continuation token (service.JWTTokenService),
// repurposed from the teacher's merchant bearer-session secret (§9 Open
// Question, ports.TokenService). Expiry is loaded but not read by the token
// path: the orchestrator always issues continuation tokens for 15 minutes.
type JWTConfig struct {
	Secret string        `mapstructure:"secret"`
	Expiry time.Duration `mapstructure:"expiry"`
	Issuer string        `mapstructure:"issuer"`
}

// AESConfig backs the CryptoService sealing short-lived card tokens (§4.3,
// §6 "ENCRYPTION_KEY (bytes)").
type AESConfig struct {
	Key string `mapstructure:"key"` // 32-byte hex-encoded key for AES-256
}

type LogConfig struct {
	Level  string `mapstructure:"level"`  // debug, info, warn, error
	Pretty bool   `mapstructure:"pretty"` // human-readable output (dev only)
}

// RoutingConfig is the process-level fallback consulted by PickRoute (§4.7
// step 2b) when a merchant has no usable default adapter configured.
type RoutingConfig struct {
	DefaultAdapter string `mapstructure:"default_adapter"`
}

// Env adapts RoutingConfig to routing.Env. A method can't share a name with
// the DefaultAdapter field on the same type, hence this thin wrapper rather
// than a method directly on RoutingConfig.
func (r RoutingConfig) Env() RoutingEnv { return RoutingEnv{adapter: r.DefaultAdapter} }

// RoutingEnv implements routing.Env over a single configured adapter name.
type RoutingEnv struct{ adapter string }

func (e RoutingEnv) DefaultAdapter() string { return e.adapter }

// RateLimitConfig holds the §4.9 step 5 fixed-window defaults.
type RateLimitConfig struct {
	Max      int64         `mapstructure:"max"`
	WindowMS int64         `mapstructure:"window_ms"`
	Window   time.Duration `mapstructure:"-"`
}

// IdempotencyConfig holds the §4.9 step 6 cache TTL.
type IdempotencyConfig struct {
	TTLSeconds int           `mapstructure:"ttl_seconds"`
	TTL        time.Duration `mapstructure:"-"`
}

// CyberSourceConfig carries the HTTP-Signature credentials and endpoint for
// the C6 adapter (§4.6).
type CyberSourceConfig struct {
	MerchantID string `mapstructure:"merchant_id"`
	KeyID      string `mapstructure:"key_id"`
	SecretKey  string `mapstructure:"secret_key"` // base64, decoded to raw HMAC key
	BaseURL    string `mapstructure:"base_url"`
	Host       string `mapstructure:"host"`
}

// Load reads configuration from file and environment variables.
// Environment variables under the SPG_ prefix override file values for the
// ambient (server/database/redis/jwt/aes/log) sections, using the nested
// underscore convention (SPG_DATABASE_HOST, SPG_JWT_SECRET, ...). The
// domain-specific options named in spec §6 ("Configuration (recognized
// options)") are additionally bound to their literal unprefixed env var
// names so operators can set DEFAULT_ADAPTER, RATE_LIMIT_MAX,
// RATE_LIMIT_WINDOW_MS, IDEMPOTENCY_TTL_SECONDS, and ENCRYPTION_KEY
// directly, matching the spec's wire vocabulary rather than inventing a
// prefixed alias for them.
func Load(path string) (*Config, error) {
	v := viper.New()

	// Defaults
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "debug")
	v.SetDefault("server.env", "development")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.password", "postgres")
	v.SetDefault("database.dbname", "payment_gateway")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_conns", 20)
	v.SetDefault("database.min_conns", 5)
	v.SetDefault("database.conn_max_lifetime", "30m")
	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("jwt.secret", "")
	v.SetDefault("jwt.expiry", "24h")
	v.SetDefault("jwt.issuer", "payment-gateway")
	v.SetDefault("aes.key", "")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.pretty", false)
	v.SetDefault("routing.default_adapter", "mock")
	v.SetDefault("rate_limit.max", 60)
	v.SetDefault("rate_limit.window_ms", 60000)
	v.SetDefault("idempotency.ttl_seconds", 86400)
	v.SetDefault("cybersource.base_url", "https://apitest.cybersource.com")
	v.SetDefault("cybersource.host", "apitest.cybersource.com")

	// File config
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	// Environment variables: SPG_DATABASE_HOST -> database.host
	v.SetEnvPrefix("SPG")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// §6's recognized options, bound to their literal (unprefixed) names.
	_ = v.BindEnv("routing.default_adapter", "DEFAULT_ADAPTER")
	_ = v.BindEnv("rate_limit.max", "RATE_LIMIT_MAX")
	_ = v.BindEnv("rate_limit.window_ms", "RATE_LIMIT_WINDOW_MS")
	_ = v.BindEnv("idempotency.ttl_seconds", "IDEMPOTENCY_TTL_SECONDS")
	_ = v.BindEnv("aes.key", "ENCRYPTION_KEY")

	// Read config file (not required - env vars can suffice)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	cfg.RateLimit.Window = time.Duration(cfg.RateLimit.WindowMS) * time.Millisecond
	cfg.Idempotency.TTL = time.Duration(cfg.Idempotency.TTLSeconds) * time.Second

	return &cfg, nil
}
