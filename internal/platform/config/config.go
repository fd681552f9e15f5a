package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// Environment names understood by the logger and server.
const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// CapacityPolicy controls what happens when approvals exceed RequiredVolunteers.
type CapacityPolicy string

const (
	// CapacityAdvisory lets approvals exceed capacity; the target is informational.
	CapacityAdvisory CapacityPolicy = "advisory"
	// CapacityStrict rejects an approval that would exceed capacity.
	CapacityStrict CapacityPolicy = "strict"
)

// Server captures process level configuration.
type Server struct {
	Addr          string `validate:"required"`
	Environment   string `validate:"oneof=development production"`
	LogLevel      string `validate:"oneof=debug info warn error"`
	PublicBaseURL string `validate:"required,url"`
	AdminAPIToken string

	Auth      AuthConfig
	Google    GoogleConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	Kafka     KafkaConfig
	Uploads   UploadConfig
	Events    EventConfig
	RateLimit RateLimitConfig
}

type AuthConfig struct {
	JWTSigningKey string        `validate:"required,min=16"`
	SessionTTL    time.Duration `validate:"gt=0"`
	Issuer        string        `validate:"required"`
}

// GoogleConfig is optional; login routes answer 503 when ClientID is empty.
type GoogleConfig struct {
	ClientID     string
	ClientSecret string `validate:"required_with=ClientID"`
	RedirectURL  string `validate:"omitempty,url"`
}

// DatabaseConfig selects postgres stores when URL is set, in-memory otherwise.
type DatabaseConfig struct {
	URL             string
	MaxOpenConns    int `validate:"gte=0"`
	MaxIdleConns    int `validate:"gte=0"`
	ConnMaxLifetime time.Duration
}

// RedisConfig selects the redis revocation list when URL is set.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// KafkaConfig enables the audit outbox relay when Brokers is non-empty.
type KafkaConfig struct {
	Brokers    []string
	AuditTopic string `validate:"required_with=Brokers"`
}

type UploadConfig struct {
	Dir      string `validate:"required"`
	MaxBytes int64  `validate:"gt=0"`
}

type EventConfig struct {
	DiscoverRequireVerified bool
	CapacityPolicy          CapacityPolicy `validate:"oneof=advisory strict"`
}

// RateLimitConfig holds per-minute request limits per client class. Limits
// are shared across replicas when Redis is configured.
type RateLimitConfig struct {
	Disabled        bool
	AuthPerMinute   int `validate:"gt=0"`
	WritePerMinute  int `validate:"gt=0"`
	UploadPerMinute int `validate:"gt=0"`
	MaxTrackedKeys  int `validate:"gt=0"`
}

// IsProduction reports whether the server runs with production defaults.
func (s Server) IsProduction() bool {
	return s.Environment == EnvProduction
}

const devSigningKey = "dev-secret-key-change-in-production"

// Load reads an optional .env file, then builds and validates the config
// from environment variables.
func Load() (Server, error) {
	_ = godotenv.Load()
	cfg := FromEnv()
	if err := validator.New(validator.WithRequiredStructEnabled()).Struct(cfg); err != nil {
		return Server{}, fmt.Errorf("invalid configuration: %w", err)
	}
	if cfg.IsProduction() && cfg.Auth.JWTSigningKey == devSigningKey {
		return Server{}, fmt.Errorf("invalid configuration: JWT_SIGNING_KEY must be set in production")
	}
	return cfg, nil
}

// FromEnv builds a Server config from environment variables without validating it.
func FromEnv() Server {
	return Server{
		Addr:          getEnv("VOLUNTR_ADDR", ":8080"),
		Environment:   getEnv("VOLUNTR_ENV", EnvDevelopment),
		LogLevel:      strings.ToLower(getEnv("LOG_LEVEL", "info")),
		PublicBaseURL: strings.TrimRight(getEnv("PUBLIC_BASE_URL", "http://localhost:8080"), "/"),
		AdminAPIToken: os.Getenv("ADMIN_API_TOKEN"),
		Auth: AuthConfig{
			JWTSigningKey: getEnv("JWT_SIGNING_KEY", devSigningKey),
			SessionTTL:    getDuration("SESSION_TTL", 24*time.Hour),
			Issuer:        getEnv("JWT_ISSUER", "voluntr"),
		},
		Google: GoogleConfig{
			ClientID:     os.Getenv("GOOGLE_CLIENT_ID"),
			ClientSecret: os.Getenv("GOOGLE_CLIENT_SECRET"),
			RedirectURL:  os.Getenv("GOOGLE_REDIRECT_URL"),
		},
		Database: DatabaseConfig{
			URL:             os.Getenv("DATABASE_URL"),
			MaxOpenConns:    getInt("DATABASE_MAX_OPEN_CONNS", 20),
			MaxIdleConns:    getInt("DATABASE_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: getDuration("DATABASE_CONN_MAX_LIFETIME", 30*time.Minute),
		},
		Redis: RedisConfig{
			URL:          os.Getenv("REDIS_URL"),
			PoolSize:     getInt("REDIS_POOL_SIZE", 10),
			MinIdleConns: getInt("REDIS_MIN_IDLE_CONNS", 2),
			DialTimeout:  getDuration("REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  getDuration("REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: getDuration("REDIS_WRITE_TIMEOUT", 3*time.Second),
		},
		Kafka: KafkaConfig{
			Brokers:    splitList(os.Getenv("KAFKA_BROKERS")),
			AuditTopic: getEnv("KAFKA_AUDIT_TOPIC", "voluntr.audit"),
		},
		Uploads: UploadConfig{
			Dir:      getEnv("UPLOAD_DIR", "./uploads"),
			MaxBytes: int64(getInt("UPLOAD_MAX_BYTES", 5<<20)),
		},
		Events: EventConfig{
			DiscoverRequireVerified: getBool("DISCOVER_REQUIRE_VERIFIED", false),
			CapacityPolicy:          CapacityPolicy(strings.ToLower(getEnv("CAPACITY_POLICY", string(CapacityAdvisory)))),
		},
		RateLimit: RateLimitConfig{
			Disabled:        getBool("RATELIMIT_DISABLED", false),
			AuthPerMinute:   getInt("RATELIMIT_AUTH_PER_MINUTE", 20),
			WritePerMinute:  getInt("RATELIMIT_WRITE_PER_MINUTE", 60),
			UploadPerMinute: getInt("RATELIMIT_UPLOAD_PER_MINUTE", 10),
			MaxTrackedKeys:  getInt("RATELIMIT_MAX_KEYS", 10000),
		},
	}
}

func getEnv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) int {
	if v, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return v
	}
	return fallback
}

func getBool(key string, fallback bool) bool {
	if v, err := strconv.ParseBool(os.Getenv(key)); err == nil {
		return v
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	if v, err := time.ParseDuration(os.Getenv(key)); err == nil {
		return v
	}
	return fallback
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
