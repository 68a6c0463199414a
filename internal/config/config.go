package config

import (
	"fmt"
	"net/url"
	"time"

	pkgconfig "github.com/amritage/age-fabric-shop-admin-panel/pkg/config"
	"github.com/amritage/age-fabric-shop-admin-panel/pkg/database"
	"github.com/amritage/age-fabric-shop-admin-panel/pkg/tracing"
)

// ServiceName identifies this service in logs, metrics, traces and events.
const ServiceName = "catalog-admin"

// Media backends.
const (
	MediaBackendMemory = "memory"
	MediaBackendMinio  = "minio"
)

// Config holds all configuration for the catalog admin service.
type Config struct {
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`

	// HTTP server
	HTTPPort           int      `env:"HTTP_PORT" envDefault:"8080"`
	CORSAllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envDefault:"*" envSeparator:","`
	AdminCookieName    string   `env:"ADMIN_COOKIE_NAME" envDefault:"admin"`
	RateLimitRPS       float64  `env:"RATE_LIMIT_RPS" envDefault:"20"`
	RateLimitBurst     int      `env:"RATE_LIMIT_BURST" envDefault:"40"`

	// AdminJWTSecret verifies admin tokens. When empty, drafts are keyed by
	// a digest of the token instead of its subject.
	AdminJWTSecret string `env:"ADMIN_JWT_SECRET"`

	// Catalog backend. No default: every call is refused until it is set.
	APIBaseURL             string        `env:"API_BASE_URL"`
	BackendTimeout         time.Duration `env:"BACKEND_TIMEOUT" envDefault:"15s"`
	BackendMaxRetries      int           `env:"BACKEND_MAX_RETRIES" envDefault:"0"`
	OptionFetchConcurrency int           `env:"OPTION_FETCH_CONCURRENCY" envDefault:"4"`

	// Redis (drafts, handoffs, wizard sessions)
	RedisHost     string `env:"REDIS_HOST" envDefault:"localhost"`
	RedisPort     int    `env:"REDIS_PORT" envDefault:"6379"`
	RedisPassword string `env:"REDIS_PASSWORD" envDefault:""`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`

	DraftTTL   time.Duration `env:"DRAFT_TTL" envDefault:"168h"`
	HandoffTTL time.Duration `env:"HANDOFF_TTL" envDefault:"1h"`

	// PostgreSQL audit log
	AuditEnabled     bool   `env:"AUDIT_ENABLED" envDefault:"false"`
	PostgresHost     string `env:"POSTGRES_HOST" envDefault:"localhost"`
	PostgresPort     int    `env:"POSTGRES_PORT" envDefault:"5432"`
	PostgresUser     string `env:"POSTGRES_USER" envDefault:"catalog_admin"`
	PostgresPassword string `env:"POSTGRES_PASSWORD" envDefault:""`
	PostgresDB       string `env:"POSTGRES_DB" envDefault:"catalog_admin"`
	PostgresSSLMode  string `env:"POSTGRES_SSL_MODE" envDefault:"disable"`
	DBMaxConns       int32  `env:"DB_MAX_CONNS" envDefault:"10"`
	DBMinConns       int32  `env:"DB_MIN_CONNS" envDefault:"1"`

	SlowQueryThresholdMs int `env:"LOG_SLOW_QUERY_MS" envDefault:"500"`

	// Kafka
	EventsEnabled bool     `env:"EVENTS_ENABLED" envDefault:"true"`
	KafkaBrokers  []string `env:"KAFKA_BROKERS" envDefault:"localhost:9092" envSeparator:","`

	// Media staging
	MediaBackend     string `env:"MEDIA_BACKEND" envDefault:"memory"`
	MediaMaxFileSize int64  `env:"MEDIA_MAX_FILE_SIZE" envDefault:"26214400"`
	MinioEndpoint    string `env:"MINIO_ENDPOINT" envDefault:""`
	MinioAccessKey   string `env:"MINIO_ACCESS_KEY" envDefault:""`
	MinioSecretKey   string `env:"MINIO_SECRET_KEY" envDefault:""`
	MinioBucket      string `env:"MINIO_BUCKET" envDefault:"intake-media"`
	MinioUseSSL      bool   `env:"MINIO_USE_SSL" envDefault:"false"`

	// OpenTelemetry
	OTELEnabled    bool    `env:"OTEL_ENABLED" envDefault:"false"`
	OTELEndpoint   string  `env:"OTEL_EXPORTER_OTLP_ENDPOINT" envDefault:"localhost:4318"`
	OTELSampleRate float64 `env:"OTEL_SAMPLE_RATE" envDefault:"1.0"`

	// Pprof debug endpoints (IP allowlist in CIDR notation)
	PprofAllowedCIDRs []string `env:"PPROF_ALLOWED_CIDRS" envDefault:"127.0.0.0/8,::1/128" envSeparator:","`
}

// Load reads configuration from the environment, after applying an optional
// .env file from the working directory.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := pkgconfig.Load(cfg, ".env"); err != nil {
		return nil, fmt.Errorf("load catalog-admin config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.HTTPPort < 1 || c.HTTPPort > 65535 {
		return fmt.Errorf("invalid HTTP port: %d", c.HTTPPort)
	}
	if c.APIBaseURL == "" {
		return fmt.Errorf("API_BASE_URL is required")
	}
	u, err := url.Parse(c.APIBaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("API_BASE_URL must be an absolute URL, got %q", c.APIBaseURL)
	}
	if c.RateLimitRPS < 0 || (c.RateLimitRPS > 0 && c.RateLimitBurst < 1) {
		return fmt.Errorf("RATE_LIMIT_BURST must be at least 1 when RATE_LIMIT_RPS is set")
	}
	if c.BackendMaxRetries < 0 {
		return fmt.Errorf("BACKEND_MAX_RETRIES must not be negative")
	}
	if c.OptionFetchConcurrency < 1 {
		return fmt.Errorf("OPTION_FETCH_CONCURRENCY must be at least 1")
	}
	if c.DraftTTL <= 0 || c.HandoffTTL <= 0 {
		return fmt.Errorf("DRAFT_TTL and HANDOFF_TTL must be positive")
	}
	if c.MediaMaxFileSize <= 0 {
		return fmt.Errorf("MEDIA_MAX_FILE_SIZE must be positive")
	}
	switch c.MediaBackend {
	case MediaBackendMemory:
	case MediaBackendMinio:
		if c.MinioEndpoint == "" || c.MinioAccessKey == "" || c.MinioSecretKey == "" {
			return fmt.Errorf("MINIO_ENDPOINT, MINIO_ACCESS_KEY and MINIO_SECRET_KEY are required when MEDIA_BACKEND=minio")
		}
	default:
		return fmt.Errorf("MEDIA_BACKEND must be %q or %q, got %q", MediaBackendMemory, MediaBackendMinio, c.MediaBackend)
	}
	if c.EventsEnabled && len(c.KafkaBrokers) == 0 {
		return fmt.Errorf("KAFKA_BROKERS is required when EVENTS_ENABLED=true")
	}
	if c.OTELSampleRate < 0 || c.OTELSampleRate > 1.0 {
		return fmt.Errorf("OTEL_SAMPLE_RATE must be between 0.0 and 1.0, got %f", c.OTELSampleRate)
	}
	return nil
}

// RedisConfig returns the Redis connection settings.
func (c *Config) RedisConfig() database.RedisConfig {
	rc := database.DefaultRedisConfig()
	rc.Host = c.RedisHost
	rc.Port = c.RedisPort
	rc.Password = c.RedisPassword
	rc.DB = c.RedisDB
	return rc
}

// PostgresConfig returns the audit database settings.
func (c *Config) PostgresConfig() database.PostgresConfig {
	pc := database.DefaultPostgresConfig()
	pc.Host = c.PostgresHost
	pc.Port = c.PostgresPort
	pc.User = c.PostgresUser
	pc.Password = c.PostgresPassword
	pc.DBName = c.PostgresDB
	pc.SSLMode = c.PostgresSSLMode
	pc.MaxConns = c.DBMaxConns
	pc.MinConns = c.DBMinConns
	return pc
}

// TracingConfig returns the OpenTelemetry settings.
func (c *Config) TracingConfig() tracing.Config {
	tc := tracing.DefaultConfig(ServiceName)
	tc.Environment = c.Environment
	tc.OTLPEndpoint = c.OTELEndpoint
	tc.SampleRate = c.OTELSampleRate
	tc.Enabled = c.OTELEnabled
	return tc
}

// SlowQueryThreshold converts LOG_SLOW_QUERY_MS to a duration.
func (c *Config) SlowQueryThreshold() time.Duration {
	return time.Duration(c.SlowQueryThresholdMs) * time.Millisecond
}
