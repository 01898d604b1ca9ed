package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/rifkidocs/headless-firebase-sub000/pkg/storage"
)

// Config holds all application configuration
type Config struct {
	// Server configuration
	Server ServerConfig

	// Storage configuration
	Storage storage.Config

	// Auth configuration
	Auth AuthConfig

	// Deletion configuration
	Deletion DeletionConfig

	// Rate limiting of admin routes
	RateLimit RateLimitConfig

	// Generated API documentation
	OpenAPI OpenAPIConfig

	// Audit trail of schema mutations
	Audit AuditConfig

	// Observability configuration
	Observability ObservabilityConfig
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host            string
	Port            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
	MaxBodyBytes    int64
	CORSOrigins     []string

	// Health/metrics server (separate port for k8s probes)
	HealthPort string
}

// Auth modes
const (
	AuthModeStatic = "static"
	AuthModeOIDC   = "oidc"
)

// AuthConfig selects how bearer tokens are verified
type AuthConfig struct {
	Mode string

	// Static mode: "subject:sha256hex" entries
	StaticTokens []string

	// OIDC mode
	OIDCIssuer   string
	OIDCClientID string
}

// DeletionConfig tunes the cascading deletion
type DeletionConfig struct {
	AssetConcurrency int
}

// RateLimitConfig limits admin route traffic per caller
type RateLimitConfig struct {
	Enabled           bool
	RequestsPerMinute int
	Burst             int

	// Distributed shares counters through Redis across replicas
	Distributed bool
	FailOpen    bool
}

// OpenAPIConfig holds the caller-controlled info of the generated document
type OpenAPIConfig struct {
	Version     string
	Description string
	ServerURL   string
}

// AuditConfig selects the audit sinks. Both may be enabled at once.
type AuditConfig struct {
	// Directory for JSON-lines audit files; empty disables the file sink
	Dir      string
	MaxSize  int64
	MaxFiles int

	// Postgres writes events to the audit_events table. Requires postgres storage.
	Postgres bool
}

// Enabled reports whether any audit sink is configured
func (a AuditConfig) Enabled() bool {
	return a.Dir != "" || a.Postgres
}

// ObservabilityConfig holds observability settings
type ObservabilityConfig struct {
	// Logging
	LogLevel  string
	LogFormat string

	// Metrics
	MetricsEnabled bool

	// OpenTelemetry
	OTelEnabled        bool
	OTelEndpoint       string
	OTelServiceName    string
	OTelServiceVersion string
	OTelEnvironment    string
	OTelInsecure       bool // Use insecure gRPC connection
	OTelSampleRatio    float64
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	cfg := &Config{
		Server:        loadServerConfig(),
		Storage:       loadStorageConfig(),
		Auth:          loadAuthConfig(),
		Deletion:      loadDeletionConfig(),
		RateLimit:     loadRateLimitConfig(),
		OpenAPI:       loadOpenAPIConfig(),
		Audit:         loadAuditConfig(),
		Observability: loadObservabilityConfig(),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// loadServerConfig loads server configuration from environment
func loadServerConfig() ServerConfig {
	return ServerConfig{
		Host:            getEnv("HEADLESS_HOST", "0.0.0.0"),
		Port:            getEnv("HEADLESS_PORT", "8080"),
		ReadTimeout:     getEnvDuration("HEADLESS_READ_TIMEOUT", 15*time.Second),
		WriteTimeout:    getEnvDuration("HEADLESS_WRITE_TIMEOUT", 5*time.Minute),
		IdleTimeout:     getEnvDuration("HEADLESS_IDLE_TIMEOUT", 60*time.Second),
		ShutdownTimeout: getEnvDuration("HEADLESS_SHUTDOWN_TIMEOUT", 30*time.Second),
		MaxBodyBytes:    getEnvInt64("HEADLESS_MAX_BODY_BYTES", 1<<20),
		CORSOrigins:     getEnvList("HEADLESS_CORS_ORIGINS"),
		HealthPort:      getEnv("HEADLESS_HEALTH_PORT", "9090"),
	}
}

// loadStorageConfig loads storage configuration from environment
func loadStorageConfig() storage.Config {
	cfg := storage.DefaultConfig()

	// Storage type
	if storageType := getEnv("HEADLESS_STORAGE_TYPE", ""); storageType != "" {
		cfg.Type = storageType
	}

	// Filesystem config
	if fsRoot := getEnv("HEADLESS_FILESYSTEM_ROOT", ""); fsRoot != "" {
		cfg.FilesystemRoot = fsRoot
	}
	if boltPath := getEnv("HEADLESS_BOLT_PATH", ""); boltPath != "" {
		cfg.BoltPath = boltPath
	}

	// PostgreSQL config
	if pgURL := getEnv("HEADLESS_POSTGRES_URL", ""); pgURL != "" {
		cfg.PostgresURL = pgURL
	}
	if maxConns := getEnvInt("HEADLESS_POSTGRES_MAX_CONNS", 0); maxConns > 0 {
		cfg.PostgresMaxConns = maxConns
	}
	if minConns := getEnvInt("HEADLESS_POSTGRES_MIN_CONNS", 0); minConns > 0 {
		cfg.PostgresMinConns = minConns
	}
	if timeout := getEnvDuration("HEADLESS_POSTGRES_TIMEOUT", 0); timeout > 0 {
		cfg.PostgresTimeout = timeout
	}

	// S3 config
	if s3Endpoint := getEnv("HEADLESS_S3_ENDPOINT", ""); s3Endpoint != "" {
		cfg.S3Endpoint = s3Endpoint
	}
	if s3Region := getEnv("HEADLESS_S3_REGION", ""); s3Region != "" {
		cfg.S3Region = s3Region
	}
	if s3Bucket := getEnv("HEADLESS_S3_BUCKET", ""); s3Bucket != "" {
		cfg.S3Bucket = s3Bucket
	}
	if s3AccessKey := getEnv("HEADLESS_S3_ACCESS_KEY", ""); s3AccessKey != "" {
		cfg.S3AccessKey = s3AccessKey
	}
	if s3SecretKey := getEnv("HEADLESS_S3_SECRET_KEY", ""); s3SecretKey != "" {
		cfg.S3SecretKey = s3SecretKey
	}
	if s3Prefix := getEnv("HEADLESS_S3_KEY_PREFIX", ""); s3Prefix != "" {
		cfg.S3KeyPrefix = s3Prefix
	}
	cfg.S3UsePathStyle = getEnvBool("HEADLESS_S3_USE_PATH_STYLE", cfg.S3UsePathStyle)

	// Batch limits
	if limit := getEnvInt("HEADLESS_DOCUMENT_BATCH_LIMIT", 0); limit > 0 {
		cfg.DocumentBatchLimit = limit
	}
	if limit := getEnvInt("HEADLESS_ASSET_BATCH_LIMIT", 0); limit > 0 {
		cfg.AssetBatchLimit = limit
	}

	// Redis config
	if redisURL := getEnv("HEADLESS_REDIS_URL", ""); redisURL != "" {
		cfg.RedisURL = redisURL
	}
	if redisPassword := getEnv("HEADLESS_REDIS_PASSWORD", ""); redisPassword != "" {
		cfg.RedisPassword = redisPassword
	}
	if redisDB := getEnvInt("HEADLESS_REDIS_DB", -1); redisDB >= 0 {
		cfg.RedisDB = redisDB
	}
	if redisMaxRetries := getEnvInt("HEADLESS_REDIS_MAX_RETRIES", 0); redisMaxRetries > 0 {
		cfg.RedisMaxRetries = redisMaxRetries
	}
	if redisPoolSize := getEnvInt("HEADLESS_REDIS_POOL_SIZE", 0); redisPoolSize > 0 {
		cfg.RedisPoolSize = redisPoolSize
	}

	// Cache config
	cfg.CacheEnabled = getEnvBool("HEADLESS_CACHE_ENABLED", cfg.CacheEnabled)
	if ttl := getEnvDuration("HEADLESS_CACHE_TTL", 0); ttl > 0 {
		cfg.CacheTTL = ttl
	}
	if l1CacheSize := getEnvInt("HEADLESS_L1_CACHE_SIZE", 0); l1CacheSize > 0 {
		cfg.L1CacheSize = l1CacheSize
	}

	return cfg
}

func loadAuthConfig() AuthConfig {
	return AuthConfig{
		Mode:         strings.ToLower(getEnv("HEADLESS_AUTH_MODE", AuthModeStatic)),
		StaticTokens: getEnvList("HEADLESS_AUTH_STATIC_TOKENS"),
		OIDCIssuer:   getEnv("HEADLESS_OIDC_ISSUER", ""),
		OIDCClientID: getEnv("HEADLESS_OIDC_CLIENT_ID", ""),
	}
}

func loadDeletionConfig() DeletionConfig {
	return DeletionConfig{
		AssetConcurrency: getEnvInt("HEADLESS_ASSET_DELETE_CONCURRENCY", 4),
	}
}

func loadRateLimitConfig() RateLimitConfig {
	return RateLimitConfig{
		Enabled:           getEnvBool("HEADLESS_RATE_LIMIT_ENABLED", true),
		RequestsPerMinute: getEnvInt("HEADLESS_RATE_LIMIT_PER_MINUTE", 30),
		Burst:             getEnvInt("HEADLESS_RATE_LIMIT_BURST", 5),
		Distributed:       getEnvBool("HEADLESS_RATE_LIMIT_DISTRIBUTED", false),
		FailOpen:          getEnvBool("HEADLESS_RATE_LIMIT_FAIL_OPEN", true),
	}
}

func loadOpenAPIConfig() OpenAPIConfig {
	return OpenAPIConfig{
		Version:     getEnv("HEADLESS_OPENAPI_VERSION", "1.0.0"),
		Description: getEnv("HEADLESS_OPENAPI_DESCRIPTION", ""),
		ServerURL:   getEnv("HEADLESS_OPENAPI_SERVER_URL", ""),
	}
}

func loadAuditConfig() AuditConfig {
	return AuditConfig{
		Dir:      getEnv("HEADLESS_AUDIT_DIR", ""),
		MaxSize:  getEnvInt64("HEADLESS_AUDIT_MAX_SIZE", 100*1024*1024),
		MaxFiles: getEnvInt("HEADLESS_AUDIT_MAX_FILES", 10),
		Postgres: getEnvBool("HEADLESS_AUDIT_POSTGRES", false),
	}
}

// loadObservabilityConfig loads observability configuration from environment
func loadObservabilityConfig() ObservabilityConfig {
	cfg := ObservabilityConfig{
		LogLevel:           parseLogLevel(getEnv("HEADLESS_LOG_LEVEL", "info")),
		LogFormat:          getEnv("HEADLESS_LOG_FORMAT", "json"),
		MetricsEnabled:     getEnvBool("HEADLESS_METRICS_ENABLED", true),
		OTelEnabled:        getEnvBool("HEADLESS_OTEL_ENABLED", false),
		OTelEndpoint:       getEnv("HEADLESS_OTEL_ENDPOINT", "localhost:4317"),
		OTelServiceName:    getEnv("HEADLESS_OTEL_SERVICE_NAME", "headless-cms"),
		OTelServiceVersion: getEnv("HEADLESS_OTEL_SERVICE_VERSION", "1.0.0"),
		OTelEnvironment:    getEnv("HEADLESS_OTEL_ENVIRONMENT", "production"),
		OTelInsecure:       getEnvBool("HEADLESS_OTEL_INSECURE", true),
		OTelSampleRatio:    getEnvFloat("HEADLESS_OTEL_SAMPLE_RATIO", 1),
	}

	return cfg
}

// DeleteObjects accepts at most this many keys per request
const maxS3DeleteKeys = 1000

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	// Validate server config
	if c.Server.Port == "" {
		return fmt.Errorf("server port is required")
	}
	if c.Server.HealthPort == "" {
		return fmt.Errorf("health port is required")
	}
	if c.Server.Port == c.Server.HealthPort {
		return fmt.Errorf("server port and health port must be different")
	}

	// Validate storage config based on type
	switch c.Storage.Type {
	case "filesystem":
		if c.Storage.FilesystemRoot == "" {
			return fmt.Errorf("filesystem root is required for filesystem storage")
		}
		if c.Storage.BoltPath == "" {
			return fmt.Errorf("bolt path is required for filesystem storage")
		}
	case "postgres":
		if c.Storage.PostgresURL == "" {
			return fmt.Errorf("postgres URL is required for postgres storage")
		}
	default:
		return fmt.Errorf("invalid storage type: %s (must be filesystem or postgres)", c.Storage.Type)
	}
	if c.Storage.AssetsEnabled() && c.Storage.S3Region == "" {
		return fmt.Errorf("S3 region is required when an S3 bucket is configured")
	}
	if c.Storage.DocumentBatchLimit <= 0 || c.Storage.AssetBatchLimit <= 0 {
		return fmt.Errorf("batch limits must be positive")
	}
	if c.Storage.AssetBatchLimit > maxS3DeleteKeys {
		return fmt.Errorf("asset batch limit %d exceeds the S3 DeleteObjects maximum of %d", c.Storage.AssetBatchLimit, maxS3DeleteKeys)
	}

	// Validate auth config
	switch c.Auth.Mode {
	case AuthModeStatic:
		if len(c.Auth.StaticTokens) == 0 {
			return fmt.Errorf("at least one static token is required for static auth")
		}
	case AuthModeOIDC:
		if c.Auth.OIDCIssuer == "" || c.Auth.OIDCClientID == "" {
			return fmt.Errorf("OIDC issuer and client id are required for oidc auth")
		}
	default:
		return fmt.Errorf("invalid auth mode: %s (must be static or oidc)", c.Auth.Mode)
	}

	if c.Deletion.AssetConcurrency <= 0 {
		return fmt.Errorf("asset delete concurrency must be positive")
	}

	if c.RateLimit.Enabled {
		if c.RateLimit.RequestsPerMinute <= 0 || c.RateLimit.Burst <= 0 {
			return fmt.Errorf("rate limit requests per minute and burst must be positive")
		}
		if c.RateLimit.Distributed && c.Storage.RedisURL == "" {
			return fmt.Errorf("redis URL is required for distributed rate limiting")
		}
	}

	if c.Audit.Dir != "" && (c.Audit.MaxSize <= 0 || c.Audit.MaxFiles <= 0) {
		return fmt.Errorf("audit max size and max files must be positive")
	}
	if c.Audit.Postgres && c.Storage.Type != "postgres" {
		return fmt.Errorf("postgres audit requires postgres storage")
	}

	switch c.Observability.LogFormat {
	case "json", "text":
	default:
		return fmt.Errorf("invalid log format: %s (must be json or text)", c.Observability.LogFormat)
	}

	// Validate OpenTelemetry config
	if c.Observability.OTelEnabled {
		if c.Observability.OTelEndpoint == "" {
			return fmt.Errorf("OpenTelemetry endpoint is required when OTel is enabled")
		}
		if c.Observability.OTelServiceName == "" {
			return fmt.Errorf("OpenTelemetry service name is required when OTel is enabled")
		}
		if r := c.Observability.OTelSampleRatio; r <= 0 || r > 1 {
			return fmt.Errorf("OpenTelemetry sample ratio must be in (0, 1]")
		}
	}

	return nil
}

// parseLogLevel normalises a log level name, falling back to info
func parseLogLevel(level string) string {
	parsed, err := logrus.ParseLevel(strings.ToLower(level))
	if err != nil {
		return logrus.InfoLevel.String()
	}
	return parsed.String()
}

// getEnv returns an environment variable value or a default
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvBool returns a boolean environment variable or a default
func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		return strings.ToLower(value) == "true" || value == "1"
	}
	return defaultValue
}

// getEnvFloat returns a float environment variable or a default
func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

// getEnvInt returns an integer environment variable or a default
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

// getEnvInt64 returns an int64 environment variable or a default
func getEnvInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intVal
		}
	}
	return defaultValue
}

// getEnvDuration returns a duration environment variable or a default
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// getEnvList splits a comma-separated environment variable, dropping blanks
func getEnvList(key string) []string {
	var out []string
	for _, part := range strings.Split(os.Getenv(key), ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
