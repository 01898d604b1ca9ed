// Package config loads application configuration from HEADLESS_* environment
// variables.
//
// # Configuration Structure
//
// Server settings:
//
//	HEADLESS_HOST="0.0.0.0"
//	HEADLESS_PORT="8080"
//	HEADLESS_HEALTH_PORT="9090"
//	HEADLESS_WRITE_TIMEOUT="5m"    # covers long cascading deletions
//	HEADLESS_CORS_ORIGINS="https://admin.example.com"
//
// Storage settings:
//
//	HEADLESS_STORAGE_TYPE="postgres"  # filesystem, postgres
//	HEADLESS_FILESYSTEM_ROOT="/var/headless/schemas"
//	HEADLESS_BOLT_PATH="/var/headless/documents.db"
//	HEADLESS_POSTGRES_URL="postgres://localhost/headless"
//	HEADLESS_S3_BUCKET="media"
//	HEADLESS_S3_KEY_PREFIX="uploads/"
//	HEADLESS_DOCUMENT_BATCH_LIMIT="500"
//	HEADLESS_ASSET_BATCH_LIMIT="100"
//
// Auth settings:
//
//	HEADLESS_AUTH_MODE="static"  # static, oidc
//	HEADLESS_AUTH_STATIC_TOKENS="ops:<sha256 hex>,ci:<sha256 hex>"
//	HEADLESS_OIDC_ISSUER="https://accounts.google.com"
//	HEADLESS_OIDC_CLIENT_ID="headless-admin"
//
// Cache and rate limiting:
//
//	HEADLESS_REDIS_URL="redis://localhost:6379"
//	HEADLESS_CACHE_TTL="10m"
//	HEADLESS_RATE_LIMIT_PER_MINUTE="30"
//	HEADLESS_RATE_LIMIT_DISTRIBUTED="true"
//
// Audit trail:
//
//	HEADLESS_AUDIT_DIR="/var/log/headless"
//	HEADLESS_AUDIT_MAX_FILES="10"
//	HEADLESS_AUDIT_POSTGRES="true"  # postgres storage only
//
// Observability settings:
//
//	HEADLESS_LOG_LEVEL="info"  # debug, info, warn, error
//	HEADLESS_LOG_FORMAT="json" # json, text
//	HEADLESS_OTEL_ENABLED="true"
//	HEADLESS_OTEL_ENDPOINT="otel-collector:4317"
//
// # Usage Example
//
//	cfg, err := config.LoadConfig()
//	if err != nil {
//		log.Fatal(err)
//	}
package config
