package config

// EnvPrefix is empty because every variable carries its full TRACKWISE_ name.
const EnvPrefix = ""

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	DBDriverSQLite   = "sqlite"
	DBDriverPostgres = "postgres"
)

const (
	EnvAppEnv                = "TRACKWISE_APP_ENV"
	EnvPort                  = "TRACKWISE_APP_PORT"
	EnvPublicBaseURL         = "TRACKWISE_PUBLIC_BASE_URL"
	EnvDBDriver              = "TRACKWISE_DB_DRIVER"
	EnvDBDSN                 = "TRACKWISE_DB_DSN"
	EnvDBPath                = "TRACKWISE_DB_PATH"
	EnvRedisURL              = "TRACKWISE_REDIS_URL"
	EnvJWTSecret             = "TRACKWISE_JWT_SECRET"
	EnvJWTIssuer             = "TRACKWISE_JWT_ISSUER"
	EnvJWTExpMins            = "TRACKWISE_JWT_EXPIRATION_MINUTES"
	EnvAdminUsername         = "TRACKWISE_ADMIN_USERNAME"
	EnvAdminPassword         = "TRACKWISE_ADMIN_PASSWORD"
	EnvCORSOrigins           = "TRACKWISE_CORS_ORIGINS"
	EnvNovaEraBaseURL        = "TRACKWISE_NOVAERA_BASE_URL"
	EnvNovaEraTimeout        = "TRACKWISE_NOVAERA_TIMEOUT"
	EnvSettingsEncryptionKey = "TRACKWISE_SETTINGS_ENCRYPTION_KEY"
	EnvGCPProjectID          = "TRACKWISE_GCP_PROJECT_ID"
	EnvPubSubPaymentsTopic   = "TRACKWISE_PUBSUB_PAYMENTS_TOPIC"
)
