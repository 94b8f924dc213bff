package config

// EnvPrefix is passed to envconfig; every field tag carries the full variable name.
const EnvPrefix = "MARKETPLACE"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "production"

	DBDriverPostgres = "postgres"
	DBDriverSQLite   = "sqlite"

	CartPolicyIncrement = "increment"
	CartPolicyDuplicate = "duplicate"
)

const (
	EnvAppEnv                 = "MARKETPLACE_APP_ENV"
	EnvPort                   = "MARKETPLACE_APP_PORT"
	EnvLogLevel               = "MARKETPLACE_LOG_LEVEL"
	EnvDBDSN                  = "MARKETPLACE_DB_DSN"
	EnvDBDriver               = "MARKETPLACE_DB_DRIVER"
	EnvDBHost                 = "MARKETPLACE_DB_HOST"
	EnvDBPort                 = "MARKETPLACE_DB_PORT"
	EnvDBUser                 = "MARKETPLACE_DB_USER"
	EnvDBPassword             = "MARKETPLACE_DB_PASSWORD"
	EnvDBName                 = "MARKETPLACE_DB_NAME"
	EnvDBSSLMode              = "MARKETPLACE_DB_SSLMODE"
	EnvRedisURL               = "MARKETPLACE_REDIS_URL"
	EnvJWTSecret              = "MARKETPLACE_JWT_SECRET"
	EnvJWTIssuer              = "MARKETPLACE_JWT_ISSUER"
	EnvJWTExpMins             = "MARKETPLACE_JWT_EXPIRATION_MINUTES"
	EnvRefreshTokenTTLMinutes = "MARKETPLACE_REFRESH_TOKEN_TTL_MINUTES"
	EnvUseSQLite              = "MARKETPLACE_USE_SQLITE"
	EnvAutoMigrate            = "MARKETPLACE_AUTO_MIGRATE"
	EnvCartDuplicatePolicy    = "MARKETPLACE_CART_DUPLICATE_POLICY"
	EnvGCPProjectID           = "MARKETPLACE_GCP_PROJECT_ID"
	EnvPubSubDomainTopic      = "MARKETPLACE_PUBSUB_DOMAIN_TOPIC"
	EnvCronInterval           = "MARKETPLACE_CRON_INTERVAL"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
