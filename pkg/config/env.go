package config

const (
	EnvPrefix = "PHONESHOP"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"

	defaultSQLiteDSN = "file:phoneshop.db?_foreign_keys=on"
)

const (
	EnvAppEnv                 = "PHONESHOP_APP_ENV"
	EnvPort                   = "PHONESHOP_APP_PORT"
	EnvDBDSN                  = "PHONESHOP_DB_DSN"
	EnvDBHost                 = "PHONESHOP_DB_HOST"
	EnvDBUser                 = "PHONESHOP_DB_USER"
	EnvDBName                 = "PHONESHOP_DB_NAME"
	EnvRedisURL               = "PHONESHOP_REDIS_URL"
	EnvJWTSecret              = "PHONESHOP_JWT_SECRET"
	EnvJWTIssuer              = "PHONESHOP_JWT_ISSUER"
	EnvJWTExpMins             = "PHONESHOP_JWT_EXPIRATION_MINUTES"
	EnvRefreshTokenTTLMinutes = "PHONESHOP_REFRESH_TOKEN_TTL_MINUTES"
	EnvUseSQLite              = "PHONESHOP_USE_SQLITE"
	EnvSessionTTL             = "PHONESHOP_SESSION_TTL"
	EnvSendgridAPIKey         = "PHONESHOP_SENDGRID_API_KEY"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
