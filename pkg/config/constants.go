package config

// EnvPrefix scopes every environment variable consumed by the service.
const EnvPrefix = "PESTILINK"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	EnvDBDSN  = "PESTILINK_DB_DSN"
	EnvDBHost = "PESTILINK_DB_HOST"
	EnvDBUser = "PESTILINK_DB_USER"
	EnvDBName = "PESTILINK_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
