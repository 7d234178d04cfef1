package config

// EnvPrefix scopes every environment variable this service reads.
const EnvPrefix = "inkshelf"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	EnvDBDSN  = "INKSHELF_DB_DSN"
	EnvDBHost = "INKSHELF_DB_HOST"
	EnvDBUser = "INKSHELF_DB_USER"
	EnvDBName = "INKSHELF_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
