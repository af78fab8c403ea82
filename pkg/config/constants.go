package config

// EnvPrefix is passed to envconfig; explicit TEO_-prefixed tags on every
// field keep the variable names greppable.
const EnvPrefix = "TEO"

const (
	AppEnvDev  = "development"
	AppEnvProd = "production"
)

const (
	EnvDBDSN  = "TEO_DB_DSN"
	EnvDBHost = "TEO_DB_HOST"
	EnvDBUser = "TEO_DB_USER"
	EnvDBName = "TEO_DB_NAME"
)

// legacyDBEnvVars are required when TEO_DB_DSN is absent.
var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
