package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App       AppConfig
	DB        DBConfig
	Redis     RedisConfig
	JWT       JWTConfig
	Password  PasswordConfig
	Cache     CacheConfig
	Cart      CartConfig
	Uploads   UploadsConfig
	Sendgrid  SendgridConfig
	Outbox    OutboxConfig
	Worker    WorkerConfig
	RateLimit AuthRateLimitConfig
	Bootstrap BootstrapConfig
	Features  FeatureFlagsConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"TEO_APP_ENV" required:"true"`
	Port         string `envconfig:"TEO_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"TEO_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"TEO_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"TEO_DB_DSN"`
	Driver string `envconfig:"TEO_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"TEO_DB_HOST"`
	LegacyPort     int    `envconfig:"TEO_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"TEO_DB_USER"`
	LegacyPassword string `envconfig:"TEO_DB_PASSWORD"`
	LegacyName     string `envconfig:"TEO_DB_NAME"`
	LegacySSLMode  string `envconfig:"TEO_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"TEO_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"TEO_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"TEO_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"TEO_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"TEO_REDIS_URL" required:"true"`
	PoolSize     int           `envconfig:"TEO_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"TEO_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"TEO_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"TEO_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"TEO_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"TEO_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"TEO_JWT_ISSUER" default:"teomanager"`
	ExpirationMinutes int    `envconfig:"TEO_JWT_EXPIRATION_MINUTES" default:"60"`
	SessionTTLMinutes int    `envconfig:"TEO_SESSION_TTL_MINUTES" default:"43200"`
}

// SessionTTL is the redis session lifetime. Sessions outlive the JWT so a
// token refresh can reuse the server-side state.
func (j JWTConfig) SessionTTL() time.Duration {
	if j.SessionTTLMinutes <= 0 {
		return 0
	}
	return time.Duration(j.SessionTTLMinutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB    uint32 `envconfig:"TEO_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        uint32 `envconfig:"TEO_ARGON_TIME" default:"3"`
	ArgonParallelism uint8  `envconfig:"TEO_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     uint32 `envconfig:"TEO_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      uint32 `envconfig:"TEO_ARGON_KEY_LEN" default:"32"`

	ResetTokenTTL time.Duration `envconfig:"TEO_PASSWORD_RESET_TOKEN_TTL" default:"1h"`
}

type CacheConfig struct {
	AdminMetricsTTL     time.Duration `envconfig:"TEO_CACHE_ADMIN_METRICS_TTL" default:"300s"`
	CompanyDashboardTTL time.Duration `envconfig:"TEO_CACHE_COMPANY_DASHBOARD_TTL" default:"120s"`
	CategorySummaryTTL  time.Duration `envconfig:"TEO_CACHE_CATEGORY_SUMMARY_TTL" default:"300s"`
}

type CartConfig struct {
	TTL time.Duration `envconfig:"TEO_CART_TTL" default:"336h"`
}

type UploadsConfig struct {
	Dir         string `envconfig:"TEO_UPLOADS_DIR" default:"uploads"`
	MaxImageMB  int    `envconfig:"TEO_UPLOADS_MAX_IMAGE_MB" default:"5"`
	MaxAttachMB int    `envconfig:"TEO_UPLOADS_MAX_ATTACHMENT_MB" default:"10"`
}

type SendgridConfig struct {
	APIKey      string        `envconfig:"TEO_SENDGRID_API_KEY"`
	DefaultFrom string        `envconfig:"TEO_SENDGRID_FROM_EMAIL" default:"no-reply@teomanager.app"`
	Timeout     time.Duration `envconfig:"TEO_SENDGRID_TIMEOUT" default:"10s"`
}

type OutboxConfig struct {
	BatchSize    int           `envconfig:"TEO_OUTBOX_BATCH_SIZE" default:"50"`
	PollInterval time.Duration `envconfig:"TEO_OUTBOX_POLL_INTERVAL" default:"5s"`
	MaxAttempts  int           `envconfig:"TEO_OUTBOX_MAX_ATTEMPTS" default:"8"`
}

type WorkerConfig struct {
	MetricsPort   string        `envconfig:"TEO_WORKER_METRICS_PORT" default:"9100"`
	SweepInterval time.Duration `envconfig:"TEO_WORKER_SWEEP_INTERVAL" default:"15m"`
}

type AuthRateLimitConfig struct {
	LoginWindow        time.Duration `envconfig:"TEO_RL_LOGIN_WINDOW" default:"5m"`
	LoginIPLimit       int           `envconfig:"TEO_RL_LOGIN_IP_LIMIT" default:"30"`
	LoginEmailLimit    int           `envconfig:"TEO_RL_LOGIN_EMAIL_LIMIT" default:"10"`
	RegisterWindow     time.Duration `envconfig:"TEO_RL_REGISTER_WINDOW" default:"1h"`
	RegisterIPLimit    int           `envconfig:"TEO_RL_REGISTER_IP_LIMIT" default:"20"`
	RegisterEmailLimit int           `envconfig:"TEO_RL_REGISTER_EMAIL_LIMIT" default:"5"`
}

type BootstrapConfig struct {
	AdminEmail    string `envconfig:"TEO_BOOTSTRAP_ADMIN_EMAIL" default:"admin@teomanager.app"`
	AdminPassword string `envconfig:"TEO_BOOTSTRAP_ADMIN_PASSWORD"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"TEO_AUTO_MIGRATE" default:"false"`
}

// ensureDSN assembles DSN from the discrete TEO_DB_* variables when the
// single-URL form is not provided. The discrete form predates TEO_DB_DSN and
// stays supported for existing deployments.
func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	legacyValues := map[string]string{
		EnvDBHost: db.LegacyHost,
		EnvDBUser: db.LegacyUser,
		EnvDBName: db.LegacyName,
	}
	for _, env := range legacyDBEnvVars {
		if legacyValues[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.LegacyUser)
	if db.LegacyPassword != "" {
		userInfo = url.UserPassword(db.LegacyUser, db.LegacyPassword)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.LegacyHost, db.LegacyPort),
		Path:   db.LegacyName,
	}

	if db.LegacySSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.LegacySSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
