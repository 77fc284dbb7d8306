package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App           AppConfig
	Service       ServiceConfig
	DB            DBConfig
	Redis         RedisConfig
	JWT           JWTConfig
	Password      PasswordConfig
	AuthRateLimit AuthRateLimitConfig
	Admin         AdminConfig
	CORS          CORSConfig
	Upload        UploadConfig
	Pagination    PaginationConfig
	NovaEra       NovaEraConfig
	Settings      SettingsConfig
	Reconcile     ReconcileConfig
	Cron          CronConfig
	FeatureFlags  FeatureFlagsConfig
	GCP           GCPConfig
	PubSub        PubSubConfig
	Outbox        OutboxConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	if err := cfg.Settings.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env           string `envconfig:"TRACKWISE_APP_ENV" default:"dev"`
	Port          string `envconfig:"TRACKWISE_APP_PORT" default:"3001"`
	LogLevel      string `envconfig:"TRACKWISE_LOG_LEVEL" default:"info"`
	LogWarnStack  bool   `envconfig:"TRACKWISE_LOG_WARN_STACK" default:"false"`
	PublicBaseURL string `envconfig:"TRACKWISE_PUBLIC_BASE_URL"`
	Version       string `envconfig:"TRACKWISE_APP_VERSION" default:"1.0.0"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

// BaseURL is the externally reachable origin used for default postback URLs.
func (a AppConfig) BaseURL() string {
	if base := strings.TrimRight(strings.TrimSpace(a.PublicBaseURL), "/"); base != "" {
		return base
	}
	return "http://localhost:" + a.Port
}

type ServiceConfig struct {
	Kind string `envconfig:"TRACKWISE_SERVICE_KIND" default:"api"`
}

type DBConfig struct {
	Driver string `envconfig:"TRACKWISE_DB_DRIVER" default:"sqlite"`
	DSN    string `envconfig:"TRACKWISE_DB_DSN"`
	Path   string `envconfig:"TRACKWISE_DB_PATH" default:"database.sqlite"`

	MaxOpenConns    int           `envconfig:"TRACKWISE_DB_MAX_OPEN_CONNS" default:"10"`
	MaxIdleConns    int           `envconfig:"TRACKWISE_DB_MAX_IDLE_CONNS" default:"5"`
	ConnMaxLifetime time.Duration `envconfig:"TRACKWISE_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"TRACKWISE_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

func (db DBConfig) IsSQLite() bool {
	return strings.EqualFold(db.Driver, DBDriverSQLite)
}

type RedisConfig struct {
	URL          string        `envconfig:"TRACKWISE_REDIS_URL"`
	Address      string        `envconfig:"TRACKWISE_REDIS_ADDR"`
	Password     string        `envconfig:"TRACKWISE_REDIS_PASSWORD"`
	DB           int           `envconfig:"TRACKWISE_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"TRACKWISE_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"TRACKWISE_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"TRACKWISE_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"TRACKWISE_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"TRACKWISE_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// Enabled reports whether any Redis endpoint was configured.
func (r RedisConfig) Enabled() bool {
	return strings.TrimSpace(r.URL) != "" || strings.TrimSpace(r.Address) != ""
}

type JWTConfig struct {
	Secret            string `envconfig:"TRACKWISE_JWT_SECRET" default:"your-secret-key-change-in-production"`
	Issuer            string `envconfig:"TRACKWISE_JWT_ISSUER" default:"trackwise"`
	ExpirationMinutes int    `envconfig:"TRACKWISE_JWT_EXPIRATION_MINUTES" default:"1440"`
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"TRACKWISE_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"TRACKWISE_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"TRACKWISE_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"TRACKWISE_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"TRACKWISE_ARGON_KEY_LEN" default:"32"`
}

type AuthRateLimitConfig struct {
	LoginWindow  time.Duration `envconfig:"TRACKWISE_AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginIPLimit int           `envconfig:"TRACKWISE_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
}

type AdminConfig struct {
	Username string `envconfig:"TRACKWISE_ADMIN_USERNAME" default:"admin"`
	Password string `envconfig:"TRACKWISE_ADMIN_PASSWORD" default:"admin123"`
}

type CORSConfig struct {
	Origins []string `envconfig:"TRACKWISE_CORS_ORIGINS" default:"http://localhost:8080,http://localhost:4173"`
}

type UploadConfig struct {
	MaxBytes          int64    `envconfig:"TRACKWISE_UPLOAD_MAX_BYTES" default:"10485760"`
	AllowedExtensions []string `envconfig:"TRACKWISE_UPLOAD_ALLOWED_EXTENSIONS" default:".csv"`
}

type PaginationConfig struct {
	DefaultLimit int `envconfig:"TRACKWISE_PAGINATION_DEFAULT_LIMIT" default:"10"`
	MaxLimit     int `envconfig:"TRACKWISE_PAGINATION_MAX_LIMIT" default:"100"`
}

type NovaEraConfig struct {
	BaseURL        string        `envconfig:"TRACKWISE_NOVAERA_BASE_URL" default:"https://api.novaera-pagamentos.com/api/v1"`
	Timeout        time.Duration `envconfig:"TRACKWISE_NOVAERA_TIMEOUT" default:"15s"`
	ProductImage   string        `envconfig:"TRACKWISE_NOVAERA_PRODUCT_IMAGE" default:"https://seusite.com.br/imagens/produto.png"`
	WebhookDedupe  time.Duration `envconfig:"TRACKWISE_NOVAERA_WEBHOOK_DEDUPE_TTL" default:"24h"`
	PixExpiresDays int           `envconfig:"TRACKWISE_NOVAERA_PIX_EXPIRES_DAYS" default:"1"`
}

// SettingsConfig controls how provider credentials are stored at rest.
type SettingsConfig struct {
	EncryptionKey string `envconfig:"TRACKWISE_SETTINGS_ENCRYPTION_KEY"`
}

func (s SettingsConfig) validate() error {
	if s.EncryptionKey == "" {
		return nil
	}
	if len(s.EncryptionKey) < 16 {
		return fmt.Errorf("%s must be at least 16 characters", EnvSettingsEncryptionKey)
	}
	return nil
}

type ReconcileConfig struct {
	MinAge    time.Duration `envconfig:"TRACKWISE_RECONCILE_MIN_AGE" default:"10m"`
	BatchSize int           `envconfig:"TRACKWISE_RECONCILE_BATCH_SIZE" default:"50"`
}

type CronConfig struct {
	Interval time.Duration `envconfig:"TRACKWISE_CRON_INTERVAL" default:"5m"`
	LockTTL  time.Duration `envconfig:"TRACKWISE_CRON_LOCK_TTL" default:"10m"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"TRACKWISE_AUTO_MIGRATE" default:"true"`
}

type GCPConfig struct {
	ProjectID string `envconfig:"TRACKWISE_GCP_PROJECT_ID"`
}

type PubSubConfig struct {
	PaymentsTopic string `envconfig:"TRACKWISE_PUBSUB_PAYMENTS_TOPIC" default:"trackwise-payment-events"`
}

type OutboxConfig struct {
	BatchSize      int `envconfig:"TRACKWISE_OUTBOX_PUBLISH_BATCH_SIZE" default:"50"`
	PollIntervalMS int `envconfig:"TRACKWISE_OUTBOX_PUBLISH_POLL_MS" default:"500"`
	MaxAttempts    int `envconfig:"TRACKWISE_OUTBOX_MAX_ATTEMPTS" default:"10"`
	RetentionDays  int `envconfig:"TRACKWISE_OUTBOX_RETENTION_DAYS" default:"7"`
}

func (db *DBConfig) ensureDSN() error {
	switch strings.ToLower(strings.TrimSpace(db.Driver)) {
	case DBDriverSQLite:
		db.Driver = DBDriverSQLite
		if db.DSN != "" {
			return nil
		}
		if db.Path == "" {
			return fmt.Errorf("either %s or %s is required for sqlite", EnvDBDSN, EnvDBPath)
		}
		q := url.Values{}
		q.Set("_foreign_keys", "on")
		q.Set("_busy_timeout", "5000")
		db.DSN = "file:" + db.Path + "?" + q.Encode()
		return nil
	case DBDriverPostgres:
		db.Driver = DBDriverPostgres
		if db.DSN == "" {
			return fmt.Errorf("%s is required for postgres", EnvDBDSN)
		}
		return nil
	default:
		return fmt.Errorf("unsupported %s %q", EnvDBDriver, db.Driver)
	}
}
