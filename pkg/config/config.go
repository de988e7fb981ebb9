package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	// EnvPrefix namespaces every environment variable the service reads.
	EnvPrefix = "SILVERGRAIN"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvDBDSN  = "SILVERGRAIN_DB_DSN"
	EnvDBHost = "SILVERGRAIN_DB_HOST"
	EnvDBUser = "SILVERGRAIN_DB_USER"
	EnvDBName = "SILVERGRAIN_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}

type Config struct {
	App          AppConfig
	DB           DBConfig
	Redis        RedisConfig
	JWT          JWTConfig
	Password     PasswordConfig
	Storage      StorageConfig
	Media        MediaConfig
	Guest        GuestConfig
	ContactLimit ContactRateLimitConfig
	FeatureFlags FeatureFlagsConfig
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
	Env          string `envconfig:"SILVERGRAIN_APP_ENV" required:"true"`
	Port         string `envconfig:"SILVERGRAIN_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"SILVERGRAIN_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"SILVERGRAIN_LOG_WARN_STACK" default:"false"`
	CORSOrigins  string `envconfig:"SILVERGRAIN_CORS_ORIGINS" default:"*"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

// CORSOriginList splits the configured origins into a slice chi's cors
// middleware accepts.
func (a AppConfig) CORSOriginList() []string {
	parts := strings.Split(a.CORSOrigins, ",")
	origins := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			origins = append(origins, trimmed)
		}
	}
	if len(origins) == 0 {
		return []string{"*"}
	}
	return origins
}

type DBConfig struct {
	DSN    string `envconfig:"SILVERGRAIN_DB_DSN"`
	Driver string `envconfig:"SILVERGRAIN_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"SILVERGRAIN_DB_HOST"`
	LegacyPort     int    `envconfig:"SILVERGRAIN_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"SILVERGRAIN_DB_USER"`
	LegacyPassword string `envconfig:"SILVERGRAIN_DB_PASSWORD"`
	LegacyName     string `envconfig:"SILVERGRAIN_DB_NAME"`
	LegacySSLMode  string `envconfig:"SILVERGRAIN_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"SILVERGRAIN_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"SILVERGRAIN_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"SILVERGRAIN_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"SILVERGRAIN_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"SILVERGRAIN_REDIS_URL" required:"true"`
	Address      string        `envconfig:"SILVERGRAIN_REDIS_ADDR"`
	Password     string        `envconfig:"SILVERGRAIN_REDIS_PASSWORD"`
	DB           int           `envconfig:"SILVERGRAIN_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"SILVERGRAIN_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"SILVERGRAIN_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"SILVERGRAIN_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"SILVERGRAIN_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"SILVERGRAIN_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"SILVERGRAIN_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"SILVERGRAIN_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"SILVERGRAIN_JWT_EXPIRATION_MINUTES" required:"true"`
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"SILVERGRAIN_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"SILVERGRAIN_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"SILVERGRAIN_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"SILVERGRAIN_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"SILVERGRAIN_ARGON_KEY_LEN" default:"32"`
}

// StorageConfig targets any S3-compatible endpoint. PathStyle must be true
// for most non-AWS providers (MinIO, Backblaze behind custom domains, ...).
type StorageConfig struct {
	Endpoint      string `envconfig:"SILVERGRAIN_STORAGE_ENDPOINT"`
	Region        string `envconfig:"SILVERGRAIN_STORAGE_REGION" default:"us-east-1"`
	Bucket        string `envconfig:"SILVERGRAIN_STORAGE_BUCKET" required:"true"`
	AccessKey     string `envconfig:"SILVERGRAIN_STORAGE_ACCESS_KEY"`
	SecretKey     string `envconfig:"SILVERGRAIN_STORAGE_SECRET_KEY"`
	PublicBaseURL string `envconfig:"SILVERGRAIN_STORAGE_PUBLIC_BASE_URL" required:"true"`
	PathStyle     bool   `envconfig:"SILVERGRAIN_STORAGE_PATH_STYLE" default:"true"`
	KeyPrefix     string `envconfig:"SILVERGRAIN_STORAGE_KEY_PREFIX" default:"galleries"`
}

type MediaConfig struct {
	MaxUploadMB  int `envconfig:"SILVERGRAIN_MEDIA_MAX_UPLOAD_MB" default:"200"`
	ThumbMaxPx   int `envconfig:"SILVERGRAIN_MEDIA_THUMB_MAX_PX" default:"400"`
	MediumMaxPx  int `envconfig:"SILVERGRAIN_MEDIA_MEDIUM_MAX_PX" default:"1600"`
	JPEGQuality  int `envconfig:"SILVERGRAIN_MEDIA_JPEG_QUALITY" default:"85"`
	DeleteFanout int `envconfig:"SILVERGRAIN_MEDIA_DELETE_FANOUT" default:"8"`
}

// MaxUploadBytes returns the multipart memory/size ceiling in bytes.
func (m MediaConfig) MaxUploadBytes() int64 {
	if m.MaxUploadMB <= 0 {
		return 200 << 20
	}
	return int64(m.MaxUploadMB) << 20
}

type GuestConfig struct {
	SessionTTL       time.Duration `envconfig:"SILVERGRAIN_GUEST_SESSION_TTL" default:"24h"`
	AccessCodeLength int           `envconfig:"SILVERGRAIN_GUEST_ACCESS_CODE_LENGTH" default:"6"`
}

type ContactRateLimitConfig struct {
	Window  time.Duration `envconfig:"SILVERGRAIN_CONTACT_RATE_LIMIT_WINDOW" default:"1h"`
	IPLimit int           `envconfig:"SILVERGRAIN_CONTACT_RATE_LIMIT_IP_LIMIT" default:"5"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"SILVERGRAIN_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"SILVERGRAIN_AUTO_MIGRATE" default:"false"`
}

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
