// Package config holds the content-ingestor service configuration.
package config

import (
	"errors"
	"time"

	infraconfig "github.com/jonesrussell/north-cloud/content-ingestor/infrastructure/config"
	"github.com/jonesrussell/north-cloud/content-ingestor/infrastructure/profiling"
	"github.com/jonesrussell/north-cloud/content-ingestor/internal/database"
	infraredis "github.com/jonesrussell/north-cloud/content-ingestor/infrastructure/redis"
)

// Persistence drivers.
const (
	DriverPostgres = "postgres"
	DriverSupabase = "supabase"
)

// Default configuration values.
const (
	defaultServiceName      = "content-ingestor"
	defaultServiceVersion   = "1.0.0"
	defaultServicePort      = 8095
	defaultReadTimeout      = 30 * time.Second
	defaultWriteTimeout     = 2 * time.Minute
	defaultWorkers          = 4
	defaultDriver           = DriverPostgres
	defaultDBHost           = "localhost"
	defaultDBPort           = "5432"
	defaultDBUser           = "postgres"
	defaultDBName           = "content_ingestor"
	defaultDBSSLMode        = "disable"
	defaultDBMaxConns       = 25
	defaultDBMaxIdleConns   = 5
	defaultPostTable        = "posts"
	defaultBucket           = "post-media"
	defaultMediaMaxBytes    = 10 << 20
	defaultUploadMaxBytes   = 32 << 20
	defaultRedisAddress     = "localhost:6379"
	defaultBreakerFailures  = 5
	defaultBreakerTimeout   = 30 * time.Second
	defaultLogLevel         = "info"
	defaultLogFormat        = "json"
	defaultMetricsPath      = "/metrics"
	defaultRedisEventStream = "content-ingestor:batches"
)

// Config holds all configuration for the content-ingestor service.
type Config struct {
	Service     ServiceConfig     `yaml:"service"`
	Logging     LoggingConfig     `yaml:"logging"`
	Persistence PersistenceConfig `yaml:"persistence"`
	Database    DatabaseConfig    `yaml:"database"`
	Supabase    SupabaseConfig    `yaml:"supabase"`
	Media       MediaConfig       `yaml:"media"`
	Ingest      IngestConfig      `yaml:"ingest"`
	Redis       RedisConfig       `yaml:"redis"`
	Auth        AuthConfig        `yaml:"auth"`
	CORS        CORSConfig        `yaml:"cors"`
	Profiling   profiling.Config  `yaml:"profiling"`
}

// ServiceConfig holds service-level configuration.
type ServiceConfig struct {
	Name           string        `yaml:"name"`
	Version        string        `yaml:"version"`
	Port           int           `env:"CONTENT_INGESTOR_PORT" yaml:"port"`
	Debug          bool          `env:"APP_DEBUG"             yaml:"debug"`
	ReadTimeout    time.Duration `yaml:"read_timeout"`
	WriteTimeout   time.Duration `yaml:"write_timeout"`
	MaxUploadBytes int64         `yaml:"max_upload_bytes"`
	MetricsPath    string        `yaml:"metrics_path"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level  string `env:"LOG_LEVEL"  yaml:"level"`
	Format string `env:"LOG_FORMAT" yaml:"format"`
}

// PersistenceConfig selects and guards the post store.
type PersistenceConfig struct {
	Driver           string        `env:"PERSISTENCE_DRIVER" yaml:"driver"`
	FailureThreshold int           `yaml:"failure_threshold"`
	OpenTimeout      time.Duration `yaml:"open_timeout"`
}

// DatabaseConfig holds database configuration.
type DatabaseConfig struct {
	Host           string `env:"POSTGRES_HOST"     yaml:"host"`
	Port           string `env:"POSTGRES_PORT"     yaml:"port"`
	User           string `env:"POSTGRES_USER"     yaml:"user"`
	Password       string `env:"POSTGRES_PASSWORD" yaml:"password"` //nolint:gosec // G117: DB connection config
	Database       string `env:"POSTGRES_DB"       yaml:"database"`
	SSLMode        string `env:"POSTGRES_SSLMODE"  yaml:"sslmode"`
	MaxConnections int    `yaml:"max_connections"`
	MaxIdleConns   int    `yaml:"max_idle_connections"`
}

// Connection returns the pool settings for database.NewPostgresConnection.
func (d DatabaseConfig) Connection() database.Config {
	return database.Config{
		Host:         d.Host,
		Port:         d.Port,
		User:         d.User,
		Password:     d.Password,
		DBName:       d.Database,
		SSLMode:      d.SSLMode,
		MaxOpenConns: d.MaxConnections,
		MaxIdleConns: d.MaxIdleConns,
	}
}

// SupabaseConfig holds the Supabase project settings.
type SupabaseConfig struct {
	URL       string `env:"SUPABASE_URL"              yaml:"url"`
	Key       string `env:"SUPABASE_SERVICE_ROLE_KEY" yaml:"key"` //nolint:gosec // G117: API credential
	PostTable string `yaml:"post_table"`
}

// Enabled reports whether Supabase credentials are present.
func (s SupabaseConfig) Enabled() bool {
	return s.URL != "" && s.Key != ""
}

// MediaConfig holds media upload settings.
type MediaConfig struct {
	Enabled  bool   `env:"MEDIA_ENABLED" yaml:"enabled"`
	Bucket   string `env:"MEDIA_BUCKET"  yaml:"bucket"`
	MaxBytes int    `yaml:"max_bytes"`
}

// IngestConfig holds orchestrator settings. Timezone names the location
// used for timestamps without an offset.
type IngestConfig struct {
	Workers  int    `env:"INGEST_WORKERS"  yaml:"workers"`
	Timezone string `env:"INGEST_TIMEZONE" yaml:"timezone"`
}

// Location resolves Timezone, defaulting to UTC.
func (i IngestConfig) Location() (*time.Location, error) {
	if i.Timezone == "" {
		return time.UTC, nil
	}
	return time.LoadLocation(i.Timezone)
}

// RedisConfig holds Redis configuration.
type RedisConfig struct {
	Enabled  bool   `env:"REDIS_ENABLED"  yaml:"enabled"`
	Address  string `env:"REDIS_ADDRESS"  yaml:"address"`
	Password string `env:"REDIS_PASSWORD" yaml:"password"` //nolint:gosec // G117: connection credential
	DB       int    `env:"REDIS_DB"       yaml:"db"`
	Stream   string `yaml:"stream"`
}

// Client returns the connection settings.
func (r RedisConfig) Client() infraredis.Config {
	return infraredis.Config{Address: r.Address, Password: r.Password, DB: r.DB}
}

// AuthConfig holds authentication configuration.
type AuthConfig struct {
	JWTSecret string `env:"AUTH_JWT_SECRET" yaml:"jwt_secret"` //nolint:gosec // G117: signing secret
}

// CORSConfig holds CORS configuration.
type CORSConfig struct {
	AllowedOrigins []string `env:"CORS_ORIGINS" yaml:"allowed_origins"`
}

// Load loads configuration from the specified path.
func Load(path string) (*Config, error) {
	return infraconfig.LoadWithDefaults[Config](path, setDefaults)
}

// LoadOptional is Load for callers that can run from the environment alone.
func LoadOptional(path string) (*Config, error) {
	return infraconfig.LoadOptional[Config](path, setDefaults)
}

// Validate checks the sections the selected features depend on.
func (c *Config) Validate() error {
	errs := []error{
		infraconfig.ValidatePort("service.port", c.Service.Port),
		infraconfig.ValidateLogLevel("logging.level", c.Logging.Level),
		infraconfig.ValidateOneOf("logging.format", c.Logging.Format, "json", "console"),
		infraconfig.ValidateOneOf("persistence.driver", c.Persistence.Driver, DriverPostgres, DriverSupabase),
		infraconfig.ValidatePositive("ingest.workers", c.Ingest.Workers),
	}

	switch c.Persistence.Driver {
	case DriverPostgres:
		errs = append(errs,
			infraconfig.ValidateRequired("database.host", c.Database.Host),
			infraconfig.ValidateRequired("database.database", c.Database.Database),
		)
	case DriverSupabase:
		errs = append(errs,
			infraconfig.ValidateRequired("supabase.url", c.Supabase.URL),
			infraconfig.ValidateRequired("supabase.key", c.Supabase.Key),
		)
	}

	if c.Media.Enabled && !c.Supabase.Enabled() {
		errs = append(errs, &infraconfig.ValidationError{
			Field:   "media.enabled",
			Message: "media uploads need supabase.url and supabase.key",
		})
	}
	if _, locErr := c.Ingest.Location(); locErr != nil {
		errs = append(errs, &infraconfig.ValidationError{Field: "ingest.timezone", Message: locErr.Error()})
	}
	if c.Redis.Enabled {
		errs = append(errs, infraconfig.ValidateRequired("redis.address", c.Redis.Address))
	}

	return errors.Join(errs...)
}

// setDefaults applies default values to the config.
func setDefaults(cfg *Config) {
	setServiceDefaults(&cfg.Service)
	setLoggingDefaults(&cfg.Logging)
	setPersistenceDefaults(&cfg.Persistence)
	setDatabaseDefaults(&cfg.Database)
	if cfg.Supabase.PostTable == "" {
		cfg.Supabase.PostTable = defaultPostTable
	}
	setMediaDefaults(&cfg.Media)
	if cfg.Ingest.Workers == 0 {
		cfg.Ingest.Workers = defaultWorkers
	}
	setRedisDefaults(&cfg.Redis)
	cfg.Profiling.SetDefaults()
	// Auth and CORS defaults are handled by env tags - no explicit defaults needed
}

func setServiceDefaults(s *ServiceConfig) {
	if s.Name == "" {
		s.Name = defaultServiceName
	}
	if s.Version == "" {
		s.Version = defaultServiceVersion
	}
	if s.Port == 0 {
		s.Port = defaultServicePort
	}
	if s.ReadTimeout == 0 {
		s.ReadTimeout = defaultReadTimeout
	}
	if s.WriteTimeout == 0 {
		s.WriteTimeout = defaultWriteTimeout
	}
	if s.MaxUploadBytes == 0 {
		s.MaxUploadBytes = defaultUploadMaxBytes
	}
	if s.MetricsPath == "" {
		s.MetricsPath = defaultMetricsPath
	}
}

func setLoggingDefaults(l *LoggingConfig) {
	if l.Level == "" {
		l.Level = defaultLogLevel
	}
	if l.Format == "" {
		l.Format = defaultLogFormat
	}
}

func setPersistenceDefaults(p *PersistenceConfig) {
	if p.Driver == "" {
		p.Driver = defaultDriver
	}
	if p.FailureThreshold == 0 {
		p.FailureThreshold = defaultBreakerFailures
	}
	if p.OpenTimeout == 0 {
		p.OpenTimeout = defaultBreakerTimeout
	}
}

func setDatabaseDefaults(d *DatabaseConfig) {
	if d.Host == "" {
		d.Host = defaultDBHost
	}
	if d.Port == "" {
		d.Port = defaultDBPort
	}
	if d.User == "" {
		d.User = defaultDBUser
	}
	if d.Database == "" {
		d.Database = defaultDBName
	}
	if d.SSLMode == "" {
		d.SSLMode = defaultDBSSLMode
	}
	if d.MaxConnections == 0 {
		d.MaxConnections = defaultDBMaxConns
	}
	if d.MaxIdleConns == 0 {
		d.MaxIdleConns = defaultDBMaxIdleConns
	}
}

func setMediaDefaults(m *MediaConfig) {
	if m.Bucket == "" {
		m.Bucket = defaultBucket
	}
	if m.MaxBytes == 0 {
		m.MaxBytes = defaultMediaMaxBytes
	}
}

func setRedisDefaults(r *RedisConfig) {
	if r.Address == "" {
		r.Address = defaultRedisAddress
	}
	if r.Stream == "" {
		r.Stream = defaultRedisEventStream
	}
}
