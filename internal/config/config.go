package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"github.com/yatagaratsu666/Servidor-Inventario/internal/logger"
	"github.com/yatagaratsu666/Servidor-Inventario/internal/repository"
)

func init() {
	// Load .env file if it exists (silent fail if not)
	_ = godotenv.Load()
}

// Store backends
const (
	StoreMongoDB  = "mongodb"
	StoreSQLite   = "sqlite"
	StorePostgres = "postgres"
	StoreMySQL    = "mysql"
)

// Cache backends
const (
	CacheMemory = "memory"
	CacheRedis  = "redis"
)

// Config holds all application configuration loaded from environment variables.
type Config struct {
	Server ServerConfig
	App    AppConfig
	Log    LogConfig
	Store  StoreConfig
	Cache  CacheConfig
	Logs   MutationLogConfig
	CORS   CORSConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host            string        `envconfig:"SERVER_HOST" default:"0.0.0.0"`
	Port            int           `envconfig:"SERVER_PORT" default:"8080"`
	ReadTimeout     time.Duration `envconfig:"SERVER_READ_TIMEOUT" default:"15s"`
	WriteTimeout    time.Duration `envconfig:"SERVER_WRITE_TIMEOUT" default:"30s"`
	ShutdownTimeout time.Duration `envconfig:"SERVER_SHUTDOWN_TIMEOUT" default:"30s"`
}

// AppConfig holds application-level settings.
type AppConfig struct {
	Name        string `envconfig:"APP_NAME" default:"servidor-inventario"`
	Environment string `envconfig:"APP_ENV" default:"development"`
	Version     string `envconfig:"APP_VERSION" default:"1.0.0"`
}

// LogConfig holds structured logging settings.
type LogConfig struct {
	Level     string `envconfig:"LOG_LEVEL" default:"info"`
	Format    string `envconfig:"LOG_FORMAT" default:"json"`
	AddSource bool   `envconfig:"LOG_ADD_SOURCE" default:"false"`
}

// StoreConfig holds player store settings.
type StoreConfig struct {
	Type string `envconfig:"STORE_TYPE" default:"mongodb"` // mongodb, sqlite, postgres or mysql

	// MongoDB settings
	MongoURI              string `envconfig:"MONGODB_URI" default:"mongodb://localhost:27017"`
	MongoDatabase         string `envconfig:"MONGODB_DATABASE" default:"inventario"`
	PlayersCollection     string `envconfig:"MONGODB_PLAYERS_COLLECTION" default:"usuarios"`
	MutationLogCollection string `envconfig:"MONGODB_LOGS_COLLECTION" default:"mutation_logs"`

	// SQLite settings
	Path string `envconfig:"SQLITE_PATH" default:"./data/inventario.db"`

	// PostgreSQL and MySQL settings
	Host     string `envconfig:"DB_HOST" default:"localhost"`
	Port     int    `envconfig:"DB_PORT" default:"0"`
	Name     string `envconfig:"DB_NAME" default:"inventario"`
	User     string `envconfig:"DB_USER" default:"inventario"`
	Password string `envconfig:"DB_PASS" default:""`
	SSLMode  string `envconfig:"DB_SSLMODE" default:"disable"`
}

// CacheConfig holds cache settings.
type CacheConfig struct {
	Type string        `envconfig:"CACHE_TYPE" default:"memory"`
	TTL  time.Duration `envconfig:"CACHE_TTL" default:"30s"`
	Size int           `envconfig:"CACHE_SIZE" default:"10000"`

	RedisHost     string `envconfig:"REDIS_HOST" default:"localhost"`
	RedisPort     int    `envconfig:"REDIS_PORT" default:"6379"`
	RedisPassword string `envconfig:"REDIS_PASSWORD" default:""`
	RedisDB       int    `envconfig:"REDIS_DB" default:"0"`
}

// MutationLogConfig holds mutation log buffering and retention settings.
type MutationLogConfig struct {
	Buffered        bool          `envconfig:"MUTATION_LOG_BUFFERED" default:"false"`
	FlushInterval   time.Duration `envconfig:"MUTATION_LOG_FLUSH_INTERVAL" default:"5s"`
	Retention       time.Duration `envconfig:"MUTATION_LOG_RETENTION" default:"720h"`
	CleanupInterval time.Duration `envconfig:"MUTATION_LOG_CLEANUP_INTERVAL" default:"24h"`
}

// CORSConfig holds CORS settings.
type CORSConfig struct {
	AllowedOrigins []string `envconfig:"CORS_ALLOWED_ORIGINS" default:"*"`
}

// Address returns the server address in host:port format.
func (s *ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// RedisAddress returns the Redis address in host:port format.
func (c *CacheConfig) RedisAddress() string {
	return fmt.Sprintf("%s:%d", c.RedisHost, c.RedisPort)
}

// DBPort returns the configured port or the backend's default.
func (s *StoreConfig) DBPort() int {
	if s.Port != 0 {
		return s.Port
	}
	if s.Type == StoreMySQL {
		return 3306
	}
	return 5432
}

// PostgresDSN returns the PostgreSQL connection string.
func (s *StoreConfig) PostgresDSN() string {
	return repository.PostgresDSN(s.Host, s.DBPort(), s.User, s.Password, s.Name, s.SSLMode)
}

// MySQLDSN returns the MySQL data source name.
func (s *StoreConfig) MySQLDSN() string {
	return repository.MySQLDSN(s.Host, s.DBPort(), s.User, s.Password, s.Name)
}

// Logger returns the logger configuration.
func (c *Config) Logger() logger.Config {
	return logger.Config{
		Level:       c.Log.Level,
		Format:      c.Log.Format,
		ServiceName: c.App.Name,
		Version:     c.App.Version,
		Environment: c.App.Environment,
		AddSource:   c.Log.AddSource,
	}
}

// IsDevelopment returns true if running in development mode.
func (a *AppConfig) IsDevelopment() bool {
	return a.Environment == "development"
}

// IsProduction returns true if running in production mode.
func (a *AppConfig) IsProduction() bool {
	return a.Environment == "production"
}

// Validate checks enumerated settings.
func (c *Config) Validate() error {
	c.Store.Type = strings.ToLower(c.Store.Type)
	switch c.Store.Type {
	case "mongo":
		c.Store.Type = StoreMongoDB
	case "postgresql":
		c.Store.Type = StorePostgres
	case StoreMongoDB, StoreSQLite, StorePostgres, StoreMySQL:
	default:
		return fmt.Errorf("unsupported STORE_TYPE %q", c.Store.Type)
	}

	c.Cache.Type = strings.ToLower(c.Cache.Type)
	if c.Cache.Type != CacheMemory && c.Cache.Type != CacheRedis {
		return fmt.Errorf("unsupported CACHE_TYPE %q", c.Cache.Type)
	}
	if c.Cache.Size <= 0 {
		return fmt.Errorf("CACHE_SIZE must be positive, got %d", c.Cache.Size)
	}
	if c.Logs.Buffered && c.Cache.Type != CacheRedis {
		return fmt.Errorf("MUTATION_LOG_BUFFERED requires CACHE_TYPE=redis")
	}
	return nil
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config

	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

// MustLoad loads configuration or panics on error.
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		panic(err)
	}
	return cfg
}
