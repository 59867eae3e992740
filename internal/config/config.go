package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// BaseConfig holds base configuration
type BaseConfig struct {
	Debug     bool   `mapstructure:"debug"`
	SentryDSN string `mapstructure:"sentry_dsn"`
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	ReadHost        string        `mapstructure:"read_host"`
	ReadPort        int           `mapstructure:"read_port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	DBName          string        `mapstructure:"dbname"`
	SSLMode         string        `mapstructure:"sslmode"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`     // Maximum number of open connections to the database
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`     // Maximum number of idle connections in the pool
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`  // Maximum amount of time a connection may be reused (e.g., "5m", "1h")
	ConnMaxIdleTime time.Duration `mapstructure:"conn_max_idle_time"` // Maximum amount of time a connection may be idle (e.g., "10m", "30m")
}

// SubjectsConfig holds the JetStream subjects used by ingestion
type SubjectsConfig struct {
	Ingest          string `mapstructure:"ingest"`
	PersonChanges   string `mapstructure:"person_changes"`
	GroupChanges    string `mapstructure:"group_changes"`
	DeadLetter      string `mapstructure:"dead_letter"`
	AnalyticsEvents string `mapstructure:"analytics_events"`
}

// NATSConfig holds NATS JetStream configuration
type NATSConfig struct {
	URL            string         `mapstructure:"url"`
	StreamName     string         `mapstructure:"stream_name"`
	ConsumerName   string         `mapstructure:"consumer_name"`
	MaxReconnects  int            `mapstructure:"max_reconnects"`
	ReconnectWait  time.Duration  `mapstructure:"reconnect_wait"`
	ConnectionName string         `mapstructure:"connection_name"`
	AckWait        time.Duration  `mapstructure:"ack_wait"`
	MaxDeliver     int            `mapstructure:"max_deliver"`
	Subjects       SubjectsConfig `mapstructure:"subjects"`
}

// IngestionConfig holds the orchestrator and reconciliation settings
type IngestionConfig struct {
	MaxTries               int           `mapstructure:"max_tries"`
	InitialRetryDelay      time.Duration `mapstructure:"initial_retry_delay"`
	TimeoutWarning         time.Duration `mapstructure:"timeout_warning"`
	DeadLetterTimeout      time.Duration `mapstructure:"dead_letter_timeout"`
	MaxGroupUpsertAttempts int           `mapstructure:"max_group_upsert_attempts"`
	// SiteURL is used in hook payloads when an event carries none
	SiteURL string `mapstructure:"site_url"`
}

// WorkerConfig holds worker configuration
type WorkerConfig struct {
	WorkerPoolSize  int `mapstructure:"pool_size"`
	WorkerQueueSize int `mapstructure:"queue_size"`
	// ShutdownGracePeriod is how long in-flight events keep running after shutdown starts
	ShutdownGracePeriod time.Duration `mapstructure:"shutdown_grace_period"`
}

// WebhookConfig holds hook delivery configuration
type WebhookConfig struct {
	Timeout                 time.Duration `mapstructure:"timeout"`
	RetryInitialInterval    time.Duration `mapstructure:"retry_initial_interval"`
	RetryMaxInterval        time.Duration `mapstructure:"retry_max_interval"`
	RetryMaxElapsedTime     time.Duration `mapstructure:"retry_max_elapsed_time"`
	BreakerFailureThreshold uint32        `mapstructure:"breaker_failure_threshold"`
	BreakerTimeout          time.Duration `mapstructure:"breaker_timeout"`
	BreakerInterval         time.Duration `mapstructure:"breaker_interval"`
	BreakerIdleTTL          time.Duration `mapstructure:"breaker_idle_ttl"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host         string `mapstructure:"host"`
	Port         int    `mapstructure:"port"`
	ReadTimeout  int    `mapstructure:"read_timeout"`  // in seconds
	WriteTimeout int    `mapstructure:"write_timeout"` // in seconds
	IdleTimeout  int    `mapstructure:"idle_timeout"`  // in seconds
}

// AuthConfig holds authentication configuration
type AuthConfig struct {
	JWTPublicKey string   `mapstructure:"jwt_public_key"`
	APIKeys      []string `mapstructure:"api_keys"`
}

// IngestionWorkerConfig holds configuration for ingestion-worker
type IngestionWorkerConfig struct {
	BaseConfig `mapstructure:",squash"`
	Database   DatabaseConfig  `mapstructure:"database"`
	NATS       NATSConfig      `mapstructure:"nats"`
	Ingestion  IngestionConfig `mapstructure:"ingestion"`
	Worker     WorkerConfig    `mapstructure:"worker"`
	Webhook    WebhookConfig   `mapstructure:"webhook"`
	// Server exposes health and metrics of the worker
	Server ServerConfig `mapstructure:"server"`
}

// APIConfig holds configuration for API server
type APIConfig struct {
	BaseConfig `mapstructure:",squash"`
	Server     ServerConfig   `mapstructure:"server"`
	Database   DatabaseConfig `mapstructure:"database"`
	Auth       AuthConfig     `mapstructure:"auth"`
}

// LoadIngestionWorkerConfig loads configuration for ingestion-worker
func LoadIngestionWorkerConfig(configFile string, envPath string) (*IngestionWorkerConfig, error) {
	v := configureViper("ingestion-worker", configFile, envPath)

	// Set defaults
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("nats.max_reconnects", 10)
	v.SetDefault("nats.reconnect_wait", "2s")
	v.SetDefault("nats.stream_name", "EVENTS")
	v.SetDefault("nats.consumer_name", "ingestion-worker")
	v.SetDefault("nats.connection_name", "ingestion-worker")
	v.SetDefault("nats.ack_wait", "60s")
	v.SetDefault("nats.max_deliver", 3)
	v.SetDefault("nats.subjects.ingest", "events.ingest")
	v.SetDefault("nats.subjects.person_changes", "persons.changes")
	v.SetDefault("nats.subjects.group_changes", "groups.changes")
	v.SetDefault("nats.subjects.dead_letter", "events.dead_letter")
	v.SetDefault("nats.subjects.analytics_events", "events.analytics")
	v.SetDefault("ingestion.max_tries", 20)
	v.SetDefault("ingestion.initial_retry_delay", "5ms")
	v.SetDefault("ingestion.timeout_warning", "30s")
	v.SetDefault("ingestion.dead_letter_timeout", "10s")
	v.SetDefault("ingestion.max_group_upsert_attempts", 5)
	v.SetDefault("worker.pool_size", 20)
	v.SetDefault("worker.queue_size", 2048)
	v.SetDefault("worker.shutdown_grace_period", "20s")
	v.SetDefault("webhook.timeout", "10s")
	v.SetDefault("webhook.retry_initial_interval", "500ms")
	v.SetDefault("webhook.retry_max_interval", "5s")
	v.SetDefault("webhook.retry_max_elapsed_time", "30s")
	v.SetDefault("webhook.breaker_failure_threshold", 5)
	v.SetDefault("webhook.breaker_timeout", "30s")
	v.SetDefault("webhook.breaker_interval", "1m")
	v.SetDefault("webhook.breaker_idle_ttl", "1h")
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 9090)
	v.SetDefault("server.read_timeout", 10)
	v.SetDefault("server.write_timeout", 10)
	v.SetDefault("server.idle_timeout", 120)

	if err := readConfig(v); err != nil {
		return nil, err
	}

	var config IngestionWorkerConfig
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if config.NATS.URL == "" {
		return nil, errors.New("nats.url is required")
	}

	return &config, nil
}

// LoadAPIConfig loads configuration for API server
func LoadAPIConfig(configFile string, envPath string) (*APIConfig, error) {
	v := configureViper("api", configFile, envPath)

	// Set defaults
	v.SetDefault("debug", false)
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 10)
	v.SetDefault("server.write_timeout", 10)
	v.SetDefault("server.idle_timeout", 120)
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.sslmode", "disable")

	if err := readConfig(v); err != nil {
		return nil, err
	}

	var config APIConfig
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &config, nil
}

// readConfig reads the config file; a missing file falls back to environment variables
func readConfig(v *viper.Viper) error {
	err := v.ReadInConfig()
	if err == nil {
		return nil
	}

	var notFound viper.ConfigFileNotFoundError
	if errors.As(err, &notFound) || errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return fmt.Errorf("failed to read config: %w", err)
}

// configureViper returns a viper instance with the config file and environment variables set
func configureViper(service string, configFile string, envPath string) *viper.Viper {
	v := viper.New()

	// Load environment variables
	loadEnv(envPath, service)

	// Set config file
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		// Search for config.yaml in multiple locations:
		// 1. Current directory
		v.AddConfigPath(".")
		// 2. Service-specific directory (e.g., cmd/ingestion-worker/, cmd/api/)
		v.AddConfigPath(fmt.Sprintf("cmd/%s/", service))
		// 3. Config directory
		v.AddConfigPath("config/")
	}

	// Set environment variables
	v.SetEnvPrefix("FF_INGESTION")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Explicitly bind all environment variables
	bindAllEnvVars(v)
	return v
}

// bindAllEnvVars explicitly binds all possible environment variables
// This is required for viper to map env vars to config struct fields when no config file exists
func bindAllEnvVars(v *viper.Viper) {
	commonKeys := []string{
		"debug",
		"sentry_dsn",
		// Database
		"database.host",
		"database.port",
		"database.read_host",
		"database.read_port",
		"database.user",
		"database.password",
		"database.dbname",
		"database.sslmode",
		"database.max_open_conns",
		"database.max_idle_conns",
		"database.conn_max_lifetime",
		"database.conn_max_idle_time",
		// NATS
		"nats.url",
		"nats.stream_name",
		"nats.consumer_name",
		"nats.max_reconnects",
		"nats.reconnect_wait",
		"nats.connection_name",
		"nats.ack_wait",
		"nats.max_deliver",
		"nats.subjects.ingest",
		"nats.subjects.person_changes",
		"nats.subjects.group_changes",
		"nats.subjects.dead_letter",
		"nats.subjects.analytics_events",
		// Ingestion
		"ingestion.max_tries",
		"ingestion.initial_retry_delay",
		"ingestion.timeout_warning",
		"ingestion.dead_letter_timeout",
		"ingestion.max_group_upsert_attempts",
		"ingestion.site_url",
		// Worker
		"worker.pool_size",
		"worker.queue_size",
		"worker.shutdown_grace_period",
		// Webhook
		"webhook.timeout",
		"webhook.retry_initial_interval",
		"webhook.retry_max_interval",
		"webhook.retry_max_elapsed_time",
		"webhook.breaker_failure_threshold",
		"webhook.breaker_timeout",
		"webhook.breaker_interval",
		"webhook.breaker_idle_ttl",
		// Server
		"server.host",
		"server.port",
		"server.read_timeout",
		"server.write_timeout",
		"server.idle_timeout",
		// Auth
		"auth.jwt_public_key",
		"auth.api_keys",
	}

	for _, key := range commonKeys {
		_ = v.BindEnv(key)
	}
}

// loadEnv loads environment variables from the config directory
func loadEnv(envPath string, service string) {
	// Always try shared base first, then local, then optional per-service local.
	envFiles := []string{".env", ".env.local"}
	if service != "" {
		envFiles = append(envFiles, ".env."+service+".local")
	}

	// Default to config directory
	if envPath == "" {
		envPath = "config/"
	}

	for _, envFile := range envFiles {
		candidate := filepath.Join(envPath, envFile)
		_ = godotenv.Overload(candidate) // Overload lets later files override earlier ones
	}
}

// ChdirRepoRoot changes the current working directory to the repository root
func ChdirRepoRoot() {
	cwd, _ := os.Getwd()
	for range 5 {
		if _, err := os.Stat(filepath.Join(cwd, "config")); err == nil {
			_ = os.Chdir(cwd)
			return
		}
		cwd = filepath.Dir(cwd)
	}
}

// DSN returns the database connection string
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode)
}

// ReadDSN returns the read-replica database connection string.
// It falls back to the primary when no read host is configured.
func (c *DatabaseConfig) ReadDSN() string {
	host := c.ReadHost
	if host == "" {
		host = c.Host
	}
	port := c.ReadPort
	if port == 0 {
		port = c.Port
	}

	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		host, port, c.User, c.Password, c.DBName, c.SSLMode)
}

// Addr returns the listen address of the server
func (c *ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
