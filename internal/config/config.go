package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/spf13/viper"

	"github.com/jwalitptl/dental-api/pkg/messaging/kafka"
	"github.com/jwalitptl/dental-api/pkg/messaging/redis"
	"github.com/jwalitptl/dental-api/pkg/worker"
)

type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	JWT       JWTConfig       `mapstructure:"jwt"`
	Log       LogConfig       `mapstructure:"log"`
	Clinic    ClinicConfig    `mapstructure:"clinic"`
	Lifecycle LifecycleConfig `mapstructure:"lifecycle"`
	Broker    BrokerConfig    `mapstructure:"broker"`
	Outbox    OutboxConfig    `mapstructure:"outbox"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
	CORS      CORSConfig      `mapstructure:"cors"`
	Storage   StorageConfig   `mapstructure:"storage"`
	Calendar  CalendarConfig  `mapstructure:"calendar"`
	SMTP      SMTPConfig      `mapstructure:"smtp"`
	Reminders ReminderConfig  `mapstructure:"reminders"`
	Audit     AuditConfig     `mapstructure:"audit"`
	Security  SecurityConfig  `mapstructure:"security"`
	Worker    WorkerConfig    `mapstructure:"worker"`
}

type ServerConfig struct {
	Port           int           `mapstructure:"port"`
	Timeout        time.Duration `mapstructure:"timeout"`
	ReadTimeout    time.Duration `mapstructure:"read_timeout"`
	WriteTimeout   time.Duration `mapstructure:"write_timeout"`
	MaxHeaderBytes int           `mapstructure:"max_header_bytes"`
	// HSTS turns on Strict-Transport-Security, for deployments behind TLS.
	HSTS bool `mapstructure:"hsts"`
}

type DatabaseConfig struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	User         string        `mapstructure:"user"`
	Password     string        `mapstructure:"password"`
	Name         string        `mapstructure:"name"`
	SSLMode      string        `mapstructure:"sslmode"`
	MaxOpenConns int           `mapstructure:"max_open_conns"`
	MaxIdleConns int           `mapstructure:"max_idle_conns"`
	ConnMaxLife  time.Duration `mapstructure:"conn_max_lifetime"`
}

func (c DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode,
	)
}

type JWTConfig struct {
	Secret string        `mapstructure:"secret"`
	Issuer string        `mapstructure:"issuer"`
	Expiry time.Duration `mapstructure:"expiry"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
	JSON  bool   `mapstructure:"json"`
}

type ClinicConfig struct {
	Name     string `mapstructure:"name"`
	TimeZone string `mapstructure:"time_zone"`
}

// Location resolves the clinic time zone.
func (c ClinicConfig) Location() (*time.Location, error) {
	return time.LoadLocation(c.TimeZone)
}

type LifecycleConfig struct {
	// SweepInterval enables the worker status sweep when positive.
	SweepInterval time.Duration `mapstructure:"sweep_interval"`
}

type BrokerConfig struct {
	Driver string      `mapstructure:"driver"`
	Redis  RedisConfig `mapstructure:"redis"`
	Kafka  KafkaConfig `mapstructure:"kafka"`
}

type RedisConfig struct {
	URL          string        `mapstructure:"url"`
	MaxRetries   int           `mapstructure:"max_retries"`
	RetryBackoff time.Duration `mapstructure:"retry_backoff"`
	PoolSize     int           `mapstructure:"pool_size"`
	MinIdleConns int           `mapstructure:"min_idle_conns"`
}

type KafkaConfig struct {
	Brokers     []string `mapstructure:"brokers"`
	GroupID     string   `mapstructure:"group_id"`
	TopicPrefix string   `mapstructure:"topic_prefix"`
}

type OutboxConfig struct {
	BatchSize     int           `mapstructure:"batch_size"`
	PollInterval  time.Duration `mapstructure:"poll_interval"`
	RetryAttempts int           `mapstructure:"retry_attempts"`
	RetryDelay    time.Duration `mapstructure:"retry_delay"`
	MaxRetries    int           `mapstructure:"max_retries"`
	Retention     time.Duration `mapstructure:"retention"`
}

type RateLimitConfig struct {
	Enabled           bool    `mapstructure:"enabled"`
	RequestsPerSecond float64 `mapstructure:"requests_per_second"`
	Burst             int     `mapstructure:"burst"`
}

type CORSConfig struct {
	AllowedOrigins []string      `mapstructure:"allowed_origins"`
	AllowedMethods []string      `mapstructure:"allowed_methods"`
	AllowedHeaders []string      `mapstructure:"allowed_headers"`
	MaxAge         time.Duration `mapstructure:"max_age"`
}

type StorageConfig struct {
	Region          string `mapstructure:"region"`
	Bucket          string `mapstructure:"bucket"`
	Endpoint        string `mapstructure:"endpoint"`
	PublicURL       string `mapstructure:"public_url"`
	UsePathStyle    bool   `mapstructure:"use_path_style"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key"`
}

type CalendarConfig struct {
	Endpoint string        `mapstructure:"endpoint"`
	TimeZone string        `mapstructure:"time_zone"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

type SMTPConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	From     string `mapstructure:"from"`
}

type ReminderConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Interval time.Duration `mapstructure:"interval"`
}

type AuditConfig struct {
	RetentionDays   int           `mapstructure:"retention_days"`
	CleanupInterval time.Duration `mapstructure:"cleanup_interval"`
}

type WorkerConfig struct {
	// HealthPort serves the worker's health checks and metrics.
	HealthPort int `mapstructure:"health_port"`
}

type SecurityConfig struct {
	// EncryptionKey is a 32 byte AES key used for stored third-party tokens.
	EncryptionKey string `mapstructure:"encryption_key"`
	BcryptCost    int    `mapstructure:"bcrypt_cost"`
}

// Secrets are read from DENTAL_* environment variables and win over the file.
type Secrets struct {
	DatabasePassword  string `envconfig:"DATABASE_PASSWORD"`
	JWTSecret         string `envconfig:"JWT_SECRET"`
	EncryptionKey     string `envconfig:"ENCRYPTION_KEY"`
	S3AccessKeyID     string `envconfig:"S3_ACCESS_KEY_ID"`
	S3SecretAccessKey string `envconfig:"S3_SECRET_ACCESS_KEY"`
	SMTPPassword      string `envconfig:"SMTP_PASSWORD"`
}

const envPrefix = "DENTAL"

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.timeout", "30s")
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "30s")
	v.SetDefault("server.max_header_bytes", 1<<20)

	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_open_conns", 20)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_max_lifetime", "30m")

	v.SetDefault("jwt.issuer", "dental-api")
	v.SetDefault("jwt.expiry", "12h")

	v.SetDefault("log.level", "info")

	v.SetDefault("clinic.name", "DentalCare")
	v.SetDefault("clinic.time_zone", "America/Mexico_City")

	v.SetDefault("broker.driver", "redis")
	v.SetDefault("broker.redis.url", "redis://localhost:6379/0")
	v.SetDefault("broker.redis.max_retries", 3)
	v.SetDefault("broker.redis.pool_size", 10)
	v.SetDefault("broker.kafka.topic_prefix", "dental.")

	v.SetDefault("outbox.batch_size", 50)
	v.SetDefault("outbox.poll_interval", "5s")
	v.SetDefault("outbox.retry_attempts", 3)
	v.SetDefault("outbox.retry_delay", "500ms")
	v.SetDefault("outbox.max_retries", 5)
	v.SetDefault("outbox.retention", "168h")

	v.SetDefault("rate_limit.enabled", true)
	v.SetDefault("rate_limit.requests_per_second", 20)
	v.SetDefault("rate_limit.burst", 40)

	v.SetDefault("cors.allowed_origins", []string{"http://localhost:5173"})
	v.SetDefault("cors.allowed_methods", []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"})
	v.SetDefault("cors.allowed_headers", []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"})
	v.SetDefault("cors.max_age", "12h")

	v.SetDefault("storage.region", "us-east-1")
	v.SetDefault("storage.bucket", "orthodontic-consents")

	v.SetDefault("calendar.time_zone", "America/Mexico_City")
	v.SetDefault("calendar.timeout", "10s")

	v.SetDefault("smtp.port", 587)

	v.SetDefault("reminders.interval", "1h")

	v.SetDefault("audit.retention_days", 365)
	v.SetDefault("audit.cleanup_interval", "24h")

	v.SetDefault("security.bcrypt_cost", 12)

	v.SetDefault("worker.health_port", 8081)
}

// LoadConfig reads config.yaml from the given directories (default "." and
// "./config"), then a .env file, then DENTAL_* environment variables.
func LoadConfig(paths ...string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	if len(paths) == 0 {
		paths = []string{".", "./config"}
	}
	for _, p := range paths {
		v.AddConfigPath(p)
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	var secrets Secrets
	if err := envconfig.Process(envPrefix, &secrets); err != nil {
		return nil, fmt.Errorf("failed to read secrets: %w", err)
	}
	config.applySecrets(secrets)

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

func (c *Config) applySecrets(s Secrets) {
	override := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}
	override(&c.Database.Password, s.DatabasePassword)
	override(&c.JWT.Secret, s.JWTSecret)
	override(&c.Security.EncryptionKey, s.EncryptionKey)
	override(&c.Storage.AccessKeyID, s.S3AccessKeyID)
	override(&c.Storage.SecretAccessKey, s.S3SecretAccessKey)
	override(&c.SMTP.Password, s.SMTPPassword)
}

func (c *Config) Validate() error {
	if c.JWT.Secret == "" {
		return fmt.Errorf("jwt secret is required")
	}
	switch len(c.Security.EncryptionKey) {
	case 0, 16, 24, 32:
	default:
		return fmt.Errorf("encryption key must be 16, 24 or 32 bytes")
	}
	if _, err := c.Clinic.Location(); err != nil {
		return fmt.Errorf("invalid clinic time zone %q: %w", c.Clinic.TimeZone, err)
	}
	switch c.Broker.Driver {
	case "redis", "kafka":
	default:
		return fmt.Errorf("unknown broker driver %q", c.Broker.Driver)
	}
	return nil
}

func (c *OutboxConfig) ToWorkerConfig() worker.OutboxProcessorConfig {
	return worker.OutboxProcessorConfig{
		BatchSize:     c.BatchSize,
		PollInterval:  c.PollInterval,
		RetryAttempts: c.RetryAttempts,
		RetryDelay:    c.RetryDelay,
		MaxRetries:    c.MaxRetries,
	}
}

func (c *RedisConfig) ToBrokerConfig() redis.Config {
	return redis.Config{
		URL:          c.URL,
		MaxRetries:   c.MaxRetries,
		RetryBackoff: c.RetryBackoff,
		PoolSize:     c.PoolSize,
		MinIdleConns: c.MinIdleConns,
	}
}

func (c *KafkaConfig) ToBrokerConfig() kafka.Config {
	return kafka.Config{
		Brokers:     c.Brokers,
		GroupID:     c.GroupID,
		TopicPrefix: c.TopicPrefix,
	}
}
