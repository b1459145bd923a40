package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"

	"github.com/billrun/billrun/internal/types"
)

type Configuration struct {
	Deployment DeploymentConfig `validate:"required"`
	Server     ServerConfig     `validate:"required"`
	Logging    LoggingConfig    `validate:"required"`
	Postgres   PostgresConfig   `validate:"required"`
	Kafka      KafkaConfig
	Services   ServicesConfig `validate:"required"`
	Storage    StorageConfig  `validate:"required"`
	Billing    BillingConfig  `validate:"required"`
	Sentry     SentryConfig
	PubSub     PubSubConfig
}

type DeploymentConfig struct {
	Mode types.RunMode `validate:"required"`
}

type ServerConfig struct {
	Address string `validate:"required"`
}

type LoggingConfig struct {
	Level types.LogLevel `validate:"required"`
}

type PostgresConfig struct {
	Host                   string `validate:"required"`
	Port                   int    `validate:"required"`
	User                   string `validate:"required"`
	Password               string
	DBName                 string `validate:"required"`
	SSLMode                string
	MaxOpenConns           int
	MaxIdleConns           int
	ConnMaxLifetimeMinutes int
}

type KafkaConfig struct {
	Brokers       []string
	ConsumerGroup string
	ClientID      string
	TLS           bool
	UseSASL       bool
	SASLMechanism string
	SASLUser      string
	SASLPassword  string
}

// ServicesConfig holds the base URLs of the outbound HTTP collaborators
type ServicesConfig struct {
	PaymentsBaseURL      string `mapstructure:"payments_base_url" validate:"required"`
	PdfRenderBaseURL     string `mapstructure:"pdf_render_base_url" validate:"required"`
	NotificationsBaseURL string `mapstructure:"notifications_base_url" validate:"required"`
	Timeout              time.Duration
}

// StorageConfig selects the PDF storage backend
type StorageConfig struct {
	Backend  types.StorageBackend `validate:"required"`
	BasePath string
	S3       S3Config
}

type S3Config struct {
	Region    string
	Bucket    string
	KeyPrefix string
}

// BillingConfig tunes the generation and fulfillment pipelines
type BillingConfig struct {
	LeadDays  int
	BatchSize int
	Timezone  string
}

type SentryConfig struct {
	Enabled     bool
	DSN         string
	Environment string
	SampleRate  float64
}

// PubSubConfig tunes the message router retry middleware
type PubSubConfig struct {
	InMemory        bool
	MaxRetries      int
	InitialInterval time.Duration
	MaxInterval     time.Duration
	Multiplier      float64
	MaxElapsedTime  time.Duration
}

func NewConfig() (*Configuration, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./internal/config")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/billrun")

	v.SetEnvPrefix("BILLRUN")
	v.SetEnvKeyReplacer(strings.NewReplacer(
		".", "_",
		"-", "_",
	))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if !errors.As(err, &viper.ConfigFileNotFoundError{}) {
			return nil, err
		}
	}

	var config Configuration
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

// setDefaults registers every tunable that must not silently be zero when the
// config file and environment leave it unset
func setDefaults(v *viper.Viper) {
	v.SetDefault("postgres.sslmode", "disable")
	v.SetDefault("postgres.maxopenconns", 10)
	v.SetDefault("postgres.maxidleconns", 5)
	v.SetDefault("postgres.connmaxlifetimeminutes", 30)

	v.SetDefault("billing.leaddays", 5)
	v.SetDefault("billing.batchsize", 500)
	v.SetDefault("billing.timezone", "America/Bogota")

	v.SetDefault("pubsub.maxretries", 3)
	v.SetDefault("pubsub.initialinterval", time.Second)
	v.SetDefault("pubsub.maxinterval", 30*time.Second)
	v.SetDefault("pubsub.multiplier", 2.0)
	v.SetDefault("pubsub.maxelapsedtime", 5*time.Minute)
}

func (c Configuration) Validate() error {
	validate := validator.New()
	return validate.Struct(c)
}

// GetDefaultConfig returns a default configuration for local development
// This is useful for running scripts or other non-web applications
func GetDefaultConfig() *Configuration {
	return &Configuration{
		Deployment: DeploymentConfig{Mode: types.ModeLocal},
		Logging:    LoggingConfig{Level: types.LogLevelDebug},
		Billing:    BillingConfig{LeadDays: 5, BatchSize: 500, Timezone: "America/Bogota"},
	}
}

// Location resolves the configured billing timezone, falling back to UTC
func (c BillingConfig) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func (c PostgresConfig) GetDSN() string {
	return fmt.Sprintf(
		"user=%s password=%s dbname=%s host=%s port=%d sslmode=%s",
		c.User,
		c.Password,
		c.DBName,
		c.Host,
		c.Port,
		c.SSLMode,
	)
}
