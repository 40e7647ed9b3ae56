package main

import (
	"errors"
	"io/fs"
	"time"

	"github.com/spf13/viper"
)

const (
	driverPostgres = "postgres"
	driverMongo    = "mongo"
)

type Config struct {
	Port           string   `mapstructure:"PORT"`
	Environment    string   `mapstructure:"ENVIRONMENT"`
	Version        string   `mapstructure:"VERSION"`
	TLSCertFile    string   `mapstructure:"TLS_CERT_FILE"`
	TLSKeyFile     string   `mapstructure:"TLS_KEY_FILE"`
	TrustedOrigins []string `mapstructure:"TRUSTED_ORIGINS"`

	StoreDriver    string `mapstructure:"STORE_DRIVER"`
	DBHost         string `mapstructure:"POSTGRES_HOST"`
	DBPort         string `mapstructure:"POSTGRES_PORT"`
	DBUser         string `mapstructure:"POSTGRES_USER"`
	DBPassword     string `mapstructure:"POSTGRES_PASSWORD"`
	DBName         string `mapstructure:"POSTGRES_DB"`
	MigrationsPath string `mapstructure:"MIGRATIONS_PATH"`
	MongoURI       string `mapstructure:"MONGO_URI"`
	MongoDB        string `mapstructure:"MONGO_DB"`

	Secret   string        `mapstructure:"SECRET"`
	TokenTTL time.Duration `mapstructure:"TOKEN_TTL"`

	RateLimitEnabled bool    `mapstructure:"RATE_LIMIT_ENABLED"`
	RateLimitRPS     float64 `mapstructure:"RATE_LIMIT_RPS"`
	RateLimitBurst   int     `mapstructure:"RATE_LIMIT_BURST"`

	MailHost      string `mapstructure:"MAIL_HOST"`
	MailPort      int    `mapstructure:"MAIL_PORT"`
	MailUser      string `mapstructure:"MAIL_USER"`
	MailPassword  string `mapstructure:"MAIL_PASSWORD"`
	MailSender    string `mapstructure:"MAIL_SENDER"`
	MailRecipient string `mapstructure:"MAIL_RECIPIENT"`

	MQHost     string `mapstructure:"RABBITMQ_HOST"`
	MQPort     string `mapstructure:"RABBITMQ_PORT"`
	MQUser     string `mapstructure:"RABBITMQ_USER"`
	MQPassword string `mapstructure:"RABBITMQ_PASSWORD"`
}

var defaults = map[string]any{
	"PORT":               "3003",
	"ENVIRONMENT":        "development",
	"VERSION":            "1.0.0",
	"TLS_CERT_FILE":      "",
	"TLS_KEY_FILE":       "",
	"TRUSTED_ORIGINS":    "",
	"STORE_DRIVER":       driverPostgres,
	"POSTGRES_HOST":      "localhost",
	"POSTGRES_PORT":      "5432",
	"POSTGRES_USER":      "",
	"POSTGRES_PASSWORD":  "",
	"POSTGRES_DB":        "",
	"MIGRATIONS_PATH":    "file://migrations",
	"MONGO_URI":          "mongodb://localhost:27017",
	"MONGO_DB":           "bloglist",
	"SECRET":             "",
	"TOKEN_TTL":          "1h",
	"RATE_LIMIT_ENABLED": true,
	"RATE_LIMIT_RPS":     2.0,
	"RATE_LIMIT_BURST":   4,
	"MAIL_HOST":          "",
	"MAIL_PORT":          25,
	"MAIL_USER":          "",
	"MAIL_PASSWORD":      "",
	"MAIL_SENDER":        "",
	"MAIL_RECIPIENT":     "",
	"RABBITMQ_HOST":      "",
	"RABBITMQ_PORT":      "5672",
	"RABBITMQ_USER":      "guest",
	"RABBITMQ_PASSWORD":  "guest",
}

var (
	errMissingSecret = errors.New("SECRET must be set")
	errUnknownDriver = errors.New("STORE_DRIVER must be postgres or mongo")
)

// loadConfig reads the env file at path. Variables set in the process
// environment take precedence over the file. A missing file is not an error.
func loadConfig(path string) (*Config, error) {
	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.AutomaticEnv()

	v.SetConfigFile(path)
	v.SetConfigType("env")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}

	if err := config.validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

func (c *Config) validate() error {
	if c.Secret == "" {
		return errMissingSecret
	}

	switch c.StoreDriver {
	case driverPostgres, driverMongo:
	default:
		return errUnknownDriver
	}

	return nil
}

func (c *Config) brokerEnabled() bool {
	return c.MQHost != ""
}
