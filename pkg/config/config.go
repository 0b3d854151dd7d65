// Package config loads process settings from the environment, an optional
// .env file and an optional YAML file named by CONFIG_FILE.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/chris/caronaexpress/pkg/models"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	BackendDynamoDB = "dynamodb"
	BackendMemory   = "memory"
)

// Tables names the DynamoDB tables.
type Tables struct {
	Accounts    string
	Rides       string
	Ledger      string
	Deposits    string
	Connections string
}

// Config holds every setting the binaries read.
type Config struct {
	StorageBackend string
	Tables         Tables

	HTTPPort  string
	LogLevel  string
	LogFormat string
	JWTSecret string

	EventsQueueURL   string
	DepositsQueueURL string

	RedisAddr     string
	RedisPassword string
	RedisChannel  string

	StripeAPIKey         string
	WebSocketAPIEndpoint string
	LocationsFile        string

	AcceptMaxAttempts int
	AcceptMaxBackoff  time.Duration
	WatchPollInterval time.Duration

	DepositMin   models.Money
	DepositMax   models.Money
	RideTimezone *time.Location
}

func defaults(v *viper.Viper) {
	v.SetDefault("storage_backend", BackendDynamoDB)
	v.SetDefault("http_port", "8080")
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "json")
	v.SetDefault("redis_changes_channel", "rides:changed")
	v.SetDefault("accept_max_attempts", 5)
	v.SetDefault("accept_max_backoff", "500ms")
	v.SetDefault("watch_poll_interval", "10s")
	v.SetDefault("deposit_min", "1.00")
	v.SetDefault("deposit_max", "10000.00")
	v.SetDefault("ride_timezone", "America/Recife")
}

// Load reads the configuration. A missing .env file is not an error.
func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	defaults(v)
	v.AutomaticEnv()

	if file := v.GetString("config_file"); file != "" {
		v.SetConfigFile(file)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", file, err)
		}
	}

	return fromViper(v)
}

func fromViper(v *viper.Viper) (*Config, error) {
	var errs []error

	cfg := &Config{
		StorageBackend: strings.ToLower(strings.TrimSpace(v.GetString("storage_backend"))),
		Tables: Tables{
			Accounts:    v.GetString("dynamodb_accounts_table_name"),
			Rides:       v.GetString("dynamodb_rides_table_name"),
			Ledger:      v.GetString("dynamodb_ledger_table_name"),
			Deposits:    v.GetString("dynamodb_deposits_table_name"),
			Connections: v.GetString("dynamodb_connections_table_name"),
		},
		HTTPPort:             v.GetString("http_port"),
		LogLevel:             v.GetString("log_level"),
		LogFormat:            v.GetString("log_format"),
		JWTSecret:            v.GetString("jwt_secret"),
		EventsQueueURL:       v.GetString("sqs_events_queue_url"),
		DepositsQueueURL:     v.GetString("sqs_deposits_queue_url"),
		RedisAddr:            v.GetString("redis_addr"),
		RedisPassword:        v.GetString("redis_password"),
		RedisChannel:         v.GetString("redis_changes_channel"),
		StripeAPIKey:         v.GetString("stripe_api_key"),
		WebSocketAPIEndpoint: v.GetString("websocket_api_endpoint"),
		LocationsFile:        v.GetString("locations_file"),
		AcceptMaxAttempts:    v.GetInt("accept_max_attempts"),
	}

	var err error
	if cfg.AcceptMaxBackoff, err = time.ParseDuration(v.GetString("accept_max_backoff")); err != nil {
		errs = append(errs, fmt.Errorf("ACCEPT_MAX_BACKOFF: %w", err))
	}
	if cfg.WatchPollInterval, err = time.ParseDuration(v.GetString("watch_poll_interval")); err != nil {
		errs = append(errs, fmt.Errorf("WATCH_POLL_INTERVAL: %w", err))
	}
	if cfg.DepositMin, err = models.ParseMoney(v.GetString("deposit_min")); err != nil {
		errs = append(errs, fmt.Errorf("DEPOSIT_MIN: %w", err))
	}
	if cfg.DepositMax, err = models.ParseMoney(v.GetString("deposit_max")); err != nil {
		errs = append(errs, fmt.Errorf("DEPOSIT_MAX: %w", err))
	}
	if cfg.RideTimezone, err = time.LoadLocation(v.GetString("ride_timezone")); err != nil {
		errs = append(errs, fmt.Errorf("RIDE_TIMEZONE: %w", err))
	}

	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return cfg, nil
}

// Validate checks the settings every binary needs.
func (c *Config) Validate() error {
	var errs []error

	switch c.StorageBackend {
	case BackendMemory:
	case BackendDynamoDB:
		if c.Tables.Accounts == "" || c.Tables.Rides == "" || c.Tables.Ledger == "" || c.Tables.Deposits == "" {
			errs = append(errs, errors.New("one or more DynamoDB table name environment variables are not set"))
		}
	default:
		errs = append(errs, fmt.Errorf("STORAGE_BACKEND must be %q or %q, got %q", BackendDynamoDB, BackendMemory, c.StorageBackend))
	}
	if c.AcceptMaxAttempts < 1 {
		errs = append(errs, errors.New("ACCEPT_MAX_ATTEMPTS must be at least 1"))
	}
	if !c.DepositMin.IsPositive() || c.DepositMax.Below(c.DepositMin) {
		errs = append(errs, errors.New("DEPOSIT_MIN must be positive and not above DEPOSIT_MAX"))
	}
	return errors.Join(errs...)
}

// ValidateServer also checks what the HTTP server needs.
func (c *Config) ValidateServer() error {
	err := c.Validate()
	if c.JWTSecret == "" {
		err = errors.Join(err, errors.New("JWT_SECRET environment variable not set"))
	}
	return err
}
