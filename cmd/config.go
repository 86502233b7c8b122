package cmd

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"lastmile/internal/core/domain/model/kernel"

	"github.com/spf13/viper"
)

// Routing providers selectable with ROUTING_PROVIDER.
const (
	RoutingProviderNearest = "nearest"
	RoutingProviderORS     = "ors"
)

type Config struct {
	HTTPPort   string
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSslMode  string
	LogLevel   string

	RoutingProvider string
	ORSBaseURL      string
	ORSAPIKey       string
	ORSProfile      string
	RoutingTimeout  time.Duration
	DepotLat        float64
	DepotLon        float64

	KafkaBrokers     []string
	KafkaTopicPrefix string
	OutboxBatchSize  int
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("HTTP_PORT", "8080")
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_NAME", "lastmile")
	v.SetDefault("DB_SSLMODE", "disable")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("ROUTING_PROVIDER", RoutingProviderNearest)
	v.SetDefault("ORS_BASE_URL", "https://api.openrouteservice.org")
	v.SetDefault("ORS_PROFILE", "driving-car")
	v.SetDefault("ROUTING_TIMEOUT", "10s")
	v.SetDefault("KAFKA_TOPIC_PREFIX", "lastmile")
	v.SetDefault("OUTBOX_BATCH_SIZE", 100)
}

// LoadConfig reads the configuration from the environment of v.
func LoadConfig(v *viper.Viper) (Config, error) {
	setDefaults(v)
	v.AutomaticEnv()

	cfg := Config{
		HTTPPort:   v.GetString("HTTP_PORT"),
		DBHost:     v.GetString("DB_HOST"),
		DBPort:     v.GetString("DB_PORT"),
		DBUser:     v.GetString("DB_USER"),
		DBPassword: v.GetString("DB_PASSWORD"),
		DBName:     v.GetString("DB_NAME"),
		DBSslMode:  v.GetString("DB_SSLMODE"),
		LogLevel:   v.GetString("LOG_LEVEL"),

		RoutingProvider: strings.ToLower(v.GetString("ROUTING_PROVIDER")),
		ORSBaseURL:      v.GetString("ORS_BASE_URL"),
		ORSAPIKey:       v.GetString("ORS_API_KEY"),
		ORSProfile:      v.GetString("ORS_PROFILE"),
		RoutingTimeout:  v.GetDuration("ROUTING_TIMEOUT"),
		DepotLat:        v.GetFloat64("DEPOT_LAT"),
		DepotLon:        v.GetFloat64("DEPOT_LON"),

		KafkaBrokers:     splitList(v.GetString("KAFKA_BROKERS")),
		KafkaTopicPrefix: v.GetString("KAFKA_TOPIC_PREFIX"),
		OutboxBatchSize:  v.GetInt("OUTBOX_BATCH_SIZE"),
	}
	return cfg, cfg.Validate()
}

// Validate checks the settings needed to serve requests.
func (c Config) Validate() error {
	var problems []error
	if c.HTTPPort == "" {
		problems = append(problems, errors.New("HTTP_PORT is required"))
	}
	if c.DBHost == "" || c.DBName == "" {
		problems = append(problems, errors.New("DB_HOST and DB_NAME are required"))
	}
	switch c.RoutingProvider {
	case RoutingProviderNearest:
	case RoutingProviderORS:
		if c.ORSBaseURL == "" {
			problems = append(problems, errors.New("ORS_BASE_URL is required for the ors routing provider"))
		}
	default:
		problems = append(problems, fmt.Errorf("unknown ROUTING_PROVIDER %q", c.RoutingProvider))
	}
	if _, err := c.Depot(); err != nil {
		problems = append(problems, fmt.Errorf("DEPOT_LAT/DEPOT_LON: %w", err))
	}
	if _, err := c.SlogLevel(); err != nil {
		problems = append(problems, err)
	}
	return errors.Join(problems...)
}

// DSN returns the postgres connection string.
func (c Config) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, c.DBSslMode)
}

// Depot is the origin of every planned route.
func (c Config) Depot() (kernel.GeoPoint, error) {
	return kernel.NewGeoPoint(c.DepotLat, c.DepotLon)
}

func (c Config) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo, fmt.Errorf("LOG_LEVEL: %w", err)
	}
	return level, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
