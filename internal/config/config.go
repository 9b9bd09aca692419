// internal/config/config.go

package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	Environment string
	CatalogPath string
	Server      ServerConfig
	NATS        NATSConfig
	Simulation  SimulationConfig
	Badges      BadgesConfig
	Setup       SetupConfig
	Log         LogConfig
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Host            string
	Port            int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
	CorsOrigins     []string
}

// NATSConfig holds NATS configuration. An empty URL disables publishing.
type NATSConfig struct {
	URL            string
	MaxReconnects  int
	ReconnectWait  time.Duration
	ConnectTimeout time.Duration
	Topic          string
}

// SimulationConfig holds pulse simulation configuration
type SimulationConfig struct {
	Seed                int64
	AutoStart           bool
	PresencePeriod      time.Duration
	ContentPeriod       time.Duration
	MinEventInterval    time.Duration
	MaxEventInterval    time.Duration
	LocationProbability float64
	FeedCapacity        int
	SeedEvents          int
}

// BadgesConfig holds navigation badge configuration
type BadgesConfig struct {
	Period      time.Duration
	Probability float64
	Ceiling     int
	Threshold   int
}

// SetupConfig holds backend-configuration check settings
type SetupConfig struct {
	// ProbeEnabled lets the server dial user-supplied database URLs
	ProbeEnabled bool
	ProbeTimeout time.Duration
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level string
}

// Load loads configuration from environment variables, after an optional .env file
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("error loading .env file: %w", err)
	}

	config := Config{
		Environment: getEnv("APP_ENV", "development"),
		CatalogPath: getEnv("MIXEE_CATALOG_PATH", ""),
		Server: ServerConfig{
			Host:            getEnv("SERVER_HOST", "0.0.0.0"),
			Port:            getEnvAsInt("SERVER_PORT", 8080),
			ReadTimeout:     getEnvAsDuration("SERVER_READ_TIMEOUT", 10*time.Second),
			WriteTimeout:    getEnvAsDuration("SERVER_WRITE_TIMEOUT", 10*time.Second),
			ShutdownTimeout: getEnvAsDuration("SERVER_SHUTDOWN_TIMEOUT", 10*time.Second),
			CorsOrigins:     getEnvAsSlice("SERVER_CORS_ORIGINS", []string{"*"}),
		},
		NATS: NATSConfig{
			URL:            getEnv("NATS_URL", ""),
			MaxReconnects:  getEnvAsInt("NATS_MAX_RECONNECTS", 10),
			ReconnectWait:  getEnvAsDuration("NATS_RECONNECT_WAIT", 1*time.Second),
			ConnectTimeout: getEnvAsDuration("NATS_CONNECT_TIMEOUT", 2*time.Second),
			Topic:          getEnv("NATS_TOPIC", "mixee.pulse"),
		},
		Simulation: SimulationConfig{
			Seed:                int64(getEnvAsInt("SIM_SEED", 0)),
			AutoStart:           getEnvAsBool("SIM_AUTO_START", true),
			PresencePeriod:      getEnvAsDuration("SIM_PRESENCE_PERIOD", 8*time.Second),
			ContentPeriod:       getEnvAsDuration("SIM_CONTENT_PERIOD", 15*time.Second),
			MinEventInterval:    getEnvAsDuration("SIM_MIN_EVENT_INTERVAL", 2*time.Second),
			MaxEventInterval:    getEnvAsDuration("SIM_MAX_EVENT_INTERVAL", 8*time.Second),
			LocationProbability: getEnvAsFloat("SIM_LOCATION_PROBABILITY", 0.7),
			FeedCapacity:        getEnvAsInt("SIM_FEED_CAPACITY", 12),
			SeedEvents:          getEnvAsInt("SIM_SEED_EVENTS", 8),
		},
		Badges: BadgesConfig{
			Period:      getEnvAsDuration("BADGES_PERIOD", 12*time.Second),
			Probability: getEnvAsFloat("BADGES_PROBABILITY", 0.3),
			Ceiling:     getEnvAsInt("BADGES_CEILING", 25),
			Threshold:   getEnvAsInt("BADGES_THRESHOLD", 9),
		},
		Setup: SetupConfig{
			ProbeEnabled: getEnvAsBool("SETUP_PROBE_ENABLED", false),
			ProbeTimeout: getEnvAsDuration("SETUP_PROBE_TIMEOUT", 5*time.Second),
		},
		Log: LogConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
	}

	return config, validate(config)
}

// validate checks if config is valid
func validate(config Config) error {
	sim := config.Simulation
	if sim.PresencePeriod <= 0 || sim.ContentPeriod <= 0 {
		return fmt.Errorf("simulation periods must be positive")
	}
	if sim.MinEventInterval <= 0 || sim.MaxEventInterval < sim.MinEventInterval {
		return fmt.Errorf("event interval range is invalid: [%s, %s]", sim.MinEventInterval, sim.MaxEventInterval)
	}
	if sim.LocationProbability < 0 || sim.LocationProbability > 1 {
		return fmt.Errorf("location probability must be within [0, 1]")
	}
	if sim.FeedCapacity < 1 {
		return fmt.Errorf("feed capacity must be at least 1")
	}
	if sim.SeedEvents < 0 {
		return fmt.Errorf("seed events must not be negative")
	}
	if config.Badges.Period <= 0 {
		return fmt.Errorf("badge period must be positive")
	}
	if config.Badges.Probability < 0 || config.Badges.Probability > 1 {
		return fmt.Errorf("badge probability must be within [0, 1]")
	}

	return nil
}

// Helper functions

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseFloat(valueStr, 64); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsSlice(key string, defaultValue []string) []string {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	return strings.Split(valueStr, ",")
}
