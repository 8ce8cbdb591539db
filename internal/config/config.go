// internal/config/config.go

package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Source drivers
const (
	DriverAirtable = "airtable"
	DriverPostgres = "postgres"
)

// Config holds all application configuration
type Config struct {
	Environment string
	Server      ServerConfig
	Source      SourceConfig
	Airtable    AirtableConfig
	Database    DatabaseConfig
	NATS        NATSConfig
	Map         MapConfig
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

// SourceConfig selects the tabular row-source backend
type SourceConfig struct {
	Driver string
}

// AirtableConfig holds credentials and table references for the
// Airtable-style REST source
type AirtableConfig struct {
	APIKey        string
	BaseID        string
	PlacesTableID string
	EventsTableID string
	Endpoint      string
	Timeout       time.Duration
}

// DatabaseConfig holds configuration for the Postgres row source
type DatabaseConfig struct {
	Host         string
	Port         int
	User         string
	Password     string
	Database     string
	MaxOpenConns int
	MaxIdleConns int
	MaxLifetime  time.Duration
	SSLMode      string
	PlacesTable  string
	EventsTable  string
}

// NATSConfig holds NATS configuration for refresh notifications.
// An empty URL keeps notifications in-process.
type NATSConfig struct {
	URL            string
	MaxReconnects  int
	ReconnectWait  time.Duration
	ConnectTimeout time.Duration
	RefreshSubject string
}

// MapConfig holds map viewer configuration
type MapConfig struct {
	CenterLat         float64
	CenterLon         float64
	DefaultWindowDays int
	WindowPresets     []int
	CacheTTL          time.Duration
	DebounceInterval  time.Duration
	SchemaFile        string
}

// Load loads configuration from a .env file (if present) and
// environment variables
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment")
	}

	config := Config{
		Environment: getEnv("APP_ENV", "development"),
		Server: ServerConfig{
			Host:            getEnv("SERVER_HOST", "0.0.0.0"),
			Port:            getEnvAsInt("SERVER_PORT", 8080),
			ReadTimeout:     getEnvAsDuration("SERVER_READ_TIMEOUT", 10*time.Second),
			WriteTimeout:    getEnvAsDuration("SERVER_WRITE_TIMEOUT", 10*time.Second),
			ShutdownTimeout: getEnvAsDuration("SERVER_SHUTDOWN_TIMEOUT", 10*time.Second),
			CorsOrigins:     getEnvAsSlice("SERVER_CORS_ORIGINS", []string{"*"}),
		},
		Source: SourceConfig{
			Driver: getEnv("SOURCE_DRIVER", DriverAirtable),
		},
		Airtable: AirtableConfig{
			APIKey:        getEnv("AIRTABLE_API_KEY", ""),
			BaseID:        getEnv("AIRTABLE_BASE_ID", ""),
			PlacesTableID: getEnv("AIRTABLE_PLACES_TABLE_ID", ""),
			EventsTableID: getEnv("AIRTABLE_EVENTS_TABLE_ID", ""),
			Endpoint:      getEnv("AIRTABLE_ENDPOINT", "https://api.airtable.com/v0"),
			Timeout:       getEnvAsDuration("AIRTABLE_TIMEOUT", 30*time.Second),
		},
		Database: DatabaseConfig{
			Host:         getEnv("DB_HOST", "localhost"),
			Port:         getEnvAsInt("DB_PORT", 5432),
			User:         getEnv("DB_USER", "postgres"),
			Password:     getEnv("DB_PASSWORD", "postgres"),
			Database:     getEnv("DB_NAME", "placemap"),
			MaxOpenConns: getEnvAsInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns: getEnvAsInt("DB_MAX_IDLE_CONNS", 25),
			MaxLifetime:  getEnvAsDuration("DB_MAX_LIFETIME", 5*time.Minute),
			SSLMode:      getEnv("DB_SSL_MODE", "disable"),
			PlacesTable:  getEnv("DB_PLACES_TABLE", "places_rows"),
			EventsTable:  getEnv("DB_EVENTS_TABLE", "events_rows"),
		},
		NATS: NATSConfig{
			URL:            getEnv("NATS_URL", ""),
			MaxReconnects:  getEnvAsInt("NATS_MAX_RECONNECTS", 10),
			ReconnectWait:  getEnvAsDuration("NATS_RECONNECT_WAIT", 1*time.Second),
			ConnectTimeout: getEnvAsDuration("NATS_CONNECT_TIMEOUT", 2*time.Second),
			RefreshSubject: getEnv("NATS_REFRESH_SUBJECT", "map.refresh"),
		},
		Map: MapConfig{
			CenterLat:         getEnvAsFloat("MAP_CENTER_LAT", 43.65),
			CenterLon:         getEnvAsFloat("MAP_CENTER_LON", -79.38),
			DefaultWindowDays: getEnvAsInt("MAP_DEFAULT_WINDOW_DAYS", 14),
			WindowPresets:     getEnvAsIntSlice("MAP_WINDOW_PRESETS", []int{7, 14, 30}),
			CacheTTL:          getEnvAsDuration("MAP_CACHE_TTL", 10*time.Minute),
			DebounceInterval:  getEnvAsDuration("MAP_DEBOUNCE_INTERVAL", 300*time.Millisecond),
			SchemaFile:        getEnv("MAP_SCHEMA_FILE", ""),
		},
	}

	return config, validate(config)
}

// validate checks if config is valid. Missing source references are
// fatal: the process must not start and serve an empty map.
func validate(config Config) error {
	switch config.Source.Driver {
	case DriverAirtable:
		a := config.Airtable
		if a.APIKey == "" || a.BaseID == "" || a.PlacesTableID == "" || a.EventsTableID == "" {
			return fmt.Errorf("airtable source requires AIRTABLE_API_KEY, AIRTABLE_BASE_ID, AIRTABLE_PLACES_TABLE_ID and AIRTABLE_EVENTS_TABLE_ID")
		}
	case DriverPostgres:
		d := config.Database
		if d.PlacesTable == "" || d.EventsTable == "" {
			return fmt.Errorf("postgres source requires DB_PLACES_TABLE and DB_EVENTS_TABLE")
		}
	default:
		return fmt.Errorf("unknown source driver %q", config.Source.Driver)
	}

	if config.Map.DefaultWindowDays <= 0 {
		return fmt.Errorf("MAP_DEFAULT_WINDOW_DAYS must be positive")
	}
	for _, days := range config.Map.WindowPresets {
		if days <= 0 {
			return fmt.Errorf("MAP_WINDOW_PRESETS must contain only positive day counts")
		}
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

func getEnvAsIntSlice(key string, defaultValue []int) []int {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	parts := strings.Split(valueStr, ",")
	out := make([]int, 0, len(parts))
	for _, p := range parts {
		value, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return defaultValue
		}
		out = append(out, value)
	}
	return out
}
