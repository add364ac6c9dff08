package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds the configuration settings for the geocoding tool.
// It includes the environment, the API key, the remote endpoint, the batch
// failure policy, and the optional database configuration.
//
// Fields:
// - Env: The current environment (e.g., local, dev, prod).
// - APIKey: The API key issued by the UGRC developer portal.
// - BaseURL: The base URL of the geocoding web API.
// - FailThreshold: The number of consecutive failures that aborts a batch.
// - RateLimit: The maximum geocode requests per second.
// - MetricsPort: The monitoring server port; 0 disables the server.
// - Database: Configuration settings for the optional PostgreSQL persistence.
type Config struct {
	Env           string         `yaml:"env"`                // Env is the current environment: local, dev, prod.
	APIKey        string         `yaml:"geocoder.api_key"`   // The API key for the geocoding web API.
	BaseURL       string         `yaml:"geocoder.base_url"`  // The base URL of the geocoding web API.
	FailThreshold int            `yaml:"geocoder.threshold"` // Consecutive failures that abort a batch.
	RateLimit     int            `yaml:"geocoder.rate"`      // Maximum geocode requests per second.
	MetricsPort   int            `yaml:"metrics.port"`       // Monitoring server port, 0 to disable.
	Database      PostgresConfig `yaml:"postgres"`           // Database holds the postgres database configuration
}

// PostgresConfig struct holds the configuration details for connecting to a PostgreSQL database.
// Persistence is optional: an empty Host disables it.
type PostgresConfig struct {
	Host     string `yaml:"host"`                        // Host is the database server address.
	Port     string `yaml:"port"     env-default:"5432"` // Port is the database server port.
	User     string `yaml:"user"`                        // User is the database user.
	Password string `yaml:"password"`                    // Password is the database user's password.
	Name     string `yaml:"db_name"`                     // Name is the name of the database.
}

// MustLoad loads the configuration from the environment and returns a Config struct.
func MustLoad() *Config {
	_ = godotenv.Load()

	threshold, err := strconv.Atoi(setDefaultEnv("GEOCODE_FAIL_THRESHOLD", "25"))
	if err != nil {
		panic("failed to parse fail threshold from configuration, must be an integer type")
	}

	rateLimit, err := strconv.Atoi(setDefaultEnv("GEOCODE_RATE_LIMIT", "10"))
	if err != nil {
		panic("failed to parse rate limit from configuration, must be an integer type")
	}

	metricsPort, err := strconv.Atoi(setDefaultEnv("GEOCODE_METRICS_PORT", "0"))
	if err != nil {
		panic("failed to parse port for monitoring server from configuration")
	}

	return &Config{
		Env:           setDefaultEnv("GEOCODE_ENV", "production"),
		APIKey:        os.Getenv("GEOCODE_API_KEY"),
		BaseURL:       setDefaultEnv("GEOCODE_BASE_URL", "https://api.mapserv.utah.gov"),
		FailThreshold: threshold,
		RateLimit:     rateLimit,
		MetricsPort:   metricsPort,
		Database: PostgresConfig{
			Host:     os.Getenv("DB_HOST"),
			Port:     setDefaultEnv("DB_PORT", "5432"),
			User:     os.Getenv("DB_USERNAME"),
			Password: os.Getenv("DB_PASSWORD"),
			Name:     os.Getenv("DB_NAME"),
		},
	}
}

func setDefaultEnv(key, override string) string {
	value, exists := os.LookupEnv(key)
	if !exists {
		value = override
	}

	return value
}
