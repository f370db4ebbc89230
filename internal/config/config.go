package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the application
type Config struct {
	// Server configuration
	Port string
	Host string

	// HubSpot API configuration
	HubSpotAccessToken string
	HubSpotBaseURL     string

	// Outbound webhooks
	CallWebhookURL    string
	ForwardWebhookURL string
	HTTPTimeout       time.Duration

	// Custom object property sets, keyed by object type code
	CustomObjectsFile string
	CustomObjects     map[string][]string

	// Logging configuration
	LogLevel  string
	LogFormat string

	// Observability
	MetricsNamespace string
	OTelEnabled      bool
	OTelEndpoint     string
	OTelSampleRate   float64
}

// LoadConfig loads configuration from environment variables with defaults.
// A .env file in the working directory is applied first when present.
func LoadConfig() (*Config, error) {
	// Optional: in production the platform injects the environment directly
	_ = godotenv.Load()

	callURL := getEnv("CALL_WEBHOOK_URL", "")

	config := &Config{
		Port: getEnv("PORT", "8080"),
		Host: getEnv("HOST", "0.0.0.0"),

		HubSpotAccessToken: getEnv("HUBSPOT_ACCESS_TOKEN", getEnv("PRIVATE_APP_ACCESS_TOKEN", "")),
		HubSpotBaseURL:     getEnv("HUBSPOT_BASE_URL", "https://api.hubapi.com"),

		CallWebhookURL:    callURL,
		ForwardWebhookURL: getEnv("FORWARD_WEBHOOK_URL", callURL),
		HTTPTimeout:       getEnvAsDuration("HTTP_TIMEOUT", 30*time.Second),

		CustomObjectsFile: getEnv("CUSTOM_OBJECTS_FILE", ""),

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "text"),

		MetricsNamespace: getEnv("METRICS_NAMESPACE", "sonaxhub"),
		OTelEnabled:      getEnvAsBool("OTEL_ENABLED", false),
		OTelEndpoint:     getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4318"),
		OTelSampleRate:   getEnvAsFloat("OTEL_SAMPLE_RATE", 1.0),
	}

	if config.CustomObjectsFile != "" {
		objects, err := LoadCustomObjects(config.CustomObjectsFile)
		if err != nil {
			return nil, err
		}
		config.CustomObjects = objects
	}

	return config, nil
}

// customObjectsFile is the on-disk shape of CUSTOM_OBJECTS_FILE:
//
//	objects:
//	  "2-1234567":
//	    properties: [phone, name]
type customObjectsFile struct {
	Objects map[string]struct {
		Properties []string `yaml:"properties"`
	} `yaml:"objects"`
}

// LoadCustomObjects reads the per-type property sets used for custom objects.
func LoadCustomObjects(path string) (map[string][]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read custom objects file: %w", err)
	}
	return ParseCustomObjects(data)
}

// ParseCustomObjects decodes the YAML custom object definitions.
func ParseCustomObjects(data []byte) (map[string][]string, error) {
	var file customObjectsFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse custom objects: %w", err)
	}

	objects := make(map[string][]string, len(file.Objects))
	for code, def := range file.Objects {
		if code == "" {
			return nil, errors.New("parse custom objects: empty object type code")
		}
		if len(def.Properties) == 0 {
			continue
		}
		objects[code] = def.Properties
	}
	return objects, nil
}

// Validate reports configuration that would make every invocation fail.
func (c *Config) Validate() error {
	var errs []error
	if !c.HasHubSpotConfig() {
		errs = append(errs, errors.New("HUBSPOT_ACCESS_TOKEN is not set"))
	}
	if c.CallWebhookURL == "" {
		errs = append(errs, errors.New("CALL_WEBHOOK_URL is not set"))
	}
	if c.ForwardWebhookURL == "" {
		errs = append(errs, errors.New("FORWARD_WEBHOOK_URL is not set"))
	}
	return errors.Join(errs...)
}

// Addr returns the listen address for the HTTP server
func (c *Config) Addr() string {
	return c.Host + ":" + c.Port
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	return c.LogLevel == "production" || os.Getenv("GIN_MODE") == "release"
}

// HasHubSpotConfig returns true if a HubSpot access token is configured
func (c *Config) HasHubSpotConfig() bool {
	return c.HubSpotAccessToken != ""
}

// getEnv gets an environment variable with a fallback default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsDuration accepts Go durations ("45s") or plain seconds ("45").
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
		if secs, err := strconv.Atoi(value); err == nil {
			return time.Duration(secs) * time.Second
		}
	}
	return defaultValue
}

// getEnvAsBool gets an environment variable as boolean with a fallback default value
func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}
