package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds application configuration
type Config struct {
	// Storage
	StorageBackend string // memory, postgres, mongo
	DatabaseURL    string
	MongoURI       string
	MongoDatabase  string
	StorageTimeout time.Duration

	// Invoice numbering. With RedisAddr set the counter lives in Redis,
	// otherwise in Postgres when that is the backend, else in memory.
	RedisAddr    string
	InvoiceStart int64

	// Pricing
	PricingProvider string
	PriceOverrides  string // "Oil Change:suv=55;Tire Rotation:compact=20"

	// Events and metrics
	NATSURL        string
	PushgatewayURL string

	// API
	ListenAddr  string
	ServiceName string
	RateLimit   float64 // requests per second, 0 disables
	RateBurst   int
	CORSOrigin  string

	// Logging
	LogLevel  string
	LogFormat string // text, json
	LogOutput string

	// Policy certificate branding
	PolicyBrand        string
	PolicyHelpline     string
	PolicyEmergency    string
	PolicySupportEmail string

	// Output
	OutputFormat string // text, json
	Verbose      bool
}

// NewConfig creates a new configuration with defaults
func NewConfig() *Config {
	return &Config{
		StorageBackend:     getEnv("STORAGE_BACKEND", "memory"),
		DatabaseURL:        getEnv("DATABASE_URL", "host=localhost port=5432 user=assist password=devpassword dbname=assist sslmode=disable"),
		MongoURI:           getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDatabase:      getEnv("MONGO_DATABASE", "assist"),
		StorageTimeout:     getEnvDuration("STORAGE_TIMEOUT", 10*time.Second),
		RedisAddr:          getEnv("REDIS_ADDR", ""),
		InvoiceStart:       int64(getEnvInt("INVOICE_START", 0)),
		PricingProvider:    getEnv("PRICING_PROVIDER", ""),
		PriceOverrides:     getEnv("PRICE_OVERRIDES", ""),
		NATSURL:            getEnv("NATS_URL", ""),
		PushgatewayURL:     getEnv("PUSHGATEWAY_URL", ""),
		ListenAddr:         getEnv("ASSIST_ADDR", ":8080"),
		ServiceName:        getEnv("OTEL_SERVICE_NAME", "assist-advisor"),
		RateLimit:          getEnvFloat("RATE_LIMIT", 10),
		RateBurst:          getEnvInt("RATE_BURST", 20),
		CORSOrigin:         getEnv("CORS_ORIGIN", "*"),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		LogFormat:          getEnv("LOG_FORMAT", "text"),
		LogOutput:          getEnv("LOG_OUTPUT", "stderr"),
		PolicyBrand:        getEnv("POLICY_BRAND", "MARUTI SUZUKI"),
		PolicyHelpline:     getEnv("POLICY_HELPLINE", "084306 93069 / 044-61726397"),
		PolicyEmergency:    getEnv("POLICY_EMERGENCY", "084306 93069"),
		PolicySupportEmail: getEnv("POLICY_SUPPORT_EMAIL", "support@marutisuzuki.com"),
		OutputFormat:       "text",
		Verbose:            getEnvBool("VERBOSE", false),
	}
}

// UseDevPreset keeps everything in process with chatty logs
func (c *Config) UseDevPreset() {
	c.StorageBackend = "memory"
	c.LogLevel = "debug"
	c.LogFormat = "text"
	c.RateLimit = 0
}

// UseProductionPreset stores in Postgres and logs JSON
func (c *Config) UseProductionPreset() {
	c.StorageBackend = "postgres"
	c.LogLevel = "info"
	c.LogFormat = "json"
	if c.RateLimit == 0 {
		c.RateLimit = 10
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		return value == "true" || value == "1"
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

// Validate checks if configuration is valid
func (c *Config) Validate() error {
	switch c.StorageBackend {
	case "memory":
	case "postgres":
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL must be set when storage backend is postgres")
		}
	case "mongo":
		if c.MongoURI == "" {
			return fmt.Errorf("MONGO_URI must be set when storage backend is mongo")
		}
	default:
		return fmt.Errorf("unknown storage backend: %s", c.StorageBackend)
	}
	if c.StorageTimeout <= 0 {
		return fmt.Errorf("storage timeout must be positive")
	}
	if c.InvoiceStart < 0 {
		return fmt.Errorf("invoice start must be >= 0")
	}
	if c.RateLimit < 0 {
		return fmt.Errorf("rate limit must be >= 0")
	}
	if c.RateLimit > 0 && c.RateBurst < 1 {
		return fmt.Errorf("rate burst must be at least 1 when rate limiting is on")
	}
	if c.OutputFormat != "text" && c.OutputFormat != "json" {
		return fmt.Errorf("unsupported output format: %s", c.OutputFormat)
	}
	return nil
}
