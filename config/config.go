package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/apex/log"
	"github.com/joho/godotenv"
)

// Config holds all configuration for the verdix service
type Config struct {
	// Server configuration
	Port           string
	AllowedOrigins []string
	RateLimit      int // analyze requests per minute per client IP
	MaxImageBytes  int
	JWTSecret      string

	// Logging
	LogLevel string

	// LLM configuration
	LLMProvider           string // gemini, openai or stub
	LLMTimeout            time.Duration
	GeminiAPIKey          string
	GeminiModel           string
	GeminiTemperature     float64
	GeminiTopP            float64
	GeminiMaxOutputTokens int
	OpenAIAPIKey          string
	OpenAIModel           string

	// Image preprocessing
	ImageMaxDimension int

	// Database configuration
	DBEnabled    bool
	DBHost       string
	DBPort       string
	DBUser       string
	DBPassword   string
	DBName       string
	HistoryLimit int

	// RabbitMQ configuration
	AMQPEnabled        bool
	AMQPHost           string
	AMQPPort           string
	AMQPUser           string
	AMQPPassword       string
	AMQPExchange       string
	AMQPScanRoutingKey string

	// Recycling centers
	OverpassURL              string
	RecyclingDefaultRadiusKm float64
}

// Load loads configuration from a .env file when present, then from environment variables
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Debug(".env file not found, using system environment variables")
	}

	return &Config{
		Port:           getEnv("PORT", "8080"),
		AllowedOrigins: getStringSliceEnv("ALLOWED_ORIGINS", "*"),
		RateLimit:      getIntEnv("RATE_LIMIT_PER_MINUTE", 10),
		MaxImageBytes:  getIntEnv("MAX_IMAGE_BYTES", 10<<20),
		JWTSecret:      getEnv("JWT_SECRET", ""),

		LogLevel: getEnv("LOG_LEVEL", "info"),

		LLMProvider:           strings.ToLower(getEnv("LLM_PROVIDER", "gemini")),
		LLMTimeout:            getDurationEnv("LLM_TIMEOUT", 60*time.Second),
		GeminiAPIKey:          getEnv("GEMINI_API_KEY", ""),
		GeminiModel:           getEnv("GEMINI_MODEL", "gemini-2.5-flash"),
		GeminiTemperature:     getFloatEnv("GEMINI_TEMPERATURE", 0.7),
		GeminiTopP:            getFloatEnv("GEMINI_TOP_P", 0.95),
		GeminiMaxOutputTokens: getIntEnv("GEMINI_MAX_OUTPUT_TOKENS", 2048),
		OpenAIAPIKey:          getEnv("OPENAI_API_KEY", ""),
		OpenAIModel:           getEnv("OPENAI_MODEL", "gpt-4o"),

		ImageMaxDimension: getIntEnv("IMAGE_MAX_DIMENSION", 1024),

		DBEnabled:    getBoolEnv("DB_ENABLED", false),
		DBHost:       getEnv("DB_HOST", "localhost"),
		DBPort:       getEnv("DB_PORT", "3306"),
		DBUser:       getEnv("DB_USER", "server"),
		DBPassword:   getEnv("DB_PASSWORD", "secret"),
		DBName:       getEnv("DB_NAME", "verdix"),
		HistoryLimit: getIntEnv("HISTORY_LIMIT", 50),

		AMQPEnabled:        getBoolEnv("AMQP_ENABLED", false),
		AMQPHost:           getEnv("AMQP_HOST", "localhost"),
		AMQPPort:           getEnv("AMQP_PORT", "5672"),
		AMQPUser:           getEnv("AMQP_USER", "guest"),
		AMQPPassword:       getEnv("AMQP_PASSWORD", "guest"),
		AMQPExchange:       getEnv("AMQP_EXCHANGE", "verdix"),
		AMQPScanRoutingKey: getEnv("AMQP_SCAN_ROUTING_KEY", "scan.analyzed"),

		OverpassURL:              getEnv("OVERPASS_URL", "https://overpass-api.de/api/interpreter"),
		RecyclingDefaultRadiusKm: getFloatEnv("RECYCLING_DEFAULT_RADIUS_KM", 5),
	}
}

// GetAMQPURL constructs the AMQP URL from individual components
func (c *Config) GetAMQPURL() string {
	return fmt.Sprintf("amqp://%s:%s@%s:%s", c.AMQPUser, c.AMQPPassword, c.AMQPHost, c.AMQPPort)
}

// DSN returns the MySQL data source name
func (c *Config) DSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?parseTime=true&multiStatements=true",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName)
}

// getStringSliceEnv gets a comma-separated environment variable as a trimmed slice
func getStringSliceEnv(key, defaultValue string) []string {
	value := getEnv(key, defaultValue)
	var out []string
	for _, s := range strings.Split(value, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getDurationEnv gets a duration environment variable or returns a default value
func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// getIntEnv gets an integer environment variable or returns a default value
func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getFloatEnv(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}
