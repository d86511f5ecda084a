package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	PostgreSQL PostgreSQLConfig
	Server     ServerConfig
	Logging    LoggingConfig
	Model      ModelConfig
	Data       DataConfig
	Intent     IntentConfig
}

// PostgreSQLConfig holds PostgreSQL database configuration
type PostgreSQLConfig struct {
	DSN                string // full connection string, preferred when set
	Host               string
	Port               int
	User               string
	Password           string
	Database           string
	SSLMode            string
	MaxConnections     int
	MaxIdleConnections int
	Enabled            bool
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port           int
	Host           string
	GinMode        string
	AllowedOrigins string
	AllowedMethods string
	AllowedHeaders string
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string
	Format string
}

// ModelConfig holds text-generation service configuration.
// Credentials come from a CredentialsProvider chosen by CredentialsSource.
type ModelConfig struct {
	Provider          string // azure, openai, gemini
	CredentialsSource string // env, secrets
	SecretsFile       string
	MaxTokens         int
	EmbeddingModel    string
	Timeout           int
}

// DataConfig holds where pivot tables come from
type DataConfig struct {
	Source         string // files, postgres
	Dir            string
	DefaultVersion string
	Versions       []string
}

// IntentConfig holds model-intent behaviour switches
type IntentConfig struct {
	CacheEnabled     bool
	CacheMaxDistance float64
	RepairJSON       bool
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Try to load .env file (optional)
	_ = godotenv.Load()

	dsn := getEnv("DATABASE_URL", getEnv("POSTGRESQL_URI", getEnv("PG_DSN", "")))

	cfg := &Config{
		PostgreSQL: PostgreSQLConfig{
			DSN:                dsn,
			Host:               getEnv("PG_HOST", "localhost"),
			Port:               getEnvAsInt("PG_PORT", 5432),
			User:               getEnv("PG_USER", "postgres"),
			Password:           getEnv("PG_PASSWORD", ""),
			Database:           getEnv("PG_DATABASE", "legalview"),
			SSLMode:            getEnv("PG_SSLMODE", "disable"),
			MaxConnections:     getEnvAsInt("PG_MAX_CONNECTIONS", 10),
			MaxIdleConnections: getEnvAsInt("PG_MAX_IDLE_CONNECTIONS", 2),
			Enabled:            getEnvAsBool("PG_ENABLED", dsn != ""),
		},
		Server: ServerConfig{
			Port:           getEnvAsInt("SERVER_PORT", 8080),
			Host:           getEnv("SERVER_HOST", "0.0.0.0"),
			GinMode:        getEnv("GIN_MODE", "release"),
			AllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "*"),
			AllowedMethods: getEnv("CORS_ALLOWED_METHODS", "GET,POST,OPTIONS"),
			AllowedHeaders: getEnv("CORS_ALLOWED_HEADERS", "Content-Type,Authorization"),
		},
		Logging: LoggingConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
		Model: ModelConfig{
			Provider:          getEnv("MODEL_PROVIDER", "azure"),
			CredentialsSource: getEnv("MODEL_CREDENTIALS_SOURCE", SourceEnv),
			SecretsFile:       getEnv("MODEL_SECRETS_FILE", ".secrets/secrets.yaml"),
			MaxTokens:         getEnvAsInt("MODEL_MAX_TOKENS", 1024),
			EmbeddingModel:    getEnv("MODEL_EMBEDDING_DEPLOYMENT", ""),
			Timeout:           getEnvAsInt("MODEL_TIMEOUT", 30),
		},
		Data: DataConfig{
			Source:         getEnv("DATA_SOURCE", "files"),
			Dir:            getEnv("DATA_DIR", "output_versions"),
			DefaultVersion: getEnv("DATA_DEFAULT_VERSION", "Jun"),
			Versions:       getEnvAsList("DATA_VERSIONS", []string{"Jun", "Sep"}),
		},
		Intent: IntentConfig{
			CacheEnabled:     getEnvAsBool("INTENT_CACHE_ENABLED", false),
			CacheMaxDistance: getEnvAsFloat("INTENT_CACHE_MAX_DISTANCE", 0.05),
			RepairJSON:       getEnvAsBool("INTENT_JSON_REPAIR", false),
		},
	}

	if cfg.Data.Source == "postgres" && !cfg.PostgreSQL.Enabled {
		return nil, fmt.Errorf("DATA_SOURCE=postgres requires a PostgreSQL connection (set DATABASE_URL or PG_ENABLED)")
	}

	return cfg, nil
}

// GetPostgreSQLDSN returns PostgreSQL connection string
func (c *Config) GetPostgreSQLDSN() string {
	if c.PostgreSQL.DSN != "" {
		return c.PostgreSQL.DSN
	}

	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.PostgreSQL.Host,
		c.PostgreSQL.Port,
		c.PostgreSQL.User,
		c.PostgreSQL.Password,
		c.PostgreSQL.Database,
		c.PostgreSQL.SSLMode,
	)
}

// HasVersion reports whether a data version is configured (case-insensitive)
func (d DataConfig) HasVersion(version string) bool {
	for _, v := range d.Versions {
		if strings.EqualFold(v, version) {
			return true
		}
	}
	return false
}

// Helper functions

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Printf("Warning: Invalid integer value for %s, using default %d", key, defaultValue)
		return defaultValue
	}
	return value
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		log.Printf("Warning: Invalid float value for %s, using default %f", key, defaultValue)
		return defaultValue
	}
	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		log.Printf("Warning: Invalid bool value for %s, using default %t", key, defaultValue)
		return defaultValue
	}
	return value
}

func getEnvAsList(key string, defaultValue []string) []string {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(valueStr, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
