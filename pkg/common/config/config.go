package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	// Server
	ServerPort     string
	ServerHost     string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	MaxRequestBody int64

	// Database
	PostgresHost     string
	PostgresPort     string
	PostgresUser     string
	PostgresPassword string
	PostgresDB       string
	PostgresSSLMode  string

	// Redis
	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int

	// Kafka
	KafkaBrokers        []string
	KafkaGroupID        string
	ReportTopic         string
	PredictionTopic     string
	ExtractionTopic     string
	ExtractionDLQTopic  string

	// Auth
	OIDCIssuer       string
	OIDCClientID     string
	OIDCClientSecret string
	JWTSecret        string
	AuthDisabled     bool
	DevUserID        string

	// LLM triage
	LLMAPIKey    string
	LLMBaseURL   string
	LLMModelName string
	LLMTimeout   time.Duration

	// Reconciliation
	SchemaPath        string
	AliasPath         string
	ModelArtifactDir  string
	ExtractedCacheTTL time.Duration
	PreferUserValues  bool

	// Rate limiting
	RateLimitRPS   int
	RateLimitBurst int
}

func Load() *Config {
	return &Config{
		ServerPort:     getEnv("SERVER_PORT", "8080"),
		ServerHost:     getEnv("SERVER_HOST", "0.0.0.0"),
		ReadTimeout:    getDuration("READ_TIMEOUT", 30*time.Second),
		WriteTimeout:   getDuration("WRITE_TIMEOUT", 30*time.Second),
		MaxRequestBody: int64(getIntEnv("MAX_REQUEST_BODY_BYTES", 4*1024*1024)),

		PostgresHost:     getEnv("POSTGRES_HOST", "localhost"),
		PostgresPort:     getEnv("POSTGRES_PORT", "5432"),
		PostgresUser:     getEnv("POSTGRES_USER", "diseaseai"),
		PostgresPassword: getEnv("POSTGRES_PASSWORD", "diseaseai123"),
		PostgresDB:       getEnv("POSTGRES_DB", "diseaseai"),
		PostgresSSLMode:  getEnv("POSTGRES_SSLMODE", "disable"),

		RedisHost:     getEnv("REDIS_HOST", "localhost"),
		RedisPort:     getEnv("REDIS_PORT", "6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getIntEnv("REDIS_DB", 0),

		KafkaBrokers:       getStringSliceEnv("KAFKA_BROKERS", []string{"localhost:9092"}),
		KafkaGroupID:       getEnv("KAFKA_GROUP_ID", "disease-ai"),
		ReportTopic:        getEnv("KAFKA_REPORT_TOPIC", "report.ingested"),
		PredictionTopic:    getEnv("KAFKA_PREDICTION_TOPIC", "prediction.created"),
		ExtractionTopic:    getEnv("KAFKA_EXTRACTION_TOPIC", "report.extracted"),
		ExtractionDLQTopic: getEnv("KAFKA_EXTRACTION_DLQ_TOPIC", "report.extracted.dlq"),

		OIDCIssuer:       getEnv("OIDC_ISSUER", ""),
		OIDCClientID:     getEnv("OIDC_CLIENT_ID", ""),
		OIDCClientSecret: getEnv("OIDC_CLIENT_SECRET", ""),
		JWTSecret:        getEnv("JWT_SECRET", ""),
		AuthDisabled:     getBoolEnv("DISABLE_AUTH", false),
		DevUserID:        getEnv("DEV_USER_ID", "test-user-123"),

		LLMAPIKey:    getEnv("LLM_API_KEY", ""),
		LLMBaseURL:   getEnv("LLM_BASE_URL", "https://api.openai.com/v1"),
		LLMModelName: getEnv("LLM_MODEL_NAME", "gpt-4"),
		LLMTimeout:   getDuration("LLM_TIMEOUT", 20*time.Second),

		SchemaPath:        getEnv("FEATURE_SCHEMA_PATH", ""),
		AliasPath:         getEnv("LAB_ALIAS_PATH", ""),
		ModelArtifactDir:  getEnv("MODEL_ARTIFACT_DIR", "artifacts"),
		ExtractedCacheTTL: getDuration("EXTRACTED_CACHE_TTL", 15*time.Minute),
		PreferUserValues:  getBoolEnv("PREFER_USER_VALUES", true),

		RateLimitRPS:   getIntEnv("RATE_LIMIT_RPS", 50),
		RateLimitBurst: getIntEnv("RATE_LIMIT_BURST", 100),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
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

func getStringSliceEnv(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		parts := strings.Split(value, ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			if trimmed := strings.TrimSpace(p); trimmed != "" {
				out = append(out, trimmed)
			}
		}
		if len(out) > 0 {
			return out
		}
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
