package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	App       AppConfig
	Database  DatabaseConfig
	Pipeline  PipelineConfig
	Extractor ExtractorConfig
	SMTP      SMTPConfig
}

type AppConfig struct {
	Port                string
	Environment         string
	LogFilePath         string
	PipelineLogFilePath string
	CorsAllowedOrigins  string
	NatsURL             string
	RedisURL            string
}

type DatabaseConfig struct {
	Connection string
}

type PipelineConfig struct {
	CorrelationTimeoutSeconds int
	MaxMessagesPerSession     int
	AllowedSender             string
	QueuePartitions           int
	SessionTopicName          string
	ResultTopicName           string
	DeadLetterTopicName       string
}

type ExtractorConfig struct {
	Provider       string // "ollama" or "gemini"
	OllamaBaseURL  string
	OllamaModel    string
	GeminiAPIKey   string
	TimeoutSeconds int
}

type SMTPConfig struct {
	Host       string
	Port       int
	Email      string
	Password   string
	SenderName string
	AlertEmail string
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, usage system environment")
	}

	return &Config{
		App: AppConfig{
			Port:                getEnv("APP_PORT", "3000"),
			Environment:         getEnv("GO_ENV", "development"),
			LogFilePath:         getEnv("LOG_FILE_PATH", "app.log"),
			PipelineLogFilePath: getEnv("PIPELINE_LOG_FILE_PATH", "logs/pipeline.log"),
			CorsAllowedOrigins:  getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
			NatsURL:             getEnv("NATS_URL", "nats://localhost:4222"),
			RedisURL:            getEnv("REDIS_URL", "redis://localhost:6379"),
		},
		Database: DatabaseConfig{
			Connection: getEnv("DB_CONNECTION_STRING", ""),
		},
		Pipeline: PipelineConfig{
			CorrelationTimeoutSeconds: getEnvAsInt("CORRELATION_TIMEOUT_SECONDS", 120),
			MaxMessagesPerSession:     getEnvAsInt("MAX_MESSAGES_PER_SESSION", 10),
			AllowedSender:             getEnv("ALLOWED_SENDER", ""),
			QueuePartitions:           getEnvAsInt("QUEUE_PARTITIONS", 4),
			SessionTopicName:          getEnv("SESSION_TOPIC_NAME", "SESSIONS_FINALIZED"),
			ResultTopicName:           getEnv("RESULT_TOPIC_NAME", "LEADS_PROCESSED"),
			DeadLetterTopicName:       getEnv("DEAD_LETTER_TOPIC_NAME", "PIPELINE_DEAD_LETTER"),
		},
		Extractor: ExtractorConfig{
			Provider:       getEnv("EXTRACTOR_PROVIDER", "ollama"),
			OllamaBaseURL:  getEnv("OLLAMA_BASE_URL", "http://localhost:11434"),
			OllamaModel:    getEnv("OLLAMA_MODEL", "llama3"),
			GeminiAPIKey:   getEnv("GOOGLE_GEMINI_API_KEY", ""),
			TimeoutSeconds: getEnvAsInt("EXTRACTOR_TIMEOUT_SECONDS", 60),
		},
		SMTP: SMTPConfig{
			Host:       getEnv("SMTP_HOST", ""),
			Port:       getEnvAsInt("SMTP_PORT", 587),
			Email:      getEnv("SMTP_EMAIL", ""),
			Password:   getEnv("SMTP_PASSWORD", ""),
			SenderName: getEnv("SMTP_SENDER_NAME", "WA Tracker"),
			AlertEmail: getEnv("ALERT_EMAIL", ""),
		},
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	strValue := getEnv(key, "")
	if value, err := strconv.Atoi(strValue); err == nil {
		return value
	}
	return fallback
}
