package config

import (
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Gemini   GeminiConfig
	Storage  StorageConfig
	Auth     AuthConfig
	Worker   WorkerConfig
}

type ServerConfig struct {
	Port string
	Env  string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
}

type GeminiConfig struct {
	APIKey string
}

type StorageConfig struct {
	Endpoint       string
	PublicEndpoint string
	AccessKey      string
	SecretKey      string
	UseSSL         bool
	Bucket         string
	MaxFileSize    int64
}

type AuthConfig struct {
	// JWTSecret verifies tokens issued by the external identity provider.
	JWTSecret string
	// WebhookSecret authenticates identity-provider webhook deliveries.
	WebhookSecret string
}

type WorkerConfig struct {
	QueueSize int
	Retries   int
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found. Using default values.")
	}

	return &Config{
		Server: ServerConfig{
			Port: getEnv("PORT", "3000"),
			Env:  getEnv("ENV", "development"),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			DBName:   getEnv("DB_NAME", "folio"),
		},
		Gemini: GeminiConfig{
			APIKey: getEnv("GEMINI_API_KEY", ""),
		},
		Storage: StorageConfig{
			Endpoint:       getEnv("STORAGE_ENDPOINT", "localhost:9000"),
			PublicEndpoint: getEnv("STORAGE_PUBLIC_ENDPOINT", "http://localhost:9000"),
			AccessKey:      getEnv("STORAGE_ACCESS_KEY", "minioadmin"),
			SecretKey:      getEnv("STORAGE_SECRET_KEY", "minioadmin"),
			UseSSL:         getEnvAsBool("STORAGE_USE_SSL", false),
			Bucket:         getEnv("STORAGE_BUCKET", "resumes"),
			MaxFileSize:    getEnvAsInt64("MAX_FILE_SIZE", 10*1024*1024),
		},
		Auth: AuthConfig{
			JWTSecret:     getEnv("JWT_SECRET", ""),
			WebhookSecret: getEnv("WEBHOOK_SECRET", ""),
		},
		Worker: WorkerConfig{
			QueueSize: getEnvAsInt("WORKER_QUEUE_SIZE", 100),
			Retries:   getEnvAsInt("WORKER_RETRIES", 1),
		},
	}
}

func (c *Config) GetDatabaseDSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.DBName,
	)
}

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

func getEnvAsInt64(key string, defaultValue int64) int64 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseInt(valueStr, 10, 64); err == nil {
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
