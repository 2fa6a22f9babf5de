package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	GigaChat  GigaChatConfig
	Recommend RecommendConfig
	Session   SessionConfig
	Logger    LoggerConfig
}

type LoggerConfig struct {
	Level string
}

type ServerConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

type GigaChatConfig struct {
	APIKey             string
	Scope              string
	InsecureSkipVerify bool
	EmbeddingModel     string
	EmbeddingDim       int
	Timeout            time.Duration
}

// RecommendConfig holds the tunables of the retrieval-and-recommendation
// pipeline. Boost margin and display cap are configuration, not constants.
type RecommendConfig struct {
	DisplayCap      int
	OverfetchFactor int
	BoostMargin     float64
	MinSimilarity   float64
	MaxReasons      int
	MaxPros         int
}

type SessionConfig struct {
	TTL time.Duration
}

func Load() (*Config, error) {
	// Try to load .env file from current directory or project root
	envFiles := []string{".env", "../.env", "../../.env"}
	for _, envFile := range envFiles {
		if err := godotenv.Load(envFile); err == nil {
			break
		}
	}
	// No .env file is fine, environment variables are used directly
	// (useful for Docker/K8s)

	readTimeout, _ := strconv.Atoi(getEnv("SERVER_READ_TIMEOUT", "30"))
	writeTimeout, _ := strconv.Atoi(getEnv("SERVER_WRITE_TIMEOUT", "30"))
	embeddingDim, _ := strconv.Atoi(getEnv("GIGACHAT_EMBEDDING_DIM", "1024"))
	llmTimeout, _ := strconv.Atoi(getEnv("GIGACHAT_TIMEOUT_SECONDS", "15"))
	insecureSkipVerify := getEnv("GIGACHAT_INSECURE_SKIP_VERIFY", "true") == "true"

	displayCap, _ := strconv.Atoi(getEnv("RECOMMEND_DISPLAY_CAP", "3"))
	overfetch, _ := strconv.Atoi(getEnv("RECOMMEND_OVERFETCH_FACTOR", "5"))
	boostMargin, _ := strconv.ParseFloat(getEnv("RECOMMEND_BOOST_MARGIN", "0.15"), 64)
	minSimilarity, _ := strconv.ParseFloat(getEnv("RECOMMEND_MIN_SIMILARITY", "0.1"), 64)
	maxReasons, _ := strconv.Atoi(getEnv("RECOMMEND_MAX_REASONS", "4"))
	maxPros, _ := strconv.Atoi(getEnv("RECOMMEND_MAX_PROS", "4"))

	sessionTTL, _ := strconv.Atoi(getEnv("SESSION_TTL_MINUTES", "0"))

	return &Config{
		Server: ServerConfig{
			Port:         getEnv("SERVER_PORT", "8080"),
			ReadTimeout:  time.Duration(readTimeout) * time.Second,
			WriteTimeout: time.Duration(writeTimeout) * time.Second,
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			DBName:   getEnv("DB_NAME", "mba_data"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		GigaChat: GigaChatConfig{
			APIKey:             getEnv("GIGACHAT_API_KEY", ""),
			Scope:              getEnv("GIGACHAT_SCOPE", "GIGACHAT_API_PERS"),
			InsecureSkipVerify: insecureSkipVerify,
			EmbeddingModel:     getEnv("GIGACHAT_EMBEDDING_MODEL", "Embeddings"),
			EmbeddingDim:       embeddingDim,
			Timeout:            time.Duration(llmTimeout) * time.Second,
		},
		Recommend: RecommendConfig{
			DisplayCap:      displayCap,
			OverfetchFactor: overfetch,
			BoostMargin:     boostMargin,
			MinSimilarity:   minSimilarity,
			MaxReasons:      maxReasons,
			MaxPros:         maxPros,
		},
		Session: SessionConfig{
			TTL: time.Duration(sessionTTL) * time.Minute,
		},
		Logger: LoggerConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
	}, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
