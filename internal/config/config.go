package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	TelegramToken  string
	WebhookBaseURL string
	WebhookSecret  string

	AIAPIKey string
	AIAPIURL string
	AIModel  string

	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string

	JWTSecret  string
	ServerPort string

	AnswerTimeout time.Duration
	SkipBudget    int
	MaxQuestions  int
	LevelUpProb   float64
	LevelDownProb float64
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	return &Config{
		TelegramToken:  getEnv("TELEGRAM_TOKEN", ""),
		WebhookBaseURL: getEnv("WEBHOOK_BASE_URL", ""),
		WebhookSecret:  getEnv("WEBHOOK_SECRET", ""),

		AIAPIKey: getEnv("AI_API_KEY", ""),
		AIAPIURL: getEnv("AI_API_URL", "https://api.openai.com/v1"),
		AIModel:  getEnv("AI_MODEL", "gpt-4o-mini"),

		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "postgres"),
		DBPassword: getEnv("DB_PASSWORD", "postgres"),
		DBName:     getEnv("DB_NAME", "love_game"),

		JWTSecret:  getEnv("JWT_SECRET", "change-me-in-production"),
		ServerPort: getEnv("SERVER_PORT", "8080"),

		AnswerTimeout: getEnvDuration("ANSWER_TIMEOUT", 60*time.Second),
		SkipBudget:    getEnvInt("SKIP_BUDGET", 1),
		MaxQuestions:  getEnvInt("MAX_QUESTIONS", 10),
		LevelUpProb:   getEnvFloat("LEVEL_UP_PROB", 0.7),
		LevelDownProb: getEnvFloat("LEVEL_DOWN_PROB", 0.3),
	}
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		log.Printf("invalid %s=%q, using %d", key, value, fallback)
		return fallback
	}
	return n
}

func getEnvFloat(key string, fallback float64) float64 {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		log.Printf("invalid %s=%q, using %g", key, value, fallback)
		return fallback
	}
	return f
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		log.Printf("invalid %s=%q, using %s", key, value, fallback)
		return fallback
	}
	return d
}
