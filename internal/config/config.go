package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	// Telegram
	BotToken        string
	AdminTelegramID int64

	// Database
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	// Application
	AppEnv   string
	LogLevel string

	// Game
	TimePerQuestion    int
	JoinTimeout        int
	MinQuestions       int
	MinParticipants    int
	ResultPauseSeconds int

	// Rate limiting
	RateLimitPerUser int
}

func LoadConfig() (*Config, error) {
	cfg := &Config{
		BotToken:   getEnv("BOT_TOKEN", ""),
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "quizbot"),
		DBPassword: getEnv("DB_PASSWORD", ""),
		DBName:     getEnv("DB_NAME", "quizbot_db"),
		DBSSLMode:  getEnv("DB_SSLMODE", "disable"),

		AppEnv:   getEnv("APP_ENV", "development"),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		TimePerQuestion:    getEnvInt("TIME_PER_QUESTION", 10),
		JoinTimeout:        getEnvInt("JOIN_TIMEOUT", 60),
		MinQuestions:       getEnvInt("MIN_QUESTIONS", 10),
		MinParticipants:    getEnvInt("MIN_PARTICIPANTS", 1),
		ResultPauseSeconds: getEnvInt("RESULT_PAUSE_SECONDS", 4),

		RateLimitPerUser: getEnvInt("RATE_LIMIT_PER_USER", 20),
	}

	adminStr := getEnv("ADMIN_TELEGRAM_ID", "")
	if adminStr != "" {
		id, err := strconv.ParseInt(adminStr, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid ADMIN_TELEGRAM_ID: %w", err)
		}
		cfg.AdminTelegramID = id
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.BotToken == "" {
		return fmt.Errorf("BOT_TOKEN is required")
	}
	if c.DBPassword == "" {
		return fmt.Errorf("DB_PASSWORD is required")
	}
	if c.TimePerQuestion <= 0 {
		return fmt.Errorf("TIME_PER_QUESTION must be positive")
	}
	if c.JoinTimeout <= 0 {
		return fmt.Errorf("JOIN_TIMEOUT must be positive")
	}
	if c.MinParticipants < 1 {
		return fmt.Errorf("MIN_PARTICIPANTS must be at least 1")
	}
	return nil
}

func (c *Config) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, c.DBSSLMode,
	)
}

func (c *Config) QuestionDuration() time.Duration {
	return time.Duration(c.TimePerQuestion) * time.Second
}

func (c *Config) JoinDuration() time.Duration {
	return time.Duration(c.JoinTimeout) * time.Second
}

func (c *Config) ResultPause() time.Duration {
	return time.Duration(c.ResultPauseSeconds) * time.Second
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}
