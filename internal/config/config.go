package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	DBDriver         string
	DBHost           string
	DBPort           string
	DBUser           string
	DBPassword       string
	DBName           string
	RedisHost        string
	RedisPort        string
	SessionSecret    string
	GinMode          string
	OpenAIAPIKey     string
	ReminderInterval time.Duration
}

func Load() *Config {
	return &Config{
		DBDriver:         getEnv("DB_DRIVER", "mysql"),
		DBHost:           getEnv("DB_HOST", "localhost"),
		DBPort:           getEnv("DB_PORT", "3306"),
		DBUser:           getEnv("DB_USER", "tasklight"),
		DBPassword:       getEnv("DB_PASSWORD", "tasklight"),
		DBName:           getEnv("DB_NAME", "tasklight"),
		RedisHost:        getEnv("REDIS_HOST", "localhost"),
		RedisPort:        getEnv("REDIS_PORT", "6379"),
		SessionSecret:    getEnv("SESSION_SECRET", "default-secret-key-change-me"),
		GinMode:          getEnv("GIN_MODE", "debug"),
		OpenAIAPIKey:     getEnv("OPENAI_API_KEY", ""),
		ReminderInterval: getEnvMinutes("REMINDER_INTERVAL_MINUTES", 5),
	}
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvMinutes(key string, defaultMinutes int) time.Duration {
	value := os.Getenv(key)
	if value != "" {
		if minutes, err := strconv.Atoi(value); err == nil && minutes > 0 {
			return time.Duration(minutes) * time.Minute
		}
	}
	return time.Duration(defaultMinutes) * time.Minute
}
