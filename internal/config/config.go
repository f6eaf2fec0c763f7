package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	DBDriver   string
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	GinMode    string
	AppVersion string

	// Pagination
	DefaultPerPage int
	MaxPerPage     int

	// Avatar uploads
	AvatarMaxSizeKB  int
	AvatarExtensions []string
	AvatarDir        string

	// Rate limiting
	APIRateAttempts     int
	APIRateDecayMinutes int
	LoginMaxAttempts    int
	LoginDecayMinutes   int

	// Auth tokens
	TokenTTLDays int
}

func Load() *Config {
	// .env is optional; deployments usually set the environment directly
	if err := godotenv.Load(); err == nil {
		log.Println("Loaded configuration from .env")
	}

	return &Config{
		DBDriver:   getEnv("DB_DRIVER", "mysql"),
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "3306"),
		DBUser:     getEnv("DB_USER", "taskuser"),
		DBPassword: getEnv("DB_PASSWORD", "taskpassword"),
		DBName:     getEnv("DB_NAME", "user_task_api"),
		GinMode:    getEnv("GIN_MODE", "debug"),
		AppVersion: getEnv("APP_VERSION", "1.0.0"),

		DefaultPerPage: getEnvInt("PAGINATION_DEFAULT_PER_PAGE", 15),
		MaxPerPage:     getEnvInt("PAGINATION_MAX_PER_PAGE", 100),

		AvatarMaxSizeKB:  getEnvInt("AVATAR_MAX_SIZE_KB", 2048),
		AvatarExtensions: []string{"jpg", "jpeg", "png", "gif"},
		AvatarDir:        getEnv("AVATAR_DIR", "storage/avatars"),

		APIRateAttempts:     getEnvInt("API_RATE_ATTEMPTS", 100),
		APIRateDecayMinutes: getEnvInt("API_RATE_DECAY_MINUTES", 1),
		LoginMaxAttempts:    getEnvInt("LOGIN_MAX_ATTEMPTS", 5),
		LoginDecayMinutes:   getEnvInt("LOGIN_DECAY_MINUTES", 15),

		TokenTTLDays: getEnvInt("TOKEN_TTL_DAYS", 30),
	}
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return n
}
