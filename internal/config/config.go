package config

import (
	"os"
	"strconv"
	"time"

	"parking_tracker/internal/logger"

	"github.com/joho/godotenv"
)

type Config struct {
	ServerPort string
	GinMode    string
	LogLevel   string

	DBHost         string
	DBPort         int
	DBUser         string
	DBPassword     string
	DBName         string
	DBSslMode      string
	DBMaxOpenConns int
	DBMaxIdleConns int

	RedisAddr     string // empty disables the lot list cache
	RedisPassword string
	RedisDB       int
	LotCacheTTL   time.Duration

	NearbyRadiusKm float64

	AWSRegion       string
	SQSSlotQueueURL string // empty disables the slot status consumer
}

func Load() *Config {
	err := godotenv.Load()
	if err != nil && !os.IsNotExist(err) {
		logger.Log.Warnf("could not load .env file: %v", err)
	}

	return &Config{
		ServerPort: getEnv("SERVER_PORT", "3000"),
		GinMode:    getEnv("GIN_MODE", "release"),
		LogLevel:   getEnv("LOG_LEVEL", "info"),

		DBHost:         getEnv("DB_HOST", "localhost"),
		DBPort:         getEnvInt("DB_PORT", 5432),
		DBUser:         getEnv("DB_USER", "parking"),
		DBPassword:     getEnv("DB_PASSWORD", "parking"),
		DBName:         getEnv("DB_NAME", "parking_db"),
		DBSslMode:      getEnv("DB_SSLMODE", "disable"),
		DBMaxOpenConns: getEnvInt("DB_MAX_OPEN_CONNS", 10),
		DBMaxIdleConns: getEnvInt("DB_MAX_IDLE_CONNS", 5),

		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("REDIS_DB", 0),
		LotCacheTTL:   time.Duration(getEnvInt("LOT_CACHE_TTL_SECONDS", 30)) * time.Second,

		NearbyRadiusKm: getEnvFloat("NEARBY_RADIUS_KM", 10),

		AWSRegion:       getEnv("AWS_REGION", "ap-south-1"),
		SQSSlotQueueURL: getEnv("SQS_SLOT_QUEUE_URL", ""),
	}
}

func getEnv(key string, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	logger.Log.Debugf("env '%s' not set, using default '%s'", key, fallback)
	return fallback
}

func getEnvInt(key string, fallback int) int {
	raw, exists := os.LookupEnv(key)
	if !exists || raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		logger.Log.Warnf("env '%s'='%s' is not an integer, using default %d", key, raw, fallback)
		return fallback
	}
	return v
}

func getEnvFloat(key string, fallback float64) float64 {
	raw, exists := os.LookupEnv(key)
	if !exists || raw == "" {
		return fallback
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		logger.Log.Warnf("env '%s'='%s' is not a number, using default %g", key, raw, fallback)
		return fallback
	}
	return v
}
