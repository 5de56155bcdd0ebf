package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// Config carries every tunable of the ambient/domain stack: DB/Redis
// connection settings plus the heartbeat, cleanup, rate-limit, CORS,
// and auth tunables.
type Config struct {
	Port        string
	BindAddress string

	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string

	RedisHost string
	RedisPort string

	JWTSecret       string
	AdminKeyHash    string
	AllowedOrigins  []string
	MaxConnsPerIP   int

	HeartbeatInterval  time.Duration
	HeartbeatTimeout   time.Duration
	HeartbeatMaxMissed int

	CleanupInterval     time.Duration
	InactiveUserTimeout time.Duration
	EmptyRoomTimeout    time.Duration
	MaxRoomLifetime     time.Duration
}

func Load() *Config {
	return &Config{
		Port:        getEnv("PORT", "8080"),
		BindAddress: getEnv("BIND_ADDRESS", "localhost"),

		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "flagrooms"),
		DBPassword: getEnv("DB_PASSWORD", "flagrooms123"),
		DBName:     getEnv("DB_NAME", "flagrooms"),

		RedisHost: getEnv("REDIS_HOST", "localhost"),
		RedisPort: getEnv("REDIS_PORT", "6379"),

		JWTSecret:      getEnv("JWT_SECRET", "your-secret-key-change-in-production"),
		AdminKeyHash:   getEnv("ADMIN_API_KEY_HASH", ""),
		AllowedOrigins: getEnvList("CORS_ALLOWED_ORIGINS", []string{
			"http://localhost:3000",
			"http://localhost:3001",
			"https://flags.games",
			"https://www.flags.games",
		}),
		MaxConnsPerIP: getEnvInt("MAX_CONNECTIONS_PER_IP", 1),

		HeartbeatInterval:  getEnvDuration("HEARTBEAT_INTERVAL", 30*time.Second),
		HeartbeatTimeout:   getEnvDuration("HEARTBEAT_TIMEOUT", 10*time.Second),
		HeartbeatMaxMissed: getEnvInt("HEARTBEAT_MAX_MISSED", 3),

		CleanupInterval:     getEnvDuration("CLEANUP_INTERVAL", 10*time.Minute),
		InactiveUserTimeout: getEnvDuration("INACTIVE_USER_TIMEOUT", 5*time.Minute),
		EmptyRoomTimeout:    getEnvDuration("EMPTY_ROOM_TIMEOUT", 10*time.Minute),
		MaxRoomLifetime:     getEnvDuration("MAX_ROOM_LIFETIME", 4*time.Hour),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
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

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return defaultValue
	}
	return d
}

func InitDB(cfg *Config) (*gorm.DB, error) {
	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable TimeZone=UTC",
		cfg.DBHost, cfg.DBUser, cfg.DBPassword, cfg.DBName, cfg.DBPort)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	return db, nil
}

func InitRedis(cfg *Config) *redis.Client {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", cfg.RedisHost, cfg.RedisPort),
		Password: "",
		DB:       0,
	})

	return client
}
