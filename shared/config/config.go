package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

type Config struct {
	// Database
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	// JWT / session
	JWTSecret         string
	JWTExpireHours    string
	SessionCookieName string

	// Logging
	LogLevel  string
	LogFormat string

	// Redis
	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       string

	// Permissions
	PermissionBackend         string
	PermissionServiceURL      string
	PermissionCacheEnabled    bool
	PermissionCacheTTLSeconds string

	// Hierarchy policy
	HierarchyMaxDepth string

	// Write rate limiting
	RateLimitMaxRequests          string
	RateLimitTimeWindowSeconds    string
	RateLimitBlockDurationMinutes string

	// Frontend URL
	FrontendURL string

	// Service URLs
	CoreServiceURL string

	// MinIO Configuration
	MinIOServerURL    string
	MinIORootUser     string
	MinIORootPassword string
	MinIOUseSSL       bool
	MinIOBucketName   string
	MinIOPublicURL    string

	// Logo uploads
	LogoMaxFileSize string
}

var cfg *Config

// LoadConfig loads configuration from environment variables
func LoadConfig() {
	envPaths := []string{
		".env",
		"../.env",
		"../../.env",
	}

	envLoaded := false
	for _, path := range envPaths {
		if err := godotenv.Load(path); err == nil {
			logrus.Infof("environment loaded from %s", path)
			envLoaded = true
			break
		}
	}

	if !envLoaded {
		logrus.Debug(".env file not found, using system environment variables")
	}

	cfg = &Config{
		// Database
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "postgres"),
		DBPassword: getEnv("DB_PASSWORD", ""),
		DBName:     getEnv("DB_NAME", "orghierarchy"),
		DBSSLMode:  getEnv("DB_SSLMODE", "disable"),

		// JWT / session
		JWTSecret:         getEnv("JWT_SECRET", "your-secret-key-change-this"),
		JWTExpireHours:    getEnv("JWT_EXPIRE_HOURS", "3"),
		SessionCookieName: getEnv("SESSION_COOKIE_NAME", "session_token"),

		// Logging
		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "text"),

		// Redis
		RedisHost:     getEnv("REDIS_HOST", "localhost"),
		RedisPort:     getEnv("REDIS_PORT", "6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnv("REDIS_DB", "0"),

		// Permissions
		PermissionBackend:         getEnv("PERMISSION_BACKEND", "static"),
		PermissionServiceURL:      getEnv("PERMISSION_SERVICE_URL", "http://localhost:8002"),
		PermissionCacheEnabled:    getEnvAsBool("PERMISSION_CACHE_ENABLED", false),
		PermissionCacheTTLSeconds: getEnv("PERMISSION_CACHE_TTL_SECONDS", "900"),

		// Hierarchy policy
		HierarchyMaxDepth: getEnv("HIERARCHY_MAX_DEPTH", "10"),

		// Write rate limiting
		RateLimitMaxRequests:          getEnv("RATE_LIMIT_MAX_REQUESTS", "60"),
		RateLimitTimeWindowSeconds:    getEnv("RATE_LIMIT_TIME_WINDOW_SECONDS", "60"),
		RateLimitBlockDurationMinutes: getEnv("RATE_LIMIT_BLOCK_DURATION_MINUTES", "5"),

		FrontendURL: getEnv("FRONTEND_URL", "http://localhost:3000"),

		CoreServiceURL: getEnv("CORE_SERVICE_URL", "http://localhost:8003"),

		// MinIO Configuration
		MinIOServerURL:    getEnv("MINIO_SERVER_URL", "http://localhost:9000"),
		MinIORootUser:     getEnv("MINIO_ROOT_USER", "minioadmin"),
		MinIORootPassword: getEnv("MINIO_ROOT_PASSWORD", "minioadmin"),
		MinIOUseSSL:       getEnvAsBool("MINIO_USE_SSL", false),
		MinIOBucketName:   getEnv("MINIO_BUCKET_NAME", "organization-logos"),
		MinIOPublicURL:    getEnv("MINIO_PUBLIC_URL", "http://localhost:9000"),

		LogoMaxFileSize: getEnv("LOGO_MAX_FILE_SIZE", "2MB"),
	}

	logrus.Debug("configuration loaded")
}

// GetConfig returns the current configuration
func GetConfig() *Config {
	if cfg == nil {
		LoadConfig()
	}
	return cfg
}

// ServicePort extracts the port from a service URL such as http://localhost:8003.
func ServicePort(serviceURL, fallback string) string {
	idx := strings.LastIndex(serviceURL, ":")
	if idx < 0 || idx == len(serviceURL)-1 {
		return fallback
	}
	port := strings.Trim(serviceURL[idx+1:], "/")
	if _, err := strconv.Atoi(port); err != nil {
		return fallback
	}
	return port
}

// getEnv gets environment variable with default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

// GetHierarchyMaxDepth returns the maximum hierarchy level a node may have
func (c *Config) GetHierarchyMaxDepth() int {
	if value, err := strconv.Atoi(c.HierarchyMaxDepth); err == nil && value > 0 {
		return value
	}
	return 10
}

// GetJWTExpireDuration returns the lifetime of minted session tokens
func (c *Config) GetJWTExpireDuration() time.Duration {
	if hours, err := strconv.Atoi(c.JWTExpireHours); err == nil && hours > 0 {
		return time.Duration(hours) * time.Hour
	}
	return 24 * time.Hour
}

// GetPermissionCacheTTL returns how long permission decisions stay cached
func (c *Config) GetPermissionCacheTTL() time.Duration {
	if value, err := strconv.Atoi(c.PermissionCacheTTLSeconds); err == nil && value > 0 {
		return time.Duration(value) * time.Second
	}
	return 15 * time.Minute
}

// GetRedisDB returns the Redis database index as integer
func (c *Config) GetRedisDB() int {
	if value, err := strconv.Atoi(c.RedisDB); err == nil {
		return value
	}
	return 0
}

// GetRateLimitMaxRequests returns the rate limit max requests as integer
func (c *Config) GetRateLimitMaxRequests() int {
	if value, err := strconv.Atoi(c.RateLimitMaxRequests); err == nil {
		return value
	}
	return 60
}

// GetRateLimitTimeWindowSeconds returns the rate limit time window as integer
func (c *Config) GetRateLimitTimeWindowSeconds() int {
	if value, err := strconv.Atoi(c.RateLimitTimeWindowSeconds); err == nil {
		return value
	}
	return 60
}

// GetRateLimitBlockDurationMinutes returns the rate limit block duration as integer
func (c *Config) GetRateLimitBlockDurationMinutes() int {
	if value, err := strconv.Atoi(c.RateLimitBlockDurationMinutes); err == nil {
		return value
	}
	return 5
}

// GetLogoMaxFileSize parses LOGO_MAX_FILE_SIZE ("2MB", "512KiB", ...) into bytes.
func (c *Config) GetLogoMaxFileSize() int64 {
	if value, err := humanize.ParseBytes(c.LogoMaxFileSize); err == nil && value > 0 {
		return int64(value)
	}
	return 2 << 20
}
