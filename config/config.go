package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port     string
	LogLevel string
	DBUrl    string
	// Hosted auth provider (JWT issuer)
	SupabaseUrl       string
	SupabaseJWTSecret string
	FrontendURL       string
	AllowedOrigins    []string
	// SMTP Configuration
	SMTPHost      string
	SMTPPort      string
	SMTPUsername  string
	SMTPPassword  string
	SMTPFromEmail string
	// Redis Configuration
	RedisURL      string
	RedisPassword string
	// Object storage (S3 compatible)
	S3Endpoint      string
	S3Region        string
	S3Bucket        string
	S3AccessKey     string
	S3SecretKey     string
	S3PublicBaseURL string
	// ClamAVAddress is a clamd "host:port" or unix socket path; empty disables scanning
	ClamAVAddress string
	ClamAVTimeout time.Duration
	// Rate Limiting Configuration
	RateLimitWindowSeconds   int
	RateLimitGlobalThreshold int
	RateLimitUploadThreshold int
	// Realtime and scheduling
	AttendanceRefreshSpec string
	ActiveUserWindow      time.Duration
	StatsCacheTTL         time.Duration
	SchedulerJobTimeout   time.Duration
	EnableSwagger         bool
	// SecureCookies marks the csrf cookie Secure (disable for plain-http local development)
	SecureCookies bool
}

func LoadConfig() (*Config, error) {
	// Missing .env is fine outside local development.
	_ = godotenv.Load()

	cfg := &Config{
		Port:              getEnv("PORT", "8080"),
		LogLevel:          getEnv("LOG_LEVEL", "info"),
		DBUrl:             getEnv("DATABASE_URL", ""),
		SupabaseUrl:       strings.TrimRight(getEnv("SUPABASE_URL", ""), "/"),
		SupabaseJWTSecret: getEnv("SUPABASE_JWT_SECRET", ""),
		FrontendURL:       strings.TrimRight(getEnv("FRONTEND_URL", "http://localhost:5173"), "/"),
		SMTPHost:          getEnv("SMTP_HOST", ""),
		SMTPPort:          getEnv("SMTP_PORT", "587"),
		SMTPUsername:      getEnv("SMTP_USERNAME", ""),
		SMTPPassword:      getEnv("SMTP_PASSWORD", ""),
		SMTPFromEmail:     getEnv("SMTP_FROM_EMAIL", "placements@example.edu"),
		RedisURL:          getEnv("REDIS_URL", ""),
		RedisPassword:     getEnv("REDIS_PASSWORD", ""),
		S3Endpoint:        getEnv("S3_ENDPOINT", ""),
		S3Region:          getEnv("S3_REGION", "us-east-1"),
		S3Bucket:          getEnv("S3_BUCKET", ""),
		S3AccessKey:       getEnv("S3_ACCESS_KEY", ""),
		S3SecretKey:       getEnv("S3_SECRET_KEY", ""),
		S3PublicBaseURL:   strings.TrimRight(getEnv("S3_PUBLIC_BASE_URL", ""), "/"),
		ClamAVAddress:     getEnv("CLAMAV_ADDRESS", ""),
		ClamAVTimeout:     getEnvDuration("CLAMAV_TIMEOUT", 30*time.Second),

		RateLimitWindowSeconds:   getEnvInt("RATE_LIMIT_WINDOW_SECONDS", 60),
		RateLimitGlobalThreshold: getEnvInt("RATE_LIMIT_GLOBAL_THRESHOLD", 120),
		RateLimitUploadThreshold: getEnvInt("RATE_LIMIT_UPLOAD_THRESHOLD", 10),

		AttendanceRefreshSpec: getEnv("ATTENDANCE_REFRESH_SPEC", "*/30 * * * * *"),
		ActiveUserWindow:      getEnvDuration("ACTIVE_USER_WINDOW", 5*time.Minute),
		StatsCacheTTL:         getEnvDuration("STATS_CACHE_TTL", time.Minute),
		SchedulerJobTimeout:   getEnvDuration("SCHEDULER_JOB_TIMEOUT", 30*time.Second),
		EnableSwagger:         getEnvBool("ENABLE_SWAGGER", true),
		SecureCookies:         getEnvBool("SECURE_COOKIES", true),
	}
	cfg.AllowedOrigins = splitList(getEnv("ALLOWED_ORIGINS", cfg.FrontendURL))

	if cfg.DBUrl == "" {
		log.Println("WARNING: DATABASE_URL is missing. Application may fail to connect.")
	}
	if cfg.RedisURL == "" {
		log.Println("WARNING: REDIS_URL not configured. Realtime fan-out, rate limiting and caches stay in-process.")
	}

	return cfg, nil
}

// StorageConfigured reports whether uploads can be stored.
func (c *Config) StorageConfigured() bool {
	return c.S3Bucket != "" && c.S3AccessKey != "" && c.S3SecretKey != ""
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

// getEnvInt returns an integer environment variable or fallback if not set/invalid
func getEnvInt(key string, fallback int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return fallback
}

// getEnvBool returns a boolean environment variable or fallback if not set/invalid
func getEnvBool(key string, fallback bool) bool {
	if value, exists := os.LookupEnv(key); exists {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if d, err := time.ParseDuration(value); err == nil && d > 0 {
			return d
		}
	}
	return fallback
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, strings.TrimRight(p, "/"))
		}
	}
	return out
}
