package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	Port      string
	JWTKey    string
	SaltRound int

	DBDriver   string // postgres, sqlite or mysql
	DBHost     string
	DBUser     string
	DBPassword string
	DBName     string
	DBPort     string

	AutoLogout time.Duration

	VerificationEmailDomains []string // empty disables the institutional domain check
	VerificationMaxBytes     int64
	ResumeMaxBytes           int64
	LogoMaxBytes             int64

	StorageDriver         string // local or supabase
	UploadDir             string
	UploadBaseURL         string
	SupabaseProjectURL    string
	SupabaseServiceKey    string
	SupabaseBucket        string
	SupabaseSignedURLTTL  time.Duration
	SessionPurgeSchedule  string
	RedisURL              string
	ApplyRateLimit        int
	ApplyRateLimitWindow  time.Duration
	GlobalRateLimit       int
	GlobalRateLimitWindow time.Duration
}

// AppConfig is a global variable to access configuration
var AppConfig *Config

// LoadConfig initializes configuration from environment variables or defaults
func LoadConfig() {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found. Using system environment variables.")
	}

	AppConfig = &Config{
		Port:      getEnv("PORT", "3000"),
		JWTKey:    getEnv("JWT_SECRET_KEY", "defaultSecret"),
		SaltRound: getEnvInt("SALT_ROUND", 10),

		DBDriver:   getEnv("DB_DRIVER", "postgres"),
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBUser:     getEnv("DB_USER", "postgres"),
		DBPassword: getEnv("DB_PASSWORD", ""),
		DBName:     getEnv("DB_NAME", "campuslink.db"),
		DBPort:     getEnv("DB_PORT", "5432"),

		AutoLogout: time.Duration(getEnvInt("AUTO_LOGOUT_SECONDS", 300)) * time.Second,

		VerificationEmailDomains: getEnvList("VERIFICATION_EMAIL_DOMAINS", ".edu,.ac,.org"),
		VerificationMaxBytes:     int64(getEnvInt("VERIFICATION_MAX_BYTES", 5<<20)),
		ResumeMaxBytes:           int64(getEnvInt("RESUME_MAX_BYTES", 5<<20)),
		LogoMaxBytes:             int64(getEnvInt("LOGO_MAX_BYTES", 2<<20)),

		StorageDriver:         getEnv("STORAGE_DRIVER", "local"),
		UploadDir:             getEnv("UPLOAD_DIR", "./uploads"),
		UploadBaseURL:         getEnv("UPLOAD_BASE_URL", "/uploads"),
		SupabaseProjectURL:    getEnv("SUPABASE_PROJECT_URL", ""),
		SupabaseServiceKey:    getEnv("SUPABASE_SERVICE_ROLE_KEY", ""),
		SupabaseBucket:        getEnv("SUPABASE_BUCKET", "applications"),
		SupabaseSignedURLTTL:  time.Duration(getEnvInt("SUPABASE_SIGNED_URL_SECONDS", 604800)) * time.Second,
		SessionPurgeSchedule:  getEnv("SESSION_PURGE_SCHEDULE", "@every 15m"),
		RedisURL:              getEnv("REDIS_URL", ""),
		ApplyRateLimit:        getEnvInt("APPLY_RATE_LIMIT", 10),
		ApplyRateLimitWindow:  time.Duration(getEnvInt("APPLY_RATE_LIMIT_SECONDS", 60)) * time.Second,
		GlobalRateLimit:       getEnvInt("GLOBAL_RATE_LIMIT", 100),
		GlobalRateLimitWindow: time.Minute,
	}

	// Validate critical configuration
	if AppConfig.JWTKey == "defaultSecret" {
		log.Println("Warning: Using default JWT_SECRET_KEY. Update it in your environment.")
	}
	if AppConfig.StorageDriver == "supabase" && (AppConfig.SupabaseProjectURL == "" || AppConfig.SupabaseServiceKey == "") {
		log.Println("Warning: STORAGE_DRIVER=supabase but SUPABASE_PROJECT_URL or SUPABASE_SERVICE_ROLE_KEY is empty.")
	}
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// getEnvInt retrieves an environment variable as an integer or returns the default integer value
func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	intValue, err := strconv.Atoi(value)
	if err != nil {
		log.Printf("Error converting environment variable %s to int: %v", key, err)
		return defaultValue
	}
	return intValue
}

// getEnvList splits a comma separated variable. A variable set to "-" yields an empty list.
func getEnvList(key, defaultValue string) []string {
	value := getEnv(key, defaultValue)
	if strings.TrimSpace(value) == "-" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		part = strings.ToLower(strings.TrimSpace(part))
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}
