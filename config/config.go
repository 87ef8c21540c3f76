package config

import (
	"crypto/rand"
	"encoding/base64"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

const (
	// MinSessionSecretLength is the minimum required length for session secret in production
	MinSessionSecretLength = 32
)

// Backend implementations selectable with BACKEND
const (
	BackendPostgREST = "postgrest"
	BackendLocal     = "local"
)

type Config struct {
	ServerPort  string
	Environment string
	LogLevel    string
	LogFormat   string
	// Data backend
	Backend               string
	SupabaseURL           string
	SupabaseAnonKey       string
	BackendTimeoutSeconds int
	DBPath                string
	TursoDatabaseURL      string
	TursoAuthToken        string
	KodePrefix            string
	// Map feature cache (Redis)
	RedisAddr              string
	RedisPassword          string
	RedisDB                int
	FeatureCacheTTLSeconds int
	// Uploads
	UploadDir      string
	MaxUploadBytes int64
	// Email (Resend)
	ResendAPIKey  string
	EmailFrom     string
	EmailFromName string
	EmailTestMode bool // When true, emails are logged instead of sent
	NotifyEmail   string
	// Other
	AllowedOrigins     []string
	AppURL             string
	SessionSecret      string
	OfficePasswordHash string
	ChromePath         string
	// Cloudflare R2 Storage
	R2AccountID       string
	R2AccessKeyID     string
	R2SecretAccessKey string
	R2BucketName      string
	R2PublicURL       string
}

func Load() *Config {
	// Load .env file (ignore error if not present - use system env vars)
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	environment := getEnv("ENVIRONMENT", "development")
	sessionSecret := getEnv("SESSION_SECRET", "")
	officeHash := getEnv("OFFICE_PASSWORD_HASH", "")

	// Sessions are only issued when office access is enabled
	if officeHash != "" {
		ValidateSessionSecret(sessionSecret, environment)
	}

	// In development, generate a secure secret if none provided
	if sessionSecret == "" && environment != "production" {
		sessionSecret = GenerateSecureSecret()
		log.Println("[INFO] Generated temporary session secret for development. Set SESSION_SECRET env var for persistence.")
	}

	return &Config{
		ServerPort:             getEnv("SERVER_PORT", "8080"),
		Environment:            environment,
		LogLevel:               getEnv("LOG_LEVEL", "info"),
		LogFormat:              getEnv("LOG_FORMAT", "json"),
		Backend:                strings.ToLower(getEnv("BACKEND", BackendPostgREST)),
		SupabaseURL:            getEnv("SUPABASE_URL", ""),
		SupabaseAnonKey:        getEnv("SUPABASE_ANON_KEY", ""),
		BackendTimeoutSeconds:  getEnvInt("BACKEND_TIMEOUT_SECONDS", 15),
		DBPath:                 getEnv("DB_PATH", "db/kjsb.db"),
		TursoDatabaseURL:       getEnv("TURSO_DATABASE_URL", ""),
		TursoAuthToken:         getEnv("TURSO_AUTH_TOKEN", ""),
		KodePrefix:             getEnv("KODE_PREFIX", "BKS"),
		RedisAddr:              getEnv("REDIS_ADDR", ""),
		RedisPassword:          getEnv("REDIS_PASSWORD", ""),
		RedisDB:                getEnvInt("REDIS_DB", 0),
		FeatureCacheTTLSeconds: getEnvInt("FEATURE_CACHE_TTL_SECONDS", 300),
		UploadDir:              getEnv("UPLOAD_DIR", "static/uploads"),
		MaxUploadBytes:         int64(getEnvInt("MAX_UPLOAD_BYTES", 5<<20)),
		ResendAPIKey:           getEnv("RESEND_API_KEY", ""),
		EmailFrom:              getEnv("EMAIL_FROM", "noreply@kjsb.local"),
		EmailFromName:          getEnv("EMAIL_FROM_NAME", "KJSB Tracker"),
		EmailTestMode:          getEnvBool("EMAIL_TEST_MODE", true), // Default true for safety
		NotifyEmail:            getEnv("NOTIFY_EMAIL", ""),
		AllowedOrigins:         strings.Split(getEnv("ALLOWED_ORIGINS", "*"), ","),
		AppURL:                 getEnv("APP_URL", "http://localhost:8080"),
		SessionSecret:          sessionSecret,
		OfficePasswordHash:     officeHash,
		ChromePath:             getEnv("CHROME_PATH", ""),
		R2AccountID:            getEnv("R2_ACCOUNT_ID", ""),
		R2AccessKeyID:          getEnv("R2_ACCESS_KEY_ID", ""),
		R2SecretAccessKey:      getEnv("R2_SECRET_ACCESS_KEY", ""),
		R2BucketName:           getEnv("R2_BUCKET_NAME", ""),
		R2PublicURL:            getEnv("R2_PUBLIC_URL", ""),
	}
}

// OfficeAuthEnabled reports whether pages require the office password
func (c *Config) OfficeAuthEnabled() bool {
	return c.OfficePasswordHash != ""
}

// IsProduction reports whether the app runs in production
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
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
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		log.Printf("[WARNING] %s=%q is not a number, using %d", key, value, defaultValue)
		return defaultValue
	}
	return n
}

func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	// Accept common boolean representations
	switch strings.ToLower(value) {
	case "true", "1", "yes", "on":
		return true
	case "false", "0", "no", "off":
		return false
	default:
		return defaultValue
	}
}

// ValidateSessionSecret validates the session secret meets security requirements
// In production, it must be at least 32 bytes and not a known insecure default
func ValidateSessionSecret(secret string, environment string) error {
	// Known insecure defaults that must be rejected
	insecureDefaults := []string{
		"dev-secret-change-in-production",
		"change-me",
		"secret",
		"development",
		"test",
		"",
	}

	for _, insecure := range insecureDefaults {
		if strings.EqualFold(secret, insecure) {
			if environment == "production" {
				log.Fatal("[CRITICAL] SESSION_SECRET is set to an insecure default value. Generate a secure random secret with: openssl rand -base64 32")
			}
			log.Printf("[WARNING] SESSION_SECRET is set to an insecure default value. This is acceptable only in development.")
			return nil
		}
	}

	if environment == "production" {
		if len(secret) < MinSessionSecretLength {
			log.Fatalf("[CRITICAL] SESSION_SECRET must be at least %d characters in production (current: %d). Generate with: openssl rand -base64 32", MinSessionSecretLength, len(secret))
		}
	}

	return nil
}

// GenerateSecureSecret generates a cryptographically secure random secret
// This is used only for development when no secret is provided
func GenerateSecureSecret() string {
	bytes := make([]byte, 32)
	if _, err := rand.Read(bytes); err != nil {
		log.Printf("[WARNING] Failed to generate secure secret: %v", err)
		return ""
	}
	return base64.StdEncoding.EncodeToString(bytes)
}
