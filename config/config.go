// Package config provides configuration management for the inkwell application.
// It handles loading and validation of configuration values from environment variables,
// with support for required variables, default values, and collective error reporting.
// Configuration is loaded once at start and treated as immutable afterwards.
package config

import (
	"fmt"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/user/inkwell-go/apperror"
)

// DatabaseConfig holds configuration for the PostgreSQL connection pool.
type DatabaseConfig struct {
	// URL, when set, takes precedence over the individual fields.
	URL            string
	Host           string
	Port           int
	User           string
	Password       string
	DBName         string
	MaxSize        int
	MigrationsPath string
	RunMigrations  bool
}

// DSN returns the connection string for pgx and golang-migrate.
func (c *DatabaseConfig) DSN() string {
	if c.URL != "" {
		return c.URL
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
		c.User, c.Password, c.Host, c.Port, c.DBName)
}

// AuthConfig is the single configuration surface for sessions.
type AuthConfig struct {
	JWTSecret    string        // HMAC secret for signing session tokens
	SessionTTL   time.Duration // lifetime of a session token and its cookie
	CookieName   string        // canonical session cookie name
	CookieSecure bool          // set the Secure attribute on the cookie
	SameSite     http.SameSite // fixed SameSite policy
	// ProtectedPrefixes lists path prefixes that require a session in addition to "/".
	ProtectedPrefixes []string
	// PublicPaths skip the abuse-protection gateway in the request gate.
	PublicPaths []string
	LoginPath   string
}

// GatewayConfig holds settings for the external abuse-protection decision service.
// An empty URL disables the gateway (every request is allowed).
type GatewayConfig struct {
	URL     string
	Key     string
	Timeout time.Duration
}

// UploadConfig holds S3-compatible object storage settings for cover images.
type UploadConfig struct {
	Bucket        string
	Region        string
	Endpoint      string
	AccessKey     string
	SecretKey     string
	PublicBaseURL string
	MaxImageBytes int64
	URLExpiry     time.Duration
}

// Enabled reports whether uploads are configured.
func (c *UploadConfig) Enabled() bool { return c.Bucket != "" }

// ServerConfig holds server-related configuration.
type ServerConfig struct {
	Port               string
	Env                string
	CORSAllowedOrigins []string
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string
	Format string
}

// AppConfig is the top-level configuration structure for the application.
type AppConfig struct {
	DB      *DatabaseConfig
	Auth    *AuthConfig
	Gateway *GatewayConfig
	Upload  *UploadConfig
	Server  *ServerConfig
	Log     *LogConfig
}

// IsProduction reports whether APP_ENV is production.
func (c *AppConfig) IsProduction() bool {
	return strings.EqualFold(c.Server.Env, "production")
}

func getRequiredEnv(key string, errors *[]string) string {
	value, exists := os.LookupEnv(key)
	if !exists || strings.TrimSpace(value) == "" {
		*errors = append(*errors, fmt.Sprintf("missing required environment variable: %s", key))
		return ""
	}
	return value
}

func getOptionalEnv(key string, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getOptionalEnvInt(key string, defaultValue int, errors *[]string) int {
	valueStr, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	valueInt, err := strconv.Atoi(valueStr)
	if err != nil {
		*errors = append(*errors, fmt.Sprintf("invalid value for %s: expected integer, got '%s': %v", key, valueStr, err))
		return defaultValue
	}
	return valueInt
}

func getOptionalEnvBool(key string, defaultValue bool, errors *[]string) bool {
	valueStr, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	v, err := strconv.ParseBool(valueStr)
	if err != nil {
		*errors = append(*errors, fmt.Sprintf("invalid value for %s: expected boolean, got '%s': %v", key, valueStr, err))
		return defaultValue
	}
	return v
}

// `time.ParseDuration` expects a string like "15m", "1h30s".
func getOptionalEnvDuration(key string, defaultValue time.Duration, errors *[]string) time.Duration {
	valueStr, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	valueDuration, err := time.ParseDuration(valueStr)
	if err != nil {
		*errors = append(*errors, fmt.Sprintf("invalid value for %s: expected duration string, got '%s': %v", key, valueStr, err))
		return defaultValue
	}
	return valueDuration
}

func getOptionalEnvList(key string, defaultValue []string) []string {
	valueStr, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(valueStr, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// parseSameSite accepts only "lax" and "strict" so the policy is never mixed.
func parseSameSite(value string, errors *[]string) http.SameSite {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "lax":
		return http.SameSiteLaxMode
	case "strict":
		return http.SameSiteStrictMode
	default:
		*errors = append(*errors, fmt.Sprintf("invalid value for SESSION_SAMESITE: expected lax or strict, got '%s'", value))
		return http.SameSiteLaxMode
	}
}

func clampPoolSize(size int, errors *[]string) int {
	if size < 2 {
		*errors = append(*errors, fmt.Sprintf("DB_POOL_SIZE (%d) is less than minimum 2", size))
		return 2
	}
	if size > 100 {
		*errors = append(*errors, fmt.Sprintf("DB_POOL_SIZE (%d) is greater than maximum 100", size))
		return 100
	}
	return size
}

// LoadConfig creates and returns an AppConfig by reading and validating environment variables.
// It collects all errors encountered during loading and returns a single error if any exist.
// A missing JWT_SECRET is always fatal.
func LoadConfig() (*AppConfig, error) {
	var errors []string

	// Database Configuration
	dbCfg := &DatabaseConfig{
		URL:            getOptionalEnv("DATABASE_URL", ""),
		Host:           getOptionalEnv("DB_HOST", "localhost"),
		Port:           getOptionalEnvInt("DB_PORT", 5432, &errors),
		MaxSize:        clampPoolSize(getOptionalEnvInt("DB_POOL_SIZE", 10, &errors), &errors),
		MigrationsPath: getOptionalEnv("MIGRATIONS_PATH", "./migrations"),
		RunMigrations:  getOptionalEnvBool("RUN_MIGRATIONS", true, &errors),
	}
	if dbCfg.URL == "" {
		dbCfg.User = getRequiredEnv("DB_USER", &errors)
		dbCfg.Password = getRequiredEnv("DB_PASSWORD", &errors)
		dbCfg.DBName = getRequiredEnv("DB_NAME", &errors)
	}

	serverCfg := &ServerConfig{
		Port:               getOptionalEnv("PORT", "8080"),
		Env:                getOptionalEnv("APP_ENV", "development"),
		CORSAllowedOrigins: getOptionalEnvList("CORS_ALLOWED_ORIGINS", []string{"http://localhost:3000"}),
	}
	production := strings.EqualFold(serverCfg.Env, "production")

	// Auth Configuration
	authCfg := &AuthConfig{
		JWTSecret:         getRequiredEnv("JWT_SECRET", &errors),
		SessionTTL:        getOptionalEnvDuration("SESSION_TTL", 2*time.Hour, &errors),
		CookieName:        getOptionalEnv("SESSION_COOKIE_NAME", "auth_token"),
		CookieSecure:      getOptionalEnvBool("SESSION_COOKIE_SECURE", production, &errors),
		SameSite:          parseSameSite(getOptionalEnv("SESSION_SAMESITE", "lax"), &errors),
		ProtectedPrefixes: getOptionalEnvList("PROTECTED_PREFIXES", []string{"/api/uploads"}),
		PublicPaths:       getOptionalEnvList("PUBLIC_PATHS", []string{"/login", "/register", "/healthz"}),
		LoginPath:         getOptionalEnv("LOGIN_PATH", "/login"),
	}
	if authCfg.SessionTTL <= 0 {
		errors = append(errors, "SESSION_TTL must be positive")
	}
	if strings.TrimSpace(authCfg.CookieName) == "" {
		errors = append(errors, "SESSION_COOKIE_NAME must not be empty")
	}

	gatewayCfg := &GatewayConfig{
		URL:     getOptionalEnv("GATEWAY_URL", ""),
		Key:     getOptionalEnv("GATEWAY_KEY", ""),
		Timeout: getOptionalEnvDuration("GATEWAY_TIMEOUT", 2*time.Second, &errors),
	}

	uploadCfg := &UploadConfig{
		Bucket:        getOptionalEnv("S3_BUCKET", ""),
		Region:        getOptionalEnv("S3_REGION", "us-east-1"),
		Endpoint:      getOptionalEnv("S3_ENDPOINT", ""),
		AccessKey:     getOptionalEnv("S3_ACCESS_KEY", ""),
		SecretKey:     getOptionalEnv("S3_SECRET_KEY", ""),
		PublicBaseURL: getOptionalEnv("S3_PUBLIC_BASE_URL", ""),
		MaxImageBytes: int64(getOptionalEnvInt("UPLOAD_MAX_IMAGE_BYTES", 4<<20, &errors)),
		URLExpiry:     getOptionalEnvDuration("UPLOAD_URL_EXPIRY", 15*time.Minute, &errors),
	}

	logCfg := &LogConfig{
		Level:  getOptionalEnv("LOG_LEVEL", "info"),
		Format: getOptionalEnv("LOG_FORMAT", "text"),
	}

	if len(errors) > 0 {
		return nil, apperror.NewConfigError("invalid configuration",
			fmt.Errorf("configuration errors:\n- %s", strings.Join(errors, "\n- ")))
	}

	return &AppConfig{
		DB:      dbCfg,
		Auth:    authCfg,
		Gateway: gatewayCfg,
		Upload:  uploadCfg,
		Server:  serverCfg,
		Log:     logCfg,
	}, nil
}
