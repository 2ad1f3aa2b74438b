package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	// Server settings
	Port         string
	GinMode      string
	ClientOrigin string
	// ServerURL is the externally visible base URL, used to build the OAuth
	// callback. Falls back to ClientOrigin, then to a relative path.
	ServerURL string

	// Session settings
	SessionSecret string

	// Database
	DBUser string
	DBPass string
	DBHost string
	DBName string

	// Google OAuth
	GoogleClientID     string
	GoogleClientSecret string

	// Uploads
	UploadDir string
}

func Load() *Config {
	// Load .env file if exists (ignore error if not found)
	_ = godotenv.Load()

	return &Config{
		Port:               getEnv("PORT", "5000"),
		GinMode:            getEnv("GIN_MODE", "debug"),
		ClientOrigin:       getEnv("CLIENT_ORIGIN", "http://localhost:3000"),
		ServerURL:          getEnv("SERVER_URL", ""),
		SessionSecret:      getEnv("SESSION_SECRET", "change_this_secret"),
		DBUser:             getEnv("DB_USER", "root"),
		DBPass:             getEnv("DB_PASS", ""),
		DBHost:             getEnv("DB_HOST", "127.0.0.1:3306"),
		DBName:             getEnv("DB_NAME", "stopmotion_blog"),
		GoogleClientID:     getEnv("GOOGLE_CLIENT_ID", ""),
		GoogleClientSecret: getEnv("GOOGLE_CLIENT_SECRET", ""),
		UploadDir:          getEnv("UPLOAD_DIR", "./uploads"),
	}
}

func (c *Config) Validate() error {
	if c.GinMode == "release" && c.SessionSecret == "change_this_secret" {
		return fmt.Errorf("SESSION_SECRET must be set in release mode")
	}
	return nil
}

// DSN builds the MySQL connection string.
func (c *Config) DSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s)/%s?parseTime=true",
		c.DBUser, c.DBPass, c.DBHost, c.DBName)
}

// GoogleOAuthEnabled reports whether Google login is configured.
func (c *Config) GoogleOAuthEnabled() bool {
	return c.GoogleClientID != "" && c.GoogleClientSecret != ""
}

// GoogleCallbackURL resolves the OAuth redirect URL. A manually set
// SERVER_URL wins; in release mode the client origin is assumed to share the
// backend's domain; locally a relative path is enough.
func (c *Config) GoogleCallbackURL() string {
	if c.ServerURL != "" {
		return strings.TrimSuffix(c.ServerURL, "/") + "/api/auth/google/callback"
	}
	if c.GinMode == "release" && c.ClientOrigin != "" {
		return strings.TrimSuffix(c.ClientOrigin, "/") + "/api/auth/google/callback"
	}
	return "/api/auth/google/callback"
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}
