package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server  ServerConfig
	CMS     CMSConfig
	Preview PreviewConfig
	Export  ExportConfig
	Session SessionConfig
}

type ServerConfig struct {
	Port         string
	Mode         string
	ReadTimeout  int
	WriteTimeout int
}

// CMSConfig points at the mailing CMS and the Optimove export endpoint.
// An empty BaseURL switches the service into fixture mode.
type CMSConfig struct {
	BaseURL     string
	SiteBaseURL string
	ExportURL   string
	HTTPTimeout time.Duration
}

type PreviewConfig struct {
	CacheSize        int
	PrefetchMarginPx int
}

type ExportConfig struct {
	Concurrency int
}

type SessionConfig struct {
	Secret string
}

var AppConfig *Config

// Load loads configuration from .env file and environment variables
func Load() error {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	AppConfig = &Config{
		Server: ServerConfig{
			Port:         getEnv("PORT", "8080"),
			Mode:         getEnv("GIN_MODE", "release"),
			ReadTimeout:  getEnvAsInt("READ_TIMEOUT", 15),
			WriteTimeout: getEnvAsInt("WRITE_TIMEOUT", 15),
		},
		CMS: CMSConfig{
			BaseURL:     getEnv("CMS_BASE_URL", ""),
			SiteBaseURL: getEnv("SITE_BASE_URL", "https://cms.test.env.works"),
			ExportURL:   getEnv("OPTIMOVE_EXPORT_URL", "/sitecore/api/email-export/export"),
			HTTPTimeout: time.Duration(getEnvAsInt("HTTP_TIMEOUT", 15)) * time.Second,
		},
		Preview: PreviewConfig{
			CacheSize:        getEnvAsInt("PREVIEW_CACHE_SIZE", 256),
			PrefetchMarginPx: getEnvAsInt("PREVIEW_PREFETCH_MARGIN_PX", 600),
		},
		Export: ExportConfig{
			Concurrency: getEnvAsInt("EXPORT_CONCURRENCY", 1),
		},
		Session: SessionConfig{
			Secret: getEnv("SESSION_SECRET", "default-secret-key"),
		},
	}

	return nil
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt gets an environment variable as integer or returns a default value
func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}
