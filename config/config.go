package config

import (
	"errors"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	Port          string
	MongoURI      string
	MongoDatabase string
	JWTSecret     string
	GinMode       string

	CloudinaryURL    string
	CloudinaryFolder string

	VAPIDPublicKey  string
	VAPIDPrivateKey string
	VAPIDSubscriber string

	GoogleClientID     string
	GoogleClientSecret string
	GoogleRedirectURL  string

	CORSOrigins        []string
	RateLimitPerMinute int
	FeedPageSize       int
}

const devSecret = "dev-secret-change-me"

var defaultOrigins = []string{"http://localhost:3000", "http://localhost:5173", "http://127.0.0.1:8080"}

// Load reads an optional .env file and then the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("⚠️ could not read .env: %v", err)
	}
	return FromEnv()
}

// FromEnv builds the config from the current environment only.
func FromEnv() (*Config, error) {
	cfg := &Config{
		Port:               getenv("PORT", "8080"),
		MongoURI:           getenv("MONGODB_URI", "mongodb://127.0.0.1:27017"),
		MongoDatabase:      getenv("MONGODB_DATABASE", "socialfeed"),
		JWTSecret:          os.Getenv("JWT_SECRET"),
		GinMode:            getenv("GIN_MODE", "debug"),
		CloudinaryURL:      os.Getenv("CLOUDINARY_URL"),
		CloudinaryFolder:   getenv("CLOUDINARY_FOLDER", "socialfeed/posts"),
		VAPIDPublicKey:     os.Getenv("VAPID_PUBLIC_KEY"),
		VAPIDPrivateKey:    os.Getenv("VAPID_PRIVATE_KEY"),
		VAPIDSubscriber:    getenv("VAPID_SUBSCRIBER", "mailto:admin@example.com"),
		GoogleClientID:     os.Getenv("GOOGLE_CLIENT_ID"),
		GoogleClientSecret: os.Getenv("GOOGLE_CLIENT_SECRET"),
		GoogleRedirectURL:  getenv("GOOGLE_REDIRECT_URL", "http://localhost:8080/api/google/callback"),
		CORSOrigins:        splitList(os.Getenv("CORS_ORIGINS"), defaultOrigins),
		RateLimitPerMinute: getint("RATE_LIMIT_PER_MINUTE", 60),
		FeedPageSize:       getint("FEED_PAGE_SIZE", 4),
	}

	if cfg.JWTSecret == "" {
		if cfg.Release() {
			return nil, errors.New("JWT_SECRET must be set in release mode")
		}
		log.Println("⚠️ JWT_SECRET not set, using development secret")
		cfg.JWTSecret = devSecret
	}
	if cfg.FeedPageSize < 1 {
		return nil, errors.New("FEED_PAGE_SIZE must be at least 1")
	}
	return cfg, nil
}

func (c *Config) Release() bool {
	return c.GinMode == "release"
}

// PushEnabled reports whether both VAPID keys are configured.
func (c *Config) PushEnabled() bool {
	return c.VAPIDPublicKey != "" && c.VAPIDPrivateKey != ""
}

func getenv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func getint(key string, fallback int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Printf("⚠️ %s=%q is not a number, using %d", key, v, fallback)
		return fallback
	}
	return n
}

func splitList(v string, fallback []string) []string {
	if strings.TrimSpace(v) == "" {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
