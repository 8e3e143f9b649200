package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

type SupabaseConfig struct {
	URL     string // project base URL, e.g. https://xyz.supabase.co
	AnonKey string // public API key sent as apikey header
	// Direct Postgres connection for the remote store (users, approved_members,
	// community tables).
	DBConnString string
}

type OAuthConfig struct {
	// Custom app scheme the provider redirects back to after OAuth.
	RedirectScheme string
	RedirectPath   string
	GoogleClientID string
	// When true the provider client exchanges PKCE codes itself; otherwise the
	// manual fragment/query token extractor is used (resolved once at startup).
	ProviderAssistedCallback bool
}

type ImageHostConfig struct {
	UploadURL    string // unsigned upload endpoint
	UploadPreset string
}

type AppConfig struct {
	HTTPAddr  string
	RedisAddr string
	RedisPass string
	Supabase  SupabaseConfig
	OAuth     OAuthConfig
	ImageHost ImageHostConfig

	VerifyTimeouts []time.Duration
	VerifyDelay    time.Duration
}

// Load reads the environment (optionally from .env). The remote endpoint and API
// key have no sane defaults: their absence is a fatal startup error.
func Load(logger *zap.Logger) (*AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		logger.Info("no .env file found, relying on system env vars")
	}

	cfg := &AppConfig{
		HTTPAddr:  getEnv("HTTP_ADDR", "127.0.0.1:8701"),
		RedisAddr: getEnv("REDIS_ADDR", "127.0.0.1:6379"),
		RedisPass: getEnv("REDIS_PASS", ""),
		Supabase: SupabaseConfig{
			URL:          os.Getenv("SUPABASE_URL"),
			AnonKey:      os.Getenv("SUPABASE_ANON_KEY"),
			DBConnString: os.Getenv("SUPABASE_DB_URL"),
		},
		OAuth: OAuthConfig{
			RedirectScheme:           getEnv("OAUTH_REDIRECT_SCHEME", "com.jbpagrawal.sabha"),
			RedirectPath:             getEnv("OAUTH_REDIRECT_PATH", "auth/callback"),
			GoogleClientID:           getEnv("GOOGLE_CLIENT_ID", ""),
			ProviderAssistedCallback: getEnv("OAUTH_PROVIDER_ASSISTED", "") == "true",
		},
		ImageHost: ImageHostConfig{
			UploadURL:    getEnv("CLOUDINARY_UPLOAD_URL", ""),
			UploadPreset: getEnv("CLOUDINARY_UPLOAD_PRESET", ""),
		},
		VerifyTimeouts: []time.Duration{20 * time.Second, 40 * time.Second},
		VerifyDelay:    time.Second,
	}

	if cfg.Supabase.URL == "" {
		return nil, fmt.Errorf("SUPABASE_URL is required")
	}
	if cfg.Supabase.AnonKey == "" {
		return nil, fmt.Errorf("SUPABASE_ANON_KEY is required")
	}
	if cfg.Supabase.DBConnString == "" {
		return nil, fmt.Errorf("SUPABASE_DB_URL is required")
	}

	return cfg, nil
}

// RedirectURL is the deep-link target registered with the auth provider.
func (c *AppConfig) RedirectURL() string {
	return c.OAuth.RedirectScheme + "://" + c.OAuth.RedirectPath
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
