package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	API     APIConfig
	Storage StorageConfig
	Server  ServerConfig
	Media   MediaConfig
}

type APIConfig struct {
	BaseURL       string
	PublicBaseURL string
	Locale        string
	AuthTimeout   time.Duration
	PublicTimeout time.Duration
	// GuestUserID is used for "my lessons" requests while nobody is signed
	// in. Zero disables guest requests.
	GuestUserID int
}

type StorageConfig struct {
	Driver string
	DSN    string
}

type ServerConfig struct {
	Host      string
	Port      string
	LoginPath string
	HomePath  string
}

type MediaConfig struct {
	Dir        string
	TTSWorkers int
}

// Load reads .env (if present) and the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	baseURL := getEnv("API_BASE_URL", "http://localhost:8081")
	cfg := &Config{
		API: APIConfig{
			BaseURL:       baseURL,
			PublicBaseURL: getEnv("PUBLIC_API_BASE_URL", baseURL),
			Locale:        getEnv("LOCALE", "en"),
			AuthTimeout:   getEnvAsDuration("AUTH_TIMEOUT", 10*time.Second),
			PublicTimeout: getEnvAsDuration("PUBLIC_TIMEOUT", 15*time.Second),
			GuestUserID:   getEnvAsInt("GUEST_USER_ID", 0),
		},
		Storage: StorageConfig{
			Driver: getEnv("STORAGE_DRIVER", "sqlite"),
			DSN:    getEnv("STORAGE_DSN", "lingo_client.db"),
		},
		Server: ServerConfig{
			Host:      getEnv("SERVER_HOST", "127.0.0.1"),
			Port:      getEnv("SERVER_PORT", "3000"),
			LoginPath: getEnv("LOGIN_PATH", "/auth-login"),
			HomePath:  getEnv("HOME_PATH", "/pages/home"),
		},
		Media: MediaConfig{
			Dir:        getEnv("MEDIA_DIR", "media"),
			TTSWorkers: getEnvAsInt("TTS_WORKERS", 10),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the values that would otherwise fail late, on the first request.
func (c *Config) Validate() error {
	for name, raw := range map[string]string{
		"API_BASE_URL":        c.API.BaseURL,
		"PUBLIC_API_BASE_URL": c.API.PublicBaseURL,
	} {
		u, err := url.Parse(raw)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("%s must be an absolute URL, got %q", name, raw)
		}
	}
	if c.API.AuthTimeout <= 0 || c.API.PublicTimeout <= 0 {
		return fmt.Errorf("request timeouts must be positive")
	}
	if c.Media.TTSWorkers <= 0 {
		return fmt.Errorf("TTS_WORKERS must be positive")
	}
	return nil
}

func (c *Config) GetServerAddress() string {
	return c.Server.Host + ":" + c.Server.Port
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}
