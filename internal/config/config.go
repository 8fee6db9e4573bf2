package config

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type HTTPConfig struct {
	Host        string
	Port        int
	CORSOrigins []string
}

type APIConfig struct {
	BaseURL      string
	MediaBaseURL string
	Timeout      time.Duration
}

type DBConfig struct {
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime string
}

type AuthConfig struct {
	TokenStore string
	TokenFile  string
}

type CacheConfig struct {
	Backend       string
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	TTL           time.Duration
}

type TrackingConfig struct {
	PollInterval       time.Duration
	MachinesRetries    int
	MachinesRetryDelay time.Duration
	DefaultCenterLat   float64
	DefaultCenterLng   float64
}

type Config struct {
	Environment string
	HTTP        HTTPConfig
	API         APIConfig
	DB          DBConfig
	Auth        AuthConfig
	Cache       CacheConfig
	Tracking    TrackingConfig
}

const (
	TokenStoreFile = "file"
	TokenStoreDB   = "db"

	CacheMemory = "memory"
	CacheRedis  = "redis"
)

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName("app")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("./deploy")
	v.AddConfigPath("./internal/config")
	v.AutomaticEnv()

	_ = v.ReadInConfig()

	return fromViper(v)
}

func fromViper(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		Environment: v.GetString("APP_ENV"),
		HTTP: HTTPConfig{
			Host:        v.GetString("HTTP_HOST"),
			Port:        v.GetInt("HTTP_PORT"),
			CORSOrigins: parseList(v.GetString("CORS_ORIGINS")),
		},
		API: APIConfig{
			BaseURL:      strings.TrimRight(v.GetString("API_BASE_URL"), "/"),
			MediaBaseURL: strings.TrimRight(v.GetString("MEDIA_BASE_URL"), "/"),
			Timeout:      v.GetDuration("API_TIMEOUT"),
		},
		DB: DBConfig{
			DSN:             v.GetString("DB_DSN"),
			MaxOpenConns:    v.GetInt("DB_MAX_OPEN_CONNS"),
			MaxIdleConns:    v.GetInt("DB_MAX_IDLE_CONNS"),
			ConnMaxLifetime: v.GetString("DB_CONN_MAX_LIFETIME"),
		},
		Auth: AuthConfig{
			TokenStore: strings.ToLower(v.GetString("TOKEN_STORE")),
			TokenFile:  v.GetString("TOKEN_FILE"),
		},
		Cache: CacheConfig{
			Backend:       strings.ToLower(v.GetString("CACHE_BACKEND")),
			RedisAddr:     v.GetString("REDIS_ADDR"),
			RedisPassword: v.GetString("REDIS_PASSWORD"),
			RedisDB:       v.GetInt("REDIS_DB"),
			TTL:           v.GetDuration("CACHE_TTL"),
		},
		Tracking: TrackingConfig{
			PollInterval:       v.GetDuration("POLL_INTERVAL"),
			MachinesRetries:    v.GetInt("MACHINES_RETRY_ATTEMPTS"),
			MachinesRetryDelay: v.GetDuration("MACHINES_RETRY_DELAY"),
		},
	}

	if cfg.Environment == "" {
		cfg.Environment = "development"
	}
	if cfg.HTTP.Host == "" {
		cfg.HTTP.Host = "127.0.0.1"
	}
	if cfg.HTTP.Port == 0 {
		cfg.HTTP.Port = 7090
	}
	if len(cfg.HTTP.CORSOrigins) == 0 {
		cfg.HTTP.CORSOrigins = []string{"http://localhost:3000"}
	}
	if cfg.API.Timeout == 0 {
		cfg.API.Timeout = 15 * time.Second
	}
	if cfg.API.MediaBaseURL == "" {
		cfg.API.MediaBaseURL = originOf(cfg.API.BaseURL)
	}
	if cfg.Auth.TokenStore == "" {
		cfg.Auth.TokenStore = TokenStoreFile
	}
	if cfg.Auth.TokenFile == "" {
		cfg.Auth.TokenFile = ".drillfleet-token"
	}
	if cfg.Cache.Backend == "" {
		cfg.Cache.Backend = CacheMemory
	}
	if cfg.Cache.TTL == 0 {
		cfg.Cache.TTL = 30 * time.Second
	}
	if cfg.Tracking.PollInterval == 0 {
		cfg.Tracking.PollInterval = 5 * time.Second
	}
	if cfg.Tracking.MachinesRetries == 0 {
		cfg.Tracking.MachinesRetries = 3
	}
	if cfg.Tracking.MachinesRetryDelay == 0 {
		cfg.Tracking.MachinesRetryDelay = time.Second
	}

	lat, lng, err := parseCenter(v.GetString("MAP_DEFAULT_CENTER"))
	if err != nil {
		return nil, err
	}
	cfg.Tracking.DefaultCenterLat = lat
	cfg.Tracking.DefaultCenterLng = lng

	if err := validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func validate(cfg *Config) error {
	if cfg.API.BaseURL == "" {
		return fmt.Errorf("API_BASE_URL is required")
	}
	if _, err := url.ParseRequestURI(cfg.API.BaseURL); err != nil {
		return fmt.Errorf("API_BASE_URL is invalid: %w", err)
	}
	switch cfg.Auth.TokenStore {
	case TokenStoreFile:
	case TokenStoreDB:
		if cfg.DB.DSN == "" {
			return fmt.Errorf("DB_DSN is required when TOKEN_STORE=db")
		}
	default:
		return fmt.Errorf("TOKEN_STORE must be %q or %q", TokenStoreFile, TokenStoreDB)
	}
	switch cfg.Cache.Backend {
	case CacheMemory:
	case CacheRedis:
		if cfg.Cache.RedisAddr == "" {
			return fmt.Errorf("REDIS_ADDR is required when CACHE_BACKEND=redis")
		}
	default:
		return fmt.Errorf("CACHE_BACKEND must be %q or %q", CacheMemory, CacheRedis)
	}
	if cfg.Tracking.MachinesRetries < 1 {
		return fmt.Errorf("MACHINES_RETRY_ATTEMPTS must be positive")
	}
	return nil
}

func parseList(raw string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	items := strings.Split(raw, ",")
	result := make([]string, 0, len(items))
	for _, item := range items {
		item = strings.TrimSpace(item)
		if item != "" {
			result = append(result, item)
		}
	}
	return result
}

// parseCenter reads "lat,lng". Empty input falls back to Ankara.
func parseCenter(raw string) (float64, float64, error) {
	parts := parseList(raw)
	if len(parts) == 0 {
		return 39.9334, 32.8597, nil
	}
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("MAP_DEFAULT_CENTER must be \"lat,lng\"")
	}
	lat, err := strconv.ParseFloat(parts[0], 64)
	if err != nil {
		return 0, 0, fmt.Errorf("MAP_DEFAULT_CENTER latitude: %w", err)
	}
	lng, err := strconv.ParseFloat(parts[1], 64)
	if err != nil {
		return 0, 0, fmt.Errorf("MAP_DEFAULT_CENTER longitude: %w", err)
	}
	return lat, lng, nil
}

func originOf(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return raw
	}
	return u.Scheme + "://" + u.Host
}
