package config

import (
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	Auth     AuthConfig     `yaml:"auth"`
	Presence PresenceConfig `yaml:"presence"`
	Radar    RadarConfig    `yaml:"radar"`
}

type ServerConfig struct {
	Port     int    `yaml:"port"`
	BasePath string `yaml:"base_path"`
	Env      string `yaml:"env"`
	LogLevel string `yaml:"log_level"`
	CORS     string `yaml:"cors_origins"`
}

type DatabaseConfig struct {
	// Driver selects the gorm backend: "postgres" or "sqlite".
	Driver string `yaml:"driver"`
	// URL is the postgres DSN, or the sqlite file path when Driver is "sqlite".
	URL string `yaml:"url"`
}

type RedisConfig struct {
	// URL in redis://[:password@]host:port/db form. Empty disables redis and
	// the service runs single-instance with local-only push delivery.
	URL string `yaml:"url"`
}

type AuthConfig struct {
	ServiceURL string `yaml:"service_url"`
	SecretKey  string `yaml:"secret_key"`
}

type PresenceConfig struct {
	// TTL is how long a presence record stays live without a refresh.
	TTL time.Duration `yaml:"ttl"`
}

// UnmarshalYAML accepts "30s" style duration strings, which yaml cannot
// decode into time.Duration on its own.
func (p *PresenceConfig) UnmarshalYAML(value *yaml.Node) error {
	var raw struct {
		TTL string `yaml:"ttl"`
	}
	if err := value.Decode(&raw); err != nil {
		return err
	}
	if raw.TTL != "" {
		d, err := time.ParseDuration(raw.TTL)
		if err != nil {
			return err
		}
		p.TTL = d
	}
	return nil
}

type RadarConfig struct {
	DefaultRadiusMeters float64 `yaml:"default_radius_m"`
	MaxRadiusMeters     float64 `yaml:"max_radius_m"`
}

func Load(path string) (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port:     8002,
			BasePath: "/api/buzz",
			Env:      "dev",
			LogLevel: "debug",
			CORS:     "*",
		},
		Database: DatabaseConfig{
			Driver: "sqlite",
			URL:    "buzz.db",
		},
		Presence: PresenceConfig{
			TTL: 30 * time.Second,
		},
		Radar: RadarConfig{
			DefaultRadiusMeters: 50,
			MaxRadiusMeters:     100,
		},
	}

	// Load from yaml file if exists
	if data, err := os.ReadFile(path); err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, err
		}
	}

	// Override with environment variables
	if port := os.Getenv("PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			cfg.Server.Port = p
		}
	}
	if basePath := os.Getenv("SERVER_BASE_PATH"); basePath != "" {
		cfg.Server.BasePath = basePath
	}
	if env := os.Getenv("ENV"); env != "" {
		cfg.Server.Env = env
	}
	if logLevel := os.Getenv("LOG_LEVEL"); logLevel != "" {
		cfg.Server.LogLevel = logLevel
	}
	if cors := os.Getenv("CORS_ORIGINS"); cors != "" {
		cfg.Server.CORS = cors
	}
	if driver := os.Getenv("DATABASE_DRIVER"); driver != "" {
		cfg.Database.Driver = driver
	}
	if dbURL := os.Getenv("DATABASE_URL"); dbURL != "" {
		cfg.Database.URL = dbURL
		if os.Getenv("DATABASE_DRIVER") == "" {
			cfg.Database.Driver = "postgres"
		}
	}
	if redisURL := os.Getenv("REDIS_URL"); redisURL != "" {
		cfg.Redis.URL = redisURL
	}
	if authURL := os.Getenv("AUTH_SERVICE_URL"); authURL != "" {
		cfg.Auth.ServiceURL = authURL
	}
	if secretKey := os.Getenv("SECRET_KEY"); secretKey != "" {
		cfg.Auth.SecretKey = secretKey
	}
	if ttl := os.Getenv("PRESENCE_TTL"); ttl != "" {
		if d, err := time.ParseDuration(ttl); err == nil {
			cfg.Presence.TTL = d
		}
	}
	if radius := os.Getenv("RADAR_RADIUS_M"); radius != "" {
		if r, err := strconv.ParseFloat(radius, 64); err == nil {
			cfg.Radar.DefaultRadiusMeters = r
		}
	}

	return cfg, nil
}
