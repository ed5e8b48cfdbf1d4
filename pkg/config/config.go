package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

const (
	DefaultMaxUploadBytes = 200 * 1024
	DefaultPageLimit      = 10
	DefaultMaxPageLimit   = 100
)

type Config struct {
	Server struct {
		Port int    `yaml:"port" validate:"gt=0,lte=65535"`
		Env  string `yaml:"env"`
	} `yaml:"server"`
	Database struct {
		URI        string `yaml:"uri" validate:"required"`
		DBName     string `yaml:"dbname" validate:"required"`
		Collection string `yaml:"collection" validate:"required"`
	} `yaml:"database"`
	Redis struct {
		Enabled     bool          `yaml:"enabled"`
		Host        string        `yaml:"host" validate:"required_if=Enabled true"`
		Port        int           `yaml:"port" validate:"gt=0,lte=65535"`
		Password    string        `yaml:"password"`
		DB          int           `yaml:"db" validate:"gte=0"`
		TLSEnabled  bool          `yaml:"tls_enabled"`
		TLSCertFile string        `yaml:"tls_cert_file"`
		TTL         time.Duration `yaml:"ttl"`
	} `yaml:"redis"`
	Uploads struct {
		Dir          string `yaml:"dir" validate:"required"`
		URLPrefix    string `yaml:"url_prefix" validate:"required"`
		MaxSizeBytes int64  `yaml:"max_size_bytes" validate:"gt=0"`
	} `yaml:"uploads"`
	Pagination struct {
		DefaultLimit int `yaml:"default_limit" validate:"gt=0"`
		MaxLimit     int `yaml:"max_limit" validate:"gtefield=DefaultLimit"`
	} `yaml:"pagination"`
	Cleanup struct {
		Enabled     bool          `yaml:"enabled"`
		Schedule    string        `yaml:"schedule" validate:"required_if=Enabled true"`
		GracePeriod time.Duration `yaml:"grace_period"`
		DryRun      bool          `yaml:"dry_run"`
	} `yaml:"cleanup"`
	RateLimit struct {
		PerMinute int `yaml:"per_minute" validate:"gt=0"`
		Burst     int `yaml:"burst" validate:"gt=0"`
	} `yaml:"rate_limit"`
	Auth struct {
		JWTSecret string `yaml:"jwt_secret"`
	} `yaml:"auth"`
	Log struct {
		Level string `yaml:"level" validate:"omitempty,oneof=DEBUG INFO WARN ERROR debug info warn error"`
	} `yaml:"log"`
}

// IsProduction reports whether the server runs with ENV=production.
func (c *Config) IsProduction() bool {
	return c.Server.Env == "production"
}

func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return Parse(data)
}

// Parse decodes YAML, applies environment overrides and defaults, then validates.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := applyEnv(&cfg); err != nil {
		return nil, err
	}
	applyDefaults(&cfg)

	if err := validator.New().Struct(&cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if cfg.Redis.Enabled && cfg.Redis.TLSEnabled && cfg.Redis.TLSCertFile != "" {
		if _, err := os.Stat(cfg.Redis.TLSCertFile); os.IsNotExist(err) {
			return nil, fmt.Errorf("TLS certificate file does not exist: %s", cfg.Redis.TLSCertFile)
		}
	}

	return &cfg, nil
}

func applyEnv(cfg *Config) error {
	if env := os.Getenv("ENV"); env != "" {
		cfg.Server.Env = env
	}
	if port := os.Getenv("SERVER_PORT"); port != "" {
		portNum, err := strconv.Atoi(port)
		if err != nil {
			return fmt.Errorf("invalid SERVER_PORT value: %w", err)
		}
		cfg.Server.Port = portNum
	}
	if uri := os.Getenv("MONGO_URI"); uri != "" {
		cfg.Database.URI = uri
	}
	if dbname := os.Getenv("DB_NAME"); dbname != "" {
		cfg.Database.DBName = dbname
	}
	if enabled := os.Getenv("REDIS_ENABLED"); enabled != "" {
		cfg.Redis.Enabled = enabled == "true"
	}
	if host := os.Getenv("REDIS_HOST"); host != "" {
		cfg.Redis.Host = host
	}
	if port := os.Getenv("REDIS_PORT"); port != "" {
		portNum, err := strconv.Atoi(port)
		if err != nil {
			return fmt.Errorf("invalid REDIS_PORT value: %w", err)
		}
		cfg.Redis.Port = portNum
	}
	if password := os.Getenv("REDIS_PASSWORD"); password != "" {
		cfg.Redis.Password = password
	}
	if db := os.Getenv("REDIS_DB"); db != "" {
		dbNum, err := strconv.Atoi(db)
		if err != nil {
			return fmt.Errorf("invalid REDIS_DB value: %w", err)
		}
		cfg.Redis.DB = dbNum
	}
	if tlsEnabled := os.Getenv("REDIS_TLS_ENABLED"); tlsEnabled != "" {
		cfg.Redis.TLSEnabled = tlsEnabled == "true"
	}
	if tlsCertFile := os.Getenv("REDIS_TLS_CERT_FILE"); tlsCertFile != "" {
		cfg.Redis.TLSCertFile = tlsCertFile
	}
	if dir := os.Getenv("UPLOAD_DIR"); dir != "" {
		cfg.Uploads.Dir = dir
	}
	if secret := os.Getenv("JWT_SECRET"); secret != "" {
		cfg.Auth.JWTSecret = secret
	}
	if level := os.Getenv("LOG_LEVEL"); level != "" {
		cfg.Log.Level = level
	}
	return nil
}

func applyDefaults(cfg *Config) {
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 4000
	}
	if cfg.Database.Collection == "" {
		cfg.Database.Collection = "Property"
	}
	if cfg.Redis.Host == "" {
		cfg.Redis.Host = "localhost"
	}
	if cfg.Redis.Port == 0 {
		cfg.Redis.Port = 6379
	}
	if cfg.Redis.TTL == 0 {
		cfg.Redis.TTL = 10 * time.Minute
	}
	if cfg.Uploads.Dir == "" {
		cfg.Uploads.Dir = "uploads"
	}
	if cfg.Uploads.URLPrefix == "" {
		cfg.Uploads.URLPrefix = "uploads"
	}
	if cfg.Uploads.MaxSizeBytes == 0 {
		cfg.Uploads.MaxSizeBytes = DefaultMaxUploadBytes
	}
	if cfg.Pagination.DefaultLimit == 0 {
		cfg.Pagination.DefaultLimit = DefaultPageLimit
	}
	if cfg.Pagination.MaxLimit == 0 {
		cfg.Pagination.MaxLimit = DefaultMaxPageLimit
	}
	if cfg.Cleanup.Schedule == "" {
		cfg.Cleanup.Schedule = "@every 1h"
	}
	if cfg.Cleanup.GracePeriod == 0 {
		cfg.Cleanup.GracePeriod = 10 * time.Minute
	}
	if cfg.RateLimit.PerMinute == 0 {
		cfg.RateLimit.PerMinute = 100
	}
	if cfg.RateLimit.Burst == 0 {
		cfg.RateLimit.Burst = 10
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "INFO"
	}
}
