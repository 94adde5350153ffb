package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type RuntimeConfig struct {
	Dev bool
}

type LogConfig struct {
	Level  string `yaml:"level"`  // trace|debug|info|warn|error
	Format string `yaml:"format"` // json|console
}

type StorageConfig struct {
	DataDir string `yaml:"data_dir"`
}

type SecurityConfig struct {
	// HMACSecret signs voucher payloads. Rotating it invalidates every
	// outstanding voucher.
	HMACSecret string `yaml:"hmac_secret"`
}

type SweepConfig struct {
	Interval time.Duration `yaml:"interval"`
}

type AdminConfig struct {
	Port     int           `yaml:"port"`
	Password string        `yaml:"password"`
	JWTTTL   time.Duration `yaml:"jwt_ttl"`
}

type RedisConfig struct {
	URL      string `yaml:"url"` // empty = redeem rate limiting disabled
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type DispatchConfig struct {
	Mode   string `yaml:"mode"`   // exec | noop
	Shell  string `yaml:"shell"`  // shell binary for exec mode
	Prefix string `yaml:"prefix"` // optional wrapper, e.g. a game console client
}

type Config struct {
	Log      LogConfig      `yaml:"log"`
	Storage  StorageConfig  `yaml:"storage"`
	Security SecurityConfig `yaml:"security"`
	Sweep    SweepConfig    `yaml:"sweep"`
	Admin    AdminConfig    `yaml:"admin"`
	Redis    RedisConfig    `yaml:"redis"`
	Dispatch DispatchConfig `yaml:"dispatch"`
	Catalog  string         `yaml:"catalog"` // path to vips.yaml

	Runtime RuntimeConfig `yaml:"-"`
}

// LoadConfig reads and validates the service configuration.
func LoadConfig(path string, dev bool) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	// defaults
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "json"
	}
	if cfg.Storage.DataDir == "" {
		cfg.Storage.DataDir = "data"
	}
	if cfg.Sweep.Interval <= 0 {
		cfg.Sweep.Interval = 10 * time.Second
	}
	if cfg.Admin.Port == 0 {
		cfg.Admin.Port = 8080
	}
	if cfg.Admin.JWTTTL <= 0 {
		cfg.Admin.JWTTTL = 30 * time.Minute
	}
	if cfg.Catalog == "" {
		cfg.Catalog = "vips.yaml"
	}
	if cfg.Dispatch.Mode == "" {
		cfg.Dispatch.Mode = "noop"
	}
	if cfg.Dispatch.Shell == "" {
		cfg.Dispatch.Shell = "/bin/sh"
	}

	// Minimal validation
	if cfg.Security.HMACSecret == "" {
		return nil, errors.New("security.hmac_secret is required")
	}
	if cfg.Admin.Password == "" {
		return nil, errors.New("admin.password is required")
	}

	cfg.Runtime.Dev = dev
	return &cfg, nil
}
