// Package config loads server configuration from a YAML file with
// environment variable overrides.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the resolved server configuration.
type Config struct {
	Addr          string
	DBPath        string
	JWTSecret     string
	TokenDuration time.Duration
	LogLevel      string
}

type configFile struct {
	Server struct {
		Addr     string `yaml:"addr"`
		LogLevel string `yaml:"log_level"`
	} `yaml:"server"`
	Storage struct {
		DBPath string `yaml:"db_path"`
	} `yaml:"storage"`
	Auth struct {
		JWTSecret     string `yaml:"jwt_secret"`
		TokenDuration string `yaml:"token_duration"`
	} `yaml:"auth"`
}

// Load reads the YAML file at path (if it exists), applies defaults, then
// applies environment overrides (ADDR, DB_PATH, JWT_SECRET, LOG_LEVEL).
func Load(path string) (Config, error) {
	cfg := Config{
		Addr:          ":8080",
		DBPath:        "./data/tally.db",
		TokenDuration: 24 * time.Hour,
		LogLevel:      "info",
	}

	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil && !os.IsNotExist(err) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
		if err == nil {
			var file configFile
			if err := yaml.Unmarshal(raw, &file); err != nil {
				return Config{}, fmt.Errorf("parse config: %w", err)
			}
			if file.Server.Addr != "" {
				cfg.Addr = file.Server.Addr
			}
			if file.Server.LogLevel != "" {
				cfg.LogLevel = file.Server.LogLevel
			}
			if file.Storage.DBPath != "" {
				cfg.DBPath = file.Storage.DBPath
			}
			if file.Auth.JWTSecret != "" {
				cfg.JWTSecret = file.Auth.JWTSecret
			}
			if file.Auth.TokenDuration != "" {
				d, err := time.ParseDuration(file.Auth.TokenDuration)
				if err != nil {
					return Config{}, fmt.Errorf("parse token_duration: %w", err)
				}
				cfg.TokenDuration = d
			}
		}
	}

	if v := os.Getenv("ADDR"); v != "" {
		cfg.Addr = v
	}
	if v := os.Getenv("DB_PATH"); v != "" {
		cfg.DBPath = v
	}
	if v := os.Getenv("JWT_SECRET"); v != "" {
		cfg.JWTSecret = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}

	if cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("jwt secret required (config auth.jwt_secret or JWT_SECRET)")
	}
	return cfg, nil
}
