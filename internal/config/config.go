// Package config provides configuration management for the application.
package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
//
//nolint:govet // fieldalignment: Accept minor memory overhead for better readability
type Config struct {
	Server    ServerConfig
	YouTube   YouTubeConfig
	Cache     CacheConfig
	RateLimit RateLimitConfig
	Logging   LoggingConfig
}

// ServerConfig contains HTTP server configuration.
type ServerConfig struct {
	Port            int
	StaticDir       string
	ShutdownTimeout time.Duration
}

// YouTubeConfig contains upstream API and ingestion configuration.
//
//nolint:govet // fieldalignment: Accept minor memory overhead for better readability
type YouTubeConfig struct {
	APIKey       string
	MinKeyLength int
	PageSize     int64
	MaxPagesLive int
	MaxPagesDemo int
	DemoVideoCap int
	BatchSize    int
	BatchDelay   time.Duration
}

// CacheConfig contains local cache storage configuration.
type CacheConfig struct {
	Path   string
	MaxAge time.Duration
}

// RateLimitConfig contains demo-mode usage ceilings. Both caps reset at
// UTC-day boundaries.
type RateLimitConfig struct {
	PerFingerprintDaily int
	GlobalDaily         int
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	Level string
	File  string
}

// Load loads configuration from file and environment variables.
func Load() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")

	// Set defaults
	setDefaults()

	// Read environment variables
	viper.AutomaticEnv()
	viper.SetEnvPrefix("APP")

	// The API key is conventionally provided via YOUTUBE_API_KEY.
	_ = viper.BindEnv("youtube.apikey", "YOUTUBE_API_KEY", "APP_YOUTUBE_APIKEY")

	// Try to read config file
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		// Config file not found, use defaults and env vars
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

func setDefaults() {
	// Server
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.staticdir", "")
	viper.SetDefault("server.shutdowntimeout", 30*time.Second)

	// YouTube / ingestion
	viper.SetDefault("youtube.apikey", "")
	viper.SetDefault("youtube.minkeylength", 35)
	viper.SetDefault("youtube.pagesize", 50)
	viper.SetDefault("youtube.maxpageslive", 100)
	viper.SetDefault("youtube.maxpagesdemo", 2)
	viper.SetDefault("youtube.demovideocap", 100)
	viper.SetDefault("youtube.batchsize", 50)
	viper.SetDefault("youtube.batchdelay", 100*time.Millisecond)

	// Cache
	viper.SetDefault("cache.path", "channeldash.db")
	viper.SetDefault("cache.maxage", 24*time.Hour)

	// Rate limiting (demo mode)
	viper.SetDefault("ratelimit.perfingerprintdaily", 5)
	viper.SetDefault("ratelimit.globaldaily", 50)

	// Logging
	viper.SetDefault("logging.level", "info")
	viper.SetDefault("logging.file", "")
}
