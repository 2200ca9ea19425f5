package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Log        LogConfig        `mapstructure:"log"`
	Catalog    CatalogConfig    `mapstructure:"catalog"`
	ScrollSpy  ScrollSpyConfig  `mapstructure:"scrollspy"`
	Storefront StorefrontConfig `mapstructure:"storefront"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Redis      RedisConfig      `mapstructure:"redis"`
}

// ServerConfig holds HTTP API configuration
type ServerConfig struct {
	Port int    `mapstructure:"port"`
	Host string `mapstructure:"host"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

// Catalog sources
const (
	SourceEmbedded = "embedded"
	SourceFile     = "file"
	SourceDatabase = "database"
)

// CatalogConfig selects where the category tree is loaded from
type CatalogConfig struct {
	Source string `mapstructure:"source"`
	File   string `mapstructure:"file"`
}

// ScrollSpyConfig tunes the two-pane menu controller
type ScrollSpyConfig struct {
	SettleDelayMs    int     `mapstructure:"settle_delay_ms"`
	ThrottleMs       int     `mapstructure:"throttle_ms"`
	EdgeThresholdPx  float64 `mapstructure:"edge_threshold_px"`
	RootMarginTop    float64 `mapstructure:"root_margin_top"`
	RootMarginBottom float64 `mapstructure:"root_margin_bottom"`
}

func (c ScrollSpyConfig) SettleDelay() time.Duration {
	return time.Duration(c.SettleDelayMs) * time.Millisecond
}

func (c ScrollSpyConfig) ThrottleInterval() time.Duration {
	return time.Duration(c.ThrottleMs) * time.Millisecond
}

// StorefrontConfig holds the menu import source configuration
type StorefrontConfig struct {
	BaseURL              string   `mapstructure:"base_url"`
	MenuPath             string   `mapstructure:"menu_path"`
	Timeout              int      `mapstructure:"timeout"`
	MaxRetries           int      `mapstructure:"max_retries"`
	MaxWorkers           int      `mapstructure:"max_workers"`
	MaxRequestsPerSecond int      `mapstructure:"max_requests_per_second"`
	Proxies              []string `mapstructure:"proxies"`
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Name     string `mapstructure:"name"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
}

func (c DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		c.Host, c.Port, c.User, c.Password, c.Name)
}

// RedisConfig holds Redis connection details
type RedisConfig struct {
	Host          string `mapstructure:"host"`
	Port          int    `mapstructure:"port"`
	Password      string `mapstructure:"password"`
	Database      int    `mapstructure:"database"`
	ConsumerGroup string `mapstructure:"consumer_group"`
	MinIdleTime   int    `mapstructure:"min_idle_time"`
	SnapshotTTL   int    `mapstructure:"snapshot_ttl"`
}

// Load loads configuration from config.yaml in the working directory with
// environment variable overrides. A missing file leaves the defaults in place.
func Load() (*Config, error) {
	return LoadFrom(viper.New(), "")
}

// LoadFrom loads configuration into v. An empty file searches the working
// directory for config.yaml.
func LoadFrom(v *viper.Viper, file string) (*Config, error) {
	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	setDefaults(v)

	v.SetEnvPrefix("catnav")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if file != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

// Validate checks values that have no safe fallback
func (c *Config) Validate() error {
	switch c.Catalog.Source {
	case SourceEmbedded, SourceDatabase:
	case SourceFile:
		if c.Catalog.File == "" {
			return fmt.Errorf("catalog.file is required when catalog.source is %q", SourceFile)
		}
	default:
		return fmt.Errorf("unknown catalog.source %q", c.Catalog.Source)
	}

	if c.ScrollSpy.SettleDelayMs <= 0 || c.ScrollSpy.ThrottleMs <= 0 {
		return fmt.Errorf("scrollspy delays must be positive")
	}
	if c.ScrollSpy.RootMarginBottom <= -1 || c.ScrollSpy.RootMarginTop <= -1 {
		return fmt.Errorf("scrollspy root margins must be greater than -1")
	}

	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.host", "localhost")

	v.SetDefault("log.level", "info")

	v.SetDefault("catalog.source", SourceEmbedded)
	v.SetDefault("catalog.file", "")

	v.SetDefault("scrollspy.settle_delay_ms", 1000)
	v.SetDefault("scrollspy.throttle_ms", 100)
	v.SetDefault("scrollspy.edge_threshold_px", 10)
	v.SetDefault("scrollspy.root_margin_top", 0)
	v.SetDefault("scrollspy.root_margin_bottom", -0.7)

	v.SetDefault("storefront.base_url", "http://localhost:3000")
	v.SetDefault("storefront.menu_path", "/category")
	v.SetDefault("storefront.timeout", 30)
	v.SetDefault("storefront.max_retries", 3)
	v.SetDefault("storefront.max_workers", 4)
	v.SetDefault("storefront.max_requests_per_second", 5)
	v.SetDefault("storefront.proxies", []string{})

	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.name", "catnav")
	v.SetDefault("database.user", "catnav_user")
	v.SetDefault("database.password", "catnav_pass")

	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.database", 0)
	v.SetDefault("redis.consumer_group", "catnav_import")
	v.SetDefault("redis.min_idle_time", 120)
	v.SetDefault("redis.snapshot_ttl", 3600)
}
