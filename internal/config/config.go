// Package config loads and validates service configuration via Viper.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config captures all service configuration knobs loaded via Viper.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Logging   LoggingConfig   `mapstructure:"logging"`
	DB        DBConfig        `mapstructure:"db"`
	Fetch     FetchConfig     `mapstructure:"fetch"`
	Market    MarketConfig    `mapstructure:"market"`
	News      NewsConfig      `mapstructure:"news"`
	Translate TranslateConfig `mapstructure:"translate"`
	Schedule  ScheduleConfig  `mapstructure:"schedule"`
}

// ServerConfig controls HTTP server behavior.
type ServerConfig struct {
	Port int `mapstructure:"port"`
}

// LoggingConfig toggles zap development features.
type LoggingConfig struct {
	Development bool `mapstructure:"development"`
}

// DBConfig controls access to the relational database.
type DBConfig struct {
	Provider string `mapstructure:"provider"`
	DSN      string `mapstructure:"dsn"`
	MaxConns int32  `mapstructure:"max_conns"`
	MinConns int32  `mapstructure:"min_conns"`
}

// FetchConfig configures the static HTTP fetcher.
type FetchConfig struct {
	UserAgent      string `mapstructure:"user_agent"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
}

// MarketConfig points the price scraper at the market portal.
type MarketConfig struct {
	URL      string `mapstructure:"url"`
	Timezone string `mapstructure:"timezone"`
}

// NewsConfig governs news discovery and headless rendering.
type NewsConfig struct {
	BaseURL           string  `mapstructure:"base_url"`
	ContentPath       string  `mapstructure:"content_path"`
	SourceLabel       string  `mapstructure:"source_label"`
	TargetLang        string  `mapstructure:"target_lang"`
	MaxArticles       int     `mapstructure:"max_articles"`
	MinTitleLength    int     `mapstructure:"min_title_length"`
	MinBodyLength     int     `mapstructure:"min_body_length"`
	NavTimeoutSeconds int     `mapstructure:"nav_timeout_seconds"`
	MaxParallel       int     `mapstructure:"max_parallel"`
	DomainQPS         float64 `mapstructure:"domain_qps"`
}

// TranslateConfig controls the translation client.
type TranslateConfig struct {
	Endpoint       string `mapstructure:"endpoint"`
	ChunkSize      int    `mapstructure:"chunk_size"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
}

// ScheduleConfig controls the daily cron jobs.
type ScheduleConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Spec    string `mapstructure:"spec"`
}

// Load builds a Config from disk/environment.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("AGRIDATA")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("logging.development", true)
	v.SetDefault("db.provider", "postgres")
	v.SetDefault("db.max_conns", 4)
	v.SetDefault("db.min_conns", 1)
	v.SetDefault("fetch.user_agent", "agrimarket-bot/0.1")
	v.SetDefault("fetch.timeout_seconds", 20)
	v.SetDefault("market.url", "https://kalimatimarket.gov.np/")
	v.SetDefault("market.timezone", "Asia/Kathmandu")
	v.SetDefault("news.base_url", "https://www.moald.gov.np")
	v.SetDefault("news.content_path", "/content/")
	v.SetDefault("news.source_label", "Ministry of Agriculture & Livestock Development, Nepal")
	v.SetDefault("news.target_lang", "en")
	v.SetDefault("news.max_articles", 12)
	v.SetDefault("news.min_title_length", 15)
	v.SetDefault("news.min_body_length", 80)
	v.SetDefault("news.nav_timeout_seconds", 30)
	v.SetDefault("news.max_parallel", 1)
	v.SetDefault("news.domain_qps", 1)
	v.SetDefault("translate.chunk_size", 500)
	v.SetDefault("translate.timeout_seconds", 10)
	v.SetDefault("schedule.enabled", true)
	v.SetDefault("schedule.spec", "0 6 * * *")
}

// Validate enforces required values and reasonable limits.
func (c Config) Validate() error {
	if c.Server.Port <= 0 {
		return fmt.Errorf("server.port must be > 0")
	}
	switch c.DB.Provider {
	case "postgres":
		if c.DB.DSN == "" {
			return fmt.Errorf("db.dsn must be set when db.provider is postgres")
		}
	case "memory":
	default:
		return fmt.Errorf("db.provider must be postgres or memory")
	}
	if c.Fetch.TimeoutSeconds <= 0 {
		return fmt.Errorf("fetch.timeout_seconds must be > 0")
	}
	if c.Market.URL == "" {
		return fmt.Errorf("market.url must be set")
	}
	if _, err := time.LoadLocation(c.Market.Timezone); err != nil {
		return fmt.Errorf("market.timezone is invalid: %w", err)
	}
	if c.News.BaseURL == "" {
		return fmt.Errorf("news.base_url must be set")
	}
	if c.News.MaxArticles <= 0 {
		return fmt.Errorf("news.max_articles must be > 0")
	}
	if c.News.MaxParallel <= 0 {
		return fmt.Errorf("news.max_parallel must be > 0")
	}
	if c.Translate.ChunkSize <= 0 {
		return fmt.Errorf("translate.chunk_size must be > 0")
	}
	if c.Schedule.Spec == "" {
		return fmt.Errorf("schedule.spec must be set")
	}
	return nil
}

// MarketLocation resolves the configured market timezone.
func (c Config) MarketLocation() *time.Location {
	loc, err := time.LoadLocation(c.Market.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// FetchTimeout converts the fetch timeout into a duration.
func (c Config) FetchTimeout() time.Duration {
	return time.Duration(c.Fetch.TimeoutSeconds) * time.Second
}

// NavTimeout converts the headless navigation timeout into a duration.
func (c Config) NavTimeout() time.Duration {
	return time.Duration(c.News.NavTimeoutSeconds) * time.Second
}

// TranslateTimeout converts the per-chunk translation timeout into a duration.
func (c Config) TranslateTimeout() time.Duration {
	return time.Duration(c.Translate.TimeoutSeconds) * time.Second
}
