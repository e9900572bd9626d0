package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	App          AppConfig
	Database     DatabaseConfig
	Log          LogConfig
	HTTP         HTTPConfig
	Orchestrator OrchestratorConfig
	Sources      SourcesConfig
}

// AppConfig holds application-specific settings
type AppConfig struct {
	Name string
	Env  string
	Port string
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	Host            string
	Port            int
	User            string
	Password        string
	DBName          string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime int // in minutes
	ConnMaxIdleTime int // in minutes
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string // debug, info, warn, error
	Format string // json, console
	Output string // stdout, stderr, or file path
}

// HTTPConfig holds HTTP server configuration
type HTTPConfig struct {
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	IdleTimeout    time.Duration
	MaxHeaderBytes int
	TrustedProxies []string
}

// OrchestratorConfig holds sync cycle orchestration settings
type OrchestratorConfig struct {
	Enabled            bool
	Interval           time.Duration // gap between scheduled cycles
	StartupDelay       time.Duration // wait before the first scheduled cycle
	GlobalTimeout      time.Duration // upper bound waited for one cycle's sources
	Concurrent         bool          // fetch sources in parallel
	PageSize           int           // page size for date-ranged fetches
	AlertThreshold     int           // consecutive cycle failures before alerting
	HealthInterval     time.Duration // gap between source health probes
	RetryAttempts      int           // fetch retries per source call
	RetryBaseDelay     time.Duration // base delay for exponential backoff
	CycleHistorySize   int           // completed cycles kept for inspection
	TriggeredByDefault string        // recorded on transitions produced by sync
}

// SourceConfig holds one marketplace source's connection settings.
// APIKey carries the signing secret; AppKey and AccessToken are only used
// by platforms whose auth scheme needs them.
type SourceConfig struct {
	Enabled     bool
	BaseURL     string
	AppKey      string
	APIKey      string
	AccessToken string
	ShopID      string
	Timeout     time.Duration
	UserAgent   string
}

// SourcesConfig holds per-platform source settings
type SourcesConfig struct {
	Shopee SourceConfig
	Lazada SourceConfig
	TikTok SourceConfig
}

// Load loads configuration from TOML file and environment variables
// Priority (highest to lowest):
// 1. Environment variables with SYNC_ prefix (e.g., SYNC_DATABASE_PASSWORD)
// 2. config.toml
// 3. Built-in defaults
func Load() (*Config, error) {
	v := viper.New()

	// Set config file settings
	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(".")
	v.AddConfigPath("./backend")
	v.AddConfigPath("/app")

	// Read config file
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found is OK, we'll use defaults and env vars
	}

	// Enable environment variable override
	v.SetEnvPrefix("SYNC")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Build config struct
	cfg := &Config{
		App: AppConfig{
			Name: v.GetString("app.name"),
			Env:  v.GetString("app.env"),
			Port: v.GetString("app.port"),
		},
		Database: DatabaseConfig{
			Host:            v.GetString("database.host"),
			Port:            v.GetInt("database.port"),
			User:            v.GetString("database.user"),
			Password:        v.GetString("database.password"),
			DBName:          v.GetString("database.dbname"),
			SSLMode:         v.GetString("database.sslmode"),
			MaxOpenConns:    v.GetInt("database.max_open_conns"),
			MaxIdleConns:    v.GetInt("database.max_idle_conns"),
			ConnMaxLifetime: v.GetInt("database.conn_max_lifetime"),
			ConnMaxIdleTime: v.GetInt("database.conn_max_idle_time"),
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
			Output: v.GetString("log.output"),
		},
		HTTP: HTTPConfig{
			ReadTimeout:    v.GetDuration("http.read_timeout"),
			WriteTimeout:   v.GetDuration("http.write_timeout"),
			IdleTimeout:    v.GetDuration("http.idle_timeout"),
			MaxHeaderBytes: v.GetInt("http.max_header_bytes"),
			TrustedProxies: v.GetStringSlice("http.trusted_proxies"),
		},
		Orchestrator: OrchestratorConfig{
			Enabled:            v.GetBool("orchestrator.enabled"),
			Interval:           v.GetDuration("orchestrator.interval"),
			StartupDelay:       v.GetDuration("orchestrator.startup_delay"),
			GlobalTimeout:      v.GetDuration("orchestrator.global_timeout"),
			Concurrent:         v.GetBool("orchestrator.concurrent"),
			PageSize:           v.GetInt("orchestrator.page_size"),
			AlertThreshold:     v.GetInt("orchestrator.alert_threshold"),
			HealthInterval:     v.GetDuration("orchestrator.health_interval"),
			RetryAttempts:      v.GetInt("orchestrator.retry_attempts"),
			RetryBaseDelay:     v.GetDuration("orchestrator.retry_base_delay"),
			CycleHistorySize:   v.GetInt("orchestrator.cycle_history_size"),
			TriggeredByDefault: v.GetString("orchestrator.triggered_by_default"),
		},
		Sources: SourcesConfig{
			Shopee: SourceConfig{
				Enabled:   v.GetBool("sources.shopee.enabled"),
				BaseURL:   v.GetString("sources.shopee.base_url"),
				APIKey:    v.GetString("sources.shopee.api_key"),
				ShopID:    v.GetString("sources.shopee.shop_id"),
				Timeout:   v.GetDuration("sources.shopee.timeout"),
				UserAgent: v.GetString("sources.shopee.user_agent"),
			},
			Lazada: SourceConfig{
				Enabled:   v.GetBool("sources.lazada.enabled"),
				BaseURL:   v.GetString("sources.lazada.base_url"),
				AppKey:    v.GetString("sources.lazada.app_key"),
				APIKey:    v.GetString("sources.lazada.api_key"),
				ShopID:    v.GetString("sources.lazada.shop_id"),
				Timeout:   v.GetDuration("sources.lazada.timeout"),
				UserAgent: v.GetString("sources.lazada.user_agent"),
			},
			TikTok: SourceConfig{
				Enabled:     v.GetBool("sources.tiktok.enabled"),
				BaseURL:     v.GetString("sources.tiktok.base_url"),
				AppKey:      v.GetString("sources.tiktok.app_key"),
				APIKey:      v.GetString("sources.tiktok.api_key"),
				AccessToken: v.GetString("sources.tiktok.access_token"),
				ShopID:      v.GetString("sources.tiktok.shop_id"),
				Timeout:     v.GetDuration("sources.tiktok.timeout"),
				UserAgent:   v.GetString("sources.tiktok.user_agent"),
			},
		},
	}

	// Apply defaults for empty values
	applyDefaults(cfg)

	// Validate configuration
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// applyDefaults sets default values for any empty config fields
func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "ordersync-backend"
	}
	if cfg.App.Env == "" {
		cfg.App.Env = "development"
	}
	if cfg.App.Port == "" {
		cfg.App.Port = "8080"
	}
	if cfg.Database.Host == "" {
		cfg.Database.Host = "localhost"
	}
	if cfg.Database.Port == 0 {
		cfg.Database.Port = 5432
	}
	if cfg.Database.User == "" {
		cfg.Database.User = "postgres"
	}
	if cfg.Database.DBName == "" {
		cfg.Database.DBName = "ordersync"
	}
	if cfg.Database.SSLMode == "" {
		cfg.Database.SSLMode = "disable"
	}
	if cfg.Database.MaxOpenConns == 0 {
		cfg.Database.MaxOpenConns = 25
	}
	if cfg.Database.MaxIdleConns == 0 {
		cfg.Database.MaxIdleConns = 5
	}
	if cfg.Database.ConnMaxLifetime == 0 {
		cfg.Database.ConnMaxLifetime = 60
	}
	if cfg.Database.ConnMaxIdleTime == 0 {
		cfg.Database.ConnMaxIdleTime = 30
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "console"
	}
	if cfg.Log.Output == "" {
		cfg.Log.Output = "stdout"
	}
	if cfg.HTTP.ReadTimeout == 0 {
		cfg.HTTP.ReadTimeout = 15 * time.Second
	}
	if cfg.HTTP.WriteTimeout == 0 {
		cfg.HTTP.WriteTimeout = 15 * time.Second
	}
	if cfg.HTTP.IdleTimeout == 0 {
		cfg.HTTP.IdleTimeout = 60 * time.Second
	}
	if cfg.HTTP.MaxHeaderBytes == 0 {
		cfg.HTTP.MaxHeaderBytes = 1 << 20 // 1MB
	}
	if cfg.Orchestrator.Interval == 0 {
		cfg.Orchestrator.Interval = 10 * time.Minute
	}
	if cfg.Orchestrator.StartupDelay == 0 {
		cfg.Orchestrator.StartupDelay = 30 * time.Second
	}
	if cfg.Orchestrator.GlobalTimeout == 0 {
		cfg.Orchestrator.GlobalTimeout = 5 * time.Minute
	}
	if cfg.Orchestrator.PageSize == 0 {
		cfg.Orchestrator.PageSize = 50
	}
	if cfg.Orchestrator.AlertThreshold == 0 {
		cfg.Orchestrator.AlertThreshold = 3
	}
	if cfg.Orchestrator.HealthInterval == 0 {
		cfg.Orchestrator.HealthInterval = time.Minute
	}
	if cfg.Orchestrator.RetryAttempts == 0 {
		cfg.Orchestrator.RetryAttempts = 3
	}
	if cfg.Orchestrator.RetryBaseDelay == 0 {
		cfg.Orchestrator.RetryBaseDelay = time.Second
	}
	if cfg.Orchestrator.CycleHistorySize == 0 {
		cfg.Orchestrator.CycleHistorySize = 20
	}
	if cfg.Orchestrator.TriggeredByDefault == "" {
		cfg.Orchestrator.TriggeredByDefault = "sync"
	}
	applySourceDefaults(&cfg.Sources.Shopee, "https://partner.shopeemobile.com")
	applySourceDefaults(&cfg.Sources.Lazada, "https://api.lazada.com/rest")
	applySourceDefaults(&cfg.Sources.TikTok, "https://open-api.tiktokglobalshop.com")
}

func applySourceDefaults(sc *SourceConfig, baseURL string) {
	if sc.BaseURL == "" {
		sc.BaseURL = baseURL
	}
	if sc.Timeout == 0 {
		sc.Timeout = 30 * time.Second
	}
	if sc.UserAgent == "" {
		sc.UserAgent = "ordersync-backend/1.0"
	}
}

// validate performs validation on the configuration
func (c *Config) validate() error {
	// Validate connection pool settings
	if c.Database.MaxOpenConns <= 0 {
		return fmt.Errorf("database.max_open_conns must be positive")
	}
	if c.Database.MaxIdleConns < 0 {
		return fmt.Errorf("database.max_idle_conns cannot be negative")
	}
	if c.Database.MaxIdleConns > c.Database.MaxOpenConns {
		return fmt.Errorf("database.max_idle_conns (%d) cannot exceed database.max_open_conns (%d)",
			c.Database.MaxIdleConns, c.Database.MaxOpenConns)
	}

	if c.Orchestrator.Interval < time.Second {
		return fmt.Errorf("orchestrator.interval must be at least 1s")
	}
	if c.Orchestrator.GlobalTimeout <= 0 {
		return fmt.Errorf("orchestrator.global_timeout must be positive")
	}
	if c.Orchestrator.PageSize <= 0 {
		return fmt.Errorf("orchestrator.page_size must be positive")
	}
	if c.Orchestrator.AlertThreshold <= 0 {
		return fmt.Errorf("orchestrator.alert_threshold must be positive")
	}

	// Production-specific validations
	if c.App.Env == "production" {
		if c.Database.Password == "" {
			return fmt.Errorf("database.password is required in production")
		}
		if c.Database.SSLMode == "disable" {
			return fmt.Errorf("database.sslmode cannot be 'disable' in production")
		}
		for _, sc := range []struct {
			name string
			cfg  SourceConfig
		}{
			{"shopee", c.Sources.Shopee},
			{"lazada", c.Sources.Lazada},
			{"tiktok", c.Sources.TikTok},
		} {
			if sc.cfg.Enabled && sc.cfg.APIKey == "" {
				return fmt.Errorf("sources.%s.api_key is required when the source is enabled in production", sc.name)
			}
		}
	}

	return nil
}

// DSN returns the database connection string with properly escaped values
func (d *DatabaseConfig) DSN() string {
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(d.User, d.Password),
		Host:   fmt.Sprintf("%s:%d", d.Host, d.Port),
		Path:   d.DBName,
	}
	q := u.Query()
	q.Set("sslmode", d.SSLMode)
	u.RawQuery = q.Encode()
	return u.String()
}
