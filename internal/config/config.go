package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Store modes.
const (
	StoreModeHTTP  = "http"
	StoreModeLocal = "local"
)

// Config holds all application configuration
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Store    StoreConfig    `mapstructure:"store"`
	Database DatabaseConfig `mapstructure:"database"`
	Storage  StorageConfig  `mapstructure:"storage"`
	Policy   PolicyConfig   `mapstructure:"policy"`
	Logger   LoggerConfig   `mapstructure:"logger"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// StoreConfig selects and configures the bill store backend
type StoreConfig struct {
	Mode    string        `mapstructure:"mode"` // http or local
	BaseURL string        `mapstructure:"base_url"`
	Token   string        `mapstructure:"token"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// DatabaseConfig holds local store database configuration
type DatabaseConfig struct {
	Path            string        `mapstructure:"path"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

// StorageConfig holds receipt storage configuration
type StorageConfig struct {
	ReceiptDir string `mapstructure:"receipt_dir"`
}

// PolicyConfig holds business policy knobs
type PolicyConfig struct {
	DefaultPct int `mapstructure:"default_pct"` // standard VAT rate
}

// LoggerConfig holds logger configuration
type LoggerConfig struct {
	Level      string `mapstructure:"level"`
	OutputPath string `mapstructure:"output_path"`
	Format     string `mapstructure:"format"`
}

// Load loads configuration from file and environment variables
func Load(configPath string) (*Config, error) {
	viper.SetConfigFile(configPath)
	viper.SetConfigType("yaml")
	viper.AutomaticEnv()

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	bindEnvVars()

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// setDefaults sets default configuration values
func setDefaults() {
	// Server defaults
	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.read_timeout", 30*time.Second)
	viper.SetDefault("server.write_timeout", 30*time.Second)

	// Store defaults
	viper.SetDefault("store.mode", StoreModeLocal)
	viper.SetDefault("store.timeout", 30*time.Second)

	// Database defaults
	viper.SetDefault("database.path", "data/billed.db")
	viper.SetDefault("database.max_open_conns", 25)
	viper.SetDefault("database.max_idle_conns", 5)
	viper.SetDefault("database.conn_max_lifetime", 5*time.Minute)

	// Storage defaults
	viper.SetDefault("storage.receipt_dir", "data/receipts")

	// Policy defaults
	viper.SetDefault("policy.default_pct", 20)

	// Logger defaults
	viper.SetDefault("logger.level", "info")
	viper.SetDefault("logger.output_path", "stdout")
	viper.SetDefault("logger.format", "json")
}

// bindEnvVars binds environment variables to configuration
func bindEnvVars() {
	viper.BindEnv("store.base_url", "BILLED_STORE_URL")
	viper.BindEnv("store.token", "BILLED_STORE_TOKEN")
	viper.BindEnv("database.path", "BILLED_DB_PATH")
	viper.BindEnv("storage.receipt_dir", "BILLED_RECEIPT_DIR")
}

// Validate validates the configuration
func (c *Config) Validate() error {
	switch c.Store.Mode {
	case StoreModeHTTP:
		if c.Store.BaseURL == "" {
			return fmt.Errorf("store.base_url is required in http mode")
		}
	case StoreModeLocal:
		if c.Database.Path == "" {
			return fmt.Errorf("database.path is required in local mode")
		}
		if c.Storage.ReceiptDir == "" {
			return fmt.Errorf("storage.receipt_dir is required in local mode")
		}
	default:
		return fmt.Errorf("unknown store mode %q", c.Store.Mode)
	}

	if c.Policy.DefaultPct < 0 || c.Policy.DefaultPct > 100 {
		return fmt.Errorf("policy.default_pct must be between 0 and 100")
	}

	return nil
}
