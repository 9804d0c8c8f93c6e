package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// BaseConfig holds base configuration
type BaseConfig struct {
	Debug     bool   `mapstructure:"debug"`
	SentryDSN string `mapstructure:"sentry_dsn"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host         string `mapstructure:"host"`
	Port         int    `mapstructure:"port"`
	ReadTimeout  int    `mapstructure:"read_timeout"`  // in seconds
	WriteTimeout int    `mapstructure:"write_timeout"` // in seconds
	IdleTimeout  int    `mapstructure:"idle_timeout"`  // in seconds
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	DBName          string        `mapstructure:"dbname"`
	SSLMode         string        `mapstructure:"sslmode"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `mapstructure:"conn_max_idle_time"`
}

// MoltbookConfig holds the post-fetch API configuration
type MoltbookConfig struct {
	APIURL  string        `mapstructure:"api_url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// DeployerConfig holds token issuance configuration
type DeployerConfig struct {
	RPCURL         string `mapstructure:"rpc_url"`
	ChainID        int64  `mapstructure:"chain_id"`
	PrivateKey     string `mapstructure:"private_key"`
	FactoryAddress string `mapstructure:"factory_address"`
	PlatformWallet string `mapstructure:"platform_wallet"`
	// DeployTimeout bounds the full deploy call including receipt wait
	DeployTimeout time.Duration `mapstructure:"deploy_timeout"`
}

// AssetsConfig holds generated image storage configuration
type AssetsConfig struct {
	// Provider selects the asset backend: "filesystem" or "cloudflare"
	Provider  string `mapstructure:"provider"`
	PublicDir string `mapstructure:"public_dir"`
	BaseURL   string `mapstructure:"base_url"`
	// Cloudflare Images credentials, used when Provider is "cloudflare"
	CloudflareAccountID string `mapstructure:"cloudflare_account_id"`
	CloudflareAPIToken  string `mapstructure:"cloudflare_api_token"`
}

// LaunchConfig holds launch policy configuration
type LaunchConfig struct {
	RateLimitHours int `mapstructure:"rate_limit_hours"`
}

// SweeperConfig holds the stale-pending reconciliation configuration
type SweeperConfig struct {
	Interval   time.Duration `mapstructure:"interval"`
	StaleAfter time.Duration `mapstructure:"stale_after"`
}

// APIConfig holds configuration for the launchpad API server
type APIConfig struct {
	BaseConfig `mapstructure:",squash"`
	Server     ServerConfig   `mapstructure:"server"`
	Database   DatabaseConfig `mapstructure:"database"`
	Moltbook   MoltbookConfig `mapstructure:"moltbook"`
	Deployer   DeployerConfig `mapstructure:"deployer"`
	Assets     AssetsConfig   `mapstructure:"assets"`
	Launch     LaunchConfig   `mapstructure:"launch"`
	Sweeper    SweeperConfig  `mapstructure:"sweeper"`
}

// LoadAPIConfig loads configuration for the API server
func LoadAPIConfig(configFile string, envPath string) (*APIConfig, error) {
	v := configureViper("api", configFile, envPath)

	// Set defaults
	v.SetDefault("debug", false)
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 3000)
	v.SetDefault("server.read_timeout", 10)
	v.SetDefault("server.write_timeout", 60)
	v.SetDefault("server.idle_timeout", 120)
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("moltbook.api_url", "https://www.moltbook.com/api/v1")
	v.SetDefault("moltbook.timeout", "10s")
	v.SetDefault("deployer.rpc_url", "https://mainnet.base.org")
	v.SetDefault("deployer.chain_id", 8453)
	v.SetDefault("deployer.factory_address", "0x2A787b2362021cC3eEa3C24C4748a6cD5B687382")
	v.SetDefault("deployer.deploy_timeout", "90s")
	v.SetDefault("assets.provider", "filesystem")
	v.SetDefault("assets.public_dir", "./public/pets")
	v.SetDefault("assets.base_url", "https://petpad.xyz/pets")
	v.SetDefault("launch.rate_limit_hours", 24)
	v.SetDefault("sweeper.interval", "5m")
	v.SetDefault("sweeper.stale_after", "30m")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			// Config file not found, use environment variables
		} else {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var config APIConfig
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

// Validate checks cross-field consistency. A missing deployer key is
// allowed (the health endpoint reports it); a configured key without a
// platform wallet is not.
func (c *APIConfig) Validate() error {
	if c.Deployer.PrivateKey != "" && c.Deployer.PlatformWallet == "" {
		return errors.New("deployer.platform_wallet is required when deployer.private_key is set")
	}
	if c.Deployer.PlatformWallet != "" && !strings.HasPrefix(c.Deployer.PlatformWallet, "0x") {
		return errors.New("deployer.platform_wallet must be a 0x-prefixed address")
	}
	if c.Assets.Provider != "filesystem" && c.Assets.Provider != "cloudflare" {
		return fmt.Errorf("unknown assets.provider %q", c.Assets.Provider)
	}
	if c.Assets.Provider == "cloudflare" && (c.Assets.CloudflareAccountID == "" || c.Assets.CloudflareAPIToken == "") {
		return errors.New("assets.cloudflare_account_id and assets.cloudflare_api_token are required for the cloudflare provider")
	}
	if c.Launch.RateLimitHours <= 0 {
		return errors.New("launch.rate_limit_hours must be positive")
	}
	return nil
}

// configureViper returns a viper instance with the config file and environment variables set
func configureViper(service string, configFile string, envPath string) *viper.Viper {
	v := viper.New()

	loadEnv(envPath, service)

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath(fmt.Sprintf("cmd/%s/", service))
		v.AddConfigPath("config/")
	}

	v.SetEnvPrefix("PETPAD")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	bindAllEnvVars(v)
	return v
}

// bindAllEnvVars explicitly binds all possible environment variables.
// Required for viper to map env vars to struct fields when no config
// file exists.
func bindAllEnvVars(v *viper.Viper) {
	keys := []string{
		"debug",
		"sentry_dsn",
		// Server
		"server.host",
		"server.port",
		"server.read_timeout",
		"server.write_timeout",
		"server.idle_timeout",
		// Database
		"database.host",
		"database.port",
		"database.user",
		"database.password",
		"database.dbname",
		"database.sslmode",
		"database.max_open_conns",
		"database.max_idle_conns",
		"database.conn_max_lifetime",
		"database.conn_max_idle_time",
		// Moltbook
		"moltbook.api_url",
		"moltbook.timeout",
		// Deployer
		"deployer.rpc_url",
		"deployer.chain_id",
		"deployer.private_key",
		"deployer.factory_address",
		"deployer.platform_wallet",
		"deployer.deploy_timeout",
		// Assets
		"assets.provider",
		"assets.public_dir",
		"assets.base_url",
		"assets.cloudflare_account_id",
		"assets.cloudflare_api_token",
		// Launch policy
		"launch.rate_limit_hours",
		// Sweeper
		"sweeper.interval",
		"sweeper.stale_after",
	}

	for _, key := range keys {
		_ = v.BindEnv(key)
	}
}

// loadEnv loads environment variables from the config directory
func loadEnv(envPath string, service string) {
	envFiles := []string{".env", ".env.local"}
	if service != "" {
		envFiles = append(envFiles, ".env."+service+".local")
	}

	if envPath == "" {
		envPath = "config/"
	}

	for _, envFile := range envFiles {
		candidate := filepath.Join(envPath, envFile)
		_ = godotenv.Overload(candidate)
	}
}

// DSN returns the database connection string
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode)
}
