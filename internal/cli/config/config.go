package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Config represents the benchforge configuration. It is loaded once at the
// CLI entry point and handed explicitly to the provisioning layers; nothing
// below the commands reads ambient state.
type Config struct {
	BenchPath    string       `mapstructure:"bench_path"`
	Site         SiteConfig   `mapstructure:"site"`
	Server       ServerConfig `mapstructure:"server"`
	ModuleSuffix string       `mapstructure:"module_suffix"`
	Publisher    Publisher    `mapstructure:"publisher"`
}

// SiteConfig represents the target site
type SiteConfig struct {
	Name          string `mapstructure:"name"`
	AdminPassword string `mapstructure:"admin_password"`
}

// ServerConfig represents where the started server is reachable
type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
}

// Publisher is stamped into generated app metadata
type Publisher struct {
	Name  string `mapstructure:"name"`
	Email string `mapstructure:"email"`
}

// Load loads the configuration from benchforge.yml or benchforge.yaml
func Load() (*Config, error) {
	v := viper.New()

	v.SetDefault("site.name", "site1.local")
	v.SetDefault("site.admin_password", "admin")
	v.SetDefault("server.host", "localhost")
	v.SetDefault("server.port", 8002)
	v.SetDefault("module_suffix", "_module")
	v.SetDefault("publisher.name", "benchforge")
	v.SetDefault("publisher.email", "apps@benchforge.dev")

	v.SetConfigName("benchforge")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	v.SetEnvPrefix("BENCHFORGE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found - use defaults
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if config.BenchPath == "" {
		config.BenchPath = os.Getenv("BENCH_PATH")
	}

	if err := validateConfig(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

// validateConfig checks configuration values
func validateConfig(config *Config) error {
	if config.Server.Port < 1 || config.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d (must be 1-65535)", config.Server.Port)
	}
	if strings.TrimSpace(config.Site.Name) == "" {
		return fmt.Errorf("site name cannot be empty")
	}
	if strings.ContainsAny(config.Site.Name, " /\\") {
		return fmt.Errorf("invalid site name: %q", config.Site.Name)
	}
	return nil
}

// AppsDir returns the bench apps directory
func (c *Config) AppsDir() string {
	return filepath.Join(c.BenchPath, "apps")
}

// SitesDir returns the bench sites directory
func (c *Config) SitesDir() string {
	return filepath.Join(c.BenchPath, "sites")
}

// SitePath returns the directory of the configured site
func (c *Config) SitePath() string {
	return filepath.Join(c.SitesDir(), c.Site.Name)
}

// AppsTxtPath returns the path of the bench apps registry file
func (c *Config) AppsTxtPath() string {
	return filepath.Join(c.SitesDir(), "apps.txt")
}

// LiveURL returns the URL the started server is reachable at
func (c *Config) LiveURL() string {
	return fmt.Sprintf("http://%s:%d", c.Server.Host, c.Server.Port)
}

// ModuleName derives the module name registered for a generated app
func (c *Config) ModuleName(appName string) string {
	return appName + c.ModuleSuffix
}

// InBench checks whether the configured bench path looks like a bench
// installation
func (c *Config) InBench() bool {
	if c.BenchPath == "" {
		return false
	}
	if _, err := os.Stat(c.AppsDir()); err != nil {
		return false
	}
	if _, err := os.Stat(c.SitesDir()); err != nil {
		return false
	}
	return true
}
