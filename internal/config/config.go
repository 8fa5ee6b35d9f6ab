package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	Database DatabaseConfig
	Log      LogConfig
	Export   ExportConfig
	Profiles ProfilesConfig
	UI       UIConfig
}

// DatabaseConfig holds sqlite settings.
type DatabaseConfig struct {
	Path string
}

// LogConfig holds log file settings.
type LogConfig struct {
	Path string
}

// ExportConfig holds CSV export settings.
type ExportConfig struct {
	Dir string
}

// ProfilesConfig points at the optional user profile pack.
type ProfilesConfig struct {
	Path string
}

// UIConfig holds presentation settings.
type UIConfig struct {
	CurrencySymbol string
}

// Load reads configuration from file and env. Env var overrides use prefix BUDGETUI_.
func Load() (Config, error) {
	v := viper.New()

	home := os.Getenv("HOME")

	// default values
	v.SetDefault("database.path", filepath.Join(home, ".local", "share", "budgetui", "budgetui.db"))
	v.SetDefault("log.path", filepath.Join(home, ".local", "share", "budgetui", "budgetui.log"))
	v.SetDefault("export.dir", home)
	v.SetDefault("profiles.path", filepath.Join(home, ".config", "budgetui", "profiles.yaml"))
	v.SetDefault("ui.currency_symbol", "$")

	v.SetConfigType("toml")

	cfgPath := os.Getenv("BUDGETUI_CONFIG")
	if cfgPath != "" {
		v.SetConfigFile(cfgPath)
	} else {
		v.AddConfigPath(filepath.Join(home, ".config", "budgetui"))
		v.SetConfigName("config")
	}

	v.SetEnvPrefix("BUDGETUI")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// read config file if present
	_ = v.ReadInConfig()

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	return c, nil
}

// Path returns the config file location, honoring BUDGETUI_CONFIG.
func Path() string {
	if p := os.Getenv("BUDGETUI_CONFIG"); p != "" {
		return p
	}
	return filepath.Join(os.Getenv("HOME"), ".config", "budgetui", "config.toml")
}

// Save writes the provided config to disk, creating the config directory if
// needed. Called on first run to materialize a starter config file.
func Save(cfg Config) error {
	path := Path()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("mkdir config dir: %w", err)
	}

	v := viper.New()
	v.SetConfigType("toml")
	v.Set("database.path", cfg.Database.Path)
	v.Set("log.path", cfg.Log.Path)
	v.Set("export.dir", cfg.Export.Dir)
	v.Set("profiles.path", cfg.Profiles.Path)
	v.Set("ui.currency_symbol", cfg.UI.CurrencySymbol)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}
