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
	Device   DeviceConfig
	Auth     AuthConfig
	UI       UIConfig
}

// DatabaseConfig holds sqlite settings.
type DatabaseConfig struct {
	Path string
}

// DeviceConfig holds sensor pairing settings.
type DeviceConfig struct {
	Name      string // preferred advertised name
	Transport string // "sim" is the only transport shipped
}

// AuthConfig holds sign-in settings.
type AuthConfig struct {
	Provider string // "local"
	Email    string // default email offered on the sign-in screen
}

// UIConfig holds presentation settings.
type UIConfig struct {
	DateFormat string
	Timezone   string
}

// Load reads configuration from file and env. Env var overrides use prefix ORALABLE_.
func Load() (Config, error) {
	v := viper.New()

	// default values
	v.SetDefault("database.path", filepath.Join(os.Getenv("HOME"), ".local", "share", "oralable", "oralable.db"))
	v.SetDefault("device.name", "Oralable PPG")
	v.SetDefault("device.transport", "sim")
	v.SetDefault("auth.provider", "local")
	v.SetDefault("auth.email", "")
	v.SetDefault("ui.date_format", "02/01 15:04")
	v.SetDefault("ui.timezone", "Local")

	v.SetConfigType("toml")

	cfgPath := os.Getenv("ORALABLE_CONFIG")
	if cfgPath != "" {
		v.SetConfigFile(cfgPath)
	} else {
		v.AddConfigPath(filepath.Join(os.Getenv("HOME"), ".config", "oralable"))
		v.SetConfigName("config")
	}

	v.SetEnvPrefix("ORALABLE")
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

// Save writes the provided config to disk, creating the config directory
// if needed. Used by the settings screen for non-sensitive preferences;
// identity tokens never go through here.
func Save(cfg Config) error {
	path := os.Getenv("ORALABLE_CONFIG")
	if path == "" {
		path = filepath.Join(os.Getenv("HOME"), ".config", "oralable", "config.toml")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("mkdir config dir: %w", err)
	}

	v := viper.New()
	v.SetConfigType("toml")
	v.Set("database.path", cfg.Database.Path)
	v.Set("device.name", cfg.Device.Name)
	v.Set("device.transport", cfg.Device.Transport)
	v.Set("auth.provider", cfg.Auth.Provider)
	v.Set("auth.email", cfg.Auth.Email)
	v.Set("ui.date_format", cfg.UI.DateFormat)
	v.Set("ui.timezone", cfg.UI.Timezone)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}
