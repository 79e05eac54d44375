package config

import (
	"fmt"

	"github.com/spf13/viper"
)

// ReadConfig loads the server configuration from the given JSON file,
// applying defaults for unset keys.
func ReadConfig(configPath string) (Config, error) {
	cfg := Default()

	v := viper.New()
	v.SetConfigFile(configPath)
	v.SetConfigType("json")
	v.SetDefault("address", cfg.Address)
	v.SetDefault("ws_address", cfg.WSAddress)
	v.SetDefault("buffer_size", cfg.BufferSize)
	v.SetDefault("max_clients", cfg.MaxClients)
	v.SetDefault("log_level", cfg.LogLevel)
	v.SetDefault("log_file", cfg.LogFile)

	if err := v.ReadInConfig(); err != nil {
		return cfg, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// MustReadConfig reads the configuration or panics.
func MustReadConfig(configPath string) Config {
	cfg, err := ReadConfig(configPath)
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}
	return cfg
}
