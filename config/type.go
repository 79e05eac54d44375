package config

import "errors"

// Config is the server configuration loaded from the JSON config file.
type Config struct {
	Address    string `mapstructure:"address"`
	WSAddress  string `mapstructure:"ws_address"` // empty disables the websocket gateway
	BufferSize int    `mapstructure:"buffer_size"` // websocket read/write buffer in bytes
	MaxClients int    `mapstructure:"max_clients"` // session limit, also the bus capacity
	LogLevel   string `mapstructure:"log_level"`
	LogFile    string `mapstructure:"log_file"`
}

// Default returns the built-in server configuration.
func Default() Config {
	return Config{
		Address:    "localhost:4556",
		WSAddress:  "",
		BufferSize: 1024,
		MaxClients: 32,
		LogLevel:   "info",
	}
}

func (c Config) Validate() error {
	if c.Address == "" {
		return errors.New("address must not be empty")
	}
	if c.BufferSize <= 0 {
		return errors.New("buffer_size must be positive")
	}
	if c.MaxClients <= 0 {
		return errors.New("max_clients must be positive")
	}
	return nil
}
