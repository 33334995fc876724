package config

import "time"

// Config holds server configuration values.
type Config struct {
	Addr      string `mapstructure:"addr" yaml:"addr"`
	WSAddr    string `mapstructure:"ws_addr" yaml:"ws_addr"`
	AdminAddr string `mapstructure:"admin_addr" yaml:"admin_addr"`

	ServerName string   `mapstructure:"server_name" yaml:"server_name"`
	MOTD       []string `mapstructure:"motd" yaml:"motd"`
	Password   string   `mapstructure:"password" yaml:"password"`

	DBPath    string `mapstructure:"db_path" yaml:"db_path"`
	JWTSecret string `mapstructure:"jwt_secret" yaml:"jwt_secret"`
	LogLevel  string `mapstructure:"log_level" yaml:"log_level"`

	PingInterval       time.Duration `mapstructure:"ping_interval" yaml:"ping_interval"`
	IdleTimeout        time.Duration `mapstructure:"idle_timeout" yaml:"idle_timeout"`
	ShutdownTimeout    time.Duration `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout"`
	QueueSize          int           `mapstructure:"queue_size" yaml:"queue_size"`
	MaxChannelsPerUser int           `mapstructure:"max_channels_per_user" yaml:"max_channels_per_user"`
}

// Default returns configuration with reasonable starter defaults.
func Default() Config {
	return Config{
		Addr:               ":6667",
		WSAddr:             ":8080",
		AdminAddr:          ":8081",
		ServerName:         "wirechat.localhost",
		DBPath:             "wirechat.db",
		LogLevel:           "info",
		PingInterval:       90 * time.Second,
		IdleTimeout:        4 * time.Minute,
		ShutdownTimeout:    5 * time.Second,
		QueueSize:          64,
		MaxChannelsPerUser: 32,
	}
}
