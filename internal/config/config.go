package config

import (
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

type Config struct {
	ListenAddr     string
	DBPath         string
	ImagePath      string
	GatewayURL     string
	GatewayTimeout time.Duration
	LogLevel       string
	LogFile        string
}

// Load reads an optional .env file, then the environment. Values in the
// process environment win over the .env file.
func Load() *Config {
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("LISTEN_ADDR", ":8080")
	v.SetDefault("DB_PATH", "/data/toyinv.db")
	v.SetDefault("IMAGE_PATH", "/data/images")
	v.SetDefault("GATEWAY_URL", "")
	v.SetDefault("GATEWAY_TIMEOUT", "10s")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FILE", "")

	return &Config{
		ListenAddr:     v.GetString("LISTEN_ADDR"),
		DBPath:         v.GetString("DB_PATH"),
		ImagePath:      v.GetString("IMAGE_PATH"),
		GatewayURL:     v.GetString("GATEWAY_URL"),
		GatewayTimeout: v.GetDuration("GATEWAY_TIMEOUT"),
		LogLevel:       v.GetString("LOG_LEVEL"),
		LogFile:        v.GetString("LOG_FILE"),
	}
}

// BindFlags registers command-line overrides for cfg on fs. Flags that are
// not passed keep the loaded values.
func (c *Config) BindFlags(fs *pflag.FlagSet) {
	fs.StringVar(&c.ListenAddr, "listen", c.ListenAddr, "HTTP listen address")
	fs.StringVar(&c.DBPath, "db", c.DBPath, "SQLite database path")
	fs.StringVar(&c.ImagePath, "images", c.ImagePath, "directory for uploaded toy images")
	fs.StringVar(&c.GatewayURL, "gateway-url", c.GatewayURL, "use a remote toy collection instead of the local database")
	fs.DurationVar(&c.GatewayTimeout, "gateway-timeout", c.GatewayTimeout, "remote collection request timeout")
	fs.StringVar(&c.LogLevel, "log-level", c.LogLevel, "log level: debug, info, warn, error")
	fs.StringVar(&c.LogFile, "log-file", c.LogFile, "also write logs to this file")
}
