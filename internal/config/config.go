// Package config loads runtime configuration from the environment.
package config

import (
	"github.com/spf13/viper"
)

// Config holds everything the process needs at startup.
type Config struct {
	HTTPAddr     string
	LogLevel     string
	DBDriver     string
	DBDSN        string
	DBMaxOpen    int
	DBMaxIdle    int
	AllowOrigins []string
}

// Load reads configuration from the environment, with an optional .env
// style config file, applying defaults suitable for local use.
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()

	v.SetDefault("HTTP_ADDR", ":8080")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("DB_DRIVER", "sqlite")
	v.SetDefault("DB_DSN", "chipsplit.db")
	v.SetDefault("DB_MAX_OPEN", 25)
	v.SetDefault("DB_MAX_IDLE", 5)
	v.SetDefault("ALLOW_ORIGINS", "*")

	// Missing config file is fine; env vars still apply.
	_ = v.ReadInConfig()

	return &Config{
		HTTPAddr:     v.GetString("HTTP_ADDR"),
		LogLevel:     v.GetString("LOG_LEVEL"),
		DBDriver:     v.GetString("DB_DRIVER"),
		DBDSN:        v.GetString("DB_DSN"),
		DBMaxOpen:    v.GetInt("DB_MAX_OPEN"),
		DBMaxIdle:    v.GetInt("DB_MAX_IDLE"),
		AllowOrigins: v.GetStringSlice("ALLOW_ORIGINS"),
	}, nil
}
