package config

import (
	"fmt"
	"time"
)

// DatabaseConfig selects where snapshots and action logs are stored.
// SQLite is the default; postgres is used for shared deployments.
type DatabaseConfig struct {
	Type string `mapstructure:"type" validate:"required,oneof=postgres sqlite"`

	// URL overrides the discrete fields below for either driver
	URL string `mapstructure:"url"`

	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port" validate:"omitempty,min=1,max=65535"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
	SSLMode  string `mapstructure:"sslmode" validate:"omitempty,oneof=disable require verify-ca verify-full"`

	// Path is the sqlite file; ":memory:" keeps everything in process
	Path string `mapstructure:"path"`

	Pool PoolConfig `mapstructure:"pool"`
}

type PoolConfig struct {
	MaxOpen     int           `mapstructure:"max_open" validate:"min=1"`
	MaxIdle     int           `mapstructure:"max_idle" validate:"min=1"`
	MaxLifetime time.Duration `mapstructure:"max_lifetime"`
}

// DSN returns the postgres connection string
func (d DatabaseConfig) DSN() string {
	if d.URL != "" {
		return d.URL
	}
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode)
}

// SQLitePath returns the sqlite file, falling back to URL and then to an
// in-memory database
func (d DatabaseConfig) SQLitePath() string {
	switch {
	case d.Path != "":
		return d.Path
	case d.URL != "":
		return d.URL
	default:
		return ":memory:"
	}
}
