package config

import (
    "time"

    "github.com/kelseyhightower/envconfig"
)

// PoolConfig sizes the MySQL connection pool.
type PoolConfig struct {
    MaxOpenConns    int           `envconfig:"DB_MAX_OPEN_CONNS" default:"25"`
    MaxIdleConns    int           `envconfig:"DB_MAX_IDLE_CONNS" default:"25"`
    ConnMaxLifetime time.Duration `envconfig:"DB_CONN_MAX_LIFETIME" default:"30m"`
}

// LoadPoolConfig reads the pool settings.
func LoadPoolConfig() (PoolConfig, error) {
    var c PoolConfig
    err := envconfig.Process("", &c)
    return c, err
}
