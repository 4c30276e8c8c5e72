package config

import (
    "context"
    "crypto/tls"
    "log"
    "net"
    "time"

    "github.com/kelseyhightower/envconfig"
    "github.com/redis/go-redis/v9"
)

// RedisConfig locates the Redis server behind the rate limiter, the
// response cache and the view cache.  Host and Port, when both set, win
// over Addr.
type RedisConfig struct {
    Disabled bool   `envconfig:"REDIS_DISABLED"`
    Addr     string `envconfig:"REDIS_ADDR" default:"localhost:6379"`
    Host     string `envconfig:"REDIS_HOST"`
    Port     string `envconfig:"REDIS_PORT"`
    Password string `envconfig:"REDIS_PASSWORD"`
    DB       int    `envconfig:"REDIS_DB" default:"0"`
    TLS      bool   `envconfig:"REDIS_TLS"`
}

func (c RedisConfig) address() string {
    if c.Host != "" && c.Port != "" {
        return net.JoinHostPort(c.Host, c.Port)
    }
    return c.Addr
}

func (c RedisConfig) options() *redis.Options {
    o := &redis.Options{
        Addr:         c.address(),
        Password:     c.Password,
        DB:           c.DB,
        DialTimeout:  5 * time.Second,
        ReadTimeout:  3 * time.Second,
        WriteTimeout: 3 * time.Second,
    }
    if c.TLS {
        o.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
    }
    return o
}

// NewRedisClient connects with the REDIS_* settings.  It returns nil when
// Redis is disabled, misconfigured or not answering; every Redis-backed
// middleware then passes requests through.
func NewRedisClient() *redis.Client {
    var c RedisConfig
    if err := envconfig.Process("", &c); err != nil {
        log.Printf("redis: bad config, caching and rate limiting disabled: %v", err)
        return nil
    }
    if c.Disabled {
        return nil
    }
    client := redis.NewClient(c.options())
    ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
    defer cancel()
    if err := client.Ping(ctx).Err(); err != nil {
        log.Printf("redis: %s unreachable, caching and rate limiting disabled: %v", c.address(), err)
        _ = client.Close()
        return nil
    }
    return client
}
