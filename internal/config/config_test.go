package config

import (
    "testing"
    "time"

    "github.com/kelseyhightower/envconfig"
)

func TestLoadRateLimitConfigClamps(t *testing.T) {
    t.Setenv("RATE_LIMIT_CAPACITY", "0")
    t.Setenv("RATE_LIMIT_REFILL_TOKENS", "-3")
    t.Setenv("RATE_LIMIT_REFILL_INTERVAL", "2s")
    t.Setenv("RATE_LIMIT_TTL", "1s")
    c, err := LoadRateLimitConfig()
    if err != nil {
        t.Fatal(err)
    }
    if c.Capacity != 1 || c.RefillTokens != 1 {
        t.Errorf("capacity/refill not clamped: %+v", c)
    }
    if c.TTL != 10*time.Second {
        t.Errorf("ttl = %s; want 10s", c.TTL)
    }
}

func TestLoadCacheConfigDefaults(t *testing.T) {
    t.Setenv("CACHE_METHODS", "get, head")
    c, err := LoadCacheConfig()
    if err != nil {
        t.Fatal(err)
    }
    if !c.Enabled || !c.Methods["GET"] || !c.Methods["HEAD"] {
        t.Errorf("unexpected cache config: %+v", c)
    }
    if c.TTL != 30*time.Second || c.Prefix != "nyumba:cache" {
        t.Errorf("unexpected defaults: %+v", c)
    }
}

func TestLoadStorageAndQueueConfig(t *testing.T) {
    t.Setenv("UPLOAD_MAX_BYTES", "1024")
    s, err := LoadStorageConfig()
    if err != nil {
        t.Fatalf("storage: %v", err)
    }
    if s.MaxUploadBytes != 1024 || s.Bucket != "property_images" {
        t.Errorf("unexpected storage config: %+v", s)
    }
    q, err := LoadQueueConfig()
    if err != nil {
        t.Fatalf("queue: %v", err)
    }
    if q.Enabled || q.Queue != "nyumba.notifications" {
        t.Errorf("unexpected queue config: %+v", q)
    }
}

func TestMalformedCacheTTL(t *testing.T) {
    t.Setenv("CACHE_TTL", "soon")
    if _, err := LoadCacheConfig(); err == nil {
        t.Error("expected an error for CACHE_TTL=soon")
    }
}

func TestLoadPoolConfig(t *testing.T) {
    t.Setenv("DB_MAX_OPEN_CONNS", "8")
    p, err := LoadPoolConfig()
    if err != nil {
        t.Fatal(err)
    }
    if p.MaxOpenConns != 8 || p.MaxIdleConns != 25 || p.ConnMaxLifetime != 30*time.Minute {
        t.Errorf("unexpected pool config: %+v", p)
    }
}

func TestEnvBool(t *testing.T) {
    t.Setenv("X_FLAG", "off")
    if envBool("X_FLAG", true) {
        t.Error("off should be false")
    }
    t.Setenv("X_FLAG", "garbage")
    if !envBool("X_FLAG", true) {
        t.Error("garbage should fall back to default")
    }
}

func TestSplitList(t *testing.T) {
    got := splitList(" https://nyumba.co.tz , ,http://localhost:5173")
    if len(got) != 2 || got[1] != "http://localhost:5173" {
        t.Errorf("splitList = %v", got)
    }
}

func TestRedisOptions(t *testing.T) {
    t.Setenv("REDIS_HOST", "cache")
    t.Setenv("REDIS_PORT", "6380")
    t.Setenv("REDIS_TLS", "true")
    var c RedisConfig
    if err := envconfig.Process("", &c); err != nil {
        t.Fatal(err)
    }
    o := c.options()
    if o.Addr != "cache:6380" || o.TLSConfig == nil {
        t.Errorf("options = addr %q tls %v", o.Addr, o.TLSConfig != nil)
    }
    if (RedisConfig{Addr: "r:1", Host: "h"}).address() != "r:1" {
        t.Error("host without port should fall back to Addr")
    }
}
