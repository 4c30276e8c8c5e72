package config

import (
    "strings"
    "time"

    "github.com/kelseyhightower/envconfig"
)

// MethodSet is a set of upper-case HTTP methods read from a comma list.
type MethodSet map[string]bool

// Decode implements envconfig.Decoder.
func (m *MethodSet) Decode(value string) error {
    set := MethodSet{}
    for _, p := range splitList(value) {
        set[strings.ToUpper(p)] = true
    }
    *m = set
    return nil
}

// CacheConfig covers the search response cache (TTL) and the property
// detail view cache (ViewTTL).  Both are bypassed when Enabled is false or
// Redis is unavailable.  KeyStrategy is one of route, route_query,
// method_route or method_route_query.
type CacheConfig struct {
    Enabled      bool          `envconfig:"CACHE_ENABLED" default:"true"`
    Methods      MethodSet     `envconfig:"CACHE_METHODS" default:"GET"`
    TTL          time.Duration `envconfig:"CACHE_TTL" default:"30s"`
    ViewTTL      time.Duration `envconfig:"CACHE_VIEW_TTL" default:"2m"`
    KeyStrategy  string        `envconfig:"CACHE_KEY_STRATEGY" default:"route_query"`
    Prefix       string        `envconfig:"CACHE_PREFIX" default:"nyumba:cache"`
    MaxBodyBytes int           `envconfig:"CACHE_MAX_BODY_BYTES" default:"1048576"`
}

// LoadCacheConfig reads CACHE_* variables.
func LoadCacheConfig() (CacheConfig, error) {
    var c CacheConfig
    err := envconfig.Process("", &c)
    return c, err
}
