package middleware

import (
    "math"
    "net/http"
    "strconv"
    "strings"
    "time"

    "github.com/labstack/echo/v4"
    "github.com/redis/go-redis/v9"

    "github.com/nyumbalink/nyumbalink/internal/config"
    "github.com/nyumbalink/nyumbalink/internal/httpx"
    "github.com/nyumbalink/nyumbalink/internal/i18n"
)

// tokenBucket takes one token from the bucket at KEYS[1], refilling it
// first for the whole intervals elapsed since the last refill.
// ARGV: now_ms, capacity, refill, interval_ms, ttl_s.
// Reply: {allowed 0|1, tokens left, ms until the next refill}.
var tokenBucket = redis.NewScript(`
local now, cap, refill, step, ttl =
    tonumber(ARGV[1]), tonumber(ARGV[2]), tonumber(ARGV[3]), tonumber(ARGV[4]), tonumber(ARGV[5])
local b = redis.call('HMGET', KEYS[1], 'tokens', 'last_refill_ms')
local tokens, last = tonumber(b[1]), tonumber(b[2])
if not tokens or not last then
    tokens, last = cap, now
end
local n = math.floor(math.max(0, now - last) / step)
if n > 0 then
    tokens = math.min(cap, tokens + n * refill)
    last = last + n * step
end
local ok, wait = 0, 0
if tokens > 0 then
    ok, tokens = 1, tokens - 1
else
    wait = math.max(0, step - (now - last))
end
redis.call('HSET', KEYS[1], 'tokens', tokens, 'last_refill_ms', last)
redis.call('EXPIRE', KEYS[1], ttl)
return {ok, tokens, wait}
`)

// bucketResult is the decoded script reply.
type bucketResult struct {
    Allowed   bool
    Remaining int64
    RetryMs   int64
}

func parseBucketResult(vals []int64) (bucketResult, bool) {
    if len(vals) != 3 {
        return bucketResult{}, false
    }
    return bucketResult{Allowed: vals[0] == 1, Remaining: vals[1], RetryMs: vals[2]}, true
}

// NewTokenBucket rate limits requests with a Redis token bucket.  Redis
// errors let the request through; a limiter outage should not take the API
// down with it.
func NewTokenBucket(cfg config.RateLimitConfig, rdb *redis.Client, jwtSecret string) echo.MiddlewareFunc {
    if !cfg.Enabled || rdb == nil {
        return passThrough
    }
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            key := buildRateKey(cfg, jwtSecret, c)
            vals, err := tokenBucket.Run(c.Request().Context(), rdb, []string{key},
                time.Now().UnixMilli(), cfg.Capacity, cfg.RefillTokens,
                cfg.RefillInterval.Milliseconds(), int64(cfg.TTL/time.Second),
            ).Int64Slice()
            if err != nil {
                c.Logger().Warnf("[ratelimit] redis error for key=%s: %v", key, err)
                return next(c)
            }
            res, ok := parseBucketResult(vals)
            if !ok {
                c.Logger().Warnf("[ratelimit] unexpected script result for key=%s: %#v", key, vals)
                return next(c)
            }

            h := c.Response().Header()
            h.Set("X-RateLimit-Limit", strconv.Itoa(cfg.Capacity))
            h.Set("X-RateLimit-Remaining", strconv.FormatInt(res.Remaining, 10))
            if cfg.Debug {
                h.Set("X-RateLimit-Key", key)
            }
            if res.Allowed {
                return next(c)
            }

            secs := int(math.Ceil(float64(res.RetryMs) / 1000.0))
            h.Set("Retry-After", strconv.Itoa(secs))
            return c.JSON(http.StatusTooManyRequests, map[string]any{
                "error":       "too_many_requests",
                "message":     i18n.T(httpx.Lang(c), "too_many_requests"),
                "retry_after": secs,
            })
        }
    }
}

func passThrough(next echo.HandlerFunc) echo.HandlerFunc { return next }

// buildRateKey joins the prefix with the parts KeyStrategy names, in the
// order given: "ip_route" keys on client address then route.  Unknown
// strategies key on all three.
func buildRateKey(cfg config.RateLimitConfig, jwtSecret string, c echo.Context) string {
    strategy := strings.ToLower(cfg.KeyStrategy)
    parts := []string{cfg.Prefix}
    for _, name := range strings.Split(strategy, "_") {
        v, ok := rateKeyPart(name, jwtSecret, c)
        if !ok {
            parts = []string{cfg.Prefix}
            for _, all := range []string{"ip", "user", "route"} {
                v, _ := rateKeyPart(all, jwtSecret, c)
                parts = append(parts, all, v)
            }
            break
        }
        parts = append(parts, name, v)
    }
    return strings.Join(parts, ":")
}

func rateKeyPart(name, jwtSecret string, c echo.Context) (string, bool) {
    switch name {
    case "ip":
        if ip := c.RealIP(); ip != "" {
            return ip, true
        }
        return "unknown", true
    case "user":
        return callerID(c, jwtSecret), true
    case "route":
        return c.Request().Method + " " + c.Path(), true
    }
    return "", false
}
