package middleware

import (
    "bytes"
    "context"
    "crypto/sha1"
    "encoding/hex"
    "encoding/json"
    "net/http"
    "strings"
    "time"

    "github.com/labstack/echo/v4"
    "github.com/redis/go-redis/v9"

    "github.com/nyumbalink/nyumbalink/internal/config"
    "github.com/nyumbalink/nyumbalink/internal/httpx"
)

// Headers set per exchange, or by the CORS and Lang middlewares that run
// again on every hit, are never stored.
var volatileHeaders = []string{
    "X-Cache", "X-RateLimit-Limit", "X-RateLimit-Remaining", "X-RateLimit-Key",
    echo.HeaderContentLength, echo.HeaderVary, "Content-Language",
    echo.HeaderAccessControlAllowOrigin, echo.HeaderAccessControlAllowCredentials,
    echo.HeaderAccessControlExposeHeaders,
}

// cachedResponse is what a cache entry holds.
type cachedResponse struct {
    Status int         `json:"s"`
    Header http.Header `json:"h"`
    Body   []byte      `json:"b"`
}

// newCachedResponse copies the storable part of a response.
func newCachedResponse(status int, header http.Header, body []byte) cachedResponse {
    h := header.Clone()
    for _, k := range volatileHeaders {
        h.Del(k)
    }
    return cachedResponse{Status: status, Header: h, Body: bytes.Clone(body)}
}

func (cr cachedResponse) marshal() ([]byte, error) { return json.Marshal(cr) }

func unmarshalCached(bs []byte) (cachedResponse, bool) {
    var cr cachedResponse
    if err := json.Unmarshal(bs, &cr); err != nil || cr.Status < 100 || cr.Status > 599 {
        return cachedResponse{}, false
    }
    return cr, true
}

// replay writes a stored response to c.
func (cr cachedResponse) replay(c echo.Context) error {
    h := c.Response().Header()
    for k, vals := range cr.Header {
        h[http.CanonicalHeaderKey(k)] = append([]string(nil), vals...)
    }
    h.Set("X-Cache", "HIT")
    return c.Blob(cr.Status, cr.Header.Get(echo.HeaderContentType), cr.Body)
}

// captureWriter tees the response body into buf, up to limit bytes, while
// still writing it to the client.
type captureWriter struct {
    http.ResponseWriter
    status    int
    buf       bytes.Buffer
    limit     int64
    truncated bool
}

func (cw *captureWriter) WriteHeader(code int) {
    cw.status = code
    cw.ResponseWriter.WriteHeader(code)
}

func (cw *captureWriter) Write(b []byte) (int, error) {
    switch {
    case cw.truncated:
    case cw.limit > 0 && int64(cw.buf.Len()+len(b)) > cw.limit:
        cw.truncated = true
        cw.buf.Reset()
    default:
        cw.buf.Write(b)
    }
    return cw.ResponseWriter.Write(b)
}

// cacheKeyFrom hashes the request parts named by KeyStrategy.  The
// response language always takes part since bodies are localized.
func cacheKeyFrom(cfg config.CacheConfig, c echo.Context) string {
    r := c.Request()
    h := sha1.New()
    write := func(parts ...string) {
        for _, p := range parts {
            h.Write([]byte(p))
            h.Write([]byte{0})
        }
    }
    strategy := strings.ToLower(cfg.KeyStrategy)
    if strings.HasPrefix(strategy, "method_") {
        write("m", r.Method)
    }
    write("r", c.Path())
    if strings.HasSuffix(strategy, "query") || strategy == "" {
        write("q", r.URL.Query().Encode()) // Encode sorts by key
    }
    write("l", httpx.Lang(c))
    return cfg.Prefix + ":" + hex.EncodeToString(h.Sum(nil))
}

// NewRedisCache caches 200 responses to the configured methods for
// cfg.TTL.  Bodies larger than MaxBodyBytes are served but not stored.
func NewRedisCache(cfg config.CacheConfig, rdb *redis.Client) echo.MiddlewareFunc {
    if !cfg.Enabled || rdb == nil {
        return passThrough
    }
    ttl := cfg.TTL
    if ttl <= 0 {
        ttl = 30 * time.Second
    }
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            if !cfg.Methods[strings.ToUpper(c.Request().Method)] {
                return next(c)
            }
            key := cacheKeyFrom(cfg, c)
            if bs, err := rdb.Get(c.Request().Context(), key).Bytes(); err == nil {
                if cr, ok := unmarshalCached(bs); ok {
                    return cr.replay(c)
                }
            }

            cw := &captureWriter{ResponseWriter: c.Response().Writer, status: http.StatusOK, limit: int64(cfg.MaxBodyBytes)}
            c.Response().Writer = cw
            c.Response().Header().Set("X-Cache", "MISS")
            if err := next(c); err != nil {
                return err
            }
            if cw.status != http.StatusOK || cw.truncated {
                return nil
            }
            cr := newCachedResponse(cw.status, c.Response().Header(), cw.buf.Bytes())
            payload, err := cr.marshal()
            if err != nil {
                return nil
            }
            // the request context may be done once the client has its answer
            if err := rdb.SetEx(context.Background(), key, payload, ttl).Err(); err != nil {
                c.Logger().Warnf("[cache] store %s: %v", key, err)
            }
            return nil
        }
    }
}
