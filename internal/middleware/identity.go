package middleware

// identity.go holds the caller identity used in rate limit keys.

import (
    "strconv"

    "github.com/labstack/echo/v4"

    "github.com/nyumbalink/nyumbalink/internal/auth"
    "github.com/nyumbalink/nyumbalink/internal/utils"
)

// callerID returns the caller's user id, or "anon".  The limiter runs on
// the /v1 group before any route-level JWTAuth, so without a session the
// Bearer token is read here; a missing or invalid token counts as anon.
func callerID(c echo.Context, jwtSecret string) string {
    if s, ok := auth.From(c); ok {
        return strconv.FormatUint(s.UserID, 10)
    }
    if raw, ok := BearerToken(c); ok && jwtSecret != "" {
        if claims, err := utils.ParseAccessToken(jwtSecret, raw); err == nil {
            return strconv.FormatUint(claims.UserID, 10)
        }
    }
    return "anon"
}
