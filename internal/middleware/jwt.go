package middleware // declare the middleware package; contains reusable HTTP middleware functions

import (
    "net/http" // HTTP status codes for responses
    "strings"  // string utilities for prefix checking and trimming

    "github.com/labstack/echo/v4" // Echo framework used for defining middleware and handlers

    "github.com/nyumbalink/nyumbalink/internal/auth"
    "github.com/nyumbalink/nyumbalink/internal/httpx"
    "github.com/nyumbalink/nyumbalink/internal/model"
    "github.com/nyumbalink/nyumbalink/internal/utils"
)

// JWTAuth returns an Echo middleware that validates a Bearer access token
// and stores an auth.Session for downstream handlers.  Tokens whose role
// claim is not one of the known roles are rejected like any other invalid
// token.
func JWTAuth(secret string) echo.MiddlewareFunc {
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            raw, ok := BearerToken(c)
            if !ok {
                return httpx.Error(c, http.StatusUnauthorized, "unauthorized")
            }
            claims, err := utils.ParseAccessToken(secret, raw)
            if err != nil {
                return httpx.Error(c, http.StatusUnauthorized, "unauthorized")
            }
            role, ok := model.ParseRole(claims.Role)
            if !ok {
                return httpx.Error(c, http.StatusUnauthorized, "unauthorized")
            }
            // The session replaces the loose user_id/role context values;
            // handlers read it through auth.From.
            auth.Set(c, auth.Session{UserID: claims.UserID, Role: role})
            return next(c)
        }
    }
}

// BearerToken extracts the token from an "Authorization: Bearer" header.
func BearerToken(c echo.Context) (string, bool) {
    h := c.Request().Header.Get(echo.HeaderAuthorization)
    if len(h) < 7 || !strings.EqualFold(h[:7], "Bearer ") {
        return "", false
    }
    raw := strings.TrimSpace(h[7:])
    return raw, raw != ""
}
