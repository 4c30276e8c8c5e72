package middleware

import (
    "net/http"
    "slices"

    "github.com/labstack/echo/v4"

    "github.com/nyumbalink/nyumbalink/internal/auth"
    "github.com/nyumbalink/nyumbalink/internal/httpx"
    "github.com/nyumbalink/nyumbalink/internal/model"
)

// RequireRole lets a request through only when the session set by JWTAuth
// carries one of roles.  No session at all is a 401; a session with some
// other role is a 403.
func RequireRole(roles ...model.Role) echo.MiddlewareFunc {
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            s, ok := auth.From(c)
            switch {
            case !ok:
                return httpx.Error(c, http.StatusUnauthorized, "unauthorized")
            case !slices.Contains(roles, s.Role):
                return httpx.Error(c, http.StatusForbidden, "forbidden")
            }
            return next(c)
        }
    }
}
