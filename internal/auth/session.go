// Package auth holds the per-request session built from an access token.
// Handlers receive it explicitly from the Echo context instead of reading
// claims themselves.
package auth

import (
	"github.com/labstack/echo/v4"

	"github.com/nyumbalink/nyumbalink/internal/model"
)

const contextKey = "session"

// Session identifies the authenticated caller.
type Session struct {
	UserID uint64
	Role   model.Role
}

// Is reports whether the session has role r.
func (s Session) Is(r model.Role) bool { return s.Role == r }

// Set stores s on the request context.
func Set(c echo.Context, s Session) { c.Set(contextKey, s) }

// From returns the session stored by the JWT middleware.
func From(c echo.Context) (Session, bool) {
	s, ok := c.Get(contextKey).(Session)
	return s, ok && s.UserID != 0
}
