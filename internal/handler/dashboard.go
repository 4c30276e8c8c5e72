package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/nyumbalink/nyumbalink/internal/auth"
	"github.com/nyumbalink/nyumbalink/internal/model"
)

// DashboardHandler serves GET /v1/dashboard, whose body depends on the
// caller's role.
type DashboardHandler struct {
	Stats         StatsStore
	Users         UserStore
	Notifications NotificationStore
}

type dashboardResp struct {
	Role        model.Role `json:"role"`
	User        model.User `json:"user"`
	UnreadCount int64      `json:"unread_notifications"`
	Stats       any        `json:"stats"`
}

// Get handles GET /v1/dashboard.
func (h *DashboardHandler) Get(c echo.Context) error {
	s, ok := auth.From(c)
	if !ok {
		return unauthorized(c)
	}
	ctx, cancel := dbCtx(c)
	defer cancel()

	u, err := h.Users.GetByID(ctx, s.UserID)
	if err != nil {
		return storeError(c, err)
	}
	unread, err := h.Notifications.CountUnread(ctx, s.UserID)
	if err != nil {
		return storeError(c, err)
	}

	var stats any
	switch s.Role {
	case model.RoleSuperAdmin:
		stats, err = h.Stats.Admin(ctx)
	case model.RolePropertyAdmin:
		stats, err = h.Stats.Landlord(ctx, s.UserID)
	case model.RoleTenant:
		stats, err = h.Stats.Tenant(ctx, s.UserID)
	default:
		return fail(c, http.StatusForbidden, "forbidden")
	}
	if err != nil {
		return storeError(c, err)
	}
	return c.JSON(http.StatusOK, dashboardResp{
		Role:        s.Role,
		User:        u,
		UnreadCount: unread,
		Stats:       stats,
	})
}
