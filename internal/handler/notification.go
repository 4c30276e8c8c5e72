package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/nyumbalink/nyumbalink/internal/auth"
)

// NotificationHandler lists and acknowledges the caller's in-app
// notifications.  Titles and messages were rendered in the recipient's
// language when they were stored.
type NotificationHandler struct {
	Notifications NotificationStore
}

// List handles GET /v1/notifications; ?unread=true limits to unread.
func (h *NotificationHandler) List(c echo.Context) error {
	s, ok := auth.From(c)
	if !ok {
		return unauthorized(c)
	}
	unread := false
	if raw := c.QueryParam("unread"); raw != "" {
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return fail(c, http.StatusBadRequest, "invalid_query")
		}
		unread = b
	}
	page, size := pageParams(c)

	ctx, cancel := dbCtx(c)
	defer cancel()

	items, total, err := h.Notifications.ListByUser(ctx, s.UserID, unread, page, size)
	if err != nil {
		return storeError(c, err)
	}
	return list(c, items, page, size, total)
}

// UnreadCount handles GET /v1/notifications/unread-count.
func (h *NotificationHandler) UnreadCount(c echo.Context) error {
	s, ok := auth.From(c)
	if !ok {
		return unauthorized(c)
	}
	ctx, cancel := dbCtx(c)
	defer cancel()

	n, err := h.Notifications.CountUnread(ctx, s.UserID)
	if err != nil {
		return storeError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"unread": n})
}

// MarkRead handles POST /v1/notifications/:id/read.
func (h *NotificationHandler) MarkRead(c echo.Context) error {
	s, ok := auth.From(c)
	if !ok {
		return unauthorized(c)
	}
	id, ok := parseID(c, "id")
	if !ok {
		return fail(c, http.StatusBadRequest, "invalid_id")
	}
	ctx, cancel := dbCtx(c)
	defer cancel()

	if err := h.Notifications.MarkRead(ctx, id, s.UserID); err != nil {
		return storeError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// MarkAllRead handles POST /v1/notifications/read-all.
func (h *NotificationHandler) MarkAllRead(c echo.Context) error {
	s, ok := auth.From(c)
	if !ok {
		return unauthorized(c)
	}
	ctx, cancel := dbCtx(c)
	defer cancel()

	n, err := h.Notifications.MarkAllRead(ctx, s.UserID)
	if err != nil {
		return storeError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"updated": n})
}
