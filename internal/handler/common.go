// Package handler implements the HTTP endpoints.  Handlers read the caller
// from the auth.Session set by middleware.JWTAuth and talk to storage
// through the small interfaces in stores.go.
package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/nyumbalink/nyumbalink/internal/httpx"
	"github.com/nyumbalink/nyumbalink/internal/queue"
	"github.com/nyumbalink/nyumbalink/internal/repository"
	"github.com/nyumbalink/nyumbalink/internal/search"
	"github.com/nyumbalink/nyumbalink/internal/service"
)

const dbTimeout = 5 * time.Second

func dbCtx(c echo.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request().Context(), dbTimeout)
}

// notifyCtx is detached from the request so a client hanging up does not
// drop the notification.
func notifyCtx(c echo.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.WithoutCancel(c.Request().Context()), dbTimeout)
}

func fail(c echo.Context, status int, code string) error {
	return httpx.Error(c, status, code)
}

func unauthorized(c echo.Context) error {
	return fail(c, http.StatusUnauthorized, "unauthorized")
}

// parseID reads a positive numeric path parameter.
func parseID(c echo.Context, name string) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return id, true
}

// bind decodes and validates the request body into v.  On failure the
// error response is already written and ok is false.
func bind(c echo.Context, v any) (ok bool, err error) {
	if err := c.Bind(v); err != nil {
		return false, fail(c, http.StatusBadRequest, "invalid_body")
	}
	if err := c.Validate(v); err != nil {
		return false, httpx.Validation(c, err)
	}
	return true, nil
}

type errorMapping struct {
	err    error
	status int
	code   string
}

var repoErrors = []errorMapping{
	{repository.ErrUserNotFound, http.StatusNotFound, "user_not_found"},
	{repository.ErrPropertyNotFound, http.StatusNotFound, "property_not_found"},
	{repository.ErrImageNotFound, http.StatusNotFound, "image_not_found"},
	{repository.ErrInquiryNotFound, http.StatusNotFound, "inquiry_not_found"},
	{repository.ErrBookingNotFound, http.StatusNotFound, "booking_not_found"},
	{repository.ErrPaymentNotFound, http.StatusNotFound, "payment_not_found"},
	{repository.ErrNotificationNotFound, http.StatusNotFound, "notification_not_found"},
	{repository.ErrForbidden, http.StatusForbidden, "forbidden"},
	{repository.ErrEmailExists, http.StatusConflict, "email_exists"},
	{repository.ErrConflict, http.StatusConflict, "payment_exists"},
	{repository.ErrInvalidTransition, http.StatusConflict, "invalid_transition"},
	{repository.ErrImageLimit, http.StatusConflict, "image_limit"},
	{repository.ErrBookingExists, http.StatusConflict, "booking_exists"},
	{repository.ErrBookingNotApproved, http.StatusConflict, "booking_not_approved"},
	{repository.ErrPropertyUnavailable, http.StatusConflict, "property_unavailable"},
	{repository.ErrTokenInvalid, http.StatusUnauthorized, "invalid_refresh"},
}

// storeError maps repository sentinels to responses.  Anything else is
// logged and reported as a database error.
func storeError(c echo.Context, err error) error {
	for _, m := range repoErrors {
		if errors.Is(err, m.err) {
			return fail(c, m.status, m.code)
		}
	}
	c.Logger().Errorf("%s %s: %v", c.Request().Method, c.Path(), err)
	return fail(c, http.StatusInternalServerError, "database_error")
}

// pageParams reads ?page= and ?page_size=.
func pageParams(c echo.Context) (int, int) {
	return search.Clamp(c.QueryParam("page"), c.QueryParam("page_size"))
}

type listResponse[T any] struct {
	Data []T         `json:"data"`
	Meta search.Page `json:"meta"`
}

func list[T any](c echo.Context, items []T, page, pageSize int, total int64) error {
	if items == nil {
		items = []T{}
	}
	return c.JSON(http.StatusOK, listResponse[T]{Data: items, Meta: search.NewPage(page, pageSize, total)})
}

// statusFilter reads ?status= against the allowed values.  Empty means
// no filter.
func statusFilter[S ~string](c echo.Context, allowed ...S) (S, bool) {
	raw := strings.ToUpper(strings.TrimSpace(c.QueryParam("status")))
	if raw == "" {
		return "", true
	}
	for _, a := range allowed {
		if string(a) == raw {
			return a, true
		}
	}
	return "", false
}

// notify hands ev to d outside the request lifetime.
func notify(c echo.Context, d service.Dispatcher, ev queue.Event) {
	if d == nil || ev.RecipientID == 0 {
		return
	}
	ctx, cancel := notifyCtx(c)
	defer cancel()
	d.Dispatch(ctx, ev)
}
