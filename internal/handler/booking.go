package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/nyumbalink/nyumbalink/internal/auth"
	"github.com/nyumbalink/nyumbalink/internal/cache"
	"github.com/nyumbalink/nyumbalink/internal/model"
	"github.com/nyumbalink/nyumbalink/internal/queue"
	"github.com/nyumbalink/nyumbalink/internal/service"
)

const dateLayout = "2006-01-02"

// BookingHandler covers rental requests.  Approving or cancelling one
// changes the listing status, so the cached detail view is dropped.
type BookingHandler struct {
	Bookings   BookingStore
	Properties PropertyStore
	Views      *cache.ViewCache[model.Property]
	Notify     service.Dispatcher
	Now        func() time.Time
}

type bookingReq struct {
	MoveInDate     string `json:"move_in_date" validate:"required,datetime=2006-01-02"`
	DurationMonths uint32 `json:"duration_months" validate:"required,gte=1,lte=60"`
	Message        string `json:"message" validate:"max=1000"`
}

var bookingStatuses = []model.BookingStatus{model.BookingPending, model.BookingApproved, model.BookingRejected, model.BookingCancelled}

func (h *BookingHandler) now() time.Time {
	if h.Now != nil {
		return h.Now()
	}
	return time.Now()
}

// Create handles POST /v1/properties/:id/bookings.
func (h *BookingHandler) Create(c echo.Context) error {
	s, ok := auth.From(c)
	if !ok {
		return unauthorized(c)
	}
	propertyID, ok := parseID(c, "id")
	if !ok {
		return fail(c, http.StatusBadRequest, "invalid_id")
	}
	var req bookingReq
	if ok, err := bind(c, &req); !ok {
		return err
	}
	moveIn, err := time.Parse(dateLayout, req.MoveInDate)
	if err != nil {
		return fail(c, http.StatusBadRequest, "invalid_body")
	}
	today := h.now().UTC().Truncate(24 * time.Hour)
	if moveIn.Before(today) {
		return fail(c, http.StatusBadRequest, "move_in_past")
	}

	ctx, cancel := dbCtx(c)
	defer cancel()

	p, err := h.Properties.GetByID(ctx, propertyID)
	if err != nil {
		return storeError(c, err)
	}
	b := model.BookingRequest{
		PropertyID:     p.ID,
		TenantID:       s.UserID,
		MoveInDate:     moveIn,
		DurationMonths: req.DurationMonths,
	}
	if msg := strings.TrimSpace(req.Message); msg != "" {
		b.Message = &msg
	}
	if err := h.Bookings.Create(ctx, &b); err != nil {
		return storeError(c, err)
	}

	ev := queue.NewEvent(queue.BookingRequested, p.OwnerID, b.ID)
	ev.ActorName = b.TenantName
	ev.PropertyTitle = p.Title
	ev.Date = b.MoveInDate.Format(dateLayout)
	notify(c, h.Notify, ev)
	return c.JSON(http.StatusCreated, b)
}

// ListMine handles GET /v1/tenant/bookings.
func (h *BookingHandler) ListMine(c echo.Context) error {
	s, ok := auth.From(c)
	if !ok {
		return unauthorized(c)
	}
	status, ok := statusFilter(c, bookingStatuses...)
	if !ok {
		return fail(c, http.StatusBadRequest, "invalid_status")
	}
	page, size := pageParams(c)

	ctx, cancel := dbCtx(c)
	defer cancel()

	items, total, err := h.Bookings.ListByTenant(ctx, s.UserID, status, page, size)
	if err != nil {
		return storeError(c, err)
	}
	return list(c, items, page, size, total)
}

// ListForOwner handles GET /v1/landlord/bookings.
func (h *BookingHandler) ListForOwner(c echo.Context) error {
	s, ok := auth.From(c)
	if !ok {
		return unauthorized(c)
	}
	status, ok := statusFilter(c, bookingStatuses...)
	if !ok {
		return fail(c, http.StatusBadRequest, "invalid_status")
	}
	page, size := pageParams(c)

	ctx, cancel := dbCtx(c)
	defer cancel()

	items, total, err := h.Bookings.ListByOwner(ctx, s.UserID, status, page, size)
	if err != nil {
		return storeError(c, err)
	}
	return list(c, items, page, size, total)
}

// Approve handles POST /v1/landlord/bookings/:id/approve.  Other pending
// requests for the listing are declined in the same step and their
// tenants are told.
func (h *BookingHandler) Approve(c echo.Context) error {
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

	b, rejected, err := h.Bookings.Approve(ctx, id, s.UserID)
	if err != nil {
		return storeError(c, err)
	}
	h.Views.Delete(ctx, viewKey(b.PropertyID))

	ev := queue.NewEvent(queue.BookingApproved, b.TenantID, b.ID)
	ev.PropertyTitle = b.PropertyTitle
	notify(c, h.Notify, ev)
	for _, r := range rejected {
		ev := queue.NewEvent(queue.BookingRejected, r.TenantID, r.ID)
		ev.PropertyTitle = r.PropertyTitle
		notify(c, h.Notify, ev)
	}
	return c.JSON(http.StatusOK, echo.Map{"booking": b, "auto_rejected": len(rejected)})
}

// Reject handles POST /v1/landlord/bookings/:id/reject.
func (h *BookingHandler) Reject(c echo.Context) error {
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

	b, err := h.Bookings.Reject(ctx, id, s.UserID)
	if err != nil {
		return storeError(c, err)
	}

	ev := queue.NewEvent(queue.BookingRejected, b.TenantID, b.ID)
	ev.PropertyTitle = b.PropertyTitle
	notify(c, h.Notify, ev)
	return c.JSON(http.StatusOK, b)
}

// Cancel handles DELETE /v1/tenant/bookings/:id.
func (h *BookingHandler) Cancel(c echo.Context) error {
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

	b, err := h.Bookings.Cancel(ctx, id, s.UserID, h.now())
	if err != nil {
		return storeError(c, err)
	}
	h.Views.Delete(ctx, viewKey(b.PropertyID))

	owner, err := h.Bookings.OwnerOf(ctx, b.ID)
	if err != nil {
		c.Logger().Warnf("owner of booking %d: %v", b.ID, err)
	} else {
		ev := queue.NewEvent(queue.BookingCancelled, owner, b.ID)
		ev.ActorName = b.TenantName
		ev.PropertyTitle = b.PropertyTitle
		notify(c, h.Notify, ev)
	}
	return c.JSON(http.StatusOK, b)
}
