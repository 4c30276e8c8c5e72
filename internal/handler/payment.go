package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/nyumbalink/nyumbalink/internal/auth"
	"github.com/nyumbalink/nyumbalink/internal/model"
	"github.com/nyumbalink/nyumbalink/internal/queue"
	"github.com/nyumbalink/nyumbalink/internal/service"
)

// PaymentHandler records rent payments made outside the platform (mobile
// money, bank, cash) and lets the landlord confirm them.
type PaymentHandler struct {
	Payments PaymentStore
	Bookings BookingStore
	Users    UserStore
	Notify   service.Dispatcher
}

type paymentReq struct {
	AmountTZS uint64 `json:"amount_tzs" validate:"required,gte=1"`
	Method    string `json:"method" validate:"required"`
	Reference string `json:"reference" validate:"required,min=4,max=64"`
}

var paymentStatuses = []model.PaymentStatus{model.PaymentPending, model.PaymentConfirmed, model.PaymentRejected}

// Create handles POST /v1/tenant/bookings/:id/payments.
func (h *PaymentHandler) Create(c echo.Context) error {
	s, ok := auth.From(c)
	if !ok {
		return unauthorized(c)
	}
	bookingID, ok := parseID(c, "id")
	if !ok {
		return fail(c, http.StatusBadRequest, "invalid_id")
	}
	var req paymentReq
	if ok, err := bind(c, &req); !ok {
		return err
	}
	method, ok := model.ParsePaymentMethod(req.Method)
	if !ok {
		return fail(c, http.StatusBadRequest, "invalid_body")
	}

	ctx, cancel := dbCtx(c)
	defer cancel()

	pm := model.Payment{
		BookingID: bookingID,
		TenantID:  s.UserID,
		AmountTZS: req.AmountTZS,
		Method:    method,
		Reference: strings.TrimSpace(req.Reference),
	}
	if err := h.Payments.Create(ctx, &pm); err != nil {
		return storeError(c, err)
	}

	owner, err := h.Bookings.OwnerOf(ctx, bookingID)
	if err != nil {
		c.Logger().Warnf("owner of booking %d: %v", bookingID, err)
		return c.JSON(http.StatusCreated, pm)
	}
	ev := queue.NewEvent(queue.PaymentRecorded, owner, pm.ID)
	ev.AmountTZS = pm.AmountTZS
	ev.PropertyTitle = pm.PropertyTitle
	if u, err := h.Users.GetByID(ctx, s.UserID); err == nil {
		ev.ActorName = u.FullName
	}
	notify(c, h.Notify, ev)
	return c.JSON(http.StatusCreated, pm)
}

// ListMine handles GET /v1/tenant/payments.
func (h *PaymentHandler) ListMine(c echo.Context) error {
	s, ok := auth.From(c)
	if !ok {
		return unauthorized(c)
	}
	status, ok := statusFilter(c, paymentStatuses...)
	if !ok {
		return fail(c, http.StatusBadRequest, "invalid_status")
	}
	page, size := pageParams(c)

	ctx, cancel := dbCtx(c)
	defer cancel()

	items, total, err := h.Payments.ListByTenant(ctx, s.UserID, status, page, size)
	if err != nil {
		return storeError(c, err)
	}
	return list(c, items, page, size, total)
}

// ListForOwner handles GET /v1/landlord/payments.
func (h *PaymentHandler) ListForOwner(c echo.Context) error {
	s, ok := auth.From(c)
	if !ok {
		return unauthorized(c)
	}
	status, ok := statusFilter(c, paymentStatuses...)
	if !ok {
		return fail(c, http.StatusBadRequest, "invalid_status")
	}
	page, size := pageParams(c)

	ctx, cancel := dbCtx(c)
	defer cancel()

	items, total, err := h.Payments.ListByOwner(ctx, s.UserID, status, page, size)
	if err != nil {
		return storeError(c, err)
	}
	return list(c, items, page, size, total)
}

// Confirm handles POST /v1/landlord/payments/:id/confirm.
func (h *PaymentHandler) Confirm(c echo.Context) error {
	return h.settle(c, true)
}

// Reject handles POST /v1/landlord/payments/:id/reject.
func (h *PaymentHandler) Reject(c echo.Context) error {
	return h.settle(c, false)
}

func (h *PaymentHandler) settle(c echo.Context, confirm bool) error {
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

	var (
		pm  model.Payment
		err error
		typ = queue.PaymentConfirmed
	)
	if confirm {
		pm, err = h.Payments.Confirm(ctx, id, s.UserID)
	} else {
		pm, err = h.Payments.Reject(ctx, id, s.UserID)
		typ = queue.PaymentRejected
	}
	if err != nil {
		return storeError(c, err)
	}

	ev := queue.NewEvent(typ, pm.TenantID, pm.ID)
	ev.AmountTZS = pm.AmountTZS
	ev.PropertyTitle = pm.PropertyTitle
	notify(c, h.Notify, ev)
	return c.JSON(http.StatusOK, pm)
}
