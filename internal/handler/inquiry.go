package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/nyumbalink/nyumbalink/internal/auth"
	"github.com/nyumbalink/nyumbalink/internal/model"
	"github.com/nyumbalink/nyumbalink/internal/queue"
	"github.com/nyumbalink/nyumbalink/internal/service"
	"github.com/nyumbalink/nyumbalink/internal/validation"
)

// InquiryHandler covers tenant questions about a listing and the
// landlord's answers.
type InquiryHandler struct {
	Inquiries  InquiryStore
	Properties PropertyStore
	Notify     service.Dispatcher
}

type inquiryReq struct {
	Message string `json:"message" validate:"required,min=10,max=2000"`
	Phone   string `json:"phone" validate:"omitempty,tzphone"`
}

type respondReq struct {
	Response string `json:"response" validate:"required,min=2,max=2000"`
}

var inquiryStatuses = []model.InquiryStatus{model.InquiryPending, model.InquiryResponded, model.InquiryClosed}

// Create handles POST /v1/properties/:id/inquiries.
func (h *InquiryHandler) Create(c echo.Context) error {
	s, ok := auth.From(c)
	if !ok {
		return unauthorized(c)
	}
	propertyID, ok := parseID(c, "id")
	if !ok {
		return fail(c, http.StatusBadRequest, "invalid_id")
	}
	var req inquiryReq
	if ok, err := bind(c, &req); !ok {
		return err
	}

	ctx, cancel := dbCtx(c)
	defer cancel()

	p, err := h.Properties.GetByID(ctx, propertyID)
	if err != nil {
		return storeError(c, err)
	}
	in := model.Inquiry{
		PropertyID: p.ID,
		TenantID:   s.UserID,
		Message:    strings.TrimSpace(req.Message),
	}
	if phone := validation.NormalizePhone(req.Phone); phone != "" {
		in.Phone = &phone
	}
	if err := h.Inquiries.Create(ctx, &in); err != nil {
		return storeError(c, err)
	}

	ev := queue.NewEvent(queue.InquiryCreated, p.OwnerID, in.ID)
	ev.ActorName = in.TenantName
	ev.PropertyTitle = p.Title
	notify(c, h.Notify, ev)
	return c.JSON(http.StatusCreated, in)
}

// ListMine handles GET /v1/tenant/inquiries.
func (h *InquiryHandler) ListMine(c echo.Context) error {
	s, ok := auth.From(c)
	if !ok {
		return unauthorized(c)
	}
	status, ok := statusFilter(c, inquiryStatuses...)
	if !ok {
		return fail(c, http.StatusBadRequest, "invalid_status")
	}
	page, size := pageParams(c)

	ctx, cancel := dbCtx(c)
	defer cancel()

	items, total, err := h.Inquiries.ListByTenant(ctx, s.UserID, status, page, size)
	if err != nil {
		return storeError(c, err)
	}
	return list(c, items, page, size, total)
}

// ListForOwner handles GET /v1/landlord/inquiries.
func (h *InquiryHandler) ListForOwner(c echo.Context) error {
	s, ok := auth.From(c)
	if !ok {
		return unauthorized(c)
	}
	status, ok := statusFilter(c, inquiryStatuses...)
	if !ok {
		return fail(c, http.StatusBadRequest, "invalid_status")
	}
	page, size := pageParams(c)

	ctx, cancel := dbCtx(c)
	defer cancel()

	items, total, err := h.Inquiries.ListByOwner(ctx, s.UserID, status, page, size)
	if err != nil {
		return storeError(c, err)
	}
	return list(c, items, page, size, total)
}

// Respond handles POST /v1/landlord/inquiries/:id/respond.
func (h *InquiryHandler) Respond(c echo.Context) error {
	s, ok := auth.From(c)
	if !ok {
		return unauthorized(c)
	}
	id, ok := parseID(c, "id")
	if !ok {
		return fail(c, http.StatusBadRequest, "invalid_id")
	}
	var req respondReq
	if ok, err := bind(c, &req); !ok {
		return err
	}

	ctx, cancel := dbCtx(c)
	defer cancel()

	in, err := h.Inquiries.Respond(ctx, id, s.UserID, strings.TrimSpace(req.Response))
	if err != nil {
		return storeError(c, err)
	}

	ev := queue.NewEvent(queue.InquiryResponded, in.TenantID, in.ID)
	ev.PropertyTitle = in.PropertyTitle
	notify(c, h.Notify, ev)
	return c.JSON(http.StatusOK, in)
}

// Close handles POST /v1/landlord/inquiries/:id/close.
func (h *InquiryHandler) Close(c echo.Context) error {
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

	in, err := h.Inquiries.Close(ctx, id, s.UserID)
	if err != nil {
		return storeError(c, err)
	}
	return c.JSON(http.StatusOK, in)
}
