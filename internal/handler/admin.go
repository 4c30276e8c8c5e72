package handler

import (
	"maps"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/nyumbalink/nyumbalink/internal/auth"
	"github.com/nyumbalink/nyumbalink/internal/model"
	"github.com/nyumbalink/nyumbalink/internal/repository"
	"github.com/nyumbalink/nyumbalink/internal/search"
)

// AdminHandler holds the super admin endpoints.  Listing moderation goes
// through the same PropertyHandler the landlords use, without the owner
// check.
type AdminHandler struct {
	Users    UserStore
	Tokens   TokenStore
	Stats    StatsStore
	Listings *PropertyHandler
}

type adminUserReq struct {
	Role     *string `json:"role"`
	IsActive *bool   `json:"is_active"`
}

type featuredReq struct {
	Featured *bool `json:"featured" validate:"required"`
}

// Overview handles GET /v1/admin/stats.
func (h *AdminHandler) Overview(c echo.Context) error {
	ctx, cancel := dbCtx(c)
	defer cancel()

	st, err := h.Stats.Admin(ctx)
	if err != nil {
		return storeError(c, err)
	}
	return c.JSON(http.StatusOK, st)
}

// ListUsers handles GET /v1/admin/users?role=&q=&page=&page_size=.
func (h *AdminHandler) ListUsers(c echo.Context) error {
	f := repository.UserFilter{Text: strings.TrimSpace(c.QueryParam("q"))}
	if raw := c.QueryParam("role"); raw != "" {
		r, ok := model.ParseRole(raw)
		if !ok {
			return fail(c, http.StatusBadRequest, "invalid_role")
		}
		f.Role = r
	}
	f.Page, f.PageSize = pageParams(c)

	ctx, cancel := dbCtx(c)
	defer cancel()

	items, total, err := h.Users.List(ctx, f)
	if err != nil {
		return storeError(c, err)
	}
	return list(c, items, f.Page, f.PageSize, total)
}

// UpdateUser handles PATCH /v1/admin/users/:id.  It changes role and
// active flag; deactivating a user revokes all their refresh tokens.
func (h *AdminHandler) UpdateUser(c echo.Context) error {
	s, ok := auth.From(c)
	if !ok {
		return unauthorized(c)
	}
	id, ok := parseID(c, "id")
	if !ok {
		return fail(c, http.StatusBadRequest, "invalid_id")
	}
	if id == s.UserID {
		return fail(c, http.StatusBadRequest, "cannot_modify_self")
	}
	var req adminUserReq
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "invalid_body")
	}
	var role model.Role
	if req.Role != nil {
		r, ok := model.ParseRole(*req.Role)
		if !ok {
			return fail(c, http.StatusBadRequest, "invalid_role")
		}
		role = r
	}

	ctx, cancel := dbCtx(c)
	defer cancel()

	if _, err := h.Users.GetByID(ctx, id); err != nil {
		return storeError(c, err)
	}
	if role != "" {
		if err := h.Users.SetRole(ctx, id, role); err != nil {
			return storeError(c, err)
		}
	}
	if req.IsActive != nil {
		if err := h.Users.SetActive(ctx, id, *req.IsActive); err != nil {
			return storeError(c, err)
		}
	}
	if (req.IsActive != nil && !*req.IsActive) || role != "" {
		// existing access tokens carry the old role until they expire
		if err := h.Tokens.RevokeAllForUser(ctx, id); err != nil {
			return storeError(c, err)
		}
	}
	u, err := h.Users.GetByID(ctx, id)
	if err != nil {
		return storeError(c, err)
	}
	return c.JSON(http.StatusOK, u)
}

// ListProperties handles GET /v1/admin/properties.  It takes the public
// search parameters but sees every status, optionally narrowed with
// ?status= and ?owner_id=.
func (h *AdminHandler) ListProperties(c echo.Context) error {
	params := maps.Clone(c.QueryParams())
	status := params.Get("status")
	owner := params.Get("owner_id")
	params.Del("status")
	params.Del("owner_id")

	q, err := search.ParseQuery(params)
	if err != nil {
		return fail(c, http.StatusBadRequest, "invalid_query")
	}
	q.Status = search.StatusAny
	if status != "" {
		st, ok := model.ParsePropertyStatus(status)
		if !ok {
			return fail(c, http.StatusBadRequest, "invalid_status")
		}
		q.Status = st
	}
	if owner != "" {
		id, err := strconv.ParseUint(owner, 10, 64)
		if err != nil || id == 0 {
			return fail(c, http.StatusBadRequest, "invalid_query")
		}
		q.OwnerID = &id
	}

	ctx, cancel := dbCtx(c)
	defer cancel()

	items, total, err := h.Listings.Properties.Search(ctx, q)
	if err != nil {
		return storeError(c, err)
	}
	if err := h.Listings.attachCovers(c, items); err != nil {
		return storeError(c, err)
	}
	return list(c, items, q.Page, q.PageSize, total)
}

// SetFeatured handles PATCH /v1/admin/properties/:id/featured.
func (h *AdminHandler) SetFeatured(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return fail(c, http.StatusBadRequest, "invalid_id")
	}
	var req featuredReq
	if ok, err := bind(c, &req); !ok {
		return err
	}

	ctx, cancel := dbCtx(c)
	defer cancel()

	p, err := h.Listings.Properties.SetFeatured(ctx, id, *req.Featured)
	if err != nil {
		return storeError(c, err)
	}
	h.Listings.Views.Delete(ctx, viewKey(id))
	return c.JSON(http.StatusOK, p)
}

// DeleteProperty handles DELETE /v1/admin/properties/:id.
func (h *AdminHandler) DeleteProperty(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return fail(c, http.StatusBadRequest, "invalid_id")
	}
	return h.Listings.remove(c, id, 0)
}
