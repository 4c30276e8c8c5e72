package handler

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/nyumbalink/nyumbalink/internal/auth"
	"github.com/nyumbalink/nyumbalink/internal/cache"
	"github.com/nyumbalink/nyumbalink/internal/httpx"
	"github.com/nyumbalink/nyumbalink/internal/i18n"
	"github.com/nyumbalink/nyumbalink/internal/model"
	"github.com/nyumbalink/nyumbalink/internal/search"
	"github.com/nyumbalink/nyumbalink/internal/storage"
	"github.com/nyumbalink/nyumbalink/internal/validation"
)

// PropertyHandler serves listings: public search and detail, landlord
// CRUD and listing images.
type PropertyHandler struct {
	Properties PropertyStore
	Images     ImageRecords
	Objects    storage.ImageStore // nil when image storage is disabled
	Views      *cache.ViewCache[model.Property]
	MaxUpload  int64
}

// propertyReq is the editable part of a listing.  Update prefills it from
// the stored row so PATCH bodies only need the changed fields.
type propertyReq struct {
	Title       string   `json:"title" validate:"required,min=5,max=160"`
	Description string   `json:"description" validate:"required,min=10,max=5000"`
	Type        string   `json:"property_type" validate:"required"`
	Region      string   `json:"region" validate:"required"`
	District    string   `json:"district" validate:"required,max=64"`
	Address     string   `json:"address" validate:"max=255"`
	PriceTZS    uint64   `json:"price_tzs" validate:"required,gte=1000"`
	Bedrooms    uint32   `json:"bedrooms" validate:"lte=50"`
	Bathrooms   uint32   `json:"bathrooms" validate:"lte=50"`
	AreaSqm     *uint32  `json:"area_sqm" validate:"omitempty,gte=1,lte=100000"`
	Amenities   []string `json:"amenities" validate:"max=30,dive,max=50"`
}

func reqFromProperty(p model.Property) propertyReq {
	return propertyReq{
		Title:       p.Title,
		Description: p.Description,
		Type:        string(p.Type),
		Region:      p.Region,
		District:    p.District,
		Address:     p.Address,
		PriceTZS:    p.PriceTZS,
		Bedrooms:    p.Bedrooms,
		Bathrooms:   p.Bathrooms,
		AreaSqm:     p.AreaSqm,
		Amenities:   p.Amenities,
	}
}

// apply copies req onto p.  It returns the field errors for the enum-like
// fields the struct tags cannot express.
func (req propertyReq) apply(p *model.Property, lang string) []validation.FieldError {
	var errs []validation.FieldError
	pt, ok := model.ParsePropertyType(req.Type)
	if !ok {
		errs = append(errs, validation.FieldError{
			Field:   "property_type",
			Message: i18n.T(lang, "validate.oneof", joinTypes()),
			Type:    "oneof",
		})
	}
	region, ok := model.CanonicalRegion(req.Region)
	if !ok {
		errs = append(errs, validation.FieldError{
			Field:   "region",
			Message: i18n.T(lang, "validate.invalid"),
			Type:    "region",
		})
	}
	p.Title = strings.TrimSpace(req.Title)
	p.Description = strings.TrimSpace(req.Description)
	p.Type = pt
	p.Region = region
	p.District = strings.TrimSpace(req.District)
	p.Address = strings.TrimSpace(req.Address)
	p.PriceTZS = req.PriceTZS
	p.Bedrooms = req.Bedrooms
	p.Bathrooms = req.Bathrooms
	p.AreaSqm = req.AreaSqm
	p.Amenities = model.Amenities(req.Amenities).Normalize()
	return errs
}

func joinTypes() string {
	s := make([]string, len(model.PropertyTypes))
	for i, t := range model.PropertyTypes {
		s[i] = string(t)
	}
	return strings.Join(s, ", ")
}

func viewKey(id uint64) string { return strconv.FormatUint(id, 10) }

// ----- public -----

// Search handles GET /v1/properties.
func (h *PropertyHandler) Search(c echo.Context) error {
	q, err := search.ParseQuery(c.QueryParams())
	if err != nil {
		var se search.Errors
		if errors.As(err, &se) {
			fields := make([]validation.FieldError, 0, len(se))
			for _, fe := range se {
				fields = append(fields, validation.FieldError{Field: fe.Field, Message: fe.Message, Type: "query"})
			}
			return httpx.Fields(c, "invalid_query", fields)
		}
		return fail(c, http.StatusBadRequest, "invalid_query")
	}

	ctx, cancel := dbCtx(c)
	defer cancel()

	items, total, err := h.Properties.Search(ctx, q)
	if err != nil {
		return storeError(c, err)
	}
	if err := h.attachCovers(c, items); err != nil {
		return storeError(c, err)
	}
	return list(c, items, q.Page, q.PageSize, total)
}

func (h *PropertyHandler) attachCovers(c echo.Context, items []model.Property) error {
	if len(items) == 0 {
		return nil
	}
	ids := make([]uint64, len(items))
	for i, p := range items {
		ids[i] = p.ID
	}
	ctx, cancel := dbCtx(c)
	defer cancel()
	covers, err := h.Images.Covers(ctx, ids)
	if err != nil {
		return err
	}
	for i := range items {
		if img, ok := covers[items[i].ID]; ok {
			items[i].Images = []model.PropertyImage{img}
		}
	}
	return nil
}

// Get handles GET /v1/properties/:id.  The detail view is cached; every
// hit still counts as a view.
func (h *PropertyHandler) Get(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return fail(c, http.StatusBadRequest, "invalid_id")
	}
	ctx, cancel := dbCtx(c)
	defer cancel()

	p, hit := h.Views.Get(ctx, viewKey(id))
	if !hit {
		fresh, err := h.Properties.GetByID(ctx, id)
		if err != nil {
			return storeError(c, err)
		}
		imgs, err := h.Images.ListByProperty(ctx, id)
		if err != nil {
			return storeError(c, err)
		}
		fresh.Images = imgs
		p = &fresh
		h.Views.Set(ctx, viewKey(id), p)
	}
	if err := h.Properties.IncrementViews(ctx, id); err != nil {
		c.Logger().Warnf("increment views for property %d: %v", id, err)
	}
	return c.JSON(http.StatusOK, p)
}

// Image handles GET /v1/properties/:id/images/:imageId and streams the
// stored file.
func (h *PropertyHandler) Image(c echo.Context) error {
	id, ok1 := parseID(c, "id")
	imageID, ok2 := parseID(c, "imageId")
	if !ok1 || !ok2 {
		return fail(c, http.StatusBadRequest, "invalid_id")
	}
	if h.Objects == nil {
		return fail(c, http.StatusServiceUnavailable, "storage_unavailable")
	}
	ctx, cancel := dbCtx(c)
	defer cancel()

	img, err := h.Images.Get(ctx, id, imageID)
	if err != nil {
		return storeError(c, err)
	}
	rc, err := h.Objects.Open(ctx, img.ObjectID)
	if errors.Is(err, storage.ErrNotFound) {
		return fail(c, http.StatusNotFound, "image_not_found")
	}
	if err != nil {
		c.Logger().Errorf("open image %s: %v", img.ObjectID, err)
		return fail(c, http.StatusServiceUnavailable, "storage_unavailable")
	}
	defer rc.Close()
	c.Response().Header().Set("Cache-Control", "public, max-age=86400")
	return c.Stream(http.StatusOK, img.ContentType, rc)
}

// Meta handles GET /v1/meta/regions-and-types.
func Meta(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{
		"regions":         model.Regions,
		"property_types":  model.PropertyTypes,
		"statuses":        []model.PropertyStatus{model.StatusAvailable, model.StatusOccupied, model.StatusMaintenance},
		"payment_methods": []model.PaymentMethod{model.MethodMPesa, model.MethodTigoPesa, model.MethodAirtelMoney, model.MethodHaloPesa, model.MethodBank, model.MethodCash},
		"sorts":           []string{search.SortNewest, search.SortOldest, search.SortPriceAsc, search.SortPriceDesc, search.SortPopular},
		"max_images":      model.MaxImagesPerProperty,
	})
}

// ----- landlord -----

// Create handles POST /v1/landlord/properties.
func (h *PropertyHandler) Create(c echo.Context) error {
	s, ok := auth.From(c)
	if !ok {
		return unauthorized(c)
	}
	var req propertyReq
	if ok, err := bind(c, &req); !ok {
		return err
	}
	p := model.Property{OwnerID: s.UserID, Status: model.StatusAvailable}
	if errs := req.apply(&p, httpx.Lang(c)); len(errs) > 0 {
		return httpx.Fields(c, "validation_failed", errs)
	}

	ctx, cancel := dbCtx(c)
	defer cancel()

	if err := h.Properties.Create(ctx, &p); err != nil {
		return storeError(c, err)
	}
	return c.JSON(http.StatusCreated, p)
}

// Mine handles GET /v1/landlord/properties; every status is listed.
func (h *PropertyHandler) Mine(c echo.Context) error {
	s, ok := auth.From(c)
	if !ok {
		return unauthorized(c)
	}
	page, size := pageParams(c)

	ctx, cancel := dbCtx(c)
	defer cancel()

	items, total, err := h.Properties.ListByOwner(ctx, s.UserID, page, size)
	if err != nil {
		return storeError(c, err)
	}
	if err := h.attachCovers(c, items); err != nil {
		return storeError(c, err)
	}
	return list(c, items, page, size, total)
}

// Update handles PUT and PATCH /v1/landlord/properties/:id.
func (h *PropertyHandler) Update(c echo.Context) error {
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

	p, err := h.Properties.GetByIDAndOwner(ctx, id, s.UserID)
	if err != nil {
		return storeError(c, err)
	}
	req := reqFromProperty(p)
	if ok, err := bind(c, &req); !ok {
		return err
	}
	if errs := req.apply(&p, httpx.Lang(c)); len(errs) > 0 {
		return httpx.Fields(c, "validation_failed", errs)
	}
	if err := h.Properties.Update(ctx, &p); err != nil {
		return storeError(c, err)
	}
	h.Views.Delete(ctx, viewKey(id))
	return c.JSON(http.StatusOK, p)
}

type statusReq struct {
	Status string `json:"status" validate:"required"`
}

// SetStatus handles PATCH /v1/landlord/properties/:id/status.
func (h *PropertyHandler) SetStatus(c echo.Context) error {
	s, ok := auth.From(c)
	if !ok {
		return unauthorized(c)
	}
	id, ok := parseID(c, "id")
	if !ok {
		return fail(c, http.StatusBadRequest, "invalid_id")
	}
	var req statusReq
	if ok, err := bind(c, &req); !ok {
		return err
	}
	st, ok := model.ParsePropertyStatus(req.Status)
	if !ok {
		return fail(c, http.StatusBadRequest, "invalid_status")
	}

	ctx, cancel := dbCtx(c)
	defer cancel()

	p, err := h.Properties.SetStatus(ctx, id, s.UserID, st)
	if err != nil {
		return storeError(c, err)
	}
	h.Views.Delete(ctx, viewKey(id))
	return c.JSON(http.StatusOK, p)
}

// Delete handles DELETE /v1/landlord/properties/:id.
func (h *PropertyHandler) Delete(c echo.Context) error {
	s, ok := auth.From(c)
	if !ok {
		return unauthorized(c)
	}
	id, ok := parseID(c, "id")
	if !ok {
		return fail(c, http.StatusBadRequest, "invalid_id")
	}
	return h.remove(c, id, s.UserID)
}

// remove deletes a listing and its stored images.  ownerID 0 is the super
// admin path.
func (h *PropertyHandler) remove(c echo.Context, id, ownerID uint64) error {
	ctx, cancel := dbCtx(c)
	defer cancel()

	objects, err := h.Properties.Delete(ctx, id, ownerID)
	if err != nil {
		return storeError(c, err)
	}
	h.Views.Delete(ctx, viewKey(id))
	if h.Objects != nil {
		for _, oid := range objects {
			if err := h.Objects.Delete(ctx, oid); err != nil {
				c.Logger().Warnf("delete image object %s: %v", oid, err)
			}
		}
	}
	return c.NoContent(http.StatusNoContent)
}

// UploadImage handles POST /v1/landlord/properties/:id/images (multipart
// field "file").
func (h *PropertyHandler) UploadImage(c echo.Context) error {
	s, ok := auth.From(c)
	if !ok {
		return unauthorized(c)
	}
	id, ok := parseID(c, "id")
	if !ok {
		return fail(c, http.StatusBadRequest, "invalid_id")
	}
	if h.Objects == nil {
		return fail(c, http.StatusServiceUnavailable, "storage_unavailable")
	}
	fh, err := c.FormFile("file")
	if err != nil {
		return fail(c, http.StatusBadRequest, "file_required")
	}
	if h.MaxUpload > 0 && fh.Size > h.MaxUpload {
		return fail(c, http.StatusRequestEntityTooLarge, "image_too_large")
	}

	ctx, cancel := dbCtx(c)
	defer cancel()

	p, err := h.Properties.GetByIDAndOwner(ctx, id, s.UserID)
	if err != nil {
		return storeError(c, err)
	}
	f, err := fh.Open()
	if err != nil {
		return fail(c, http.StatusBadRequest, "file_required")
	}
	defer f.Close()

	ct, body, err := storage.Sniff(f)
	if errors.Is(err, storage.ErrUnsupportedType) {
		return fail(c, http.StatusUnsupportedMediaType, "unsupported_image")
	}
	if err != nil {
		return fail(c, http.StatusBadRequest, "file_required")
	}
	if h.MaxUpload > 0 {
		body = &storage.LimitedReader{R: body, N: h.MaxUpload}
	}
	objectID, size, err := h.Objects.Put(ctx, storage.ObjectName(s.UserID, ct), ct, body)
	if errors.Is(err, storage.ErrTooLarge) {
		return fail(c, http.StatusRequestEntityTooLarge, "image_too_large")
	}
	if err != nil {
		c.Logger().Errorf("store image for property %d: %v", p.ID, err)
		return fail(c, http.StatusServiceUnavailable, "storage_unavailable")
	}

	img := model.PropertyImage{
		PropertyID:  p.ID,
		ObjectID:    objectID,
		Filename:    storage.CleanFilename(fh.Filename),
		ContentType: ct,
		SizeBytes:   size,
	}
	if err := h.Images.Add(ctx, &img); err != nil {
		if derr := h.Objects.Delete(ctx, objectID); derr != nil {
			c.Logger().Warnf("discard image object %s: %v", objectID, derr)
		}
		return storeError(c, err)
	}
	h.Views.Delete(ctx, viewKey(p.ID))
	return c.JSON(http.StatusCreated, img)
}

// DeleteImage handles DELETE /v1/landlord/properties/:id/images/:imageId.
func (h *PropertyHandler) DeleteImage(c echo.Context) error {
	s, ok := auth.From(c)
	if !ok {
		return unauthorized(c)
	}
	id, ok1 := parseID(c, "id")
	imageID, ok2 := parseID(c, "imageId")
	if !ok1 || !ok2 {
		return fail(c, http.StatusBadRequest, "invalid_id")
	}

	ctx, cancel := dbCtx(c)
	defer cancel()

	if _, err := h.Properties.GetByIDAndOwner(ctx, id, s.UserID); err != nil {
		return storeError(c, err)
	}
	img, err := h.Images.Delete(ctx, id, imageID)
	if err != nil {
		return storeError(c, err)
	}
	if h.Objects != nil {
		if err := h.Objects.Delete(ctx, img.ObjectID); err != nil {
			c.Logger().Warnf("delete image object %s: %v", img.ObjectID, err)
		}
	}
	h.Views.Delete(ctx, viewKey(id))
	return c.NoContent(http.StatusNoContent)
}
