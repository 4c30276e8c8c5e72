// Package search turns listing search parameters into SQL predicates,
// a whitelisted ORDER BY and LIMIT/OFFSET pagination.  It holds no
// database handle; the property repository executes what Build returns.
package search

import (
	"fmt"
	"math"
	"net/url"
	"strconv"
	"strings"

	"github.com/nyumbalink/nyumbalink/internal/model"
)

// Sort orders accepted by the search endpoint.
const (
	SortNewest    = "newest"
	SortOldest    = "oldest"
	SortPriceAsc  = "price_asc"
	SortPriceDesc = "price_desc"
	SortPopular   = "popular"
)

// Pagination limits.
const (
	DefaultPageSize = 12
	MaxPageSize     = 100
	// MaxPage keeps (page-1)*page_size inside a 32-bit OFFSET for any page size.
	MaxPage         = math.MaxInt32 / MaxPageSize
	maxTextLen      = 100
	maxAmenities    = 10
)

// StatusAny disables the status predicate.  Only admin and owner listings
// may use it; ParseQuery never produces it from public input.
const StatusAny model.PropertyStatus = "ANY"

// Query is a normalised property search request.
type Query struct {
	Text         string
	Region       string
	District     string
	Type         model.PropertyType
	MinPrice     *uint64
	MaxPrice     *uint64
	MinBedrooms  *uint32
	MinBathrooms *uint32
	Amenities    []string
	FeaturedOnly bool
	OwnerID      *uint64
	Status       model.PropertyStatus
	Sort         string
	Page         int
	PageSize     int
}

// FieldError describes one rejected search parameter.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Errors is returned by ParseQuery when one or more parameters are invalid.
type Errors []FieldError

func (e Errors) Error() string {
	parts := make([]string, 0, len(e))
	for _, fe := range e {
		parts = append(parts, fe.Field+": "+fe.Message)
	}
	return "invalid search query: " + strings.Join(parts, "; ")
}

// ParseQuery reads a public search request.  Unknown parameters are
// ignored, malformed numbers and unknown enum values are reported, and
// status is pinned to AVAILABLE.
//
// Parameters: q, region, district, type, min_price, max_price, bedrooms,
// bathrooms, amenities (comma separated), featured, sort, page, page_size.
func ParseQuery(v url.Values) (Query, error) {
	q := Query{
		Text:     clip(strings.TrimSpace(v.Get("q")), maxTextLen),
		Region:   clip(strings.TrimSpace(v.Get("region")), maxTextLen),
		District: clip(strings.TrimSpace(v.Get("district")), maxTextLen),
		Status:   model.StatusAvailable,
		Sort:     SortNewest,
		Page:     1,
		PageSize: DefaultPageSize,
	}
	var errs Errors

	if s := strings.TrimSpace(v.Get("type")); s != "" {
		pt, ok := model.ParsePropertyType(s)
		if !ok {
			errs = append(errs, FieldError{"type", "unknown property type"})
		}
		q.Type = pt
	}
	q.MinPrice = parseUint64(v, "min_price", &errs)
	q.MaxPrice = parseUint64(v, "max_price", &errs)
	if q.MinPrice != nil && q.MaxPrice != nil && *q.MinPrice > *q.MaxPrice {
		errs = append(errs, FieldError{"min_price", "must not exceed max_price"})
	}
	q.MinBedrooms = parseUint32(v, "bedrooms", &errs)
	q.MinBathrooms = parseUint32(v, "bathrooms", &errs)

	if s := v.Get("amenities"); s != "" {
		q.Amenities = []string(model.Amenities(strings.Split(s, ",")).Normalize())
		if len(q.Amenities) > maxAmenities {
			errs = append(errs, FieldError{"amenities", fmt.Sprintf("at most %d amenities", maxAmenities)})
		}
	}
	if s := strings.TrimSpace(v.Get("featured")); s != "" {
		b, err := strconv.ParseBool(s)
		if err != nil {
			errs = append(errs, FieldError{"featured", "must be true or false"})
		}
		q.FeaturedOnly = b
	}
	if s := strings.ToLower(strings.TrimSpace(v.Get("sort"))); s != "" {
		if !validSort(s) {
			errs = append(errs, FieldError{"sort", "unknown sort order"})
		} else {
			q.Sort = s
		}
	}

	q.Page, q.PageSize = Clamp(v.Get("page"), v.Get("page_size"))

	if len(errs) > 0 {
		return q, errs
	}
	return q, nil
}

// Clamp parses page and page_size the way every list endpoint does:
// page defaults to 1, page size to DefaultPageSize and is capped at
// MaxPageSize.
func Clamp(pageRaw, sizeRaw string) (int, int) {
	page, _ := strconv.Atoi(pageRaw)
	ps, _ := strconv.Atoi(sizeRaw)
	return ClampInt(page, ps)
}

// ClampInt applies the page defaults and the page and page size ceilings.
func ClampInt(page, pageSize int) (int, int) {
	page = min(max(page, 1), MaxPage)
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}
	if pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}
	return page, pageSize
}

// Offset returns the row offset of the query's page.
func (q Query) Offset() int {
	return (q.Page - 1) * q.PageSize
}

func validSort(s string) bool {
	switch s {
	case SortNewest, SortOldest, SortPriceAsc, SortPriceDesc, SortPopular:
		return true
	}
	return false
}

func parseUint64(v url.Values, key string, errs *Errors) *uint64 {
	s := strings.TrimSpace(v.Get(key))
	if s == "" {
		return nil
	}
	n, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		*errs = append(*errs, FieldError{key, "must be a non-negative integer"})
		return nil
	}
	return &n
}

func parseUint32(v url.Values, key string, errs *Errors) *uint32 {
	s := strings.TrimSpace(v.Get(key))
	if s == "" {
		return nil
	}
	n, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		*errs = append(*errs, FieldError{key, "must be a non-negative integer"})
		return nil
	}
	u := uint32(n)
	return &u
}

func clip(s string, n int) string {
	r := []rune(s)
	if len(r) > n {
		return string(r[:n])
	}
	return s
}
