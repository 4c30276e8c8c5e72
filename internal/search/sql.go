package search

import (
	"strings"
)

// Clause is the SQL fragment produced for a Query.  Where never is empty
// ("1=1" when unconstrained) and Args line up with its placeholders.
type Clause struct {
	Where   string
	Args    []any
	OrderBy string
}

// Build converts q into predicates over the `properties` table aliased
// as p.
func Build(q Query) Clause {
	where := []string{}
	args := []any{}

	if q.Status != "" && q.Status != StatusAny {
		where = append(where, "p.status = ?")
		args = append(args, string(q.Status))
	}
	if q.OwnerID != nil {
		where = append(where, "p.owner_id = ?")
		args = append(args, *q.OwnerID)
	}
	if q.Text != "" {
		like := "%" + escapeLike(strings.ToLower(q.Text)) + "%"
		where = append(where, "(LOWER(p.title) LIKE ? OR LOWER(p.description) LIKE ? OR LOWER(p.region) LIKE ? OR LOWER(p.district) LIKE ? OR LOWER(p.address) LIKE ?)")
		args = append(args, like, like, like, like, like)
	}
	if q.Region != "" {
		where = append(where, "LOWER(p.region) = ?")
		args = append(args, strings.ToLower(q.Region))
	}
	if q.District != "" {
		where = append(where, "LOWER(p.district) LIKE ?")
		args = append(args, "%"+escapeLike(strings.ToLower(q.District))+"%")
	}
	if q.Type != "" {
		where = append(where, "p.property_type = ?")
		args = append(args, string(q.Type))
	}
	if q.MinPrice != nil {
		where = append(where, "p.price_tzs >= ?")
		args = append(args, *q.MinPrice)
	}
	if q.MaxPrice != nil {
		where = append(where, "p.price_tzs <= ?")
		args = append(args, *q.MaxPrice)
	}
	if q.MinBedrooms != nil {
		where = append(where, "p.bedrooms >= ?")
		args = append(args, *q.MinBedrooms)
	}
	if q.MinBathrooms != nil {
		where = append(where, "p.bathrooms >= ?")
		args = append(args, *q.MinBathrooms)
	}
	for _, a := range q.Amenities {
		where = append(where, "JSON_CONTAINS(p.amenities, JSON_QUOTE(?))")
		args = append(args, a)
	}
	if q.FeaturedOnly {
		where = append(where, "p.is_featured = TRUE")
	}

	cond := "1=1"
	if len(where) > 0 {
		cond = strings.Join(where, " AND ")
	}
	return Clause{Where: cond, Args: args, OrderBy: orderBy(q.Sort)}
}

// orderBy maps a sort name onto a fixed ORDER BY.  The trailing id keeps
// pages stable on ties: newest first everywhere except oldest, which runs
// ascending throughout.
func orderBy(sort string) string {
	switch sort {
	case SortOldest:
		return "p.created_at ASC, p.id ASC"
	case SortPriceAsc:
		return "p.price_tzs ASC, p.id DESC"
	case SortPriceDesc:
		return "p.price_tzs DESC, p.id DESC"
	case SortPopular:
		return "p.views DESC, p.id DESC"
	default:
		return "p.created_at DESC, p.id DESC"
	}
}

// escapeLike escapes the LIKE wildcards in user input.  MySQL uses the
// backslash as the default LIKE escape character.
func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}

// Page is the pagination envelope returned with search results.
type Page struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
	HasNext    bool  `json:"has_next"`
}

// NewPage computes page metadata for total matching rows.
func NewPage(page, pageSize int, total int64) Page {
	pages := 0
	if pageSize > 0 {
		pages = int((total + int64(pageSize) - 1) / int64(pageSize))
	}
	return Page{
		Page:       page,
		PageSize:   pageSize,
		Total:      total,
		TotalPages: pages,
		HasNext:    page < pages,
	}
}
