package search

import (
	"errors"
	"math"
	"net/url"
	"strings"
	"testing"

	"github.com/nyumbalink/nyumbalink/internal/model"
)

func TestParseQueryDefaults(t *testing.T) {
	q, err := ParseQuery(url.Values{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if q.Status != model.StatusAvailable {
		t.Errorf("status = %q; want AVAILABLE", q.Status)
	}
	if q.Sort != SortNewest || q.Page != 1 || q.PageSize != DefaultPageSize {
		t.Errorf("unexpected defaults: %+v", q)
	}
}

func TestParseQueryFilters(t *testing.T) {
	v := url.Values{
		"q":         {"  Mikocheni  "},
		"region":    {"Dar es Salaam"},
		"type":      {"apartment"},
		"min_price": {"200000"},
		"max_price": {"800000"},
		"bedrooms":  {"2"},
		"amenities": {"WiFi, parking,wifi"},
		"featured":  {"true"},
		"sort":      {"PRICE_ASC"},
		"page":      {"3"},
		"page_size": {"500"},
	}
	q, err := ParseQuery(v)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if q.Text != "Mikocheni" || q.Region != "Dar es Salaam" || q.Type != model.TypeApartment {
		t.Errorf("text/region/type not parsed: %+v", q)
	}
	if q.MinPrice == nil || *q.MinPrice != 200000 || q.MaxPrice == nil || *q.MaxPrice != 800000 {
		t.Errorf("price range not parsed: %+v", q)
	}
	if q.MinBedrooms == nil || *q.MinBedrooms != 2 {
		t.Errorf("bedrooms not parsed")
	}
	if len(q.Amenities) != 2 || q.Amenities[0] != "wifi" || q.Amenities[1] != "parking" {
		t.Errorf("amenities = %v", q.Amenities)
	}
	if !q.FeaturedOnly || q.Sort != SortPriceAsc {
		t.Errorf("featured/sort not parsed: %+v", q)
	}
	if q.Page != 3 || q.PageSize != MaxPageSize {
		t.Errorf("page=%d size=%d", q.Page, q.PageSize)
	}
	if q.Offset() != 200 {
		t.Errorf("offset = %d", q.Offset())
	}
}

func TestParseQueryErrors(t *testing.T) {
	tests := []struct {
		name  string
		v     url.Values
		field string
	}{
		{"bad price", url.Values{"min_price": {"cheap"}}, "min_price"},
		{"negative price", url.Values{"max_price": {"-5"}}, "max_price"},
		{"inverted range", url.Values{"min_price": {"9"}, "max_price": {"1"}}, "min_price"},
		{"unknown type", url.Values{"type": {"castle"}}, "type"},
		{"unknown sort", url.Values{"sort": {"random"}}, "sort"},
		{"bad featured", url.Values{"featured": {"maybe"}}, "featured"},
		{"bad bedrooms", url.Values{"bedrooms": {"two"}}, "bedrooms"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseQuery(tt.v)
			var fe Errors
			if !errors.As(err, &fe) {
				t.Fatalf("expected Errors, got %v", err)
			}
			if fe[0].Field != tt.field {
				t.Errorf("field = %q; want %q", fe[0].Field, tt.field)
			}
		})
	}
}

func TestBuildUnconstrained(t *testing.T) {
	c := Build(Query{Status: StatusAny, Sort: SortNewest})
	if c.Where != "1=1" || len(c.Args) != 0 {
		t.Errorf("unexpected clause %+v", c)
	}
	if c.OrderBy != "p.created_at DESC, p.id DESC" {
		t.Errorf("order = %q", c.OrderBy)
	}
}

func TestOrderBy(t *testing.T) {
	want := map[string]string{
		SortNewest:    "p.created_at DESC, p.id DESC",
		SortOldest:    "p.created_at ASC, p.id ASC",
		SortPriceAsc:  "p.price_tzs ASC, p.id DESC",
		SortPriceDesc: "p.price_tzs DESC, p.id DESC",
		SortPopular:   "p.views DESC, p.id DESC",
		"":            "p.created_at DESC, p.id DESC",
	}
	for sort, order := range want {
		if got := orderBy(sort); got != order {
			t.Errorf("orderBy(%q) = %q; want %q", sort, got, order)
		}
	}
}

func TestBuildArgsMatchPlaceholders(t *testing.T) {
	lo, hi := uint64(1), uint64(2)
	beds := uint32(3)
	owner := uint64(7)
	q := Query{
		Text:        "50%_off",
		Region:      "Arusha",
		District:    "Njiro",
		Type:        model.TypeHouse,
		MinPrice:    &lo,
		MaxPrice:    &hi,
		MinBedrooms: &beds,
		Amenities:   []string{"wifi", "pool"},
		OwnerID:     &owner,
		Status:      model.StatusAvailable,
		Sort:        SortPriceDesc,
	}
	c := Build(q)
	if n := strings.Count(c.Where, "?"); n != len(c.Args) {
		t.Fatalf("placeholders=%d args=%d", n, len(c.Args))
	}
	if c.Args[0] != "AVAILABLE" || c.Args[1] != owner {
		t.Errorf("status/owner args out of order: %v", c.Args[:2])
	}
	if c.Args[2] != `%50\%\_off%` {
		t.Errorf("wildcards not escaped: %v", c.Args[2])
	}
	if c.Args[7] != "arusha" {
		t.Errorf("region arg = %v", c.Args[7])
	}
	if !strings.Contains(c.Where, "JSON_CONTAINS") {
		t.Errorf("amenity predicate missing: %s", c.Where)
	}
	if c.OrderBy != "p.price_tzs DESC, p.id DESC" {
		t.Errorf("order = %q", c.OrderBy)
	}
}

func TestNewPage(t *testing.T) {
	tests := []struct {
		page, size int
		total      int64
		pages      int
		next       bool
	}{
		{1, 12, 0, 0, false},
		{1, 12, 12, 1, false},
		{1, 12, 13, 2, true},
		{2, 12, 13, 2, false},
	}
	for _, tt := range tests {
		p := NewPage(tt.page, tt.size, tt.total)
		if p.TotalPages != tt.pages || p.HasNext != tt.next {
			t.Errorf("NewPage(%d,%d,%d) = %+v", tt.page, tt.size, tt.total, p)
		}
	}
}

func TestClamp(t *testing.T) {
	if p, s := Clamp("", ""); p != 1 || s != DefaultPageSize {
		t.Errorf("Clamp defaults = %d,%d", p, s)
	}
	if p, s := Clamp("-2", "0"); p != 1 || s != DefaultPageSize {
		t.Errorf("Clamp invalid = %d,%d", p, s)
	}
	if _, s := Clamp("1", "1000"); s != MaxPageSize {
		t.Errorf("Clamp max = %d", s)
	}
	q, err := ParseQuery(url.Values{"page": {"9223372036854775807"}})
	if err != nil {
		t.Fatal(err)
	}
	if q.Page != MaxPage || q.Offset() < 0 || q.Offset() > math.MaxInt32 {
		t.Errorf("huge page = %d offset %d", q.Page, q.Offset())
	}
}
