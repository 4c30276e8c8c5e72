package model

import (
    "database/sql/driver"
    "encoding/json"
    "errors"
    "strings"
    "time"
)

// PropertyType classifies a listing.
type PropertyType string

const (
    TypeApartment  PropertyType = "APARTMENT"
    TypeHouse      PropertyType = "HOUSE"
    TypeRoom       PropertyType = "ROOM"
    TypeStudio     PropertyType = "STUDIO"
    TypeVilla      PropertyType = "VILLA"
    TypeCommercial PropertyType = "COMMERCIAL"
)

// PropertyTypes lists the accepted property types.
var PropertyTypes = []PropertyType{TypeApartment, TypeHouse, TypeRoom, TypeStudio, TypeVilla, TypeCommercial}

// ParsePropertyType normalises s and reports whether it is a known type.
func ParsePropertyType(s string) (PropertyType, bool) {
    t := PropertyType(strings.ToUpper(strings.TrimSpace(s)))
    for _, v := range PropertyTypes {
        if v == t {
            return t, true
        }
    }
    return "", false
}

// PropertyStatus tracks whether a listing can be rented.
type PropertyStatus string

const (
    StatusAvailable   PropertyStatus = "AVAILABLE"
    StatusOccupied    PropertyStatus = "OCCUPIED"
    StatusMaintenance PropertyStatus = "MAINTENANCE"
)

// ParsePropertyStatus normalises s and reports whether it is a known status.
func ParsePropertyStatus(s string) (PropertyStatus, bool) {
    st := PropertyStatus(strings.ToUpper(strings.TrimSpace(s)))
    switch st {
    case StatusAvailable, StatusOccupied, StatusMaintenance:
        return st, true
    }
    return "", false
}

// Regions are the Tanzanian administrative regions offered as location
// filters.  Listings may still carry free-form district/address text.
var Regions = []string{
    "Arusha", "Dar es Salaam", "Dodoma", "Geita", "Iringa", "Kagera", "Katavi",
    "Kigoma", "Kilimanjaro", "Lindi", "Manyara", "Mara", "Mbeya", "Morogoro",
    "Mtwara", "Mwanza", "Njombe", "Pemba North", "Pemba South", "Pwani", "Rukwa",
    "Ruvuma", "Shinyanga", "Simiyu", "Singida", "Songwe", "Tabora", "Tanga",
    "Unguja North", "Unguja South", "Zanzibar Urban/West",
}

// CanonicalRegion returns the Regions entry matching s case-insensitively.
func CanonicalRegion(s string) (string, bool) {
    s = strings.TrimSpace(s)
    for _, r := range Regions {
        if strings.EqualFold(r, s) {
            return r, true
        }
    }
    return "", false
}

// Amenities is a list of amenity tags stored in a JSON column.
type Amenities []string

// Value encodes the list as a JSON array.  A nil list is stored as [].
func (a Amenities) Value() (driver.Value, error) {
    if a == nil {
        return "[]", nil
    }
    b, err := json.Marshal([]string(a))
    if err != nil {
        return nil, err
    }
    return string(b), nil
}

// Scan decodes a JSON array column.
func (a *Amenities) Scan(src any) error {
    var b []byte
    switch v := src.(type) {
    case nil:
        *a = Amenities{}
        return nil
    case []byte:
        b = v
    case string:
        b = []byte(v)
    default:
        return errors.New("amenities: unsupported column type")
    }
    var out []string
    if err := json.Unmarshal(b, &out); err != nil {
        return err
    }
    *a = out
    return nil
}

// Normalize trims, lower-cases and de-duplicates amenity tags while
// keeping their first-seen order.
func (a Amenities) Normalize() Amenities {
    out := make(Amenities, 0, len(a))
    seen := make(map[string]struct{}, len(a))
    for _, s := range a {
        s = strings.ToLower(strings.TrimSpace(s))
        if s == "" {
            continue
        }
        if _, ok := seen[s]; ok {
            continue
        }
        seen[s] = struct{}{}
        out = append(out, s)
    }
    return out
}

// Property represents a rental listing owned by a property admin.
// It corresponds to a row in the `properties` table.  PriceTZS is the
// monthly rent in Tanzanian shillings.
type Property struct {
    ID          uint64          `json:"id" db:"id"`
    OwnerID     uint64          `json:"owner_id" db:"owner_id"`
    Title       string          `json:"title" db:"title"`
    Description string          `json:"description" db:"description"`
    Type        PropertyType    `json:"property_type" db:"property_type"`
    Region      string          `json:"region" db:"region"`
    District    string          `json:"district" db:"district"`
    Address     string          `json:"address" db:"address"`
    PriceTZS    uint64          `json:"price_tzs" db:"price_tzs"`
    Bedrooms    uint32          `json:"bedrooms" db:"bedrooms"`
    Bathrooms   uint32          `json:"bathrooms" db:"bathrooms"`
    AreaSqm     *uint32         `json:"area_sqm,omitempty" db:"area_sqm"`
    Amenities   Amenities       `json:"amenities" db:"amenities"`
    Status      PropertyStatus  `json:"status" db:"status"`
    IsFeatured  bool            `json:"is_featured" db:"is_featured"`
    Views       uint64          `json:"views" db:"views"`
    CreatedAt   time.Time       `json:"created_at" db:"created_at"`
    UpdatedAt   time.Time       `json:"updated_at" db:"updated_at"`
    Images      []PropertyImage `json:"images,omitempty" db:"-"`
}
