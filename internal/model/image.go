package model

import "time"

// PropertyImage is the metadata row for one listing photo.  The bytes live
// in the image store under ObjectID; the row keeps ordering and the
// content type needed to serve them back.
type PropertyImage struct {
    ID          uint64    `json:"id"`           // property_images.id
    PropertyID  uint64    `json:"property_id"`  // property_images.property_id
    ObjectID    string    `json:"-"`            // property_images.object_id
    Filename    string    `json:"filename"`     // property_images.filename
    ContentType string    `json:"content_type"` // property_images.content_type
    SizeBytes   int64     `json:"size_bytes"`   // property_images.size_bytes
    SortOrder   uint32    `json:"sort_order"`   // property_images.sort_order
    CreatedAt   time.Time `json:"created_at"`   // property_images.created_at
}

// MaxImagesPerProperty caps the number of photos on a single listing.
const MaxImagesPerProperty = 10
