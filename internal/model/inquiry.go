package model

import "time"

// InquiryStatus is the lifecycle state of a tenant inquiry.
type InquiryStatus string

const (
    InquiryPending   InquiryStatus = "PENDING"
    InquiryResponded InquiryStatus = "RESPONDED"
    InquiryClosed    InquiryStatus = "CLOSED"
)

// Inquiry records a question a tenant sent about a property.  The
// property owner answers it once; either side may then close it.
type Inquiry struct {
    ID            uint64        `json:"id"`
    PropertyID    uint64        `json:"property_id"`
    PropertyTitle string        `json:"property_title,omitempty"`
    TenantID      uint64        `json:"tenant_id"`
    TenantName    string        `json:"tenant_name,omitempty"`
    Message       string        `json:"message"`
    Phone         *string       `json:"phone,omitempty"`
    Status        InquiryStatus `json:"status"`
    Response      *string       `json:"response,omitempty"`
    RespondedAt   *time.Time    `json:"responded_at,omitempty"`
    CreatedAt     time.Time     `json:"created_at"`
    UpdatedAt     time.Time     `json:"updated_at"`
}
