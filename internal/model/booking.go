package model

import "time"

// BookingStatus is the lifecycle state of a booking request.
type BookingStatus string

const (
    BookingPending   BookingStatus = "PENDING"
    BookingApproved  BookingStatus = "APPROVED"
    BookingRejected  BookingStatus = "REJECTED"
    BookingCancelled BookingStatus = "CANCELLED"
)

// CanTransition reports whether a booking may move from s to next.
// REJECTED and CANCELLED are terminal.
func (s BookingStatus) CanTransition(next BookingStatus) bool {
    switch s {
    case BookingPending:
        return next == BookingApproved || next == BookingRejected || next == BookingCancelled
    case BookingApproved:
        return next == BookingCancelled
    }
    return false
}

// BookingRequest is a tenant's request to rent a property from a move-in
// date for a number of months.
type BookingRequest struct {
    ID             uint64        `json:"id"`
    PropertyID     uint64        `json:"property_id"`
    PropertyTitle  string        `json:"property_title,omitempty"`
    TenantID       uint64        `json:"tenant_id"`
    TenantName     string        `json:"tenant_name,omitempty"`
    MoveInDate     time.Time     `json:"move_in_date"`
    DurationMonths uint32        `json:"duration_months"`
    Message        *string       `json:"message,omitempty"`
    Status         BookingStatus `json:"status"`
    CreatedAt      time.Time     `json:"created_at"`
    UpdatedAt      time.Time     `json:"updated_at"`
}
