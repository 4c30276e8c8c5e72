// Package queue defines the notification events exchanged over RabbitMQ and
// the consumer that delivers them.
package queue

import (
    "time"

    "github.com/google/uuid"
)

// Event types.  Each maps to a notify.<type> pair of catalog entries.
const (
    InquiryCreated   = "inquiry.created"
    InquiryResponded = "inquiry.responded"
    BookingRequested = "booking.requested"
    BookingApproved  = "booking.approved"
    BookingRejected  = "booking.rejected"
    BookingCancelled = "booking.cancelled"
    PaymentRecorded  = "payment.recorded"
    PaymentConfirmed = "payment.confirmed"
    PaymentRejected  = "payment.rejected"
)

// EventTypes lists every known event type.
var EventTypes = []string{
    InquiryCreated, InquiryResponded,
    BookingRequested, BookingApproved, BookingRejected, BookingCancelled,
    PaymentRecorded, PaymentConfirmed, PaymentRejected,
}

// Event asks for one in-app notification.  It carries the names needed to
// render the text so the consumer does not have to query them again; the
// recipient's language is resolved at delivery time.
type Event struct {
    ID            string    `json:"id"`
    Type          string    `json:"type"`
    RecipientID   uint64    `json:"recipient_id"`
    RelatedID     uint64    `json:"related_id,omitempty"`
    ActorName     string    `json:"actor_name,omitempty"`
    PropertyTitle string    `json:"property_title,omitempty"`
    Date          string    `json:"date,omitempty"` // YYYY-MM-DD
    AmountTZS     uint64    `json:"amount_tzs,omitempty"`
    OccurredAt    time.Time `json:"occurred_at"`
}

// NewEvent fills in the id and timestamp.
func NewEvent(typ string, recipientID, relatedID uint64) Event {
    return Event{
        ID:          uuid.NewString(),
        Type:        typ,
        RecipientID: recipientID,
        RelatedID:   relatedID,
        OccurredAt:  time.Now().UTC(),
    }
}
