package model

import "time"

// Notification is an in-app message shown to a single user.  Title and
// Message are rendered in the recipient's language when the row is
// written.
type Notification struct {
    ID        uint64    `json:"id"`
    UserID    uint64    `json:"user_id"`
    Type      string    `json:"type"`
    Title     string    `json:"title"`
    Message   string    `json:"message"`
    RelatedID *uint64   `json:"related_id,omitempty"`
    IsRead    bool      `json:"is_read"`
    CreatedAt time.Time `json:"created_at"`
}
