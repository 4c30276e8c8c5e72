// Package repository defines error types that are reused across multiple
// repositories.  These sentinel values allow handlers to tell "missing"
// from "someone else's" from "not allowed in this state" without looking
// at SQL errors.
package repository

import (
	"errors"

	"github.com/go-sql-driver/mysql"

	"github.com/nyumbalink/nyumbalink/internal/search"
)

// ErrForbidden is returned when the caller attempts an operation on a
// resource they do not own.  Handlers translate it into HTTP 403.
var ErrForbidden = errors.New("forbidden")

// ErrConflict is returned when a write collides with an existing row, such
// as a payment reference that was already recorded.  Handlers translate it
// into HTTP 409.
var ErrConflict = errors.New("conflict")

// ErrInvalidTransition is returned when a status change is not allowed from
// the record's current status.
var ErrInvalidTransition = errors.New("invalid status transition")

var (
	ErrUserNotFound         = errors.New("user not found")
	ErrPropertyNotFound     = errors.New("property not found")
	ErrImageNotFound        = errors.New("image not found")
	ErrInquiryNotFound      = errors.New("inquiry not found")
	ErrBookingNotFound      = errors.New("booking not found")
	ErrPaymentNotFound      = errors.New("payment not found")
	ErrNotificationNotFound = errors.New("notification not found")
	ErrTokenInvalid         = errors.New("refresh token invalid or expired")
)

var (
	ErrImageLimit          = errors.New("image limit reached")
	ErrBookingExists       = errors.New("pending booking already exists")
	ErrBookingNotApproved  = errors.New("booking is not approved")
	ErrPropertyUnavailable = errors.New("property is not available")
)

// isDuplicate reports a MySQL unique key violation (error 1062).
func isDuplicate(err error) bool {
	var me *mysql.MySQLError
	return errors.As(err, &me) && me.Number == 1062
}

// limitOffset clamps paging input the same way public search does.
func limitOffset(page, pageSize int) (limit, offset int) {
	p, s := search.ClampInt(page, pageSize)
	return s, (p - 1) * s
}

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}
