package repository

import (
    "context"
    "database/sql"
    "errors"
    "time"

    "github.com/nyumbalink/nyumbalink/internal/model"
)

const bookingSelect = `SELECT b.id, b.property_id, p.title, b.tenant_id, u.full_name,
    b.move_in_date, b.duration_months, b.message, b.status, b.created_at, b.updated_at
    FROM booking_requests b
    JOIN properties p ON p.id = b.property_id
    JOIN profiles u   ON u.id = b.tenant_id`

// BookingRepo manages rental requests and the listing status changes they
// cause.
type BookingRepo struct{ db *sql.DB }

func NewBookingRepo(db *sql.DB) *BookingRepo { return &BookingRepo{db: db} }

// querier is satisfied by *sql.DB and *sql.Tx.
type querier interface {
    QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
    QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
    ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func scanBooking(s scanner) (model.BookingRequest, error) {
    var (
        b   model.BookingRequest
        msg sql.NullString
    )
    err := s.Scan(&b.ID, &b.PropertyID, &b.PropertyTitle, &b.TenantID, &b.TenantName,
        &b.MoveInDate, &b.DurationMonths, &msg, &b.Status, &b.CreatedAt, &b.UpdatedAt)
    if msg.Valid {
        b.Message = &msg.String
    }
    return b, err
}

func getBooking(ctx context.Context, q querier, id uint64) (model.BookingRequest, error) {
    b, err := scanBooking(q.QueryRowContext(ctx, bookingSelect+" WHERE b.id = ?", id))
    if errors.Is(err, sql.ErrNoRows) {
        return b, ErrBookingNotFound
    }
    return b, err
}

// lockBooking locks the booking row and returns its status, the tenant
// and the listing owner.
func lockBooking(ctx context.Context, tx *sql.Tx, id uint64) (status model.BookingStatus, tenantID, ownerID, propertyID uint64, moveIn time.Time, err error) {
    err = tx.QueryRowContext(ctx, `SELECT b.status, b.tenant_id, p.owner_id, b.property_id, b.move_in_date
        FROM booking_requests b JOIN properties p ON p.id = b.property_id
        WHERE b.id = ? FOR UPDATE`, id).Scan(&status, &tenantID, &ownerID, &propertyID, &moveIn)
    if errors.Is(err, sql.ErrNoRows) {
        err = ErrBookingNotFound
    }
    return
}

// Get returns one booking with joined names.
func (r *BookingRepo) Get(ctx context.Context, id uint64) (model.BookingRequest, error) {
    return getBooking(ctx, r.db, id)
}

// Create files a PENDING request.  The listing must be AVAILABLE and the
// tenant must not already have a pending request for it.
func (r *BookingRepo) Create(ctx context.Context, b *model.BookingRequest) error {
    tx, err := r.db.BeginTx(ctx, nil)
    if err != nil {
        return err
    }
    committed := false
    defer func() {
        if !committed {
            _ = tx.Rollback()
        }
    }()

    var status model.PropertyStatus
    if err := tx.QueryRowContext(ctx,
        "SELECT status FROM properties WHERE id = ? FOR UPDATE", b.PropertyID).Scan(&status); err != nil {
        if errors.Is(err, sql.ErrNoRows) {
            return ErrPropertyNotFound
        }
        return err
    }
    if status != model.StatusAvailable {
        return ErrPropertyUnavailable
    }
    var pending int
    if err := tx.QueryRowContext(ctx,
        "SELECT COUNT(*) FROM booking_requests WHERE property_id = ? AND tenant_id = ? AND status = ?",
        b.PropertyID, b.TenantID, model.BookingPending).Scan(&pending); err != nil {
        return err
    }
    if pending > 0 {
        return ErrBookingExists
    }
    res, err := tx.ExecContext(ctx,
        "INSERT INTO booking_requests (property_id, tenant_id, move_in_date, duration_months, message) VALUES (?,?,?,?,?)",
        b.PropertyID, b.TenantID, b.MoveInDate.Format("2006-01-02"), b.DurationMonths, b.Message)
    if err != nil {
        return err
    }
    id, err := res.LastInsertId()
    if err != nil {
        return err
    }
    created, err := getBooking(ctx, tx, uint64(id))
    if err != nil {
        return err
    }
    if err := tx.Commit(); err != nil {
        return err
    }
    committed = true
    *b = created
    return nil
}

func (r *BookingRepo) list(ctx context.Context, where string, arg uint64, status model.BookingStatus, page, pageSize int) ([]model.BookingRequest, int64, error) {
    args := []any{arg}
    if status != "" {
        where += " AND b.status = ?"
        args = append(args, status)
    }
    var total int64
    if err := r.db.QueryRowContext(ctx,
        "SELECT COUNT(*) FROM booking_requests b JOIN properties p ON p.id = b.property_id WHERE "+where,
        args...).Scan(&total); err != nil {
        return nil, 0, err
    }
    limit, offset := limitOffset(page, pageSize)
    rows, err := r.db.QueryContext(ctx,
        bookingSelect+" WHERE "+where+" ORDER BY b.created_at DESC, b.id DESC LIMIT ? OFFSET ?",
        append(args, limit, offset)...)
    if err != nil {
        return nil, 0, err
    }
    defer rows.Close()
    out := []model.BookingRequest{}
    for rows.Next() {
        b, err := scanBooking(rows)
        if err != nil {
            return nil, 0, err
        }
        out = append(out, b)
    }
    return out, total, rows.Err()
}

// ListByTenant returns a tenant's requests, optionally filtered by status.
func (r *BookingRepo) ListByTenant(ctx context.Context, tenantID uint64, status model.BookingStatus, page, pageSize int) ([]model.BookingRequest, int64, error) {
    return r.list(ctx, "b.tenant_id = ?", tenantID, status, page, pageSize)
}

// ListByOwner returns requests for any of the owner's listings.
func (r *BookingRepo) ListByOwner(ctx context.Context, ownerID uint64, status model.BookingStatus, page, pageSize int) ([]model.BookingRequest, int64, error) {
    return r.list(ctx, "p.owner_id = ?", ownerID, status, page, pageSize)
}

// Approve accepts a pending request.  In the same transaction the listing
// becomes OCCUPIED and every other pending request for it is rejected;
// those are returned so their tenants can be told.
func (r *BookingRepo) Approve(ctx context.Context, id, ownerID uint64) (approved model.BookingRequest, rejected []model.BookingRequest, err error) {
    tx, err := r.db.BeginTx(ctx, nil)
    if err != nil {
        return approved, nil, err
    }
    committed := false
    defer func() {
        if !committed {
            _ = tx.Rollback()
        }
    }()

    status, _, dbOwner, propertyID, _, err := lockBooking(ctx, tx, id)
    if err != nil {
        return approved, nil, err
    }
    if dbOwner != ownerID {
        return approved, nil, ErrForbidden
    }
    if !status.CanTransition(model.BookingApproved) {
        return approved, nil, ErrInvalidTransition
    }
    var propStatus model.PropertyStatus
    if err = tx.QueryRowContext(ctx,
        "SELECT status FROM properties WHERE id = ? FOR UPDATE", propertyID).Scan(&propStatus); err != nil {
        return approved, nil, err
    }
    if propStatus != model.StatusAvailable {
        return approved, nil, ErrPropertyUnavailable
    }

    if _, err = tx.ExecContext(ctx,
        "UPDATE booking_requests SET status = ? WHERE id = ?", model.BookingApproved, id); err != nil {
        return approved, nil, err
    }
    if _, err = tx.ExecContext(ctx,
        "UPDATE properties SET status = ? WHERE id = ?", model.StatusOccupied, propertyID); err != nil {
        return approved, nil, err
    }

    rows, err := tx.QueryContext(ctx,
        "SELECT id FROM booking_requests WHERE property_id = ? AND status = ? AND id <> ? FOR UPDATE",
        propertyID, model.BookingPending, id)
    if err != nil {
        return approved, nil, err
    }
    var others []uint64
    for rows.Next() {
        var oid uint64
        if err = rows.Scan(&oid); err != nil {
            rows.Close()
            return approved, nil, err
        }
        others = append(others, oid)
    }
    rows.Close()
    if err = rows.Err(); err != nil {
        return approved, nil, err
    }
    for _, oid := range others {
        if _, err = tx.ExecContext(ctx,
            "UPDATE booking_requests SET status = ? WHERE id = ?", model.BookingRejected, oid); err != nil {
            return approved, nil, err
        }
        b, err := getBooking(ctx, tx, oid)
        if err != nil {
            return approved, nil, err
        }
        rejected = append(rejected, b)
    }

    if approved, err = getBooking(ctx, tx, id); err != nil {
        return approved, nil, err
    }
    if err = tx.Commit(); err != nil {
        return approved, nil, err
    }
    committed = true
    return approved, rejected, nil
}

// Reject declines a pending request.
func (r *BookingRepo) Reject(ctx context.Context, id, ownerID uint64) (model.BookingRequest, error) {
    tx, err := r.db.BeginTx(ctx, nil)
    if err != nil {
        return model.BookingRequest{}, err
    }
    committed := false
    defer func() {
        if !committed {
            _ = tx.Rollback()
        }
    }()

    status, _, dbOwner, _, _, err := lockBooking(ctx, tx, id)
    if err != nil {
        return model.BookingRequest{}, err
    }
    if dbOwner != ownerID {
        return model.BookingRequest{}, ErrForbidden
    }
    if !status.CanTransition(model.BookingRejected) {
        return model.BookingRequest{}, ErrInvalidTransition
    }
    if _, err := tx.ExecContext(ctx,
        "UPDATE booking_requests SET status = ? WHERE id = ?", model.BookingRejected, id); err != nil {
        return model.BookingRequest{}, err
    }
    b, err := getBooking(ctx, tx, id)
    if err != nil {
        return b, err
    }
    if err := tx.Commit(); err != nil {
        return b, err
    }
    committed = true
    return b, nil
}

// Cancel withdraws a tenant's request.  An approved booking can only be
// cancelled before the move-in date, and cancelling it puts the listing
// back on the market.
func (r *BookingRepo) Cancel(ctx context.Context, id, tenantID uint64, now time.Time) (model.BookingRequest, error) {
    tx, err := r.db.BeginTx(ctx, nil)
    if err != nil {
        return model.BookingRequest{}, err
    }
    committed := false
    defer func() {
        if !committed {
            _ = tx.Rollback()
        }
    }()

    status, dbTenant, _, propertyID, moveIn, err := lockBooking(ctx, tx, id)
    if err != nil {
        return model.BookingRequest{}, err
    }
    if dbTenant != tenantID {
        return model.BookingRequest{}, ErrForbidden
    }
    if !status.CanTransition(model.BookingCancelled) {
        return model.BookingRequest{}, ErrInvalidTransition
    }
    if status == model.BookingApproved {
        if !now.Before(moveIn) {
            return model.BookingRequest{}, ErrInvalidTransition
        }
        if _, err := tx.ExecContext(ctx,
            "UPDATE properties SET status = ? WHERE id = ? AND status = ?",
            model.StatusAvailable, propertyID, model.StatusOccupied); err != nil {
            return model.BookingRequest{}, err
        }
    }
    if _, err := tx.ExecContext(ctx,
        "UPDATE booking_requests SET status = ? WHERE id = ?", model.BookingCancelled, id); err != nil {
        return model.BookingRequest{}, err
    }
    b, err := getBooking(ctx, tx, id)
    if err != nil {
        return b, err
    }
    if err := tx.Commit(); err != nil {
        return b, err
    }
    committed = true
    return b, nil
}

// OwnerOf returns the owner of the listing a booking is for.
func (r *BookingRepo) OwnerOf(ctx context.Context, id uint64) (uint64, error) {
    var owner uint64
    err := r.db.QueryRowContext(ctx,
        "SELECT p.owner_id FROM booking_requests b JOIN properties p ON p.id = b.property_id WHERE b.id = ?",
        id).Scan(&owner)
    if errors.Is(err, sql.ErrNoRows) {
        return 0, ErrBookingNotFound
    }
    return owner, err
}
