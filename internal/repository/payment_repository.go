package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/nyumbalink/nyumbalink/internal/model"
)

const paymentSelect = `SELECT pm.id, pm.booking_id, pm.property_id, p.title, pm.tenant_id,
	pm.amount_tzs, pm.method, pm.reference, pm.status, pm.created_at, pm.updated_at
	FROM payments pm
	JOIN properties p ON p.id = pm.property_id`

// PaymentRepo records rent payments against approved bookings.
type PaymentRepo struct{ db *sql.DB }

func NewPaymentRepo(db *sql.DB) *PaymentRepo { return &PaymentRepo{db: db} }

func scanPayment(s scanner) (model.Payment, error) {
	var pm model.Payment
	err := s.Scan(&pm.ID, &pm.BookingID, &pm.PropertyID, &pm.PropertyTitle, &pm.TenantID,
		&pm.AmountTZS, &pm.Method, &pm.Reference, &pm.Status, &pm.CreatedAt, &pm.UpdatedAt)
	return pm, err
}

func getPayment(ctx context.Context, q querier, id uint64) (model.Payment, error) {
	pm, err := scanPayment(q.QueryRowContext(ctx, paymentSelect+" WHERE pm.id = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return pm, ErrPaymentNotFound
	}
	return pm, err
}

// Create records a PENDING payment.  The booking must belong to the
// tenant and be APPROVED; the same method and reference cannot be
// recorded twice.
func (r *PaymentRepo) Create(ctx context.Context, pm *model.Payment) error {
	var (
		tenantID, propertyID uint64
		status               model.BookingStatus
	)
	err := r.db.QueryRowContext(ctx,
		"SELECT tenant_id, property_id, status FROM booking_requests WHERE id = ?",
		pm.BookingID).Scan(&tenantID, &propertyID, &status)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrBookingNotFound
	}
	if err != nil {
		return err
	}
	if tenantID != pm.TenantID {
		return ErrForbidden
	}
	if status != model.BookingApproved {
		return ErrBookingNotApproved
	}
	pm.Reference = strings.ToUpper(strings.TrimSpace(pm.Reference))
	res, err := r.db.ExecContext(ctx,
		"INSERT INTO payments (booking_id, property_id, tenant_id, amount_tzs, method, reference) VALUES (?,?,?,?,?,?)",
		pm.BookingID, propertyID, pm.TenantID, pm.AmountTZS, pm.Method, pm.Reference)
	if err != nil {
		if isDuplicate(err) {
			return ErrConflict
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	created, err := getPayment(ctx, r.db, uint64(id))
	if err != nil {
		return err
	}
	*pm = created
	return nil
}

func (r *PaymentRepo) list(ctx context.Context, where string, arg uint64, status model.PaymentStatus, page, pageSize int) ([]model.Payment, int64, error) {
	args := []any{arg}
	if status != "" {
		where += " AND pm.status = ?"
		args = append(args, status)
	}
	var total int64
	if err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM payments pm JOIN properties p ON p.id = pm.property_id WHERE "+where,
		args...).Scan(&total); err != nil {
		return nil, 0, err
	}
	limit, offset := limitOffset(page, pageSize)
	rows, err := r.db.QueryContext(ctx,
		paymentSelect+" WHERE "+where+" ORDER BY pm.created_at DESC, pm.id DESC LIMIT ? OFFSET ?",
		append(args, limit, offset)...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	out := []model.Payment{}
	for rows.Next() {
		pm, err := scanPayment(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, pm)
	}
	return out, total, rows.Err()
}

// ListByTenant returns payments a tenant recorded.
func (r *PaymentRepo) ListByTenant(ctx context.Context, tenantID uint64, status model.PaymentStatus, page, pageSize int) ([]model.Payment, int64, error) {
	return r.list(ctx, "pm.tenant_id = ?", tenantID, status, page, pageSize)
}

// ListByOwner returns payments for the owner's listings.
func (r *PaymentRepo) ListByOwner(ctx context.Context, ownerID uint64, status model.PaymentStatus, page, pageSize int) ([]model.Payment, int64, error) {
	return r.list(ctx, "p.owner_id = ?", ownerID, status, page, pageSize)
}

// Confirm marks a pending payment as received.
func (r *PaymentRepo) Confirm(ctx context.Context, id, ownerID uint64) (model.Payment, error) {
	return r.settle(ctx, id, ownerID, model.PaymentConfirmed)
}

// Reject marks a pending payment as not received.
func (r *PaymentRepo) Reject(ctx context.Context, id, ownerID uint64) (model.Payment, error) {
	return r.settle(ctx, id, ownerID, model.PaymentRejected)
}

func (r *PaymentRepo) settle(ctx context.Context, id, ownerID uint64, to model.PaymentStatus) (model.Payment, error) {
	var (
		dbOwner uint64
		status  model.PaymentStatus
	)
	err := r.db.QueryRowContext(ctx,
		"SELECT p.owner_id, pm.status FROM payments pm JOIN properties p ON p.id = pm.property_id WHERE pm.id = ?",
		id).Scan(&dbOwner, &status)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Payment{}, ErrPaymentNotFound
	}
	if err != nil {
		return model.Payment{}, err
	}
	if dbOwner != ownerID {
		return model.Payment{}, ErrForbidden
	}
	if status != model.PaymentPending {
		return model.Payment{}, ErrInvalidTransition
	}
	res, err := r.db.ExecContext(ctx,
		"UPDATE payments SET status = ? WHERE id = ? AND status = ?", to, id, model.PaymentPending)
	if err != nil {
		return model.Payment{}, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		// settled by a concurrent request
		return model.Payment{}, ErrInvalidTransition
	}
	return getPayment(ctx, r.db, id)
}

// SumConfirmed totals confirmed payments received by ownerID, or by the
// whole platform when ownerID is zero.
func (r *PaymentRepo) SumConfirmed(ctx context.Context, ownerID uint64) (uint64, error) {
	q := "SELECT COALESCE(SUM(pm.amount_tzs), 0) FROM payments pm JOIN properties p ON p.id = pm.property_id WHERE pm.status = ?"
	args := []any{model.PaymentConfirmed}
	if ownerID != 0 {
		q += " AND p.owner_id = ?"
		args = append(args, ownerID)
	}
	var sum uint64
	err := r.db.QueryRowContext(ctx, q, args...).Scan(&sum)
	return sum, err
}
