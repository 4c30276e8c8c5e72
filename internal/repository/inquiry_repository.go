package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/nyumbalink/nyumbalink/internal/model"
)

// inquirySelect joins the listing title and tenant name used by both
// dashboards.
const inquirySelect = `SELECT i.id, i.property_id, p.title, i.tenant_id, u.full_name,
	i.message, i.phone, i.status, i.response, i.responded_at, i.created_at, i.updated_at
	FROM property_inquiries i
	JOIN properties p ON p.id = i.property_id
	JOIN profiles u   ON u.id = i.tenant_id`

// InquiryRepo manages tenant questions about listings.
type InquiryRepo struct{ db *sql.DB }

func NewInquiryRepo(db *sql.DB) *InquiryRepo { return &InquiryRepo{db: db} }

func scanInquiry(s scanner) (model.Inquiry, error) {
	var (
		in          model.Inquiry
		phone, resp sql.NullString
		respondedAt sql.NullTime
	)
	err := s.Scan(&in.ID, &in.PropertyID, &in.PropertyTitle, &in.TenantID, &in.TenantName,
		&in.Message, &phone, &in.Status, &resp, &respondedAt, &in.CreatedAt, &in.UpdatedAt)
	if phone.Valid {
		in.Phone = &phone.String
	}
	if resp.Valid {
		in.Response = &resp.String
	}
	if respondedAt.Valid {
		in.RespondedAt = &respondedAt.Time
	}
	return in, err
}

// Create stores a new PENDING inquiry and reloads it with joined names.
func (r *InquiryRepo) Create(ctx context.Context, in *model.Inquiry) error {
	res, err := r.db.ExecContext(ctx,
		"INSERT INTO property_inquiries (property_id, tenant_id, message, phone) VALUES (?,?,?,?)",
		in.PropertyID, in.TenantID, in.Message, in.Phone)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	created, err := r.get(ctx, uint64(id))
	if err != nil {
		return err
	}
	*in = created
	return nil
}

func (r *InquiryRepo) get(ctx context.Context, id uint64) (model.Inquiry, error) {
	in, err := scanInquiry(r.db.QueryRowContext(ctx, inquirySelect+" WHERE i.id = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return in, ErrInquiryNotFound
	}
	return in, err
}

func (r *InquiryRepo) list(ctx context.Context, where string, arg uint64, status model.InquiryStatus, page, pageSize int) ([]model.Inquiry, int64, error) {
	args := []any{arg}
	if status != "" {
		where += " AND i.status = ?"
		args = append(args, status)
	}
	var total int64
	if err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM property_inquiries i JOIN properties p ON p.id = i.property_id WHERE "+where,
		args...).Scan(&total); err != nil {
		return nil, 0, err
	}
	limit, offset := limitOffset(page, pageSize)
	rows, err := r.db.QueryContext(ctx,
		inquirySelect+" WHERE "+where+" ORDER BY i.created_at DESC, i.id DESC LIMIT ? OFFSET ?",
		append(args, limit, offset)...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	out := []model.Inquiry{}
	for rows.Next() {
		in, err := scanInquiry(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, in)
	}
	return out, total, rows.Err()
}

// ListByTenant returns the inquiries a tenant sent.
func (r *InquiryRepo) ListByTenant(ctx context.Context, tenantID uint64, status model.InquiryStatus, page, pageSize int) ([]model.Inquiry, int64, error) {
	return r.list(ctx, "i.tenant_id = ?", tenantID, status, page, pageSize)
}

// ListByOwner returns inquiries about any listing owned by ownerID.
func (r *InquiryRepo) ListByOwner(ctx context.Context, ownerID uint64, status model.InquiryStatus, page, pageSize int) ([]model.Inquiry, int64, error) {
	return r.list(ctx, "p.owner_id = ?", ownerID, status, page, pageSize)
}

// GetForOwner loads an inquiry and checks that ownerID owns the listing.
func (r *InquiryRepo) GetForOwner(ctx context.Context, id, ownerID uint64) (model.Inquiry, error) {
	var dbOwner uint64
	err := r.db.QueryRowContext(ctx,
		"SELECT p.owner_id FROM property_inquiries i JOIN properties p ON p.id = i.property_id WHERE i.id = ?",
		id).Scan(&dbOwner)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Inquiry{}, ErrInquiryNotFound
	}
	if err != nil {
		return model.Inquiry{}, err
	}
	if dbOwner != ownerID {
		return model.Inquiry{}, ErrForbidden
	}
	return r.get(ctx, id)
}

// Respond stores the landlord's answer.  Closed inquiries cannot be
// answered; answering twice replaces the earlier response.
func (r *InquiryRepo) Respond(ctx context.Context, id, ownerID uint64, response string) (model.Inquiry, error) {
	in, err := r.GetForOwner(ctx, id, ownerID)
	if err != nil {
		return in, err
	}
	if in.Status == model.InquiryClosed {
		return in, ErrInvalidTransition
	}
	if _, err := r.db.ExecContext(ctx,
		"UPDATE property_inquiries SET response=?, status=?, responded_at=UTC_TIMESTAMP() WHERE id=? AND status<>?",
		response, model.InquiryResponded, id, model.InquiryClosed); err != nil {
		return in, err
	}
	return r.get(ctx, id)
}

// Close marks an inquiry as closed.  Closing twice is an error.
func (r *InquiryRepo) Close(ctx context.Context, id, ownerID uint64) (model.Inquiry, error) {
	in, err := r.GetForOwner(ctx, id, ownerID)
	if err != nil {
		return in, err
	}
	if in.Status == model.InquiryClosed {
		return in, ErrInvalidTransition
	}
	if _, err := r.db.ExecContext(ctx,
		"UPDATE property_inquiries SET status=? WHERE id=?", model.InquiryClosed, id); err != nil {
		return in, err
	}
	return r.get(ctx, id)
}
