package repository

import (
	"context"
	"database/sql"

	"github.com/nyumbalink/nyumbalink/internal/model"
)

// AdminStats is the platform overview on the super admin dashboard.
type AdminStats struct {
	UsersByRole         map[model.Role]int64           `json:"users_by_role"`
	PropertiesByStatus  map[model.PropertyStatus]int64 `json:"properties_by_status"`
	FeaturedProperties  int64                          `json:"featured_properties"`
	BookingsByStatus    map[model.BookingStatus]int64  `json:"bookings_by_status"`
	PendingInquiries    int64                          `json:"pending_inquiries"`
	PendingPayments     int64                          `json:"pending_payments"`
	ConfirmedRevenueTZS uint64                         `json:"confirmed_revenue_tzs"`
	NewUsersLast7Days   int64                          `json:"new_users_last_7_days"`
}

// LandlordStats summarises one property admin's portfolio.
type LandlordStats struct {
	PropertiesByStatus  map[model.PropertyStatus]int64 `json:"properties_by_status"`
	TotalViews          uint64                         `json:"total_views"`
	PendingInquiries    int64                          `json:"pending_inquiries"`
	PendingBookings     int64                          `json:"pending_bookings"`
	PendingPayments     int64                          `json:"pending_payments"`
	ConfirmedRevenueTZS uint64                         `json:"confirmed_revenue_tzs"`
}

// TenantStats summarises one tenant's activity.
type TenantStats struct {
	OpenInquiries    int64  `json:"open_inquiries"`
	PendingBookings  int64  `json:"pending_bookings"`
	ApprovedBookings int64  `json:"approved_bookings"`
	PendingPayments  int64  `json:"pending_payments"`
	PaidTZS          uint64 `json:"paid_tzs"`
}

// StatsRepo computes dashboard aggregates.
type StatsRepo struct {
	db         *sql.DB
	users      *UserRepo
	properties *PropertyRepo
	payments   *PaymentRepo
}

func NewStatsRepo(db *sql.DB) *StatsRepo {
	return &StatsRepo{
		db:         db,
		users:      NewUserRepo(db),
		properties: NewPropertyRepo(db),
		payments:   NewPaymentRepo(db),
	}
}

func (r *StatsRepo) count(ctx context.Context, q string, args ...any) (int64, error) {
	var n int64
	err := r.db.QueryRowContext(ctx, q, args...).Scan(&n)
	return n, err
}

// Admin returns the platform wide figures.
func (r *StatsRepo) Admin(ctx context.Context) (AdminStats, error) {
	var (
		s   AdminStats
		err error
	)
	if s.UsersByRole, err = r.users.CountByRole(ctx); err != nil {
		return s, err
	}
	if s.PropertiesByStatus, err = r.properties.CountByStatus(ctx, 0); err != nil {
		return s, err
	}
	if s.FeaturedProperties, err = r.count(ctx, "SELECT COUNT(*) FROM properties WHERE is_featured = TRUE"); err != nil {
		return s, err
	}
	s.BookingsByStatus = map[model.BookingStatus]int64{
		model.BookingPending: 0, model.BookingApproved: 0, model.BookingRejected: 0, model.BookingCancelled: 0,
	}
	rows, err := r.db.QueryContext(ctx, "SELECT status, COUNT(*) FROM booking_requests GROUP BY status")
	if err != nil {
		return s, err
	}
	defer rows.Close()
	for rows.Next() {
		var (
			st model.BookingStatus
			n  int64
		)
		if err := rows.Scan(&st, &n); err != nil {
			return s, err
		}
		s.BookingsByStatus[st] = n
	}
	if err := rows.Err(); err != nil {
		return s, err
	}
	if s.PendingInquiries, err = r.count(ctx,
		"SELECT COUNT(*) FROM property_inquiries WHERE status = ?", model.InquiryPending); err != nil {
		return s, err
	}
	if s.PendingPayments, err = r.count(ctx,
		"SELECT COUNT(*) FROM payments WHERE status = ?", model.PaymentPending); err != nil {
		return s, err
	}
	if s.ConfirmedRevenueTZS, err = r.payments.SumConfirmed(ctx, 0); err != nil {
		return s, err
	}
	s.NewUsersLast7Days, err = r.count(ctx,
		"SELECT COUNT(*) FROM profiles WHERE created_at >= UTC_TIMESTAMP() - INTERVAL 7 DAY")
	return s, err
}

// Landlord returns the figures for one owner.
func (r *StatsRepo) Landlord(ctx context.Context, ownerID uint64) (LandlordStats, error) {
	var (
		s   LandlordStats
		err error
	)
	if s.PropertiesByStatus, err = r.properties.CountByStatus(ctx, ownerID); err != nil {
		return s, err
	}
	if err = r.db.QueryRowContext(ctx,
		"SELECT COALESCE(SUM(views), 0) FROM properties WHERE owner_id = ?", ownerID).Scan(&s.TotalViews); err != nil {
		return s, err
	}
	if s.PendingInquiries, err = r.count(ctx,
		"SELECT COUNT(*) FROM property_inquiries i JOIN properties p ON p.id = i.property_id WHERE p.owner_id = ? AND i.status = ?",
		ownerID, model.InquiryPending); err != nil {
		return s, err
	}
	if s.PendingBookings, err = r.count(ctx,
		"SELECT COUNT(*) FROM booking_requests b JOIN properties p ON p.id = b.property_id WHERE p.owner_id = ? AND b.status = ?",
		ownerID, model.BookingPending); err != nil {
		return s, err
	}
	if s.PendingPayments, err = r.count(ctx,
		"SELECT COUNT(*) FROM payments pm JOIN properties p ON p.id = pm.property_id WHERE p.owner_id = ? AND pm.status = ?",
		ownerID, model.PaymentPending); err != nil {
		return s, err
	}
	s.ConfirmedRevenueTZS, err = r.payments.SumConfirmed(ctx, ownerID)
	return s, err
}

// Tenant returns the figures for one tenant.
func (r *StatsRepo) Tenant(ctx context.Context, tenantID uint64) (TenantStats, error) {
	var (
		s   TenantStats
		err error
	)
	if s.OpenInquiries, err = r.count(ctx,
		"SELECT COUNT(*) FROM property_inquiries WHERE tenant_id = ? AND status <> ?",
		tenantID, model.InquiryClosed); err != nil {
		return s, err
	}
	if s.PendingBookings, err = r.count(ctx,
		"SELECT COUNT(*) FROM booking_requests WHERE tenant_id = ? AND status = ?",
		tenantID, model.BookingPending); err != nil {
		return s, err
	}
	if s.ApprovedBookings, err = r.count(ctx,
		"SELECT COUNT(*) FROM booking_requests WHERE tenant_id = ? AND status = ?",
		tenantID, model.BookingApproved); err != nil {
		return s, err
	}
	if s.PendingPayments, err = r.count(ctx,
		"SELECT COUNT(*) FROM payments WHERE tenant_id = ? AND status = ?",
		tenantID, model.PaymentPending); err != nil {
		return s, err
	}
	err = r.db.QueryRowContext(ctx,
		"SELECT COALESCE(SUM(amount_tzs), 0) FROM payments WHERE tenant_id = ? AND status = ?",
		tenantID, model.PaymentConfirmed).Scan(&s.PaidTZS)
	return s, err
}
