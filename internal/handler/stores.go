package handler

import (
	"context"
	"time"

	"github.com/nyumbalink/nyumbalink/internal/model"
	"github.com/nyumbalink/nyumbalink/internal/repository"
	"github.com/nyumbalink/nyumbalink/internal/search"
)

// The interfaces below list the repository methods each handler uses.
// The *Repo types in package repository satisfy them.

type UserStore interface {
	Create(ctx context.Context, u *model.User, password string, cost int) error
	GetByEmail(ctx context.Context, email string) (model.User, error)
	GetByID(ctx context.Context, id uint64) (model.User, error)
	UpdateProfile(ctx context.Context, id uint64, p repository.ProfileUpdate) (model.User, error)
	SetRole(ctx context.Context, id uint64, role model.Role) error
	SetActive(ctx context.Context, id uint64, active bool) error
	List(ctx context.Context, f repository.UserFilter) ([]model.User, int64, error)
}

type TokenStore interface {
	StoreRefresh(ctx context.Context, userID uint64, tokenHash string, exp time.Time) error
	ValidateRefresh(ctx context.Context, tokenHash string) (uint64, error)
	RevokeByHash(ctx context.Context, tokenHash string) error
	RevokeAllForUser(ctx context.Context, userID uint64) error
}

type PropertyStore interface {
	Create(ctx context.Context, p *model.Property) error
	GetByID(ctx context.Context, id uint64) (model.Property, error)
	GetByIDAndOwner(ctx context.Context, id, ownerID uint64) (model.Property, error)
	Update(ctx context.Context, p *model.Property) error
	SetStatus(ctx context.Context, id, ownerID uint64, status model.PropertyStatus) (model.Property, error)
	SetFeatured(ctx context.Context, id uint64, featured bool) (model.Property, error)
	Delete(ctx context.Context, id, ownerID uint64) ([]string, error)
	ListByOwner(ctx context.Context, ownerID uint64, page, pageSize int) ([]model.Property, int64, error)
	IncrementViews(ctx context.Context, id uint64) error
	Search(ctx context.Context, q search.Query) ([]model.Property, int64, error)
}

type ImageRecords interface {
	Add(ctx context.Context, img *model.PropertyImage) error
	ListByProperty(ctx context.Context, propertyID uint64) ([]model.PropertyImage, error)
	Covers(ctx context.Context, ids []uint64) (map[uint64]model.PropertyImage, error)
	Get(ctx context.Context, propertyID, imageID uint64) (model.PropertyImage, error)
	Delete(ctx context.Context, propertyID, imageID uint64) (model.PropertyImage, error)
}

type InquiryStore interface {
	Create(ctx context.Context, in *model.Inquiry) error
	ListByTenant(ctx context.Context, tenantID uint64, status model.InquiryStatus, page, pageSize int) ([]model.Inquiry, int64, error)
	ListByOwner(ctx context.Context, ownerID uint64, status model.InquiryStatus, page, pageSize int) ([]model.Inquiry, int64, error)
	Respond(ctx context.Context, id, ownerID uint64, response string) (model.Inquiry, error)
	Close(ctx context.Context, id, ownerID uint64) (model.Inquiry, error)
}

type BookingStore interface {
	Create(ctx context.Context, b *model.BookingRequest) error
	ListByTenant(ctx context.Context, tenantID uint64, status model.BookingStatus, page, pageSize int) ([]model.BookingRequest, int64, error)
	ListByOwner(ctx context.Context, ownerID uint64, status model.BookingStatus, page, pageSize int) ([]model.BookingRequest, int64, error)
	Approve(ctx context.Context, id, ownerID uint64) (model.BookingRequest, []model.BookingRequest, error)
	Reject(ctx context.Context, id, ownerID uint64) (model.BookingRequest, error)
	Cancel(ctx context.Context, id, tenantID uint64, now time.Time) (model.BookingRequest, error)
	OwnerOf(ctx context.Context, id uint64) (uint64, error)
}

type PaymentStore interface {
	Create(ctx context.Context, pm *model.Payment) error
	ListByTenant(ctx context.Context, tenantID uint64, status model.PaymentStatus, page, pageSize int) ([]model.Payment, int64, error)
	ListByOwner(ctx context.Context, ownerID uint64, status model.PaymentStatus, page, pageSize int) ([]model.Payment, int64, error)
	Confirm(ctx context.Context, id, ownerID uint64) (model.Payment, error)
	Reject(ctx context.Context, id, ownerID uint64) (model.Payment, error)
}

type NotificationStore interface {
	ListByUser(ctx context.Context, userID uint64, unreadOnly bool, page, pageSize int) ([]model.Notification, int64, error)
	MarkRead(ctx context.Context, id, userID uint64) error
	MarkAllRead(ctx context.Context, userID uint64) (int64, error)
	CountUnread(ctx context.Context, userID uint64) (int64, error)
}

type StatsStore interface {
	Admin(ctx context.Context) (repository.AdminStats, error)
	Landlord(ctx context.Context, ownerID uint64) (repository.LandlordStats, error)
	Tenant(ctx context.Context, tenantID uint64) (repository.TenantStats, error)
}
