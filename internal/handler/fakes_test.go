package handler

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/nyumbalink/nyumbalink/internal/auth"
	"github.com/nyumbalink/nyumbalink/internal/httpx"
	"github.com/nyumbalink/nyumbalink/internal/model"
	"github.com/nyumbalink/nyumbalink/internal/queue"
	"github.com/nyumbalink/nyumbalink/internal/repository"
	"github.com/nyumbalink/nyumbalink/internal/search"
	"github.com/nyumbalink/nyumbalink/internal/utils"
	"github.com/nyumbalink/nyumbalink/internal/validation"
)

// ----- request helpers -----

type call struct {
	method  string
	target  string
	body    string
	ctype   string
	bearer  string
	session *auth.Session
	params  map[string]string
}

func serve(t *testing.T, h echo.HandlerFunc, cl call) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	e.Validator = validation.New()
	e.HTTPErrorHandler = httpx.ErrorHandler
	req := httptest.NewRequest(cl.method, cl.target, strings.NewReader(cl.body))
	switch {
	case cl.ctype != "":
		req.Header.Set(echo.HeaderContentType, cl.ctype)
	case cl.body != "":
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	if cl.bearer != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+cl.bearer)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if len(cl.params) > 0 {
		var names, values []string
		for k, v := range cl.params {
			names = append(names, k)
			values = append(values, v)
		}
		c.SetParamNames(names...)
		c.SetParamValues(values...)
	}
	if cl.session != nil {
		auth.Set(c, *cl.session)
	}
	if err := h(c); err != nil {
		e.HTTPErrorHandler(err, c)
	}
	return rec
}

func tenant(id uint64) *auth.Session   { return &auth.Session{UserID: id, Role: model.RoleTenant} }
func landlord(id uint64) *auth.Session { return &auth.Session{UserID: id, Role: model.RolePropertyAdmin} }
func admin(id uint64) *auth.Session    { return &auth.Session{UserID: id, Role: model.RoleSuperAdmin} }

func decode(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), v); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body httpx.ErrorBody
	decode(t, rec, &body)
	return body.Error
}

func expect(t *testing.T, rec *httptest.ResponseRecorder, status int) {
	t.Helper()
	if rec.Code != status {
		t.Fatalf("status = %d; want %d (body %s)", rec.Code, status, rec.Body.String())
	}
}

// ----- users & tokens -----

type fakeUsers struct {
	mu     sync.Mutex
	nextID uint64
	byID   map[uint64]model.User
}

func newFakeUsers() *fakeUsers {
	return &fakeUsers{byID: map[uint64]model.User{}}
}

func (f *fakeUsers) add(u model.User, password string) model.User {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	u.ID = f.nextID
	if password != "" {
		u.PasswordHash, _ = utils.HashPassword(password, 4)
	}
	if u.Language == "" {
		u.Language = "en"
	}
	f.byID[u.ID] = u
	return u
}

func (f *fakeUsers) Create(_ context.Context, u *model.User, password string, cost int) error {
	f.mu.Lock()
	for _, x := range f.byID {
		if x.Email == strings.ToLower(u.Email) {
			f.mu.Unlock()
			return repository.ErrEmailExists
		}
	}
	f.mu.Unlock()
	u.Email = strings.ToLower(u.Email)
	u.IsActive = true
	*u = f.add(*u, password)
	return nil
}

func (f *fakeUsers) GetByEmail(_ context.Context, email string) (model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.byID {
		if u.Email == email {
			return u, nil
		}
	}
	return model.User{}, repository.ErrUserNotFound
}

func (f *fakeUsers) GetByID(_ context.Context, id uint64) (model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.byID[id]
	if !ok {
		return u, repository.ErrUserNotFound
	}
	return u, nil
}

func (f *fakeUsers) UpdateProfile(_ context.Context, id uint64, p repository.ProfileUpdate) (model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.byID[id]
	if !ok {
		return u, repository.ErrUserNotFound
	}
	if p.FullName != nil {
		u.FullName = *p.FullName
	}
	if p.Phone != nil {
		if *p.Phone == "" {
			u.Phone = nil
		} else {
			ph := *p.Phone
			u.Phone = &ph
		}
	}
	if p.Language != nil {
		u.Language = *p.Language
	}
	f.byID[id] = u
	return u, nil
}

func (f *fakeUsers) SetRole(_ context.Context, id uint64, role model.Role) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.byID[id]
	if !ok {
		return repository.ErrUserNotFound
	}
	u.Role = role
	f.byID[id] = u
	return nil
}

func (f *fakeUsers) SetActive(_ context.Context, id uint64, active bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.byID[id]
	if !ok {
		return repository.ErrUserNotFound
	}
	u.IsActive = active
	f.byID[id] = u
	return nil
}

func (f *fakeUsers) List(_ context.Context, flt repository.UserFilter) ([]model.User, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.User
	for _, u := range f.byID {
		if flt.Role == "" || u.Role == flt.Role {
			out = append(out, u)
		}
	}
	return out, int64(len(out)), nil
}

type fakeTokens struct {
	mu      sync.Mutex
	live    map[string]uint64
	revoked []uint64 // users signed out everywhere
}

func newFakeTokens() *fakeTokens { return &fakeTokens{live: map[string]uint64{}} }

func (f *fakeTokens) StoreRefresh(_ context.Context, userID uint64, hash string, _ time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.live[hash] = userID
	return nil
}

func (f *fakeTokens) ValidateRefresh(_ context.Context, hash string) (uint64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	id, ok := f.live[hash]
	if !ok {
		return 0, repository.ErrTokenInvalid
	}
	return id, nil
}

func (f *fakeTokens) RevokeByHash(_ context.Context, hash string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.live[hash]; !ok {
		return repository.ErrTokenInvalid
	}
	delete(f.live, hash)
	return nil
}

func (f *fakeTokens) RevokeAllForUser(_ context.Context, userID uint64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for h, id := range f.live {
		if id == userID {
			delete(f.live, h)
		}
	}
	f.revoked = append(f.revoked, userID)
	return nil
}

// ----- properties & images -----

type fakeProperties struct {
	mu        sync.Mutex
	nextID    uint64
	byID      map[uint64]model.Property
	views     map[uint64]int
	lastQuery search.Query
	deleted   []uint64
}

func newFakeProperties() *fakeProperties {
	return &fakeProperties{byID: map[uint64]model.Property{}, views: map[uint64]int{}}
}

func (f *fakeProperties) add(p model.Property) model.Property {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	p.ID = f.nextID
	if p.Status == "" {
		p.Status = model.StatusAvailable
	}
	f.byID[p.ID] = p
	return p
}

func (f *fakeProperties) Create(_ context.Context, p *model.Property) error {
	*p = f.add(*p)
	return nil
}

func (f *fakeProperties) GetByID(_ context.Context, id uint64) (model.Property, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.byID[id]
	if !ok {
		return p, repository.ErrPropertyNotFound
	}
	return p, nil
}

func (f *fakeProperties) GetByIDAndOwner(ctx context.Context, id, ownerID uint64) (model.Property, error) {
	p, err := f.GetByID(ctx, id)
	if err != nil {
		return p, err
	}
	if p.OwnerID != ownerID {
		return model.Property{}, repository.ErrForbidden
	}
	return p, nil
}

func (f *fakeProperties) Update(ctx context.Context, p *model.Property) error {
	if _, err := f.GetByIDAndOwner(ctx, p.ID, p.OwnerID); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.byID[p.ID] = *p
	return nil
}

func (f *fakeProperties) SetStatus(ctx context.Context, id, ownerID uint64, st model.PropertyStatus) (model.Property, error) {
	p, err := f.GetByIDAndOwner(ctx, id, ownerID)
	if err != nil {
		return p, err
	}
	p.Status = st
	f.mu.Lock()
	f.byID[id] = p
	f.mu.Unlock()
	return p, nil
}

func (f *fakeProperties) SetFeatured(ctx context.Context, id uint64, featured bool) (model.Property, error) {
	p, err := f.GetByID(ctx, id)
	if err != nil {
		return p, err
	}
	p.IsFeatured = featured
	f.mu.Lock()
	f.byID[id] = p
	f.mu.Unlock()
	return p, nil
}

func (f *fakeProperties) Delete(ctx context.Context, id, ownerID uint64) ([]string, error) {
	p, err := f.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if ownerID != 0 && p.OwnerID != ownerID {
		return nil, repository.ErrForbidden
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.byID, id)
	f.deleted = append(f.deleted, id)
	return nil, nil
}

func (f *fakeProperties) ListByOwner(_ context.Context, ownerID uint64, _, _ int) ([]model.Property, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.Property
	for _, p := range f.byID {
		if p.OwnerID == ownerID {
			out = append(out, p)
		}
	}
	return out, int64(len(out)), nil
}

func (f *fakeProperties) IncrementViews(_ context.Context, id uint64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.views[id]++
	return nil
}

func (f *fakeProperties) Search(_ context.Context, q search.Query) ([]model.Property, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastQuery = q
	var out []model.Property
	for _, p := range f.byID {
		if q.Status == search.StatusAny || p.Status == q.Status {
			out = append(out, p)
		}
	}
	return out, int64(len(out)), nil
}

type fakeImages struct {
	mu     sync.Mutex
	nextID uint64
	byProp map[uint64][]model.PropertyImage
}

func newFakeImages() *fakeImages { return &fakeImages{byProp: map[uint64][]model.PropertyImage{}} }

func (f *fakeImages) Add(_ context.Context, img *model.PropertyImage) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.byProp[img.PropertyID]) >= model.MaxImagesPerProperty {
		return repository.ErrImageLimit
	}
	f.nextID++
	img.ID = f.nextID
	img.SortOrder = uint32(len(f.byProp[img.PropertyID]) + 1)
	f.byProp[img.PropertyID] = append(f.byProp[img.PropertyID], *img)
	return nil
}

func (f *fakeImages) ListByProperty(_ context.Context, propertyID uint64) ([]model.PropertyImage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]model.PropertyImage(nil), f.byProp[propertyID]...), nil
}

func (f *fakeImages) Covers(_ context.Context, ids []uint64) (map[uint64]model.PropertyImage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := map[uint64]model.PropertyImage{}
	for _, id := range ids {
		if imgs := f.byProp[id]; len(imgs) > 0 {
			out[id] = imgs[0]
		}
	}
	return out, nil
}

func (f *fakeImages) Get(_ context.Context, propertyID, imageID uint64) (model.PropertyImage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, img := range f.byProp[propertyID] {
		if img.ID == imageID {
			return img, nil
		}
	}
	return model.PropertyImage{}, repository.ErrImageNotFound
}

func (f *fakeImages) Delete(ctx context.Context, propertyID, imageID uint64) (model.PropertyImage, error) {
	img, err := f.Get(ctx, propertyID, imageID)
	if err != nil {
		return img, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	imgs := f.byProp[propertyID]
	for i := range imgs {
		if imgs[i].ID == imageID {
			f.byProp[propertyID] = append(imgs[:i], imgs[i+1:]...)
			break
		}
	}
	return img, nil
}

// ----- bookings, payments, inquiries, notifications, stats -----

// fakeBookings answers from function fields; nil fields return zero
// values.
type fakeBookings struct {
	create  func(b *model.BookingRequest) error
	approve func(id, ownerID uint64) (model.BookingRequest, []model.BookingRequest, error)
	reject  func(id, ownerID uint64) (model.BookingRequest, error)
	cancel  func(id, tenantID uint64, now time.Time) (model.BookingRequest, error)
	ownerOf func(id uint64) (uint64, error)
}

func (f *fakeBookings) Create(_ context.Context, b *model.BookingRequest) error {
	if f.create == nil {
		return nil
	}
	return f.create(b)
}

func (f *fakeBookings) ListByTenant(context.Context, uint64, model.BookingStatus, int, int) ([]model.BookingRequest, int64, error) {
	return nil, 0, nil
}

func (f *fakeBookings) ListByOwner(context.Context, uint64, model.BookingStatus, int, int) ([]model.BookingRequest, int64, error) {
	return nil, 0, nil
}

func (f *fakeBookings) Approve(_ context.Context, id, ownerID uint64) (model.BookingRequest, []model.BookingRequest, error) {
	return f.approve(id, ownerID)
}

func (f *fakeBookings) Reject(_ context.Context, id, ownerID uint64) (model.BookingRequest, error) {
	return f.reject(id, ownerID)
}

func (f *fakeBookings) Cancel(_ context.Context, id, tenantID uint64, now time.Time) (model.BookingRequest, error) {
	return f.cancel(id, tenantID, now)
}

func (f *fakeBookings) OwnerOf(_ context.Context, id uint64) (uint64, error) {
	if f.ownerOf == nil {
		return 0, repository.ErrBookingNotFound
	}
	return f.ownerOf(id)
}

type fakePayments struct {
	create  func(pm *model.Payment) error
	settle  func(id, ownerID uint64, to model.PaymentStatus) (model.Payment, error)
	lastLst model.PaymentStatus
}

func (f *fakePayments) Create(_ context.Context, pm *model.Payment) error { return f.create(pm) }

func (f *fakePayments) ListByTenant(_ context.Context, _ uint64, st model.PaymentStatus, _, _ int) ([]model.Payment, int64, error) {
	f.lastLst = st
	return nil, 0, nil
}

func (f *fakePayments) ListByOwner(_ context.Context, _ uint64, st model.PaymentStatus, _, _ int) ([]model.Payment, int64, error) {
	f.lastLst = st
	return nil, 0, nil
}

func (f *fakePayments) Confirm(_ context.Context, id, ownerID uint64) (model.Payment, error) {
	return f.settle(id, ownerID, model.PaymentConfirmed)
}

func (f *fakePayments) Reject(_ context.Context, id, ownerID uint64) (model.Payment, error) {
	return f.settle(id, ownerID, model.PaymentRejected)
}

type fakeInquiries struct {
	created []model.Inquiry
	respond func(id, ownerID uint64, response string) (model.Inquiry, error)
}

func (f *fakeInquiries) Create(_ context.Context, in *model.Inquiry) error {
	in.ID = uint64(len(f.created) + 1)
	in.Status = model.InquiryPending
	in.TenantName = "Asha Mushi"
	f.created = append(f.created, *in)
	return nil
}

func (f *fakeInquiries) ListByTenant(context.Context, uint64, model.InquiryStatus, int, int) ([]model.Inquiry, int64, error) {
	return nil, 0, nil
}

func (f *fakeInquiries) ListByOwner(context.Context, uint64, model.InquiryStatus, int, int) ([]model.Inquiry, int64, error) {
	return nil, 0, nil
}

func (f *fakeInquiries) Respond(_ context.Context, id, ownerID uint64, response string) (model.Inquiry, error) {
	return f.respond(id, ownerID, response)
}

func (f *fakeInquiries) Close(context.Context, uint64, uint64) (model.Inquiry, error) {
	return model.Inquiry{}, repository.ErrInquiryNotFound
}

type fakeNotifications struct {
	unread int64
	read   map[uint64]uint64 // notification id -> owner
}

func (f *fakeNotifications) ListByUser(_ context.Context, _ uint64, _ bool, _, _ int) ([]model.Notification, int64, error) {
	return []model.Notification{{ID: 1, Title: "t"}}, 1, nil
}

func (f *fakeNotifications) MarkRead(_ context.Context, id, userID uint64) error {
	if owner, ok := f.read[id]; !ok || owner != userID {
		return repository.ErrNotificationNotFound
	}
	return nil
}

func (f *fakeNotifications) MarkAllRead(context.Context, uint64) (int64, error) {
	n := f.unread
	f.unread = 0
	return n, nil
}

func (f *fakeNotifications) CountUnread(context.Context, uint64) (int64, error) { return f.unread, nil }

type fakeStats struct{}

func (fakeStats) Admin(context.Context) (repository.AdminStats, error) {
	return repository.AdminStats{PendingPayments: 3}, nil
}

func (fakeStats) Landlord(context.Context, uint64) (repository.LandlordStats, error) {
	return repository.LandlordStats{PendingBookings: 2}, nil
}

func (fakeStats) Tenant(context.Context, uint64) (repository.TenantStats, error) {
	return repository.TenantStats{OpenInquiries: 1}, nil
}

// recorder collects dispatched events.
type recorder struct {
	mu     sync.Mutex
	events []queue.Event
}

func (r *recorder) Dispatch(_ context.Context, ev queue.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
}

func (r *recorder) types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.events))
	for i, ev := range r.events {
		out[i] = ev.Type
	}
	return out
}
