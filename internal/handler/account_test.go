package handler

import (
	"net/http"
	"testing"

	"github.com/nyumbalink/nyumbalink/internal/auth"
	"github.com/nyumbalink/nyumbalink/internal/model"
	"github.com/nyumbalink/nyumbalink/internal/queue"
	"github.com/nyumbalink/nyumbalink/internal/repository"
	"github.com/nyumbalink/nyumbalink/internal/search"
)

func TestInquiryLifecycle(t *testing.T) {
	props := newFakeProperties()
	props.add(sampleProperty(4))
	inq := &fakeInquiries{respond: func(id, ownerID uint64, response string) (model.Inquiry, error) {
		if ownerID != 4 {
			return model.Inquiry{}, repository.ErrForbidden
		}
		return model.Inquiry{ID: id, TenantID: 10, PropertyTitle: "Two bedroom apartment in Mikocheni",
			Status: model.InquiryResponded, Response: &response}, nil
	}}
	events := &recorder{}
	h := &InquiryHandler{Inquiries: inq, Properties: props, Notify: events}

	rec := serve(t, h.Create, call{method: http.MethodPost, target: "/v1/properties/1/inquiries",
		params: map[string]string{"id": "1"}, session: tenant(10), body: `{"message":"Is water available daily?","phone":"0754 000 111"}`})
	expect(t, rec, http.StatusCreated)
	if len(inq.created) != 1 || inq.created[0].Phone == nil || *inq.created[0].Phone != "0754000111" {
		t.Fatalf("created = %+v", inq.created)
	}

	rec = serve(t, h.Create, call{method: http.MethodPost, target: "/v1/properties/1/inquiries",
		params: map[string]string{"id": "1"}, session: tenant(10), body: `{"message":"short"}`})
	expect(t, rec, http.StatusBadRequest)

	rec = serve(t, h.Respond, call{method: http.MethodPost, target: "/v1/landlord/inquiries/1/respond",
		params: map[string]string{"id": "1"}, session: landlord(5), body: `{"response":"Yes"}`})
	expect(t, rec, http.StatusForbidden)

	rec = serve(t, h.Respond, call{method: http.MethodPost, target: "/v1/landlord/inquiries/1/respond",
		params: map[string]string{"id": "1"}, session: landlord(4), body: `{"response":"Yes, every day"}`})
	expect(t, rec, http.StatusOK)

	got := events.types()
	if len(got) != 2 || got[0] != queue.InquiryCreated || got[1] != queue.InquiryResponded {
		t.Fatalf("events = %v", got)
	}
	if events.events[0].RecipientID != 4 || events.events[0].ActorName != "Asha Mushi" {
		t.Fatalf("created event = %+v", events.events[0])
	}
	if events.events[1].RecipientID != 10 {
		t.Fatalf("responded event = %+v", events.events[1])
	}

	rec = serve(t, h.Close, call{method: http.MethodPost, target: "/v1/landlord/inquiries/8/close",
		params: map[string]string{"id": "8"}, session: landlord(4)})
	expect(t, rec, http.StatusNotFound)
}

func TestNotifications(t *testing.T) {
	store := &fakeNotifications{unread: 3, read: map[uint64]uint64{1: 10}}
	h := &NotificationHandler{Notifications: store}

	rec := serve(t, h.List, call{method: http.MethodGet, target: "/v1/notifications?unread=maybe", session: tenant(10)})
	expect(t, rec, http.StatusBadRequest)

	rec = serve(t, h.List, call{method: http.MethodGet, target: "/v1/notifications?unread=true", session: tenant(10)})
	expect(t, rec, http.StatusOK)

	rec = serve(t, h.UnreadCount, call{method: http.MethodGet, target: "/v1/notifications/unread-count", session: tenant(10)})
	expect(t, rec, http.StatusOK)
	var count struct {
		Unread int64 `json:"unread"`
	}
	decode(t, rec, &count)
	if count.Unread != 3 {
		t.Fatalf("unread = %d", count.Unread)
	}

	rec = serve(t, h.MarkRead, call{method: http.MethodPost, target: "/v1/notifications/1/read",
		params: map[string]string{"id": "1"}, session: tenant(11)})
	expect(t, rec, http.StatusNotFound)
	rec = serve(t, h.MarkRead, call{method: http.MethodPost, target: "/v1/notifications/1/read",
		params: map[string]string{"id": "1"}, session: tenant(10)})
	expect(t, rec, http.StatusNoContent)

	rec = serve(t, h.MarkAllRead, call{method: http.MethodPost, target: "/v1/notifications/read-all", session: tenant(10)})
	expect(t, rec, http.StatusOK)
	var updated struct {
		Updated int64 `json:"updated"`
	}
	decode(t, rec, &updated)
	if updated.Updated != 3 || store.unread != 0 {
		t.Fatalf("updated = %d, left = %d", updated.Updated, store.unread)
	}
}

func TestDashboardPerRole(t *testing.T) {
	users := newFakeUsers()
	u := users.add(model.User{Email: "x@example.com", FullName: "X", IsActive: true}, "")
	h := &DashboardHandler{Stats: fakeStats{}, Users: users, Notifications: &fakeNotifications{unread: 2}}

	cases := []struct {
		role model.Role
		key  string
		want int
	}{
		{model.RoleSuperAdmin, "pending_payments", 3},
		{model.RolePropertyAdmin, "pending_bookings", 2},
		{model.RoleTenant, "open_inquiries", 1},
	}
	for _, tc := range cases {
		t.Run(string(tc.role), func(t *testing.T) {
			rec := serve(t, h.Get, call{method: http.MethodGet, target: "/v1/dashboard",
				session: &auth.Session{UserID: u.ID, Role: tc.role}})
			expect(t, rec, http.StatusOK)
			var body struct {
				Role   model.Role     `json:"role"`
				Unread int64          `json:"unread_notifications"`
				Stats  map[string]any `json:"stats"`
			}
			decode(t, rec, &body)
			if body.Role != tc.role || body.Unread != 2 {
				t.Fatalf("body = %+v", body)
			}
			if v, ok := body.Stats[tc.key].(float64); !ok || int(v) != tc.want {
				t.Fatalf("stats[%s] = %v", tc.key, body.Stats[tc.key])
			}
		})
	}

	rec := serve(t, h.Get, call{method: http.MethodGet, target: "/v1/dashboard",
		session: &auth.Session{UserID: u.ID, Role: model.Role("AUDITOR")}})
	expect(t, rec, http.StatusForbidden)

	rec = serve(t, h.Get, call{method: http.MethodGet, target: "/v1/dashboard", session: tenant(99)})
	expect(t, rec, http.StatusNotFound)
}

func newAdminHandler() (*AdminHandler, *fakeUsers, *fakeTokens, *fakeProperties) {
	users, tokens := newFakeUsers(), newFakeTokens()
	listings, props, _, _ := newPropertyHandler()
	return &AdminHandler{Users: users, Tokens: tokens, Stats: fakeStats{}, Listings: listings}, users, tokens, props
}

func TestAdminUpdateUser(t *testing.T) {
	h, users, tokens, _ := newAdminHandler()
	root := users.add(model.User{Email: "root@example.com", Role: model.RoleSuperAdmin, IsActive: true}, "")
	u := users.add(model.User{Email: "juma@example.com", Role: model.RoleTenant, IsActive: true}, "")
	target := map[string]string{"id": "2"}

	rec := serve(t, h.UpdateUser, call{method: http.MethodPatch, target: "/v1/admin/users/1",
		params: map[string]string{"id": "1"}, session: admin(root.ID), body: `{"is_active":false}`})
	expect(t, rec, http.StatusBadRequest)
	if got := errorCode(t, rec); got != "cannot_modify_self" {
		t.Fatalf("error = %q", got)
	}

	rec = serve(t, h.UpdateUser, call{method: http.MethodPatch, target: "/v1/admin/users/2",
		params: target, session: admin(root.ID), body: `{"role":"wizard"}`})
	expect(t, rec, http.StatusBadRequest)

	rec = serve(t, h.UpdateUser, call{method: http.MethodPatch, target: "/v1/admin/users/2",
		params: target, session: admin(root.ID), body: `{"role":"property_admin"}`})
	expect(t, rec, http.StatusOK)
	var got model.User
	decode(t, rec, &got)
	if got.Role != model.RolePropertyAdmin || !got.IsActive {
		t.Fatalf("user = %+v", got)
	}

	rec = serve(t, h.UpdateUser, call{method: http.MethodPatch, target: "/v1/admin/users/2",
		params: target, session: admin(root.ID), body: `{"is_active":false}`})
	expect(t, rec, http.StatusOK)
	decode(t, rec, &got)
	if got.IsActive {
		t.Fatal("user still active")
	}
	if len(tokens.revoked) != 2 || tokens.revoked[0] != u.ID {
		t.Fatalf("revoked = %v", tokens.revoked)
	}

	rec = serve(t, h.UpdateUser, call{method: http.MethodPatch, target: "/v1/admin/users/7",
		params: map[string]string{"id": "7"}, session: admin(root.ID), body: `{"is_active":true}`})
	expect(t, rec, http.StatusNotFound)
}

func TestAdminListProperties(t *testing.T) {
	h, _, _, props := newAdminHandler()
	props.add(sampleProperty(4))
	hidden := sampleProperty(5)
	hidden.Status = model.StatusMaintenance
	props.add(hidden)

	rec := serve(t, h.ListProperties, call{method: http.MethodGet, target: "/v1/admin/properties", session: admin(1)})
	expect(t, rec, http.StatusOK)
	var body listResponse[model.Property]
	decode(t, rec, &body)
	if len(body.Data) != 2 || props.lastQuery.Status != search.StatusAny {
		t.Fatalf("data = %d, status = %q", len(body.Data), props.lastQuery.Status)
	}

	rec = serve(t, h.ListProperties, call{method: http.MethodGet, target: "/v1/admin/properties?status=maintenance&owner_id=5", session: admin(1)})
	expect(t, rec, http.StatusOK)
	if props.lastQuery.Status != model.StatusMaintenance || props.lastQuery.OwnerID == nil || *props.lastQuery.OwnerID != 5 {
		t.Fatalf("query = %+v", props.lastQuery)
	}

	for _, target := range []string{"/v1/admin/properties?status=sold", "/v1/admin/properties?owner_id=abc"} {
		rec = serve(t, h.ListProperties, call{method: http.MethodGet, target: target, session: admin(1)})
		expect(t, rec, http.StatusBadRequest)
	}
}

func TestAdminModeration(t *testing.T) {
	h, _, _, props := newAdminHandler()
	props.add(sampleProperty(4))
	id := map[string]string{"id": "1"}

	rec := serve(t, h.SetFeatured, call{method: http.MethodPatch, target: "/v1/admin/properties/1/featured",
		params: id, session: admin(1), body: `{}`})
	expect(t, rec, http.StatusBadRequest)

	rec = serve(t, h.SetFeatured, call{method: http.MethodPatch, target: "/v1/admin/properties/1/featured",
		params: id, session: admin(1), body: `{"featured":true}`})
	expect(t, rec, http.StatusOK)
	var p model.Property
	decode(t, rec, &p)
	if !p.IsFeatured {
		t.Fatal("listing not featured")
	}

	rec = serve(t, h.DeleteProperty, call{method: http.MethodDelete, target: "/v1/admin/properties/1", params: id, session: admin(1)})
	expect(t, rec, http.StatusNoContent)
	rec = serve(t, h.DeleteProperty, call{method: http.MethodDelete, target: "/v1/admin/properties/1", params: id, session: admin(1)})
	expect(t, rec, http.StatusNotFound)

	rec = serve(t, h.Overview, call{method: http.MethodGet, target: "/v1/admin/stats", session: admin(1)})
	expect(t, rec, http.StatusOK)
}
