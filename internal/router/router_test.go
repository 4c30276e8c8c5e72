package router

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/nyumbalink/nyumbalink/internal/handler"
	"github.com/nyumbalink/nyumbalink/internal/model"
	"github.com/nyumbalink/nyumbalink/internal/utils"
)

const secret = "router-test-secret"

type pinger struct{ err error }

func (p pinger) PingContext(context.Context) error { return p.err }

func newServer(db handler.Pinger) *echo.Echo {
	e := echo.New()
	Register(e, Handlers{
		Auth:          &handler.AuthHandler{},
		Properties:    &handler.PropertyHandler{},
		Inquiries:     &handler.InquiryHandler{},
		Bookings:      &handler.BookingHandler{},
		Payments:      &handler.PaymentHandler{},
		Notifications: &handler.NotificationHandler{},
		Dashboard:     &handler.DashboardHandler{},
		Admin:         &handler.AdminHandler{},
		DB:            db,
	}, Options{JWTSecret: secret, CORSOrigins: []string{"*"}})
	return e
}

func token(t *testing.T, role model.Role) string {
	t.Helper()
	at, err := utils.NewAccessToken(secret, 1, string(role), 5)
	if err != nil {
		t.Fatal(err)
	}
	return at.Token
}

func TestProbes(t *testing.T) {
	cases := []struct {
		name string
		db   handler.Pinger
		path string
		want int
	}{
		{"liveness", pinger{}, "/healthz", http.StatusOK},
		{"ready", pinger{}, "/readyz", http.StatusOK},
		{"database down", pinger{errors.New("dial tcp: refused")}, "/readyz", http.StatusServiceUnavailable},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			newServer(tc.db).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tc.path, nil))
			if rec.Code != tc.want {
				t.Fatalf("status = %d; want %d", rec.Code, tc.want)
			}
		})
	}
}

func TestRoleGates(t *testing.T) {
	e := newServer(pinger{})
	cases := []struct {
		name   string
		method string
		path   string
		role   model.Role
		want   int
	}{
		{"landlord area without token", http.MethodGet, "/v1/landlord/properties", "", http.StatusUnauthorized},
		{"landlord area as tenant", http.MethodGet, "/v1/landlord/properties", model.RoleTenant, http.StatusForbidden},
		{"admin area as landlord", http.MethodGet, "/v1/admin/users", model.RolePropertyAdmin, http.StatusForbidden},
		{"tenant area as landlord", http.MethodGet, "/v1/tenant/bookings", model.RolePropertyAdmin, http.StatusForbidden},
		{"inquiry as admin", http.MethodPost, "/v1/properties/1/inquiries", model.RoleSuperAdmin, http.StatusForbidden},
		{"booking without token", http.MethodPost, "/v1/properties/1/bookings", "", http.StatusUnauthorized},
		{"notifications without token", http.MethodGet, "/v1/notifications", "", http.StatusUnauthorized},
		{"profile without token", http.MethodGet, "/v1/me", "", http.StatusUnauthorized},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(tc.method, tc.path, nil)
			if tc.role != "" {
				req.Header.Set(echo.HeaderAuthorization, "Bearer "+token(t, tc.role))
			}
			rec := httptest.NewRecorder()
			e.ServeHTTP(rec, req)
			if rec.Code != tc.want {
				t.Fatalf("status = %d; want %d (body %s)", rec.Code, tc.want, rec.Body.String())
			}
		})
	}
}

func TestMetaIsPublicAndLocalized(t *testing.T) {
	e := newServer(pinger{})
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/meta/regions-and-types?lang=sw", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if got := rec.Header().Get("Content-Language"); got != "sw" {
		t.Fatalf("Content-Language = %q", got)
	}
}
