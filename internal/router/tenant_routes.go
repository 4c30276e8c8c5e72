package router

import (
	"github.com/labstack/echo/v4"

	"github.com/nyumbalink/nyumbalink/internal/middleware"
	"github.com/nyumbalink/nyumbalink/internal/model"
)

// RegisterTenant registers TENANT endpoints.  Inquiries and booking
// requests hang off the public listing path; everything else lives under
// /v1/tenant.
func RegisterTenant(v1 *echo.Group, h Handlers, jwtSecret string) {
	jwt := middleware.JWTAuth(jwtSecret)
	role := middleware.RequireRole(model.RoleTenant)

	v1.POST("/properties/:id/inquiries", h.Inquiries.Create, jwt, role)
	v1.POST("/properties/:id/bookings", h.Bookings.Create, jwt, role)

	g := v1.Group("/tenant", jwt, role)
	g.GET("/inquiries", h.Inquiries.ListMine)
	g.GET("/bookings", h.Bookings.ListMine)
	g.DELETE("/bookings/:id", h.Bookings.Cancel)
	g.POST("/bookings/:id/payments", h.Payments.Create)
	g.GET("/payments", h.Payments.ListMine)
}
