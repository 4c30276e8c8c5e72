package router

import (
	"github.com/labstack/echo/v4"

	"github.com/nyumbalink/nyumbalink/internal/middleware"
	"github.com/nyumbalink/nyumbalink/internal/model"
)

// RegisterLandlord registers PROPERTY_ADMIN endpoints under /v1/landlord.
// Ownership of each row is checked by the repositories.
func RegisterLandlord(v1 *echo.Group, h Handlers, jwtSecret string) {
	g := v1.Group("/landlord",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(model.RolePropertyAdmin),
	)

	// ---- Listings ----
	p := h.Properties
	g.POST("/properties", p.Create)
	g.GET("/properties", p.Mine)
	g.PUT("/properties/:id", p.Update)
	g.PATCH("/properties/:id", p.Update) // partial body, unset fields keep their value
	g.DELETE("/properties/:id", p.Delete)
	g.PATCH("/properties/:id/status", p.SetStatus)
	g.POST("/properties/:id/images", p.UploadImage)
	g.DELETE("/properties/:id/images/:imageId", p.DeleteImage)

	// ---- Inquiries ----
	g.GET("/inquiries", h.Inquiries.ListForOwner)
	g.POST("/inquiries/:id/respond", h.Inquiries.Respond)
	g.POST("/inquiries/:id/close", h.Inquiries.Close)

	// ---- Bookings ----
	g.GET("/bookings", h.Bookings.ListForOwner)
	g.POST("/bookings/:id/approve", h.Bookings.Approve)
	g.POST("/bookings/:id/reject", h.Bookings.Reject)

	// ---- Payments ----
	g.GET("/payments", h.Payments.ListForOwner)
	g.POST("/payments/:id/confirm", h.Payments.Confirm)
	g.POST("/payments/:id/reject", h.Payments.Reject)
}
