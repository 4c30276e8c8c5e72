package router

import (
	"github.com/labstack/echo/v4"

	"github.com/nyumbalink/nyumbalink/internal/handler"
	"github.com/nyumbalink/nyumbalink/internal/middleware"
	"github.com/nyumbalink/nyumbalink/internal/model"
)

// RegisterAdmin registers SUPER_ADMIN endpoints under /v1/admin.
func RegisterAdmin(v1 *echo.Group, a *handler.AdminHandler, jwtSecret string) {
	g := v1.Group("/admin",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(model.RoleSuperAdmin),
	)
	g.GET("/stats", a.Overview)
	g.GET("/users", a.ListUsers)
	g.PATCH("/users/:id", a.UpdateUser)
	g.GET("/properties", a.ListProperties)
	g.PATCH("/properties/:id/featured", a.SetFeatured)
	g.DELETE("/properties/:id", a.DeleteProperty)
}
