// Package router wires the handlers onto an Echo instance.
package router

import (
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"

	"github.com/nyumbalink/nyumbalink/internal/config"
	"github.com/nyumbalink/nyumbalink/internal/handler"
	"github.com/nyumbalink/nyumbalink/internal/httpx"
	"github.com/nyumbalink/nyumbalink/internal/middleware"
	"github.com/nyumbalink/nyumbalink/internal/validation"
)

// Handlers groups everything the routes dispatch to.
type Handlers struct {
	Auth          *handler.AuthHandler
	Properties    *handler.PropertyHandler
	Inquiries     *handler.InquiryHandler
	Bookings      *handler.BookingHandler
	Payments      *handler.PaymentHandler
	Notifications *handler.NotificationHandler
	Dashboard     *handler.DashboardHandler
	Admin         *handler.AdminHandler
	DB            handler.Pinger
}

// Options carries the settings the middleware chain needs.  Redis may be
// nil, in which case rate limiting and response caching pass through.
type Options struct {
	JWTSecret   string
	CORSOrigins []string
	Cache       config.CacheConfig
	RateLimit   config.RateLimitConfig
	Redis       *redis.Client
}

// Register installs the validator, the error handler, the shared middleware
// and every route.
func Register(e *echo.Echo, h Handlers, o Options) {
	e.Validator = validation.New()
	e.HTTPErrorHandler = httpx.ErrorHandler

	// CORS sits on the root so preflight requests are answered for every
	// route, not only those with an OPTIONS handler.
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{AllowOrigins: o.CORSOrigins}))

	RegisterRoutes(e, h.DB)

	v1 := e.Group("/v1",
		middleware.Lang(),
		middleware.NewTokenBucket(o.RateLimit, o.Redis, o.JWTSecret),
	)
	RegisterAuth(v1, h.Auth, o.JWTSecret)
	RegisterPublic(v1, h.Properties, middleware.NewRedisCache(o.Cache, o.Redis))
	RegisterAccount(v1, h.Notifications, h.Dashboard, o.JWTSecret)
	RegisterLandlord(v1, h, o.JWTSecret)
	RegisterTenant(v1, h, o.JWTSecret)
	RegisterAdmin(v1, h.Admin, o.JWTSecret)
}

// RegisterRoutes registers the unauthenticated probes outside /v1.
func RegisterRoutes(e *echo.Echo, db handler.Pinger) {
	e.GET("/healthz", handler.Health)
	e.GET("/readyz", handler.Ready(db))
}

// RegisterAuth registers registration, login and token endpoints plus the
// caller's own profile.
func RegisterAuth(v1 *echo.Group, a *handler.AuthHandler, jwtSecret string) {
	g := v1.Group("/auth")
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)
	g.POST("/refresh", a.Refresh)             // rotates the refresh token
	g.POST("/refresh-access", a.RefreshAccess) // new access token only
	// Logout takes either a Bearer token (sign out everywhere) or a
	// refresh_token body, so it sits outside JWTAuth.
	g.POST("/logout", a.Logout)

	jwt := middleware.JWTAuth(jwtSecret)
	v1.GET("/me", a.Me, jwt)
	v1.PATCH("/me", a.UpdateMe, jwt)
}

// RegisterPublic registers the guest browse endpoints.  Search pages and
// metadata go through the response cache; the detail view has its own
// view cache so that views keep counting.
func RegisterPublic(v1 *echo.Group, p *handler.PropertyHandler, cache echo.MiddlewareFunc) {
	v1.GET("/properties", p.Search, cache)
	v1.GET("/properties/:id", p.Get)
	v1.GET("/properties/:id/images/:imageId", p.Image)
	v1.GET("/meta/regions-and-types", handler.Meta, cache)
}

// RegisterAccount registers endpoints open to every signed-in role.
func RegisterAccount(v1 *echo.Group, n *handler.NotificationHandler, d *handler.DashboardHandler, jwtSecret string) {
	g := v1.Group("", middleware.JWTAuth(jwtSecret))
	g.GET("/dashboard", d.Get)
	g.GET("/notifications", n.List)
	g.GET("/notifications/unread-count", n.UnreadCount)
	g.POST("/notifications/read-all", n.MarkAllRead)
	g.POST("/notifications/:id/read", n.MarkRead)
}
