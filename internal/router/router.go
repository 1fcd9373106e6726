// Package router registers the HTTP routes and their middleware.
package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/hotel-reservation/internal/handler"
	"github.com/iliyamo/hotel-reservation/internal/middleware"
	"github.com/iliyamo/hotel-reservation/internal/utils"
)

// Handlers groups every handler the API exposes.
type Handlers struct {
	Catalog      *handler.CatalogHandler
	Reservations *handler.ReservationHandler
	Auth         *handler.AuthHandler
	Profile      *handler.ProfileHandler
}

// Middleware holds the optional Redis-backed layers.  Disabled layers are
// passthroughs.
type Middleware struct {
	Cache     echo.MiddlewareFunc
	RateLimit echo.MiddlewareFunc
}

func orNoop(m echo.MiddlewareFunc) echo.MiddlewareFunc {
	if m == nil {
		return func(next echo.HandlerFunc) echo.HandlerFunc { return next }
	}
	return m
}

// RegisterRoutes registers the unauthenticated health check.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterAPI mounts the /api routes.
func RegisterAPI(e *echo.Echo, h Handlers, issuer *utils.Issuer, mw Middleware) {
	api := e.Group("/api")
	jwt := middleware.JWTAuth(issuer)
	cache := orNoop(mw.Cache)
	limit := orNoop(mw.RateLimit)

	// Reference data, cached.
	api.GET("/room-types", h.Catalog.ListRoomTypes, cache)
	api.GET("/room-types/:id", h.Catalog.GetRoomType, cache)
	api.GET("/services", h.Catalog.ListServices, cache)
	api.GET("/services/:id", h.Catalog.GetService, cache)

	r := h.Reservations
	api.GET("/reservations/availability", r.GetAvailability)
	api.GET("/reservations", r.List)
	api.GET("/reservations/mine", r.Mine, jwt)
	api.GET("/reservations/:id", r.Get)
	api.POST("/reservations", r.Create, jwt)
	api.DELETE("/reservations/:id", r.Cancel, jwt)

	api.POST("/auth/login", h.Auth.Login, limit)
	api.POST("/auth/refresh", h.Auth.Refresh)
	api.POST("/auth/logout", h.Auth.Logout)
	api.POST("/auth/logout-all", h.Auth.LogoutAll, jwt)
	api.POST("/register", h.Auth.Register, limit)

	api.GET("/profile", h.Profile.Get, jwt)
	api.PUT("/profile", h.Profile.Update, jwt)
	api.PATCH("/profile", h.Profile.Update, jwt)
}
