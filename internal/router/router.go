// Package router defines how HTTP routes are registered for the API.
package router

import (
	"github.com/labstack/echo/v4"

	"github.com/openhall/session-registration/internal/handler"
	"github.com/openhall/session-registration/internal/middleware"
)

// RegisterRoutes registers routes that do not require authentication on the
// provided Echo instance.  Currently it exposes only a health check.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterPublic registers the unauthenticated registration surface: the
// session listing both forms are built from and the two submission endpoints.
func RegisterPublic(e *echo.Echo, s *handler.SessionHandler, r *handler.RegistrationHandler) {
	e.GET("/api/sessions", s.ListSessions)
	e.POST("/api/register/general", r.RegisterGeneral)
	e.POST("/api/register/member", r.RegisterMember)
}

// RegisterAdmin registers the admin surface.  Login is open; everything else
// under /api/admin requires a valid admin bearer token.
func RegisterAdmin(e *echo.Echo, a *handler.AdminHandler, jwtSecret string) {
	e.POST("/api/admin/login", a.Login)

	g := e.Group("/api/admin")
	g.Use(middleware.AdminAuth(jwtSecret))
	g.GET("/sessions", a.ListSessions)
	g.POST("/sessions", a.CreateSession)
	g.PUT("/sessions/:id", a.UpdateSession)
	g.DELETE("/sessions/:id", a.DeleteSession)
	g.GET("/registrations", a.ListRegistrations)
	g.POST("/reminders/run", a.RunReminders)
}
