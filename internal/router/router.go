// Package router registers the HTTP routes and their middleware.
package router

import (
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/auth-service/internal/handler"
	"github.com/iliyamo/auth-service/internal/middleware"
	"github.com/iliyamo/auth-service/internal/model"
)

// RegisterRoutes registers the unauthenticated service endpoints.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/", handler.Root)
	e.GET("/healthz", handler.Health)
}

// RegisterAuth mounts the auth API under /api/auth.  Register and login are
// public; everything else runs SessionAuth followed by RequireRole.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, p *handler.ProfileHandler, sessions middleware.Authenticator, log *zap.Logger) {
	g := e.Group("/api/auth")
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)

	protected := g.Group("")
	protected.Use(middleware.SessionAuth(sessions, log))
	protected.Use(middleware.RequireRole(model.RoleUser, model.RoleSeller))

	protected.GET("/me", a.Me)
	protected.GET("/logout", a.Logout)

	protected.GET("/users/me", p.GetUser)
	protected.PATCH("/users/me", p.UpdateUser)
	protected.POST("/users/me/addresses", p.AddAddress)
	protected.PATCH("/users/me/addresses/:addressId", p.UpdateAddress)
	protected.DELETE("/users/me/addresses/:addressId", p.DeleteAddress)
}
