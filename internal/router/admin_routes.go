package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/eco-stations/internal/handler"
	"github.com/iliyamo/eco-stations/internal/middleware"
	"github.com/iliyamo/eco-stations/internal/model"
)

// RegisterAdmin registers the admin panel under /admin.  All routes
// require a session with the ADMIN role; the checks run before any
// handler, so rejected requests never touch the database.
func RegisterAdmin(e *echo.Echo, a *handler.AdminHandler) {
	g := e.Group(
		"/admin",
		middleware.RequireAuth(),
		middleware.RequireRole(model.RoleAdmin),
	)
	g.GET("", a.Panel)

	// partial updates, JSON bodies
	g.PUT("/users/:id", a.UpdateUser)
	g.PUT("/stations/:id", a.UpdateStation)
	g.PUT("/reviews/:id", a.UpdateReview)
}
