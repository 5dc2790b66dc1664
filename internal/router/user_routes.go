package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/eco-stations/internal/handler"
	"github.com/iliyamo/eco-stations/internal/middleware"
)

// RegisterStations registers the station page and review submission.
// Anyone may read a station; posting a review requires a session.
func RegisterStations(e *echo.Echo, s *handler.StationHandler, limit ...echo.MiddlewareFunc) {
	e.GET("/station/:id", s.Detail)

	mw := append([]echo.MiddlewareFunc{middleware.RequireAuth()}, limit...)
	e.POST("/station/:id/review", s.SubmitReview, mw...)
}

// RegisterProfile registers the signed-in user's own pages.  All routes
// require a session.
func RegisterProfile(e *echo.Echo, p *handler.ProfileHandler) {
	g := e.Group("/profile", middleware.RequireAuth())
	g.GET("", p.Profile)
	g.GET("/edit", p.EditPage)
	g.POST("/edit", p.Edit)
}
