package router // package router defines how HTTP routes are registered on the echo instance

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/eco-stations/internal/handler"
	"github.com/iliyamo/eco-stations/internal/metrics"
)

// RegisterRoutes registers the operational endpoints: the health check
// used by load balancers and the Prometheus scrape endpoint.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
	e.GET("/metrics", echo.WrapHandler(metrics.Handler()))
}

// RegisterStatic serves the stylesheet directory under /static and, for
// the local upload backend, the upload directory under /uploads.  An
// empty uploadDir skips the latter.
func RegisterStatic(e *echo.Echo, staticDir, uploadDir string) {
	e.Static("/static", staticDir)
	if uploadDir != "" {
		e.Static("/uploads", uploadDir)
	}
}

// RegisterPages registers the public HTML pages.
func RegisterPages(e *echo.Echo, p *handler.PageHandler) {
	e.GET("/", p.Home)
	e.GET("/map", p.Map)
	e.GET("/stats", p.StatsPage)
	e.GET("/about", p.About)
}

// RegisterAuth registers login, registration and logout.  The form posts
// run behind the given middleware (the rate limiter in production).
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, limit ...echo.MiddlewareFunc) {
	e.GET("/login", a.LoginPage)
	e.POST("/login", a.Login, limit...)
	e.GET("/register", a.RegisterPage)
	e.POST("/register", a.Register, limit...)
	e.GET("/logout", a.Logout)
}

// RegisterAPI registers the JSON endpoints under /api.  The station list
// and statistics are read-only and run behind the response cache; /api/me
// depends on the caller and is never cached.
func RegisterAPI(e *echo.Echo, a *handler.APIHandler, me echo.HandlerFunc, cache ...echo.MiddlewareFunc) {
	g := e.Group("/api")
	g.GET("/stations", a.ListStations, cache...)
	g.GET("/stats", a.GetStats, cache...)
	g.GET("/me", me)
}
