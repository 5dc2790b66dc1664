package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/eco-stations/internal/repository"
)

// PageHandler serves the mostly static pages.  The map and statistics
// pages load their data from the JSON API in the browser.
type PageHandler struct {
	Stats *repository.StatsRepo
	Now   func() time.Time
}

func NewPageHandler(stats *repository.StatsRepo) *PageHandler {
	return &PageHandler{Stats: stats, Now: time.Now}
}

// Home shows the station totals and today's date as dd.mm.yyyy.
func (h *PageHandler) Home(c echo.Context) error {
	ctx, cancel := requestContext(c)
	defer cancel()

	t, err := h.Stats.Totals(ctx)
	if err != nil {
		return err
	}
	return c.Render(http.StatusOK, "index.html", echo.Map{
		"TotalStations": t.Total,
		"EcoStations":   t.Eco,
		"EcoPercentage": t.EcoPercentage,
		"LastUpdate":    h.Now().Format("02.01.2006"),
	})
}

func (h *PageHandler) Map(c echo.Context) error {
	return c.Render(http.StatusOK, "map.html", echo.Map{})
}

func (h *PageHandler) StatsPage(c echo.Context) error {
	return c.Render(http.StatusOK, "stats.html", echo.Map{})
}

func (h *PageHandler) About(c echo.Context) error {
	return c.Render(http.StatusOK, "about.html", echo.Map{})
}
