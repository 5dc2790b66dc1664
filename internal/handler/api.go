package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/eco-stations/internal/model"
	"github.com/iliyamo/eco-stations/internal/repository"
)

// APIHandler serves the JSON endpoints used by the map and statistics
// pages.
type APIHandler struct {
	Stations *repository.StationRepo
	Stats    *repository.StatsRepo
}

func NewAPIHandler(stations *repository.StationRepo, stats *repository.StatsRepo) *APIHandler {
	return &APIHandler{Stations: stations, Stats: stats}
}

type stationJSON struct {
	ID            uint64   `json:"id"`
	Name          string   `json:"name"`
	Address       string   `json:"address"`
	District      string   `json:"district"`
	AdmArea       string   `json:"admarea"`
	Owner         string   `json:"owner"`
	TestDate      *string  `json:"test_date"`
	EcoStatus     bool     `json:"eco_status"`
	Latitude      *float64 `json:"latitude"`
	Longitude     *float64 `json:"longitude"`
	AverageRating float64  `json:"average_rating"`
}

func toStationJSON(s model.StationWithRating) stationJSON {
	out := stationJSON{
		ID:            s.ID,
		Name:          s.Name,
		Address:       s.Address,
		District:      s.District,
		AdmArea:       s.AdmArea,
		Owner:         s.Owner,
		EcoStatus:     s.EcoStatus,
		Latitude:      s.Latitude,
		Longitude:     s.Longitude,
		AverageRating: s.AverageRating,
	}
	if s.TestDate != nil {
		d := s.TestDate.Format("2006-01-02")
		out.TestDate = &d
	}
	return out
}

// ListStations lists every station with its average rating.
func (h *APIHandler) ListStations(c echo.Context) error {
	ctx, cancel := requestContext(c)
	defer cancel()

	list, err := h.Stations.ListWithRatings(ctx)
	if err != nil {
		return err
	}
	out := make([]stationJSON, 0, len(list))
	for _, s := range list {
		out = append(out, toStationJSON(s))
	}
	return c.JSON(http.StatusOK, out)
}

// GetStats returns the aggregate statistics.
func (h *APIHandler) GetStats(c echo.Context) error {
	ctx, cancel := requestContext(c)
	defer cancel()

	s, err := h.Stats.Summary(ctx)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, s)
}
