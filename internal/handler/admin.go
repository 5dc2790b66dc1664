package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/iliyamo/eco-stations/internal/config"
	"github.com/iliyamo/eco-stations/internal/middleware"
	"github.com/iliyamo/eco-stations/internal/model"
	"github.com/iliyamo/eco-stations/internal/repository"
	"github.com/iliyamo/eco-stations/internal/utils"
)

// AdminHandler serves the admin panel and its partial updates.  Routes
// are registered behind RequireRole(model.RoleAdmin).
type AdminHandler struct {
	Cfg      config.Config
	Users    *repository.UserRepo
	Stations *repository.StationRepo
	Reviews  *repository.ReviewRepo
	Cache    CacheInvalidator
	Log      logrus.FieldLogger
}

func NewAdminHandler(cfg config.Config, users *repository.UserRepo, stations *repository.StationRepo,
	reviews *repository.ReviewRepo, cache CacheInvalidator, log logrus.FieldLogger) *AdminHandler {
	return &AdminHandler{Cfg: cfg, Users: users, Stations: stations, Reviews: reviews, Cache: cache, Log: log}
}

// ----- DTOs -----

// Each update body lists exactly the fields that may change.  Absent,
// null and blank values leave the column untouched; anything else in the
// body is rejected.

type userUpdateReq struct {
	Username *string `json:"username"`
	Email    *string `json:"email"`
	Role     *string `json:"role"`
	Password *string `json:"password"`
}

type stationUpdateReq struct {
	Name      *string  `json:"name"`
	Address   *string  `json:"address"`
	District  *string  `json:"district"`
	AdmArea   *string  `json:"admarea"`
	Owner     *string  `json:"owner"`
	EcoStatus *bool    `json:"eco_status"`
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
	TestDate  *string  `json:"test_date"`
}

type reviewUpdateReq struct {
	Rating  *int    `json:"rating"`
	Comment *string `json:"comment"`
}

// Panel lists users (newest first), stations (by id) and reviews
// (newest first).
func (h *AdminHandler) Panel(c echo.Context) error {
	ctx, cancel := requestContext(c)
	defer cancel()

	users, err := h.Users.List(ctx)
	if err != nil {
		return err
	}
	stations, err := h.Stations.List(ctx)
	if err != nil {
		return err
	}
	reviews, err := h.Reviews.ListAll(ctx)
	if err != nil {
		return err
	}
	return c.Render(http.StatusOK, "admin.html", echo.Map{
		"Users":    users,
		"Stations": stations,
		"Reviews":  reviews,
	})
}

func (h *AdminHandler) UpdateUser(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid user id"})
	}
	var req userUpdateReq
	if err := decodeStrict(c, &req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}

	var patch repository.UserPatch
	patch.Username = nonBlank(req.Username)
	patch.Email = nonBlank(req.Email)
	if err := model.CheckAccountFields(deref(patch.Username), deref(patch.Email)); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	if r := nonBlank(req.Role); r != nil {
		role, err := model.ParseRole(*r)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
		}
		patch.Role = &role
	}
	if req.Password != nil && *req.Password != "" {
		hash, err := utils.HashPassword(*req.Password, h.Cfg.BcryptCost)
		if err != nil {
			return err
		}
		patch.PasswordHash = &hash
	}

	ctx, cancel := requestContext(c)
	defer cancel()
	return h.finish(c, "user", id, h.Users.Update(ctx, id, patch))
}

func (h *AdminHandler) UpdateStation(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid station id"})
	}
	var req stationUpdateReq
	if err := decodeStrict(c, &req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}

	patch := repository.StationPatch{
		Name:      nonBlank(req.Name),
		Address:   nonBlank(req.Address),
		District:  nonBlank(req.District),
		AdmArea:   nonBlank(req.AdmArea),
		Owner:     nonBlank(req.Owner),
		EcoStatus: req.EcoStatus,
		Latitude:  req.Latitude,
		Longitude: req.Longitude,
	}
	if patch.Latitude != nil && (*patch.Latitude < -90 || *patch.Latitude > 90) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "latitude must be between -90 and 90"})
	}
	if patch.Longitude != nil && (*patch.Longitude < -180 || *patch.Longitude > 180) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "longitude must be between -180 and 180"})
	}
	if d := nonBlank(req.TestDate); d != nil {
		t, err := time.Parse("2006-01-02", *d)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "test_date must be YYYY-MM-DD"})
		}
		patch.TestDate = &t
	}

	ctx, cancel := requestContext(c)
	defer cancel()
	return h.finish(c, "station", id, h.Stations.Update(ctx, id, patch))
}

func (h *AdminHandler) UpdateReview(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid review id"})
	}
	var req reviewUpdateReq
	if err := decodeStrict(c, &req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}

	patch := repository.ReviewPatch{Rating: req.Rating, Comment: nonBlank(req.Comment)}
	if patch.Rating != nil && !model.ValidRating(*patch.Rating) {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error": fmt.Sprintf("rating must be from %d to %d", model.MinRating, model.MaxRating)})
	}
	if patch.Comment != nil && utf8.RuneCountInString(*patch.Comment) > model.MaxCommentLength {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error": fmt.Sprintf("comment must be at most %d characters", model.MaxCommentLength)})
	}

	ctx, cancel := requestContext(c)
	defer cancel()
	return h.finish(c, "review", id, h.Reviews.Update(ctx, id, patch))
}

// finish maps the repository result of an update to the response.
func (h *AdminHandler) finish(c echo.Context, kind string, id uint64, err error) error {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": kind + " not found"})
	case errors.Is(err, repository.ErrConflict):
		return c.JSON(http.StatusConflict, echo.Map{"error": msgUserExists})
	case err != nil:
		return err
	}
	invalidate(c.Request().Context(), h.Cache, h.Log)
	fields := logrus.Fields{kind + "_id": id}
	if p := middleware.CurrentPrincipal(c); p != nil {
		fields["admin_id"] = p.ID
	}
	h.Log.WithFields(fields).Info(kind + " updated by administrator")
	return c.JSON(http.StatusOK, echo.Map{"success": true})
}

// decodeStrict decodes a JSON object body into dst, rejecting unknown
// fields and trailing data.
func decodeStrict(c echo.Context, dst any) error {
	dec := json.NewDecoder(c.Request().Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("invalid body: %w", err)
	}
	if dec.More() {
		return errors.New("invalid body: trailing data")
	}
	return nil
}

func nonBlank(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
