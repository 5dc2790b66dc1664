package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/iliyamo/eco-stations/internal/config"
	"github.com/iliyamo/eco-stations/internal/middleware"
	"github.com/iliyamo/eco-stations/internal/model"
	"github.com/iliyamo/eco-stations/internal/repository"
	"github.com/iliyamo/eco-stations/internal/utils"
)

// ProfileHandler serves the signed-in user's own pages.  Routes are
// registered behind RequireAuth.
type ProfileHandler struct {
	Cfg     config.Config
	Users   *repository.UserRepo
	Reviews *repository.ReviewRepo
	Log     logrus.FieldLogger
}

func NewProfileHandler(cfg config.Config, users *repository.UserRepo, reviews *repository.ReviewRepo, log logrus.FieldLogger) *ProfileHandler {
	return &ProfileHandler{Cfg: cfg, Users: users, Reviews: reviews, Log: log}
}

// Profile lists the user's reviews, newest first.
func (h *ProfileHandler) Profile(c echo.Context) error {
	p := middleware.CurrentPrincipal(c)

	ctx, cancel := requestContext(c)
	defer cancel()

	reviews, err := h.Reviews.ListByUser(ctx, p.ID)
	if err != nil {
		return err
	}
	return c.Render(http.StatusOK, "profile.html", echo.Map{
		"Reviews": reviews,
		"IsAdmin": p.IsAdmin(),
	})
}

func (h *ProfileHandler) EditPage(c echo.Context) error {
	return c.Render(http.StatusOK, "edit_profile.html", echo.Map{})
}

// Edit applies the non-empty form fields to the user's own account.
// A new password is re-hashed.
func (h *ProfileHandler) Edit(c echo.Context) error {
	p := middleware.CurrentPrincipal(c)

	username := strings.TrimSpace(c.FormValue("username"))
	email := strings.TrimSpace(c.FormValue("email"))
	if err := model.CheckAccountFields(username, email); err != nil {
		return c.Render(http.StatusBadRequest, "edit_profile.html", echo.Map{"Error": err.Error()})
	}

	var patch repository.UserPatch
	if username != "" {
		patch.Username = &username
	}
	if email != "" {
		patch.Email = &email
	}
	if v := c.FormValue("password"); v != "" {
		hash, err := utils.HashPassword(v, h.Cfg.BcryptCost)
		if err != nil {
			return err
		}
		patch.PasswordHash = &hash
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	if err := h.Users.Update(ctx, p.ID, patch); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return c.Render(http.StatusConflict, "edit_profile.html", echo.Map{"Error": msgUserExists})
		}
		if errors.Is(err, repository.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "user not found")
		}
		return err
	}
	h.Log.WithField("user_id", p.ID).Info("profile updated")
	return c.Redirect(http.StatusFound, "/profile")
}
