package handler

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/iliyamo/eco-stations/internal/config"
	"github.com/iliyamo/eco-stations/internal/metrics"
	"github.com/iliyamo/eco-stations/internal/middleware"
	"github.com/iliyamo/eco-stations/internal/model"
	"github.com/iliyamo/eco-stations/internal/repository"
	"github.com/iliyamo/eco-stations/internal/utils"
)

const (
	msgInvalidCredentials = "invalid email or password"
	msgUserExists         = "email or username already exists"
)

// AuthHandler bundles dependencies for the login, registration and
// logout pages.
type AuthHandler struct {
	Cfg   config.Config
	Users *repository.UserRepo
	Log   logrus.FieldLogger
}

func NewAuthHandler(cfg config.Config, u *repository.UserRepo, log logrus.FieldLogger) *AuthHandler {
	return &AuthHandler{Cfg: cfg, Users: u, Log: log}
}

// LoginPage renders the login form; signed-in users go home.
func (h *AuthHandler) LoginPage(c echo.Context) error {
	if middleware.CurrentPrincipal(c) != nil {
		return c.Redirect(http.StatusFound, "/")
	}
	return c.Render(http.StatusOK, "login.html", echo.Map{})
}

// RegisterPage renders the registration form; signed-in users go home.
func (h *AuthHandler) RegisterPage(c echo.Context) error {
	if middleware.CurrentPrincipal(c) != nil {
		return c.Redirect(http.StatusFound, "/")
	}
	return c.Render(http.StatusOK, "register.html", echo.Map{})
}

// Login verifies the form credentials, sets the session cookie and
// redirects home.  Unknown emails and wrong passwords are reported the
// same way and take about the same time.
func (h *AuthHandler) Login(c echo.Context) error {
	email := repository.NormalizeEmail(c.FormValue("email"))
	password := c.FormValue("password")
	if email == "" || password == "" {
		metrics.AuthAttempt("login", "invalid_input")
		return h.loginForm(c, http.StatusBadRequest, "email and password are required", email)
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	u, err := h.Users.GetByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			return err
		}
		utils.BurnPasswordCheck(password)
		metrics.AuthAttempt("login", "invalid_credentials")
		return h.loginForm(c, http.StatusBadRequest, msgInvalidCredentials, email)
	}
	if !utils.VerifyPassword(u.PasswordHash, password) {
		metrics.AuthAttempt("login", "invalid_credentials")
		return h.loginForm(c, http.StatusBadRequest, msgInvalidCredentials, email)
	}

	if err := h.startSession(c, u.ID, u.Role); err != nil {
		return err
	}
	metrics.AuthAttempt("login", "success")
	h.Log.WithField("user_id", u.ID).Info("user logged in")
	return c.Redirect(http.StatusFound, "/")
}

// Register creates a USER account from the form, signs it in and
// redirects home.  A taken email or username is a conflict.
func (h *AuthHandler) Register(c echo.Context) error {
	username := strings.TrimSpace(c.FormValue("username"))
	email := repository.NormalizeEmail(c.FormValue("email"))
	password := c.FormValue("password")
	if username == "" || email == "" || password == "" {
		metrics.AuthAttempt("register", "invalid_input")
		return h.registerForm(c, http.StatusBadRequest, "username, email and password are required", username, email)
	}
	if err := model.CheckAccountFields(username, email); err != nil {
		metrics.AuthAttempt("register", "invalid_input")
		return h.registerForm(c, http.StatusBadRequest, err.Error(), username, email)
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	taken, err := h.Users.ExistsByEmailOrUsername(ctx, email, username)
	if err != nil {
		return err
	}
	if taken {
		metrics.AuthAttempt("register", "conflict")
		return h.registerForm(c, http.StatusConflict, msgUserExists, username, email)
	}

	uid, err := h.Users.Create(ctx, username, email, password, model.RoleUser, h.Cfg.BcryptCost)
	if err != nil {
		if errors.Is(err, repository.ErrConflict) {
			metrics.AuthAttempt("register", "conflict")
			return h.registerForm(c, http.StatusConflict, msgUserExists, username, email)
		}
		return err
	}

	if err := h.startSession(c, uid, model.RoleUser); err != nil {
		return err
	}
	metrics.AuthAttempt("register", "success")
	h.Log.WithField("user_id", uid).Info("user registered")
	return c.Redirect(http.StatusFound, "/")
}

// Logout clears the session cookie.
func (h *AuthHandler) Logout(c echo.Context) error {
	c.SetCookie(&http.Cookie{
		Name:     middleware.SessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		HttpOnly: true,
		Secure:   h.Cfg.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
	return c.Redirect(http.StatusFound, "/")
}

// Me returns the signed-in principal as JSON.
func (h *AuthHandler) Me(c echo.Context) error {
	p := middleware.CurrentPrincipal(c)
	if p == nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
	}
	return c.JSON(http.StatusOK, p)
}

func (h *AuthHandler) startSession(c echo.Context, userID uint64, role model.Role) error {
	tok, err := utils.NewSessionToken(h.Cfg.JWTSecret, userID, string(role), h.Cfg.SessionTTL)
	if err != nil {
		return err
	}
	c.SetCookie(&http.Cookie{
		Name:     middleware.SessionCookie,
		Value:    tok.Token,
		Path:     "/",
		MaxAge:   int(h.Cfg.SessionTTL / time.Second),
		Expires:  tok.Exp,
		HttpOnly: true,
		Secure:   h.Cfg.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

func (h *AuthHandler) loginForm(c echo.Context, code int, msg, email string) error {
	return c.Render(code, "login.html", echo.Map{"Error": msg, "Email": email})
}

func (h *AuthHandler) registerForm(c echo.Context, code int, msg, username, email string) error {
	return c.Render(code, "register.html", echo.Map{"Error": msg, "Username": username, "Email": email})
}
