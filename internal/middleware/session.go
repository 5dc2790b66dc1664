package middleware // middleware provides shared request processing for handlers

import (
	"context"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/eco-stations/internal/model"
	"github.com/iliyamo/eco-stations/internal/utils"
)

// SessionCookie is the name of the HTTP-only cookie carrying the session
// token.
const SessionCookie = "access_token"

const principalKey = "principal"

// lookupTimeout bounds the per-request user reload.
const lookupTimeout = 2 * time.Second

// assetPrefixes are paths served from disk that never need a caller.
var assetPrefixes = []string{"/static/", "/uploads/"}

// UserFinder loads the user a session token refers to.
type UserFinder interface {
	GetByID(ctx context.Context, id uint64) (model.User, error)
}

// Session resolves the caller from the session cookie, or from a Bearer
// Authorization header when no cookie is sent, and stores the principal
// in the context.  The user is reloaded on every request so that role
// changes and deletions take effect immediately.  A missing, invalid or
// expired token, or a token for a user that no longer exists, leaves the
// request anonymous; Session itself never rejects a request.  Static
// assets and uploads are passed through without a lookup.
func Session(secret string, users UserFinder) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if isAsset(c.Request().URL.Path) {
				return next(c)
			}
			raw := sessionToken(c)
			if raw == "" {
				return next(c)
			}
			id, _, err := utils.ParseSessionToken(secret, raw)
			if err != nil {
				return next(c)
			}
			ctx, cancel := context.WithTimeout(c.Request().Context(), lookupTimeout)
			u, err := users.GetByID(ctx, id)
			cancel()
			if err != nil {
				return next(c)
			}
			SetPrincipal(c, model.PrincipalOf(u))
			return next(c)
		}
	}
}

func isAsset(path string) bool {
	for _, p := range assetPrefixes {
		if strings.HasPrefix(path, p) {
			return true
		}
	}
	return false
}

func sessionToken(c echo.Context) string {
	if ck, err := c.Cookie(SessionCookie); err == nil && ck.Value != "" {
		return ck.Value
	}
	auth := c.Request().Header.Get(echo.HeaderAuthorization)
	if strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))
	}
	return ""
}

// SetPrincipal stores p as the authenticated caller.
func SetPrincipal(c echo.Context, p *model.Principal) {
	c.Set(principalKey, p)
}

// CurrentPrincipal returns the authenticated caller, or nil for an
// anonymous request.
func CurrentPrincipal(c echo.Context) *model.Principal {
	p, _ := c.Get(principalKey).(*model.Principal)
	return p
}
