package middleware

// identity.go holds the caller identification shared by the rate limiter
// and the request logger.

import (
	"strconv"

	"github.com/labstack/echo/v4"
)

// userID returns the principal's id as a string, or "anon" when the
// request is not authenticated.
func userID(c echo.Context) string {
	if p := CurrentPrincipal(c); p != nil {
		return strconv.FormatUint(p.ID, 10)
	}
	return "anon"
}
