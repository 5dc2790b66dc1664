package handler // handler defines http handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/iliyamo/eco-stations/internal/queue"
)

// requestTimeout bounds the database work of a single request.
const requestTimeout = 5 * time.Second

// CacheInvalidator drops cached API responses after a write.
type CacheInvalidator interface {
	Invalidate(ctx context.Context) error
}

// EventPublisher announces stored reviews.
type EventPublisher interface {
	PublishReviewCreated(ctx context.Context, ev queue.ReviewCreatedEvent) error
}

func requestContext(c echo.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request().Context(), requestTimeout)
}

// parseID reads a positive numeric path parameter.
func parseID(c echo.Context, name string) (uint64, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, errors.New("invalid " + name)
	}
	return id, nil
}

// invalidate drops cached responses; a failure only costs freshness.
func invalidate(ctx context.Context, cache CacheInvalidator, log logrus.FieldLogger) {
	if cache == nil {
		return
	}
	if err := cache.Invalidate(ctx); err != nil {
		log.WithError(err).Warn("response cache invalidation failed")
	}
}

// wantsJSON reports whether an error for this request should be sent as
// JSON rather than as an HTML page.
func wantsJSON(c echo.Context) bool {
	r := c.Request()
	if strings.HasPrefix(r.URL.Path, "/api/") || r.Method == http.MethodPut {
		return true
	}
	return strings.Contains(r.Header.Get(echo.HeaderAccept), echo.MIMEApplicationJSON)
}

// ErrorHandler replaces echo's default error handler.  API and admin
// update requests get {"error": "..."}; page requests get the rendered
// error page.  Internal errors are logged and reported without detail.
func ErrorHandler(log logrus.FieldLogger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}
		code := http.StatusInternalServerError
		msg := http.StatusText(code)
		var he *echo.HTTPError
		if errors.As(err, &he) {
			code = he.Code
			if m, ok := he.Message.(string); ok {
				msg = m
			} else {
				msg = http.StatusText(code)
			}
		}
		if code >= http.StatusInternalServerError {
			log.WithError(err).WithField("path", c.Request().URL.Path).Error("request failed")
			msg = http.StatusText(code)
		}

		var werr error
		switch {
		case c.Request().Method == http.MethodHead:
			werr = c.NoContent(code)
		case wantsJSON(c) || c.Echo().Renderer == nil:
			werr = c.JSON(code, echo.Map{"error": msg})
		default:
			werr = c.Render(code, "error.html", echo.Map{"Code": code, "Message": msg})
		}
		if werr != nil {
			log.WithError(werr).Error("write error response")
		}
	}
}
