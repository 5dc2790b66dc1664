package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/eco-stations/internal/model"
)

func TestRequestLogger(t *testing.T) {
	log, hook := test.NewNullLogger()
	e := echo.New()

	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/station/3", nil), rec)
	c.SetPath("/station/:id")
	SetPrincipal(c, &model.Principal{ID: 5})

	h := RequestLogger(log)(func(c echo.Context) error {
		return echo.NewHTTPError(http.StatusNotFound, "station not found")
	})
	require.NoError(t, h(c))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	entry := hook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, logrus.WarnLevel, entry.Level)
	assert.Equal(t, "/station/:id", entry.Data["route"])
	assert.Equal(t, http.StatusNotFound, entry.Data["status"])
	assert.Equal(t, "5", entry.Data["user_id"])
}
