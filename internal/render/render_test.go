package render

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/eco-stations/internal/model"
)

func newContext() echo.Context {
	return echo.New().NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
}

func TestAllPagesParse(t *testing.T) {
	r, err := New(nil)
	require.NoError(t, err)
	for _, name := range []string{
		"index.html", "map.html", "stats.html", "about.html", "login.html", "register.html",
		"profile.html", "edit_profile.html", "station.html", "admin.html", "error.html",
	} {
		_, ok := r.pages[name]
		assert.True(t, ok, name)
	}
	_, ok := r.pages["layout.html"]
	assert.False(t, ok)
}

func TestRenderIndexInjectsPrincipal(t *testing.T) {
	admin := &model.Principal{ID: 1, Username: "superadmin", Role: model.RoleAdmin}
	r, err := New(func(echo.Context) *model.Principal { return admin })
	require.NoError(t, err)

	var buf bytes.Buffer
	err = r.Render(&buf, "index.html", echo.Map{
		"TotalStations": 10,
		"EcoStations":   4,
		"EcoPercentage": 40,
		"LastUpdate":    "01.03.2024",
	}, newContext())
	require.NoError(t, err)
	out := buf.String()
	assert.Contains(t, out, "40%")
	assert.Contains(t, out, "01.03.2024")
	assert.Contains(t, out, "superadmin")
	assert.Contains(t, out, `href="/admin"`)
}

func TestRenderAnonymousHeader(t *testing.T) {
	r, err := New(func(echo.Context) *model.Principal { return nil })
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, r.Render(&buf, "about.html", echo.Map{}, newContext()))
	assert.Contains(t, buf.String(), `href="/login"`)
	assert.NotContains(t, buf.String(), `href="/logout"`)
}

func TestRenderStationEscapesContent(t *testing.T) {
	r, err := New(nil)
	require.NoError(t, err)
	tested := time.Date(2023, 5, 17, 0, 0, 0, 0, time.UTC)

	var buf bytes.Buffer
	err = r.Render(&buf, "station.html", echo.Map{
		"User":      (*model.Principal)(nil),
		"Station":   model.Station{ID: 3, Name: "ЭЗС", TestDate: &tested, EcoStatus: true},
		"AvgRating": 4.0,
		"Reviews": []model.ReviewView{{
			Review:   model.Review{ID: 1, Rating: 4, Comment: "<script>alert(1)</script>"},
			Username: "bob",
		}},
	}, newContext())
	require.NoError(t, err)
	out := buf.String()
	assert.Contains(t, out, "17.05.2023")
	assert.Contains(t, out, "4.0")
	assert.Contains(t, out, "★★★★☆")
	assert.NotContains(t, out, "<script>alert(1)</script>")
}

func TestRenderUnknownTemplate(t *testing.T) {
	r, err := New(nil)
	require.NoError(t, err)
	assert.Error(t, r.Render(&bytes.Buffer{}, "missing.html", echo.Map{}, newContext()))
}

func TestFormatDate(t *testing.T) {
	d := time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, "05.01.2024", formatDate(d))
	assert.Equal(t, "05.01.2024", formatDate(&d))
	assert.Equal(t, "-", formatDate((*time.Time)(nil)))
	assert.Equal(t, "-", formatDate(time.Time{}))
}
