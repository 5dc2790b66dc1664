package handler

import (
	"context"
	"database/sql"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/eco-stations/internal/queue"
)

// recordingRenderer remembers the last template rendered and its data.
type recordingRenderer struct {
	name string
	data echo.Map
}

func (r *recordingRenderer) Render(w io.Writer, name string, data interface{}, _ echo.Context) error {
	r.name = name
	r.data, _ = data.(echo.Map)
	_, err := io.WriteString(w, name)
	return err
}

type fakeCache struct{ calls int }

func (f *fakeCache) Invalidate(context.Context) error {
	f.calls++
	return nil
}

type fakePublisher struct {
	events    []queue.ReviewCreatedEvent
	deadlines []time.Time
}

func (f *fakePublisher) PublishReviewCreated(ctx context.Context, ev queue.ReviewCreatedEvent) error {
	f.events = append(f.events, ev)
	dl, _ := ctx.Deadline()
	f.deadlines = append(f.deadlines, dl)
	return nil
}

func newMock(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, mock.ExpectationsWereMet())
		db.Close()
	})
	return db, mock
}

func nullLogger() logrus.FieldLogger {
	l, _ := logtest.NewNullLogger()
	return l
}

// newContext builds an echo context for a request with the given body
// and content type.  Path parameters are set as name/value pairs.
func newContext(method, target, body, contentType string, params ...string) (echo.Context, *httptest.ResponseRecorder, *recordingRenderer) {
	e := echo.New()
	rr := &recordingRenderer{}
	e.Renderer = rr
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, r)
	if contentType != "" {
		req.Header.Set(echo.HeaderContentType, contentType)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	var names, values []string
	for i := 0; i+1 < len(params); i += 2 {
		names = append(names, params[i])
		values = append(values, params[i+1])
	}
	c.SetParamNames(names...)
	c.SetParamValues(values...)
	return c, rec, rr
}

func httpCode(t *testing.T, err error) int {
	t.Helper()
	he, ok := err.(*echo.HTTPError)
	require.True(t, ok, "expected *echo.HTTPError, got %v", err)
	return he.Code
}
