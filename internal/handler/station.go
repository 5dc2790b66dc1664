package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/iliyamo/eco-stations/internal/metrics"
	"github.com/iliyamo/eco-stations/internal/middleware"
	"github.com/iliyamo/eco-stations/internal/model"
	"github.com/iliyamo/eco-stations/internal/queue"
	"github.com/iliyamo/eco-stations/internal/repository"
	"github.com/iliyamo/eco-stations/internal/storage"
)

const (
	// publishTimeout bounds the review event publish after the insert.
	publishTimeout = 3 * time.Second
	// cleanupTimeout bounds removing an image whose review was not saved.
	cleanupTimeout = 5 * time.Second
)

// StationHandler serves the station page and review submission.
type StationHandler struct {
	Stations  *repository.StationRepo
	Reviews   *repository.ReviewRepo
	Store     storage.Store
	MaxUpload int64
	Cache     CacheInvalidator
	Events    EventPublisher
	Log       logrus.FieldLogger
	Now       func() time.Time
}

func NewStationHandler(stations *repository.StationRepo, reviews *repository.ReviewRepo, store storage.Store, maxUpload int64,
	cache CacheInvalidator, events EventPublisher, log logrus.FieldLogger) *StationHandler {
	return &StationHandler{
		Stations:  stations,
		Reviews:   reviews,
		Store:     store,
		MaxUpload: maxUpload,
		Cache:     cache,
		Events:    events,
		Log:       log,
		Now:       time.Now,
	}
}

// Detail shows one station with its reviews and average rating.
func (h *StationHandler) Detail(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid station id")
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	st, err := h.Stations.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "station not found")
		}
		return err
	}
	reviews, err := h.Reviews.ListByStation(ctx, id)
	if err != nil {
		return err
	}
	avg, err := h.Stations.AverageRating(ctx, id)
	if err != nil {
		return err
	}
	return c.Render(http.StatusOK, "station.html", echo.Map{
		"Station":   st,
		"Reviews":   reviews,
		"AvgRating": avg,
	})
}

// SubmitReview stores a review from the multipart form (rating, comment
// and an optional image) for the signed-in user and redirects back to
// the station page.
func (h *StationHandler) SubmitReview(c echo.Context) error {
	p := middleware.CurrentPrincipal(c)
	if p == nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
	}
	id, err := parseID(c, "id")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid station id")
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	st, err := h.Stations.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "station not found")
		}
		return err
	}

	rating, err := strconv.Atoi(strings.TrimSpace(c.FormValue("rating")))
	if err != nil || !model.ValidRating(rating) {
		return echo.NewHTTPError(http.StatusBadRequest,
			fmt.Sprintf("rating must be a whole number from %d to %d", model.MinRating, model.MaxRating))
	}
	comment := strings.TrimSpace(c.FormValue("comment"))
	if utf8.RuneCountInString(comment) > model.MaxCommentLength {
		return echo.NewHTTPError(http.StatusBadRequest,
			fmt.Sprintf("comment must be at most %d characters", model.MaxCommentLength))
	}

	now := h.Now()
	imageName, imageURL, err := h.saveImage(ctx, c, p.ID, id, now)
	if err != nil {
		return err
	}

	rv := &model.Review{UserID: p.ID, StationID: id, Rating: rating, Comment: comment, ImageURL: imageURL}
	if err := h.Reviews.Create(ctx, rv); err != nil {
		if imageName != "" {
			h.discardImage(ctx, imageName)
		}
		return err
	}
	metrics.ReviewCreated()
	h.Log.WithFields(logrus.Fields{"review_id": rv.ID, "station_id": id, "user_id": p.ID}).Info("review created")

	invalidate(ctx, h.Cache, h.Log)
	if h.Events != nil {
		pctx, pcancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
		defer pcancel()
		_ = h.Events.PublishReviewCreated(pctx, queue.ReviewCreatedEvent{
			ReviewID:    rv.ID,
			UserID:      p.ID,
			Username:    p.Username,
			StationID:   id,
			StationName: st.Name,
			Rating:      rating,
			ImageURL:    imageURL,
			CreatedAt:   rv.CreatedAt.Format(time.RFC3339),
		})
	}
	return c.Redirect(http.StatusFound, "/station/"+strconv.FormatUint(id, 10))
}

// saveImage stores the optional "image" file and returns the stored
// name and its URL, both "" when none was sent.  A name already taken
// in the same second gets a numeric suffix.
func (h *StationHandler) saveImage(ctx context.Context, c echo.Context, userID, stationID uint64, now time.Time) (string, string, error) {
	fh, err := c.FormFile("image")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
			return "", "", nil
		}
		return "", "", echo.NewHTTPError(http.StatusBadRequest, "invalid upload")
	}
	if fh.Filename == "" || fh.Size == 0 {
		return "", "", nil
	}
	if h.MaxUpload > 0 && fh.Size > h.MaxUpload {
		return "", "", echo.NewHTTPError(http.StatusRequestEntityTooLarge, "image is too large")
	}
	if h.Store == nil {
		return "", "", echo.NewHTTPError(http.StatusServiceUnavailable, "image upload is not available")
	}
	f, err := fh.Open()
	if err != nil {
		return "", "", err
	}
	defer f.Close()

	name := storage.ReviewImageName(userID, stationID, now, fh.Filename)
	stored, url, err := storage.SaveUnique(ctx, h.Store, name, f, fh.Header.Get(echo.HeaderContentType))
	if errors.Is(err, storage.ErrExists) {
		return "", "", echo.NewHTTPError(http.StatusConflict, "too many uploads, try again")
	}
	if err != nil {
		return "", "", err
	}
	metrics.ReviewImageStored(h.Store.Backend())
	return stored, url, nil
}

// discardImage removes an image whose review row was not written.
func (h *StationHandler) discardImage(ctx context.Context, name string) {
	dctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), cleanupTimeout)
	defer cancel()
	if err := h.Store.Delete(dctx, name); err != nil {
		h.Log.WithError(err).WithField("image", name).Warn("orphaned review image")
	}
}
