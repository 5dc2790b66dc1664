package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/iliyamo/eco-stations/internal/model"
)

// ReviewRepo persists station reviews.
type ReviewRepo struct{ DB *sql.DB }

func NewReviewRepo(db *sql.DB) *ReviewRepo { return &ReviewRepo{DB: db} }

// Create inserts rv and fills in its ID and CreatedAt.  The referenced
// user and station must exist; the foreign keys reject anything else.
func (r *ReviewRepo) Create(ctx context.Context, rv *model.Review) error {
	rv.CreatedAt = time.Now().UTC().Truncate(time.Second)
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO reviews (user_id, station_id, rating, comment, image_url, created_at) VALUES (?, ?, ?, ?, ?, ?)",
		rv.UserID, rv.StationID, rv.Rating, rv.Comment, nullString(rv.ImageURL), rv.CreatedAt)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	rv.ID = uint64(id)
	return nil
}

// ListByStation returns a station's reviews with author usernames, newest first.
func (r *ReviewRepo) ListByStation(ctx context.Context, stationID uint64) ([]model.ReviewView, error) {
	const q = `SELECT r.id, r.user_id, r.station_id, r.rating, r.comment, r.image_url, r.created_at, u.username, s.name
	           FROM reviews r
	           JOIN users u ON r.user_id = u.id
	           JOIN stations s ON r.station_id = s.id
	           WHERE r.station_id = ?
	           ORDER BY r.created_at DESC, r.id DESC`
	return r.list(ctx, q, stationID)
}

// ListByUser returns a user's reviews with station names, newest first.
func (r *ReviewRepo) ListByUser(ctx context.Context, userID uint64) ([]model.ReviewView, error) {
	const q = `SELECT r.id, r.user_id, r.station_id, r.rating, r.comment, r.image_url, r.created_at, u.username, s.name
	           FROM reviews r
	           JOIN users u ON r.user_id = u.id
	           JOIN stations s ON r.station_id = s.id
	           WHERE r.user_id = ?
	           ORDER BY r.created_at DESC, r.id DESC`
	return r.list(ctx, q, userID)
}

// ListAll returns every review for the admin panel, newest first.
func (r *ReviewRepo) ListAll(ctx context.Context) ([]model.ReviewView, error) {
	const q = `SELECT r.id, r.user_id, r.station_id, r.rating, r.comment, r.image_url, r.created_at, u.username, s.name
	           FROM reviews r
	           LEFT JOIN users u ON r.user_id = u.id
	           LEFT JOIN stations s ON r.station_id = s.id
	           ORDER BY r.created_at DESC, r.id DESC`
	return r.list(ctx, q)
}

// Update applies the non-nil fields of p to review id.
func (r *ReviewRepo) Update(ctx context.Context, id uint64, p ReviewPatch) error {
	return updateByID(ctx, r.DB, "reviews", id, p.assignments())
}

func (r *ReviewRepo) list(ctx context.Context, q string, args ...any) ([]model.ReviewView, error) {
	rows, err := r.DB.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.ReviewView
	for rows.Next() {
		var (
			v                                 model.ReviewView
			comment, image, username, station sql.NullString
		)
		if err := rows.Scan(&v.ID, &v.UserID, &v.StationID, &v.Rating, &comment, &image, &v.CreatedAt, &username, &station); err != nil {
			return nil, err
		}
		v.Comment = comment.String
		v.ImageURL = image.String
		v.Username = username.String
		v.StationName = station.String
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
