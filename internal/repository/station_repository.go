// This file defines the station repository.  Stations are created by an
// external import, so the repository only reads them and applies
// administrator edits.

package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/eco-stations/internal/model"
)

const stationColumns = "s.id, s.name, s.address, s.district, s.admarea, s.owner, s.test_date, s.eco_status, s.latitude, s.longitude"

// StationRepo encapsulates all database queries related to stations.
type StationRepo struct {
	db *sql.DB
}

// NewStationRepo constructs a StationRepo with the provided DB handle.
func NewStationRepo(db *sql.DB) *StationRepo {
	return &StationRepo{db: db}
}

// GetByID fetches a station by its ID.  It returns ErrNotFound if no
// row matches.
func (r *StationRepo) GetByID(ctx context.Context, id uint64) (model.Station, error) {
	row := r.db.QueryRowContext(ctx, "SELECT "+stationColumns+" FROM stations s WHERE s.id = ?", id)
	st, err := scanStation(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Station{}, ErrNotFound
	}
	return st, err
}

// Exists reports whether a station with the given id exists.
func (r *StationRepo) Exists(ctx context.Context, id uint64) (bool, error) {
	var one int
	err := r.db.QueryRowContext(ctx, "SELECT 1 FROM stations WHERE id = ?", id).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// List returns all stations ordered by id.
func (r *StationRepo) List(ctx context.Context) ([]model.Station, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT "+stationColumns+" FROM stations s ORDER BY s.id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Station
	for rows.Next() {
		st, err := scanStation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, st)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// ListWithRatings returns all stations ordered by id, each with the mean
// rating of its reviews (0 without reviews) rounded to one decimal.
func (r *StationRepo) ListWithRatings(ctx context.Context) ([]model.StationWithRating, error) {
	const q = `SELECT ` + stationColumns + `, COALESCE(a.avg_rating, 0)
	           FROM stations s
	           LEFT JOIN (SELECT station_id, AVG(rating) AS avg_rating FROM reviews GROUP BY station_id) a
	             ON a.station_id = s.id
	           ORDER BY s.id`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.StationWithRating
	for rows.Next() {
		var (
			sw  model.StationWithRating
			avg float64
		)
		st, err := scanStation(rows, &avg)
		if err != nil {
			return nil, err
		}
		sw.Station = st
		sw.AverageRating = model.RoundRating(avg)
		out = append(out, sw)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// AverageRating returns the mean rating of a station's reviews rounded
// half up to one decimal, or 0 when it has none.
func (r *StationRepo) AverageRating(ctx context.Context, stationID uint64) (float64, error) {
	var avg float64
	err := r.db.QueryRowContext(ctx,
		"SELECT COALESCE(AVG(rating), 0) FROM reviews WHERE station_id = ?", stationID).Scan(&avg)
	if err != nil {
		return 0, err
	}
	return model.RoundRatingHalfUp(avg), nil
}

// Update applies the non-nil fields of p to station id.
func (r *StationRepo) Update(ctx context.Context, id uint64, p StationPatch) error {
	return updateByID(ctx, r.db, "stations", id, p.assignments())
}

// scanStation scans the stationColumns followed by any extra destinations.
func scanStation(s rowScanner, extra ...any) (model.Station, error) {
	var (
		st                                model.Station
		address, district, admarea, owner sql.NullString
		testDate                          sql.NullTime
		lat, lon                          sql.NullFloat64
	)
	dest := []any{&st.ID, &st.Name, &address, &district, &admarea, &owner, &testDate, &st.EcoStatus, &lat, &lon}
	if err := s.Scan(append(dest, extra...)...); err != nil {
		return model.Station{}, err
	}
	st.Address = address.String
	st.District = district.String
	st.AdmArea = admarea.String
	st.Owner = owner.String
	if testDate.Valid {
		d := testDate.Time
		st.TestDate = &d
	}
	if lat.Valid {
		v := lat.Float64
		st.Latitude = &v
	}
	if lon.Valid {
		v := lon.Float64
		st.Longitude = &v
	}
	return st, nil
}
