package repository

import (
	"context"
	"database/sql"

	"github.com/iliyamo/eco-stations/internal/model"
)

// StatsRepo runs the read-only aggregation queries behind the home page,
// the statistics page and /api/stats.  Counting, averaging and grouping
// happen in MySQL; rounding and defaulting rules live in package model.
type StatsRepo struct{ DB *sql.DB }

func NewStatsRepo(db *sql.DB) *StatsRepo { return &StatsRepo{DB: db} }

// Totals counts all stations and eco stations.
func (r *StatsRepo) Totals(ctx context.Context) (model.StationTotals, error) {
	var t model.StationTotals
	err := r.DB.QueryRowContext(ctx,
		"SELECT COUNT(*), COALESCE(SUM(CASE WHEN eco_status THEN 1 ELSE 0 END), 0) FROM stations").
		Scan(&t.Total, &t.Eco)
	if err != nil {
		return model.StationTotals{}, err
	}
	t.EcoPercentage = model.EcoPercentage(t.Eco, t.Total)
	return t, nil
}

// ByAdmArea counts stations per administrative area.  Stations without
// an area are left out.
func (r *StatsRepo) ByAdmArea(ctx context.Context) (map[string]int, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT admarea, COUNT(*) FROM stations WHERE admarea IS NOT NULL GROUP BY admarea ORDER BY admarea")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string]int)
	for rows.Next() {
		var (
			area string
			n    int
		)
		if err := rows.Scan(&area, &n); err != nil {
			return nil, err
		}
		out[area] = n
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// AverageRatings computes the overall, eco-only and non-eco-only mean
// review rating.  Each defaults to 0 independently.
func (r *StatsRepo) AverageRatings(ctx context.Context) (model.AverageRatings, error) {
	const q = `SELECT COALESCE(AVG(r.rating), 0),
	                  COALESCE(AVG(CASE WHEN s.eco_status THEN r.rating END), 0),
	                  COALESCE(AVG(CASE WHEN NOT s.eco_status THEN r.rating END), 0)
	           FROM reviews r
	           JOIN stations s ON r.station_id = s.id`
	var overall, eco, nonEco sql.NullFloat64
	if err := r.DB.QueryRowContext(ctx, q).Scan(&overall, &eco, &nonEco); err != nil {
		return model.AverageRatings{}, err
	}
	return model.AverageRatings{
		Overall: model.RoundRating(overall.Float64),
		Eco:     model.RoundRating(eco.Float64),
		NonEco:  model.RoundRating(nonEco.Float64),
	}, nil
}

// ReviewsByMonth counts reviews per calendar month of creation, ordered
// by month number.  Months without reviews are absent.
func (r *StatsRepo) ReviewsByMonth(ctx context.Context) (model.MonthlyCounts, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT MONTH(created_at) AS month, COUNT(*) FROM reviews GROUP BY month ORDER BY month")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out model.MonthlyCounts
	for rows.Next() {
		var mc model.MonthCount
		if err := rows.Scan(&mc.Month, &mc.Count); err != nil {
			return nil, err
		}
		if model.MonthLabel(mc.Month) == "" {
			continue
		}
		out = append(out, mc)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Summary assembles the full statistics payload.
func (r *StatsRepo) Summary(ctx context.Context) (model.StatsSummary, error) {
	totals, err := r.Totals(ctx)
	if err != nil {
		return model.StatsSummary{}, err
	}
	byArea, err := r.ByAdmArea(ctx)
	if err != nil {
		return model.StatsSummary{}, err
	}
	avgs, err := r.AverageRatings(ctx)
	if err != nil {
		return model.StatsSummary{}, err
	}
	months, err := r.ReviewsByMonth(ctx)
	if err != nil {
		return model.StatsSummary{}, err
	}
	nonEco := totals.Total - totals.Eco
	return model.StatsSummary{
		TotalStations:  totals.Total,
		EcoStations:    totals.Eco,
		NonEcoStations: nonEco,
		EcoPercentage:  totals.EcoPercentage,
		ByDistrict:     byArea,
		EcoVsNonEco:    model.EcoSplit{Eco: totals.Eco, NonEco: nonEco},
		AverageRatings: avgs,
		ReviewsByMonth: months,
	}, nil
}
