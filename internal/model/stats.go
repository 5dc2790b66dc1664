package model

import (
	"bytes"
	"encoding/json"
	"math"
)

// monthLabels maps calendar month numbers to the labels used in the
// monthly review breakdown.
var monthLabels = [12]string{
	"Янв", "Фев", "Март", "Апр", "Май", "Июнь",
	"Июль", "Авг", "Сен", "Окт", "Ноя", "Дек",
}

// MonthLabel returns the label for month m (1..12), or "" when m is out
// of range.
func MonthLabel(m int) string {
	if m < 1 || m > 12 {
		return ""
	}
	return monthLabels[m-1]
}

// EcoPercentage returns eco/total*100 rounded half to even, or 0 when
// there are no stations at all.  1 of 8 is 12.
func EcoPercentage(eco, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.RoundToEven(float64(eco) / float64(total) * 100))
}

// ratingScale is the precision MySQL reports AVG over integer columns
// with.  Averages are snapped to it first so that a tie such as 2.25 is
// not lost to binary representation error.
const ratingScale = 1e4

// RoundRating rounds an average rating to one decimal place, ties to
// even (2.25 becomes 2.2).  The API and statistics use it.
func RoundRating(avg float64) float64 {
	if math.IsNaN(avg) || math.IsInf(avg, 0) {
		return 0
	}
	tenths := math.Round(avg*ratingScale) / (ratingScale / 10)
	return math.RoundToEven(tenths) / 10
}

// RoundRatingHalfUp rounds an average rating to one decimal place with
// ties away from zero (2.25 becomes 2.3), as SQL ROUND does.  The station
// page uses it.
func RoundRatingHalfUp(avg float64) float64 {
	if math.IsNaN(avg) || math.IsInf(avg, 0) {
		return 0
	}
	tenths := math.Round(avg*ratingScale) / (ratingScale / 10)
	return math.Round(tenths) / 10
}

// MonthCount is one entry of the monthly review breakdown.
type MonthCount struct {
	Month int
	Count int
}

// MonthlyCounts holds review counts ordered by month number.  Months
// without reviews are absent.  It encodes as a JSON object keyed by
// month label, keeping month order rather than key order.
type MonthlyCounts []MonthCount

// MarshalJSON implements json.Marshaler.
func (m MonthlyCounts) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, mc := range m {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(MonthLabel(mc.Month))
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		val, err := json.Marshal(mc.Count)
		if err != nil {
			return nil, err
		}
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Get returns the count recorded for month m, or 0.
func (m MonthlyCounts) Get(month int) int {
	for _, mc := range m {
		if mc.Month == month {
			return mc.Count
		}
	}
	return 0
}

// EcoSplit is the eco vs non-eco station count pair.
type EcoSplit struct {
	Eco    int `json:"eco"`
	NonEco int `json:"non_eco"`
}

// AverageRatings are the review averages across all stations and per
// eco class, each rounded to one decimal and 0 without reviews.
type AverageRatings struct {
	Overall float64 `json:"overall"`
	Eco     float64 `json:"eco"`
	NonEco  float64 `json:"non_eco"`
}

// StationTotals are the headline station counts shown on the home page.
type StationTotals struct {
	Total         int
	Eco           int
	EcoPercentage int
}

// StatsSummary is the full statistics payload served by /api/stats.
type StatsSummary struct {
	TotalStations  int            `json:"total_stations"`
	EcoStations    int            `json:"eco_stations"`
	NonEcoStations int            `json:"non_eco_stations"`
	EcoPercentage  int            `json:"eco_percentage"`
	ByDistrict     map[string]int `json:"by_district"`
	EcoVsNonEco    EcoSplit       `json:"eco_vs_non_eco"`
	AverageRatings AverageRatings `json:"average_ratings"`
	ReviewsByMonth MonthlyCounts  `json:"reviews_by_month"`
}
