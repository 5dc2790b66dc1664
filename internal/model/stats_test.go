package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEcoPercentage(t *testing.T) {
	tests := []struct {
		name       string
		eco, total int
		want       int
	}{
		{"no stations", 0, 0, 0},
		{"four of ten", 4, 10, 40},
		{"all eco", 7, 7, 100},
		{"tie rounds down to even", 1, 8, 12},
		{"tie rounds up to even", 3, 8, 38},
		{"rounds down", 1, 3, 33},
		{"two thirds", 2, 3, 67},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, EcoPercentage(tc.eco, tc.total))
		})
	}
}

func TestRoundRating(t *testing.T) {
	assert.Equal(t, 4.0, RoundRating(4))
	assert.Equal(t, 3.7, RoundRating(3.6666666))
	assert.Equal(t, 0.0, RoundRating(0))
	assert.Equal(t, 4.5, RoundRating(4.46))
	assert.Equal(t, 2.2, RoundRating(2.25))
	assert.Equal(t, 2.8, RoundRating(2.75))
	assert.Equal(t, 3.4, RoundRating(3.45))
}

func TestRoundRatingHalfUp(t *testing.T) {
	assert.Equal(t, 2.3, RoundRatingHalfUp(2.25))
	assert.Equal(t, 2.8, RoundRatingHalfUp(2.75))
	assert.Equal(t, 3.7, RoundRatingHalfUp(3.6666))
	assert.Equal(t, 0.0, RoundRatingHalfUp(0))
}

func TestMonthLabel(t *testing.T) {
	assert.Equal(t, "Янв", MonthLabel(1))
	assert.Equal(t, "Март", MonthLabel(3))
	assert.Equal(t, "Дек", MonthLabel(12))
	assert.Empty(t, MonthLabel(0))
	assert.Empty(t, MonthLabel(13))
}

func TestMonthlyCountsKeepsMonthOrder(t *testing.T) {
	m := MonthlyCounts{{Month: 1, Count: 2}, {Month: 3, Count: 5}, {Month: 11, Count: 1}}

	b, err := json.Marshal(m)
	require.NoError(t, err)
	assert.Equal(t, `{"Янв":2,"Март":5,"Ноя":1}`, string(b))

	assert.Equal(t, 5, m.Get(3))
	assert.Equal(t, 0, m.Get(2))
}

func TestMonthlyCountsEmpty(t *testing.T) {
	var m MonthlyCounts
	b, err := json.Marshal(struct {
		Months MonthlyCounts `json:"months"`
	}{m})
	require.NoError(t, err)
	assert.JSONEq(t, `{"months":{}}`, string(b))
}

func TestStatsSummaryJSONShape(t *testing.T) {
	s := StatsSummary{
		TotalStations:  10,
		EcoStations:    4,
		NonEcoStations: 6,
		EcoPercentage:  40,
		ByDistrict:     map[string]int{"ЦАО": 3},
		EcoVsNonEco:    EcoSplit{Eco: 4, NonEco: 6},
		AverageRatings: AverageRatings{Overall: 4, Eco: 4.5, NonEco: 3.5},
		ReviewsByMonth: MonthlyCounts{{Month: 3, Count: 1}},
	}
	b, err := json.Marshal(s)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"total_stations": 10,
		"eco_stations": 4,
		"non_eco_stations": 6,
		"eco_percentage": 40,
		"by_district": {"ЦАО": 3},
		"eco_vs_non_eco": {"eco": 4, "non_eco": 6},
		"average_ratings": {"overall": 4, "eco": 4.5, "non_eco": 3.5},
		"reviews_by_month": {"Март": 1}
	}`, string(b))
}
