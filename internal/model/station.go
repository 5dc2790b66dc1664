package model

import "time"

// Station represents a charging/fuel station from the `stations` table.
// Stations arrive through an external import and are only edited by
// administrators.  Optional text columns are scanned as empty strings;
// optional date and coordinate columns stay nil when unset.
type Station struct {
	ID        uint64
	Name      string
	Address   string
	District  string
	AdmArea   string
	Owner     string
	TestDate  *time.Time
	EcoStatus bool
	Latitude  *float64
	Longitude *float64
}

// StationWithRating pairs a station with its on-demand average rating.
type StationWithRating struct {
	Station
	AverageRating float64
}
