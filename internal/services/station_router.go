package services

import (
	"strings"

	"restaurant_backend/internal/models"
)

// defaultStationRules decides the station of a category from its name.
// Order matters: the first matching substring wins.
var defaultStationRules = []struct {
	substring string
	station   models.Station
}{
	{"Lạnh", models.StationCold},
	{"Nóng", models.StationHot},
	{"Nước", models.StationDrink},
}

// StationOf returns the default station for a category name.
// ok is false for categories that are not dispatched to any station.
func StationOf(categoryName string) (station models.Station, ok bool) {
	for _, rule := range defaultStationRules {
		if strings.Contains(categoryName, rule.substring) {
			return rule.station, true
		}
	}
	return "", false
}

// ParseStation accepts a station name in any case.
func ParseStation(s string) (models.Station, error) {
	st := models.Station(normalizeCode(s))
	if !st.Valid() {
		return "", ErrUnknownStation
	}
	return st, nil
}
