package domain

import (
	"math"
	"time"
)

// Philippines bounding box, approximate. Matches the region the USGS feed is
// filtered to before distance ranking.
const (
	phMinLat = 4.0
	phMaxLat = 21.0
	phMinLon = 116.0
	phMaxLon = 127.0
)

const earthRadiusKm = 6371.0

// Earthquake is a single USGS feed event shaped for display.
type Earthquake struct {
	ID        string    `json:"id"`
	Magnitude float64   `json:"magnitude"`
	Place     string    `json:"place"`
	Time      time.Time `json:"time"`
	Lat       float64   `json:"latitude"`
	Lon       float64   `json:"longitude"`
	DepthKm   float64   `json:"depth_km"`
	// DistanceKm is the great-circle distance from the dashboard's
	// configured location.
	DistanceKm float64 `json:"distance_km"`
	// Tsunami is the USGS tsunami flag (1 when a tsunami message was issued).
	Tsunami bool `json:"tsunami"`
	// AlertLevel is the USGS PAGER level: green, yellow, orange, or red.
	// Empty when not yet assigned.
	AlertLevel string `json:"alert_level,omitempty"`
	Felt       int    `json:"felt,omitempty"`
	URL        string `json:"url,omitempty"`
}

// InPhilippines reports whether the coordinates fall inside the Philippines
// bounding box.
func InPhilippines(lat, lon float64) bool {
	return lat >= phMinLat && lat <= phMaxLat && lon >= phMinLon && lon <= phMaxLon
}

// HaversineKm returns the great-circle distance between two points in kilometers.
func HaversineKm(lat1, lon1, lat2, lon2 float64) float64 {
	rLat1 := lat1 * math.Pi / 180
	rLat2 := lat2 * math.Pi / 180
	dLat := (lat2 - lat1) * math.Pi / 180
	dLon := (lon2 - lon1) * math.Pi / 180

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(rLat1)*math.Cos(rLat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return earthRadiusKm * c
}
