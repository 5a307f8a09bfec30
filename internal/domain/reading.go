package domain

// Reading is a single detided sea level sample from an IOC station.
type Reading struct {
	// Time is the source-native UTC timestamp, e.g. "2024-04-26 15:10:00".
	Time string `json:"time"`
	// Level is the detided (rad) water level in meters.
	Level float64 `json:"level"`
	// Timestamp is the capture time in seconds since the Unix epoch,
	// stamped when the reading was fetched, not when it was measured.
	Timestamp float64 `json:"timestamp"`
}

// SeaLevelStatus classifies the newest reading against the rolling baseline.
type SeaLevelStatus string

const (
	StatusNoData           SeaLevelStatus = "NO_DATA"
	StatusInsufficientData SeaLevelStatus = "INSUFFICIENT_DATA"
	StatusNormal           SeaLevelStatus = "NORMAL"
	StatusWarning          SeaLevelStatus = "WARNING"
	StatusCritical         SeaLevelStatus = "CRITICAL"
)

// Trend describes the short-term direction of the sea level.
type Trend string

const (
	TrendUnknown Trend = "UNKNOWN"
	TrendRising  Trend = "RISING"
	TrendFalling Trend = "FALLING"
	TrendStable  Trend = "STABLE"
)

// SeaLevelSnapshot is the dashboard view of the monitor. It is derived fresh
// on every status call and never stored.
type SeaLevelSnapshot struct {
	Status SeaLevelStatus `json:"status"`
	// Level is the newest reading in meters, nil when no data has ever
	// been fetched.
	Level *float64 `json:"level"`
	Trend Trend    `json:"trend"`
	// Deviation is the absolute distance from the baseline in meters.
	Deviation float64 `json:"deviation"`
	// LastUpdate is the station timestamp rendered in local display time,
	// "Never" before the first fetch and "Unknown" when unparseable.
	LastUpdate string `json:"last_update"`
	Alert      bool   `json:"alert"`
}
