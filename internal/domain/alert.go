package domain

import "time"

// SeaLevelAlert is the event published when the monitor's classification
// changes. Consumers key on Station, so alerts for one station land on one
// partition in order.
type SeaLevelAlert struct {
	Station    string         `json:"station"`
	Status     SeaLevelStatus `json:"status"`
	Previous   SeaLevelStatus `json:"previous"`
	Level      float64        `json:"level"`
	Deviation  float64        `json:"deviation"`
	Trend      Trend          `json:"trend"`
	ObservedAt time.Time      `json:"observed_at"`
}
