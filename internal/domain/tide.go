package domain

import "time"

// TideKind distinguishes high and low tide extremes.
type TideKind string

const (
	TideHigh TideKind = "high"
	TideLow  TideKind = "low"
)

// TideExtreme is a single predicted high or low tide.
type TideExtreme struct {
	Kind    TideKind  `json:"kind"`
	Time    time.Time `json:"time"`
	HeightM float64   `json:"height_m"`
}

// TideOutlook holds the next upcoming high and low tides. Either field may be
// nil when the prediction window had no matching extreme.
type TideOutlook struct {
	NextHigh *TideExtreme `json:"next_high"`
	NextLow  *TideExtreme `json:"next_low"`
}

// NextExtremes picks the first future high and low tide from a chronological
// list of extremes.
func NextExtremes(extremes []TideExtreme, now time.Time) TideOutlook {
	var out TideOutlook
	for i := range extremes {
		e := extremes[i]
		if !e.Time.After(now) {
			continue
		}
		switch {
		case e.Kind == TideHigh && out.NextHigh == nil:
			out.NextHigh = &e
		case e.Kind == TideLow && out.NextLow == nil:
			out.NextLow = &e
		}
		if out.NextHigh != nil && out.NextLow != nil {
			break
		}
	}
	return out
}
