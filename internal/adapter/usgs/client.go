// Package usgs fetches recent earthquakes from the USGS GeoJSON summary feeds.
package usgs

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sort"
	"time"

	"github.com/misua/quake-monitor-web/internal/domain"
	"github.com/misua/quake-monitor-web/internal/observability"
)

// Feeds published by USGS. The key is the magnitude/window pair from the feed
// filename, e.g. "4.5_day" = M4.5+ over the last 24 hours.
var feedPaths = map[string]string{
	"all_hour": "/earthquakes/feed/v1.0/summary/all_hour.geojson",
	"all_day":  "/earthquakes/feed/v1.0/summary/all_day.geojson",
	"2.5_day":  "/earthquakes/feed/v1.0/summary/2.5_day.geojson",
	"4.5_day":  "/earthquakes/feed/v1.0/summary/4.5_day.geojson",
	"4.5_week": "/earthquakes/feed/v1.0/summary/4.5_week.geojson",
}

const defaultFeed = "4.5_day"

// Client fetches and shapes USGS earthquake feed data.
type Client struct {
	baseURL    string
	httpClient *http.Client
	// lat/lon anchor distance ranking to the dashboard's location.
	lat     float64
	lon     float64
	metrics *observability.Metrics
	logger  *slog.Logger
}

// NewClient creates a USGS feed client anchored at the given coordinates.
func NewClient(baseURL string, lat, lon float64, timeout time.Duration, metrics *observability.Metrics, logger *slog.Logger) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		lat:     lat,
		lon:     lon,
		metrics: metrics,
		logger:  logger,
	}
}

// RecentEarthquakes fetches the named feed and returns Philippines-region
// events sorted nearest first. An unknown feed name falls back to the M4.5
// daily feed.
func (c *Client) RecentEarthquakes(ctx context.Context, feed string) ([]domain.Earthquake, error) {
	path, ok := feedPaths[feed]
	if !ok {
		path = feedPaths[defaultFeed]
	}

	start := time.Now()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	c.metrics.UpstreamDuration.WithLabelValues("usgs").Observe(time.Since(start).Seconds())
	if err != nil {
		c.metrics.UpstreamRequests.WithLabelValues("usgs", "error").Inc()
		return nil, fmt.Errorf("usgs feed request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.metrics.UpstreamRequests.WithLabelValues("usgs", "error").Inc()
		return nil, fmt.Errorf("usgs feed error: status %d", resp.StatusCode)
	}

	var feedResp geoJSONFeed
	if err := json.NewDecoder(resp.Body).Decode(&feedResp); err != nil {
		c.metrics.UpstreamRequests.WithLabelValues("usgs", "error").Inc()
		return nil, fmt.Errorf("decode usgs feed: %w", err)
	}
	c.metrics.UpstreamRequests.WithLabelValues("usgs", "success").Inc()

	quakes := make([]domain.Earthquake, 0, len(feedResp.Features))
	for _, f := range feedResp.Features {
		if len(f.Geometry.Coordinates) < 3 {
			continue
		}
		lon, lat, depth := f.Geometry.Coordinates[0], f.Geometry.Coordinates[1], f.Geometry.Coordinates[2]
		if !domain.InPhilippines(lat, lon) {
			continue
		}

		q := domain.Earthquake{
			ID:         f.ID,
			Magnitude:  f.Properties.Mag,
			Place:      f.Properties.Place,
			Time:       time.UnixMilli(f.Properties.Time).UTC(),
			Lat:        lat,
			Lon:        lon,
			DepthKm:    depth,
			DistanceKm: domain.HaversineKm(c.lat, c.lon, lat, lon),
			Tsunami:    f.Properties.Tsunami == 1,
			AlertLevel: f.Properties.Alert,
			URL:        f.Properties.URL,
		}
		if f.Properties.Felt != nil {
			q.Felt = *f.Properties.Felt
		}
		quakes = append(quakes, q)
	}

	sort.Slice(quakes, func(i, j int) bool {
		return quakes[i].DistanceKm < quakes[j].DistanceKm
	})

	c.logger.Debug("usgs feed fetched", "feed", feed,
		"total", len(feedResp.Features), "in_region", len(quakes))
	return quakes, nil
}

// USGS GeoJSON response types.

type geoJSONFeed struct {
	Features []feature `json:"features"`
}

type feature struct {
	ID         string     `json:"id"`
	Properties properties `json:"properties"`
	Geometry   geometry   `json:"geometry"`
}

type properties struct {
	Mag     float64 `json:"mag"`
	Place   string  `json:"place"`
	Time    int64   `json:"time"` // milliseconds since epoch
	Tsunami int     `json:"tsunami"`
	Felt    *int    `json:"felt"`
	Alert   string  `json:"alert"`
	URL     string  `json:"url"`
}

type geometry struct {
	Coordinates []float64 `json:"coordinates"` // [lon, lat, depth]
}
