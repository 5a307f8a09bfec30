package usgs

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/misua/quake-monitor-web/internal/observability"
)

// Davao City coordinates used as the distance anchor in tests.
const (
	davaoLat = 7.190708
	davaoLon = 125.455338
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testClient(baseURL string) *Client {
	return NewClient(baseURL, davaoLat, davaoLon, 5*time.Second,
		observability.NewMetricsForTesting(), testLogger())
}

func feedFixture() geoJSONFeed {
	felt := 120
	return geoJSONFeed{Features: []feature{
		{
			// Mindanao, close to Davao.
			ID: "us7000abcd",
			Properties: properties{
				Mag:     5.1,
				Place:   "12 km SE of Mati, Philippines",
				Time:    1714144200000,
				Tsunami: 0,
				Felt:    &felt,
				URL:     "https://earthquake.usgs.gov/earthquakes/eventpage/us7000abcd",
			},
			Geometry: geometry{Coordinates: []float64{126.2, 6.9, 35.0}},
		},
		{
			// Luzon, far from Davao but still in region.
			ID: "us7000efgh",
			Properties: properties{
				Mag:     4.8,
				Place:   "3 km W of Baguio, Philippines",
				Time:    1714140600000,
				Tsunami: 1,
				Alert:   "green",
			},
			Geometry: geometry{Coordinates: []float64{120.5, 16.4, 10.0}},
		},
		{
			// Japan: outside the bounding box, filtered out.
			ID: "us7000ijkl",
			Properties: properties{
				Mag:   6.2,
				Place: "near the east coast of Honshu, Japan",
				Time:  1714137000000,
			},
			Geometry: geometry{Coordinates: []float64{142.3, 38.1, 50.0}},
		},
		{
			// Malformed geometry, skipped.
			ID:       "us7000mnop",
			Geometry: geometry{Coordinates: []float64{125.0}},
		},
	}}
}

func TestClient_RecentEarthquakes_FiltersAndSorts(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/earthquakes/feed/v1.0/summary/4.5_day.geojson", r.URL.Path)
		require.NoError(t, json.NewEncoder(w).Encode(feedFixture()))
	}))
	defer srv.Close()

	quakes, err := testClient(srv.URL).RecentEarthquakes(context.Background(), "4.5_day")
	require.NoError(t, err)
	require.Len(t, quakes, 2)

	// Mindanao event first: it is the closer of the two.
	assert.Equal(t, "us7000abcd", quakes[0].ID)
	assert.Equal(t, "us7000efgh", quakes[1].ID)
	assert.Less(t, quakes[0].DistanceKm, quakes[1].DistanceKm)

	assert.Equal(t, 5.1, quakes[0].Magnitude)
	assert.Equal(t, 35.0, quakes[0].DepthKm)
	assert.Equal(t, 120, quakes[0].Felt)
	assert.Equal(t, time.UnixMilli(1714144200000).UTC(), quakes[0].Time)
	assert.False(t, quakes[0].Tsunami)

	assert.True(t, quakes[1].Tsunami)
	assert.Equal(t, "green", quakes[1].AlertLevel)
}

func TestClient_RecentEarthquakes_UnknownFeedFallsBack(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/earthquakes/feed/v1.0/summary/4.5_day.geojson", r.URL.Path)
		require.NoError(t, json.NewEncoder(w).Encode(geoJSONFeed{}))
	}))
	defer srv.Close()

	quakes, err := testClient(srv.URL).RecentEarthquakes(context.Background(), "9.9_century")
	require.NoError(t, err)
	assert.Empty(t, quakes)
}

func TestClient_RecentEarthquakes_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, err := testClient(srv.URL).RecentEarthquakes(context.Background(), "4.5_day")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "500")
}

func TestClient_RecentEarthquakes_MalformedJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, "{not json")
	}))
	defer srv.Close()

	_, err := testClient(srv.URL).RecentEarthquakes(context.Background(), "4.5_day")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode")
}
