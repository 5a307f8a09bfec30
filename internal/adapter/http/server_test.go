package http_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	httpadapter "github.com/misua/quake-monitor-web/internal/adapter/http"
	"github.com/misua/quake-monitor-web/internal/domain"
)

type mockSeaLevel struct {
	snapshot domain.SeaLevelSnapshot
	readyErr error
}

func (m *mockSeaLevel) Status(_ context.Context) domain.SeaLevelSnapshot { return m.snapshot }
func (m *mockSeaLevel) CheckReadiness(_ context.Context) error           { return m.readyErr }

type mockQuakes struct {
	quakes []domain.Earthquake
	err    error
}

func (m *mockQuakes) RecentEarthquakes(_ context.Context, _ string) ([]domain.Earthquake, error) {
	return m.quakes, m.err
}

type mockTides struct {
	outlook domain.TideOutlook
	err     error
}

func (m *mockTides) TideOutlook(_ context.Context) (domain.TideOutlook, error) {
	return m.outlook, m.err
}

type mockWeather struct {
	weather    domain.CurrentWeather
	weatherErr error
	aq         domain.AirQuality
	aqErr      error
}

func (m *mockWeather) CurrentWeather(_ context.Context) (domain.CurrentWeather, error) {
	return m.weather, m.weatherErr
}

func (m *mockWeather) CurrentAirQuality(_ context.Context) (domain.AirQuality, error) {
	return m.aq, m.aqErr
}

func newTestServer(sources httpadapter.Sources) *httpadapter.Server {
	if sources.SeaLevel == nil {
		sources.SeaLevel = &mockSeaLevel{}
	}
	if sources.Quakes == nil {
		sources.Quakes = &mockQuakes{}
	}
	if sources.Tides == nil {
		sources.Tides = &mockTides{}
	}
	if sources.Weather == nil {
		sources.Weather = &mockWeather{}
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return httpadapter.NewServer(":0", sources, "4.5_day", "Davao City, Philippines", logger)
}

func doGet(srv *httpadapter.Server, path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestHealthzReturns200(t *testing.T) {
	rec := doGet(newTestServer(httpadapter.Sources{}), "/healthz")

	assert.Equal(t, http.StatusOK, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "healthy", body["status"])
}

func TestReadyzReturns200WhenReady(t *testing.T) {
	rec := doGet(newTestServer(httpadapter.Sources{}), "/readyz")

	assert.Equal(t, http.StatusOK, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ready", body["status"])
}

func TestReadyzReturns503WhenNotReady(t *testing.T) {
	srv := newTestServer(httpadapter.Sources{
		SeaLevel: &mockSeaLevel{readyErr: errors.New("no sea level readings received yet")},
	})
	rec := doGet(srv, "/readyz")

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "not ready", body["status"])
	assert.Equal(t, "no sea level readings received yet", body["error"])
}

func TestMetricsEndpoint(t *testing.T) {
	rec := doGet(newTestServer(httpadapter.Sources{}), "/metrics")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}

func TestSeaLevelEndpoint(t *testing.T) {
	level := 1.55
	srv := newTestServer(httpadapter.Sources{
		SeaLevel: &mockSeaLevel{snapshot: domain.SeaLevelSnapshot{
			Status:     domain.StatusCritical,
			Level:      &level,
			Trend:      domain.TrendRising,
			Deviation:  0.52,
			LastUpdate: "23:11 PHT",
			Alert:      true,
		}},
	})
	rec := doGet(srv, "/api/sea-level")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var body domain.SeaLevelSnapshot
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, domain.StatusCritical, body.Status)
	require.NotNil(t, body.Level)
	assert.Equal(t, 1.55, *body.Level)
	assert.Equal(t, domain.TrendRising, body.Trend)
	assert.True(t, body.Alert)
}

func TestSeaLevelEndpoint_NoDataStill200(t *testing.T) {
	srv := newTestServer(httpadapter.Sources{
		SeaLevel: &mockSeaLevel{snapshot: domain.SeaLevelSnapshot{
			Status:     domain.StatusNoData,
			Trend:      domain.TrendUnknown,
			LastUpdate: "Never",
		}},
	})
	rec := doGet(srv, "/api/sea-level")

	assert.Equal(t, http.StatusOK, rec.Code)

	var body domain.SeaLevelSnapshot
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, domain.StatusNoData, body.Status)
	assert.Nil(t, body.Level)
}

func TestEarthquakesEndpoint(t *testing.T) {
	srv := newTestServer(httpadapter.Sources{
		Quakes: &mockQuakes{quakes: []domain.Earthquake{
			{ID: "us7000abcd", Magnitude: 5.1, Place: "12 km SE of Mati, Philippines", DistanceKm: 142.7},
		}},
	})
	rec := doGet(srv, "/api/earthquakes")

	assert.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Location    string              `json:"location"`
		Earthquakes []domain.Earthquake `json:"earthquakes"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "Davao City, Philippines", body.Location)
	require.Len(t, body.Earthquakes, 1)
	assert.Equal(t, "us7000abcd", body.Earthquakes[0].ID)
}

func TestEarthquakesEndpoint_UpstreamError(t *testing.T) {
	srv := newTestServer(httpadapter.Sources{
		Quakes: &mockQuakes{err: errors.New("usgs feed error: status 500")},
	})
	rec := doGet(srv, "/api/earthquakes")

	assert.Equal(t, http.StatusBadGateway, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Contains(t, body["error"], "usgs feed error")
}

func TestTidesEndpoint(t *testing.T) {
	srv := newTestServer(httpadapter.Sources{
		Tides: &mockTides{outlook: domain.TideOutlook{
			NextHigh: &domain.TideExtreme{
				Kind:    domain.TideHigh,
				Time:    time.Date(2024, 4, 26, 14, 30, 0, 0, time.UTC),
				HeightM: 1.2,
			},
		}},
	})
	rec := doGet(srv, "/api/tides")

	assert.Equal(t, http.StatusOK, rec.Code)

	var body domain.TideOutlook
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.NotNil(t, body.NextHigh)
	assert.Equal(t, 1.2, body.NextHigh.HeightM)
	assert.Nil(t, body.NextLow)
}

func TestWeatherEndpoint_WithAirQuality(t *testing.T) {
	srv := newTestServer(httpadapter.Sources{
		Weather: &mockWeather{
			weather: domain.CurrentWeather{TemperatureC: 31.4, Condition: "Partly Cloudy"},
			aq:      domain.AirQuality{PM25: 18.2},
		},
	})
	rec := doGet(srv, "/api/weather")

	assert.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Location   string                `json:"location"`
		Weather    domain.CurrentWeather `json:"weather"`
		AirQuality *domain.AirQuality    `json:"air_quality"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "Davao City, Philippines", body.Location)
	assert.Equal(t, 31.4, body.Weather.TemperatureC)
	require.NotNil(t, body.AirQuality)
	assert.Equal(t, 18.2, body.AirQuality.PM25)
}

func TestWeatherEndpoint_AirQualityFailureIsNotFatal(t *testing.T) {
	srv := newTestServer(httpadapter.Sources{
		Weather: &mockWeather{
			weather: domain.CurrentWeather{TemperatureC: 31.4},
			aqErr:   errors.New("open-meteo error: status 429"),
		},
	})
	rec := doGet(srv, "/api/weather")

	assert.Equal(t, http.StatusOK, rec.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.NotContains(t, body, "air_quality")
}

func TestWeatherEndpoint_UpstreamError(t *testing.T) {
	srv := newTestServer(httpadapter.Sources{
		Weather: &mockWeather{weatherErr: errors.New("open-meteo error: status 500")},
	})
	rec := doGet(srv, "/api/weather")

	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestUnknownRouteReturns404(t *testing.T) {
	rec := doGet(newTestServer(httpadapter.Sources{}), "/api/volcanoes")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
