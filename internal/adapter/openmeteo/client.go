// Package openmeteo fetches current weather and air quality from the
// Open-Meteo APIs. No API key is required.
package openmeteo

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/misua/quake-monitor-web/internal/domain"
	"github.com/misua/quake-monitor-web/internal/observability"
)

// Client fetches current conditions for a fixed location.
type Client struct {
	weatherURL    string
	airQualityURL string
	httpClient    *http.Client
	lat           float64
	lon           float64
	metrics       *observability.Metrics
	logger        *slog.Logger
}

// NewClient creates an Open-Meteo client. weatherURL and airQualityURL are
// the forecast and air-quality endpoint roots.
func NewClient(weatherURL, airQualityURL string, lat, lon float64, timeout time.Duration, metrics *observability.Metrics, logger *slog.Logger) *Client {
	return &Client{
		weatherURL:    weatherURL,
		airQualityURL: airQualityURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		lat:     lat,
		lon:     lon,
		metrics: metrics,
		logger:  logger,
	}
}

// CurrentWeather fetches the current conditions block.
func (c *Client) CurrentWeather(ctx context.Context) (domain.CurrentWeather, error) {
	params := c.baseParams()
	params.Set("current", strings.Join([]string{
		"temperature_2m",
		"relative_humidity_2m",
		"apparent_temperature",
		"precipitation",
		"weather_code",
		"wind_speed_10m",
		"wind_gusts_10m",
		"pressure_msl",
		"cloud_cover",
	}, ","))
	params.Set("timezone", "Asia/Manila")

	var resp weatherResponse
	if err := c.getJSON(ctx, c.weatherURL, params, &resp); err != nil {
		return domain.CurrentWeather{}, err
	}

	cur := resp.Current
	return domain.CurrentWeather{
		TemperatureC:    cur.Temperature2m,
		FeelsLikeC:      cur.ApparentTemperature,
		Humidity:        cur.RelativeHumidity2m,
		PrecipitationMm: cur.Precipitation,
		WindSpeedKmh:    cur.WindSpeed10m,
		WindGustsKmh:    cur.WindGusts10m,
		PressureHpa:     cur.PressureMsl,
		CloudCover:      cur.CloudCover,
		WeatherCode:     cur.WeatherCode,
		Condition:       domain.ConditionForCode(cur.WeatherCode),
	}, nil
}

// CurrentAirQuality fetches the current air quality block.
func (c *Client) CurrentAirQuality(ctx context.Context) (domain.AirQuality, error) {
	params := c.baseParams()
	params.Set("current", strings.Join([]string{
		"pm2_5",
		"pm10",
		"uv_index",
		"european_aqi",
	}, ","))

	var resp airQualityResponse
	if err := c.getJSON(ctx, c.airQualityURL, params, &resp); err != nil {
		return domain.AirQuality{}, err
	}

	cur := resp.Current
	return domain.AirQuality{
		PM25:        cur.PM25,
		PM10:        cur.PM10,
		UVIndex:     cur.UVIndex,
		EuropeanAQI: cur.EuropeanAQI,
	}, nil
}

func (c *Client) baseParams() url.Values {
	return url.Values{
		"latitude":  {strconv.FormatFloat(c.lat, 'f', -1, 64)},
		"longitude": {strconv.FormatFloat(c.lon, 'f', -1, 64)},
	}
}

func (c *Client) getJSON(ctx context.Context, endpoint string, params url.Values, out any) error {
	start := time.Now()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	c.metrics.UpstreamDuration.WithLabelValues("openmeteo").Observe(time.Since(start).Seconds())
	if err != nil {
		c.metrics.UpstreamRequests.WithLabelValues("openmeteo", "error").Inc()
		return fmt.Errorf("open-meteo request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.metrics.UpstreamRequests.WithLabelValues("openmeteo", "error").Inc()
		return fmt.Errorf("open-meteo error: status %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		c.metrics.UpstreamRequests.WithLabelValues("openmeteo", "error").Inc()
		return fmt.Errorf("decode open-meteo response: %w", err)
	}
	c.metrics.UpstreamRequests.WithLabelValues("openmeteo", "success").Inc()
	return nil
}

// Open-Meteo API response types.

type weatherResponse struct {
	Current currentWeather `json:"current"`
}

type currentWeather struct {
	Temperature2m       float64 `json:"temperature_2m"`
	RelativeHumidity2m  float64 `json:"relative_humidity_2m"`
	ApparentTemperature float64 `json:"apparent_temperature"`
	Precipitation       float64 `json:"precipitation"`
	WeatherCode         int     `json:"weather_code"`
	WindSpeed10m        float64 `json:"wind_speed_10m"`
	WindGusts10m        float64 `json:"wind_gusts_10m"`
	PressureMsl         float64 `json:"pressure_msl"`
	CloudCover          float64 `json:"cloud_cover"`
}

type airQualityResponse struct {
	Current currentAirQuality `json:"current"`
}

type currentAirQuality struct {
	PM25        float64 `json:"pm2_5"`
	PM10        float64 `json:"pm10"`
	UVIndex     float64 `json:"uv_index"`
	EuropeanAQI float64 `json:"european_aqi"`
}
