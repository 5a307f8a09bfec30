// Package stormglass fetches tide extreme predictions from the Stormglass API.
//
// The free tier allows 10 requests per day, so callers should always go
// through the cache decorator rather than the client directly.
package stormglass

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/misua/quake-monitor-web/internal/domain"
	"github.com/misua/quake-monitor-web/internal/observability"
)

// TideSource produces the upcoming tide outlook for the configured location.
type TideSource interface {
	TideOutlook(ctx context.Context) (domain.TideOutlook, error)
}

// Client implements TideSource against the Stormglass tide extremes endpoint.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	lat        float64
	lon        float64
	clock      clockwork.Clock
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewClient creates a Stormglass client for the given coordinates.
func NewClient(apiKey, baseURL string, lat, lon float64, timeout time.Duration, metrics *observability.Metrics, logger *slog.Logger) *Client {
	return &Client{
		apiKey:  apiKey,
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		lat:     lat,
		lon:     lon,
		clock:   clockwork.NewRealClock(),
		metrics: metrics,
		logger:  logger,
	}
}

// SetClock swaps the time source used for the prediction window and the
// future-tide cutoff.
func (c *Client) SetClock(clock clockwork.Clock) {
	c.clock = clock
}

// TideOutlook requests the next 24 hours of tide extremes and picks the first
// future high and low tide.
func (c *Client) TideOutlook(ctx context.Context) (domain.TideOutlook, error) {
	if c.apiKey == "" {
		return domain.TideOutlook{}, fmt.Errorf("stormglass API key not configured")
	}

	now := c.clock.Now().UTC()
	params := url.Values{
		"lat":   {strconv.FormatFloat(c.lat, 'f', -1, 64)},
		"lng":   {strconv.FormatFloat(c.lon, 'f', -1, 64)},
		"start": {now.Format(time.RFC3339)},
		"end":   {now.Add(24 * time.Hour).Format(time.RFC3339)},
	}

	start := time.Now()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return domain.TideOutlook{}, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", c.apiKey)

	resp, err := c.httpClient.Do(req)
	c.metrics.UpstreamDuration.WithLabelValues("stormglass").Observe(time.Since(start).Seconds())
	if err != nil {
		c.metrics.UpstreamRequests.WithLabelValues("stormglass", "error").Inc()
		return domain.TideOutlook{}, fmt.Errorf("stormglass request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.metrics.UpstreamRequests.WithLabelValues("stormglass", "error").Inc()
		return domain.TideOutlook{}, fmt.Errorf("stormglass error: status %d", resp.StatusCode)
	}

	var sgResp response
	if err := json.NewDecoder(resp.Body).Decode(&sgResp); err != nil {
		c.metrics.UpstreamRequests.WithLabelValues("stormglass", "error").Inc()
		return domain.TideOutlook{}, fmt.Errorf("decode stormglass response: %w", err)
	}
	c.metrics.UpstreamRequests.WithLabelValues("stormglass", "success").Inc()

	extremes := make([]domain.TideExtreme, 0, len(sgResp.Data))
	for _, e := range sgResp.Data {
		t, err := time.Parse(time.RFC3339, e.Time)
		if err != nil {
			continue
		}
		kind := domain.TideKind(e.Type)
		if kind != domain.TideHigh && kind != domain.TideLow {
			continue
		}
		extremes = append(extremes, domain.TideExtreme{
			Kind:    kind,
			Time:    t.UTC(),
			HeightM: e.Height,
		})
	}

	c.logger.Debug("stormglass extremes fetched", "count", len(extremes))
	return domain.NextExtremes(extremes, now), nil
}

// Stormglass API response types.

type response struct {
	Data []extreme `json:"data"`
}

type extreme struct {
	Time   string  `json:"time"`
	Type   string  `json:"type"` // "high" or "low"
	Height float64 `json:"height"`
}
