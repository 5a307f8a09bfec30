// Package sealevel maintains a rolling window of detided sea level readings
// for one IOC station and classifies the newest reading against a
// self-computed baseline.
package sealevel

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/misua/quake-monitor-web/internal/domain"
	"github.com/misua/quake-monitor-web/internal/observability"
)

const (
	// historySize bounds the rolling window: 30 readings at one-minute
	// sampling covers the last half hour.
	historySize = 30

	// lookbackWindow is how much station history each fetch requests.
	lookbackWindow = 30 * time.Minute

	// defaultFetchInterval gates upstream fetches; calls between refresh
	// windows reuse the buffered readings.
	defaultFetchInterval = 60 * time.Second

	// minReadings is the fewest samples the classifier will work with.
	minReadings = 10

	// baselineExclusion keeps the newest readings out of the baseline once
	// the buffer is large enough, so a surge in progress cannot raise the
	// average it is measured against.
	baselineExclusion = 5
	baselineMinimum   = 15

	// Deviation thresholds in meters, inclusive.
	warningThreshold  = 0.3
	criticalThreshold = 0.5

	// Trend is computed over the newest trendWindow readings; differences
	// within ±trendThreshold meters count as stable.
	trendWindow    = 5
	trendThreshold = 0.05
)

// phtZone renders station timestamps in Philippine time for display.
var phtZone = time.FixedZone("PHT", 8*60*60)

var errNoReadings = errors.New("no sea level readings received yet")

// Fetcher retrieves station readings in chronological order, oldest first.
type Fetcher interface {
	FetchReadings(ctx context.Context, station string, lookback time.Duration) ([]domain.Reading, error)
}

// AlertPublisher receives an event whenever the monitor's classification
// changes into, out of, or between alerting states.
type AlertPublisher interface {
	PublishAlert(ctx context.Context, alert domain.SeaLevelAlert) error
}

// Monitor owns the rolling window for a single station. All state is guarded
// by one mutex so concurrent Status calls perform at most one fetch per
// refresh window.
type Monitor struct {
	station   string
	fetcher   Fetcher
	publisher AlertPublisher
	clock     clockwork.Clock
	logger    *slog.Logger
	metrics   *observability.Metrics

	mu            sync.Mutex
	history       []domain.Reading
	current       *domain.Reading
	lastFetch     time.Time
	fetchInterval time.Duration
	lastStatus    domain.SeaLevelStatus
}

// Option customizes a Monitor.
type Option func(*Monitor)

// WithClock swaps the time source, used by tests to step through refresh
// windows deterministically.
func WithClock(c clockwork.Clock) Option {
	return func(m *Monitor) { m.clock = c }
}

// WithFetchInterval overrides the refresh gate.
func WithFetchInterval(d time.Duration) Option {
	return func(m *Monitor) { m.fetchInterval = d }
}

// WithAlertPublisher enables alert publishing on status transitions. A nil
// publisher leaves it disabled.
func WithAlertPublisher(p AlertPublisher) Option {
	return func(m *Monitor) { m.publisher = p }
}

// New creates a Monitor for the given station. The caller owns the instance
// and shares it by reference; there is no package-level singleton.
func New(station string, fetcher Fetcher, logger *slog.Logger, metrics *observability.Metrics, opts ...Option) *Monitor {
	m := &Monitor{
		station:       station,
		fetcher:       fetcher,
		clock:         clockwork.NewRealClock(),
		logger:        logger,
		metrics:       metrics,
		fetchInterval: defaultFetchInterval,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Station returns the bound station code.
func (m *Monitor) Station() string {
	return m.station
}

// CheckReadiness returns nil once the monitor holds at least one reading.
func (m *Monitor) CheckReadiness(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.current == nil {
		return errNoReadings
	}
	return nil
}

// Status refreshes from the station if the fetch interval has elapsed, then
// classifies the buffered readings. It never fails: upstream errors fall back
// to the previously held state, and a cold monitor reports NO_DATA.
func (m *Monitor) Status(ctx context.Context) domain.SeaLevelSnapshot {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.refreshLocked(ctx)

	if m.current == nil || len(m.history) == 0 {
		return domain.SeaLevelSnapshot{
			Status:     domain.StatusNoData,
			Level:      nil,
			Trend:      domain.TrendUnknown,
			Deviation:  0.0,
			LastUpdate: "Never",
			Alert:      false,
		}
	}

	currentLevel := m.current.Level
	status, deviation := m.detectAnomalyLocked(currentLevel)
	trend := m.calculateTrendLocked()
	alert := status == domain.StatusWarning || status == domain.StatusCritical

	m.metrics.SeaLevel.Set(currentLevel)
	m.metrics.SeaLevelDeviation.Set(deviation)
	if alert {
		m.metrics.SeaLevelAlertActive.Set(1)
	} else {
		m.metrics.SeaLevelAlertActive.Set(0)
	}

	m.publishTransitionLocked(ctx, status, currentLevel, deviation, trend)

	level := round2(currentLevel)
	return domain.SeaLevelSnapshot{
		Status:     status,
		Level:      &level,
		Trend:      trend,
		Deviation:  round2(deviation),
		LastUpdate: formatStationTime(m.current.Time),
		Alert:      alert,
	}
}

// refreshLocked fetches new readings when the interval has elapsed. Fetch
// failures and empty results leave history, current, and lastFetch untouched,
// so the next eligible call retries.
func (m *Monitor) refreshLocked(ctx context.Context) {
	now := m.clock.Now()
	if !m.lastFetch.IsZero() && now.Sub(m.lastFetch) < m.fetchInterval {
		return
	}

	start := now
	readings, err := m.fetcher.FetchReadings(ctx, m.station, lookbackWindow)
	m.metrics.SeaLevelFetchDuration.Observe(m.clock.Since(start).Seconds())

	if err != nil {
		m.metrics.SeaLevelFetches.WithLabelValues("error").Inc()
		m.logger.Warn("sea level fetch failed, keeping prior state",
			"station", m.station, "error", err)
		return
	}
	if len(readings) == 0 {
		m.metrics.SeaLevelFetches.WithLabelValues("empty").Inc()
		m.logger.Warn("sea level fetch returned no readings, keeping prior state",
			"station", m.station)
		return
	}

	m.metrics.SeaLevelFetches.WithLabelValues("success").Inc()
	for i := range readings {
		m.appendLocked(readings[i])
	}
	last := readings[len(readings)-1]
	m.current = &last
	m.lastFetch = now
	m.metrics.SeaLevelHistorySize.Set(float64(len(m.history)))

	m.logger.Debug("sea level history updated",
		"station", m.station,
		"new_readings", len(readings),
		"history_size", len(m.history),
		"level", last.Level,
	)
}

// appendLocked adds a reading at the tail, evicting the oldest entry once the
// window is full.
func (m *Monitor) appendLocked(r domain.Reading) {
	if len(m.history) == historySize {
		copy(m.history, m.history[1:])
		m.history[historySize-1] = r
		return
	}
	m.history = append(m.history, r)
}

// detectAnomalyLocked classifies the current level against the rolling
// baseline and returns the status with the absolute deviation in meters.
func (m *Monitor) detectAnomalyLocked(currentLevel float64) (domain.SeaLevelStatus, float64) {
	if len(m.history) < minReadings {
		return domain.StatusInsufficientData, 0.0
	}

	window := m.history
	if len(m.history) >= baselineMinimum {
		window = m.history[:len(m.history)-baselineExclusion]
	}
	baseline := mean(window)

	deviation := math.Abs(currentLevel - baseline)
	switch {
	case deviation >= criticalThreshold:
		return domain.StatusCritical, deviation
	case deviation >= warningThreshold:
		return domain.StatusWarning, deviation
	default:
		return domain.StatusNormal, deviation
	}
}

// calculateTrendLocked compares the oldest and newest pairs of the last five
// readings.
func (m *Monitor) calculateTrendLocked() domain.Trend {
	if len(m.history) < trendWindow {
		return domain.TrendUnknown
	}

	recent := m.history[len(m.history)-trendWindow:]
	firstAvg := (recent[0].Level + recent[1].Level) / 2
	lastAvg := (recent[trendWindow-2].Level + recent[trendWindow-1].Level) / 2

	diff := lastAvg - firstAvg
	switch {
	case diff > trendThreshold:
		return domain.TrendRising
	case diff < -trendThreshold:
		return domain.TrendFalling
	default:
		return domain.TrendStable
	}
}

// publishTransitionLocked emits an alert event when the classification
// changes and either side of the transition is an alerting state.
func (m *Monitor) publishTransitionLocked(ctx context.Context, status domain.SeaLevelStatus, level, deviation float64, trend domain.Trend) {
	prev := m.lastStatus
	m.lastStatus = status

	if m.publisher == nil || status == prev {
		return
	}
	alerting := func(s domain.SeaLevelStatus) bool {
		return s == domain.StatusWarning || s == domain.StatusCritical
	}
	if !alerting(status) && !alerting(prev) {
		return
	}

	event := domain.SeaLevelAlert{
		Station:    m.station,
		Status:     status,
		Previous:   prev,
		Level:      level,
		Deviation:  deviation,
		Trend:      trend,
		ObservedAt: m.clock.Now(),
	}
	if err := m.publisher.PublishAlert(ctx, event); err != nil {
		m.metrics.AlertPublishErrors.Inc()
		m.logger.Error("alert publish failed", "station", m.station, "error", err)
		return
	}
	m.metrics.AlertsPublished.Inc()
	m.logger.Info("sea level alert published",
		"station", m.station, "status", status, "previous", prev, "deviation", deviation)
}

// formatStationTime converts the station's UTC timestamp to local display
// time, e.g. "23:10 PHT". Unparseable timestamps render as "Unknown".
func formatStationTime(stationTime string) string {
	t, err := time.ParseInLocation("2006-01-02 15:04:05", stationTime, time.UTC)
	if err != nil {
		return "Unknown"
	}
	return t.In(phtZone).Format("15:04") + " PHT"
}

func mean(readings []domain.Reading) float64 {
	if len(readings) == 0 {
		return 0
	}
	var sum float64
	for i := range readings {
		sum += readings[i].Level
	}
	return sum / float64(len(readings))
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
