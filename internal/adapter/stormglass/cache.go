package stormglass

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	_ "modernc.org/sqlite"

	"github.com/misua/quake-monitor-web/internal/domain"
	"github.com/misua/quake-monitor-web/internal/observability"
)

// CachedTideSource wraps a TideSource with a SQLite-backed TTL cache. The
// cache survives restarts, which matters because the upstream quota is 10
// requests per day: without persistence every deploy would burn a request.
//
// On upstream failure a stale entry is served rather than an error, the same
// availability-over-freshness tradeoff the sea level monitor makes.
type CachedTideSource struct {
	inner   TideSource
	db      *sql.DB
	ttl     time.Duration
	clock   clockwork.Clock
	metrics *observability.Metrics
	logger  *slog.Logger

	mu sync.Mutex
}

// NewCachedTideSource opens (or creates) the cache database at path and wraps
// inner with it.
func NewCachedTideSource(ctx context.Context, inner TideSource, path string, ttl time.Duration, metrics *observability.Metrics, logger *slog.Logger) (*CachedTideSource, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open tide cache: %w", err)
	}
	if _, err := db.ExecContext(ctx, createCacheSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("create tide cache table: %w", err)
	}
	return &CachedTideSource{
		inner:   inner,
		db:      db,
		ttl:     ttl,
		clock:   clockwork.NewRealClock(),
		metrics: metrics,
		logger:  logger,
	}, nil
}

// SetClock swaps the time source used for TTL checks.
func (c *CachedTideSource) SetClock(clock clockwork.Clock) {
	c.clock = clock
}

// Close releases the cache database.
func (c *CachedTideSource) Close() error {
	return c.db.Close()
}

// TideOutlook returns the cached outlook when fresh, otherwise refetches.
// The mutex gives at-most-one upstream request when concurrent callers find
// the cache expired.
func (c *CachedTideSource) TideOutlook(ctx context.Context) (domain.TideOutlook, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.clock.Now()
	cached, fetchedAt, found := c.load(ctx)
	if found && now.Sub(fetchedAt) < c.ttl {
		c.metrics.TideCache.WithLabelValues("hit").Inc()
		return cached, nil
	}

	outlook, err := c.inner.TideOutlook(ctx)
	if err != nil {
		if found {
			// Serve stale data over no data.
			c.metrics.TideCache.WithLabelValues("stale").Inc()
			c.logger.Warn("tide fetch failed, serving stale cache",
				"age", now.Sub(fetchedAt), "error", err)
			return cached, nil
		}
		return domain.TideOutlook{}, err
	}

	c.metrics.TideCache.WithLabelValues("miss").Inc()
	c.store(ctx, outlook, now)
	return outlook, nil
}

const createCacheSQL = `
CREATE TABLE IF NOT EXISTS tide_cache (
	id INTEGER PRIMARY KEY CHECK (id = 1),
	fetched_at INTEGER NOT NULL,
	outlook TEXT NOT NULL
)`

func (c *CachedTideSource) load(ctx context.Context) (domain.TideOutlook, time.Time, bool) {
	var fetchedAtUnix int64
	var payload string
	err := c.db.QueryRowContext(ctx,
		`SELECT fetched_at, outlook FROM tide_cache WHERE id = 1`).Scan(&fetchedAtUnix, &payload)
	if err != nil {
		if err != sql.ErrNoRows {
			c.logger.Warn("tide cache read failed", "error", err)
		}
		return domain.TideOutlook{}, time.Time{}, false
	}

	var outlook domain.TideOutlook
	if err := json.Unmarshal([]byte(payload), &outlook); err != nil {
		c.logger.Warn("tide cache entry corrupt, discarding", "error", err)
		return domain.TideOutlook{}, time.Time{}, false
	}
	return outlook, time.Unix(fetchedAtUnix, 0), true
}

func (c *CachedTideSource) store(ctx context.Context, outlook domain.TideOutlook, fetchedAt time.Time) {
	payload, err := json.Marshal(outlook)
	if err != nil {
		c.logger.Warn("tide cache encode failed", "error", err)
		return
	}
	_, err = c.db.ExecContext(ctx,
		`INSERT INTO tide_cache (id, fetched_at, outlook) VALUES (1, ?, ?)
		 ON CONFLICT (id) DO UPDATE SET fetched_at = excluded.fetched_at, outlook = excluded.outlook`,
		fetchedAt.Unix(), string(payload))
	if err != nil {
		c.logger.Warn("tide cache write failed", "error", err)
	}
}
