package stormglass

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/misua/quake-monitor-web/internal/domain"
	"github.com/misua/quake-monitor-web/internal/observability"
)

type mockTideSource struct {
	outlook domain.TideOutlook
	err     error
	calls   int
}

func (m *mockTideSource) TideOutlook(_ context.Context) (domain.TideOutlook, error) {
	m.calls++
	if m.err != nil {
		return domain.TideOutlook{}, m.err
	}
	return m.outlook, nil
}

func testOutlook(height float64) domain.TideOutlook {
	return domain.TideOutlook{
		NextHigh: &domain.TideExtreme{
			Kind:    domain.TideHigh,
			Time:    time.Date(2024, 4, 26, 14, 30, 0, 0, time.UTC),
			HeightM: height,
		},
		NextLow: &domain.TideExtreme{
			Kind:    domain.TideLow,
			Time:    time.Date(2024, 4, 26, 20, 45, 0, 0, time.UTC),
			HeightM: -0.3,
		},
	}
}

func newTestCache(t *testing.T, inner TideSource, ttl time.Duration) (*CachedTideSource, *clockwork.FakeClock) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tides.db")
	cache, err := NewCachedTideSource(context.Background(), inner, path, ttl,
		observability.NewMetricsForTesting(), testLogger())
	require.NoError(t, err)
	t.Cleanup(func() { _ = cache.Close() })

	fake := clockwork.NewFakeClockAt(time.Date(2024, 4, 26, 12, 0, 0, 0, time.UTC))
	cache.SetClock(fake)
	return cache, fake
}

func TestCachedTideSource_FetchesOnceWithinTTL(t *testing.T) {
	inner := &mockTideSource{outlook: testOutlook(1.2)}
	cache, _ := newTestCache(t, inner, 6*time.Hour)

	first, err := cache.TideOutlook(context.Background())
	require.NoError(t, err)
	second, err := cache.TideOutlook(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, inner.calls)
	assert.Equal(t, first, second)
	require.NotNil(t, second.NextHigh)
	assert.Equal(t, 1.2, second.NextHigh.HeightM)
}

func TestCachedTideSource_RefetchesAfterTTL(t *testing.T) {
	inner := &mockTideSource{outlook: testOutlook(1.2)}
	cache, clock := newTestCache(t, inner, 6*time.Hour)

	_, err := cache.TideOutlook(context.Background())
	require.NoError(t, err)

	clock.Advance(6*time.Hour + time.Minute)
	inner.outlook = testOutlook(1.5)

	outlook, err := cache.TideOutlook(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, inner.calls)
	require.NotNil(t, outlook.NextHigh)
	assert.Equal(t, 1.5, outlook.NextHigh.HeightM)
}

func TestCachedTideSource_ServesStaleOnUpstreamFailure(t *testing.T) {
	inner := &mockTideSource{outlook: testOutlook(1.2)}
	cache, clock := newTestCache(t, inner, 6*time.Hour)

	_, err := cache.TideOutlook(context.Background())
	require.NoError(t, err)

	clock.Advance(7 * time.Hour)
	inner.err = errors.New("quota exceeded")

	outlook, err := cache.TideOutlook(context.Background())
	require.NoError(t, err)
	require.NotNil(t, outlook.NextHigh)
	assert.Equal(t, 1.2, outlook.NextHigh.HeightM)
}

func TestCachedTideSource_ErrorWithEmptyCache(t *testing.T) {
	inner := &mockTideSource{err: errors.New("quota exceeded")}
	cache, _ := newTestCache(t, inner, 6*time.Hour)

	_, err := cache.TideOutlook(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "quota exceeded")
}

func TestCachedTideSource_PersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tides.db")
	now := time.Date(2024, 4, 26, 12, 0, 0, 0, time.UTC)

	inner := &mockTideSource{outlook: testOutlook(1.2)}
	first, err := NewCachedTideSource(context.Background(), inner, path, 6*time.Hour,
		observability.NewMetricsForTesting(), testLogger())
	require.NoError(t, err)
	first.SetClock(clockwork.NewFakeClockAt(now))

	_, err = first.TideOutlook(context.Background())
	require.NoError(t, err)
	require.NoError(t, first.Close())

	// A fresh process sees the persisted entry and spends no upstream request.
	second, err := NewCachedTideSource(context.Background(), inner, path, 6*time.Hour,
		observability.NewMetricsForTesting(), testLogger())
	require.NoError(t, err)
	defer second.Close()
	second.SetClock(clockwork.NewFakeClockAt(now.Add(time.Hour)))

	outlook, err := second.TideOutlook(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, inner.calls)
	require.NotNil(t, outlook.NextHigh)
	assert.Equal(t, 1.2, outlook.NextHigh.HeightM)
}
