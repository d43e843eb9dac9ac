package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetrics_ProviderAndCache(t *testing.T) {
	m := New()
	m.Provider("places", nil)
	m.Provider("places", errors.New("x"))
	m.Provider("places", nil)
	m.Cache("travel", true)
	m.Cache("travel", false)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.ProviderCallsTotal.WithLabelValues("places", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ProviderCallsTotal.WithLabelValues("places", "error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CacheLookupsTotal.WithLabelValues("travel", "hit")))

	var nilMetrics *Metrics
	assert.NotPanics(t, func() { nilMetrics.Provider("places", nil) })
}

func TestMetrics_SeparateRegistries(t *testing.T) {
	assert.NotPanics(t, func() {
		New()
		New()
	})
}

func TestMetrics_ItineraryCounters(t *testing.T) {
	m := New()
	m.Itinerary("ok", "day", 2*time.Second, 1)
	m.Itinerary("empty", "night", time.Second, 2)
	m.SwapInc()
	m.NarrativeFallbackInc()

	assert.Equal(t, 1.0, testutil.ToFloat64(m.ItinerariesTotal.WithLabelValues("ok", "day")))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.EmptySlotsTotal))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.SwapsTotal))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.NarrativeFallbacks))

	var nilMetrics *Metrics
	assert.NotPanics(t, func() {
		nilMetrics.Itinerary("ok", "day", time.Second, 0)
		nilMetrics.SwapInc()
		nilMetrics.NarrativeFallbackInc()
	})
}
