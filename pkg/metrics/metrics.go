package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics groups the service collectors. Each instance owns its registry so
// tests can build as many as they like.
type Metrics struct {
	Registry *prometheus.Registry

	ItinerariesTotal   *prometheus.CounterVec
	PlanDuration       prometheus.Histogram
	EmptySlotsTotal    prometheus.Counter
	ProviderCallsTotal *prometheus.CounterVec
	CacheLookupsTotal  *prometheus.CounterVec
	NarrativeFallbacks prometheus.Counter
	SwapsTotal         prometheus.Counter
}

func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	f := promauto.With(reg)

	return &Metrics{
		Registry: reg,
		ItinerariesTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "stayflo_itineraries_total",
			Help: "Itinerary generation attempts by outcome and plan mode.",
		}, []string{"outcome", "mode"}),
		PlanDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "stayflo_plan_duration_seconds",
			Help:    "Time spent building an itinerary including provider calls.",
			Buckets: []float64{0.25, 0.5, 1, 2, 4, 8, 16, 32},
		}),
		EmptySlotsTotal: f.NewCounter(prometheus.CounterOpts{
			Name: "stayflo_empty_slots_total",
			Help: "Blocks generated without a primary candidate.",
		}),
		ProviderCallsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "stayflo_provider_calls_total",
			Help: "Outbound provider calls by provider and status.",
		}, []string{"provider", "status"}),
		CacheLookupsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "stayflo_cache_lookups_total",
			Help: "Cache lookups by cache name and result.",
		}, []string{"cache", "result"}),
		NarrativeFallbacks: f.NewCounter(prometheus.CounterOpts{
			Name: "stayflo_narrative_fallbacks_total",
			Help: "Narratives replaced wholly or partly by default text.",
		}),
		SwapsTotal: f.NewCounter(prometheus.CounterOpts{
			Name: "stayflo_swaps_total",
			Help: "Successful block swaps.",
		}),
	}
}

// Provider records one outbound call result.
func (m *Metrics) Provider(provider string, err error) {
	if m == nil {
		return
	}
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.ProviderCallsTotal.WithLabelValues(provider, status).Inc()
}

// Cache records a hit or miss.
func (m *Metrics) Cache(name string, hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.CacheLookupsTotal.WithLabelValues(name, result).Inc()
}

func (m *Metrics) NarrativeFallbackInc() {
	if m == nil {
		return
	}
	m.NarrativeFallbacks.Inc()
}

// Itinerary records one generation attempt.
func (m *Metrics) Itinerary(outcome, mode string, elapsed time.Duration, emptySlots int) {
	if m == nil {
		return
	}
	m.ItinerariesTotal.WithLabelValues(outcome, mode).Inc()
	m.PlanDuration.Observe(elapsed.Seconds())
	if emptySlots > 0 {
		m.EmptySlotsTotal.Add(float64(emptySlots))
	}
}

func (m *Metrics) SwapInc() {
	if m == nil {
		return
	}
	m.SwapsTotal.Inc()
}
