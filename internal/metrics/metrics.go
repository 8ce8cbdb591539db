package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	LoadsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "placemap_loads_total",
		Help: "Total snapshot loads by outcome",
	}, []string{"outcome"})
	LoadDurationMs = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "placemap_load_duration_ms",
		Help:    "Snapshot load duration in milliseconds",
		Buckets: []float64{10, 50, 100, 250, 500, 1000, 2500, 5000, 10000},
	})
	CacheHitsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "placemap_cache_hits_total",
		Help: "Total snapshot cache hits",
	})
	CacheMissesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "placemap_cache_misses_total",
		Help: "Total snapshot cache misses",
	})
	PlacesLoaded = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "placemap_places_loaded",
		Help: "Places in the most recent snapshot",
	})
	EventsLinked = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "placemap_events_linked",
		Help: "Event links in the most recent snapshot",
	})
	EventsDroppedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "placemap_events_dropped_total",
		Help: "Events excluded during extraction by reason",
	}, []string{"reason"})
	ViewsComputedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "placemap_views_computed_total",
		Help: "Total geospatial reduction passes",
	})
	ActiveSessions = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "placemap_active_sessions",
		Help: "Currently connected websocket map sessions",
	})
)

func init() {
	prometheus.MustRegister(LoadsTotal)
	prometheus.MustRegister(LoadDurationMs)
	prometheus.MustRegister(CacheHitsTotal)
	prometheus.MustRegister(CacheMissesTotal)
	prometheus.MustRegister(PlacesLoaded)
	prometheus.MustRegister(EventsLinked)
	prometheus.MustRegister(EventsDroppedTotal)
	prometheus.MustRegister(ViewsComputedTotal)
	prometheus.MustRegister(ActiveSessions)
}

// Handler returns the Prometheus scrape handler, mounted by the server.
func Handler() http.Handler { return promhttp.Handler() }
