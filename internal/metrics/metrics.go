package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var durationBuckets = []float64{1, 5, 10, 20, 50, 100, 200, 500, 1000, 5000, 30000}

var (
	CheckObjectsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "atlas_checks_objects_total",
		Help: "Total atlas objects inspected per check",
	}, []string{"check"})
	CheckFlagsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "atlas_checks_flags_total",
		Help: "Total flags produced per check",
	}, []string{"check"})
	CheckDurationMs = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "atlas_checks_check_duration_ms",
		Help:    "Duration of one check over one atlas in milliseconds",
		Buckets: durationBuckets,
	}, []string{"check"})
	CheckPanicsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "atlas_checks_panics_total",
		Help: "Total recovered panics inside check rules",
	}, []string{"check"})
	RunsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "atlas_checks_runs_total",
		Help: "Total check runs by status",
	}, []string{"status"})
	RedisHitsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "atlas_checks_redis_hits_total",
		Help: "Total redis cache hits",
	})
	RedisMissesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "atlas_checks_redis_misses_total",
		Help: "Total redis cache misses",
	})
	MapRouletteRequestsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "atlas_checks_maproulette_requests_total",
		Help: "Total MapRoulette REST requests",
	})
	MapRouletteFailTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "atlas_checks_maproulette_fail_total",
		Help: "Total MapRoulette REST failures",
	})
	MapRouletteDurationMs = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "atlas_checks_maproulette_duration_ms",
		Help:    "MapRoulette REST call duration in milliseconds",
		Buckets: durationBuckets,
	})
	HTTPRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "atlas_checks_http_requests_total",
		Help: "Total service HTTP requests by route",
	}, []string{"route"})
)

func init() {
	prometheus.MustRegister(CheckObjectsTotal)
	prometheus.MustRegister(CheckFlagsTotal)
	prometheus.MustRegister(CheckDurationMs)
	prometheus.MustRegister(CheckPanicsTotal)
	prometheus.MustRegister(RunsTotal)
	prometheus.MustRegister(RedisHitsTotal)
	prometheus.MustRegister(RedisMissesTotal)
	prometheus.MustRegister(MapRouletteRequestsTotal)
	prometheus.MustRegister(MapRouletteFailTotal)
	prometheus.MustRegister(MapRouletteDurationMs)
	prometheus.MustRegister(HTTPRequestsTotal)
}

// Handler 暴露已注册指标，挂载在 /metrics
func Handler() http.Handler { return promhttp.Handler() }
