package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/samber/lo"
)

const namespace = "classscheduler"

var (
	// HTTP
	APIRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "api_requests_total",
		Help:      "HTTP requests served, by method, route and status",
	}, []string{"method", "endpoint", "status"})

	APIRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "api_request_duration_seconds",
		Help:      "HTTP request latency, by method, route and status",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "endpoint", "status"})

	APIActiveConnections = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "api_active_connections",
		Help:      "HTTP requests currently in flight",
	})

	// Schedule building
	BuildsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "builds_total",
		Help:      "Schedule builds run",
	})

	BuildDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "build_duration_seconds",
		Help:      "Time spent gathering courses and enumerating schedules",
		Buckets:   prometheus.ExponentialBuckets(0.001, 4, 10),
	})

	SchedulesProduced = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "schedules_produced",
		Help:      "Schedules produced per build",
		Buckets:   prometheus.ExponentialBuckets(1, 4, 10),
	})

	CourseErrorsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "course_errors_total",
		Help:      "Requested courses that could not be gathered",
	})

	// Class search
	ClassSearchRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "classsearch_requests_total",
		Help:      "Requests sent to the class-search site, by page kind and outcome",
	}, []string{"kind", "outcome"})

	TableCacheLookupsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "table_cache_lookups_total",
		Help:      "Department table cache lookups, by result",
	}, []string{"result"})
)

// Handler exposes the default registry
func Handler() http.Handler {
	return promhttp.Handler()
}

// ObserveBuild records one schedule build
func ObserveBuild(started time.Time, schedules int, courseErrors int) {
	BuildsTotal.Inc()
	BuildDuration.Observe(time.Since(started).Seconds())
	SchedulesProduced.Observe(float64(schedules))
	CourseErrorsTotal.Add(float64(courseErrors))
}

// ClassSearchRecorder feeds class-search requests and table cache lookups into the collectors above
type ClassSearchRecorder struct{}

func (ClassSearchRecorder) ObserveRequest(kind string, ok bool) {
	ClassSearchRequestsTotal.WithLabelValues(kind, lo.Ternary(ok, "ok", "error")).Inc()
}

func (ClassSearchRecorder) ObserveTableLookup(hit bool) {
	TableCacheLookupsTotal.WithLabelValues(lo.Ternary(hit, "hit", "miss")).Inc()
}

// responseWriter wraps http.ResponseWriter to capture status code.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
	written    bool
}

func (rw *responseWriter) WriteHeader(code int) {
	if !rw.written {
		rw.statusCode = code
		rw.written = true
		rw.ResponseWriter.WriteHeader(code)
	}
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	if !rw.written {
		rw.WriteHeader(http.StatusOK)
	}
	return rw.ResponseWriter.Write(b)
}

// Middleware tracks HTTP request metrics labelled by chi route pattern
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		APIActiveConnections.Inc()
		defer APIActiveConnections.Dec()

		wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(wrapped, r)

		endpoint := r.URL.Path
		if routeCtx := chi.RouteContext(r.Context()); routeCtx != nil && routeCtx.RoutePattern() != "" {
			endpoint = routeCtx.RoutePattern()
		}
		status := strconv.Itoa(wrapped.statusCode)

		APIRequestDuration.WithLabelValues(r.Method, endpoint, status).Observe(time.Since(start).Seconds())
		APIRequestsTotal.WithLabelValues(r.Method, endpoint, status).Inc()
	})
}
