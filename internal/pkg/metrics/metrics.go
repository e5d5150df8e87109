package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/anicoll/energy-dashboard/internal/pkg/model"
)

const namespace = "energy_dashboard"

type Metrics struct {
	gatherer prometheus.Gatherer

	assemblies       *prometheus.CounterVec
	assemblyDuration *prometheus.HistogramVec
	readFailures     *prometheus.CounterVec
	resyncs          *prometheus.CounterVec
	httpRequests     *prometheus.CounterVec
	httpDuration     *prometheus.HistogramVec
}

// New registers the collectors on reg. Pass prometheus.NewRegistry() in tests.
func New(reg *prometheus.Registry) *Metrics {
	m := &Metrics{
		gatherer: reg,
		assemblies: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "assemblies_total",
			Help:      "Dashboard assemblies by preset, data source and result.",
		}, []string{"preset", "source", "result"}),
		assemblyDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "assembly_duration_seconds",
			Help:      "Histogram of dashboard assembly durations by data source.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"source"}),
		readFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "store_read_failures_total",
			Help:      "Failed store reads by read.",
		}, []string{"read"}),
		resyncs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "resyncs_total",
			Help:      "Resync requests to the ingestion backend by result.",
		}, []string{"result"}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total count of HTTP requests processed by route and status.",
		}, []string{"route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "Histogram of HTTP request durations by route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route"}),
	}

	reg.MustRegister(
		m.assemblies,
		m.assemblyDuration,
		m.readFailures,
		m.resyncs,
		m.httpRequests,
		m.httpDuration,
	)
	return m
}

func (m *Metrics) AssemblyFinished(preset model.Preset, source string, err error, took time.Duration) {
	if m == nil {
		return
	}
	m.assemblies.WithLabelValues(preset.String(), source, result(err)).Inc()
	m.assemblyDuration.WithLabelValues(source).Observe(took.Seconds())
}

func (m *Metrics) ReadFailed(read string) {
	if m == nil {
		return
	}
	m.readFailures.WithLabelValues(read).Inc()
}

func (m *Metrics) ResyncFinished(err error) {
	if m == nil {
		return
	}
	m.resyncs.WithLabelValues(result(err)).Inc()
}

func result(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(status int) {
	s.status = status
	s.ResponseWriter.WriteHeader(status)
}

func (m *Metrics) WrapHandler(route string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()

		next.ServeHTTP(recorder, r)

		if m != nil {
			m.httpRequests.WithLabelValues(route, strconv.Itoa(recorder.status)).Inc()
			m.httpDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
		}
	})
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}
