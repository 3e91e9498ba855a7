package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics owns its registry; nothing is registered on the global default.
type Metrics struct {
	registry    *prometheus.Registry
	httpReqCnt  *prometheus.CounterVec
	httpDur     *prometheus.HistogramVec
	httpInfl    prometheus.Gauge
	submitted   prometheus.Counter
	transitions *prometheus.CounterVec
}

func New(namespace string) *Metrics {
	r := prometheus.NewRegistry()
	r.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	r.MustRegister(collectors.NewGoCollector())

	httpReqCnt := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace, Name: "http_requests_total", Help: "HTTP requests by route and status",
	}, []string{"method", "route", "status"})
	httpDur := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace, Name: "http_request_duration_seconds", Buckets: prometheus.DefBuckets,
	}, []string{"method", "route", "status"})
	httpInfl := prometheus.NewGauge(prometheus.GaugeOpts{Namespace: namespace, Name: "http_requests_inflight"})
	r.MustRegister(httpReqCnt, httpDur, httpInfl)

	submitted := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace, Name: "requests_submitted_total", Help: "Equipment requests created",
	})
	transitions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace, Name: "request_transitions_total", Help: "Equipment request status changes by target status",
	}, []string{"status"})
	r.MustRegister(submitted, transitions)

	return &Metrics{
		registry:    r,
		httpReqCnt:  httpReqCnt,
		httpDur:     httpDur,
		httpInfl:    httpInfl,
		submitted:   submitted,
		transitions: transitions,
	}
}

func (m *Metrics) RequestSubmitted() { m.submitted.Inc() }

func (m *Metrics) RequestTransitioned(status string) {
	m.transitions.WithLabelValues(status).Inc()
}

func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// EchoMiddleware records count and latency per matched route template, not raw path.
// A panic passing through is counted as a 500 and re-raised for the recoverer.
func (m *Metrics) EchoMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			m.httpInfl.Inc()
			defer func() {
				m.httpInfl.Dec()
				if r := recover(); r != nil {
					m.observe(c, http.StatusInternalServerError, start)
					panic(r)
				}
				m.observe(c, c.Response().Status, start)
			}()

			if err := next(c); err != nil {
				c.Error(err)
			}
			return nil
		}
	}
}

func (m *Metrics) observe(c echo.Context, status int, start time.Time) {
	route := c.Path()
	if route == "" {
		route = "unmatched"
	}
	code := strconv.Itoa(status)
	method := c.Request().Method
	m.httpReqCnt.WithLabelValues(method, route, code).Inc()
	m.httpDur.WithLabelValues(method, route, code).Observe(time.Since(start).Seconds())
}
