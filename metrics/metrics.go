package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics expone contadores e histogramas de la consola y del backend REST.
type Metrics struct {
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	backendTotal    *prometheus.CounterVec
	backendDuration *prometheus.HistogramVec
}

// New registra los colectores en reg (o en el registerer por defecto si es nil)
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		requestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "clinisys",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total de peticiones atendidas por la consola",
		}, []string{"method", "route", "status"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "clinisys",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Latencia de las peticiones de la consola",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		backendTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "clinisys",
			Subsystem: "backend",
			Name:      "calls_total",
			Help:      "Total de llamadas al backend REST",
		}, []string{"resource", "method", "outcome"}),
		backendDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "clinisys",
			Subsystem: "backend",
			Name:      "call_duration_seconds",
			Help:      "Latencia de las llamadas al backend REST",
			Buckets:   prometheus.DefBuckets,
		}, []string{"resource", "method"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.requestsTotal, m.requestDuration, m.backendTotal, m.backendDuration)
	return m
}

// ObserveRequest registra una petición atendida
func (m *Metrics) ObserveRequest(method, route string, status int, seconds float64) {
	if m == nil {
		return
	}
	m.requestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.requestDuration.WithLabelValues(method, route).Observe(seconds)
}

// ObserveBackend registra una llamada al backend; outcome es "ok" o "error"
func (m *Metrics) ObserveBackend(resource, method, outcome string, seconds float64) {
	if m == nil {
		return
	}
	m.backendTotal.WithLabelValues(resource, method, outcome).Inc()
	m.backendDuration.WithLabelValues(resource, method).Observe(seconds)
}
