// Package metrics expone contadores del motor de traslados en formato Prometheus.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jhoicas/Traslados-api/internal/application/ports"
)

const namespace = "traslados"

var _ ports.Metrics = (*Recorder)(nil)

// Recorder implementa ports.Metrics sobre un registro propio (no el global).
type Recorder struct {
	registry *prometheus.Registry

	transitions   *prometheus.CounterVec
	discrepancies *prometheus.CounterVec
	dispositions  *prometheus.CounterVec
	movements     *prometheus.CounterVec
	httpDuration  *prometheus.HistogramVec
}

// NewRecorder registra las métricas del dominio, las de HTTP y las del runtime de Go.
func NewRecorder() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "transfer_transitions_total",
			Help:      "Transiciones de estado de traslados.",
		}, []string{"status"}),
		discrepancies: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "discrepancies_raised_total",
			Help:      "Discrepancias abiertas o ampliadas por motivo.",
		}, []string{"reason"}),
		dispositions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "dispositions_applied_total",
			Help:      "Líneas de discrepancia resueltas por disposición.",
		}, []string{"disposition"}),
		movements: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stock_movements_total",
			Help:      "Asientos registrados en el ledger por tipo.",
		}, []string{"type"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "Duración de las peticiones HTTP.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
	}
	r.registry.MustRegister(
		r.transitions, r.discrepancies, r.dispositions, r.movements, r.httpDuration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return r
}

func (r *Recorder) TransferTransition(status string) { r.transitions.WithLabelValues(status).Inc() }
func (r *Recorder) DiscrepancyRaised(reason string)  { r.discrepancies.WithLabelValues(reason).Inc() }
func (r *Recorder) DispositionApplied(d string)      { r.dispositions.WithLabelValues(d).Inc() }
func (r *Recorder) MovementRecorded(t string)        { r.movements.WithLabelValues(t).Inc() }

// ObserveHTTP registra la duración de una petición. route es el patrón, no la URL,
// para no crear una serie por ID.
func (r *Recorder) ObserveHTTP(method, route string, status int, d time.Duration) {
	r.httpDuration.WithLabelValues(method, route, strconv.Itoa(status)).Observe(d.Seconds())
}

// Registry devuelve el registro para exponerlo o inspeccionarlo.
func (r *Recorder) Registry() *prometheus.Registry { return r.registry }

// Handler sirve el formato de exposición de Prometheus.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{Registry: r.registry})
}
