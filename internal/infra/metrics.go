package infra

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics groups the business counters exposed at /metrics. Every method is
// nil-safe so services and tests can run without a registry.
type Metrics struct {
	ventas      *prometheus.CounterVec
	pagos       prometheus.Counter
	saldados    prometheus.Counter
	eliminados  *prometheus.CounterVec
	cronDur     *prometheus.HistogramVec
	cronOK      *prometheus.CounterVec
	cronFallido *prometheus.CounterVec
}

// NewMetrics registers the counters on reg. A nil reg yields a no-op Metrics.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		return &Metrics{}
	}
	m := &Metrics{
		ventas: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ventas_confirmadas_total",
			Help: "Ventas confirmadas, por tipo (contado | fiado).",
		}, []string{"tipo"}),
		pagos: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "pagos_fiado_registrados_total",
			Help: "Pagos registrados contra ventas fiadas.",
		}),
		saldados: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "ventas_fiadas_saldadas_total",
			Help: "Ventas fiadas que pasaron a pagada.",
		}),
		eliminados: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "movimientos_caja_eliminados_total",
			Help: "Movimientos de caja eliminados, por tipo.",
		}, []string{"tipo"}),
		cronDur: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "job_duration_seconds",
			Help:    "Duration of cron jobs in seconds.",
			Buckets: prometheus.DefBuckets,
		}, []string{"job"}),
		cronOK: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "job_success",
			Help: "Successful cron job executions.",
		}, []string{"job"}),
		cronFallido: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "job_failure",
			Help: "Failed cron job executions.",
		}, []string{"job"}),
	}
	reg.MustRegister(m.ventas, m.pagos, m.saldados, m.eliminados, m.cronDur, m.cronOK, m.cronFallido)
	return m
}

func (m *Metrics) VentaConfirmada(fiada bool) {
	if m == nil || m.ventas == nil {
		return
	}
	tipo := "contado"
	if fiada {
		tipo = "fiado"
	}
	m.ventas.WithLabelValues(tipo).Inc()
}

func (m *Metrics) PagoRegistrado(saldado bool) {
	if m == nil || m.pagos == nil {
		return
	}
	m.pagos.Inc()
	if saldado {
		m.saldados.Inc()
	}
}

func (m *Metrics) MovimientoEliminado(tipo string) {
	if m == nil || m.eliminados == nil {
		return
	}
	m.eliminados.WithLabelValues(tipo).Inc()
}

// ObserveJob records one cron execution.
func (m *Metrics) ObserveJob(job string, d time.Duration, err error) {
	if m == nil || m.cronDur == nil {
		return
	}
	if job == "" {
		job = "unknown"
	}
	m.cronDur.WithLabelValues(job).Observe(d.Seconds())
	if err != nil {
		m.cronFallido.WithLabelValues(job).Inc()
		return
	}
	m.cronOK.WithLabelValues(job).Inc()
}
