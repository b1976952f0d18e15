package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics набор prometheus-коллекторов сервиса
type Metrics struct {
	// HTTP
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	// База данных
	DBQueryDuration     *prometheus.HistogramVec
	DBQueryErrors       *prometheus.CounterVec
	DBOpenConnections   *prometheus.GaugeVec
	DBInUseConnections  *prometheus.GaugeVec
	DBIdleConnections   *prometheus.GaugeVec
	DBWaitCount         *prometheus.GaugeVec
	DBWaitDurationTotal *prometheus.GaugeVec

	// Доменные метрики
	BookingsCreated     prometheus.Counter
	BookingsRejected    *prometheus.CounterVec
	BookingsCancelled   *prometheus.CounterVec
	WriteRetries        *prometheus.CounterVec
	SlotCacheLookups    *prometheus.CounterVec
	ClientsConsolidated prometheus.Counter
}

// New регистрирует коллекторы в глобальном реестре
func New(serviceName string) *Metrics {
	return NewWithRegisterer(serviceName, prometheus.DefaultRegisterer)
}

// NewWithRegisterer регистрирует коллекторы в переданном реестре
func NewWithRegisterer(serviceName string, reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	labels := prometheus.Labels{"service": serviceName}

	return &Metrics{
		HTTPRequestsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name:        "http_requests_total",
			Help:        "Total number of HTTP requests",
			ConstLabels: labels,
		}, []string{"method", "route", "status"}),
		HTTPRequestDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:        "http_request_duration_seconds",
			Help:        "HTTP request latency",
			Buckets:     prometheus.DefBuckets,
			ConstLabels: labels,
		}, []string{"method", "route"}),

		DBQueryDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:        "db_query_duration_seconds",
			Help:        "Database query latency",
			Buckets:     []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5},
			ConstLabels: labels,
		}, []string{"operation"}),
		DBQueryErrors: f.NewCounterVec(prometheus.CounterOpts{
			Name:        "db_query_errors_total",
			Help:        "Database query errors",
			ConstLabels: labels,
		}, []string{"operation"}),
		DBOpenConnections: f.NewGaugeVec(prometheus.GaugeOpts{
			Name:        "db_open_connections",
			Help:        "Open connections in the pool",
			ConstLabels: labels,
		}, []string{"db"}),
		DBInUseConnections: f.NewGaugeVec(prometheus.GaugeOpts{
			Name:        "db_in_use_connections",
			Help:        "Connections currently in use",
			ConstLabels: labels,
		}, []string{"db"}),
		DBIdleConnections: f.NewGaugeVec(prometheus.GaugeOpts{
			Name:        "db_idle_connections",
			Help:        "Idle connections in the pool",
			ConstLabels: labels,
		}, []string{"db"}),
		DBWaitCount: f.NewGaugeVec(prometheus.GaugeOpts{
			Name:        "db_wait_count",
			Help:        "Total number of connections waited for",
			ConstLabels: labels,
		}, []string{"db"}),
		DBWaitDurationTotal: f.NewGaugeVec(prometheus.GaugeOpts{
			Name:        "db_wait_duration_seconds_total",
			Help:        "Total time blocked waiting for a new connection",
			ConstLabels: labels,
		}, []string{"db"}),

		BookingsCreated: f.NewCounter(prometheus.CounterOpts{
			Name:        "bookings_created_total",
			Help:        "Appointments created",
			ConstLabels: labels,
		}),
		BookingsRejected: f.NewCounterVec(prometheus.CounterOpts{
			Name:        "bookings_rejected_total",
			Help:        "Booking attempts rejected by kind",
			ConstLabels: labels,
		}, []string{"kind"}),
		BookingsCancelled: f.NewCounterVec(prometheus.CounterOpts{
			Name:        "bookings_cancelled_total",
			Help:        "Appointments cancelled or expired",
			ConstLabels: labels,
		}, []string{"status"}),
		WriteRetries: f.NewCounterVec(prometheus.CounterOpts{
			Name:        "store_write_retries_total",
			Help:        "Retries of transient store failures",
			ConstLabels: labels,
		}, []string{"operation"}),
		SlotCacheLookups: f.NewCounterVec(prometheus.CounterOpts{
			Name:        "slot_cache_lookups_total",
			Help:        "Slot cache lookups by result",
			ConstLabels: labels,
		}, []string{"result"}),
		ClientsConsolidated: f.NewCounter(prometheus.CounterOpts{
			Name:        "clients_consolidated_total",
			Help:        "Duplicate client rows folded into a kept row",
			ConstLabels: labels,
		}),
	}
}

// Методы ниже безопасны для nil-получателя: при выключенных метриках
// в use case передается (*Metrics)(nil)

func (m *Metrics) IncBookingCreated() {
	if m == nil {
		return
	}
	m.BookingsCreated.Inc()
}

func (m *Metrics) IncBookingRejected(kind string) {
	if m == nil {
		return
	}
	m.BookingsRejected.WithLabelValues(kind).Inc()
}

func (m *Metrics) IncBookingReleased(status string) {
	if m == nil {
		return
	}
	m.BookingsCancelled.WithLabelValues(status).Inc()
}

func (m *Metrics) IncWriteRetry(operation string) {
	if m == nil {
		return
	}
	m.WriteRetries.WithLabelValues(operation).Inc()
}

func (m *Metrics) ObserveCacheLookup(hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.SlotCacheLookups.WithLabelValues(result).Inc()
}

func (m *Metrics) AddClientsConsolidated(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.ClientsConsolidated.Add(float64(n))
}
