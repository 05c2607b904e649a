package service

import (
	"fmt"
	"net/http"
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsService owns the Prometheus registry for HTTP and domain metrics.
// All methods are safe on a nil receiver.
type MetricsService struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	logins          *prometheus.CounterVec
	eventsCreated   prometheus.Counter
	eventsDeleted   prometheus.Counter
	studentsCreated *prometheus.CounterVec
	importsTotal    *prometheus.CounterVec
	bookings        *prometheus.CounterVec
}

// NewMetricsService registers the collectors.
func NewMetricsService() *MetricsService {
	registry := prometheus.NewRegistry()

	requestDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	requestTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	logins := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "organizer_logins_total",
		Help: "Organizer login attempts by result",
	}, []string{"result"})

	eventsCreated := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "events_created_total",
		Help: "Events created by organizers",
	})

	eventsDeleted := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "events_deleted_total",
		Help: "Events deleted by organizers",
	})

	studentsCreated := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "students_created_total",
		Help: "Students stored, by source",
	}, []string{"source"})

	importsTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "student_imports_total",
		Help: "Bulk student uploads by result",
	}, []string{"result"})

	bookings := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "bookings_total",
		Help: "Booking attempts by result",
	}, []string{"result"})

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(requestDuration, requestTotal, logins, eventsCreated, eventsDeleted, studentsCreated, importsTotal, bookings, goroutines)

	return &MetricsService{
		registry:        registry,
		handler:         promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestDuration: requestDuration,
		requestTotal:    requestTotal,
		logins:          logins,
		eventsCreated:   eventsCreated,
		eventsDeleted:   eventsDeleted,
		studentsCreated: studentsCreated,
		importsTotal:    importsTotal,
		bookings:        bookings,
	}
}

// Handler exposes the Prometheus HTTP handler.
func (m *MetricsService) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// ObserveHTTPRequest records request latency and count.
func (m *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	labelStatus := fmt.Sprintf("%d", status)
	m.requestDuration.WithLabelValues(method, path, labelStatus).Observe(duration.Seconds())
	m.requestTotal.WithLabelValues(method, path, labelStatus).Inc()
}

func (m *MetricsService) RecordLogin(success bool) {
	if m == nil {
		return
	}
	m.logins.WithLabelValues(resultLabel(success)).Inc()
}

func (m *MetricsService) RecordEventCreated() {
	if m == nil {
		return
	}
	m.eventsCreated.Inc()
}

func (m *MetricsService) RecordEventDeleted() {
	if m == nil {
		return
	}
	m.eventsDeleted.Inc()
}

// RecordStudentsCreated counts stored students; source is "import" or "register".
func (m *MetricsService) RecordStudentsCreated(source string, n int) {
	if m == nil || n <= 0 {
		return
	}
	m.studentsCreated.WithLabelValues(source).Add(float64(n))
}

func (m *MetricsService) RecordImport(success bool) {
	if m == nil {
		return
	}
	m.importsTotal.WithLabelValues(resultLabel(success)).Inc()
}

// RecordBooking counts booking attempts; result is "ok", "full", "duplicate" or "error".
func (m *MetricsService) RecordBooking(result string) {
	if m == nil {
		return
	}
	m.bookings.WithLabelValues(result).Inc()
}

func resultLabel(success bool) string {
	if success {
		return "success"
	}
	return "failure"
}
