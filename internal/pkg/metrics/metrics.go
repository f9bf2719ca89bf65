// Package metrics holds the Prometheus collectors of the attendance engine.
// A nil *Metrics is valid and records nothing.
package metrics

import (
	"errors"
	"net/http"

	"github.com/cmlabs-hris/hris-attendance-engine/internal/pkg/apperror"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	registry *prometheus.Registry
	handler  http.Handler

	punches          *prometheus.CounterVec
	attendanceStatus *prometheus.CounterVec
	leaveDecisions   *prometheus.CounterVec
	linkedRecords    *prometheus.CounterVec
	handoverItems    *prometheus.CounterVec
	txFailures       *prometheus.CounterVec
	shiftCache       *prometheus.CounterVec
}

func New() *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		registry: registry,
		punches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "attendance_punches_total",
			Help: "Punches recorded, by direction",
		}, []string{"direction"}),
		attendanceStatus: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "attendance_status_changes_total",
			Help: "Attendance status transitions, by target status",
		}, []string{"status"}),
		leaveDecisions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "leave_decisions_total",
			Help: "Leave decisions committed, by resulting status",
		}, []string{"status"}),
		linkedRecords: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "leave_attendance_sync_rows_total",
			Help: "Attendance rows touched by leave synchronization",
		}, []string{"action"}),
		handoverItems: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "handover_item_updates_total",
			Help: "Handover item status updates, by resulting parent status",
		}, []string{"parent_status"}),
		txFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "transaction_failures_total",
			Help: "Failed units of work, by operation and failure kind",
		}, []string{"operation", "kind"}),
		shiftCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "shift_cache_lookups_total",
			Help: "Shift snapshot cache lookups, by result",
		}, []string{"result"}),
	}

	registry.MustRegister(
		m.punches,
		m.attendanceStatus,
		m.leaveDecisions,
		m.linkedRecords,
		m.handoverItems,
		m.txFailures,
		m.shiftCache,
		collectors.NewGoCollector(),
	)
	m.handler = promhttp.HandlerFor(registry, promhttp.HandlerOpts{})

	return m
}

// Handler exposes the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return m.handler
}

func (m *Metrics) ObservePunch(direction string) {
	if m == nil {
		return
	}
	m.punches.WithLabelValues(direction).Inc()
}

func (m *Metrics) ObserveAttendanceStatus(status string) {
	if m == nil {
		return
	}
	m.attendanceStatus.WithLabelValues(status).Inc()
}

func (m *Metrics) ObserveLeaveDecision(status string) {
	if m == nil {
		return
	}
	m.leaveDecisions.WithLabelValues(status).Inc()
}

// ObserveLeaveSync counts rows linked, canceled or unlinked by a leave decision.
func (m *Metrics) ObserveLeaveSync(action string, rows int) {
	if m == nil || rows == 0 {
		return
	}
	m.linkedRecords.WithLabelValues(action).Add(float64(rows))
}

func (m *Metrics) ObserveHandoverItem(parentStatus string) {
	if m == nil {
		return
	}
	m.handoverItems.WithLabelValues(parentStatus).Inc()
}

func (m *Metrics) ObserveShiftCache(hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.shiftCache.WithLabelValues(result).Inc()
}

// ObserveFailure counts err against operation. Nil errors are ignored.
func (m *Metrics) ObserveFailure(operation string, err error) {
	if m == nil || err == nil {
		return
	}
	m.txFailures.WithLabelValues(operation, kindLabel(err)).Inc()
}

func kindLabel(err error) string {
	switch {
	case errors.Is(err, apperror.ErrConcurrency):
		return "concurrency"
	case errors.Is(err, apperror.ErrNotFound):
		return "not_found"
	case errors.Is(err, apperror.ErrInvalidArgument):
		return "invalid_argument"
	case errors.Is(err, apperror.ErrConflict):
		return "conflict"
	default:
		return "internal"
	}
}
