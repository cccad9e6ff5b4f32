package metrics

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/prometheus/client_golang/prometheus"
	"gorm.io/gorm"
)

const (
	ActionProcess = "process"
	ActionPay     = "pay"
	ActionRevert  = "revert"
)

const (
	ReasonDeadlineExceeded     = "deadline_exceeded"
	ReasonDBLockTimeout        = "db_lock_timeout"
	ReasonSerializationFailure = "serialization_failure"
	ReasonUniqueViolation      = "unique_violation"
	ReasonUnknown              = "unknown"
)

// PayrollMetrics captures status lifecycle and consistency signals.
type PayrollMetrics struct {
	transitions      *prometheus.CounterVec
	rejections       *prometheus.CounterVec
	cacheRepairs     *prometheus.CounterVec
	lockWait         prometheus.Observer
	recordsPerAction *prometheus.HistogramVec
	exports          *prometheus.CounterVec
}

var (
	payrollMetricsOnce sync.Once
	payrollMetrics     *PayrollMetrics
)

// Payroll returns the process-wide payroll metrics registered on the
// default registerer.
func Payroll() *PayrollMetrics {
	return PayrollWithConfig(Config{})
}

func PayrollWithConfig(cfg Config) *PayrollMetrics {
	payrollMetricsOnce.Do(func() {
		payrollMetrics = NewPayrollMetrics(prometheus.DefaultRegisterer, cfg)
	})
	return payrollMetrics
}

// NewPayrollMetrics registers a fresh set of collectors on registerer.
func NewPayrollMetrics(registerer prometheus.Registerer, cfg Config) *PayrollMetrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}
	labels := cfg.constLabels()

	transitions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name:        "payroll_status_transitions_total",
		Help:        "Earning record status transitions by action and edge.",
		ConstLabels: labels,
	}, []string{"action", "from", "to"})
	rejections := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name:        "payroll_transition_rejections_total",
		Help:        "Rejected lifecycle actions by low-cardinality reason.",
		ConstLabels: labels,
	}, []string{"action", "reason"})
	cacheRepairs := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name:        "payroll_cached_total_repairs_total",
		Help:        "Records whose cached totals drifted from the recomputed value.",
		ConstLabels: labels,
	}, []string{"stage"})
	lockWait := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:        "payroll_period_lock_wait_seconds",
		Help:        "Time spent acquiring the per-period distributed lock.",
		Buckets:     []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		ConstLabels: labels,
	})
	recordsPerAction := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:        "payroll_records_per_action",
		Help:        "Selection size of successful lifecycle actions.",
		Buckets:     []float64{1, 2, 5, 10, 20, 50, 100, 250},
		ConstLabels: labels,
	}, []string{"action"})
	exports := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name:        "payroll_exports_total",
		Help:        "Record exports by format.",
		ConstLabels: labels,
	}, []string{"format"})

	registerer.MustRegister(transitions, rejections, cacheRepairs, lockWait, recordsPerAction, exports)

	return &PayrollMetrics{
		transitions:      transitions,
		rejections:       rejections,
		cacheRepairs:     cacheRepairs,
		lockWait:         lockWait,
		recordsPerAction: recordsPerAction,
		exports:          exports,
	}
}

// ObserveTransition counts count records moved along from -> to.
func (m *PayrollMetrics) ObserveTransition(action, from, to string, count int) {
	if m == nil || count <= 0 {
		return
	}
	m.transitions.WithLabelValues(action, from, to).Add(float64(count))
	m.recordsPerAction.WithLabelValues(action).Observe(float64(count))
}

func (m *PayrollMetrics) IncRejection(action, reason string) {
	if m == nil {
		return
	}
	if reason == "" {
		reason = ReasonUnknown
	}
	m.rejections.WithLabelValues(action, reason).Inc()
}

func (m *PayrollMetrics) IncCacheRepair(stage string) {
	if m == nil {
		return
	}
	m.cacheRepairs.WithLabelValues(stage).Inc()
}

func (m *PayrollMetrics) ObserveLockWait(d time.Duration) {
	if m == nil {
		return
	}
	m.lockWait.Observe(d.Seconds())
}

func (m *PayrollMetrics) IncExport(format string) {
	if m == nil {
		return
	}
	m.exports.WithLabelValues(format).Inc()
}

// ClassifyInfraReason maps database and context failures to a
// low-cardinality reason. Domain errors are labelled by the caller.
func ClassifyInfraReason(err error) string {
	switch {
	case err == nil:
		return ReasonUnknown
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return ReasonDeadlineExceeded
	case hasPGCode(err, "55P03"):
		return ReasonDBLockTimeout
	case hasPGCode(err, "40001"):
		return ReasonSerializationFailure
	case errors.Is(err, gorm.ErrDuplicatedKey), hasPGCode(err, "23505"):
		return ReasonUniqueViolation
	default:
		return ReasonUnknown
	}
}

func hasPGCode(err error, code string) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == code
	}
	return false
}
