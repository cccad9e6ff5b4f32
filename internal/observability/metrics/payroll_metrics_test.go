package metrics

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func TestClassifyInfraReason(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want string
	}{
		{name: "deadline", err: context.DeadlineExceeded, want: ReasonDeadlineExceeded},
		{name: "db_lock_timeout", err: &pgconn.PgError{Code: "55P03"}, want: ReasonDBLockTimeout},
		{name: "serialization_failure", err: &pgconn.PgError{Code: "40001"}, want: ReasonSerializationFailure},
		{name: "unique_violation", err: gorm.ErrDuplicatedKey, want: ReasonUniqueViolation},
		{name: "unknown", err: errors.New("boom"), want: ReasonUnknown},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ClassifyInfraReason(tc.err))
		})
	}
}

func TestObserveTransition(t *testing.T) {
	registry := prometheus.NewRegistry()
	m := NewPayrollMetrics(registry, Config{ServiceName: "payroll", Environment: "test"})

	m.ObserveTransition(ActionProcess, "pending", "processed", 3)
	m.ObserveTransition(ActionProcess, "pending", "processed", 0)
	m.IncRejection(ActionPay, "")

	assert.Equal(t, float64(3), testutil.ToFloat64(m.transitions.WithLabelValues(ActionProcess, "pending", "processed")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.rejections.WithLabelValues(ActionPay, ReasonUnknown)))
}

func TestNilMetricsAreSafe(t *testing.T) {
	var m *PayrollMetrics
	assert.NotPanics(t, func() {
		m.ObserveTransition(ActionPay, "processed", "paid", 1)
		m.IncRejection(ActionPay, "x")
		m.IncCacheRepair("process")
		m.IncExport("csv")
	})
}
