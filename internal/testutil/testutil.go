// Package testutil wires in-memory SQLite databases and fakes shared by the
// service tests.
package testutil

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	auditdomain "github.com/smallbiznis/payroll/internal/audit/domain"
	"github.com/smallbiznis/payroll/internal/clock"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// NewDB opens a private in-memory database and migrates models into it.
// The pool is capped at one connection so transactions serialise exactly
// as row locks would on Postgres.
func NewDB(t *testing.T, models ...any) *gorm.DB {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := gorm.Open(sqlite.Open("file:"+name+"?mode=memory&cache=shared"), &gorm.Config{
		TranslateError: true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if len(models) > 0 {
		require.NoError(t, db.AutoMigrate(models...))
	}
	return db
}

func NewNode(t *testing.T) *snowflake.Node {
	t.Helper()
	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	return node
}

// NewClock returns a fake clock pinned to the end of March 2024.
func NewClock() *clock.FakeClock {
	return clock.NewFakeClock(time.Date(2024, 3, 31, 9, 0, 0, 0, time.UTC))
}

// MockAuditSvc records audit calls.
type MockAuditSvc struct {
	mock.Mock
}

// NewMockAuditSvc accepts any audit call.
func NewMockAuditSvc() *MockAuditSvc {
	m := new(MockAuditSvc)
	m.On("AuditLog", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil).Maybe()
	return m
}

func (m *MockAuditSvc) AuditLog(ctx context.Context, employerID *string, actorType string, actorID *string, action string, targetType string, targetID *string, metadata map[string]any) error {
	args := m.Called(ctx, employerID, actorType, actorID, action, targetType, targetID, metadata)
	return args.Error(0)
}

func (m *MockAuditSvc) List(ctx context.Context, req auditdomain.ListAuditLogRequest) (auditdomain.ListAuditLogResponse, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(auditdomain.ListAuditLogResponse), args.Error(1)
}

// Actions returns the audit actions recorded so far, in call order.
func (m *MockAuditSvc) Actions() []string {
	var actions []string
	for _, call := range m.Calls {
		if call.Method == "AuditLog" {
			actions = append(actions, call.Arguments.String(4))
		}
	}
	return actions
}
