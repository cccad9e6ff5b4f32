package service

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	auditdomain "github.com/smallbiznis/payroll/internal/audit/domain"
	"github.com/smallbiznis/payroll/internal/audit/repository"
	"github.com/smallbiznis/payroll/internal/clock"
	"github.com/smallbiznis/payroll/internal/employercontext"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func newTestService(t *testing.T) (*Service, *gorm.DB, *clock.FakeClock) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&auditdomain.AuditLog{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	fake := clock.NewFakeClock(time.Date(2024, 3, 31, 12, 0, 0, 0, time.UTC))
	svc := NewService(Params{
		DB:    db,
		Log:   zap.NewNop(),
		GenID: node,
		Clock: fake,
		Repo:  repository.Provide(),
	}).(*Service)
	return svc, db, fake
}

func TestAuditLog_ResolvesScopeFromContext(t *testing.T) {
	svc, db, _ := newTestService(t)

	ctx := employercontext.WithEmployerID(context.Background(), "employer-1")
	ctx = employercontext.WithActorID(ctx, "user-9")
	target := "123"

	err := svc.AuditLog(ctx, nil, "", nil, "payslip.process", "payslip", &target, map[string]any{
		"account_number": "1234567890",
		"record_count":   2,
	})
	require.NoError(t, err)

	var stored auditdomain.AuditLog
	require.NoError(t, db.First(&stored).Error)
	assert.Equal(t, "employer-1", *stored.EmployerID)
	assert.Equal(t, employercontext.ActorTypeEmployer, stored.ActorType)
	assert.Equal(t, "user-9", *stored.ActorID)
	assert.Equal(t, "****7890", stored.Metadata["account_number"])
}

func TestAuditLog_RejectsEmptyAction(t *testing.T) {
	svc, _, _ := newTestService(t)
	err := svc.AuditLog(context.Background(), nil, "", nil, "  ", "payslip", nil, nil)
	assert.ErrorIs(t, err, auditdomain.ErrInvalidAction)
}

func TestList_PaginatesNewestFirst(t *testing.T) {
	svc, _, fake := newTestService(t)
	ctx := employercontext.WithEmployerID(context.Background(), "employer-1")

	for i := 0; i < 3; i++ {
		require.NoError(t, svc.AuditLog(ctx, nil, "", nil, "record.pay", "earning_record", nil, nil))
		fake.Advance(time.Minute)
	}

	req := auditdomain.ListAuditLogRequest{}
	req.PageSize = 2
	first, err := svc.List(ctx, req)
	require.NoError(t, err)
	require.Len(t, first.AuditLogs, 2)
	assert.True(t, first.HasMore)
	assert.True(t, first.AuditLogs[0].CreatedAt.After(first.AuditLogs[1].CreatedAt))

	req.PageToken = first.NextPageToken
	second, err := svc.List(ctx, req)
	require.NoError(t, err)
	assert.Len(t, second.AuditLogs, 1)
	assert.False(t, second.HasMore)

	_, err = svc.List(context.Background(), req)
	assert.ErrorIs(t, err, auditdomain.ErrInvalidEmployer)
}
