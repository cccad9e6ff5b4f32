package service

import (
	"context"
	"testing"

	"github.com/smallbiznis/payroll/internal/employee/domain"
	"github.com/smallbiznis/payroll/internal/employee/repository"
	"github.com/smallbiznis/payroll/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestBankDetails(t *testing.T) {
	db := testutil.NewDB(t, &domain.BankDetails{}, &domain.EmploymentRelationship{})
	require.NoError(t, db.Create(&domain.BankDetails{
		EmployeeID:     "emp-1",
		BankName:       "Nordbank",
		ClearingNumber: "8327",
		AccountNumber:  "1234567890",
	}).Error)
	svc := NewService(Params{Log: zap.NewNop(), Repo: repository.Provide(db)})

	got, err := svc.BankDetails(context.Background(), "emp-1")
	require.NoError(t, err)
	assert.Equal(t, "Nordbank", got.BankName)

	_, err = svc.BankDetails(context.Background(), "emp-2")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = svc.BankDetails(context.Background(), " ")
	assert.ErrorIs(t, err, domain.ErrInvalidEmployee)
}

func TestEmploymentRelationship_Cached(t *testing.T) {
	db := testutil.NewDB(t, &domain.EmploymentRelationship{})
	require.NoError(t, db.Create(&domain.EmploymentRelationship{EmployeeID: "emp-1", EmployerID: "acme", Type: "Hourly"}).Error)
	svc := NewService(Params{Log: zap.NewNop(), Repo: repository.Provide(db)})
	ctx := context.Background()

	rel, err := svc.EmploymentRelationship(ctx, "emp-1", "acme")
	require.NoError(t, err)
	assert.Equal(t, domain.EmploymentHourly, rel.Type)

	require.NoError(t, db.Where("employee_id = ?", "emp-1").Delete(&domain.EmploymentRelationship{}).Error)

	rel, err = svc.EmploymentRelationship(ctx, "emp-1", "acme")
	require.NoError(t, err)
	assert.Equal(t, domain.EmploymentHourly, rel.Type)

	_, err = svc.EmploymentRelationship(ctx, "emp-1", "globex")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
