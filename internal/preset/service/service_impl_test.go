package service

import (
	"context"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/payroll/internal/employercontext"
	"github.com/smallbiznis/payroll/internal/preset/domain"
	"github.com/smallbiznis/payroll/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestService(t *testing.T) (domain.Service, *testutil.MockAuditSvc) {
	t.Helper()
	audit := testutil.NewMockAuditSvc()
	svc := NewService(Params{
		DB:       testutil.NewDB(t, &domain.PayrollPreset{}),
		Log:      zap.NewNop(),
		GenID:    testutil.NewNode(t),
		Clock:    testutil.NewClock(),
		AuditSvc: audit,
	})
	return svc, audit
}

func tax(v int64) *decimal.Decimal {
	d := decimal.NewFromInt(v)
	return &d
}

func TestPresetCRUD(t *testing.T) {
	svc, audit := newTestService(t)
	acme := employercontext.WithEmployerID(context.Background(), "acme")
	globex := employercontext.WithEmployerID(context.Background(), "globex")

	standard, err := svc.Create(acme, domain.CreatePresetRequest{PresetName: " Standard ", TaxPercentage: tax(30), ApplyVacationPay: true})
	require.NoError(t, err)
	assert.Equal(t, "Standard", standard.PresetName)

	_, err = svc.Create(acme, domain.CreatePresetRequest{PresetName: "Standard", TaxPercentage: tax(25)})
	assert.ErrorIs(t, err, domain.ErrPresetNameTaken)

	// names are unique per employer only
	_, err = svc.Create(globex, domain.CreatePresetRequest{PresetName: "Standard", TaxPercentage: tax(25)})
	require.NoError(t, err)

	_, err = svc.Create(acme, domain.CreatePresetRequest{PresetName: "Contractor", TaxPercentage: tax(0)})
	require.NoError(t, err)

	list, err := svc.List(acme)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "Contractor", list[0].PresetName)

	_, err = svc.Get(globex, standard.ID)
	assert.ErrorIs(t, err, domain.ErrPresetNotFound)

	off := false
	updated, err := svc.Update(acme, standard.ID, domain.UpdatePresetRequest{TaxPercentage: tax(32), ApplyVacationPay: &off})
	require.NoError(t, err)
	assert.True(t, updated.TaxPercentage.Equal(decimal.NewFromInt(32)))
	assert.False(t, updated.ApplyVacationPay)

	got, err := svc.Get(acme, standard.ID)
	require.NoError(t, err)
	assert.True(t, got.TaxPercentage.Equal(decimal.NewFromInt(32)))
	assert.False(t, got.ApplyVacationPay)

	rename := "Contractor"
	_, err = svc.Update(acme, standard.ID, domain.UpdatePresetRequest{PresetName: &rename})
	assert.ErrorIs(t, err, domain.ErrPresetNameTaken)

	require.NoError(t, svc.Delete(acme, standard.ID))
	assert.ErrorIs(t, svc.Delete(acme, standard.ID), domain.ErrPresetNotFound)

	assert.Equal(t, []string{
		"payroll_preset.create",
		"payroll_preset.create",
		"payroll_preset.create",
		"payroll_preset.update",
		"payroll_preset.delete",
	}, audit.Actions())
}

func TestPresetValidation(t *testing.T) {
	svc, _ := newTestService(t)
	acme := employercontext.WithEmployerID(context.Background(), "acme")

	_, err := svc.Create(context.Background(), domain.CreatePresetRequest{PresetName: "x", TaxPercentage: tax(1)})
	assert.ErrorIs(t, err, domain.ErrInvalidEmployer)

	_, err = svc.Create(acme, domain.CreatePresetRequest{PresetName: "  ", TaxPercentage: tax(1)})
	assert.ErrorIs(t, err, domain.ErrInvalidPresetName)

	_, err = svc.Create(acme, domain.CreatePresetRequest{PresetName: "x", TaxPercentage: tax(101)})
	assert.ErrorIs(t, err, domain.ErrInvalidTaxPercentage)

	_, err = svc.Create(acme, domain.CreatePresetRequest{PresetName: "x"})
	assert.ErrorIs(t, err, domain.ErrInvalidTaxPercentage)

	_, err = svc.Get(acme, snowflake.ID(0))
	assert.ErrorIs(t, err, domain.ErrPresetNotFound)
}
