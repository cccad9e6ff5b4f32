package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	adjustmentdomain "github.com/smallbiznis/payroll/internal/adjustment/domain"
	adjustmentrepo "github.com/smallbiznis/payroll/internal/adjustment/repository"
	adjustmentsvc "github.com/smallbiznis/payroll/internal/adjustment/service"
	auditdomain "github.com/smallbiznis/payroll/internal/audit/domain"
	auditrepo "github.com/smallbiznis/payroll/internal/audit/repository"
	auditsvc "github.com/smallbiznis/payroll/internal/audit/service"
	"github.com/smallbiznis/payroll/internal/config"
	consolidationdomain "github.com/smallbiznis/payroll/internal/consolidation/domain"
	consolidationsvc "github.com/smallbiznis/payroll/internal/consolidation/service"
	earningdomain "github.com/smallbiznis/payroll/internal/earning/domain"
	earningrepo "github.com/smallbiznis/payroll/internal/earning/repository"
	earningsvc "github.com/smallbiznis/payroll/internal/earning/service"
	employeedomain "github.com/smallbiznis/payroll/internal/employee/domain"
	employeerepo "github.com/smallbiznis/payroll/internal/employee/repository"
	employeesvc "github.com/smallbiznis/payroll/internal/employee/service"
	"github.com/smallbiznis/payroll/internal/export"
	lifecycledomain "github.com/smallbiznis/payroll/internal/lifecycle/domain"
	lifecyclesvc "github.com/smallbiznis/payroll/internal/lifecycle/service"
	"github.com/smallbiznis/payroll/internal/lock"
	payslipdomain "github.com/smallbiznis/payroll/internal/payslip/domain"
	paysliprepo "github.com/smallbiznis/payroll/internal/payslip/repository"
	payslipsvc "github.com/smallbiznis/payroll/internal/payslip/service"
	presetdomain "github.com/smallbiznis/payroll/internal/preset/domain"
	presetsvc "github.com/smallbiznis/payroll/internal/preset/service"
	"github.com/smallbiznis/payroll/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type testServer struct {
	db     *gorm.DB
	engine *gin.Engine
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	db := testutil.NewDB(t,
		&earningdomain.EarningRecord{},
		&adjustmentdomain.PeriodLevelAdjustment{},
		&payslipdomain.Payslip{},
		&presetdomain.PayrollPreset{},
		&employeedomain.BankDetails{},
		&employeedomain.EmploymentRelationship{},
		&auditdomain.AuditLog{},
	)
	node := testutil.NewNode(t)
	clk := testutil.NewClock()
	log := zap.NewNop()

	audit := auditsvc.NewService(auditsvc.Params{DB: db, Log: log, GenID: node, Clock: clk, Repo: auditrepo.Provide()})
	recordRepo := earningrepo.Provide()
	adjustmentRepo := adjustmentrepo.Provide()
	payslipRepo := paysliprepo.Provide()

	records := earningsvc.NewService(earningsvc.Params{DB: db, Log: log, GenID: node, Clock: clk, Repo: recordRepo, AuditSvc: audit})
	adjustments := adjustmentsvc.NewService(adjustmentsvc.Params{DB: db, Log: log, GenID: node, Clock: clk, Repo: adjustmentRepo, RecordRepo: recordRepo, AuditSvc: audit})
	presets := presetsvc.NewService(presetsvc.Params{DB: db, Log: log, GenID: node, Clock: clk, AuditSvc: audit})
	employees := employeesvc.NewService(employeesvc.Params{Log: log, Repo: employeerepo.Provide(db)})

	engine := NewEngine(nil)
	NewServer(ServerParams{
		Gin:              engine,
		Cfg:              config.Config{Environment: "test"},
		RecordSvc:        records,
		AdjustmentSvc:    adjustments,
		ConsolidationSvc: consolidationsvc.NewService(consolidationsvc.Params{Log: log, RecordSvc: records, AdjustmentSvc: adjustments}),
		LifecycleSvc: lifecyclesvc.NewService(lifecyclesvc.Params{
			DB:             db,
			Log:            log,
			GenID:          node,
			Clock:          clk,
			RecordRepo:     recordRepo,
			AdjustmentRepo: adjustmentRepo,
			PayslipRepo:    payslipRepo,
			PresetSvc:      presets,
			EmployeeSvc:    employees,
			Defaults:       config.NewStaticPayrollConfigHolder(config.DefaultPayrollDefaults()),
			AuditSvc:       audit,
		}),
		PayslipSvc:  payslipsvc.NewService(payslipsvc.Params{DB: db, Log: log, Repo: payslipRepo}),
		PresetSvc:   presets,
		EmployeeSvc: employees,
		ExportSvc:   export.NewService(export.Params{DB: db, Log: log, RecordRepo: recordRepo}),
		AuditSvc:    audit,
	})

	return &testServer{db: db, engine: engine}
}

func (ts *testServer) do(t *testing.T, method, path, employerID string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if employerID != "" {
		req.Header.Set(HeaderEmployer, employerID)
		req.Header.Set(HeaderActor, "user-1")
	}
	rec := httptest.NewRecorder()
	ts.engine.ServeHTTP(rec, req)
	return rec
}

type envelope[T any] struct {
	Data  T            `json:"data"`
	Error errorPayload `json:"error"`
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) envelope[T] {
	t.Helper()
	var out envelope[T]
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func (ts *testServer) createShift(t *testing.T, workItem string) earningdomain.EarningRecord {
	t.Helper()
	rec := ts.do(t, http.MethodPost, "/api/v1/records", "acme", map[string]any{
		"work_item_id":     workItem,
		"kind":             "shift",
		"employee_id":      "emp-1",
		"employer_name":    "Acme AB",
		"item_date":        "2024-03-04T00:00:00Z",
		"hours_worked":     "8",
		"hourly_rate":      "200",
		"ob_premium_total": "150",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return decode[earningdomain.EarningRecord](t, rec).Data
}

func (ts *testServer) createEngagement(t *testing.T, workItem, compensation string) earningdomain.EarningRecord {
	t.Helper()
	rec := ts.do(t, http.MethodPost, "/api/v1/records", "acme", map[string]any{
		"work_item_id":        workItem,
		"kind":                "engagement",
		"employee_id":         "emp-1",
		"item_date":           "2024-03-20T00:00:00Z",
		"agreed_compensation": compensation,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return decode[earningdomain.EarningRecord](t, rec).Data
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("X-Request-Id"))
}

func TestEmployerHeaderRequired(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodGet, "/api/v1/records", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "unauthorized", decode[any](t, rec).Error.Type)
}

func TestRecords(t *testing.T) {
	ts := newTestServer(t)
	shift := ts.createShift(t, "shift-1")
	assert.True(t, shift.TotalPay.Equal(decimal.NewFromInt(1750)))
	assert.Equal(t, "acme", shift.EmployerID)

	t.Run("duplicate work item returns stored record", func(t *testing.T) {
		rec := ts.do(t, http.MethodPost, "/api/v1/records", "acme", map[string]any{
			"work_item_id": "shift-1",
			"kind":         "shift",
			"employee_id":  "emp-1",
			"item_date":    "2024-03-04T00:00:00Z",
			"hours_worked": "8",
			"hourly_rate":  "200",
		})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		assert.Equal(t, shift.ID, decode[earningdomain.EarningRecord](t, rec).Data.ID)
	})

	t.Run("work item of another employer conflicts", func(t *testing.T) {
		rec := ts.do(t, http.MethodPost, "/api/v1/records", "globex", map[string]any{
			"work_item_id": "shift-1",
			"kind":         "shift",
			"employee_id":  "emp-1",
			"item_date":    "2024-03-04T00:00:00Z",
			"hours_worked": "8",
			"hourly_rate":  "200",
		})
		require.Equal(t, http.StatusConflict, rec.Code, rec.Body.String())
		assert.Equal(t, "work_item_conflict", decode[any](t, rec).Error.Type)
		assert.NotContains(t, rec.Body.String(), "1750")
	})

	t.Run("get", func(t *testing.T) {
		rec := ts.do(t, http.MethodGet, "/api/v1/records/"+shift.ID.String(), "acme", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "shift-1", decode[earningdomain.EarningRecord](t, rec).Data.WorkItemID)
	})

	t.Run("foreign employer", func(t *testing.T) {
		rec := ts.do(t, http.MethodGet, "/api/v1/records/"+shift.ID.String(), "globex", nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("invalid id", func(t *testing.T) {
		rec := ts.do(t, http.MethodGet, "/api/v1/records/abc", "acme", nil)
		require.Equal(t, http.StatusBadRequest, rec.Code)
		payload := decode[any](t, rec).Error
		assert.Equal(t, "validation_error", payload.Type)
		require.Len(t, payload.Errors, 1)
		assert.Equal(t, "invalid_id", payload.Errors[0].Code)
	})

	t.Run("invalid kind", func(t *testing.T) {
		rec := ts.do(t, http.MethodPost, "/api/v1/records", "acme", map[string]any{
			"work_item_id": "x-1",
			"kind":         "bonus",
			"employee_id":  "emp-1",
			"item_date":    "2024-03-04T00:00:00Z",
		})
		require.Equal(t, http.StatusBadRequest, rec.Code)
		payload := decode[any](t, rec).Error
		require.Len(t, payload.Errors, 1)
		assert.Equal(t, "invalid_kind", payload.Errors[0].Code)
		assert.Equal(t, "kind", payload.Errors[0].Field)
	})

	t.Run("list", func(t *testing.T) {
		rec := ts.do(t, http.MethodGet, "/api/v1/records?employee_id=emp-1&pay_period=2024-03", "acme", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Len(t, decode[[]earningdomain.EarningRecord](t, rec).Data, 1)

		rec = ts.do(t, http.MethodGet, "/api/v1/records", "globex", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Empty(t, decode[[]earningdomain.EarningRecord](t, rec).Data)
	})
}

func TestRecordAdjustments(t *testing.T) {
	ts := newTestServer(t)
	shift := ts.createShift(t, "shift-1")
	base := "/api/v1/records/" + shift.ID.String() + "/adjustments"

	rec := ts.do(t, http.MethodPost, base, "acme", map[string]any{"reason": "bonus", "amount": "500"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	updated := decode[earningdomain.EarningRecord](t, rec).Data
	assert.True(t, updated.TotalPay.Equal(decimal.NewFromInt(2250)))
	require.Len(t, updated.Adjustments, 1)

	rec = ts.do(t, http.MethodPut, base, "acme", map[string]any{
		"adjustments": []map[string]any{
			{"reason": "bonus", "amount": "500"},
			{"reason": "late", "amount": "-50"},
		},
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	updated = decode[earningdomain.EarningRecord](t, rec).Data
	assert.True(t, updated.TotalPay.Equal(decimal.NewFromInt(2200)))
	require.Len(t, updated.Adjustments, 2)

	rec = ts.do(t, http.MethodDelete, base+"/"+updated.Adjustments[1].ID.String(), "acme", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.True(t, decode[earningdomain.EarningRecord](t, rec).Data.TotalPay.Equal(decimal.NewFromInt(2250)))

	rec = ts.do(t, http.MethodPost, base, "acme", map[string]any{"reason": "   ", "amount": "10"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = ts.do(t, http.MethodDelete, base+"/12345", "acme", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestPayrollFlow(t *testing.T) {
	ts := newTestServer(t)
	shift := ts.createShift(t, "shift-1")
	engagement := ts.createEngagement(t, "engagement-1", "1800")

	rec := ts.do(t, http.MethodPut, "/api/v1/records/"+shift.ID.String()+"/adjustments", "acme", map[string]any{
		"adjustments": []map[string]any{
			{"reason": "bonus", "amount": "500"},
			{"reason": "late", "amount": "-50"},
		},
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	periodPath := "/api/v1/employees/emp-1/periods/2024-03"
	rec = ts.do(t, http.MethodPut, periodPath+"/adjustments", "acme", map[string]any{
		"adjustments": []map[string]any{{"reason": "equipment", "amount": "-200"}},
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Len(t, decode[[]adjustmentdomain.PeriodLevelAdjustment](t, rec).Data, 1)

	rec = ts.do(t, http.MethodGet, periodPath+"/summary", "acme", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	summary := decode[consolidationdomain.Summary](t, rec).Data
	assert.True(t, summary.SubTotal.Equal(decimal.NewFromInt(4000)))
	assert.True(t, summary.GrandTotal.Equal(decimal.NewFromInt(3800)))
	assert.Len(t, summary.Items, 2)

	ids := []string{shift.ID.String(), engagement.ID.String()}
	rec = ts.do(t, http.MethodPost, "/api/v1/records/process", "acme", map[string]any{
		"record_ids":  ids,
		"employee_id": "emp-1",
		"config":      map[string]any{"tax_percentage": "30", "apply_vacation_pay": true},
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	slip := decode[payslipdomain.Payslip](t, rec).Data
	assert.True(t, slip.GrossPay.Equal(decimal.NewFromInt(3800)))
	assert.True(t, slip.VacationPayAdded.Equal(decimal.NewFromInt(456)))
	assert.True(t, slip.TaxDeducted.Equal(decimal.RequireFromString("1276.80")))
	assert.True(t, slip.NetPay.Equal(decimal.RequireFromString("2979.20")))

	t.Run("process twice is rejected", func(t *testing.T) {
		rec := ts.do(t, http.MethodPost, "/api/v1/records/process", "acme", map[string]any{
			"record_ids":  ids,
			"employee_id": "emp-1",
		})
		require.Equal(t, http.StatusConflict, rec.Code)
		payload := decode[any](t, rec).Error
		assert.Equal(t, lifecycledomain.ErrInvalidTransition.Error(), payload.Type)
		assert.False(t, payload.Retryable)
	})

	t.Run("consumed period adjustment is locked", func(t *testing.T) {
		rec := ts.do(t, http.MethodPut, periodPath+"/adjustments", "acme", map[string]any{
			"adjustments": []map[string]any{},
		})
		require.Equal(t, http.StatusConflict, rec.Code)
		assert.Equal(t, adjustmentdomain.ErrAdjustmentLocked.Error(), decode[any](t, rec).Error.Type)
	})

	t.Run("partial payslip selection", func(t *testing.T) {
		rec := ts.do(t, http.MethodPost, "/api/v1/records/pay", "acme", map[string]any{
			"record_ids": []string{shift.ID.String()},
		})
		require.Equal(t, http.StatusConflict, rec.Code)
		assert.Equal(t, lifecycledomain.ErrPartialPayslipSelection.Error(), decode[any](t, rec).Error.Type)
	})

	rec = ts.do(t, http.MethodPost, "/api/v1/records/pay", "acme", map[string]any{"record_ids": ids})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	paid := decode[[]payslipdomain.Payslip](t, rec).Data
	require.Len(t, paid, 1)
	assert.Equal(t, payslipdomain.StatusPaid, paid[0].Status)

	rec = ts.do(t, http.MethodGet, "/api/v1/payslips/"+slip.ID.String(), "acme", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, payslipdomain.StatusPaid, decode[payslipdomain.Payslip](t, rec).Data.Status)

	rec = ts.do(t, http.MethodGet, "/api/v1/payslips?employee_id=emp-1", "acme", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]payslipdomain.Payslip](t, rec).Data, 1)

	rec = ts.do(t, http.MethodGet, "/api/v1/payslips/"+slip.ID.String(), "globex", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = ts.do(t, http.MethodGet, periodPath+"/summary?status=paid", "acme", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.True(t, decode[consolidationdomain.Summary](t, rec).Data.GrandTotal.Equal(decimal.NewFromInt(3800)))

	rec = ts.do(t, http.MethodPost, "/api/v1/records/revert", "acme", map[string]any{
		"record_ids":  ids,
		"from_status": "pending",
	})
	require.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, lifecycledomain.ErrInvalidTransition.Error(), decode[any](t, rec).Error.Type)

	rec = ts.do(t, http.MethodPost, "/api/v1/records/revert", "acme", map[string]any{
		"record_ids":  ids,
		"from_status": "PAID",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = ts.do(t, http.MethodGet, "/api/v1/audit-logs?action=payroll.pay", "acme", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	logs := decode[[]auditdomain.AuditLog](t, rec).Data
	require.Len(t, logs, 1)
	assert.NotZero(t, logs[0].ID)
	assert.Equal(t, "payroll.pay", logs[0].Action)
}

func TestSelectionErrorsCarryIDs(t *testing.T) {
	ts := newTestServer(t)
	shift := ts.createShift(t, "shift-1")

	rec := ts.do(t, http.MethodPost, "/api/v1/records/pay", "acme", map[string]any{
		"record_ids": []string{shift.ID.String(), "424242"},
	})
	require.Equal(t, http.StatusNotFound, rec.Code, rec.Body.String())
	assert.Equal(t, []string{"424242"}, decode[any](t, rec).Error.IDs)

	rec = ts.do(t, http.MethodPost, "/api/v1/records/pay", "acme", map[string]any{"record_ids": []string{}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestEmptyPeriodSummary(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodGet, "/api/v1/employees/emp-1/periods/2024-03/summary", "acme", nil)
	require.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, consolidationdomain.ErrEmptyPeriod.Error(), decode[any](t, rec).Error.Type)

	rec = ts.do(t, http.MethodGet, "/api/v1/employees/emp-1/periods/2024-13/summary", "acme", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPresets(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodPost, "/api/v1/presets", "acme", map[string]any{
		"preset_name":        "Standard",
		"tax_percentage":     "30",
		"apply_vacation_pay": true,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decode[presetdomain.PayrollPreset](t, rec).Data

	rec = ts.do(t, http.MethodPost, "/api/v1/presets", "acme", map[string]any{
		"preset_name":    "Standard",
		"tax_percentage": "25",
	})
	require.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, presetdomain.ErrPresetNameTaken.Error(), decode[any](t, rec).Error.Type)

	rec = ts.do(t, http.MethodPatch, "/api/v1/presets/"+created.ID.String(), "acme", map[string]any{"tax_percentage": "32"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.True(t, decode[presetdomain.PayrollPreset](t, rec).Data.TaxPercentage.Equal(decimal.NewFromInt(32)))

	rec = ts.do(t, http.MethodGet, "/api/v1/presets", "globex", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decode[[]presetdomain.PayrollPreset](t, rec).Data)

	rec = ts.do(t, http.MethodDelete, "/api/v1/presets/"+created.ID.String(), "acme", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = ts.do(t, http.MethodDelete, "/api/v1/presets/"+created.ID.String(), "acme", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestBankDetails(t *testing.T) {
	ts := newTestServer(t)
	require.NoError(t, ts.db.Create(&employeedomain.BankDetails{
		EmployeeID:     "emp-1",
		BankName:       "Nordbank",
		ClearingNumber: "8327",
		AccountNumber:  "1234567890",
	}).Error)

	rec := ts.do(t, http.MethodGet, "/api/v1/employees/emp-1/bank-details", "acme", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Nordbank", decode[employeedomain.BankDetails](t, rec).Data.BankName)

	rec = ts.do(t, http.MethodGet, "/api/v1/employees/emp-2/bank-details", "acme", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestExportRecords(t *testing.T) {
	ts := newTestServer(t)
	created := ts.createShift(t, "shift-1")

	rec := ts.do(t, http.MethodGet, "/api/v1/exports/records.csv?pay_period=2024-03", "acme", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.True(t, strings.HasPrefix(rec.Header().Get("Content-Type"), "text/csv"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "acme-ab-2024-03-payroll.csv")
	assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte{0xEF, 0xBB, 0xBF}))
	assert.Contains(t, rec.Body.String(), created.ID.String())
	assert.Contains(t, rec.Body.String(), "1750.00")

	rec = ts.do(t, http.MethodGet, "/api/v1/exports/records.xlsx", "acme", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "spreadsheetml")
	assert.NotEmpty(t, rec.Body.Bytes())

	rec = ts.do(t, http.MethodGet, "/api/v1/exports/records.csv?status=archived", "acme", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestMapError(t *testing.T) {
	cases := []struct {
		name      string
		err       error
		status    int
		errType   string
		retryable bool
	}{
		{"concurrent modification", lifecycledomain.ErrConcurrentModification, http.StatusConflict, "concurrent_modification", true},
		{"lock held", lock.ErrLockHeld, http.StatusConflict, "concurrent_modification", true},
		{"mixed employee", lifecycledomain.NewSelectionError(lifecycledomain.ErrMixedEmployeeSelection, []snowflake.ID{7}), http.StatusConflict, "mixed_employee_selection", false},
		{"not editable", adjustmentdomain.ErrRecordNotEditable, http.StatusConflict, "record_not_editable", false},
		{"work item conflict", earningdomain.ErrWorkItemConflict, http.StatusConflict, "work_item_conflict", false},
		{"wrapped validation", errWrap(earningdomain.ErrInvalidPayPeriod), http.StatusBadRequest, "validation_error", false},
		{"unavailable", ErrServiceUnavailable, http.StatusServiceUnavailable, "service_unavailable", false},
		{"unknown", assert.AnError, http.StatusInternalServerError, "internal_error", false},
	}

	for _, row := range cases {
		t.Run(row.name, func(t *testing.T) {
			status, payload := mapError(row.err)
			assert.Equal(t, row.status, status)
			assert.Equal(t, row.errType, payload.Type)
			assert.Equal(t, row.retryable, payload.Retryable)
		})
	}

	_, payload := mapError(lifecycledomain.NewSelectionError(lifecycledomain.ErrMixedEmployeeSelection, []snowflake.ID{7, 9}))
	assert.Equal(t, []string{"7", "9"}, payload.IDs)
}

type wrappedErr struct{ err error }

func (w wrappedErr) Error() string { return "bind: " + w.err.Error() }
func (w wrappedErr) Unwrap() error { return w.err }

func errWrap(err error) error { return wrappedErr{err: err} }
