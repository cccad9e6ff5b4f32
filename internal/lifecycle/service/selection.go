package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/bwmarrin/snowflake"
	adjustmentdomain "github.com/smallbiznis/payroll/internal/adjustment/domain"
	consolidationdomain "github.com/smallbiznis/payroll/internal/consolidation/domain"
	earningdomain "github.com/smallbiznis/payroll/internal/earning/domain"
	"github.com/smallbiznis/payroll/internal/employercontext"
	"github.com/smallbiznis/payroll/internal/lifecycle/domain"
	"github.com/smallbiznis/payroll/internal/observability/metrics"
	payslipdomain "github.com/smallbiznis/payroll/internal/payslip/domain"
	presetdomain "github.com/smallbiznis/payroll/internal/preset/domain"
)

// normalizeIDs drops duplicates and keeps the caller's order.
func normalizeIDs(ids []snowflake.ID) ([]snowflake.ID, error) {
	if len(ids) == 0 {
		return nil, domain.ErrEmptySelection
	}
	seen := make(map[snowflake.ID]struct{}, len(ids))
	out := make([]snowflake.ID, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out, nil
}

// requireAll fails with the ids that are missing or owned by another
// employer than the one in ctx.
func requireAll(ctx context.Context, ids []snowflake.ID, records []earningdomain.EarningRecord) error {
	scoped, hasScope := employercontext.EmployerIDFromContext(ctx)
	found := make(map[snowflake.ID]struct{}, len(records))
	for _, r := range records {
		if hasScope && r.EmployerID != scoped {
			continue
		}
		found[r.ID] = struct{}{}
	}
	var missing []snowflake.ID
	for _, id := range ids {
		if _, ok := found[id]; !ok {
			missing = append(missing, id)
		}
	}
	if len(missing) > 0 {
		return domain.NewSelectionError(domain.ErrRecordNotFound, missing)
	}
	return nil
}

// singleKey requires every record to share one employee, period and
// employer.
func singleKey(records []earningdomain.EarningRecord) (periodKey, error) {
	if len(records) == 0 {
		return periodKey{}, domain.ErrEmptySelection
	}
	first := records[0]
	key := periodKey{employeeID: first.EmployeeID, payPeriod: first.PayPeriod, employerID: first.EmployerID}

	var employees, periods, employers []snowflake.ID
	for _, r := range records[1:] {
		if r.EmployeeID != key.employeeID {
			employees = append(employees, r.ID)
		}
		if r.PayPeriod != key.payPeriod {
			periods = append(periods, r.ID)
		}
		if r.EmployerID != key.employerID {
			employers = append(employers, r.ID)
		}
	}
	switch {
	case len(employees) > 0:
		return periodKey{}, domain.NewSelectionError(domain.ErrMixedEmployeeSelection, employees)
	case len(periods) > 0:
		return periodKey{}, domain.NewSelectionError(domain.ErrMixedPeriodSelection, periods)
	case len(employers) > 0:
		return periodKey{}, domain.NewSelectionError(domain.ErrMixedEmployerSelection, employers)
	}
	return key, nil
}

func keysOf(records []earningdomain.EarningRecord) []periodKey {
	seen := make(map[periodKey]struct{})
	keys := make([]periodKey, 0)
	for _, r := range records {
		key := periodKey{employeeID: r.EmployeeID, payPeriod: r.PayPeriod, employerID: r.EmployerID}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		keys = append(keys, key)
	}
	return keys
}

// requireStatus rejects a selection unless every record is in want. A
// selection spanning several statuses is non-homogeneous; a homogeneous
// selection in another status is an invalid transition.
func requireStatus(records []earningdomain.EarningRecord, want earningdomain.Status) error {
	statuses := make(map[earningdomain.Status]struct{})
	var off []snowflake.ID
	for _, r := range records {
		statuses[r.Status] = struct{}{}
		if r.Status != want {
			off = append(off, r.ID)
		}
	}
	if len(off) == 0 {
		return nil
	}
	if len(statuses) > 1 {
		return domain.NewSelectionError(domain.ErrNonHomogeneousSelection, off)
	}
	return domain.NewSelectionError(domain.ErrInvalidTransition, off)
}

func consolidate(key periodKey, records []earningdomain.EarningRecord, adjustments []adjustmentdomain.PeriodLevelAdjustment) (*consolidationdomain.Summary, error) {
	return consolidationdomain.Consolidate(key.employeeID, key.payPeriod, records, adjustments)
}

// translateTxError turns lock and serialization failures raised by the
// database into a retryable concurrent modification.
func translateTxError(err error) error {
	switch metrics.ClassifyInfraReason(err) {
	case metrics.ReasonDBLockTimeout, metrics.ReasonSerializationFailure:
		return fmt.Errorf("%w: %v", domain.ErrConcurrentModification, err)
	}
	return err
}

var knownRejections = []error{
	domain.ErrEmptySelection,
	domain.ErrRecordNotFound,
	domain.ErrMixedEmployeeSelection,
	domain.ErrMixedEmployerSelection,
	domain.ErrMixedPeriodSelection,
	domain.ErrNonHomogeneousSelection,
	domain.ErrInvalidTransition,
	domain.ErrPartialPayslipSelection,
	domain.ErrConcurrentModification,
	consolidationdomain.ErrEmptyPeriod,
	payslipdomain.ErrInvalidTaxPercentage,
	payslipdomain.ErrInvalidVacationRate,
	presetdomain.ErrPresetNotFound,
}

func rejectionReason(err error) string {
	for _, known := range knownRejections {
		if errors.Is(err, known) {
			return known.Error()
		}
	}
	return metrics.ClassifyInfraReason(err)
}
