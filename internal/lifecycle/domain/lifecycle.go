package domain

import (
	"context"
	"errors"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	earningdomain "github.com/smallbiznis/payroll/internal/earning/domain"
	payslipdomain "github.com/smallbiznis/payroll/internal/payslip/domain"
)

// ConfigOverride carries explicit producer inputs. Nil fields fall back to
// the preset and then to the shared payroll defaults.
type ConfigOverride struct {
	TaxPercentage    *decimal.Decimal `json:"tax_percentage"`
	ApplyVacationPay *bool            `json:"apply_vacation_pay"`
	VacationRate     *decimal.Decimal `json:"vacation_rate"`
}

type ProcessRequest struct {
	RecordIDs  []snowflake.ID  `json:"record_ids"`
	EmployeeID string          `json:"employee_id"`
	PresetID   *snowflake.ID   `json:"preset_id,omitempty"`
	Config     *ConfigOverride `json:"config,omitempty"`
	ActorID    string          `json:"actor_id"`
}

type BulkRequest struct {
	RecordIDs []snowflake.ID `json:"record_ids"`
	ActorID   string         `json:"actor_id"`
}

type RevertRequest struct {
	RecordIDs  []snowflake.ID       `json:"record_ids"`
	FromStatus earningdomain.Status `json:"from_status"`
	ActorID    string               `json:"actor_id"`
}

type Service interface {
	// ProcessBulk moves pending records of one employee and period to
	// processed and returns the payslip derived from them.
	ProcessBulk(ctx context.Context, req ProcessRequest) (*payslipdomain.Payslip, error)
	// PayBulk moves processed records to paid together with their payslips.
	PayBulk(ctx context.Context, req BulkRequest) ([]payslipdomain.Payslip, error)
	// RevertBulk walks records one edge back from req.FromStatus.
	RevertBulk(ctx context.Context, req RevertRequest) ([]payslipdomain.Payslip, error)
}

var (
	ErrEmptySelection          = errors.New("empty_selection")
	ErrRecordNotFound          = earningdomain.ErrRecordNotFound
	ErrMixedEmployeeSelection  = errors.New("mixed_employee_selection")
	ErrMixedEmployerSelection  = errors.New("mixed_employer_selection")
	ErrMixedPeriodSelection    = errors.New("mixed_period_selection")
	ErrNonHomogeneousSelection = errors.New("non_homogeneous_selection")
	ErrInvalidTransition       = errors.New("invalid_transition")
	ErrPartialPayslipSelection = errors.New("partial_payslip_selection")
	ErrConcurrentModification  = errors.New("concurrent_modification")
)

// SelectionError names the records that made a selection unacceptable.
type SelectionError struct {
	Err error
	IDs []snowflake.ID
}

func NewSelectionError(err error, ids []snowflake.ID) *SelectionError {
	return &SelectionError{Err: err, IDs: ids}
}

func (e *SelectionError) Error() string {
	if len(e.IDs) == 0 {
		return e.Err.Error()
	}
	parts := make([]string, 0, len(e.IDs))
	for _, id := range e.IDs {
		parts = append(parts, id.String())
	}
	return e.Err.Error() + ": " + strings.Join(parts, ",")
}

func (e *SelectionError) Unwrap() error { return e.Err }
