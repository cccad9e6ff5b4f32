package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	earningdomain "github.com/smallbiznis/payroll/internal/earning/domain"
	"gorm.io/gorm"
)

const MaxReasonLength = 500

// AdjustmentInput is one entry of a pending edit. A nil ID asks for a new
// entry; a set ID targets an existing one.
type AdjustmentInput struct {
	ID     *snowflake.ID    `json:"id,omitempty"`
	Reason string           `json:"reason"`
	Amount *decimal.Decimal `json:"amount"`
}

type UpsertPeriodAdjustmentsRequest struct {
	EmployeeID      string
	PayPeriod       string
	Adjustments     []AdjustmentInput
	ActorEmployerID string
}

type Repository interface {
	ListByKey(ctx context.Context, db *gorm.DB, employeeID, payPeriod, employerID string) ([]PeriodLevelAdjustment, error)
	ListByKeyForUpdate(ctx context.Context, tx *gorm.DB, employeeID, payPeriod, employerID string) ([]PeriodLevelAdjustment, error)
	Insert(ctx context.Context, tx *gorm.DB, adjustment *PeriodLevelAdjustment) error
	Update(ctx context.Context, tx *gorm.DB, adjustment *PeriodLevelAdjustment) error
	Delete(ctx context.Context, tx *gorm.DB, ids []snowflake.ID) (int64, error)
	// Consume marks unconsumed ids as owned by payslipID.
	Consume(ctx context.Context, tx *gorm.DB, ids []snowflake.ID, payslipID snowflake.ID) (int64, error)
	Release(ctx context.Context, tx *gorm.DB, payslipIDs []snowflake.ID) (int64, error)
}

type Service interface {
	AddOrUpdateRecordAdjustment(ctx context.Context, recordID snowflake.ID, input AdjustmentInput) (*earningdomain.EarningRecord, error)
	RemoveRecordAdjustment(ctx context.Context, recordID snowflake.ID, adjustmentID snowflake.ID) (*earningdomain.EarningRecord, error)
	ReplaceRecordAdjustments(ctx context.Context, recordID snowflake.ID, inputs []AdjustmentInput) (*earningdomain.EarningRecord, error)
	UpsertPeriodLevelAdjustments(ctx context.Context, req UpsertPeriodAdjustmentsRequest) ([]PeriodLevelAdjustment, error)
	ListPeriodLevelAdjustments(ctx context.Context, employeeID, payPeriod string) ([]PeriodLevelAdjustment, error)
}

var (
	ErrRecordNotFound      = earningdomain.ErrRecordNotFound
	ErrInvalidEmployee     = earningdomain.ErrInvalidEmployee
	ErrInvalidPayPeriod    = earningdomain.ErrInvalidPayPeriod
	ErrRecordNotEditable   = errors.New("record_not_editable")
	ErrAdjustmentNotFound  = errors.New("adjustment_not_found")
	ErrAdjustmentLocked    = errors.New("adjustment_locked")
	ErrDuplicateAdjustment = errors.New("duplicate_adjustment_id")
	ErrInvalidReason       = errors.New("invalid_reason")
	ErrInvalidAmount       = errors.New("invalid_adjustment_amount")
	ErrInvalidActor        = errors.New("invalid_actor")
)
