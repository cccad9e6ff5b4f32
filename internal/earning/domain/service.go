package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/payroll/pkg/db/pagination"
	"gorm.io/gorm"
)

// CreateRecordRequest is emitted when a work item is marked complete.
type CreateRecordRequest struct {
	WorkItemID         string           `json:"work_item_id"`
	Kind               Kind             `json:"kind"`
	EmployeeID         string           `json:"employee_id"`
	EmployeeName       string           `json:"employee_name"`
	EmployeeEmail      string           `json:"employee_email"`
	EmployerID         string           `json:"employer_id"`
	EmployerName       string           `json:"employer_name"`
	PayPeriod          string           `json:"pay_period"`
	ItemDate           time.Time        `json:"item_date"`
	ItemTitle          string           `json:"item_title"`
	HoursWorked        *decimal.Decimal `json:"hours_worked"`
	HourlyRate         *decimal.Decimal `json:"hourly_rate"`
	OBPremiumTotal     *decimal.Decimal `json:"ob_premium_total"`
	OBBreakdown        OBBreakdown      `json:"ob_breakdown"`
	AgreedCompensation *decimal.Decimal `json:"agreed_compensation"`
}

type ListRecordsRequest struct {
	pagination.Pagination
	EmployeeID string `form:"employee_id"`
	PayPeriod  string `form:"pay_period"`
	Status     string `form:"status"`
	Search     string `form:"search"`
}

type ListRecordsResponse struct {
	pagination.PageInfo
	Records []EarningRecord `json:"records"`
}

// ListFilter narrows repository queries. Zero values are ignored.
type ListFilter struct {
	EmployerID string
	EmployeeID string
	PayPeriod  string
	Status     Status
	Search     string
	Cursor     *snowflake.ID
	Limit      int
}

type Repository interface {
	// Insert reports false when a record for the work item already exists.
	Insert(ctx context.Context, db *gorm.DB, record *EarningRecord) (bool, error)
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*EarningRecord, error)
	FindByWorkItemID(ctx context.Context, db *gorm.DB, workItemID string) (*EarningRecord, error)
	FindByIDs(ctx context.Context, db *gorm.DB, ids []snowflake.ID) ([]EarningRecord, error)
	FindByIDsForUpdate(ctx context.Context, tx *gorm.DB, ids []snowflake.ID) ([]EarningRecord, error)
	FindByPayslipForUpdate(ctx context.Context, tx *gorm.DB, payslipIDs []snowflake.ID) ([]EarningRecord, error)
	List(ctx context.Context, db *gorm.DB, filter ListFilter) ([]*EarningRecord, error)
	UpdateAdjustments(ctx context.Context, tx *gorm.DB, record *EarningRecord) (int64, error)
	UpdateTotals(ctx context.Context, tx *gorm.DB, id snowflake.ID, net, total decimal.Decimal) error
	// TransitionStatus moves ids from one status to another only where the
	// stored status still equals from, and returns the affected row count.
	TransitionStatus(ctx context.Context, tx *gorm.DB, ids []snowflake.ID, from Status, fields map[string]any) (int64, error)
}

type Service interface {
	Create(ctx context.Context, req CreateRecordRequest) (*EarningRecord, bool, error)
	Get(ctx context.Context, id snowflake.ID) (*EarningRecord, error)
	List(ctx context.Context, req ListRecordsRequest) (ListRecordsResponse, error)
	// ListPeriod returns every record of an employee's period without
	// pagination, optionally narrowed by status.
	ListPeriod(ctx context.Context, employeeID, payPeriod string, status *Status) ([]EarningRecord, error)
}

var (
	ErrRecordNotFound     = errors.New("record_not_found")
	ErrInvalidPayPeriod   = errors.New("invalid_pay_period")
	ErrInvalidKind        = errors.New("invalid_kind")
	ErrInvalidWorkItem    = errors.New("invalid_work_item_id")
	ErrInvalidEmployee    = errors.New("invalid_employee_id")
	ErrInvalidEmployer    = errors.New("invalid_employer_id")
	ErrInvalidItemDate    = errors.New("invalid_item_date")
	ErrInvalidAmount      = errors.New("invalid_amount")
	ErrInvalidOBBreakdown = errors.New("invalid_ob_breakdown")
	ErrInvalidStatus      = errors.New("invalid_status")
	ErrInvalidPageToken   = errors.New("invalid_page_token")
	ErrWorkItemConflict   = errors.New("work_item_conflict")
)
