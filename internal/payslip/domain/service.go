package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/payroll/pkg/db/pagination"
	"gorm.io/gorm"
)

type ListPayslipsRequest struct {
	pagination.Pagination
	EmployeeID string `form:"employee_id"`
	PayPeriod  string `form:"pay_period"`
	Status     string `form:"status"`
}

type ListPayslipsResponse struct {
	pagination.PageInfo
	Payslips []Payslip `json:"payslips"`
}

type ListFilter struct {
	EmployerID string
	EmployeeID string
	PayPeriod  string
	Status     Status
	Cursor     *snowflake.ID
	Limit      int
}

type Repository interface {
	Insert(ctx context.Context, tx *gorm.DB, payslip *Payslip) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Payslip, error)
	FindByIDsForUpdate(ctx context.Context, tx *gorm.DB, ids []snowflake.ID) ([]Payslip, error)
	List(ctx context.Context, db *gorm.DB, filter ListFilter) ([]*Payslip, error)
	// TransitionStatus only touches status and its timestamps.
	TransitionStatus(ctx context.Context, tx *gorm.DB, ids []snowflake.ID, from Status, fields map[string]any) (int64, error)
}

type Service interface {
	Get(ctx context.Context, id snowflake.ID) (*Payslip, error)
	List(ctx context.Context, req ListPayslipsRequest) (ListPayslipsResponse, error)
}

var (
	ErrPayslipNotFound      = errors.New("payslip_not_found")
	ErrInvalidTaxPercentage = errors.New("invalid_tax_percentage")
	ErrInvalidVacationRate  = errors.New("invalid_vacation_rate")
	ErrInvalidStatus        = errors.New("invalid_payslip_status")
	ErrInvalidPageToken     = errors.New("invalid_page_token")
)
