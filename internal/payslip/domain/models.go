package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

type Status string

const (
	StatusProcessed Status = "processed"
	StatusPaid      Status = "paid"
	StatusVoid      Status = "void"
)

func (s Status) Valid() bool {
	switch s {
	case StatusProcessed, StatusPaid, StatusVoid:
		return true
	default:
		return false
	}
}

// Payslip is the immutable financial snapshot of one processing action.
// Only the status columns change after insert.
type Payslip struct {
	ID                  snowflake.ID                      `json:"id" gorm:"primaryKey"`
	EmployeeID          string                            `json:"employee_id" gorm:"type:varchar(64);not null;index:idx_payslip_employee_period"`
	EmployerID          string                            `json:"employer_id" gorm:"type:varchar(64);not null;index"`
	PayPeriod           string                            `json:"pay_period" gorm:"type:char(7);not null;index:idx_payslip_employee_period"`
	GrossPay            decimal.Decimal                   `json:"gross_pay" gorm:"type:numeric(20,6);not null"`
	VacationPayAdded    decimal.Decimal                   `json:"vacation_pay_added" gorm:"type:numeric(20,6);not null"`
	TaxDeducted         decimal.Decimal                   `json:"tax_deducted" gorm:"type:numeric(20,6);not null"`
	NetPay              decimal.Decimal                   `json:"net_pay" gorm:"type:numeric(20,6);not null"`
	TaxPercentage       decimal.Decimal                   `json:"tax_percentage" gorm:"type:numeric(9,4);not null"`
	VacationRate        decimal.Decimal                   `json:"vacation_rate" gorm:"type:numeric(9,6);not null"`
	ApplyVacationPay    bool                              `json:"apply_vacation_pay" gorm:"not null"`
	SourceRecordIDs     datatypes.JSONSlice[snowflake.ID] `json:"source_record_ids"`
	PeriodAdjustmentIDs datatypes.JSONSlice[snowflake.ID] `json:"period_adjustment_ids"`
	Status              Status                            `json:"status" gorm:"type:varchar(16);not null;index"`
	ProcessedAt         time.Time                         `json:"processed_at" gorm:"not null"`
	PaidAt              *time.Time                        `json:"paid_at,omitempty"`
	VoidedAt            *time.Time                        `json:"voided_at,omitempty"`
	CreatedAt           time.Time                         `json:"created_at" gorm:"not null"`
	UpdatedAt           time.Time                         `json:"updated_at" gorm:"not null"`
}

func (Payslip) TableName() string { return "payslips" }
