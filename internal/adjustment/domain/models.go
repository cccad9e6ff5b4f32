package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

// PeriodLevelAdjustment is an employer correction applied to an employee's
// whole pay period rather than to a single record.
type PeriodLevelAdjustment struct {
	ID                  snowflake.ID    `json:"id" gorm:"primaryKey"`
	EmployeeID          string          `json:"employee_id" gorm:"type:varchar(64);not null;index:idx_period_adjustment_key"`
	PayPeriod           string          `json:"pay_period" gorm:"type:char(7);not null;index:idx_period_adjustment_key"`
	Reason              string          `json:"reason" gorm:"type:varchar(500);not null"`
	Amount              decimal.Decimal `json:"amount" gorm:"type:numeric(20,6);not null"`
	CreatedByEmployerID string          `json:"created_by_employer_id" gorm:"type:varchar(64);not null"`
	// PayslipID is set while a live payslip has consumed the adjustment.
	PayslipID *snowflake.ID `json:"payslip_id,omitempty" gorm:"index"`
	CreatedAt time.Time     `json:"created_at" gorm:"not null"`
	UpdatedAt time.Time     `json:"updated_at" gorm:"not null"`
}

func (PeriodLevelAdjustment) TableName() string { return "period_adjustments" }

// Locked reports whether a live payslip has consumed the adjustment.
func (a PeriodLevelAdjustment) Locked() bool {
	return a.PayslipID != nil && *a.PayslipID != 0
}
