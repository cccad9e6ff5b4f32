package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

type Kind string

const (
	KindShift      Kind = "shift"
	KindEngagement Kind = "engagement"
)

func (k Kind) Valid() bool {
	return k == KindShift || k == KindEngagement
}

type Status string

const (
	StatusPending   Status = "pending"
	StatusProcessed Status = "processed"
	StatusPaid      Status = "paid"
)

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusProcessed, StatusPaid:
		return true
	default:
		return false
	}
}

// OBTier names one inconvenient-hours premium band.
type OBTier string

const (
	OBTierWeekday    OBTier = "weekday_50"
	OBTierFriSat     OBTier = "fri_sat_75"
	OBTierSunHoliday OBTier = "sun_holiday_100"
)

// OBTiers is the canonical display order.
var OBTiers = []OBTier{OBTierWeekday, OBTierFriSat, OBTierSunHoliday}

func (t OBTier) Valid() bool {
	for _, known := range OBTiers {
		if t == known {
			return true
		}
	}
	return false
}

// OBBreakdown maps a premium tier to the hours worked in it. Values are
// supplied upstream and never feed into pay computation.
type OBBreakdown map[OBTier]decimal.Decimal

// Adjustment is a signed correction attached to a single record.
type Adjustment struct {
	ID     snowflake.ID    `json:"id"`
	Reason string          `json:"reason"`
	Amount decimal.Decimal `json:"amount"`
}

type EarningRecord struct {
	ID                 snowflake.ID                    `json:"id" gorm:"primaryKey"`
	WorkItemID         string                          `json:"work_item_id" gorm:"type:varchar(64);not null;uniqueIndex"`
	Kind               Kind                            `json:"kind" gorm:"type:varchar(16);not null"`
	EmployeeID         string                          `json:"employee_id" gorm:"type:varchar(64);not null;index:idx_earning_employee_period"`
	EmployeeName       string                          `json:"employee_name" gorm:"type:varchar(255)"`
	EmployeeEmail      string                          `json:"employee_email" gorm:"type:varchar(255)"`
	EmployerID         string                          `json:"employer_id" gorm:"type:varchar(64);not null;index"`
	EmployerName       string                          `json:"employer_name" gorm:"type:varchar(255)"`
	PayPeriod          string                          `json:"pay_period" gorm:"type:char(7);not null;index:idx_earning_employee_period"`
	ItemDate           time.Time                       `json:"item_date" gorm:"not null"`
	ItemTitle          string                          `json:"item_title" gorm:"type:varchar(255)"`
	HoursWorked        decimal.NullDecimal             `json:"hours_worked" gorm:"type:numeric(20,6)"`
	HourlyRate         decimal.Decimal                 `json:"hourly_rate" gorm:"type:numeric(20,6);not null;default:0"`
	OBPremiumTotal     decimal.Decimal                 `json:"ob_premium_total" gorm:"type:numeric(20,6);not null;default:0"`
	OBBreakdown        datatypes.JSONType[OBBreakdown] `json:"ob_breakdown"`
	AgreedCompensation decimal.Decimal                 `json:"agreed_compensation" gorm:"type:numeric(20,6);not null;default:0"`
	Adjustments        datatypes.JSONSlice[Adjustment] `json:"adjustments"`
	NetAdjustments     decimal.Decimal                 `json:"net_adjustments" gorm:"type:numeric(20,6);not null;default:0"`
	TotalPay           decimal.Decimal                 `json:"total_pay" gorm:"type:numeric(20,6);not null;default:0"`
	Status             Status                          `json:"status" gorm:"type:varchar(16);not null;index"`
	PayslipID          *snowflake.ID                   `json:"payslip_id,omitempty" gorm:"index"`
	CreatedAt          time.Time                       `json:"created_at" gorm:"not null"`
	UpdatedAt          time.Time                       `json:"updated_at" gorm:"not null"`
	ProcessedAt        *time.Time                      `json:"processed_at,omitempty"`
	PaidAt             *time.Time                      `json:"paid_at,omitempty"`
}

func (EarningRecord) TableName() string { return "earning_records" }

// Hours returns the worked hours, treating an absent value as zero.
func (r EarningRecord) Hours() decimal.Decimal {
	if !r.HoursWorked.Valid {
		return decimal.Zero
	}
	return r.HoursWorked.Decimal
}
