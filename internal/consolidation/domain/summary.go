package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	adjustmentdomain "github.com/smallbiznis/payroll/internal/adjustment/domain"
	earningdomain "github.com/smallbiznis/payroll/internal/earning/domain"
)

// Item is one record's contribution to a consolidated period.
type Item struct {
	RecordID       snowflake.ID               `json:"record_id"`
	WorkItemID     string                     `json:"work_item_id"`
	Kind           earningdomain.Kind         `json:"kind"`
	Status         earningdomain.Status       `json:"status"`
	ItemDate       time.Time                  `json:"item_date"`
	ItemTitle      string                     `json:"item_title"`
	Hours          decimal.Decimal            `json:"hours"`
	BasePay        decimal.Decimal            `json:"base_pay"`
	OBPremium      decimal.Decimal            `json:"ob_premium"`
	OBBreakdown    earningdomain.OBBreakdown  `json:"ob_breakdown"`
	Adjustments    []earningdomain.Adjustment `json:"adjustments"`
	NetAdjustments decimal.Decimal            `json:"net_adjustments"`
	TotalPay       decimal.Decimal            `json:"total_pay"`
}

// Summary is the derived view of an employee's pay period.
//
// SubTotal always equals the sum of item totals and GrandTotal equals
// SubTotal plus TotalPeriodLevelAdjustments.
type Summary struct {
	EmployeeID                  string                                   `json:"employee_id"`
	PayPeriod                   string                                   `json:"pay_period"`
	Items                       []Item                                   `json:"items"`
	TotalHours                  decimal.Decimal                          `json:"total_hours"`
	TotalBasePay                decimal.Decimal                          `json:"total_base_pay"`
	TotalOB                     decimal.Decimal                          `json:"total_ob"`
	TotalItemAdjustments        decimal.Decimal                          `json:"total_item_adjustments"`
	SubTotal                    decimal.Decimal                          `json:"sub_total"`
	OBBreakdown                 earningdomain.OBBreakdown                `json:"ob_breakdown"`
	OBLabels                    []string                                 `json:"ob_labels"`
	PeriodLevelAdjustments      []adjustmentdomain.PeriodLevelAdjustment `json:"period_level_adjustments"`
	TotalPeriodLevelAdjustments decimal.Decimal                          `json:"total_period_level_adjustments"`
	GrandTotal                  decimal.Decimal                          `json:"grand_total"`
}

// RecordIDs returns the item record ids in summary order.
func (s Summary) RecordIDs() []snowflake.ID {
	ids := make([]snowflake.ID, 0, len(s.Items))
	for _, item := range s.Items {
		ids = append(ids, item.RecordID)
	}
	return ids
}

// PeriodAdjustmentIDs returns the ids of the included period-level
// adjustments.
func (s Summary) PeriodAdjustmentIDs() []snowflake.ID {
	ids := make([]snowflake.ID, 0, len(s.PeriodLevelAdjustments))
	for _, adj := range s.PeriodLevelAdjustments {
		ids = append(ids, adj.ID)
	}
	return ids
}

type Service interface {
	Summarize(ctx context.Context, employeeID, payPeriod string) (*Summary, error)
	SummarizeStatus(ctx context.Context, employeeID, payPeriod string, status earningdomain.Status) (*Summary, error)
}

var ErrEmptyPeriod = errors.New("empty_period")
