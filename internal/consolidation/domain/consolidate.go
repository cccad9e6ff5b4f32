package domain

import (
	"sort"

	"github.com/shopspring/decimal"
	adjustmentdomain "github.com/smallbiznis/payroll/internal/adjustment/domain"
	earningdomain "github.com/smallbiznis/payroll/internal/earning/domain"
	"github.com/smallbiznis/payroll/internal/paycalc"
)

// Consolidate reduces the records of one employee and pay period into a
// Summary. Records for other keys are ignored. Item totals are recomputed
// from source fields, so a drifted cache never reaches the summary.
func Consolidate(employeeID, payPeriod string, records []earningdomain.EarningRecord, periodAdjustments []adjustmentdomain.PeriodLevelAdjustment) (*Summary, error) {
	matching := make([]earningdomain.EarningRecord, 0, len(records))
	for _, r := range records {
		if r.EmployeeID == employeeID && r.PayPeriod == payPeriod {
			matching = append(matching, r)
		}
	}
	if len(matching) == 0 {
		return nil, ErrEmptyPeriod
	}
	sort.SliceStable(matching, func(i, j int) bool {
		if !matching[i].ItemDate.Equal(matching[j].ItemDate) {
			return matching[i].ItemDate.Before(matching[j].ItemDate)
		}
		return matching[i].ID < matching[j].ID
	})

	summary := &Summary{
		EmployeeID:           employeeID,
		PayPeriod:            payPeriod,
		Items:                make([]Item, 0, len(matching)),
		TotalHours:           decimal.Zero,
		TotalBasePay:         decimal.Zero,
		TotalOB:              decimal.Zero,
		TotalItemAdjustments: decimal.Zero,
		SubTotal:             decimal.Zero,
	}

	breakdowns := make([]earningdomain.OBBreakdown, 0, len(matching))
	for _, r := range matching {
		fresh := paycalc.Recompute(r)
		breakdown := r.OBBreakdown.Data()
		item := Item{
			RecordID:       r.ID,
			WorkItemID:     r.WorkItemID,
			Kind:           r.Kind,
			Status:         r.Status,
			ItemDate:       r.ItemDate,
			ItemTitle:      r.ItemTitle,
			Hours:          r.Hours(),
			BasePay:        paycalc.BasePay(r),
			OBPremium:      paycalc.OBPremium(r),
			OBBreakdown:    breakdown,
			Adjustments:    append([]earningdomain.Adjustment(nil), r.Adjustments...),
			NetAdjustments: fresh.NetAdjustments,
			TotalPay:       fresh.TotalPay,
		}
		summary.Items = append(summary.Items, item)
		summary.TotalHours = summary.TotalHours.Add(item.Hours)
		summary.TotalBasePay = summary.TotalBasePay.Add(item.BasePay)
		summary.TotalOB = summary.TotalOB.Add(item.OBPremium)
		summary.TotalItemAdjustments = summary.TotalItemAdjustments.Add(item.NetAdjustments)
		summary.SubTotal = summary.SubTotal.Add(item.TotalPay)
		if r.Kind == earningdomain.KindShift {
			breakdowns = append(breakdowns, breakdown)
		}
	}
	summary.OBBreakdown = paycalc.SumBreakdowns(breakdowns...)
	summary.OBLabels = paycalc.OBLabels(summary.OBBreakdown)

	return summary.WithPeriodLevelAdjustments(periodAdjustments), nil
}

// WithPeriodLevelAdjustments returns a copy of s carrying only the
// adjustments for its key, with the grand total recomputed from the
// already summed items.
func (s Summary) WithPeriodLevelAdjustments(adjustments []adjustmentdomain.PeriodLevelAdjustment) *Summary {
	s.PeriodLevelAdjustments = make([]adjustmentdomain.PeriodLevelAdjustment, 0, len(adjustments))
	s.TotalPeriodLevelAdjustments = decimal.Zero
	for _, adj := range adjustments {
		if adj.EmployeeID != s.EmployeeID || adj.PayPeriod != s.PayPeriod {
			continue
		}
		s.PeriodLevelAdjustments = append(s.PeriodLevelAdjustments, adj)
		s.TotalPeriodLevelAdjustments = s.TotalPeriodLevelAdjustments.Add(adj.Amount)
	}
	s.GrandTotal = s.SubTotal.Add(s.TotalPeriodLevelAdjustments)
	return &s
}
