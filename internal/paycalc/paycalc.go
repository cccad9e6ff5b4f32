// Package paycalc holds the pure pay arithmetic for earning records.
//
// Every function works at full decimal precision. Rounding to two places
// happens only through Round and FormatAmount, at display or export time.
package paycalc

import (
	"strings"

	"github.com/shopspring/decimal"
	"github.com/smallbiznis/payroll/internal/earning/domain"
)

// BasePay is hours × rate for shifts and the agreed compensation for
// engagements.
func BasePay(r domain.EarningRecord) decimal.Decimal {
	if r.Kind == domain.KindEngagement {
		return r.AgreedCompensation
	}
	return r.Hours().Mul(r.HourlyRate)
}

// OBPremium returns the premium added on top of base pay. Engagements never
// carry one.
func OBPremium(r domain.EarningRecord) decimal.Decimal {
	if r.Kind != domain.KindShift {
		return decimal.Zero
	}
	return r.OBPremiumTotal
}

func NetAdjustments(adjustments []domain.Adjustment) decimal.Decimal {
	total := decimal.Zero
	for _, adj := range adjustments {
		total = total.Add(adj.Amount)
	}
	return total
}

// RecordTotal derives the payable amount from the stored source fields only.
func RecordTotal(r domain.EarningRecord) decimal.Decimal {
	return BasePay(r).Add(OBPremium(r)).Add(NetAdjustments(r.Adjustments))
}

// Result is a fresh computation of a record's cached fields.
type Result struct {
	NetAdjustments decimal.Decimal
	TotalPay       decimal.Decimal
	// Drifted is true when the cached values on the record disagree with
	// the fresh computation.
	Drifted bool
}

func Recompute(r domain.EarningRecord) Result {
	net := NetAdjustments(r.Adjustments)
	total := BasePay(r).Add(OBPremium(r)).Add(net)
	return Result{
		NetAdjustments: net,
		TotalPay:       total,
		Drifted:        !net.Equal(r.NetAdjustments) || !total.Equal(r.TotalPay),
	}
}

// Apply writes a fresh computation into r and returns it.
func Apply(r *domain.EarningRecord) Result {
	res := Recompute(*r)
	r.NetAdjustments = res.NetAdjustments
	r.TotalPay = res.TotalPay
	return res
}

// Round rounds half away from zero to two decimals.
func Round(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// FormatAmount renders d with exactly two decimals.
func FormatAmount(d decimal.Decimal) string {
	return d.StringFixed(2)
}

var tierLabels = map[domain.OBTier]string{
	domain.OBTierWeekday:    "OB 50% (Weekday)",
	domain.OBTierFriSat:     "OB 75% (Fri/Sat)",
	domain.OBTierSunHoliday: "OB 100% (Sun/Holiday)",
}

// OBLabels renders one label per nonzero tier in canonical tier order, for
// example "OB 75% (Fri/Sat): 3.50 h".
func OBLabels(breakdown domain.OBBreakdown) []string {
	labels := make([]string, 0, len(breakdown))
	for _, tier := range domain.OBTiers {
		hours, ok := breakdown[tier]
		if !ok || hours.IsZero() {
			continue
		}
		labels = append(labels, tierLabels[tier]+": "+hours.StringFixed(2)+" h")
	}
	return labels
}

// OBDetails joins the tier labels for single-cell export.
func OBDetails(breakdown domain.OBBreakdown) string {
	return strings.Join(OBLabels(breakdown), "; ")
}

// SumBreakdowns aggregates tier hours across records.
func SumBreakdowns(breakdowns ...domain.OBBreakdown) domain.OBBreakdown {
	out := domain.OBBreakdown{}
	for _, b := range breakdowns {
		for tier, hours := range b {
			out[tier] = out[tier].Add(hours)
		}
	}
	return out
}
