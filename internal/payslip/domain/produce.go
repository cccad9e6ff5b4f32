package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	consolidationdomain "github.com/smallbiznis/payroll/internal/consolidation/domain"
)

var (
	DefaultVacationRate = decimal.RequireFromString("0.12")
	hundred             = decimal.NewFromInt(100)
)

// Scales of the stored payslip columns. Inputs and parts are rounded to
// them so the stored net always equals the stored parts.
const (
	amountPlaces     int32 = 6
	ratePlaces       int32 = 6
	percentagePlaces int32 = 4
)

// Config holds the producer inputs. A zero VacationRate means
// DefaultVacationRate.
type Config struct {
	TaxPercentage    decimal.Decimal `json:"tax_percentage"`
	ApplyVacationPay bool            `json:"apply_vacation_pay"`
	VacationRate     decimal.Decimal `json:"vacation_rate"`
}

func (c Config) Validate() error {
	if c.TaxPercentage.IsNegative() || c.TaxPercentage.GreaterThan(hundred) {
		return ErrInvalidTaxPercentage
	}
	if c.VacationRate.IsNegative() || c.VacationRate.GreaterThan(decimal.NewFromInt(1)) {
		return ErrInvalidVacationRate
	}
	return nil
}

// Produce derives a payslip from a consolidated summary:
//
//	gross    = summary grand total
//	vacation = gross × rate, when applied
//	tax      = (gross + vacation) × tax% / 100
//	net      = gross + vacation − tax
//
// Amounts are rounded to six decimals before net is derived.
func Produce(summary *consolidationdomain.Summary, cfg Config, id snowflake.ID, now time.Time) (*Payslip, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if summary == nil || len(summary.Items) == 0 {
		return nil, consolidationdomain.ErrEmptyPeriod
	}

	rate := cfg.VacationRate.Round(ratePlaces)
	if rate.IsZero() {
		rate = DefaultVacationRate
	}
	taxPercentage := cfg.TaxPercentage.Round(percentagePlaces)

	gross := summary.GrandTotal.Round(amountPlaces)
	vacation := decimal.Zero
	if cfg.ApplyVacationPay {
		vacation = gross.Mul(rate).Round(amountPlaces)
	}
	tax := gross.Add(vacation).Mul(taxPercentage).Div(hundred).Round(amountPlaces)

	return &Payslip{
		ID:                  id,
		EmployeeID:          summary.EmployeeID,
		PayPeriod:           summary.PayPeriod,
		GrossPay:            gross,
		VacationPayAdded:    vacation,
		TaxDeducted:         tax,
		NetPay:              gross.Add(vacation).Sub(tax),
		TaxPercentage:       taxPercentage,
		VacationRate:        rate,
		ApplyVacationPay:    cfg.ApplyVacationPay,
		SourceRecordIDs:     summary.RecordIDs(),
		PeriodAdjustmentIDs: summary.PeriodAdjustmentIDs(),
		Status:              StatusProcessed,
		ProcessedAt:         now,
		CreatedAt:           now,
		UpdatedAt:           now,
	}, nil
}
