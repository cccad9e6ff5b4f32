package paycalc

import (
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/payroll/internal/earning/domain"
	"github.com/stretchr/testify/assert"
	"gorm.io/datatypes"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func shift(hours, rate, ob string, adjustments ...string) domain.EarningRecord {
	r := domain.EarningRecord{
		Kind:           domain.KindShift,
		HoursWorked:    decimal.NewNullDecimal(d(hours)),
		HourlyRate:     d(rate),
		OBPremiumTotal: d(ob),
	}
	for i, amount := range adjustments {
		r.Adjustments = append(r.Adjustments, domain.Adjustment{ID: snowflake.ID(i + 1), Reason: "r", Amount: d(amount)})
	}
	return r
}

func TestRecordTotal_ShiftScenario(t *testing.T) {
	r := shift("8", "200", "150", "500", "-50")

	assert.True(t, BasePay(r).Equal(d("1600")))
	assert.True(t, NetAdjustments(r.Adjustments).Equal(d("450")))
	assert.True(t, RecordTotal(r).Equal(d("2200")))
}

func TestRecordTotal_Engagement(t *testing.T) {
	r := domain.EarningRecord{
		Kind:               domain.KindEngagement,
		AgreedCompensation: d("5000"),
		OBPremiumTotal:     d("999"),
		Adjustments:        []domain.Adjustment{{Reason: "travel", Amount: d("250.50")}},
	}

	assert.True(t, BasePay(r).Equal(d("5000")))
	assert.True(t, OBPremium(r).IsZero())
	assert.True(t, RecordTotal(r).Equal(d("5250.50")))
	assert.True(t, r.Hours().IsZero())
}

func TestRecompute(t *testing.T) {
	t.Run("detects drift", func(t *testing.T) {
		r := shift("8", "200", "150", "500", "-50")
		r.NetAdjustments = d("450")
		r.TotalPay = d("9999")

		res := Recompute(r)
		assert.True(t, res.Drifted)
		assert.True(t, res.TotalPay.Equal(d("2200")))
	})

	t.Run("clean cache", func(t *testing.T) {
		r := shift("8", "200", "150", "500", "-50")
		Apply(&r)

		res := Recompute(r)
		assert.False(t, res.Drifted)
	})

	t.Run("idempotent regardless of edit history", func(t *testing.T) {
		r := shift("7.5", "183.33", "42.10")
		for _, amount := range []string{"10", "-3.333", "0.001", "77"} {
			r.Adjustments = append(r.Adjustments, domain.Adjustment{Amount: d(amount)})
			Apply(&r)
		}
		r.Adjustments = []domain.Adjustment{{Amount: d("100")}, {Amount: d("-25")}}
		first := Apply(&r)
		second := Apply(&r)

		want := d("7.5").Mul(d("183.33")).Add(d("42.10")).Add(d("75"))
		assert.True(t, first.TotalPay.Equal(want))
		assert.True(t, second.TotalPay.Equal(first.TotalPay))
	})
}

func TestNoPrecisionLossAcrossManyAdjustments(t *testing.T) {
	var adjustments []domain.Adjustment
	for i := 0; i < 1000; i++ {
		adjustments = append(adjustments, domain.Adjustment{Amount: d("0.001")})
	}
	assert.True(t, NetAdjustments(adjustments).Equal(d("1")))
}

func TestRoundAndFormat(t *testing.T) {
	assert.Equal(t, "1276.80", FormatAmount(d("1276.8")))
	assert.Equal(t, "0.13", FormatAmount(Round(d("0.125"))))
	assert.Equal(t, "-0.13", FormatAmount(Round(d("-0.125"))))
	assert.Equal(t, "2200.00", FormatAmount(d("2200")))
}

func TestOBLabels(t *testing.T) {
	labels := OBLabels(domain.OBBreakdown{
		domain.OBTierSunHoliday: d("2"),
		domain.OBTierFriSat:     d("3.5"),
		domain.OBTierWeekday:    decimal.Zero,
	})

	assert.Equal(t, []string{
		"OB 75% (Fri/Sat): 3.50 h",
		"OB 100% (Sun/Holiday): 2.00 h",
	}, labels)
	assert.Empty(t, OBLabels(nil))
	assert.Equal(t, "OB 75% (Fri/Sat): 3.50 h; OB 100% (Sun/Holiday): 2.00 h", OBDetails(domain.OBBreakdown{
		domain.OBTierFriSat:     d("3.5"),
		domain.OBTierSunHoliday: d("2"),
	}))
}

func TestOBBreakdownNeverAffectsTotal(t *testing.T) {
	r := shift("8", "200", "150")
	before := RecordTotal(r)
	r.OBBreakdown = datatypes.NewJSONType(domain.OBBreakdown{domain.OBTierFriSat: d("40")})
	assert.True(t, RecordTotal(r).Equal(before))
}

func TestSumBreakdowns(t *testing.T) {
	sum := SumBreakdowns(
		domain.OBBreakdown{domain.OBTierFriSat: d("1.25")},
		domain.OBBreakdown{domain.OBTierFriSat: d("2"), domain.OBTierWeekday: d("4")},
		nil,
	)
	assert.True(t, sum[domain.OBTierFriSat].Equal(d("3.25")))
	assert.True(t, sum[domain.OBTierWeekday].Equal(d("4")))
}
