package config

import (
	"errors"
	"log"
	"strings"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

// PayrollDefaults are the shared producer inputs used when neither the
// request nor a preset supplies a value.
type PayrollDefaults struct {
	VacationRate  decimal.Decimal
	TaxPercentage decimal.Decimal
	// ApplyVacationPayFor lists employment types whose payslips include
	// vacation pay by default.
	ApplyVacationPayFor []string
}

// AppliesVacationPay reports whether the employment type defaults to
// vacation pay.
func (d PayrollDefaults) AppliesVacationPay(employmentType string) bool {
	for _, t := range d.ApplyVacationPayFor {
		if strings.EqualFold(t, employmentType) {
			return true
		}
	}
	return false
}

type rawPayrollDefaults struct {
	VacationRate        string   `mapstructure:"vacation_rate"`
	TaxPercentage       string   `mapstructure:"tax_percentage"`
	ApplyVacationPayFor []string `mapstructure:"apply_vacation_pay_for"`
}

func DefaultPayrollDefaults() PayrollDefaults {
	return PayrollDefaults{
		VacationRate:        decimal.RequireFromString("0.12"),
		TaxPercentage:       decimal.RequireFromString("30"),
		ApplyVacationPayFor: []string{"hourly"},
	}
}

type PayrollConfigHolder struct {
	current atomic.Value // holds PayrollDefaults
}

// NewStaticPayrollConfigHolder returns a holder that never reloads.
func NewStaticPayrollConfigHolder(defaults PayrollDefaults) *PayrollConfigHolder {
	holder := &PayrollConfigHolder{}
	holder.current.Store(defaults)
	return holder
}

func NewPayrollConfigHolder(cfg Config) (*PayrollConfigHolder, error) {
	v := viper.New()

	v.SetConfigName("payroll")
	v.SetConfigType("yml")
	for _, path := range cfg.PayrollConfigPaths {
		v.AddConfigPath(path)
	}

	v.SetEnvPrefix("PAYROLL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	defaults := DefaultPayrollDefaults()
	v.SetDefault("payroll.vacation_rate", defaults.VacationRate.String())
	v.SetDefault("payroll.tax_percentage", defaults.TaxPercentage.String())
	v.SetDefault("payroll.apply_vacation_pay_for", defaults.ApplyVacationPayFor)

	watch := true
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
		watch = false
	}

	parsed, err := decodePayrollDefaults(v)
	if err != nil {
		return nil, err
	}

	holder := NewStaticPayrollConfigHolder(parsed)
	if !watch {
		return holder, nil
	}

	v.WatchConfig()
	v.OnConfigChange(func(e fsnotify.Event) {
		updated, err := decodePayrollDefaults(v)
		if err != nil {
			log.Printf("[payroll-config] invalid config ignored: %v", err)
			return
		}
		holder.current.Store(updated)
		log.Printf("[payroll-config] reloaded from %s", e.Name)
	})

	return holder, nil
}

func (h *PayrollConfigHolder) Get() PayrollDefaults {
	return h.current.Load().(PayrollDefaults)
}

func decodePayrollDefaults(v *viper.Viper) (PayrollDefaults, error) {
	var raw rawPayrollDefaults
	if err := v.UnmarshalKey("payroll", &raw); err != nil {
		return PayrollDefaults{}, err
	}

	rate, err := decimal.NewFromString(strings.TrimSpace(raw.VacationRate))
	if err != nil {
		return PayrollDefaults{}, errors.New("payroll.vacation_rate must be a decimal")
	}
	tax, err := decimal.NewFromString(strings.TrimSpace(raw.TaxPercentage))
	if err != nil {
		return PayrollDefaults{}, errors.New("payroll.tax_percentage must be a decimal")
	}

	out := PayrollDefaults{
		VacationRate:        rate,
		TaxPercentage:       tax,
		ApplyVacationPayFor: raw.ApplyVacationPayFor,
	}
	if err := validatePayrollDefaults(out); err != nil {
		return PayrollDefaults{}, err
	}
	return out, nil
}

func validatePayrollDefaults(d PayrollDefaults) error {
	if d.VacationRate.IsNegative() || d.VacationRate.GreaterThan(decimal.NewFromInt(1)) {
		return errors.New("payroll.vacation_rate must be between 0 and 1")
	}
	if d.TaxPercentage.IsNegative() || d.TaxPercentage.GreaterThan(decimal.NewFromInt(100)) {
		return errors.New("payroll.tax_percentage must be between 0 and 100")
	}
	return nil
}
