package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

// PayrollPreset is a named set of payslip inputs an employer reuses.
type PayrollPreset struct {
	ID               snowflake.ID    `json:"id" gorm:"primaryKey"`
	EmployerID       string          `json:"employer_id" gorm:"type:varchar(64);not null;uniqueIndex:ux_payroll_preset_name"`
	PresetName       string          `json:"preset_name" gorm:"type:varchar(128);not null;uniqueIndex:ux_payroll_preset_name"`
	TaxPercentage    decimal.Decimal `json:"tax_percentage" gorm:"type:numeric(9,4);not null"`
	ApplyVacationPay bool            `json:"apply_vacation_pay" gorm:"not null"`
	CreatedAt        time.Time       `json:"created_at" gorm:"not null"`
	UpdatedAt        time.Time       `json:"updated_at" gorm:"not null"`
}

func (PayrollPreset) TableName() string { return "payroll_presets" }

type CreatePresetRequest struct {
	PresetName       string           `json:"preset_name"`
	TaxPercentage    *decimal.Decimal `json:"tax_percentage"`
	ApplyVacationPay bool             `json:"apply_vacation_pay"`
}

type UpdatePresetRequest struct {
	PresetName       *string          `json:"preset_name"`
	TaxPercentage    *decimal.Decimal `json:"tax_percentage"`
	ApplyVacationPay *bool            `json:"apply_vacation_pay"`
}

type Service interface {
	Create(ctx context.Context, req CreatePresetRequest) (*PayrollPreset, error)
	List(ctx context.Context) ([]PayrollPreset, error)
	Get(ctx context.Context, id snowflake.ID) (*PayrollPreset, error)
	Update(ctx context.Context, id snowflake.ID, req UpdatePresetRequest) (*PayrollPreset, error)
	Delete(ctx context.Context, id snowflake.ID) error
}

var (
	ErrPresetNotFound       = errors.New("preset_not_found")
	ErrPresetNameTaken      = errors.New("preset_name_taken")
	ErrInvalidPresetName    = errors.New("invalid_preset_name")
	ErrInvalidTaxPercentage = errors.New("invalid_tax_percentage")
	ErrInvalidEmployer      = errors.New("invalid_employer_id")
)
