package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	auditdomain "github.com/smallbiznis/payroll/internal/audit/domain"
	"github.com/smallbiznis/payroll/internal/clock"
	"github.com/smallbiznis/payroll/internal/employercontext"
	"github.com/smallbiznis/payroll/internal/preset/domain"
	"github.com/smallbiznis/payroll/pkg/db"
	"github.com/smallbiznis/payroll/pkg/db/option"
	"github.com/smallbiznis/payroll/pkg/repository"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const maxPresetNameLength = 128

type Params struct {
	fx.In

	DB       *gorm.DB
	Log      *zap.Logger
	GenID    *snowflake.Node
	Clock    clock.Clock
	AuditSvc auditdomain.Service `optional:"true"`
}

type Service struct {
	db         *gorm.DB
	log        *zap.Logger
	genID      *snowflake.Node
	clock      clock.Clock
	presetrepo repository.Repository[domain.PayrollPreset]
	auditSvc   auditdomain.Service
}

func NewService(p Params) domain.Service {
	return &Service{
		db:         p.DB,
		log:        p.Log.Named("preset.service"),
		genID:      p.GenID,
		clock:      p.Clock,
		presetrepo: repository.ProvideStore[domain.PayrollPreset](p.DB),
		auditSvc:   p.AuditSvc,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreatePresetRequest) (*domain.PayrollPreset, error) {
	employerID, err := employerFromContext(ctx)
	if err != nil {
		return nil, err
	}
	name, err := normalizeName(req.PresetName)
	if err != nil {
		return nil, err
	}
	if req.TaxPercentage == nil || !validTax(*req.TaxPercentage) {
		return nil, domain.ErrInvalidTaxPercentage
	}

	now := s.clock.Now()
	preset := &domain.PayrollPreset{
		ID:               s.genID.Generate(),
		EmployerID:       employerID,
		PresetName:       name,
		TaxPercentage:    *req.TaxPercentage,
		ApplyVacationPay: req.ApplyVacationPay,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := s.presetrepo.Create(ctx, preset); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return nil, domain.ErrPresetNameTaken
		}
		return nil, err
	}

	s.audit(ctx, employerID, "payroll_preset.create", preset.ID)
	return preset, nil
}

func (s *Service) List(ctx context.Context) ([]domain.PayrollPreset, error) {
	employerID, err := employerFromContext(ctx)
	if err != nil {
		return nil, err
	}
	items, err := s.presetrepo.Find(ctx, &domain.PayrollPreset{EmployerID: employerID}, option.WithOrder("preset_name asc"))
	if err != nil {
		return nil, err
	}
	presets := make([]domain.PayrollPreset, 0, len(items))
	for _, item := range items {
		presets = append(presets, *item)
	}
	return presets, nil
}

func (s *Service) Get(ctx context.Context, id snowflake.ID) (*domain.PayrollPreset, error) {
	employerID, err := employerFromContext(ctx)
	if err != nil {
		return nil, err
	}
	if id == 0 {
		return nil, domain.ErrPresetNotFound
	}
	preset, err := s.presetrepo.FindOne(ctx, &domain.PayrollPreset{ID: id, EmployerID: employerID})
	if err != nil {
		return nil, err
	}
	if preset == nil {
		return nil, domain.ErrPresetNotFound
	}
	return preset, nil
}

func (s *Service) Update(ctx context.Context, id snowflake.ID, req domain.UpdatePresetRequest) (*domain.PayrollPreset, error) {
	preset, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	fields := map[string]any{}
	if req.PresetName != nil {
		name, err := normalizeName(*req.PresetName)
		if err != nil {
			return nil, err
		}
		fields["preset_name"] = name
		preset.PresetName = name
	}
	if req.TaxPercentage != nil {
		if !validTax(*req.TaxPercentage) {
			return nil, domain.ErrInvalidTaxPercentage
		}
		fields["tax_percentage"] = *req.TaxPercentage
		preset.TaxPercentage = *req.TaxPercentage
	}
	if req.ApplyVacationPay != nil {
		fields["apply_vacation_pay"] = *req.ApplyVacationPay
		preset.ApplyVacationPay = *req.ApplyVacationPay
	}
	if len(fields) == 0 {
		return preset, nil
	}
	preset.UpdatedAt = s.clock.Now()
	fields["updated_at"] = preset.UpdatedAt

	if _, err := s.presetrepo.Update(ctx, preset.ID, fields); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return nil, domain.ErrPresetNameTaken
		}
		return nil, err
	}

	s.audit(ctx, preset.EmployerID, "payroll_preset.update", preset.ID)
	return preset, nil
}

func (s *Service) Delete(ctx context.Context, id snowflake.ID) error {
	preset, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	affected, err := s.presetrepo.Delete(ctx, &domain.PayrollPreset{ID: preset.ID, EmployerID: preset.EmployerID})
	if err != nil {
		return err
	}
	if affected == 0 {
		return domain.ErrPresetNotFound
	}

	s.audit(ctx, preset.EmployerID, "payroll_preset.delete", preset.ID)
	return nil
}

func (s *Service) audit(ctx context.Context, employerID, action string, id snowflake.ID) {
	if s.auditSvc == nil {
		return
	}
	targetID := id.String()
	_ = s.auditSvc.AuditLog(ctx, &employerID, "", nil, action, "payroll_preset", &targetID, nil)
}

func employerFromContext(ctx context.Context) (string, error) {
	employerID, ok := employercontext.EmployerIDFromContext(ctx)
	if !ok || strings.TrimSpace(employerID) == "" {
		return "", domain.ErrInvalidEmployer
	}
	return employerID, nil
}

func normalizeName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" || len(name) > maxPresetNameLength {
		return "", domain.ErrInvalidPresetName
	}
	return name, nil
}

func validTax(tax decimal.Decimal) bool {
	return !tax.IsNegative() && tax.LessThanOrEqual(decimal.NewFromInt(100))
}
