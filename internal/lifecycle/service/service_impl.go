package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	adjustmentdomain "github.com/smallbiznis/payroll/internal/adjustment/domain"
	auditdomain "github.com/smallbiznis/payroll/internal/audit/domain"
	"github.com/smallbiznis/payroll/internal/clock"
	"github.com/smallbiznis/payroll/internal/config"
	earningdomain "github.com/smallbiznis/payroll/internal/earning/domain"
	employeedomain "github.com/smallbiznis/payroll/internal/employee/domain"
	"github.com/smallbiznis/payroll/internal/employercontext"
	"github.com/smallbiznis/payroll/internal/lifecycle/domain"
	"github.com/smallbiznis/payroll/internal/lock"
	"github.com/smallbiznis/payroll/internal/observability/metrics"
	"github.com/smallbiznis/payroll/internal/paycalc"
	payslipdomain "github.com/smallbiznis/payroll/internal/payslip/domain"
	presetdomain "github.com/smallbiznis/payroll/internal/preset/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB             *gorm.DB
	Log            *zap.Logger
	GenID          *snowflake.Node
	Clock          clock.Clock
	RecordRepo     earningdomain.Repository
	AdjustmentRepo adjustmentdomain.Repository
	PayslipRepo    payslipdomain.Repository
	PresetSvc      presetdomain.Service        `optional:"true"`
	EmployeeSvc    employeedomain.Service      `optional:"true"`
	Defaults       *config.PayrollConfigHolder `optional:"true"`
	Locker         lock.PeriodLocker           `optional:"true"`
	Metrics        *metrics.PayrollMetrics     `optional:"true"`
	AuditSvc       auditdomain.Service         `optional:"true"`
}

type Service struct {
	db             *gorm.DB
	log            *zap.Logger
	genID          *snowflake.Node
	clock          clock.Clock
	recordRepo     earningdomain.Repository
	adjustmentRepo adjustmentdomain.Repository
	payslipRepo    payslipdomain.Repository
	presetSvc      presetdomain.Service
	employeeSvc    employeedomain.Service
	defaults       *config.PayrollConfigHolder
	locker         lock.PeriodLocker
	metrics        *metrics.PayrollMetrics
	auditSvc       auditdomain.Service
}

func NewService(p Params) domain.Service {
	locker := p.Locker
	if locker == nil {
		locker = lock.NewNoopPeriodLocker()
	}
	defaults := p.Defaults
	if defaults == nil {
		defaults = config.NewStaticPayrollConfigHolder(config.DefaultPayrollDefaults())
	}
	return &Service{
		db:             p.DB,
		log:            p.Log.Named("lifecycle.service"),
		genID:          p.GenID,
		clock:          p.Clock,
		recordRepo:     p.RecordRepo,
		adjustmentRepo: p.AdjustmentRepo,
		payslipRepo:    p.PayslipRepo,
		presetSvc:      p.PresetSvc,
		employeeSvc:    p.EmployeeSvc,
		defaults:       defaults,
		locker:         locker,
		metrics:        p.Metrics,
		auditSvc:       p.AuditSvc,
	}
}

// periodKey identifies the state one payslip is derived from.
type periodKey struct {
	employeeID string
	payPeriod  string
	employerID string
}

func (s *Service) ProcessBulk(ctx context.Context, req domain.ProcessRequest) (*payslipdomain.Payslip, error) {
	slip, err := s.processBulk(ctx, req)
	if err != nil {
		s.reject(metrics.ActionProcess, err)
		return nil, err
	}
	return slip, nil
}

func (s *Service) processBulk(ctx context.Context, req domain.ProcessRequest) (*payslipdomain.Payslip, error) {
	ids, err := normalizeIDs(req.RecordIDs)
	if err != nil {
		return nil, err
	}
	selected, err := s.preload(ctx, ids)
	if err != nil {
		return nil, err
	}
	key, err := singleKey(selected)
	if err != nil {
		return nil, err
	}
	if employeeID := strings.TrimSpace(req.EmployeeID); employeeID != "" && employeeID != key.employeeID {
		return nil, domain.NewSelectionError(domain.ErrMixedEmployeeSelection, ids)
	}
	if err := requireStatus(selected, earningdomain.StatusPending); err != nil {
		return nil, err
	}

	cfg, err := s.resolveConfig(ctx, key, req)
	if err != nil {
		return nil, err
	}

	release, err := s.acquire(ctx, []periodKey{key})
	if err != nil {
		return nil, err
	}
	defer release()

	now := s.clock.Now()
	var payslip *payslipdomain.Payslip
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		records, err := s.lockRecords(ctx, tx, ids)
		if err != nil {
			return err
		}
		if _, err := singleKey(records); err != nil {
			return err
		}
		if err := requireStatus(records, earningdomain.StatusPending); err != nil {
			return err
		}
		if err := s.healTotals(ctx, tx, records); err != nil {
			return err
		}

		stored, err := s.adjustmentRepo.ListByKeyForUpdate(ctx, tx, key.employeeID, key.payPeriod, key.employerID)
		if err != nil {
			return err
		}
		unconsumed := make([]adjustmentdomain.PeriodLevelAdjustment, 0, len(stored))
		for _, adj := range stored {
			if !adj.Locked() {
				unconsumed = append(unconsumed, adj)
			}
		}

		summary, err := consolidate(key, records, unconsumed)
		if err != nil {
			return err
		}
		slip, err := payslipdomain.Produce(summary, cfg, s.genID.Generate(), now)
		if err != nil {
			return err
		}
		slip.EmployerID = key.employerID
		if err := s.payslipRepo.Insert(ctx, tx, slip); err != nil {
			return err
		}

		affected, err := s.recordRepo.TransitionStatus(ctx, tx, ids, earningdomain.StatusPending, map[string]any{
			"status":       earningdomain.StatusProcessed,
			"processed_at": now,
			"payslip_id":   slip.ID,
			"updated_at":   now,
		})
		if err != nil {
			return err
		}
		if int(affected) != len(ids) {
			return domain.ErrConcurrentModification
		}

		adjustmentIDs := summary.PeriodAdjustmentIDs()
		consumed, err := s.adjustmentRepo.Consume(ctx, tx, adjustmentIDs, slip.ID)
		if err != nil {
			return err
		}
		if int(consumed) != len(adjustmentIDs) {
			return domain.ErrConcurrentModification
		}

		payslip = slip
		return nil
	})
	if err != nil {
		return nil, translateTxError(err)
	}

	s.metrics.ObserveTransition(metrics.ActionProcess, string(earningdomain.StatusPending), string(earningdomain.StatusProcessed), len(ids))
	s.audit(ctx, req.ActorID, payslip, "payroll.process", map[string]any{
		"employee_id":  payslip.EmployeeID,
		"pay_period":   payslip.PayPeriod,
		"record_count": len(ids),
		"gross_pay":    payslip.GrossPay.String(),
		"net_pay":      payslip.NetPay.String(),
	})
	return payslip, nil
}

func (s *Service) PayBulk(ctx context.Context, req domain.BulkRequest) ([]payslipdomain.Payslip, error) {
	now := s.clock.Now()
	payslips, err := s.transition(ctx, req.RecordIDs, transitionPlan{
		action:      metrics.ActionPay,
		from:        earningdomain.StatusProcessed,
		to:          earningdomain.StatusPaid,
		payslipFrom: payslipdomain.StatusProcessed,
		recordFields: map[string]any{
			"status":     earningdomain.StatusPaid,
			"paid_at":    now,
			"updated_at": now,
		},
		payslipFields: map[string]any{
			"status":     payslipdomain.StatusPaid,
			"paid_at":    now,
			"updated_at": now,
		},
	})
	if err != nil {
		s.reject(metrics.ActionPay, err)
		return nil, err
	}
	for i := range payslips {
		s.audit(ctx, req.ActorID, &payslips[i], "payroll.pay", map[string]any{
			"employee_id": payslips[i].EmployeeID,
			"pay_period":  payslips[i].PayPeriod,
		})
	}
	return payslips, nil
}

func (s *Service) RevertBulk(ctx context.Context, req domain.RevertRequest) ([]payslipdomain.Payslip, error) {
	now := s.clock.Now()
	var plan transitionPlan
	switch earningdomain.Status(strings.ToLower(string(req.FromStatus))) {
	case earningdomain.StatusPaid:
		plan = transitionPlan{
			action:      metrics.ActionRevert,
			from:        earningdomain.StatusPaid,
			to:          earningdomain.StatusProcessed,
			payslipFrom: payslipdomain.StatusPaid,
			recordFields: map[string]any{
				"status":     earningdomain.StatusProcessed,
				"paid_at":    nil,
				"updated_at": now,
			},
			payslipFields: map[string]any{
				"status":     payslipdomain.StatusProcessed,
				"paid_at":    nil,
				"updated_at": now,
			},
		}
	case earningdomain.StatusProcessed:
		plan = transitionPlan{
			action:      metrics.ActionRevert,
			from:        earningdomain.StatusProcessed,
			to:          earningdomain.StatusPending,
			payslipFrom: payslipdomain.StatusProcessed,
			recordFields: map[string]any{
				"status":       earningdomain.StatusPending,
				"processed_at": nil,
				"payslip_id":   nil,
				"updated_at":   now,
			},
			payslipFields: map[string]any{
				"status":     payslipdomain.StatusVoid,
				"voided_at":  now,
				"updated_at": now,
			},
			releaseAdjustments: true,
		}
	default:
		s.reject(metrics.ActionRevert, domain.ErrInvalidTransition)
		return nil, domain.ErrInvalidTransition
	}

	payslips, err := s.transition(ctx, req.RecordIDs, plan)
	if err != nil {
		s.reject(metrics.ActionRevert, err)
		return nil, err
	}
	for i := range payslips {
		s.audit(ctx, req.ActorID, &payslips[i], "payroll.revert", map[string]any{
			"employee_id": payslips[i].EmployeeID,
			"pay_period":  payslips[i].PayPeriod,
			"from":        string(plan.from),
			"to":          string(plan.to),
		})
	}
	return payslips, nil
}

// transitionPlan describes one status edge for records and their payslips.
type transitionPlan struct {
	action             string
	from, to           earningdomain.Status
	payslipFrom        payslipdomain.Status
	recordFields       map[string]any
	payslipFields      map[string]any
	releaseAdjustments bool
}

func (s *Service) transition(ctx context.Context, rawIDs []snowflake.ID, plan transitionPlan) ([]payslipdomain.Payslip, error) {
	ids, err := normalizeIDs(rawIDs)
	if err != nil {
		return nil, err
	}
	selected, err := s.preload(ctx, ids)
	if err != nil {
		return nil, err
	}
	if err := requireStatus(selected, plan.from); err != nil {
		return nil, err
	}

	release, err := s.acquire(ctx, keysOf(selected))
	if err != nil {
		return nil, err
	}
	defer release()

	var payslips []payslipdomain.Payslip
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		records, err := s.lockRecords(ctx, tx, ids)
		if err != nil {
			return err
		}
		if err := requireStatus(records, plan.from); err != nil {
			return err
		}
		payslipIDs, err := s.requireWholePayslips(ctx, tx, ids, records)
		if err != nil {
			return err
		}

		affected, err := s.recordRepo.TransitionStatus(ctx, tx, ids, plan.from, plan.recordFields)
		if err != nil {
			return err
		}
		if int(affected) != len(ids) {
			return domain.ErrConcurrentModification
		}

		moved, err := s.payslipRepo.TransitionStatus(ctx, tx, payslipIDs, plan.payslipFrom, plan.payslipFields)
		if err != nil {
			return err
		}
		if int(moved) != len(payslipIDs) {
			return domain.ErrConcurrentModification
		}

		if plan.releaseAdjustments {
			if _, err := s.adjustmentRepo.Release(ctx, tx, payslipIDs); err != nil {
				return err
			}
		}

		payslips, err = s.payslipRepo.FindByIDsForUpdate(ctx, tx, payslipIDs)
		return err
	})
	if err != nil {
		return nil, translateTxError(err)
	}

	s.metrics.ObserveTransition(plan.action, string(plan.from), string(plan.to), len(ids))
	return payslips, nil
}

// preload reads the selection without locks to find the period keys
// before any lock is taken.
func (s *Service) preload(ctx context.Context, ids []snowflake.ID) ([]earningdomain.EarningRecord, error) {
	records, err := s.recordRepo.FindByIDs(ctx, s.db, ids)
	if err != nil {
		return nil, err
	}
	return records, requireAll(ctx, ids, records)
}

func (s *Service) lockRecords(ctx context.Context, tx *gorm.DB, ids []snowflake.ID) ([]earningdomain.EarningRecord, error) {
	records, err := s.recordRepo.FindByIDsForUpdate(ctx, tx, ids)
	if err != nil {
		return nil, err
	}
	return records, requireAll(ctx, ids, records)
}

// requireWholePayslips returns the payslips referenced by records and
// fails when any of them covers a record outside ids.
func (s *Service) requireWholePayslips(ctx context.Context, tx *gorm.DB, ids []snowflake.ID, records []earningdomain.EarningRecord) ([]snowflake.ID, error) {
	seen := make(map[snowflake.ID]struct{})
	payslipIDs := make([]snowflake.ID, 0)
	for _, r := range records {
		if r.PayslipID == nil {
			continue
		}
		if _, ok := seen[*r.PayslipID]; ok {
			continue
		}
		seen[*r.PayslipID] = struct{}{}
		payslipIDs = append(payslipIDs, *r.PayslipID)
	}
	sort.Slice(payslipIDs, func(i, j int) bool { return payslipIDs[i] < payslipIDs[j] })
	if len(payslipIDs) == 0 {
		return payslipIDs, nil
	}

	members, err := s.recordRepo.FindByPayslipForUpdate(ctx, tx, payslipIDs)
	if err != nil {
		return nil, err
	}
	selected := make(map[snowflake.ID]struct{}, len(ids))
	for _, id := range ids {
		selected[id] = struct{}{}
	}
	var missing []snowflake.ID
	for _, m := range members {
		if _, ok := selected[m.ID]; !ok {
			missing = append(missing, m.ID)
		}
	}
	if len(missing) > 0 {
		return nil, domain.NewSelectionError(domain.ErrPartialPayslipSelection, missing)
	}
	return payslipIDs, nil
}

// healTotals rewrites cached totals that disagree with a fresh computation.
func (s *Service) healTotals(ctx context.Context, tx *gorm.DB, records []earningdomain.EarningRecord) error {
	for i := range records {
		fresh := paycalc.Recompute(records[i])
		if !fresh.Drifted {
			continue
		}
		s.log.Warn("cached record totals drifted",
			zap.String("record_id", records[i].ID.String()),
			zap.String("cached_net_adjustments", records[i].NetAdjustments.String()),
			zap.String("cached_total", records[i].TotalPay.String()),
			zap.String("fresh_net_adjustments", fresh.NetAdjustments.String()),
			zap.String("fresh_total", fresh.TotalPay.String()),
		)
		if err := s.recordRepo.UpdateTotals(ctx, tx, records[i].ID, fresh.NetAdjustments, fresh.TotalPay); err != nil {
			return err
		}
		records[i].NetAdjustments = fresh.NetAdjustments
		records[i].TotalPay = fresh.TotalPay
		s.metrics.IncCacheRepair(metrics.ActionProcess)
	}
	return nil
}

// resolveConfig picks explicit values over the preset over the shared
// defaults. The vacation default follows the employment relationship.
func (s *Service) resolveConfig(ctx context.Context, key periodKey, req domain.ProcessRequest) (payslipdomain.Config, error) {
	defaults := s.defaults.Get()
	cfg := payslipdomain.Config{
		TaxPercentage: defaults.TaxPercentage,
		VacationRate:  defaults.VacationRate,
	}
	vacationResolved := false

	if req.PresetID != nil {
		if s.presetSvc == nil {
			return payslipdomain.Config{}, presetdomain.ErrPresetNotFound
		}
		preset, err := s.presetSvc.Get(employercontext.WithEmployerID(ctx, key.employerID), *req.PresetID)
		if err != nil {
			return payslipdomain.Config{}, err
		}
		cfg.TaxPercentage = preset.TaxPercentage
		cfg.ApplyVacationPay = preset.ApplyVacationPay
		vacationResolved = true
	}

	if o := req.Config; o != nil {
		if o.TaxPercentage != nil {
			cfg.TaxPercentage = *o.TaxPercentage
		}
		if o.VacationRate != nil {
			cfg.VacationRate = *o.VacationRate
		}
		if o.ApplyVacationPay != nil {
			cfg.ApplyVacationPay = *o.ApplyVacationPay
			vacationResolved = true
		}
	}

	if !vacationResolved {
		apply, err := s.vacationDefault(ctx, key, defaults)
		if err != nil {
			return payslipdomain.Config{}, err
		}
		cfg.ApplyVacationPay = apply
	}
	return cfg, cfg.Validate()
}

func (s *Service) vacationDefault(ctx context.Context, key periodKey, defaults config.PayrollDefaults) (bool, error) {
	if s.employeeSvc == nil {
		return false, nil
	}
	rel, err := s.employeeSvc.EmploymentRelationship(ctx, key.employeeID, key.employerID)
	if errors.Is(err, employeedomain.ErrNotFound) {
		s.log.Warn("employment relationship not found, vacation pay not applied",
			zap.String("employee_id", key.employeeID),
			zap.String("employer_id", key.employerID),
		)
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("employment relationship: %w", err)
	}
	return defaults.AppliesVacationPay(string(rel.Type)), nil
}

// acquire takes the period locks in a stable order and returns a func
// releasing all of them.
func (s *Service) acquire(ctx context.Context, keys []periodKey) (func(), error) {
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].employeeID != keys[j].employeeID {
			return keys[i].employeeID < keys[j].employeeID
		}
		return keys[i].payPeriod < keys[j].payPeriod
	})

	start := time.Now()
	releases := make([]func(), 0, len(keys))
	releaseAll := func() {
		for i := len(releases) - 1; i >= 0; i-- {
			releases[i]()
		}
	}
	for _, key := range keys {
		release, err := s.locker.Acquire(ctx, key.employeeID, key.payPeriod)
		if err != nil {
			releaseAll()
			if errors.Is(err, lock.ErrLockHeld) {
				return nil, domain.ErrConcurrentModification
			}
			return nil, err
		}
		releases = append(releases, release)
	}
	s.metrics.ObserveLockWait(time.Since(start))
	return releaseAll, nil
}

func (s *Service) reject(action string, err error) {
	reason := rejectionReason(err)
	s.metrics.IncRejection(action, reason)
	s.log.Info("lifecycle action rejected",
		zap.String("action", action),
		zap.String("reason", reason),
		zap.Error(err),
	)
}

func (s *Service) audit(ctx context.Context, actorID string, payslip *payslipdomain.Payslip, action string, metadata map[string]any) {
	if s.auditSvc == nil || payslip == nil {
		return
	}
	actorType := ""
	var actor *string
	if actorID = strings.TrimSpace(actorID); actorID != "" {
		actorType = employercontext.ActorTypeEmployer
		actor = &actorID
	}
	employerID := payslip.EmployerID
	targetID := payslip.ID.String()
	_ = s.auditSvc.AuditLog(ctx, &employerID, actorType, actor, action, "payslip", &targetID, metadata)
}
