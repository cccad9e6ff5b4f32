package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/payroll/internal/adjustment/domain"
	auditdomain "github.com/smallbiznis/payroll/internal/audit/domain"
	"github.com/smallbiznis/payroll/internal/clock"
	earningdomain "github.com/smallbiznis/payroll/internal/earning/domain"
	"github.com/smallbiznis/payroll/internal/employercontext"
	"github.com/smallbiznis/payroll/internal/lock"
	"github.com/smallbiznis/payroll/internal/observability/metrics"
	"github.com/smallbiznis/payroll/internal/paycalc"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB         *gorm.DB
	Log        *zap.Logger
	GenID      *snowflake.Node
	Clock      clock.Clock
	Repo       domain.Repository
	RecordRepo earningdomain.Repository
	Locker     lock.PeriodLocker       `optional:"true"`
	Metrics    *metrics.PayrollMetrics `optional:"true"`
	AuditSvc   auditdomain.Service     `optional:"true"`
}

type Service struct {
	db         *gorm.DB
	log        *zap.Logger
	genID      *snowflake.Node
	clock      clock.Clock
	repo       domain.Repository
	recordRepo earningdomain.Repository
	locker     lock.PeriodLocker
	metrics    *metrics.PayrollMetrics
	auditSvc   auditdomain.Service
}

func NewService(p Params) domain.Service {
	locker := p.Locker
	if locker == nil {
		locker = lock.NewNoopPeriodLocker()
	}
	return &Service{
		db:         p.DB,
		log:        p.Log.Named("adjustment.service"),
		genID:      p.GenID,
		clock:      p.Clock,
		repo:       p.Repo,
		recordRepo: p.RecordRepo,
		locker:     locker,
		metrics:    p.Metrics,
		auditSvc:   p.AuditSvc,
	}
}

func (s *Service) AddOrUpdateRecordAdjustment(ctx context.Context, recordID snowflake.ID, input domain.AdjustmentInput) (*earningdomain.EarningRecord, error) {
	input, err := input.Normalize()
	if err != nil {
		return nil, err
	}

	action := "record_adjustment.add"
	record, err := s.mutateRecord(ctx, recordID, func(current []earningdomain.Adjustment) ([]earningdomain.Adjustment, error) {
		if input.ID == nil {
			return append(current, earningdomain.Adjustment{
				ID:     s.genID.Generate(),
				Reason: input.Reason,
				Amount: *input.Amount,
			}), nil
		}
		for i := range current {
			if current[i].ID == *input.ID {
				current[i].Reason = input.Reason
				current[i].Amount = *input.Amount
				action = "record_adjustment.update"
				return current, nil
			}
		}
		return nil, domain.ErrAdjustmentNotFound
	})
	if err != nil {
		return nil, err
	}
	s.audit(ctx, record, action)
	return record, nil
}

func (s *Service) RemoveRecordAdjustment(ctx context.Context, recordID snowflake.ID, adjustmentID snowflake.ID) (*earningdomain.EarningRecord, error) {
	record, err := s.mutateRecord(ctx, recordID, func(current []earningdomain.Adjustment) ([]earningdomain.Adjustment, error) {
		for i := range current {
			if current[i].ID == adjustmentID {
				return append(current[:i], current[i+1:]...), nil
			}
		}
		return nil, domain.ErrAdjustmentNotFound
	})
	if err != nil {
		return nil, err
	}
	s.audit(ctx, record, "record_adjustment.remove")
	return record, nil
}

// ReplaceRecordAdjustments stores inputs as the complete adjustment list.
// Entries with an id must already exist on the record.
func (s *Service) ReplaceRecordAdjustments(ctx context.Context, recordID snowflake.ID, inputs []domain.AdjustmentInput) (*earningdomain.EarningRecord, error) {
	inputs, err := domain.NormalizeAll(inputs)
	if err != nil {
		return nil, err
	}

	record, err := s.mutateRecord(ctx, recordID, func(current []earningdomain.Adjustment) ([]earningdomain.Adjustment, error) {
		known := make(map[snowflake.ID]struct{}, len(current))
		for _, adj := range current {
			known[adj.ID] = struct{}{}
		}
		next := make([]earningdomain.Adjustment, 0, len(inputs))
		for _, in := range inputs {
			adj := earningdomain.Adjustment{Reason: in.Reason, Amount: *in.Amount}
			if in.ID != nil {
				if _, ok := known[*in.ID]; !ok {
					return nil, domain.ErrAdjustmentNotFound
				}
				adj.ID = *in.ID
			} else {
				adj.ID = s.genID.Generate()
			}
			next = append(next, adj)
		}
		return next, nil
	})
	if err != nil {
		return nil, err
	}
	s.audit(ctx, record, "record_adjustment.replace")
	return record, nil
}

// mutateRecord runs edit against the locked record's adjustments and writes
// the result with freshly derived totals in the same transaction.
func (s *Service) mutateRecord(ctx context.Context, recordID snowflake.ID, edit func([]earningdomain.Adjustment) ([]earningdomain.Adjustment, error)) (*earningdomain.EarningRecord, error) {
	if recordID == 0 {
		return nil, domain.ErrRecordNotFound
	}

	var out *earningdomain.EarningRecord
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		records, err := s.recordRepo.FindByIDsForUpdate(ctx, tx, []snowflake.ID{recordID})
		if err != nil {
			return err
		}
		if len(records) == 0 || !visible(ctx, records[0].EmployerID) {
			return domain.ErrRecordNotFound
		}
		record := records[0]
		if record.Status != earningdomain.StatusPending {
			return domain.ErrRecordNotEditable
		}

		if stale := paycalc.Recompute(record); stale.Drifted {
			s.log.Warn("cached record totals drifted",
				zap.String("record_id", record.ID.String()),
				zap.String("cached_total", record.TotalPay.String()),
				zap.String("fresh_total", stale.TotalPay.String()),
			)
			s.metrics.IncCacheRepair("adjustment")
		}

		current := make([]earningdomain.Adjustment, len(record.Adjustments))
		copy(current, record.Adjustments)
		next, err := edit(current)
		if err != nil {
			return err
		}

		record.Adjustments = datatypes.JSONSlice[earningdomain.Adjustment](next)
		paycalc.Apply(&record)
		record.UpdatedAt = s.clock.Now()

		affected, err := s.recordRepo.UpdateAdjustments(ctx, tx, &record)
		if err != nil {
			return err
		}
		if affected != 1 {
			return domain.ErrRecordNotEditable
		}
		out = &record
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// UpsertPeriodLevelAdjustments makes the stored adjustments for the key
// equal req.Adjustments and returns the resulting list.
func (s *Service) UpsertPeriodLevelAdjustments(ctx context.Context, req domain.UpsertPeriodAdjustmentsRequest) ([]domain.PeriodLevelAdjustment, error) {
	employeeID := strings.TrimSpace(req.EmployeeID)
	if employeeID == "" {
		return nil, domain.ErrInvalidEmployee
	}
	period, err := earningdomain.ParsePayPeriod(req.PayPeriod)
	if err != nil {
		return nil, err
	}
	actor := strings.TrimSpace(req.ActorEmployerID)
	if scoped, ok := employercontext.EmployerIDFromContext(ctx); ok {
		if actor != "" && actor != scoped {
			return nil, domain.ErrInvalidActor
		}
		actor = scoped
	}
	if actor == "" {
		return nil, domain.ErrInvalidActor
	}
	desired, err := domain.NormalizeAll(req.Adjustments)
	if err != nil {
		return nil, err
	}

	release, err := s.locker.Acquire(ctx, employeeID, period)
	if err != nil {
		return nil, err
	}
	defer release()

	var (
		result                     []domain.PeriodLevelAdjustment
		inserted, updated, removed int
	)
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		stored, err := s.repo.ListByKeyForUpdate(ctx, tx, employeeID, period, actor)
		if err != nil {
			return err
		}
		byID := make(map[snowflake.ID]domain.PeriodLevelAdjustment, len(stored))
		for _, adj := range stored {
			byID[adj.ID] = adj
		}

		now := s.clock.Now()
		kept := make(map[snowflake.ID]struct{}, len(desired))
		for _, in := range desired {
			if in.ID == nil {
				adj := domain.PeriodLevelAdjustment{
					ID:                  s.genID.Generate(),
					EmployeeID:          employeeID,
					PayPeriod:           period,
					Reason:              in.Reason,
					Amount:              *in.Amount,
					CreatedByEmployerID: actor,
					CreatedAt:           now,
					UpdatedAt:           now,
				}
				if err := s.repo.Insert(ctx, tx, &adj); err != nil {
					return err
				}
				inserted++
				continue
			}

			existing, ok := byID[*in.ID]
			if !ok {
				return domain.ErrAdjustmentNotFound
			}
			kept[existing.ID] = struct{}{}
			if existing.Reason == in.Reason && existing.Amount.Equal(*in.Amount) {
				continue
			}
			if existing.Locked() {
				return domain.ErrAdjustmentLocked
			}
			existing.Reason = in.Reason
			existing.Amount = *in.Amount
			existing.UpdatedAt = now
			if err := s.repo.Update(ctx, tx, &existing); err != nil {
				return err
			}
			updated++
		}

		var drop []snowflake.ID
		for _, adj := range stored {
			if _, ok := kept[adj.ID]; ok {
				continue
			}
			if adj.Locked() {
				return domain.ErrAdjustmentLocked
			}
			drop = append(drop, adj.ID)
		}
		n, err := s.repo.Delete(ctx, tx, drop)
		if err != nil {
			return err
		}
		if int(n) != len(drop) {
			return domain.ErrAdjustmentLocked
		}
		removed = len(drop)

		result, err = s.repo.ListByKey(ctx, tx, employeeID, period, actor)
		return err
	})
	if err != nil {
		return nil, err
	}

	if s.auditSvc != nil && inserted+updated+removed > 0 {
		_ = s.auditSvc.AuditLog(ctx, &actor, "", nil, "period_adjustment.upsert", "employee_period", &employeeID, map[string]any{
			"pay_period": period,
			"inserted":   inserted,
			"updated":    updated,
			"removed":    removed,
		})
	}
	return result, nil
}

func (s *Service) ListPeriodLevelAdjustments(ctx context.Context, employeeID, payPeriod string) ([]domain.PeriodLevelAdjustment, error) {
	employeeID = strings.TrimSpace(employeeID)
	if employeeID == "" {
		return nil, domain.ErrInvalidEmployee
	}
	period, err := earningdomain.ParsePayPeriod(payPeriod)
	if err != nil {
		return nil, err
	}
	employerID, _ := employercontext.EmployerIDFromContext(ctx)
	return s.repo.ListByKey(ctx, s.db, employeeID, period, employerID)
}

func (s *Service) audit(ctx context.Context, record *earningdomain.EarningRecord, action string) {
	if s.auditSvc == nil {
		return
	}
	targetID := record.ID.String()
	_ = s.auditSvc.AuditLog(ctx, &record.EmployerID, "", nil, action, "earning_record", &targetID, map[string]any{
		"adjustments":     len(record.Adjustments),
		"net_adjustments": record.NetAdjustments.String(),
		"total_pay":       record.TotalPay.String(),
	})
}

func visible(ctx context.Context, employerID string) bool {
	scoped, ok := employercontext.EmployerIDFromContext(ctx)
	return !ok || scoped == employerID
}
