package service

import (
	"context"

	"github.com/bwmarrin/snowflake"
	adjustmentdomain "github.com/smallbiznis/payroll/internal/adjustment/domain"
	"github.com/smallbiznis/payroll/internal/consolidation/domain"
	earningdomain "github.com/smallbiznis/payroll/internal/earning/domain"
	"github.com/smallbiznis/payroll/internal/paycalc"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type Params struct {
	fx.In

	Log           *zap.Logger
	RecordSvc     earningdomain.Service
	AdjustmentSvc adjustmentdomain.Service
}

type Service struct {
	log           *zap.Logger
	recordSvc     earningdomain.Service
	adjustmentSvc adjustmentdomain.Service
}

func NewService(p Params) domain.Service {
	return &Service{
		log:           p.Log.Named("consolidation.service"),
		recordSvc:     p.RecordSvc,
		adjustmentSvc: p.AdjustmentSvc,
	}
}

// Summarize consolidates every record of the period regardless of status,
// with all of its period-level adjustments.
func (s *Service) Summarize(ctx context.Context, employeeID, payPeriod string) (*domain.Summary, error) {
	records, err := s.recordSvc.ListPeriod(ctx, employeeID, payPeriod, nil)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, domain.ErrEmptyPeriod
	}
	s.logDrift(records)
	adjustments, err := s.adjustmentSvc.ListPeriodLevelAdjustments(ctx, employeeID, payPeriod)
	if err != nil {
		return nil, err
	}
	return domain.Consolidate(records[0].EmployeeID, records[0].PayPeriod, records, adjustments)
}

// SummarizeStatus consolidates the records in one status. Pending views
// carry the unconsumed period-level adjustments; processed and paid views
// carry the ones consumed by those records' payslips.
func (s *Service) SummarizeStatus(ctx context.Context, employeeID, payPeriod string, status earningdomain.Status) (*domain.Summary, error) {
	if !status.Valid() {
		return nil, earningdomain.ErrInvalidStatus
	}
	records, err := s.recordSvc.ListPeriod(ctx, employeeID, payPeriod, &status)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, domain.ErrEmptyPeriod
	}
	s.logDrift(records)
	adjustments, err := s.adjustmentSvc.ListPeriodLevelAdjustments(ctx, employeeID, payPeriod)
	if err != nil {
		return nil, err
	}

	payslips := make(map[snowflake.ID]struct{})
	for _, r := range records {
		if r.PayslipID != nil {
			payslips[*r.PayslipID] = struct{}{}
		}
	}
	selected := make([]adjustmentdomain.PeriodLevelAdjustment, 0, len(adjustments))
	for _, adj := range adjustments {
		if status == earningdomain.StatusPending {
			if !adj.Locked() {
				selected = append(selected, adj)
			}
			continue
		}
		if adj.Locked() {
			if _, ok := payslips[*adj.PayslipID]; ok {
				selected = append(selected, adj)
			}
		}
	}
	return domain.Consolidate(records[0].EmployeeID, records[0].PayPeriod, records, selected)
}

// logDrift reports cached totals that disagree with a fresh computation.
// The summary is built from fresh values; the stored rows are left for the
// next write to repair.
func (s *Service) logDrift(records []earningdomain.EarningRecord) {
	for _, r := range records {
		fresh := paycalc.Recompute(r)
		if !fresh.Drifted {
			continue
		}
		s.log.Warn("cached record totals drifted",
			zap.String("record_id", r.ID.String()),
			zap.String("cached_net_adjustments", r.NetAdjustments.String()),
			zap.String("cached_total", r.TotalPay.String()),
			zap.String("fresh_net_adjustments", fresh.NetAdjustments.String()),
			zap.String("fresh_total", fresh.TotalPay.String()),
		)
	}
}
