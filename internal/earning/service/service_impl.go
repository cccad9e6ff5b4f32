package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	auditdomain "github.com/smallbiznis/payroll/internal/audit/domain"
	"github.com/smallbiznis/payroll/internal/clock"
	earningdomain "github.com/smallbiznis/payroll/internal/earning/domain"
	"github.com/smallbiznis/payroll/internal/employercontext"
	"github.com/smallbiznis/payroll/internal/paycalc"
	"github.com/smallbiznis/payroll/pkg/db/pagination"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB       *gorm.DB
	Log      *zap.Logger
	GenID    *snowflake.Node
	Clock    clock.Clock
	Repo     earningdomain.Repository
	AuditSvc auditdomain.Service `optional:"true"`
}

type Service struct {
	db       *gorm.DB
	log      *zap.Logger
	genID    *snowflake.Node
	clock    clock.Clock
	repo     earningdomain.Repository
	auditSvc auditdomain.Service
}

func NewService(p Params) earningdomain.Service {
	return &Service{
		db:       p.DB,
		log:      p.Log.Named("earning.service"),
		genID:    p.GenID,
		clock:    p.Clock,
		repo:     p.Repo,
		auditSvc: p.AuditSvc,
	}
}

// Create records a completed work item. Repeated calls for the same work
// item return the stored record and false. A work item already recorded
// under another employer is a conflict.
func (s *Service) Create(ctx context.Context, req earningdomain.CreateRecordRequest) (*earningdomain.EarningRecord, bool, error) {
	record, err := s.buildRecord(ctx, req)
	if err != nil {
		return nil, false, err
	}

	inserted, err := s.repo.Insert(ctx, s.db, record)
	if err != nil {
		return nil, false, err
	}
	if !inserted {
		existing, err := s.repo.FindByWorkItemID(ctx, s.db, record.WorkItemID)
		if err != nil {
			return nil, false, err
		}
		if existing == nil {
			return nil, false, earningdomain.ErrRecordNotFound
		}
		if existing.EmployerID != record.EmployerID || !visible(ctx, existing.EmployerID) {
			return nil, false, earningdomain.ErrWorkItemConflict
		}
		return existing, false, nil
	}

	if s.auditSvc != nil {
		targetID := record.ID.String()
		_ = s.auditSvc.AuditLog(ctx, &record.EmployerID, "", nil, "earning_record.create", "earning_record", &targetID, map[string]any{
			"work_item_id": record.WorkItemID,
			"kind":         string(record.Kind),
			"employee_id":  record.EmployeeID,
			"pay_period":   record.PayPeriod,
		})
	}
	return record, true, nil
}

func (s *Service) Get(ctx context.Context, id snowflake.ID) (*earningdomain.EarningRecord, error) {
	if id == 0 {
		return nil, earningdomain.ErrRecordNotFound
	}
	record, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	if record == nil || !visible(ctx, record.EmployerID) {
		return nil, earningdomain.ErrRecordNotFound
	}
	return record, nil
}

func (s *Service) List(ctx context.Context, req earningdomain.ListRecordsRequest) (earningdomain.ListRecordsResponse, error) {
	filter := earningdomain.ListFilter{
		EmployeeID: strings.TrimSpace(req.EmployeeID),
		Search:     req.Search,
		Limit:      req.Limit(),
	}
	if employerID, ok := employercontext.EmployerIDFromContext(ctx); ok {
		filter.EmployerID = employerID
	}
	if strings.TrimSpace(req.PayPeriod) != "" {
		period, err := earningdomain.ParsePayPeriod(req.PayPeriod)
		if err != nil {
			return earningdomain.ListRecordsResponse{}, err
		}
		filter.PayPeriod = period
	}
	if status := strings.TrimSpace(req.Status); status != "" {
		parsed := earningdomain.Status(strings.ToLower(status))
		if !parsed.Valid() {
			return earningdomain.ListRecordsResponse{}, earningdomain.ErrInvalidStatus
		}
		filter.Status = parsed
	}
	if token := strings.TrimSpace(req.PageToken); token != "" {
		cursor, err := pagination.DecodeCursor(token)
		if err != nil {
			return earningdomain.ListRecordsResponse{}, earningdomain.ErrInvalidPageToken
		}
		id, err := snowflake.ParseString(cursor.ID)
		if err != nil {
			return earningdomain.ListRecordsResponse{}, earningdomain.ErrInvalidPageToken
		}
		filter.Cursor = &id
	}

	items, err := s.repo.List(ctx, s.db, filter)
	if err != nil {
		return earningdomain.ListRecordsResponse{}, err
	}
	page, info, err := pagination.Page(items, filter.Limit, func(r *earningdomain.EarningRecord) pagination.Cursor {
		return pagination.Cursor{ID: r.ID.String()}
	})
	if err != nil {
		return earningdomain.ListRecordsResponse{}, err
	}

	records := make([]earningdomain.EarningRecord, 0, len(page))
	for _, item := range page {
		records = append(records, *item)
	}
	return earningdomain.ListRecordsResponse{PageInfo: info, Records: records}, nil
}

func (s *Service) ListPeriod(ctx context.Context, employeeID, payPeriod string, status *earningdomain.Status) ([]earningdomain.EarningRecord, error) {
	employeeID = strings.TrimSpace(employeeID)
	if employeeID == "" {
		return nil, earningdomain.ErrInvalidEmployee
	}
	period, err := earningdomain.ParsePayPeriod(payPeriod)
	if err != nil {
		return nil, err
	}

	filter := earningdomain.ListFilter{EmployeeID: employeeID, PayPeriod: period}
	if employerID, ok := employercontext.EmployerIDFromContext(ctx); ok {
		filter.EmployerID = employerID
	}
	if status != nil {
		if !status.Valid() {
			return nil, earningdomain.ErrInvalidStatus
		}
		filter.Status = *status
	}

	items, err := s.repo.List(ctx, s.db, filter)
	if err != nil {
		return nil, err
	}
	records := make([]earningdomain.EarningRecord, 0, len(items))
	for _, item := range items {
		records = append(records, *item)
	}
	return records, nil
}

func (s *Service) buildRecord(ctx context.Context, req earningdomain.CreateRecordRequest) (*earningdomain.EarningRecord, error) {
	workItemID := strings.TrimSpace(req.WorkItemID)
	if workItemID == "" {
		return nil, earningdomain.ErrInvalidWorkItem
	}
	kind := earningdomain.Kind(strings.ToLower(strings.TrimSpace(string(req.Kind))))
	if !kind.Valid() {
		return nil, earningdomain.ErrInvalidKind
	}
	employeeID := strings.TrimSpace(req.EmployeeID)
	if employeeID == "" {
		return nil, earningdomain.ErrInvalidEmployee
	}

	employerID := strings.TrimSpace(req.EmployerID)
	if scoped, ok := employercontext.EmployerIDFromContext(ctx); ok {
		if employerID != "" && employerID != scoped {
			return nil, earningdomain.ErrInvalidEmployer
		}
		employerID = scoped
	}
	if employerID == "" {
		return nil, earningdomain.ErrInvalidEmployer
	}

	if req.ItemDate.IsZero() {
		return nil, earningdomain.ErrInvalidItemDate
	}
	period := earningdomain.PayPeriodOf(req.ItemDate)
	if strings.TrimSpace(req.PayPeriod) != "" {
		parsed, err := earningdomain.ParsePayPeriod(req.PayPeriod)
		if err != nil {
			return nil, err
		}
		period = parsed
	}

	now := s.clock.Now()
	record := &earningdomain.EarningRecord{
		ID:            s.genID.Generate(),
		WorkItemID:    workItemID,
		Kind:          kind,
		EmployeeID:    employeeID,
		EmployeeName:  strings.TrimSpace(req.EmployeeName),
		EmployeeEmail: strings.TrimSpace(req.EmployeeEmail),
		EmployerID:    employerID,
		EmployerName:  strings.TrimSpace(req.EmployerName),
		PayPeriod:     period,
		ItemDate:      req.ItemDate.UTC(),
		ItemTitle:     strings.TrimSpace(req.ItemTitle),
		Adjustments:   datatypes.JSONSlice[earningdomain.Adjustment]{},
		OBBreakdown:   datatypes.NewJSONType(earningdomain.OBBreakdown{}),
		Status:        earningdomain.StatusPending,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if req.HoursWorked != nil {
		if req.HoursWorked.IsNegative() {
			return nil, earningdomain.ErrInvalidAmount
		}
		record.HoursWorked = decimal.NewNullDecimal(*req.HoursWorked)
	}

	switch kind {
	case earningdomain.KindShift:
		if req.HoursWorked == nil || req.HourlyRate == nil || req.HourlyRate.IsNegative() {
			return nil, earningdomain.ErrInvalidAmount
		}
		if req.AgreedCompensation != nil && !req.AgreedCompensation.IsZero() {
			return nil, earningdomain.ErrInvalidAmount
		}
		record.HourlyRate = *req.HourlyRate
		if req.OBPremiumTotal != nil {
			if req.OBPremiumTotal.IsNegative() {
				return nil, earningdomain.ErrInvalidAmount
			}
			record.OBPremiumTotal = *req.OBPremiumTotal
		}
		breakdown, err := normalizeBreakdown(req.OBBreakdown)
		if err != nil {
			return nil, err
		}
		record.OBBreakdown = datatypes.NewJSONType(breakdown)
	case earningdomain.KindEngagement:
		if req.AgreedCompensation == nil || req.AgreedCompensation.IsNegative() {
			return nil, earningdomain.ErrInvalidAmount
		}
		if (req.OBPremiumTotal != nil && !req.OBPremiumTotal.IsZero()) || len(req.OBBreakdown) > 0 {
			return nil, earningdomain.ErrInvalidOBBreakdown
		}
		record.AgreedCompensation = *req.AgreedCompensation
	}

	paycalc.Apply(record)
	return record, nil
}

func normalizeBreakdown(in earningdomain.OBBreakdown) (earningdomain.OBBreakdown, error) {
	out := earningdomain.OBBreakdown{}
	for tier, hours := range in {
		if !tier.Valid() || hours.IsNegative() {
			return nil, earningdomain.ErrInvalidOBBreakdown
		}
		out[tier] = hours
	}
	return out, nil
}

// visible reports whether a record owned by employerID may be read in ctx.
func visible(ctx context.Context, employerID string) bool {
	scoped, ok := employercontext.EmployerIDFromContext(ctx)
	return !ok || scoped == employerID
}
