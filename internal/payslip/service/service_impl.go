package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	earningdomain "github.com/smallbiznis/payroll/internal/earning/domain"
	"github.com/smallbiznis/payroll/internal/employercontext"
	"github.com/smallbiznis/payroll/internal/payslip/domain"
	"github.com/smallbiznis/payroll/pkg/db/pagination"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB   *gorm.DB
	Log  *zap.Logger
	Repo domain.Repository
}

type Service struct {
	db   *gorm.DB
	log  *zap.Logger
	repo domain.Repository
}

func NewService(p Params) domain.Service {
	return &Service{
		db:   p.DB,
		log:  p.Log.Named("payslip.service"),
		repo: p.Repo,
	}
}

func (s *Service) Get(ctx context.Context, id snowflake.ID) (*domain.Payslip, error) {
	if id == 0 {
		return nil, domain.ErrPayslipNotFound
	}
	payslip, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	if payslip == nil {
		return nil, domain.ErrPayslipNotFound
	}
	if employerID, ok := employercontext.EmployerIDFromContext(ctx); ok && employerID != payslip.EmployerID {
		return nil, domain.ErrPayslipNotFound
	}
	return payslip, nil
}

// List returns payslips newest first.
func (s *Service) List(ctx context.Context, req domain.ListPayslipsRequest) (domain.ListPayslipsResponse, error) {
	filter := domain.ListFilter{
		EmployeeID: strings.TrimSpace(req.EmployeeID),
		Limit:      req.Limit(),
	}
	if employerID, ok := employercontext.EmployerIDFromContext(ctx); ok {
		filter.EmployerID = employerID
	}
	if strings.TrimSpace(req.PayPeriod) != "" {
		period, err := earningdomain.ParsePayPeriod(req.PayPeriod)
		if err != nil {
			return domain.ListPayslipsResponse{}, err
		}
		filter.PayPeriod = period
	}
	if status := strings.TrimSpace(req.Status); status != "" {
		parsed := domain.Status(strings.ToLower(status))
		if !parsed.Valid() {
			return domain.ListPayslipsResponse{}, domain.ErrInvalidStatus
		}
		filter.Status = parsed
	}
	if token := strings.TrimSpace(req.PageToken); token != "" {
		cursor, err := pagination.DecodeCursor(token)
		if err != nil {
			return domain.ListPayslipsResponse{}, domain.ErrInvalidPageToken
		}
		id, err := snowflake.ParseString(cursor.ID)
		if err != nil {
			return domain.ListPayslipsResponse{}, domain.ErrInvalidPageToken
		}
		filter.Cursor = &id
	}

	items, err := s.repo.List(ctx, s.db, filter)
	if err != nil {
		return domain.ListPayslipsResponse{}, err
	}
	page, info, err := pagination.Page(items, filter.Limit, func(p *domain.Payslip) pagination.Cursor {
		return pagination.Cursor{ID: p.ID.String()}
	})
	if err != nil {
		return domain.ListPayslipsResponse{}, err
	}

	payslips := make([]domain.Payslip, 0, len(page))
	for _, item := range page {
		payslips = append(payslips, *item)
	}
	return domain.ListPayslipsResponse{PageInfo: info, Payslips: payslips}, nil
}
