package repository

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/payroll/internal/payslip/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, tx *gorm.DB, payslip *domain.Payslip) error {
	return tx.WithContext(ctx).Create(payslip).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Payslip, error) {
	var payslip domain.Payslip
	err := db.WithContext(ctx).Where("id = ?", id).Take(&payslip).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &payslip, nil
}

func (r *repo) FindByIDsForUpdate(ctx context.Context, tx *gorm.DB, ids []snowflake.ID) ([]domain.Payslip, error) {
	var payslips []domain.Payslip
	if len(ids) == 0 {
		return payslips, nil
	}
	err := tx.WithContext(ctx).
		Clauses(clause.Locking{Strength: clause.LockingStrengthUpdate}).
		Where("id IN ?", ids).
		Order("id").
		Find(&payslips).Error
	return payslips, err
}

func (r *repo) List(ctx context.Context, db *gorm.DB, filter domain.ListFilter) ([]*domain.Payslip, error) {
	var payslips []*domain.Payslip
	stmt := db.WithContext(ctx).Model(&domain.Payslip{})

	if filter.EmployerID != "" {
		stmt = stmt.Where("employer_id = ?", filter.EmployerID)
	}
	if filter.EmployeeID != "" {
		stmt = stmt.Where("employee_id = ?", filter.EmployeeID)
	}
	if filter.PayPeriod != "" {
		stmt = stmt.Where("pay_period = ?", filter.PayPeriod)
	}
	if filter.Status != "" {
		stmt = stmt.Where("status = ?", filter.Status)
	}
	if filter.Cursor != nil {
		stmt = stmt.Where("id < ?", *filter.Cursor)
	}

	stmt = stmt.Order("id desc")
	if filter.Limit > 0 {
		stmt = stmt.Limit(filter.Limit + 1)
	}

	if err := stmt.Find(&payslips).Error; err != nil {
		return nil, err
	}
	return payslips, nil
}

func (r *repo) TransitionStatus(ctx context.Context, tx *gorm.DB, ids []snowflake.ID, from domain.Status, fields map[string]any) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	result := tx.WithContext(ctx).
		Model(&domain.Payslip{}).
		Where("id IN ? AND status = ?", ids, from).
		Updates(fields)
	return result.RowsAffected, result.Error
}
