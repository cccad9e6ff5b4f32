package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/payroll/internal/adjustment/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) ListByKey(ctx context.Context, db *gorm.DB, employeeID, payPeriod, employerID string) ([]domain.PeriodLevelAdjustment, error) {
	var items []domain.PeriodLevelAdjustment
	err := keyScope(db.WithContext(ctx), employeeID, payPeriod, employerID).
		Order("created_at asc, id asc").
		Find(&items).Error
	return items, err
}

func (r *repo) ListByKeyForUpdate(ctx context.Context, tx *gorm.DB, employeeID, payPeriod, employerID string) ([]domain.PeriodLevelAdjustment, error) {
	var items []domain.PeriodLevelAdjustment
	err := keyScope(tx.WithContext(ctx), employeeID, payPeriod, employerID).
		Clauses(clause.Locking{Strength: clause.LockingStrengthUpdate}).
		Order("created_at asc, id asc").
		Find(&items).Error
	return items, err
}

func (r *repo) Insert(ctx context.Context, tx *gorm.DB, adjustment *domain.PeriodLevelAdjustment) error {
	return tx.WithContext(ctx).Create(adjustment).Error
}

func (r *repo) Update(ctx context.Context, tx *gorm.DB, adjustment *domain.PeriodLevelAdjustment) error {
	return tx.WithContext(ctx).
		Model(&domain.PeriodLevelAdjustment{}).
		Where("id = ? AND payslip_id IS NULL", adjustment.ID).
		Updates(map[string]any{
			"reason":     adjustment.Reason,
			"amount":     adjustment.Amount,
			"updated_at": adjustment.UpdatedAt,
		}).Error
}

func (r *repo) Delete(ctx context.Context, tx *gorm.DB, ids []snowflake.ID) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	result := tx.WithContext(ctx).
		Where("id IN ? AND payslip_id IS NULL", ids).
		Delete(&domain.PeriodLevelAdjustment{})
	return result.RowsAffected, result.Error
}

func (r *repo) Consume(ctx context.Context, tx *gorm.DB, ids []snowflake.ID, payslipID snowflake.ID) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	result := tx.WithContext(ctx).
		Model(&domain.PeriodLevelAdjustment{}).
		Where("id IN ? AND payslip_id IS NULL", ids).
		Update("payslip_id", payslipID)
	return result.RowsAffected, result.Error
}

func (r *repo) Release(ctx context.Context, tx *gorm.DB, payslipIDs []snowflake.ID) (int64, error) {
	if len(payslipIDs) == 0 {
		return 0, nil
	}
	result := tx.WithContext(ctx).
		Model(&domain.PeriodLevelAdjustment{}).
		Where("payslip_id IN ?", payslipIDs).
		Update("payslip_id", nil)
	return result.RowsAffected, result.Error
}

func keyScope(db *gorm.DB, employeeID, payPeriod, employerID string) *gorm.DB {
	stmt := db.Where("employee_id = ? AND pay_period = ?", employeeID, payPeriod)
	if employerID != "" {
		stmt = stmt.Where("created_by_employer_id = ?", employerID)
	}
	return stmt
}
