package repository

import (
	"context"
	"errors"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/payroll/internal/earning/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, record *domain.EarningRecord) (bool, error) {
	result := db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "work_item_id"}},
			DoNothing: true,
		}).
		Create(record)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.EarningRecord, error) {
	var record domain.EarningRecord
	err := db.WithContext(ctx).Where("id = ?", id).Take(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &record, nil
}

func (r *repo) FindByWorkItemID(ctx context.Context, db *gorm.DB, workItemID string) (*domain.EarningRecord, error) {
	var record domain.EarningRecord
	err := db.WithContext(ctx).Where("work_item_id = ?", workItemID).Take(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &record, nil
}

func (r *repo) FindByIDs(ctx context.Context, db *gorm.DB, ids []snowflake.ID) ([]domain.EarningRecord, error) {
	var records []domain.EarningRecord
	if len(ids) == 0 {
		return records, nil
	}
	err := db.WithContext(ctx).Where("id IN ?", ids).Order("id").Find(&records).Error
	return records, err
}

func (r *repo) FindByIDsForUpdate(ctx context.Context, tx *gorm.DB, ids []snowflake.ID) ([]domain.EarningRecord, error) {
	var records []domain.EarningRecord
	if len(ids) == 0 {
		return records, nil
	}
	err := tx.WithContext(ctx).
		Clauses(clause.Locking{Strength: clause.LockingStrengthUpdate}).
		Where("id IN ?", ids).
		Order("id").
		Find(&records).Error
	return records, err
}

func (r *repo) FindByPayslipForUpdate(ctx context.Context, tx *gorm.DB, payslipIDs []snowflake.ID) ([]domain.EarningRecord, error) {
	var records []domain.EarningRecord
	if len(payslipIDs) == 0 {
		return records, nil
	}
	err := tx.WithContext(ctx).
		Clauses(clause.Locking{Strength: clause.LockingStrengthUpdate}).
		Where("payslip_id IN ?", payslipIDs).
		Order("id").
		Find(&records).Error
	return records, err
}

func (r *repo) List(ctx context.Context, db *gorm.DB, filter domain.ListFilter) ([]*domain.EarningRecord, error) {
	var records []*domain.EarningRecord
	stmt := db.WithContext(ctx).Model(&domain.EarningRecord{})

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
	if search := strings.ToLower(strings.TrimSpace(filter.Search)); search != "" {
		stmt = stmt.Where("LOWER(employee_name) LIKE ?", "%"+search+"%")
	}
	if filter.Cursor != nil {
		stmt = stmt.Where("id > ?", *filter.Cursor)
	}

	stmt = stmt.Order("id asc")
	if filter.Limit > 0 {
		stmt = stmt.Limit(filter.Limit + 1)
	}

	if err := stmt.Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

func (r *repo) UpdateAdjustments(ctx context.Context, tx *gorm.DB, record *domain.EarningRecord) (int64, error) {
	result := tx.WithContext(ctx).
		Model(&domain.EarningRecord{}).
		Where("id = ? AND status = ?", record.ID, domain.StatusPending).
		Updates(map[string]any{
			"adjustments":     record.Adjustments,
			"net_adjustments": record.NetAdjustments,
			"total_pay":       record.TotalPay,
			"updated_at":      record.UpdatedAt,
		})
	return result.RowsAffected, result.Error
}

func (r *repo) UpdateTotals(ctx context.Context, tx *gorm.DB, id snowflake.ID, net, total decimal.Decimal) error {
	return tx.WithContext(ctx).
		Model(&domain.EarningRecord{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"net_adjustments": net,
			"total_pay":       total,
		}).Error
}

func (r *repo) TransitionStatus(ctx context.Context, tx *gorm.DB, ids []snowflake.ID, from domain.Status, fields map[string]any) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	result := tx.WithContext(ctx).
		Model(&domain.EarningRecord{}).
		Where("id IN ? AND status = ?", ids, from).
		Updates(fields)
	return result.RowsAffected, result.Error
}
