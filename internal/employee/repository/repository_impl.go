package repository

import (
	"context"
	"errors"

	"github.com/smallbiznis/payroll/internal/employee/domain"
	"gorm.io/gorm"
)

type repo struct {
	db *gorm.DB
}

func Provide(db *gorm.DB) domain.Repository {
	return &repo{db: db}
}

func (r *repo) FindBankDetails(ctx context.Context, employeeID string) (*domain.BankDetails, error) {
	var details domain.BankDetails
	err := r.db.WithContext(ctx).Where("employee_id = ?", employeeID).Take(&details).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &details, nil
}

func (r *repo) FindEmploymentRelationship(ctx context.Context, employeeID, employerID string) (*domain.EmploymentRelationship, error) {
	var rel domain.EmploymentRelationship
	err := r.db.WithContext(ctx).
		Where("employee_id = ? AND employer_id = ?", employeeID, employerID).
		Take(&rel).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &rel, nil
}
