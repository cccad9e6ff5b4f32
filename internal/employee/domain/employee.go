package domain

import (
	"context"
	"errors"
	"strings"
)

// BankDetails is owned by the upstream employee profile service. The engine
// only reads it for display.
type BankDetails struct {
	EmployeeID     string `json:"employee_id" gorm:"primaryKey;type:varchar(64)"`
	BankName       string `json:"bank_name" gorm:"type:varchar(255)"`
	ClearingNumber string `json:"clearing_number" gorm:"type:varchar(32)"`
	AccountNumber  string `json:"account_number" gorm:"type:varchar(64)"`
	Address        string `json:"address" gorm:"type:text"`
}

func (BankDetails) TableName() string { return "employee_bank_details" }

type EmploymentType string

const (
	EmploymentHourly     EmploymentType = "hourly"
	EmploymentSalaried   EmploymentType = "salaried"
	EmploymentConsultant EmploymentType = "consultant"
)

// EmploymentRelationship links an employee to an employer. Upstream owned.
type EmploymentRelationship struct {
	EmployeeID string         `json:"employee_id" gorm:"primaryKey;type:varchar(64)"`
	EmployerID string         `json:"employer_id" gorm:"primaryKey;type:varchar(64)"`
	Type       EmploymentType `json:"type" gorm:"type:varchar(32);not null"`
}

func (EmploymentRelationship) TableName() string { return "employment_relationships" }

// Normalized lowercases the type as stored upstream.
func (t EmploymentType) Normalized() EmploymentType {
	return EmploymentType(strings.ToLower(strings.TrimSpace(string(t))))
}

type Repository interface {
	FindBankDetails(ctx context.Context, employeeID string) (*BankDetails, error)
	FindEmploymentRelationship(ctx context.Context, employeeID, employerID string) (*EmploymentRelationship, error)
}

type Service interface {
	BankDetails(ctx context.Context, employeeID string) (*BankDetails, error)
	EmploymentRelationship(ctx context.Context, employeeID, employerID string) (*EmploymentRelationship, error)
}

var (
	ErrNotFound        = errors.New("employee_data_not_found")
	ErrInvalidEmployee = errors.New("invalid_employee_id")
)
