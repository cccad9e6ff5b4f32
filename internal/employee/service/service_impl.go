package service

import (
	"context"
	"strings"
	"time"

	"github.com/smallbiznis/payroll/internal/cache"
	"github.com/smallbiznis/payroll/internal/employee/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const relationshipTTL = 5 * time.Minute

type relationshipKey struct {
	employeeID string
	employerID string
}

type Params struct {
	fx.In

	Log  *zap.Logger
	Repo domain.Repository
}

type Service struct {
	log           *zap.Logger
	repo          domain.Repository
	relationships cache.Cache[relationshipKey, domain.EmploymentRelationship]
}

func NewService(p Params) domain.Service {
	return &Service{
		log:           p.Log.Named("employee.service"),
		repo:          p.Repo,
		relationships: cache.NewTTLCache[relationshipKey, domain.EmploymentRelationship](),
	}
}

func (s *Service) BankDetails(ctx context.Context, employeeID string) (*domain.BankDetails, error) {
	employeeID = strings.TrimSpace(employeeID)
	if employeeID == "" {
		return nil, domain.ErrInvalidEmployee
	}
	details, err := s.repo.FindBankDetails(ctx, employeeID)
	if err != nil {
		return nil, err
	}
	if details == nil {
		return nil, domain.ErrNotFound
	}
	return details, nil
}

// EmploymentRelationship serves repeated lookups from a short-lived cache.
// Missing relationships are not cached.
func (s *Service) EmploymentRelationship(ctx context.Context, employeeID, employerID string) (*domain.EmploymentRelationship, error) {
	key := relationshipKey{employeeID: strings.TrimSpace(employeeID), employerID: strings.TrimSpace(employerID)}
	if key.employeeID == "" {
		return nil, domain.ErrInvalidEmployee
	}
	if cached, ok := s.relationships.Get(key); ok {
		return &cached, nil
	}

	rel, err := s.repo.FindEmploymentRelationship(ctx, key.employeeID, key.employerID)
	if err != nil {
		return nil, err
	}
	if rel == nil {
		return nil, domain.ErrNotFound
	}
	rel.Type = rel.Type.Normalized()
	s.relationships.Set(key, *rel, relationshipTTL)
	return rel, nil
}
