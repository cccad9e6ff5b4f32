package employee

import (
	"github.com/smallbiznis/payroll/internal/employee/repository"
	"github.com/smallbiznis/payroll/internal/employee/service"
	"go.uber.org/fx"
)

var Module = fx.Module("employee.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.NewService),
)
