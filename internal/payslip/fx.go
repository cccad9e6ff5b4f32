package payslip

import (
	"github.com/smallbiznis/payroll/internal/payslip/repository"
	"github.com/smallbiznis/payroll/internal/payslip/service"
	"go.uber.org/fx"
)

var Module = fx.Module("payslip.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.NewService),
)
