package earning

import (
	"github.com/smallbiznis/payroll/internal/earning/repository"
	"github.com/smallbiznis/payroll/internal/earning/service"
	"go.uber.org/fx"
)

var Module = fx.Module("earning.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.NewService),
)
