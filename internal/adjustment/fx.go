package adjustment

import (
	"github.com/smallbiznis/payroll/internal/adjustment/repository"
	"github.com/smallbiznis/payroll/internal/adjustment/service"
	"go.uber.org/fx"
)

var Module = fx.Module("adjustment.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.NewService),
)
