package consolidation

import (
	"github.com/smallbiznis/payroll/internal/consolidation/service"
	"go.uber.org/fx"
)

var Module = fx.Module("consolidation.service",
	fx.Provide(service.NewService),
)
