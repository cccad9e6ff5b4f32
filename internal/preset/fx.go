package preset

import (
	"github.com/smallbiznis/payroll/internal/preset/service"
	"go.uber.org/fx"
)

var Module = fx.Module("preset.service",
	fx.Provide(service.NewService),
)
