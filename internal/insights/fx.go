package insights

import (
	"github.com/smallbiznis/insight/internal/insights/service"
	"go.uber.org/fx"
)

var Module = fx.Module("insights.service",
	fx.Provide(service.NewService),
)
