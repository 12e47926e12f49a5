package facts

import (
	"github.com/smallbiznis/insight/internal/facts/service"
	"go.uber.org/fx"
)

var Module = fx.Module("facts.service",
	fx.Provide(service.NewService),
)
