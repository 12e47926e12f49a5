package cleaner

import (
	"github.com/smallbiznis/insight/internal/cleaner/service"
	"go.uber.org/fx"
)

var Module = fx.Module("cleaner.service",
	fx.Provide(service.NewService),
)
