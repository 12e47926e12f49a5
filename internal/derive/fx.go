package derive

import (
	"github.com/smallbiznis/insight/internal/derive/service"
	"go.uber.org/fx"
)

var Module = fx.Module("derive.service",
	fx.Provide(service.NewService),
)
