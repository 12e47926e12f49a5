package validator

import (
	"github.com/smallbiznis/insight/internal/validator/service"
	"go.uber.org/fx"
)

var Module = fx.Module("validator.service",
	fx.Provide(service.NewService),
)
