package rawstore

import (
	"github.com/smallbiznis/insight/internal/rawstore/repository"
	"go.uber.org/fx"
)

var Module = fx.Module("rawstore",
	fx.Provide(repository.NewStore),
)
