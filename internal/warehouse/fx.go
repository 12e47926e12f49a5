package warehouse

import (
	"github.com/smallbiznis/insight/internal/warehouse/repository"
	"go.uber.org/fx"
)

var Module = fx.Module("warehouse.store",
	fx.Provide(repository.NewStore),
)
