package bom

import (
	"github.com/smallbiznis/specbook/internal/bom/repository"
	"github.com/smallbiznis/specbook/internal/bom/service"
	"go.uber.org/fx"
)

var Module = fx.Module("bom.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
