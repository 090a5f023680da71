package organization

import (
	"github.com/smallbiznis/specbook/internal/organization/repository"
	"github.com/smallbiznis/specbook/internal/organization/service"
	"go.uber.org/fx"
)

var Module = fx.Module("organization.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
