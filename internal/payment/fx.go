package payment

import (
	"github.com/smallbiznis/specbook/internal/payment/domain"
	"github.com/smallbiznis/specbook/internal/payment/gateway"
	"github.com/smallbiznis/specbook/internal/payment/service"
	"github.com/smallbiznis/specbook/pkg/repository"
	"go.uber.org/fx"
)

var Module = fx.Module("payment.service",
	fx.Provide(repository.ProvideStore[domain.Payment]),
	fx.Provide(gateway.NewPaystack),
	fx.Provide(service.New),
)
