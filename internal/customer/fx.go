package customer

import (
	"go.uber.org/fx"

	"github.com/fieldline/fieldline/internal/customer/repository"
	"github.com/fieldline/fieldline/internal/customer/service"
)

var Module = fx.Module("customer.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
