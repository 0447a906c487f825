package payment

import (
	"go.uber.org/fx"

	"github.com/fieldline/fieldline/internal/payment/repository"
	"github.com/fieldline/fieldline/internal/payment/service"
	"github.com/fieldline/fieldline/internal/payment/webhook"
)

var Module = fx.Module("payment",
	fx.Provide(repository.Provide),
	fx.Provide(service.NewService),
	fx.Provide(webhook.NewService),
)
