package auth

import (
	"go.uber.org/fx"

	"github.com/fieldline/fieldline/internal/auth/repository"
	"github.com/fieldline/fieldline/internal/auth/service"
	"github.com/fieldline/fieldline/internal/auth/session"
)

var Module = fx.Module("auth",
	session.Module,
	fx.Provide(repository.New),
	fx.Provide(service.New),
)
