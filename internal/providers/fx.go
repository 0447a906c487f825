package providers

import (
	"go.uber.org/fx"

	"github.com/fieldline/fieldline/internal/providers/email"
	"github.com/fieldline/fieldline/internal/providers/pdf"
)

var Module = fx.Module("providers",
	email.Module,
	pdf.Module,
)
