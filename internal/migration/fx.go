package migration

import (
	"go.uber.org/fx"
	"gorm.io/gorm"

	"github.com/fieldline/fieldline/internal/config"
	"github.com/fieldline/fieldline/internal/seed"
)

var Module = fx.Module("migrations",
	fx.Invoke(func(conn *gorm.DB, cfg config.Config) error {
		sqlDB, err := conn.DB()
		if err != nil {
			return err
		}

		if err := RunMigrations(sqlDB, cfg.DBType); err != nil {
			return err
		}

		if cfg.DefaultOrgID != 0 {
			return seed.EnsureDefaultOrgWithID(conn, cfg.DefaultOrgID)
		}
		return seed.EnsureDefaultOrgAndAdmin(conn)
	}),
)
