package migration

import (
	bomdomain "github.com/smallbiznis/specbook/internal/bom/domain"
	"github.com/smallbiznis/specbook/internal/config"
	orderdomain "github.com/smallbiznis/specbook/internal/order/domain"
	organizationdomain "github.com/smallbiznis/specbook/internal/organization/domain"
	paymentdomain "github.com/smallbiznis/specbook/internal/payment/domain"
	productdomain "github.com/smallbiznis/specbook/internal/product/domain"
	projectdomain "github.com/smallbiznis/specbook/internal/project/domain"
	"github.com/smallbiznis/specbook/internal/seed"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

var Module = fx.Module("migrations",
	fx.Invoke(func(conn *gorm.DB, cfg config.Config) error {
		if cfg.DBType == "postgres" {
			sqlDB, err := conn.DB()
			if err != nil {
				return err
			}
			if err := RunMigrations(sqlDB); err != nil {
				return err
			}
		} else {
			// Non-postgres deployments are local or single-node; the
			// gorm schema is authoritative there.
			if err := conn.AutoMigrate(
				&organizationdomain.Organization{},
				&productdomain.Product{},
				&projectdomain.Project{},
				&projectdomain.Room{},
				&projectdomain.LineItem{},
				&bomdomain.BOMVersion{},
				&orderdomain.Order{},
				&paymentdomain.Payment{},
			); err != nil {
				return err
			}
		}

		if cfg.DefaultOrgID != 0 {
			return seed.EnsureMainOrgWithID(conn, cfg.DefaultOrgID)
		}
		return seed.EnsureMainOrg(conn)
	}),
)
