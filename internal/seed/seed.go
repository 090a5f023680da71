package seed

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	organizationdomain "github.com/smallbiznis/specbook/internal/organization/domain"
	"github.com/smallbiznis/specbook/internal/pricing"
	"gorm.io/gorm"
)

const (
	defaultOrgName = "Main"
	defaultOrgSlug = "main"
)

// EnsureMainOrg seeds the default organization for startup bootstrap.
func EnsureMainOrg(db *gorm.DB) error {
	return ensure(db, 0)
}

// EnsureMainOrgWithID seeds the default organization under a fixed id so
// self-hosted deployments keep stable identifiers across environments.
func EnsureMainOrgWithID(db *gorm.DB, orgID int64) error {
	return ensure(db, orgID)
}

func ensure(db *gorm.DB, orgID int64) error {
	if db == nil {
		return errors.New("seed database handle is required")
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		return err
	}

	ctx := context.Background()
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var org organizationdomain.Organization
		err := tx.WithContext(ctx).
			Where("slug = ?", defaultOrgSlug).
			First(&org).Error
		if err == nil {
			return nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		if orgID == 0 {
			orgID = node.Generate().Int64()
		}
		now := time.Now().UTC()
		org = organizationdomain.Organization{
			ID:          orgID,
			Name:        defaultOrgName,
			Slug:        defaultOrgSlug,
			PricingTier: pricing.TierBase,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		return tx.WithContext(ctx).Create(&org).Error
	})
}
