package seed

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"

	authdomain "github.com/fieldline/fieldline/internal/auth/domain"
	"github.com/fieldline/fieldline/internal/auth/password"
	orgdomain "github.com/fieldline/fieldline/internal/organization/domain"
)

const (
	defaultOrgName       = "Main"
	defaultOrgSlug       = "main"
	defaultAdminEmail    = "admin@fieldline.local"
	defaultAdminPassword = "fieldline"
	defaultAdminDisplay  = "Fieldline Admin"
)

// EnsureDefaultOrgWithID seeds the default organization under a fixed
// identifier so self-hosted deployments keep a stable tenant ID.
func EnsureDefaultOrgWithID(db *gorm.DB, orgID int64) error {
	if db == nil {
		return errors.New("seed database handle is required")
	}

	ctx := context.Background()
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		_, err := ensureOrgTx(ctx, tx, snowflake.ID(orgID))
		return err
	})
}

// EnsureDefaultOrgAndAdmin seeds the default organization plus an admin
// account so a fresh install is usable without manual setup.
func EnsureDefaultOrgAndAdmin(db *gorm.DB) error {
	if db == nil {
		return errors.New("seed database handle is required")
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		return err
	}

	ctx := context.Background()
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		org, err := ensureOrgTx(ctx, tx, node.Generate())
		if err != nil {
			return err
		}
		return ensureAdminTx(ctx, tx, node, org.ID)
	})
}

func ensureOrgTx(ctx context.Context, tx *gorm.DB, id snowflake.ID) (*orgdomain.Organization, error) {
	var org orgdomain.Organization
	err := tx.WithContext(ctx).Where("slug = ?", defaultOrgSlug).First(&org).Error
	if err == nil {
		return &org, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	now := time.Now().UTC()
	org = orgdomain.Organization{
		ID:        id,
		Name:      defaultOrgName,
		Slug:      defaultOrgSlug,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := tx.WithContext(ctx).Create(&org).Error; err != nil {
		return nil, err
	}
	return &org, nil
}

func ensureAdminTx(ctx context.Context, tx *gorm.DB, node *snowflake.Node, orgID snowflake.ID) error {
	var user authdomain.User
	err := tx.WithContext(ctx).Where("email = ?", defaultAdminEmail).First(&user).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	hashed, err := password.Hash(defaultAdminPassword)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	user = authdomain.User{
		ID:           node.Generate(),
		Email:        defaultAdminEmail,
		PasswordHash: hashed,
		DisplayName:  defaultAdminDisplay,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := tx.WithContext(ctx).Create(&user).Error; err != nil {
		return err
	}

	member := orgdomain.Member{
		ID:        node.Generate(),
		OrgID:     orgID,
		UserID:    user.ID,
		Role:      orgdomain.RoleOwner,
		CreatedAt: now,
		UpdatedAt: now,
	}
	return tx.WithContext(ctx).Create(&member).Error
}
