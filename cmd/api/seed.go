package main

import (
	"context"
	"errors"

	"bouw-backoffice/internal/model"
	"bouw-backoffice/internal/repository"
	"bouw-backoffice/pkg/config"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// seedPrivilegesRolesAndAdmin creates the default privileges, roles and admin
// user when they don't exist. Roles that already carry privileges are left alone.
func seedPrivilegesRolesAndAdmin(
	ctx context.Context,
	cfg *config.Config,
	privilegeRepo repository.PrivilegeRepository,
	roleRepo repository.RoleRepository,
	userRepo repository.UserRepository,
	log *zap.Logger,
) error {
	// 1. Seed privileges first
	if err := privilegeRepo.SeedDefaults(ctx); err != nil {
		return err
	}

	// 2. Seed roles
	if err := roleRepo.SeedDefaults(ctx); err != nil {
		return err
	}

	// 3. Assign privileges to roles
	allPrivileges, err := privilegeRepo.FindAll(ctx)
	if err != nil {
		return err
	}
	byCode := make(map[string]model.Privilege, len(allPrivileges))
	for _, p := range allPrivileges {
		byCode[p.Code] = p
	}

	for _, def := range model.DefaultRoles {
		role, err := roleRepo.FindByCode(ctx, def.Code)
		if err != nil {
			return err
		}
		if len(role.Privileges) > 0 {
			continue
		}

		privileges := allPrivileges
		if role.Code != model.RoleAdmin {
			privileges = privileges[:0:0]
			for _, code := range model.DefaultRolePrivileges[role.Code] {
				if p, ok := byCode[code]; ok {
					privileges = append(privileges, p)
				}
			}
		}
		if err := roleRepo.ReplacePrivileges(ctx, role, privileges); err != nil {
			return err
		}
		log.Info("role privileges seeded", zap.String("role", role.Code), zap.Int("privileges", len(privileges)))
	}

	// 4. Create default admin user
	_, err = userRepo.FindByEmail(ctx, cfg.SeedAdminEmail)
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	adminRole, err := roleRepo.FindByCode(ctx, model.RoleAdmin)
	if err != nil {
		return err
	}
	admin := &model.User{
		Email:      cfg.SeedAdminEmail,
		FullName:   "Administrator",
		RoleID:     &adminRole.ID,
		IsActive:   true,
		Privileges: adminRole.Privileges,
	}
	admin.CreatedBy = "system"
	admin.UpdatedBy = "system"
	if err := admin.SetPassword(cfg.SeedAdminPassword); err != nil {
		return err
	}
	if err := userRepo.Create(ctx, admin); err != nil {
		return err
	}
	log.Info("admin user created", zap.String("email", cfg.SeedAdminEmail))
	return nil
}
