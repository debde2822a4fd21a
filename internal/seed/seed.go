// Package seed populates the database with the fixed roles, an admin
// account and optional fake content for development.
package seed

import (
	"context"
	"log/slog"

	"inkwell/internal/cache"
	"inkwell/internal/models"
	"inkwell/internal/repository"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Roles ensures the three built-in roles exist. Safe to run repeatedly.
func Roles(ctx context.Context, db *gorm.DB) error {
	roles := []models.Role{
		{Name: models.RoleDefault, Description: "Baseline capabilities for every account"},
		{Name: models.RolePoster, Description: "May publish and edit own posts"},
		{Name: models.RoleAdmin, Description: "Full moderation and administration"},
	}
	for i := range roles {
		if err := db.WithContext(ctx).
			Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "name"}}, DoNothing: true}).
			Create(&roles[i]).Error; err != nil {
			return err
		}
	}
	return nil
}

// Admin ensures an admin account with the given credentials exists and
// holds every role. An existing account is left untouched.
func Admin(ctx context.Context, db *gorm.DB, username, password string) (*models.User, error) {
	users := repository.NewUserRepository(db)

	existing, err := users.GetByUsername(ctx, username)
	if err == nil {
		return existing, nil
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	admin := &models.User{Username: username, Password: string(hashed)}
	if err := users.Create(ctx, admin, models.RoleDefault); err != nil {
		return nil, err
	}
	for _, role := range []string{models.RolePoster, models.RoleAdmin} {
		if err := users.GrantRole(ctx, admin.ID, role); err != nil {
			return nil, err
		}
	}
	cache.InvalidateUserRoles(ctx, admin.ID)

	slog.Info("admin account created", "username", username)
	return admin, nil
}
