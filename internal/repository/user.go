// Package repository provides data access layer implementations for the application.
package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"inkwell/internal/models"

	"gorm.io/gorm"
)

// UserRepository defines the interface for user and role data operations.
type UserRepository interface {
	Create(ctx context.Context, user *models.User, initialRoleName string) error
	GetByID(ctx context.Context, id uint) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	Update(ctx context.Context, user *models.User) error
	UpdatePassword(ctx context.Context, userID uint, hashed string) error
	TouchLastSeen(ctx context.Context, userID uint, at time.Time) error
	List(ctx context.Context, limit, offset int) ([]models.User, error)
	GetRoleByName(ctx context.Context, name string) (*models.Role, error)
	CreateRole(ctx context.Context, role *models.Role) error
	ListRoles(ctx context.Context) ([]models.Role, error)
	GrantRole(ctx context.Context, userID uint, roleName string) error
	RevokeRole(ctx context.Context, userID uint, roleName string) error
}

// userRepository implements UserRepository
type userRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

// Create persists a new user and attaches the named initial role in one
// transaction. A misconfigured deployment without the role must fail the
// registration rather than produce a role-less user.
func (r *userRepository) Create(ctx context.Context, user *models.User, initialRoleName string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var role models.Role
		if err := tx.Where("name = ?", initialRoleName).First(&role).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.NewNotFoundError("Role", initialRoleName)
			}
			return models.NewInternalError(err)
		}

		user.Roles = append(user.Roles, role)
		if err := tx.Create(user).Error; err != nil {
			if isUniqueViolation(err) {
				return models.NewConflictError("Username already taken")
			}
			return models.NewInternalError(err)
		}
		return nil
	})
}

func (r *userRepository) GetByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Preload("Roles").First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("User", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &user, nil
}

func (r *userRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Preload("Roles").
		Where("username = ?", username).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("User", username)
		}
		return nil, models.NewInternalError(err)
	}
	return &user, nil
}

func (r *userRepository) Update(ctx context.Context, user *models.User) error {
	err := r.db.WithContext(ctx).Model(user).
		Updates(map[string]any{"username": user.Username, "about_me": user.AboutMe}).Error
	if err != nil {
		if isUniqueViolation(err) {
			return models.NewConflictError("Username already taken")
		}
		return models.NewInternalError(err)
	}
	return nil
}

func (r *userRepository) UpdatePassword(ctx context.Context, userID uint, hashed string) error {
	if err := r.db.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", userID).Update("password", hashed).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *userRepository) TouchLastSeen(ctx context.Context, userID uint, at time.Time) error {
	if err := r.db.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", userID).Update("last_seen", at).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *userRepository) List(ctx context.Context, limit, offset int) ([]models.User, error) {
	var users []models.User
	if err := r.db.WithContext(ctx).Preload("Roles").
		Order("id ASC").Limit(limit).Offset(offset).Find(&users).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return users, nil
}

func (r *userRepository) GetRoleByName(ctx context.Context, name string) (*models.Role, error) {
	var role models.Role
	if err := r.db.WithContext(ctx).Where("name = ?", name).First(&role).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Role", name)
		}
		return nil, models.NewInternalError(err)
	}
	return &role, nil
}

func (r *userRepository) CreateRole(ctx context.Context, role *models.Role) error {
	if err := r.db.WithContext(ctx).Create(role).Error; err != nil {
		if isUniqueViolation(err) {
			return models.NewConflictError("Role name already exists")
		}
		return models.NewInternalError(err)
	}
	return nil
}

func (r *userRepository) ListRoles(ctx context.Context) ([]models.Role, error) {
	var roles []models.Role
	if err := r.db.WithContext(ctx).Order("id ASC").Find(&roles).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return roles, nil
}

func (r *userRepository) GrantRole(ctx context.Context, userID uint, roleName string) error {
	role, err := r.GetRoleByName(ctx, roleName)
	if err != nil {
		return err
	}
	user := models.User{ID: userID}
	if err := r.db.WithContext(ctx).Model(&user).
		Association("Roles").Append(role); err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *userRepository) RevokeRole(ctx context.Context, userID uint, roleName string) error {
	role, err := r.GetRoleByName(ctx, roleName)
	if err != nil {
		return err
	}
	user := models.User{ID: userID}
	if err := r.db.WithContext(ctx).Model(&user).
		Association("Roles").Delete(role); err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

// isUniqueViolation matches unique-constraint failures across the
// postgres and sqlite drivers.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate key") ||
		strings.Contains(msg, "unique constraint")
}
