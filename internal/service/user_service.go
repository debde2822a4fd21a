package service

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"inkwell/internal/models"
	"inkwell/internal/repository"
	"inkwell/internal/validation"

	"golang.org/x/crypto/bcrypt"
)

// UserService handles registration, authentication and profile updates.
type UserService struct {
	users repository.UserRepository
}

// NewUserService creates a new user service
func NewUserService(users repository.UserRepository) *UserService {
	return &UserService{users: users}
}

// Register validates the credentials, hashes the password and persists
// the user with the default role attached.
func (s *UserService) Register(ctx context.Context, username, password string) (*models.User, error) {
	username = strings.TrimSpace(username)
	if err := validation.ValidateUsername(username); err != nil {
		return nil, err
	}
	if err := validation.ValidatePassword(password); err != nil {
		return nil, err
	}

	if _, err := s.users.GetByUsername(ctx, username); err == nil {
		return nil, models.NewConflictError("Username already taken")
	} else {
		var appErr *models.AppError
		if !errors.As(err, &appErr) || appErr.Code != models.CodeNotFound {
			return nil, err
		}
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	user := &models.User{Username: username, Password: string(hashed)}
	if err := s.users.Create(ctx, user, models.RoleDefault); err != nil {
		return nil, err
	}

	slog.Info("user registered", "user_id", user.ID, "username", user.Username)
	return user, nil
}

// Authenticate verifies the username/password pair. Unknown username
// and wrong password return the same unauthenticated error so the
// response does not leak which half failed.
func (s *UserService) Authenticate(ctx context.Context, username, password string) (*models.User, error) {
	user, err := s.users.GetByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		var appErr *models.AppError
		if errors.As(err, &appErr) && appErr.Code == models.CodeNotFound {
			return nil, models.NewUnauthenticatedError("Invalid username or password")
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, models.NewUnauthenticatedError("Invalid username or password")
	}
	return user, nil
}

// UpdateProfile changes the user's username and about text.
func (s *UserService) UpdateProfile(ctx context.Context, userID uint, username, aboutMe string) (*models.User, error) {
	username = strings.TrimSpace(username)
	if err := validation.ValidateUsername(username); err != nil {
		return nil, err
	}
	if err := validation.ValidateAboutMe(aboutMe); err != nil {
		return nil, err
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	user.Username = username
	user.AboutMe = aboutMe
	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// SetPassword re-hashes and stores a new password for the user.
func (s *UserService) SetPassword(ctx context.Context, userID uint, password string) error {
	if err := validation.ValidatePassword(password); err != nil {
		return err
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return models.NewInternalError(err)
	}
	return s.users.UpdatePassword(ctx, userID, string(hashed))
}

// GetByID returns the user with roles loaded.
func (s *UserService) GetByID(ctx context.Context, userID uint) (*models.User, error) {
	return s.users.GetByID(ctx, userID)
}

// GetByUsername returns the user with roles loaded.
func (s *UserService) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return s.users.GetByUsername(ctx, username)
}

// ResolveExternal maps an OAuth identity onto a local user, creating
// one on first sign-in. The synthesized username is derived from the
// provider and subject, so repeat sign-ins resolve to the same user.
// Externally created users carry no local password; Authenticate's hash
// comparison against the empty value always fails, so the only way into
// the account stays the verified external assertion.
func (s *UserService) ResolveExternal(ctx context.Context, provider, subject string) (*models.User, error) {
	provider = strings.ToLower(strings.TrimSpace(provider))
	subject = strings.TrimSpace(subject)
	if provider == "" || subject == "" {
		return nil, models.NewValidationError("Missing OAuth provider or subject")
	}

	username := fmt.Sprintf("%s_%s", provider, subject)
	if len(username) > 32 {
		// Long subjects are folded through a digest so two subjects that
		// share a prefix never collide on the truncated name.
		sum := sha256.Sum256([]byte(subject))
		username = fmt.Sprintf("%s_%x", provider, sum)
		if len(username) > 32 {
			username = username[:32]
		}
	}

	user, err := s.users.GetByUsername(ctx, username)
	if err == nil {
		return user, nil
	}
	var appErr *models.AppError
	if !errors.As(err, &appErr) || appErr.Code != models.CodeNotFound {
		return nil, err
	}

	user = &models.User{Username: username}
	if err := s.users.Create(ctx, user, models.RoleDefault); err != nil {
		// Lost a race with a concurrent first sign-in; the row exists now.
		if errors.As(err, &appErr) && appErr.Code == models.CodeConflict {
			return s.users.GetByUsername(ctx, username)
		}
		return nil, err
	}

	slog.Info("external user resolved", "user_id", user.ID, "provider", provider)
	return user, nil
}
