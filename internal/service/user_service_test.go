package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"inkwell/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func assertCode(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	var appErr *models.AppError
	require.True(t, errors.As(err, &appErr), "expected AppError, got %T", err)
	assert.Equal(t, code, appErr.Code)
}

func TestRegister(t *testing.T) {
	var created *models.User
	var roleRequested string
	repo := &stubUserRepo{
		createFn: func(ctx context.Context, user *models.User, role string) error {
			user.ID = 1
			created = user
			roleRequested = role
			return nil
		},
	}
	svc := NewUserService(repo)

	user, err := svc.Register(context.Background(), "alice", "password1")
	require.NoError(t, err)
	require.NotNil(t, created)

	assert.Equal(t, "alice", user.Username)
	assert.Equal(t, models.RoleDefault, roleRequested)

	// The stored password is a hash of the input, never the plaintext.
	assert.NotEqual(t, "password1", created.Password)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(created.Password), []byte("password1")))
}

func TestRegisterValidation(t *testing.T) {
	svc := NewUserService(&stubUserRepo{})

	tests := []struct {
		name     string
		username string
		password string
	}{
		{"short username", "ab", "password1"},
		{"bad characters", "alice smith", "password1"},
		{"short password", "alice", "pw1"},
		{"no digit", "alice", "passwordonly"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Register(context.Background(), tt.username, tt.password)
			assertCode(t, err, models.CodeValidation)
		})
	}
}

func TestRegisterDuplicateUsername(t *testing.T) {
	repo := &stubUserRepo{
		getByUsernameFn: func(ctx context.Context, username string) (*models.User, error) {
			return userWithRoles(1, username, models.RoleDefault), nil
		},
	}
	svc := NewUserService(repo)

	_, err := svc.Register(context.Background(), "alice", "password1")
	assertCode(t, err, models.CodeConflict)
}

func TestAuthenticate(t *testing.T) {
	hashed, err := bcrypt.GenerateFromPassword([]byte("password1"), bcrypt.MinCost)
	require.NoError(t, err)

	repo := &stubUserRepo{
		getByUsernameFn: func(ctx context.Context, username string) (*models.User, error) {
			if username != "alice" {
				return nil, models.NewNotFoundError("User", username)
			}
			user := userWithRoles(1, "alice", models.RoleDefault)
			user.Password = string(hashed)
			return user, nil
		},
	}
	svc := NewUserService(repo)
	ctx := context.Background()

	user, err := svc.Authenticate(ctx, "alice", "password1")
	require.NoError(t, err)
	assert.Equal(t, uint(1), user.ID)

	// Unknown user and wrong password fail with the same message so the
	// response never reveals which half was wrong.
	_, errUnknown := svc.Authenticate(ctx, "ghost", "password1")
	_, errWrongPw := svc.Authenticate(ctx, "alice", "wrongpass9")
	assertCode(t, errUnknown, models.CodeUnauthenticated)
	assertCode(t, errWrongPw, models.CodeUnauthenticated)
	assert.Equal(t, errUnknown.Error(), errWrongPw.Error())
}

// userStoreRepo backs the stub with an in-memory map so repeat lookups
// see previously created users.
func userStoreRepo() (*stubUserRepo, map[string]*models.User) {
	store := map[string]*models.User{}
	var nextID uint
	repo := &stubUserRepo{
		getByUsernameFn: func(ctx context.Context, username string) (*models.User, error) {
			if user, ok := store[username]; ok {
				return user, nil
			}
			return nil, models.NewNotFoundError("User", username)
		},
		createFn: func(ctx context.Context, user *models.User, role string) error {
			if _, ok := store[user.Username]; ok {
				return models.NewConflictError("Username already taken")
			}
			nextID++
			user.ID = nextID
			store[user.Username] = user
			return nil
		},
	}
	return repo, store
}

func TestResolveExternalIdempotent(t *testing.T) {
	repo, store := userStoreRepo()
	svc := NewUserService(repo)
	ctx := context.Background()

	first, err := svc.ResolveExternal(ctx, "github", "12345")
	require.NoError(t, err)

	second, err := svc.ResolveExternal(ctx, "github", "12345")
	require.NoError(t, err)

	// Same external identity resolves to the same local user.
	assert.Equal(t, first.ID, second.ID)
	assert.Len(t, store, 1)

	other, err := svc.ResolveExternal(ctx, "google", "12345")
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, other.ID)
}

func TestResolveExternalNoLocalPassword(t *testing.T) {
	repo, _ := userStoreRepo()
	svc := NewUserService(repo)
	ctx := context.Background()

	user, err := svc.ResolveExternal(ctx, "github", "octocat")
	require.NoError(t, err)
	assert.Empty(t, user.Password)

	// No derivable credential opens the account: password login always
	// fails for externally created users.
	_, err = svc.Authenticate(ctx, user.Username, "octocatgithub")
	assertCode(t, err, models.CodeUnauthenticated)
	_, err = svc.Authenticate(ctx, user.Username, "")
	assertCode(t, err, models.CodeUnauthenticated)
}

func TestResolveExternalLongSubjects(t *testing.T) {
	repo, store := userStoreRepo()
	svc := NewUserService(repo)
	ctx := context.Background()

	prefix := strings.Repeat("a", 40)
	first, err := svc.ResolveExternal(ctx, "github", prefix+"1")
	require.NoError(t, err)
	second, err := svc.ResolveExternal(ctx, "github", prefix+"2")
	require.NoError(t, err)

	// Subjects sharing a long prefix must not fold onto one account.
	assert.NotEqual(t, first.Username, second.Username)
	assert.NotEqual(t, first.ID, second.ID)
	assert.Len(t, store, 2)
	assert.LessOrEqual(t, len(first.Username), 32)
	assert.LessOrEqual(t, len(second.Username), 32)
}

func TestResolveExternalMissingFields(t *testing.T) {
	svc := NewUserService(&stubUserRepo{})
	_, err := svc.ResolveExternal(context.Background(), "", "12345")
	assertCode(t, err, models.CodeValidation)

	_, err = svc.ResolveExternal(context.Background(), "github", "")
	assertCode(t, err, models.CodeValidation)
}

func TestUpdateProfile(t *testing.T) {
	var updated *models.User
	repo := &stubUserRepo{
		getByIDFn: func(ctx context.Context, id uint) (*models.User, error) {
			return userWithRoles(id, "oldname", models.RoleDefault), nil
		},
		updateFn: func(ctx context.Context, user *models.User) error {
			updated = user
			return nil
		},
	}
	svc := NewUserService(repo)

	user, err := svc.UpdateProfile(context.Background(), 1, "newname", "hello there")
	require.NoError(t, err)
	require.NotNil(t, updated)
	assert.Equal(t, "newname", user.Username)
	assert.Equal(t, "hello there", user.AboutMe)
}

func TestSetPasswordValidation(t *testing.T) {
	svc := NewUserService(&stubUserRepo{})
	err := svc.SetPassword(context.Background(), 1, "short")
	assertCode(t, err, models.CodeValidation)
}
