package service

import (
	"context"
	"time"

	"inkwell/internal/models"
)

// Hand-written repository stubs: each method delegates to an optional
// function field and returns zero values otherwise.

type stubUserRepo struct {
	createFn         func(ctx context.Context, user *models.User, role string) error
	getByIDFn        func(ctx context.Context, id uint) (*models.User, error)
	getByUsernameFn  func(ctx context.Context, username string) (*models.User, error)
	updateFn         func(ctx context.Context, user *models.User) error
	updatePasswordFn func(ctx context.Context, userID uint, hashed string) error
	grantRoleFn      func(ctx context.Context, userID uint, role string) error
	revokeRoleFn     func(ctx context.Context, userID uint, role string) error
}

func (s *stubUserRepo) Create(ctx context.Context, user *models.User, role string) error {
	if s.createFn != nil {
		return s.createFn(ctx, user, role)
	}
	return nil
}

func (s *stubUserRepo) GetByID(ctx context.Context, id uint) (*models.User, error) {
	if s.getByIDFn != nil {
		return s.getByIDFn(ctx, id)
	}
	return nil, models.NewNotFoundError("User", id)
}

func (s *stubUserRepo) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	if s.getByUsernameFn != nil {
		return s.getByUsernameFn(ctx, username)
	}
	return nil, models.NewNotFoundError("User", username)
}

func (s *stubUserRepo) Update(ctx context.Context, user *models.User) error {
	if s.updateFn != nil {
		return s.updateFn(ctx, user)
	}
	return nil
}

func (s *stubUserRepo) UpdatePassword(ctx context.Context, userID uint, hashed string) error {
	if s.updatePasswordFn != nil {
		return s.updatePasswordFn(ctx, userID, hashed)
	}
	return nil
}

func (s *stubUserRepo) TouchLastSeen(ctx context.Context, userID uint, at time.Time) error {
	return nil
}

func (s *stubUserRepo) List(ctx context.Context, limit, offset int) ([]models.User, error) {
	return nil, nil
}

func (s *stubUserRepo) GetRoleByName(ctx context.Context, name string) (*models.Role, error) {
	return &models.Role{Name: name}, nil
}

func (s *stubUserRepo) CreateRole(ctx context.Context, role *models.Role) error { return nil }

func (s *stubUserRepo) ListRoles(ctx context.Context) ([]models.Role, error) { return nil, nil }

func (s *stubUserRepo) GrantRole(ctx context.Context, userID uint, role string) error {
	if s.grantRoleFn != nil {
		return s.grantRoleFn(ctx, userID, role)
	}
	return nil
}

func (s *stubUserRepo) RevokeRole(ctx context.Context, userID uint, role string) error {
	if s.revokeRoleFn != nil {
		return s.revokeRoleFn(ctx, userID, role)
	}
	return nil
}

type stubFollowRepo struct {
	followFn      func(ctx context.Context, followerID, followedID uint) error
	unfollowFn    func(ctx context.Context, followerID, followedID uint) error
	isFollowingFn func(ctx context.Context, followerID, followedID uint) (bool, error)
	feedFn        func(ctx context.Context, userID uint, limit, offset int) ([]models.Post, error)
}

func (s *stubFollowRepo) Follow(ctx context.Context, followerID, followedID uint) error {
	if s.followFn != nil {
		return s.followFn(ctx, followerID, followedID)
	}
	return nil
}

func (s *stubFollowRepo) Unfollow(ctx context.Context, followerID, followedID uint) error {
	if s.unfollowFn != nil {
		return s.unfollowFn(ctx, followerID, followedID)
	}
	return nil
}

func (s *stubFollowRepo) IsFollowing(ctx context.Context, followerID, followedID uint) (bool, error) {
	if s.isFollowingFn != nil {
		return s.isFollowingFn(ctx, followerID, followedID)
	}
	return false, nil
}

func (s *stubFollowRepo) Followers(ctx context.Context, userID uint) ([]models.User, error) {
	return nil, nil
}

func (s *stubFollowRepo) Following(ctx context.Context, userID uint) ([]models.User, error) {
	return nil, nil
}

func (s *stubFollowRepo) FollowedFeed(ctx context.Context, userID uint, limit, offset int) ([]models.Post, error) {
	if s.feedFn != nil {
		return s.feedFn(ctx, userID, limit, offset)
	}
	return nil, nil
}

type stubPostRepo struct {
	createFn      func(ctx context.Context, post *models.Post) error
	getByIDFn     func(ctx context.Context, id uint) (*models.Post, error)
	updateFn      func(ctx context.Context, post *models.Post) error
	replaceTagsFn func(ctx context.Context, post *models.Post, tags []models.Tag) error
	deleteFn      func(ctx context.Context, id uint) error
	sidebarFn     func(ctx context.Context) (*models.Sidebar, error)
}

func (s *stubPostRepo) Create(ctx context.Context, post *models.Post) error {
	if s.createFn != nil {
		return s.createFn(ctx, post)
	}
	return nil
}

func (s *stubPostRepo) GetByID(ctx context.Context, id uint) (*models.Post, error) {
	if s.getByIDFn != nil {
		return s.getByIDFn(ctx, id)
	}
	return nil, models.NewNotFoundError("Post", id)
}

func (s *stubPostRepo) List(ctx context.Context, limit, offset int) ([]models.Post, error) {
	return nil, nil
}

func (s *stubPostRepo) ListByUser(ctx context.Context, userID uint, limit, offset int) ([]models.Post, error) {
	return nil, nil
}

func (s *stubPostRepo) ListByTag(ctx context.Context, tagID uint, limit, offset int) ([]models.Post, error) {
	return nil, nil
}

func (s *stubPostRepo) Count(ctx context.Context) (int64, error) { return 0, nil }

func (s *stubPostRepo) Update(ctx context.Context, post *models.Post) error {
	if s.updateFn != nil {
		return s.updateFn(ctx, post)
	}
	return nil
}

func (s *stubPostRepo) ReplaceTags(ctx context.Context, post *models.Post, tags []models.Tag) error {
	if s.replaceTagsFn != nil {
		return s.replaceTagsFn(ctx, post, tags)
	}
	return nil
}

func (s *stubPostRepo) Delete(ctx context.Context, id uint) error {
	if s.deleteFn != nil {
		return s.deleteFn(ctx, id)
	}
	return nil
}

func (s *stubPostRepo) Sidebar(ctx context.Context) (*models.Sidebar, error) {
	if s.sidebarFn != nil {
		return s.sidebarFn(ctx)
	}
	return &models.Sidebar{}, nil
}

type stubTagRepo struct {
	getOrCreateFn func(ctx context.Context, title string) (*models.Tag, error)
	getByTitleFn  func(ctx context.Context, title string) (*models.Tag, error)
}

func (s *stubTagRepo) GetOrCreate(ctx context.Context, title string) (*models.Tag, error) {
	if s.getOrCreateFn != nil {
		return s.getOrCreateFn(ctx, title)
	}
	return &models.Tag{Title: title}, nil
}

func (s *stubTagRepo) GetByTitle(ctx context.Context, title string) (*models.Tag, error) {
	if s.getByTitleFn != nil {
		return s.getByTitleFn(ctx, title)
	}
	return nil, models.NewNotFoundError("Tag", title)
}

func (s *stubTagRepo) List(ctx context.Context, limit, offset int) ([]models.Tag, error) {
	return nil, nil
}

func (s *stubTagRepo) TopTags(ctx context.Context, limit int) ([]models.TagCount, error) {
	return nil, nil
}

func (s *stubTagRepo) Delete(ctx context.Context, id uint) error { return nil }

type stubCommentRepo struct {
	createFn  func(ctx context.Context, comment *models.Comment) error
	getByIDFn func(ctx context.Context, id uint) (*models.Comment, error)
	updateFn  func(ctx context.Context, comment *models.Comment) error
	deleteFn  func(ctx context.Context, id uint) error
}

func (s *stubCommentRepo) Create(ctx context.Context, comment *models.Comment) error {
	if s.createFn != nil {
		return s.createFn(ctx, comment)
	}
	return nil
}

func (s *stubCommentRepo) GetByID(ctx context.Context, id uint) (*models.Comment, error) {
	if s.getByIDFn != nil {
		return s.getByIDFn(ctx, id)
	}
	return nil, models.NewNotFoundError("Comment", id)
}

func (s *stubCommentRepo) ListByPost(ctx context.Context, postID uint, limit, offset int) ([]models.Comment, error) {
	return nil, nil
}

func (s *stubCommentRepo) List(ctx context.Context, limit, offset int) ([]models.Comment, error) {
	return nil, nil
}

func (s *stubCommentRepo) Update(ctx context.Context, comment *models.Comment) error {
	if s.updateFn != nil {
		return s.updateFn(ctx, comment)
	}
	return nil
}

func (s *stubCommentRepo) Delete(ctx context.Context, id uint) error {
	if s.deleteFn != nil {
		return s.deleteFn(ctx, id)
	}
	return nil
}

// userWithRoles builds a user whose role set is loaded, the shape the
// real repository returns.
func userWithRoles(id uint, username string, roles ...string) *models.User {
	user := &models.User{ID: id, Username: username}
	for _, name := range roles {
		user.Roles = append(user.Roles, models.Role{Name: name})
	}
	return user
}
