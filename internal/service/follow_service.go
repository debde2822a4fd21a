package service

import (
	"context"

	"inkwell/internal/models"
	"inkwell/internal/repository"
)

// FollowService manages the directed follow graph.
type FollowService struct {
	follows repository.FollowRepository
	users   repository.UserRepository
}

// NewFollowService creates a new follow service
func NewFollowService(follows repository.FollowRepository, users repository.UserRepository) *FollowService {
	return &FollowService{follows: follows, users: users}
}

// Follow creates the edge from follower to the named user. Following
// yourself is rejected; following someone you already follow is a no-op.
func (s *FollowService) Follow(ctx context.Context, followerID uint, username string) (*models.User, error) {
	target, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if target.ID == followerID {
		return nil, models.NewValidationError("You cannot follow yourself")
	}
	if err := s.follows.Follow(ctx, followerID, target.ID); err != nil {
		return nil, err
	}
	return target, nil
}

// Unfollow removes the edge; an absent edge is a no-op.
func (s *FollowService) Unfollow(ctx context.Context, followerID uint, username string) (*models.User, error) {
	target, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if target.ID == followerID {
		return nil, models.NewValidationError("You cannot unfollow yourself")
	}
	if err := s.follows.Unfollow(ctx, followerID, target.ID); err != nil {
		return nil, err
	}
	return target, nil
}

// IsFollowing reports whether follower currently follows followed.
func (s *FollowService) IsFollowing(ctx context.Context, followerID, followedID uint) (bool, error) {
	return s.follows.IsFollowing(ctx, followerID, followedID)
}

// Followers lists users following userID.
func (s *FollowService) Followers(ctx context.Context, userID uint) ([]models.User, error) {
	return s.follows.Followers(ctx, userID)
}

// Following lists users userID follows.
func (s *FollowService) Following(ctx context.Context, userID uint) ([]models.User, error) {
	return s.follows.Following(ctx, userID)
}

// FollowedFeed returns the user's own posts merged with posts by
// followed users, newest first.
func (s *FollowService) FollowedFeed(ctx context.Context, userID uint, limit, offset int) ([]models.Post, error) {
	return s.follows.FollowedFeed(ctx, userID, limit, offset)
}
