package service

import (
	"context"
	"strings"
	"time"

	"inkwell/internal/models"
	"inkwell/internal/repository"
)

const maxCommentNameLength = 255

// CommentService handles comment business logic. Comments arrive by two
// routes with different authorship semantics: the API records the token
// identity alongside the display name, the web form records only the
// display name.
type CommentService struct {
	comments repository.CommentRepository
	posts    repository.PostRepository
	access   *AccessControl
}

// NewCommentService creates a new comment service
func NewCommentService(comments repository.CommentRepository, posts repository.PostRepository, access *AccessControl) *CommentService {
	return &CommentService{comments: comments, posts: posts, access: access}
}

// CreateOwned adds a comment through the token-authenticated API path.
// The actor's id is recorded for later ownership checks; the display
// name comes from the payload and may diverge from the username.
func (s *CommentService) CreateOwned(ctx context.Context, userID, postID uint, name, text string) (*models.Comment, error) {
	name = strings.TrimSpace(name)
	if err := validateCommentName(name); err != nil {
		return nil, err
	}
	if err := validateCommentText(text); err != nil {
		return nil, err
	}
	if _, err := s.posts.GetByID(ctx, postID); err != nil {
		return nil, err
	}

	comment := &models.Comment{
		Name:   name,
		Text:   text,
		Date:   time.Now().UTC(),
		PostID: postID,
		UserID: &userID,
	}
	if err := s.comments.Create(ctx, comment); err != nil {
		return nil, err
	}
	return comment, nil
}

// CreateNamed adds a comment through the web form: a free-text display
// name with no recorded user. These comments have no owner, so only
// admins may later edit or remove them.
func (s *CommentService) CreateNamed(ctx context.Context, postID uint, name, text string) (*models.Comment, error) {
	name = strings.TrimSpace(name)
	if err := validateCommentName(name); err != nil {
		return nil, err
	}
	if err := validateCommentText(text); err != nil {
		return nil, err
	}
	if _, err := s.posts.GetByID(ctx, postID); err != nil {
		return nil, err
	}

	comment := &models.Comment{
		Name:   name,
		Text:   text,
		Date:   time.Now().UTC(),
		PostID: postID,
	}
	if err := s.comments.Create(ctx, comment); err != nil {
		return nil, err
	}
	return comment, nil
}

// Update edits a comment. Only comments with a recorded user id can be
// edited, and only by that user or an admin; web-form comments have no
// owner and cannot be edited by anyone but admins.
func (s *CommentService) Update(ctx context.Context, actorID, commentID uint, text string) (*models.Comment, error) {
	if err := validateCommentText(text); err != nil {
		return nil, err
	}
	comment, err := s.comments.GetByID(ctx, commentID)
	if err != nil {
		return nil, err
	}
	if err := s.requireCommentOwnership(ctx, comment, actorID); err != nil {
		return nil, err
	}

	comment.Text = text
	if err := s.comments.Update(ctx, comment); err != nil {
		return nil, err
	}
	return comment, nil
}

// Delete removes a comment under the same ownership rules as Update.
func (s *CommentService) Delete(ctx context.Context, actorID, commentID uint) error {
	comment, err := s.comments.GetByID(ctx, commentID)
	if err != nil {
		return err
	}
	if err := s.requireCommentOwnership(ctx, comment, actorID); err != nil {
		return err
	}
	return s.comments.Delete(ctx, commentID)
}

// GetByID returns a single comment.
func (s *CommentService) GetByID(ctx context.Context, commentID uint) (*models.Comment, error) {
	return s.comments.GetByID(ctx, commentID)
}

// ListByPost returns a post's comments, newest first.
func (s *CommentService) ListByPost(ctx context.Context, postID uint, limit, offset int) ([]models.Comment, error) {
	if _, err := s.posts.GetByID(ctx, postID); err != nil {
		return nil, err
	}
	return s.comments.ListByPost(ctx, postID, limit, offset)
}

func (s *CommentService) requireCommentOwnership(ctx context.Context, comment *models.Comment, actorID uint) error {
	if comment.UserID != nil {
		return s.access.RequireOwnership(ctx, *comment.UserID, actorID)
	}
	isAdmin, err := s.access.HasRole(ctx, actorID, models.RoleAdmin)
	if err != nil {
		return err
	}
	if !isAdmin {
		return models.NewForbiddenError("You do not own this resource")
	}
	return nil
}

func validateCommentName(name string) error {
	if name == "" {
		return models.NewValidationError("Name cannot be empty")
	}
	if len(name) > maxCommentNameLength {
		return models.NewValidationError("Name is too long")
	}
	return nil
}

func validateCommentText(text string) error {
	if strings.TrimSpace(text) == "" {
		return models.NewValidationError("Text cannot be empty")
	}
	return nil
}
