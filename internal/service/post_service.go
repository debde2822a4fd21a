package service

import (
	"context"
	"strings"
	"time"

	"inkwell/internal/cache"
	"inkwell/internal/models"
	"inkwell/internal/observability"
	"inkwell/internal/repository"
)

const maxPostTitleLength = 255

// PostUpdate carries the fields of a partial post update. Nil fields
// are left untouched; a non-nil Tags slice is merged into the post's
// existing tag set.
type PostUpdate struct {
	Title *string
	Text  *string
	Tags  []string
}

// PostService handles post business logic.
type PostService struct {
	posts  repository.PostRepository
	tags   repository.TagRepository
	access *AccessControl
}

// NewPostService creates a new post service
func NewPostService(posts repository.PostRepository, tags repository.TagRepository, access *AccessControl) *PostService {
	return &PostService{posts: posts, tags: tags, access: access}
}

// Create publishes a new post for the actor. Publishing requires the
// poster role. Tag titles are normalized and deduplicated before attach.
func (s *PostService) Create(ctx context.Context, actorID uint, title, text string, tagTitles []string) (*models.Post, error) {
	if err := s.access.RequireRole(ctx, actorID, models.RolePoster); err != nil {
		return nil, err
	}
	if err := validatePostFields(title, text); err != nil {
		return nil, err
	}

	tags, err := s.resolveTags(ctx, tagTitles)
	if err != nil {
		return nil, err
	}

	post := &models.Post{
		Title:       strings.TrimSpace(title),
		Text:        text,
		PublishDate: time.Now().UTC(),
		UserID:      actorID,
		Tags:        tags,
	}
	if err := s.posts.Create(ctx, post); err != nil {
		return nil, err
	}
	return post, nil
}

// Update applies a partial update to a post owned by the actor (or any
// post, for admins). Tags are additive: titles in the update are
// attached, existing tags are never detached here.
func (s *PostService) Update(ctx context.Context, actorID, postID uint, update PostUpdate) (*models.Post, error) {
	post, err := s.posts.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	if err := s.access.RequireOwnership(ctx, post.UserID, actorID); err != nil {
		return nil, err
	}

	if update.Title != nil {
		post.Title = strings.TrimSpace(*update.Title)
	}
	if update.Text != nil {
		post.Text = *update.Text
	}
	if err := validatePostFields(post.Title, post.Text); err != nil {
		return nil, err
	}
	if err := s.posts.Update(ctx, post); err != nil {
		return nil, err
	}

	if len(update.Tags) > 0 {
		added, err := s.resolveTags(ctx, update.Tags)
		if err != nil {
			return nil, err
		}
		merged := mergeTags(post.Tags, added)
		if err := s.posts.ReplaceTags(ctx, post, merged); err != nil {
			return nil, err
		}
		post.Tags = merged
	}
	return post, nil
}

// Delete removes a post owned by the actor (or any post, for admins).
func (s *PostService) Delete(ctx context.Context, actorID, postID uint) error {
	post, err := s.posts.GetByID(ctx, postID)
	if err != nil {
		return err
	}
	if err := s.access.RequireOwnership(ctx, post.UserID, actorID); err != nil {
		return err
	}
	return s.posts.Delete(ctx, postID)
}

// GetByID returns a post with author, tags and comments loaded.
func (s *PostService) GetByID(ctx context.Context, postID uint) (*models.Post, error) {
	return s.posts.GetByID(ctx, postID)
}

// List returns the newest posts first.
func (s *PostService) List(ctx context.Context, limit, offset int) ([]models.Post, error) {
	return s.posts.List(ctx, limit, offset)
}

// ListByUser returns a user's posts, newest first.
func (s *PostService) ListByUser(ctx context.Context, userID uint, limit, offset int) ([]models.Post, error) {
	return s.posts.ListByUser(ctx, userID, limit, offset)
}

// ListByTag returns posts carrying the tag title, newest first.
func (s *PostService) ListByTag(ctx context.Context, tagTitle string, limit, offset int) ([]models.Post, error) {
	tag, err := s.tags.GetByTitle(ctx, tagTitle)
	if err != nil {
		return nil, err
	}
	return s.posts.ListByTag(ctx, tag.ID, limit, offset)
}

// Sidebar returns the cached sidebar aggregate, recomputing it on miss.
// The long TTL means the sidebar can lag writes by up to two hours.
func (s *PostService) Sidebar(ctx context.Context) (*models.Sidebar, error) {
	var sidebar models.Sidebar
	err := cache.Aside(ctx, cache.SidebarKey(), &sidebar, cache.SidebarTTL, func() error {
		observability.SidebarRecomputes.Inc()
		computed, err := s.posts.Sidebar(ctx)
		if err != nil {
			return err
		}
		sidebar = *computed
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &sidebar, nil
}

func (s *PostService) resolveTags(ctx context.Context, titles []string) ([]models.Tag, error) {
	seen := make(map[string]struct{}, len(titles))
	tags := make([]models.Tag, 0, len(titles))
	for _, title := range titles {
		normalized := strings.ToLower(strings.TrimSpace(title))
		if normalized == "" {
			continue
		}
		if _, ok := seen[normalized]; ok {
			continue
		}
		seen[normalized] = struct{}{}
		tag, err := s.tags.GetOrCreate(ctx, normalized)
		if err != nil {
			return nil, err
		}
		tags = append(tags, *tag)
	}
	return tags, nil
}

func mergeTags(existing, added []models.Tag) []models.Tag {
	seen := make(map[uint]struct{}, len(existing))
	merged := make([]models.Tag, 0, len(existing)+len(added))
	for _, t := range existing {
		if _, ok := seen[t.ID]; !ok {
			seen[t.ID] = struct{}{}
			merged = append(merged, t)
		}
	}
	for _, t := range added {
		if _, ok := seen[t.ID]; !ok {
			seen[t.ID] = struct{}{}
			merged = append(merged, t)
		}
	}
	return merged
}

func validatePostFields(title, text string) error {
	title = strings.TrimSpace(title)
	if title == "" {
		return models.NewValidationError("Title cannot be empty")
	}
	if len(title) > maxPostTitleLength {
		return models.NewValidationError("Title is too long")
	}
	if strings.TrimSpace(text) == "" {
		return models.NewValidationError("Text cannot be empty")
	}
	return nil
}
