package repository

import (
	"context"
	"errors"

	"inkwell/internal/models"
	"inkwell/internal/observability"

	"gorm.io/gorm"
)

const sidebarRecentCount = 5
const sidebarTopTagCount = 5

// PostRepository defines the interface for post data operations.
type PostRepository interface {
	Create(ctx context.Context, post *models.Post) error
	GetByID(ctx context.Context, id uint) (*models.Post, error)
	List(ctx context.Context, limit, offset int) ([]models.Post, error)
	ListByUser(ctx context.Context, userID uint, limit, offset int) ([]models.Post, error)
	ListByTag(ctx context.Context, tagID uint, limit, offset int) ([]models.Post, error)
	Count(ctx context.Context) (int64, error)
	Update(ctx context.Context, post *models.Post) error
	ReplaceTags(ctx context.Context, post *models.Post, tags []models.Tag) error
	Delete(ctx context.Context, id uint) error
	Sidebar(ctx context.Context) (*models.Sidebar, error)
}

// postRepository implements PostRepository
type postRepository struct {
	db *gorm.DB
}

// NewPostRepository creates a new post repository
func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db}
}

func (r *postRepository) Create(ctx context.Context, post *models.Post) error {
	done := observability.TrackQuery("insert", "posts")
	defer done()
	if err := r.db.WithContext(ctx).Create(post).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *postRepository) GetByID(ctx context.Context, id uint) (*models.Post, error) {
	var post models.Post
	err := r.db.WithContext(ctx).
		Preload("Tags").
		Preload("User").
		Preload("Comments", func(db *gorm.DB) *gorm.DB {
			return db.Order("date DESC")
		}).
		First(&post, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Post", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &post, nil
}

func (r *postRepository) List(ctx context.Context, limit, offset int) ([]models.Post, error) {
	return r.list(ctx, r.db.WithContext(ctx), limit, offset)
}

func (r *postRepository) ListByUser(ctx context.Context, userID uint, limit, offset int) ([]models.Post, error) {
	q := r.db.WithContext(ctx).Where("user_id = ?", userID)
	return r.list(ctx, q, limit, offset)
}

func (r *postRepository) ListByTag(ctx context.Context, tagID uint, limit, offset int) ([]models.Post, error) {
	q := r.db.WithContext(ctx).
		Where("id IN (?)", r.db.Table("post_tags").Select("post_id").Where("tag_id = ?", tagID))
	return r.list(ctx, q, limit, offset)
}

func (r *postRepository) list(ctx context.Context, q *gorm.DB, limit, offset int) ([]models.Post, error) {
	done := observability.TrackQuery("select", "posts")
	defer done()
	var posts []models.Post
	if err := q.
		Preload("Tags").
		Preload("User").
		Order("publish_date DESC, id DESC").
		Limit(limit).
		Offset(offset).
		Find(&posts).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return posts, nil
}

func (r *postRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Post{}).Count(&count).Error; err != nil {
		return 0, models.NewInternalError(err)
	}
	return count, nil
}

func (r *postRepository) Update(ctx context.Context, post *models.Post) error {
	err := r.db.WithContext(ctx).Model(post).
		Updates(map[string]any{"title": post.Title, "text": post.Text}).Error
	if err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *postRepository) ReplaceTags(ctx context.Context, post *models.Post, tags []models.Tag) error {
	if err := r.db.WithContext(ctx).Model(post).
		Association("Tags").Replace(tags); err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

// Delete removes the post with its comments and tag links in one
// transaction. Tag rows themselves survive even at zero posts.
func (r *postRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("post_id = ?", id).Delete(&models.Comment{}).Error; err != nil {
			return models.NewInternalError(err)
		}
		if err := tx.Exec("DELETE FROM post_tags WHERE post_id = ?", id).Error; err != nil {
			return models.NewInternalError(err)
		}
		result := tx.Delete(&models.Post{}, id)
		if result.Error != nil {
			return models.NewInternalError(result.Error)
		}
		if result.RowsAffected == 0 {
			return models.NewNotFoundError("Post", id)
		}
		return nil
	})
}

// Sidebar computes the sidebar aggregate from scratch: the five most
// recent posts and the five most-used tags.
func (r *postRepository) Sidebar(ctx context.Context) (*models.Sidebar, error) {
	done := observability.TrackQuery("select", "sidebar")
	defer done()

	var recent []models.Post
	if err := r.db.WithContext(ctx).
		Select("id", "title", "publish_date", "user_id").
		Order("publish_date DESC, id DESC").
		Limit(sidebarRecentCount).
		Find(&recent).Error; err != nil {
		return nil, models.NewInternalError(err)
	}

	topTags, err := NewTagRepository(r.db).TopTags(ctx, sidebarTopTagCount)
	if err != nil {
		return nil, err
	}

	return &models.Sidebar{Recent: recent, TopTags: topTags}, nil
}
