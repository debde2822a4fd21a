package repository

import (
	"context"
	"errors"
	"strings"

	"inkwell/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// TagRepository defines the interface for tag data operations.
type TagRepository interface {
	GetOrCreate(ctx context.Context, title string) (*models.Tag, error)
	GetByTitle(ctx context.Context, title string) (*models.Tag, error)
	List(ctx context.Context, limit, offset int) ([]models.Tag, error)
	TopTags(ctx context.Context, limit int) ([]models.TagCount, error)
	Delete(ctx context.Context, id uint) error
}

// tagRepository implements TagRepository
type tagRepository struct {
	db *gorm.DB
}

// NewTagRepository creates a new tag repository
func NewTagRepository(db *gorm.DB) TagRepository {
	return &tagRepository{db: db}
}

// GetOrCreate resolves a title to its tag row, creating it if absent.
// Titles are normalized to lowercase so "Go" and "go" share one row.
// The conflict-tolerant insert keeps concurrent creates of the same
// title from failing; the follow-up lookup returns whichever row won.
func (r *tagRepository) GetOrCreate(ctx context.Context, title string) (*models.Tag, error) {
	normalized := strings.ToLower(strings.TrimSpace(title))
	if normalized == "" {
		return nil, models.NewValidationError("Tag title cannot be empty")
	}

	tag := models.Tag{Title: normalized}
	if err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "title"}}, DoNothing: true}).
		Create(&tag).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	if tag.ID != 0 {
		return &tag, nil
	}
	return r.GetByTitle(ctx, normalized)
}

func (r *tagRepository) GetByTitle(ctx context.Context, title string) (*models.Tag, error) {
	var tag models.Tag
	if err := r.db.WithContext(ctx).
		Where("title = ?", strings.ToLower(strings.TrimSpace(title))).
		First(&tag).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Tag", title)
		}
		return nil, models.NewInternalError(err)
	}
	return &tag, nil
}

func (r *tagRepository) List(ctx context.Context, limit, offset int) ([]models.Tag, error) {
	var tags []models.Tag
	if err := r.db.WithContext(ctx).
		Order("title ASC").Limit(limit).Offset(offset).Find(&tags).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return tags, nil
}

// TopTags ranks tags by how many posts carry them. Ties break on tag id
// ascending so the ranking is stable across recomputes.
func (r *tagRepository) TopTags(ctx context.Context, limit int) ([]models.TagCount, error) {
	var rows []struct {
		ID    uint
		Title string
		Count int64
	}
	if err := r.db.WithContext(ctx).
		Table("tags").
		Select("tags.id, tags.title, COUNT(post_tags.post_id) AS count").
		Joins("JOIN post_tags ON post_tags.tag_id = tags.id").
		Group("tags.id, tags.title").
		Order("count DESC, tags.id ASC").
		Limit(limit).
		Scan(&rows).Error; err != nil {
		return nil, models.NewInternalError(err)
	}

	counts := make([]models.TagCount, 0, len(rows))
	for _, row := range rows {
		counts = append(counts, models.TagCount{
			Tag:   models.Tag{ID: row.ID, Title: row.Title},
			Count: row.Count,
		})
	}
	return counts, nil
}

func (r *tagRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("DELETE FROM post_tags WHERE tag_id = ?", id).Error; err != nil {
			return models.NewInternalError(err)
		}
		result := tx.Delete(&models.Tag{}, id)
		if result.Error != nil {
			return models.NewInternalError(result.Error)
		}
		if result.RowsAffected == 0 {
			return models.NewNotFoundError("Tag", id)
		}
		return nil
	})
}
