package models

import "time"

// Post represents a published blog entry. UserID is the owning user and
// never changes after creation; edit paths are ownership-checked and do
// not touch it.
type Post struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Title       string    `gorm:"size:255;not null" json:"title"`
	Text        string    `gorm:"type:text" json:"text"`
	PublishDate time.Time `gorm:"index" json:"publish_date"`
	UserID      uint      `gorm:"not null;index" json:"user_id"`
	User        User      `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Tags        []Tag     `gorm:"many2many:post_tags" json:"tags"`
	Comments    []Comment `gorm:"foreignKey:PostID;constraint:OnDelete:CASCADE" json:"-"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Tag is a label attached to posts. Tags are created lazily on first
// reference and never deleted, even when no post references them anymore.
type Tag struct {
	ID    uint   `gorm:"primaryKey" json:"id"`
	Title string `gorm:"size:255;not null;uniqueIndex" json:"title"`
}

// TagCount pairs a tag with its usage count across all posts.
type TagCount struct {
	Tag   Tag   `json:"tag"`
	Count int64 `json:"count"`
}

// Sidebar is the aggregate read view shown next to every blog page:
// the five most recent posts and the five most-used tags by post count,
// ties broken by tag id ascending.
type Sidebar struct {
	Recent  []Post     `json:"recent"`
	TopTags []TagCount `json:"top_tags"`
}
