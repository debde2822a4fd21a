package models

import "time"

// Comment is attached to a post. Name is a free-text display name that may
// diverge from the author's username. UserID is nullable: the API path
// stamps the token identity, while the web form path records only the
// supplied display name. Edit and delete require a stored UserID match,
// so ownerless web comments answer only to admins.
type Comment struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"size:255" json:"name"`
	Text      string    `gorm:"type:text" json:"text"`
	Date      time.Time `gorm:"index" json:"date"`
	PostID    uint      `gorm:"not null;index" json:"post_id"`
	UserID    *uint     `gorm:"index" json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
