// Package models contains data structures for the application's domain models.
package models

import (
	"crypto/sha256"
	"fmt"
	"sort"
	"strings"
	"time"
)

// User represents a registered account. Password is empty for accounts
// created from an external OAuth assertion.
type User struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Username  string    `gorm:"size:255;not null;uniqueIndex" json:"username"`
	Password  string    `gorm:"size:255" json:"-"`
	AboutMe   string    `gorm:"size:140" json:"about_me"`
	LastSeen  time.Time `json:"last_seen"`
	Roles     []Role    `gorm:"many2many:role_users" json:"roles,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// HasRole reports whether the user's loaded role set contains name.
// Repositories must preload Roles before calling this.
func (u *User) HasRole(name string) bool {
	for _, r := range u.Roles {
		if r.Name == name {
			return true
		}
	}
	return false
}

// RoleNames returns the user's role names sorted ascending. The sorted
// form is part of the page-cache fingerprint, so it must be deterministic.
func (u *User) RoleNames() []string {
	names := make([]string, 0, len(u.Roles))
	for _, r := range u.Roles {
		names = append(names, r.Name)
	}
	sort.Strings(names)
	return names
}

// AvatarURL returns a gravatar-style identicon URL for the user.
func (u *User) AvatarURL(size int) string {
	digest := sha256.Sum256([]byte(strings.ToLower(u.Username)))
	return fmt.Sprintf("https://www.gravatar.com/avatar/%x?d=identicon&s=%d", digest, size)
}

// Role is a named permission group. Roles are seeded administratively and
// referenced, never owned, by users.
type Role struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	Name        string `gorm:"size:80;not null;uniqueIndex" json:"name"`
	Description string `gorm:"size:255" json:"description"`
}

// Well-known role names.
const (
	RoleDefault = "default"
	RolePoster  = "poster"
	RoleAdmin   = "admin"
)

// Follow is a directed edge in the social graph: the follower's feed
// includes the followed user's posts. The pair is the primary key, so a
// duplicate follow is a conflict-tolerant no-op at the store.
type Follow struct {
	FollowerID uint      `gorm:"primaryKey;autoIncrement:false" json:"follower_id"`
	FollowedID uint      `gorm:"primaryKey;autoIncrement:false" json:"followed_id"`
	CreatedAt  time.Time `json:"created_at"`
}

// TableName specifies the table name for GORM.
func (Follow) TableName() string {
	return "followers"
}
