package cache

import (
	"context"
	"fmt"
	"time"
)

const (
	roleKeyPrefix = "roles:%d:%s"
	sidebarKey    = "sidebar"
	pageKeyPrefix = "page:%s"
)

// TTL policy: role checks and rendered pages expire after a short window,
// the sidebar aggregate after a long one. Per-page entries are never
// invalidated on writes; staleness up to the TTL is accepted.
const (
	RoleTTL    = 60 * time.Second
	PageTTL    = 60 * time.Second
	SidebarTTL = 7200 * time.Second
)

// RoleKey is the cache key for a (user, role) membership check.
func RoleKey(userID uint, role string) string {
	return fmt.Sprintf(roleKeyPrefix, userID, role)
}

// SidebarKey is the fixed key for the sidebar aggregate.
func SidebarKey() string {
	return sidebarKey
}

func Invalidate(ctx context.Context, key string) {
	if client != nil {
		client.Del(ctx, key)
	}
}

// InvalidateUserRoles drops every cached role check for the user. Called
// on role grant/revoke so stale role checks never outlive a change.
func InvalidateUserRoles(ctx context.Context, userID uint) {
	if client == nil {
		return
	}
	pattern := fmt.Sprintf("roles:%d:*", userID)
	iter := client.Scan(ctx, 0, pattern, 0).Iterator()
	for iter.Next(ctx) {
		client.Del(ctx, iter.Val())
	}
}

// InvalidateSidebar drops the sidebar aggregate. Only used by seeding and
// admin tooling; ordinary writes rely on TTL expiry.
func InvalidateSidebar(ctx context.Context) {
	Invalidate(ctx, sidebarKey)
}
