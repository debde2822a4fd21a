package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFollowIsIdempotent(t *testing.T) {
	alice := createTestUser(t, "follow_alice")
	bob := createTestUser(t, "follow_bob")
	repo := NewFollowRepository(testDB)
	ctx := context.Background()

	require.NoError(t, repo.Follow(ctx, alice.ID, bob.ID))
	// A duplicate insert resolves silently on the composite key.
	require.NoError(t, repo.Follow(ctx, alice.ID, bob.ID))

	following, err := repo.IsFollowing(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	assert.True(t, following)

	followers, err := repo.Followers(ctx, bob.ID)
	require.NoError(t, err)
	assert.Len(t, followers, 1)
}

func TestUnfollowIsIdempotent(t *testing.T) {
	alice := createTestUser(t, "unfollow_alice")
	bob := createTestUser(t, "unfollow_bob")
	repo := NewFollowRepository(testDB)
	ctx := context.Background()

	require.NoError(t, repo.Follow(ctx, alice.ID, bob.ID))
	require.NoError(t, repo.Unfollow(ctx, alice.ID, bob.ID))
	require.NoError(t, repo.Unfollow(ctx, alice.ID, bob.ID))

	following, err := repo.IsFollowing(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	assert.False(t, following)
}

func TestFollowIsDirected(t *testing.T) {
	alice := createTestUser(t, "directed_alice")
	bob := createTestUser(t, "directed_bob")
	repo := NewFollowRepository(testDB)
	ctx := context.Background()

	require.NoError(t, repo.Follow(ctx, alice.ID, bob.ID))

	reverse, err := repo.IsFollowing(ctx, bob.ID, alice.ID)
	require.NoError(t, err)
	assert.False(t, reverse)
}

func TestFollowedFeed(t *testing.T) {
	alice := createTestUser(t, "feed_alice")
	bob := createTestUser(t, "feed_bob")
	carol := createTestUser(t, "feed_carol")
	repo := NewFollowRepository(testDB)
	ctx := context.Background()

	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	own := createTestPost(t, alice.ID, "feed own", base.Add(1*time.Hour))
	followed := createTestPost(t, bob.ID, "feed followed", base.Add(3*time.Hour))
	older := createTestPost(t, bob.ID, "feed older", base)
	stranger := createTestPost(t, carol.ID, "feed stranger", base.Add(2*time.Hour))

	require.NoError(t, repo.Follow(ctx, alice.ID, bob.ID))

	feed, err := repo.FollowedFeed(ctx, alice.ID, 50, 0)
	require.NoError(t, err)

	ids := make([]uint, 0, len(feed))
	for _, p := range feed {
		ids = append(ids, p.ID)
	}
	// Own and followed posts in publish-date order; the stranger's never.
	assert.Equal(t, []uint{followed.ID, own.ID, older.ID}, ids)
	assert.NotContains(t, ids, stranger.ID)
}

func TestFollowedFeedTieBreakOnID(t *testing.T) {
	alice := createTestUser(t, "tie_alice")
	repo := NewFollowRepository(testDB)
	ctx := context.Background()

	at := time.Date(2026, 2, 2, 0, 0, 0, 0, time.UTC)
	first := createTestPost(t, alice.ID, "tie first", at)
	second := createTestPost(t, alice.ID, "tie second", at)

	feed, err := repo.FollowedFeed(ctx, alice.ID, 50, 0)
	require.NoError(t, err)
	require.Len(t, feed, 2)

	// Same publish date: higher id first, so the order is total.
	assert.Equal(t, second.ID, feed[0].ID)
	assert.Equal(t, first.ID, feed[1].ID)
}
