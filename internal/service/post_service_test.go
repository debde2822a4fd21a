package service

import (
	"context"
	"testing"

	"inkwell/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func postServiceWith(posts *stubPostRepo, tags *stubTagRepo, users map[uint]*models.User) *PostService {
	return NewPostService(posts, tags, accessWithUsers(users))
}

func posterUsers() map[uint]*models.User {
	return map[uint]*models.User{
		1: userWithRoles(1, "alice", models.RoleDefault, models.RolePoster),
		2: userWithRoles(2, "bob", models.RoleDefault),
		3: userWithRoles(3, "mod", models.RoleDefault, models.RoleAdmin),
	}
}

func TestCreatePost(t *testing.T) {
	var created *models.Post
	posts := &stubPostRepo{
		createFn: func(ctx context.Context, post *models.Post) error {
			post.ID = 10
			created = post
			return nil
		},
	}
	var nextTagID uint
	tags := &stubTagRepo{
		getOrCreateFn: func(ctx context.Context, title string) (*models.Tag, error) {
			nextTagID++
			return &models.Tag{ID: nextTagID, Title: title}, nil
		},
	}
	svc := postServiceWith(posts, tags, posterUsers())

	post, err := svc.Create(context.Background(), 1, "  Hello  ", "world", []string{"Go", "go", " web ", ""})
	require.NoError(t, err)
	require.NotNil(t, created)

	assert.Equal(t, "Hello", post.Title)
	assert.Equal(t, uint(1), post.UserID)
	assert.False(t, post.PublishDate.IsZero())

	// Duplicate and empty tag titles collapse before the store sees them.
	titles := make([]string, 0, len(post.Tags))
	for _, tag := range post.Tags {
		titles = append(titles, tag.Title)
	}
	assert.Equal(t, []string{"go", "web"}, titles)
}

func TestCreatePostRequiresPosterRole(t *testing.T) {
	called := false
	posts := &stubPostRepo{
		createFn: func(ctx context.Context, post *models.Post) error {
			called = true
			return nil
		},
	}
	svc := postServiceWith(posts, &stubTagRepo{}, posterUsers())

	_, err := svc.Create(context.Background(), 2, "Hello", "world", nil)
	assertCode(t, err, models.CodeForbidden)
	assert.False(t, called)
}

func TestCreatePostValidation(t *testing.T) {
	svc := postServiceWith(&stubPostRepo{}, &stubTagRepo{}, posterUsers())
	ctx := context.Background()

	_, err := svc.Create(ctx, 1, "   ", "world", nil)
	assertCode(t, err, models.CodeValidation)

	_, err = svc.Create(ctx, 1, "Hello", "   ", nil)
	assertCode(t, err, models.CodeValidation)
}

func ownedPost(id, ownerID uint) *models.Post {
	return &models.Post{ID: id, Title: "owned", Text: "text", UserID: ownerID}
}

func TestUpdatePostOwnership(t *testing.T) {
	posts := &stubPostRepo{
		getByIDFn: func(ctx context.Context, id uint) (*models.Post, error) {
			return ownedPost(id, 1), nil
		},
	}
	svc := postServiceWith(posts, &stubTagRepo{}, posterUsers())
	ctx := context.Background()

	newTitle := "renamed"
	_, err := svc.Update(ctx, 2, 10, PostUpdate{Title: &newTitle})
	assertCode(t, err, models.CodeForbidden)

	// The owner and an admin both pass.
	updated, err := svc.Update(ctx, 1, 10, PostUpdate{Title: &newTitle})
	require.NoError(t, err)
	assert.Equal(t, "renamed", updated.Title)
	assert.Equal(t, "text", updated.Text)

	_, err = svc.Update(ctx, 3, 10, PostUpdate{Title: &newTitle})
	require.NoError(t, err)
}

func TestUpdatePostPartial(t *testing.T) {
	posts := &stubPostRepo{
		getByIDFn: func(ctx context.Context, id uint) (*models.Post, error) {
			return ownedPost(id, 1), nil
		},
	}
	svc := postServiceWith(posts, &stubTagRepo{}, posterUsers())

	newText := "rewritten"
	updated, err := svc.Update(context.Background(), 1, 10, PostUpdate{Text: &newText})
	require.NoError(t, err)

	// Only the supplied field changes.
	assert.Equal(t, "owned", updated.Title)
	assert.Equal(t, "rewritten", updated.Text)
}

func TestUpdatePostTagsAdditive(t *testing.T) {
	var replaced []models.Tag
	posts := &stubPostRepo{
		getByIDFn: func(ctx context.Context, id uint) (*models.Post, error) {
			post := ownedPost(id, 1)
			post.Tags = []models.Tag{{ID: 1, Title: "existing"}}
			return post, nil
		},
		replaceTagsFn: func(ctx context.Context, post *models.Post, tags []models.Tag) error {
			replaced = tags
			return nil
		},
	}
	tags := &stubTagRepo{
		getOrCreateFn: func(ctx context.Context, title string) (*models.Tag, error) {
			return &models.Tag{ID: 2, Title: title}, nil
		},
	}
	svc := postServiceWith(posts, tags, posterUsers())

	updated, err := svc.Update(context.Background(), 1, 10, PostUpdate{Tags: []string{"added"}})
	require.NoError(t, err)

	require.Len(t, replaced, 2)
	assert.Equal(t, "existing", replaced[0].Title)
	assert.Equal(t, "added", replaced[1].Title)
	assert.Len(t, updated.Tags, 2)
}

func TestDeletePostOwnership(t *testing.T) {
	deleted := false
	posts := &stubPostRepo{
		getByIDFn: func(ctx context.Context, id uint) (*models.Post, error) {
			return ownedPost(id, 1), nil
		},
		deleteFn: func(ctx context.Context, id uint) error {
			deleted = true
			return nil
		},
	}
	svc := postServiceWith(posts, &stubTagRepo{}, posterUsers())
	ctx := context.Background()

	assertCode(t, svc.Delete(ctx, 2, 10), models.CodeForbidden)
	assert.False(t, deleted)

	require.NoError(t, svc.Delete(ctx, 1, 10))
	assert.True(t, deleted)
}

func TestSidebarWithoutCache(t *testing.T) {
	calls := 0
	posts := &stubPostRepo{
		sidebarFn: func(ctx context.Context) (*models.Sidebar, error) {
			calls++
			return &models.Sidebar{TopTags: []models.TagCount{{Tag: models.Tag{Title: "go"}, Count: 3}}}, nil
		},
	}
	svc := postServiceWith(posts, &stubTagRepo{}, posterUsers())

	sidebar, err := svc.Sidebar(context.Background())
	require.NoError(t, err)
	require.Len(t, sidebar.TopTags, 1)
	assert.Equal(t, int64(3), sidebar.TopTags[0].Count)
	// No cache client: every call recomputes.
	assert.Equal(t, 1, calls)
}
