package services

import (
	"context"
	"testing"
	"time"

	"learnhub/backend/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBlogLifecycle(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	author := createUser(t, db, "author", models.RoleTeacher)
	reader := createUser(t, db, "reader", models.RoleUser)

	svc := NewBlogService(db)
	at := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return at }

	_, err := svc.CreatePost(ctx, identity(reader), PostInput{Title: "Hi there", Body: "x"})
	assert.ErrorIs(t, err, ErrForbidden)

	draft, err := svc.CreatePost(ctx, identity(author), PostInput{Title: "Release notes", Body: "soon"})
	require.NoError(t, err)
	assert.Equal(t, "release-notes", draft.Slug)
	assert.Nil(t, draft.PublishedAt)

	_, err = svc.GetPost(ctx, draft.Slug, identity(reader))
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = svc.GetPost(ctx, draft.Slug, identity(author))
	assert.NoError(t, err)

	posts, total, err := svc.ListPosts(ctx, newPage())
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Empty(t, posts)

	_, err = svc.UpdatePost(ctx, identity(reader), draft.Slug, PostInput{Title: "Hijack", Body: "x"})
	assert.ErrorIs(t, err, ErrForbidden)

	live, err := svc.UpdatePost(ctx, identity(author), draft.Slug, PostInput{Title: "Release notes v1", Body: "now", IsPublished: true})
	require.NoError(t, err)
	assert.Equal(t, "release-notes", live.Slug)
	require.NotNil(t, live.PublishedAt)
	assert.True(t, at.Equal(live.PublishedAt.UTC()))

	view, err := svc.GetPost(ctx, live.Slug, models.Identity{})
	require.NoError(t, err)
	assert.Equal(t, "author", view.Author.Username)

	posts, total, err = svc.ListPosts(ctx, newPage())
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.Equal(t, "Release notes v1", posts[0].Title)
}
