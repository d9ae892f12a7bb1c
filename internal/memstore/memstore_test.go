package memstore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	blogentity "github.com/ovaphlow/pitchfork/service-bloglist-go/internal/blog/entity"
	"github.com/ovaphlow/pitchfork/service-bloglist-go/internal/store"
	userentity "github.com/ovaphlow/pitchfork/service-bloglist-go/internal/user/entity"
	"github.com/ovaphlow/pitchfork/service-bloglist-go/pkg/utilities"
)

func TestBlogs_CRUD(t *testing.T) {
	ctx := context.Background()
	st := New()

	b := &blogentity.Blog{Title: "t", URL: "u"}
	require.NoError(t, st.Blogs.Insert(ctx, b))
	assert.True(t, utilities.IsObjectID(b.ID))

	got, err := st.Blogs.Get(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, *b, *got)

	got.Title = "changed"
	require.NoError(t, st.Blogs.Update(ctx, got))
	list, err := st.Blogs.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "changed", list[0].Title)

	require.NoError(t, st.Blogs.Delete(ctx, b.ID))
	_, err = st.Blogs.Get(ctx, b.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)
	assert.ErrorIs(t, st.Blogs.Delete(ctx, b.ID), store.ErrNotFound)
	assert.ErrorIs(t, st.Blogs.Update(ctx, b), store.ErrNotFound)
}

func TestUsers_UniqueUsernameAndIsolation(t *testing.T) {
	ctx := context.Background()
	st := New()

	u := &userentity.User{Username: "root", Name: "Root"}
	require.NoError(t, st.Users.Insert(ctx, u))
	assert.Equal(t, []string{}, u.Blogs)
	assert.ErrorIs(t, st.Users.Insert(ctx, &userentity.User{Username: "root"}), store.ErrDuplicate)

	got, err := st.Users.GetByUsername(ctx, "root")
	require.NoError(t, err)
	got.Blogs = append(got.Blogs, "not-saved")

	again, err := st.Users.Get(ctx, u.ID)
	require.NoError(t, err)
	assert.Empty(t, again.Blogs, "mutating a returned user must not leak into the store")

	again.AddBlog("b1")
	require.NoError(t, st.Users.Update(ctx, again))
	all, err := st.Users.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, []string{"b1"}, all[0].Blogs)

	_, err = st.Users.GetByUsername(ctx, "nobody")
	assert.ErrorIs(t, err, store.ErrNotFound)
}
