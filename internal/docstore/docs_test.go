package docstore

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/mongo"

	blogentity "github.com/ovaphlow/pitchfork/service-bloglist-go/internal/blog/entity"
	"github.com/ovaphlow/pitchfork/service-bloglist-go/internal/store"
	userentity "github.com/ovaphlow/pitchfork/service-bloglist-go/internal/user/entity"
)

const (
	blogID  = "5a422a851b54a676234d17f7"
	ownerID = "65757bb54a8dcc4e81f7b878"
)

func TestBlogDoc_OwnerIsOptional(t *testing.T) {
	legacy := &blogentity.Blog{ID: blogID, Title: "React patterns", URL: "https://reactpatterns.com/", Likes: 7}
	d, err := toBlogDoc(legacy)
	require.NoError(t, err)
	assert.Nil(t, d.User)
	assert.Equal(t, *legacy, d.entity())

	owned := *legacy
	owned.User = ownerID
	d, err = toBlogDoc(&owned)
	require.NoError(t, err)
	require.NotNil(t, d.User)
	assert.Equal(t, ownerID, d.User.Hex())
	assert.Equal(t, owned, d.entity())
}

func TestToDocs_RejectMalformedIDs(t *testing.T) {
	_, err := toBlogDoc(&blogentity.Blog{ID: "5a3d5da59070081a82a3445"})
	assert.Error(t, err)

	_, err = toBlogDoc(&blogentity.Blog{ID: blogID, User: "nope"})
	assert.Error(t, err)

	_, err = toUserDoc(&userentity.User{ID: ownerID, Blogs: []string{blogID, "bad"}})
	assert.Error(t, err)
}

func TestUserDoc_EmptyBlogsStayNonNil(t *testing.T) {
	d, err := toUserDoc(&userentity.User{ID: ownerID, Username: "root"})
	require.NoError(t, err)
	u := d.entity()
	assert.NotNil(t, u.Blogs)
	assert.Empty(t, u.Blogs)
}

func TestMapErr(t *testing.T) {
	assert.ErrorIs(t, mapErr("find", mongo.ErrNoDocuments), store.ErrNotFound)

	dup := mongo.WriteException{WriteErrors: mongo.WriteErrors{{Code: 11000, Message: "E11000 duplicate key"}}}
	assert.ErrorIs(t, mapErr("insert", dup), store.ErrDuplicate)

	boom := errors.New("boom")
	err := mapErr("insert", boom)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, fmt.Sprintf("insert: %v", boom), err.Error())
}
