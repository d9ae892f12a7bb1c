package router

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/ovaphlow/pitchfork/service-bloglist-go/internal/auth"
	"github.com/ovaphlow/pitchfork/service-bloglist-go/internal/blog"
	blogentity "github.com/ovaphlow/pitchfork/service-bloglist-go/internal/blog/entity"
	"github.com/ovaphlow/pitchfork/service-bloglist-go/internal/memstore"
	"github.com/ovaphlow/pitchfork/service-bloglist-go/internal/store"
	"github.com/ovaphlow/pitchfork/service-bloglist-go/internal/user"
)

var initialBlogs = []blogentity.Blog{
	{Title: "React patterns", Author: "Michael Chan", URL: "https://reactpatterns.com/", Likes: 7},
	{Title: "Go To Statement Considered Harmful", Author: "Edsger W. Dijkstra", URL: "http://www.u.arizona.edu/~rubinson/copyright_violations/Go_To_Considered_Harmful.html", Likes: 5},
}

type api struct {
	t       *testing.T
	st      *store.Store
	handler http.Handler
	token   string
}

func newAPI(t *testing.T) *api {
	t.Helper()
	st := memstore.New()
	tokens, err := auth.NewTokenService(auth.Config{Secret: "test-secret", TTL: time.Hour})
	require.NoError(t, err)
	a := &api{
		t:  t,
		st: st,
		handler: RegisterRoutes(zap.NewNop().Sugar(), Deps{
			Store:  st,
			Tokens: tokens,
			Hasher: user.BcryptHasher{Cost: bcrypt.MinCost},
			Policy: blog.Policy{},
		}),
	}

	rec := a.do(http.MethodPost, "/api/users", `{"username":"root","name":"Superuser","password":"sekret"}`, "")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	a.token = a.login("root", "sekret")

	for _, b := range initialBlogs {
		rec := a.do(http.MethodPost, "/api/blogs", mustJSON(t, b), a.token)
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	}
	return a
}

func mustJSON(t *testing.T, v any) string {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return string(b)
}

func (a *api) do(method, path, body, token string) *httptest.ResponseRecorder {
	a.t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	a.handler.ServeHTTP(rec, req)
	return rec
}

func (a *api) login(username, password string) string {
	a.t.Helper()
	rec := a.do(http.MethodPost, "/api/login", mustJSON(a.t, map[string]string{"username": username, "password": password}), "")
	require.Equal(a.t, http.StatusOK, rec.Code, rec.Body.String())
	var body struct {
		Token string `json:"token"`
	}
	require.NoError(a.t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body.Token
}

func (a *api) blogs() []blogentity.Blog {
	a.t.Helper()
	bs, err := a.st.Blogs.List(context.Background())
	require.NoError(a.t, err)
	return bs
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func TestGetBlogs_ReturnsJSONWithIDs(t *testing.T) {
	a := newAPI(t)

	rec := a.do(http.MethodGet, "/api/blogs", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "application/json")

	list := decodeBody[[]map[string]any](t, rec)
	require.Len(t, list, len(initialBlogs))
	for _, b := range list {
		assert.NotEmpty(t, b["id"])
		assert.NotContains(t, b, "_id")
		owner, ok := b["user"].(map[string]any)
		require.True(t, ok)
		assert.Equal(t, "root", owner["username"])
	}
}

func TestGetBlog(t *testing.T) {
	a := newAPI(t)
	first := a.blogs()[0]

	rec := a.do(http.MethodGet, "/api/blogs/"+first.ID, "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	got := decodeBody[blogentity.Blog](t, rec)
	assert.Equal(t, first, got)

	rec = a.do(http.MethodGet, "/api/blogs/5a3d5da59070081a82a3445", "", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"error":"malformatted id"}`, rec.Body.String())

	rec = a.do(http.MethodGet, "/api/blogs/5a3d5da59070081a82a34450", "", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCreateBlog(t *testing.T) {
	a := newAPI(t)

	rec := a.do(http.MethodPost, "/api/blogs", `{"title":"First class tests","author":"Robert C. Martin","url":"http://blog.cleancoder.com/","likes":10}`, a.token)
	require.Equal(t, http.StatusCreated, rec.Code)
	created := decodeBody[blogentity.Blog](t, rec)

	bs := a.blogs()
	assert.Len(t, bs, len(initialBlogs)+1)
	assert.Equal(t, "First class tests", bs[len(bs)-1].Title)

	u, err := a.st.Users.GetByUsername(context.Background(), "root")
	require.NoError(t, err)
	assert.Contains(t, u.Blogs, created.ID)
	assert.Equal(t, u.ID, created.User)
}

func TestCreateBlog_WithoutToken(t *testing.T) {
	a := newAPI(t)

	rec := a.do(http.MethodPost, "/api/blogs", `{"title":"t","url":"u"}`, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"error":"token is not provided"}`, rec.Body.String())

	rec = a.do(http.MethodPost, "/api/blogs", `{"title":"t","url":"u"}`, "garbage")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Len(t, a.blogs(), len(initialBlogs))
}

func TestCreateBlog_LikesDefault(t *testing.T) {
	a := newAPI(t)

	rec := a.do(http.MethodPost, "/api/blogs", `{"title":"no likes","author":"x","url":"u"}`, a.token)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, 0, decodeBody[blogentity.Blog](t, rec).Likes)
}

func TestCreateBlog_MissingFields(t *testing.T) {
	a := newAPI(t)

	for _, body := range []string{`{"author":"x","url":"u"}`, `{"title":"t","author":"x"}`, ``} {
		rec := a.do(http.MethodPost, "/api/blogs", body, a.token)
		assert.Equal(t, http.StatusBadRequest, rec.Code, body)
	}
	assert.Len(t, a.blogs(), len(initialBlogs))
}

func TestDeleteBlog(t *testing.T) {
	a := newAPI(t)
	target := a.blogs()[0]

	rec := a.do(http.MethodPost, "/api/users", `{"username":"mluukkai","name":"Matti","password":"salainen"}`, "")
	require.Equal(t, http.StatusCreated, rec.Code)
	otherToken := a.login("mluukkai", "salainen")

	rec = a.do(http.MethodDelete, "/api/blogs/"+target.ID, "", otherToken)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"error":"no permission to delete"}`, rec.Body.String())
	assert.Len(t, a.blogs(), len(initialBlogs))

	rec = a.do(http.MethodDelete, "/api/blogs/"+target.ID, "", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = a.do(http.MethodDelete, "/api/blogs/"+target.ID, "", a.token)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, rec.Body.String())
	assert.Len(t, a.blogs(), len(initialBlogs)-1)

	u, err := a.st.Users.GetByUsername(context.Background(), "root")
	require.NoError(t, err)
	assert.NotContains(t, u.Blogs, target.ID)
}

func TestUpdateBlog(t *testing.T) {
	a := newAPI(t)
	target := a.blogs()[0]

	rec := a.do(http.MethodPut, "/api/blogs/"+target.ID, `{"likes":99}`, "")
	require.Equal(t, http.StatusOK, rec.Code)
	got := decodeBody[blogentity.Blog](t, rec)
	assert.Equal(t, 99, got.Likes)
	assert.Equal(t, target.Title, got.Title)

	rec = a.do(http.MethodPut, "/api/blogs/5a3d5da59070081a82a34450", `{"likes":1}`, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = a.do(http.MethodPut, "/api/blogs/bad", `{"likes":1}`, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestStats(t *testing.T) {
	a := newAPI(t)

	rec := a.do(http.MethodGet, "/api/blogs/stats", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	st := decodeBody[blog.Stats](t, rec)
	assert.Equal(t, 12, st.TotalLikes)
	require.NotNil(t, st.FavoriteBlog)
	assert.Equal(t, "React patterns", st.FavoriteBlog.Title)
}

func TestComments(t *testing.T) {
	a := newAPI(t)
	target := a.blogs()[0]

	rec := a.do(http.MethodPost, "/api/blogs/"+target.ID+"/comments", `{"content":"nice"}`, "")
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = a.do(http.MethodGet, "/api/blogs/"+target.ID+"/comments", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	list := decodeBody[[]map[string]any](t, rec)
	require.Len(t, list, 1)
	assert.Equal(t, "nice", list[0]["content"])

	rec = a.do(http.MethodPost, "/api/blogs/5a3d5da59070081a82a34450/comments", `{"content":"nice"}`, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUsers(t *testing.T) {
	a := newAPI(t)

	rec := a.do(http.MethodGet, "/api/users", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	users := decodeBody[[]user.UserView](t, rec)
	require.Len(t, users, 1)
	assert.Len(t, users[0].Blogs, len(initialBlogs))
	assert.NotContains(t, rec.Body.String(), "password")

	tests := []struct {
		body string
		msg  string
	}{
		{`{"username":"root","name":"Superuser","password":"salainen"}`, "expected `username` to be unique"},
		{`{"name":"Fake","password":"fakePassword"}`, "Path `username` is required."},
		{`{"username":"fakeUsername","name":"Fake"}`, "Password is missing"},
		{`{"username":"li","name":"Fake","password":"fakePassword"}`, "is shorter than the minimum allowed length (3)"},
		{`{"username":"fakeUsername","name":"Fake","password":"mi"}`, "Password must be at least 3 characters long"},
	}
	for _, tt := range tests {
		rec := a.do(http.MethodPost, "/api/users", tt.body, "")
		assert.Equal(t, http.StatusBadRequest, rec.Code, tt.body)
		assert.Contains(t, decodeBody[map[string]string](t, rec)["error"], tt.msg)
	}
	all, err := a.st.Users.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestLogin_BadPassword(t *testing.T) {
	a := newAPI(t)
	rec := a.do(http.MethodPost, "/api/login", `{"username":"root","password":"wrong"}`, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"error":"invalid username or password"}`, rec.Body.String())
}

func TestHealthAndUnknownEndpoint(t *testing.T) {
	a := newAPI(t)

	rec := a.do(http.MethodGet, "/health", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))

	rec = a.do(http.MethodGet, "/api/nothing", "", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"error":"unknown endpoint"}`, rec.Body.String())

	rec = a.do(http.MethodGet, "/elsewhere", "", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRequestIDIsEchoed(t *testing.T) {
	a := newAPI(t)
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("X-Request-ID", "abc123")
	rec := httptest.NewRecorder()
	a.handler.ServeHTTP(rec, req)
	assert.Equal(t, "abc123", rec.Header().Get("X-Request-ID"))
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
}

func TestUpdateBlog_TransfersOwnership(t *testing.T) {
	a := newAPI(t)
	target := a.blogs()[0]

	rec := a.do(http.MethodPost, "/api/users", `{"username":"mluukkai","name":"Matti","password":"salainen"}`, "")
	require.Equal(t, http.StatusCreated, rec.Code)
	newOwner := decodeBody[map[string]any](t, rec)["id"].(string)
	otherToken := a.login("mluukkai", "salainen")

	rec = a.do(http.MethodPut, "/api/blogs/"+target.ID, mustJSON(t, map[string]string{"user": newOwner}), "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	ctx := context.Background()
	root, err := a.st.Users.GetByUsername(ctx, "root")
	require.NoError(t, err)
	assert.NotContains(t, root.Blogs, target.ID)
	other, err := a.st.Users.GetByUsername(ctx, "mluukkai")
	require.NoError(t, err)
	assert.Equal(t, []string{target.ID}, other.Blogs)

	list := decodeBody[[]map[string]any](t, a.do(http.MethodGet, "/api/blogs", "", ""))
	for _, b := range list {
		if b["id"] == target.ID {
			assert.Equal(t, "mluukkai", b["user"].(map[string]any)["username"])
		}
	}

	rec = a.do(http.MethodDelete, "/api/blogs/"+target.ID, "", a.token)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	rec = a.do(http.MethodDelete, "/api/blogs/"+target.ID, "", otherToken)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestUpdateBlog_UnknownOwner(t *testing.T) {
	a := newAPI(t)
	target := a.blogs()[0]

	rec := a.do(http.MethodPut, "/api/blogs/"+target.ID, `{"user":"5a3d5da59070081a82a34450"}`, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	root, err := a.st.Users.GetByUsername(context.Background(), "root")
	require.NoError(t, err)
	assert.Contains(t, root.Blogs, target.ID)
	assert.Equal(t, root.ID, a.blogs()[0].User)
}

func TestGetBlog_UppercaseID(t *testing.T) {
	a := newAPI(t)
	target := a.blogs()[0]

	rec := a.do(http.MethodGet, "/api/blogs/"+strings.ToUpper(target.ID), "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, target.ID, decodeBody[blogentity.Blog](t, rec).ID)

	rec = a.do(http.MethodGet, "/api/blogs/"+strings.ToUpper(target.ID)+"/comments", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}
