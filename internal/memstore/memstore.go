// Package memstore is an in-process store used by tests and the memory
// storage driver. All three repositories share one lock.
package memstore

import (
	"context"
	"sync"

	blogentity "github.com/ovaphlow/pitchfork/service-bloglist-go/internal/blog/entity"
	commententity "github.com/ovaphlow/pitchfork/service-bloglist-go/internal/comment/entity"
	"github.com/ovaphlow/pitchfork/service-bloglist-go/internal/store"
	userentity "github.com/ovaphlow/pitchfork/service-bloglist-go/internal/user/entity"
	"github.com/ovaphlow/pitchfork/service-bloglist-go/pkg/utilities"
)

type db struct {
	mu sync.RWMutex

	blogs     map[string]blogentity.Blog
	blogOrder []string

	users     map[string]userentity.User
	userOrder []string

	comments []commententity.Comment
}

// New returns an empty store.
func New() *store.Store {
	d := &db{
		blogs: make(map[string]blogentity.Blog),
		users: make(map[string]userentity.User),
	}
	return store.New(&Blogs{db: d}, &Users{db: d}, &Comments{db: d}, nil)
}

type Blogs struct{ db *db }

func (r *Blogs) List(ctx context.Context) ([]blogentity.Blog, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	out := make([]blogentity.Blog, 0, len(r.db.blogOrder))
	for _, id := range r.db.blogOrder {
		out = append(out, r.db.blogs[id])
	}
	return out, nil
}

func (r *Blogs) Get(ctx context.Context, id string) (*blogentity.Blog, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	b, ok := r.db.blogs[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &b, nil
}

func (r *Blogs) Insert(ctx context.Context, b *blogentity.Blog) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if b.ID == "" {
		b.ID = utilities.NewObjectID()
	}
	if _, ok := r.db.blogs[b.ID]; ok {
		return store.ErrDuplicate
	}
	r.db.blogs[b.ID] = *b
	r.db.blogOrder = append(r.db.blogOrder, b.ID)
	return nil
}

func (r *Blogs) Update(ctx context.Context, b *blogentity.Blog) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if _, ok := r.db.blogs[b.ID]; !ok {
		return store.ErrNotFound
	}
	r.db.blogs[b.ID] = *b
	return nil
}

func (r *Blogs) Delete(ctx context.Context, id string) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if _, ok := r.db.blogs[id]; !ok {
		return store.ErrNotFound
	}
	delete(r.db.blogs, id)
	r.db.blogOrder = removeID(r.db.blogOrder, id)
	return nil
}

type Users struct{ db *db }

func (r *Users) List(ctx context.Context) ([]userentity.User, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	out := make([]userentity.User, 0, len(r.db.userOrder))
	for _, id := range r.db.userOrder {
		out = append(out, r.db.users[id].Clone())
	}
	return out, nil
}

func (r *Users) Get(ctx context.Context, id string) (*userentity.User, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	u, ok := r.db.users[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	u = u.Clone()
	return &u, nil
}

func (r *Users) GetByUsername(ctx context.Context, username string) (*userentity.User, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	for _, id := range r.db.userOrder {
		if u := r.db.users[id]; u.Username == username {
			u = u.Clone()
			return &u, nil
		}
	}
	return nil, store.ErrNotFound
}

func (r *Users) Insert(ctx context.Context, u *userentity.User) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for _, existing := range r.db.users {
		if existing.Username == u.Username {
			return store.ErrDuplicate
		}
	}
	if u.ID == "" {
		u.ID = utilities.NewObjectID()
	}
	if u.Blogs == nil {
		u.Blogs = []string{}
	}
	r.db.users[u.ID] = u.Clone()
	r.db.userOrder = append(r.db.userOrder, u.ID)
	return nil
}

func (r *Users) Update(ctx context.Context, u *userentity.User) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	existing, ok := r.db.users[u.ID]
	if !ok {
		return store.ErrNotFound
	}
	existing.Name = u.Name
	existing.Blogs = append([]string{}, u.Blogs...)
	r.db.users[u.ID] = existing
	return nil
}

type Comments struct{ db *db }

func (r *Comments) ListByBlog(ctx context.Context, blogID string) ([]commententity.Comment, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	out := []commententity.Comment{}
	for _, c := range r.db.comments {
		if c.Blog == blogID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (r *Comments) Insert(ctx context.Context, c *commententity.Comment) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if c.ID == "" {
		c.ID = utilities.NewObjectID()
	}
	r.db.comments = append(r.db.comments, *c)
	return nil
}

func removeID(ids []string, id string) []string {
	for i, v := range ids {
		if v == id {
			return append(ids[:i:i], ids[i+1:]...)
		}
	}
	return ids
}
