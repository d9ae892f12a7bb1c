// Package store declares the persistence ports used by the services. The
// adapters live in docstore (MongoDB), memstore (in-process) and the
// per-domain repo packages (PostgreSQL).
package store

import (
	"context"
	"errors"

	blogentity "github.com/ovaphlow/pitchfork/service-bloglist-go/internal/blog/entity"
	commententity "github.com/ovaphlow/pitchfork/service-bloglist-go/internal/comment/entity"
	userentity "github.com/ovaphlow/pitchfork/service-bloglist-go/internal/user/entity"
)

var (
	ErrNotFound  = errors.New("not found")
	ErrDuplicate = errors.New("duplicate key")
)

// BlogRepository stores blogs. Insert assigns an id when b.ID is empty.
type BlogRepository interface {
	List(ctx context.Context) ([]blogentity.Blog, error)
	Get(ctx context.Context, id string) (*blogentity.Blog, error)
	Insert(ctx context.Context, b *blogentity.Blog) error
	Update(ctx context.Context, b *blogentity.Blog) error
	Delete(ctx context.Context, id string) error
}

// UserRepository stores users. Update persists name and the blogs list.
type UserRepository interface {
	List(ctx context.Context) ([]userentity.User, error)
	Get(ctx context.Context, id string) (*userentity.User, error)
	GetByUsername(ctx context.Context, username string) (*userentity.User, error)
	Insert(ctx context.Context, u *userentity.User) error
	Update(ctx context.Context, u *userentity.User) error
}

type CommentRepository interface {
	ListByBlog(ctx context.Context, blogID string) ([]commententity.Comment, error)
	Insert(ctx context.Context, c *commententity.Comment) error
}

// Store bundles the repositories of one backend.
type Store struct {
	Blogs    BlogRepository
	Users    UserRepository
	Comments CommentRepository

	closer func(ctx context.Context) error
}

func New(blogs BlogRepository, users UserRepository, comments CommentRepository, closer func(ctx context.Context) error) *Store {
	return &Store{Blogs: blogs, Users: users, Comments: comments, closer: closer}
}

// Close releases the backend connection, if any.
func (s *Store) Close(ctx context.Context) error {
	if s.closer == nil {
		return nil
	}
	return s.closer(ctx)
}
