package blog

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"

	"github.com/ovaphlow/pitchfork/service-bloglist-go/internal/auth"
	"github.com/ovaphlow/pitchfork/service-bloglist-go/internal/blog/entity"
	"github.com/ovaphlow/pitchfork/service-bloglist-go/internal/listhelper"
	"github.com/ovaphlow/pitchfork/service-bloglist-go/internal/store"
	userentity "github.com/ovaphlow/pitchfork/service-bloglist-go/internal/user/entity"
	"github.com/ovaphlow/pitchfork/service-bloglist-go/pkg/apperr"
	"github.com/ovaphlow/pitchfork/service-bloglist-go/pkg/utilities"
)

// Policy holds the ownership switches of the blog service.
type Policy struct {
	UpdateRequiresOwner bool
}

func PolicyFromEnv() Policy {
	v := strings.ToLower(os.Getenv("BLOG_UPDATE_REQUIRES_OWNER"))
	return Policy{UpdateRequiresOwner: v == "1" || v == "true"}
}

var ErrNoDeletePermission = apperr.Forbidden("no permission to delete")

// Service enforces ownership and keeps user.blogs in step with blog writes.
type Service struct {
	blogs  store.BlogRepository
	users  store.UserRepository
	policy Policy
	logger *zap.SugaredLogger
}

func NewService(blogs store.BlogRepository, users store.UserRepository, policy Policy, logger *zap.SugaredLogger) *Service {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Service{blogs: blogs, users: users, policy: policy, logger: logger}
}

type CreateInput struct {
	Title  string `json:"title"`
	Author string `json:"author"`
	URL    string `json:"url"`
	Likes  *int   `json:"likes"`
}

// UpdateInput carries the fields to replace; nil fields are left alone.
type UpdateInput struct {
	Title  *string `json:"title"`
	Author *string `json:"author"`
	URL    *string `json:"url"`
	Likes  *int    `json:"likes"`
	User   *string `json:"user"`
}

// Owner is the user projection embedded in blog listings.
type Owner struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Name     string `json:"name"`
}

type BlogWithOwner struct {
	ID     string `json:"id"`
	Title  string `json:"title"`
	Author string `json:"author"`
	URL    string `json:"url"`
	Likes  int    `json:"likes"`
	User   *Owner `json:"user,omitempty"`
}

type Stats struct {
	TotalLikes   int                     `json:"totalLikes"`
	FavoriteBlog *listhelper.Summary     `json:"favoriteBlog"`
	MostBlogs    *listhelper.AuthorBlogs `json:"mostBlogs"`
	MostLikes    *listhelper.AuthorLikes `json:"mostLikes"`
}

func blogValidation(title, url string, likes int) error {
	var fields []string
	if strings.TrimSpace(title) == "" {
		fields = append(fields, "title: Path `title` is required.")
	}
	if strings.TrimSpace(url) == "" {
		fields = append(fields, "url: Path `url` is required.")
	}
	if likes < 0 {
		fields = append(fields, fmt.Sprintf("likes: Path `likes` (%d) is less than minimum allowed value (0).", likes))
	}
	if len(fields) == 0 {
		return nil
	}
	return apperr.Validation("Blog validation failed: " + strings.Join(fields, ", "))
}

func (s *Service) List(ctx context.Context) ([]BlogWithOwner, error) {
	blogs, err := s.blogs.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list blogs: %w", err)
	}
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	owners := make(map[string]*Owner, len(users))
	for _, u := range users {
		owners[u.ID] = &Owner{ID: u.ID, Username: u.Username, Name: u.Name}
	}
	out := make([]BlogWithOwner, 0, len(blogs))
	for _, b := range blogs {
		out = append(out, BlogWithOwner{
			ID: b.ID, Title: b.Title, Author: b.Author, URL: b.URL, Likes: b.Likes,
			User: ownerOf(b, owners),
		})
	}
	return out, nil
}

func ownerOf(b entity.Blog, owners map[string]*Owner) *Owner {
	if !b.Owned() {
		return nil
	}
	return owners[b.User]
}

func (s *Service) Get(ctx context.Context, id string) (*entity.Blog, error) {
	id, ok := utilities.CanonicalObjectID(id)
	if !ok {
		return nil, apperr.MalformedID()
	}
	b, err := s.blogs.Get(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, apperr.NotFound("blog not found")
		}
		return nil, fmt.Errorf("get blog: %w", err)
	}
	return b, nil
}

// Create stores a blog owned by id and appends it to the owner's blogs.
func (s *Service) Create(ctx context.Context, id *auth.Identity, in CreateInput) (*entity.Blog, error) {
	if id == nil {
		return nil, auth.ErrTokenMissing
	}
	likes := 0
	if in.Likes != nil {
		likes = *in.Likes
	}
	if err := blogValidation(in.Title, in.URL, likes); err != nil {
		return nil, err
	}

	owner, err := s.loadOwner(ctx, id.ID)
	if err != nil {
		return nil, err
	}
	b := &entity.Blog{Title: in.Title, Author: in.Author, URL: in.URL, Likes: likes, User: owner.ID}
	if err := s.blogs.Insert(ctx, b); err != nil {
		return nil, fmt.Errorf("insert blog: %w", err)
	}
	owner.AddBlog(b.ID)
	if err := s.users.Update(ctx, owner); err != nil {
		s.logger.Errorw("dangling blog reference", "blog_id", b.ID, "user_id", owner.ID, "op", "create", "err", err)
		return nil, fmt.Errorf("save owner: %w", err)
	}
	s.logger.Infow("blog created", "blog_id", b.ID, "user_id", owner.ID)
	return b, nil
}

// Delete removes a blog owned by id and drops it from the owner's blogs.
func (s *Service) Delete(ctx context.Context, id *auth.Identity, blogID string) error {
	if id == nil {
		return auth.ErrTokenMissing
	}
	b, err := s.Get(ctx, blogID)
	if err != nil {
		return err
	}
	if !b.Owned() || b.User != id.ID {
		s.logger.Infow("delete refused", "blog_id", b.ID, "user_id", id.ID, "owner_id", b.User)
		return ErrNoDeletePermission
	}
	owner, err := s.loadOwner(ctx, id.ID)
	if err != nil {
		return err
	}
	if err := s.blogs.Delete(ctx, b.ID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return apperr.NotFound("blog not found")
		}
		return fmt.Errorf("delete blog: %w", err)
	}
	owner.RemoveBlog(b.ID)
	if err := s.users.Update(ctx, owner); err != nil {
		s.logger.Errorw("dangling blog reference", "blog_id", b.ID, "user_id", owner.ID, "op", "delete", "err", err)
		return fmt.Errorf("save owner: %w", err)
	}
	s.logger.Infow("blog deleted", "blog_id", b.ID, "user_id", owner.ID)
	return nil
}

// Update replaces the fields present in in. id may be nil unless the policy
// requires the owner.
func (s *Service) Update(ctx context.Context, id *auth.Identity, blogID string, in UpdateInput) (*entity.Blog, error) {
	b, err := s.Get(ctx, blogID)
	if err != nil {
		return nil, err
	}
	if s.policy.UpdateRequiresOwner {
		if id == nil {
			return nil, auth.ErrTokenMissing
		}
		if b.User != id.ID {
			return nil, apperr.Forbidden("no permission to update")
		}
	}

	next := *b
	if in.Title != nil {
		next.Title = *in.Title
	}
	if in.Author != nil {
		next.Author = *in.Author
	}
	if in.URL != nil {
		next.URL = *in.URL
	}
	if in.Likes != nil {
		next.Likes = *in.Likes
	}
	var newOwner *userentity.User
	if in.User != nil && *in.User != "" {
		ownerID, ok := utilities.CanonicalObjectID(*in.User)
		if !ok {
			return nil, apperr.MalformedID()
		}
		if ownerID != b.User {
			newOwner, err = s.users.Get(ctx, ownerID)
			if err != nil {
				if errors.Is(err, store.ErrNotFound) {
					return nil, apperr.Validation(fmt.Sprintf("Blog validation failed: user: no user with id `%s`", ownerID))
				}
				return nil, fmt.Errorf("load new owner: %w", err)
			}
			next.User = ownerID
		}
	}
	if err := blogValidation(next.Title, next.URL, next.Likes); err != nil {
		return nil, err
	}
	if err := s.blogs.Update(ctx, &next); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, apperr.NotFound("blog not found")
		}
		return nil, fmt.Errorf("update blog: %w", err)
	}
	if newOwner != nil {
		if err := s.transfer(ctx, b, newOwner); err != nil {
			return nil, err
		}
	}
	return &next, nil
}

// transfer moves the blog reference from the previous owner's blogs to
// newOwner's. The blog row already names newOwner.
func (s *Service) transfer(ctx context.Context, b *entity.Blog, newOwner *userentity.User) error {
	if b.Owned() {
		prev, err := s.users.Get(ctx, b.User)
		switch {
		case errors.Is(err, store.ErrNotFound):
			// previous owner is gone; nothing to unlink
		case err != nil:
			s.logger.Errorw("dangling blog reference", "blog_id", b.ID, "user_id", b.User, "op", "transfer", "err", err)
			return fmt.Errorf("load previous owner: %w", err)
		case prev.RemoveBlog(b.ID):
			if err := s.users.Update(ctx, prev); err != nil {
				s.logger.Errorw("dangling blog reference", "blog_id", b.ID, "user_id", prev.ID, "op", "transfer", "err", err)
				return fmt.Errorf("save previous owner: %w", err)
			}
		}
	}
	newOwner.AddBlog(b.ID)
	if err := s.users.Update(ctx, newOwner); err != nil {
		s.logger.Errorw("dangling blog reference", "blog_id", b.ID, "user_id", newOwner.ID, "op", "transfer", "err", err)
		return fmt.Errorf("save new owner: %w", err)
	}
	s.logger.Infow("blog ownership transferred", "blog_id", b.ID, "from_user_id", b.User, "to_user_id", newOwner.ID)
	return nil
}

func (s *Service) Stats(ctx context.Context) (*Stats, error) {
	blogs, err := s.blogs.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list blogs: %w", err)
	}
	return &Stats{
		TotalLikes:   listhelper.TotalLikes(blogs),
		FavoriteBlog: listhelper.FavoriteBlog(blogs),
		MostBlogs:    listhelper.MostBlogs(blogs),
		MostLikes:    listhelper.MostLikes(blogs),
	}, nil
}

func (s *Service) loadOwner(ctx context.Context, userID string) (*userentity.User, error) {
	u, err := s.users.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, apperr.Unauthenticated("invalid token")
		}
		return nil, fmt.Errorf("load owner: %w", err)
	}
	return u, nil
}
