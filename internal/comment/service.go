package comment

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/ovaphlow/pitchfork/service-bloglist-go/internal/comment/entity"
	"github.com/ovaphlow/pitchfork/service-bloglist-go/internal/store"
	"github.com/ovaphlow/pitchfork/service-bloglist-go/pkg/apperr"
	"github.com/ovaphlow/pitchfork/service-bloglist-go/pkg/utilities"
)

// Service manages anonymous comments on blogs.
type Service struct {
	comments store.CommentRepository
	blogs    store.BlogRepository
	logger   *zap.SugaredLogger
}

func NewService(comments store.CommentRepository, blogs store.BlogRepository, logger *zap.SugaredLogger) *Service {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Service{comments: comments, blogs: blogs, logger: logger}
}

type CreateInput struct {
	Content string `json:"content"`
}

func (s *Service) List(ctx context.Context, blogID string) ([]entity.Comment, error) {
	blogID, ok := utilities.CanonicalObjectID(blogID)
	if !ok {
		return nil, apperr.MalformedID()
	}
	cs, err := s.comments.ListByBlog(ctx, blogID)
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	if cs == nil {
		cs = []entity.Comment{}
	}
	return cs, nil
}

// Create attaches a comment to an existing blog.
func (s *Service) Create(ctx context.Context, blogID string, in CreateInput) (*entity.Comment, error) {
	blogID, ok := utilities.CanonicalObjectID(blogID)
	if !ok {
		return nil, apperr.MalformedID()
	}
	if strings.TrimSpace(in.Content) == "" {
		return nil, apperr.Validation("Comment validation failed: content: Path `content` is required.")
	}
	if _, err := s.blogs.Get(ctx, blogID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, apperr.NotFound("blog not found")
		}
		return nil, fmt.Errorf("get blog: %w", err)
	}
	c := &entity.Comment{Content: in.Content, Blog: blogID}
	if err := s.comments.Insert(ctx, c); err != nil {
		return nil, fmt.Errorf("insert comment: %w", err)
	}
	s.logger.Debugw("comment created", "comment_id", c.ID, "blog_id", blogID)
	return c, nil
}
