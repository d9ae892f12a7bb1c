package repo

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/ovaphlow/pitchfork/service-bloglist-go/internal/comment/entity"
	"github.com/ovaphlow/pitchfork/service-bloglist-go/pkg/utilities"
)

type CommentRepo struct {
	db *sqlx.DB
}

func NewCommentRepo(db *sqlx.DB) *CommentRepo {
	return &CommentRepo{db: db}
}

// EnsureTable creates the comments table if it does not already exist.
func (r *CommentRepo) EnsureTable(ctx context.Context) error {
	const tbl = `
	CREATE TABLE IF NOT EXISTS comments (
		id VARCHAR(24) PRIMARY KEY,
		content TEXT NOT NULL,
		blog_id VARCHAR(24) NOT NULL
	);
	`
	if _, err := r.db.ExecContext(ctx, tbl); err != nil {
		return err
	}

	const idx = `
	CREATE INDEX IF NOT EXISTS idx_comments_blog_id ON comments (blog_id);
	`
	if _, err := r.db.ExecContext(ctx, idx); err != nil {
		return err
	}
	return nil
}

func (r *CommentRepo) ListByBlog(ctx context.Context, blogID string) ([]entity.Comment, error) {
	var rows []struct {
		ID      string `db:"id"`
		Content string `db:"content"`
		BlogID  string `db:"blog_id"`
	}
	const q = `SELECT id, content, blog_id FROM comments WHERE blog_id=$1 ORDER BY id`
	if err := r.db.SelectContext(ctx, &rows, q, blogID); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	out := make([]entity.Comment, 0, len(rows))
	for _, row := range rows {
		out = append(out, entity.Comment{ID: row.ID, Content: row.Content, Blog: row.BlogID})
	}
	return out, nil
}

func (r *CommentRepo) Insert(ctx context.Context, c *entity.Comment) error {
	if c.ID == "" {
		c.ID = utilities.NewObjectID()
	}
	const q = `INSERT INTO comments (id, content, blog_id) VALUES ($1, $2, $3)`
	if _, err := r.db.ExecContext(ctx, q, c.ID, c.Content, c.Blog); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}
