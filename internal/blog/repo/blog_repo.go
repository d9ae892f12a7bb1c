package repo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/ovaphlow/pitchfork/service-bloglist-go/internal/blog/entity"
	"github.com/ovaphlow/pitchfork/service-bloglist-go/internal/store"
	"github.com/ovaphlow/pitchfork/service-bloglist-go/pkg/utilities"
)

// BlogRepo is the PostgreSQL blog repository. user_id is a plain column,
// not a foreign key: the owner reference is weak like in the document store.
type BlogRepo struct {
	db *sqlx.DB
}

func NewBlogRepo(db *sqlx.DB) *BlogRepo {
	return &BlogRepo{db: db}
}

type blogRow struct {
	ID     string         `db:"id"`
	Title  string         `db:"title"`
	Author string         `db:"author"`
	URL    string         `db:"url"`
	Likes  int            `db:"likes"`
	UserID sql.NullString `db:"user_id"`
}

func newBlogRow(b *entity.Blog) blogRow {
	return blogRow{
		ID:     b.ID,
		Title:  b.Title,
		Author: b.Author,
		URL:    b.URL,
		Likes:  b.Likes,
		UserID: sql.NullString{String: b.User, Valid: b.User != ""},
	}
}

func (r blogRow) entity() entity.Blog {
	return entity.Blog{ID: r.ID, Title: r.Title, Author: r.Author, URL: r.URL, Likes: r.Likes, User: r.UserID.String}
}

// EnsureTable creates the blogs table if not exists (idempotent).
func (r *BlogRepo) EnsureTable(ctx context.Context) error {
	const ddl = `
CREATE TABLE IF NOT EXISTS blogs (
  id VARCHAR(24) PRIMARY KEY,
  title TEXT NOT NULL,
  author TEXT NOT NULL DEFAULT '',
  url TEXT NOT NULL,
  likes INT NOT NULL DEFAULT 0 CHECK (likes >= 0),
  user_id VARCHAR(24)
);
CREATE INDEX IF NOT EXISTS idx_blogs_user_id ON blogs(user_id);
`
	_, err := r.db.ExecContext(ctx, ddl)
	return err
}

const selectBlogs = `SELECT id, title, author, url, likes, user_id FROM blogs`

func (r *BlogRepo) List(ctx context.Context) ([]entity.Blog, error) {
	var rows []blogRow
	if err := r.db.SelectContext(ctx, &rows, selectBlogs+` ORDER BY id`); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	out := make([]entity.Blog, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.entity())
	}
	return out, nil
}

func (r *BlogRepo) Get(ctx context.Context, id string) (*entity.Blog, error) {
	var row blogRow
	if err := r.db.GetContext(ctx, &row, selectBlogs+` WHERE id=$1`, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	b := row.entity()
	return &b, nil
}

func (r *BlogRepo) Insert(ctx context.Context, b *entity.Blog) error {
	if b.ID == "" {
		b.ID = utilities.NewObjectID()
	}
	const q = `INSERT INTO blogs (id, title, author, url, likes, user_id)
		  VALUES (:id, :title, :author, :url, :likes, :user_id)`
	if _, err := r.db.NamedExecContext(ctx, q, newBlogRow(b)); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *BlogRepo) Update(ctx context.Context, b *entity.Blog) error {
	const q = `UPDATE blogs SET title=:title, author=:author, url=:url, likes=:likes, user_id=:user_id WHERE id=:id`
	res, err := r.db.NamedExecContext(ctx, q, newBlogRow(b))
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return expectOne(res)
}

func (r *BlogRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM blogs WHERE id=$1`, id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return expectOne(res)
}

func expectOne(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}
