package repo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/ovaphlow/pitchfork/service-bloglist-go/internal/store"
	"github.com/ovaphlow/pitchfork/service-bloglist-go/internal/user/entity"
	"github.com/ovaphlow/pitchfork/service-bloglist-go/pkg/utilities"
)

// UserRepo provides data access for the users table using sqlx. The blog
// references are kept in a text[] column so a user row mirrors the user
// document of the document store.
type UserRepo struct {
	db *sqlx.DB
}

func NewUserRepo(db *sqlx.DB) *UserRepo { return &UserRepo{db: db} }

type userRow struct {
	ID           string         `db:"id"`
	Username     string         `db:"username"`
	Name         string         `db:"name"`
	PasswordHash string         `db:"password_hash"`
	Blogs        pq.StringArray `db:"blogs"`
}

func (r userRow) entity() entity.User {
	blogs := []string(r.Blogs)
	if blogs == nil {
		blogs = []string{}
	}
	return entity.User{ID: r.ID, Username: r.Username, Name: r.Name, PasswordHash: r.PasswordHash, Blogs: blogs}
}

// EnsureTable creates the users table if not exists (idempotent).
func (r *UserRepo) EnsureTable(ctx context.Context) error {
	const ddl = `
CREATE TABLE IF NOT EXISTS users (
  id VARCHAR(24) PRIMARY KEY,
  username TEXT NOT NULL UNIQUE,
  name TEXT NOT NULL DEFAULT '',
  password_hash TEXT NOT NULL,
  blogs TEXT[] NOT NULL DEFAULT '{}'
);
`
	_, err := r.db.ExecContext(ctx, ddl)
	return err
}

const selectUsers = `SELECT id, username, name, password_hash, blogs FROM users`

func (r *UserRepo) List(ctx context.Context) ([]entity.User, error) {
	var rows []userRow
	if err := r.db.SelectContext(ctx, &rows, selectUsers+` ORDER BY id`); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	out := make([]entity.User, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.entity())
	}
	return out, nil
}

// Get fetches a user by id or returns store.ErrNotFound.
func (r *UserRepo) Get(ctx context.Context, id string) (*entity.User, error) {
	return r.getOne(ctx, selectUsers+` WHERE id=$1`, id)
}

// GetByUsername fetches by username.
func (r *UserRepo) GetByUsername(ctx context.Context, username string) (*entity.User, error) {
	return r.getOne(ctx, selectUsers+` WHERE username=$1`, username)
}

func (r *UserRepo) getOne(ctx context.Context, q string, arg any) (*entity.User, error) {
	var row userRow
	if err := r.db.GetContext(ctx, &row, q, arg); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	u := row.entity()
	return &u, nil
}

// Insert creates a user row. A taken username yields store.ErrDuplicate.
func (r *UserRepo) Insert(ctx context.Context, u *entity.User) error {
	if u.ID == "" {
		u.ID = utilities.NewObjectID()
	}
	if u.Blogs == nil {
		u.Blogs = []string{}
	}
	const q = `INSERT INTO users (id, username, name, password_hash, blogs)
		  VALUES (:id, :username, :name, :password_hash, :blogs)`
	row := userRow{ID: u.ID, Username: u.Username, Name: u.Name, PasswordHash: u.PasswordHash, Blogs: pq.StringArray(u.Blogs)}
	if _, err := r.db.NamedExecContext(ctx, q, row); err != nil {
		return mapErr(err)
	}
	return nil
}

// Update writes name and blog references.
func (r *UserRepo) Update(ctx context.Context, u *entity.User) error {
	const q = `UPDATE users SET name=$1, blogs=$2 WHERE id=$3`
	blogs := u.Blogs
	if blogs == nil {
		blogs = []string{}
	}
	res, err := r.db.ExecContext(ctx, q, u.Name, pq.StringArray(blogs), u.ID)
	if err != nil {
		return mapErr(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}

func mapErr(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "23505" {
		return store.ErrDuplicate
	}
	return fmt.Errorf("db error: %w", err)
}
