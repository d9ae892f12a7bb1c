package user

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/ovaphlow/pitchfork/service-bloglist-go/internal/store"
	"github.com/ovaphlow/pitchfork/service-bloglist-go/internal/user/entity"
	"github.com/ovaphlow/pitchfork/service-bloglist-go/pkg/apperr"
)

const (
	minUsernameLen = 3
	minPasswordLen = 3
)

// PasswordHasher defines minimal hashing interface.
type PasswordHasher interface {
	Hash(pw string) (string, error)
	Verify(hash, pw string) bool
}

// BcryptHasher implementation.
type BcryptHasher struct{ Cost int }

func (b BcryptHasher) Hash(pw string) (string, error) {
	cost := b.Cost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	h, err := bcrypt.GenerateFromPassword([]byte(pw), cost)
	if err != nil {
		return "", err
	}
	return string(h), nil
}

func (b BcryptHasher) Verify(hash, pw string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(pw)) == nil
}

// UserService handles registration, listing and password authentication.
type UserService struct {
	users  store.UserRepository
	blogs  store.BlogRepository
	hasher PasswordHasher
	logger *zap.SugaredLogger
}

func NewUserService(users store.UserRepository, blogs store.BlogRepository, hasher PasswordHasher, logger *zap.SugaredLogger) *UserService {
	if hasher == nil {
		hasher = BcryptHasher{Cost: 10}
	}
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &UserService{users: users, blogs: blogs, hasher: hasher, logger: logger}
}

var ErrBadCredentials = apperr.Unauthenticated("invalid username or password")

type RegisterInput struct {
	Username string `json:"username"`
	Name     string `json:"name"`
	Password string `json:"password"`
}

// BlogRef is the projection of a blog embedded in a user listing.
type BlogRef struct {
	ID     string `json:"id"`
	Title  string `json:"title"`
	Author string `json:"author"`
	URL    string `json:"url"`
}

type UserView struct {
	ID       string    `json:"id"`
	Username string    `json:"username"`
	Name     string    `json:"name"`
	Blogs    []BlogRef `json:"blogs"`
}

// Register validates the input, hashes the password and stores a user with
// no blogs. The password is checked before the username.
func (s *UserService) Register(ctx context.Context, in RegisterInput) (*entity.User, error) {
	switch {
	case in.Password == "":
		return nil, apperr.Validation("Password is missing")
	case utf8.RuneCountInString(in.Password) < minPasswordLen:
		return nil, apperr.Validation(fmt.Sprintf("Password must be at least %d characters long", minPasswordLen))
	}

	username := strings.TrimSpace(in.Username)
	switch {
	case username == "":
		return nil, apperr.Validation("User validation failed: username: Path `username` is required.")
	case utf8.RuneCountInString(username) < minUsernameLen:
		return nil, apperr.Validation(fmt.Sprintf(
			"User validation failed: username: Path `username` (`%s`) is shorter than the minimum allowed length (%d).",
			username, minUsernameLen))
	}

	if _, err := s.users.GetByUsername(ctx, username); err == nil {
		return nil, duplicateUsername(username)
	} else if !errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("lookup username: %w", err)
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	u := &entity.User{Username: username, Name: in.Name, PasswordHash: hash, Blogs: []string{}}
	if err := s.users.Insert(ctx, u); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return nil, duplicateUsername(username)
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}
	s.logger.Infow("user registered", "user_id", u.ID, "username", u.Username)
	return u, nil
}

func duplicateUsername(username string) error {
	return apperr.Validation(fmt.Sprintf(
		"User validation failed: username: Error, expected `username` to be unique. Value: `%s`", username))
}

// List returns all users with their blogs projected. References to blogs
// that no longer exist are skipped.
func (s *UserService) List(ctx context.Context) ([]UserView, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	blogs, err := s.blogs.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list blogs: %w", err)
	}
	byID := make(map[string]BlogRef, len(blogs))
	for _, b := range blogs {
		byID[b.ID] = BlogRef{ID: b.ID, Title: b.Title, Author: b.Author, URL: b.URL}
	}

	out := make([]UserView, 0, len(users))
	for _, u := range users {
		v := UserView{ID: u.ID, Username: u.Username, Name: u.Name, Blogs: []BlogRef{}}
		for _, id := range u.Blogs {
			if ref, ok := byID[id]; ok {
				v.Blogs = append(v.Blogs, ref)
			}
		}
		out = append(out, v)
	}
	return out, nil
}

// Authenticate checks username and password. Unknown users and wrong
// passwords both yield ErrBadCredentials.
func (s *UserService) Authenticate(ctx context.Context, username, password string) (*entity.User, error) {
	u, err := s.users.GetByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrBadCredentials
		}
		return nil, fmt.Errorf("lookup user: %w", err)
	}
	if !s.hasher.Verify(u.PasswordHash, password) {
		return nil, ErrBadCredentials
	}
	return u, nil
}
