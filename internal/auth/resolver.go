package auth

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/ovaphlow/pitchfork/service-bloglist-go/internal/store"
	"github.com/ovaphlow/pitchfork/service-bloglist-go/pkg/apperr"
	"github.com/ovaphlow/pitchfork/service-bloglist-go/pkg/utilities"
)

const bearerPrefix = "Bearer "

// Identity is the authenticated user of one request.
type Identity struct {
	ID       string
	Username string
	Name     string
}

// IdentityHandlerFunc is a handler that runs only for authenticated requests.
type IdentityHandlerFunc func(w http.ResponseWriter, r *http.Request, id *Identity)

// Resolver turns the Authorization header into an Identity.
type Resolver struct {
	tokens *TokenService
	users  store.UserRepository
	logger *zap.SugaredLogger
}

func NewResolver(tokens *TokenService, users store.UserRepository, logger *zap.SugaredLogger) *Resolver {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Resolver{tokens: tokens, users: users, logger: logger}
}

// BearerToken extracts the token from an "Authorization: Bearer <t>" header.
func BearerToken(r *http.Request) (string, bool) {
	h := r.Header.Get("Authorization")
	if !strings.HasPrefix(h, bearerPrefix) {
		return "", false
	}
	t := strings.TrimSpace(strings.TrimPrefix(h, bearerPrefix))
	return t, t != ""
}

// Resolve verifies the bearer token and loads the user it names.
func (res *Resolver) Resolve(r *http.Request) (*Identity, error) {
	raw, ok := BearerToken(r)
	if !ok {
		return nil, ErrTokenMissing
	}
	claims, err := res.tokens.Verify(raw)
	if err != nil {
		return nil, err
	}
	u, err := res.users.Get(r.Context(), claims.ID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, apperr.Unauthenticated("invalid token")
		}
		return nil, fmt.Errorf("load token user: %w", err)
	}
	return &Identity{ID: u.ID, Username: u.Username, Name: u.Name}, nil
}

// With adapts h into a plain handler that answers 401 when no identity can
// be resolved.
func (res *Resolver) With(h IdentityHandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := res.Resolve(r)
		if err != nil {
			utilities.WriteError(w, res.logger, err)
			return
		}
		h(w, r, id)
	}
}
