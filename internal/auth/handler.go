package auth

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"go.uber.org/zap"

	"github.com/ovaphlow/pitchfork/service-bloglist-go/internal/user/entity"
	"github.com/ovaphlow/pitchfork/service-bloglist-go/pkg/apperr"
	"github.com/ovaphlow/pitchfork/service-bloglist-go/pkg/utilities"
)

// Authenticator checks a username/password pair.
type Authenticator interface {
	Authenticate(ctx context.Context, username, password string) (*entity.User, error)
}

type Handler struct {
	users  Authenticator
	tokens *TokenService
	logger *zap.SugaredLogger
}

func NewHandler(users Authenticator, tokens *TokenService, logger *zap.SugaredLogger) *Handler {
	return &Handler{users: users, tokens: tokens, logger: logger}
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token    string `json:"token"`
	Username string `json:"username"`
	Name     string `json:"name"`
}

// Login exchanges credentials for a bearer token.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		utilities.WriteError(w, h.logger, apperr.Validation("invalid payload"))
		return
	}
	u, err := h.users.Authenticate(r.Context(), req.Username, req.Password)
	if err != nil {
		utilities.WriteError(w, h.logger, err)
		return
	}
	token, err := h.tokens.Issue(u.ID, u.Username)
	if err != nil {
		utilities.WriteError(w, h.logger, err)
		return
	}
	h.logger.Infow("user logged in", "user_id", u.ID)
	utilities.WriteJSON(w, http.StatusOK, loginResponse{Token: token, Username: u.Username, Name: u.Name})
}
