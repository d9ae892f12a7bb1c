package blog

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/ovaphlow/pitchfork/service-bloglist-go/internal/auth"
	"github.com/ovaphlow/pitchfork/service-bloglist-go/pkg/apperr"
	"github.com/ovaphlow/pitchfork/service-bloglist-go/pkg/utilities"
)

type Handler struct {
	svc    *Service
	res    *auth.Resolver
	logger *zap.SugaredLogger
}

func NewHandler(svc *Service, res *auth.Resolver, logger *zap.SugaredLogger) *Handler {
	return &Handler{svc: svc, res: res, logger: logger}
}

// decode reads a JSON body; an empty body decodes to the zero value.
func decode(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil && !errors.Is(err, io.EOF) {
		return apperr.Wrap(apperr.KindValidation, "invalid payload", err)
	}
	return nil
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	blogs, err := h.svc.List(r.Context())
	if err != nil {
		utilities.WriteError(w, h.logger, err)
		return
	}
	utilities.WriteJSON(w, http.StatusOK, blogs)
}

func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	st, err := h.svc.Stats(r.Context())
	if err != nil {
		utilities.WriteError(w, h.logger, err)
		return
	}
	utilities.WriteJSON(w, http.StatusOK, st)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	b, err := h.svc.Get(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		utilities.WriteError(w, h.logger, err)
		return
	}
	utilities.WriteJSON(w, http.StatusOK, b)
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request, id *auth.Identity) {
	var in CreateInput
	if err := decode(r, &in); err != nil {
		utilities.WriteError(w, h.logger, err)
		return
	}
	b, err := h.svc.Create(r.Context(), id, in)
	if err != nil {
		utilities.WriteError(w, h.logger, err)
		return
	}
	utilities.WriteJSON(w, http.StatusCreated, b)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request, id *auth.Identity) {
	if err := h.svc.Delete(r.Context(), id, mux.Vars(r)["id"]); err != nil {
		utilities.WriteError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Update resolves the identity only when a bearer header is sent, since the
// default policy lets anonymous callers update.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	var id *auth.Identity
	if _, ok := auth.BearerToken(r); ok {
		resolved, err := h.res.Resolve(r)
		if err != nil {
			utilities.WriteError(w, h.logger, err)
			return
		}
		id = resolved
	}
	var in UpdateInput
	if err := decode(r, &in); err != nil {
		utilities.WriteError(w, h.logger, err)
		return
	}
	b, err := h.svc.Update(r.Context(), id, mux.Vars(r)["id"], in)
	if err != nil {
		utilities.WriteError(w, h.logger, err)
		return
	}
	utilities.WriteJSON(w, http.StatusOK, b)
}
