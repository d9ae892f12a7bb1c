package router

import (
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/ovaphlow/pitchfork/service-bloglist-go/internal/auth"
	"github.com/ovaphlow/pitchfork/service-bloglist-go/internal/blog"
	"github.com/ovaphlow/pitchfork/service-bloglist-go/internal/comment"
	"github.com/ovaphlow/pitchfork/service-bloglist-go/internal/store"
	"github.com/ovaphlow/pitchfork/service-bloglist-go/internal/user"
	"github.com/ovaphlow/pitchfork/service-bloglist-go/pkg/utilities"
)

// Deps are the collaborators the HTTP layer is built from.
type Deps struct {
	Store  *store.Store
	Tokens *auth.TokenService
	Hasher user.PasswordHasher
	Policy blog.Policy
}

// RegisterRoutes builds the API handler on a gorilla/mux router.
func RegisterRoutes(logger *zap.SugaredLogger, deps Deps) http.Handler {
	st := deps.Store
	resolver := auth.NewResolver(deps.Tokens, st.Users, logger)

	userSvc := user.NewUserService(st.Users, st.Blogs, deps.Hasher, logger)
	userHandler := user.NewHandler(userSvc, logger)
	loginHandler := auth.NewHandler(userSvc, deps.Tokens, logger)
	blogHandler := blog.NewHandler(blog.NewService(st.Blogs, st.Users, deps.Policy, logger), resolver, logger)
	commentHandler := comment.NewHandler(comment.NewService(st.Comments, st.Blogs, logger), logger)

	r := mux.NewRouter()
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	}).Methods(http.MethodGet)

	api := r.PathPrefix("/api").Subrouter()

	api.HandleFunc("/login", loginHandler.Login).Methods(http.MethodPost)

	api.HandleFunc("/users", userHandler.List).Methods(http.MethodGet)
	api.HandleFunc("/users", userHandler.Register).Methods(http.MethodPost)

	// stats before {id}
	api.HandleFunc("/blogs/stats", blogHandler.Stats).Methods(http.MethodGet)
	api.HandleFunc("/blogs", blogHandler.List).Methods(http.MethodGet)
	api.HandleFunc("/blogs", resolver.With(blogHandler.Create)).Methods(http.MethodPost)
	api.HandleFunc("/blogs/{id}", blogHandler.Get).Methods(http.MethodGet)
	api.HandleFunc("/blogs/{id}", blogHandler.Update).Methods(http.MethodPut)
	api.HandleFunc("/blogs/{id}", resolver.With(blogHandler.Delete)).Methods(http.MethodDelete)
	api.HandleFunc("/blogs/{id}/comments", commentHandler.List).Methods(http.MethodGet)
	api.HandleFunc("/blogs/{id}/comments", commentHandler.Create).Methods(http.MethodPost)

	unknown := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		utilities.WriteJSON(w, http.StatusNotFound, map[string]string{"error": "unknown endpoint"})
	})
	for _, m := range []*mux.Router{r, api} {
		m.NotFoundHandler = unknown
		m.MethodNotAllowedHandler = unknown
	}

	return RequestIDMiddleware()(LoggingMiddleware(logger)(SecurityHeadersMiddleware()(r)))
}
