package http

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/actionboard/pkg/domain/model"
	"github.com/secmon-lab/actionboard/pkg/usecase"
	"github.com/secmon-lab/actionboard/pkg/utils/errutil"
	"github.com/secmon-lab/actionboard/pkg/utils/logging"
	"github.com/secmon-lab/actionboard/pkg/utils/safe"
)

type Server struct {
	router    *chi.Mux
	uc        *usecase.UseCases
	jwtSecret []byte
	noAuth    bool
}

type Options func(*Server)

// WithJWTSecret requires every API request to carry an HS256 bearer token
// signed with secret. The token subject is the acting user.
func WithJWTSecret(secret []byte) Options {
	return func(s *Server) {
		s.jwtSecret = secret
	}
}

// WithNoAuth trusts the X-Actor-ID header. Development only.
func WithNoAuth() Options {
	return func(s *Server) {
		s.noAuth = true
	}
}

func New(uc *usecase.UseCases, opts ...Options) (*Server, error) {
	r := chi.NewRouter()

	s := &Server{
		router: r,
		uc:     uc,
	}
	for _, opt := range opts {
		opt(s)
	}

	if len(s.jwtSecret) == 0 && !s.noAuth {
		return nil, goerr.New("either a JWT secret or no-auth mode is required")
	}

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(accessLogger)
	r.Use(middleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api", func(r chi.Router) {
		r.Use(actorMiddleware(s.jwtSecret, s.noAuth))

		r.Get("/workspaces", workspacesHandler(uc.Registry()))

		r.Route("/workspaces/{workspaceID}", func(r chi.Router) {
			r.Post("/actions", s.createAction)
			r.Route("/actions/{actionID}", func(r chi.Router) {
				r.Get("/", s.getAction)
				r.Patch("/", s.updateAction)
				r.Delete("/", s.deleteAction)
				r.Post("/move", s.moveAction)
				r.Post("/block", s.blockAction)
				r.Post("/unblock", s.unblockAction)
				r.Get("/movements", s.listMovements)
				r.Post("/checklist", s.addChecklistItem)
				r.Put("/checklist/order", s.reorderChecklist)
			})

			r.Post("/checklist/{itemID}/toggle", s.toggleChecklistItem)
			r.Delete("/checklist/{itemID}", s.deleteChecklistItem)

			r.Get("/teams/{teamID}/board", s.getBoard)
			r.Post("/teams/{teamID}/columns/{column}/reindex", s.reindexColumn)
		})
	})

	return s, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// accessLogger is a middleware that logs HTTP requests
func accessLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		logger := logging.Default().With("request_id", middleware.GetReqID(r.Context()))
		ctx := logging.With(r.Context(), logger)

		defer func() {
			logger.Info("access",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start),
				"remote", r.RemoteAddr,
				"user_agent", r.UserAgent(),
			)
		}()

		next.ServeHTTP(ww, r.WithContext(ctx))
	})
}

// workspacesHandler returns a handler that serves the workspace list as JSON
func workspacesHandler(registry *model.WorkspaceRegistry) http.HandlerFunc {
	type workspaceResponse struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	}
	type response struct {
		Workspaces []workspaceResponse `json:"workspaces"`
	}

	return func(w http.ResponseWriter, r *http.Request) {
		workspaces := registry.Workspaces()
		resp := response{
			Workspaces: make([]workspaceResponse, len(workspaces)),
		}
		for i, ws := range workspaces {
			resp.Workspaces[i] = workspaceResponse{
				ID:   ws.ID,
				Name: ws.Name,
			}
		}
		writeJSON(w, r, http.StatusOK, resp)
	}
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		errutil.HandleHTTP(r.Context(), w, goerr.Wrap(err, "failed to marshal response"), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	safe.Write(r.Context(), w, data)
}
