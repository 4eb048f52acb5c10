// Package api exposes the annotation pipeline over HTTP. Requests come from
// browser extensions on arbitrary pages, so CORS echoes whatever origin the
// caller declares.
package api

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/glosslab/gloss/internal/annotate"
)

// Annotator is the create half of the record lifecycle.
type Annotator interface {
	AnnotateWord(ctx context.Context, req annotate.WordRequest) (annotate.Annotation, error)
	AnnotateText(ctx context.Context, req annotate.TextRequest) (annotate.Annotation, error)
}

// Judge is the close half.
type Judge interface {
	SubmitResult(ctx context.Context, id int64, result bool) error
}

type Server struct {
	router   *chi.Mux
	port     int
	svc      Annotator
	feedback Judge
	timeout  time.Duration
}

// NewServer wires the routes. requestTimeout bounds each request's whole
// budget: conversation build, model call and persistence together.
func NewServer(port int, svc Annotator, feedback Judge, requestTimeout time.Duration) *Server {
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowOriginFunc: func(r *http.Request, origin string) bool { return true },
		AllowedMethods:  []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:  []string{"Accept", "Content-Type"},
	}))

	s := &Server{
		router:   router,
		port:     port,
		svc:      svc,
		feedback: feedback,
		timeout:  requestTimeout,
	}

	router.Get("/health", s.health)
	router.Post("/translate-word", s.translateWord)
	router.Post("/translate-text", s.translateText)
	router.Post("/success-record", s.successRecord)

	return s
}

func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.port)
	slog.Info("API server starting", "addr", addr)
	return http.ListenAndServe(addr, s.router)
}

// Handler exposes the router for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
