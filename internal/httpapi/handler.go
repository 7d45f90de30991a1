// Package httpapi exposes scene upload and marker rendering over HTTP.
//
// The API is versioned under /api/v1. Scenes are uploaded as JSON bodies,
// held in memory under generated ids, and rendered on demand. Marker
// arrays are cached across requests keyed by scene content, config, and
// seed, so repeated renders of the same scene are cheap.
package httpapi

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/stratumviz/stratum/pkg/cache"
	"github.com/stratumviz/stratum/pkg/config"
	"github.com/stratumviz/stratum/pkg/observability"
)

// maxSceneBytes caps uploaded scene bodies.
const maxSceneBytes = 32 << 20

// Handler serves the scene rendering API.
type Handler struct {
	log    *log.Logger
	store  cache.Cache
	keyer  cache.Keyer
	cfg    *config.Config
	scenes *sceneStore
}

// HandlerOption customizes a Handler.
type HandlerOption func(*Handler)

// WithKeyer overrides the cache keyer, e.g. a ScopedKeyer when several
// deployments share one cache backend.
func WithKeyer(k cache.Keyer) HandlerOption {
	return func(h *Handler) {
		if k != nil {
			h.keyer = k
		}
	}
}

// NewHandler creates a Handler. store may be a NullCache when caching is
// disabled; cfg is the base visualizer config applied to every scene.
func NewHandler(logger *log.Logger, store cache.Cache, cfg *config.Config, opts ...HandlerOption) *Handler {
	if cfg == nil {
		cfg = config.Default()
	}
	h := &Handler{
		log:    logger,
		store:  store,
		keyer:  cache.NewDefaultKeyer(),
		cfg:    cfg,
		scenes: newSceneStore(),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Router builds the chi router for the API.
func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(h.accessLog)

	r.Get("/healthz", h.handleHealthz)

	r.Route("/api", func(r chi.Router) {
		r.Route("/v1", func(r chi.Router) {
			r.Route("/scenes", func(r chi.Router) {
				r.Get("/", h.handleListScenes)
				r.Post("/", h.handleCreateScene)
				r.Route("/{id}", func(r chi.Router) {
					r.Get("/", h.handleGetScene)
					r.Delete("/", h.handleDeleteScene)
					r.Get("/markers", h.handleMarkers)
					r.Get("/overview", h.handleOverview)
					r.Get("/nodes/{symbol}", h.handleGetNode)
				})
			})
		})
	})

	return r
}

func (h *Handler) accessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		observability.HTTP().OnRequest(r.Context(), r.Method, r.URL.Path)
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		observability.HTTP().OnResponse(r.Context(), r.Method, r.URL.Path, ww.Status(), time.Since(start))
		h.log.Debug("http request",
			"request_id", middleware.GetReqID(r.Context()),
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start).Round(time.Millisecond),
		)
	})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, status int, code, msg string) {
	observability.HTTP().OnError(r.Context(), r.Method, r.URL.Path, &apiError{code: code, msg: msg})
	h.writeJSON(w, status, map[string]any{
		"error": map[string]any{
			"code":    code,
			"message": msg,
		},
	})
}

type apiError struct {
	code string
	msg  string
}

func (e *apiError) Error() string { return e.code + ": " + e.msg }

func (h *Handler) handleHealthz(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}
