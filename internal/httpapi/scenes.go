package httpapi

import (
	"bytes"
	"io"
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	sceneio "github.com/stratumviz/stratum/pkg/io"
	"github.com/stratumviz/stratum/pkg/scenegraph"
)

// sceneEntry is one uploaded scene held in memory.
type sceneEntry struct {
	id      string
	name    string
	graph   *scenegraph.Graph
	hash    string // content hash of the uploaded bytes
	created time.Time
}

// sceneStore is an in-memory scene registry. Concurrency-safe.
type sceneStore struct {
	mu     sync.RWMutex
	scenes map[string]*sceneEntry
}

func newSceneStore() *sceneStore {
	return &sceneStore{scenes: make(map[string]*sceneEntry)}
}

func (s *sceneStore) put(e *sceneEntry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.scenes[e.id] = e
}

func (s *sceneStore) get(id string) (*sceneEntry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.scenes[id]
	return e, ok
}

func (s *sceneStore) delete(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.scenes[id]; !ok {
		return false
	}
	delete(s.scenes, id)
	return true
}

func (s *sceneStore) list() []*sceneEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*sceneEntry, 0, len(s.scenes))
	for _, e := range s.scenes {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].created.Before(out[j].created) })
	return out
}

// sceneSummary is the wire representation of a stored scene.
type sceneSummary struct {
	ID            string    `json:"id"`
	Name          string    `json:"name,omitempty"`
	Layers        int       `json:"layers"`
	DynamicLayers int       `json:"dynamic_layers"`
	Nodes         int       `json:"nodes"`
	Created       time.Time `json:"created"`
}

func summarize(e *sceneEntry) sceneSummary {
	return sceneSummary{
		ID:            e.id,
		Name:          e.name,
		Layers:        len(e.graph.Layers()),
		DynamicLayers: len(e.graph.DynamicLayers()),
		Nodes:         e.graph.NumNodes(),
		Created:       e.created,
	}
}

func (h *Handler) handleListScenes(w http.ResponseWriter, r *http.Request) {
	entries := h.scenes.list()
	resp := make([]sceneSummary, 0, len(entries))
	for _, e := range entries {
		resp = append(resp, summarize(e))
	}
	h.writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) handleCreateScene(w http.ResponseWriter, r *http.Request) {
	data, err := io.ReadAll(io.LimitReader(r.Body, maxSceneBytes+1))
	if err != nil {
		h.writeError(w, r, http.StatusBadRequest, "read_failed", "failed to read request body")
		return
	}
	if len(data) > maxSceneBytes {
		h.writeError(w, r, http.StatusRequestEntityTooLarge, "scene_too_large", "scene body exceeds size limit")
		return
	}

	g, err := sceneio.ReadJSON(bytes.NewReader(data))
	if err != nil {
		h.writeError(w, r, http.StatusBadRequest, "invalid_scene", err.Error())
		return
	}

	e := &sceneEntry{
		id:      uuid.NewString(),
		name:    r.URL.Query().Get("name"),
		graph:   g,
		hash:    sceneHash(data),
		created: time.Now().UTC(),
	}
	h.scenes.put(e)
	h.log.Info("scene uploaded", "id", e.id, "layers", len(g.Layers()), "nodes", g.NumNodes())

	h.writeJSON(w, http.StatusCreated, summarize(e))
}

func (h *Handler) handleGetScene(w http.ResponseWriter, r *http.Request) {
	e, ok := h.scenes.get(chi.URLParam(r, "id"))
	if !ok {
		h.writeError(w, r, http.StatusNotFound, "scene_not_found", "no scene with that id")
		return
	}
	h.writeJSON(w, http.StatusOK, summarize(e))
}

func (h *Handler) handleDeleteScene(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if !h.scenes.delete(id) {
		h.writeError(w, r, http.StatusNotFound, "scene_not_found", "no scene with that id")
		return
	}
	h.log.Info("scene deleted", "id", id)
	w.WriteHeader(http.StatusNoContent)
}
