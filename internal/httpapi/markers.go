package httpapi

import (
	"encoding/json"
	"maps"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/stratumviz/stratum/pkg/cache"
	"github.com/stratumviz/stratum/pkg/config"
	"github.com/stratumviz/stratum/pkg/errors"
	"github.com/stratumviz/stratum/pkg/render/markers"
	"github.com/stratumviz/stratum/pkg/render/markers/sink"
	"github.com/stratumviz/stratum/pkg/render/nodelink"
	"github.com/stratumviz/stratum/pkg/scenegraph"
)

// markerTTL bounds how long cached marker arrays stay valid.
const markerTTL = 24 * time.Hour

// sceneHash returns the cache identity of an uploaded scene body.
func sceneHash(data []byte) string { return cache.Hash(data) }

// sceneConfig clones the base config and fills defaults for the
// scene's layers. The layer maps are copied so concurrent requests do
// not mutate the shared base config.
func (h *Handler) sceneConfig(g *scenegraph.Graph) *config.Config {
	cfg := *h.cfg
	cfg.Layers = maps.Clone(h.cfg.Layers)
	cfg.DynamicLayers = maps.Clone(h.cfg.DynamicLayers)
	var static, dynamic []scenegraph.LayerID
	for _, l := range g.Layers() {
		static = append(static, l.ID())
	}
	for _, l := range g.DynamicLayers() {
		dynamic = append(dynamic, l.ID())
	}
	cfg.EnsureLayers(static, dynamic)
	return &cfg
}

// handleMarkers builds (or recalls) the marker array for a scene and
// returns it as JSON or SVG.
//
// Query parameters:
//   - format: "json" (default) or "svg"
//   - seed:   label jitter seed (default 0)
//   - size:   svg width in pixels (default 800)
func (h *Handler) handleMarkers(w http.ResponseWriter, r *http.Request) {
	e, ok := h.scenes.get(chi.URLParam(r, "id"))
	if !ok {
		h.writeError(w, r, http.StatusNotFound, "scene_not_found", "no scene with that id")
		return
	}

	format := r.URL.Query().Get("format")
	if format == "" {
		format = "json"
	}
	if format != "json" && format != "svg" {
		h.writeError(w, r, http.StatusBadRequest, "invalid_format", "format must be 'json' or 'svg'")
		return
	}

	seed, err := queryUint(r, "seed", 0)
	if err != nil {
		h.writeError(w, r, http.StatusBadRequest, "invalid_seed", "seed must be a non-negative integer")
		return
	}
	size, err := queryFloat(r, "size", 800)
	if err != nil || size <= 0 {
		h.writeError(w, r, http.StatusBadRequest, "invalid_size", "size must be a positive number")
		return
	}

	cfg := h.sceneConfig(e.graph)
	arr := h.buildMarkers(r, e, cfg, seed)

	if ns := r.URL.Query().Get("namespace"); ns != "" {
		if err := errors.ValidateNamespace(ns); err != nil {
			h.writeError(w, r, http.StatusBadRequest, "invalid_namespace", errors.UserMessage(err))
			return
		}
		arr = filterNamespace(arr, ns)
	}

	switch format {
	case "json":
		data, err := sink.RenderJSON(arr, sink.WithJSONSource(e.name), sink.WithJSONSeed(seed))
		if err != nil {
			h.writeError(w, r, http.StatusInternalServerError, "render_failed", err.Error())
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(data)
	case "svg":
		w.Header().Set("Content-Type", "image/svg+xml")
		_, _ = w.Write(sink.RenderSVG(arr, sink.WithSize(size)))
	}
}

// buildMarkers returns the scene's marker array, consulting the cache
// before building.
func (h *Handler) buildMarkers(r *http.Request, e *sceneEntry, cfg *config.Config, seed uint64) markers.MarkerArray {
	ctx := r.Context()
	key := h.keyer.MarkerKey(e.hash, cache.MarkerKeyOpts{ConfigHash: cfg.Hash(), Seed: seed})

	if data, hit, err := h.store.Get(ctx, key); err == nil && hit {
		var arr markers.MarkerArray
		if err := json.Unmarshal(data, &arr); err == nil {
			return arr
		}
	}

	builder := markers.NewBuilder(
		cfg.VisualizerConfig(),
		cfg.LayerConfigs(),
		cfg.DynamicLayerConfigs(),
		cfg.ColormapConfig(),
		markers.WithLabelJitterSeed(int64(seed)),
	)
	arr := builder.BuildAll(ctx, e.graph)

	if data, err := json.Marshal(arr); err == nil {
		if err := h.store.Set(ctx, key, data, markerTTL); err != nil {
			h.log.Debug("marker cache write failed", "err", err)
		}
	}
	return arr
}

// handleOverview renders the node-link diagram for a scene.
//
// Query parameters:
//   - format:   "dot" (default) or "svg"
//   - detailed: include semantic names and labels
//   - dynamic:  include dynamic layers
func (h *Handler) handleOverview(w http.ResponseWriter, r *http.Request) {
	e, ok := h.scenes.get(chi.URLParam(r, "id"))
	if !ok {
		h.writeError(w, r, http.StatusNotFound, "scene_not_found", "no scene with that id")
		return
	}

	format := r.URL.Query().Get("format")
	if format == "" {
		format = "dot"
	}
	if format != "dot" && format != "svg" {
		h.writeError(w, r, http.StatusBadRequest, "invalid_format", "format must be 'dot' or 'svg'")
		return
	}

	dot := nodelink.ToDOT(e.graph, nodelink.Options{
		Detailed:      r.URL.Query().Get("detailed") == "true",
		DynamicLayers: r.URL.Query().Get("dynamic") == "true",
	})

	switch format {
	case "dot":
		w.Header().Set("Content-Type", "text/vnd.graphviz")
		_, _ = w.Write([]byte(dot))
	case "svg":
		svg, err := nodelink.RenderSVG(dot)
		if err != nil {
			h.writeError(w, r, http.StatusInternalServerError, "render_failed", err.Error())
			return
		}
		w.Header().Set("Content-Type", "image/svg+xml")
		_, _ = w.Write(svg)
	}
}

// filterNamespace keeps only the markers in one namespace, e.g.
// "layer_2_nodes". Matching is exact.
func filterNamespace(arr markers.MarkerArray, ns string) markers.MarkerArray {
	var out markers.MarkerArray
	for _, m := range arr.Markers {
		if m.Namespace == ns {
			out.Markers = append(out.Markers, m)
		}
	}
	return out
}

func queryUint(r *http.Request, name string, def uint64) (uint64, error) {
	s := r.URL.Query().Get(name)
	if s == "" {
		return def, nil
	}
	return strconv.ParseUint(s, 10, 64)
}

func queryFloat(r *http.Request, name string, def float64) (float64, error) {
	s := r.URL.Query().Get(name)
	if s == "" {
		return def, nil
	}
	return strconv.ParseFloat(s, 64)
}
