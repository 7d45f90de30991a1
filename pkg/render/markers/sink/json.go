package sink

import (
	"encoding/json"

	"github.com/stratumviz/stratum/pkg/render/markers"
)

// JSONOption configures JSON rendering via [RenderJSON].
type JSONOption func(*jsonRenderer)

type jsonRenderer struct {
	source  string
	seed    uint64
	seeded  bool
	compact bool
}

// WithJSONSource records the name of the scene the markers were built from,
// for consumers that multiplex several scenes over one stream.
func WithJSONSource(name string) JSONOption { return func(r *jsonRenderer) { r.source = name } }

// WithJSONSeed records the label-jitter seed in the output, enabling
// reproducible re-rendering with the same visual jitter.
func WithJSONSeed(seed uint64) JSONOption {
	return func(r *jsonRenderer) { r.seed = seed; r.seeded = true }
}

// WithJSONCompact emits single-line JSON instead of the default
// pretty-printed form. Use this for streaming or cache storage.
func WithJSONCompact() JSONOption { return func(r *jsonRenderer) { r.compact = true } }

type jsonOutput struct {
	Source     string           `json:"source,omitempty"`
	Seed       uint64           `json:"seed,omitempty"`
	Randomize  bool             `json:"randomize,omitempty"`
	Namespaces map[string]int   `json:"namespaces,omitempty"`
	Markers    []markers.Marker `json:"markers"`
}

// RenderJSON exports the marker array as a JSON document. The output carries
// every marker verbatim plus a namespace summary (marker count per
// namespace) so consumers can subscribe to slices of the scene without
// scanning the full array.
//
// RenderJSON returns an error only if marshaling fails. It does not modify
// arr and is safe to call concurrently.
func RenderJSON(arr markers.MarkerArray, opts ...JSONOption) ([]byte, error) {
	r := jsonRenderer{}
	for _, opt := range opts {
		opt(&r)
	}

	out := jsonOutput{
		Source:    r.source,
		Seed:      r.seed,
		Randomize: r.seeded,
		Markers:   arr.Markers,
	}
	if out.Markers == nil {
		out.Markers = []markers.Marker{}
	}
	if len(arr.Markers) > 0 {
		out.Namespaces = make(map[string]int)
		for _, m := range arr.Markers {
			out.Namespaces[m.Namespace]++
		}
	}

	if r.compact {
		return json.Marshal(out)
	}
	return json.MarshalIndent(out, "", "  ")
}
