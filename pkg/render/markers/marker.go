package markers

import (
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/stratumviz/stratum/pkg/scenegraph"
)

// Kind identifies the geometric interpretation of a marker.
type Kind string

// Marker kinds understood by downstream renderers.
const (
	KindCube       Kind = "cube"        // one solid box; pose and scale define it
	KindSphere     Kind = "sphere"      // one solid ellipsoid
	KindCubeList   Kind = "cube_list"   // one cube per point
	KindSphereList Kind = "sphere_list" // one sphere per point
	KindLineList   Kind = "line_list"   // consecutive point pairs form segments
	KindText       Kind = "text"        // billboard text at the pose position
	KindDelete     Kind = "delete"      // remove a previously emitted marker
)

// RGBA is a render-space color with components in [0, 1].
type RGBA struct {
	R float64 `json:"r"`
	G float64 `json:"g"`
	B float64 `json:"b"`
	A float64 `json:"a"`
}

// Pose is a marker's local transform. Builders that bake world coordinates
// into per-point data reset this to the identity pose.
type Pose struct {
	Position r3.Vec      `json:"position"`
	Rotation r3.Rotation `json:"rotation"`
}

// Marker is one renderable primitive. ID and Namespace together form a
// stable identity: re-emitting a marker with the same identity replaces the
// previous one in the consumer, and a KindDelete marker removes it.
//
// When Colors is non-nil it is parallel to Points (one color per point; line
// lists carry exactly two entries per segment). Otherwise Color applies
// uniformly.
type Marker struct {
	Kind      Kind     `json:"kind"`
	ID        uint64   `json:"id"`
	Namespace string   `json:"ns"`
	Pose      Pose     `json:"pose"`
	Scale     r3.Vec   `json:"scale"`
	Color     RGBA     `json:"color"`
	Points    []r3.Vec `json:"points,omitempty"`
	Colors    []RGBA   `json:"colors,omitempty"`
	Text      string   `json:"text,omitempty"`
}

// MarkerArray groups markers produced by one build pass.
type MarkerArray struct {
	Markers []Marker `json:"markers"`
}

// Append adds markers to the array, skipping empty geometry: point-bearing
// kinds with no points contribute nothing.
func (a *MarkerArray) Append(ms ...Marker) {
	for _, m := range ms {
		switch m.Kind {
		case KindCubeList, KindSphereList, KindLineList:
			if len(m.Points) == 0 {
				continue
			}
		}
		a.Markers = append(a.Markers, m)
	}
}

// DeleteMarker builds the companion primitive that signals removal of a
// previously emitted marker with the same identity.
func DeleteMarker(id uint64, ns string) Marker {
	return Marker{Kind: KindDelete, ID: id, Namespace: ns}
}

// ColorFunc maps a node to its display color.
type ColorFunc func(*scenegraph.Node) scenegraph.Color

// FilterFunc decides whether a node contributes to a primitive. A nil
// FilterFunc admits every node.
type FilterFunc func(*scenegraph.Node) bool

// EdgeColorFunc resolves the color of one endpoint of an edge segment.
// atSource distinguishes the two per-segment color entries.
type EdgeColorFunc func(source, target *scenegraph.Node, e *scenegraph.Edge, atSource bool) scenegraph.Color
