package markers

import (
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/stratumviz/stratum/pkg/scenegraph"
)

// cornerRemap reorders a box's winding-order corners into bit order: bit 0
// selects +x, bit 1 +y, bit 2 +z in the box frame. Under this ordering,
// corner c and c^(1<<axis) differ on exactly one axis (a cuboid edge, never
// a diagonal), and indices 4-7 are always the top face regardless of box
// rotation. The permutation is an involution.
var cornerRemap = [8]int{0, 1, 3, 2, 4, 5, 7, 6}

// cornersOf returns the box corners in bit order.
func cornersOf(b scenegraph.BoundingBox) [8]r3.Vec {
	natural := b.Corners()
	var out [8]r3.Vec
	for i, j := range cornerRemap {
		out[i] = natural[j]
	}
	return out
}

// identityPose resets a marker's local transform; builders baking world
// coordinates into per-point data use it so the consumer applies no further
// transform.
func identityPose() Pose {
	return Pose{Rotation: scenegraph.IdentityRotation()}
}

// withZ returns p displaced along Z.
func withZ(p r3.Vec, dz float64) r3.Vec {
	p.Z += dz
	return p
}

// wireframeSegments appends the 12 cuboid edges of bit-ordered corners to
// the marker, as one-bit perturbations of each corner index.
func wireframeSegments(m *Marker, corners [8]r3.Vec, color RGBA) {
	for c := 0; c < 8; c++ {
		for _, neighbor := range [3]int{c | 0x01, c | 0x02, c | 0x04} {
			if neighbor == c {
				continue
			}
			m.Points = append(m.Points, corners[c], corners[neighbor])
			m.Colors = append(m.Colors, color, color)
		}
	}
}

// strutSegments appends lines from the break point to the box's four
// top-face corners (bit indices 4-7).
func strutSegments(m *Marker, corners [8]r3.Vec, breakPoint r3.Vec, color RGBA) {
	for i := 4; i < 8; i++ {
		m.Points = append(m.Points, breakPoint, corners[i])
		m.Colors = append(m.Colors, color, color)
	}
}
