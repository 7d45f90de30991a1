package scenegraph

import (
	"gonum.org/v1/gonum/num/quat"
	"gonum.org/v1/gonum/spatial/r3"
)

// IdentityRotation returns the rotation that leaves vectors unchanged.
// The zero value of r3.Rotation is a zero quaternion and collapses every
// vector to the origin, so code handling possibly-unset rotations should
// normalize through EffectiveRotation instead of using the field directly.
func IdentityRotation() r3.Rotation {
	return r3.Rotation(quat.Number{Real: 1})
}

// EffectiveRotation returns r, or the identity rotation when r is the zero
// value (e.g. an axis-aligned box deserialized without an orientation).
func EffectiveRotation(r r3.Rotation) r3.Rotation {
	if r == (r3.Rotation{}) {
		return IdentityRotation()
	}
	return r
}

// BoundingBox is an oriented box: a world-frame center, a rotation from box
// frame to world frame, and full extents along each box axis.
type BoundingBox struct {
	Center     r3.Vec
	Rotation   r3.Rotation
	Dimensions r3.Vec
}

// cornerSigns lists the box-local corner signs in perimeter winding order:
// the bottom face counterclockwise (indices 0-3), then the top face
// counterclockwise (indices 4-7). Consumers that need bit-neighbor ordering
// remap this (see the markers package).
var cornerSigns = [8][3]float64{
	{-1, -1, -1},
	{+1, -1, -1},
	{+1, +1, -1},
	{-1, +1, -1},
	{-1, -1, +1},
	{+1, -1, +1},
	{+1, +1, +1},
	{-1, +1, +1},
}

// Corners returns the 8 world-frame corner points in winding order.
func (b BoundingBox) Corners() [8]r3.Vec {
	half := r3.Vec{X: b.Dimensions.X / 2, Y: b.Dimensions.Y / 2, Z: b.Dimensions.Z / 2}
	rot := EffectiveRotation(b.Rotation)
	var out [8]r3.Vec
	for i, s := range cornerSigns {
		local := r3.Vec{X: s[0] * half.X, Y: s[1] * half.Y, Z: s[2] * half.Z}
		out[i] = r3.Add(b.Center, rot.Rotate(local))
	}
	return out
}

// IsZero reports whether the box has no extent on any axis. Nodes with zero
// boxes contribute nothing to box-based primitives.
func (b BoundingBox) IsZero() bool {
	return b.Dimensions.X == 0 && b.Dimensions.Y == 0 && b.Dimensions.Z == 0
}
