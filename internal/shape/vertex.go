package shape

import (
	"math"

	"github.com/vertexforge/vertexforge/internal/geometry"
)

// Layout of one vertex record in Shape.Data.
const (
	PositionSize = 2
	ColorSize    = 3
	factorSize   = 1

	ParentPositionIndex = PositionSize + ColorSize
	ParentRotationIndex = ParentPositionIndex + PositionSize
	ParentScaleIndex    = ParentRotationIndex + factorSize

	// VertexSize is the number of floats per vertex record:
	// x, y, r, g, b, parentX, parentY, parentRotation, parentScale.
	VertexSize = ParentScaleIndex + factorSize
)

// Vertex is a shape-local point with a color. It keeps no reference to the
// shape that owns it; parent-relative queries take the owner explicitly.
type Vertex struct {
	Position geometry.Vector2
	Color    geometry.Vector3
}

// NewVertex returns a vertex at position with the given color.
func NewVertex(position geometry.Vector2, color geometry.Vector3) Vertex {
	return Vertex{Position: position, Color: color}
}

// ParentTransform returns the owner's transform, or the identity when the
// vertex is not owned.
func (v Vertex) ParentTransform(owner Shape) geometry.Transform {
	if owner == nil {
		return geometry.Origin()
	}
	return owner.Transform()
}

// GlobalCoord returns the vertex position in clip space.
func (v Vertex) GlobalCoord(owner Shape) geometry.Vector2 {
	return v.ParentTransform(owner).Apply(v.Position)
}

// SetGlobalCoord moves the vertex so that GlobalCoord(owner) == p.
// This only moves the vertex itself; use Shape.SetVertexGlobalCoord to let
// the owning shape restore its structural invariant.
func (v *Vertex) SetGlobalCoord(owner Shape, p geometry.Vector2) {
	v.Position = v.ParentTransform(owner).Invert(p)
}

// Data returns the vertex record for a renderer.
func (v Vertex) Data(owner Shape) []float64 {
	return v.appendData(make([]float64, 0, VertexSize), v.ParentTransform(owner))
}

func (v Vertex) appendData(dst []float64, parent geometry.Transform) []float64 {
	return append(dst,
		v.Position.X, v.Position.Y,
		v.Color.X, v.Color.Y, v.Color.Z,
		parent.Position.X, parent.Position.Y,
		parent.Rotation,
		parent.Scale,
	)
}

// DistanceToLine returns the perpendicular distance from the vertex to the
// infinite line through a and b, in local space.
func (v Vertex) DistanceToLine(a, b Vertex) float64 {
	p0 := v.Position
	p1 := a.Position
	p2 := b.Position
	num := math.Abs((p2.X-p1.X)*(p1.Y-p0.Y) - (p1.X-p0.X)*(p2.Y-p1.Y))
	return num / p2.Sub(p1).Magnitude()
}

// Scale scales the local position.
func (v *Vertex) Scale(f float64) { v.Position = v.Position.Scale(f) }

// ScaleX scales the local x coordinate.
func (v *Vertex) ScaleX(f float64) { v.Position = v.Position.ScaleX(f) }

// ScaleY scales the local y coordinate.
func (v *Vertex) ScaleY(f float64) { v.Position = v.Position.ScaleY(f) }

// Rotate rotates the local position around origin.
func (v *Vertex) Rotate(angle float64, origin geometry.Vector2) {
	v.Position = v.Position.Rotate(angle, origin)
}
