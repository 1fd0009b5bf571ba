// Package shape implements the editable vector shapes: their vertex model,
// the invariant-preserving edit propagation of the constrained kinds, and
// polygon triangulation, hull and hit testing.
//
// Shapes are not safe for concurrent use. Every mutation goes through a
// method on the owning shape so the cached render data is invalidated in the
// same call.
package shape

import (
	"errors"

	"github.com/vertexforge/vertexforge/internal/geometry"
)

var ErrUnknownKind = errors.New("unknown shape kind")

var (
	_ Shape = (*Line)(nil)
	_ Shape = (*Square)(nil)
	_ Shape = (*Rectangle)(nil)
	_ Shape = (*Polygon)(nil)
)

// Shape is implemented by Line, Square, Rectangle and Polygon.
type Shape interface {
	Kind() Kind
	// Type returns the persisted type name.
	Type() string
	DrawMode() DrawMode
	// IsInsideClickArea reports whether a clip-space point selects the shape.
	IsInsideClickArea(p geometry.Vector2) bool
	// Data returns the flattened vertex records to draw, recomputing them
	// only if the shape changed since the last call.
	Data() []float64

	Vertices() []Vertex
	Vertex(i int) Vertex
	VertexCount() int
	Center() geometry.Vector2

	// OnVertexEdited moves vertex i to the local position pos and lets the
	// shape restore its structural invariant.
	OnVertexEdited(i int, pos geometry.Vector2)
	SetVertexColor(i int, c geometry.Vector3)
	SetVerticesColor(c geometry.Vector3)

	Transform() geometry.Transform
	SetTransform(t geometry.Transform)
	SetPosition(p geometry.Vector2)
	SetRotation(r float64)
	SetScale(s float64)
	Translate(d geometry.Vector2)
	Rotate(angle float64)
	ScaleBy(factor float64)

	MarkDirty()
	NeedsUpdate() bool

	Name() string
	SetName(name string)
	Hidden() bool
	SetHidden(hidden bool)
	Highlighted() bool
	SetHighlighted(highlighted bool)

	// Constructing reports whether the shape is still being drawn
	// interactively.
	Constructing() bool
	Finalize()
}

// SetVertexGlobalCoord moves vertex i of s to the clip-space point p and
// propagates the edit.
func SetVertexGlobalCoord(s Shape, i int, p geometry.Vector2) {
	s.OnVertexEdited(i, s.Transform().Invert(p))
}

// VertexGlobalCoord returns the clip-space position of vertex i of s.
func VertexGlobalCoord(s Shape, i int) geometry.Vector2 {
	return s.Vertex(i).GlobalCoord(s)
}

// base holds the state shared by every shape kind.
type base struct {
	vertices  []Vertex
	transform geometry.Transform

	name        string
	hidden      bool
	highlighted bool

	constructing bool
	needUpdate   bool
	dataCache    []float64
}

func newBase(t geometry.Transform, name string) base {
	return base{transform: t, name: name, needUpdate: true}
}

func (b *base) Data() []float64 {
	if b.needUpdate {
		b.dataCache = flatten(b.vertices, b.transform)
		b.needUpdate = false
	}
	return b.dataCache
}

func flatten(vertices []Vertex, parent geometry.Transform) []float64 {
	data := make([]float64, 0, len(vertices)*VertexSize)
	for _, v := range vertices {
		data = v.appendData(data, parent)
	}
	return data
}

// Vertices returns a copy of the vertex list in outline order.
func (b *base) Vertices() []Vertex {
	out := make([]Vertex, len(b.vertices))
	copy(out, b.vertices)
	return out
}

func (b *base) Vertex(i int) Vertex { return b.vertices[i] }

func (b *base) VertexCount() int { return len(b.vertices) }

// Center returns the mean of the local vertex positions.
func (b *base) Center() geometry.Vector2 {
	if len(b.vertices) == 0 {
		return geometry.Zero
	}
	var sum geometry.Vector2
	for _, v := range b.vertices {
		sum = sum.Add(v.Position)
	}
	return sum.Scale(1 / float64(len(b.vertices)))
}

func (b *base) SetVertexColor(i int, c geometry.Vector3) {
	if i < 0 || i >= len(b.vertices) {
		return
	}
	b.vertices[i].Color = c
	b.needUpdate = true
}

func (b *base) SetVerticesColor(c geometry.Vector3) {
	for i := range b.vertices {
		b.vertices[i].Color = c
	}
	b.needUpdate = true
}

func (b *base) Transform() geometry.Transform { return b.transform }

func (b *base) SetTransform(t geometry.Transform) {
	b.transform = t
	b.needUpdate = true
}

func (b *base) SetPosition(p geometry.Vector2) {
	b.transform.Position = p
	b.needUpdate = true
}

func (b *base) SetRotation(r float64) {
	b.transform.Rotation = r
	b.needUpdate = true
}

func (b *base) SetScale(s float64) {
	b.transform.Scale = s
	b.needUpdate = true
}

func (b *base) Translate(d geometry.Vector2) {
	b.transform.Position = b.transform.Position.Add(d)
	b.needUpdate = true
}

func (b *base) Rotate(angle float64) {
	b.transform.Rotation += angle
	b.needUpdate = true
}

func (b *base) ScaleBy(factor float64) {
	b.transform.Scale *= factor
	b.needUpdate = true
}

func (b *base) MarkDirty() { b.needUpdate = true }

func (b *base) NeedsUpdate() bool { return b.needUpdate }

func (b *base) Name() string { return b.name }

func (b *base) SetName(name string) { b.name = name }

func (b *base) Hidden() bool { return b.hidden }

func (b *base) SetHidden(hidden bool) { b.hidden = hidden }

func (b *base) Highlighted() bool { return b.highlighted }

func (b *base) SetHighlighted(highlighted bool) { b.highlighted = highlighted }

func (b *base) Constructing() bool { return b.constructing }

func (b *base) validIndex(i int) bool {
	return i >= 0 && i < len(b.vertices)
}

// globalCorners returns the clip-space positions of every vertex.
func (b *base) globalCorners() []geometry.Vector2 {
	out := make([]geometry.Vector2, len(b.vertices))
	for i, v := range b.vertices {
		out[i] = b.transform.Apply(v.Position)
	}
	return out
}

// quadContains is the hit test of the four-vertex fan shapes.
func (b *base) quadContains(p geometry.Vector2) bool {
	c := b.globalCorners()
	return IsInTriangle(p, c[0], c[1], c[2]) || IsInTriangle(p, c[0], c[3], c[2])
}
