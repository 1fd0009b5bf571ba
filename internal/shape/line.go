package shape

import (
	"math"

	"github.com/vertexforge/vertexforge/internal/geometry"
)

// LineClickRange is the clip-space distance within which a point selects a
// line.
const LineClickRange = 0.02

// Line is a two-vertex segment mirrored about its transform position.
type Line struct {
	base
	length     float64
	firstPoint geometry.Vector2
}

// NewLine returns a diagonal line of the given length centered on the
// transform position.
func NewLine(t geometry.Transform, length float64) *Line {
	l := &Line{base: newBase(t, "Line"), length: length}
	half := length / 2 / math.Sqrt2
	l.vertices = []Vertex{
		NewVertex(geometry.Vec2(-half, -half), geometry.DefaultShapeColor),
		NewVertex(geometry.Vec2(half, half), geometry.DefaultShapeColor),
	}
	return l
}

// LineFromStart begins interactive construction with the first endpoint at p.
func LineFromStart(p geometry.Vector2) *Line {
	l := NewLine(geometry.NewTransform(p, 0, 1), 0)
	l.constructing = true
	l.firstPoint = p
	return l
}

// SetNextPoint places the second endpoint while constructing. The transform
// moves to the midpoint and vertex 0 stays on the first endpoint.
func (l *Line) SetNextPoint(p geometry.Vector2) {
	if !l.constructing {
		return
	}
	middle := geometry.Mix(l.firstPoint, p, 0.5)
	l.transform.Position = middle
	rel := l.firstPoint.Sub(middle)
	l.vertices[0].Position = rel
	l.vertices[1].Position = rel.Neg()
	l.length = 2 * rel.Magnitude()
	l.needUpdate = true
}

func (l *Line) Finalize() {
	l.constructing = false
	l.firstPoint = geometry.Zero
}

func (l *Line) Length() float64 { return l.length }

// SetLength rescales both endpoints about the center. A zero current length
// yields non-finite positions.
func (l *Line) SetLength(v float64) {
	factor := v / l.length
	for i := range l.vertices {
		l.vertices[i].Scale(factor)
	}
	l.length = v
	l.needUpdate = true
}

// OnVertexEdited moves one endpoint; the line has no redundant constraint,
// so only the length is recomputed.
func (l *Line) OnVertexEdited(i int, pos geometry.Vector2) {
	if !l.validIndex(i) {
		return
	}
	l.vertices[i].Position = pos
	l.length = geometry.Distance(l.vertices[0].Position, l.vertices[1].Position)
	l.needUpdate = true
}

func (l *Line) Kind() Kind         { return KindLine }
func (l *Line) Type() string       { return KindLine.String() }
func (l *Line) DrawMode() DrawMode { return DrawLineStrip }

func (l *Line) IsInsideClickArea(p geometry.Vector2) bool {
	c := l.globalCorners()
	return p.DistanceToSegment(c[0], c[1]) <= LineClickRange
}
