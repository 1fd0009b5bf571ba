package shape

import (
	"math"

	"github.com/vertexforge/vertexforge/internal/geometry"
)

// Square keeps its four vertices on a circle around the local origin at 90°
// steps. Size is the side length.
type Square struct {
	base
	size        float64
	firstCorner geometry.Vector2
}

func NewSquare(t geometry.Transform, size float64) *Square {
	s := &Square{base: newBase(t, "Square"), size: size}
	h := size / 2
	s.vertices = []Vertex{
		NewVertex(geometry.Vec2(h, h), geometry.DefaultShapeColor),
		NewVertex(geometry.Vec2(-h, h), geometry.DefaultShapeColor),
		NewVertex(geometry.Vec2(-h, -h), geometry.DefaultShapeColor),
		NewVertex(geometry.Vec2(h, -h), geometry.DefaultShapeColor),
	}
	return s
}

// SquareFromCorner begins interactive construction with vertex 0 at p.
func SquareFromCorner(p geometry.Vector2) *Square {
	s := NewSquare(geometry.NewTransform(p, 0, 1), 0)
	s.constructing = true
	s.firstCorner = p
	return s
}

// SetNextCorner places the corner diagonally opposite the first one.
func (s *Square) SetNextCorner(p geometry.Vector2) {
	if !s.constructing {
		return
	}
	middle := geometry.Mix(s.firstCorner, p, 0.5)
	s.transform.Position = middle
	s.OnVertexEdited(0, s.firstCorner.Sub(middle))
}

func (s *Square) Finalize() {
	s.constructing = false
	s.firstCorner = geometry.Zero
}

func (s *Square) Size() float64 { return s.size }

func (s *Square) SetSize(v float64) {
	factor := v / s.size
	for i := range s.vertices {
		s.vertices[i].Scale(factor)
	}
	s.size = v
	s.needUpdate = true
}

// OnVertexEdited moves vertex i to pos and rebuilds the other three corners
// by successive quarter turns of pos.
func (s *Square) OnVertexEdited(i int, pos geometry.Vector2) {
	if !s.validIndex(i) {
		return
	}
	s.vertices[i].Position = pos
	s.size = pos.Magnitude() * math.Sqrt2
	p := pos
	for k := 1; k < 4; k++ {
		p = p.Rotate(math.Pi/2, geometry.Zero)
		s.vertices[(i+k)%4].Position = p
	}
	s.needUpdate = true
}

func (s *Square) Kind() Kind         { return KindSquare }
func (s *Square) Type() string       { return KindSquare.String() }
func (s *Square) DrawMode() DrawMode { return DrawTriangleFan }

func (s *Square) IsInsideClickArea(p geometry.Vector2) bool {
	return s.quadContains(p)
}
