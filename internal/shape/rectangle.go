package shape

import (
	"math"

	"github.com/vertexforge/vertexforge/internal/geometry"
)

// Rectangle keeps four vertices on an axis-aligned rectangle symmetric about
// the local origin. Vertex 0 is the reference corner; the others are the
// reference multiplied by a quadrant sign pattern.
type Rectangle struct {
	base
	length      float64
	width       float64
	firstCorner geometry.Vector2
}

// QuadrantMultiplier returns the sign pattern of corner i.
func QuadrantMultiplier(i int) geometry.Vector2 {
	switch i {
	case 0:
		return geometry.Q1
	case 1:
		return geometry.Q2
	case 2:
		return geometry.Q3
	default:
		return geometry.Q4
	}
}

func NewRectangle(t geometry.Transform, length, width float64) *Rectangle {
	r := &Rectangle{base: newBase(t, "Rectangle"), length: length, width: width}
	l := length / 2
	w := width / 2
	r.vertices = []Vertex{
		NewVertex(geometry.Vec2(l, w), geometry.DefaultShapeColor),
		NewVertex(geometry.Vec2(-l, w), geometry.DefaultShapeColor),
		NewVertex(geometry.Vec2(-l, -w), geometry.DefaultShapeColor),
		NewVertex(geometry.Vec2(l, -w), geometry.DefaultShapeColor),
	}
	return r
}

// RectangleFromCorner begins interactive construction with vertex 0 at p.
func RectangleFromCorner(p geometry.Vector2) *Rectangle {
	r := NewRectangle(geometry.NewTransform(p, 0, 1), 0, 0)
	r.constructing = true
	r.firstCorner = p
	return r
}

// SetNextCorner places vertex 2 at p and vertex 0 at the first corner.
func (r *Rectangle) SetNextCorner(p geometry.Vector2) {
	if !r.constructing {
		return
	}
	middle := geometry.Mix(r.firstCorner, p, 0.5)
	r.transform.Position = middle
	rel := r.firstCorner.Sub(middle)
	r.vertices[2].Position = rel.Neg()
	r.OnVertexEdited(0, rel)
}

func (r *Rectangle) Finalize() {
	r.constructing = false
	r.firstCorner = geometry.Zero
}

func (r *Rectangle) Length() float64 { return r.length }
func (r *Rectangle) Width() float64  { return r.width }

// SetLength rescales the local x extent.
func (r *Rectangle) SetLength(v float64) {
	factor := v / r.length
	for i := range r.vertices {
		r.vertices[i].ScaleX(factor)
	}
	r.length = v
	r.needUpdate = true
}

// SetWidth rescales the local y extent.
func (r *Rectangle) SetWidth(v float64) {
	factor := v / r.width
	for i := range r.vertices {
		r.vertices[i].ScaleY(factor)
	}
	r.width = v
	r.needUpdate = true
}

// OnVertexEdited moves vertex i to pos, derives the reference corner from
// it and rebuilds the other corners. When the reference lands in a quadrant
// where x and y have opposite signs, the odd corners swap sides so the
// outline does not cross itself.
func (r *Rectangle) OnVertexEdited(i int, pos geometry.Vector2) {
	if !r.validIndex(i) {
		return
	}
	r.vertices[i].Position = pos
	ref := geometry.MultiplyEach(pos, QuadrantMultiplier(i))
	r.vertices[0].Position = ref

	inverted := ref.X*ref.Y < 0
	for k := 1; k < 4; k++ {
		conv := QuadrantMultiplier(k)
		if inverted && k%2 == 1 {
			conv = conv.Neg()
		}
		r.vertices[k].Position = geometry.MultiplyEach(ref, conv)
	}

	r.length = math.Abs(ref.X * 2)
	r.width = math.Abs(ref.Y * 2)
	r.needUpdate = true
}

func (r *Rectangle) Kind() Kind         { return KindRectangle }
func (r *Rectangle) Type() string       { return KindRectangle.String() }
func (r *Rectangle) DrawMode() DrawMode { return DrawTriangleFan }

func (r *Rectangle) IsInsideClickArea(p geometry.Vector2) bool {
	return r.quadContains(p)
}
