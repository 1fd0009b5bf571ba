package shape

import (
	"math"

	"github.com/vertexforge/vertexforge/internal/geometry"
)

// Polygon is a free-form vertex loop drawn as its ear-clipped triangulation.
type Polygon struct {
	base
	triangles []Vertex
	forced    int
}

func NewPolygon(t geometry.Transform) *Polygon {
	return &Polygon{base: newBase(t, "Polygon")}
}

// RegularPolygon returns a polygon with the given number of sides inscribed
// in a circle of radius around the origin, the first vertex on top and the
// rest counter-clockwise.
func RegularPolygon(sides int, radius float64) *Polygon {
	p := NewPolygon(geometry.Origin())
	if sides <= 0 {
		return p
	}
	angle := 2 * math.Pi / float64(sides)
	pos := geometry.Vec2(0, radius)
	for range sides {
		p.AddVertex(NewVertex(pos, geometry.DefaultShapeColor))
		pos = pos.Rotate(angle, geometry.Zero)
	}
	return p
}

// PolygonFromStart begins interactive construction at p with two coincident
// vertices: the committed first point and the point being dragged.
func PolygonFromStart(p geometry.Vector2) *Polygon {
	poly := NewPolygon(geometry.NewTransform(p, 0, 1))
	poly.AddVertex(NewVertex(geometry.Zero, geometry.DefaultShapeColor))
	poly.AddVertex(NewVertex(geometry.Zero, geometry.DefaultShapeColor))
	poly.constructing = true
	return poly
}

// SetNextPoint moves the vertex being dragged to the clip-space point p.
func (p *Polygon) SetNextPoint(pos geometry.Vector2) {
	if !p.constructing || len(p.vertices) == 0 {
		return
	}
	p.vertices[len(p.vertices)-1].Position = p.transform.Invert(pos)
	p.needUpdate = true
}

// AddNewPoint commits the dragged vertex and starts a new one on top of it.
func (p *Polygon) AddNewPoint() {
	if !p.constructing || len(p.vertices) == 0 {
		return
	}
	last := p.vertices[len(p.vertices)-1]
	p.AddVertex(NewVertex(last.Position, geometry.DefaultShapeColor))
}

// Finalize ends construction and moves the origin to the vertex centroid.
func (p *Polygon) Finalize() {
	p.constructing = false
	p.RepositionOrigin()
}

// RepositionOrigin moves the transform position to the vertex centroid
// without moving any vertex in clip space.
func (p *Polygon) RepositionOrigin() {
	c := p.Center()
	p.transform.Position = p.transform.Apply(c)
	for i := range p.vertices {
		p.vertices[i].Position = p.vertices[i].Position.Sub(c)
	}
	p.needUpdate = true
}

func (p *Polygon) AddVertex(v Vertex) {
	p.vertices = append(p.vertices, v)
	p.needUpdate = true
}

// DeleteVertex removes vertex i. Out of range indexes are ignored.
func (p *Polygon) DeleteVertex(i int) {
	if !p.validIndex(i) {
		return
	}
	p.vertices = append(p.vertices[:i], p.vertices[i+1:]...)
	p.needUpdate = true
}

// PivotIndex returns the index of the vertex closest to the centroid.
func (p *Polygon) PivotIndex() int {
	c := p.Center()
	index := 0
	best := math.Inf(1)
	for i, v := range p.vertices {
		if d := geometry.SquaredDistance(v.Position, c); d < best {
			best, index = d, i
		}
	}
	return index
}

func (p *Polygon) OnVertexEdited(i int, pos geometry.Vector2) {
	if !p.validIndex(i) {
		return
	}
	p.vertices[i].Position = pos
	p.needUpdate = true
}

// Data returns the records of the triangulated mesh, three per triangle.
func (p *Polygon) Data() []float64 {
	p.refresh()
	return p.dataCache
}

// Triangles returns the cached triangulation in local coordinates.
func (p *Polygon) Triangles() []Vertex {
	p.refresh()
	return p.triangles
}

// ForcedEars reports how many triangles of the current triangulation were
// emitted without a valid ear.
func (p *Polygon) ForcedEars() int {
	p.refresh()
	return p.forced
}

func (p *Polygon) refresh() {
	if !p.needUpdate {
		return
	}
	p.triangles, p.forced = triangulate(p.vertices)
	p.dataCache = flatten(p.triangles, p.transform)
	p.needUpdate = false
}

func (p *Polygon) Kind() Kind         { return KindPolygon }
func (p *Polygon) Type() string       { return KindPolygon.String() }
func (p *Polygon) DrawMode() DrawMode { return DrawTriangles }

// IsInsideClickArea tests the clip-space point against every cached
// triangle.
func (p *Polygon) IsInsideClickArea(pt geometry.Vector2) bool {
	tris := p.Triangles()
	for i := 0; i+2 < len(tris); i += 3 {
		a := p.transform.Apply(tris[i].Position)
		b := p.transform.Apply(tris[i+1].Position)
		c := p.transform.Apply(tris[i+2].Position)
		if IsInTriangle(pt, a, b, c) {
			return true
		}
	}
	return false
}
