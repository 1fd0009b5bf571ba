package shape

import (
	"math"
	"slices"

	"github.com/vertexforge/vertexforge/internal/geometry"
)

// Subdivide inserts k-1 evenly spaced vertices along every edge, blending
// position and color between the edge endpoints. k below 2 leaves the
// polygon unchanged.
func (p *Polygon) Subdivide(k int) {
	n := len(p.vertices)
	if k < 2 || n == 0 {
		return
	}
	out := make([]Vertex, 0, n*k)
	for i, v := range p.vertices {
		next := p.vertices[(i+1)%n]
		out = append(out, v)
		for j := 1; j < k; j++ {
			f := float64(j) / float64(k)
			out = append(out, NewVertex(
				geometry.Mix(v.Position, next.Position, 1-f),
				geometry.Mix3(v.Color, next.Color, 1-f),
			))
		}
	}
	p.vertices = out
	p.needUpdate = true
}

// DefaultBevelFactor replaces a NaN bevel factor.
const DefaultBevelFactor = 0.2

// Bevel cuts every corner: each vertex is replaced by two vertices moved
// toward its previous and next neighbor by factor/2 of the edge. The factor
// is clamped to [0, 1].
func (p *Polygon) Bevel(factor float64) {
	n := len(p.vertices)
	if n == 0 {
		return
	}
	if math.IsNaN(factor) {
		factor = DefaultBevelFactor
	}
	factor = min(max(factor, 0), 1) / 2

	out := make([]Vertex, 0, 2*n)
	for i, v := range p.vertices {
		prev := p.vertices[(i-1+n)%n]
		next := p.vertices[(i+1)%n]
		out = append(out,
			NewVertex(
				geometry.Mix(v.Position, prev.Position, 1-factor),
				geometry.Mix3(v.Color, prev.Color, 1-factor),
			),
			NewVertex(
				geometry.Mix(v.Position, next.Position, 1-factor),
				geometry.Mix3(v.Color, next.Color, 1-factor),
			),
		)
	}
	p.vertices = out
	p.needUpdate = true
}

// FlipNormal reverses the winding.
func (p *Polygon) FlipNormal() {
	slices.Reverse(p.vertices)
	p.needUpdate = true
}

// Triangulate splits the polygon into independent triangle polygons sharing
// its transform, each re-centered on its own centroid.
func (p *Polygon) Triangulate() []*Polygon {
	tris := p.Triangles()
	out := make([]*Polygon, 0, len(tris)/3)
	for i := 0; i+2 < len(tris); i += 3 {
		t := NewPolygon(p.transform.Clone())
		t.name = p.name
		t.AddVertex(tris[i])
		t.AddVertex(tris[i+1])
		t.AddVertex(tris[i+2])
		t.RepositionOrigin()
		out = append(out, t)
	}
	return out
}
