package shape_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vertexforge/vertexforge/internal/geometry"
	"github.com/vertexforge/vertexforge/internal/shape"
)

func polygonOf(points ...geometry.Vector2) *shape.Polygon {
	p := shape.NewPolygon(geometry.Origin())
	for _, pt := range points {
		p.AddVertex(shape.NewVertex(pt, geometry.DefaultShapeColor))
	}
	return p
}

func shoelace(vertices []shape.Vertex) float64 {
	var sum float64
	for i, v := range vertices {
		next := vertices[(i+1)%len(vertices)]
		sum += geometry.Det(v.Position, next.Position)
	}
	return math.Abs(sum) / 2
}

func triangleArea(tris []shape.Vertex) float64 {
	var sum float64
	for i := 0; i+2 < len(tris); i += 3 {
		sum += shape.DoubleTriangleArea(tris[i].Position, tris[i+1].Position, tris[i+2].Position) / 2
	}
	return sum
}

// lShape is a concave hexagon with one reflex corner at (1, 1).
func lShape() *shape.Polygon {
	return polygonOf(
		geometry.Vec2(0, 0), geometry.Vec2(2, 0), geometry.Vec2(2, 1),
		geometry.Vec2(1, 1), geometry.Vec2(1, 2), geometry.Vec2(0, 2),
	)
}

func TestIsInTriangle(t *testing.T) {
	a, b, c := geometry.Vec2(0, 0), geometry.Vec2(1, 0), geometry.Vec2(0, 1)

	tests := []struct {
		name string
		p    geometry.Vector2
		want bool
	}{
		{"centroid", geometry.Vec2(1.0/3, 1.0/3), true},
		{"on edge", geometry.Vec2(0.5, 0), true},
		{"on hypotenuse", geometry.Vec2(0.5, 0.5), true},
		{"corner", b, false},
		{"outside", geometry.Vec2(1, 1), false},
		{"behind corner", geometry.Vec2(-0.1, -0.1), false},
		{"just below edge", geometry.Vec2(0.5, -1e-9), false},
		{"just past hypotenuse", geometry.Vec2(0.5+1e-9, 0.5), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, shape.IsInTriangle(tt.p, a, b, c))
		})
	}
}

func TestIsInTriangleLargeCoordinates(t *testing.T) {
	a, b, c := geometry.Vec2(1000, 1000), geometry.Vec2(2000, 1000), geometry.Vec2(1000, 2000)

	assert.True(t, shape.IsInTriangle(geometry.Vec2(1500, 1000), a, b, c))
	assert.True(t, shape.IsInTriangle(geometry.Vec2(1300, 1300), a, b, c))
	assert.False(t, shape.IsInTriangle(geometry.Vec2(1500, 1000-1e-6), a, b, c))
	assert.False(t, shape.IsInTriangle(geometry.Vec2(1500+1e-6, 1500), a, b, c))
}

func TestConvexClassification(t *testing.T) {
	convex := shape.Convex(lShape().Vertices(), false)
	assert.Equal(t, []bool{true, true, true, false, true, true}, convex)

	inverted := shape.Convex(lShape().Vertices(), true)
	assert.Equal(t, []bool{false, false, false, true, false, false}, inverted)
}

func TestFindEarSkipsBlockedEars(t *testing.T) {
	vertices := lShape().Vertices()
	// The ear at vertex 0 has the reflex corner on its long edge.
	assert.Equal(t, 1, shape.FindEar(vertices, shape.Convex(vertices, false)))
	assert.Equal(t, -1, shape.FindEar(vertices, make([]bool, len(vertices))))
}

func TestTriangulationCount(t *testing.T) {
	for n := 3; n <= 12; n++ {
		p := shape.RegularPolygon(n, 0.5)
		require.Len(t, p.Triangles(), 3*(n-2), "sides=%d", n)
		assert.Len(t, p.Data(), 3*(n-2)*shape.VertexSize)
		assert.Zero(t, p.ForcedEars())
	}

	assert.Len(t, lShape().Triangles(), 3*4)
	assert.Empty(t, shape.Triangulate(nil))
	assert.Empty(t, polygonOf(geometry.Vec2(0, 0), geometry.Vec2(1, 0)).Triangles())
}

func TestTriangulationAreaConservation(t *testing.T) {
	hexagon := shape.RegularPolygon(6, 1)
	assert.InDelta(t, 3*math.Sqrt(3)/2, shoelace(hexagon.Vertices()), eps)
	assert.InDelta(t, shoelace(hexagon.Vertices()), triangleArea(hexagon.Triangles()), eps)

	l := lShape()
	assert.InDelta(t, 3.0, triangleArea(l.Triangles()), eps)
	assert.Zero(t, l.ForcedEars())
}

func TestTriangulationClockwise(t *testing.T) {
	hexagon := shape.RegularPolygon(6, 1)
	hexagon.FlipNormal()

	assert.Len(t, hexagon.Triangles(), 12)
	assert.InDelta(t, 3*math.Sqrt(3)/2, triangleArea(hexagon.Triangles()), eps)
	assert.Zero(t, hexagon.ForcedEars())
}

func TestTriangulationSelfIntersecting(t *testing.T) {
	bowtie := polygonOf(
		geometry.Vec2(0, 0), geometry.Vec2(1, 1),
		geometry.Vec2(1, 0), geometry.Vec2(0, 1),
	)
	assert.Len(t, bowtie.Triangles(), 6)
}

func TestTriangulationLeavesVerticesUntouched(t *testing.T) {
	l := lShape()
	before := l.Vertices()
	l.Triangles()
	assert.Equal(t, before, l.Vertices())
}

func TestPolygonClickArea(t *testing.T) {
	l := lShape()
	l.SetTransform(geometry.NewTransform(geometry.Vec2(1, 0), math.Pi/2, 0.5))

	// Local (0.3, 1.5) sits in the upper arm, (1.5, 1.5) in the notch.
	assert.True(t, l.IsInsideClickArea(l.Transform().Apply(geometry.Vec2(0.3, 1.5))))
	assert.True(t, l.IsInsideClickArea(l.Transform().Apply(geometry.Vec2(1.5, 0.5))))
	assert.False(t, l.IsInsideClickArea(l.Transform().Apply(geometry.Vec2(1.5, 1.5))))
	assert.False(t, l.IsInsideClickArea(geometry.Vec2(5, 5)))
}

func TestPolygonClickAreaRefreshesAfterEdit(t *testing.T) {
	p := polygonOf(geometry.Vec2(0, 0), geometry.Vec2(1, 0), geometry.Vec2(0, 1))
	require.False(t, p.IsInsideClickArea(geometry.Vec2(1.5, 0.2)))

	p.OnVertexEdited(1, geometry.Vec2(2, 0))
	assert.True(t, p.IsInsideClickArea(geometry.Vec2(1.5, 0.2)))
}

func TestPolygonConstruction(t *testing.T) {
	p := shape.PolygonFromStart(geometry.Vec2(0.1, 0.1))
	require.True(t, p.Constructing())
	require.Equal(t, 2, p.VertexCount())

	p.SetNextPoint(geometry.Vec2(0.5, 0.1))
	p.AddNewPoint()
	p.SetNextPoint(geometry.Vec2(0.3, 0.5))
	p.Finalize()

	require.False(t, p.Constructing())
	require.Equal(t, 3, p.VertexCount())
	requireVec(t, geometry.Vec2(0.3, 0.7/3), p.Transform().Position)
	requireVec(t, geometry.Zero, p.Center())
	requireVec(t, geometry.Vec2(0.1, 0.1), shape.VertexGlobalCoord(p, 0))
	requireVec(t, geometry.Vec2(0.5, 0.1), shape.VertexGlobalCoord(p, 1))
	requireVec(t, geometry.Vec2(0.3, 0.5), shape.VertexGlobalCoord(p, 2))

	p.AddNewPoint()
	assert.Equal(t, 3, p.VertexCount())
}

func TestRepositionOriginKeepsGlobalPositions(t *testing.T) {
	p := lShape()
	p.SetTransform(geometry.NewTransform(geometry.Vec2(-0.3, 0.2), 0.8, 1.7))
	before := make([]geometry.Vector2, p.VertexCount())
	for i := range before {
		before[i] = shape.VertexGlobalCoord(p, i)
	}

	p.RepositionOrigin()

	requireVec(t, geometry.Zero, p.Center())
	for i, want := range before {
		requireVec(t, want, shape.VertexGlobalCoord(p, i))
	}
}

func TestRegularPolygon(t *testing.T) {
	p := shape.RegularPolygon(4, 2)
	require.Equal(t, 4, p.VertexCount())
	requireVec(t, geometry.Vec2(0, 2), p.Vertex(0).Position)
	requireVec(t, geometry.Vec2(-2, 0), p.Vertex(1).Position)
	requireVec(t, geometry.Vec2(0, -2), p.Vertex(2).Position)
	assert.Equal(t, shape.DrawTriangles, p.DrawMode())
}

func TestDeleteVertexAndPivot(t *testing.T) {
	p := polygonOf(
		geometry.Vec2(0, 0), geometry.Vec2(4, 0), geometry.Vec2(4, 4),
		geometry.Vec2(1.9, 1.8), geometry.Vec2(0, 4),
	)
	assert.Equal(t, 3, p.PivotIndex())

	p.DeleteVertex(3)
	assert.Equal(t, 4, p.VertexCount())
	p.DeleteVertex(10)
	p.DeleteVertex(-1)
	assert.Equal(t, 4, p.VertexCount())
}

func TestSubdivide(t *testing.T) {
	p := shape.RegularPolygon(5, 0.2)
	original := p.Vertices()

	p.Subdivide(2)

	require.Equal(t, 10, p.VertexCount())
	for k, v := range original {
		next := original[(k+1)%len(original)]
		requireVec(t, v.Position, p.Vertex(2*k).Position)
		requireVec(t, geometry.Mix(v.Position, next.Position, 0.5), p.Vertex(2*k+1).Position)
	}
}

func TestSubdivideBlendsColor(t *testing.T) {
	p := polygonOf(geometry.Vec2(0, 0), geometry.Vec2(3, 0), geometry.Vec2(0, 3))
	p.SetVertexColor(0, geometry.Black)
	p.SetVertexColor(1, geometry.White)

	p.Subdivide(3)

	require.Equal(t, 9, p.VertexCount())
	requireVec(t, geometry.Vec2(1, 0), p.Vertex(1).Position)
	requireVec(t, geometry.Vec2(2, 0), p.Vertex(2).Position)
	assert.InDelta(t, 1.0/3, p.Vertex(1).Color.X, eps)
	assert.InDelta(t, 2.0/3, p.Vertex(2).Color.X, eps)

	p.Subdivide(1)
	assert.Equal(t, 9, p.VertexCount())
}

func TestBevel(t *testing.T) {
	p := polygonOf(geometry.Vec2(0, 0), geometry.Vec2(4, 0), geometry.Vec2(4, 4), geometry.Vec2(0, 4))
	p.Bevel(0.5)

	require.Equal(t, 8, p.VertexCount())
	requireVec(t, geometry.Vec2(0, 1), p.Vertex(0).Position)
	requireVec(t, geometry.Vec2(1, 0), p.Vertex(1).Position)
	requireVec(t, geometry.Vec2(3, 0), p.Vertex(2).Position)
	requireVec(t, geometry.Vec2(4, 1), p.Vertex(3).Position)
	assert.InDelta(t, 16.0-4*0.5, shoelace(p.Vertices()), eps)

	clamped := polygonOf(geometry.Vec2(0, 0), geometry.Vec2(4, 0), geometry.Vec2(4, 4), geometry.Vec2(0, 4))
	clamped.Bevel(3)
	requireVec(t, geometry.Vec2(0, 2), clamped.Vertex(0).Position)
	requireVec(t, geometry.Vec2(2, 0), clamped.Vertex(1).Position)

	nan := polygonOf(geometry.Vec2(0, 0), geometry.Vec2(4, 0), geometry.Vec2(4, 4), geometry.Vec2(0, 4))
	nan.Bevel(math.NaN())
	require.Equal(t, 8, nan.VertexCount())
	requireVec(t, geometry.Vec2(0, 0.4), nan.Vertex(0).Position)
	requireVec(t, geometry.Vec2(0.4, 0), nan.Vertex(1).Position)
	for _, v := range nan.Vertices() {
		assert.False(t, math.IsNaN(v.Position.X) || math.IsNaN(v.Position.Y))
		assert.False(t, math.IsNaN(v.Color.X))
	}
}

func TestFlipNormal(t *testing.T) {
	p := shape.RegularPolygon(5, 1)
	before := p.Vertices()

	p.FlipNormal()

	for i := range before {
		assert.Equal(t, before[i], p.Vertex(len(before)-1-i))
	}
}

func TestTriangulateIntoPolygons(t *testing.T) {
	hexagon := shape.RegularPolygon(6, 1)
	hexagon.SetTransform(geometry.NewTransform(geometry.Vec2(0.5, -0.5), 0.3, 0.5))
	hexagon.SetName("Hex")

	parts := hexagon.Triangulate()

	require.Len(t, parts, 4)
	var area float64
	for _, part := range parts {
		require.Equal(t, 3, part.VertexCount())
		assert.Equal(t, "Hex", part.Name())
		requireVec(t, geometry.Zero, part.Center())
		assert.InDelta(t, 0.5, part.Transform().Scale, eps)
		area += shoelace(part.Vertices())
	}
	assert.InDelta(t, 3*math.Sqrt(3)/2, area, eps)

	tris := hexagon.Triangles()
	requireVec(t, hexagon.Transform().Apply(tris[0].Position), shape.VertexGlobalCoord(parts[0], 0))
}
