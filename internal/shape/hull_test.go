package shape_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vertexforge/vertexforge/internal/geometry"
	"github.com/vertexforge/vertexforge/internal/shape"
)

func hullPositions(points ...geometry.Vector2) []geometry.Vector2 {
	vertices := make([]shape.Vertex, len(points))
	for i, p := range points {
		vertices[i] = shape.NewVertex(p, geometry.Black)
	}
	hull := shape.ConvexHull(vertices)
	out := make([]geometry.Vector2, len(hull))
	for i, v := range hull {
		out[i] = v.Position
	}
	return out
}

func TestConvexHull(t *testing.T) {
	tests := []struct {
		name   string
		points []geometry.Vector2
		want   []geometry.Vector2
	}{
		{
			name:   "empty",
			points: nil,
			want:   []geometry.Vector2{},
		},
		{
			name:   "single",
			points: []geometry.Vector2{{X: 0.5, Y: 0.5}},
			want:   []geometry.Vector2{{X: 0.5, Y: 0.5}},
		},
		{
			name:   "duplicates",
			points: []geometry.Vector2{{X: 1, Y: 1}, {X: 1, Y: 1}, {X: 1, Y: 1}},
			want:   []geometry.Vector2{{X: 1, Y: 1}},
		},
		{
			name:   "horizontal collinear",
			points: []geometry.Vector2{{X: 1, Y: 0}, {X: 0, Y: 0}, {X: 2, Y: 0}},
			want:   []geometry.Vector2{{X: 0, Y: 0}, {X: 2, Y: 0}},
		},
		{
			name:   "vertical",
			points: []geometry.Vector2{{X: 0, Y: 1}, {X: 0, Y: 2}, {X: 0, Y: 0}},
			want:   []geometry.Vector2{{X: 0, Y: 0}, {X: 0, Y: 2}},
		},
		{
			name: "square with interior and edge points",
			points: []geometry.Vector2{
				{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 1, Y: 1}, {X: 0, Y: 1},
				{X: 0.5, Y: 0.5}, {X: 0.5, Y: 0}, {X: 0, Y: 0},
			},
			want: []geometry.Vector2{{X: 0, Y: 0}, {X: 0, Y: 1}, {X: 1, Y: 1}, {X: 1, Y: 0}},
		},
		{
			name: "diamond",
			points: []geometry.Vector2{
				{X: 0, Y: -2}, {X: 2, Y: 0}, {X: 0, Y: 2}, {X: -2, Y: 0},
				{X: 0.1, Y: 0.1}, {X: -1, Y: 0.5},
			},
			want: []geometry.Vector2{{X: -2, Y: 0}, {X: 0, Y: 2}, {X: 2, Y: 0}, {X: 0, Y: -2}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := hullPositions(tt.points...)
			require.Len(t, got, len(tt.want))
			for i := range tt.want {
				assert.Equal(t, tt.want[i], got[i])
			}
		})
	}
}

func TestConvexHullOfRegularPolygon(t *testing.T) {
	p := shape.RegularPolygon(8, 1)
	p.AddVertex(shape.NewVertex(geometry.Vec2(0.2, -0.1), geometry.Black))

	hull := shape.ConvexHull(p.Vertices())

	assert.Len(t, hull, 8)
	for _, v := range hull {
		assert.InDelta(t, 1.0, v.Position.Magnitude(), eps)
	}
}
