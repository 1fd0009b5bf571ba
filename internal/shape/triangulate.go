package shape

import (
	"math"
	"slices"

	"github.com/vertexforge/vertexforge/internal/geometry"
)

const machineEpsilon = 2.220446049250313e-16

// DoubleTriangleArea returns twice the unsigned area of abc.
func DoubleTriangleArea(a, b, c geometry.Vector2) float64 {
	return math.Abs(a.X*(b.Y-c.Y) + b.X*(c.Y-a.Y) + c.X*(a.Y-b.Y))
}

// IsInTriangle reports whether p lies inside or on the edge of abc by
// comparing the triangle area with the areas of the three sub-triangles
// formed with p. A point coincident with a corner is never inside.
func IsInTriangle(p, a, b, c geometry.Vector2) bool {
	if p.Equals(a) || p.Equals(b) || p.Equals(c) {
		return false
	}
	area := DoubleTriangleArea(a, b, c)
	sum := DoubleTriangleArea(p, a, b) + DoubleTriangleArea(p, b, c) + DoubleTriangleArea(p, c, a)
	return math.Abs(area-sum) <= areaTolerance(p, a, b, c)
}

// areaTolerance bounds the rounding error of the area sums, which grows with
// the square of the coordinate magnitude.
func areaTolerance(pts ...geometry.Vector2) float64 {
	m := 1.0
	for _, q := range pts {
		m = max(m, math.Abs(q.X), math.Abs(q.Y))
	}
	return 256 * machineEpsilon * m * m
}

// IsConvex reports whether b turns left going from a to c.
func IsConvex(a, b, c Vertex) bool {
	return geometry.Det(b.Position.Sub(a.Position), c.Position.Sub(b.Position)) > 0
}

// Convex classifies every vertex of the loop. With inverted set the loop is
// walked in the opposite direction, which suits clockwise input.
func Convex(vertices []Vertex, inverted bool) []bool {
	n := len(vertices)
	out := make([]bool, n)
	for i := range vertices {
		prev := vertices[(i-1+n)%n]
		next := vertices[(i+1)%n]
		if inverted {
			out[i] = IsConvex(next, vertices[i], prev)
		} else {
			out[i] = IsConvex(prev, vertices[i], next)
		}
	}
	return out
}

// FindEar returns the first convex vertex whose neighbor triangle holds no
// other vertex of the loop, or -1.
func FindEar(vertices []Vertex, convex []bool) int {
	n := len(vertices)
	for i := range vertices {
		if !convex[i] {
			continue
		}
		prev := (i - 1 + n) % n
		next := (i + 1) % n
		a := vertices[prev].Position
		pivot := vertices[i].Position
		b := vertices[next].Position

		blocked := false
		for k := range vertices {
			if k == prev || k == i || k == next {
				continue
			}
			if IsInTriangle(vertices[k].Position, a, pivot, b) {
				blocked = true
				break
			}
		}
		if !blocked {
			return i
		}
	}
	return -1
}

// Triangulate splits the loop into len(vertices)-2 triangles by ear clipping
// and returns them as consecutive vertex triples. Loops with fewer than three
// vertices yield nothing.
func Triangulate(vertices []Vertex) []Vertex {
	out, _ := triangulate(vertices)
	return out
}

// triangulate also reports how many ears had to be forced because neither
// winding produced one. Forced ears may be degenerate or overlap.
func triangulate(vertices []Vertex) ([]Vertex, int) {
	if len(vertices) < 3 {
		return nil, 0
	}
	work := slices.Clone(vertices)
	out := make([]Vertex, 0, 3*(len(vertices)-2))
	forced := 0

	convex := Convex(work, false)
	for len(work) > 3 {
		ear := FindEar(work, convex)
		if ear < 0 {
			ear = FindEar(work, Convex(work, true))
		}
		if ear < 0 {
			ear = 0
			forced++
		}

		n := len(work)
		out = append(out, work[(ear-1+n)%n], work[ear], work[(ear+1)%n])
		work = slices.Delete(work, ear, ear+1)
		convex = Convex(work, false)
	}
	return append(out, work[0], work[1], work[2]), forced
}
