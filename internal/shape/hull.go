package shape

import "github.com/vertexforge/vertexforge/internal/geometry"

// ConvexHull returns the convex hull of the vertices' local positions,
// starting at the leftmost vertex, along the upper chain to the rightmost
// vertex and back along the lower chain. Collinear and duplicate points are
// dropped. When every point shares one x coordinate the two vertical
// extremes are returned.
func ConvexHull(vertices []Vertex) []Vertex {
	if len(vertices) == 0 {
		return nil
	}

	left, right := 0, 0
	for i, v := range vertices {
		p := v.Position
		l := vertices[left].Position
		r := vertices[right].Position
		if p.X < l.X || (p.X == l.X && p.Y < l.Y) {
			left = i
		}
		if p.X > r.X || (p.X == r.X && p.Y > r.Y) {
			right = i
		}
	}
	a, b := vertices[left], vertices[right]
	if left == right || a.Position.Equals(b.Position) {
		return []Vertex{a}
	}
	if a.Position.X == b.Position.X {
		return []Vertex{a, b}
	}

	rest := make([]Vertex, 0, len(vertices)-2)
	for i, v := range vertices {
		if i != left && i != right {
			rest = append(rest, v)
		}
	}

	hull := []Vertex{a}
	hull = append(hull, hullChain(outside(rest, a, b, true), a, b, true)...)
	hull = append(hull, b)
	hull = append(hull, hullChain(outside(rest, a, b, false), a, b, false)...)
	return hull
}

// hullChain finds the hull vertices beyond the base line a→b. Upper chains
// come out left to right, lower chains right to left.
func hullChain(points []Vertex, a, b Vertex, upper bool) []Vertex {
	if len(points) <= 1 {
		return points
	}

	far := 0
	farDist := -1.0
	for i, v := range points {
		if d := v.DistanceToLine(a, b); d > farDist {
			far, farDist = i, d
		}
	}
	f := points[far]
	remaining := make([]Vertex, 0, len(points)-1)
	remaining = append(remaining, points[:far]...)
	remaining = append(remaining, points[far+1:]...)

	var first, second []Vertex
	if a.Position.X != f.Position.X {
		first = hullChain(outside(remaining, a, f, upper), a, f, upper)
	}
	if f.Position.X != b.Position.X {
		second = hullChain(outside(remaining, f, b, upper), f, b, upper)
	}

	out := make([]Vertex, 0, len(first)+len(second)+1)
	if upper {
		out = append(out, first...)
		out = append(out, f)
		return append(out, second...)
	}
	out = append(out, second...)
	out = append(out, f)
	return append(out, first...)
}

// outside keeps the points strictly left of a→b (upper) or strictly right of
// it (lower).
func outside(points []Vertex, a, b Vertex, upper bool) []Vertex {
	dir := b.Position.Sub(a.Position)
	var out []Vertex
	for _, v := range points {
		side := geometry.Det(dir, v.Position.Sub(a.Position))
		if (upper && side > 0) || (!upper && side < 0) {
			out = append(out, v)
		}
	}
	return out
}
