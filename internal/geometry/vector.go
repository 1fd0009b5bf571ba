package geometry

import "math"

// Vector2 is a 2D point or displacement in shape-local or clip space.
type Vector2 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Quadrant sign patterns. Rectangle corners are expressed as one reference
// corner multiplied component-wise by one of these.
var (
	Q1 = Vector2{1, 1}
	Q2 = Vector2{-1, 1}
	Q3 = Vector2{-1, -1}
	Q4 = Vector2{1, -1}
)

// Zero is the origin.
var Zero = Vector2{}

// Vec2 is a convenience constructor.
func Vec2(x, y float64) Vector2 {
	return Vector2{X: x, Y: y}
}

// Add returns the sum of two vectors.
func (v Vector2) Add(o Vector2) Vector2 {
	return Vector2{X: v.X + o.X, Y: v.Y + o.Y}
}

// Sub returns the difference of two vectors.
func (v Vector2) Sub(o Vector2) Vector2 {
	return Vector2{X: v.X - o.X, Y: v.Y - o.Y}
}

// Neg returns the vector mirrored through the origin.
func (v Vector2) Neg() Vector2 {
	return Vector2{X: -v.X, Y: -v.Y}
}

// Scale scales both components uniformly.
func (v Vector2) Scale(f float64) Vector2 {
	return Vector2{X: v.X * f, Y: v.Y * f}
}

// ScaleXY scales each axis independently.
func (v Vector2) ScaleXY(fx, fy float64) Vector2 {
	return Vector2{X: v.X * fx, Y: v.Y * fy}
}

// ScaleX scales the x component only.
func (v Vector2) ScaleX(f float64) Vector2 {
	return Vector2{X: v.X * f, Y: v.Y}
}

// ScaleY scales the y component only.
func (v Vector2) ScaleY(f float64) Vector2 {
	return Vector2{X: v.X, Y: v.Y * f}
}

// MultiplyEach returns the component-wise product of a and b.
func MultiplyEach(a, b Vector2) Vector2 {
	return Vector2{X: a.X * b.X, Y: a.Y * b.Y}
}

// Rotate returns v rotated by angle radians (counter-clockwise) around origin.
func (v Vector2) Rotate(angle float64, origin Vector2) Vector2 {
	d := v.Sub(origin)
	c := math.Cos(angle)
	s := math.Sin(angle)
	return Vector2{
		X: origin.X + c*d.X - s*d.Y,
		Y: origin.Y + s*d.X + c*d.Y,
	}
}

// Magnitude returns the Euclidean length of v.
func (v Vector2) Magnitude() float64 {
	return math.Sqrt(v.X*v.X + v.Y*v.Y)
}

// Arc returns the polar angle of v in radians.
func (v Vector2) Arc() float64 {
	return math.Atan2(v.Y, v.X)
}

// Slope returns y/x. Vertical vectors yield ±Inf or NaN.
func (v Vector2) Slope() float64 {
	return v.Y / v.X
}

// Equals reports exact component equality.
func (v Vector2) Equals(o Vector2) bool {
	return v.X == o.X && v.Y == o.Y
}

// ApproxEquals reports whether both components differ by less than eps.
func (v Vector2) ApproxEquals(o Vector2, eps float64) bool {
	return math.Abs(v.X-o.X) < eps && math.Abs(v.Y-o.Y) < eps
}

// Data returns the vector as a two element slice.
func (v Vector2) Data() []float64 {
	return []float64{v.X, v.Y}
}

// Array returns the vector as a fixed array, the persisted form.
func (v Vector2) Array() [2]float64 {
	return [2]float64{v.X, v.Y}
}

// Vec2FromArray is the inverse of Array.
func Vec2FromArray(a [2]float64) Vector2 {
	return Vector2{X: a[0], Y: a[1]}
}

// Mix interpolates between a and b. The factor is clamped to [0, 1] and
// weights a, so Mix(a, b, 1) == a and Mix(a, b, 0) == b.
func Mix(a, b Vector2, factor float64) Vector2 {
	factor = clamp01(factor)
	return Vector2{
		X: a.X*factor + b.X*(1-factor),
		Y: a.Y*factor + b.Y*(1-factor),
	}
}

// Det returns the 2D cross product a × b.
func Det(a, b Vector2) float64 {
	return a.X*b.Y - b.X*a.Y
}

// SquaredDistance returns |a-b|².
func SquaredDistance(a, b Vector2) float64 {
	dx := a.X - b.X
	dy := a.Y - b.Y
	return dx*dx + dy*dy
}

// Distance returns |a-b|.
func Distance(a, b Vector2) float64 {
	return math.Sqrt(SquaredDistance(a, b))
}

// DistanceTo returns the distance from v to p.
func (v Vector2) DistanceTo(p Vector2) float64 {
	return Distance(v, p)
}

// DistanceToSegment returns the perpendicular distance from v to the segment
// p1-p2 when the foot of the perpendicular lies between the two endpoints,
// and the distance to the nearest endpoint otherwise.
func (v Vector2) DistanceToSegment(p1, p2 Vector2) float64 {
	d := p2.Sub(p1)
	length := d.Magnitude()
	if length == 0 {
		return Distance(v, p1)
	}

	var inBand bool
	if p1.Y == p2.Y {
		inBand = InRange(v.X, p1.X, p2.X)
	} else {
		u := v.Sub(p1)
		t := (u.X*d.X + u.Y*d.Y) / (length * length)
		inBand = t >= 0 && t <= 1
	}
	if !inBand {
		return math.Min(Distance(v, p1), Distance(v, p2))
	}

	num := math.Abs(d.X*(p1.Y-v.Y) - (p1.X-v.X)*d.Y)
	return num / length
}

// InRange reports whether a lies between the two bounds, in either order.
func InRange(a, bound1, bound2 float64) bool {
	return (bound1 <= a && a <= bound2) || (bound2 <= a && a <= bound1)
}

// Between reports whether v lies inside the axis-aligned box spanned by the
// two corners, given in any order.
func Between(v, bound1, bound2 Vector2) bool {
	return InRange(v.X, bound1.X, bound2.X) && InRange(v.Y, bound1.Y, bound2.Y)
}

func clamp01(f float64) float64 {
	if f < 0 {
		return 0
	}
	if f > 1 {
		return 1
	}
	return f
}
