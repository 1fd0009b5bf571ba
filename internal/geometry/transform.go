package geometry

// Transform places a shape in clip space: local points are scaled, then
// rotated, then translated. Scale is uniform and expected to be positive,
// but that is not enforced.
type Transform struct {
	Position Vector2 `json:"position"`
	Rotation float64 `json:"rotation"`
	Scale    float64 `json:"scale"`
}

// Origin returns the identity transform.
func Origin() Transform {
	return Transform{Position: Zero, Rotation: 0, Scale: 1}
}

// NewTransform builds a transform at position with the given rotation and scale.
func NewTransform(position Vector2, rotation, scale float64) Transform {
	return Transform{Position: position, Rotation: rotation, Scale: scale}
}

// Clone returns a copy of t.
func (t Transform) Clone() Transform {
	return t
}

// Apply maps a local point into the parent space.
func (t Transform) Apply(p Vector2) Vector2 {
	return p.Scale(t.Scale).Rotate(t.Rotation, Zero).Add(t.Position)
}

// Invert maps a parent-space point back into local space. It is the exact
// algebraic inverse of Apply.
func (t Transform) Invert(p Vector2) Vector2 {
	return p.Sub(t.Position).Rotate(-t.Rotation, Zero).Scale(1 / t.Scale)
}

// Compose layers other on top of t: translate by other.Position, rotate by
// other.Rotation, then scale by other.Scale.
func (t Transform) Compose(other Transform) Transform {
	return Transform{
		Position: t.Position.Add(other.Position),
		Rotation: t.Rotation + other.Rotation,
		Scale:    t.Scale * other.Scale,
	}
}

// Matrix returns the affine matrix equivalent to Apply.
func (t Transform) Matrix() Matrix2D {
	return Translate(t.Position.X, t.Position.Y).
		Multiply(Rotate(t.Rotation)).
		Multiply(Scale(t.Scale, t.Scale))
}
