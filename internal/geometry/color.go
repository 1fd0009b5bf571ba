package geometry

import (
	"fmt"
	"strconv"
	"strings"
)

// Vector3 is an RGB color with components in [0, 1].
type Vector3 struct {
	X float64 `json:"r"`
	Y float64 `json:"g"`
	Z float64 `json:"b"`
}

// Vec3 is a convenience constructor.
func Vec3(x, y, z float64) Vector3 {
	return Vector3{X: x, Y: y, Z: z}
}

// Data returns the color as a three element slice.
func (c Vector3) Data() []float64 {
	return []float64{c.X, c.Y, c.Z}
}

// Array returns the color as a fixed array, the persisted form.
func (c Vector3) Array() [3]float64 {
	return [3]float64{c.X, c.Y, c.Z}
}

// Vec3FromArray is the inverse of Array.
func Vec3FromArray(a [3]float64) Vector3 {
	return Vector3{X: a[0], Y: a[1], Z: a[2]}
}

// Mix3 interpolates between two colors with the same weighting rule as Mix.
func Mix3(a, b Vector3, factor float64) Vector3 {
	factor = clamp01(factor)
	return Vector3{
		X: a.X*factor + b.X*(1-factor),
		Y: a.Y*factor + b.Y*(1-factor),
		Z: a.Z*factor + b.Z*(1-factor),
	}
}

// Named colors.
var (
	Black = Vector3{0, 0, 0}
	White = Vector3{1, 1, 1}
	Red   = Vector3{1, 0, 0}
	Green = Vector3{0, 1, 0}
	Blue  = Vector3{0, 0, 1}

	// DefaultShapeColor is applied to every vertex created by a constructor.
	DefaultShapeColor = RGB(64, 64, 64)
	// Highlight is the outline color of a selected shape.
	Highlight = Vector3{1, 0.568, 0}
)

// RGB builds a color from 8-bit channels.
func RGB(r, g, b uint8) Vector3 {
	return Vector3{float64(r) / 255, float64(g) / 255, float64(b) / 255}
}

// ParseHex parses a "#rrggbb" color.
func ParseHex(s string) (Vector3, error) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(s) != 6 {
		return Vector3{}, fmt.Errorf("invalid hex color %q", s)
	}
	var ch [3]uint8
	for i := range ch {
		n, err := strconv.ParseUint(s[2*i:2*i+2], 16, 8)
		if err != nil {
			return Vector3{}, fmt.Errorf("invalid hex color %q: %w", s, err)
		}
		ch[i] = uint8(n)
	}
	return RGB(ch[0], ch[1], ch[2]), nil
}

// Hex formats the color as "#rrggbb".
func (c Vector3) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", channel(c.X), channel(c.Y), channel(c.Z))
}

func channel(f float64) uint8 {
	return uint8(clamp01(f)*255 + 0.5)
}
