package shape

import "fmt"

// Kind enumerates the closed set of shape variants.
type Kind int

const (
	KindLine Kind = iota
	KindSquare
	KindRectangle
	KindPolygon
)

func (k Kind) String() string {
	switch k {
	case KindLine:
		return "line"
	case KindSquare:
		return "square"
	case KindRectangle:
		return "rectangle"
	case KindPolygon:
		return "polygon"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// ParseKind parses the persisted type name of a shape.
func ParseKind(s string) (Kind, error) {
	switch s {
	case "line":
		return KindLine, nil
	case "square":
		return KindSquare, nil
	case "rectangle":
		return KindRectangle, nil
	case "polygon":
		return KindPolygon, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownKind, s)
	}
}

// MarshalText implements encoding.TextMarshaler.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *Kind) UnmarshalText(text []byte) error {
	parsed, err := ParseKind(string(text))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// DrawMode tells a rasterizer how to assemble the records of Shape.Data.
type DrawMode int

const (
	// DrawLineStrip connects consecutive records with line segments.
	DrawLineStrip DrawMode = iota
	// DrawTriangleFan emits triangles sharing the first record.
	DrawTriangleFan
	// DrawTriangles treats every three records as an independent triangle.
	DrawTriangles
	// DrawLineLoop is a closed line strip, used for outlines.
	DrawLineLoop
	// DrawPoints marks every record with a dot.
	DrawPoints
)

func (m DrawMode) String() string {
	switch m {
	case DrawLineStrip:
		return "lineStrip"
	case DrawTriangleFan:
		return "triangleFan"
	case DrawTriangles:
		return "triangles"
	case DrawLineLoop:
		return "lineLoop"
	case DrawPoints:
		return "points"
	default:
		return fmt.Sprintf("DrawMode(%d)", int(m))
	}
}

// MarshalText implements encoding.TextMarshaler.
func (m DrawMode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (m *DrawMode) UnmarshalText(text []byte) error {
	switch string(text) {
	case "lineStrip":
		*m = DrawLineStrip
	case "triangleFan":
		*m = DrawTriangleFan
	case "triangles":
		*m = DrawTriangles
	case "lineLoop":
		*m = DrawLineLoop
	case "points":
		*m = DrawPoints
	default:
		return fmt.Errorf("unknown draw mode %q", text)
	}
	return nil
}
