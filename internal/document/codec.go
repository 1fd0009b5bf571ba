package document

import (
	"encoding/json"
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/vertexforge/vertexforge/internal/geometry"
	"github.com/vertexforge/vertexforge/internal/shape"
)

var (
	ErrUnknownType    = errors.New("unknown shape type")
	ErrTooFewVertices = errors.New("too few vertices")
	ErrInvalidRecord  = errors.New("invalid shape record")
	ErrUnknownFormat  = errors.New("unknown format")
)

// Encode captures a shape as a record. The ID is left to the caller.
func Encode(s shape.Shape) ShapeRecord {
	vertices := s.Vertices()
	rec := ShapeRecord{
		Name:      s.Name(),
		Type:      s.Type(),
		Hidden:    s.Hidden(),
		Transform: transformRecord(s.Transform()),
		Vertices:  make([]VertexRecord, len(vertices)),
	}
	for i, v := range vertices {
		rec.Vertices[i] = VertexRecord{
			Position: v.Position.Array(),
			Color:    v.Color.Array(),
		}
	}
	return rec
}

// Decode rebuilds a shape the way a user would draw it: constrained shapes
// are constructed from their defining vertices in the record's local space,
// colors are reapplied, then the recorded transform is composed on top with
// translate, rotate and scale. Polygons take their vertices as recorded.
func Decode(rec ShapeRecord) (shape.Shape, error) {
	kind, err := shape.ParseKind(rec.Type)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrUnknownType, rec.Type)
	}
	if rec.Transform.Scale <= 0 {
		return nil, fmt.Errorf("%w: scale must be positive", ErrInvalidRecord)
	}
	if want := minVertices(kind); len(rec.Vertices) < want {
		return nil, fmt.Errorf("%w: %s needs %d, got %d", ErrTooFewVertices, kind, want, len(rec.Vertices))
	}

	t := rec.Transform.transform()
	pos := func(i int) geometry.Vector2 { return geometry.Vec2FromArray(rec.Vertices[i].Position) }

	var s shape.Shape
	switch kind {
	case shape.KindLine:
		l := shape.LineFromStart(pos(0))
		l.SetNextPoint(pos(1))
		l.Finalize()
		s = l
	case shape.KindSquare:
		sq := shape.SquareFromCorner(pos(0))
		sq.SetNextCorner(pos(2))
		sq.Finalize()
		s = sq
	case shape.KindRectangle:
		r := shape.RectangleFromCorner(pos(0))
		r.SetNextCorner(pos(2))
		r.Finalize()
		s = r
	case shape.KindPolygon:
		p := shape.NewPolygon(t)
		for i, v := range rec.Vertices {
			p.AddVertex(shape.NewVertex(pos(i), geometry.Vec3FromArray(v.Color)))
		}
		p.SetName(rec.Name)
		p.SetHidden(rec.Hidden)
		return p, nil
	}

	for i := range s.VertexCount() {
		s.SetVertexColor(i, geometry.Vec3FromArray(rec.Vertices[i].Color))
	}

	// Construction leaves the origin on the midpoint of the defining
	// vertices. Moving that point through the recorded transform keeps every
	// vertex where the record put it.
	mid := s.Transform().Position
	s.Translate(t.Apply(mid).Sub(mid))
	s.Rotate(t.Rotation)
	s.ScaleBy(t.Scale)
	s.SetName(rec.Name)
	s.SetHidden(rec.Hidden)
	return s, nil
}

func minVertices(k shape.Kind) int {
	switch k {
	case shape.KindLine:
		return 2
	case shape.KindPolygon:
		return 3
	default:
		return 4
	}
}

// EncodeScene captures the shapes in order under the given ids.
func EncodeScene(id, name string, ids []string, shapes []shape.Shape) Scene {
	scene := Scene{Version: Version, ID: id, Name: name, Shapes: make([]ShapeRecord, len(shapes))}
	for i, s := range shapes {
		scene.Shapes[i] = Encode(s)
		if i < len(ids) {
			scene.Shapes[i].ID = ids[i]
		}
	}
	return scene
}

// Format is a serialization format for records and scenes.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ParseFormat accepts "json", "yaml" and "yml". An empty string means JSON.
func ParseFormat(s string) (Format, error) {
	switch s {
	case "", "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
	}
}

func (f Format) ContentType() string {
	if f == FormatYAML {
		return "application/yaml"
	}
	return "application/json"
}

// Marshal serializes v in the given format.
func Marshal(v any, f Format) ([]byte, error) {
	switch f {
	case FormatJSON:
		return json.MarshalIndent(v, "", "  ")
	case FormatYAML:
		return yaml.Marshal(v)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, f)
	}
}

// ImportShape validates and parses one shape record.
func ImportShape(data []byte, f Format) (ShapeRecord, error) {
	var rec ShapeRecord
	if err := importDocument(data, f, shapeSchema, &rec); err != nil {
		return ShapeRecord{}, err
	}
	return rec, nil
}

// ImportScene validates and parses a scene document.
func ImportScene(data []byte, f Format) (Scene, error) {
	var scene Scene
	if err := importDocument(data, f, sceneSchema, &scene); err != nil {
		return Scene{}, err
	}
	return scene, nil
}

func importDocument(data []byte, f Format, schema schemaFunc, v any) error {
	switch f {
	case FormatJSON:
		if err := validateJSON(schema, data); err != nil {
			return err
		}
		if err := json.Unmarshal(data, v); err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidRecord, err)
		}
	case FormatYAML:
		var raw any
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidRecord, err)
		}
		if err := validateValue(schema, raw); err != nil {
			return err
		}
		if err := yaml.Unmarshal(data, v); err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidRecord, err)
		}
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, f)
	}
	return nil
}
