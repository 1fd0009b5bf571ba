package document

import (
	"github.com/vertexforge/vertexforge/internal/geometry"
)

// Version is the current scene document version.
const Version = 1

// Scene is the persisted form of a whole editor scene.
type Scene struct {
	Version int           `json:"version" yaml:"version"`
	ID      string        `json:"id,omitempty" yaml:"id,omitempty"`
	Name    string        `json:"name" yaml:"name"`
	Shapes  []ShapeRecord `json:"shapes" yaml:"shapes"`
}

// ShapeRecord is the persisted form of one shape. Vertex positions are
// local to the transform.
type ShapeRecord struct {
	ID        string          `json:"id,omitempty" yaml:"id,omitempty"`
	Name      string          `json:"name" yaml:"name"`
	Type      string          `json:"type" yaml:"type"`
	Hidden    bool            `json:"hidden,omitempty" yaml:"hidden,omitempty"`
	Transform TransformRecord `json:"transform" yaml:"transform"`
	Vertices  []VertexRecord  `json:"vertices" yaml:"vertices"`
}

type TransformRecord struct {
	Position [2]float64 `json:"position" yaml:"position,flow"`
	Rotation float64    `json:"rotation" yaml:"rotation"`
	Scale    float64    `json:"scale" yaml:"scale"`
}

type VertexRecord struct {
	Position [2]float64 `json:"position" yaml:"position,flow"`
	Color    [3]float64 `json:"color" yaml:"color,flow"`
}

func transformRecord(t geometry.Transform) TransformRecord {
	return TransformRecord{
		Position: t.Position.Array(),
		Rotation: t.Rotation,
		Scale:    t.Scale,
	}
}

func (r TransformRecord) transform() geometry.Transform {
	return geometry.NewTransform(geometry.Vec2FromArray(r.Position), r.Rotation, r.Scale)
}
