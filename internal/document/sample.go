package document

import (
	"math"

	"github.com/vertexforge/vertexforge/internal/geometry"
	"github.com/vertexforge/vertexforge/internal/shape"
	"github.com/vertexforge/vertexforge/internal/typeid"
)

// NewSampleScene returns a scene with one shape of every kind.
func NewSampleScene(sceneID string) Scene {
	line := shape.NewLine(geometry.NewTransform(geometry.Vec2(-0.5, 0.5), 0, 1), 0.4)
	line.SetVertexColor(0, geometry.Red)
	line.SetVertexColor(1, geometry.Blue)

	square := shape.NewSquare(geometry.NewTransform(geometry.Vec2(0.5, 0.5), math.Pi/8, 1), 0.3)
	square.SetVerticesColor(geometry.RGB(0x2e, 0x86, 0xab))

	rect := shape.NewRectangle(geometry.NewTransform(geometry.Vec2(-0.5, -0.5), 0, 1), 0.4, 0.15)
	rect.SetVerticesColor(geometry.RGB(0xf2, 0x8f, 0x3b))

	pentagon := shape.RegularPolygon(5, 0.2)
	pentagon.SetPosition(geometry.Vec2(0.5, -0.5))
	for i := range pentagon.VertexCount() {
		pentagon.SetVertexColor(i, geometry.Mix3(geometry.Green, geometry.White, float64(i)/4))
	}

	shapes := []shape.Shape{line, square, rect, pentagon}
	ids := make([]string, len(shapes))
	for i := range ids {
		ids[i] = typeid.NewShapeID()
	}
	return EncodeScene(sceneID, "Sample", ids, shapes)
}
