package engine

import (
	"encoding/json"
	"fmt"
	"slices"

	"github.com/vertexforge/vertexforge/internal/geometry"
	"github.com/vertexforge/vertexforge/internal/shape"
)

// Draw command operations.
const (
	OpFill    = "fill"    // the shape's own records in its draw mode
	OpOutline = "outline" // a closed loop through the vertices
	OpPoints  = "points"  // a dot on every vertex
	OpOrigin  = "origin"  // the transform origin cursor
)

const (
	// PointRadius is the clip-space radius of a vertex dot.
	PointRadius = 0.005
	// OriginCursorRadius is the arm length of the origin cursor.
	OriginCursorRadius = 0.01
)

// DrawCommand is a single drawing operation for a rasterizer. Data holds
// records of shape.VertexSize floats to be assembled according to Mode.
type DrawCommand struct {
	Op      string         `json:"op"`
	ShapeID string         `json:"shapeId,omitempty"`
	Mode    shape.DrawMode `json:"mode"`
	Data    []float64      `json:"data"`
}

// VertexCount returns the number of records in Data.
func (c DrawCommand) VertexCount() int {
	return len(c.Data) / shape.VertexSize
}

// RenderState is the editor state that affects drawing.
type RenderState struct {
	View   ViewMode
	Mode   Mode
	Vertex int // selected vertex of the highlighted shape, -1 for none
}

// CompileDrawCommands generates a draw command buffer from a scene graph.
// Commands are in painter's order (back to front).
func CompileDrawCommands(sg *SceneGraph, st RenderState) []DrawCommand {
	if sg == nil {
		return nil
	}

	var commands []DrawCommand
	var selected *SceneNode
	for _, node := range sg.Nodes {
		if node.Highlighted {
			selected = node
		}
		compileNode(node, st, &commands)
	}

	if st.Mode == ModeEdit && selected != nil && selected.Visible {
		i := st.Vertex * shape.VertexSize
		if st.Vertex >= 0 && i+shape.VertexSize <= len(selected.Outline) {
			commands = append(commands, DrawCommand{
				Op:      OpPoints,
				ShapeID: selected.ID,
				Mode:    shape.DrawPoints,
				Data:    recolor(selected.Outline[i:i+shape.VertexSize], geometry.Highlight),
			})
		}
	}
	return commands
}

func compileNode(node *SceneNode, st RenderState, commands *[]DrawCommand) {
	if !node.Visible {
		return
	}

	if node.Constructing {
		appendMarked(node, geometry.Highlight, commands)
		return
	}

	switch st.View {
	case ViewSolid:
		*commands = append(*commands,
			DrawCommand{Op: OpFill, ShapeID: node.ID, Mode: node.Mode, Data: node.Data},
			DrawCommand{Op: OpOutline, ShapeID: node.ID, Mode: shape.DrawLineLoop, Data: node.Outline},
		)
	case ViewWireframe:
		appendMarked(node, geometry.Black, commands)
	}

	if node.Highlighted {
		color := geometry.Black
		if st.Mode == ModeObject {
			*commands = append(*commands, DrawCommand{
				Op:      OpOrigin,
				ShapeID: node.ID,
				Mode:    shape.DrawLineStrip,
				Data:    originCursor(node.Origin),
			})
			color = geometry.Highlight
		}
		appendMarked(node, color, commands)
	}
}

// appendMarked emits the outline and vertex dots of node in one color.
func appendMarked(node *SceneNode, c geometry.Vector3, commands *[]DrawCommand) {
	data := recolor(node.Outline, c)
	*commands = append(*commands,
		DrawCommand{Op: OpOutline, ShapeID: node.ID, Mode: shape.DrawLineLoop, Data: data},
		DrawCommand{Op: OpPoints, ShapeID: node.ID, Mode: shape.DrawPoints, Data: data},
	)
}

// recolor returns a copy of records with every color replaced by c.
func recolor(records []float64, c geometry.Vector3) []float64 {
	out := slices.Clone(records)
	for i := 0; i+shape.VertexSize <= len(out); i += shape.VertexSize {
		out[i+shape.PositionSize] = c.X
		out[i+shape.PositionSize+1] = c.Y
		out[i+shape.PositionSize+2] = c.Z
	}
	return out
}

// originCursor is a small cross centered on p, drawn as one line strip.
func originCursor(p geometry.Vector2) []float64 {
	r := OriginCursorRadius
	points := []geometry.Vector2{
		p.Add(geometry.Vec2(0, r)),
		p.Sub(geometry.Vec2(0, r)),
		p,
		p.Add(geometry.Vec2(r, 0)),
		p.Sub(geometry.Vec2(r, 0)),
	}
	data := make([]float64, 0, len(points)*shape.VertexSize)
	for _, pt := range points {
		data = append(data, shape.NewVertex(pt, geometry.Black).Data(nil)...)
	}
	return data
}

// DrawCommandsToJSON serializes draw commands to JSON.
func DrawCommandsToJSON(commands []DrawCommand) (string, error) {
	if commands == nil {
		commands = []DrawCommand{}
	}
	data, err := json.Marshal(commands)
	if err != nil {
		return "[]", err
	}
	return string(data), nil
}

// RectToJSON serializes a Rect to JSON.
func RectToJSON(r geometry.Rect) string {
	data, _ := json.Marshal(r)
	return string(data)
}

// --- Queries ---

func (e *Engine) refresh() {
	if e.dirty || slices.ContainsFunc(e.entries, func(en Entry) bool { return en.Shape.NeedsUpdate() }) {
		e.sceneGraph = BuildSceneGraph(e.entries)
		e.dirty = false
	}
}

// Render returns the draw commands of the current state.
func (e *Engine) Render() []DrawCommand {
	e.refresh()
	return CompileDrawCommands(e.sceneGraph, RenderState{View: e.view, Mode: e.mode, Vertex: e.vertex})
}

// RenderJSON returns Render as JSON.
func (e *Engine) RenderJSON() string {
	result, _ := DrawCommandsToJSON(e.Render())
	return result
}

// SceneGraph returns the current scene graph.
func (e *Engine) SceneGraph() *SceneGraph {
	e.refresh()
	return e.sceneGraph
}

// HitTest returns the ID of the topmost visible, finished shape whose click
// area contains the clip-space point (x, y), or "".
func (e *Engine) HitTest(x, y float64) string {
	p := geometry.Vec2(x, y)
	for i := len(e.entries) - 1; i >= 0; i-- {
		s := e.entries[i].Shape
		if s.Hidden() || s.Constructing() {
			continue
		}
		if s.IsInsideClickArea(p) {
			return e.entries[i].ID
		}
	}
	return ""
}

// Bounds returns the clip-space bounding box of a shape's vertices.
func (e *Engine) Bounds(id string) (geometry.Rect, error) {
	e.refresh()
	node, ok := e.sceneGraph.NodesByID[id]
	if !ok {
		return geometry.Rect{}, fmt.Errorf("%w: %s", ErrShapeNotFound, id)
	}
	return node.Bounds, nil
}

// SelectionBounds returns the bounds of the selected shape, or an empty rect.
func (e *Engine) SelectionBounds() geometry.Rect {
	if e.selected == "" {
		return geometry.Rect{}
	}
	r, _ := e.Bounds(e.selected)
	return r
}
