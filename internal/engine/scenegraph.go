package engine

import (
	"slices"

	"github.com/vertexforge/vertexforge/internal/geometry"
	"github.com/vertexforge/vertexforge/internal/shape"
)

// SceneGraph is the render-ready state of the scene: one node per shape in
// painter's order. It is rebuilt whenever the engine or any shape changed.
type SceneGraph struct {
	Nodes     []*SceneNode
	NodesByID map[string]*SceneNode
}

// SceneNode is a resolved shape ready for drawing.
type SceneNode struct {
	ID   string
	Name string
	Kind shape.Kind

	Visible      bool
	Highlighted  bool
	Constructing bool

	// Render data
	Mode    shape.DrawMode
	Data    []float64 // records as the shape draws itself
	Outline []float64 // one record per vertex in outline order

	// Clip-space transform origin, local-to-clip matrix and vertex bounding box
	Origin geometry.Vector2
	World  geometry.Matrix2D
	Bounds geometry.Rect
}

// NewSceneGraph creates an empty scene graph.
func NewSceneGraph() *SceneGraph {
	return &SceneGraph{NodesByID: make(map[string]*SceneNode)}
}

// BuildSceneGraph resolves every entry into a node.
func BuildSceneGraph(entries []Entry) *SceneGraph {
	sg := &SceneGraph{
		Nodes:     make([]*SceneNode, 0, len(entries)),
		NodesByID: make(map[string]*SceneNode, len(entries)),
	}
	for _, en := range entries {
		node := buildNode(en)
		sg.Nodes = append(sg.Nodes, node)
		sg.NodesByID[en.ID] = node
	}
	return sg
}

func buildNode(en Entry) *SceneNode {
	s := en.Shape
	node := &SceneNode{
		ID:           en.ID,
		Name:         s.Name(),
		Kind:         s.Kind(),
		Visible:      !s.Hidden(),
		Highlighted:  s.Highlighted(),
		Constructing: s.Constructing(),
		Mode:         s.DrawMode(),
		Data:         slices.Clone(s.Data()),
		Origin:       s.Transform().Position,
		World:        s.Transform().Matrix(),
	}

	points := make([]geometry.Vector2, s.VertexCount())
	node.Outline = make([]float64, 0, s.VertexCount()*shape.VertexSize)
	for i, v := range s.Vertices() {
		node.Outline = append(node.Outline, v.Data(s)...)
		points[i] = node.World.TransformPoint(v.Position)
	}
	node.Bounds = geometry.RectFromPoints(points...)
	return node
}
