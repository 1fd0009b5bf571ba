package engine

import (
	"fmt"

	"github.com/vertexforge/vertexforge/internal/geometry"
	"github.com/vertexforge/vertexforge/internal/shape"
)

// construction is a shape being drawn point by point. The shape is already
// part of the scene so it renders while the user drags.
type construction struct {
	id    string
	kind  shape.Kind
	shape shape.Shape
}

// BeginConstruction starts drawing a shape of the given kind at the
// clip-space point p and returns its ID.
func (e *Engine) BeginConstruction(kind shape.Kind, p geometry.Vector2) (string, error) {
	if e.building != nil {
		return "", ErrConstructing
	}
	var s shape.Shape
	switch kind {
	case shape.KindLine:
		s = shape.LineFromStart(p)
	case shape.KindSquare:
		s = shape.SquareFromCorner(p)
	case shape.KindRectangle:
		s = shape.RectangleFromCorner(p)
	case shape.KindPolygon:
		s = shape.PolygonFromStart(p)
	default:
		return "", fmt.Errorf("%w: %s", shape.ErrUnknownKind, kind)
	}
	e.drag = nil
	e.mode = ModeObject
	e.clearSelection()
	id := e.AddShape(s)
	e.building = &construction{id: id, kind: kind, shape: s}
	return id, nil
}

// UpdateConstruction moves the point being dragged to p.
func (e *Engine) UpdateConstruction(p geometry.Vector2) error {
	if e.building == nil {
		return ErrNotConstructing
	}
	switch s := e.building.shape.(type) {
	case *shape.Line:
		s.SetNextPoint(p)
	case *shape.Square:
		s.SetNextCorner(p)
	case *shape.Rectangle:
		s.SetNextCorner(p)
	case *shape.Polygon:
		s.SetNextPoint(p)
	}
	e.dirty = true
	return nil
}

// CommitPoint fixes the dragged point. Polygons start a new point; the other
// kinds are complete and get finished.
func (e *Engine) CommitPoint() (string, error) {
	if e.building == nil {
		return "", ErrNotConstructing
	}
	if p, ok := e.building.shape.(*shape.Polygon); ok {
		p.AddNewPoint()
		e.dirty = true
		return e.building.id, nil
	}
	return e.FinishConstruction()
}

// FinishConstruction ends the construction and selects the new shape. A
// polygon with fewer than three vertices is discarded with ErrDegenerate.
func (e *Engine) FinishConstruction() (string, error) {
	b := e.building
	if b == nil {
		return "", ErrNotConstructing
	}
	e.building = nil
	if b.shape.VertexCount() < 3 && b.kind == shape.KindPolygon {
		_ = e.DeleteShape(b.id)
		return "", fmt.Errorf("%w: polygon needs three vertices", ErrDegenerate)
	}
	b.shape.Finalize()
	e.selectEntry(b.id)
	e.log.Debug("construction finished", "id", b.id, "type", b.kind)
	return b.id, nil
}

// CancelConstruction drops the shape being drawn.
func (e *Engine) CancelConstruction() error {
	b := e.building
	if b == nil {
		return ErrNotConstructing
	}
	e.building = nil
	return e.DeleteShape(b.id)
}

// Constructing reports whether a shape is being drawn.
func (e *Engine) Constructing() bool { return e.building != nil }
