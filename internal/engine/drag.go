package engine

import (
	"fmt"
	"strings"

	"github.com/vertexforge/vertexforge/internal/geometry"
	"github.com/vertexforge/vertexforge/internal/shape"
)

// Action is a pointer-driven edit of the selection.
type Action int

const (
	ActionNone Action = iota
	ActionGrab
	ActionRotate
	ActionScale
)

func (a Action) String() string {
	switch a {
	case ActionGrab:
		return "Grab"
	case ActionRotate:
		return "Rotate"
	case ActionScale:
		return "Scale"
	default:
		return ""
	}
}

// ParseAction accepts the action names case-insensitively.
func ParseAction(s string) (Action, error) {
	switch strings.ToLower(s) {
	case "grab":
		return ActionGrab, nil
	case "rotate":
		return ActionRotate, nil
	case "scale":
		return ActionScale, nil
	default:
		return ActionNone, fmt.Errorf("%w: action %q", ErrInvalidArgument, s)
	}
}

// drag remembers where an action started so it can be applied relative to
// the anchor and undone on cancel.
type drag struct {
	action    Action
	anchor    geometry.Vector2
	transform geometry.Transform

	// Vertex grab in edit mode.
	vertex   int
	position geometry.Vector2
}

// BeginAction starts a with the pointer at the clip-space point p. In edit
// mode only grabbing the selected vertex is allowed.
func (e *Engine) BeginAction(a Action, p geometry.Vector2) error {
	if a == ActionNone {
		return ErrInvalidArgument
	}
	if e.building != nil {
		return ErrConstructing
	}
	s, err := e.selectedShape()
	if err != nil {
		return err
	}
	d := &drag{action: a, anchor: p, transform: s.Transform(), vertex: -1}
	if e.mode == ModeEdit {
		if a != ActionGrab {
			return ErrWrongMode
		}
		if e.vertex < 0 {
			return ErrNoVertex
		}
		d.vertex = e.vertex
		d.position = s.Vertex(e.vertex).Position
	}
	e.drag = d
	return nil
}

// UpdateAction applies the action in progress for the pointer at p.
func (e *Engine) UpdateAction(p geometry.Vector2) error {
	d := e.drag
	if d == nil {
		return nil
	}
	s, err := e.selectedShape()
	if err != nil {
		e.drag = nil
		return err
	}
	pivot := d.transform.Position

	switch d.action {
	case ActionGrab:
		if d.vertex >= 0 {
			shape.SetVertexGlobalCoord(s, d.vertex, p)
		} else {
			s.SetPosition(d.transform.Position.Add(p.Sub(d.anchor)))
		}
	case ActionRotate:
		angle := p.Sub(pivot).Arc() - d.anchor.Sub(pivot).Arc()
		s.SetRotation(d.transform.Rotation + angle)
	case ActionScale:
		from := geometry.Distance(d.anchor, pivot)
		to := geometry.Distance(p, pivot)
		if from == 0 || to == 0 {
			return nil
		}
		s.SetScale(d.transform.Scale * to / from)
	}
	e.dirty = true
	return nil
}

// EndAction keeps the result of the action in progress.
func (e *Engine) EndAction() {
	e.drag = nil
}

// CancelAction restores the state from before the action.
func (e *Engine) CancelAction() {
	d := e.drag
	if d == nil {
		return
	}
	e.drag = nil
	s, err := e.selectedShape()
	if err != nil {
		return
	}
	if d.vertex >= 0 {
		s.OnVertexEdited(d.vertex, d.position)
	} else {
		s.SetTransform(d.transform)
	}
	e.dirty = true
}
