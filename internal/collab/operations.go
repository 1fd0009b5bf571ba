package collab

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/vertexforge/vertexforge/internal/document"
	"github.com/vertexforge/vertexforge/internal/engine"
	"github.com/vertexforge/vertexforge/internal/geometry"
	"github.com/vertexforge/vertexforge/internal/shape"
)

var (
	ErrUnknownOperation = errors.New("unknown operation type")
	ErrMissingField     = errors.New("missing operation field")
)

// DocumentState holds the authoritative scene of a room. Every mutation goes
// through ApplyOperation under one lock.
type DocumentState struct {
	mu        sync.Mutex
	engine    *engine.Engine
	serverSeq int64
	opLog     []Operation // Operation history
}

// NewDocumentState wraps an engine that nothing else touches.
func NewDocumentState(e *engine.Engine) *DocumentState {
	return &DocumentState{
		engine: e,
		opLog:  make([]Operation, 0),
	}
}

// Scene returns the current scene document and the sequence it reflects.
func (ds *DocumentState) Scene() (document.Scene, int64) {
	ds.mu.Lock()
	defer ds.mu.Unlock()
	return ds.engine.Scene(), ds.serverSeq
}

// Seq returns the last assigned server sequence.
func (ds *DocumentState) Seq() int64 {
	ds.mu.Lock()
	defer ds.mu.Unlock()
	return ds.serverSeq
}

// OpsSince returns the applied operations with a sequence above seq.
func (ds *DocumentState) OpsSince(seq int64) []Operation {
	ds.mu.Lock()
	defer ds.mu.Unlock()
	if seq < 0 {
		seq = 0
	}
	if seq >= int64(len(ds.opLog)) {
		return nil
	}
	out := make([]Operation, len(ds.opLog)-int(seq))
	copy(out, ds.opLog[seq:])
	return out
}

// Render compiles the draw commands of the scene in the given view mode.
// The shared engine keeps its own view mode.
func (ds *DocumentState) Render(view engine.ViewMode) []engine.DrawCommand {
	ds.mu.Lock()
	defer ds.mu.Unlock()
	prev := ds.engine.ViewMode()
	ds.engine.SetViewMode(view)
	defer ds.engine.SetViewMode(prev)
	return ds.engine.Render()
}

// View runs fn with exclusive access to the engine. fn must not keep the
// engine or its shapes.
func (ds *DocumentState) View(fn func(e *engine.Engine) error) error {
	ds.mu.Lock()
	defer ds.mu.Unlock()
	return fn(ds.engine)
}

// ApplyOperation applies an operation to the scene and returns it as applied,
// with any created shape IDs filled in, together with its server sequence.
func (ds *DocumentState) ApplyOperation(op Operation) (Operation, int64, error) {
	ds.mu.Lock()
	defer ds.mu.Unlock()

	created, err := ds.applyOperationLocked(op)
	if err != nil {
		return op, 0, err
	}
	op.Created = created
	if op.Type == OpShapeCreate || op.Type == OpShapeImport {
		op.ShapeID = created[0]
	}

	ds.serverSeq++
	ds.opLog = append(ds.opLog, op)

	return op, ds.serverSeq, nil
}

// applyOperationLocked applies the operation without locking (caller must hold lock)
func (ds *DocumentState) applyOperationLocked(op Operation) ([]string, error) {
	e := ds.engine
	switch op.Type {
	case OpShapeCreate:
		return ds.applyCreate(op)
	case OpShapeImport:
		if op.Record == nil {
			return nil, fmt.Errorf("%w: record", ErrMissingField)
		}
		id, err := e.AddRecord(*op.Record)
		if err != nil {
			return nil, err
		}
		return []string{id}, nil
	case OpShapeDelete:
		return nil, e.DeleteShape(op.ShapeID)
	case OpShapeRename:
		return nil, e.Rename(op.ShapeID, op.Name)
	case OpShapeTransform:
		if op.Transform == nil {
			return nil, fmt.Errorf("%w: transform", ErrMissingField)
		}
		t := geometry.NewTransform(geometry.Vec2FromArray(op.Transform.Position), op.Transform.Rotation, op.Transform.Scale)
		return nil, e.SetTransform(op.ShapeID, t)
	case OpShapeColor:
		if op.Color == nil {
			return nil, fmt.Errorf("%w: color", ErrMissingField)
		}
		return nil, e.SetShapeColor(op.ShapeID, geometry.Vec3FromArray(*op.Color))
	case OpShapeHidden:
		if op.Hidden == nil {
			return nil, fmt.Errorf("%w: hidden", ErrMissingField)
		}
		return nil, e.SetHidden(op.ShapeID, *op.Hidden)
	case OpShapeModifier:
		if op.Modifier == nil {
			return nil, fmt.Errorf("%w: modifier", ErrMissingField)
		}
		return e.ApplyModifier(op.ShapeID, *op.Modifier)
	case OpVertexMove:
		if op.Index == nil || op.Position == nil {
			return nil, fmt.Errorf("%w: index and position", ErrMissingField)
		}
		return nil, e.MoveVertex(op.ShapeID, *op.Index, geometry.Vec2FromArray(*op.Position))
	case OpVertexColor:
		if op.Index == nil || op.Color == nil {
			return nil, fmt.Errorf("%w: index and color", ErrMissingField)
		}
		return nil, e.SetVertexColor(op.ShapeID, *op.Index, geometry.Vec3FromArray(*op.Color))
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownOperation, op.Type)
	}
}

func (ds *DocumentState) applyCreate(op Operation) ([]string, error) {
	c := op.Create
	if c == nil {
		return nil, fmt.Errorf("%w: create", ErrMissingField)
	}
	kind, err := shape.ParseKind(c.Kind)
	if err != nil {
		return nil, err
	}

	e := ds.engine
	var id string
	switch kind {
	case shape.KindLine:
		id = e.CreateDefaultLine(c.Length)
	case shape.KindSquare:
		id = e.CreateDefaultSquare(c.Size)
	case shape.KindRectangle:
		id = e.CreateDefaultRectangle(c.Length, c.Width)
	case shape.KindPolygon:
		id = e.CreateDefaultPolygon(c.Sides, c.Radius)
	}
	// Selection is per client and not part of the shared state.
	_ = e.Select("")
	return []string{id}, nil
}

// GetServerTimestamp returns the current server timestamp
func GetServerTimestamp() int64 {
	return time.Now().UnixMilli()
}
