package scene

import (
	"errors"
	"fmt"

	"github.com/vertexforge/vertexforge/internal/collab"
	"github.com/vertexforge/vertexforge/internal/document"
	"github.com/vertexforge/vertexforge/internal/engine"
	"github.com/vertexforge/vertexforge/internal/geometry"
	"github.com/vertexforge/vertexforge/internal/shape"
	"github.com/vertexforge/vertexforge/internal/typeid"
)

var (
	ErrNotFound = errors.New("not found")
	ErrBadInput = errors.New("bad input")
	ErrRejected = errors.New("operation rejected")
	ErrTooMany  = errors.New("too many operations")
	ErrBusy     = errors.New("scene unavailable")
)

// MaxBatchSize bounds the operations of one submit request.
const MaxBatchSize = 100

// Service exposes the live scenes of a hub to request handlers. Writes go
// through the hub so connected clients see them.
type Service struct {
	hub *collab.Hub
}

func NewService(hub *collab.Hub) *Service {
	return &Service{hub: hub}
}

type Snapshot struct {
	Scene     document.Scene `json:"scene"`
	ServerSeq int64          `json:"serverSeq"`
}

type Applied struct {
	Operation collab.Operation `json:"operation"`
	ServerSeq int64            `json:"serverSeq"`
}

// state validates the scene ID before the hub opens a room for it.
func (s *Service) state(sceneID string) (*collab.DocumentState, error) {
	if err := typeid.Validate(sceneID, typeid.PrefixScene); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBadInput, err)
	}
	state, err := s.hub.State(sceneID)
	if err != nil {
		return nil, classify(err)
	}
	return state, nil
}

func (s *Service) Get(sceneID string) (*Snapshot, error) {
	state, err := s.state(sceneID)
	if err != nil {
		return nil, err
	}
	scene, seq := state.Scene()
	return &Snapshot{Scene: scene, ServerSeq: seq}, nil
}

// Submit applies ops in order. It stops at the first rejected operation;
// the ones before it stay applied and are returned with the error.
func (s *Service) Submit(sceneID, userID string, ops []collab.Operation) ([]Applied, error) {
	if len(ops) > MaxBatchSize {
		return nil, fmt.Errorf("%w: %d > %d", ErrTooMany, len(ops), MaxBatchSize)
	}
	if _, err := s.state(sceneID); err != nil {
		return nil, err
	}
	applied := make([]Applied, 0, len(ops))
	for i, op := range ops {
		if op.ID == "" {
			op.ID = typeid.NewOpID()
		}
		if op.Timestamp == 0 {
			op.Timestamp = collab.GetServerTimestamp()
		}
		out, seq, err := s.hub.Submit(sceneID, userID, op)
		if err != nil {
			return applied, fmt.Errorf("operation %d (%s): %w", i, op.Type, classify(err))
		}
		applied = append(applied, Applied{Operation: out, ServerSeq: seq})
	}
	return applied, nil
}

// OpsSince returns the operations applied after seq.
func (s *Service) OpsSince(sceneID string, seq int64) ([]collab.Operation, error) {
	state, err := s.state(sceneID)
	if err != nil {
		return nil, err
	}
	ops := state.OpsSince(seq)
	if ops == nil {
		ops = []collab.Operation{}
	}
	return ops, nil
}

func (s *Service) Render(sceneID string, view engine.ViewMode) ([]engine.DrawCommand, error) {
	state, err := s.state(sceneID)
	if err != nil {
		return nil, err
	}
	return state.Render(view), nil
}

// HitTest returns the topmost shape under (x, y), or "".
func (s *Service) HitTest(sceneID string, x, y float64) (string, error) {
	state, err := s.state(sceneID)
	if err != nil {
		return "", err
	}
	var id string
	err = state.View(func(e *engine.Engine) error {
		id = e.HitTest(x, y)
		return nil
	})
	return id, err
}

// ExportShape serializes one shape record.
func (s *Service) ExportShape(sceneID, shapeID string, format document.Format) ([]byte, error) {
	var rec document.ShapeRecord
	err := s.withShape(sceneID, shapeID, func(e *engine.Engine, _ shape.Shape) error {
		var err error
		rec, err = e.Record(shapeID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return document.Marshal(rec, format)
}

// Import validates a shape document and adds it to the scene.
func (s *Service) Import(sceneID, userID string, data []byte, format document.Format) (*Applied, error) {
	rec, err := document.ImportShape(data, format)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBadInput, err)
	}
	applied, err := s.Submit(sceneID, userID, []collab.Operation{{Type: collab.OpShapeImport, Record: &rec}})
	if err != nil {
		return nil, err
	}
	return &applied[0], nil
}

func (s *Service) Bounds(sceneID, shapeID string) (geometry.Rect, error) {
	var r geometry.Rect
	err := s.withShape(sceneID, shapeID, func(e *engine.Engine, _ shape.Shape) error {
		var err error
		r, err = e.Bounds(shapeID)
		return err
	})
	return r, err
}

// Hull returns the clip-space convex hull of a shape's vertices without
// changing the scene.
func (s *Service) Hull(sceneID, shapeID string) ([][2]float64, error) {
	var points [][2]float64
	err := s.withShape(sceneID, shapeID, func(_ *engine.Engine, sh shape.Shape) error {
		hull := shape.ConvexHull(sh.Vertices())
		points = make([][2]float64, len(hull))
		for i, v := range hull {
			points[i] = v.GlobalCoord(sh).Array()
		}
		return nil
	})
	return points, err
}

func (s *Service) withShape(sceneID, shapeID string, fn func(*engine.Engine, shape.Shape) error) error {
	if err := typeid.Validate(shapeID, typeid.PrefixShape); err != nil {
		return fmt.Errorf("%w: %w", ErrBadInput, err)
	}
	state, err := s.state(sceneID)
	if err != nil {
		return err
	}
	return state.View(func(e *engine.Engine) error {
		sh, ok := e.Shape(shapeID)
		if !ok {
			return fmt.Errorf("%w: shape %s", ErrNotFound, shapeID)
		}
		return fn(e, sh)
	})
}

// classify maps engine and protocol errors onto the service errors.
func classify(err error) error {
	switch {
	case errors.Is(err, collab.ErrInvalidScene):
		return fmt.Errorf("%w: %w", ErrBadInput, err)
	case errors.Is(err, collab.ErrHubFull):
		return fmt.Errorf("%w: %w", ErrBusy, err)
	case errors.Is(err, engine.ErrShapeNotFound):
		return fmt.Errorf("%w: %w", ErrNotFound, err)
	case errors.Is(err, collab.ErrUnknownOperation),
		errors.Is(err, collab.ErrMissingField),
		errors.Is(err, engine.ErrInvalidArgument),
		errors.Is(err, engine.ErrVertexIndex),
		errors.Is(err, shape.ErrUnknownKind),
		errors.Is(err, document.ErrInvalidRecord),
		errors.Is(err, document.ErrUnknownType),
		errors.Is(err, document.ErrTooFewVertices):
		return fmt.Errorf("%w: %w", ErrBadInput, err)
	case errors.Is(err, engine.ErrWrongKind),
		errors.Is(err, engine.ErrDegenerate):
		return fmt.Errorf("%w: %w", ErrRejected, err)
	default:
		return err
	}
}
