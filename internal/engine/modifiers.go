package engine

import (
	"fmt"
	"math"

	"github.com/vertexforge/vertexforge/internal/shape"
	"github.com/vertexforge/vertexforge/internal/typeid"
)

// Modifier names accepted by ApplyModifier.
const (
	ModSubdivide        = "subdivide"
	ModBevel            = "bevel"
	ModFlipNormal       = "flipNormal"
	ModRepositionOrigin = "repositionOrigin"
	ModTriangulate      = "triangulate"
	ModConvexHull       = "convexHull"
)

// Modifier is a polygon modifier with its parameter.
type Modifier struct {
	Name   string  `json:"name"`
	Count  int     `json:"count,omitempty"`
	Factor float64 `json:"factor,omitempty"`
}

// ApplyModifier runs m on the polygon with the given ID. It returns the IDs
// of any shapes the modifier created.
func (e *Engine) ApplyModifier(id string, m Modifier) ([]string, error) {
	switch m.Name {
	case ModSubdivide:
		return nil, e.Subdivide(id, m.Count)
	case ModBevel:
		return nil, e.Bevel(id, m.Factor)
	case ModFlipNormal:
		return nil, e.FlipNormal(id)
	case ModRepositionOrigin:
		return nil, e.RepositionOrigin(id)
	case ModTriangulate:
		return e.Triangulate(id)
	case ModConvexHull:
		hull, err := e.ConvexHull(id)
		if err != nil {
			return nil, err
		}
		return []string{hull}, nil
	default:
		return nil, fmt.Errorf("%w: modifier %q", ErrInvalidArgument, m.Name)
	}
}

// Subdivide splits every edge into k parts. k below 2 means 2.
func (e *Engine) Subdivide(id string, k int) error {
	p, err := e.polygon(id)
	if err != nil {
		return err
	}
	if k < 2 {
		k = DefaultSubdivision
	}
	p.Subdivide(k)
	e.dirty = true
	return nil
}

// Bevel cuts every corner. A NaN factor means DefaultBevel.
func (e *Engine) Bevel(id string, factor float64) error {
	p, err := e.polygon(id)
	if err != nil {
		return err
	}
	if math.IsNaN(factor) {
		factor = DefaultBevel
	}
	p.Bevel(factor)
	e.dirty = true
	return nil
}

func (e *Engine) FlipNormal(id string) error {
	p, err := e.polygon(id)
	if err != nil {
		return err
	}
	p.FlipNormal()
	e.dirty = true
	return nil
}

func (e *Engine) RepositionOrigin(id string) error {
	p, err := e.polygon(id)
	if err != nil {
		return err
	}
	p.RepositionOrigin()
	e.dirty = true
	return nil
}

// Triangulate replaces a polygon with one polygon per triangle of its
// triangulation, in its place in the drawing order. It returns the new IDs.
func (e *Engine) Triangulate(id string) ([]string, error) {
	p, err := e.polygon(id)
	if err != nil {
		return nil, err
	}
	if forced := p.ForcedEars(); forced > 0 {
		e.log.Debug("triangulation fell back to forced ears", "id", id, "forced", forced)
	}
	parts := p.Triangulate()
	if len(parts) == 0 {
		return nil, fmt.Errorf("%w: nothing to triangulate", ErrDegenerate)
	}

	at := e.index(id)
	if err := e.DeleteShape(id); err != nil {
		return nil, err
	}
	ids := make([]string, len(parts))
	for i, part := range parts {
		ids[i] = typeid.NewShapeID()
		e.insert(at+i, ids[i], part)
	}
	return ids, nil
}

// ConvexHull adds the convex hull of a shape's vertices as a new polygon on
// top of the scene with the same transform.
func (e *Engine) ConvexHull(id string) (string, error) {
	s, err := e.lookup(id)
	if err != nil {
		return "", err
	}
	hull := shape.ConvexHull(s.Vertices())
	if len(hull) < 3 {
		return "", fmt.Errorf("%w: hull of %s has %d vertices", ErrDegenerate, id, len(hull))
	}
	p := shape.NewPolygon(s.Transform().Clone())
	p.SetName(s.Name() + " hull")
	for _, v := range hull {
		p.AddVertex(v)
	}
	return e.AddShape(p), nil
}
