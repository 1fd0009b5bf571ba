package engine

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"slices"

	"github.com/vertexforge/vertexforge/internal/document"
	"github.com/vertexforge/vertexforge/internal/geometry"
	"github.com/vertexforge/vertexforge/internal/shape"
	"github.com/vertexforge/vertexforge/internal/typeid"
)

var (
	ErrShapeNotFound   = errors.New("shape not found")
	ErrNoSelection     = errors.New("no shape selected")
	ErrNoVertex        = errors.New("no vertex selected")
	ErrWrongKind       = errors.New("wrong shape kind")
	ErrWrongMode       = errors.New("not allowed in this mode")
	ErrVertexIndex     = errors.New("vertex index out of range")
	ErrConstructing    = errors.New("construction in progress")
	ErrNotConstructing = errors.New("no construction in progress")
	ErrDegenerate      = errors.New("degenerate shape")
	ErrInvalidArgument = errors.New("invalid argument")
	ErrDuplicateID     = errors.New("duplicate shape id")
)

// DefaultPickRange is the clip-space radius within which a click picks a
// vertex of the selected shape.
const DefaultPickRange = 0.02

// Default sizes of the shapes created without interaction.
const (
	DefaultLineLength      = 0.4
	DefaultSquareSize      = 0.2
	DefaultRectangleLength = 0.4
	DefaultRectangleWidth  = 0.15
	DefaultPolygonSides    = 5
	DefaultPolygonRadius   = 0.2
	DefaultSubdivision     = 2
	DefaultBevel           = shape.DefaultBevelFactor
)

// Mode selects what a click operates on.
type Mode int

const (
	ModeObject Mode = iota
	ModeEdit
)

func (m Mode) String() string {
	if m == ModeEdit {
		return "edit"
	}
	return "object"
}

// ViewMode selects how shapes are drawn.
type ViewMode int

const (
	ViewSolid ViewMode = iota
	ViewWireframe
)

func (v ViewMode) String() string {
	if v == ViewWireframe {
		return "wireframe"
	}
	return "solid"
}

// ParseViewMode accepts "solid" and "wireframe".
func ParseViewMode(s string) (ViewMode, error) {
	switch s {
	case "solid":
		return ViewSolid, nil
	case "wireframe":
		return ViewWireframe, nil
	default:
		return ViewSolid, fmt.Errorf("%w: view mode %q", ErrInvalidArgument, s)
	}
}

// Entry is one shape of the scene under its stable ID.
type Entry struct {
	ID    string
	Shape shape.Shape
}

// Engine is the editor model: an ordered list of shapes (back to front), the
// selection, the interaction mode and any construction or drag in progress.
// It is not safe for concurrent use.
type Engine struct {
	sceneID string
	name    string
	entries []Entry

	// Selection state
	selected string
	vertex   int

	mode Mode
	view ViewMode

	building *construction
	drag     *drag

	pickRange float64

	// Retained scene graph, rebuilt when dirty
	sceneGraph *SceneGraph
	dirty      bool

	log *slog.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithPickRange sets the vertex pick radius. Non-positive values are ignored.
func WithPickRange(r float64) Option {
	return func(e *Engine) {
		if r > 0 {
			e.pickRange = r
		}
	}
}

// WithLogger sets the logger used for structural events.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.log = l
		}
	}
}

// NewEngine creates an empty engine.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		name:       "Untitled",
		vertex:     -1,
		pickRange:  DefaultPickRange,
		sceneGraph: NewSceneGraph(),
		dirty:      true,
		log:        slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// --- Scene ---

// LoadScene replaces every shape with the decoded records of scene. Records
// without an ID get a fresh one. Nothing changes if any record fails.
func (e *Engine) LoadScene(scene document.Scene) error {
	entries := make([]Entry, 0, len(scene.Shapes))
	seen := make(map[string]bool, len(scene.Shapes))
	for i, rec := range scene.Shapes {
		s, err := document.Decode(rec)
		if err != nil {
			return fmt.Errorf("shape %d: %w", i, err)
		}
		id := rec.ID
		if id == "" {
			id = typeid.NewShapeID()
		}
		if seen[id] {
			return fmt.Errorf("shape %d: %w: %s", i, ErrDuplicateID, id)
		}
		seen[id] = true
		entries = append(entries, Entry{ID: id, Shape: s})
	}

	e.sceneID = scene.ID
	e.name = scene.Name
	e.entries = entries
	e.building = nil
	e.drag = nil
	e.mode = ModeObject
	e.clearSelection()
	e.dirty = true
	e.log.Debug("scene loaded", "scene", e.sceneID, "shapes", len(entries))
	return nil
}

// LoadSampleScene loads the built-in sample scene.
func (e *Engine) LoadSampleScene(sceneID string) error {
	return e.LoadScene(document.NewSampleScene(sceneID))
}

// LoadSceneJSON validates and loads a JSON scene document.
func (e *Engine) LoadSceneJSON(data string) error {
	scene, err := document.ImportScene([]byte(data), document.FormatJSON)
	if err != nil {
		return err
	}
	return e.LoadScene(scene)
}

// Scene captures every finished shape as a scene document.
func (e *Engine) Scene() document.Scene {
	ids := make([]string, 0, len(e.entries))
	shapes := make([]shape.Shape, 0, len(e.entries))
	for _, en := range e.entries {
		if en.Shape.Constructing() {
			continue
		}
		ids = append(ids, en.ID)
		shapes = append(shapes, en.Shape)
	}
	return document.EncodeScene(e.sceneID, e.name, ids, shapes)
}

// SceneJSON returns Scene as JSON.
func (e *Engine) SceneJSON() string {
	data, _ := json.Marshal(e.Scene())
	return string(data)
}

func (e *Engine) SceneID() string { return e.sceneID }
func (e *Engine) Name() string    { return e.name }

func (e *Engine) SetName(name string) { e.name = name }

// --- Shape list ---

// AddShape appends s on top of the scene and returns its new ID.
func (e *Engine) AddShape(s shape.Shape) string {
	id := typeid.NewShapeID()
	e.insert(len(e.entries), id, s)
	return id
}

// AddRecord decodes rec and appends it. The record ID is kept when it is a
// valid shape ID not already in use.
func (e *Engine) AddRecord(rec document.ShapeRecord) (string, error) {
	s, err := document.Decode(rec)
	if err != nil {
		return "", err
	}
	id := rec.ID
	if id == "" || typeid.Validate(id, typeid.PrefixShape) != nil || e.index(id) >= 0 {
		id = typeid.NewShapeID()
	}
	e.insert(len(e.entries), id, s)
	return id, nil
}

// Record encodes the shape with the given ID.
func (e *Engine) Record(id string) (document.ShapeRecord, error) {
	s, err := e.lookup(id)
	if err != nil {
		return document.ShapeRecord{}, err
	}
	rec := document.Encode(s)
	rec.ID = id
	return rec, nil
}

func (e *Engine) insert(at int, id string, s shape.Shape) {
	e.entries = slices.Insert(e.entries, at, Entry{ID: id, Shape: s})
	e.dirty = true
	e.log.Debug("shape added", "id", id, "type", s.Type())
}

// DeleteShape removes a shape, cancelling its construction and dropping it
// from the selection.
func (e *Engine) DeleteShape(id string) error {
	i := e.index(id)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrShapeNotFound, id)
	}
	if e.building != nil && e.building.id == id {
		e.building = nil
	}
	if e.selected == id {
		e.drag = nil
		e.mode = ModeObject
		e.clearSelection()
	}
	e.entries = slices.Delete(e.entries, i, i+1)
	e.dirty = true
	e.log.Debug("shape removed", "id", id)
	return nil
}

// Shape returns the shape with the given ID.
func (e *Engine) Shape(id string) (shape.Shape, bool) {
	i := e.index(id)
	if i < 0 {
		return nil, false
	}
	return e.entries[i].Shape, true
}

// Shapes returns the entries in drawing order.
func (e *Engine) Shapes() []Entry {
	return slices.Clone(e.entries)
}

func (e *Engine) Len() int { return len(e.entries) }

func (e *Engine) Rename(id, name string) error {
	s, err := e.lookup(id)
	if err != nil {
		return err
	}
	s.SetName(name)
	e.dirty = true
	return nil
}

func (e *Engine) SetHidden(id string, hidden bool) error {
	s, err := e.lookup(id)
	if err != nil {
		return err
	}
	s.SetHidden(hidden)
	e.dirty = true
	return nil
}

func (e *Engine) index(id string) int {
	return slices.IndexFunc(e.entries, func(en Entry) bool { return en.ID == id })
}

func (e *Engine) lookup(id string) (shape.Shape, error) {
	s, ok := e.Shape(id)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrShapeNotFound, id)
	}
	return s, nil
}

// --- Default creators ---

// orDefault returns v when it lies in (0, limit] and def otherwise,
// including for NaN.
func orDefault(v, limit, def float64) float64 {
	if v > 0 && v <= limit {
		return v
	}
	return def
}

// CreateDefaultLine adds a line through the origin. Lengths outside
// (0, 2√2] fall back to DefaultLineLength.
func (e *Engine) CreateDefaultLine(length float64) string {
	l := shape.NewLine(geometry.Origin(), orDefault(length, 2*math.Sqrt2, DefaultLineLength))
	return e.addAndSelect(l)
}

// CreateDefaultSquare adds a square at the origin. Sizes outside (0, 2] fall
// back to DefaultSquareSize.
func (e *Engine) CreateDefaultSquare(size float64) string {
	s := shape.NewSquare(geometry.Origin(), orDefault(size, 2, DefaultSquareSize))
	return e.addAndSelect(s)
}

// CreateDefaultRectangle adds a rectangle at the origin. Each side outside
// (0, 2] falls back to its default.
func (e *Engine) CreateDefaultRectangle(length, width float64) string {
	r := shape.NewRectangle(geometry.Origin(),
		orDefault(length, 2, DefaultRectangleLength),
		orDefault(width, 2, DefaultRectangleWidth))
	return e.addAndSelect(r)
}

// CreateDefaultPolygon adds a regular polygon at the origin. Fewer than three
// sides fall back to DefaultPolygonSides, a radius outside (0, 2] to
// DefaultPolygonRadius.
func (e *Engine) CreateDefaultPolygon(sides int, radius float64) string {
	if sides <= 2 {
		sides = DefaultPolygonSides
	}
	p := shape.RegularPolygon(sides, orDefault(radius, 2, DefaultPolygonRadius))
	return e.addAndSelect(p)
}

func (e *Engine) addAndSelect(s shape.Shape) string {
	id := e.AddShape(s)
	e.selectEntry(id)
	return id
}

// --- Selection ---

// Select selects the shape with the given ID. An empty ID clears the
// selection.
func (e *Engine) Select(id string) error {
	if id == "" {
		e.clearSelection()
		e.mode = ModeObject
		return nil
	}
	if e.index(id) < 0 {
		return fmt.Errorf("%w: %s", ErrShapeNotFound, id)
	}
	e.selectEntry(id)
	return nil
}

// SelectAt selects the topmost visible shape whose click area contains the
// clip-space point p and returns its ID, or clears the selection and
// returns "".
func (e *Engine) SelectAt(p geometry.Vector2) string {
	id := e.HitTest(p.X, p.Y)
	if id == "" {
		e.clearSelection()
		e.mode = ModeObject
		return ""
	}
	e.selectEntry(id)
	return id
}

// SelectVertexAt selects the vertex of the selected shape nearest to the
// clip-space point p if it lies within the pick range. It returns the vertex
// index or -1.
func (e *Engine) SelectVertexAt(p geometry.Vector2) int {
	e.vertex = -1
	s, ok := e.Shape(e.selected)
	if !ok {
		return -1
	}
	best := math.Inf(1)
	for i := range s.VertexCount() {
		if d := geometry.Distance(p, shape.VertexGlobalCoord(s, i)); d < best {
			best, e.vertex = d, i
		}
	}
	if best > e.pickRange {
		e.vertex = -1
	}
	e.dirty = true
	return e.vertex
}

// SelectVertex selects vertex i of the selected shape. -1 clears it.
func (e *Engine) SelectVertex(i int) error {
	s, err := e.selectedShape()
	if err != nil {
		return err
	}
	if i < -1 || i >= s.VertexCount() {
		return fmt.Errorf("%w: %d", ErrVertexIndex, i)
	}
	e.vertex = i
	e.dirty = true
	return nil
}

func (e *Engine) selectEntry(id string) {
	for _, en := range e.entries {
		en.Shape.SetHighlighted(en.ID == id)
	}
	e.selected = id
	e.vertex = -1
	e.dirty = true
}

func (e *Engine) clearSelection() {
	for _, en := range e.entries {
		en.Shape.SetHighlighted(false)
	}
	e.selected = ""
	e.vertex = -1
	e.dirty = true
}

// Selected returns the selected shape ID or "".
func (e *Engine) Selected() string { return e.selected }

// SelectedVertex returns the selected vertex index or -1.
func (e *Engine) SelectedVertex() int { return e.vertex }

func (e *Engine) selectedShape() (shape.Shape, error) {
	if e.selected == "" {
		return nil, ErrNoSelection
	}
	return e.lookup(e.selected)
}

// SwitchMode toggles between object and edit mode. Edit mode needs a
// selection.
func (e *Engine) SwitchMode() Mode {
	switch e.mode {
	case ModeEdit:
		e.mode = ModeObject
		e.vertex = -1
	case ModeObject:
		if e.selected != "" {
			e.mode = ModeEdit
		}
	}
	e.dirty = true
	return e.mode
}

func (e *Engine) Mode() Mode { return e.mode }

func (e *Engine) SetViewMode(v ViewMode) {
	e.view = v
	e.dirty = true
}

// SwitchViewMode toggles between solid and wireframe.
func (e *Engine) SwitchViewMode() ViewMode {
	if e.view == ViewSolid {
		e.SetViewMode(ViewWireframe)
	} else {
		e.SetViewMode(ViewSolid)
	}
	return e.view
}

func (e *Engine) ViewMode() ViewMode { return e.view }

// ActionLabel describes the construction or drag in progress, or "".
func (e *Engine) ActionLabel() string {
	switch {
	case e.building != nil:
		return "Creating " + e.building.kind.String()
	case e.drag != nil:
		return e.drag.action.String()
	default:
		return ""
	}
}

// --- Edits ---

// SetTransform replaces the transform of a shape. The scale must be positive.
func (e *Engine) SetTransform(id string, t geometry.Transform) error {
	if !(t.Scale > 0) {
		return fmt.Errorf("%w: scale %v", ErrInvalidArgument, t.Scale)
	}
	s, err := e.lookup(id)
	if err != nil {
		return err
	}
	s.SetTransform(t)
	e.dirty = true
	return nil
}

func (e *Engine) TranslateSelected(d geometry.Vector2) error {
	s, err := e.selectedShape()
	if err != nil {
		return err
	}
	s.Translate(d)
	e.dirty = true
	return nil
}

func (e *Engine) RotateSelected(angle float64) error {
	s, err := e.selectedShape()
	if err != nil {
		return err
	}
	s.Rotate(angle)
	e.dirty = true
	return nil
}

// ScaleSelected multiplies the scale of the selected shape by a positive
// factor.
func (e *Engine) ScaleSelected(factor float64) error {
	if !(factor > 0) {
		return fmt.Errorf("%w: scale factor %v", ErrInvalidArgument, factor)
	}
	s, err := e.selectedShape()
	if err != nil {
		return err
	}
	s.ScaleBy(factor)
	e.dirty = true
	return nil
}

// MoveVertex moves vertex i of a shape to the clip-space point p and lets the
// shape restore its invariant.
func (e *Engine) MoveVertex(id string, i int, p geometry.Vector2) error {
	s, err := e.lookup(id)
	if err != nil {
		return err
	}
	if i < 0 || i >= s.VertexCount() {
		return fmt.Errorf("%w: %d", ErrVertexIndex, i)
	}
	shape.SetVertexGlobalCoord(s, i, p)
	e.dirty = true
	return nil
}

// MoveSelectedVertex moves the selected vertex in edit mode.
func (e *Engine) MoveSelectedVertex(p geometry.Vector2) error {
	if e.mode != ModeEdit {
		return ErrWrongMode
	}
	if e.vertex < 0 {
		return ErrNoVertex
	}
	return e.MoveVertex(e.selected, e.vertex, p)
}

func (e *Engine) SetShapeColor(id string, c geometry.Vector3) error {
	s, err := e.lookup(id)
	if err != nil {
		return err
	}
	s.SetVerticesColor(c)
	e.dirty = true
	return nil
}

func (e *Engine) SetVertexColor(id string, i int, c geometry.Vector3) error {
	s, err := e.lookup(id)
	if err != nil {
		return err
	}
	if i < 0 || i >= s.VertexCount() {
		return fmt.Errorf("%w: %d", ErrVertexIndex, i)
	}
	s.SetVertexColor(i, c)
	e.dirty = true
	return nil
}

// SetColor colors the selected vertex in edit mode, or every vertex of the
// selected shape in object mode.
func (e *Engine) SetColor(c geometry.Vector3) error {
	if e.selected == "" {
		return ErrNoSelection
	}
	if e.mode == ModeEdit {
		if e.vertex < 0 {
			return ErrNoVertex
		}
		return e.SetVertexColor(e.selected, e.vertex, c)
	}
	return e.SetShapeColor(e.selected, c)
}

// AddVertexAt appends a vertex at the clip-space point p to the selected
// polygon in edit mode and selects it.
func (e *Engine) AddVertexAt(p geometry.Vector2) (int, error) {
	if e.mode != ModeEdit {
		return -1, ErrWrongMode
	}
	poly, err := e.polygon(e.selected)
	if err != nil {
		return -1, err
	}
	poly.AddVertex(shape.NewVertex(poly.Transform().Invert(p), geometry.DefaultShapeColor))
	e.vertex = poly.VertexCount() - 1
	e.dirty = true
	return e.vertex, nil
}

// DeleteVertex removes vertex i of a polygon. A polygon keeps at least three
// vertices.
func (e *Engine) DeleteVertex(id string, i int) error {
	poly, err := e.polygon(id)
	if err != nil {
		return err
	}
	if i < 0 || i >= poly.VertexCount() {
		return fmt.Errorf("%w: %d", ErrVertexIndex, i)
	}
	if poly.VertexCount() <= 3 {
		return fmt.Errorf("%w: polygon needs three vertices", ErrDegenerate)
	}
	poly.DeleteVertex(i)
	if id == e.selected {
		e.vertex = -1
	}
	e.dirty = true
	return nil
}

// DeleteSelected removes the selected vertex in edit mode or the selected
// shape in object mode.
func (e *Engine) DeleteSelected() error {
	if e.selected == "" {
		return ErrNoSelection
	}
	if e.mode == ModeEdit {
		if e.vertex < 0 {
			return ErrNoVertex
		}
		return e.DeleteVertex(e.selected, e.vertex)
	}
	return e.DeleteShape(e.selected)
}

// --- Kind-specific properties ---

func (e *Engine) SetLineLength(id string, length float64) error {
	if !(length > 0) {
		return fmt.Errorf("%w: length %v", ErrInvalidArgument, length)
	}
	s, err := e.lookup(id)
	if err != nil {
		return err
	}
	l, ok := s.(*shape.Line)
	if !ok {
		return fmt.Errorf("%w: %s is a %s", ErrWrongKind, id, s.Kind())
	}
	l.SetLength(length)
	e.dirty = true
	return nil
}

func (e *Engine) SetSquareSize(id string, size float64) error {
	if !(size > 0) {
		return fmt.Errorf("%w: size %v", ErrInvalidArgument, size)
	}
	s, err := e.lookup(id)
	if err != nil {
		return err
	}
	sq, ok := s.(*shape.Square)
	if !ok {
		return fmt.Errorf("%w: %s is a %s", ErrWrongKind, id, s.Kind())
	}
	sq.SetSize(size)
	e.dirty = true
	return nil
}

func (e *Engine) SetRectangleSize(id string, length, width float64) error {
	if !(length > 0) || !(width > 0) {
		return fmt.Errorf("%w: size %v x %v", ErrInvalidArgument, length, width)
	}
	s, err := e.lookup(id)
	if err != nil {
		return err
	}
	r, ok := s.(*shape.Rectangle)
	if !ok {
		return fmt.Errorf("%w: %s is a %s", ErrWrongKind, id, s.Kind())
	}
	r.SetLength(length)
	r.SetWidth(width)
	e.dirty = true
	return nil
}

func (e *Engine) polygon(id string) (*shape.Polygon, error) {
	if id == "" {
		return nil, ErrNoSelection
	}
	s, err := e.lookup(id)
	if err != nil {
		return nil, err
	}
	p, ok := s.(*shape.Polygon)
	if !ok {
		return nil, fmt.Errorf("%w: %s is a %s", ErrWrongKind, id, s.Kind())
	}
	return p, nil
}
