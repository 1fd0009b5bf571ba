//go:build js && wasm

package main

import (
	"encoding/json"
	"syscall/js"

	"github.com/vertexforge/vertexforge/internal/document"
	"github.com/vertexforge/vertexforge/internal/engine"
	"github.com/vertexforge/vertexforge/internal/geometry"
	"github.com/vertexforge/vertexforge/internal/shape"
	"github.com/vertexforge/vertexforge/internal/typeid"
)

var eng *engine.Engine

func main() {
	eng = engine.NewEngine()

	api := js.Global().Get("Object").New()

	// --- Scene ---
	api.Set("loadScene", js.FuncOf(loadScene))
	api.Set("loadSampleScene", js.FuncOf(loadSampleScene))
	api.Set("importShape", js.FuncOf(importShape))
	api.Set("exportShape", js.FuncOf(exportShape))

	// --- Creation ---
	api.Set("createShape", js.FuncOf(createShape))
	api.Set("beginConstruction", js.FuncOf(beginConstruction))
	api.Set("updateConstruction", js.FuncOf(updateConstruction))
	api.Set("commitPoint", js.FuncOf(commitPoint))
	api.Set("finishConstruction", js.FuncOf(finishConstruction))
	api.Set("cancelConstruction", js.FuncOf(cancelConstruction))

	// --- Selection and modes ---
	api.Set("select", js.FuncOf(selectShape))
	api.Set("selectAt", js.FuncOf(selectAt))
	api.Set("selectVertexAt", js.FuncOf(selectVertexAt))
	api.Set("switchMode", js.FuncOf(switchMode))
	api.Set("switchViewMode", js.FuncOf(switchViewMode))

	// --- Pointer actions ---
	api.Set("beginAction", js.FuncOf(beginAction))
	api.Set("updateAction", js.FuncOf(updateAction))
	api.Set("endAction", js.FuncOf(endAction))
	api.Set("cancelAction", js.FuncOf(cancelAction))

	// --- Edits ---
	api.Set("setColor", js.FuncOf(setColor))
	api.Set("setName", js.FuncOf(setName))
	api.Set("setHidden", js.FuncOf(setHidden))
	api.Set("setTransform", js.FuncOf(setTransform))
	api.Set("setLineLength", js.FuncOf(setLineLength))
	api.Set("setSquareSize", js.FuncOf(setSquareSize))
	api.Set("setRectangleSize", js.FuncOf(setRectangleSize))
	api.Set("addVertexAt", js.FuncOf(addVertexAt))
	api.Set("deleteVertex", js.FuncOf(deleteVertex))
	api.Set("deleteSelected", js.FuncOf(deleteSelected))
	api.Set("applyModifier", js.FuncOf(applyModifier))

	// --- Queries ---
	api.Set("render", js.FuncOf(render))
	api.Set("hitTest", js.FuncOf(hitTest))
	api.Set("getSelectionBounds", js.FuncOf(getSelectionBounds))
	api.Set("getScene", js.FuncOf(getScene))
	api.Set("getSelection", js.FuncOf(getSelection))
	api.Set("getState", js.FuncOf(getState))

	js.Global().Set("vertexforgeEngine", api)
	js.Global().Set("vertexforgeWasmReady", js.ValueOf(true))

	// Keep Go runtime alive
	select {}
}

func result(err error) any {
	if err != nil {
		return js.ValueOf(map[string]any{"error": err.Error()})
	}
	return js.ValueOf(map[string]any{"ok": true})
}

func errorf(msg string) any {
	return js.ValueOf(map[string]any{"error": msg})
}

// point reads two numeric arguments starting at at. Value.Float panics on
// anything but a number.
func point(args []js.Value, at int) (geometry.Vector2, bool) {
	if !isNumber(args, at) || !isNumber(args, at+1) {
		return geometry.Vector2{}, false
	}
	return geometry.Vec2(args[at].Float(), args[at+1].Float()), true
}

func isNumber(args []js.Value, i int) bool {
	return len(args) > i && args[i].Type() == js.TypeNumber
}

func floatArg(args []js.Value, i int) float64 {
	if !isNumber(args, i) {
		return 0
	}
	return args[i].Float()
}

func stringArg(args []js.Value, i int) string {
	if len(args) <= i || args[i].Type() != js.TypeString {
		return ""
	}
	return args[i].String()
}

// --- Scene ---

func loadScene(this js.Value, args []js.Value) any {
	if len(args) < 1 {
		return errorf("missing scene JSON")
	}
	return result(eng.LoadSceneJSON(args[0].String()))
}

func loadSampleScene(this js.Value, args []js.Value) any {
	sceneID := stringArg(args, 0)
	if sceneID == "" {
		sceneID = typeid.NewSceneID()
	}
	return result(eng.LoadSampleScene(sceneID))
}

// importShape(text, format) adds a shape document and returns its ID.
func importShape(this js.Value, args []js.Value) any {
	if len(args) < 1 {
		return errorf("missing shape document")
	}
	format, err := document.ParseFormat(stringArg(args, 1))
	if err != nil {
		return result(err)
	}
	rec, err := document.ImportShape([]byte(args[0].String()), format)
	if err != nil {
		return result(err)
	}
	id, err := eng.AddRecord(rec)
	if err != nil {
		return result(err)
	}
	return js.ValueOf(map[string]any{"ok": true, "id": id})
}

// exportShape(id, format) returns the shape document as text.
func exportShape(this js.Value, args []js.Value) any {
	format, err := document.ParseFormat(stringArg(args, 1))
	if err != nil {
		return result(err)
	}
	rec, err := eng.Record(stringArg(args, 0))
	if err != nil {
		return result(err)
	}
	data, err := document.Marshal(rec, format)
	if err != nil {
		return result(err)
	}
	return js.ValueOf(map[string]any{"ok": true, "data": string(data)})
}

// --- Creation ---

// createShape(kind, a, b) adds a shape with default geometry. a and b are
// the kind's size parameters; out-of-range values fall back to defaults.
func createShape(this js.Value, args []js.Value) any {
	kind, err := shape.ParseKind(stringArg(args, 0))
	if err != nil {
		return result(err)
	}
	a, b := floatArg(args, 1), floatArg(args, 2)

	var id string
	switch kind {
	case shape.KindLine:
		id = eng.CreateDefaultLine(a)
	case shape.KindSquare:
		id = eng.CreateDefaultSquare(a)
	case shape.KindRectangle:
		id = eng.CreateDefaultRectangle(a, b)
	case shape.KindPolygon:
		id = eng.CreateDefaultPolygon(int(a), b)
	}
	return js.ValueOf(map[string]any{"ok": true, "id": id})
}

func beginConstruction(this js.Value, args []js.Value) any {
	kind, err := shape.ParseKind(stringArg(args, 0))
	if err != nil {
		return result(err)
	}
	p, ok := point(args, 1)
	if !ok {
		return errorf("missing point")
	}
	id, err := eng.BeginConstruction(kind, p)
	if err != nil {
		return result(err)
	}
	return js.ValueOf(map[string]any{"ok": true, "id": id})
}

func updateConstruction(this js.Value, args []js.Value) any {
	p, ok := point(args, 0)
	if !ok {
		return errorf("missing point")
	}
	return result(eng.UpdateConstruction(p))
}

// commitPoint returns the finished shape ID, or "" while a polygon is still
// collecting points.
func commitPoint(this js.Value, args []js.Value) any {
	id, err := eng.CommitPoint()
	if err != nil {
		return result(err)
	}
	return js.ValueOf(map[string]any{"ok": true, "id": id})
}

func finishConstruction(this js.Value, args []js.Value) any {
	id, err := eng.FinishConstruction()
	if err != nil {
		return result(err)
	}
	return js.ValueOf(map[string]any{"ok": true, "id": id})
}

func cancelConstruction(this js.Value, args []js.Value) any {
	return result(eng.CancelConstruction())
}

// --- Selection and modes ---

func selectShape(this js.Value, args []js.Value) any {
	return result(eng.Select(stringArg(args, 0)))
}

func selectAt(this js.Value, args []js.Value) any {
	p, ok := point(args, 0)
	if !ok {
		return js.ValueOf("")
	}
	return js.ValueOf(eng.SelectAt(p))
}

func selectVertexAt(this js.Value, args []js.Value) any {
	p, ok := point(args, 0)
	if !ok {
		return js.ValueOf(-1)
	}
	return js.ValueOf(eng.SelectVertexAt(p))
}

func switchMode(this js.Value, args []js.Value) any {
	return js.ValueOf(eng.SwitchMode().String())
}

func switchViewMode(this js.Value, args []js.Value) any {
	return js.ValueOf(eng.SwitchViewMode().String())
}

// --- Pointer actions ---

func beginAction(this js.Value, args []js.Value) any {
	a, err := engine.ParseAction(stringArg(args, 0))
	if err != nil {
		return result(err)
	}
	p, ok := point(args, 1)
	if !ok {
		return errorf("missing point")
	}
	return result(eng.BeginAction(a, p))
}

func updateAction(this js.Value, args []js.Value) any {
	p, ok := point(args, 0)
	if !ok {
		return errorf("missing point")
	}
	return result(eng.UpdateAction(p))
}

func endAction(this js.Value, args []js.Value) any {
	eng.EndAction()
	return nil
}

func cancelAction(this js.Value, args []js.Value) any {
	eng.CancelAction()
	return nil
}

// --- Edits ---

// setColor takes a #rrggbb string and colors the selection.
func setColor(this js.Value, args []js.Value) any {
	c, err := geometry.ParseHex(stringArg(args, 0))
	if err != nil {
		return result(err)
	}
	return result(eng.SetColor(c))
}

func setName(this js.Value, args []js.Value) any {
	return result(eng.Rename(stringArg(args, 0), stringArg(args, 1)))
}

func setHidden(this js.Value, args []js.Value) any {
	if len(args) < 2 {
		return errorf("missing arguments")
	}
	return result(eng.SetHidden(args[0].String(), args[1].Truthy()))
}

// setTransform(id, json) replaces a transform given as
// {"position":[x,y],"rotation":r,"scale":s}.
func setTransform(this js.Value, args []js.Value) any {
	var t document.TransformRecord
	if err := json.Unmarshal([]byte(stringArg(args, 1)), &t); err != nil {
		return result(err)
	}
	return result(eng.SetTransform(stringArg(args, 0),
		geometry.NewTransform(geometry.Vec2FromArray(t.Position), t.Rotation, t.Scale)))
}

func setLineLength(this js.Value, args []js.Value) any {
	return result(eng.SetLineLength(stringArg(args, 0), floatArg(args, 1)))
}

func setSquareSize(this js.Value, args []js.Value) any {
	return result(eng.SetSquareSize(stringArg(args, 0), floatArg(args, 1)))
}

func setRectangleSize(this js.Value, args []js.Value) any {
	return result(eng.SetRectangleSize(stringArg(args, 0), floatArg(args, 1), floatArg(args, 2)))
}

func addVertexAt(this js.Value, args []js.Value) any {
	p, ok := point(args, 0)
	if !ok {
		return errorf("missing point")
	}
	i, err := eng.AddVertexAt(p)
	if err != nil {
		return result(err)
	}
	return js.ValueOf(map[string]any{"ok": true, "index": i})
}

func deleteVertex(this js.Value, args []js.Value) any {
	if !isNumber(args, 1) {
		return errorf("missing vertex index")
	}
	return result(eng.DeleteVertex(stringArg(args, 0), args[1].Int()))
}

func deleteSelected(this js.Value, args []js.Value) any {
	return result(eng.DeleteSelected())
}

// applyModifier(id, json) runs a modifier such as {"name":"bevel","factor":0.3}
// and returns any created shape IDs.
func applyModifier(this js.Value, args []js.Value) any {
	var m engine.Modifier
	if err := json.Unmarshal([]byte(stringArg(args, 1)), &m); err != nil {
		return result(err)
	}
	created, err := eng.ApplyModifier(stringArg(args, 0), m)
	if err != nil {
		return result(err)
	}
	ids := make([]any, len(created))
	for i, id := range created {
		ids[i] = id
	}
	return js.ValueOf(map[string]any{"ok": true, "created": ids})
}

// --- Queries ---

func render(this js.Value, args []js.Value) any {
	return js.ValueOf(eng.RenderJSON())
}

func hitTest(this js.Value, args []js.Value) any {
	p, ok := point(args, 0)
	if !ok {
		return errorf("missing point")
	}
	return js.ValueOf(eng.HitTest(p.X, p.Y))
}

func getSelectionBounds(this js.Value, args []js.Value) any {
	return js.ValueOf(engine.RectToJSON(eng.SelectionBounds()))
}

func getScene(this js.Value, args []js.Value) any {
	return js.ValueOf(eng.SceneJSON())
}

func getSelection(this js.Value, args []js.Value) any {
	return js.ValueOf(map[string]any{
		"id":     eng.Selected(),
		"vertex": eng.SelectedVertex(),
	})
}

func getState(this js.Value, args []js.Value) any {
	return js.ValueOf(map[string]any{
		"mode":         eng.Mode().String(),
		"view":         eng.ViewMode().String(),
		"action":       eng.ActionLabel(),
		"constructing": eng.Constructing(),
		"shapes":       eng.Len(),
	})
}
