package scene

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vertexforge/vertexforge/internal/collab"
	"github.com/vertexforge/vertexforge/internal/engine"
	"github.com/vertexforge/vertexforge/internal/geometry"
	"github.com/vertexforge/vertexforge/internal/middleware"
	"github.com/vertexforge/vertexforge/internal/typeid"
)

var (
	scenePath = "/scenes/" + typeid.NewSceneID()
	emptyPath = "/scenes/" + typeid.NewSceneID()
	otherPath = "/scenes/" + typeid.NewSceneID()
)

func newTestRouter(t *testing.T) *mux.Router {
	t.Helper()
	r, _ := newTestRouterWithHub(t)
	return r
}

func newTestRouterWithHub(t *testing.T) (*mux.Router, *collab.Hub) {
	t.Helper()
	hub := collab.NewHub(func(sceneID string) (*engine.Engine, error) {
		return engine.NewEngine(engine.WithLogger(slog.New(slog.DiscardHandler))), nil
	})
	r := mux.NewRouter()
	r.Use(middleware.Identity)
	NewHandler(NewService(hub)).Routes(r)
	return r, hub
}

func do(t *testing.T, r http.Handler, method, path string, body io.Reader) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, body)
	req.Header.Set(middleware.UserIDHeader, "tester")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func submit(t *testing.T, r http.Handler, ops ...collab.Operation) (*httptest.ResponseRecorder, submitResponse) {
	t.Helper()
	body, err := json.Marshal(submitRequest{Operations: ops})
	require.NoError(t, err)
	rec := do(t, r, http.MethodPost, scenePath+"/ops", bytes.NewReader(body))
	var resp submitResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp), rec.Body.String())
	return rec, resp
}

func createSquare(t *testing.T, r http.Handler) string {
	t.Helper()
	rec, resp := submit(t, r, collab.Operation{Type: collab.OpShapeCreate, Create: &collab.CreateParams{Kind: "square", Size: 1}})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	require.Len(t, resp.Applied, 1)
	return resp.Applied[0].Operation.ShapeID
}

func TestSubmitAndGet(t *testing.T) {
	r := newTestRouter(t)

	rec, resp := submit(t, r,
		collab.Operation{Type: collab.OpShapeCreate, Create: &collab.CreateParams{Kind: "line"}},
		collab.Operation{Type: collab.OpShapeCreate, Create: &collab.CreateParams{Kind: "polygon", Sides: 6}},
	)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, resp.Applied, 2)
	assert.Equal(t, int64(1), resp.Applied[0].ServerSeq)
	assert.Equal(t, int64(2), resp.Applied[1].ServerSeq)
	assert.True(t, strings.HasPrefix(resp.Applied[0].Operation.ID, "op_"), "server assigns operation IDs")
	assert.NotZero(t, resp.Applied[0].Operation.Timestamp)

	rec = do(t, r, http.MethodGet, scenePath, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var snap Snapshot
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &snap))
	assert.Equal(t, int64(2), snap.ServerSeq)
	require.Len(t, snap.Scene.Shapes, 2)
	assert.Equal(t, "polygon", snap.Scene.Shapes[1].Type)

	rec = do(t, r, http.MethodGet, scenePath+"/ops?since=1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var ops []collab.Operation
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &ops))
	require.Len(t, ops, 1)
	assert.Equal(t, resp.Applied[1].Operation.ShapeID, ops[0].ShapeID)

	rec = do(t, r, http.MethodGet, scenePath+"/ops?since=-1", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSubmitStopsAtFirstError(t *testing.T) {
	r := newTestRouter(t)

	rec, resp := submit(t, r,
		collab.Operation{Type: collab.OpShapeCreate, Create: &collab.CreateParams{Kind: "square"}},
		collab.Operation{Type: collab.OpShapeDelete, ShapeID: typeid.NewShapeID()},
		collab.Operation{Type: collab.OpShapeCreate, Create: &collab.CreateParams{Kind: "line"}},
	)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Len(t, resp.Applied, 1)
	assert.Contains(t, resp.Error, "operation 1")
}

func TestSubmitErrors(t *testing.T) {
	r := newTestRouter(t)
	id := createSquare(t, r)

	rec := do(t, r, http.MethodPost, scenePath+"/ops", strings.NewReader("{"))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, r, http.MethodPost, scenePath+"/ops", strings.NewReader(`{"operations":[]}`))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, _ = submit(t, r, collab.Operation{Type: "shape.explode"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, _ = submit(t, r, collab.Operation{Type: collab.OpShapeModifier, ShapeID: id, Modifier: &engine.Modifier{Name: engine.ModSubdivide}})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	many := make([]collab.Operation, MaxBatchSize+1)
	for i := range many {
		many[i] = collab.Operation{Type: collab.OpShapeCreate, Create: &collab.CreateParams{Kind: "line"}}
	}
	rec, resp := submit(t, r, many...)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, resp.Applied)
}

func TestRender(t *testing.T) {
	r := newTestRouter(t)

	rec := do(t, r, http.MethodGet, emptyPath+"/render", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, "[]", rec.Body.String())

	createSquare(t, r)
	rec = do(t, r, http.MethodGet, scenePath+"/render", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var commands []engine.DrawCommand
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &commands))
	require.Len(t, commands, 2)
	assert.Equal(t, engine.OpFill, commands[0].Op)
	assert.Equal(t, 4, commands[0].VertexCount())

	rec = do(t, r, http.MethodGet, scenePath+"/render?view=wireframe", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &commands))
	assert.Equal(t, engine.OpOutline, commands[0].Op)

	rec = do(t, r, http.MethodGet, scenePath+"/render?view=xray", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHitTest(t *testing.T) {
	r := newTestRouter(t)
	id := createSquare(t, r)

	tests := []struct {
		query string
		want  string
	}{
		{"x=0&y=0", id},
		{"x=0.4&y=-0.4", id},
		{"x=0.9&y=0", ""},
	}
	for _, tt := range tests {
		rec := do(t, r, http.MethodGet, scenePath+"/hit?"+tt.query, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		var got map[string]string
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
		assert.Equal(t, tt.want, got["shapeId"], tt.query)
	}

	rec := do(t, r, http.MethodGet, scenePath+"/hit?x=left", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestExportImportRoundTrip(t *testing.T) {
	r := newTestRouter(t)
	id := createSquare(t, r)

	rec := do(t, r, http.MethodGet, scenePath+"/shapes/"+id+"?format=yaml", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/yaml", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Body.String(), "type: square")

	rec = do(t, r, http.MethodPost, otherPath+"/import?format=yaml", bytes.NewReader(rec.Body.Bytes()))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var applied Applied
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &applied))
	assert.Equal(t, collab.OpShapeImport, applied.Operation.Type)
	assert.Equal(t, id, applied.Operation.ShapeID, "a free shape ID is kept")

	rec = do(t, r, http.MethodPost, otherPath+"/import", strings.NewReader(`{"type":"hexagon"}`))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, r, http.MethodGet, scenePath+"/shapes/"+id+"?format=toml", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestShapeLookups(t *testing.T) {
	r := newTestRouter(t)
	id := createSquare(t, r)

	rec := do(t, r, http.MethodGet, scenePath+"/shapes/"+id+"/bounds", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var rect geometry.Rect
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &rect))
	assert.InDelta(t, 1.0, rect.Width, 1e-9)
	assert.InDelta(t, 1.0, rect.Height, 1e-9)

	rec = do(t, r, http.MethodGet, scenePath+"/shapes/"+id+"/hull", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var hull struct {
		Points [][2]float64 `json:"points"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &hull))
	assert.Len(t, hull.Points, 4)

	rec = do(t, r, http.MethodGet, scenePath+"/shapes/not-an-id/bounds", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, r, http.MethodGet, scenePath+"/shapes/"+typeid.NewShapeID()+"/hull", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSchema(t *testing.T) {
	r := newTestRouter(t)
	rec := do(t, r, http.MethodGet, "/schema/shape.json", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, json.Valid(rec.Body.Bytes()))
}

func TestInvalidSceneIDOpensNoRoom(t *testing.T) {
	r, hub := newTestRouterWithHub(t)

	line, err := json.Marshal(submitRequest{Operations: []collab.Operation{
		{Type: collab.OpShapeCreate, Create: &collab.CreateParams{Kind: "line"}},
	}})
	require.NoError(t, err)

	requests := []struct {
		method, path string
		body         []byte
	}{
		{http.MethodGet, "/scenes/garbage-1", nil},
		{http.MethodGet, "/scenes/garbage-2/ops", nil},
		{http.MethodPost, "/scenes/garbage-3/ops", line},
		{http.MethodGet, "/scenes/garbage-4/render", nil},
		{http.MethodGet, "/scenes/garbage-5/hit?x=0&y=0", nil},
		{http.MethodGet, "/scenes/" + typeid.NewShapeID(), nil},
		{http.MethodGet, "/scenes/garbage-6/shapes/" + typeid.NewShapeID(), nil},
	}
	for _, tt := range requests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			rec := do(t, r, tt.method, tt.path, bytes.NewReader(tt.body))
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
	assert.Zero(t, hub.RoomCount())

	rec := do(t, r, http.MethodGet, scenePath, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, hub.RoomCount())
}
