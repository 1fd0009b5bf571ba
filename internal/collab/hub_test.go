package collab

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vertexforge/vertexforge/internal/engine"
	"github.com/vertexforge/vertexforge/internal/typeid"
)

var (
	sceneOne    = typeid.NewSceneID()
	sceneTwo    = typeid.NewSceneID()
	brokenScene = typeid.NewSceneID()
)

func sampleFactory(sceneID string) (*engine.Engine, error) {
	if sceneID == brokenScene {
		return nil, errors.New("no such scene")
	}
	e := engine.NewEngine(engine.WithLogger(slog.New(slog.DiscardHandler)))
	if err := e.LoadSampleScene(sceneID); err != nil {
		return nil, err
	}
	return e, nil
}

func startHub(t *testing.T, opts ...HubOption) (*Hub, *httptest.Server) {
	t.Helper()
	hub := NewHub(sampleFactory, opts...)
	go hub.Run()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sceneID := strings.TrimPrefix(r.URL.Path, "/ws/")
		hub.ServeWebSocket(w, r, sceneID, r.URL.Query().Get("user"), nil)
	}))
	t.Cleanup(func() {
		hub.Stop()
		srv.Close()
	})
	return hub, srv
}

func dial(t *testing.T, srv *httptest.Server, sceneID, user string) *websocket.Conn {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/" + sceneID + "?user=" + user
	conn, _, err := websocket.Dial(ctx, url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close(websocket.StatusNormalClosure, "") })
	return conn
}

func readMessage(t *testing.T, conn *websocket.Conn) Message {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_, data, err := conn.Read(ctx)
	require.NoError(t, err)
	var msg Message
	require.NoError(t, json.Unmarshal(data, &msg))
	return msg
}

func writeMessage(t *testing.T, conn *websocket.Conn, msg *Message) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	data, err := json.Marshal(msg)
	require.NoError(t, err)
	require.NoError(t, conn.Write(ctx, websocket.MessageText, data))
}

// join dials and consumes the welcome and initial sync.
func join(t *testing.T, srv *httptest.Server, sceneID, user string) (*websocket.Conn, DocSyncPayload) {
	t.Helper()
	conn := dial(t, srv, sceneID, user)

	welcome := readMessage(t, conn)
	require.Equal(t, TypeWelcome, welcome.Type)
	var wp WelcomePayload
	require.NoError(t, json.Unmarshal(welcome.Payload, &wp))
	assert.Equal(t, user, wp.UserID)
	assert.NotEmpty(t, wp.ClientID)

	sync := readMessage(t, conn)
	require.Equal(t, TypeDocSync, sync.Type)
	var sp DocSyncPayload
	require.NoError(t, json.Unmarshal(sync.Payload, &sp))
	return conn, sp
}

func TestHubSubmitAckAndBroadcast(t *testing.T) {
	_, srv := startHub(t)

	alice, sync := join(t, srv, sceneOne, "alice")
	assert.Equal(t, sceneOne, sync.Scene.ID)
	assert.Len(t, sync.Scene.Shapes, 4)
	assert.Zero(t, sync.ServerSeq)

	bob, _ := join(t, srv, sceneOne, "bob")

	writeMessage(t, alice, newMessage(TypeOpSubmit, OperationSubmitPayload{Operation: Operation{
		ID:     "op-1",
		Type:   OpShapeCreate,
		Create: &CreateParams{Kind: "square", Size: 0.5},
	}}))

	ack := readMessage(t, alice)
	require.Equal(t, TypeOpAck, ack.Type)
	var ap OperationAckPayload
	require.NoError(t, json.Unmarshal(ack.Payload, &ap))
	assert.Equal(t, "op-1", ap.OperationID)
	assert.Equal(t, int64(1), ap.ServerSeq)
	require.Len(t, ap.Created, 1)

	bc := readMessage(t, bob)
	require.Equal(t, TypeOpBroadcast, bc.Type)
	assert.Equal(t, int64(1), bc.Seq)
	var bp OperationBroadcastPayload
	require.NoError(t, json.Unmarshal(bc.Payload, &bp))
	assert.Equal(t, "alice", bp.UserID)
	assert.Equal(t, ap.Created[0], bp.Operation.ShapeID)
}

func TestHubNackOnInvalidOperation(t *testing.T) {
	_, srv := startHub(t)
	conn, _ := join(t, srv, sceneOne, "alice")

	writeMessage(t, conn, newMessage(TypeOpSubmit, OperationSubmitPayload{Operation: Operation{
		ID:      "op-bad",
		Type:    OpShapeDelete,
		ShapeID: "shape_missing",
	}}))

	nack := readMessage(t, conn)
	require.Equal(t, TypeOpNack, nack.Type)
	var np OperationNackPayload
	require.NoError(t, json.Unmarshal(nack.Payload, &np))
	assert.Equal(t, "op-bad", np.OperationID)
	assert.Contains(t, np.Reason, "shape not found")
}

func TestHubDocRequest(t *testing.T) {
	hub, srv := startHub(t)
	conn, _ := join(t, srv, sceneOne, "alice")

	// An operation submitted outside the socket still reaches the client.
	_, seq, err := hub.Submit(sceneOne, "http", Operation{Type: OpShapeCreate, Create: &CreateParams{Kind: "line"}})
	require.NoError(t, err)
	assert.Equal(t, int64(1), seq)
	bc := readMessage(t, conn)
	require.Equal(t, TypeOpBroadcast, bc.Type)

	writeMessage(t, conn, &Message{Type: TypeDocRequest})
	msg := readMessage(t, conn)
	require.Equal(t, TypeDocSync, msg.Type)
	var sp DocSyncPayload
	require.NoError(t, json.Unmarshal(msg.Payload, &sp))
	assert.Equal(t, int64(1), sp.ServerSeq)
	assert.Len(t, sp.Scene.Shapes, 5)
}

func TestHubRoomsAreIsolated(t *testing.T) {
	hub, _ := startHub(t)

	_, _, err := hub.Submit(sceneOne, "u", Operation{Type: OpShapeCreate, Create: &CreateParams{Kind: "line"}})
	require.NoError(t, err)

	a, err := hub.State(sceneOne)
	require.NoError(t, err)
	b, err := hub.State(sceneTwo)
	require.NoError(t, err)
	assert.Equal(t, int64(1), a.Seq())
	assert.Equal(t, int64(0), b.Seq())

	again, err := hub.State(sceneOne)
	require.NoError(t, err)
	assert.Same(t, a, again)
}

func TestHubFactoryError(t *testing.T) {
	hub, srv := startHub(t)

	_, err := hub.State(brokenScene)
	require.Error(t, err)

	conn := dial(t, srv, brokenScene, "alice")
	msg := readMessage(t, conn)
	assert.Equal(t, TypeError, msg.Type)
}

func TestHubRejectsInvalidSceneID(t *testing.T) {
	hub, srv := startHub(t)

	for _, id := range []string{"", "garbage-1", typeid.NewShapeID()} {
		_, err := hub.State(id)
		assert.ErrorIs(t, err, ErrInvalidScene, id)
		_, _, err = hub.Submit(id, "u", Operation{Type: OpShapeCreate, Create: &CreateParams{Kind: "line"}})
		assert.ErrorIs(t, err, ErrInvalidScene, id)
	}
	assert.Zero(t, hub.RoomCount())

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_, resp, err := websocket.Dial(ctx, "ws"+strings.TrimPrefix(srv.URL, "http")+"/ws/garbage-1", nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Zero(t, hub.RoomCount())
}

func TestHubClosesIdleRoomWhenLastClientLeaves(t *testing.T) {
	hub, srv := startHub(t)

	conn, _ := join(t, srv, sceneOne, "alice")
	assert.Equal(t, 1, hub.RoomCount())

	conn.Close(websocket.StatusNormalClosure, "")
	assert.Eventually(t, func() bool { return hub.RoomCount() == 0 }, 5*time.Second, 10*time.Millisecond)
}

func TestHubKeepsEditedRoom(t *testing.T) {
	hub, srv := startHub(t)

	conn, _ := join(t, srv, sceneOne, "alice")
	_, _, err := hub.Submit(sceneOne, "http", Operation{Type: OpShapeCreate, Create: &CreateParams{Kind: "line"}})
	require.NoError(t, err)
	readMessage(t, conn) // broadcast

	conn.Close(websocket.StatusNormalClosure, "")
	// The edit only lives in memory, so the room must outlive its clients.
	time.Sleep(100 * time.Millisecond)
	state, err := hub.State(sceneOne)
	require.NoError(t, err)
	assert.Equal(t, int64(1), state.Seq())
}

func TestHubMaxRooms(t *testing.T) {
	hub, _ := startHub(t, WithMaxRooms(2))

	for range 2 {
		_, _, err := hub.Submit(typeid.NewSceneID(), "u", Operation{Type: OpShapeCreate, Create: &CreateParams{Kind: "line"}})
		require.NoError(t, err)
	}
	_, err := hub.State(sceneOne)
	assert.ErrorIs(t, err, ErrHubFull)
	assert.Equal(t, 2, hub.RoomCount())
}

func TestHubEvictsUnmodifiedRoomWhenFull(t *testing.T) {
	hub, _ := startHub(t, WithMaxRooms(1))

	idle, err := hub.State(sceneOne)
	require.NoError(t, err)
	assert.Zero(t, idle.Seq())

	_, err = hub.State(sceneTwo)
	require.NoError(t, err)
	assert.Equal(t, 1, hub.RoomCount())
}
