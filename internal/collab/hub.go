package collab

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/vertexforge/vertexforge/internal/document"
	"github.com/vertexforge/vertexforge/internal/engine"
	"github.com/vertexforge/vertexforge/internal/typeid"
)

var (
	ErrInvalidScene = errors.New("invalid scene id")
	ErrHubFull      = errors.New("too many open scenes")
)

// DefaultMaxRooms bounds the scenes a hub keeps in memory.
const DefaultMaxRooms = 1000

// SceneFactory builds the engine of a room the first time its scene is used.
type SceneFactory func(sceneID string) (*engine.Engine, error)

type Room struct {
	sceneID string
	clients map[string]*Client // clientID -> client
	state   *DocumentState

	// submit serializes apply and fan-out so every client sees operations in
	// server sequence order. closed is guarded by it.
	submit sync.Mutex
	closed bool
}

func NewRoom(sceneID string, state *DocumentState) *Room {
	return &Room{
		sceneID: sceneID,
		clients: make(map[string]*Client),
		state:   state,
	}
}

type Hub struct {
	mu         sync.RWMutex
	rooms      map[string]*Room // sceneID -> room
	factory    SceneFactory
	maxRooms   int
	register   chan *Client
	unregister chan *Client
	done       chan struct{}
	stopped    chan struct{}
	stopOnce   sync.Once
}

type HubOption func(*Hub)

// WithMaxRooms sets how many scenes may be open at once.
func WithMaxRooms(n int) HubOption {
	return func(h *Hub) {
		if n > 0 {
			h.maxRooms = n
		}
	}
}

// NewHub creates a hub. Scenes are only held in memory, so a room is closed
// only when it has no clients and no applied operations; the factory can
// rebuild it unchanged.
func NewHub(factory SceneFactory, opts ...HubOption) *Hub {
	h := &Hub{
		rooms:      make(map[string]*Room),
		factory:    factory,
		maxRooms:   DefaultMaxRooms,
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		stopped:    make(chan struct{}),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func (h *Hub) Run() {
	defer close(h.stopped)
	for {
		select {
		case client := <-h.register:
			h.addClient(client)
		case client := <-h.unregister:
			h.removeClient(client)
		case <-h.done:
			h.disconnectAll()
			return
		}
	}
}

// Stop disconnects every client and ends Run. It must only be called once
// Run has been started.
func (h *Hub) Stop() {
	h.stopOnce.Do(func() { close(h.done) })
	<-h.stopped
}

func (h *Hub) Register(client *Client) {
	select {
	case h.register <- client:
	case <-h.done:
		client.closeSend()
	}
}

func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

// State returns the document of a scene, creating its room on first use.
func (h *Hub) State(sceneID string) (*DocumentState, error) {
	room, err := h.room(sceneID)
	if err != nil {
		return nil, err
	}
	return room.state, nil
}

// RenderScene compiles the draw commands of a scene.
func (h *Hub) RenderScene(sceneID string, view engine.ViewMode) ([]engine.DrawCommand, error) {
	state, err := h.State(sceneID)
	if err != nil {
		return nil, err
	}
	return state.Render(view), nil
}

// SceneDocument returns the current document of a scene.
func (h *Hub) SceneDocument(sceneID string) (document.Scene, error) {
	state, err := h.State(sceneID)
	if err != nil {
		return document.Scene{}, err
	}
	scene, _ := state.Scene()
	return scene, nil
}

// Submit applies an operation on behalf of userID and broadcasts it to every
// client of the scene.
func (h *Hub) Submit(sceneID, userID string, op Operation) (Operation, int64, error) {
	return h.submit(sceneID, userID, "", op)
}

// RoomCount returns the number of open scenes.
func (h *Hub) RoomCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms)
}

// lockRoom returns the open room of a scene with its submit lock held.
func (h *Hub) lockRoom(sceneID string) (*Room, error) {
	for {
		room, err := h.room(sceneID)
		if err != nil {
			return nil, err
		}
		room.submit.Lock()
		if !room.closed {
			return room, nil
		}
		room.submit.Unlock()
	}
}

func (h *Hub) room(sceneID string) (*Room, error) {
	if err := typeid.Validate(sceneID, typeid.PrefixScene); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidScene, err)
	}

	h.mu.RLock()
	room, ok := h.rooms[sceneID]
	h.mu.RUnlock()
	if ok {
		return room, nil
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if room, ok := h.rooms[sceneID]; ok {
		return room, nil
	}
	if len(h.rooms) >= h.maxRooms && !h.evictIdleLocked() {
		return nil, fmt.Errorf("%w: %d", ErrHubFull, h.maxRooms)
	}
	e, err := h.factory(sceneID)
	if err != nil {
		return nil, fmt.Errorf("load scene %s: %w", sceneID, err)
	}
	room = NewRoom(sceneID, NewDocumentState(e))
	h.rooms[sceneID] = room
	slog.Info("room created", "scene", sceneID)
	return room, nil
}

// closeIfIdleLocked drops a room that has no clients and no operations. The
// caller holds h.mu for writing.
func (h *Hub) closeIfIdleLocked(room *Room) bool {
	if len(room.clients) > 0 || !room.submit.TryLock() {
		return false
	}
	defer room.submit.Unlock()
	if room.state.Seq() > 0 {
		return false
	}
	room.closed = true
	delete(h.rooms, room.sceneID)
	slog.Info("room closed", "scene", room.sceneID)
	return true
}

func (h *Hub) evictIdleLocked() bool {
	for _, room := range h.rooms {
		if h.closeIfIdleLocked(room) {
			return true
		}
	}
	return false
}

func (h *Hub) addClient(client *Client) {
	// Joining under the submit lock keeps the sync snapshot and the first
	// broadcast the client receives contiguous.
	room, err := h.lockRoom(client.SceneID)
	if err != nil {
		slog.Error("open room", "error", err, "scene", client.SceneID)
		client.Send(newMessage(TypeError, ErrorPayload{Message: err.Error()}))
		client.closeSend()
		return
	}
	defer room.submit.Unlock()

	h.mu.Lock()
	room.clients[client.ClientID] = client
	h.mu.Unlock()

	scene, seq := room.state.Scene()
	client.Send(newMessage(TypeWelcome, WelcomePayload{
		ClientID:  client.ClientID,
		UserID:    client.UserID,
		ServerSeq: seq,
	}))
	client.Send(newMessage(TypeDocSync, DocSyncPayload{Scene: scene, ServerSeq: seq}))

	slog.Info("client joined", "user", client.UserID, "scene", client.SceneID)
}

func (h *Hub) removeClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	room, ok := h.rooms[client.SceneID]
	if !ok {
		return
	}
	if _, ok := room.clients[client.ClientID]; !ok {
		return
	}
	delete(room.clients, client.ClientID)
	client.closeSend()

	slog.Info("client left", "user", client.UserID, "scene", client.SceneID)
	h.closeIfIdleLocked(room)
}

func (h *Hub) disconnectAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, room := range h.rooms {
		for id, c := range room.clients {
			c.closeSend()
			delete(room.clients, id)
		}
	}
}

func (h *Hub) handleMessage(sender *Client, msg *Message) {
	switch msg.Type {
	case TypeOpSubmit:
		h.handleOpSubmit(sender, msg)
	case TypeDocRequest:
		h.handleDocRequest(sender)
	default:
		slog.Warn("unknown message type", "type", msg.Type, "user", sender.UserID)
	}
}

func (h *Hub) handleOpSubmit(sender *Client, msg *Message) {
	var payload OperationSubmitPayload
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		slog.Warn("invalid operation payload", "error", err, "user", sender.UserID)
		sender.Send(newMessage(TypeError, ErrorPayload{Message: "invalid operation payload"}))
		return
	}

	if _, err := h.room(sender.SceneID); err != nil {
		sender.Send(newMessage(TypeOpNack, OperationNackPayload{
			OperationID: payload.Operation.ID,
			Reason:      err.Error(),
		}))
		return
	}

	h.submit(sender.SceneID, sender.UserID, sender.ClientID, payload.Operation)
}

// submit applies op and answers the submitting client, if any, with an ack
// or nack. Every other client receives the broadcast.
func (h *Hub) submit(sceneID, userID, clientID string, op Operation) (Operation, int64, error) {
	room, err := h.lockRoom(sceneID)
	if err != nil {
		return op, 0, err
	}
	defer room.submit.Unlock()

	applied, seq, err := room.state.ApplyOperation(op)
	if err != nil {
		slog.Debug("operation rejected", "op", op.Type, "error", err, "user", userID)
		if clientID != "" {
			h.sendTo(room, clientID, newMessage(TypeOpNack, OperationNackPayload{
				OperationID: op.ID,
				Reason:      err.Error(),
			}))
		}
		return applied, 0, err
	}

	if clientID != "" {
		h.sendTo(room, clientID, newMessage(TypeOpAck, OperationAckPayload{
			OperationID:     applied.ID,
			ServerSeq:       seq,
			ServerTimestamp: GetServerTimestamp(),
			Created:         applied.Created,
		}))
	}

	out := newMessage(TypeOpBroadcast, OperationBroadcastPayload{
		Operation: applied,
		UserID:    userID,
		ServerSeq: seq,
	})
	out.SceneID = room.sceneID
	out.UserID = userID
	out.Seq = seq
	h.broadcastToRoom(room.sceneID, out, clientID)

	return applied, seq, nil
}

func (h *Hub) handleDocRequest(sender *Client) {
	room, err := h.room(sender.SceneID)
	if err != nil {
		sender.Send(newMessage(TypeError, ErrorPayload{Message: err.Error()}))
		return
	}
	scene, seq := room.state.Scene()
	sender.Send(newMessage(TypeDocSync, DocSyncPayload{Scene: scene, ServerSeq: seq}))
}

func (h *Hub) sendTo(room *Room, clientID string, msg *Message) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if c, ok := room.clients[clientID]; ok {
		c.Send(msg)
	}
}

// broadcastToRoom holds the read lock while sending so no client channel is
// closed underneath it. Send never blocks.
func (h *Hub) broadcastToRoom(sceneID string, msg *Message, excludeClientID string) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	room, ok := h.rooms[sceneID]
	if !ok {
		return
	}
	for _, c := range room.clients {
		if c.ClientID != excludeClientID {
			c.Send(msg)
		}
	}
}
