package collab

import (
	"encoding/json"

	"github.com/vertexforge/vertexforge/internal/document"
	"github.com/vertexforge/vertexforge/internal/engine"
)

type Message struct {
	Type     string          `json:"type"`
	SceneID  string          `json:"sceneId,omitempty"`
	ClientID string          `json:"clientId,omitempty"`
	UserID   string          `json:"userId,omitempty"`
	Seq      int64           `json:"seq,omitempty"`
	Payload  json.RawMessage `json:"payload"`
}

const (
	TypeError = "error"

	// Connection
	TypeWelcome = "welcome"

	// Document sync
	TypeDocSync    = "doc.sync"
	TypeDocRequest = "doc.request"

	// Operation message types
	TypeOpSubmit    = "op.submit"
	TypeOpAck       = "op.ack"
	TypeOpNack      = "op.nack"
	TypeOpBroadcast = "op.broadcast"
)

type WelcomePayload struct {
	ClientID  string `json:"clientId"`
	UserID    string `json:"userId"`
	ServerSeq int64  `json:"serverSeq"`
}

type DocSyncPayload struct {
	Scene     document.Scene `json:"scene"`
	ServerSeq int64          `json:"serverSeq"`
}

type ErrorPayload struct {
	Message string `json:"message"`
}

// --- Operation Types ---

const (
	OpShapeCreate    = "shape.create"
	OpShapeDelete    = "shape.delete"
	OpShapeRename    = "shape.rename"
	OpShapeTransform = "shape.transform"
	OpShapeColor     = "shape.color"
	OpShapeHidden    = "shape.hidden"
	OpShapeModifier  = "shape.modifier"
	OpShapeImport    = "shape.import"
	OpVertexMove     = "vertex.move"
	OpVertexColor    = "vertex.color"
)

// Operation represents a scene mutation
type Operation struct {
	ID        string `json:"id"`
	Type      string `json:"type"`
	Timestamp int64  `json:"timestamp"`
	ClientSeq int64  `json:"clientSeq"`
	ShapeID   string `json:"shapeId,omitempty"`

	// For shape.create
	Create *CreateParams `json:"create,omitempty"`

	// For shape.import
	Record *document.ShapeRecord `json:"record,omitempty"`

	// For shape.rename
	Name string `json:"name,omitempty"`

	// For shape.transform
	Transform *document.TransformRecord `json:"transform,omitempty"`

	// For shape.color / vertex.color
	Color *[3]float64 `json:"color,omitempty"`

	// For shape.hidden
	Hidden *bool `json:"hidden,omitempty"`

	// For vertex.move / vertex.color
	Index    *int        `json:"index,omitempty"`
	Position *[2]float64 `json:"position,omitempty"`

	// For shape.modifier
	Modifier *engine.Modifier `json:"modifier,omitempty"`

	// Filled by the server: shapes the operation created
	Created []string `json:"created,omitempty"`
}

// CreateParams describes a shape created with default geometry. Zero
// values fall back to the engine defaults.
type CreateParams struct {
	Kind   string  `json:"kind"`
	Length float64 `json:"length,omitempty"`
	Width  float64 `json:"width,omitempty"`
	Size   float64 `json:"size,omitempty"`
	Sides  int     `json:"sides,omitempty"`
	Radius float64 `json:"radius,omitempty"`
}

// OperationSubmitPayload is the payload for op.submit messages
type OperationSubmitPayload struct {
	Operation Operation `json:"operation"`
}

// OperationAckPayload is the payload for op.ack messages
type OperationAckPayload struct {
	OperationID     string   `json:"operationId"`
	ServerSeq       int64    `json:"serverSeq"`
	ServerTimestamp int64    `json:"serverTimestamp"`
	Created         []string `json:"created,omitempty"`
}

// OperationNackPayload is the payload for op.nack messages
type OperationNackPayload struct {
	OperationID string `json:"operationId"`
	Reason      string `json:"reason"`
}

// OperationBroadcastPayload is the payload for op.broadcast messages
type OperationBroadcastPayload struct {
	Operation Operation `json:"operation"`
	UserID    string    `json:"userId"`
	ServerSeq int64     `json:"serverSeq"`
}

func newMessage(typ string, payload any) *Message {
	data, _ := json.Marshal(payload)
	return &Message{Type: typ, Payload: data}
}
