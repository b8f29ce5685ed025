package collab

import "encoding/json"

type Message struct {
	Type      string          `json:"type"`
	ProjectID string          `json:"projectId,omitempty"`
	ClientID  string          `json:"clientId,omitempty"`
	UserID    string          `json:"userId,omitempty"`
	Seq       int64           `json:"seq,omitempty"`
	Payload   json.RawMessage `json:"payload"`
}

type PresencePayload struct {
	Cursor      *CursorPos `json:"cursor,omitempty"`
	Selection   []string   `json:"selection,omitempty"`
	DraggingID  string     `json:"draggingId,omitempty"`
	DisplayName string     `json:"displayName,omitempty"`
}

type CursorPos struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type PresenceStatePayload struct {
	Presences map[string]*PresencePayload `json:"presences"`
}

type PresenceJoinPayload struct {
	UserID      string `json:"userId"`
	DisplayName string `json:"displayName"`
}

type PresenceLeavePayload struct {
	UserID string `json:"userId"`
}

const (
	TypePresenceUpdate = "presence.update"
	TypePresenceState  = "presence.state"
	TypePresenceJoin   = "presence.join"
	TypePresenceLeave  = "presence.leave"
	TypeError          = "error"

	// Connection
	TypeWelcome = "welcome"

	// Document sync
	TypeDocSync = "doc.sync"

	// Operation message types
	TypeOpSubmit    = "op.submit"
	TypeOpAck       = "op.ack"
	TypeOpNack      = "op.nack"
	TypeOpBroadcast = "op.broadcast"
)

// --- Operation Types ---

// Operation represents one bench document mutation. The Previous* fields
// carry the pre-image so clients can undo locally without another round
// trip to the server.
type Operation struct {
	ID        string `json:"id"`
	Type      string `json:"type"`
	Timestamp int64  `json:"timestamp"`
	ClientSeq int64  `json:"clientSeq"`
	ObjectID  string `json:"objectId,omitempty"`

	// For component.move / source.move
	X         *float64 `json:"x,omitempty"`
	Y         *float64 `json:"y,omitempty"`
	PreviousX *float64 `json:"previousX,omitempty"`
	PreviousY *float64 `json:"previousY,omitempty"`

	// For component.rotate / source.rotate, radians
	Angle         *float64 `json:"angle,omitempty"`
	PreviousAngle *float64 `json:"previousAngle,omitempty"`

	// For component.param
	Param         string   `json:"param,omitempty"`
	Value         *float64 `json:"value,omitempty"`
	PreviousValue *float64 `json:"previousValue,omitempty"`

	// For component.create / component.delete
	Component         json.RawMessage `json:"component,omitempty"`
	PreviousComponent json.RawMessage `json:"previousComponent,omitempty"`

	// For source.create / source.delete / source.update
	Source         json.RawMessage `json:"source,omitempty"`
	PreviousSource json.RawMessage `json:"previousSource,omitempty"`

	// For bench.update
	Changes json.RawMessage `json:"changes,omitempty"`

	// For project.rename
	Name         string `json:"name,omitempty"`
	PreviousName string `json:"previousName,omitempty"`
}

// OperationSubmitPayload is the payload for op.submit messages
type OperationSubmitPayload struct {
	Operation Operation `json:"operation"`
}

// OperationAckPayload is the payload for op.ack messages
type OperationAckPayload struct {
	OperationID     string `json:"operationId"`
	ServerSeq       int64  `json:"serverSeq"`
	ServerTimestamp int64  `json:"serverTimestamp"`
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

// DocSyncPayload carries the authoritative document to a joining client.
type DocSyncPayload struct {
	Document  json.RawMessage `json:"document"`
	ServerSeq int64           `json:"serverSeq"`
}
