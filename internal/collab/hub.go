package collab

import (
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/lumabench/lumabench/backend-go/internal/document"
)

// DocumentLoader fetches the persisted document for a project.
type DocumentLoader func(projectID string) (*document.BenchDocument, error)

// DocumentSaver persists the document for a project.
type DocumentSaver func(projectID string, doc *document.BenchDocument) error

// saveInterval is how often dirty rooms are flushed to storage.
const saveInterval = 30 * time.Second

type Room struct {
	projectID string
	clients   map[string]*Client // clientID -> client
	presence  *PresenceManager
	state     *DocumentState
	dirty     bool
}

func NewRoom(projectID string, state *DocumentState) *Room {
	return &Room{
		projectID: projectID,
		clients:   make(map[string]*Client),
		presence:  NewPresenceManager(),
		state:     state,
	}
}

type Hub struct {
	mu         sync.RWMutex
	rooms      map[string]*Room // projectID -> room
	register   chan *Client
	unregister chan *Client
	stop       chan struct{}
	done       chan struct{}
	loadDoc    DocumentLoader
	saveDoc    DocumentSaver
}

func NewHub(loader DocumentLoader, saver DocumentSaver) *Hub {
	return &Hub{
		rooms:      make(map[string]*Room),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		stop:       make(chan struct{}),
		done:       make(chan struct{}),
		loadDoc:    loader,
		saveDoc:    saver,
	}
}

func (h *Hub) Run() {
	ticker := time.NewTicker(saveInterval)
	defer ticker.Stop()

	for {
		select {
		case client := <-h.register:
			h.addClient(client)
		case client := <-h.unregister:
			h.removeClient(client)
		case <-ticker.C:
			h.saveDirtyRooms()
		case <-h.stop:
			h.saveDirtyRooms()
			close(h.done)
			return
		}
	}
}

// Stop flushes every dirty room and halts the hub loop.
func (h *Hub) Stop() {
	close(h.stop)
	<-h.done
}

func (h *Hub) Register(client *Client) {
	h.register <- client
}

func (h *Hub) addClient(client *Client) {
	h.mu.Lock()
	room, ok := h.rooms[client.ProjectID]
	if !ok {
		doc, err := h.loadDoc(client.ProjectID)
		if err != nil {
			slog.Warn("load document failed, starting empty", "project", client.ProjectID, "error", err)
			doc = document.NewEmptyDocument(client.ProjectID, "Untitled bench")
		}
		room = NewRoom(client.ProjectID, NewDocumentState(doc))
		h.rooms[client.ProjectID] = room
	}
	room.clients[client.ClientID] = client
	h.mu.Unlock()

	// Send the authoritative document to the new client
	if syncMsg := h.docSyncMessage(room); syncMsg != nil {
		client.Send(syncMsg)
	}

	// Send current presence state to new client
	stateMsg := room.presence.StateMessage()
	if stateMsg != nil {
		client.Send(stateMsg)
	}

	// Broadcast join to other clients
	joinPayload, _ := json.Marshal(PresenceJoinPayload{
		UserID:      client.UserID,
		DisplayName: client.DisplayName,
	})
	joinMsg := &Message{
		Type:    TypePresenceJoin,
		UserID:  client.UserID,
		Payload: joinPayload,
	}
	h.broadcastToRoom(client.ProjectID, joinMsg, client.ClientID)

	slog.Info("client joined", "user", client.UserID, "project", client.ProjectID)
}

func (h *Hub) docSyncMessage(room *Room) *Message {
	docJSON, err := json.Marshal(room.state.GetDocument())
	if err != nil {
		slog.Error("marshal document for sync", "project", room.projectID, "error", err)
		return nil
	}
	payload, _ := json.Marshal(DocSyncPayload{
		Document:  docJSON,
		ServerSeq: room.state.ServerSeq(),
	})
	return &Message{Type: TypeDocSync, Payload: payload}
}

func (h *Hub) removeClient(client *Client) {
	h.mu.Lock()
	room, ok := h.rooms[client.ProjectID]
	if !ok {
		h.mu.Unlock()
		return
	}

	delete(room.clients, client.ClientID)
	client.closeSend()
	room.presence.Remove(client.UserID)

	lastOut := false
	if len(room.clients) == 0 {
		lastOut = true
		if room.dirty {
			h.saveRoom(room)
		}
		delete(h.rooms, client.ProjectID)
	}
	h.mu.Unlock()

	if !lastOut {
		// Broadcast leave to remaining clients
		leavePayload, _ := json.Marshal(PresenceLeavePayload{
			UserID: client.UserID,
		})
		leaveMsg := &Message{
			Type:    TypePresenceLeave,
			UserID:  client.UserID,
			Payload: leavePayload,
		}
		h.broadcastToRoom(client.ProjectID, leaveMsg, "")
	}

	slog.Info("client left", "user", client.UserID, "project", client.ProjectID)
}

// saveDirtyRooms flushes every dirty room. Runs on the hub goroutine.
func (h *Hub) saveDirtyRooms() {
	h.mu.Lock()
	dirty := make([]*Room, 0)
	for _, room := range h.rooms {
		if room.dirty {
			dirty = append(dirty, room)
		}
	}
	h.mu.Unlock()

	for _, room := range dirty {
		h.mu.Lock()
		h.saveRoom(room)
		h.mu.Unlock()
	}
}

// saveRoom persists one room's document. Caller must hold h.mu.
func (h *Hub) saveRoom(room *Room) {
	if err := h.saveDoc(room.projectID, room.state.GetDocument()); err != nil {
		slog.Error("save document", "project", room.projectID, "error", err)
		return
	}
	room.dirty = false
	slog.Info("document saved", "project", room.projectID)
}

func (h *Hub) handleMessage(sender *Client, msg *Message) {
	switch msg.Type {
	case TypePresenceUpdate:
		h.handlePresenceUpdate(sender, msg)
	case TypeOpSubmit:
		h.handleOpSubmit(sender, msg)
	default:
		slog.Warn("unknown message type", "type", msg.Type, "user", sender.UserID)
	}
}

func (h *Hub) handleOpSubmit(sender *Client, msg *Message) {
	var payload OperationSubmitPayload
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		slog.Warn("invalid op payload", "error", err)
		return
	}
	op := payload.Operation

	h.mu.RLock()
	room, ok := h.rooms[sender.ProjectID]
	h.mu.RUnlock()
	if !ok {
		return
	}

	serverSeq, err := room.state.ApplyOperation(op)
	if err != nil {
		nackPayload, _ := json.Marshal(OperationNackPayload{
			OperationID: op.ID,
			Reason:      err.Error(),
		})
		sender.Send(&Message{Type: TypeOpNack, Payload: nackPayload})
		return
	}

	h.mu.Lock()
	room.dirty = true
	h.mu.Unlock()

	ackPayload, _ := json.Marshal(OperationAckPayload{
		OperationID:     op.ID,
		ServerSeq:       serverSeq,
		ServerTimestamp: GetServerTimestamp(),
	})
	sender.Send(&Message{Type: TypeOpAck, Payload: ackPayload})

	broadcastPayload, _ := json.Marshal(OperationBroadcastPayload{
		Operation: op,
		UserID:    sender.UserID,
		ServerSeq: serverSeq,
	})
	broadcastMsg := &Message{
		Type:    TypeOpBroadcast,
		UserID:  sender.UserID,
		Payload: broadcastPayload,
	}
	h.broadcastToRoom(sender.ProjectID, broadcastMsg, sender.ClientID)
}

func (h *Hub) handlePresenceUpdate(sender *Client, msg *Message) {
	var presence PresencePayload
	if err := json.Unmarshal(msg.Payload, &presence); err != nil {
		slog.Warn("invalid presence payload", "error", err)
		return
	}

	presence.DisplayName = sender.DisplayName

	h.mu.RLock()
	room, ok := h.rooms[sender.ProjectID]
	h.mu.RUnlock()
	if !ok {
		return
	}

	room.presence.Update(sender.UserID, &presence)

	// Broadcast to other clients in room
	outPayload, _ := json.Marshal(presence)
	outMsg := &Message{
		Type:    TypePresenceUpdate,
		UserID:  sender.UserID,
		Payload: outPayload,
	}
	h.broadcastToRoom(sender.ProjectID, outMsg, sender.ClientID)
}

func (h *Hub) broadcastToRoom(projectID string, msg *Message, excludeClientID string) {
	h.mu.RLock()
	room, ok := h.rooms[projectID]
	if !ok {
		h.mu.RUnlock()
		return
	}

	clients := make([]*Client, 0, len(room.clients))
	for _, c := range room.clients {
		if c.ClientID != excludeClientID {
			clients = append(clients, c)
		}
	}
	h.mu.RUnlock()

	for _, c := range clients {
		c.Send(msg)
	}
}
