package collab

import (
	"encoding/json"
	"log/slog"
	"sync"
)

// maxPresenceSelection bounds the selection id list a client may advertise,
// keeping presence broadcasts small even if a client selects the whole bench.
const maxPresenceSelection = 128

// PresenceManager tracks who is on the bench: cursor position, selected
// component ids, and the component being dragged, per user.
type PresenceManager struct {
	mu        sync.RWMutex
	presences map[string]*PresencePayload // userID -> presence
}

func NewPresenceManager() *PresenceManager {
	return &PresenceManager{
		presences: make(map[string]*PresencePayload),
	}
}

// Update replaces a user's presence. Oversized selections are truncated
// before storing so every later broadcast stays bounded.
func (pm *PresenceManager) Update(userID string, p *PresencePayload) {
	if len(p.Selection) > maxPresenceSelection {
		p.Selection = p.Selection[:maxPresenceSelection]
	}

	pm.mu.Lock()
	defer pm.mu.Unlock()
	pm.presences[userID] = p
}

// Remove drops a user's presence, including any in-flight drag state.
func (pm *PresenceManager) Remove(userID string) {
	pm.mu.Lock()
	defer pm.mu.Unlock()
	delete(pm.presences, userID)
}

// Snapshot returns a copy of the current presence map.
func (pm *PresenceManager) Snapshot() map[string]*PresencePayload {
	pm.mu.RLock()
	defer pm.mu.RUnlock()

	result := make(map[string]*PresencePayload, len(pm.presences))
	for k, v := range pm.presences {
		result[k] = v
	}
	return result
}

// StateMessage packages the full presence map for a newly joined client.
func (pm *PresenceManager) StateMessage() *Message {
	payload, err := json.Marshal(PresenceStatePayload{Presences: pm.Snapshot()})
	if err != nil {
		slog.Error("marshal presence state", "error", err)
		return nil
	}
	return &Message{
		Type:    TypePresenceState,
		Payload: payload,
	}
}
