package ws

import (
	"context"
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"activity-planner/internal/models"
	"activity-planner/internal/observability"
)

const commentsRoutingKey = "ws_events.activities"

// Hub maintains active websocket rooms, one per activity.
type Hub struct {
	rooms    map[string]map[*websocket.Conn]bool
	connInfo map[string]map[*websocket.Conn]ConnInfo
	mu       sync.RWMutex
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{
		rooms:    make(map[string]map[*websocket.Conn]bool),
		connInfo: make(map[string]map[*websocket.Conn]ConnInfo),
	}
}

// AddClient registers a websocket connection in an activity room.
func (h *Hub) AddClient(activityID string, conn *websocket.Conn, info ConnInfo) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.rooms[activityID]; !ok {
		h.rooms[activityID] = make(map[*websocket.Conn]bool)
	}
	h.rooms[activityID][conn] = true
	if _, ok := h.connInfo[activityID]; !ok {
		h.connInfo[activityID] = make(map[*websocket.Conn]ConnInfo)
	}
	h.connInfo[activityID][conn] = info
}

// RemoveClient removes a websocket connection from its activity room.
func (h *Hub) RemoveClient(activityID string, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if conns, ok := h.rooms[activityID]; ok {
		delete(conns, conn)
		if len(conns) == 0 {
			delete(h.rooms, activityID)
		}
	}
	if infos, ok := h.connInfo[activityID]; ok {
		delete(infos, conn)
		if len(infos) == 0 {
			delete(h.connInfo, activityID)
		}
	}
}

// BroadcastComment sends a ReceiveComment event to every client in the room.
// Writes are serialized under the hub lock so concurrent room readers cannot
// interleave frames on the same connection.
func (h *Hub) BroadcastComment(activityID string, comment models.Comment) {
	event := models.CommentEvent{Type: models.EventReceiveComment, Comment: &comment}
	payload, _ := json.Marshal(event)

	h.mu.Lock()
	var failed []*websocket.Conn
	for conn := range h.rooms[activityID] {
		if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			log.Printf("websocket write error: %v", err)
			failed = append(failed, conn)
		}
	}
	h.mu.Unlock()

	observability.IncCommentBroadcast()

	for _, conn := range failed {
		conn.Close()
		h.publishWSError(activityID, conn)
		h.RemoveClient(activityID, conn)
	}
}

func (h *Hub) publishWSError(activityID string, conn *websocket.Conn) {
	info, ok := h.getConnInfo(activityID, conn)
	if !ok {
		return
	}

	payload := map[string]interface{}{
		"ws": map[string]interface{}{
			"activity_id": activityID,
			"event":       "ws_error",
			"conn_id":     info.ConnID,
			"duration_ms": time.Since(info.ConnectedAt).Milliseconds(),
			"reason":      "write failed",
		},
		"identity": map[string]interface{}{
			"username":  info.Username,
			"device_id": info.DeviceID,
			"ip":        info.IP,
		},
	}

	headers := observability.EventHeaders(info.RequestID, info.TraceID)
	_ = observability.PublishEvent(context.Background(), commentsRoutingKey, observability.EventEnvelope{
		EventType: "ws_events",
		EventName: "ws_error",
		Payload:   payload,
	}, headers)
	observability.IncWSEvent("ws_error")
}

func (h *Hub) getConnInfo(activityID string, conn *websocket.Conn) (ConnInfo, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if infos, ok := h.connInfo[activityID]; ok {
		info, exists := infos[conn]
		return info, exists
	}
	return ConnInfo{}, false
}
