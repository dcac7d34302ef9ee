package ws

import (
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.opentelemetry.io/otel"

	"activity-planner/internal/auth"
	"activity-planner/internal/models"
	"activity-planner/internal/observability"
	"activity-planner/internal/repositories"
)

// ActivityWebSocketHandler handles activity comment websocket connections.
type ActivityWebSocketHandler struct {
	hub          *Hub
	activityRepo repositories.ActivityRepository
	commentRepo  repositories.CommentRepository
	tokens       *auth.TokenManager
}

// NewActivityWebSocketHandler constructs an ActivityWebSocketHandler.
func NewActivityWebSocketHandler(hub *Hub, activityRepo repositories.ActivityRepository, commentRepo repositories.CommentRepository, tokens *auth.TokenManager) *ActivityWebSocketHandler {
	return &ActivityWebSocketHandler{hub: hub, activityRepo: activityRepo, commentRepo: commentRepo, tokens: tokens}
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Handle upgrades the connection, registers the client in the activity room and
// relays SendComment events back out as ReceiveComment broadcasts.
func (h *ActivityWebSocketHandler) Handle(c *gin.Context) {
	activityID := c.Param("activity_id")

	ctx, span := otel.Tracer("activity-planner/ws").Start(c.Request.Context(), "ws.handshake")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	token := c.GetHeader("Authorization")
	if token == "" {
		token = c.Query("token")
		if token != "" {
			token = "Bearer " + token
		}
	}

	username, err := h.validateToken(token)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
		return
	}

	if _, err := h.activityRepo.GetActivity(c.Request.Context(), activityID); err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, repositories.ErrActivityNotFound) {
			status = http.StatusNotFound
		}
		c.JSON(status, gin.H{"error": "activity not found"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}
	traceID := span.SpanContext().TraceID().String()
	meta := observability.ClientMetaFromRequest(c.Request)
	requestID := meta.RequestID
	info := ConnInfo{
		ConnID:      uuid.NewString(),
		Username:    username,
		DeviceID:    meta.DeviceID,
		IP:          meta.IP,
		RequestID:   requestID,
		TraceID:     traceID,
		ConnectedAt: time.Now(),
	}
	h.hub.AddClient(activityID, conn, info)

	observability.IncWSActive()
	observability.IncWSEvent("ws_connect")
	_ = observability.PublishEvent(ctx, commentsRoutingKey, observability.EventEnvelope{
		EventType: "ws_events",
		EventName: "ws_connect",
		Payload:   wsEventPayload(activityID, "ws_connect", info, 0, ""),
	}, observability.EventHeaders(requestID, traceID))

	go func() {
		var closeReason string
		defer func() {
			h.hub.RemoveClient(activityID, conn)
			observability.DecWSActive()
			observability.IncWSEvent("ws_disconnect")
			_ = observability.PublishEvent(ctx, commentsRoutingKey, observability.EventEnvelope{
				EventType: "ws_events",
				EventName: "ws_disconnect",
				Payload:   wsEventPayload(activityID, "ws_disconnect", info, time.Since(info.ConnectedAt).Milliseconds(), closeReason),
			}, observability.EventHeaders(requestID, traceID))
			conn.Close()
		}()
		for {
			var event models.CommentEvent
			if err := conn.ReadJSON(&event); err != nil {
				closeReason = err.Error()
				if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
					observability.IncWSEvent("ws_error")
					_ = observability.PublishEvent(ctx, commentsRoutingKey, observability.EventEnvelope{
						EventType: "ws_events",
						EventName: "ws_error",
						Payload:   wsEventPayload(activityID, "ws_error", info, time.Since(info.ConnectedAt).Milliseconds(), closeReason),
					}, observability.EventHeaders(requestID, traceID))
				}
				return
			}

			if event.Type != models.EventSendComment || event.Body == "" {
				continue
			}

			comment, err := h.commentRepo.CreateComment(ctx, activityID, username, event.Body)
			if err != nil {
				log.Printf("store comment failed: %v", err)
				continue
			}
			h.hub.BroadcastComment(activityID, comment)
		}
	}()
}

func (h *ActivityWebSocketHandler) validateToken(header string) (string, error) {
	parts := strings.Split(header, " ")
	if len(parts) == 2 {
		return h.tokens.Verify(parts[1])
	}
	return "", auth.ErrInvalidToken
}

func wsEventPayload(activityID, event string, info ConnInfo, durationMS int64, reason string) map[string]interface{} {
	return map[string]interface{}{
		"ws": map[string]interface{}{
			"activity_id": activityID,
			"event":       event,
			"conn_id":     info.ConnID,
			"duration_ms": durationMS,
			"reason":      reason,
		},
		"identity": map[string]interface{}{
			"username":  info.Username,
			"device_id": info.DeviceID,
			"ip":        info.IP,
		},
	}
}
