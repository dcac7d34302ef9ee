// Package realtime implements the websocket comment channel for a single
// activity. The channel delivers inbound comments through a handler; it
// never mutates the stores directly.
package realtime

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"activity-planner/internal/models"
)

// ErrNotConnected reports a send attempt on a channel that is not live.
var ErrNotConnected = errors.New("realtime: not connected")

// State is the channel lifecycle state.
type State int

const (
	Disconnected State = iota
	Connecting
	Connected
)

func (s State) String() string {
	switch s {
	case Connecting:
		return "connecting"
	case Connected:
		return "connected"
	default:
		return "disconnected"
	}
}

// Channel is a websocket client scoped to one activity's comment stream.
// Open is best-effort: a failed handshake is logged and the channel stays
// disconnected, leaving the rest of the client fully usable. There is no
// automatic reconnect.
type Channel struct {
	baseURL   string
	dialer    *websocket.Dialer
	log       zerolog.Logger
	onComment func(models.Comment)

	mu         sync.Mutex
	writeMu    sync.Mutex
	conn       *websocket.Conn
	state      State
	activityID string
}

// NewChannel builds a channel dialing baseURL ("ws://host/ws/activities").
func NewChannel(baseURL string, onComment func(models.Comment), log zerolog.Logger) *Channel {
	return &Channel{
		baseURL: baseURL,
		dialer: &websocket.Dialer{
			HandshakeTimeout: 10 * time.Second,
		},
		log:       log.With().Str("component", "realtime").Logger(),
		onComment: onComment,
	}
}

// Open performs the handshake for the activity's comment stream and starts
// the read loop. A handshake failure is logged, not returned; a channel
// that is already connecting or connected is left alone.
func (c *Channel) Open(ctx context.Context, activityID string, token string) {
	c.mu.Lock()
	if c.state != Disconnected {
		c.mu.Unlock()
		return
	}
	c.state = Connecting
	c.activityID = activityID
	c.mu.Unlock()

	header := http.Header{}
	if token != "" {
		header.Set("Authorization", "Bearer "+token)
	}

	conn, _, err := c.dialer.DialContext(ctx, c.baseURL+"/"+activityID, header)
	if err != nil {
		c.log.Error().Err(err).Str("activity_id", activityID).Msg("realtime connect failed")
		c.mu.Lock()
		c.state = Disconnected
		c.mu.Unlock()
		return
	}

	c.mu.Lock()
	c.conn = conn
	c.state = Connected
	c.mu.Unlock()

	c.log.Info().Str("activity_id", activityID).Msg("realtime connected")
	go c.readLoop(conn, activityID)
}

func (c *Channel) readLoop(conn *websocket.Conn, activityID string) {
	for {
		var event models.CommentEvent
		if err := conn.ReadJSON(&event); err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				c.log.Error().Err(err).Str("activity_id", activityID).Msg("realtime read failed")
			}
			c.markDisconnected(conn)
			return
		}
		if event.Type == models.EventReceiveComment && event.Comment != nil {
			c.onComment(*event.Comment)
		}
	}
}

// SendComment posts a comment body over the live channel. The stored
// comment comes back through the handler like everyone else's.
func (c *Channel) SendComment(body string) error {
	c.mu.Lock()
	conn := c.conn
	live := c.state == Connected
	activityID := c.activityID
	c.mu.Unlock()

	if !live || conn == nil {
		return ErrNotConnected
	}

	event := models.CommentEvent{
		Type:       models.EventSendComment,
		ActivityID: activityID,
		Body:       body,
	}
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return conn.WriteJSON(event)
}

// Close tears the connection down. Safe to call on a channel that never
// connected or already closed.
func (c *Channel) Close() {
	c.mu.Lock()
	conn := c.conn
	c.conn = nil
	c.state = Disconnected
	c.mu.Unlock()

	if conn == nil {
		return
	}

	c.writeMu.Lock()
	_ = conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(time.Second))
	c.writeMu.Unlock()
	_ = conn.Close()
}

// State returns the channel lifecycle state.
func (c *Channel) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *Channel) markDisconnected(conn *websocket.Conn) {
	c.mu.Lock()
	if c.conn == conn {
		c.conn = nil
		c.state = Disconnected
	}
	c.mu.Unlock()
	_ = conn.Close()
}
