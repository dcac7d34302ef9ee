package realtime

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"activity-planner/internal/models"
)

var upgrader = websocket.Upgrader{}

func wsBaseURL(srv *httptest.Server) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

func TestChannelReceivesComments(t *testing.T) {
	received := make(chan models.Comment, 1)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		require.NoError(t, err)
		defer conn.Close()

		err = conn.WriteJSON(models.CommentEvent{
			Type:    models.EventReceiveComment,
			Comment: &models.Comment{ID: "c1", Username: "bob", Body: "hi"},
		})
		require.NoError(t, err)
		// keep the connection up until the client is done reading
		conn.ReadMessage()
	}))
	defer srv.Close()

	channel := NewChannel(wsBaseURL(srv), func(c models.Comment) { received <- c }, zerolog.Nop())
	channel.Open(context.Background(), "a1", "tok")
	defer channel.Close()

	require.Equal(t, Connected, channel.State())

	select {
	case comment := <-received:
		assert.Equal(t, "c1", comment.ID)
		assert.Equal(t, "hi", comment.Body)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for comment")
	}
}

func TestChannelSendComment(t *testing.T) {
	events := make(chan models.CommentEvent, 1)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		conn, err := upgrader.Upgrade(w, r, nil)
		require.NoError(t, err)
		defer conn.Close()

		var event models.CommentEvent
		if err := conn.ReadJSON(&event); err == nil {
			events <- event
		}
	}))
	defer srv.Close()

	channel := NewChannel(wsBaseURL(srv), func(models.Comment) {}, zerolog.Nop())
	channel.Open(context.Background(), "a1", "tok")
	defer channel.Close()

	require.NoError(t, channel.SendComment("hello"))

	select {
	case event := <-events:
		assert.Equal(t, models.EventSendComment, event.Type)
		assert.Equal(t, "a1", event.ActivityID)
		assert.Equal(t, "hello", event.Body)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for send")
	}
}

func TestChannelOpenFailureStaysDisconnected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "no websocket here", http.StatusBadRequest)
	}))
	defer srv.Close()

	channel := NewChannel(wsBaseURL(srv), func(models.Comment) {}, zerolog.Nop())
	channel.Open(context.Background(), "a1", "")

	assert.Equal(t, Disconnected, channel.State())
	assert.ErrorIs(t, channel.SendComment("hi"), ErrNotConnected)
}

func TestChannelCloseIdempotent(t *testing.T) {
	channel := NewChannel("ws://127.0.0.1:0", func(models.Comment) {}, zerolog.Nop())

	channel.Close()
	channel.Close()
	assert.Equal(t, Disconnected, channel.State())
}

func TestChannelOpenWhileConnectedIsNoop(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		require.NoError(t, err)
		defer conn.Close()
		conn.ReadMessage()
	}))
	defer srv.Close()

	channel := NewChannel(wsBaseURL(srv), func(models.Comment) {}, zerolog.Nop())
	channel.Open(context.Background(), "a1", "")
	defer channel.Close()
	require.Equal(t, Connected, channel.State())

	channel.Open(context.Background(), "a1", "")
	assert.Equal(t, Connected, channel.State())
}
