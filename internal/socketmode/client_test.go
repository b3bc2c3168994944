package socketmode

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, u *staticOpener, handler CommandHandler) *Client {
	t.Helper()
	session := NewSession(testSessionConfig())
	dispatcher, err := NewDispatcher(testCommands, handler, nil, NewResponder(session, nil))
	require.NoError(t, err)
	return NewClient(u, session, dispatcher)
}

func TestClientRunProcessesFramesInOrder(t *testing.T) {
	acks := make(chan []string, 1)
	u := newSocketServer(t, func(conn *websocket.Conn) {
		_ = conn.WriteMessage(websocket.TextMessage, []byte(helloFrame))
		_ = conn.WriteMessage(websocket.TextMessage, []byte(`{not json`))
		_ = conn.WriteMessage(websocket.TextMessage, []byte(`{"envelope_id":"e-1","type":"slash_commands","payload":{"command":"/addservice","text":"dns"}}`))
		_ = conn.WriteMessage(websocket.TextMessage, []byte(`{"envelope_id":"e-2","type":"slash_commands","payload":{"command":"/approve","text":"REQ-1"}}`))

		var got []string
		for len(got) < 2 {
			_, data, err := conn.ReadMessage()
			if err != nil {
				break
			}
			got = append(got, string(data))
		}
		acks <- got
		_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, "bye"))
	})

	handler := &fakeCommandHandler{outcome: Deferred()}
	client := newTestClient(t, &staticOpener{u: u}, handler)

	err := client.Run(context.Background())
	var closed *ConnectionClosed
	require.True(t, errors.As(err, &closed), "got %v", err)
	assert.Equal(t, websocket.CloseNormalClosure, closed.Code)

	got := <-acks
	require.Len(t, got, 2)
	assert.JSONEq(t, `{"envelope_id":"e-1"}`, got[0])
	assert.JSONEq(t, `{"envelope_id":"e-2"}`, got[1])

	requests := handler.Requests()
	require.Len(t, requests, 2)
	assert.Equal(t, "addservice", requests[0].Command)
	assert.Equal(t, "approve", requests[1].Command)

	state := client.State()
	assert.False(t, state.Connected)
	assert.Equal(t, int64(2), state.EnvelopesHandled)
	assert.Equal(t, int64(1), state.DecodeFailures)
	assert.False(t, state.LastEnvelopeAt.IsZero())
}

func TestClientRunCancel(t *testing.T) {
	u := newSocketServer(t, func(conn *websocket.Conn) {
		_ = conn.WriteMessage(websocket.TextMessage, []byte(helloFrame))
	})

	client := newTestClient(t, &staticOpener{u: u}, &fakeCommandHandler{})
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- client.Run(ctx) }()

	require.Eventually(t, func() bool { return client.State().Connected }, 2*time.Second, 10*time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
	assert.False(t, client.State().Connected)
}

func TestClientRunHandshakeFailure(t *testing.T) {
	rejected := &HandshakeRejected{Reason: "invalid_auth"}
	client := newTestClient(t, &staticOpener{err: rejected}, &fakeCommandHandler{})

	err := client.Run(context.Background())
	assert.ErrorIs(t, err, rejected)
	assert.False(t, ShouldReconnect(err))
}
