package socketmode

import (
	"context"
	"errors"
	"net/url"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSessionConfig() SessionConfig {
	return SessionConfig{
		HandshakeTimeout: time.Second,
		ReadTimeout:      2 * time.Second,
		WriteTimeout:     time.Second,
	}
}

func TestSessionSwallowsHello(t *testing.T) {
	u := newSocketServer(t, func(conn *websocket.Conn) {
		_ = conn.WriteMessage(websocket.TextMessage, []byte(helloFrame))
		_ = conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"slash_commands"}`))
	})

	s := NewSession(testSessionConfig())
	require.NoError(t, s.Connect(context.Background(), u))
	defer s.Close()

	id, connectedAt, connected := s.Info()
	assert.True(t, connected)
	assert.NotEmpty(t, id)
	assert.False(t, connectedAt.IsZero())

	frame, err := s.Receive()
	require.NoError(t, err)
	assert.Equal(t, `{"type":"slash_commands"}`, string(frame))
}

func TestSessionSkipsBinaryFrames(t *testing.T) {
	u := newSocketServer(t, func(conn *websocket.Conn) {
		_ = conn.WriteMessage(websocket.TextMessage, []byte(helloFrame))
		_ = conn.WriteMessage(websocket.BinaryMessage, []byte{0x1})
		_ = conn.WriteMessage(websocket.TextMessage, []byte(`{}`))
	})

	s := NewSession(testSessionConfig())
	require.NoError(t, s.Connect(context.Background(), u))
	defer s.Close()

	frame, err := s.Receive()
	require.NoError(t, err)
	assert.Equal(t, `{}`, string(frame))
}

func TestSessionSend(t *testing.T) {
	received := make(chan string, 1)
	u := newSocketServer(t, func(conn *websocket.Conn) {
		_ = conn.WriteMessage(websocket.TextMessage, []byte(helloFrame))
		_, data, err := conn.ReadMessage()
		if err == nil {
			received <- string(data)
		}
	})

	s := NewSession(testSessionConfig())
	require.NoError(t, s.Connect(context.Background(), u))
	defer s.Close()

	require.NoError(t, s.Send([]byte(`{"envelope_id":"e-1"}`)))
	select {
	case got := <-received:
		assert.Equal(t, `{"envelope_id":"e-1"}`, got)
	case <-time.After(2 * time.Second):
		t.Fatal("server did not receive frame")
	}
}

func TestSessionPeerClose(t *testing.T) {
	u := newSocketServer(t, func(conn *websocket.Conn) {
		_ = conn.WriteMessage(websocket.TextMessage, []byte(helloFrame))
		_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseGoingAway, "refresh"))
	})

	s := NewSession(testSessionConfig())
	require.NoError(t, s.Connect(context.Background(), u))

	_, err := s.Receive()
	var closed *ConnectionClosed
	require.True(t, errors.As(err, &closed), "got %v", err)
	assert.Equal(t, websocket.CloseGoingAway, closed.Code)
	assert.Equal(t, "refresh", closed.Text)
	assert.True(t, IsSessionFatal(err))

	_, _, connected := s.Info()
	assert.False(t, connected)
	_, err = s.Receive()
	assert.ErrorIs(t, err, ErrNotConnected)
}

func TestSessionReadTimeout(t *testing.T) {
	u := newSocketServer(t, func(conn *websocket.Conn) {
		_ = conn.WriteMessage(websocket.TextMessage, []byte(helloFrame))
	})

	cfg := testSessionConfig()
	cfg.ReadTimeout = 50 * time.Millisecond
	s := NewSession(cfg)
	require.NoError(t, s.Connect(context.Background(), u))

	_, err := s.Receive()
	var readErr *ReadError
	assert.True(t, errors.As(err, &readErr), "got %v", err)
}

func TestSessionHelloTimeout(t *testing.T) {
	u := newSocketServer(t, func(conn *websocket.Conn) {})

	cfg := testSessionConfig()
	cfg.HandshakeTimeout = 50 * time.Millisecond
	s := NewSession(cfg)

	err := s.Connect(context.Background(), u)
	var connectErr *ConnectError
	assert.True(t, errors.As(err, &connectErr), "got %v", err)
	_, _, connected := s.Info()
	assert.False(t, connected)
}

func TestSessionConnectRefused(t *testing.T) {
	u, err := url.Parse("ws://127.0.0.1:1/")
	require.NoError(t, err)

	err = NewSession(testSessionConfig()).Connect(context.Background(), u)
	var connectErr *ConnectError
	assert.True(t, errors.As(err, &connectErr), "got %v", err)
}

func TestSessionNotConnected(t *testing.T) {
	s := NewSession(testSessionConfig())
	assert.ErrorIs(t, s.Send([]byte("x")), ErrNotConnected)
	_, err := s.Receive()
	assert.ErrorIs(t, err, ErrNotConnected)
	s.Close()
	s.Close()
}

func TestSessionReconnectClosesPrevious(t *testing.T) {
	closeCodes := make(chan int, 2)
	u := newSocketServer(t, func(conn *websocket.Conn) {
		_ = conn.WriteMessage(websocket.TextMessage, []byte(helloFrame))
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				code := -1
				var closeErr *websocket.CloseError
				if errors.As(err, &closeErr) {
					code = closeErr.Code
				}
				closeCodes <- code
				return
			}
		}
	})

	s := NewSession(testSessionConfig())
	require.NoError(t, s.Connect(context.Background(), u))
	firstID, _, _ := s.Info()

	require.NoError(t, s.Connect(context.Background(), u))
	defer s.Close()

	select {
	case code := <-closeCodes:
		assert.Equal(t, websocket.CloseNormalClosure, code)
	case <-time.After(2 * time.Second):
		t.Fatal("first socket was not closed")
	}

	secondID, _, connected := s.Info()
	assert.True(t, connected)
	assert.NotEmpty(t, secondID)
	assert.NotEqual(t, firstID, secondID)
}
