package socketmode

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"netops_helper/internal/logger"
	"netops_helper/internal/metrics"
)

const (
	// Maximum frame size accepted from the server
	maxMessageSize = 1 << 20

	// Time allowed to write a control frame
	controlWait = 5 * time.Second
)

// SessionConfig holds socket timeouts
type SessionConfig struct {
	// HandshakeTimeout bounds the websocket upgrade and the hello frame
	HandshakeTimeout time.Duration
	// ReadTimeout bounds each Receive; pings from the server extend it
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// DefaultSessionConfig returns the timeouts used when none are configured
func DefaultSessionConfig() SessionConfig {
	return SessionConfig{
		HandshakeTimeout: 10 * time.Second,
		ReadTimeout:      2 * time.Minute,
		WriteTimeout:     10 * time.Second,
	}
}

// Session owns at most one open socket. Receive and Send must be called from a single
// goroutine; Close may be called from any goroutine.
type Session struct {
	cfg    SessionConfig
	dialer *websocket.Dialer

	mu          sync.Mutex
	conn        *websocket.Conn
	id          string
	connectedAt time.Time
}

// NewSession creates an unconnected Session
func NewSession(cfg SessionConfig) *Session {
	return &Session{
		cfg: cfg,
		dialer: &websocket.Dialer{
			Proxy:            http.ProxyFromEnvironment,
			HandshakeTimeout: cfg.HandshakeTimeout,
		},
	}
}

// Connect opens the socket at u and consumes the hello frame. Any socket already open is
// closed first.
func (s *Session) Connect(ctx context.Context, u *url.URL) error {
	s.Close()

	conn, resp, err := s.dialer.DialContext(ctx, u.String(), nil)
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}
	if err != nil {
		return &ConnectError{URL: u.Redacted(), Err: err}
	}

	conn.SetReadLimit(maxMessageSize)
	conn.SetPingHandler(func(appData string) error {
		_ = conn.SetReadDeadline(time.Now().Add(s.cfg.ReadTimeout))
		err := conn.WriteControl(websocket.PongMessage, []byte(appData), time.Now().Add(controlWait))
		if errors.Is(err, websocket.ErrCloseSent) {
			return nil
		}
		return err
	})

	// The first frame is the server hello; it is never dispatched.
	_ = conn.SetReadDeadline(time.Now().Add(s.cfg.HandshakeTimeout))
	_, hello, err := conn.ReadMessage()
	if err != nil {
		conn.Close()
		return &ConnectError{URL: u.Redacted(), Err: err}
	}

	id := uuid.NewString()
	logger.GetLogger().Info("socket session connected",
		zap.String("session_id", id),
		zap.ByteString("hello", hello))

	s.mu.Lock()
	s.conn = conn
	s.id = id
	s.connectedAt = time.Now()
	s.mu.Unlock()

	metrics.SessionConnected.Set(1)
	return nil
}

// Receive blocks until the next text frame arrives
func (s *Session) Receive() ([]byte, error) {
	conn := s.current()
	if conn == nil {
		return nil, ErrNotConnected
	}

	for {
		_ = conn.SetReadDeadline(time.Now().Add(s.cfg.ReadTimeout))
		messageType, data, err := conn.ReadMessage()
		if err != nil {
			s.closeConn(conn)
			var closeErr *websocket.CloseError
			if errors.As(err, &closeErr) && closeErr.Code != websocket.CloseAbnormalClosure {
				return nil, &ConnectionClosed{Code: closeErr.Code, Text: closeErr.Text}
			}
			return nil, &ReadError{Err: err}
		}
		if messageType != websocket.TextMessage {
			logger.GetLogger().Warn("skipping non-text frame", zap.Int("message_type", messageType))
			continue
		}
		return data, nil
	}
}

// Send writes one text frame
func (s *Session) Send(data []byte) error {
	conn := s.current()
	if conn == nil {
		return ErrNotConnected
	}

	_ = conn.SetWriteDeadline(time.Now().Add(s.cfg.WriteTimeout))
	if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
		s.closeConn(conn)
		return &WriteError{Err: err}
	}
	return nil
}

// Close sends a close frame and tears the socket down. It is safe to call repeatedly.
func (s *Session) Close() {
	if conn := s.current(); conn != nil {
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(controlWait))
		s.closeConn(conn)
	}
}

// Info returns the current connection id and connect time
func (s *Session) Info() (id string, connectedAt time.Time, connected bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.id, s.connectedAt, s.conn != nil
}

func (s *Session) current() *websocket.Conn {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conn
}

func (s *Session) closeConn(conn *websocket.Conn) {
	s.mu.Lock()
	if s.conn != conn {
		s.mu.Unlock()
		return
	}
	id := s.id
	s.conn = nil
	s.id = ""
	s.connectedAt = time.Time{}
	s.mu.Unlock()

	conn.Close()
	metrics.SessionConnected.Set(0)
	logger.GetLogger().Info("socket session closed", zap.String("session_id", id))
}
