package socketmode

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"
)

const helloFrame = `{"type":"hello","num_connections":1,"debug_info":{"host":"test"},"connection_info":{"app_id":"A1"}}`

// newSocketServer starts a websocket server running serve for each connection and returns its ws:// URL
func newSocketServer(t *testing.T, serve func(conn *websocket.Conn)) *url.URL {
	t.Helper()
	upgrader := websocket.Upgrader{}
	done := make(chan struct{})

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		serve(conn)
		<-done
	}))
	t.Cleanup(func() {
		close(done)
		srv.Close()
	})

	u, err := url.Parse("ws" + strings.TrimPrefix(srv.URL, "http"))
	require.NoError(t, err)
	return u
}

type staticOpener struct {
	u   *url.URL
	err error
}

func (o *staticOpener) Open(ctx context.Context) (*url.URL, error) {
	return o.u, o.err
}

// recordingSender captures frames written through a Responder
type recordingSender struct {
	mu     sync.Mutex
	frames []string
	err    error
}

func (s *recordingSender) Send(data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.frames = append(s.frames, string(data))
	return nil
}

func (s *recordingSender) Frames() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.frames...)
}
