package socketmode

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"netops_helper/internal/logger"
	"netops_helper/internal/metrics"
)

// Client runs one handshake, connect and receive cycle at a time. It owns the Session;
// all socket reads and writes happen on the goroutine calling Run.
type Client struct {
	opener     Opener
	session    *Session
	dispatcher *Dispatcher

	handled        atomic.Int64
	decodeFailures atomic.Int64
	lastEnvelope   atomic.Int64 // unix nanos
}

// State is a snapshot of the client for status reporting
type State struct {
	Connected        bool      `json:"connected"`
	SessionID        string    `json:"session_id,omitempty"`
	ConnectedAt      time.Time `json:"connected_at,omitempty"`
	LastEnvelopeAt   time.Time `json:"last_envelope_at,omitempty"`
	EnvelopesHandled int64     `json:"envelopes_handled"`
	DecodeFailures   int64     `json:"decode_failures"`
}

// NewClient wires the handshake, the session and the dispatcher together
func NewClient(opener Opener, session *Session, dispatcher *Dispatcher) *Client {
	return &Client{
		opener:     opener,
		session:    session,
		dispatcher: dispatcher,
	}
}

// Run performs a fresh handshake, connects and processes frames until the connection ends.
// Frame-local decode failures are skipped. Connection failures are returned; cancelling ctx
// closes the socket and returns ctx.Err().
func (c *Client) Run(ctx context.Context) error {
	u, err := c.opener.Open(ctx)
	if err != nil {
		metrics.SessionConnects.WithLabelValues(connectResult(err)).Inc()
		return err
	}
	if err := c.session.Connect(ctx, u); err != nil {
		metrics.SessionConnects.WithLabelValues(connectResult(err)).Inc()
		return err
	}
	metrics.SessionConnects.WithLabelValues("ok").Inc()
	defer c.session.Close()

	stop := context.AfterFunc(ctx, c.session.Close)
	defer stop()

	for {
		frame, err := c.session.Receive()
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return err
		}
		if err := c.handleFrame(ctx, frame); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return err
		}
	}
}

func (c *Client) handleFrame(ctx context.Context, frame []byte) error {
	env, err := Decode(frame)
	if err != nil {
		c.decodeFailures.Add(1)
		metrics.DecodeErrors.Inc()
		logger.GetLogger().Warn("dropping undecodable frame", zap.Error(err), zap.Int("bytes", len(frame)))
		return nil
	}

	metrics.EnvelopesReceived.WithLabelValues(string(env.Kind)).Inc()
	c.lastEnvelope.Store(time.Now().UnixNano())

	err = c.dispatcher.Dispatch(ctx, env)
	c.handled.Add(1)
	if err != nil && IsSessionFatal(err) {
		return err
	}
	if err != nil {
		logger.GetLogger().Error("failed to dispatch envelope",
			zap.String("envelope_id", env.EnvelopeID),
			zap.Error(err))
	}
	return nil
}

// State returns a snapshot safe to call from any goroutine
func (c *Client) State() State {
	id, connectedAt, connected := c.session.Info()
	state := State{
		Connected:        connected,
		SessionID:        id,
		ConnectedAt:      connectedAt,
		EnvelopesHandled: c.handled.Load(),
		DecodeFailures:   c.decodeFailures.Load(),
	}
	if last := c.lastEnvelope.Load(); last != 0 {
		state.LastEnvelopeAt = time.Unix(0, last)
	}
	return state
}

func connectResult(err error) string {
	var (
		rejected  *HandshakeRejected
		transport *TransportError
		malformed *MalformedEndpoint
		connect   *ConnectError
	)
	switch {
	case errors.As(err, &rejected):
		return "handshake_rejected"
	case errors.As(err, &transport):
		return "transport_error"
	case errors.As(err, &malformed):
		return "malformed_endpoint"
	case errors.As(err, &connect):
		return "connect_error"
	default:
		return "error"
	}
}
