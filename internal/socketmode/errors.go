package socketmode

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyToken is returned when a handshake is attempted without a bearer token.
	ErrEmptyToken = errors.New("socketmode: empty token")
	// ErrNotConnected is returned by Receive and Send before Connect succeeds.
	ErrNotConnected = errors.New("socketmode: session not connected")
)

// TransportError is a network, TLS or HTTP status failure during the handshake.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("socketmode: %s transport failure: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// HandshakeRejected carries the error string of an ok:false handshake response verbatim.
type HandshakeRejected struct {
	Reason string
}

func (e *HandshakeRejected) Error() string {
	return fmt.Sprintf("socketmode: handshake rejected: %s", e.Reason)
}

// MalformedEndpoint is returned when a successful handshake yields an unusable URL.
type MalformedEndpoint struct {
	URL string
	Err error
}

func (e *MalformedEndpoint) Error() string {
	return fmt.Sprintf("socketmode: malformed endpoint %q: %v", e.URL, e.Err)
}

func (e *MalformedEndpoint) Unwrap() error { return e.Err }

// ConnectError is a failure to open the socket or to read its hello frame.
type ConnectError struct {
	URL string
	Err error
}

func (e *ConnectError) Error() string {
	return fmt.Sprintf("socketmode: connect failed: %v", e.Err)
}

func (e *ConnectError) Unwrap() error { return e.Err }

// ConnectionClosed reports a close frame from the peer.
type ConnectionClosed struct {
	Code int
	Text string
}

func (e *ConnectionClosed) Error() string {
	return fmt.Sprintf("socketmode: connection closed by peer (code %d): %s", e.Code, e.Text)
}

// ReadError is an I/O failure or read timeout on the open socket.
type ReadError struct {
	Err error
}

func (e *ReadError) Error() string {
	return fmt.Sprintf("socketmode: read failed: %v", e.Err)
}

func (e *ReadError) Unwrap() error { return e.Err }

// WriteError is an I/O failure writing a frame to the open socket.
type WriteError struct {
	Err error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("socketmode: write failed: %v", e.Err)
}

func (e *WriteError) Unwrap() error { return e.Err }

// DecodeError marks a single frame that could not be decoded. The session continues.
type DecodeError struct {
	Kind   string
	Detail string
}

func (e *DecodeError) Error() string {
	if e.Kind == "" {
		return fmt.Sprintf("socketmode: decode failed: %s", e.Detail)
	}
	return fmt.Sprintf("socketmode: decode failed for %q: %s", e.Kind, e.Detail)
}

// DeliveryError is a failed callback-URL POST. It never ends the session.
type DeliveryError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *DeliveryError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("socketmode: delivery to %s failed: %v", e.URL, e.Err)
	}
	return fmt.Sprintf("socketmode: delivery to %s failed with status %d", e.URL, e.StatusCode)
}

func (e *DeliveryError) Unwrap() error { return e.Err }

// IsSessionFatal reports whether err ends the receive loop.
func IsSessionFatal(err error) bool {
	var (
		closed   *ConnectionClosed
		readErr  *ReadError
		writeErr *WriteError
	)
	return errors.As(err, &closed) || errors.As(err, &readErr) || errors.As(err, &writeErr) ||
		errors.Is(err, ErrNotConnected)
}
