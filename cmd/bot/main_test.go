package main

import (
	"context"
	"errors"
	"net/url"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"netops_helper/internal/socketmode"
)

type countingOpener struct {
	calls  atomic.Int32
	err    error
	cancel context.CancelFunc
	after  int32
}

func (o *countingOpener) Open(ctx context.Context) (*url.URL, error) {
	if o.calls.Add(1) >= o.after && o.cancel != nil {
		o.cancel()
	}
	return nil, o.err
}

func newClient(opener socketmode.Opener) *socketmode.Client {
	return socketmode.NewClient(opener, socketmode.NewSession(socketmode.DefaultSessionConfig()), nil)
}

var fastBackoff = socketmode.Backoff{InitialDelay: time.Millisecond, Multiplier: 2, MaxDelay: 5 * time.Millisecond}

func TestRunLoopStopsOnRejectedHandshake(t *testing.T) {
	opener := &countingOpener{err: &socketmode.HandshakeRejected{Reason: "invalid_auth"}}

	err := runLoop(context.Background(), newClient(opener), true, fastBackoff)
	var rejected *socketmode.HandshakeRejected
	assert.True(t, errors.As(err, &rejected))
	assert.Equal(t, int32(1), opener.calls.Load())
}

func TestRunLoopWithoutReconnect(t *testing.T) {
	opener := &countingOpener{err: &socketmode.TransportError{Op: "apps.connections.open", Err: errors.New("dial")}}

	err := runLoop(context.Background(), newClient(opener), false, fastBackoff)
	assert.Error(t, err)
	assert.Equal(t, int32(1), opener.calls.Load())
}

func TestRunLoopRetriesTransportFailures(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	opener := &countingOpener{
		err:    &socketmode.TransportError{Op: "apps.connections.open", Err: errors.New("dial")},
		cancel: cancel,
		after:  3,
	}

	err := runLoop(ctx, newClient(opener), true, fastBackoff)
	assert.NoError(t, err)
	assert.Equal(t, int32(3), opener.calls.Load())
}
