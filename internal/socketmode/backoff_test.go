package socketmode

import (
	"errors"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestBackoffNext(t *testing.T) {
	b := Backoff{InitialDelay: time.Second, Multiplier: 2, MaxDelay: 10 * time.Second}

	assert.Equal(t, time.Second, b.Next(0, nil))
	assert.Equal(t, time.Second, b.Next(1, nil))
	assert.Equal(t, 2*time.Second, b.Next(2, nil))
	assert.Equal(t, 4*time.Second, b.Next(3, nil))
	assert.Equal(t, 10*time.Second, b.Next(10, nil))
	assert.Equal(t, 10*time.Second, b.Next(1000, nil))
}

func TestBackoffNextJitter(t *testing.T) {
	b := Backoff{InitialDelay: time.Second, Multiplier: 2, MaxDelay: 30 * time.Second, Jitter: true}
	rng := rand.New(rand.NewSource(1))

	for i := 0; i < 50; i++ {
		d := b.Next(3, rng)
		assert.GreaterOrEqual(t, d, 2*time.Second)
		assert.Less(t, d, 6*time.Second)
	}
	assert.Equal(t, 4*time.Second, b.Next(3, nil))
}

func TestBackoffNextEdgeCases(t *testing.T) {
	assert.Equal(t, time.Second, Backoff{InitialDelay: time.Second, Multiplier: 0.5}.Next(5, nil))
	assert.Zero(t, Backoff{Multiplier: 2}.Next(3, nil))
}

func TestBackoffAttempt(t *testing.T) {
	b := Backoff{InitialDelay: time.Second, Multiplier: 2, MaxDelay: 10 * time.Second}

	assert.Equal(t, 1, b.Attempt(0, 0))
	assert.Equal(t, 3, b.Attempt(2, time.Second))
	assert.Equal(t, 1, b.Attempt(5, time.Minute))
}

func TestShouldReconnect(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{name: "nil", err: nil, want: false},
		{name: "rejected", err: &HandshakeRejected{Reason: "invalid_auth"}, want: false},
		{name: "malformed", err: &MalformedEndpoint{URL: "https://x", Err: errors.New("scheme")}, want: false},
		{name: "empty token", err: ErrEmptyToken, want: false},
		{name: "transport", err: &TransportError{Op: "apps.connections.open", Err: errors.New("dial")}, want: true},
		{name: "peer close", err: &ConnectionClosed{Code: 1001}, want: true},
		{name: "read", err: &ReadError{Err: errors.New("timeout")}, want: true},
		{name: "connect", err: &ConnectError{Err: errors.New("refused")}, want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ShouldReconnect(tt.err))
		})
	}
}
