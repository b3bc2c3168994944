package socketmode

import (
	"errors"
	"math/rand"
	"time"
)

// Backoff defines the delay between re-handshake attempts.
type Backoff struct {
	InitialDelay time.Duration
	Multiplier   float64
	MaxDelay     time.Duration
	// Jitter spreads each delay over [0.5, 1.5) of its nominal value
	Jitter bool
}

// DefaultBackoff returns the re-handshake delays used by the bot.
func DefaultBackoff() Backoff {
	return Backoff{
		InitialDelay: time.Second,
		Multiplier:   2.0,
		MaxDelay:     30 * time.Second,
		Jitter:       true,
	}
}

// Next returns the delay before attempt (1-based). The first attempt waits InitialDelay.
func (b Backoff) Next(attempt int, rng *rand.Rand) time.Duration {
	if b.InitialDelay <= 0 {
		return 0
	}
	if attempt <= 1 {
		return b.InitialDelay
	}

	growth := b.Multiplier
	if growth < 1 {
		growth = 1
	}
	delay := float64(b.InitialDelay)
	for i := 1; i < attempt; i++ {
		delay *= growth
		if b.MaxDelay > 0 && delay >= float64(b.MaxDelay) {
			delay = float64(b.MaxDelay)
			break
		}
	}

	if b.Jitter && rng != nil {
		delay *= 0.5 + rng.Float64()
	}
	return time.Duration(delay)
}

// Attempt returns the attempt number following a session that lasted uptime.
// A session that outlived MaxDelay was healthy, so the sequence starts over.
func (b Backoff) Attempt(previous int, uptime time.Duration) int {
	if previous < 1 || uptime > b.MaxDelay {
		return 1
	}
	return previous + 1
}

// ShouldReconnect reports whether a new handshake cycle may follow err.
// Rejected handshakes and malformed endpoints need operator attention.
func ShouldReconnect(err error) bool {
	if err == nil {
		return false
	}
	var (
		rejected  *HandshakeRejected
		malformed *MalformedEndpoint
	)
	return !errors.As(err, &rejected) && !errors.As(err, &malformed) && !errors.Is(err, ErrEmptyToken)
}
