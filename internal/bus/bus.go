package bus

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"netops_helper/internal/logger"
)

// Publisher sends opaque command messages to a named subject. Delivery is fire-and-forget.
type Publisher interface {
	Publish(ctx context.Context, subject string, message string) error
}

// Format builds the "<command>::<text>" message published for a command
func Format(command, text string) string {
	return fmt.Sprintf("%s::%s", command, text)
}

// LogPublisher writes every message to the application log
type LogPublisher struct{}

// NewLogPublisher creates a LogPublisher
func NewLogPublisher() *LogPublisher {
	return &LogPublisher{}
}

// Publish logs the message
func (p *LogPublisher) Publish(ctx context.Context, subject string, message string) error {
	logger.GetLogger().Info("published command",
		zap.String("subject", subject),
		zap.String("message", message))
	return nil
}

// Message is one recorded publish
type Message struct {
	Subject string
	Body    string
}

// Recorder keeps published messages in memory
type Recorder struct {
	mu       sync.Mutex
	messages []Message
	err      error
}

// NewRecorder creates an empty Recorder
func NewRecorder() *Recorder {
	return &Recorder{}
}

// Publish records the message, or fails with the error set by FailWith
func (r *Recorder) Publish(ctx context.Context, subject string, message string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.messages = append(r.messages, Message{Subject: subject, Body: message})
	return nil
}

// FailWith makes subsequent publishes return err
func (r *Recorder) FailWith(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.err = err
}

// Messages returns a copy of everything published so far
func (r *Recorder) Messages() []Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Message(nil), r.messages...)
}
