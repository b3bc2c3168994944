package socketmode

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"netops_helper/internal/logger"
	"netops_helper/internal/metrics"
	"netops_helper/internal/model"
)

// segmentUpdateFormat is the callback text for a segment selection
const segmentUpdateFormat = "Updated with segement ID %s"

// CommandRequest is a supported slash command handed to the CommandHandler
type CommandRequest struct {
	Command     string // normalized, without the leading slash
	Text        string
	EnvelopeID  string
	ResponseURL string
	UserID      string
	ChannelID   string
}

// Outcome is the result of a command: an ack, optionally with content, or deferred work
// that will answer later through the response_url.
type Outcome struct {
	deferred bool
	response *Response
}

// Ack acknowledges the command on the socket, with resp as the payload when non-nil
func Ack(resp *Response) Outcome {
	return Outcome{response: resp}
}

// Deferred marks the command as handed off for asynchronous processing
func Deferred() Outcome {
	return Outcome{deferred: true}
}

// IsDeferred reports whether the outcome was Deferred
func (o Outcome) IsDeferred() bool { return o.deferred }

// Response returns the ack payload, nil for bare acks and deferred outcomes
func (o Outcome) Response() *Response { return o.response }

// CommandHandler runs supported slash commands
type CommandHandler interface {
	HandleCommand(ctx context.Context, req CommandRequest) (Outcome, error)
}

// EventHandler receives events_api payloads. No response is sent for them.
type EventHandler interface {
	HandleEvent(ctx context.Context, ev *model.EventCallback) error
}

// Dispatcher routes decoded envelopes to handlers and delivers their responses
type Dispatcher struct {
	commands  map[string]struct{}
	handler   CommandHandler
	events    EventHandler
	responder *Responder
}

// NewDispatcher creates a Dispatcher accepting the given command names. events may be nil.
func NewDispatcher(commands []string, handler CommandHandler, events EventHandler, responder *Responder) (*Dispatcher, error) {
	if handler == nil {
		return nil, errors.New("command handler is required")
	}
	if responder == nil {
		return nil, errors.New("responder is required")
	}
	table := make(map[string]struct{}, len(commands))
	for _, c := range commands {
		table[c] = struct{}{}
	}
	return &Dispatcher{
		commands:  table,
		handler:   handler,
		events:    events,
		responder: responder,
	}, nil
}

// Dispatch handles one envelope synchronously, including its response.
// Only socket failures are returned; everything else is logged.
func (d *Dispatcher) Dispatch(ctx context.Context, env *Envelope) error {
	start := time.Now()
	defer func() {
		metrics.DispatchDuration.WithLabelValues(string(env.Kind)).Observe(time.Since(start).Seconds())
	}()

	switch env.Kind {
	case KindEventsAPI:
		d.dispatchEvent(ctx, env)
		return nil
	case KindSlashCommands:
		return d.dispatchCommand(ctx, env)
	case KindInteractive:
		d.dispatchInteractive(ctx, env)
		return nil
	default:
		logger.GetLogger().Error("envelope kind has no route", zap.String("kind", string(env.Kind)))
		return nil
	}
}

func (d *Dispatcher) dispatchEvent(ctx context.Context, env *Envelope) {
	if d.events == nil {
		return
	}
	if err := d.events.HandleEvent(ctx, env.Event); err != nil {
		logger.GetLogger().Error("failed to handle event",
			zap.String("envelope_id", env.EnvelopeID),
			zap.Error(err))
	}
}

func (d *Dispatcher) dispatchCommand(ctx context.Context, env *Envelope) error {
	log := logger.GetLogger().With(zap.String("envelope_id", env.EnvelopeID))
	cmd := env.SlashCommand
	name := cmd.NormalizedCommand()

	if _, ok := d.commands[name]; !ok || name == "" {
		log.Info("ignoring unknown command", zap.String("command", cmd.Command))
		metrics.CommandsTotal.WithLabelValues("unknown", "unknown").Inc()
		return nil
	}

	outcome, err := d.handler.HandleCommand(ctx, CommandRequest{
		Command:     name,
		Text:        cmd.Text,
		EnvelopeID:  env.EnvelopeID,
		ResponseURL: cmd.ResponseURL,
		UserID:      cmd.UserID,
		ChannelID:   cmd.ChannelID,
	})
	if err != nil {
		log.Error("failed to handle command", zap.String("command", name), zap.Error(err))
		metrics.CommandsTotal.WithLabelValues(name, "error").Inc()
		return nil
	}

	if outcome.IsDeferred() {
		metrics.CommandsTotal.WithLabelValues(name, "deferred").Inc()
		return d.responder.Ack(env.EnvelopeID, nil)
	}
	metrics.CommandsTotal.WithLabelValues(name, "ack").Inc()
	return d.responder.Ack(env.EnvelopeID, outcome.Response())
}

// dispatchInteractive acts on the first action only; further actions in the same payload
// are dropped.
func (d *Dispatcher) dispatchInteractive(ctx context.Context, env *Envelope) {
	log := logger.GetLogger().With(zap.String("envelope_id", env.EnvelopeID))
	cb := env.Interactive

	if len(cb.Actions) == 0 {
		log.Debug("interactive payload has no actions")
		return
	}
	if len(cb.Actions) > 1 {
		log.Warn("dropping extra interactive actions", zap.Int("actions", len(cb.Actions)))
	}

	action := cb.Actions[0]
	if action.SelectedOption == nil {
		log.Debug("interactive action has no selected option", zap.String("action_id", action.ActionID))
		return
	}

	responseURL := action.ResponseURL
	if responseURL == "" {
		responseURL = cb.ResponseURL
	}
	if responseURL == "" {
		log.Warn("interactive action has no response_url", zap.String("action_id", action.ActionID))
		return
	}

	msg := MessagePayload{
		Text:   fmt.Sprintf(segmentUpdateFormat, action.SelectedOption.Text.Text),
		Mrkdwn: false,
	}
	if err := d.responder.PostCallback(ctx, responseURL, msg); err != nil {
		log.Error("failed to deliver interactive response", zap.Error(err))
		return
	}
	log.Info("interactive response delivered", zap.String("action_id", action.ActionID))
}
