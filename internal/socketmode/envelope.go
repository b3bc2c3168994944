package socketmode

import (
	"bytes"
	"encoding/json"
	"fmt"

	"netops_helper/internal/model"
)

// Kind is the envelope type tag
type Kind string

const (
	KindEventsAPI     Kind = "events_api"
	KindSlashCommands Kind = "slash_commands"
	KindInteractive   Kind = "interactive"
)

// Envelope is one decoded socket frame. Exactly one payload field is set, selected by Kind.
type Envelope struct {
	Kind                   Kind
	EnvelopeID             string
	AcceptsResponsePayload bool

	Event        *model.EventCallback
	SlashCommand *model.SlashCommand
	Interactive  *model.InteractiveCallback
}

type rawEnvelope struct {
	Type                   string          `json:"type"`
	EnvelopeID             string          `json:"envelope_id"`
	AcceptsResponsePayload bool            `json:"accepts_response_payload"`
	Payload                json.RawMessage `json:"payload"`
}

// Decode parses a text frame into an Envelope. Any failure is a *DecodeError.
func Decode(data []byte) (*Envelope, error) {
	var raw rawEnvelope
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, &DecodeError{Detail: err.Error()}
	}
	if raw.Type == "" {
		return nil, &DecodeError{Detail: "missing type tag"}
	}

	kind := Kind(raw.Type)
	switch kind {
	case KindEventsAPI, KindSlashCommands, KindInteractive:
	default:
		return nil, &DecodeError{Kind: raw.Type, Detail: "unrecognized envelope type"}
	}

	payload := bytes.TrimSpace(raw.Payload)
	if len(payload) == 0 || bytes.Equal(payload, []byte("null")) {
		return nil, &DecodeError{Kind: raw.Type, Detail: "missing payload"}
	}

	env := &Envelope{
		Kind:                   kind,
		EnvelopeID:             raw.EnvelopeID,
		AcceptsResponsePayload: raw.AcceptsResponsePayload,
	}

	switch kind {
	case KindEventsAPI:
		var ev model.EventCallback
		if err := json.Unmarshal(payload, &ev); err != nil {
			return nil, payloadError(kind, err)
		}
		ev.Raw = append(json.RawMessage(nil), payload...)
		env.Event = &ev
	case KindSlashCommands:
		if raw.EnvelopeID == "" {
			return nil, &DecodeError{Kind: raw.Type, Detail: "missing envelope_id"}
		}
		var cmd model.SlashCommand
		if err := json.Unmarshal(payload, &cmd); err != nil {
			return nil, payloadError(kind, err)
		}
		env.SlashCommand = &cmd
	case KindInteractive:
		var cb model.InteractiveCallback
		if err := json.Unmarshal(payload, &cb); err != nil {
			return nil, payloadError(kind, err)
		}
		env.Interactive = &cb
	}

	return env, nil
}

func payloadError(kind Kind, err error) error {
	return &DecodeError{Kind: string(kind), Detail: fmt.Sprintf("invalid payload: %v", err)}
}
