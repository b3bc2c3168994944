package socketmode

import (
	"encoding/json"
	"strings"

	"github.com/slack-go/slack"
)

// Response is the block content sent back on the socket for one envelope
type Response struct {
	Blocks []slack.Block `json:"blocks"`
}

// NewResponse builds a Response from blocks
func NewResponse(blocks ...slack.Block) *Response {
	return &Response{Blocks: blocks}
}

// PlainText joins the text of every section block, one per line
func (r *Response) PlainText() string {
	if r == nil {
		return ""
	}
	var lines []string
	for _, b := range r.Blocks {
		section, ok := b.(*slack.SectionBlock)
		if !ok || section.Text == nil {
			continue
		}
		lines = append(lines, section.Text.Text)
	}
	return strings.Join(lines, "\n")
}

// socketResponse is the envelope-correlated frame written to the socket
type socketResponse struct {
	EnvelopeID string    `json:"envelope_id"`
	Payload    *Response `json:"payload,omitempty"`
}

// EncodeResponse builds the frame acknowledging envelopeID. A nil resp yields a bare ack.
func EncodeResponse(envelopeID string, resp *Response) ([]byte, error) {
	return json.Marshal(socketResponse{EnvelopeID: envelopeID, Payload: resp})
}

// MessagePayload is the body POSTed to a response_url
type MessagePayload struct {
	Text     string        `json:"text"`
	Blocks   []slack.Block `json:"blocks,omitempty"`
	ThreadTS string        `json:"thread_ts,omitempty"`
	Mrkdwn   bool          `json:"mrkdwn"`
}

// MarkdownSection returns a section block with mrkdwn text
func MarkdownSection(text string) *slack.SectionBlock {
	return slack.NewSectionBlock(slack.NewTextBlockObject(slack.MarkdownType, text, false, false), nil, nil)
}

// StaticSelect returns a static_select element offering one option per value
func StaticSelect(placeholder, actionID string, values ...string) *slack.SelectBlockElement {
	options := make([]*slack.OptionBlockObject, 0, len(values))
	for _, v := range values {
		options = append(options, slack.NewOptionBlockObject(v, slack.NewTextBlockObject(slack.PlainTextType, v, false, false), nil))
	}
	return slack.NewOptionsSelectBlockElement(
		slack.OptTypeStatic,
		slack.NewTextBlockObject(slack.PlainTextType, placeholder, false, false),
		actionID,
		options...,
	)
}

// SectionWithSelect returns a mrkdwn section carrying a select accessory
func SectionWithSelect(text string, sel *slack.SelectBlockElement) *slack.SectionBlock {
	return slack.NewSectionBlock(
		slack.NewTextBlockObject(slack.MarkdownType, text, false, false),
		nil,
		slack.NewAccessory(sel),
	)
}
