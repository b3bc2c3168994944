package model

import (
	"encoding/json"
	"strings"
)

// commandSeparator prefixes every slash command name on the wire
const commandSeparator = "/"

// SlashCommand is the payload of a slash_commands envelope
type SlashCommand struct {
	Token               string `json:"token"`
	TeamID              string `json:"team_id"`
	TeamDomain          string `json:"team_domain"`
	ChannelID           string `json:"channel_id"`
	ChannelName         string `json:"channel_name"`
	UserID              string `json:"user_id"`
	UserName            string `json:"user_name"`
	Command             string `json:"command"` // e.g. /addservice
	Text                string `json:"text"`
	APIAppID            string `json:"api_app_id"`
	IsEnterpriseInstall string `json:"is_enterprise_install"`
	ResponseURL         string `json:"response_url"` // valid for a limited time, best effort
	TriggerID           string `json:"trigger_id"`
}

// NormalizedCommand strips exactly one leading separator from Command.
// A command without the separator yields "", which callers treat as unknown.
func (c *SlashCommand) NormalizedCommand() string {
	name, ok := strings.CutPrefix(c.Command, commandSeparator)
	if !ok {
		return ""
	}
	return name
}

// InteractiveCallback is the payload of an interactive envelope
type InteractiveCallback struct {
	Type        string              `json:"type"`
	TriggerID   string              `json:"trigger_id,omitempty"`
	User        *InteractiveUser    `json:"user,omitempty"`
	Actions     []InteractiveAction `json:"actions"`
	ResponseURL string              `json:"response_url"`
}

// InteractiveUser identifies who performed the action
type InteractiveUser struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

// InteractiveAction is one action inside an interactive payload
type InteractiveAction struct {
	Type           string          `json:"type"`
	ActionID       string          `json:"action_id"`
	BlockID        string          `json:"block_id"`
	ActionTS       string          `json:"action_ts"`
	SelectedOption *SelectedOption `json:"selected_option,omitempty"`
	ResponseURL    string          `json:"response_url,omitempty"`
}

// SelectedOption is the option picked in a select element
type SelectedOption struct {
	Text  OptionText `json:"text"`
	Value string     `json:"value"`
}

// OptionText is the display text of a selected option
type OptionText struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// EventCallback is the payload of an events_api envelope.
// Raw keeps the full payload for slackevents parsing.
type EventCallback struct {
	Token   string          `json:"token"`
	TeamID  string          `json:"team_id"`
	Type    string          `json:"type"`
	EventID string          `json:"event_id"`
	Event   json.RawMessage `json:"event"`
	Raw     json.RawMessage `json:"-"`
}
