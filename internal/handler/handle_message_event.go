package handler

import (
	"context"

	"github.com/slack-go/slack/slackevents"
	"go.uber.org/zap"

	"netops_helper/internal/logger"
)

// handleMessageEvent records direct messages sent to the bot
func (h *SlackHandler) handleMessageEvent(ctx context.Context, eventID string, ev *slackevents.MessageEvent) error {
	// Ignore messages from bots to prevent loops
	if ev.BotID != "" || ev.SubType == "bot_message" || ev.SubType == "message_changed" {
		return nil
	}

	// Only direct messages (including multi-person IMs) are of interest
	isDM := ev.ChannelType == "im" || ev.ChannelType == "mpim"
	if !isDM {
		return nil
	}

	logger.GetLogger().Info("direct message received",
		zap.String("event_id", eventID),
		zap.String("channel", ev.Channel),
		zap.String("user", ev.User),
		zap.String("text", ev.Text))
	return nil
}
