package handler

import (
	"context"

	"github.com/slack-go/slack/slackevents"
	"go.uber.org/zap"

	"netops_helper/internal/logger"
)

// handleAppMentionEvent records mentions of the bot
func (h *SlackHandler) handleAppMentionEvent(ctx context.Context, eventID string, ev *slackevents.AppMentionEvent) error {
	// Ignore messages from bots to prevent loops
	if ev.BotID != "" {
		return nil
	}

	threadTS := ev.ThreadTimeStamp
	if threadTS == "" {
		threadTS = ev.TimeStamp
	}

	logger.GetLogger().Info("app mention received",
		zap.String("event_id", eventID),
		zap.String("channel", ev.Channel),
		zap.String("user", ev.User),
		zap.String("thread_ts", threadTS),
		zap.String("text", ev.Text))
	return nil
}
