package handler

import (
	"context"
	"errors"
	"fmt"

	"github.com/slack-go/slack/slackevents"
	"go.uber.org/zap"

	"netops_helper/internal/logger"
	"netops_helper/internal/model"
)

// HandleEvent parses an events API payload and routes the inner event
func (h *SlackHandler) HandleEvent(ctx context.Context, ev *model.EventCallback) error {
	if ev == nil || len(ev.Raw) == 0 {
		return errors.New("empty events API payload")
	}

	eventsAPIEvent, err := slackevents.ParseEvent(ev.Raw, slackevents.OptionNoVerifyToken())
	if err != nil {
		return fmt.Errorf("failed to parse slack event: %w", err)
	}

	if eventsAPIEvent.Type != slackevents.CallbackEvent {
		logger.GetLogger().Warn("unsupported events API type", zap.String("type", eventsAPIEvent.Type))
		return nil
	}

	innerEvent := eventsAPIEvent.InnerEvent
	switch event := innerEvent.Data.(type) {
	case *slackevents.AppMentionEvent:
		return h.handleAppMentionEvent(ctx, ev.EventID, event)
	case *slackevents.MessageEvent:
		return h.handleMessageEvent(ctx, ev.EventID, event)
	default:
		logger.GetLogger().Debug("unsupported event type", zap.String("event_type", fmt.Sprintf("%T", innerEvent.Data)))
	}
	return nil
}
