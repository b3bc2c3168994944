package handler

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"netops_helper/internal/bus"
	"netops_helper/internal/logger"
	"netops_helper/internal/socketmode"
)

const (
	CommandAddService = "addservice"
	CommandAddSubnet  = "addsubnet"
	CommandAddSegment = "addsegment"
	CommandApprove    = "approve"
)

// Commands is the static table of supported slash commands
var Commands = []string{
	CommandAddService,
	CommandAddSubnet,
	CommandAddSegment,
	CommandApprove,
}

// SegmentSelectActionID identifies the segment picker rendered by addsegment
const SegmentSelectActionID = "segment_select"

// HandleCommand runs one supported command
func (h *SlackHandler) HandleCommand(ctx context.Context, req socketmode.CommandRequest) (socketmode.Outcome, error) {
	logger.GetLogger().Info("handling command",
		zap.String("command", req.Command),
		zap.String("user_id", req.UserID),
		zap.String("envelope_id", req.EnvelopeID))

	switch req.Command {
	case CommandAddService, CommandAddSubnet, CommandAddSegment:
		return h.handleProvision(ctx, req)
	case CommandApprove:
		return h.handleApprove(ctx, req)
	default:
		return socketmode.Outcome{}, fmt.Errorf("unsupported command %q", req.Command)
	}
}

// handleProvision publishes the request and acknowledges it with a summary
func (h *SlackHandler) handleProvision(ctx context.Context, req socketmode.CommandRequest) (socketmode.Outcome, error) {
	text := strings.TrimSpace(req.Text)
	if text == "" {
		return socketmode.Ack(usageResponse(req.Command)), nil
	}

	if err := h.publisher.Publish(ctx, h.provisionSubject, bus.Format(req.Command, text)); err != nil {
		return socketmode.Outcome{}, fmt.Errorf("failed to publish %s: %w", req.Command, err)
	}

	summary := fmt.Sprintf("Adding %s %s, requesting approval", resourceNoun(req.Command), firstToken(text))
	if req.Command == CommandAddSegment && len(h.segments) > 0 {
		return socketmode.Ack(segmentResponse(summary, h.segments)), nil
	}
	return socketmode.Ack(socketmode.NewResponse(socketmode.MarkdownSection(summary))), nil
}

// handleApprove hands the approval to the workflow, which answers through the response_url
func (h *SlackHandler) handleApprove(ctx context.Context, req socketmode.CommandRequest) (socketmode.Outcome, error) {
	text := strings.TrimSpace(req.Text)
	if text == "" {
		return socketmode.Ack(usageResponse(req.Command)), nil
	}

	if err := h.publisher.Publish(ctx, h.approvalSubject, bus.Format(req.Command, text)); err != nil {
		return socketmode.Outcome{}, fmt.Errorf("failed to publish approval: %w", err)
	}
	return socketmode.Deferred(), nil
}
