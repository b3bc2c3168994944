package handler

import (
	"errors"

	"netops_helper/internal/bus"
	"netops_helper/internal/logger"
)

// Options configures a SlackHandler
type Options struct {
	ProvisionSubject string   // subject for addservice, addsubnet and addsegment
	ApprovalSubject  string   // subject for approve
	Segments         []string // choices offered by addsegment
}

// SlackHandler runs the bot's slash commands and receives events API payloads
type SlackHandler struct {
	publisher        bus.Publisher
	provisionSubject string
	approvalSubject  string
	segments         []string
}

func NewSlackHandler(publisher bus.Publisher, opts Options) (*SlackHandler, error) {
	if publisher == nil {
		return nil, errors.New("publisher is required")
	}
	if opts.ProvisionSubject == "" || opts.ApprovalSubject == "" {
		return nil, errors.New("provision and approval subjects are required")
	}
	logger.GetLogger().Info("command handler ready")
	return &SlackHandler{
		publisher:        publisher,
		provisionSubject: opts.ProvisionSubject,
		approvalSubject:  opts.ApprovalSubject,
		segments:         append([]string(nil), opts.Segments...),
	}, nil
}
