package handler

import (
	"fmt"

	"netops_helper/internal/socketmode"
)

var usageText = map[string]string{
	CommandAddService: "Usage: `/addservice <service> [options]`",
	CommandAddSubnet:  "Usage: `/addsubnet <cidr> [options]`",
	CommandAddSegment: "Usage: `/addsegment <name> [options]`",
	CommandApprove:    "Usage: `/approve <request>`",
}

// usageResponse explains the arguments a command expects
func usageResponse(command string) *socketmode.Response {
	text, ok := usageText[command]
	if !ok {
		text = fmt.Sprintf("Usage: `/%s <arguments>`", command)
	}
	return socketmode.NewResponse(socketmode.MarkdownSection(text))
}

// segmentResponse renders the summary with a picker for the segment ID
func segmentResponse(summary string, segments []string) *socketmode.Response {
	sel := socketmode.StaticSelect("Select a segment", SegmentSelectActionID, segments...)
	return socketmode.NewResponse(socketmode.SectionWithSelect(summary, sel))
}
