package handler

import "strings"

// firstToken returns the first whitespace-separated word of text
func firstToken(text string) string {
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}

func resourceNoun(command string) string {
	switch command {
	case CommandAddService:
		return "service"
	case CommandAddSubnet:
		return "subnet"
	case CommandAddSegment:
		return "segment"
	default:
		return strings.TrimPrefix(command, "add")
	}
}
