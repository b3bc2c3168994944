package mcpserver

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"netops_helper/internal/logger"
	"netops_helper/internal/socketmode"
)

const deferredText = "Request accepted, the result will be posted to Slack"

var toolDescriptions = map[string]string{
	"addservice": "Request a new network service and start its approval",
	"addsubnet":  "Request a new subnet and start its approval",
	"addsegment": "Request a new network segment and start its approval",
	"approve":    "Approve a pending provisioning request",
}

// registerCommandTools registers one tool per slash command
func registerCommandTools(s *server.MCPServer, handler socketmode.CommandHandler, commands []string) error {
	if len(commands) == 0 {
		return errors.New("no commands to expose")
	}
	for _, command := range commands {
		description, ok := toolDescriptions[command]
		if !ok {
			description = fmt.Sprintf("Run the /%s command", command)
		}

		tool := mcp.NewTool(command,
			mcp.WithDescription(description),
			mcp.WithString("text",
				mcp.Required(),
				mcp.Description("Command arguments, exactly as typed after the slash command"),
			),
			mcp.WithString("user_id",
				mcp.Description("Slack user ID to attribute the request to"),
			),
		)
		s.AddTool(tool, commandToolHandler(handler, command))
	}
	return nil
}

func commandToolHandler(handler socketmode.CommandHandler, command string) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args := arguments(request)
		text, ok := args["text"].(string)
		if !ok {
			return mcp.NewToolResultError("invalid text parameter"), nil
		}
		userID, _ := args["user_id"].(string)

		outcome, err := handler.HandleCommand(ctx, socketmode.CommandRequest{
			Command: command,
			Text:    text,
			UserID:  userID,
		})
		if err != nil {
			logger.GetLogger().Error("command tool failed", zap.String("command", command), zap.Error(err))
			return mcp.NewToolResultError(fmt.Sprintf("%s failed: %v", command, err)), nil
		}

		if outcome.IsDeferred() {
			return mcp.NewToolResultText(deferredText), nil
		}
		result := strings.TrimSpace(outcome.Response().PlainText())
		if result == "" {
			result = "ok"
		}
		return mcp.NewToolResultText(result), nil
	}
}

func arguments(request mcp.CallToolRequest) map[string]any {
	var raw any = request.Params.Arguments
	args, _ := raw.(map[string]any)
	return args
}
