package mcpserver

import (
	"context"
	"errors"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"netops_helper/internal/socketmode"
)

type stubHandler struct {
	got     socketmode.CommandRequest
	outcome socketmode.Outcome
	err     error
}

func (h *stubHandler) HandleCommand(ctx context.Context, req socketmode.CommandRequest) (socketmode.Outcome, error) {
	h.got = req
	return h.outcome, h.err
}

func callTool(t *testing.T, h socketmode.CommandHandler, command string, args map[string]any) *mcp.CallToolResult {
	t.Helper()
	req := mcp.CallToolRequest{}
	req.Params.Name = command
	req.Params.Arguments = args

	result, err := commandToolHandler(h, command)(context.Background(), req)
	require.NoError(t, err)
	require.NotNil(t, result)
	return result
}

func resultText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	require.Len(t, result.Content, 1)
	text, ok := result.Content[0].(mcp.TextContent)
	require.True(t, ok)
	return text.Text
}

func TestCommandToolAck(t *testing.T) {
	h := &stubHandler{outcome: socketmode.Ack(socketmode.NewResponse(socketmode.MarkdownSection("Adding service dns, requesting approval")))}

	result := callTool(t, h, "addservice", map[string]any{"text": "dns", "user_id": "U1"})
	assert.False(t, result.IsError)
	assert.Equal(t, "Adding service dns, requesting approval", resultText(t, result))
	assert.Equal(t, socketmode.CommandRequest{Command: "addservice", Text: "dns", UserID: "U1"}, h.got)
}

func TestCommandToolDeferred(t *testing.T) {
	h := &stubHandler{outcome: socketmode.Deferred()}

	result := callTool(t, h, "approve", map[string]any{"text": "REQ-1"})
	assert.Equal(t, deferredText, resultText(t, result))
}

func TestCommandToolErrors(t *testing.T) {
	h := &stubHandler{err: errors.New("bus down")}

	result := callTool(t, h, "addsubnet", map[string]any{"text": "10.0.0.0/24"})
	assert.True(t, result.IsError)
	assert.Contains(t, resultText(t, result), "bus down")

	result = callTool(t, h, "addsubnet", map[string]any{"text": 42})
	assert.True(t, result.IsError)
}

func TestNewServer(t *testing.T) {
	_, err := NewServer(nil, []string{"approve"})
	assert.Error(t, err)

	_, err = NewServer(&stubHandler{}, nil)
	assert.ErrorContains(t, err, "no commands")

	s, err := NewServer(&stubHandler{}, []string{"addservice", "approve"})
	require.NoError(t, err)
	assert.NotNil(t, s)
}
