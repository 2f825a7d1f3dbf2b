package mcptools

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"

	"leadcapture/app/client/gateway"

	"github.com/go-playground/validator/v10"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/samber/do"
)

const (
	serverName    = "leadcapture"
	serverVersion = "1.0.0"
)

type gatewayClient interface {
	SendChatMessage(ctx context.Context, message string, history []gateway.ChatMessage) gateway.ChatResponse
	GetLeads(ctx context.Context) []json.RawMessage
	Connectivity(ctx context.Context) []gateway.BackendStatus
}

type historyEntry struct {
	Role    string `json:"role" validate:"oneof=user assistant"`
	Content string `json:"content"`
}

// Service exposes the gateway operations as MCP tools over stdio.
type Service struct {
	client   gatewayClient
	server   *server.MCPServer
	validate *validator.Validate
}

func New(di *do.Injector) (*Service, error) {
	return newService(do.MustInvoke[*gateway.Client](di)), nil
}

func newService(client gatewayClient) *Service {
	s := &Service{
		client:   client,
		server:   server.NewMCPServer(serverName, serverVersion, server.WithToolCapabilities(false)),
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}

	s.server.AddTool(mcp.NewTool("send_chat_message",
		mcp.WithDescription("Send a visitor message to the lead capture assistant and return its reply with any captured contact info."),
		mcp.WithString("message", mcp.Required(), mcp.Description("The new visitor message")),
		mcp.WithString("history_json", mcp.Description(`Earlier turns as a JSON array of {"role":"user"|"assistant","content":"..."}`)),
	), s.sendChatMessage)

	s.server.AddTool(mcp.NewTool("list_leads",
		mcp.WithDescription("List the leads captured by the assistant as a JSON array."),
	), s.listLeads)

	s.server.AddTool(mcp.NewTool("check_backends",
		mcp.WithDescription("Probe the local and production assistant backends."),
	), s.checkBackends)

	return s
}

func (s *Service) Serve(ctx context.Context, in io.Reader, out io.Writer) error {
	slog.Info("MCP server started", "name", serverName)

	return server.NewStdioServer(s.server).Listen(ctx, in, out)
}

func (s *Service) sendChatMessage(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	message, err := request.RequireString("message")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	history, err := s.parseHistory(request.GetString("history_json", ""))
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid history_json: %v", err)), nil
	}

	return jsonResult(s.client.SendChatMessage(ctx, message, history))
}

func (s *Service) parseHistory(historyJSON string) ([]gateway.ChatMessage, error) {
	if historyJSON == "" {
		return nil, nil
	}

	var entries []historyEntry
	if err := json.Unmarshal([]byte(historyJSON), &entries); err != nil {
		return nil, err
	}

	history := make([]gateway.ChatMessage, 0, len(entries))
	for i, entry := range entries {
		if err := s.validate.Struct(entry); err != nil {
			return nil, fmt.Errorf("entry %d: %w", i, err)
		}

		history = append(history, gateway.ChatMessage{
			Role:    gateway.Role(entry.Role),
			Content: entry.Content,
		})
	}

	return history, nil
}

func (s *Service) listLeads(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return jsonResult(s.client.GetLeads(ctx))
}

func (s *Service) checkBackends(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return jsonResult(s.client.Connectivity(ctx))
}

func jsonResult(value any) (*mcp.CallToolResult, error) {
	data, err := json.Marshal(value)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal tool result: %w", err)
	}

	return mcp.NewToolResultText(string(data)), nil
}
