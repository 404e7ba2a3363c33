// Package mcp exposes the chat pipeline as an MCP tool over stdio.
// Clean Architecture: Framework/driver layer, a second inbound transport next to http.
package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/0xcro3dile/docguard/internal/domain/entities"
	"github.com/0xcro3dile/docguard/internal/domain/usecases"
)

// ToolChat is the only tool name.
const ToolChat = "chat"

// Server wraps an MCP server bound to a ChatUseCase.
type Server struct {
	chat         *usecases.ChatUseCase
	defaultCloud bool
	mcp          *server.MCPServer
}

// NewServer registers the chat tool.
func NewServer(chat *usecases.ChatUseCase, version string, defaultCloud bool) *Server {
	s := &Server{
		chat:         chat,
		defaultCloud: defaultCloud,
		mcp:          server.NewMCPServer("docguard", version, server.WithToolCapabilities(false)),
	}

	tool := mcp.NewTool(ToolChat,
		mcp.WithDescription("Answer a request locally over approved workspace files. Sensitive requests never leave the machine; with allow_cloud a sanitized generic query may be sent to the knowledge service."),
		mcp.WithString("user_text",
			mcp.Required(),
			mcp.Description("The request, e.g. \"summarize the quarterly report\""),
		),
		mcp.WithBoolean("allow_cloud",
			mcp.Description("Consent to one sanitized external knowledge call"),
		),
		mcp.WithArray("workspace_dirs",
			mcp.Description("Approved folders to search"),
			mcp.WithStringItems(),
		),
		mcp.WithArray("preferred_files",
			mcp.Description("A selected file; must lie inside workspace_dirs"),
			mcp.WithStringItems(),
		),
	)
	s.mcp.AddTool(tool, s.handleChat)
	return s
}

// ServeStdio blocks serving JSON-RPC on stdin/stdout.
func (s *Server) ServeStdio() error {
	log.Printf("[INFO] docguard MCP server on stdio")
	return server.ServeStdio(s.mcp)
}

func (s *Server) handleChat(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	userText, err := req.RequireString("user_text")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	resp, err := s.chat.Process(ctx, entities.Request{
		UserText:       userText,
		AllowCloud:     req.GetBool("allow_cloud", s.defaultCloud),
		WorkspaceDirs:  req.GetStringSlice("workspace_dirs", nil),
		PreferredFiles: req.GetStringSlice("preferred_files", nil),
	})
	if errors.Is(err, usecases.ErrEmptyUserText) {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if err != nil {
		return nil, fmt.Errorf("chat: %w", err)
	}

	data, err := json.MarshalIndent(resp, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encoding response: %w", err)
	}
	return mcp.NewToolResultText(string(data)), nil
}
