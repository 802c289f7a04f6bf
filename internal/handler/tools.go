package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/tejzpr/audience-inbox/internal/classifier"
	"github.com/tejzpr/audience-inbox/internal/inbox"
	"github.com/tejzpr/audience-inbox/internal/manager"
)

// Tools exposes the inbox to MCP clients.
type Tools struct {
	queries *manager.QueryManager
}

func New(queries *manager.QueryManager) *Tools {
	return &Tools{queries: queries}
}

// Register adds every inbox tool to s.
func (t *Tools) Register(s *server.MCPServer) {
	s.AddTool(mcp.NewTool("classify_query",
		mcp.WithDescription("Suggest tags and a priority for a message. Nothing is stored."),
		mcp.WithString("content",
			mcp.Required(),
			mcp.Description("The message text to classify"),
		),
	), t.ClassifyQuery)

	s.AddTool(mcp.NewTool("query_analytics",
		mcp.WithDescription("Summary statistics over every query in the inbox"),
	), t.QueryAnalytics)

	s.AddTool(mcp.NewTool("create_query",
		mcp.WithDescription("Add an incoming message to the inbox. Tags and priority are assigned automatically."),
		mcp.WithString("content",
			mcp.Required(),
			mcp.Description("The message text"),
		),
		mcp.WithString("sender",
			mcp.Required(),
			mcp.Description("Display name of the sender"),
		),
		mcp.WithString("channel",
			mcp.Required(),
			mcp.Description("Source channel: email, twitter, facebook, instagram, chat or community"),
		),
		mcp.WithString("sender_handle",
			mcp.Description("Optional handle of the sender on the channel"),
		),
	), t.CreateQuery)
}

func (t *Tools) ClassifyQuery(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	content, err := request.RequireString("content")
	if err != nil {
		return mcp.NewToolResultError("content is required"), nil
	}
	return jsonResult(classifier.Classify(content))
}

func (t *Tools) QueryAnalytics(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	a, err := t.queries.Analytics(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to compute analytics: %w", err)
	}
	return jsonResult(a)
}

func (t *Tools) CreateQuery(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	content, err := request.RequireString("content")
	if err != nil {
		return mcp.NewToolResultError("content is required"), nil
	}
	sender, err := request.RequireString("sender")
	if err != nil {
		return mcp.NewToolResultError("sender is required"), nil
	}
	channel, err := request.RequireString("channel")
	if err != nil {
		return mcp.NewToolResultError("channel is required"), nil
	}

	auto := true
	q, err := t.queries.Create(ctx, manager.CreateInput{
		Content:      content,
		Sender:       sender,
		SenderHandle: request.GetString("sender_handle", ""),
		Channel:      inbox.Channel(channel),
		AutoClassify: &auto,
	})
	if errors.Is(err, inbox.ErrInvalidInput) {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create query: %w", err)
	}
	return jsonResult(q)
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to encode result: %w", err)
	}
	return mcp.NewToolResultText(string(data)), nil
}
