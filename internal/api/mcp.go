package api

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/kalambet/leadbooth/internal/lead"
	"github.com/kalambet/leadbooth/internal/sheet"
)

// MCPDeps holds dependencies for the MCP server.
type MCPDeps struct {
	Writer   *lead.Writer
	Searcher *lead.Searcher
	Updater  *lead.MeetingUpdater
	Table    sheet.Table
	Schema   lead.Schema
}

// NewMCPServer creates an MCP server exposing lead capture, search, and
// meeting updates as tools, so booth staff can drive the backend from an
// assistant without the web form.
func NewMCPServer(deps MCPDeps) *server.MCPServer {
	s := server.NewMCPServer(
		"leadbooth",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(false, true),
		server.WithInstructions("leadbooth — trade-show lead tracking: capture leads, find existing ones, record pre-booked meeting outcomes."),
		server.WithRecovery(),
	)

	// Tools
	s.AddTool(
		mcp.NewTool("capture_lead",
			mcp.WithDescription("Record a new lead as a row in the tracking table."),
			mcp.WithString("first_name", mcp.Description("Lead's first name")),
			mcp.WithString("last_name", mcp.Description("Lead's last name")),
			mcp.WithString("company", mcp.Description("Company or organization")),
			mcp.WithString("email", mcp.Description("Email address")),
			mcp.WithString("title", mcp.Description("Job title")),
			mcp.WithString("phone", mcp.Description("Phone number")),
			mcp.WithString("ae_owner", mcp.Description("Owning salesperson")),
			mcp.WithString("products_discussed", mcp.Description("Products discussed at the booth")),
			mcp.WithString("conversation_summary", mcp.Description("Free-text conversation summary")),
			mcp.WithString("next_steps", mcp.Description("Agreed next steps")),
			mcp.WithString("intent_level", mcp.Description("Buying intent level")),
		),
		mcpCaptureLead(deps),
	)

	s.AddTool(
		mcp.NewTool("search_leads",
			mcp.WithDescription("Find leads by name, email, or company. Case-insensitive substring match, at most 10 results."),
			mcp.WithString("query", mcp.Description("Search query"), mcp.Required()),
		),
		mcpSearchLeads(deps),
	)

	s.AddTool(
		mcp.NewTool("update_meeting",
			mcp.WithDescription("Record the outcome of a pre-booked meeting on an existing lead row."),
			mcp.WithNumber("row_number", mcp.Description("Row number from search_leads (2 or greater)"), mcp.Required()),
			mcp.WithString("meeting_status", mcp.Description("completed, no_show, or anything else for rescheduled"), mcp.Required()),
			mcp.WithString("meeting_notes", mcp.Description("Notes appended to the conversation summary")),
			mcp.WithString("deal_potential", mcp.Description("New deal potential rating, overwrites the existing one")),
			mcp.WithString("updated_by", mcp.Description("Who recorded the outcome")),
		),
		mcpUpdateMeeting(deps),
	)

	// Resources
	s.AddResource(
		mcp.NewResource(
			"leads://recent",
			"Recent Leads",
			mcp.WithResourceDescription("Last 10 captured leads with row numbers"),
			mcp.WithMIMEType("application/json"),
		),
		mcpResourceRecent(deps),
	)

	return s
}

func mcpCaptureLead(deps MCPDeps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		rec := lead.Record{
			FirstName:     req.GetString("first_name", ""),
			LastName:      req.GetString("last_name", ""),
			Company:       req.GetString("company", ""),
			Email:         req.GetString("email", ""),
			Title:         req.GetString("title", ""),
			Phone:         req.GetString("phone", ""),
			Owner:         req.GetString("ae_owner", ""),
			Products:      req.GetString("products_discussed", ""),
			Summary:       req.GetString("conversation_summary", ""),
			NextSteps:     req.GetString("next_steps", ""),
			IntentLevel:   req.GetString("intent_level", ""),
			CaptureMethod: "mcp",
		}

		row, err := deps.Writer.Append(rec, "", "")
		if err != nil {
			return mcpError(fmt.Sprintf("failed to capture lead: %v", err)), nil
		}

		return mcpText(fmt.Sprintf("Captured lead in row %d", row)), nil
	}
}

func mcpSearchLeads(deps MCPDeps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		query, err := req.RequireString("query")
		if err != nil {
			return mcpError("query is required"), nil
		}

		results, err := deps.Searcher.Search(query)
		if err != nil {
			return mcpError(fmt.Sprintf("search failed: %v", err)), nil
		}

		b, err := json.Marshal(results)
		if err != nil {
			return mcpError(fmt.Sprintf("failed to marshal results: %v", err)), nil
		}
		return mcpText(string(b)), nil
	}
}

func mcpUpdateMeeting(deps MCPDeps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		row, err := req.RequireInt("row_number")
		if err != nil {
			return mcpError("row_number is required"), nil
		}
		status, err := req.RequireString("meeting_status")
		if err != nil {
			return mcpError("meeting_status is required"), nil
		}

		label, err := deps.Updater.Update(lead.MeetingUpdate{
			RowNumber:     row,
			Status:        status,
			Notes:         req.GetString("meeting_notes", ""),
			DealPotential: req.GetString("deal_potential", ""),
			UpdatedBy:     req.GetString("updated_by", ""),
			Timestamp:     nowISO(),
		})
		if err != nil {
			return mcpError(fmt.Sprintf("update failed: %v", err)), nil
		}

		return mcpText(fmt.Sprintf("Row %d marked %s", row, label)), nil
	}
}

func mcpResourceRecent(deps MCPDeps) server.ResourceHandlerFunc {
	return func(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		rows, err := deps.Table.ReadAll()
		if err != nil {
			return nil, fmt.Errorf("failed to read table: %w", err)
		}

		// Skip the header row, keep the last 10 rows in table order.
		start := 1
		if len(rows)-start > 10 {
			start = len(rows) - 10
		}

		recent := make([]lead.SearchResult, 0, 10)
		for i := start; i < len(rows); i++ {
			recent = append(recent, lead.ProjectRow(deps.Schema, rows[i], i+1))
		}

		b, err := json.Marshal(recent)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal recent leads: %w", err)
		}

		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      req.Params.URI,
				MIMEType: "application/json",
				Text:     string(b),
			},
		}, nil
	}
}

func mcpText(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{Type: "text", Text: text},
		},
	}
}

func mcpError(msg string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{Type: "text", Text: msg},
		},
		IsError: true,
	}
}
