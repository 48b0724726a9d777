package mcp

import (
	"context"
	"fmt"
	"strings"

	"github.com/goccy/go-json"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/oscillatelabsllc/sidequest/internal/logging"
	"github.com/oscillatelabsllc/sidequest/internal/models"
	"github.com/oscillatelabsllc/sidequest/internal/recommend"
	"github.com/oscillatelabsllc/sidequest/internal/stats"
	"github.com/oscillatelabsllc/sidequest/internal/tracker"
	"github.com/rs/zerolog"
)

// Server implements the MCP server for sidequest
type Server struct {
	tracker   *tracker.Tracker
	mcpServer *server.MCPServer
	log       zerolog.Logger
}

// NewServer creates a new MCP server
func NewServer(t *tracker.Tracker) *Server {
	s := &Server{
		tracker: t,
		log:     logging.Component("mcp"),
	}

	s.mcpServer = server.NewMCPServer(
		"Sidequest Adventure Tracker",
		"1.0.0",
		server.WithToolCapabilities(true),
	)

	s.registerTools()

	return s
}

func stringProp(description string) map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": description,
	}
}

// registerTools registers all MCP tools
func (s *Server) registerTools() {
	categories := make([]string, 0, len(models.Categories()))
	for _, c := range models.Categories() {
		categories = append(categories, c.String())
	}

	s.mcpServer.AddTool(mcp.Tool{
		Name:        "log_adventure",
		Description: "Record that a group of friends shared an adventure. Every pair of participants is credited.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"participants": map[string]interface{}{
					"type":        "array",
					"items":       map[string]interface{}{"type": "string"},
					"description": "Names of everyone who took part (at least two, no repeats)",
				},
				"category": map[string]interface{}{
					"type":        "string",
					"enum":        categories,
					"description": "Kind of adventure",
				},
				"date": stringProp("Date as YYYY-MM-DD. Defaults to today."),
			},
			Required: []string{"participants", "category"},
		},
	}, s.handleLogAdventure)

	s.mcpServer.AddTool(mcp.Tool{
		Name:        "top_buddies",
		Description: "List a user's most frequent adventure partners with their counts",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"user": stringProp("User name"),
				"limit": map[string]interface{}{
					"type":        "integer",
					"description": "Maximum partners to return (default: configured top N, 0 for all)",
				},
			},
			Required: []string{"user"},
		},
	}, s.handleTopBuddies)

	s.mcpServer.AddTool(mcp.Tool{
		Name:        "adventure_history",
		Description: "List every pair and category recorded on a date",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"date": stringProp("Date as YYYY-MM-DD"),
			},
			Required: []string{"date"},
		},
	}, s.handleHistory)

	s.mcpServer.AddTool(mcp.Tool{
		Name:        "category_trend",
		Description: "Total a user's adventures per category",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"user": stringProp("User name"),
			},
			Required: []string{"user"},
		},
	}, s.handleTrend)

	s.mcpServer.AddTool(mcp.Tool{
		Name:        "badge_tier",
		Description: "Show the badges a user has unlocked (Adventurer at 10, Explorer at 20, Ultimate Traveler at 50)",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"user": stringProp("User name"),
			},
			Required: []string{"user"},
		},
	}, s.handleBadge)

	s.mcpServer.AddTool(mcp.Tool{
		Name:        "recommend_activities",
		Description: "Suggest adventure categories for a group, based on what similar groups have done. Trains the model on first use.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"group": stringProp("Group key such as 'Amit-Rahul'. Any pair whose label contains it is considered."),
			},
			Required: []string{"group"},
		},
	}, s.handleRecommend)

	s.mcpServer.AddTool(mcp.Tool{
		Name:        "rebuild_model",
		Description: "Retrain the recommendation model from the current ledger",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
			Required:   []string{},
		},
	}, s.handleRebuildModel)

	s.mcpServer.AddTool(mcp.Tool{
		Name:        "get_status",
		Description: "Get ledger size, storage backend and model state",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
			Required:   []string{},
		},
	}, s.handleGetStatus)
}

// Tool handlers

// parseParams converts MCP request arguments to a struct
func parseParams(args interface{}, target interface{}) error {
	data, err := json.Marshal(args)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, target)
}

// textResult marshals v as the tool's text content
func textResult(v interface{}) (*mcp.CallToolResult, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to encode result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

func (s *Server) handleLogAdventure(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var params struct {
		Participants []string `json:"participants"`
		Category     string   `json:"category"`
		Date         string   `json:"date"`
	}
	if err := parseParams(request.Params.Arguments, &params); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid parameters: %v", err)), nil
	}
	params.Date = tracker.DefaultDate(params.Date)

	if err := s.tracker.LogAdventure(ctx, params.Participants, params.Category, params.Date); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to log adventure: %v", err)), nil
	}

	return textResult(map[string]interface{}{
		"success": true,
		"date":    params.Date,
		"message": fmt.Sprintf("Adventure logged: %s for %s", params.Category, strings.Join(params.Participants, ", ")),
	})
}

func (s *Server) handleTopBuddies(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var params struct {
		User  string `json:"user"`
		Limit *int   `json:"limit"`
	}
	if err := parseParams(request.Params.Arguments, &params); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid parameters: %v", err)), nil
	}

	limit := s.tracker.TopN()
	if params.Limit != nil {
		limit = *params.Limit
	}

	buddies := s.tracker.TopPartners(params.User, limit)
	return textResult(map[string]interface{}{
		"user":    params.User,
		"buddies": buddies,
		"count":   len(buddies),
	})
}

func (s *Server) handleHistory(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var params struct {
		Date string `json:"date"`
	}
	if err := parseParams(request.Params.Arguments, &params); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid parameters: %v", err)), nil
	}

	entries := s.tracker.AdventureHistory(params.Date)
	return textResult(map[string]interface{}{
		"date":    params.Date,
		"entries": entries,
		"count":   len(entries),
	})
}

func (s *Server) handleTrend(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var params struct {
		User string `json:"user"`
	}
	if err := parseParams(request.Params.Arguments, &params); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid parameters: %v", err)), nil
	}

	return textResult(map[string]interface{}{
		"user":  params.User,
		"trend": stats.Trend(s.tracker.CategoryTrend(params.User)),
	})
}

func (s *Server) handleBadge(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var params struct {
		User string `json:"user"`
	}
	if err := parseParams(request.Params.Arguments, &params); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid parameters: %v", err)), nil
	}

	tier := s.tracker.BadgeTier(params.User)
	return textResult(map[string]interface{}{
		"user":     params.User,
		"total":    s.tracker.TotalAdventures(params.User),
		"badge":    tier,
		"unlocked": tier.Unlocked(),
	})
}

func (s *Server) handleRecommend(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var params struct {
		Group string `json:"group"`
	}
	if err := parseParams(request.Params.Arguments, &params); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid parameters: %v", err)), nil
	}
	if strings.TrimSpace(params.Group) == "" {
		return mcp.NewToolResultError("group is required"), nil
	}

	recs, err := s.tracker.RecommendActivities(ctx, params.Group)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("recommendation failed: %v", err)), nil
	}
	if len(recs) == 0 {
		return textResult(map[string]interface{}{
			"group":           params.Group,
			"recommendations": []models.Category{},
			"message":         recommend.NoDataMessage,
		})
	}
	return textResult(map[string]interface{}{
		"group":           params.Group,
		"recommendations": recs,
	})
}

func (s *Server) handleRebuildModel(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	m, err := s.tracker.RebuildModel(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to rebuild model: %v", err)), nil
	}
	s.log.Info().Str("model_id", m.ID).Msg("Model rebuilt via MCP")

	return textResult(map[string]interface{}{
		"success":  true,
		"model_id": m.ID,
		"records":  len(m.Records),
	})
}

func (s *Server) handleGetStatus(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	st := s.tracker.Status(ctx)
	return textResult(map[string]interface{}{
		"status":  "healthy",
		"version": "1.0.0",
		"ledger":  st,
	})
}

// Serve starts the MCP server with stdio transport
func (s *Server) Serve() error {
	return server.ServeStdio(s.mcpServer)
}

// GetMCPServer returns the underlying MCP server for use with other transports (e.g., SSE)
func (s *Server) GetMCPServer() *server.MCPServer {
	return s.mcpServer
}
