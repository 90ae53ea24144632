// Package mcp exposes the workout catalog, treadmill status, and
// session history to AI assistants over the Model Context Protocol.
package mcp

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/claude/stride/internal/history"
	"github.com/claude/stride/internal/store"
	"github.com/claude/stride/internal/treadmill"
	"github.com/claude/stride/internal/workout"
)

// New creates an MCP server with all tools and resources registered.
func New(catalog *workout.Catalog, st *store.Store, connector *treadmill.Connector, hist *history.DB, version string, log *slog.Logger) *server.MCPServer {
	s := server.NewMCPServer("Stride", version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
		server.WithInstructions("Stride treadmill workout server. Browse the workout catalog, start and end sessions, check treadmill status, and review session history."),
	)

	h := &handlers{catalog: catalog, store: st, connector: connector, history: hist, log: log}

	s.AddTools(
		server.ServerTool{Tool: toolListWorkouts, Handler: h.listWorkouts},
		server.ServerTool{Tool: toolGetWorkout, Handler: h.getWorkout},
		server.ServerTool{Tool: toolStartWorkout, Handler: h.startWorkout},
		server.ServerTool{Tool: toolEndWorkout, Handler: h.endWorkout},
		server.ServerTool{Tool: toolTreadmillStatus, Handler: h.treadmillStatus},
		server.ServerTool{Tool: toolGetSessions, Handler: h.getSessions},
	)

	s.AddResources(
		server.ServerResource{Resource: resCatalog, Handler: h.catalogResource},
	)

	return s
}

// handlers holds dependencies for MCP tool/resource handlers.
type handlers struct {
	catalog   *workout.Catalog
	store     *store.Store
	connector *treadmill.Connector
	history   *history.DB
	log       *slog.Logger
}

// --- Resource definitions ---

var resCatalog = mcp.NewResource(
	"stride://catalog",
	"Workout Catalog",
	mcp.WithResourceDescription("All workouts in the catalog with their expanded steps, paces, and totals"),
	mcp.WithMIMEType("application/json"),
)

func (h *handlers) catalogResource(_ context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	data, err := json.Marshal(h.catalog.Workouts())
	if err != nil {
		return nil, err
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}
