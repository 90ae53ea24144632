package mcp

import (
	"context"
	"strconv"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/claude/stride/internal/store"
)

// --- Tool definitions ---

var toolListWorkouts = mcp.NewTool("list_workouts",
	mcp.WithDescription("List the workout catalog: every workout's name, description, total duration (seconds) and distance."),
)

var toolGetWorkout = mcp.NewTool("get_workout",
	mcp.WithDescription("Get one workout with its full expanded step sequence (repeats flattened), including per-step pace and incline."),
	mcp.WithString("name", mcp.Required(), mcp.Description("Workout name as listed in the catalog")),
)

var toolStartWorkout = mcp.NewTool("start_workout",
	mcp.WithDescription("Start a workout session. The workout must exist in the catalog; a close-but-wrong name gets a suggestion."),
	mcp.WithString("name", mcp.Required(), mcp.Description("Workout name to start")),
)

var toolEndWorkout = mcp.NewTool("end_workout",
	mcp.WithDescription("End the active workout session, if any."),
)

var toolTreadmillStatus = mcp.NewTool("treadmill_status",
	mcp.WithDescription("Current Bluetooth connection status, the active workout, and the latest treadmill data frame (speed, distance, heart rate)."),
)

var toolGetSessions = mcp.NewTool("get_sessions",
	mcp.WithDescription("Recent workout sessions from history, newest first."),
	mcp.WithString("limit", mcp.Description("Maximum number of sessions to return. Defaults to 20.")),
)

// --- Tool handlers ---

func (h *handlers) listWorkouts(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	type summary struct {
		Name        string `json:"name"`
		Description string `json:"description"`
		Duration    uint16 `json:"duration"`
		Distance    uint16 `json:"distance"`
		StepCount   int    `json:"step_count"`
	}

	workouts := h.catalog.Workouts()
	summaries := make([]summary, 0, len(workouts))
	for _, w := range workouts {
		summaries = append(summaries, summary{
			Name:        w.Name,
			Description: w.Description,
			Duration:    w.Duration,
			Distance:    w.Distance,
			StepCount:   len(w.Steps),
		})
	}

	result, err := mcp.NewToolResultJSON(summaries)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) getWorkout(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := req.RequireString("name")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	w, err := h.catalog.Get(name)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(w)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) startWorkout(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := req.RequireString("name")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	// The store itself accepts any workout; the tool surface validates
	// against the catalog so typos fail with a suggestion instead of
	// silently starting a phantom session.
	w, err := h.catalog.Get(name)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	h.store.Dispatch(store.StartWorkout{Workout: store.Workout{Name: w.Name}})
	h.log.Info("workout started", "workout", w.Name)
	return mcp.NewToolResultText("started workout " + w.Name), nil
}

func (h *handlers) endWorkout(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	active := store.Select(h.store, func(s *store.State) *store.Workout { return s.Active })
	if active == nil {
		return mcp.NewToolResultText("no active workout"), nil
	}

	h.store.Dispatch(store.EndWorkout{})
	h.log.Info("workout ended", "workout", active.Name)
	return mcp.NewToolResultText("ended workout " + active.Name), nil
}

func (h *handlers) treadmillStatus(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	st := h.store.State()
	status := map[string]any{
		"bluetooth_status": st.Bluetooth.String(),
		"active_workout":   st.Active,
	}
	if data := h.connector.LastData(); data != nil {
		status["treadmill_data"] = data
	}

	result, err := mcp.NewToolResultJSON(status)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) getSessions(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	limit := 20
	if s := req.GetString("limit", ""); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n <= 0 {
			return mcp.NewToolResultError("limit must be a positive integer"), nil
		}
		limit = n
	}

	sessions, err := h.history.ListSessions(ctx, limit)
	if err != nil {
		h.log.Error("mcp get_sessions", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(sessions)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}
