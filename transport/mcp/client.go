package mcp

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/wricardo/interstellar-mission/game/engine"
	"github.com/wricardo/interstellar-mission/game/service"
)

// Client is a thin MCP client that proxies to the REST API
type Client struct {
	baseURL    string
	httpClient *http.Client
	mcpServer  *server.MCPServer
}

// NewClient creates a new MCP client that calls the REST API
func NewClient(baseURL string) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			// Synchronous solves can take as long as the server's solve timeout.
			Timeout: 60 * time.Second,
		},
	}

	c.initMCPServer()
	return c
}

// initMCPServer initializes the MCP server with all tools
func (c *Client) initMCPServer() {
	c.mcpServer = server.NewMCPServer(
		"Interstellar Mission Navigator",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithInstructions(`Interstellar Mission Navigator - MCP Interface

This is a thin client that proxies all requests to the REST API server.

OBJECTIVE:
Find a path for a spacecraft from its origin to its destination across a grid
universe without running out of energy. The server searches; you inspect the
result and step through it.

TYPICAL FLOW:
1. list_configs, then create_session with a config_id
2. solve (first mode, or all mode to enumerate every path)
3. list_solutions / step / select_solution / describe_cell to inspect
4. render_frame to see the grid at the current step

Call mission_instructions for the full rules.`),
	)

	c.registerTools()
}

func sessionIDProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": "Session ID",
	}
}

func searchProperties(props map[string]interface{}) map[string]interface{} {
	props["mode"] = map[string]interface{}{
		"type":        "string",
		"enum":        []string{string(engine.ModeFirst), string(engine.ModeAll)},
		"description": "first stops at the first valid path, all enumerates every path",
	}
	props["max_path_length"] = map[string]interface{}{
		"type":        "integer",
		"description": "Maximum path length in cells, origin included",
	}
	props["forbid_revisit"] = map[string]interface{}{
		"type":        "boolean",
		"description": "Forbid entering a cell already on the current path (default true)",
	}
	return props
}

// registerTools registers all MCP tools
func (c *Client) registerTools() {
	// Session management
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "create_session",
		Description: "Create a new mission session for a universe, with optional default search options",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: searchProperties(map[string]interface{}{
				"config_id": map[string]interface{}{
					"type":        "string",
					"description": "Universe to load (see list_configs). Defaults to the server default.",
				},
			}),
		},
	}, c.handleCreateSession)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_sessions",
		Description: "List all active mission sessions",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleListSessions)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "get_session",
		Description: "Get details of a session: universe, search options, solve status and playback",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{"session_id": sessionIDProperty()},
			Required:   []string{"session_id"},
		},
	}, c.handleGetSession)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "delete_session",
		Description: "Delete a session",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{"session_id": sessionIDProperty()},
			Required:   []string{"session_id"},
		},
	}, c.handleDeleteSession)

	// Search
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "solve",
		Description: "Search for a path. Options override the session defaults for this run.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: searchProperties(map[string]interface{}{
				"session_id": sessionIDProperty(),
				"max_solutions": map[string]interface{}{
					"type":        "integer",
					"description": "Stop an all-mode search after this many solutions (0 = no cap)",
				},
				"timeout_ms": map[string]interface{}{
					"type":        "integer",
					"description": "Abort the search after this many milliseconds",
				},
				"async": map[string]interface{}{
					"type":        "boolean",
					"description": "Start in the background and return immediately; poll with solve_status",
				},
			}),
			Required: []string{"session_id"},
		},
	}, c.handleSolve)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "solve_status",
		Description: "Get the state of the latest search for a session",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{"session_id": sessionIDProperty()},
			Required:   []string{"session_id"},
		},
	}, c.handleSolveStatus)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "cancel_solve",
		Description: "Cancel a running background search",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{"session_id": sessionIDProperty()},
			Required:   []string{"session_id"},
		},
	}, c.handleCancelSolve)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_solutions",
		Description: "List found solutions with pagination",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProperty(),
				"page": map[string]interface{}{
					"type":        "integer",
					"description": "Page number (default 1)",
				},
				"limit": map[string]interface{}{
					"type":        "integer",
					"description": "Solutions per page (default 20, max 100)",
				},
				"order": map[string]interface{}{
					"type":        "string",
					"enum":        []string{"asc", "desc"},
					"description": "Order by discovery",
				},
			},
			Required: []string{"session_id"},
		},
	}, c.handleListSolutions)

	// Playback
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "step",
		Description: "Advance (or rewind with negative steps) the playback of the selected solution",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProperty(),
				"steps": map[string]interface{}{
					"type":        "integer",
					"description": "Number of steps (default 1)",
				},
			},
			Required: []string{"session_id"},
		},
	}, c.handleStep)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "playback_frame",
		Description: "Get the current playback frame without moving",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{"session_id": sessionIDProperty()},
			Required:   []string{"session_id"},
		},
	}, c.handlePlaybackFrame)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "reset_playback",
		Description: "Rewind playback to the origin",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{"session_id": sessionIDProperty()},
			Required:   []string{"session_id"},
		},
	}, c.handleResetPlayback)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "select_solution",
		Description: "Choose which solution playback follows",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProperty(),
				"index": map[string]interface{}{
					"type":        "integer",
					"description": "Zero-based solution index",
				},
			},
			Required: []string{"session_id", "index"},
		},
	}, c.handleSelectSolution)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "describe_cell",
		Description: "Get the cost and features of a grid cell",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProperty(),
				"row": map[string]interface{}{
					"type":        "integer",
					"description": "Row (0-based, top to bottom)",
				},
				"col": map[string]interface{}{
					"type":        "integer",
					"description": "Column (0-based, left to right)",
				},
			},
			Required: []string{"session_id", "row", "col"},
		},
	}, c.handleDescribeCell)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "render_frame",
		Description: "Render the grid and the path so far as a PNG image",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProperty(),
				"step": map[string]interface{}{
					"type":        "integer",
					"description": "Step to draw (default: current playback step)",
				},
				"cell_size": map[string]interface{}{
					"type":        "integer",
					"description": "Pixels per cell (8-64)",
				},
			},
			Required: []string{"session_id"},
		},
	}, c.handleRenderFrame)

	// Universes
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_configs",
		Description: "List available universes",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleListConfigs)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "generate_universe",
		Description: "Generate a random universe and save it on the server",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"filename": map[string]interface{}{
					"type":        "string",
					"description": "File to save as (.json, .yaml or .yml)",
				},
				"name": map[string]interface{}{
					"type":        "string",
					"description": "Universe display name",
				},
				"rows": map[string]interface{}{
					"type":        "integer",
					"description": "Grid rows (default 30)",
				},
				"cols": map[string]interface{}{
					"type":        "integer",
					"description": "Grid columns (default 30)",
				},
				"seed": map[string]interface{}{
					"type":        "integer",
					"description": "Random seed for a reproducible layout",
				},
				"initial_energy": map[string]interface{}{
					"type":        "integer",
					"description": "Starting energy",
				},
			},
			Required: []string{"filename"},
		},
	}, c.handleGenerateUniverse)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "mission_instructions",
		Description: "Get the complete mission rules",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleMissionInstructions)
}

// GetMCPServer returns the underlying MCP server for serving
func (c *Client) GetMCPServer() *server.MCPServer {
	return c.mcpServer
}

// Helper methods for API calls

func (c *Client) do(ctx context.Context, method, path string, body interface{}) (*http.Response, error) {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		reqBody = bytes.NewBuffer(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode >= 400 {
		defer resp.Body.Close()
		var errResp map[string]string
		json.NewDecoder(resp.Body).Decode(&errResp)
		if msg, ok := errResp["error"]; ok {
			return nil, fmt.Errorf("%s", msg)
		}
		return nil, fmt.Errorf("API error: %d", resp.StatusCode)
	}
	return resp, nil
}

func (c *Client) apiCall(ctx context.Context, method, path string, body interface{}, result interface{}) error {
	resp, err := c.do(ctx, method, path, body)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if result != nil {
		return json.NewDecoder(resp.Body).Decode(result)
	}
	return nil
}

func (c *Client) apiRaw(ctx context.Context, path string) ([]byte, error) {
	resp, err := c.do(ctx, "GET", path, nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	return io.ReadAll(resp.Body)
}

// Argument helpers. JSON numbers arrive as float64.

func arguments(request mcp.CallToolRequest) map[string]interface{} {
	args, _ := request.Params.Arguments.(map[string]interface{})
	if args == nil {
		return map[string]interface{}{}
	}
	return args
}

func intArg(args map[string]interface{}, key string) (int, bool) {
	switch v := args[key].(type) {
	case float64:
		return int(v), true
	case int:
		return v, true
	default:
		return 0, false
	}
}

func sessionPath(args map[string]interface{}, suffix string) (string, error) {
	sessionID, _ := args["session_id"].(string)
	if sessionID == "" {
		return "", fmt.Errorf("session_id is required")
	}
	return "/api/sessions/" + url.PathEscape(sessionID) + suffix, nil
}

func searchOverrides(args map[string]interface{}) map[string]interface{} {
	body := map[string]interface{}{}
	if mode, ok := args["mode"].(string); ok && mode != "" {
		body["mode"] = mode
	}
	if n, ok := intArg(args, "max_path_length"); ok {
		body["max_path_length"] = n
	}
	if forbid, ok := args["forbid_revisit"].(bool); ok {
		body["forbid_revisit"] = forbid
	}
	return body
}

// Tool handlers

func (c *Client) handleCreateSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)

	body := map[string]interface{}{}
	if configID, _ := args["config_id"].(string); configID != "" {
		body["config_id"] = configID
	}
	if overrides := searchOverrides(args); len(overrides) > 0 {
		opts := engine.DefaultSearchOptions()
		if mode, ok := overrides["mode"].(string); ok {
			opts.Mode = engine.SearchMode(mode)
		}
		if n, ok := overrides["max_path_length"].(int); ok {
			opts.MaxPathLength = n
		}
		if forbid, ok := overrides["forbid_revisit"].(bool); ok {
			opts.ForbidRevisit = forbid
		}
		body["options"] = opts
	}

	var info service.SessionInfo
	if err := c.apiCall(ctx, "POST", "/api/sessions", body, &info); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := fmt.Sprintf("Created session: %s\nConfig: %s\n\n%s", info.ID, info.ConfigName, formatUniverse(info.Universe))
	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleListSessions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var response struct {
		Count    int                   `json:"count"`
		Sessions []service.SessionInfo `json:"sessions"`
	}

	if err := c.apiCall(ctx, "GET", "/api/sessions", nil, &response); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Active Sessions (%d):\n\n", response.Count)
	for _, s := range response.Sessions {
		state := service.SolveIdle
		if s.Solve != nil {
			state = s.Solve.State
		}
		fmt.Fprintf(&b, "- %s (Config: %s, Solve: %s, Created: %s)\n",
			s.ID, s.ConfigName, state, s.CreatedAt.Format("15:04:05"))
	}

	return mcp.NewToolResultText(b.String()), nil
}

func (c *Client) handleGetSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := sessionPath(arguments(request), "")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var info service.SessionInfo
	if err := c.apiCall(ctx, "GET", path, nil, &info); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatSessionInfo(&info)), nil
}

func (c *Client) handleDeleteSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := sessionPath(arguments(request), "")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var response struct {
		Message string `json:"message"`
	}
	if err := c.apiCall(ctx, "DELETE", path, nil, &response); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(response.Message), nil
}

func (c *Client) handleSolve(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	path, err := sessionPath(args, "/solve")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	body := searchOverrides(args)
	if n, ok := intArg(args, "max_solutions"); ok {
		body["max_solutions"] = n
	}
	if n, ok := intArg(args, "timeout_ms"); ok {
		body["timeout_ms"] = n
	}
	if async, _ := args["async"].(bool); async {
		body["async"] = true
	}

	var status service.SolveStatus
	if err := c.apiCall(ctx, "POST", path, body, &status); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatSolveStatus(&status)), nil
}

func (c *Client) handleSolveStatus(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return c.solveCall(ctx, request, "GET")
}

func (c *Client) handleCancelSolve(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return c.solveCall(ctx, request, "DELETE")
}

func (c *Client) solveCall(ctx context.Context, request mcp.CallToolRequest, method string) (*mcp.CallToolResult, error) {
	path, err := sessionPath(arguments(request), "/solve")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var status service.SolveStatus
	if err := c.apiCall(ctx, method, path, nil, &status); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatSolveStatus(&status)), nil
}

func (c *Client) handleListSolutions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	path, err := sessionPath(args, "/solutions")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	query := url.Values{}
	if page, ok := intArg(args, "page"); ok {
		query.Set("page", fmt.Sprint(page))
	}
	if limit, ok := intArg(args, "limit"); ok {
		query.Set("limit", fmt.Sprint(limit))
	}
	if order, _ := args["order"].(string); order != "" {
		query.Set("order", order)
	}
	if len(query) > 0 {
		path += "?" + query.Encode()
	}

	var page service.SolutionPage
	if err := c.apiCall(ctx, "GET", path, nil, &page); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatSolutionPage(&page)), nil
}

func (c *Client) handleStep(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	path, err := sessionPath(args, "/step")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	steps, ok := intArg(args, "steps")
	if !ok {
		steps = 1
	}
	return c.frameCall(ctx, "POST", path, map[string]int{"steps": steps})
}

func (c *Client) handlePlaybackFrame(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := sessionPath(arguments(request), "/playback")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return c.frameCall(ctx, "GET", path, nil)
}

func (c *Client) handleResetPlayback(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := sessionPath(arguments(request), "/playback/reset")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return c.frameCall(ctx, "POST", path, nil)
}

func (c *Client) handleSelectSolution(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	path, err := sessionPath(args, "/playback/solution")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	index, ok := intArg(args, "index")
	if !ok {
		return mcp.NewToolResultError("index is required"), nil
	}
	return c.frameCall(ctx, "PUT", path, map[string]int{"index": index})
}

func (c *Client) frameCall(ctx context.Context, method, path string, body interface{}) (*mcp.CallToolResult, error) {
	var frame engine.PlaybackFrame
	if err := c.apiCall(ctx, method, path, body, &frame); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(formatFrame(&frame)), nil
}

func (c *Client) handleDescribeCell(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	row, rowOK := intArg(args, "row")
	col, colOK := intArg(args, "col")
	if !rowOK || !colOK {
		return mcp.NewToolResultError("row and col are required"), nil
	}

	path, err := sessionPath(args, fmt.Sprintf("/cells/%d/%d", row, col))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var info engine.CellInfo
	if err := c.apiCall(ctx, "GET", path, nil, &info); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatCellInfo(&info)), nil
}

func (c *Client) handleRenderFrame(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	path, err := sessionPath(args, "/render.png")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	query := url.Values{}
	if step, ok := intArg(args, "step"); ok {
		query.Set("step", fmt.Sprint(step))
	}
	if size, ok := intArg(args, "cell_size"); ok {
		query.Set("cell_size", fmt.Sprint(size))
	}
	if len(query) > 0 {
		path += "?" + query.Encode()
	}

	data, err := c.apiRaw(ctx, path)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultImage("Rendered mission frame", base64.StdEncoding.EncodeToString(data), "image/png"), nil
}

func (c *Client) handleListConfigs(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var configs []service.ConfigInfo
	if err := c.apiCall(ctx, "GET", "/api/configs", nil, &configs); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var b strings.Builder
	b.WriteString("Available Universes:\n\n")
	for _, cfg := range configs {
		fmt.Fprintf(&b, "• %s (config_id: %s)\n  %s\n  Grid: %dx%d, Energy: %d, Black holes: %d, Stars: %d, Wormholes: %d, Recharge zones: %d, Gates: %d\n\n",
			cfg.Name, cfg.ConfigID, cfg.Description, cfg.Rows, cfg.Cols, cfg.InitialEnergy,
			cfg.BlackHoles, cfg.Stars, cfg.Wormholes, cfg.RechargeZones, cfg.AdmissionGates)
	}

	return mcp.NewToolResultText(b.String()), nil
}

func (c *Client) handleGenerateUniverse(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	filename, _ := args["filename"].(string)
	if filename == "" {
		return mcp.NewToolResultError("filename is required"), nil
	}

	opts := map[string]interface{}{}
	if name, _ := args["name"].(string); name != "" {
		opts["name"] = name
	}
	for _, key := range []string{"rows", "cols", "seed", "initial_energy"} {
		if v, ok := intArg(args, key); ok {
			opts[key] = v
		}
	}

	var info service.ConfigInfo
	body := map[string]interface{}{"filename": filename, "options": opts}
	if err := c.apiCall(ctx, "POST", "/api/configs/generate", body, &info); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := fmt.Sprintf("Generated universe %q (config_id: %s)\nGrid: %dx%d, Energy: %d\nBlack holes: %d, Stars: %d, Wormholes: %d, Recharge zones: %d, Gates: %d",
		info.Name, info.ConfigID, info.Rows, info.Cols, info.InitialEnergy,
		info.BlackHoles, info.Stars, info.Wormholes, info.RechargeZones, info.AdmissionGates)
	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleMissionInstructions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(missionInstructions), nil
}

const missionInstructions = `Interstellar Mission Navigator - Complete Instructions

MISSION OBJECTIVE:
Move a spacecraft from its origin cell to its destination cell on a rectangular
grid. Every cell has an energy cost; the ship must never run out of energy.

MOVEMENT:
• The ship moves one cell up, down, left or right per step
• Entering a cell subtracts its cost from the ship's energy
• Energy may never go negative
• With forbid_revisit (the default) a path never enters the same cell twice

CELL FEATURES:
• Black hole: impassable unless the ship carries a star. Entering one spends a
  star and destroys the black hole for the rest of that path
• Star: collected when entered. Stars are consumed by black holes
• Wormhole: entering the entrance teleports the ship to the exit at no extra
  move. Each wormhole works once per path and exits never chain
• Recharge zone: instead of paying the cost, the ship's energy is multiplied by
  the zone's factor
• Admission gate: the ship may only enter with at least the gate's energy

SEARCH MODES:
• first: depth-first search stops at the first valid path. Neighbors closer to
  the destination are tried first
• all: enumerates every valid path up to max_path_length (and max_solutions)

COORDINATES:
Positions are (row, col), zero-based, row 0 at the top.

WORKFLOW:
1. list_configs to pick a universe, then create_session
2. solve, or solve with async=true and poll solve_status
3. list_solutions to compare paths, select_solution to pick one
4. step / playback_frame / reset_playback to walk through it
5. describe_cell to inspect a cell, render_frame to see the whole grid

Safe travels, navigator.`

// Formatting helpers

func formatUniverse(u *engine.UniverseConfig) string {
	if u == nil {
		return ""
	}
	counts := engine.CountFeatures(u)
	return fmt.Sprintf("Universe: %s (%dx%d)\nOrigin: %s  Destination: %s  Energy: %d\nBlack holes: %d, Stars: %d, Wormholes: %d, Recharge zones: %d, Gates: %d",
		u.Name, u.Rows, u.Cols, formatCoord(u.Origin), formatCoord(u.Destination), u.InitialEnergy,
		counts.BlackHoles, counts.Stars, counts.Wormholes, counts.RechargeZones, counts.AdmissionGates)
}

func formatSessionInfo(info *service.SessionInfo) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Session: %s\nConfig: %s\nCreated: %s\n", info.ID, info.ConfigName, info.CreatedAt.Format(time.RFC3339))
	fmt.Fprintf(&b, "Search options: mode=%s max_path_length=%d forbid_revisit=%v\n\n",
		info.Options.Mode, info.Options.MaxPathLength, info.Options.ForbidRevisit)
	if u := formatUniverse(info.Universe); u != "" {
		b.WriteString(u + "\n\n")
	}
	if info.Solve != nil {
		b.WriteString(formatSolveStatus(info.Solve) + "\n")
	}
	if info.Playback != nil {
		b.WriteString("\n" + formatFrame(info.Playback))
	}
	return b.String()
}

func formatSolveStatus(status *service.SolveStatus) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Solve state: %s\n", status.State)
	if status.Error != "" {
		fmt.Fprintf(&b, "Error: %s\n", status.Error)
	}
	if status.State != service.SolveDone {
		return b.String()
	}

	if !status.Found {
		b.WriteString("No path satisfies the constraints.\n")
	} else {
		fmt.Fprintf(&b, "Solutions found: %d\n", status.SolutionCount)
		fmt.Fprintf(&b, "First solution: %d steps, final energy %d, stars left %d\n",
			len(status.Path)-1, status.FinalEnergy, status.FinalStars)
		fmt.Fprintf(&b, "Path: %s\n", formatPath(status.Path))
	}
	if status.Stats != nil {
		fmt.Fprintf(&b, "Nodes visited: %d, backtracks: %d, took %s\n",
			status.Stats.NodesVisited, status.Stats.Backtracks, status.Stats.Duration)
	}
	return b.String()
}

func formatFrame(frame *engine.PlaybackFrame) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Solution %d/%d, step %d/%d\n", frame.SolutionIndex+1, frame.SolutionCount, frame.Step, frame.TotalSteps)
	fmt.Fprintf(&b, "Position: %s  Energy: %d  Stars: %d\n", formatCoord(frame.Position), frame.Energy, frame.Stars)
	if len(frame.Events) > 0 {
		events := make([]string, len(frame.Events))
		for i, e := range frame.Events {
			events[i] = string(e)
		}
		fmt.Fprintf(&b, "Events: %s\n", strings.Join(events, ", "))
	}
	if frame.Done {
		b.WriteString("🎯 Destination reached.\n")
	}
	return b.String()
}

func formatSolutionPage(page *service.SolutionPage) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Solutions %d total (page %d/%d)\n\n", page.TotalSolutions, page.Page, page.TotalPages)
	for _, s := range page.Solutions {
		fmt.Fprintf(&b, "#%d: %d steps, final energy %d, stars %d\n  %s\n", s.Index, s.Steps, s.FinalEnergy, s.FinalStars, formatPath(s.Path))
	}
	if page.HasNext {
		fmt.Fprintf(&b, "\nMore solutions on page %d.\n", page.Page+1)
	}
	return b.String()
}

func formatCellInfo(info *engine.CellInfo) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Cell %s\n━━━━━━━━━━━━━━━━━━━━━━━━\nCost: %d\n", formatCoord(info.At), info.Cost)
	switch {
	case info.Origin:
		b.WriteString("Origin of the mission\n")
	case info.Destination:
		b.WriteString("Destination of the mission\n")
	}
	if info.BlackHole {
		b.WriteString("Black hole: impassable without a star\n")
	}
	if info.Star {
		b.WriteString("Star: collected on entry\n")
	}
	if info.WormholeExit != nil {
		fmt.Fprintf(&b, "Wormhole entrance: exits at %s\n", formatCoord(*info.WormholeExit))
	}
	if info.RechargeFactor > 0 {
		fmt.Fprintf(&b, "Recharge zone: energy x%d instead of paying the cost\n", info.RechargeFactor)
	}
	if info.Gated {
		fmt.Fprintf(&b, "Admission gate: requires at least %d energy\n", info.MinEnergy)
	}
	return b.String()
}

func formatCoord(c engine.Coord) string {
	return fmt.Sprintf("(%d,%d)", c.Row, c.Col)
}

func formatPath(path []engine.Coord) string {
	parts := make([]string, len(path))
	for i, c := range path {
		parts[i] = formatCoord(c)
	}
	return strings.Join(parts, " → ")
}
