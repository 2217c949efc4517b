// Package mcp exposes the mission navigator to AI agents over the Model
// Context Protocol.
//
// Client is a thin proxy: every tool call becomes one request against the
// REST API, so the MCP process holds no state and can run next to the
// server (HTTP transport) or as a separate stdio process pointed at a
// remote API.
//
// Tools:
//   - create_session, list_sessions, get_session, delete_session
//   - solve (sync or async), solve_status, cancel_solve, list_solutions
//   - step, playback_frame, reset_playback, select_solution
//   - describe_cell, render_frame (returns a PNG image)
//   - list_configs, generate_universe
//   - mission_instructions
//
// Usage:
//
//	client := mcp.NewClient("http://localhost:8080")
//	server.ServeStdio(client.GetMCPServer())
package mcp
