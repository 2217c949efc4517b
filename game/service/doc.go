// Package service provides the business logic layer for the Interstellar Mission.
//
// The service package implements:
//   - Multi-session mission management
//   - Synchronous and background searches with cancellation and timeouts
//   - Paginated solution listings
//   - Playback cursor control with auto-save and live events
//   - Universe configuration listing, saving and generation
//
// Core Interfaces:
//
// MissionService is the main service interface used by the HTTP, WebSocket
// and MCP transports. SessionManager handles session storage and
// ConfigManager handles universe files. EventPublisher receives
// solve_started, solve_finished and playback events.
//
// Searches:
//
// Each session has at most one running search. StartSolve runs it on its own
// goroutine with a context detached from the request, so it keeps going
// after the HTTP call returns; CancelSolve cancels that context and waits
// for the goroutine to exit. A finished search replaces the engine's result
// and rewinds playback to the origin of the first solution.
//
// Usage:
//
//	svc := service.NewMissionService(sessionMgr, configMgr,
//		service.WithLogger(logger),
//		service.WithPublisher(hub))
//
//	info, err := svc.CreateSession(ctx, "classic", nil)
//	status, err := svc.Solve(ctx, info.ID, service.SolveRequest{Mode: engine.ModeAll})
//	frame, err := svc.Step(ctx, info.ID, 1)
package service
