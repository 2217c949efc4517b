// Package websocket streams mission playback to browser clients.
//
// A central Hub owns every connection. Clients subscribe to one session by
// passing its id when the connection is upgraded (the API serves
// /ws?session=<id>). Whenever the mission service steps, resets, selects a
// solution or finishes a search it publishes an event, and the hub fans it
// out to the subscribers of that session only.
//
// Outgoing messages are JSON:
//
//	{"session_id":"a1b2","event":"playback","frame":{"step":3,"position":{"row":1,"col":2},...}}
//	{"session_id":"a1b2","event":"solve_finished","data":{"state":"done",...}}
//
// Incoming messages are read and discarded; the read loop only keeps the
// connection alive and answers pings.
//
// Usage:
//
//	hub := websocket.NewHub(logger)
//	go hub.Run(ctx)
//	svc := service.NewMissionService(sessions, configs, service.WithPublisher(hub))
//
// All bookkeeping runs on the Run goroutine, so Hub methods are safe for
// concurrent use. Broadcasts are queued and dropped with a warning when the
// queue is full rather than blocking a search.
package websocket
