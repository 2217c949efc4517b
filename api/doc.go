// Package api exposes the mission service over HTTP.
//
// Routes are registered on a gorilla/mux router:
//
// Sessions:
//   - POST   /api/sessions                         create (config_id, options)
//   - GET    /api/sessions                         list (sort=created|accessed, order, limit)
//   - GET    /api/sessions/{id}                    details with solve status and playback
//   - DELETE /api/sessions/{id}
//
// Search:
//   - POST   /api/sessions/{id}/solve              run a search; "async": true returns 202
//   - GET    /api/sessions/{id}/solve              status of the latest search
//   - DELETE /api/sessions/{id}/solve              cancel a running search
//   - GET    /api/sessions/{id}/solutions          paginated solutions (page, limit, order)
//
// Playback:
//   - POST   /api/sessions/{id}/step               {"steps": n}, negative steps rewind
//   - GET    /api/sessions/{id}/playback
//   - POST   /api/sessions/{id}/playback/reset
//   - PUT    /api/sessions/{id}/playback/solution  {"index": i}
//   - GET    /api/sessions/{id}/cells/{row}/{col}
//   - GET    /api/sessions/{id}/render.png         step, cell_size
//
// Universes:
//   - GET    /api/configs
//   - POST   /api/configs                          {"filename", "universe"}
//   - POST   /api/configs/generate                 {"filename", "options"}
//   - GET    /api/configs/{name}
//
// Plus /ws?session=<id> for live playback and /healthz.
//
// Errors are returned as {"error": "..."}. Missing sessions and universes map
// to 404, invalid input to 400, and requests that conflict with the session's
// search state (a search already running, nothing solved yet) to 409.
package api
