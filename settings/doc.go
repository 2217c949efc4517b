// Package settings loads the server's TOML settings file and builds its zap logger.
//
// Every key is optional; values missing from the file keep the defaults from
// Defaults. Durations are written as strings such as "30s" or "24h".
//
//	[server]
//	host = "localhost"
//	port = 8080
//	config_dir = "universes"
//	sessions_dir = "sessions"
//
//	[solver]
//	mode = "first"          # or "all"
//	max_path_length = 200
//	forbid_revisit = true
//	max_solutions = 0       # 0 keeps every solution in "all" mode
//	timeout = "30s"
//
//	[logging]
//	level = "info"
//	format = "console"      # or "json"
//
//	[sessions]
//	ttl = "24h"
//	cleanup_interval = "1h"
//	sync_interval = "5s"
//
//	[websocket]
//	allowed_origins = []
//
//	[ngrok]
//	enabled = false
//	domain = ""
package settings
