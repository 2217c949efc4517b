package settings

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/wricardo/interstellar-mission/game/engine"
)

func writeSettings(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "settings.toml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write settings: %v", err)
	}
	return path
}

func TestDefaults(t *testing.T) {
	s := Defaults()
	if err := s.Validate(); err != nil {
		t.Fatalf("defaults should validate: %v", err)
	}
	if s.Addr() != "localhost:8080" {
		t.Errorf("Addr = %s", s.Addr())
	}
	if s.SearchOptions() != engine.DefaultSearchOptions() {
		t.Errorf("SearchOptions = %+v, want engine defaults", s.SearchOptions())
	}
	if s.Server.ConfigDir != "universes" {
		t.Errorf("ConfigDir = %s", s.Server.ConfigDir)
	}
}

func TestLoad(t *testing.T) {
	path := writeSettings(t, `
[server]
port = 9090
config_dir = "maps"

[solver]
mode = "all"
max_path_length = 40
max_solutions = 5
timeout = "2m"

[logging]
level = "debug"
format = "json"

[sessions]
ttl = "6h"

[websocket]
allowed_origins = ["http://localhost:3000"]

[ngrok]
enabled = true
domain = "mission.ngrok.app"
`)

	s, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	tests := []struct {
		name string
		got  interface{}
		want interface{}
	}{
		{"port", s.Server.Port, 9090},
		{"host kept from defaults", s.Server.Host, "localhost"},
		{"config dir", s.Server.ConfigDir, "maps"},
		{"mode", s.Solver.Mode, "all"},
		{"max path length", s.Solver.MaxPathLength, 40},
		{"forbid revisit kept", s.Solver.ForbidRevisit, true},
		{"max solutions", s.Solver.MaxSolutions, 5},
		{"timeout", s.Solver.Timeout, 2 * time.Minute},
		{"log level", s.Logging.Level, "debug"},
		{"ttl", s.Sessions.TTL, 6 * time.Hour},
		{"cleanup interval kept", s.Sessions.CleanupInterval, time.Hour},
		{"origins", len(s.WebSocket.AllowedOrigins), 1},
		{"ngrok", s.Ngrok.Enabled, true},
		{"ngrok domain", s.Ngrok.Domain, "mission.ngrok.app"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("got %v, want %v", tt.got, tt.want)
			}
		})
	}
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"malformed", "[server\nport = 1", "parse settings"},
		{"bad port", "[server]\nport = 70000", "server.port"},
		{"bad mode", "[solver]\nmode = \"widest\"", "solver"},
		{"short path", "[solver]\nmax_path_length = 1", "max_path_length"},
		{"zero timeout", "[solver]\ntimeout = \"0s\"", "timeout"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeSettings(t, tt.content))
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q should mention %q", err, tt.want)
			}
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.toml")); err == nil {
		t.Error("an explicitly named missing file should fail")
	}

	dir := t.TempDir()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	defer os.Chdir(wd)

	s, err := Load("")
	if err != nil {
		t.Fatalf("missing default file should fall back to defaults: %v", err)
	}
	if s.Server.Port != 8080 {
		t.Errorf("Port = %d", s.Server.Port)
	}
}

func TestNewLogger(t *testing.T) {
	tests := []LoggingSettings{
		{Level: "debug", Format: "console"},
		{Level: "warn", Format: "json"},
		{Level: "nonsense", Format: ""},
	}
	for _, cfg := range tests {
		t.Run(cfg.Level+"/"+cfg.Format, func(t *testing.T) {
			logger, err := NewLogger(cfg)
			if err != nil {
				t.Fatalf("NewLogger failed: %v", err)
			}
			defer logger.Sync()
			logger.Info("mission control online")
		})
	}

	logger, _ := NewLogger(LoggingSettings{Level: "nonsense"})
	if !logger.Core().Enabled(0) {
		t.Error("unknown level should fall back to info")
	}
}
