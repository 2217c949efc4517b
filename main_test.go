package main

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/wricardo/interstellar-mission/game/engine"
	"github.com/wricardo/interstellar-mission/settings"
)

func TestConstants(t *testing.T) {
	if Version == "" {
		t.Error("Version should not be empty")
	}

	expectedAppName := "Interstellar Mission Navigator"
	if AppName != expectedAppName {
		t.Errorf("Expected app name %s, got %s", expectedAppName, AppName)
	}
}

func testSettings(t *testing.T) *settings.Settings {
	t.Helper()
	cfg := settings.Defaults()
	cfg.Server.ConfigDir = t.TempDir()
	cfg.Server.SessionsDir = filepath.Join(t.TempDir(), "sessions")
	return cfg
}

func newTestApp(t *testing.T, cfg *settings.Settings) *application {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	app, err := initializeServices(ctx, cfg, zap.NewNop())
	if err != nil {
		t.Fatalf("Failed to initialize services: %v", err)
	}
	return app
}

func TestInitializeServices(t *testing.T) {
	cfg := testSettings(t)
	cfg.Solver.Mode = string(engine.ModeAll)
	cfg.Solver.MaxSolutions = 4

	app := newTestApp(t, cfg)
	if app.missions == nil || app.hub == nil || app.sessions == nil {
		t.Fatal("Expected all services to be initialized")
	}

	// An empty universe directory falls back to the built-in universe.
	info, err := app.missions.CreateSession(context.Background(), "", nil)
	if err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}
	if info.Options.Mode != engine.ModeAll || info.Options.MaxSolutions != 4 {
		t.Errorf("session should use solver settings, got %+v", info.Options)
	}

	if _, err := os.Stat(cfg.Server.SessionsDir); err != nil {
		t.Errorf("sessions directory should be created: %v", err)
	}
}

func TestInitializeServices_InvalidConfigDir(t *testing.T) {
	cfg := testSettings(t)
	cfg.Server.ConfigDir = "/non/existent/path"

	if _, err := initializeServices(context.Background(), cfg, zap.NewNop()); err == nil {
		t.Error("Expected error for non-existent config directory")
	}
}

func TestFlagDefaults(t *testing.T) {
	if *port <= 0 || *port > 65535 {
		t.Errorf("Invalid default port: %d", *port)
	}
	if *host == "" {
		t.Error("Host should have a default value")
	}
	if *configDir == "" {
		t.Error("Config directory should have a default value")
	}
	if *settingsPath == "" {
		t.Error("Settings path should have a default value")
	}
}

func TestApplyFlags_OnlyExplicitFlags(t *testing.T) {
	cfg := settings.Defaults()
	cfg.Server.Port = 7000
	applyFlags(cfg)

	// flag.Parse has not seen -port, so the settings value stays.
	if cfg.Server.Port != 7000 {
		t.Errorf("Port = %d, want 7000", cfg.Server.Port)
	}
}

func TestApplicationHandler(t *testing.T) {
	app := newTestApp(t, testSettings(t))
	ts := httptest.NewServer(app.handler("http://127.0.0.1:0"))
	defer ts.Close()

	t.Run("health", func(t *testing.T) {
		resp, err := http.Get(ts.URL + "/healthz")
		if err != nil {
			t.Fatal(err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			t.Errorf("status = %d", resp.StatusCode)
		}
	})

	t.Run("mcp rejects GET", func(t *testing.T) {
		resp, err := http.Get(ts.URL + "/mcp")
		if err != nil {
			t.Fatal(err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusMethodNotAllowed {
			t.Errorf("status = %d", resp.StatusCode)
		}
	})

	t.Run("mcp answers ping", func(t *testing.T) {
		body := `{"jsonrpc":"2.0","id":1,"method":"ping"}`
		resp, err := http.Post(ts.URL+"/mcp", "application/json", strings.NewReader(body))
		if err != nil {
			t.Fatal(err)
		}
		defer resp.Body.Close()

		var buf bytes.Buffer
		buf.ReadFrom(resp.Body)
		if resp.Header.Get("Content-Type") != "application/json" {
			t.Errorf("Content-Type = %s", resp.Header.Get("Content-Type"))
		}
		if !strings.Contains(buf.String(), `"jsonrpc":"2.0"`) {
			t.Errorf("expected a JSON-RPC response: %s", buf.String())
		}
	})
}

func TestPruneOrphanedSessions(t *testing.T) {
	cfg := testSettings(t)
	app := newTestApp(t, cfg)
	ctx := context.Background()

	kept, _ := app.missions.CreateSession(ctx, "", nil)
	orphan, _ := app.missions.CreateSession(ctx, "", nil)

	if err := os.Remove(filepath.Join(cfg.Server.SessionsDir, strings.ToLower(orphan.ID)+".json")); err != nil {
		t.Fatalf("Failed to remove session file: %v", err)
	}

	if pruned := pruneOrphanedSessions(app.sessions, app.persistence, zap.NewNop()); pruned != 1 {
		t.Errorf("pruned = %d, want 1", pruned)
	}
	if _, err := app.missions.GetSession(ctx, kept.ID); err != nil {
		t.Errorf("kept session should survive: %v", err)
	}
	if _, err := app.missions.GetSession(ctx, orphan.ID); err == nil {
		t.Error("orphaned session should be gone")
	}
}

func TestNgrokShouldRun(t *testing.T) {
	cfg := settings.Defaults()

	t.Setenv("NGROK_ENABLED", "")
	if ngrokShouldRun(cfg) {
		t.Error("ngrok should be off by default")
	}

	t.Setenv("NGROK_ENABLED", "1")
	if !ngrokShouldRun(cfg) {
		t.Error("NGROK_ENABLED=1 should enable ngrok")
	}

	t.Setenv("NGROK_ENABLED", "")
	cfg.Ngrok.Enabled = true
	if !ngrokShouldRun(cfg) {
		t.Error("settings should enable ngrok")
	}
}

func TestApiAvailable(t *testing.T) {
	healthy := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/healthz" {
			w.WriteHeader(http.StatusOK)
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	defer healthy.Close()

	if !apiAvailable(healthy.URL) {
		t.Error("healthy server should be available")
	}

	broken := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer broken.Close()

	if apiAvailable(broken.URL) {
		t.Error("failing server should not be available")
	}
	if apiAvailable("http://127.0.0.1:1") {
		t.Error("closed port should not be available")
	}
}
