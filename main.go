// Command interstellar-mission starts the Interstellar Mission Navigator server.
//
// It supports two modes:
//  1. "server" (default) – runs the HTTP server exposing REST API, WebSocket, and an /mcp HTTP endpoint
//  2. "stdio-mcp" – runs an MCP stdio server and spins up an internal HTTP API if none is available
//
// Settings come from a TOML file (see package settings); flags override it.
// Optional ngrok tunneling gives easy external access during development.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"
	"golang.ngrok.com/ngrok"
	ngrokConfig "golang.ngrok.com/ngrok/config"

	"github.com/wricardo/interstellar-mission/api"
	"github.com/wricardo/interstellar-mission/game/config"
	"github.com/wricardo/interstellar-mission/game/service"
	"github.com/wricardo/interstellar-mission/game/session"
	"github.com/wricardo/interstellar-mission/settings"
	"github.com/wricardo/interstellar-mission/transport/mcp"
	"github.com/wricardo/interstellar-mission/transport/websocket"
)

// Version information
const (
	Version = "1.0.0"
	AppName = "Interstellar Mission Navigator"
)

// Command-line flags. Only flags given explicitly override the settings file.
var (
	settingsPath = flag.String("settings", getSettingsPathDefault(), "TOML settings file")
	port         = flag.Int("port", 8080, "HTTP server port")
	host         = flag.String("host", "localhost", "HTTP server host")
	configDir    = flag.String("config-dir", getConfigDirDefault(), "Directory containing universe configurations")
	debug        = flag.Bool("debug", false, "Enable debug logging")
	version      = flag.Bool("version", false, "Show version information")
	ngrokEnabled = flag.Bool("ngrok", false, "Enable ngrok tunnel")
	ngrokAuth    = flag.String("ngrok-auth", "", "Ngrok auth token (or use NGROK_AUTHTOKEN env var)")
	ngrokDomain  = flag.String("ngrok-domain", "", "Custom ngrok domain (optional)")
)

// getSettingsPathDefault honors INTERSTELLAR_SETTINGS, then falls back to settings.toml.
func getSettingsPathDefault() string {
	if path := os.Getenv("INTERSTELLAR_SETTINGS"); path != "" {
		return path
	}
	return settings.DefaultPath
}

// getConfigDirDefault honors CONFIG_DIR, then falls back to "universes".
func getConfigDirDefault() string {
	if dir := os.Getenv("CONFIG_DIR"); dir != "" {
		return dir
	}
	return "universes"
}

func init() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [OPTIONS] [MODE]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "%s v%s\n\n", AppName, Version)
		fmt.Fprintf(os.Stderr, "Available modes:\n")
		fmt.Fprintf(os.Stderr, "  server, http     Run HTTP server with API, WebSocket, and MCP endpoint (default)\n")
		fmt.Fprintf(os.Stderr, "  stdio-mcp        Run MCP stdio server with internal HTTP server\n")
		fmt.Fprintf(os.Stderr, "  mcp-stdio        Alias for stdio-mcp\n")
		fmt.Fprintf(os.Stderr, "  mcp              Alias for stdio-mcp\n")
		fmt.Fprintf(os.Stderr, "\nOptions:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s                              # Run HTTP server on default port 8080\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s -settings prod.toml          # Run with a settings file\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s stdio-mcp                    # Run MCP stdio server\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s -port 9090 mcp               # Run MCP stdio server with internal HTTP on port 9090\n", os.Args[0])
	}
}

// main parses flags, initializes services, and starts the selected mode.
func main() {
	// A missing .env is fine; anything else is reported once the logger exists.
	envErr := godotenv.Load()

	flag.Parse()

	if *version {
		fmt.Printf("%s v%s\n", AppName, Version)
		os.Exit(0)
	}

	cfg, err := settings.Load(*settingsPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load settings: %v\n", err)
		os.Exit(1)
	}
	applyFlags(cfg)

	logger, err := settings.NewLogger(cfg.Logging)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to build logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	if envErr == nil {
		logger.Debug("loaded environment variables from .env file")
	} else if !os.IsNotExist(envErr) {
		logger.Warn("error loading .env file", zap.Error(envErr))
	}

	mode := "server"
	if args := flag.Args(); len(args) > 0 {
		mode = args[0]
	}

	logger.Info("starting",
		zap.String("app", AppName),
		zap.String("version", Version),
		zap.String("mode", mode))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	app, err := initializeServices(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("failed to initialize services", zap.Error(err))
	}
	defer app.shutdown()

	switch mode {
	case "stdio-mcp", "mcp-stdio", "mcp":
		runStdioMCPWithInternalServer(app)

	case "server", "http":
		runHTTPServer(ctx, cancel, app)

	default:
		logger.Fatal("unknown mode, use 'server' (default) or 'stdio-mcp'", zap.String("mode", mode))
	}
}

// applyFlags copies explicitly set flags over the loaded settings.
func applyFlags(cfg *settings.Settings) {
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "port":
			cfg.Server.Port = *port
		case "host":
			cfg.Server.Host = *host
		case "config-dir":
			cfg.Server.ConfigDir = *configDir
		case "debug":
			if *debug {
				cfg.Logging.Level = "debug"
			}
		case "ngrok":
			cfg.Ngrok.Enabled = *ngrokEnabled
		case "ngrok-domain":
			cfg.Ngrok.Domain = *ngrokDomain
		}
	})
	if os.Getenv("CONFIG_DIR") != "" && cfg.Server.ConfigDir == settings.Defaults().Server.ConfigDir {
		cfg.Server.ConfigDir = *configDir
	}
}

// application bundles the long-lived pieces main wires together.
type application struct {
	settings    *settings.Settings
	logger      *zap.Logger
	hub         *websocket.Hub
	missions    service.MissionService
	sessions    *session.Manager
	persistence session.SessionPersistence
}

func (a *application) shutdown() {
	if err := a.sessions.SaveAllSessions(); err != nil {
		a.logger.Warn("failed to save sessions on shutdown", zap.Error(err))
	}
}

// handler mounts the API and the /mcp endpoint on one mux.
func (a *application) handler(baseURL string) http.Handler {
	apiServer := api.NewServer(a.missions, a.hub, a.logger.Named("api"))
	mcpClient := mcp.NewClient(baseURL)

	mainRouter := http.NewServeMux()
	mainRouter.Handle("/", apiServer)
	mainRouter.HandleFunc("/mcp", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		body, err := io.ReadAll(r.Body)
		if err != nil {
			http.Error(w, "Failed to read request", http.StatusBadRequest)
			return
		}
		defer r.Body.Close()

		response := mcpClient.GetMCPServer().HandleMessage(r.Context(), body)

		w.Header().Set("Content-Type", "application/json")
		responseData, err := json.Marshal(response)
		if err != nil {
			http.Error(w, "Failed to marshal response", http.StatusInternalServerError)
			return
		}
		w.Write(responseData)
	})
	return mainRouter
}

// runHTTPServer starts the HTTP server with REST API, WebSocket hub, and an /mcp proxy endpoint.
// If ngrok is enabled (settings, flag, or environment), it also provisions a public tunnel.
func runHTTPServer(ctx context.Context, cancel context.CancelFunc, app *application) {
	logger := app.logger
	addr := app.settings.Addr()
	mainRouter := app.handler(fmt.Sprintf("http://%s", addr))

	httpServer := &http.Server{
		Addr:         addr,
		Handler:      mainRouter,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: app.settings.Solver.Timeout + 15*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()

		logger.Info("HTTP server listening",
			zap.String("addr", addr),
			zap.String("api", fmt.Sprintf("http://%s/api", addr)),
			zap.String("websocket", fmt.Sprintf("ws://%s/ws?session=<session_id>", addr)),
			zap.String("mcp", fmt.Sprintf("http://%s/mcp", addr)))

		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	if ngrokShouldRun(app.settings) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			runNgrokTunnel(ctx, app.settings, mainRouter, logger.Named("ngrok"))
		}()
	}

	sig := <-stop
	logger.Info("shutting down", zap.String("signal", sig.String()))
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Warn("HTTP server shutdown error", zap.Error(err))
	}

	wg.Wait()
	logger.Info("server stopped")
}

// ngrokShouldRun reports whether a tunnel was requested by settings, flag, or NGROK_ENABLED.
func ngrokShouldRun(cfg *settings.Settings) bool {
	if cfg.Ngrok.Enabled {
		return true
	}
	env := os.Getenv("NGROK_ENABLED")
	return env == "true" || env == "1"
}

// ngrokAuthToken reads the token from the flag, then NGROK_AUTHTOKEN, then NGROK_AUTH_TOKEN.
func ngrokAuthToken() string {
	if *ngrokAuth != "" {
		return *ngrokAuth
	}
	if token := os.Getenv("NGROK_AUTHTOKEN"); token != "" {
		return token
	}
	return os.Getenv("NGROK_AUTH_TOKEN")
}

// runNgrokTunnel serves handler through an ngrok endpoint until ctx is cancelled.
func runNgrokTunnel(ctx context.Context, cfg *settings.Settings, handler http.Handler, logger *zap.Logger) {
	authToken := ngrokAuthToken()
	if authToken == "" {
		logger.Warn("ngrok enabled but no auth token provided (use -ngrok-auth, NGROK_AUTHTOKEN, or NGROK_AUTH_TOKEN)")
		return
	}

	domain := cfg.Ngrok.Domain
	if domain == "" {
		domain = os.Getenv("NGROK_DOMAIN")
	}

	var tunnel ngrokConfig.Tunnel
	if domain != "" {
		tunnel = ngrokConfig.HTTPEndpoint(ngrokConfig.WithDomain(domain))
		logger.Info("using custom ngrok domain", zap.String("domain", domain))
	} else {
		tunnel = ngrokConfig.HTTPEndpoint()
	}

	tun, err := ngrok.Listen(ctx, tunnel, ngrok.WithAuthtoken(authToken))
	if err != nil {
		logger.Error("failed to start ngrok tunnel", zap.Error(err))
		return
	}
	defer func() {
		if err := tun.Close(); err != nil {
			logger.Warn("failed to close ngrok tunnel", zap.Error(err))
		}
	}()

	go func() {
		<-ctx.Done()
		tun.Close()
	}()

	ngrokURL := tun.URL()
	logger.Info("ngrok tunnel established",
		zap.String("url", ngrokURL),
		zap.String("api", ngrokURL+"/api"),
		zap.String("websocket", ngrokURL+"/ws?session=<session_id>"),
		zap.String("mcp", ngrokURL+"/mcp"))

	if err := http.Serve(tun, handler); err != nil && err != http.ErrServerClosed && ctx.Err() == nil {
		logger.Warn("ngrok server error", zap.Error(err))
	}
	logger.Info("ngrok tunnel closed")
}

// initializeServices wires the hub, session and config managers, and the mission service.
// It also starts the background routines that prune expired and deleted sessions; they
// stop when ctx is cancelled.
func initializeServices(ctx context.Context, cfg *settings.Settings, logger *zap.Logger) (*application, error) {
	configManager, err := config.NewManager(cfg.Server.ConfigDir, logger.Named("config"))
	if err != nil {
		return nil, fmt.Errorf("failed to create config manager: %w", err)
	}

	persistence, err := session.NewFilePersistence(cfg.Server.SessionsDir, configManager)
	if err != nil {
		return nil, fmt.Errorf("failed to create session persistence: %w", err)
	}

	sessionManager := session.NewManagerWithPersistence(persistence, logger.Named("session"))
	if err := sessionManager.LoadPersistedSessions(); err != nil {
		logger.Warn("failed to load persisted sessions", zap.Error(err))
	}

	hub := websocket.NewHub(logger.Named("websocket"), cfg.WebSocket.AllowedOrigins...)
	go hub.Run(ctx)

	missions := service.NewMissionService(sessionManager, configManager,
		service.WithLogger(logger.Named("mission")),
		service.WithPublisher(hub),
		service.WithSolveTimeout(cfg.Solver.Timeout),
		service.WithSearchDefaults(cfg.SearchOptions()),
	)

	go sessionCleanupRoutine(ctx, sessionManager, cfg.Sessions, logger)
	go filesystemSyncRoutine(ctx, sessionManager, persistence, cfg.Sessions.SyncInterval, logger)

	return &application{
		settings:    cfg,
		logger:      logger,
		hub:         hub,
		missions:    missions,
		sessions:    sessionManager,
		persistence: persistence,
	}, nil
}

// sessionCleanupRoutine periodically removes sessions that have not been accessed
// within the configured TTL.
func sessionCleanupRoutine(ctx context.Context, manager *session.Manager, cfg settings.SessionSettings, logger *zap.Logger) {
	ticker := time.NewTicker(cfg.CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if removed := manager.CleanupExpiredSessions(cfg.TTL); removed > 0 {
				logger.Info("cleaned up expired sessions", zap.Int("removed", removed))
			}
		}
	}
}

// filesystemSyncRoutine drops sessions from memory when their files are deleted.
func filesystemSyncRoutine(ctx context.Context, manager *session.Manager, persistence session.SessionPersistence, interval time.Duration, logger *zap.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if persistence == nil {
				continue
			}
			if pruned := pruneOrphanedSessions(manager, persistence, logger); pruned > 0 {
				logger.Info("filesystem sync pruned orphaned sessions", zap.Int("pruned", pruned))
			}
		}
	}
}

func pruneOrphanedSessions(manager *session.Manager, persistence session.SessionPersistence, logger *zap.Logger) int {
	pruned := 0
	for _, sess := range manager.List() {
		if persistence.Exists(sess.ID) {
			continue
		}
		if err := manager.DeleteFromMemory(sess.ID); err == nil {
			pruned++
			logger.Debug("pruned session from memory, file deleted", zap.String("session_id", sess.ID))
		}
	}
	return pruned
}

// runStdioMCPWithInternalServer runs an MCP stdio server.
// It reuses an API already listening on the configured address; otherwise it
// starts an internal HTTP API bound to a random loopback port and targets that.
func runStdioMCPWithInternalServer(app *application) {
	logger := app.logger
	externalURL := fmt.Sprintf("http://%s", app.settings.Addr())
	baseURL := externalURL

	logger.Info("checking for external API server", zap.String("url", externalURL))
	if !apiAvailable(externalURL) {
		logger.Info("no external API server found, starting internal HTTP server")

		listener, err := net.Listen("tcp", "127.0.0.1:0")
		if err != nil {
			logger.Fatal("failed to get available port", zap.Error(err))
		}
		baseURL = fmt.Sprintf("http://%s", listener.Addr().String())

		httpServer := &http.Server{Handler: app.handler(baseURL)}
		go func() {
			if err := httpServer.Serve(listener); err != nil && err != http.ErrServerClosed {
				logger.Error("internal HTTP server error", zap.Error(err))
			}
		}()
		defer httpServer.Close()
	}

	mcpClient := mcp.NewClient(baseURL)
	logger.Info("MCP stdio server ready", zap.String("api", baseURL))

	if err := server.ServeStdio(mcpClient.GetMCPServer()); err != nil {
		logger.Error("MCP stdio server error", zap.Error(err))
	}
}

// apiAvailable probes the health endpoint of a running server.
func apiAvailable(baseURL string) bool {
	client := &http.Client{Timeout: 2 * time.Second}
	resp, err := client.Get(baseURL + "/healthz")
	if err != nil {
		return false
	}
	resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}
