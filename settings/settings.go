package settings

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/wricardo/interstellar-mission/game/engine"
)

// DefaultPath is read when no settings file is named explicitly.
const DefaultPath = "settings.toml"

type Settings struct {
	Server    ServerSettings    `toml:"server"`
	Solver    SolverSettings    `toml:"solver"`
	Logging   LoggingSettings   `toml:"logging"`
	Sessions  SessionSettings   `toml:"sessions"`
	WebSocket WebSocketSettings `toml:"websocket"`
	Ngrok     NgrokSettings     `toml:"ngrok"`
}

type ServerSettings struct {
	Host        string `toml:"host"`
	Port        int    `toml:"port"`
	ConfigDir   string `toml:"config_dir"`
	SessionsDir string `toml:"sessions_dir"`
}

// SolverSettings are the search defaults for new sessions.
type SolverSettings struct {
	Mode          string        `toml:"mode"`
	MaxPathLength int           `toml:"max_path_length"`
	ForbidRevisit bool          `toml:"forbid_revisit"`
	MaxSolutions  int           `toml:"max_solutions"`
	Timeout       time.Duration `toml:"timeout"`
}

type LoggingSettings struct {
	Level  string `toml:"level"`
	Format string `toml:"format"` // "json" or "console"
}

type SessionSettings struct {
	TTL             time.Duration `toml:"ttl"`
	CleanupInterval time.Duration `toml:"cleanup_interval"`
	SyncInterval    time.Duration `toml:"sync_interval"`
}

type WebSocketSettings struct {
	// AllowedOrigins empty accepts every origin.
	AllowedOrigins []string `toml:"allowed_origins"`
}

type NgrokSettings struct {
	Enabled bool   `toml:"enabled"`
	Domain  string `toml:"domain"`
}

// Load reads a TOML settings file over the defaults. A missing file at the
// default path is not an error; a missing explicitly named file is.
func Load(path string) (*Settings, error) {
	s := Defaults()
	if path == "" {
		path = DefaultPath
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) && path == DefaultPath {
			return s, nil
		}
		return nil, fmt.Errorf("read settings %s: %w", path, err)
	}
	if err := toml.Unmarshal(data, s); err != nil {
		return nil, fmt.Errorf("parse settings %s: %w", path, err)
	}
	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("settings %s: %w", path, err)
	}
	return s, nil
}

func Defaults() *Settings {
	return &Settings{
		Server: ServerSettings{
			Host:        "localhost",
			Port:        8080,
			ConfigDir:   "universes",
			SessionsDir: "sessions",
		},
		Solver: SolverSettings{
			Mode:          string(engine.ModeFirst),
			MaxPathLength: engine.DefaultMaxPathLength,
			ForbidRevisit: true,
			Timeout:       30 * time.Second,
		},
		Logging: LoggingSettings{
			Level:  "info",
			Format: "console",
		},
		Sessions: SessionSettings{
			TTL:             24 * time.Hour,
			CleanupInterval: time.Hour,
			SyncInterval:    5 * time.Second,
		},
	}
}

// Validate checks values a settings file can get wrong.
func (s *Settings) Validate() error {
	if s.Server.Port <= 0 || s.Server.Port > 65535 {
		return fmt.Errorf("server.port %d out of range", s.Server.Port)
	}
	if err := engine.ValidateSearchOptions(s.SearchOptions()); err != nil {
		return fmt.Errorf("solver: %w", err)
	}
	if s.Solver.Timeout <= 0 {
		return fmt.Errorf("solver.timeout must be positive")
	}
	if s.Sessions.TTL <= 0 || s.Sessions.CleanupInterval <= 0 || s.Sessions.SyncInterval <= 0 {
		return fmt.Errorf("sessions ttl and intervals must be positive")
	}
	return nil
}

// SearchOptions converts the solver section into engine options.
func (s *Settings) SearchOptions() engine.SearchOptions {
	return engine.SearchOptions{
		Mode:          engine.SearchMode(s.Solver.Mode),
		MaxPathLength: s.Solver.MaxPathLength,
		ForbidRevisit: s.Solver.ForbidRevisit,
		MaxSolutions:  s.Solver.MaxSolutions,
	}
}

// Addr is host:port for the HTTP listener.
func (s *Settings) Addr() string {
	return fmt.Sprintf("%s:%d", s.Server.Host, s.Server.Port)
}

// NewLogger builds a zap logger: colored console output by default, JSON in production.
// Output goes to stderr, which keeps stdout free for the stdio MCP transport.
func NewLogger(cfg LoggingSettings) (*zap.Logger, error) {
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = zapcore.InfoLevel
	}

	var zapCfg zap.Config
	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		zapCfg.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
		zapCfg.EncoderConfig.ConsoleSeparator = "  "
		zapCfg.DisableCaller = true
		zapCfg.DisableStacktrace = true
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)
	zapCfg.OutputPaths = []string{"stderr"}
	zapCfg.ErrorOutputPaths = []string{"stderr"}

	return zapCfg.Build()
}
