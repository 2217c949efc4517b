package service

import (
	"context"
	"time"

	"github.com/wricardo/interstellar-mission/game/engine"
	"github.com/wricardo/interstellar-mission/game/generator"
)

// MissionService defines all mission-related operations
type MissionService interface {
	// Session Management
	CreateSession(ctx context.Context, configName string, opts *engine.SearchOptions) (*SessionInfo, error)
	GetSession(ctx context.Context, sessionID string) (*SessionInfo, error)
	ListSessions(ctx context.Context) ([]*SessionInfo, error)
	DeleteSession(ctx context.Context, sessionID string) error

	// Search
	Solve(ctx context.Context, sessionID string, req SolveRequest) (*SolveStatus, error)
	StartSolve(ctx context.Context, sessionID string, req SolveRequest) (*SolveStatus, error)
	GetSolveStatus(ctx context.Context, sessionID string) (*SolveStatus, error)
	CancelSolve(ctx context.Context, sessionID string) (*SolveStatus, error)
	ListSolutions(ctx context.Context, sessionID string, opts SolutionListOptions) (*SolutionPage, error)

	// Playback
	Step(ctx context.Context, sessionID string, steps int) (*engine.PlaybackFrame, error)
	ResetPlayback(ctx context.Context, sessionID string) (*engine.PlaybackFrame, error)
	SelectSolution(ctx context.Context, sessionID string, index int) (*engine.PlaybackFrame, error)
	GetPlayback(ctx context.Context, sessionID string) (*engine.PlaybackFrame, error)
	DescribeCell(ctx context.Context, sessionID string, at engine.Coord) (*engine.CellInfo, error)
	RenderPNG(ctx context.Context, sessionID string, opts RenderOptions) ([]byte, error)

	// Configuration
	ListConfigs(ctx context.Context) ([]*ConfigInfo, error)
	LoadConfig(ctx context.Context, configName string) (*engine.UniverseConfig, error)
	SaveConfig(ctx context.Context, configName string, config *engine.UniverseConfig) error
	GenerateConfig(ctx context.Context, configName string, opts generator.Options) (*ConfigInfo, error)
}

// SessionManager defines session storage operations
type SessionManager interface {
	Create(id, configID string, config *engine.UniverseConfig, opts engine.SearchOptions) (*Session, error)
	Get(id string) (*Session, error)
	List() []*Session
	Delete(id string) error
	UpdateLastAccessed(id string) error
	Save(id string) error
}

// ConfigManager handles universe configuration loading
type ConfigManager interface {
	LoadConfig(name string) (*engine.UniverseConfig, error)
	ListConfigs() ([]*ConfigInfo, error)
	GetDefault() (string, *engine.UniverseConfig)
	SaveConfig(name string, config *engine.UniverseConfig) error
}

// EventPublisher pushes session events to live subscribers
type EventPublisher interface {
	BroadcastEvent(sessionID string, event string, data interface{})
}

// Session represents an active mission session
type Session struct {
	ID             string
	ConfigID       string
	Engine         *engine.MissionEngine
	Config         *engine.UniverseConfig
	Options        engine.SearchOptions
	CreatedAt      time.Time
	LastAccessedAt time.Time

	// Job is the most recent solve; nil until the first one starts.
	Job *SolveJob
}

// SolveJob tracks one search run. It is owned by the service and guarded by its lock.
type SolveJob struct {
	State      SolveState
	Options    engine.SearchOptions
	StartedAt  time.Time
	FinishedAt time.Time
	Err        string
	cancel     context.CancelFunc
	done       chan struct{}
}

// Cancel stops a running job. It is a no-op once the job has finished.
func (j *SolveJob) Cancel() {
	if j != nil && j.cancel != nil {
		j.cancel()
	}
}

// Done is closed when the job's goroutine exits.
func (j *SolveJob) Done() <-chan struct{} {
	return j.done
}
