package service

import (
	"time"

	"github.com/wricardo/interstellar-mission/game/engine"
)

// SessionInfo provides information about a mission session
type SessionInfo struct {
	ID             string                 `json:"id"`
	ConfigName     string                 `json:"config_name"`
	CreatedAt      time.Time              `json:"created_at"`
	LastAccessedAt time.Time              `json:"last_accessed_at"`
	Options        engine.SearchOptions   `json:"options"`
	Solve          *SolveStatus           `json:"solve"`
	Playback       *engine.PlaybackFrame  `json:"playback,omitempty"`
	Universe       *engine.UniverseConfig `json:"universe"`
}

// SolveState is the lifecycle stage of a session's search
type SolveState string

const (
	SolveIdle      SolveState = "idle"
	SolveRunning   SolveState = "running"
	SolveDone      SolveState = "done"
	SolveFailed    SolveState = "failed"
	SolveCancelled SolveState = "cancelled"
)

// SolveRequest overrides the session's search options for one run.
// Zero values keep the session defaults.
type SolveRequest struct {
	Mode          engine.SearchMode `json:"mode,omitempty"`
	MaxPathLength int               `json:"max_path_length,omitempty"`
	ForbidRevisit *bool             `json:"forbid_revisit,omitempty"`
	MaxSolutions  int               `json:"max_solutions,omitempty"`
	TimeoutMs     int               `json:"timeout_ms,omitempty"`
}

// SolveStatus reports the state of the latest search and a summary of its result
type SolveStatus struct {
	SessionID     string               `json:"session_id"`
	State         SolveState           `json:"state"`
	Options       engine.SearchOptions `json:"options"`
	Found         bool                 `json:"found"`
	SolutionCount int                  `json:"solution_count"`
	FinalEnergy   int                  `json:"final_energy"`
	FinalStars    int                  `json:"final_stars"`
	Path          []engine.Coord       `json:"path,omitempty"`
	Stats         *engine.SearchStats  `json:"stats,omitempty"`
	Error         string               `json:"error,omitempty"`
	StartedAt     *time.Time           `json:"started_at,omitempty"`
	FinishedAt    *time.Time           `json:"finished_at,omitempty"`
}

// SolutionListOptions configures solution pagination
type SolutionListOptions struct {
	Page  int    `json:"page"`
	Limit int    `json:"limit"`
	Order string `json:"order"` // "asc" or "desc"
}

// SolutionSummary is one entry of a solution page
type SolutionSummary struct {
	Index       int            `json:"index"`
	Steps       int            `json:"steps"`
	FinalEnergy int            `json:"final_energy"`
	FinalStars  int            `json:"final_stars"`
	Path        []engine.Coord `json:"path"`
	EnergyTrace []int          `json:"energy_trace"`
	StarsTrace  []int          `json:"stars_trace"`
}

// SolutionPage contains paginated solutions
type SolutionPage struct {
	Solutions      []SolutionSummary `json:"solutions"`
	TotalSolutions int               `json:"total_solutions"`
	Page           int               `json:"page"`
	PageSize       int               `json:"page_size"`
	TotalPages     int               `json:"total_pages"`
	HasNext        bool              `json:"has_next"`
	HasPrevious    bool              `json:"has_previous"`
}

// RenderOptions selects what a PNG snapshot shows
type RenderOptions struct {
	// Step is the playback step to draw; negative uses the session cursor.
	Step     int `json:"step"`
	CellSize int `json:"cell_size,omitempty"`
}

// ConfigInfo provides information about a universe configuration
type ConfigInfo struct {
	Filename       string `json:"filename"`
	ConfigID       string `json:"config_id"` // The identifier to use for session creation
	Name           string `json:"name"`      // Display name
	Description    string `json:"description"`
	Rows           int    `json:"rows"`
	Cols           int    `json:"cols"`
	InitialEnergy  int    `json:"initial_energy"`
	BlackHoles     int    `json:"black_holes"`
	Stars          int    `json:"stars"`
	Wormholes      int    `json:"wormholes"`
	RechargeZones  int    `json:"recharge_zones"`
	AdmissionGates int    `json:"admission_gates"`
}

// NewConfigInfo summarizes a universe under its config identifier
func NewConfigInfo(configID, filename string, config *engine.UniverseConfig) *ConfigInfo {
	counts := engine.CountFeatures(config)
	return &ConfigInfo{
		Filename:       filename,
		ConfigID:       configID,
		Name:           config.Name,
		Description:    config.Description,
		Rows:           config.Rows,
		Cols:           config.Cols,
		InitialEnergy:  config.InitialEnergy,
		BlackHoles:     counts.BlackHoles,
		Stars:          counts.Stars,
		Wormholes:      counts.Wormholes,
		RechargeZones:  counts.RechargeZones,
		AdmissionGates: counts.AdmissionGates,
	}
}
