package engine

import (
	"context"
	"fmt"
	"sync"
)

// Engine provides the main interface for mission operations
type Engine interface {
	// Search
	Resolve(ctx context.Context, opts SearchOptions) (*SearchResult, error)
	Result() *SearchResult
	SetResult(result *SearchResult) error

	// Configuration
	Config() *UniverseConfig
	Grid() *Grid
	Describe(c Coord) (CellInfo, error)

	// Playback
	Playback() (*PlaybackFrame, error)
	Step(n int) (*PlaybackFrame, error)
	ResetPlayback() (*PlaybackFrame, error)
	SelectSolution(i int) (*PlaybackFrame, error)
	Frame(solution, step int) (*PlaybackFrame, error)
	Cursor() (solution, step int)
	SetCursor(solution, step int) error
}

// MissionEngine implements the Engine interface. The search itself runs on a
// fresh Solver; the engine only keeps the last result and a playback cursor.
type MissionEngine struct {
	mu       sync.RWMutex
	config   *UniverseConfig
	grid     *Grid
	result   *SearchResult
	solution int
	step     int
}

// NewEngine creates a new mission engine with the provided universe
func NewEngine(config *UniverseConfig) (*MissionEngine, error) {
	grid, err := NewGrid(config)
	if err != nil {
		return nil, err
	}

	return &MissionEngine{
		config: config,
		grid:   grid,
	}, nil
}

// Resolve runs a new search from scratch and replaces the previous result.
// The playback cursor moves back to the origin of the first solution.
func (e *MissionEngine) Resolve(ctx context.Context, opts SearchOptions) (*SearchResult, error) {
	solver, err := NewSolver(e.grid, opts)
	if err != nil {
		return nil, err
	}

	result, err := solver.Resolve(ctx)
	if err != nil {
		return nil, err
	}

	e.mu.Lock()
	e.result = result
	e.solution = 0
	e.step = 0
	e.mu.Unlock()

	return result, nil
}

// Result returns the last search result, or nil before the first Resolve
func (e *MissionEngine) Result() *SearchResult {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.result
}

// SetResult installs a previously computed result (used for persistence loading)
func (e *MissionEngine) SetResult(result *SearchResult) error {
	if result == nil {
		return fmt.Errorf("result cannot be nil")
	}
	for i, sol := range result.Solutions {
		if len(sol.Path) == 0 || len(sol.Path) != len(sol.EnergyTrace) || len(sol.Path) != len(sol.StarsTrace) {
			return fmt.Errorf("solution %d: path and traces must have equal non-zero length", i)
		}
		for _, c := range sol.Path {
			if !e.grid.InBounds(c) {
				return fmt.Errorf("solution %d: %w: (%d,%d)", i, ErrOutOfBounds, c.Row, c.Col)
			}
		}
	}

	e.mu.Lock()
	e.result = result
	e.solution = 0
	e.step = 0
	e.mu.Unlock()
	return nil
}

// Config returns the universe this engine was built from
func (e *MissionEngine) Config() *UniverseConfig {
	return e.config
}

// Grid returns the immutable grid
func (e *MissionEngine) Grid() *Grid {
	return e.grid
}

// Describe returns the static features of one cell
func (e *MissionEngine) Describe(c Coord) (CellInfo, error) {
	return e.grid.Describe(c)
}

// Cursor returns the selected solution and playback step
func (e *MissionEngine) Cursor() (int, int) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.solution, e.step
}

// SetCursor moves playback to an explicit solution and step
func (e *MissionEngine) SetCursor(solution, step int) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	sol, err := e.result.Solution(solution)
	if err != nil {
		return err
	}
	if step < 0 || step >= len(sol.Path) {
		return fmt.Errorf("step %d out of range [0,%d]", step, len(sol.Path)-1)
	}
	e.solution = solution
	e.step = step
	return nil
}

// Playback returns the frame under the cursor
func (e *MissionEngine) Playback() (*PlaybackFrame, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.frameLocked(e.solution, e.step)
}

// Step advances the cursor by n steps (negative rewinds), clamped to the path.
func (e *MissionEngine) Step(n int) (*PlaybackFrame, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	sol, err := e.result.Solution(e.solution)
	if err != nil {
		return nil, err
	}

	next := e.step + n
	if next < 0 {
		next = 0
	}
	if last := len(sol.Path) - 1; next > last {
		next = last
	}
	e.step = next
	return e.frameLocked(e.solution, e.step)
}

// ResetPlayback moves the cursor back to the origin
func (e *MissionEngine) ResetPlayback() (*PlaybackFrame, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if _, err := e.result.Solution(e.solution); err != nil {
		return nil, err
	}
	e.step = 0
	return e.frameLocked(e.solution, 0)
}

// SelectSolution switches playback to solution i and rewinds it
func (e *MissionEngine) SelectSolution(i int) (*PlaybackFrame, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if _, err := e.result.Solution(i); err != nil {
		return nil, err
	}
	e.solution = i
	e.step = 0
	return e.frameLocked(i, 0)
}

// Frame builds the frame for any solution and step without moving the cursor
func (e *MissionEngine) Frame(solution, step int) (*PlaybackFrame, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.frameLocked(solution, step)
}

func (e *MissionEngine) frameLocked(solution, step int) (*PlaybackFrame, error) {
	if e.result == nil {
		return nil, ErrNoResult
	}
	sol, err := e.result.Solution(solution)
	if err != nil {
		return nil, err
	}
	pos, energy, stars, err := sol.StateAt(step)
	if err != nil {
		return nil, err
	}

	return &PlaybackFrame{
		SolutionIndex: solution,
		SolutionCount: len(e.result.Solutions),
		Step:          step,
		TotalSteps:    sol.Steps(),
		Position:      pos,
		Energy:        energy,
		Stars:         stars,
		Events:        StepEvents(e.grid, sol.Path, step),
		Done:          step == len(sol.Path)-1,
		VisitedSoFar:  append([]Coord(nil), sol.Path[:step+1]...),
	}, nil
}

// StepEvents derives what happened on entering path[step]. One-shot features
// fire only on the first visit along the path.
func StepEvents(g *Grid, path []Coord, step int) []EventKind {
	if step == 0 {
		return []EventKind{EventStart}
	}

	cell := path[step]
	firstVisit := func(at int) bool {
		for i := 0; i < at; i++ {
			if path[i] == path[at] {
				return false
			}
		}
		return true
	}

	var events []EventKind
	if teleported(g, path, step) {
		events = append(events, EventWormhole)
	}
	if _, ok := g.RechargeFactor(cell); ok {
		events = append(events, EventRecharge)
	}
	if _, ok := g.AdmissionRequirement(cell); ok {
		events = append(events, EventGatePassed)
	}
	if firstVisit(step) {
		if g.IsStar(cell) {
			events = append(events, EventStarCollected)
		}
		if g.IsBlackHole(cell) {
			events = append(events, EventBlackHoleDestroyed)
		}
	}
	if len(events) == 0 {
		events = append(events, EventMove)
	}
	if cell == g.destination {
		events = append(events, EventArrived)
	}
	return events
}

// teleported reports whether path[step] was reached through a wormhole. The
// path is replayed from the origin: an entrance fires once, only when it was
// entered by a normal move, and landing on another entrance never chains.
func teleported(g *Grid, path []Coord, step int) bool {
	used := make(map[Coord]bool)
	landed := false
	for i := 1; i <= step; i++ {
		prev := path[i-1]
		exit, ok := g.WormholeExit(prev)
		fired := i > 1 && !landed && ok && !used[prev] && exit == path[i]
		if fired {
			used[prev] = true
		}
		landed = fired
	}
	return landed
}
