package engine

import (
	"context"
	"fmt"
	"time"
)

// Solver runs the depth-first backtracking search over one grid. It owns a
// private ship and world; Resolve resets both before every run.
type Solver struct {
	grid  *Grid
	opts  SearchOptions
	ship  *ShipState
	world *WorldState
	agg   *Aggregator
	stats SearchStats
}

// ValidateSearchOptions rejects options that would leave the search unbounded.
func ValidateSearchOptions(opts SearchOptions) error {
	switch opts.Mode {
	case ModeFirst, ModeAll:
	default:
		return fmt.Errorf("%w: unknown mode %q", ErrInvalidOptions, opts.Mode)
	}
	if opts.MaxPathLength < 2 || opts.MaxPathLength > MaxPathLengthLimit {
		return fmt.Errorf("%w: max_path_length must be between 2 and %d, got %d", ErrInvalidOptions, MaxPathLengthLimit, opts.MaxPathLength)
	}
	if opts.MaxSolutions < 0 {
		return fmt.Errorf("%w: max_solutions must be non-negative, got %d", ErrInvalidOptions, opts.MaxSolutions)
	}
	return nil
}

// NewSolver prepares a search over grid. Zero-valued mode and path length fall back to defaults.
func NewSolver(grid *Grid, opts SearchOptions) (*Solver, error) {
	if grid == nil {
		return nil, fmt.Errorf("solver: grid cannot be nil")
	}
	if opts.Mode == "" {
		opts.Mode = ModeFirst
	}
	if opts.MaxPathLength == 0 {
		opts.MaxPathLength = DefaultMaxPathLength
	}
	if err := ValidateSearchOptions(opts); err != nil {
		return nil, err
	}

	s := &Solver{grid: grid, opts: opts}
	s.reset()
	return s, nil
}

func (s *Solver) reset() {
	s.ship = newShipState(s.grid, s.opts.MaxPathLength)
	s.world = newWorldState(s.grid)
	s.agg = NewAggregator(s.opts.Mode, s.opts.MaxSolutions)
	s.stats = SearchStats{}
	if s.opts.ForbidRevisit {
		s.world.set(s.grid.index(s.grid.origin), featureVisited)
	}
}

// Options returns the effective options after defaults were applied.
func (s *Solver) Options() SearchOptions {
	return s.opts
}

// Ship returns a copy of the current ship state.
func (s *Solver) Ship() ShipState {
	return s.ship.clone()
}

// World exposes the feature overlay for inspection.
func (s *Solver) World() *WorldState {
	return s.world
}

// Resolve runs the search from scratch. An exhausted search is reported as
// Found == false; the only error is the context's when the run is cancelled.
func (s *Solver) Resolve(ctx context.Context) (*SearchResult, error) {
	s.reset()
	start := time.Now()

	_, err := s.search(ctx)
	s.stats.Duration = time.Since(start)
	if err != nil {
		return nil, err
	}

	result := &SearchResult{
		Mode:      s.opts.Mode,
		Options:   s.opts,
		Solutions: s.agg.Solutions(),
		Stats:     s.stats,
	}
	if len(result.Solutions) > 0 {
		first := result.Solutions[0]
		result.Found = true
		result.FinalEnergy = first.FinalEnergy()
		result.FinalStars = first.FinalStars()
	}
	return result, nil
}

// search expands the current ship position. It returns true when the run
// should stop with the current state left in place.
func (s *Solver) search(ctx context.Context) (bool, error) {
	s.stats.NodesVisited++

	if s.ship.Position == s.grid.destination {
		if s.ship.Energy < s.grid.destMinEnergy {
			return false, nil
		}
		stop := s.agg.Add(s.ship)
		return s.opts.Mode == ModeFirst || stop, nil
	}

	if s.ship.Energy <= 0 {
		return false, nil
	}
	if len(s.ship.Path) >= s.opts.MaxPathLength {
		s.stats.BoundHits++
		return false, nil
	}

	neighbors, n := orderedNeighbors(s.grid, s.ship.Position)
	for i := 0; i < n; i++ {
		if err := ctx.Err(); err != nil {
			return false, err
		}
		done, err := s.tryMove(ctx, neighbors[i])
		if err != nil || done {
			return done, err
		}
	}
	return false, nil
}

func (s *Solver) tryMove(ctx context.Context, target Coord) (bool, error) {
	idx := s.grid.index(target)
	if s.opts.ForbidRevisit && s.world.has(idx, featureVisited) {
		return false, nil
	}
	if !s.admissible(idx) {
		s.stats.GateRejections++
		return false, nil
	}

	exit := noFeature
	if e := s.grid.wormhole[idx]; e != noFeature && !s.world.has(idx, featureWormholeUsed) {
		exit = e
		if len(s.ship.Path)+2 > s.opts.MaxPathLength {
			s.stats.BoundHits++
			return false, nil
		}
	}

	snap := takeSnapshot(s.ship, s.world, idx, exit)
	s.enter(idx)

	if exit != noFeature {
		s.world.set(idx, featureWormholeUsed)
		if !s.teleport(exit) {
			restoreSnapshot(s.ship, s.world, snap)
			s.stats.Backtracks++
			return false, nil
		}
	}

	done, err := s.search(ctx)
	if done && err == nil {
		return true, nil
	}

	restoreSnapshot(s.ship, s.world, snap)
	s.stats.Backtracks++
	return false, err
}
