package engine

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/zyedidia/generic/mapset"
)

// Aggregator collects accepted solutions. Two arrivals with the same path and
// the same energy and star traces count once.
type Aggregator struct {
	mode      SearchMode
	limit     int
	seen      mapset.Set[string]
	solutions []Solution
}

// NewAggregator creates an aggregator. limit stops an exhaustive run once reached; zero disables it.
func NewAggregator(mode SearchMode, limit int) *Aggregator {
	return &Aggregator{
		mode:  mode,
		limit: limit,
		seen:  mapset.New[string](),
	}
}

// Add records the ship's current path as a solution and reports whether the
// search should stop.
func (a *Aggregator) Add(ship *ShipState) bool {
	key := solutionKey(ship)
	if !a.seen.Has(key) {
		a.seen.Put(key)
		a.solutions = append(a.solutions, Solution{
			Path:        append([]Coord(nil), ship.Path...),
			EnergyTrace: append([]int(nil), ship.EnergyTrace...),
			StarsTrace:  append([]int(nil), ship.StarsTrace...),
		})
	}
	if a.mode == ModeFirst {
		return true
	}
	return a.limit > 0 && len(a.solutions) >= a.limit
}

// Solutions returns the recorded solutions in discovery order.
func (a *Aggregator) Solutions() []Solution {
	out := make([]Solution, len(a.solutions))
	copy(out, a.solutions)
	return out
}

func (a *Aggregator) Len() int {
	return len(a.solutions)
}

func solutionKey(ship *ShipState) string {
	var b strings.Builder
	b.Grow(len(ship.Path) * 16)
	for i, c := range ship.Path {
		b.WriteString(strconv.Itoa(c.Row))
		b.WriteByte(',')
		b.WriteString(strconv.Itoa(c.Col))
		b.WriteByte(':')
		b.WriteString(strconv.Itoa(ship.EnergyTrace[i]))
		b.WriteByte(':')
		b.WriteString(strconv.Itoa(ship.StarsTrace[i]))
		b.WriteByte(';')
	}
	return b.String()
}

// Steps is the number of moves, one less than the number of coordinates.
func (s Solution) Steps() int {
	if len(s.Path) == 0 {
		return 0
	}
	return len(s.Path) - 1
}

func (s Solution) FinalEnergy() int {
	if len(s.EnergyTrace) == 0 {
		return 0
	}
	return s.EnergyTrace[len(s.EnergyTrace)-1]
}

func (s Solution) FinalStars() int {
	if len(s.StarsTrace) == 0 {
		return 0
	}
	return s.StarsTrace[len(s.StarsTrace)-1]
}

// StateAt returns the position and resources after step i. Step 0 is the origin.
func (s Solution) StateAt(step int) (Coord, int, int, error) {
	if step < 0 || step >= len(s.Path) {
		return Coord{}, 0, 0, fmt.Errorf("step %d out of range [0,%d]", step, len(s.Path)-1)
	}
	return s.Path[step], s.EnergyTrace[step], s.StarsTrace[step], nil
}

// Solution returns the i-th solution of the result.
func (r *SearchResult) Solution(i int) (Solution, error) {
	if r == nil {
		return Solution{}, ErrNoResult
	}
	if !r.Found {
		return Solution{}, ErrNoSolution
	}
	if i < 0 || i >= len(r.Solutions) {
		return Solution{}, fmt.Errorf("%w: %d of %d", ErrSolutionIndex, i, len(r.Solutions))
	}
	return r.Solutions[i], nil
}
