// Package analysis computes quick, search-free facts about a universe: whether
// the destination is reachable at all, and how the cheapest route compares to
// the starting energy.
package analysis

import (
	"fmt"

	"github.com/zyedidia/generic/heap"
	"github.com/zyedidia/generic/mapset"
	"github.com/zyedidia/generic/queue"

	"github.com/wricardo/interstellar-mission/game/engine"
)

// Connectivity is the result of a flood fill from the origin that ignores energy.
type Connectivity struct {
	Reachable          int            `json:"reachable_cells"`
	DestinationReached bool           `json:"destination_reached"`
	UnreachableStars   []engine.Coord `json:"unreachable_stars,omitempty"`
}

// Report summarizes a universe.
type Report struct {
	Name               string               `json:"name"`
	Rows               int                  `json:"rows"`
	Cols               int                  `json:"cols"`
	InitialEnergy      int                  `json:"initial_energy"`
	Features           engine.FeatureCounts `json:"features"`
	BlackHolesPassable bool                 `json:"black_holes_passable"`
	Manhattan          int                  `json:"manhattan_distance"`
	CheapestCost       int                  `json:"cheapest_cost"`
	CheapestFound      bool                 `json:"cheapest_found"`
	Connectivity       Connectivity         `json:"connectivity"`
	Warnings           []string             `json:"warnings,omitempty"`
}

var directions = []engine.Coord{{Row: 0, Col: 1}, {Row: 1, Col: 0}, {Row: 0, Col: -1}, {Row: -1, Col: 0}}

func neighbors(g *engine.Grid, c engine.Coord) []engine.Coord {
	out := make([]engine.Coord, 0, len(directions))
	for _, d := range directions {
		n := engine.Coord{Row: c.Row + d.Row, Col: c.Col + d.Col}
		if g.InBounds(n) {
			out = append(out, n)
		}
	}
	return out
}

// passable reports whether a ship could ever stand on c. Black holes block
// only when the universe has no star to destroy them with.
func passable(g *engine.Grid, c engine.Coord) bool {
	return !g.IsBlackHole(c) || g.StarCount() > 0
}

// land follows a wormhole from c. The exit is returned only if it is passable.
func land(g *engine.Grid, c engine.Coord) (engine.Coord, bool) {
	exit, ok := g.WormholeExit(c)
	if !ok {
		return c, true
	}
	return exit, passable(g, exit)
}

// CheckConnectivity flood fills from the origin over passable cells, following
// wormholes. The destination is terminal and never expanded.
func CheckConnectivity(g *engine.Grid) Connectivity {
	seen := mapset.New[engine.Coord]()
	q := queue.New[engine.Coord]()

	seen.Put(g.Origin())
	q.Enqueue(g.Origin())

	for !q.Empty() {
		c := q.Dequeue()
		if c == g.Destination() {
			continue
		}
		for _, n := range neighbors(g, c) {
			if seen.Has(n) || !passable(g, n) {
				continue
			}
			seen.Put(n)
			target, ok := land(g, n)
			if !ok {
				continue
			}
			if target != n && !seen.Has(target) {
				seen.Put(target)
			}
			q.Enqueue(target)
		}
	}

	result := Connectivity{
		Reachable:          seen.Size(),
		DestinationReached: seen.Has(g.Destination()),
	}
	for r := 0; r < g.Rows(); r++ {
		for c := 0; c < g.Cols(); c++ {
			at := engine.Coord{Row: r, Col: c}
			if g.IsStar(at) && !seen.Has(at) {
				result.UnreachableStars = append(result.UnreachableStars, at)
			}
		}
	}
	return result
}

type item struct {
	at   engine.Coord
	cost int
}

// CheapestCost is the smallest terrain cost of any route from origin to
// destination, ignoring recharge zones, gates, and energy limits. Wormholes
// are followed. It returns false when no route exists.
func CheapestCost(g *engine.Grid) (int, bool) {
	best := map[engine.Coord]int{g.Origin(): 0}
	h := heap.New[item](func(a, b item) bool { return a.cost < b.cost })
	h.Push(item{at: g.Origin()})

	for h.Size() > 0 {
		cur, _ := h.Pop()
		if cur.cost > best[cur.at] {
			continue
		}
		if cur.at == g.Destination() {
			return cur.cost, true
		}
		for _, n := range neighbors(g, cur.at) {
			if !passable(g, n) {
				continue
			}
			target, ok := land(g, n)
			if !ok {
				continue
			}
			cost := cur.cost + g.Cost(n)
			if target != n {
				cost += g.Cost(target)
			}
			if prev, seen := best[target]; seen && prev <= cost {
				continue
			}
			best[target] = cost
			h.Push(item{at: target, cost: cost})
		}
	}
	return 0, false
}

// Analyze builds a Report for a universe.
func Analyze(config *engine.UniverseConfig) (*Report, error) {
	g, err := engine.NewGrid(config)
	if err != nil {
		return nil, err
	}

	report := &Report{
		Name:               config.Name,
		Rows:               g.Rows(),
		Cols:               g.Cols(),
		InitialEnergy:      g.InitialEnergy(),
		Features:           engine.CountFeatures(config),
		BlackHolesPassable: g.StarCount() > 0,
		Manhattan:          engine.ManhattanDistance(g.Origin(), g.Destination()),
		Connectivity:       CheckConnectivity(g),
	}
	report.CheapestCost, report.CheapestFound = CheapestCost(g)

	if !report.Connectivity.DestinationReached {
		report.Warnings = append(report.Warnings, "destination is unreachable even with unlimited energy")
	}
	if n := len(report.Connectivity.UnreachableStars); n > 0 {
		report.Warnings = append(report.Warnings, plural(n, "star is", "stars are")+" unreachable")
	}
	if report.Features.BlackHoles > 0 && !report.BlackHolesPassable {
		report.Warnings = append(report.Warnings, "black holes block the ship: there are no stars")
	}
	if report.CheapestFound && report.Features.RechargeZones == 0 && report.CheapestCost >= report.InitialEnergy {
		report.Warnings = append(report.Warnings, "cheapest route costs at least the initial energy and there is no recharge zone")
	}
	return report, nil
}

func plural(n int, one, many string) string {
	if n == 1 {
		return "1 " + one
	}
	return fmt.Sprintf("%d %s", n, many)
}
