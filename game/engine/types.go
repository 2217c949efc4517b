package engine

import "time"

const (
	// Validation constants
	MinGridSize          = 1
	MaxGridSize          = 200
	MaxCellCost          = 1_000_000
	MaxRechargeFactor    = 1_000
	DefaultMaxPathLength = 200
	MaxPathLengthLimit   = 100_000
)

// Coord is a grid coordinate. Row 0 is the top row.
type Coord struct {
	Row int `json:"row" yaml:"row"`
	Col int `json:"col" yaml:"col"`
}

// Wormhole links an entrance to its exit. It teleports at most once per path.
type Wormhole struct {
	Entrance Coord `json:"entrance" yaml:"entrance"`
	Exit     Coord `json:"exit" yaml:"exit"`
}

// RechargeZone multiplies the ship's energy instead of charging the cell cost.
type RechargeZone struct {
	At     Coord `json:"at" yaml:"at"`
	Factor int   `json:"factor" yaml:"factor"`
}

// AdmissionGate requires a minimum energy before the cell may be entered.
type AdmissionGate struct {
	At        Coord `json:"at" yaml:"at"`
	MinEnergy int   `json:"min_energy" yaml:"min_energy"`
}

// UniverseConfig is the static map loaded from a JSON or YAML file.
type UniverseConfig struct {
	Name                 string          `json:"name" yaml:"name"`
	Description          string          `json:"description" yaml:"description"`
	Rows                 int             `json:"rows" yaml:"rows"`
	Cols                 int             `json:"cols" yaml:"cols"`
	Origin               Coord           `json:"origin" yaml:"origin"`
	Destination          Coord           `json:"destination" yaml:"destination"`
	InitialEnergy        int             `json:"initial_energy" yaml:"initial_energy"`
	DestinationMinEnergy int             `json:"destination_min_energy,omitempty" yaml:"destination_min_energy,omitempty"`
	Costs                [][]int         `json:"costs" yaml:"costs"`
	BlackHoles           []Coord         `json:"black_holes,omitempty" yaml:"black_holes,omitempty"`
	Stars                []Coord         `json:"stars,omitempty" yaml:"stars,omitempty"`
	Wormholes            []Wormhole      `json:"wormholes,omitempty" yaml:"wormholes,omitempty"`
	RechargeZones        []RechargeZone  `json:"recharge_zones,omitempty" yaml:"recharge_zones,omitempty"`
	AdmissionGates       []AdmissionGate `json:"admission_gates,omitempty" yaml:"admission_gates,omitempty"`
}

// SearchMode selects between stopping at the first solution and collecting all of them.
type SearchMode string

const (
	ModeFirst SearchMode = "first"
	ModeAll   SearchMode = "all"
)

// SearchOptions tune a single resolve run.
type SearchOptions struct {
	Mode          SearchMode `json:"mode" yaml:"mode"`
	MaxPathLength int        `json:"max_path_length" yaml:"max_path_length"`
	ForbidRevisit bool       `json:"forbid_revisit" yaml:"forbid_revisit"`
	// MaxSolutions stops an exhaustive run early once reached. Zero means no cap.
	MaxSolutions int `json:"max_solutions,omitempty" yaml:"max_solutions,omitempty"`
}

// DefaultSearchOptions returns first-solution mode with revisits forbidden and a 200 cell cap.
func DefaultSearchOptions() SearchOptions {
	return SearchOptions{
		Mode:          ModeFirst,
		MaxPathLength: DefaultMaxPathLength,
		ForbidRevisit: true,
	}
}

// Solution is one accepted path with its per-step resource traces.
type Solution struct {
	Path        []Coord `json:"path"`
	EnergyTrace []int   `json:"energy_trace"`
	StarsTrace  []int   `json:"stars_trace"`
}

// SearchStats counts the work done by a resolve run.
type SearchStats struct {
	NodesVisited   int           `json:"nodes_visited"`
	Backtracks     int           `json:"backtracks"`
	GateRejections int           `json:"gate_rejections"`
	BoundHits      int           `json:"bound_hits"`
	Duration       time.Duration `json:"duration_ns"`
}

// SearchResult is returned by Resolve. Found is false when no path satisfies the constraints.
type SearchResult struct {
	Found       bool          `json:"found"`
	Mode        SearchMode    `json:"mode"`
	Options     SearchOptions `json:"options"`
	Solutions   []Solution    `json:"solutions"`
	FinalEnergy int           `json:"final_energy"`
	FinalStars  int           `json:"final_stars"`
	Stats       SearchStats   `json:"stats"`
}

// EventKind labels what happened when the ship entered a cell during playback.
type EventKind string

const (
	EventStart              EventKind = "start"
	EventMove               EventKind = "move"
	EventRecharge           EventKind = "recharge"
	EventStarCollected      EventKind = "star_collected"
	EventBlackHoleDestroyed EventKind = "black_hole_destroyed"
	EventWormhole           EventKind = "wormhole"
	EventGatePassed         EventKind = "gate_passed"
	EventArrived            EventKind = "arrived"
)

// PlaybackFrame is the ship state at one step of a selected solution.
type PlaybackFrame struct {
	SolutionIndex int         `json:"solution_index"`
	SolutionCount int         `json:"solution_count"`
	Step          int         `json:"step"`
	TotalSteps    int         `json:"total_steps"`
	Position      Coord       `json:"position"`
	Energy        int         `json:"energy"`
	Stars         int         `json:"stars"`
	Events        []EventKind `json:"events"`
	Done          bool        `json:"done"`
	VisitedSoFar  []Coord     `json:"visited_so_far,omitempty"`
}

// CellInfo describes the static features of a single cell.
type CellInfo struct {
	At             Coord  `json:"at"`
	Cost           int    `json:"cost"`
	BlackHole      bool   `json:"black_hole"`
	Star           bool   `json:"star"`
	WormholeExit   *Coord `json:"wormhole_exit,omitempty"`
	RechargeFactor int    `json:"recharge_factor,omitempty"`
	MinEnergy      int    `json:"min_energy,omitempty"`
	Gated          bool   `json:"gated"`
	Origin         bool   `json:"origin"`
	Destination    bool   `json:"destination"`
}
