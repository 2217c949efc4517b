package engine

// ShipState holds the mutable resources of the branch currently being explored.
type ShipState struct {
	Energy      int
	Stars       int
	Position    Coord
	Path        []Coord
	EnergyTrace []int
	StarsTrace  []int
}

// WorldState is the mutable overlay of one-shot features. Each cell owns one
// byte of feature bits so a move touches at most two bytes.
type WorldState struct {
	grid  *Grid
	flags []uint8
}

func newShipState(g *Grid, maxPath int) *ShipState {
	capHint := maxPath
	if capHint > 1024 {
		capHint = 1024
	}
	s := &ShipState{
		Energy:      g.initialEnergy,
		Position:    g.origin,
		Path:        make([]Coord, 0, capHint),
		EnergyTrace: make([]int, 0, capHint),
		StarsTrace:  make([]int, 0, capHint),
	}
	s.record()
	return s
}

func (s *ShipState) record() {
	s.Path = append(s.Path, s.Position)
	s.EnergyTrace = append(s.EnergyTrace, s.Energy)
	s.StarsTrace = append(s.StarsTrace, s.Stars)
}

func (s *ShipState) clone() ShipState {
	return ShipState{
		Energy:      s.Energy,
		Stars:       s.Stars,
		Position:    s.Position,
		Path:        append([]Coord(nil), s.Path...),
		EnergyTrace: append([]int(nil), s.EnergyTrace...),
		StarsTrace:  append([]int(nil), s.StarsTrace...),
	}
}

func newWorldState(g *Grid) *WorldState {
	w := &WorldState{
		grid:  g,
		flags: make([]uint8, len(g.features)),
	}
	copy(w.flags, g.features)
	return w
}

func (w *WorldState) has(idx int, bit uint8) bool {
	return w.flags[idx]&bit != 0
}

func (w *WorldState) set(idx int, bit uint8) {
	w.flags[idx] |= bit
}

func (w *WorldState) clear(idx int, bit uint8) {
	w.flags[idx] &^= bit
}

// RemainingStars lists stars not yet collected, in row-major order.
func (w *WorldState) RemainingStars() []Coord {
	return w.collect(func(f uint8) bool { return f&featureStar != 0 })
}

// RemainingBlackHoles lists black holes not yet destroyed, in row-major order.
func (w *WorldState) RemainingBlackHoles() []Coord {
	return w.collect(func(f uint8) bool { return f&featureBlackHole != 0 })
}

// UsedWormholes lists entrances that already teleported on the current path.
func (w *WorldState) UsedWormholes() []Coord {
	return w.collect(func(f uint8) bool { return f&featureWormholeUsed != 0 })
}

func (w *WorldState) collect(match func(uint8) bool) []Coord {
	var out []Coord
	for idx, f := range w.flags {
		if match(f) {
			out = append(out, w.grid.coord(idx))
		}
	}
	return out
}

// snapshot captures everything a single move may change. A teleport touches
// two cells, the entrance and the exit; exitCell is noFeature otherwise.
type snapshot struct {
	energy    int
	stars     int
	position  Coord
	pathLen   int
	cell      int
	cellFlags uint8
	exitCell  int
	exitFlags uint8
}

func takeSnapshot(s *ShipState, w *WorldState, cell, exit int) snapshot {
	snap := snapshot{
		energy:    s.Energy,
		stars:     s.Stars,
		position:  s.Position,
		pathLen:   len(s.Path),
		cell:      cell,
		cellFlags: w.flags[cell],
		exitCell:  noFeature,
	}
	if exit != noFeature {
		snap.exitCell = exit
		snap.exitFlags = w.flags[exit]
	}
	return snap
}

func restoreSnapshot(s *ShipState, w *WorldState, snap snapshot) {
	s.Energy = snap.energy
	s.Stars = snap.stars
	s.Position = snap.position
	s.Path = s.Path[:snap.pathLen]
	s.EnergyTrace = s.EnergyTrace[:snap.pathLen]
	s.StarsTrace = s.StarsTrace[:snap.pathLen]

	w.flags[snap.cell] = snap.cellFlags
	if snap.exitCell != noFeature {
		w.flags[snap.exitCell] = snap.exitFlags
	}
}
