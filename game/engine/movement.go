package engine

// MaxEnergy caps energy so repeated recharges on long paths saturate instead of overflowing.
const MaxEnergy = 1 << 53

// moveDeltas is the base neighbor order: right, down, left, up.
var moveDeltas = [4]Coord{
	{Row: 0, Col: 1},
	{Row: 1, Col: 0},
	{Row: 0, Col: -1},
	{Row: -1, Col: 0},
}

// orderedNeighbors returns the in-bounds neighbors of from, stably sorted by
// Manhattan distance to the destination.
func orderedNeighbors(g *Grid, from Coord) ([4]Coord, int) {
	var out [4]Coord
	var dist [4]int
	n := 0
	for _, d := range moveDeltas {
		next := Coord{Row: from.Row + d.Row, Col: from.Col + d.Col}
		if !g.InBounds(next) {
			continue
		}
		k := ManhattanDistance(next, g.destination)
		i := n
		for i > 0 && dist[i-1] > k {
			out[i] = out[i-1]
			dist[i] = dist[i-1]
			i--
		}
		out[i] = next
		dist[i] = k
		n++
	}
	return out, n
}

// admissible applies the entry gates against the pre-move state. A live black
// hole replaces the energy threshold with the need to hold a star.
func (s *Solver) admissible(idx int) bool {
	if s.world.has(idx, featureBlackHole) {
		return s.ship.Stars > 0
	}
	if need := s.grid.admission[idx]; need != noFeature {
		return s.ship.Energy >= need
	}
	return true
}

// enter applies the resource effects of moving onto idx and appends it to the path.
// Recharge replaces the cell cost. Stars are collected before a black hole spends one.
func (s *Solver) enter(idx int) {
	if f := s.grid.recharge[idx]; f != noFeature {
		s.ship.Energy = multiplyEnergy(s.ship.Energy, f)
	} else {
		s.ship.Energy -= s.grid.cost[idx]
	}

	if s.world.has(idx, featureStar) {
		s.world.clear(idx, featureStar)
		s.ship.Stars++
	}
	if s.world.has(idx, featureBlackHole) {
		s.world.clear(idx, featureBlackHole)
		s.ship.Stars--
	}

	s.ship.Position = s.grid.coord(idx)
	s.ship.record()
	if s.opts.ForbidRevisit {
		s.world.set(idx, featureVisited)
	}
}

// teleport lands the ship on a wormhole exit. The entrance is an intermediate
// step, so the energy floor applies before the jump. The exit is entered like
// a normal move but its own wormhole never fires.
func (s *Solver) teleport(exit int) bool {
	if s.ship.Energy <= 0 {
		return false
	}
	if s.opts.ForbidRevisit && s.world.has(exit, featureVisited) {
		return false
	}
	if !s.admissible(exit) {
		s.stats.GateRejections++
		return false
	}
	s.enter(exit)
	return true
}

func multiplyEnergy(energy, factor int) int {
	if energy > 0 && energy > MaxEnergy/factor {
		return MaxEnergy
	}
	return energy * factor
}
