package engine

const noFeature = -1

// Feature bits stored per cell. The static grid seeds the world arena with
// featureStar and featureBlackHole; the search flips them as features are consumed.
const (
	featureStar uint8 = 1 << iota
	featureBlackHole
	featureWormholeUsed
	featureVisited
)

// Grid is the immutable map a search runs against. Cells are addressed by a
// dense row-major index so feature lookups are slice reads.
type Grid struct {
	rows, cols    int
	origin        Coord
	destination   Coord
	initialEnergy int
	destMinEnergy int

	cost      []int
	features  []uint8
	wormhole  []int
	recharge  []int
	admission []int

	blackHoles int
	stars      int
	wormholes  int
}

// NewGrid validates the universe and builds its read-only grid.
func NewGrid(config *UniverseConfig) (*Grid, error) {
	if err := ValidateUniverseConfig(config); err != nil {
		return nil, err
	}

	n := config.Rows * config.Cols
	g := &Grid{
		rows:          config.Rows,
		cols:          config.Cols,
		origin:        config.Origin,
		destination:   config.Destination,
		initialEnergy: config.InitialEnergy,
		destMinEnergy: config.DestinationMinEnergy,
		cost:          make([]int, n),
		features:      make([]uint8, n),
		wormhole:      make([]int, n),
		recharge:      make([]int, n),
		admission:     make([]int, n),
	}

	for i := 0; i < n; i++ {
		g.wormhole[i] = noFeature
		g.recharge[i] = noFeature
		g.admission[i] = noFeature
	}
	for r, row := range config.Costs {
		for c, cost := range row {
			g.cost[r*g.cols+c] = cost
		}
	}
	for _, at := range config.BlackHoles {
		idx := g.index(at)
		if g.features[idx]&featureBlackHole == 0 {
			g.blackHoles++
		}
		g.features[idx] |= featureBlackHole
	}
	for _, at := range config.Stars {
		idx := g.index(at)
		if g.features[idx]&featureStar == 0 {
			g.stars++
		}
		g.features[idx] |= featureStar
	}
	for _, w := range config.Wormholes {
		g.wormhole[g.index(w.Entrance)] = g.index(w.Exit)
		g.wormholes++
	}
	for _, z := range config.RechargeZones {
		g.recharge[g.index(z.At)] = z.Factor
	}
	for _, gate := range config.AdmissionGates {
		g.admission[g.index(gate.At)] = gate.MinEnergy
	}

	return g, nil
}

func (g *Grid) index(c Coord) int {
	return c.Row*g.cols + c.Col
}

func (g *Grid) coord(idx int) Coord {
	return Coord{Row: idx / g.cols, Col: idx % g.cols}
}

func (g *Grid) Rows() int                 { return g.rows }
func (g *Grid) Cols() int                 { return g.cols }
func (g *Grid) Origin() Coord             { return g.origin }
func (g *Grid) Destination() Coord        { return g.destination }
func (g *Grid) InitialEnergy() int        { return g.initialEnergy }
func (g *Grid) DestinationMinEnergy() int { return g.destMinEnergy }
func (g *Grid) BlackHoleCount() int       { return g.blackHoles }
func (g *Grid) StarCount() int            { return g.stars }
func (g *Grid) WormholeCount() int        { return g.wormholes }

// InBounds reports whether c lies inside the grid.
func (g *Grid) InBounds(c Coord) bool {
	return c.Row >= 0 && c.Row < g.rows && c.Col >= 0 && c.Col < g.cols
}

// Cost returns the static energy cost of entering c on a normal move.
func (g *Grid) Cost(c Coord) int {
	return g.cost[g.index(c)]
}

func (g *Grid) IsBlackHole(c Coord) bool {
	return g.features[g.index(c)]&featureBlackHole != 0
}

func (g *Grid) IsStar(c Coord) bool {
	return g.features[g.index(c)]&featureStar != 0
}

// WormholeExit returns the paired exit when c is a wormhole entrance.
func (g *Grid) WormholeExit(c Coord) (Coord, bool) {
	exit := g.wormhole[g.index(c)]
	if exit == noFeature {
		return Coord{}, false
	}
	return g.coord(exit), true
}

// RechargeFactor returns the energy multiplier when c is a recharge zone.
func (g *Grid) RechargeFactor(c Coord) (int, bool) {
	f := g.recharge[g.index(c)]
	return f, f != noFeature
}

// AdmissionRequirement returns the minimum entry energy when c is gated.
func (g *Grid) AdmissionRequirement(c Coord) (int, bool) {
	m := g.admission[g.index(c)]
	return m, m != noFeature
}

// Describe collects every static feature of c.
func (g *Grid) Describe(c Coord) (CellInfo, error) {
	if !g.InBounds(c) {
		return CellInfo{}, ErrOutOfBounds
	}
	info := CellInfo{
		At:          c,
		Cost:        g.Cost(c),
		BlackHole:   g.IsBlackHole(c),
		Star:        g.IsStar(c),
		Origin:      c == g.origin,
		Destination: c == g.destination,
	}
	if exit, ok := g.WormholeExit(c); ok {
		info.WormholeExit = &exit
	}
	if f, ok := g.RechargeFactor(c); ok {
		info.RechargeFactor = f
	}
	if m, ok := g.AdmissionRequirement(c); ok {
		info.MinEnergy = m
		info.Gated = true
	}
	return info, nil
}
