package engine

// ManhattanDistance calculates the Manhattan distance between two coordinates
func ManhattanDistance(from, to Coord) int {
	return abs(from.Row-to.Row) + abs(from.Col-to.Col)
}

// abs returns the absolute value of x
func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

// Adjacent reports whether a and b share an edge.
func Adjacent(a, b Coord) bool {
	return ManhattanDistance(a, b) == 1
}

// FeatureCounts summarizes the special cells of a universe.
type FeatureCounts struct {
	BlackHoles     int `json:"black_holes"`
	Stars          int `json:"stars"`
	Wormholes      int `json:"wormholes"`
	RechargeZones  int `json:"recharge_zones"`
	AdmissionGates int `json:"admission_gates"`
	Cells          int `json:"cells"`
	TotalCost      int `json:"total_cost"`
}

// CountFeatures tallies the features and terrain cost of a universe.
func CountFeatures(config *UniverseConfig) FeatureCounts {
	counts := FeatureCounts{
		BlackHoles:     len(config.BlackHoles),
		Stars:          len(config.Stars),
		Wormholes:      len(config.Wormholes),
		RechargeZones:  len(config.RechargeZones),
		AdmissionGates: len(config.AdmissionGates),
		Cells:          config.Rows * config.Cols,
	}
	for _, row := range config.Costs {
		for _, c := range row {
			counts.TotalCost += c
		}
	}
	return counts
}
