package engine

// AssignTeam picks the least populated team from the counts snapshot.
// Returns 0 when balancing is disabled or no counts are known. Ties break to
// the lowest team id so the result never depends on map iteration order.
func AssignTeam(counts map[int]int, enabled bool) int {
	if !enabled || len(counts) == 0 {
		return 0
	}
	best := 0
	bestCount := -1
	for id, n := range counts {
		if bestCount == -1 || n < bestCount || (n == bestCount && id < best) {
			best, bestCount = id, n
		}
	}
	return best
}
