package sim

// SafetyEvaluator decides whether a vehicle that is too close to the one
// ahead may merge into the adjacent inner lane instead of braking. It is a
// pure query over current registry state and mutates nothing.
type SafetyEvaluator struct {
	lanes     []Lane
	occupancy *LaneRegistry
}

func NewSafetyEvaluator(lanes []Lane, occupancy *LaneRegistry) *SafetyEvaluator {
	return &SafetyEvaluator{lanes: lanes, occupancy: occupancy}
}

// CanPass reports whether v may overtake into the next inner lane.
func (s *SafetyEvaluator) CanPass(v *Vehicle) bool {
	// Too little road behind to have established a reliable gap estimate.
	if v.Back() < v.SafeDistance() {
		return false
	}
	occ := v.OccupiedLanes(s.lanes)
	if len(occ) == 0 || occ[0] == 0 {
		// No further lane toward the overtaking side.
		return false
	}
	target := occ[0] - 1
	behind, ahead := s.occupancy.NeighborsAround(target, v)
	if behind != nil && v.GapTo(behind) < behind.SafeDistance() {
		return false
	}
	if ahead != nil && ahead.GapTo(v) < v.SafeDistance() {
		return false
	}
	return true
}
