package sim

// Lane is an immutable lateral band of the roadway, bounded by Min/Max with
// a Mid guide line. Lanes are indexed 0..n-1 by increasing lateral offset;
// lane 0 is the outermost, non-overtaking lane.
type Lane struct {
	Min, Mid, Max float64
}

// BuildLanes lays out n lanes starting at RoadOffset.
func BuildLanes(n int) []Lane {
	lanes := make([]Lane, n)
	for i := range lanes {
		lanes[i] = Lane{
			Min: RoadOffset + float64(i)*LaneWidth,
			Mid: RoadOffset + float64(i)*LaneWidth + LaneWidth/2,
			Max: RoadOffset + float64(i+1)*LaneWidth,
		}
	}
	return lanes
}
