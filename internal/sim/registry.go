package sim

import (
	"slices"
	"sort"
)

// LaneRegistry tracks, for every lane, the vehicles occupying it, ordered
// ascending by rear position (rearmost first). Vehicles are referenced, not
// owned; the world stepper reconciles membership after each kinematic
// update. Operations are structural and cannot fail: a duplicate entry or an
// unsorted insert would be a programming error, not a runtime condition.
type LaneRegistry struct {
	rosters [][]*Vehicle
}

func NewLaneRegistry(lanes int) *LaneRegistry {
	return &LaneRegistry{rosters: make([][]*Vehicle, lanes)}
}

// Roster returns the ordered occupants of a lane. Callers must not mutate
// the returned slice.
func (r *LaneRegistry) Roster(lane int) []*Vehicle { return r.rosters[lane] }

// Contains reports whether v is registered in lane.
func (r *LaneRegistry) Contains(lane int, v *Vehicle) bool {
	return slices.Contains(r.rosters[lane], v)
}

// insertionPoint is the index v would take in the lane's order: the first
// occupant v is strictly behind of.
func (r *LaneRegistry) insertionPoint(lane int, v *Vehicle) int {
	roster := r.rosters[lane]
	return sort.Search(len(roster), func(i int) bool { return v.IsBehindOf(roster[i]) })
}

// Enter registers v in lane at its order-preserving position.
func (r *LaneRegistry) Enter(lane int, v *Vehicle) {
	i := r.insertionPoint(lane, v)
	r.rosters[lane] = slices.Insert(r.rosters[lane], i, v)
}

// EnterHead prepends v to each of the given lanes. Only valid for a freshly
// spawned vehicle, which is guaranteed to be the rearmost on the road.
func (r *LaneRegistry) EnterHead(lanes []int, v *Vehicle) {
	for _, l := range lanes {
		r.rosters[l] = slices.Insert(r.rosters[l], 0, v)
	}
}

// Leave removes v from a single lane.
func (r *LaneRegistry) Leave(lane int, v *Vehicle) {
	if i := slices.Index(r.rosters[lane], v); i >= 0 {
		r.rosters[lane] = slices.Delete(r.rosters[lane], i, i+1)
	}
}

// Remove purges v from every lane it was registered in, used when it exits
// the far road boundary.
func (r *LaneRegistry) Remove(v *Vehicle) {
	for l := range r.rosters {
		r.Leave(l, v)
	}
}

// NeighborsAround returns the occupants immediately behind and ahead of the
// position v would take in lane. v does not have to be registered there,
// which is what overtake feasibility checks need.
func (r *LaneRegistry) NeighborsAround(lane int, v *Vehicle) (behind, ahead *Vehicle) {
	roster := r.rosters[lane]
	i := r.insertionPoint(lane, v)
	if i > 0 {
		behind = roster[i-1]
	}
	if i < len(roster) {
		ahead = roster[i]
	}
	return behind, ahead
}
