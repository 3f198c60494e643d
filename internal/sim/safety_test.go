package sim

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newEvaluator(lanes []Lane) (*SafetyEvaluator, *LaneRegistry) {
	reg := NewLaneRegistry(len(lanes))
	return NewSafetyEvaluator(lanes, reg), reg
}

func TestCanPassBarredInLaneZero(t *testing.T) {
	lanes := BuildLanes(4)
	rng := NewRand(1)
	eval, _ := newEvaluator(lanes)

	v := placeVehicle(lanes, 0, 800, 30, rng)
	assert.False(t, eval.CanPass(v))
}

func TestCanPassNeedsRoadBehind(t *testing.T) {
	lanes := BuildLanes(4)
	rng := NewRand(1)
	eval, _ := newEvaluator(lanes)

	// Freshly on the road: rear position is well under the safe distance,
	// so there is no reliable gap estimate yet.
	v := placeVehicle(lanes, 2, 5, 100, rng)
	assert.False(t, eval.CanPass(v))
}

func TestCanPassChecksMergeNeighbors(t *testing.T) {
	lanes := BuildLanes(4)
	rng := NewRand(1)
	eval, reg := newEvaluator(lanes)

	v := placeVehicle(lanes, 1, 500, 30, rng)

	// Empty target lane: merge allowed.
	assert.True(t, eval.CanPass(v))

	// A vehicle close behind the merge point blocks it.
	tail := placeVehicle(lanes, 0, 450, 50, rng)
	reg.Enter(0, tail)
	assert.False(t, eval.CanPass(v))
	reg.Remove(tail)

	// A vehicle close ahead of the merge point blocks it too.
	lead := placeVehicle(lanes, 0, 530, 30, rng)
	reg.Enter(0, lead)
	assert.False(t, eval.CanPass(v))
	reg.Remove(lead)

	// Distant neighbors on both sides: merge allowed.
	farTail := placeVehicle(lanes, 0, 50, 30, rng)
	farLead := placeVehicle(lanes, 0, 1200, 30, rng)
	reg.Enter(0, farTail)
	reg.Enter(0, farLead)
	assert.True(t, eval.CanPass(v))
}

func TestCanPassIsPure(t *testing.T) {
	lanes := BuildLanes(4)
	rng := NewRand(9)
	eval, reg := newEvaluator(lanes)

	v := placeVehicle(lanes, 1, 500, 30, rng)
	tail := placeVehicle(lanes, 0, 430, 40, rng)
	lead := placeVehicle(lanes, 0, 600, 35, rng)
	reg.Enter(0, tail)
	reg.Enter(0, lead)
	reg.Enter(1, v)

	before := map[*Vehicle][4]float64{}
	for _, u := range []*Vehicle{v, tail, lead} {
		before[u] = [4]float64{u.Pos.X(), u.Pos.Y(), u.Speed, u.TargetLane}
	}
	roster0 := append([]*Vehicle(nil), reg.Roster(0)...)
	roster1 := append([]*Vehicle(nil), reg.Roster(1)...)

	for i := 0; i < 10; i++ {
		eval.CanPass(v)
	}

	require.Equal(t, roster0, reg.Roster(0))
	require.Equal(t, roster1, reg.Roster(1))
	for _, u := range []*Vehicle{v, tail, lead} {
		assert.Equal(t, before[u], [4]float64{u.Pos.X(), u.Pos.Y(), u.Speed, u.TargetLane})
		assert.Equal(t, StateCruising, u.State())
	}
}
