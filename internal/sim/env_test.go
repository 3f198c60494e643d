package sim

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestEnv(t *testing.T, lanes int, seed uint64) *Env {
	t.Helper()
	env, err := NewEnv(Options{Lanes: lanes, Seed: seed})
	require.NoError(t, err)
	env.Reset()
	return env
}

func TestStepReportsCollisionForTrailingVehicle(t *testing.T) {
	env := newTestEnv(t, 4, 1)

	leading := placeVehicle(env.lanes, 1, 200, 0, env.rng)
	trailing := placeVehicle(env.lanes, 1, 200-leading.Length, 0, env.rng)
	env.vehicles = append(env.vehicles, leading, trailing)
	env.occupancy.Enter(1, trailing)
	env.occupancy.Enter(1, leading)

	_, _, _, info := env.Step(nil)

	require.Same(t, trailing, env.Collision())
	assert.Same(t, trailing, info.Collision)
	assert.True(t, trailing.Collided)
	assert.False(t, leading.Collided)
}

func TestLoneVehicleNeverBrakesOrPasses(t *testing.T) {
	env := newTestEnv(t, 4, 1)
	env.trafficRate = 0 // keep the road to ourselves

	v := placeVehicle(env.lanes, 2, 100, 30, env.rng)
	env.vehicles = append(env.vehicles, v)

	target := v.TargetLane
	for i := 0; i < 100; i++ {
		env.Step(nil)
		assert.Equal(t, StateCruising, v.State())
		assert.Equal(t, target, v.TargetLane)
		assert.Equal(t, 30.0, v.Speed)
	}
}

func TestLaneZeroVehicleBrakesNeverPasses(t *testing.T) {
	env := newTestEnv(t, 3, 1)

	leading := placeVehicle(env.lanes, 0, 300, 20, env.rng)
	trailing := placeVehicle(env.lanes, 0, 250, 40, env.rng)
	env.vehicles = append(env.vehicles, leading, trailing)

	env.Step(nil)
	require.True(t, trailing.Braked())
	assert.Less(t, trailing.Speed, 40.0)

	for i := 0; i < 30; i++ {
		env.Step(nil)
		assert.False(t, trailing.Passing())
	}
}

func TestNoSpawnWithoutFreeLane(t *testing.T) {
	env := newTestEnv(t, 3, 123)

	// Slow vehicles parked at the entry boundary claim every spawnable
	// lane as unsafe to share.
	for lane := 1; lane < 3; lane++ {
		env.vehicles = append(env.vehicles, placeVehicle(env.lanes, lane, 0, 10, env.rng))
	}

	for i := 0; i < 10; i++ {
		env.Step(nil)
		assert.Len(t, env.Vehicles(), 2)
	}
}

func TestSpawningFillsEmptyRoad(t *testing.T) {
	env := newTestEnv(t, 4, 123)
	for i := 0; i < 200; i++ {
		env.Step(nil)
	}
	assert.NotEmpty(t, env.Vehicles())
}

func TestLaneZeroNeverReceivesSpawns(t *testing.T) {
	// With a single lane the spawn candidate set is always empty.
	env := newTestEnv(t, 1, 123)
	for i := 0; i < 300; i++ {
		env.Step(nil)
		assert.Empty(t, env.Vehicles())
	}
}

func TestPassingClearsAfterConvergence(t *testing.T) {
	env := newTestEnv(t, 4, 1)
	env.trafficRate = 0

	v := placeVehicle(env.lanes, 2, 400, 30, env.rng)
	env.vehicles = append(env.vehicles, v)
	v.Pass()
	require.True(t, v.Passing())

	converged := false
	for i := 0; i < 2000; i++ {
		env.Step(nil)
		if !v.Passing() {
			converged = true
			break
		}
	}
	require.True(t, converged, "merge never converged")
	assert.InDelta(t, v.TargetLane, v.Pos.Y(), 0.5)
}

func TestRegistryInvariantsHoldEveryTick(t *testing.T) {
	env := newTestEnv(t, 4, 7)

	for i := 0; i < 300 && env.Collision() == nil; i++ {
		env.Step(nil)

		for l := range env.lanes {
			assert.True(t, rosterSorted(env.occupancy.Roster(l)), "lane %d unsorted at tick %d", l, i)
		}
		for _, v := range env.Vehicles() {
			occ := v.OccupiedLanes(env.lanes)
			for l := range env.lanes {
				want := false
				for _, o := range occ {
					if o == l {
						want = true
					}
				}
				assert.Equal(t, want, env.occupancy.Contains(l, v),
					"membership mismatch lane %d tick %d", l, i)
			}
		}
	}
}

func TestEpisodeEndsAtHorizon(t *testing.T) {
	env := newTestEnv(t, 4, 1)

	env.tick = Horizon - 1
	_, _, done, _ := env.Step(nil)
	assert.False(t, done)
	_, reward, doneNow, _ := env.Step(nil)
	assert.True(t, doneNow)
	assert.Equal(t, StepReward, reward)
}

func TestDeterministicGivenSeed(t *testing.T) {
	a := newTestEnv(t, 4, 42)
	b := newTestEnv(t, 4, 42)

	for i := 0; i < 300; i++ {
		a.Step(nil)
		b.Step(nil)
	}

	require.Equal(t, len(a.Vehicles()), len(b.Vehicles()))
	for i := range a.Vehicles() {
		va, vb := a.Vehicles()[i], b.Vehicles()[i]
		assert.Equal(t, va.Pos, vb.Pos)
		assert.Equal(t, va.Speed, vb.Speed)
		assert.Equal(t, va.State(), vb.State())
	}
}

func TestResetClearsWorld(t *testing.T) {
	env := newTestEnv(t, 4, 5)
	for i := 0; i < 100; i++ {
		env.Step(nil)
	}
	firstEpisode := env.Episode()

	obs, info := env.Reset()
	assert.Empty(t, obs)
	assert.NotNil(t, info)
	assert.Zero(t, env.Tick())
	assert.Empty(t, env.Vehicles())
	assert.Equal(t, firstEpisode+1, env.Episode())
	for l := range env.lanes {
		assert.Empty(t, env.occupancy.Roster(l))
	}
}
