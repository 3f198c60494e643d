package sim

import (
	"fmt"
	"math"
	"slices"

	"go.uber.org/zap"
)

// Observation is the agent-facing payload returned by Reset and Step. Its
// content is owned by the external agent wiring and is empty for now.
type Observation []float64

// StepInfo carries the auxiliary objects of a step: the first colliding
// vehicle this tick (nil if none) and the live vehicle list.
type StepInfo struct {
	Collision *Vehicle
	Vehicles  []*Vehicle
}

// Options configures a simulation environment. Zero values fall back to the
// package defaults.
type Options struct {
	Lanes       int
	FPS         int     // ticks per second; dt = 1/FPS
	TrafficRate float64 // peak arrivals per second
	Seed        uint64
	Display     bool
	Logger      *zap.Logger
}

// Env is the world stepper. It owns the vehicle list, the lane registry and
// the RNG, and advances the whole world one tick per Step call. All state is
// mutated only from within Step/Reset; the display only reads it, strictly
// sequenced after a tick completes.
type Env struct {
	lanes     []Lane
	vehicles  []*Vehicle
	occupancy *LaneRegistry
	safety    *SafetyEvaluator
	rng       *Rand

	dt          float64
	trafficRate float64
	tick        int
	episode     int
	collision   *Vehicle

	display *Display
	log     *zap.Logger
}

func NewEnv(opt Options) (*Env, error) {
	if opt.Lanes <= 0 {
		opt.Lanes = DefaultLanes
	}
	if opt.FPS <= 0 {
		opt.FPS = DefaultFPS
	}
	if opt.TrafficRate <= 0 {
		opt.TrafficRate = DefaultTrafficRate
	}
	if opt.Logger == nil {
		opt.Logger = zap.NewNop()
	}

	e := &Env{
		lanes:       BuildLanes(opt.Lanes),
		occupancy:   NewLaneRegistry(opt.Lanes),
		rng:         NewRand(opt.Seed),
		dt:          1.0 / float64(opt.FPS),
		trafficRate: opt.TrafficRate,
		log:         opt.Logger,
	}
	e.safety = NewSafetyEvaluator(e.lanes, e.occupancy)
	if opt.Display {
		d, err := NewDisplay(opt.Lanes, opt.FPS)
		if err != nil {
			return nil, fmt.Errorf("display: %w", err)
		}
		e.display = d
	}
	return e, nil
}

func (e *Env) Lanes() []Lane        { return e.lanes }
func (e *Env) Vehicles() []*Vehicle { return e.vehicles }
func (e *Env) Tick() int            { return e.tick }
func (e *Env) Episode() int         { return e.episode }
func (e *Env) Collision() *Vehicle  { return e.collision }
func (e *Env) Dt() float64          { return e.dt }

// Reset clears the world and begins a new episode.
func (e *Env) Reset() (Observation, *StepInfo) {
	e.tick = 0
	e.vehicles = e.vehicles[:0]
	e.occupancy = NewLaneRegistry(len(e.lanes))
	e.safety = NewSafetyEvaluator(e.lanes, e.occupancy)
	e.collision = nil
	e.episode++
	e.log.Info("episode start", zap.Int("episode", e.episode))
	return Observation{}, &StepInfo{}
}

// Step advances the world one tick: kinematics, registry reconciliation,
// boundary culling, probabilistic spawning, then the per-lane gap
// evaluation. The action is accepted for the environment contract but no
// vehicle is agent-controlled yet.
func (e *Env) Step(action any) (Observation, float64, bool, *StepInfo) {
	_ = action

	e.collision = nil

	// Lane 0 is reserved as the non-overtaking destination lane and never
	// receives spawns; the rest start out free.
	free := make([]bool, len(e.lanes))
	for l := 1; l < len(e.lanes); l++ {
		free[l] = true
	}

	live := e.vehicles[:0]
	for _, v := range e.vehicles {
		v.Advance()
		occ := v.OccupiedLanes(e.lanes)
		for l := range e.lanes {
			in := slices.Contains(occ, l)
			switch {
			case in && !e.occupancy.Contains(l, v):
				e.occupancy.Enter(l, v)
			case !in && e.occupancy.Contains(l, v):
				e.occupancy.Leave(l, v)
			}
		}
		if v.Back() > RoadLength {
			e.occupancy.Remove(v)
			continue
		}
		live = append(live, v)
		// A lane is only free while no vehicle near the entry boundary
		// claims it as unsafe to share.
		if v.Back() < v.SafeDistance() {
			for _, l := range occ {
				free[l] = false
			}
		}
	}
	e.vehicles = live

	// Time-varying arrival intensity: the target rate modulated by a
	// sinusoid of elapsed time, so traffic comes in waves instead of a
	// stationary Poisson stream.
	intensity := e.trafficRate * math.Sin(2*math.Pi*float64(e.tick)*e.dt) * e.dt
	if e.rng.Float64() < intensity {
		candidates := make([]int, 0, len(e.lanes))
		for l, ok := range free {
			if ok {
				candidates = append(candidates, l)
			}
		}
		if len(candidates) > 0 {
			lane := candidates[e.rng.Intn(len(candidates))]
			v := NewVehicle(e.lanes, lane, e.dt, e.rng)
			e.vehicles = append(e.vehicles, v)
			e.occupancy.EnterHead(v.OccupiedLanes(e.lanes), v)
			e.log.Debug("spawn",
				zap.Int("lane", lane),
				zap.Int("vehicles", len(e.vehicles)))
		}
	}

	// Consecutive-pair gaps per lane, rearmost first. A closing vehicle
	// overtakes when the inner lane is safe, otherwise brakes harder the
	// smaller the gap; overlap is a collision.
	for l := range e.lanes {
		roster := e.occupancy.Roster(l)
		for i := 0; i+1 < len(roster); i++ {
			v := roster[i]
			gap := roster[i+1].GapTo(v)
			safe := v.SafeDistance()
			if gap > 0 && gap < safe {
				if e.safety.CanPass(v) {
					v.Pass()
				} else {
					v.Brake(math.Max(MinBrakeFraction, BrakeGain*safe/gap))
				}
			}
			if gap <= 0 {
				v.Collided = true
				if e.collision == nil {
					e.collision = v
					e.log.Warn("collision",
						zap.Int("lane", l),
						zap.Float64("x", v.Back()))
				}
			}
		}
	}

	reward := StepReward
	done := e.tick >= Horizon
	if done {
		e.log.Info("episode end",
			zap.Int("episode", e.episode),
			zap.Float64("reward", reward),
			zap.Int("tick", e.tick))
	}
	e.tick++

	return Observation{}, reward, done, &StepInfo{Collision: e.collision, Vehicles: e.vehicles}
}

// Render draws the current world via the display collaborator, if one is
// attached. It never mutates simulation state, may block briefly for frame
// pacing or pause, and returns ErrClosed once a window close was requested.
func (e *Env) Render(mode string) error {
	_ = mode // only "human" rendering exists
	if e.display == nil {
		return nil
	}
	return e.display.Frame(e)
}

// Close releases display resources, if any.
func (e *Env) Close() {
	if e.display != nil {
		e.display.Destroy()
		e.display = nil
	}
}
