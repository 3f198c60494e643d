package sim

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"gonum.org/v1/gonum/stat/distuv"
)

// State is a vehicle's behavioral state. Braking and passing are mutually
// exclusive at any instant; a vehicle stops braking once it starts passing.
type State int

const (
	StateCruising State = iota
	StateBraking
	StatePassing
)

// Vehicle is a single simulated car. The origin sits under the rear axle, so
// the footprint spans [x, x+Length] longitudinally and [y, y+Width]
// laterally. Length and Width never change after construction.
type Vehicle struct {
	Pos         mgl64.Vec2
	Dir         mgl64.Vec2
	Length      float64
	Width       float64
	Speed       float64
	TargetSpeed float64
	TargetLane  float64 // lateral y the vehicle is steering toward

	// Collided is attached by the world stepper when an overlap is
	// detected. It does not change behavior; the display acts on it.
	Collided bool

	state          State
	brakedThisTick bool
	dt             float64
	headway        distuv.Normal
}

// NewVehicle spawns a sedan at the near road boundary on the given lane.
// The cruise setpoint is drawn per vehicle, slower on outer lanes.
func NewVehicle(lanes []Lane, lane int, dt float64, rng *Rand) *Vehicle {
	length := math.Round(CarLengthM * Scale)
	width := math.Round(CarWidthM * Scale)
	cruise := float64(rng.Range(CruiseMinKPH, CruiseMaxKPH)-lane*CruiseLaneKPH) * KPHToUnits
	v := &Vehicle{
		Pos:         mgl64.Vec2{-length, lanes[lane].Mid - width/2},
		Dir:         mgl64.Vec2{1, 0},
		Length:      length,
		Width:       width,
		Speed:       cruise,
		TargetSpeed: cruise,
		dt:          dt,
		headway:     distuv.Normal{Mu: HeadwayMean, Sigma: HeadwaySigma, Src: rng},
	}
	v.TargetLane = v.Pos.Y()
	return v
}

// Advance integrates one tick of kinematics. The direction follows a
// proportional lateral tracking error, quantized so a near-converged merge
// snaps to exactly zero, which ends the maneuver and resets the vehicle to
// its neutral state.
func (v *Vehicle) Advance() {
	v.brakedThisTick = false
	e := LaneQuantum * math.Round(v.TargetLane-v.Pos.Y())
	if e == 0 {
		v.state = StateCruising
	}
	v.Dir = mgl64.Vec2{1, e}.Normalize()
	v.Pos = v.Pos.Add(v.Dir.Mul(v.Speed * v.dt))
}

// OccupiedLanes returns the indices of every lane whose band intersects the
// vehicle's lateral footprint [y, y+Width], in ascending order.
func (v *Vehicle) OccupiedLanes(lanes []Lane) []int {
	occ := make([]int, 0, 2)
	y := v.Pos.Y()
	for i, l := range lanes {
		if (l.Min <= y && y <= l.Max) || (l.Min <= y+v.Width && y+v.Width <= l.Max) {
			occ = append(occ, i)
		}
	}
	return occ
}

// SafeDistance is the stochastic speed-proportional headway. The noise
// factor is drawn fresh on every call, never cached; two calls in the same
// tick may differ.
func (v *Vehicle) SafeDistance() float64 {
	return v.Speed * v.headway.Rand()
}

// Back is the trailing longitudinal edge, Front the leading one.
func (v *Vehicle) Back() float64  { return v.Pos.X() }
func (v *Vehicle) Front() float64 { return v.Pos.X() + v.Length }

// IsAheadOf reports whether v is entirely in front of other.
func (v *Vehicle) IsAheadOf(other *Vehicle) bool { return v.Back() > other.Front() }

// IsBehindOf reports whether v is entirely behind other.
func (v *Vehicle) IsBehindOf(other *Vehicle) bool { return v.Front() < other.Back() }

// GapTo is the distance from v's back to other's front. Zero or negative
// signals overlap.
func (v *Vehicle) GapTo(other *Vehicle) float64 { return v.Back() - other.Front() }

// Brake applies one tick of deceleration, bounded by the maximum braking
// deceleration g*mu scaled by fraction. No-op while passing, and at most
// once per tick no matter how many lane rosters name v as the closing
// vehicle.
func (v *Vehicle) Brake(fraction float64) {
	if v.state == StatePassing || v.brakedThisTick {
		return
	}
	v.Speed -= fraction * Gravity * Friction * Scale * v.dt
	v.state = StateBraking
	v.brakedThisTick = true
}

// Pass starts an overtake: steer one lane width toward the inner lanes.
// Repeated calls while the maneuver is running are no-ops.
func (v *Vehicle) Pass() {
	if v.state == StatePassing {
		return
	}
	v.TargetLane = v.Pos.Y() - LaneWidth
	v.state = StatePassing
}

func (v *Vehicle) State() State  { return v.state }
func (v *Vehicle) Braked() bool  { return v.state == StateBraking }
func (v *Vehicle) Passing() bool { return v.state == StatePassing }
