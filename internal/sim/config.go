package sim

// Geometry scale. A US highway lane is 3.7 metres, here LaneWidth distance
// units, so Scale converts metres to simulation units.
const (
	LaneWidth = 20.0
	Scale     = LaneWidth / 3.7
)

// Sedan footprint (metres, before scaling).
const (
	CarLengthM = 4.8
	CarWidthM  = 1.8
)

// Road layout, in simulation units. RoadOffset is the lateral margin above
// lane 0 (the outermost, non-overtaking lane).
const (
	RoadLength = 80 * LaneWidth
	RoadOffset = 1.5 * LaneWidth
)

// Cruise setpoints (km/h). Inner lanes cruise faster: each lane index costs
// CruiseLaneKPH off the drawn setpoint.
const (
	CruiseMinKPH  = 115
	CruiseMaxKPH  = 129
	CruiseLaneKPH = 10
	KPHToUnits    = 1000.0 / 3600.0 * Scale
)

// Car-following policy.
const (
	// Lateral tracking error quantum; a merge within half a unit of its
	// target snaps to exactly zero error, ending the maneuver.
	LaneQuantum = 0.01

	// Stochastic headway preference: safe distance = speed * N(mean, sigma).
	HeadwayMean  = 1.0
	HeadwaySigma = 0.03

	// Maximum braking deceleration a = g * mu, eq. (1) from
	// http://www.tandfonline.com/doi/pdf/10.1080/16484142.2007.9638118
	Gravity  = 9.81
	Friction = 0.9

	// Braking fraction grows as the gap closes, floored at the minimum.
	MinBrakeFraction = 1.0
	BrakeGain        = 0.005
)

// Episode defaults.
const (
	DefaultLanes       = 4
	DefaultFPS         = 30
	DefaultTrafficRate = 15.0 // peak arrivals per second
	Horizon            = 10000
	StepReward         = -0.001
)

// Display.
const (
	PausePollFPS = 15
	DashLength   = 10.0
	DashGap      = 10.0
	LaneLineW    = 3.0
	MidLineW     = 1.0
)
