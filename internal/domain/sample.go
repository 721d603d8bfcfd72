package domain

// Engine constants shared by the generator, evaluator and log writers.
const (
	RatedRPM     = 40000.0 // spool speed at 100% N1
	MaxFuel      = 20000.0 // lbs
	AmbientTemp  = 20.0    // C
	TimeStep     = 0.005   // seconds per tick
	StopDuration = 10.0    // seconds before a stopping engine is forced to Idle
)

// Phase is the engine operating regime. The numeric values are part of the
// telemetry log format.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseStarting
	PhaseStable
	PhaseStopping
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseStarting:
		return "starting"
	case PhaseStable:
		return "stable"
	case PhaseStopping:
		return "stopping"
	default:
		return "unknown"
	}
}

// Regime selects which EGT threshold ladder applies to a sample.
type Regime int

const (
	RegimeNone Regime = iota
	RegimeStarting
	RegimeStable
)

// Sample is one tick of engine telemetry.
//
// The generator keeps two named samples: the live sample and the baseline.
// The baseline is overwritten when Stable is entered, when Stopping begins,
// by thrust edits and by Overwrite; the live sample is overwritten by the
// baseline on every tick while Stable.
type Sample struct {
	N1Left    float64 `json:"n1_left"`
	N1Right   float64 `json:"n1_right"`
	EGTLeft   float64 `json:"egt_left"`
	EGTRight  float64 `json:"egt_right"`
	FuelLevel float64 `json:"fuel_level"`
	FuelFlow  float64 `json:"fuel_flow"`
	Phase     Phase   `json:"phase"`
	PrevPhase Phase   `json:"prev_phase"`
	Elapsed   float64 `json:"elapsed"`

	// StartOvertemp adds a fixed EGT offset while Starting.
	StartOvertemp bool `json:"start_overtemp"`
}

// NewSample returns the resting engine: cold, full tank, Idle.
func NewSample() Sample {
	return Sample{
		EGTLeft:   AmbientTemp,
		EGTRight:  AmbientTemp,
		FuelLevel: MaxFuel,
		Phase:     PhaseIdle,
		PrevPhase: PhaseIdle,
	}
}

// Regime reports the threshold regime. A stopping engine keeps the regime of
// the phase it was stopped from.
func (s Sample) Regime() Regime {
	switch {
	case s.Phase == PhaseStarting,
		s.Phase == PhaseStopping && s.PrevPhase == PhaseStarting:
		return RegimeStarting
	case s.Phase == PhaseStable,
		s.Phase == PhaseStopping && s.PrevPhase == PhaseStable:
		return RegimeStable
	default:
		return RegimeNone
	}
}

// Snapshot is the read-only view handed to display consumers.
type Snapshot struct {
	Session string       `json:"session"`
	Time    float64      `json:"time"`
	Sample  Sample       `json:"sample"`
	Anomaly AnomalyState `json:"anomaly"`
}
