package generator

import (
	"math"

	"github.com/ghalamif/enginesim/internal/domain"
)

const (
	linearStartEnd = 2.0   // seconds of linear spool-up before the log curve
	startOvertemp  = 840.0 // EGT offset while the start-overtemp fault is active
	startedN1      = 95.0  // both spools at or above this: Starting -> Stable
	idleN1         = 0.1   // spool considered stopped
	coldMargin     = 0.5   // EGT considered back at ambient
	decayBase      = 0.05
	spoolDecayRate = 15.0
	egtDecayRate   = 150.0
)

// phaseSteps holds the per-phase update for the live sample.
var phaseSteps = [...]func(*Generator){
	domain.PhaseIdle:     stepIdle,
	domain.PhaseStarting: stepStarting,
	domain.PhaseStable:   stepStable,
	domain.PhaseStopping: stepStopping,
}

func stepIdle(*Generator) {}

func stepStarting(g *Generator) {
	s := &g.live
	n1, egt, flow := startCurve(s.Elapsed)
	s.N1Left, s.N1Right = n1, n1
	s.EGTLeft, s.EGTRight = egt, egt
	s.FuelFlow = flow
	if s.StartOvertemp {
		s.EGTLeft += startOvertemp
		s.EGTRight += startOvertemp
	}
}

// startCurve returns spool speed, EGT and fuel flow t seconds into a start.
func startCurve(t float64) (n1, egt, flow float64) {
	if t < linearStartEnd {
		return 10000.0 * t * 100.0 / domain.RatedRPM, domain.AmbientTemp, 5.0 * t
	}
	l := math.Log10(t - 1.0)
	n1 = 23000.0*l*100.0/domain.RatedRPM + 50.0
	egt = 900.0*l + domain.AmbientTemp
	flow = 42.0*l + 10.0
	return n1, egt, flow
}

func stepStable(g *Generator) {
	g.live = g.baseline
}

func stepStopping(g *Generator) {
	st := g.stopTime()
	b := g.baseline
	g.live.N1Left = decaySpool(b.N1Left, st)
	g.live.N1Right = decaySpool(b.N1Right, st)
	g.live.EGTLeft = decayEGT(b.EGTLeft, st)
	g.live.EGTRight = decayEGT(b.EGTRight, st)
}

// decaySpool decays a spool speed from its value at shutdown toward zero.
// The curve crosses zero and keeps falling; display clamping hides that.
func decaySpool(base, st float64) float64 {
	if base <= 0 {
		return 0
	}
	return base * logDecay(spoolDecayRate*st/base)
}

// decayEGT decays an EGT from its value at shutdown toward ambient.
func decayEGT(base, st float64) float64 {
	if base <= 0 {
		return domain.AmbientTemp
	}
	return (base-domain.AmbientTemp)*logDecay(egtDecayRate*st/base) + domain.AmbientTemp
}

// logDecay is log base 0.05 of (0.05 + x): 1 at x=0, 0 at x=0.95.
func logDecay(x float64) float64 {
	return math.Log10(decayBase+x) / math.Log10(decayBase)
}
