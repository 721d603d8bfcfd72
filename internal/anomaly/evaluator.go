// Package anomaly escalates raw engine telemetry into discrete anomaly levels
// and applies operator fault injection.
//
// The evaluator holds no mutable state of its own: the caller passes the
// previous AnomalyState in and stores the returned one, so a single owner
// (the simulation loop) serializes automatic and manual writes.
package anomaly

import (
	"github.com/ghalamif/enginesim/internal/domain"
)

// Escalation levels. Levels 1-2 belong to the starting EGT ladder and 3-4 to
// the stable ladder; the two are never mixed.
const (
	LevelClear = 0

	SpoolCaution  = 1
	SpoolCritical = 2

	EGTStartCaution   = 1
	EGTStartCritical  = 2
	EGTStableCaution  = 3
	EGTStableCritical = 4
)

// Engine is the part of the generator the evaluator drives.
type Engine interface {
	Sample() domain.Sample
	Overwrite(domain.Sample)
	Stop() bool
}

// Thresholds are the entry/exit boundaries of each ladder. Entry and exit
// share one boundary per level; there is no deadband.
type Thresholds struct {
	SpoolCaution  float64
	SpoolCritical float64

	EGTStartCaution   float64
	EGTStartCritical  float64
	EGTStableCaution  float64
	EGTStableCritical float64

	FuelFlowLimit float64
	LowFuelLevel  float64
}

func DefaultThresholds() Thresholds {
	return Thresholds{
		SpoolCaution:      105,
		SpoolCritical:     120,
		EGTStartCaution:   850,
		EGTStartCritical:  1000,
		EGTStableCaution:  950,
		EGTStableCritical: 1100,
		FuelFlowLimit:     50,
		LowFuelLevel:      1000,
	}
}

// Result is the outcome of one evaluation.
type Result struct {
	State    domain.AnomalyState
	Shutdown bool
	Reasons  []string
}

func (r *Result) requestShutdown(reason string) {
	r.Shutdown = true
	r.Reasons = append(r.Reasons, reason)
}

type Evaluator struct {
	th Thresholds
}

func New(th Thresholds) *Evaluator {
	return &Evaluator{th: th}
}

// Evaluate recomputes the escalation ladders and fuel flags for a sample.
// A shutdown is requested only on the transition into a critical level.
func (e *Evaluator) Evaluate(s domain.Sample, prev domain.AnomalyState) Result {
	res := Result{State: prev}
	next := &res.State

	if lvl := e.spoolLevel(s); lvl != prev.SpoolOverspeedLevel {
		next.SpoolOverspeedLevel = lvl
		if lvl == SpoolCritical {
			res.requestShutdown("spool_overspeed")
		}
	}

	if lvl, ok := e.egtLevel(s); ok && lvl != prev.EGTOvertempLevel {
		next.EGTOvertempLevel = lvl
		if lvl == EGTStartCritical || lvl == EGTStableCritical {
			res.requestShutdown("egt_overtemp")
		}
	}

	next.FuelFlowOverspeed = s.FuelFlow > e.th.FuelFlowLimit
	next.LowFuel = s.FuelLevel < e.th.LowFuelLevel
	return res
}

// Apply evaluates the engine's current sample, stores the new state and stops
// the engine when a critical level was entered.
func (e *Evaluator) Apply(eng Engine, st *domain.AnomalyState) Result {
	res := e.Evaluate(eng.Sample(), *st)
	*st = res.State
	if res.Shutdown {
		eng.Stop()
	}
	return res
}

func (e *Evaluator) spoolLevel(s domain.Sample) int {
	switch {
	case s.N1Left > e.th.SpoolCritical || s.N1Right > e.th.SpoolCritical:
		return SpoolCritical
	case s.N1Left > e.th.SpoolCaution || s.N1Right > e.th.SpoolCaution:
		return SpoolCaution
	default:
		return LevelClear
	}
}

// egtLevel returns the EGT level for the sample's regime; ok is false when no
// regime applies and the previous level stands.
func (e *Evaluator) egtLevel(s domain.Sample) (int, bool) {
	var caution, critical float64
	var cautionLvl, criticalLvl int
	switch s.Regime() {
	case domain.RegimeStarting:
		caution, critical = e.th.EGTStartCaution, e.th.EGTStartCritical
		cautionLvl, criticalLvl = EGTStartCaution, EGTStartCritical
	case domain.RegimeStable:
		caution, critical = e.th.EGTStableCaution, e.th.EGTStableCritical
		cautionLvl, criticalLvl = EGTStableCaution, EGTStableCritical
	default:
		return 0, false
	}

	switch {
	case s.EGTLeft > critical || s.EGTRight > critical:
		return criticalLvl, true
	case s.EGTLeft > caution || s.EGTRight > caution:
		return cautionLvl, true
	default:
		return LevelClear, true
	}
}

// SensorSeverity classifies the failed-sensor pattern of one measurement side.
func SensorSeverity(st domain.AnomalyState, kind domain.SensorKind, side domain.Side) domain.Severity {
	bank := st.Bank(kind)
	switch {
	case bank.AllFailed():
		return domain.SeverityCritical
	case bank.SideFailed(side):
		return domain.SeverityCaution
	case bank.FailedOnSide(side) == 1:
		return domain.SeverityInfo
	default:
		return domain.SeverityNormal
	}
}
