package anomaly

import (
	"github.com/ghalamif/enginesim/internal/domain"
)

// FuelFaultOffset is how far a fuel fault moves the simulated tank, in lbs.
const FuelFaultOffset = 19001.0

// Forced sample values used by the dedicated anomaly commands.
const (
	forcedSpoolCaution  = 110.0
	forcedSpoolCritical = 124.0
	restoredSpool       = 100.0

	forcedEGTStartCritical  = 1100.0
	forcedEGTStableCaution  = 1000.0
	forcedEGTStableCritical = 1170.0
	restoredEGTStable       = 720.0

	forcedFuelFlow   = 60.0
	restoredFuelFlow = 40.0
)

// ToggleSensorFail flips one sensor's fail flag. Losing all four sensors of a
// measurement type shuts the engine down. It reports false for an invalid
// sensor address.
func (e *Evaluator) ToggleSensorFail(eng Engine, st *domain.AnomalyState, kind domain.SensorKind, side domain.Side, index int) (Result, bool) {
	if !validSensor(kind, side, index) {
		return Result{State: *st}, false
	}
	bank := st.Bank(kind)
	bank[side][index] = !bank[side][index]
	return e.afterSensorChange(eng, st, kind), true
}

// ToggleSensorGroup fails every sensor of a measurement type, or restores
// them all when they are already failed.
func (e *Evaluator) ToggleSensorGroup(eng Engine, st *domain.AnomalyState, kind domain.SensorKind) (Result, bool) {
	if kind != domain.SensorSpool && kind != domain.SensorEGT {
		return Result{State: *st}, false
	}
	bank := st.Bank(kind)
	failed := !bank.AllFailed()
	for side := range bank {
		for i := range bank[side] {
			bank[side][i] = failed
		}
	}
	return e.afterSensorChange(eng, st, kind), true
}

func (e *Evaluator) afterSensorChange(eng Engine, st *domain.AnomalyState, kind domain.SensorKind) Result {
	res := Result{State: *st}
	if st.Bank(kind).AllFailed() {
		res.requestShutdown(kind.String() + "_sensors_failed")
		eng.Stop()
	}
	return res
}

// ToggleFuelSensorFail flips the fuel-quantity sensor fault and moves the
// simulated fuel level so the reading disagrees with reality.
func (e *Evaluator) ToggleFuelSensorFail(eng Engine, st *domain.AnomalyState) Result {
	st.FuelSensorFail = !st.FuelSensorFail
	e.shiftFuel(eng, st.FuelSensorFail)
	return e.Apply(eng, st)
}

// ToggleLowFuel drains or refills the tank by FuelFaultOffset depending on
// whether low fuel is currently flagged.
func (e *Evaluator) ToggleLowFuel(eng Engine, st *domain.AnomalyState) Result {
	drain := !st.LowFuel
	st.LowFuel = drain
	e.shiftFuel(eng, drain)
	return e.Apply(eng, st)
}

func (e *Evaluator) shiftFuel(eng Engine, drain bool) {
	s := eng.Sample()
	if drain {
		s.FuelLevel -= FuelFaultOffset
	} else {
		s.FuelLevel += FuelFaultOffset
	}
	eng.Overwrite(s)
}

// ForceSpoolOverspeed drives both spools to an overspeed value. Level 1
// toggles between 110% and 100% and holds the engine Stable; level 2 forces
// 124% and the resulting shutdown. Rejected while Idle or Stopping.
func (e *Evaluator) ForceSpoolOverspeed(eng Engine, st *domain.AnomalyState, level int) (Result, bool) {
	s := eng.Sample()
	if s.Phase == domain.PhaseIdle || s.Phase == domain.PhaseStopping {
		return Result{State: *st}, false
	}

	switch level {
	case SpoolCaution:
		n1 := forcedSpoolCaution
		if st.SpoolOverspeedLevel == SpoolCaution {
			n1 = restoredSpool
		}
		s.N1Left, s.N1Right = n1, n1
		s.Phase = domain.PhaseStable
	case SpoolCritical:
		if st.SpoolOverspeedLevel == SpoolCritical {
			return Result{State: *st}, false
		}
		s.N1Left, s.N1Right = forcedSpoolCritical, forcedSpoolCritical
	default:
		return Result{State: *st}, false
	}
	eng.Overwrite(s)
	return e.Apply(eng, st), true
}

// ForceEGTOvertemp forces an EGT overtemp rung. Levels 1-2 are only accepted
// while Starting and levels 3-4 only while Stable.
func (e *Evaluator) ForceEGTOvertemp(eng Engine, st *domain.AnomalyState, level int) (Result, bool) {
	s := eng.Sample()
	reject := Result{State: *st}

	switch level {
	case EGTStartCaution:
		if s.Phase != domain.PhaseStarting {
			return reject, false
		}
		s.StartOvertemp = !s.StartOvertemp
		if s.StartOvertemp {
			s.EGTLeft += startOvertempOffset
			s.EGTRight += startOvertempOffset
		} else {
			s.EGTLeft = max(s.EGTLeft-startOvertempOffset, domain.AmbientTemp)
			s.EGTRight = max(s.EGTRight-startOvertempOffset, domain.AmbientTemp)
		}
	case EGTStartCritical:
		if s.Phase != domain.PhaseStarting || st.EGTOvertempLevel == EGTStartCritical {
			return reject, false
		}
		s.EGTLeft, s.EGTRight = forcedEGTStartCritical, forcedEGTStartCritical
	case EGTStableCaution:
		if s.Phase != domain.PhaseStable {
			return reject, false
		}
		egt := forcedEGTStableCaution
		if st.EGTOvertempLevel == EGTStableCaution {
			egt = restoredEGTStable
		}
		s.EGTLeft, s.EGTRight = egt, egt
	case EGTStableCritical:
		if s.Phase != domain.PhaseStable || st.EGTOvertempLevel == EGTStableCritical {
			return reject, false
		}
		s.EGTLeft, s.EGTRight = forcedEGTStableCritical, forcedEGTStableCritical
	default:
		return reject, false
	}
	eng.Overwrite(s)
	return e.Apply(eng, st), true
}

// ForceFuelFlowOverspeed toggles fuel flow between 60 and 40 lbs. Stable only.
func (e *Evaluator) ForceFuelFlowOverspeed(eng Engine, st *domain.AnomalyState) (Result, bool) {
	s := eng.Sample()
	if s.Phase != domain.PhaseStable {
		return Result{State: *st}, false
	}
	if st.FuelFlowOverspeed {
		s.FuelFlow = restoredFuelFlow
	} else {
		s.FuelFlow = forcedFuelFlow
	}
	eng.Overwrite(s)
	return e.Apply(eng, st), true
}

// startOvertempOffset mirrors the generator's start-overtemp EGT offset.
const startOvertempOffset = 840.0

func validSensor(kind domain.SensorKind, side domain.Side, index int) bool {
	if kind != domain.SensorSpool && kind != domain.SensorEGT {
		return false
	}
	if side != domain.SideLeft && side != domain.SideRight {
		return false
	}
	return index >= 0 && index < domain.SensorsPerSide
}
