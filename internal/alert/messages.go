package alert

import (
	"github.com/ghalamif/enginesim/internal/anomaly"
	"github.com/ghalamif/enginesim/internal/domain"
)

const (
	msgSpoolCritical = "[Red Warning] N1 overspeed level 2: Exceeds 120% N1"
	msgSpoolCaution  = "[Amber Warning] N1 overspeed level 1: Exceeds 105% N1"

	msgEGTStartCritical  = "[Red Warning] EGT overtemp level 2: Exceeds 1000 C during engine start"
	msgEGTStartCaution   = "[Amber Warning] EGT overtemp level 1: Exceeds 850 C during engine start"
	msgEGTStableCritical = "[Red Warning] EGT overtemp level 4: Exceeds 1100 C in stable operation"
	msgEGTStableCaution  = "[Amber Warning] EGT overtemp level 3: Exceeds 950 C in stable operation"

	msgLowFuel           = "[Amber Warning] Fuel level: Below 1000 lbs"
	msgFuelFlowOverspeed = "[Amber Warning] Fuel flow: Exceeds 50 lbs per second"
	msgFuelSensorFail    = "[Red Warning] Fuel system: Sensor failure"
)

type message struct {
	severity domain.Severity
	text     string
}

var egtMessages = map[int]message{
	anomaly.EGTStartCaution:   {domain.SeverityCaution, msgEGTStartCaution},
	anomaly.EGTStartCritical:  {domain.SeverityCritical, msgEGTStartCritical},
	anomaly.EGTStableCaution:  {domain.SeverityCaution, msgEGTStableCaution},
	anomaly.EGTStableCritical: {domain.SeverityCritical, msgEGTStableCritical},
}

// sensorMessage returns the alert for a sensor failure pattern, e.g.
// "[Amber Warning] EGT system: Left engine sensors failed".
func sensorMessage(kind domain.SensorKind, side domain.Side, sev domain.Severity) string {
	system := kind.String() + " system: "
	engine := "Left"
	if side == domain.SideRight {
		engine = "Right"
	}
	switch sev {
	case domain.SeverityCritical:
		return "[Red Warning] " + system + "Critical failure all sensors failed"
	case domain.SeverityCaution:
		return "[Amber Warning] " + system + engine + " engine sensors failed"
	case domain.SeverityInfo:
		return "[White Warning] " + system + engine + " engine single sensor failure"
	default:
		return ""
	}
}
