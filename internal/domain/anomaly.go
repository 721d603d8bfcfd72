package domain

// SensorKind is a redundantly measured quantity.
type SensorKind int

const (
	SensorSpool SensorKind = iota
	SensorEGT
)

func (k SensorKind) String() string {
	switch k {
	case SensorSpool:
		return "N1"
	case SensorEGT:
		return "EGT"
	default:
		return "unknown"
	}
}

// Side selects the left or right engine channel.
type Side int

const (
	SideLeft Side = iota
	SideRight
)

func (s Side) String() string {
	if s == SideRight {
		return "right"
	}
	return "left"
}

// SensorsPerSide is the redundancy of each measurement channel.
const SensorsPerSide = 2

// SensorBank holds fail flags indexed by side and sensor.
type SensorBank [2][SensorsPerSide]bool

// SideFailed reports whether every sensor on a side has failed.
func (b SensorBank) SideFailed(side Side) bool {
	return b[side][0] && b[side][1]
}

// FailedOnSide counts the failed sensors on a side.
func (b SensorBank) FailedOnSide(side Side) int {
	n := 0
	for _, failed := range b[side] {
		if failed {
			n++
		}
	}
	return n
}

// AllFailed reports whether all four sensors have failed.
func (b SensorBank) AllFailed() bool {
	return b.SideFailed(SideLeft) && b.SideFailed(SideRight)
}

// AnomalyState is the fault and escalation state derived from telemetry and
// operator fault injection.
type AnomalyState struct {
	SpoolFail      SensorBank `json:"spool_fail"`
	EGTFail        SensorBank `json:"egt_fail"`
	FuelSensorFail bool       `json:"fuel_sensor_fail"`

	SpoolOverspeedLevel int  `json:"spool_overspeed_level"` // 0..2
	EGTOvertempLevel    int  `json:"egt_overtemp_level"`    // 0..4
	LowFuel             bool `json:"low_fuel"`
	FuelFlowOverspeed   bool `json:"fuel_flow_overspeed"`
}

// Bank returns the fail flags for a measurement type.
func (a *AnomalyState) Bank(kind SensorKind) *SensorBank {
	if kind == SensorEGT {
		return &a.EGTFail
	}
	return &a.SpoolFail
}

// ResetEscalation clears the escalation ladders after the engine returns to
// Idle. Failed sensors stay failed.
func (a *AnomalyState) ResetEscalation() {
	a.SpoolOverspeedLevel = 0
	a.EGTOvertempLevel = 0
	a.FuelFlowOverspeed = false
}

// Severity is the alert colour class.
type Severity int

const (
	SeverityNormal Severity = iota
	SeverityInfo
	SeverityCaution
	SeverityCritical
)

func (s Severity) String() string {
	switch s {
	case SeverityInfo:
		return "white"
	case SeverityCaution:
		return "amber"
	case SeverityCritical:
		return "red"
	default:
		return "normal"
	}
}

// Color returns the display colour for the severity.
func (s Severity) Color() string {
	switch s {
	case SeverityCaution:
		return "#FFBF00"
	case SeverityCritical:
		return "#FF0000"
	default:
		return "#FFFFFF"
	}
}

// Alert is one emitted alert line.
type Alert struct {
	Time     float64  `json:"time"`
	Severity Severity `json:"severity"`
	Message  string   `json:"message"`
	Line     string   `json:"line"`
}
