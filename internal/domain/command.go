package domain

// CommandKind enumerates the operator command surface.
type CommandKind int

const (
	CmdStart CommandKind = iota
	CmdStop
	CmdThrustIncrease
	CmdThrustDecrease
	CmdToggleSensorFail
	CmdToggleSensorGroup
	CmdToggleFuelSensorFail
	CmdToggleLowFuel
	CmdForceSpoolOverspeed
	CmdForceEGTOvertemp
	CmdForceFuelFlowOverspeed
)

var commandNames = map[CommandKind]string{
	CmdStart:                  "start",
	CmdStop:                   "stop",
	CmdThrustIncrease:         "thrust_increase",
	CmdThrustDecrease:         "thrust_decrease",
	CmdToggleSensorFail:       "toggle_sensor_fail",
	CmdToggleSensorGroup:      "toggle_sensor_group",
	CmdToggleFuelSensorFail:   "toggle_fuel_sensor_fail",
	CmdToggleLowFuel:          "toggle_low_fuel",
	CmdForceSpoolOverspeed:    "force_spool_overspeed",
	CmdForceEGTOvertemp:       "force_egt_overtemp",
	CmdForceFuelFlowOverspeed: "force_fuel_flow_overspeed",
}

func (k CommandKind) String() string {
	if name, ok := commandNames[k]; ok {
		return name
	}
	return "unknown"
}

// Command is an operator request. Sensor, Side and Index address a sensor for
// the fail toggles; Level selects the forced anomaly rung.
type Command struct {
	Kind   CommandKind
	Sensor SensorKind
	Side   Side
	Index  int
	Level  int
}
