package enginesim

import (
	"github.com/ghalamif/enginesim/internal/adapters/console"
	"github.com/ghalamif/enginesim/internal/domain"
)

// Command is an operator request queued for the next tick.
type Command = domain.Command

// CommandKind names an operator request.
type CommandKind = domain.CommandKind

const (
	CmdStart                  = domain.CmdStart
	CmdStop                   = domain.CmdStop
	CmdThrustIncrease         = domain.CmdThrustIncrease
	CmdThrustDecrease         = domain.CmdThrustDecrease
	CmdToggleSensorFail       = domain.CmdToggleSensorFail
	CmdToggleSensorGroup      = domain.CmdToggleSensorGroup
	CmdToggleFuelSensorFail   = domain.CmdToggleFuelSensorFail
	CmdToggleLowFuel          = domain.CmdToggleLowFuel
	CmdForceSpoolOverspeed    = domain.CmdForceSpoolOverspeed
	CmdForceEGTOvertemp       = domain.CmdForceEGTOvertemp
	CmdForceFuelFlowOverspeed = domain.CmdForceFuelFlowOverspeed
)

// ErrUnknownCommand is returned by ParseCommand for unrecognised input.
var ErrUnknownCommand = console.ErrUnknownCommand

// CommandUsage documents the text syntax accepted by ParseCommand.
const CommandUsage = console.Usage

// ParseCommand converts console syntax such as "fail n1 left 2" or
// "overtemp 3" into a Command.
func ParseCommand(line string) (Command, error) {
	return console.ParseCommand(line)
}

func Start() Command          { return Command{Kind: CmdStart} }
func Stop() Command           { return Command{Kind: CmdStop} }
func ThrustIncrease() Command { return Command{Kind: CmdThrustIncrease} }
func ThrustDecrease() Command { return Command{Kind: CmdThrustDecrease} }

// FailSensor toggles one sensor. index is 0 or 1.
func FailSensor(kind SensorKind, side Side, index int) Command {
	return Command{Kind: CmdToggleSensorFail, Sensor: kind, Side: side, Index: index}
}

// FailSensorGroup toggles all four sensors of kind together.
func FailSensorGroup(kind SensorKind) Command {
	return Command{Kind: CmdToggleSensorGroup, Sensor: kind}
}

func FailFuelSensor() Command { return Command{Kind: CmdToggleFuelSensorFail} }
func LowFuel() Command        { return Command{Kind: CmdToggleLowFuel} }

// SpoolOverspeed forces overspeed level 1 (caution) or 2 (critical).
func SpoolOverspeed(level int) Command {
	return Command{Kind: CmdForceSpoolOverspeed, Level: level}
}

// EGTOvertemp forces an overtemp level: 1 and 2 while starting, 3 and 4 once
// stable.
func EGTOvertemp(level int) Command {
	return Command{Kind: CmdForceEGTOvertemp, Level: level}
}

func FuelFlowOverspeed() Command { return Command{Kind: CmdForceFuelFlowOverspeed} }
