package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/ghalamif/enginesim/internal/domain"
)

// ErrUnknownCommand is returned for input that names no operator command.
var ErrUnknownCommand = errors.New("unknown command")

// Usage lists the accepted command syntax.
const Usage = `commands:
  start | stop | thrust+ | thrust-
  fail n1|egt left|right 1|2   toggle one sensor
  fail n1|egt all              toggle all four sensors
  fail fuel                    toggle the fuel sensor fault
  lowfuel                      toggle the low fuel fault
  overspeed 1|2                force a spool overspeed
  overtemp 1|2|3|4             force an EGT overtemp
  fuelflow                     force a fuel flow overspeed`

// ParseCommand converts one line of operator input into a Command.
func ParseCommand(line string) (domain.Command, error) {
	f := strings.Fields(strings.ToLower(line))
	if len(f) == 0 {
		return domain.Command{}, fmt.Errorf("%w: empty input", ErrUnknownCommand)
	}

	switch {
	case len(f) == 1 && f[0] == "start":
		return domain.Command{Kind: domain.CmdStart}, nil
	case len(f) == 1 && f[0] == "stop":
		return domain.Command{Kind: domain.CmdStop}, nil
	case len(f) == 1 && f[0] == "thrust+":
		return domain.Command{Kind: domain.CmdThrustIncrease}, nil
	case len(f) == 1 && f[0] == "thrust-":
		return domain.Command{Kind: domain.CmdThrustDecrease}, nil
	case len(f) == 1 && f[0] == "lowfuel":
		return domain.Command{Kind: domain.CmdToggleLowFuel}, nil
	case len(f) == 1 && f[0] == "fuelflow":
		return domain.Command{Kind: domain.CmdForceFuelFlowOverspeed}, nil
	case len(f) == 2 && f[0] == "overspeed":
		lvl, err := level(f[1], 2)
		if err != nil {
			return domain.Command{}, err
		}
		return domain.Command{Kind: domain.CmdForceSpoolOverspeed, Level: lvl}, nil
	case len(f) == 2 && f[0] == "overtemp":
		lvl, err := level(f[1], 4)
		if err != nil {
			return domain.Command{}, err
		}
		return domain.Command{Kind: domain.CmdForceEGTOvertemp, Level: lvl}, nil
	case f[0] == "fail":
		return parseFail(f[1:])
	}
	return domain.Command{}, fmt.Errorf("%w: %q", ErrUnknownCommand, line)
}

func parseFail(args []string) (domain.Command, error) {
	if len(args) == 1 && args[0] == "fuel" {
		return domain.Command{Kind: domain.CmdToggleFuelSensorFail}, nil
	}
	if len(args) < 2 {
		return domain.Command{}, fmt.Errorf("%w: fail needs a sensor and a side", ErrUnknownCommand)
	}

	var kind domain.SensorKind
	switch args[0] {
	case "n1":
		kind = domain.SensorSpool
	case "egt":
		kind = domain.SensorEGT
	default:
		return domain.Command{}, fmt.Errorf("%w: unknown sensor %q", ErrUnknownCommand, args[0])
	}

	if len(args) == 2 && args[1] == "all" {
		return domain.Command{Kind: domain.CmdToggleSensorGroup, Sensor: kind}, nil
	}
	if len(args) != 3 {
		return domain.Command{}, fmt.Errorf("%w: fail %s needs a side and a sensor number", ErrUnknownCommand, args[0])
	}

	var side domain.Side
	switch args[1] {
	case "left":
		side = domain.SideLeft
	case "right":
		side = domain.SideRight
	default:
		return domain.Command{}, fmt.Errorf("%w: unknown side %q", ErrUnknownCommand, args[1])
	}
	n, err := level(args[2], domain.SensorsPerSide)
	if err != nil {
		return domain.Command{}, err
	}
	return domain.Command{Kind: domain.CmdToggleSensorFail, Sensor: kind, Side: side, Index: n - 1}, nil
}

func level(s string, max int) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 || n > max {
		return 0, fmt.Errorf("%w: %q is not in 1..%d", ErrUnknownCommand, s, max)
	}
	return n, nil
}

// ReadCommands parses r line by line and hands each command to submit until r
// is exhausted or ctx is cancelled. Blank lines are skipped; parse errors go
// to onErr and reading continues.
func ReadCommands(ctx context.Context, r io.Reader, submit func(domain.Command) error, onErr func(error)) error {
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		cmd, err := ParseCommand(line)
		if err == nil {
			err = submit(cmd)
		}
		if err != nil && onErr != nil {
			onErr(err)
		}
	}
	return sc.Err()
}
