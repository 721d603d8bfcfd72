package enginesim

import (
	"errors"
	"testing"
)

func TestCommandConstructorsMatchParser(t *testing.T) {
	cases := map[string]Command{
		"start":           Start(),
		"stop":            Stop(),
		"thrust+":         ThrustIncrease(),
		"thrust-":         ThrustDecrease(),
		"fail n1 right 2": FailSensor(SensorSpool, SideRight, 1),
		"fail egt all":    FailSensorGroup(SensorEGT),
		"fail fuel":       FailFuelSensor(),
		"lowfuel":         LowFuel(),
		"overspeed 2":     SpoolOverspeed(2),
		"overtemp 3":      EGTOvertemp(3),
		"fuelflow":        FuelFlowOverspeed(),
	}
	for line, want := range cases {
		got, err := ParseCommand(line)
		if err != nil {
			t.Fatalf("ParseCommand(%q) returned error: %v", line, err)
		}
		if got != want {
			t.Fatalf("ParseCommand(%q) = %+v, want %+v", line, got, want)
		}
	}

	if _, err := ParseCommand("eject"); !errors.Is(err, ErrUnknownCommand) {
		t.Fatalf("expected ErrUnknownCommand, got %v", err)
	}
}
