package main

import (
	"context"
	"fmt"
	"log"
	"os/signal"
	"syscall"

	"github.com/ghalamif/enginesim"
)

func main() {
	flow, err := enginesim.Conf("../../config.yaml")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	alerts := func(a enginesim.Alert) error {
		fmt.Printf("%-8s %s\n", a.Severity, a.Line)
		return nil
	}
	display := func(s enginesim.Snapshot) error {
		fmt.Printf("t=%.1fs phase=%s n1=%.1f/%.1f egt=%.0f/%.0f fuel=%.0f\n",
			s.Time, s.Sample.Phase,
			s.Sample.N1Left, s.Sample.N1Right,
			s.Sample.EGTLeft, s.Sample.EGTRight,
			s.Sample.FuelLevel)
		return nil
	}

	sim, err := flow.StreamOUT(
		enginesim.StreamOutCallback("stdout-alerts", alerts),
		enginesim.StreamOutDisplayCallback("stdout-display", display),
	)
	if err != nil {
		log.Fatalf("build simulator: %v", err)
	}
	if err := sim.Start(); err != nil {
		log.Fatalf("start: %v", err)
	}
	if err := sim.Submit(ctx, enginesim.Start()); err != nil {
		log.Fatalf("submit start: %v", err)
	}

	<-ctx.Done()
	if err := sim.Shutdown(context.Background()); err != nil {
		log.Fatalf("shutdown: %v", err)
	}
}
