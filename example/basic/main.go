package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/ghalamif/enginesim"
)

// Starts the engine, lets it settle, then injects a stable EGT caution and
// stops it again. Output goes to the console sinks.
func main() {
	flow, err := enginesim.Conf("../../config.yaml")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	sim, err := flow.StreamOUT()
	if err != nil {
		log.Fatalf("build simulator: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := sim.Start(); err != nil {
		log.Fatalf("start: %v", err)
	}

	script := []struct {
		after time.Duration
		line  string
	}{
		{0, "start"},
		{12 * time.Second, "overtemp 3"},
		{8 * time.Second, "stop"},
		{10 * time.Second, ""},
	}
	for _, step := range script {
		select {
		case <-ctx.Done():
		case <-time.After(step.after):
		}
		if ctx.Err() != nil || step.line == "" {
			break
		}
		cmd, err := enginesim.ParseCommand(step.line)
		if err != nil {
			log.Fatalf("parse %q: %v", step.line, err)
		}
		if err := sim.Submit(ctx, cmd); err != nil {
			log.Printf("submit %q: %v", step.line, err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := sim.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("shutdown: %v", err)
	}
}
