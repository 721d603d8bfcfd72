package main

import (
	"context"
	"fmt"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/ghalamif/enginesim"
)

func main() {
	flow, err := enginesim.Conf("../../config.yaml")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	alerts, alertCh, closeAlerts := enginesim.NewChannelAlertSink("fanout", 32)
	defer closeAlerts()

	go fanoutWorker("alerts", alertCh)

	sim, err := flow.StreamOUT(enginesim.StreamOutAlerts(alerts))
	if err != nil {
		log.Fatalf("build simulator: %v", err)
	}
	if err := sim.Start(); err != nil {
		log.Fatalf("start: %v", err)
	}
	for _, cmd := range []enginesim.Command{enginesim.Start()} {
		if err := sim.Submit(ctx, cmd); err != nil {
			log.Fatalf("submit: %v", err)
		}
	}

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := sim.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("shutdown: %v", err)
	}
}

func fanoutWorker(name string, alerts <-chan enginesim.Alert) {
	for a := range alerts {
		fmt.Printf("[%s] %s severity=%s at %s\n", name, a.Line, a.Severity, time.Now().Format(time.RFC3339))
	}
}
