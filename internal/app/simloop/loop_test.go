package simloop

import (
	"context"
	"errors"
	"math/rand/v2"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/ghalamif/enginesim/internal/adapters/queue"
	"github.com/ghalamif/enginesim/internal/alert"
	"github.com/ghalamif/enginesim/internal/anomaly"
	"github.com/ghalamif/enginesim/internal/domain"
	"github.com/ghalamif/enginesim/internal/generator"
	"github.com/ghalamif/enginesim/internal/ports"
)

type mockRecorder struct {
	begins    []string
	ends      int
	telemetry []float64
	last      domain.Sample
	alerts    []string
}

func (m *mockRecorder) Begin(session string, _ time.Time) error {
	m.begins = append(m.begins, session)
	return nil
}

func (m *mockRecorder) WriteTelemetry(t float64, s domain.Sample, _ domain.AnomalyState) error {
	m.telemetry = append(m.telemetry, t)
	m.last = s
	return nil
}

func (m *mockRecorder) WriteAlert(line string) error {
	m.alerts = append(m.alerts, line)
	return nil
}

func (m *mockRecorder) End() error {
	m.ends++
	return nil
}

func (m *mockRecorder) Stats() ports.RecorderStats { return ports.RecorderStats{} }

type mockSink struct {
	mu     sync.Mutex
	alerts []domain.Alert
}

func (m *mockSink) WriteAlert(a domain.Alert) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.alerts = append(m.alerts, a)
	return nil
}

func (m *mockSink) Name() string { return "mock" }

type mockDisplay struct {
	mu    sync.Mutex
	snaps []domain.Snapshot
	err   error
}

func (m *mockDisplay) Publish(s domain.Snapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snaps = append(m.snaps, s)
	return m.err
}

func (m *mockDisplay) Name() string { return "mock-display" }

func (m *mockDisplay) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.snaps)
}

type mockObs struct {
	mu       sync.Mutex
	counters map[string]float64
	errors   []string
}

func (m *mockObs) LogInfo(string, ...ports.Field) {}
func (m *mockObs) LogError(msg string, _ error, _ ...ports.Field) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errors = append(m.errors, msg)
}
func (m *mockObs) LogCritical(string, error, ...ports.Field) {}
func (m *mockObs) IncCounter(name string, v float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.counters == nil {
		m.counters = map[string]float64{}
	}
	m.counters[name] += v
}
func (m *mockObs) ObserveLatency(string, float64) {}
func (m *mockObs) SetGauge(string, float64)       {}

func (m *mockObs) counter(name string) float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.counters[name]
}

type harness struct {
	loop *Loop
	gen  *generator.Generator
	rec  *mockRecorder
	sink *mockSink
	obs  *mockObs
}

func newHarness(t *testing.T, opts ...Option) *harness {
	t.Helper()
	h := &harness{
		gen:  generator.New(generator.WithNoise(0), generator.WithRand(rand.New(rand.NewPCG(9, 9)))),
		rec:  &mockRecorder{},
		sink: &mockSink{},
		obs:  &mockObs{},
	}
	disp := alert.New(h.sink, alert.WithRecorder(h.rec), alert.WithObservability(h.obs))
	ids := 0
	base := []Option{
		WithRecorder(h.rec),
		WithObservability(h.obs),
		WithSessionIDs(func() string {
			ids++
			return "session-" + strconv.Itoa(ids)
		}),
	}
	h.loop = New(h.gen, anomaly.New(anomaly.DefaultThresholds()), disp, queue.NewMemQueue(8), append(base, opts...)...)
	return h
}

func (h *harness) do(t *testing.T, cmd domain.Command) {
	t.Helper()
	if err := h.loop.Submit(context.Background(), cmd); err != nil {
		t.Fatalf("submit %s: %v", cmd.Kind, err)
	}
	h.loop.Step()
}

func (h *harness) stepUntil(t *testing.T, max int, done func() bool) {
	t.Helper()
	for i := 0; i < max; i++ {
		if done() {
			return
		}
		h.loop.Step()
	}
	if !done() {
		t.Fatalf("condition not reached after %d steps", max)
	}
}

func TestStepIsIdleWithoutSession(t *testing.T) {
	h := newHarness(t)
	h.loop.Step()
	h.loop.Step()

	if len(h.rec.telemetry) != 0 {
		t.Fatalf("expected no telemetry before start, got %d lines", len(h.rec.telemetry))
	}
	if snap := h.loop.Snapshot(); snap.Time != 0 || snap.Sample.Phase != domain.PhaseIdle {
		t.Fatalf("unexpected idle snapshot: %+v", snap)
	}
}

func TestStartOpensSessionAndTicks(t *testing.T) {
	h := newHarness(t)
	h.do(t, domain.Command{Kind: domain.CmdStart})

	if len(h.rec.begins) != 1 || h.rec.begins[0] != "session-1" {
		t.Fatalf("expected one session to begin, got %v", h.rec.begins)
	}
	for i := 0; i < 9; i++ {
		h.loop.Step()
	}
	if len(h.rec.telemetry) != 10 {
		t.Fatalf("expected 10 telemetry lines, got %d", len(h.rec.telemetry))
	}
	snap := h.loop.Snapshot()
	if snap.Session != "session-1" || snap.Sample.Phase != domain.PhaseStarting {
		t.Fatalf("unexpected snapshot: %+v", snap)
	}
	if diff := snap.Time - 10*domain.TimeStep; diff > 1e-9 || diff < -1e-9 {
		t.Fatalf("expected session time %.3f, got %.6f", 10*domain.TimeStep, snap.Time)
	}
	if h.obs.counter("enginesim_ticks_total") != 10 {
		t.Fatalf("expected 10 ticks counted, got %v", h.obs.counter("enginesim_ticks_total"))
	}
}

func TestStartRejectedWithAllSpoolSensorsFailed(t *testing.T) {
	h := newHarness(t)
	h.do(t, domain.Command{Kind: domain.CmdToggleSensorGroup, Sensor: domain.SensorSpool})
	h.do(t, domain.Command{Kind: domain.CmdStart})

	if h.gen.Phase() != domain.PhaseIdle {
		t.Fatalf("engine should stay idle, got %s", h.gen.Phase())
	}
	if len(h.rec.begins) != 0 {
		t.Fatalf("no session should begin")
	}
	if h.obs.counter("enginesim_commands_rejected_total") != 1 {
		t.Fatalf("expected one rejected command")
	}
}

func TestCriticalOverspeedShutsDownAndResetsOnIdle(t *testing.T) {
	h := newHarness(t)
	h.do(t, domain.Command{Kind: domain.CmdStart})
	h.stepUntil(t, 2000, func() bool { return h.gen.Phase() == domain.PhaseStable })

	h.do(t, domain.Command{Kind: domain.CmdToggleSensorFail, Sensor: domain.SensorEGT, Side: domain.SideLeft, Index: 0})
	h.do(t, domain.Command{Kind: domain.CmdForceSpoolOverspeed, Level: 2})

	if h.gen.Phase() != domain.PhaseStopping {
		t.Fatalf("expected automatic stop, got %s", h.gen.Phase())
	}
	if h.obs.counter("enginesim_shutdowns_total") != 1 {
		t.Fatalf("expected one shutdown, got %v", h.obs.counter("enginesim_shutdowns_total"))
	}
	if got := h.loop.Snapshot().Anomaly.SpoolOverspeedLevel; got != anomaly.SpoolCritical {
		t.Fatalf("expected spool level 2, got %d", got)
	}

	var sawCritical bool
	for _, a := range h.sink.alerts {
		if a.Severity == domain.SeverityCritical && a.Message == "[Red Warning] N1 overspeed level 2: Exceeds 120% N1" {
			sawCritical = true
		}
	}
	if !sawCritical {
		t.Fatalf("expected a red overspeed alert, got %+v", h.sink.alerts)
	}

	h.stepUntil(t, 2100, func() bool { return h.gen.Phase() == domain.PhaseIdle })

	snap := h.loop.Snapshot()
	if snap.Anomaly.SpoolOverspeedLevel != 0 || snap.Anomaly.EGTOvertempLevel != 0 {
		t.Fatalf("escalation should reset on idle: %+v", snap.Anomaly)
	}
	if !snap.Anomaly.EGTFail[domain.SideLeft][0] {
		t.Fatalf("sensor failure flags must survive the return to idle")
	}
	if h.rec.ends != 1 {
		t.Fatalf("expected the session to end once, got %d", h.rec.ends)
	}
	if h.loop.Active() {
		t.Fatalf("loop should be inactive after returning to idle")
	}

	lines := len(h.rec.telemetry)
	h.loop.Step()
	if len(h.rec.telemetry) != lines {
		t.Fatalf("telemetry must stop after the session ends")
	}
}

func TestAlertsAreDeduplicatedAcrossTicks(t *testing.T) {
	h := newHarness(t)
	h.do(t, domain.Command{Kind: domain.CmdStart})
	h.stepUntil(t, 2000, func() bool { return h.gen.Phase() == domain.PhaseStable })
	h.do(t, domain.Command{Kind: domain.CmdForceSpoolOverspeed, Level: 1})

	// 2 simulated seconds at 5 ms per tick.
	for i := 0; i < 400; i++ {
		h.loop.Step()
	}

	n := 0
	for _, line := range h.rec.alerts {
		if strings.Contains(line, "N1 overspeed level 1") {
			n++
		}
	}
	if n != 1 {
		t.Fatalf("expected exactly one caution alert inside the window, got %d: %v", n, h.rec.alerts)
	}
	if h.gen.Phase() != domain.PhaseStable {
		t.Fatalf("caution must not stop the engine")
	}
}

func TestRestartResetsClockAndAlertHistory(t *testing.T) {
	h := newHarness(t)
	h.do(t, domain.Command{Kind: domain.CmdToggleLowFuel})
	h.do(t, domain.Command{Kind: domain.CmdStart})
	h.do(t, domain.Command{Kind: domain.CmdStop})
	h.stepUntil(t, 2100, func() bool { return !h.loop.Active() })

	first := len(h.rec.alerts)
	if first == 0 {
		t.Fatalf("expected low fuel alert in first session")
	}

	h.do(t, domain.Command{Kind: domain.CmdStart})
	if got := h.loop.Snapshot().Session; got != "session-2" {
		t.Fatalf("expected second session id, got %q", got)
	}
	if len(h.rec.alerts) != first+1 {
		t.Fatalf("alert history should reset with the new session, got %v", h.rec.alerts)
	}
	if got := h.rec.alerts[len(h.rec.alerts)-1]; !strings.Contains(got, "[0.005s]") {
		t.Fatalf("clock should restart at zero, got %q", got)
	}
}

func TestSubmitRejectsWhenFull(t *testing.T) {
	h := newHarness(t, WithPolicy(ports.Policy{
		TickInterval:       time.Millisecond,
		DisplayInterval:    time.Second,
		MaxPendingCommands: 8,
		OnCommandQueueFull: "reject",
	}))
	for i := 0; i < 8; i++ {
		if err := h.loop.Submit(context.Background(), domain.Command{Kind: domain.CmdStop}); err != nil {
			t.Fatalf("submit %d: %v", i, err)
		}
	}
	if err := h.loop.Submit(context.Background(), domain.Command{Kind: domain.CmdStop}); !errors.Is(err, ErrQueueFull) {
		t.Fatalf("expected ErrQueueFull, got %v", err)
	}
	if h.obs.counter("enginesim_commands_dropped_total") != 1 {
		t.Fatalf("expected dropped counter")
	}
}

func TestSubmitBlocksUntilContextDone(t *testing.T) {
	h := newHarness(t, WithPolicy(ports.Policy{
		TickInterval:       time.Millisecond,
		DisplayInterval:    time.Second,
		MaxPendingCommands: 8,
		OnCommandQueueFull: "block",
	}))
	for i := 0; i < 8; i++ {
		_ = h.loop.Submit(context.Background(), domain.Command{Kind: domain.CmdStop})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if err := h.loop.Submit(ctx, domain.Command{Kind: domain.CmdStop}); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
}

func TestRunPublishesDisplayAndStops(t *testing.T) {
	display := &mockDisplay{err: errors.New("closed")}
	h := newHarness(t,
		WithDisplay(display),
		WithPolicy(ports.Policy{
			TickInterval:       time.Millisecond,
			DisplayInterval:    5 * time.Millisecond,
			MaxPendingCommands: 8,
			OnCommandQueueFull: "reject",
		}))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- h.loop.Run(ctx) }()

	if err := h.loop.Submit(ctx, domain.Command{Kind: domain.CmdStart}); err != nil {
		t.Fatalf("submit: %v", err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for display.count() < 2 && time.Now().Before(deadline) {
		time.Sleep(2 * time.Millisecond)
	}
	cancel()

	if err := <-done; !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if display.count() < 2 {
		t.Fatalf("expected display snapshots, got %d", display.count())
	}
	if h.obs.counter("enginesim_display_errors_total") == 0 {
		t.Fatalf("expected display errors to be counted")
	}
}
