// Package simloop drives the engine simulation at a fixed tick rate. The loop
// goroutine is the only writer of engine and anomaly state; other goroutines
// submit commands through a bounded queue and read published snapshots.
package simloop

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ghalamif/enginesim/internal/alert"
	"github.com/ghalamif/enginesim/internal/anomaly"
	"github.com/ghalamif/enginesim/internal/domain"
	"github.com/ghalamif/enginesim/internal/generator"
	"github.com/ghalamif/enginesim/internal/ports"
)

// ErrQueueFull is returned by Submit when the command queue is full and the
// policy is to reject.
var ErrQueueFull = errors.New("command queue full")

type Option func(*Loop)

// WithRecorder enables session logging.
func WithRecorder(r ports.Recorder) Option {
	return func(l *Loop) { l.rec = r }
}

// WithDisplay sets the slow-rate display consumer.
func WithDisplay(d ports.DisplaySink) Option {
	return func(l *Loop) { l.display = d }
}

func WithPolicy(p ports.Policy) Option {
	return func(l *Loop) { l.pol = p }
}

func WithObservability(o ports.Observability) Option {
	return func(l *Loop) { l.obs = o }
}

// WithTransformer replaces the display clamp applied to logged and
// published samples.
func WithTransformer(t ports.Transformer) Option {
	return func(l *Loop) { l.tr = t }
}

// WithSessionIDs overrides the session identifier source.
func WithSessionIDs(next func() string) Option {
	return func(l *Loop) { l.newSession = next }
}

// WithWallClock overrides the wall clock used for log file names.
func WithWallClock(now func() time.Time) Option {
	return func(l *Loop) { l.now = now }
}

type Loop struct {
	gen   *generator.Generator
	eval  *anomaly.Evaluator
	disp  *alert.Dispatcher
	queue ports.CommandQueue

	rec        ports.Recorder
	display    ports.DisplaySink
	tr         ports.Transformer
	pol        ports.Policy
	obs        ports.Observability
	newSession func() string
	now        func() time.Time

	// Owned by the loop goroutine.
	state   domain.AnomalyState
	clock   float64
	active  bool
	session string

	mu   sync.RWMutex
	snap domain.Snapshot
}

func New(gen *generator.Generator, eval *anomaly.Evaluator, disp *alert.Dispatcher, q ports.CommandQueue, opts ...Option) *Loop {
	l := &Loop{
		gen:        gen,
		eval:       eval,
		disp:       disp,
		queue:      q,
		tr:         generator.DisplayClamp{},
		obs:        nopObs{},
		newSession: uuid.NewString,
		now:        time.Now,
		pol: ports.Policy{
			TickInterval:       5 * time.Millisecond,
			DisplayInterval:    time.Second,
			MaxPendingCommands: 64,
			OnCommandQueueFull: "reject",
		},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(l)
		}
	}
	l.publishLocked()
	return l
}

// Submit queues a command for the next tick. With the "block" policy it waits
// for room until ctx is done.
func (l *Loop) Submit(ctx context.Context, cmd domain.Command) error {
	for {
		if l.queue.Enqueue(cmd) {
			l.obs.SetGauge("enginesim_command_queue_length", float64(l.queue.Len()))
			return nil
		}

		switch l.pol.OnCommandQueueFull {
		case "block":
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(l.pol.TickInterval):
			}
		default:
			l.obs.IncCounter("enginesim_commands_dropped_total", 1)
			l.obs.LogError("command_queue_full", fmt.Errorf("dropped %s", cmd.Kind), ports.Field{Key: "pending", Value: l.queue.Len()})
			return ErrQueueFull
		}
	}
}

// Run ticks until ctx is cancelled, then closes any open session.
func (l *Loop) Run(ctx context.Context) error {
	tick := time.NewTicker(l.pol.TickInterval)
	defer tick.Stop()
	display := time.NewTicker(l.pol.DisplayInterval)
	defer display.Stop()

	for {
		select {
		case <-ctx.Done():
			l.endSession()
			return ctx.Err()
		case <-tick.C:
			l.Step()
		case <-display.C:
			l.PublishDisplay()
		}
	}
}

// Step executes queued commands and, while a session is active, advances the
// simulation by one tick.
func (l *Loop) Step() {
	start := time.Now()
	for _, cmd := range l.queue.Drain(l.pol.MaxPendingCommands) {
		l.execute(cmd)
	}
	l.obs.SetGauge("enginesim_command_queue_length", float64(l.queue.Len()))

	if l.active {
		l.tick()
		l.obs.IncCounter("enginesim_ticks_total", 1)
		l.obs.ObserveLatency("enginesim_tick_duration_seconds", time.Since(start).Seconds())
	}
	l.publish()
}

func (l *Loop) tick() {
	l.gen.Tick()
	l.clock += domain.TimeStep

	res := l.eval.Apply(l.gen, &l.state)
	l.reportShutdown(res)

	shown := l.tr.Transform(l.gen.Sample())
	if l.rec != nil {
		// The recorder reports its own failures and disables itself.
		_ = l.rec.WriteTelemetry(l.clock, shown, l.state)
	}
	l.disp.Dispatch(l.clock, shown, l.state)

	if shown.Phase == domain.PhaseIdle {
		l.state.ResetEscalation()
		l.endSession()
	}
}

func (l *Loop) execute(cmd domain.Command) {
	var (
		ok  bool
		res anomaly.Result
	)
	switch cmd.Kind {
	case domain.CmdStart:
		ok = l.start()
	case domain.CmdStop:
		ok = l.gen.Stop()
	case domain.CmdThrustIncrease:
		ok = l.gen.RequestThrustIncrease()
	case domain.CmdThrustDecrease:
		ok = l.gen.RequestThrustDecrease()
	case domain.CmdToggleSensorFail:
		res, ok = l.eval.ToggleSensorFail(l.gen, &l.state, cmd.Sensor, cmd.Side, cmd.Index)
	case domain.CmdToggleSensorGroup:
		res, ok = l.eval.ToggleSensorGroup(l.gen, &l.state, cmd.Sensor)
	case domain.CmdToggleFuelSensorFail:
		res, ok = l.eval.ToggleFuelSensorFail(l.gen, &l.state), true
	case domain.CmdToggleLowFuel:
		res, ok = l.eval.ToggleLowFuel(l.gen, &l.state), true
	case domain.CmdForceSpoolOverspeed:
		res, ok = l.eval.ForceSpoolOverspeed(l.gen, &l.state, cmd.Level)
	case domain.CmdForceEGTOvertemp:
		res, ok = l.eval.ForceEGTOvertemp(l.gen, &l.state, cmd.Level)
	case domain.CmdForceFuelFlowOverspeed:
		res, ok = l.eval.ForceFuelFlowOverspeed(l.gen, &l.state)
	}
	l.reportShutdown(res)

	if !ok {
		l.obs.IncCounter("enginesim_commands_rejected_total", 1)
		l.obs.LogInfo("command_rejected",
			ports.Field{Key: "command", Value: cmd.Kind.String()},
			ports.Field{Key: "phase", Value: l.gen.Phase().String()})
		return
	}
	l.obs.IncCounter("enginesim_commands_total", 1)
}

// start refuses to crank an engine whose spool or EGT sensors are all dead.
func (l *Loop) start() bool {
	if l.state.SpoolFail.AllFailed() || l.state.EGTFail.AllFailed() {
		return false
	}
	if !l.gen.Start() {
		return false
	}
	l.beginSession()
	return true
}

func (l *Loop) beginSession() {
	l.endSession()
	l.clock = 0
	l.active = true
	l.session = l.newSession()
	l.disp.Reset()

	if l.rec != nil {
		_ = l.rec.Begin(l.session, l.now())
	}
	l.obs.LogInfo("session_started", ports.Field{Key: "session", Value: l.session})
}

func (l *Loop) endSession() {
	if !l.active {
		return
	}
	l.active = false
	if l.rec != nil {
		if err := l.rec.End(); err != nil {
			l.obs.LogError("session_log_close_failed", err, ports.Field{Key: "session", Value: l.session})
		}
	}
	l.obs.LogInfo("session_ended",
		ports.Field{Key: "session", Value: l.session},
		ports.Field{Key: "sim_seconds", Value: l.clock})
}

func (l *Loop) reportShutdown(res anomaly.Result) {
	if !res.Shutdown {
		return
	}
	l.obs.IncCounter("enginesim_shutdowns_total", 1)
	l.obs.LogInfo("automatic_shutdown",
		ports.Field{Key: "reasons", Value: res.Reasons},
		ports.Field{Key: "t", Value: l.clock})
}

// PublishDisplay hands the latest snapshot to the display sink.
func (l *Loop) PublishDisplay() {
	if l.display == nil {
		return
	}
	if err := l.display.Publish(l.Snapshot()); err != nil {
		l.obs.IncCounter("enginesim_display_errors_total", 1)
		l.obs.LogError("display_publish_failed", err, ports.Field{Key: "sink", Value: l.display.Name()})
	}
}

// Snapshot returns the state published after the last Step. Safe for
// concurrent use.
func (l *Loop) Snapshot() domain.Snapshot {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.snap
}

// Active reports whether a session is running. Loop goroutine only.
func (l *Loop) Active() bool { return l.active }

func (l *Loop) publish() {
	l.mu.Lock()
	l.publishLocked()
	l.mu.Unlock()

	s := l.snap.Sample
	l.obs.SetGauge("enginesim_phase", float64(s.Phase))
	l.obs.SetGauge("enginesim_n1_left_percent", s.N1Left)
	l.obs.SetGauge("enginesim_n1_right_percent", s.N1Right)
	l.obs.SetGauge("enginesim_egt_left_celsius", s.EGTLeft)
	l.obs.SetGauge("enginesim_egt_right_celsius", s.EGTRight)
	l.obs.SetGauge("enginesim_fuel_level_lbs", s.FuelLevel)
	l.obs.SetGauge("enginesim_fuel_flow", s.FuelFlow)
	l.obs.SetGauge("enginesim_spool_overspeed_level", float64(l.state.SpoolOverspeedLevel))
	l.obs.SetGauge("enginesim_egt_overtemp_level", float64(l.state.EGTOvertempLevel))
}

func (l *Loop) publishLocked() {
	l.snap = domain.Snapshot{
		Session: l.session,
		Time:    l.clock,
		Sample:  l.tr.Transform(l.gen.Sample()),
		Anomaly: l.state,
	}
}

type nopObs struct{}

func (nopObs) LogInfo(string, ...ports.Field)            {}
func (nopObs) LogError(string, error, ...ports.Field)    {}
func (nopObs) LogCritical(string, error, ...ports.Field) {}
func (nopObs) IncCounter(string, float64)                {}
func (nopObs) ObserveLatency(string, float64)            {}
func (nopObs) SetGauge(string, float64)                  {}
