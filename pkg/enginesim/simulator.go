package enginesim

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ghalamif/enginesim/internal/adapters/console"
	"github.com/ghalamif/enginesim/internal/adapters/logfile"
	"github.com/ghalamif/enginesim/internal/adapters/observability"
	"github.com/ghalamif/enginesim/internal/adapters/queue"
	"github.com/ghalamif/enginesim/internal/alert"
	"github.com/ghalamif/enginesim/internal/anomaly"
	"github.com/ghalamif/enginesim/internal/app/simloop"
	"github.com/ghalamif/enginesim/internal/generator"
	"github.com/ghalamif/enginesim/internal/ports"
)

var (
	// ErrQueueFull indicates the command queue rejected a command according to policy.
	ErrQueueFull = simloop.ErrQueueFull
	// ErrSimulatorNotRunning is returned by Submit before Start or after Shutdown.
	ErrSimulatorNotRunning = errors.New("enginesim: simulator not running")
)

// SimulatorOption customizes the dependencies used by Simulator.
type SimulatorOption func(*simOverrides)

type simOverrides struct {
	alertSink   AlertSink
	display     DisplaySink
	recorder    Recorder
	transformer Transformer
	queue       CommandQueue
	obs         Observability
	registry    *prometheus.Registry
	logger      *slog.Logger
	rng         *rand.Rand
}

// WithAlertSink replaces the coloured console alert writer.
func WithAlertSink(s AlertSink) SimulatorOption {
	return func(o *simOverrides) {
		o.alertSink = s
	}
}

// WithDisplaySink replaces the console display printer.
func WithDisplaySink(s DisplaySink) SimulatorOption {
	return func(o *simOverrides) {
		o.display = s
	}
}

// WithRecorder replaces the file-backed session log. It is used even when
// logging is disabled in the config.
func WithRecorder(r Recorder) SimulatorOption {
	return func(o *simOverrides) {
		o.recorder = r
	}
}

// WithTransformer overrides the display clamp applied before logging and display.
func WithTransformer(t Transformer) SimulatorOption {
	return func(o *simOverrides) {
		o.transformer = t
	}
}

// WithCommandQueue injects a custom command queue.
func WithCommandQueue(q CommandQueue) SimulatorOption {
	return func(o *simOverrides) {
		o.queue = q
	}
}

// WithObservability plugs in a custom observability backend. The metrics
// endpoint then serves only what the registry already holds.
func WithObservability(obs Observability) SimulatorOption {
	return func(o *simOverrides) {
		o.obs = obs
	}
}

// WithRegistry registers the simulator metrics on reg instead of a private registry.
func WithRegistry(reg *prometheus.Registry) SimulatorOption {
	return func(o *simOverrides) {
		o.registry = reg
	}
}

// WithLogger sets the structured logger used by the default observability backend.
func WithLogger(l *slog.Logger) SimulatorOption {
	return func(o *simOverrides) {
		o.logger = l
	}
}

// WithRand fixes the noise source, overriding simulation.seed.
func WithRand(r *rand.Rand) SimulatorOption {
	return func(o *simOverrides) {
		o.rng = r
	}
}

// Simulator wires generator, anomaly evaluator, alert dispatcher and session
// log around a fixed-rate loop and exposes lifecycle hooks for embedding the
// engine simulator inside any Go program.
type Simulator struct {
	cfg      *Config
	loop     *simloop.Loop
	queue    ports.CommandQueue
	obs      ports.Observability
	rec      ports.Recorder
	registry *prometheus.Registry

	mu          sync.Mutex
	running     bool
	cancel      context.CancelFunc
	loopDoneCh  chan struct{}
	loopErr     error
	metricsSrv  *http.Server
	gaugeStopCh chan struct{}
}

// NewSimulator bootstraps the default adapters (console alerts and display,
// file session log, in-memory command queue, Prometheus observability).
// SimulatorOption values override any of them.
func NewSimulator(cfg *Config, opts ...SimulatorOption) (*Simulator, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var overrides simOverrides
	for _, opt := range opts {
		if opt != nil {
			opt(&overrides)
		}
	}

	reg := overrides.registry
	if reg == nil {
		reg = prometheus.NewRegistry()
	}

	obs := overrides.obs
	if obs == nil {
		logger := overrides.logger
		if logger == nil {
			logger = slog.New(slog.NewTextHandler(os.Stderr, nil))
		}
		prom, err := observability.NewPromObs(reg, logger)
		if err != nil {
			return nil, fmt.Errorf("register metrics: %w", err)
		}
		obs = prom
	}

	rng := overrides.rng
	if rng == nil {
		seed := cfg.Simulation.Seed
		if seed == 0 {
			seed = rand.Uint64()
		}
		rng = rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	}

	rec := overrides.recorder
	if rec == nil && cfg.Logging.Enabled {
		rec = logfile.NewSessionLog(cfg.Logging.Dir, obs)
	}

	alertSink := overrides.alertSink
	if alertSink == nil {
		alertSink = console.NewAlertWriter(os.Stdout, cfg.Alerts.Color)
	}
	display := overrides.display
	if display == nil {
		display = console.NewDisplayPrinter(os.Stdout)
	}

	q := overrides.queue
	if q == nil {
		q = queue.NewMemQueue(cfg.Policy.MaxPendingCommands)
	}

	gen := generator.New(
		generator.WithNoise(cfg.Simulation.Noise),
		generator.WithRand(rng),
	)
	eval := anomaly.New(anomaly.DefaultThresholds())

	dispOpts := []alert.Option{
		alert.WithWindow(cfg.Alerts.DedupWindow),
		alert.WithObservability(obs),
	}
	loopOpts := []simloop.Option{
		simloop.WithDisplay(display),
		simloop.WithPolicy(cfg.Policy),
		simloop.WithObservability(obs),
	}
	if rec != nil {
		dispOpts = append(dispOpts, alert.WithRecorder(rec))
		loopOpts = append(loopOpts, simloop.WithRecorder(rec))
	}
	if overrides.transformer != nil {
		loopOpts = append(loopOpts, simloop.WithTransformer(overrides.transformer))
	}
	disp := alert.New(alertSink, dispOpts...)

	return &Simulator{
		cfg:      cfg,
		loop:     simloop.New(gen, eval, disp, q, loopOpts...),
		queue:    q,
		obs:      obs,
		rec:      rec,
		registry: reg,
	}, nil
}

// Start launches the tick loop and, when enabled, the metrics server. It
// returns immediately; call Run to block on a context instead.
func (s *Simulator) Start() error {
	if s == nil {
		return fmt.Errorf("simulator is nil")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return fmt.Errorf("simulator already running")
	}

	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.loopDoneCh = make(chan struct{})
	s.running = true

	go func() {
		defer close(s.loopDoneCh)
		if err := s.loop.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			s.loopErr = err
		}
	}()

	if s.cfg.Metrics.Enabled {
		s.startMetrics()
	}
	s.gaugeStopCh = make(chan struct{})
	go s.recordResourceGauges(s.gaugeStopCh, time.Second)

	s.obs.LogInfo("simulator_started",
		ports.Field{Key: "tick_interval", Value: s.cfg.Policy.TickInterval.String()},
		ports.Field{Key: "metrics", Value: s.cfg.Metrics.Enabled})
	return nil
}

// Run starts the simulator and blocks until the provided context is
// cancelled. Upon cancellation it attempts a graceful shutdown.
func (s *Simulator) Run(ctx context.Context) error {
	if err := s.Start(); err != nil {
		return err
	}
	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.Shutdown(shutdownCtx)
}

// Shutdown stops the tick loop, closes the open session log and stops the
// metrics server.
func (s *Simulator) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running {
		return nil
	}
	s.running = false

	var errs []error

	s.cancel()
	select {
	case <-s.loopDoneCh:
		if s.loopErr != nil {
			errs = append(errs, s.loopErr)
		}
	case <-ctx.Done():
		errs = append(errs, fmt.Errorf("waiting for tick loop: %w", ctx.Err()))
	}

	close(s.gaugeStopCh)

	if s.metricsSrv != nil {
		if err := s.metricsSrv.Shutdown(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errs = append(errs, err)
		}
		s.metricsSrv = nil
	}

	s.obs.LogInfo("simulator_stopped")
	return errors.Join(errs...)
}

// Submit queues an operator command for the next tick.
func (s *Simulator) Submit(ctx context.Context, cmd Command) error {
	s.mu.Lock()
	running := s.running
	s.mu.Unlock()
	if !running {
		return ErrSimulatorNotRunning
	}
	return s.loop.Submit(ctx, cmd)
}

// Snapshot returns the state published after the most recent tick.
func (s *Simulator) Snapshot() Snapshot {
	return s.loop.Snapshot()
}

// RecorderStats reports the current session log; zero when logging is off.
func (s *Simulator) RecorderStats() RecorderStats {
	if s.rec == nil {
		return RecorderStats{}
	}
	return s.rec.Stats()
}

// Config returns the configuration the simulator was built with.
func (s *Simulator) Config() *Config { return s.cfg }

// Handler serves /metrics from the simulator registry and /healthz.
func (s *Simulator) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	return mux
}

func (s *Simulator) startMetrics() {
	s.metricsSrv = &http.Server{
		Addr:              s.cfg.Metrics.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	srv := s.metricsSrv
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.obs.LogError("metrics_server_exited", err, ports.Field{Key: "addr", Value: srv.Addr})
		}
	}()
}

func (s *Simulator) recordResourceGauges(stop <-chan struct{}, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			s.obs.SetGauge("enginesim_log_size_bytes", float64(s.RecorderStats().SizeBytes))
			s.obs.SetGauge("enginesim_command_queue_length", float64(s.queue.Len()))
		}
	}
}
