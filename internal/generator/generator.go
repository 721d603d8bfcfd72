// Package generator produces synthetic twin-spool engine telemetry on a fixed
// time step.
//
// A Generator is NOT safe for concurrent use. The simulation loop owns it and
// calls every method from the tick goroutine.
package generator

import (
	"math/rand/v2"

	"github.com/ghalamif/enginesim/internal/domain"
)

// DefaultNoise is the half-width of the multiplicative noise band.
const DefaultNoise = 0.01

// Option customizes a Generator.
type Option func(*Generator)

// WithNoise sets the noise half-width. Zero disables noise.
func WithNoise(amplitude float64) Option {
	return func(g *Generator) {
		if amplitude < 0 {
			amplitude = 0
		}
		g.noise = amplitude
	}
}

// WithRand injects the random source used for noise and thrust factors.
func WithRand(r *rand.Rand) Option {
	return func(g *Generator) {
		if r != nil {
			g.rng = r
		}
	}
}

// WithStep overrides the simulated time step in seconds.
func WithStep(dt float64) Option {
	return func(g *Generator) {
		if dt > 0 {
			g.dt = dt
		}
	}
}

type thrustEdit int

const (
	thrustIncrease thrustEdit = iota + 1
	thrustDecrease
)

// Generator owns the live and baseline samples and advances them once per tick.
type Generator struct {
	live     domain.Sample
	baseline domain.Sample

	// pending holds at most one thrust edit, consumed by the next tick.
	pending thrustEdit

	dt    float64
	noise float64
	rng   *rand.Rand
}

// New returns an Idle generator with a full tank.
func New(opts ...Option) *Generator {
	g := &Generator{
		live:     domain.NewSample(),
		baseline: domain.NewSample(),
		dt:       domain.TimeStep,
		noise:    DefaultNoise,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(g)
		}
	}
	if g.rng == nil {
		g.rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return g
}

// Start moves an Idle engine into Starting. It reports whether the command
// was accepted.
func (g *Generator) Start() bool {
	if g.live.Phase != domain.PhaseIdle {
		return false
	}
	g.live.Phase = domain.PhaseStarting
	g.live.Elapsed = 0
	return true
}

// Stop begins a shutdown from Starting or Stable and freezes the current
// sample as the decay baseline. Stopping or Idle engines ignore it.
func (g *Generator) Stop() bool {
	if g.live.Phase == domain.PhaseIdle || g.live.Phase == domain.PhaseStopping {
		return false
	}
	g.live.PrevPhase = g.live.Phase
	g.live.Phase = domain.PhaseStopping
	g.live.FuelFlow = 0
	g.baseline = g.live
	return true
}

// RequestThrustIncrease arms a one-shot thrust increase for the next tick.
func (g *Generator) RequestThrustIncrease() bool {
	return g.request(thrustIncrease)
}

// RequestThrustDecrease arms a one-shot thrust decrease for the next tick.
func (g *Generator) RequestThrustDecrease() bool {
	return g.request(thrustDecrease)
}

func (g *Generator) request(edit thrustEdit) bool {
	if g.live.Phase != domain.PhaseStable {
		return false
	}
	g.pending = edit
	return true
}

// Tick advances simulated time by one step and recomputes the live sample.
func (g *Generator) Tick() {
	g.live.FuelLevel -= g.live.FuelFlow * g.dt
	g.baseline.FuelLevel = g.live.FuelLevel
	g.live.Elapsed += g.dt

	if p := int(g.live.Phase); p >= 0 && p < len(phaseSteps) {
		phaseSteps[p](g)
	}

	g.applyThrust()
	g.applyNoise()
	g.checkPhase()
}

// Overwrite replaces both the live sample and the baseline. It is the fault
// injection path used to force values outside the normal curves.
func (g *Generator) Overwrite(s domain.Sample) {
	g.live = s
	g.baseline = s
}

// Sample returns a copy of the live sample.
func (g *Generator) Sample() domain.Sample {
	return g.live
}

// Phase returns the current phase.
func (g *Generator) Phase() domain.Phase {
	return g.live.Phase
}

func (g *Generator) applyThrust() {
	if g.pending == 0 {
		return
	}
	edit := g.pending
	g.pending = 0
	if g.live.Phase != domain.PhaseStable {
		return
	}

	var flowDelta, offset float64
	switch edit {
	case thrustIncrease:
		flowDelta, offset = 1, 0.03
	case thrustDecrease:
		flowDelta, offset = -1, -0.05
	}

	spool := 1 + g.rng.Float64()*0.02 + offset
	egt := 1 + g.rng.Float64()*0.02 + offset

	g.baseline.FuelFlow += flowDelta
	g.baseline.N1Left *= spool
	g.baseline.N1Right *= spool
	g.baseline.EGTLeft *= egt
	g.baseline.EGTRight *= egt
}

func (g *Generator) applyNoise() {
	if g.noise == 0 {
		return
	}
	g.live.N1Left *= g.jitter()
	g.live.N1Right *= g.jitter()
	g.live.EGTLeft *= g.jitter()
	g.live.EGTRight *= g.jitter()
	g.live.FuelFlow *= g.jitter()
}

func (g *Generator) jitter() float64 {
	return 1 + (g.rng.Float64()*2-1)*g.noise
}

func (g *Generator) checkPhase() {
	switch g.live.Phase {
	case domain.PhaseStarting:
		if g.live.N1Left >= startedN1 && g.live.N1Right >= startedN1 {
			g.live.Phase = domain.PhaseStable
			g.baseline = g.live
		}
	case domain.PhaseStopping:
		if g.stopTime() >= domain.StopDuration || g.spooledDown() {
			g.live.Phase = domain.PhaseIdle
			g.live.N1Left, g.live.N1Right = 0, 0
			g.live.EGTLeft, g.live.EGTRight = domain.AmbientTemp, domain.AmbientTemp
			g.live.FuelFlow = 0
			g.live.StartOvertemp = false
		}
	}
}

func (g *Generator) spooledDown() bool {
	s := g.live
	return s.N1Left <= idleN1 && s.N1Right <= idleN1 &&
		s.EGTLeft <= domain.AmbientTemp+coldMargin && s.EGTRight <= domain.AmbientTemp+coldMargin
}

func (g *Generator) stopTime() float64 {
	return g.live.Elapsed - g.baseline.Elapsed
}

// ClampForDisplay floors fuel and spool speed at zero and EGT at ambient.
func ClampForDisplay(s domain.Sample) domain.Sample {
	if s.FuelLevel < 0 {
		s.FuelLevel = 0
	}
	if s.N1Left < 0 {
		s.N1Left = 0
	}
	if s.N1Right < 0 {
		s.N1Right = 0
	}
	if s.EGTLeft < domain.AmbientTemp {
		s.EGTLeft = domain.AmbientTemp
	}
	if s.EGTRight < domain.AmbientTemp {
		s.EGTRight = domain.AmbientTemp
	}
	return s
}

// DisplayClamp adapts ClampForDisplay to ports.Transformer.
type DisplayClamp struct{}

func (DisplayClamp) Transform(s domain.Sample) domain.Sample { return ClampForDisplay(s) }
