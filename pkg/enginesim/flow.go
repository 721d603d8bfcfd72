package enginesim

import (
	"context"
	"fmt"
)

// Flow is a convenience builder that lets callers say Conf → StreamIN →
// StreamOUT without touching the underlying wiring.
type Flow struct {
	cfg  *Config
	opts []SimulatorOption
}

// FlowOption mutates the Flow after configuration is loaded.
type FlowOption func(*Flow)

// StreamInOption configures the command side: queue, noise source and observability.
type StreamInOption func(*Flow)

// StreamOutOption configures the output side: alert and display sinks,
// session recorder and transformer.
type StreamOutOption func(*Flow)

// Conf loads YAML or TOML from disk, applies FlowOption values, and returns a
// Flow builder.
func Conf(path string, opts ...FlowOption) (*Flow, error) {
	cfg, err := LoadConfig(path)
	if err != nil {
		return nil, err
	}
	return ConfFromConfig(cfg, opts...)
}

// ConfFromConfig bootstraps a Flow from an in-memory Config.
func ConfFromConfig(cfg *Config, opts ...FlowOption) (*Flow, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	f := &Flow{cfg: cfg}
	for _, opt := range opts {
		if opt != nil {
			opt(f)
		}
	}
	return f, nil
}

// Config returns the underlying configuration so callers can tweak it before
// building a simulator.
func (f *Flow) Config() *Config {
	if f == nil {
		return nil
	}
	return f.cfg
}

// Options appends raw SimulatorOption values to the builder.
func (f *Flow) Options(opts ...SimulatorOption) *Flow {
	if f == nil {
		return nil
	}
	f.appendOptions(opts...)
	return f
}

// StreamIN records command-side overrides.
func (f *Flow) StreamIN(opts ...StreamInOption) *Flow {
	if f == nil {
		return nil
	}
	for _, opt := range opts {
		if opt != nil {
			opt(f)
		}
	}
	return f
}

// StreamOUT records output-side overrides and builds a Simulator ready to run.
func (f *Flow) StreamOUT(opts ...StreamOutOption) (*Simulator, error) {
	if f == nil {
		return nil, fmt.Errorf("flow is nil")
	}
	for _, opt := range opts {
		if opt != nil {
			opt(f)
		}
	}
	return NewSimulator(f.cfg, f.opts...)
}

// Run is a shortcut for StreamOUT + Simulator.Run.
func (f *Flow) Run(ctx context.Context, opts ...StreamOutOption) error {
	sim, err := f.StreamOUT(opts...)
	if err != nil {
		return err
	}
	return sim.Run(ctx)
}

// WithFlowOptions appends SimulatorOption values during Conf.
func WithFlowOptions(opts ...SimulatorOption) FlowOption {
	return func(f *Flow) {
		if f != nil {
			f.appendOptions(opts...)
		}
	}
}

// StreamInQueue swaps the in-memory command queue for a caller-provided implementation.
func StreamInQueue(q CommandQueue) StreamInOption {
	return func(f *Flow) {
		if f != nil && q != nil {
			f.appendOptions(WithCommandQueue(q))
		}
	}
}

// StreamInObservability overrides the default Prometheus-based observability stack.
func StreamInObservability(obs Observability) StreamInOption {
	return func(f *Flow) {
		if f != nil && obs != nil {
			f.appendOptions(WithObservability(obs))
		}
	}
}

// StreamOutAlerts injects a custom alert sink.
func StreamOutAlerts(s AlertSink) StreamOutOption {
	return func(f *Flow) {
		if f != nil && s != nil {
			f.appendOptions(WithAlertSink(s))
		}
	}
}

// StreamOutDisplay injects a custom display sink.
func StreamOutDisplay(s DisplaySink) StreamOutOption {
	return func(f *Flow) {
		if f != nil && s != nil {
			f.appendOptions(WithDisplaySink(s))
		}
	}
}

// StreamOutRecorder replaces the file-backed session log.
func StreamOutRecorder(r Recorder) StreamOutOption {
	return func(f *Flow) {
		if f != nil && r != nil {
			f.appendOptions(WithRecorder(r))
		}
	}
}

// StreamOutTransformer overrides the display clamp.
func StreamOutTransformer(tr Transformer) StreamOutOption {
	return func(f *Flow) {
		if f != nil && tr != nil {
			f.appendOptions(WithTransformer(tr))
		}
	}
}

// StreamOutObservability replaces the default observability backend.
func StreamOutObservability(obs Observability) StreamOutOption {
	return func(f *Flow) {
		if f != nil && obs != nil {
			f.appendOptions(WithObservability(obs))
		}
	}
}

// StreamOutCallback installs an alert sink built from a simple callback function.
func StreamOutCallback(name string, fn AlertFunc) StreamOutOption {
	return func(f *Flow) {
		if f != nil {
			f.appendOptions(WithAlertSink(NewCallbackAlertSink(name, fn)))
		}
	}
}

// StreamOutDisplayCallback installs a display sink built from a callback function.
func StreamOutDisplayCallback(name string, fn DisplayFunc) StreamOutOption {
	return func(f *Flow) {
		if f != nil {
			f.appendOptions(WithDisplaySink(NewCallbackDisplaySink(name, fn)))
		}
	}
}

func (f *Flow) appendOptions(opts ...SimulatorOption) {
	for _, opt := range opts {
		if opt != nil {
			f.opts = append(f.opts, opt)
		}
	}
}
