package enginesim

import (
	"context"

	base "github.com/ghalamif/enginesim/pkg/enginesim"
)

// Re-exported errors for convenience.
var (
	ErrQueueFull           = base.ErrQueueFull
	ErrSimulatorNotRunning = base.ErrSimulatorNotRunning
	ErrAlertSinkClosed     = base.ErrAlertSinkClosed
	ErrDisplaySinkClosed   = base.ErrDisplaySinkClosed
	ErrSinkFull            = base.ErrSinkFull
	ErrUnknownCommand      = base.ErrUnknownCommand
)

// Type aliases so consumers can import github.com/ghalamif/enginesim directly.
type (
	Config           = base.Config
	Policy           = base.Policy
	SimulationConfig = base.SimulationConfig
	AlertsConfig     = base.AlertsConfig
	LoggingConfig    = base.LoggingConfig
	MetricsConfig    = base.MetricsConfig
	Flow             = base.Flow
	FlowOption       = base.FlowOption
	StreamInOption   = base.StreamInOption
	StreamOutOption  = base.StreamOutOption
	Simulator        = base.Simulator
	SimulatorOption  = base.SimulatorOption
	Command          = base.Command
	CommandKind      = base.CommandKind
	Sample           = base.Sample
	Snapshot         = base.Snapshot
	Alert            = base.Alert
	AlertFunc        = base.AlertFunc
	DisplayFunc      = base.DisplayFunc
	AlertSink        = base.AlertSink
	DisplaySink      = base.DisplaySink
	Recorder         = base.Recorder
	RecorderStats    = base.RecorderStats
	Transformer      = base.Transformer
	CommandQueue     = base.CommandQueue
	Observability    = base.Observability
	Field            = base.Field
)

// Config helpers.
func LoadConfig(path string) (*Config, error) {
	return base.LoadConfig(path)
}

func DefaultConfig() *Config {
	return base.DefaultConfig()
}

// Flow builder helpers.
func Conf(path string, opts ...FlowOption) (*Flow, error) {
	return base.Conf(path, opts...)
}

func ConfFromConfig(cfg *Config, opts ...FlowOption) (*Flow, error) {
	return base.ConfFromConfig(cfg, opts...)
}

func WithFlowOptions(opts ...SimulatorOption) FlowOption {
	return base.WithFlowOptions(opts...)
}

func StreamInQueue(q CommandQueue) StreamInOption {
	return base.StreamInQueue(q)
}

func StreamInObservability(obs Observability) StreamInOption {
	return base.StreamInObservability(obs)
}

func StreamOutAlerts(s AlertSink) StreamOutOption {
	return base.StreamOutAlerts(s)
}

func StreamOutDisplay(s DisplaySink) StreamOutOption {
	return base.StreamOutDisplay(s)
}

func StreamOutRecorder(r Recorder) StreamOutOption {
	return base.StreamOutRecorder(r)
}

func StreamOutTransformer(tr Transformer) StreamOutOption {
	return base.StreamOutTransformer(tr)
}

func StreamOutObservability(obs Observability) StreamOutOption {
	return base.StreamOutObservability(obs)
}

func StreamOutCallback(name string, fn AlertFunc) StreamOutOption {
	return base.StreamOutCallback(name, fn)
}

func StreamOutDisplayCallback(name string, fn DisplayFunc) StreamOutOption {
	return base.StreamOutDisplayCallback(name, fn)
}

// Simulator and options.
func NewSimulator(cfg *Config, opts ...SimulatorOption) (*Simulator, error) {
	return base.NewSimulator(cfg, opts...)
}

func WithAlertSink(s AlertSink) SimulatorOption {
	return base.WithAlertSink(s)
}

func WithDisplaySink(s DisplaySink) SimulatorOption {
	return base.WithDisplaySink(s)
}

func WithRecorder(r Recorder) SimulatorOption {
	return base.WithRecorder(r)
}

func WithTransformer(tr Transformer) SimulatorOption {
	return base.WithTransformer(tr)
}

func WithCommandQueue(q CommandQueue) SimulatorOption {
	return base.WithCommandQueue(q)
}

func WithObservability(obs Observability) SimulatorOption {
	return base.WithObservability(obs)
}

// Sink adapters.
func NewCallbackAlertSink(name string, fn AlertFunc) AlertSink {
	return base.NewCallbackAlertSink(name, fn)
}

func NewCallbackDisplaySink(name string, fn DisplayFunc) DisplaySink {
	return base.NewCallbackDisplaySink(name, fn)
}

func NewChannelAlertSink(name string, buffer int) (AlertSink, <-chan Alert, func()) {
	return base.NewChannelAlertSink(name, buffer)
}

func NewChannelDisplaySink(name string, buffer int) (DisplaySink, <-chan Snapshot, func()) {
	return base.NewChannelDisplaySink(name, buffer)
}

// Commands.
func ParseCommand(line string) (Command, error) {
	return base.ParseCommand(line)
}

func Start() Command          { return base.Start() }
func Stop() Command           { return base.Stop() }
func ThrustIncrease() Command { return base.ThrustIncrease() }
func ThrustDecrease() Command { return base.ThrustDecrease() }

// Run loads path and runs the simulator with default console output until
// ctx is cancelled.
func Run(ctx context.Context, path string) error {
	flow, err := base.Conf(path)
	if err != nil {
		return err
	}
	return flow.Run(ctx)
}
