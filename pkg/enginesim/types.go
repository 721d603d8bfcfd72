package enginesim

import (
	"github.com/ghalamif/enginesim/internal/domain"
	"github.com/ghalamif/enginesim/internal/ports"
)

// Sample is one tick of engine telemetry as shown to consumers.
type Sample = domain.Sample

// Snapshot is the slow-rate display view: session, simulated time, sample and
// anomaly flags.
type Snapshot = domain.Snapshot

// Alert is one emitted alert line with its severity.
type Alert = domain.Alert

// AnomalyState holds the injected faults and escalation levels.
type AnomalyState = domain.AnomalyState

type (
	Phase      = domain.Phase
	Severity   = domain.Severity
	SensorKind = domain.SensorKind
	Side       = domain.Side
)

const (
	PhaseIdle     = domain.PhaseIdle
	PhaseStarting = domain.PhaseStarting
	PhaseStable   = domain.PhaseStable
	PhaseStopping = domain.PhaseStopping

	SeverityNormal   = domain.SeverityNormal
	SeverityInfo     = domain.SeverityInfo
	SeverityCaution  = domain.SeverityCaution
	SeverityCritical = domain.SeverityCritical

	SensorSpool = domain.SensorSpool
	SensorEGT   = domain.SensorEGT

	SideLeft  = domain.SideLeft
	SideRight = domain.SideRight
)

// AlertSink receives every alert that survives the repeat window.
type AlertSink = ports.AlertSink

// DisplaySink receives a snapshot once per display interval.
type DisplaySink = ports.DisplaySink

// Recorder persists session telemetry and alert logs.
type Recorder = ports.Recorder

// RecorderStats exposes session log metadata.
type RecorderStats = ports.RecorderStats

// Transformer maps live samples to displayed and logged values.
type Transformer = ports.Transformer

// CommandQueue buffers operator commands between ticks.
type CommandQueue = ports.CommandQueue

// Observability emits logs and metrics about the simulation loop.
type Observability = ports.Observability

// Field is a structured log field used by Observability implementations.
type Field = ports.Field
