// Package alert turns anomaly state into alert lines and suppresses repeats of
// the same message inside a time window.
package alert

import (
	"fmt"
	"strings"

	"github.com/ghalamif/enginesim/internal/anomaly"
	"github.com/ghalamif/enginesim/internal/domain"
	"github.com/ghalamif/enginesim/internal/ports"
)

// DefaultWindow is the suppression window in simulated seconds.
const DefaultWindow = 5.0

const (
	metricEmitted    = "enginesim_alerts_emitted_total"
	metricSuppressed = "enginesim_alerts_suppressed_total"
)

type Option func(*Dispatcher)

// WithWindow overrides the suppression window.
func WithWindow(seconds float64) Option {
	return func(d *Dispatcher) {
		if seconds >= 0 {
			d.window = seconds
		}
	}
}

// WithRecorder writes emitted lines to the session alert log.
func WithRecorder(r ports.Recorder) Option {
	return func(d *Dispatcher) { d.rec = r }
}

// WithObservability reports sink failures and alert counters.
func WithObservability(o ports.Observability) Option {
	return func(d *Dispatcher) { d.obs = o }
}

// Dispatcher emits alerts to a display sink and the session recorder. It is
// driven from the tick goroutine and is not safe for concurrent use.
type Dispatcher struct {
	window float64
	last   map[string]float64

	sink ports.AlertSink
	rec  ports.Recorder
	obs  ports.Observability
}

func New(sink ports.AlertSink, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		window: DefaultWindow,
		last:   make(map[string]float64),
		sink:   sink,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(d)
		}
	}
	return d
}

// Emit writes "[<ts>s] <message>" unless the same message was emitted less
// than one window ago. Blank messages are ignored. It reports whether the
// alert was emitted.
func (d *Dispatcher) Emit(ts float64, sev domain.Severity, message string) bool {
	msg := strings.TrimSpace(message)
	if msg == "" {
		return false
	}
	if prev, ok := d.last[msg]; ok && ts-prev < d.window {
		d.count(metricSuppressed)
		return false
	}
	d.last[msg] = ts

	a := domain.Alert{
		Time:     ts,
		Severity: sev,
		Message:  msg,
		Line:     fmt.Sprintf("[%.3fs] %s", ts, msg),
	}
	if d.rec != nil {
		if err := d.rec.WriteAlert(a.Line); err != nil {
			d.logError("alert_log_write_failed", err)
		}
	}
	if d.sink != nil {
		if err := d.sink.WriteAlert(a); err != nil {
			d.logError("alert_sink_write_failed", err, ports.Field{Key: "sink", Value: d.sink.Name()})
		}
	}
	d.count(metricEmitted)
	return true
}

// Dispatch emits every alert condition active in the sample and state.
func (d *Dispatcher) Dispatch(ts float64, s domain.Sample, st domain.AnomalyState) {
	switch st.SpoolOverspeedLevel {
	case anomaly.SpoolCritical:
		d.Emit(ts, domain.SeverityCritical, msgSpoolCritical)
	case anomaly.SpoolCaution:
		d.Emit(ts, domain.SeverityCaution, msgSpoolCaution)
	}

	if m, ok := egtMessages[st.EGTOvertempLevel]; ok && egtLevelMatchesRegime(st.EGTOvertempLevel, s.Regime()) {
		d.Emit(ts, m.severity, m.text)
	}

	if st.LowFuel {
		d.Emit(ts, domain.SeverityCaution, msgLowFuel)
	}
	if st.FuelFlowOverspeed {
		d.Emit(ts, domain.SeverityCaution, msgFuelFlowOverspeed)
	}
	if st.FuelSensorFail {
		d.Emit(ts, domain.SeverityCritical, msgFuelSensorFail)
	}

	d.dispatchSensors(ts, st, domain.SensorSpool)
	d.dispatchSensors(ts, st, domain.SensorEGT)
}

func (d *Dispatcher) dispatchSensors(ts float64, st domain.AnomalyState, kind domain.SensorKind) {
	if st.Bank(kind).AllFailed() {
		d.Emit(ts, domain.SeverityCritical, sensorMessage(kind, domain.SideLeft, domain.SeverityCritical))
		return
	}
	for _, side := range []domain.Side{domain.SideLeft, domain.SideRight} {
		sev := anomaly.SensorSeverity(st, kind, side)
		if sev == domain.SeverityNormal {
			continue
		}
		d.Emit(ts, sev, sensorMessage(kind, side, sev))
	}
}

// Reset forgets every emitted message so a new session starts clean.
func (d *Dispatcher) Reset() {
	clear(d.last)
}

func (d *Dispatcher) count(name string) {
	if d.obs != nil {
		d.obs.IncCounter(name, 1)
	}
}

func (d *Dispatcher) logError(msg string, err error, fields ...ports.Field) {
	if d.obs != nil {
		d.obs.LogError(msg, err, fields...)
	}
}

func egtLevelMatchesRegime(level int, r domain.Regime) bool {
	switch r {
	case domain.RegimeStarting:
		return level == anomaly.EGTStartCaution || level == anomaly.EGTStartCritical
	case domain.RegimeStable:
		return level == anomaly.EGTStableCaution || level == anomaly.EGTStableCritical
	default:
		return false
	}
}
