package observability

import (
	"log/slog"
	"os"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/ghalamif/enginesim/internal/ports"
)

type PromObs struct {
	log *slog.Logger

	counters map[string]prometheus.Counter
	gauges   map[string]prometheus.Gauge
	histos   map[string]prometheus.Observer
}

// NewPromObs registers the simulator metrics on reg and logs through logger.
// A nil registerer gets a private registry; a nil logger writes text to stderr.
func NewPromObs(reg prometheus.Registerer, logger *slog.Logger) (*PromObs, error) {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(os.Stderr, nil))
	}

	counter := func(name, help string) prometheus.Counter {
		return prometheus.NewCounter(prometheus.CounterOpts{Name: name, Help: help})
	}
	gauge := func(name, help string) prometheus.Gauge {
		return prometheus.NewGauge(prometheus.GaugeOpts{Name: name, Help: help})
	}

	p := &PromObs{
		log: logger,
		counters: map[string]prometheus.Counter{
			"enginesim_ticks_total":             counter("enginesim_ticks_total", "Simulation ticks executed."),
			"enginesim_alerts_emitted_total":    counter("enginesim_alerts_emitted_total", "Alerts written to the alert sinks."),
			"enginesim_alerts_suppressed_total": counter("enginesim_alerts_suppressed_total", "Alerts dropped inside the repeat window."),
			"enginesim_commands_total":          counter("enginesim_commands_total", "Operator commands executed."),
			"enginesim_commands_rejected_total": counter("enginesim_commands_rejected_total", "Operator commands ignored in the current phase."),
			"enginesim_commands_dropped_total":  counter("enginesim_commands_dropped_total", "Operator commands lost to a full command queue."),
			"enginesim_shutdowns_total":         counter("enginesim_shutdowns_total", "Automatic shutdowns requested by the anomaly evaluator."),
			"enginesim_log_failures_total":      counter("enginesim_log_failures_total", "Session log write failures."),
			"enginesim_display_errors_total":    counter("enginesim_display_errors_total", "Display sink publish failures."),
		},
		gauges: map[string]prometheus.Gauge{
			"enginesim_phase":                 gauge("enginesim_phase", "Engine phase (0 idle, 1 starting, 2 stable, 3 stopping)."),
			"enginesim_n1_left_percent":       gauge("enginesim_n1_left_percent", "Left spool speed in percent of rated."),
			"enginesim_n1_right_percent":      gauge("enginesim_n1_right_percent", "Right spool speed in percent of rated."),
			"enginesim_egt_left_celsius":      gauge("enginesim_egt_left_celsius", "Left exhaust gas temperature."),
			"enginesim_egt_right_celsius":     gauge("enginesim_egt_right_celsius", "Right exhaust gas temperature."),
			"enginesim_fuel_level_lbs":        gauge("enginesim_fuel_level_lbs", "Remaining fuel."),
			"enginesim_fuel_flow":             gauge("enginesim_fuel_flow", "Current fuel flow."),
			"enginesim_spool_overspeed_level": gauge("enginesim_spool_overspeed_level", "Spool overspeed escalation level."),
			"enginesim_egt_overtemp_level":    gauge("enginesim_egt_overtemp_level", "EGT overtemp escalation level."),
			"enginesim_command_queue_length":  gauge("enginesim_command_queue_length", "Operator commands waiting for the next tick."),
			"enginesim_log_size_bytes":        gauge("enginesim_log_size_bytes", "Bytes written to the current session logs."),
		},
		histos: map[string]prometheus.Observer{},
	}

	tick := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "enginesim_tick_duration_seconds",
		Help:    "Wall time spent executing one simulation tick.",
		Buckets: prometheus.ExponentialBuckets(0.00001, 2, 12),
	})
	p.histos["enginesim_tick_duration_seconds"] = tick

	collectors := []prometheus.Collector{tick}
	for _, c := range p.counters {
		collectors = append(collectors, c)
	}
	for _, g := range p.gauges {
		collectors = append(collectors, g)
	}
	for _, c := range collectors {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return p, nil
}

func (p *PromObs) LogInfo(msg string, fields ...ports.Field) {
	p.log.Info(msg, attrs(fields)...)
}

func (p *PromObs) LogError(msg string, err error, fields ...ports.Field) {
	p.log.Error(msg, append(attrs(fields), slog.Any("err", err))...)
}

func (p *PromObs) LogCritical(msg string, err error, fields ...ports.Field) {
	p.log.Error(msg, append(attrs(fields), slog.Any("err", err), slog.Bool("critical", true))...)
}

func (p *PromObs) IncCounter(name string, v float64) {
	if c, ok := p.counters[name]; ok {
		c.Add(v)
	}
}

func (p *PromObs) ObserveLatency(name string, seconds float64) {
	if h, ok := p.histos[name]; ok {
		h.Observe(seconds)
	}
}

func (p *PromObs) SetGauge(name string, v float64) {
	if g, ok := p.gauges[name]; ok {
		g.Set(v)
	}
}

func attrs(fields []ports.Field) []any {
	out := make([]any, 0, len(fields)+2)
	for _, f := range fields {
		out = append(out, slog.Any(f.Key, f.Value))
	}
	return out
}

var _ ports.Observability = (*PromObs)(nil)
