package ports

import (
	"time"

	"github.com/ghalamif/enginesim/internal/domain"
)

// Recorder persists one logging session: a telemetry log and an alert log.
type Recorder interface {
	Begin(session string, started time.Time) error
	WriteTelemetry(t float64, s domain.Sample, a domain.AnomalyState) error
	WriteAlert(line string) error
	End() error
	Stats() RecorderStats
}

type RecorderStats struct {
	Active         bool
	Session        string
	TelemetryLines uint64
	AlertLines     uint64
	SizeBytes      int64
	TelemetryPath  string
	AlertPath      string
}
