package console

import (
	"fmt"
	"io"
	"sync"

	"github.com/ghalamif/enginesim/internal/adapters/logfile"
	"github.com/ghalamif/enginesim/internal/domain"
	"github.com/ghalamif/enginesim/internal/ports"
)

// DisplayPrinter writes one telemetry line per display snapshot.
type DisplayPrinter struct {
	mu sync.Mutex
	w  io.Writer
}

func NewDisplayPrinter(w io.Writer) *DisplayPrinter {
	return &DisplayPrinter{w: w}
}

func (d *DisplayPrinter) Publish(s domain.Snapshot) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	_, err := fmt.Fprintf(d.w, "%-8s %s\n", s.Sample.Phase, logfile.FormatTelemetry(s.Time, s.Sample, s.Anomaly))
	return err
}

func (d *DisplayPrinter) Name() string { return "console-display" }

var _ ports.DisplaySink = (*DisplayPrinter)(nil)
