// Package logfile writes one pair of append-only session logs per engine run:
// a telemetry log (<stamp>.csv) and an alert log (<stamp>.log).
package logfile

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"github.com/ghalamif/enginesim/internal/domain"
	"github.com/ghalamif/enginesim/internal/ports"
)

const (
	stampLayout     = "20060102_150405"
	telemetryHeader = "Timestamp(s),N1LeftAverage,N1RightAverage,EGTLeftAverage,EGTRightAverage,FuelLevel,FuelFlow,Phase\n"
	alertBanner     = "=== Engine Simulator Alert Log ==="
	notAvailable    = "N/A"
)

// SessionLog implements ports.Recorder. A write failure is reported once and
// disables logging until the next Begin; the simulation keeps running.
type SessionLog struct {
	mu  sync.Mutex
	dir string
	obs ports.Observability

	session   string
	active    bool
	telPath   string
	alertPath string
	tel       *os.File
	telW      *bufio.Writer
	alert     *os.File
	alertW    *bufio.Writer

	telLines   uint64
	alertLines uint64
	sizeBytes  int64
}

func NewSessionLog(dir string, obs ports.Observability) *SessionLog {
	return &SessionLog{dir: dir, obs: obs}
}

// Begin closes any open session and opens the logs for a new one.
func (l *SessionLog) Begin(session string, started time.Time) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := l.closeLocked(); err != nil {
		l.report("close_previous_session", err)
	}
	l.session = session
	l.telLines, l.alertLines, l.sizeBytes = 0, 0, 0

	if err := os.MkdirAll(l.dir, 0o755); err != nil {
		return l.fail("create log directory", err)
	}
	base := filepath.Join(l.dir, started.Format(stampLayout))

	tel, err := os.OpenFile(base+".csv", os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return l.fail("open telemetry log", err)
	}
	alert, err := os.OpenFile(base+".log", os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		tel.Close()
		return l.fail("open alert log", err)
	}

	l.tel, l.telW, l.telPath = tel, bufio.NewWriterSize(tel, 64<<10), tel.Name()
	l.alert, l.alertW, l.alertPath = alert, bufio.NewWriter(alert), alert.Name()
	l.active = true

	if err := l.writeLocked(l.telW, telemetryHeader); err != nil {
		return err
	}
	banner := fmt.Sprintf("%s\nStart Time: %s\nSession: %s\n\n", alertBanner, started.Format(time.RFC3339), session)
	if err := l.writeLocked(l.alertW, banner); err != nil {
		return err
	}
	if err := l.alertW.Flush(); err != nil {
		return l.fail("flush alert log", err)
	}

	if l.obs != nil {
		l.obs.LogInfo("session_logs_opened",
			ports.Field{Key: "session", Value: session},
			ports.Field{Key: "telemetry", Value: l.telPath},
			ports.Field{Key: "alerts", Value: l.alertPath})
	}
	return nil
}

// WriteTelemetry appends one telemetry line. The sample is expected to be
// display-clamped already; sides whose sensors have all failed print N/A.
func (l *SessionLog) WriteTelemetry(t float64, s domain.Sample, a domain.AnomalyState) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.active {
		return nil
	}
	if err := l.writeLocked(l.telW, FormatTelemetry(t, s, a)+"\n"); err != nil {
		return err
	}
	l.telLines++
	return nil
}

// WriteAlert appends one alert line and flushes it.
func (l *SessionLog) WriteAlert(line string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.active {
		return nil
	}
	if err := l.writeLocked(l.alertW, line+"\n"); err != nil {
		return err
	}
	if err := l.alertW.Flush(); err != nil {
		return l.fail("flush alert log", err)
	}
	l.alertLines++
	return nil
}

// End flushes and closes the session logs.
func (l *SessionLog) End() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.closeLocked()
}

func (l *SessionLog) Stats() ports.RecorderStats {
	l.mu.Lock()
	defer l.mu.Unlock()
	return ports.RecorderStats{
		Active:         l.active,
		Session:        l.session,
		TelemetryLines: l.telLines,
		AlertLines:     l.alertLines,
		SizeBytes:      l.sizeBytes,
		TelemetryPath:  l.telPath,
		AlertPath:      l.alertPath,
	}
}

func (l *SessionLog) writeLocked(w *bufio.Writer, text string) error {
	n, err := w.WriteString(text)
	l.sizeBytes += int64(n)
	if err != nil {
		return l.fail("write session log", err)
	}
	if l.obs != nil {
		l.obs.SetGauge("enginesim_log_size_bytes", float64(l.sizeBytes))
	}
	return nil
}

// fail disables logging for the session and reports the cause.
func (l *SessionLog) fail(op string, err error) error {
	err = fmt.Errorf("%s: %w", op, err)
	l.report("session_log_failed", err)
	if l.obs != nil {
		l.obs.IncCounter("enginesim_log_failures_total", 1)
	}
	if cerr := l.closeLocked(); cerr != nil {
		l.report("session_log_close_failed", cerr)
	}
	return err
}

func (l *SessionLog) report(msg string, err error) {
	if l.obs != nil {
		l.obs.LogError(msg, err, ports.Field{Key: "session", Value: l.session})
	}
}

func (l *SessionLog) closeLocked() error {
	l.active = false
	var errs []error
	if l.telW != nil {
		errs = append(errs, l.telW.Flush())
	}
	if l.tel != nil {
		errs = append(errs, l.tel.Close())
	}
	if l.alertW != nil {
		errs = append(errs, l.alertW.Flush())
	}
	if l.alert != nil {
		errs = append(errs, l.alert.Close())
	}
	l.tel, l.telW, l.alert, l.alertW = nil, nil, nil, nil
	return errors.Join(errs...)
}

// FormatTelemetry renders the fixed-format telemetry line.
func FormatTelemetry(t float64, s domain.Sample, a domain.AnomalyState) string {
	return fmt.Sprintf("Time: %.2fs | N1 Left: %s%% | N1 Right: %s%% | EGT Left: %s C | EGT Right: %s C | Fuel Level: %.1f lbs | Fuel Flow: %.1f lbs/hr | Phase: %d",
		t,
		field(s.N1Left, 2, a.SpoolFail.SideFailed(domain.SideLeft)),
		field(s.N1Right, 2, a.SpoolFail.SideFailed(domain.SideRight)),
		field(s.EGTLeft, 1, a.EGTFail.SideFailed(domain.SideLeft)),
		field(s.EGTRight, 1, a.EGTFail.SideFailed(domain.SideRight)),
		s.FuelLevel,
		s.FuelFlow,
		int(s.Phase),
	)
}

func field(v float64, prec int, failed bool) string {
	if failed {
		return notAvailable
	}
	return strconv.FormatFloat(v, 'f', prec, 64)
}

var _ ports.Recorder = (*SessionLog)(nil)
