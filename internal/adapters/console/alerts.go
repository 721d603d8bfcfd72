// Package console renders alerts and the display feed on a terminal and parses
// operator commands typed on stdin.
package console

import (
	"fmt"
	"io"
	"sync"

	"github.com/charmbracelet/lipgloss"

	"github.com/ghalamif/enginesim/internal/domain"
	"github.com/ghalamif/enginesim/internal/ports"
)

// AlertWriter prints alert lines in their severity colour. Colour is dropped
// automatically when w is not a terminal.
type AlertWriter struct {
	mu     sync.Mutex
	w      io.Writer
	styles map[domain.Severity]lipgloss.Style
	plain  bool
}

func NewAlertWriter(w io.Writer, color bool) *AlertWriter {
	r := lipgloss.NewRenderer(w)
	styles := make(map[domain.Severity]lipgloss.Style, 4)
	for _, sev := range []domain.Severity{domain.SeverityNormal, domain.SeverityInfo, domain.SeverityCaution, domain.SeverityCritical} {
		st := r.NewStyle().Foreground(lipgloss.Color(sev.Color()))
		if sev == domain.SeverityCritical {
			st = st.Bold(true)
		}
		styles[sev] = st
	}
	return &AlertWriter{w: w, styles: styles, plain: !color}
}

func (a *AlertWriter) WriteAlert(al domain.Alert) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	line := al.Line
	if !a.plain {
		line = a.styles[al.Severity].Render(line)
	}
	_, err := fmt.Fprintln(a.w, line)
	return err
}

func (a *AlertWriter) Name() string { return "console-alerts" }

var _ ports.AlertSink = (*AlertWriter)(nil)
