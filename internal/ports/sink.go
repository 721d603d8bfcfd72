package ports

import "github.com/ghalamif/enginesim/internal/domain"

// AlertSink displays or persists emitted alert lines.
type AlertSink interface {
	WriteAlert(a domain.Alert) error
	Name() string
}

// DisplaySink consumes the slow-rate display feed. Implementations must treat
// the snapshot as read-only.
type DisplaySink interface {
	Publish(s domain.Snapshot) error
	Name() string
}
